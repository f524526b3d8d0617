package infrastructures

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/safatanc/hypergiga-core/internal/app/models"
	"gopkg.in/yaml.v3"
)

const (
	StoreDriverExternal = "external"
	StoreDriverMemory   = "memory"
)

type AppConfig struct {
	AppEnv      string `validate:"oneof=development production test"`
	ServiceName string `validate:"required"`
	HTTPPort    string `validate:"required,numeric"`
	LogLevel    string `validate:"oneof=panic fatal error warn warning info debug trace"`
	LogFormat   string `validate:"oneof=json text"`

	StoreDriver         string `validate:"oneof=external memory"`
	DatabaseURL         string `validate:"required_if=StoreDriver external"`
	DatabaseAutoMigrate bool
	RedisAddress        string `validate:"required_if=StoreDriver external"`
	RedisPassword       string
	RedisDB             int `validate:"min=0"`
	RedisKeyPrefix      string

	RateLimits map[models.RateLimitClass]models.RateLimitConfig `validate:"len=4,dive"`
	Quotas     models.DefaultQuotas

	BreakerThreshold int64         `validate:"min=1"`
	BreakerTimeout   time.Duration `validate:"min=1ms"`
	// BackendDelay is how long the simulated media and AI backends take.
	BackendDelay time.Duration `validate:"min=0"`
	RetryDelay   time.Duration `validate:"min=0"`

	BotUsername       string
	OwnerIDs          []int64
	AdminIDs          []int64
	AdminAPIKey       string
	WebhookSecret     string
	QuotaResetEnabled bool

	MetricsEnabled bool
	TracingEnabled bool
	OTLPEndpoint   string  `validate:"required_if=TracingEnabled true"`
	SamplingRate   float64 `validate:"min=0,max=1"`
}

// DefaultRateLimits are the class budgets used when nothing is configured.
func DefaultRateLimits() map[models.RateLimitClass]models.RateLimitConfig {
	return map[models.RateLimitClass]models.RateLimitConfig{
		models.RateLimitGlobal:     {Points: 1000, Duration: 60, BlockDuration: 300},
		models.RateLimitPerUser:    {Points: 100, Duration: 60, BlockDuration: 300},
		models.RateLimitPerCommand: {Points: 10, Duration: 60, BlockDuration: 300},
		models.RateLimitPerChat:    {Points: 50, Duration: 60, BlockDuration: 300},
	}
}

func DefaultQuotas() models.DefaultQuotas {
	return models.DefaultQuotas{
		DailyCommands:         1000,
		DailyDownloads:        50,
		DailyAIRequests:       100,
		DailyMediaConversions: 20,
	}
}

// limitsFile is the shape of the optional LIMITS_FILE overlay.
type limitsFile struct {
	RateLimits map[models.RateLimitClass]models.RateLimitConfig `yaml:"rate_limits"`
	Quotas     models.DefaultQuotas                             `yaml:"quotas"`
}

func LoadConfig() (*AppConfig, error) {
	godotenv.Load()

	window := getEnvAsInt64("RATE_LIMIT_WINDOW", 60)
	block := getEnvAsInt64("RATE_LIMIT_BLOCK", 300)
	rateLimits := DefaultRateLimits()
	for class, env := range map[models.RateLimitClass]string{
		models.RateLimitGlobal:     "RATE_LIMIT_GLOBAL",
		models.RateLimitPerUser:    "RATE_LIMIT_PER_USER",
		models.RateLimitPerCommand: "RATE_LIMIT_PER_COMMAND",
		models.RateLimitPerChat:    "RATE_LIMIT_PER_CHAT",
	} {
		cfg := rateLimits[class]
		cfg.Points = getEnvAsInt64(env, cfg.Points)
		cfg.Duration = window
		cfg.BlockDuration = block
		rateLimits[class] = cfg
	}

	quotas, err := parseQuotas(os.Getenv("QUOTAS_DEFAULT"), DefaultQuotas())
	if err != nil {
		return nil, err
	}

	cfg := &AppConfig{
		AppEnv:      getEnv("APP_ENV", "production"),
		ServiceName: getEnv("OTEL_SERVICE_NAME", "hypergiga-core"),
		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),

		StoreDriver:         getEnv("STORE_DRIVER", StoreDriverExternal),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		DatabaseAutoMigrate: getEnvAsBool("DATABASE_AUTO_MIGRATE", true),
		RedisAddress:        os.Getenv("REDIS_ADDRESS"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		RedisKeyPrefix:      os.Getenv("REDIS_KEY_PREFIX"),

		RateLimits: rateLimits,
		Quotas:     quotas,

		BreakerThreshold: getEnvAsInt64("BREAKER_THRESHOLD", 5),
		BreakerTimeout:   getEnvAsDuration("BREAKER_TIMEOUT", 60*time.Second),
		BackendDelay:     getEnvAsDuration("BACKEND_DELAY", 2*time.Second),
		RetryDelay:       getEnvAsDuration("RETRY_DELAY", time.Second),

		BotUsername:       strings.TrimPrefix(os.Getenv("BOT_USERNAME"), "@"),
		OwnerIDs:          getEnvAsInt64List("BOT_OWNER_IDS"),
		AdminIDs:          getEnvAsInt64List("BOT_ADMIN_IDS"),
		AdminAPIKey:       os.Getenv("ADMIN_API_KEY"),
		WebhookSecret:     os.Getenv("WEBHOOK_SECRET"),
		QuotaResetEnabled: getEnvAsBool("QUOTA_RESET_ENABLED", true),

		MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		TracingEnabled: getEnvAsBool("TRACING_ENABLED", false),
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		SamplingRate:   getEnvAsFloat("OTEL_SAMPLING_RATE", 1),
	}

	if path := os.Getenv("LIMITS_FILE"); path != "" {
		if err := cfg.applyLimitsFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func (c *AppConfig) applyLimitsFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read limits file: %w", err)
	}

	var file limitsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse limits file %s: %w", path, err)
	}

	for class, override := range file.RateLimits {
		if !class.Valid() {
			return fmt.Errorf("limits file %s: unknown rate limit class %q", path, class)
		}
		c.RateLimits[class] = mergeRateLimit(c.RateLimits[class], override)
	}
	c.Quotas = mergeQuotas(c.Quotas, file.Quotas)
	return nil
}

// parseQuotas reads the QUOTAS_DEFAULT JSON object. JSON is a subset of YAML,
// so the YAML decoder handles it; absent or zero fields keep their defaults.
func parseQuotas(raw string, defaults models.DefaultQuotas) (models.DefaultQuotas, error) {
	if strings.TrimSpace(raw) == "" {
		return defaults, nil
	}
	var parsed models.DefaultQuotas
	if err := yaml.Unmarshal([]byte(raw), &parsed); err != nil {
		return defaults, fmt.Errorf("parse QUOTAS_DEFAULT: %w", err)
	}
	return mergeQuotas(defaults, parsed), nil
}

func mergeRateLimit(base, override models.RateLimitConfig) models.RateLimitConfig {
	if override.Points > 0 {
		base.Points = override.Points
	}
	if override.Duration > 0 {
		base.Duration = override.Duration
	}
	if override.BlockDuration > 0 {
		base.BlockDuration = override.BlockDuration
	}
	return base
}

func mergeQuotas(base, override models.DefaultQuotas) models.DefaultQuotas {
	if override.DailyCommands > 0 {
		base.DailyCommands = override.DailyCommands
	}
	if override.DailyDownloads > 0 {
		base.DailyDownloads = override.DailyDownloads
	}
	if override.DailyAIRequests > 0 {
		base.DailyAIRequests = override.DailyAIRequests
	}
	if override.DailyMediaConversions > 0 {
		base.DailyMediaConversions = override.DailyMediaConversions
	}
	return base
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64List(key string) []int64 {
	var ids []int64
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}
