package observability

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/safatanc/hypergiga-core/internal/app/models"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/safatanc/hypergiga-core"

// Metrics records admission and command outcomes.
type Metrics interface {
	CommandExecuted(ctx context.Context, command string, category models.CommandCategory, role models.Role, success bool, latency time.Duration)
	ErrorRecorded(ctx context.Context, errorType, command string, role models.Role)
	QuotaDenied(ctx context.Context, quotaType models.QuotaType, role models.Role)
	RateLimitHit(ctx context.Context, class models.RateLimitClass, role models.Role)
	StoreError(ctx context.Context, store string)
}

type MetricsConfig struct {
	Enabled bool
}

// OtelMetrics implements Metrics on OpenTelemetry instruments.
type OtelMetrics struct {
	commandsTotal  metric.Int64Counter
	commandLatency metric.Float64Histogram
	errorsTotal    metric.Int64Counter
	quotaDenials   metric.Int64Counter
	rateLimitHits  metric.Int64Counter
	storeErrors    metric.Int64Counter
}

// InitMetrics wires an OpenTelemetry meter provider to a dedicated Prometheus
// registry and returns the scrape handler for it. When disabled it returns
// no-op metrics and a nil handler.
func InitMetrics(cfg MetricsConfig) (Metrics, http.Handler, error) {
	if !cfg.Enabled {
		return NoopMetrics{}, nil, nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry), otelprom.WithoutScopeInfo())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	metrics, err := NewOtelMetrics(provider.Meter(meterName))
	if err != nil {
		return nil, nil, err
	}

	return metrics, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}

func NewOtelMetrics(meter metric.Meter) (*OtelMetrics, error) {
	commandsTotal, err := meter.Int64Counter(
		"tg_commands_total",
		metric.WithDescription("Total commands executed"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create commands counter: %w", err)
	}

	commandLatency, err := meter.Float64Histogram(
		"tg_command_latency_ms",
		metric.WithDescription("Command execution latency in milliseconds"),
		metric.WithExplicitBucketBoundaries(10, 50, 100, 250, 500, 1000, 2500, 5000, 10000),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create command latency histogram: %w", err)
	}

	errorsTotal, err := meter.Int64Counter(
		"tg_errors_total",
		metric.WithDescription("Total errors by type"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create errors counter: %w", err)
	}

	quotaDenials, err := meter.Int64Counter(
		"tg_quota_denials_total",
		metric.WithDescription("Total quota denials"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create quota denials counter: %w", err)
	}

	rateLimitHits, err := meter.Int64Counter(
		"tg_rate_limit_hits_total",
		metric.WithDescription("Total rate limit hits"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit hits counter: %w", err)
	}

	storeErrors, err := meter.Int64Counter(
		"tg_store_errors_total",
		metric.WithDescription("Total counter and ledger store failures"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create store errors counter: %w", err)
	}

	return &OtelMetrics{
		commandsTotal:  commandsTotal,
		commandLatency: commandLatency,
		errorsTotal:    errorsTotal,
		quotaDenials:   quotaDenials,
		rateLimitHits:  rateLimitHits,
		storeErrors:    storeErrors,
	}, nil
}

func (m *OtelMetrics) CommandExecuted(ctx context.Context, command string, category models.CommandCategory, role models.Role, success bool, latency time.Duration) {
	m.commandsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("category", string(category)),
		attribute.String("success", strconv.FormatBool(success)),
		attribute.String("user_role", string(role)),
	))
	m.commandLatency.Record(ctx, float64(latency.Microseconds())/1000, metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("category", string(category)),
	))
}

func (m *OtelMetrics) ErrorRecorded(ctx context.Context, errorType, command string, role models.Role) {
	m.errorsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("error_type", errorType),
		attribute.String("command", command),
		attribute.String("user_role", string(role)),
	))
}

func (m *OtelMetrics) QuotaDenied(ctx context.Context, quotaType models.QuotaType, role models.Role) {
	m.quotaDenials.Add(ctx, 1, metric.WithAttributes(
		attribute.String("quota_type", string(quotaType)),
		attribute.String("user_role", string(role)),
	))
}

func (m *OtelMetrics) RateLimitHit(ctx context.Context, class models.RateLimitClass, role models.Role) {
	m.rateLimitHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("limit_type", string(class)),
		attribute.String("user_role", string(role)),
	))
}

func (m *OtelMetrics) StoreError(ctx context.Context, store string) {
	m.storeErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("store", store)))
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) CommandExecuted(context.Context, string, models.CommandCategory, models.Role, bool, time.Duration) {
}
func (NoopMetrics) ErrorRecorded(context.Context, string, string, models.Role)        {}
func (NoopMetrics) QuotaDenied(context.Context, models.QuotaType, models.Role)        {}
func (NoopMetrics) RateLimitHit(context.Context, models.RateLimitClass, models.Role) {}
func (NoopMetrics) StoreError(context.Context, string)                                {}
