package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/safatanc/hypergiga-core/internal/app/models"
	"github.com/safatanc/hypergiga-core/pkg/ratelimit"
	"github.com/sirupsen/logrus"
)

var errStoreDown = errors.New("connection refused")

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock {
	return &testClock{now: t}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordingMetrics struct {
	mu             sync.Mutex
	rateLimitHits  map[models.RateLimitClass]int
	quotaDenials   map[models.QuotaType]int
	storeErrors    map[string]int
	commands       []string
	errorsRecorded []string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		rateLimitHits: make(map[models.RateLimitClass]int),
		quotaDenials:  make(map[models.QuotaType]int),
		storeErrors:   make(map[string]int),
	}
}

func (m *recordingMetrics) CommandExecuted(_ context.Context, command string, _ models.CommandCategory, _ models.Role, _ bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commands = append(m.commands, command)
}

func (m *recordingMetrics) ErrorRecorded(_ context.Context, errorType, _ string, _ models.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorsRecorded = append(m.errorsRecorded, errorType)
}

func (m *recordingMetrics) QuotaDenied(_ context.Context, quotaType models.QuotaType, _ models.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quotaDenials[quotaType]++
}

func (m *recordingMetrics) RateLimitHit(_ context.Context, class models.RateLimitClass, _ models.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rateLimitHits[class]++
}

func (m *recordingMetrics) StoreError(_ context.Context, store string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.storeErrors[store]++
}

// countingStore records which keys were incremented.
type countingStore struct {
	ratelimit.Store
	mu         sync.Mutex
	increments []string
}

func (s *countingStore) IncrementWithExpiry(ctx context.Context, key string, points int64, window time.Duration) (int64, error) {
	s.mu.Lock()
	s.increments = append(s.increments, key)
	s.mu.Unlock()
	return s.Store.IncrementWithExpiry(ctx, key, points, window)
}

func (s *countingStore) Increments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.increments...)
}

type downRateStore struct{}

func (downRateStore) IncrementWithExpiry(context.Context, string, int64, time.Duration) (int64, error) {
	return 0, errStoreDown
}
func (downRateStore) TTL(context.Context, string) (time.Duration, bool, error) {
	return 0, false, errStoreDown
}
func (downRateStore) Get(context.Context, string) (int64, error) { return 0, errStoreDown }
func (downRateStore) Delete(context.Context, string) error       { return errStoreDown }
func (downRateStore) Ping(context.Context) error                 { return errStoreDown }
