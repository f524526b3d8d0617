package pkg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextUTCMidnight(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"mid day", time.Date(2026, 10, 19, 13, 45, 0, 0, time.UTC), time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)},
		{"exactly midnight", time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)},
		{"month end", time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC), time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"non utc input", time.Date(2026, 10, 19, 23, 30, 0, 0, time.FixedZone("WIB", 7*3600)), time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextUTCMidnight(tt.in))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(-time.Second))
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "3m 5s", FormatDuration(3*time.Minute+5*time.Second))
	assert.Equal(t, "2h 0m 1s", FormatDuration(2*time.Hour+time.Second))
	assert.Equal(t, "1d 1h 1m 1s", FormatDuration(25*time.Hour+time.Minute+time.Second))
}
