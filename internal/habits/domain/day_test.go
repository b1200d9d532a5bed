package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrentDay(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want DayNumber
	}{
		{"epoch", time.Unix(0, 0), 0},
		{"last second of day zero", time.Unix(86_399, 0), 0},
		{"first second of day one", time.Unix(86_400, 0), 1},
		{"truncates rather than rounds", time.Unix(86_400+86_399, 999_999_999), 1},
		{"before epoch clamps", time.Unix(-5, 0), 0},
		{"known date", time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), 19783},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentDay(tt.at))
		})
	}
}

func TestCurrentDay_MonotonicAndStable(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	first := CurrentDay(start)

	prev := first
	for offset := 0; offset < 3*SecondsPerDay; offset += 977 {
		d := CurrentDay(start.Add(time.Duration(offset) * time.Second))
		assert.GreaterOrEqual(t, d, prev)
		prev = d
	}

	for offset := 0; offset < SecondsPerDay; offset += 3_600 {
		assert.Equal(t, first, CurrentDay(start.Add(time.Duration(offset)*time.Second)))
	}
}

func TestCurrentDay_IgnoresLocation(t *testing.T) {
	loc := time.FixedZone("UTC+13", 13*3600)
	at := time.Date(2025, 6, 2, 1, 0, 0, 0, loc)

	assert.Equal(t, CurrentDay(at.UTC()), CurrentDay(at))
}

func TestDayNumber_DateKey(t *testing.T) {
	day := CurrentDay(time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC))

	assert.Equal(t, "2024-03-01", day.DateKey())
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), day.Date())
	assert.Equal(t, "19783", day.String())
}
