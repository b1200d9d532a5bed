package domain

import (
	"fmt"
	"time"
)

// SecondsPerDay is the length of one ledger day.
const SecondsPerDay = 86_400

// DayNumber counts whole 86,400-second epochs since the Unix epoch.
// It is the only time unit the ledger uses for completions and claims.
type DayNumber uint64

// CurrentDay returns the day number containing t, truncating toward zero.
// Instants before the epoch clamp to day 0.
func CurrentDay(t time.Time) DayNumber {
	secs := t.Unix()
	if secs < 0 {
		return 0
	}
	return DayNumber(secs / SecondsPerDay)
}

// Date returns midnight UTC of the day.
func (d DayNumber) Date() time.Time {
	return time.Unix(int64(d)*SecondsPerDay, 0).UTC()
}

// DateKey returns the YYYY-MM-DD form of the day in UTC.
func (d DayNumber) DateKey() string {
	return d.Date().Format(time.DateOnly)
}

// String implements fmt.Stringer.
func (d DayNumber) String() string {
	return fmt.Sprintf("%d", uint64(d))
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns the same instant.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return c.At }
