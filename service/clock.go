package service

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownTimezone indicates a timezone name that the tz database does
// not recognize. Callers must surface this rather than fall back to UTC.
var ErrUnknownTimezone = errors.New("unknown timezone")

// ChallengeClock resolves challenge day keys and midnight boundaries in a
// channel's timezone. A day key is the calendar date (YYYY-MM-DD) in that
// zone, so the same instant can belong to different days in different
// channels.
type ChallengeClock struct{}

// NewChallengeClock creates a new challenge clock
func NewChallengeClock() *ChallengeClock {
	return &ChallengeClock{}
}

// DayKey returns the current day key in the given timezone.
func (c *ChallengeClock) DayKey(timezone string) (string, error) {
	return c.DayKeyAt(time.Now(), timezone)
}

// DayKeyAt returns the day key for an instant in the given timezone.
func (c *ChallengeClock) DayKeyAt(at time.Time, timezone string) (string, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownTimezone, timezone)
	}
	return at.In(loc).Format("2006-01-02"), nil
}

// UntilNextMidnight returns the duration until the next local midnight in
// the given timezone.
func (c *ChallengeClock) UntilNextMidnight(timezone string) (time.Duration, error) {
	return c.UntilNextMidnightAt(time.Now(), timezone)
}

// UntilNextMidnightAt returns the duration from an instant to the next
// local midnight. time.Date normalizes day+1 in-zone, so the result is
// correct across DST transitions where a local day is 23 or 25 hours.
func (c *ChallengeClock) UntilNextMidnightAt(at time.Time, timezone string) (time.Duration, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTimezone, timezone)
	}

	local := at.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
	return midnight.Sub(at), nil
}

// ValidateTimezone reports whether the tz database knows the name.
func (c *ChallengeClock) ValidateTimezone(timezone string) error {
	if _, err := time.LoadLocation(timezone); err != nil {
		return fmt.Errorf("%w: %q", ErrUnknownTimezone, timezone)
	}
	return nil
}
