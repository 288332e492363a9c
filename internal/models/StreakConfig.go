package models

import (
	"fmt"
	"time"
)

// StreakConfig holds the off-days and the timezone that turns an instant into a
// calendar day. It is immutable once built.
type StreakConfig struct {
	offDays  [7]bool
	location *time.Location
}

// NewStreakConfig validates raw settings. Weekdays are numbered 0 (Monday)
// to 6 (Sunday); an empty timezone means UTC.
func NewStreakConfig(offDays []int, timezone string) (*StreakConfig, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, timezone)
	}

	conf := &StreakConfig{location: loc}
	count := 0
	for _, day := range offDays {
		if day < 0 || day > 6 {
			return nil, fmt.Errorf("%w: off-day %d is not a weekday (0-6)", ErrInvalidInput, day)
		}
		if !conf.offDays[day] {
			conf.offDays[day] = true
			count++
		}
	}
	if count == 7 {
		return nil, fmt.Errorf("%w: every weekday is an off-day", ErrInvalidInput)
	}
	return conf, nil
}

func (c *StreakConfig) Location() *time.Location {
	return c.location
}

func (c *StreakConfig) IsOffDay(d Date) bool {
	return c.offDays[d.Weekday()]
}

// OffDays returns the configured off-days in ascending order.
func (c *StreakConfig) OffDays() []int {
	days := make([]int, 0, 7)
	for day, off := range c.offDays {
		if off {
			days = append(days, day)
		}
	}
	return days
}

// DateOf projects t into the configured zone and returns its calendar day.
func (c *StreakConfig) DateOf(t time.Time) Date {
	return DateOf(t.In(c.location))
}
