package models

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cast"
)

const (
	minTimestamp = -62135596800 // 0001-01-01T00:00:00Z
	maxTimestamp = 253402300799 // 9999-12-31T23:59:59Z
)

// ParseTimestamp converts collaborator input into epoch seconds. Numbers and
// numeric strings such as "1704067200.000100" are accepted. A nil value or an
// empty string means "now" and yields nil.
func ParseTimestamp(v any) (*float64, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && s == "" {
		return nil, nil
	}
	ts, err := cast.ToFloat64E(v)
	if err != nil {
		return nil, fmt.Errorf("%w: timestamp %v: %v", ErrInvalidInput, v, err)
	}
	if err := ValidateTimestamp(ts); err != nil {
		return nil, err
	}
	return &ts, nil
}

func ValidateTimestamp(ts float64) error {
	if math.IsNaN(ts) || math.IsInf(ts, 0) {
		return fmt.Errorf("%w: timestamp is not finite", ErrInvalidInput)
	}
	if ts < minTimestamp || ts > maxTimestamp {
		return fmt.Errorf("%w: timestamp %v out of range", ErrInvalidInput, ts)
	}
	return nil
}

// TimeOf converts epoch seconds with a fractional part into a UTC time.
func TimeOf(ts float64) time.Time {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
