package models

import "fmt"

type TrackingMode string

const (
	TrackingModeAll     TrackingMode = "all"
	TrackingModeLimited TrackingMode = "limited"
)

func ParseTrackingMode(s string) (TrackingMode, error) {
	switch TrackingMode(s) {
	case TrackingModeAll, TrackingModeLimited:
		return TrackingMode(s), nil
	}
	return "", fmt.Errorf("%w: invalid tracking mode %q", ErrInvalidInput, s)
}
