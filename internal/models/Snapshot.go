package models

import "time"

const SnapshotVersion = 1

// Snapshot is the backup format: a full export of the store.
type Snapshot struct {
	Version         int            `json:"version"`
	ID              string         `json:"id"`
	CreatedAt       time.Time      `json:"created_at"`
	TrackingMode    TrackingMode   `json:"tracking_mode"`
	TrackedChannels []string       `json:"tracked_channels"`
	Streaks         []*StreakState `json:"streaks"`
	Posts           []PostRecord   `json:"posts"`
}
