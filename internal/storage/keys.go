package storage

import (
	"bytes"
	"fmt"

	"streakd/internal/models"
)

const (
	prefixPost    = "post/"
	prefixStreak  = "streak/"
	prefixTracked = "tracked/"

	keyTrackingMode = "setting/tracking_mode"

	// sep joins key fields; models.ValidateID keeps it out of ids.
	sep = "\x00"
)

func postKey(channelID, userID string, d models.Date) []byte {
	return []byte(prefixPost + channelID + sep + userID + sep + d.String())
}

func postChannelPrefix(channelID string) []byte {
	return []byte(prefixPost + channelID + sep)
}

func streakKey(channelID, userID string) []byte {
	return []byte(prefixStreak + channelID + sep + userID)
}

func streakChannelPrefix(channelID string) []byte {
	return []byte(prefixStreak + channelID + sep)
}

func trackedKey(channelID string) []byte {
	return []byte(prefixTracked + channelID)
}

// parsePostKey splits "post/<channel>\x00<user>\x00<date>".
func parsePostKey(key []byte) (models.PostRecord, error) {
	parts := bytes.Split(bytes.TrimPrefix(key, []byte(prefixPost)), []byte(sep))
	if len(parts) != 3 {
		return models.PostRecord{}, fmt.Errorf("%w: malformed post key %q", models.ErrStoreUnavailable, key)
	}
	d, err := models.ParseDate(string(parts[2]))
	if err != nil {
		return models.PostRecord{}, fmt.Errorf("%w: malformed post key %q: %v", models.ErrStoreUnavailable, key, err)
	}
	return models.PostRecord{ChannelID: string(parts[0]), UserID: string(parts[1]), Date: d}, nil
}
