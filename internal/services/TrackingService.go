package services

import (
	"streakd/internal/models"
	"streakd/internal/providers"
	"streakd/internal/storage"
)

type TrackingServiceInterface interface {
	IsChannelTracked(channelID string) (bool, error)
	EnableChannel(channelID string) (bool, error)
	DisableChannel(channelID string) (bool, error)
	ResetChannelTracking() error
	TrackedChannels() ([]string, error)
	IsTrackingRestricted() (bool, error)
	TrackingMode() (models.TrackingMode, error)
	SetTrackingMode(mode string) error
}

// TrackingService decides which channels count. Under mode "all" every
// channel is tracked; under "limited" only channels that opted in are.
type TrackingService struct {
	store  *storage.Store
	logger providers.Logger
}

func NewTrackingService(store *storage.Store, logger providers.Logger) *TrackingService {
	return &TrackingService{store: store, logger: logger}
}

func (ts *TrackingService) IsChannelTracked(channelID string) (bool, error) {
	if err := models.ValidateID("channel", channelID); err != nil {
		return false, err
	}
	var tracked bool
	err := ts.store.View(func(tx *storage.Tx) error {
		mode, err := tx.TrackingMode()
		if err != nil {
			return err
		}
		if mode == models.TrackingModeAll {
			tracked = true
			return nil
		}
		tracked, err = tx.HasTrackedChannel(channelID)
		return err
	})
	return tracked, err
}

// EnableChannel switches to opt-in tracking and adds the channel. It reports
// whether the channel was newly added.
func (ts *TrackingService) EnableChannel(channelID string) (bool, error) {
	if err := models.ValidateID("channel", channelID); err != nil {
		return false, err
	}
	var added bool
	err := ts.store.Update(func(tx *storage.Tx) (err error) {
		if err = tx.SetTrackingMode(models.TrackingModeLimited); err != nil {
			return err
		}
		added, err = tx.AddTrackedChannel(channelID)
		return err
	})
	if err != nil {
		return false, err
	}
	if added {
		ts.logger.Infof(providers.TypeApp, "Enabled tracking for channel %s", channelID)
	}
	return added, nil
}

// DisableChannel removes the channel from the tracked set and leaves the
// mode alone.
func (ts *TrackingService) DisableChannel(channelID string) (bool, error) {
	if err := models.ValidateID("channel", channelID); err != nil {
		return false, err
	}
	var removed bool
	err := ts.store.Update(func(tx *storage.Tx) (err error) {
		removed, err = tx.RemoveTrackedChannel(channelID)
		return err
	})
	if err != nil {
		return false, err
	}
	if removed {
		ts.logger.Infof(providers.TypeApp, "Disabled tracking for channel %s", channelID)
	}
	return removed, nil
}

func (ts *TrackingService) ResetChannelTracking() error {
	err := ts.store.Update(func(tx *storage.Tx) error {
		return resetTracking(tx)
	})
	if err != nil {
		return err
	}
	ts.logger.Infof(providers.TypeApp, "Tracking reset to all channels")
	return nil
}

// TrackedChannels lists opted-in channels in ascending order. It is empty
// whenever every channel is tracked.
func (ts *TrackingService) TrackedChannels() ([]string, error) {
	channels := []string{}
	err := ts.store.View(func(tx *storage.Tx) error {
		mode, err := tx.TrackingMode()
		if err != nil || mode == models.TrackingModeAll {
			return err
		}
		found, err := tx.TrackedChannels()
		if err != nil {
			return err
		}
		channels = append(channels, found...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return channels, nil
}

func (ts *TrackingService) IsTrackingRestricted() (bool, error) {
	mode, err := ts.TrackingMode()
	if err != nil {
		return false, err
	}
	return mode == models.TrackingModeLimited, nil
}

func (ts *TrackingService) TrackingMode() (models.TrackingMode, error) {
	var mode models.TrackingMode
	err := ts.store.View(func(tx *storage.Tx) (err error) {
		mode, err = tx.TrackingMode()
		return err
	})
	return mode, err
}

// SetTrackingMode accepts "all" or "limited". Switching to "all" also clears
// the tracked set.
func (ts *TrackingService) SetTrackingMode(mode string) error {
	parsed, err := models.ParseTrackingMode(mode)
	if err != nil {
		return err
	}
	err = ts.store.Update(func(tx *storage.Tx) error {
		if parsed == models.TrackingModeAll {
			return resetTracking(tx)
		}
		return tx.SetTrackingMode(parsed)
	})
	if err != nil {
		return err
	}
	ts.logger.Infof(providers.TypeApp, "Tracking mode set to %s", parsed)
	return nil
}

func resetTracking(tx *storage.Tx) error {
	if err := tx.SetTrackingMode(models.TrackingModeAll); err != nil {
		return err
	}
	return tx.ClearTrackedChannels()
}
