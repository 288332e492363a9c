package storage

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"streakd/internal/models"
)

// Export copies every relation into a snapshot. Identity fields (ID,
// CreatedAt) are left for the caller.
func (tx *Tx) Export() (*models.Snapshot, error) {
	mode, err := tx.TrackingMode()
	if err != nil {
		return nil, err
	}
	channels, err := tx.TrackedChannels()
	if err != nil {
		return nil, err
	}
	streaks, err := tx.Streaks("")
	if err != nil {
		return nil, err
	}
	posts, err := tx.AllPosts()
	if err != nil {
		return nil, err
	}
	return &models.Snapshot{
		Version:         models.SnapshotVersion,
		TrackingMode:    mode,
		TrackedChannels: channels,
		Streaks:         streaks,
		Posts:           posts,
	}, nil
}

// Import merges a snapshot into the store. Rows already present are
// overwritten by the snapshot's copy; the tracked-channel set and mode are
// replaced.
//
// The snapshot is checked in full before anything is written. Posts and
// streak rows then go through a badger write batch, which splits them across
// as many transactions as needed, so a snapshot of any size fits. The batch is
// not atomic as a whole: a failed flush can leave part of the rows behind.
// Callers restore into an empty store only, where a retry converges.
func (s *Store) Import(snap *models.Snapshot) error {
	mode, err := validateSnapshot(snap)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: store is closed", models.ErrStoreUnavailable)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, p := range snap.Posts {
		if err := wb.Set(postKey(p.ChannelID, p.UserID, p.Date), []byte{}); err != nil {
			return wrapErr(fmt.Errorf("batch post record: %w", err))
		}
	}
	for _, row := range snap.Streaks {
		data, err := json.Marshal(row)
		if err != nil {
			return wrapErr(fmt.Errorf("marshal streak: %w", err))
		}
		if err := wb.Set(streakKey(row.ChannelID, row.UserID), data); err != nil {
			return wrapErr(fmt.Errorf("batch streak: %w", err))
		}
	}
	if err := wb.Flush(); err != nil {
		return wrapErr(fmt.Errorf("flush snapshot rows: %w", err))
	}

	// The mode goes last so a restore cut short never leaves a narrowed
	// tracking policy over missing rows.
	return wrapErr(s.db.Update(func(txn *badger.Txn) error {
		tx := &Tx{txn: txn}
		if err := tx.ClearTrackedChannels(); err != nil {
			return err
		}
		for _, ch := range snap.TrackedChannels {
			if _, err := tx.AddTrackedChannel(ch); err != nil {
				return err
			}
		}
		return tx.SetTrackingMode(mode)
	}))
}

func validateSnapshot(snap *models.Snapshot) (models.TrackingMode, error) {
	if snap.Version != models.SnapshotVersion {
		return "", fmt.Errorf("%w: unsupported snapshot version %d", models.ErrInvalidInput, snap.Version)
	}
	mode := snap.TrackingMode
	if mode == "" {
		mode = models.TrackingModeAll
	}
	if _, err := models.ParseTrackingMode(string(mode)); err != nil {
		return "", err
	}

	for _, p := range snap.Posts {
		if err := validateRowIDs("post record", p.ChannelID, p.UserID); err != nil {
			return "", err
		}
		if err := p.Date.Validate(); err != nil {
			return "", err
		}
	}
	for _, row := range snap.Streaks {
		if row == nil {
			return "", fmt.Errorf("%w: empty streak row", models.ErrInvalidInput)
		}
		if err := validateRowIDs("streak row", row.ChannelID, row.UserID); err != nil {
			return "", err
		}
	}
	for _, ch := range snap.TrackedChannels {
		if err := models.ValidateID("tracked channel", ch); err != nil {
			return "", err
		}
	}
	return mode, nil
}

func validateRowIDs(what, channelID, userID string) error {
	if err := models.ValidateID("channel", channelID); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	if err := models.ValidateID("user", userID); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	return nil
}
