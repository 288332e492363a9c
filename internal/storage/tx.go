package storage

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"streakd/internal/models"
)

// Tx exposes the four relations on top of one badger transaction. It is only
// valid inside the Update or View callback that produced it.
type Tx struct {
	txn *badger.Txn
}

func (tx *Tx) exists(key []byte) (bool, error) {
	_, err := tx.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// keys collects every key under prefix without loading values.
func (tx *Tx) keys(prefix []byte) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := tx.txn.NewIterator(opts)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys, nil
}

// InsertPost records a qualifying day. It reports false when the record
// already existed, in which case nothing is written.
func (tx *Tx) InsertPost(channelID, userID string, d models.Date) (bool, error) {
	found, err := tx.HasPost(channelID, userID, d)
	if err != nil || found {
		return false, err
	}
	if err := tx.txn.Set(postKey(channelID, userID, d), []byte{}); err != nil {
		return false, fmt.Errorf("set post record: %w", err)
	}
	return true, nil
}

func (tx *Tx) HasPost(channelID, userID string, d models.Date) (bool, error) {
	return tx.exists(postKey(channelID, userID, d))
}

// LatestPostDate returns the most recent post day recorded in a channel, or
// nil when the channel has none.
func (tx *Tx) LatestPostDate(channelID string) (*models.Date, error) {
	keys, err := tx.keys(postChannelPrefix(channelID))
	if err != nil {
		return nil, err
	}
	var latest *models.Date
	for _, key := range keys {
		rec, err := parsePostKey(key)
		if err != nil {
			return nil, err
		}
		if latest == nil || rec.Date.After(*latest) {
			d := rec.Date
			latest = &d
		}
	}
	return latest, nil
}

func (tx *Tx) AllPosts() ([]models.PostRecord, error) {
	keys, err := tx.keys([]byte(prefixPost))
	if err != nil {
		return nil, err
	}
	posts := make([]models.PostRecord, 0, len(keys))
	for _, key := range keys {
		rec, err := parsePostKey(key)
		if err != nil {
			return nil, err
		}
		posts = append(posts, rec)
	}
	return posts, nil
}

// GetStreak returns the streak row or nil when none exists.
func (tx *Tx) GetStreak(channelID, userID string) (*models.StreakState, error) {
	item, err := tx.txn.Get(streakKey(channelID, userID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get streak: %w", err)
	}
	var state models.StreakState
	if err := item.Value(func(val []byte) error { return decodeStreak(item.Key(), val, &state) }); err != nil {
		return nil, err
	}
	return &state, nil
}

// decodeStreak reports an unreadable row as a store fault. The cause is
// flattened so that a date parse failure inside it is not taken for bad
// caller input.
func decodeStreak(key, val []byte, state *models.StreakState) error {
	if err := json.Unmarshal(val, state); err != nil {
		return fmt.Errorf("%w: corrupt streak row %q: %v", models.ErrStoreUnavailable, key, err)
	}
	return nil
}

// PutStreak inserts or replaces the row keyed by state's channel and user.
func (tx *Tx) PutStreak(state *models.StreakState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal streak: %w", err)
	}
	if err := tx.txn.Set(streakKey(state.ChannelID, state.UserID), data); err != nil {
		return fmt.Errorf("set streak: %w", err)
	}
	return nil
}

// Streaks returns every streak row of a channel, or of all channels when
// channelID is empty.
func (tx *Tx) Streaks(channelID string) ([]*models.StreakState, error) {
	prefix := []byte(prefixStreak)
	if channelID != "" {
		prefix = streakChannelPrefix(channelID)
	}

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	it := tx.txn.NewIterator(opts)
	defer it.Close()

	var rows []*models.StreakState
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var state models.StreakState
		item := it.Item()
		if err := item.Value(func(val []byte) error { return decodeStreak(item.Key(), val, &state) }); err != nil {
			return nil, err
		}
		rows = append(rows, &state)
	}
	return rows, nil
}

func (tx *Tx) initTrackingMode() error {
	found, err := tx.exists([]byte(keyTrackingMode))
	if err != nil || found {
		return err
	}
	return tx.SetTrackingMode(models.TrackingModeAll)
}

// TrackingMode returns the stored mode, defaulting to all.
func (tx *Tx) TrackingMode() (models.TrackingMode, error) {
	item, err := tx.txn.Get([]byte(keyTrackingMode))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return models.TrackingModeAll, nil
	}
	if err != nil {
		return "", fmt.Errorf("get tracking mode: %w", err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", fmt.Errorf("read tracking mode: %w", err)
	}
	return models.TrackingMode(val), nil
}

func (tx *Tx) SetTrackingMode(mode models.TrackingMode) error {
	if err := tx.txn.Set([]byte(keyTrackingMode), []byte(mode)); err != nil {
		return fmt.Errorf("set tracking mode: %w", err)
	}
	return nil
}

// AddTrackedChannel reports whether the channel was newly added.
func (tx *Tx) AddTrackedChannel(channelID string) (bool, error) {
	key := trackedKey(channelID)
	found, err := tx.exists(key)
	if err != nil || found {
		return false, err
	}
	if err := tx.txn.Set(key, []byte{}); err != nil {
		return false, fmt.Errorf("set tracked channel: %w", err)
	}
	return true, nil
}

// RemoveTrackedChannel reports whether the channel was present.
func (tx *Tx) RemoveTrackedChannel(channelID string) (bool, error) {
	key := trackedKey(channelID)
	found, err := tx.exists(key)
	if err != nil || !found {
		return false, err
	}
	if err := tx.txn.Delete(key); err != nil {
		return false, fmt.Errorf("delete tracked channel: %w", err)
	}
	return true, nil
}

func (tx *Tx) HasTrackedChannel(channelID string) (bool, error) {
	return tx.exists(trackedKey(channelID))
}

// TrackedChannels lists the explicit set in ascending order.
func (tx *Tx) TrackedChannels() ([]string, error) {
	keys, err := tx.keys([]byte(prefixTracked))
	if err != nil {
		return nil, err
	}
	channels := make([]string, 0, len(keys))
	for _, key := range keys {
		channels = append(channels, string(key[len(prefixTracked):]))
	}
	return channels, nil
}

func (tx *Tx) ClearTrackedChannels() error {
	keys, err := tx.keys([]byte(prefixTracked))
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := tx.txn.Delete(key); err != nil {
			return fmt.Errorf("delete tracked channel: %w", err)
		}
	}
	return nil
}

// IsEmpty reports whether the store holds no posts and no streaks.
func (tx *Tx) IsEmpty() (bool, error) {
	for _, prefix := range []string{prefixPost, prefixStreak} {
		found, err := tx.firstKey([]byte(prefix))
		if err != nil {
			return false, err
		}
		if found {
			return false, nil
		}
	}
	return true, nil
}

func (tx *Tx) firstKey(prefix []byte) (bool, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = prefix
	it := tx.txn.NewIterator(opts)
	defer it.Close()
	it.Seek(prefix)
	return it.ValidForPrefix(prefix), nil
}
