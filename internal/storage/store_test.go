package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streakd/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Options{Path: filepath.Join(t.TempDir(), "streaks")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "more", "streaks")
	s, err := Open(Options{Path: path})
	require.NoError(t, err)
	defer s.Close()

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(Options{})
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
}

func TestOpen_PathIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := Open(Options{Path: filepath.Join(file, "db")})
	assert.True(t, errors.Is(err, models.ErrStoreUnavailable))
}

func TestOpen_SeedsTrackingModeAll(t *testing.T) {
	s := openTestStore(t)
	var mode models.TrackingMode
	require.NoError(t, s.View(func(tx *Tx) (err error) {
		mode, err = tx.TrackingMode()
		return err
	}))
	assert.Equal(t, models.TrackingModeAll, mode)
}

func TestInsertPost_Dedup(t *testing.T) {
	s := openTestStore(t)
	day := models.NewDate(2024, time.January, 1)

	var first, second bool
	require.NoError(t, s.Update(func(tx *Tx) (err error) {
		first, err = tx.InsertPost("C1", "U1", day)
		return err
	}))
	require.NoError(t, s.Update(func(tx *Tx) (err error) {
		second, err = tx.InsertPost("C1", "U1", day)
		return err
	}))

	assert.True(t, first)
	assert.False(t, second)
}

func TestUpdate_RollsBackOnError(t *testing.T) {
	s := openTestStore(t)
	day := models.NewDate(2024, time.January, 1)
	boom := errors.New("boom")

	err := s.Update(func(tx *Tx) error {
		if _, err := tx.InsertPost("C1", "U1", day); err != nil {
			return err
		}
		if err := tx.PutStreak(&models.StreakState{ChannelID: "C1", UserID: "U1", CurrentStreak: 1, LongestStreak: 1}); err != nil {
			return err
		}
		return boom
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrStoreUnavailable))
	assert.True(t, errors.Is(err, boom))

	require.NoError(t, s.View(func(tx *Tx) error {
		has, err := tx.HasPost("C1", "U1", day)
		require.NoError(t, err)
		assert.False(t, has)
		row, err := tx.GetStreak("C1", "U1")
		require.NoError(t, err)
		assert.Nil(t, row)
		return nil
	}))
}

func TestUpdate_InvalidInputPassesThrough(t *testing.T) {
	s := openTestStore(t)
	err := s.Update(func(tx *Tx) error {
		_, err := models.ParseTrackingMode("bogus")
		return err
	})
	assert.True(t, errors.Is(err, models.ErrInvalidInput))
	assert.False(t, errors.Is(err, models.ErrStoreUnavailable))
}

func TestStreakRoundTrip(t *testing.T) {
	s := openTestStore(t)
	start := models.NewDate(2024, time.March, 1)
	last := models.NewDate(2024, time.March, 4)
	state := &models.StreakState{
		ChannelID:          "C1",
		UserID:             "U1",
		CurrentStreak:      2,
		LongestStreak:      2,
		StreakStartDate:    &start,
		LastCountedDate:    &last,
		LongestStreakStart: &start,
		LongestStreakEnd:   &last,
	}
	require.NoError(t, s.Update(func(tx *Tx) error { return tx.PutStreak(state) }))

	var got *models.StreakState
	require.NoError(t, s.View(func(tx *Tx) (err error) {
		got, err = tx.GetStreak("C1", "U1")
		return err
	}))
	require.NotNil(t, got)
	assert.Equal(t, state, got)
}

func TestStreaks_ScopedByChannel(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Update(func(tx *Tx) error {
		for _, row := range []*models.StreakState{
			{ChannelID: "C1", UserID: "U1", CurrentStreak: 1},
			{ChannelID: "C1", UserID: "U2", CurrentStreak: 2},
			{ChannelID: "C10", UserID: "U1", CurrentStreak: 3},
		} {
			if err := tx.PutStreak(row); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.View(func(tx *Tx) error {
		rows, err := tx.Streaks("C1")
		require.NoError(t, err)
		assert.Len(t, rows, 2)

		all, err := tx.Streaks("")
		require.NoError(t, err)
		assert.Len(t, all, 3)
		return nil
	}))
}

func TestLatestPostDate(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Update(func(tx *Tx) error {
		for _, p := range []models.PostRecord{
			{ChannelID: "C1", UserID: "U1", Date: models.NewDate(2024, time.January, 3)},
			{ChannelID: "C1", UserID: "U2", Date: models.NewDate(2024, time.January, 5)},
			{ChannelID: "C2", UserID: "U1", Date: models.NewDate(2024, time.February, 1)},
		} {
			if _, err := tx.InsertPost(p.ChannelID, p.UserID, p.Date); err != nil {
				return err
			}
		}
		return nil
	}))

	require.NoError(t, s.View(func(tx *Tx) error {
		latest, err := tx.LatestPostDate("C1")
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, "2024-01-05", latest.String())

		none, err := tx.LatestPostDate("C3")
		require.NoError(t, err)
		assert.Nil(t, none)

		posts, err := tx.AllPosts()
		require.NoError(t, err)
		assert.Len(t, posts, 3)
		return nil
	}))
}

func TestTrackedChannels(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Update(func(tx *Tx) error {
		added, err := tx.AddTrackedChannel("C2")
		require.NoError(t, err)
		assert.True(t, added)
		added, err = tx.AddTrackedChannel("C1")
		require.NoError(t, err)
		assert.True(t, added)
		added, err = tx.AddTrackedChannel("C1")
		require.NoError(t, err)
		assert.False(t, added)
		return nil
	}))

	require.NoError(t, s.View(func(tx *Tx) error {
		channels, err := tx.TrackedChannels()
		require.NoError(t, err)
		assert.Equal(t, []string{"C1", "C2"}, channels)
		return nil
	}))

	require.NoError(t, s.Update(func(tx *Tx) error {
		removed, err := tx.RemoveTrackedChannel("C2")
		require.NoError(t, err)
		assert.True(t, removed)
		removed, err = tx.RemoveTrackedChannel("C2")
		require.NoError(t, err)
		assert.False(t, removed)
		return tx.ClearTrackedChannels()
	}))

	require.NoError(t, s.View(func(tx *Tx) error {
		channels, err := tx.TrackedChannels()
		require.NoError(t, err)
		assert.Empty(t, channels)
		return nil
	}))
}

func TestIsEmpty(t *testing.T) {
	s := openTestStore(t)
	var empty bool
	require.NoError(t, s.View(func(tx *Tx) (err error) {
		empty, err = tx.IsEmpty()
		return err
	}))
	assert.True(t, empty)

	require.NoError(t, s.Update(func(tx *Tx) error {
		_, err := tx.AddTrackedChannel("C1")
		return err
	}))
	require.NoError(t, s.View(func(tx *Tx) (err error) {
		empty, err = tx.IsEmpty()
		return err
	}))
	assert.True(t, empty, "tracking state alone does not count as data")

	require.NoError(t, s.Update(func(tx *Tx) error {
		_, err := tx.InsertPost("C1", "U1", models.NewDate(2024, time.January, 1))
		return err
	}))
	require.NoError(t, s.View(func(tx *Tx) (err error) {
		empty, err = tx.IsEmpty()
		return err
	}))
	assert.False(t, empty)
}

func TestReopen_PersistsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streaks")
	s, err := Open(Options{Path: path, SyncWrites: true})
	require.NoError(t, err)
	require.NoError(t, s.Update(func(tx *Tx) error {
		if err := tx.SetTrackingMode(models.TrackingModeLimited); err != nil {
			return err
		}
		return tx.PutStreak(&models.StreakState{ChannelID: "C1", UserID: "U1", CurrentStreak: 4, LongestStreak: 4})
	}))
	require.NoError(t, s.Close())

	s, err = Open(Options{Path: path})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.View(func(tx *Tx) error {
		mode, err := tx.TrackingMode()
		require.NoError(t, err)
		assert.Equal(t, models.TrackingModeLimited, mode, "seeding must not overwrite an existing mode")
		row, err := tx.GetStreak("C1", "U1")
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.Equal(t, 4, row.CurrentStreak)
		return nil
	}))
}

func TestCorruptRowsAreStoreFaults(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Update(func(tx *Tx) error {
		if err := tx.txn.Set(streakKey("C1", "U1"), []byte(`{"current_streak":1,"streak_start_date":"10000-01-01"}`)); err != nil {
			return err
		}
		return tx.txn.Set([]byte(prefixPost+"C1"+sep+"U1"+sep+"not-a-date"), []byte{})
	}))

	assertStoreFault := func(err error) {
		t.Helper()
		assert.True(t, errors.Is(err, models.ErrStoreUnavailable), "%v", err)
		assert.False(t, errors.Is(err, models.ErrInvalidInput), "%v", err)
	}
	assertStoreFault(s.View(func(tx *Tx) error {
		_, err := tx.GetStreak("C1", "U1")
		return err
	}))
	assertStoreFault(s.View(func(tx *Tx) error {
		_, err := tx.Streaks("C1")
		return err
	}))
	assertStoreFault(s.View(func(tx *Tx) error {
		_, err := tx.LatestPostDate("C1")
		return err
	}))
	assertStoreFault(s.View(func(tx *Tx) error {
		_, err := tx.Export()
		return err
	}))
}
