package backup

import (
	"path/filepath"
	"streakd/internal/models"
	"streakd/internal/storage"
	"streakd/internal/structures"
	"streakd/internal/testutil"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(storage.Options{Path: filepath.Join(t.TempDir(), "db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seed writes a two-day streak for U1 in C1 and opts C1 in.
func seed(t *testing.T, s *storage.Store) {
	t.Helper()
	start := models.NewDate(2024, time.January, 1)
	last := models.NewDate(2024, time.January, 2)
	require.NoError(t, s.Update(func(tx *storage.Tx) error {
		for _, d := range []models.Date{start, last} {
			if _, err := tx.InsertPost("C1", "U1", d); err != nil {
				return err
			}
		}
		if err := tx.PutStreak(&models.StreakState{
			ChannelID: "C1", UserID: "U1", CurrentStreak: 2, LongestStreak: 2,
			StreakStartDate: &start, LastCountedDate: &last,
			LongestStreakStart: &start, LongestStreakEnd: &last,
		}); err != nil {
			return err
		}
		if _, err := tx.AddTrackedChannel("C1"); err != nil {
			return err
		}
		return tx.SetTrackingMode(models.TrackingModeLimited)
	}))
}

func backupConfig(path string, interval time.Duration) *structures.Config {
	return &structures.Config{
		Backup: structures.BackupConfig{FilePath: path, Interval: interval},
	}
}

func newFileManager(t *testing.T, s *storage.Store) *FileManager {
	t.Helper()
	comp, err := NewZstdCompressor()
	require.NoError(t, err)
	return NewFileManager(comp, s, &testutil.MockLogger{})
}
