package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"streakd/internal/backup/interfaces"
	"streakd/internal/models"
	"streakd/internal/providers"
	"streakd/internal/storage"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// FileManager moves whole-store snapshots between the database and a
// compressed file on disk.
type FileManager struct {
	store      *storage.Store
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, store *storage.Store, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
	}
}

// Snapshot exports the store as one consistent view.
func (f *FileManager) Snapshot() (*models.Snapshot, error) {
	var snap *models.Snapshot
	err := f.store.View(func(tx *storage.Tx) (err error) {
		snap, err = tx.Export()
		return err
	})
	if err != nil {
		return nil, err
	}
	snap.ID = uuid.NewString()
	snap.CreatedAt = time.Now().UTC()
	return snap, nil
}

// SaveToFile writes a snapshot through a temp file so a crash never leaves a
// half-written backup behind.
func (f *FileManager) SaveToFile(fileName string) error {
	snap, err := f.Snapshot()
	if err != nil {
		return err
	}

	jsonData, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(fileName); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = os.Rename(tmpFile, fileName); err != nil {
		return err
	}
	f.logger.Debugf(providers.TypeApp, "Snapshot %s written: %d posts, %d streaks", snap.ID, len(snap.Posts), len(snap.Streaks))
	return nil
}

// LoadFromFile imports a snapshot through Store.Import. A missing file is not
// an error.
func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", fileName, err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(decompressedData, &snap); err != nil {
		return fmt.Errorf("decode %s: %w", fileName, err)
	}

	if err := f.store.Import(&snap); err != nil {
		return err
	}
	f.logger.Infof(providers.TypeApp, "Restored snapshot %s from %s (%d posts, %d streaks)", snap.ID, snap.CreatedAt.Format(time.RFC3339), len(snap.Posts), len(snap.Streaks))
	return nil
}

// IsStoreEmpty reports whether the store holds no posts and no streaks.
func (f *FileManager) IsStoreEmpty() (bool, error) {
	var empty bool
	err := f.store.View(func(tx *storage.Tx) (err error) {
		empty, err = tx.IsEmpty()
		return err
	})
	return empty, err
}
