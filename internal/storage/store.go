// Package storage persists streak data in an embedded badger database.
//
// Four relations live in one keyspace, separated by prefix: daily post
// records, per-(channel, user) streak rows, the tracked-channel set and the
// tracking-mode setting. Mutations go through Update, which holds a
// process-wide writer lock for the whole callback and commits it as one
// transaction. Reads go through View and see a consistent snapshot without
// taking the lock.
package storage

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"streakd/internal/models"
	"streakd/internal/structures"
)

type Options struct {
	Path       string
	SyncWrites bool
	// InMemory keeps everything in RAM; Path is ignored.
	InMemory bool
}

type Store struct {
	db     *badger.DB
	mu     sync.Mutex
	closed bool
}

// Open opens (or creates) the database directory at opts.Path, creating
// missing parent directories, and seeds the tracking mode.
func Open(opts Options) (*Store, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, fmt.Errorf("%w: empty storage path", models.ErrInvalidInput)
		}
		if err := os.MkdirAll(opts.Path, 0755); err != nil {
			return nil, fmt.Errorf("%w: create %s: %w", models.ErrStoreUnavailable, opts.Path, err)
		}
		bopts = badger.DefaultOptions(opts.Path)
		bopts.SyncWrites = opts.SyncWrites
	}
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("%w: open badger: %w", models.ErrStoreUnavailable, err)
	}

	s := &Store{db: db}
	if err := s.Update(func(tx *Tx) error { return tx.initTrackingMode() }); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore opens the store described by the daemon configuration. The
// returned cleanup closes it.
func NewStore(conf *structures.Config) (*Store, func(), error) {
	s, err := Open(Options{Path: conf.Storage.Path, SyncWrites: conf.Storage.SyncWrites})
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}

// Close is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Update runs fn under the writer lock inside a read-write transaction.
// Either everything fn wrote commits or nothing does.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: store is closed", models.ErrStoreUnavailable)
	}
	return wrapErr(s.db.Update(func(txn *badger.Txn) error {
		return fn(&Tx{txn: txn})
	}))
}

// View runs fn against a read-only snapshot.
func (s *Store) View(fn func(tx *Tx) error) error {
	return wrapErr(s.db.View(func(txn *badger.Txn) error {
		return fn(&Tx{txn: txn})
	}))
}

func wrapErr(err error) error {
	if err == nil || errors.Is(err, models.ErrInvalidInput) || errors.Is(err, models.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", models.ErrStoreUnavailable, err)
}
