// Package store persists usage statistics in a Badger database.
package store

import (
	"encoding/json"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/bibleclock/bibleclock-server/internal/errors"
	"github.com/bibleclock/bibleclock-server/internal/logger"
)

// Store wraps a Badger database instance. The mutex serializes the
// read-modify-write statistics updates.
type Store struct {
	db     *badger.DB
	logger *logger.Logger
	mu     sync.Mutex
}

// Open opens (or creates) the database at path.
func Open(path string, log *logger.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Badger's internal logging is noise here
	opts.SyncWrites = true       // the device may lose power at any minute boundary
	opts.CompactL0OnClose = true // compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInternal, "open badger db at %s", path)
	}

	log.Info("statistics database opened", "path", path)
	return &Store{db: db, logger: log}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// get retrieves and unmarshals a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set marshals and stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "marshal value")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}
