package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Memory is an in-process Store on an in-memory badger instance. Selected with
// REDIS_ADDR=memory for single-instance development runs; entries are lost on restart.
type Memory struct {
	db *badger.DB
}

var _ Store = (*Memory)(nil)

// NewMemory opens an empty in-memory store. Close releases it.
func NewMemory() (*Memory, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}
	return &Memory{db: db}, nil
}

// Get returns the value, or nil without error when the key is missing or expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := m.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("memory get %s: %w", key, err)
	}
	return value, nil
}

// Set stores value; a positive ttl makes the entry expire.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("memory set %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (m *Memory) Delete(_ context.Context, key string) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("memory delete %s: %w", key, err)
	}
	return nil
}

// Close releases the store.
func (m *Memory) Close() error {
	return m.db.Close()
}
