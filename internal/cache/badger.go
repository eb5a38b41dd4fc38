package cache

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/jdg-tools/jdg/internal/parser"
)

// Key prefixes for the BadgerDB key scheme.
const (
	prefixModel = "m:"
	keySchema   = "meta:schema"
)

// schemaVersion is bumped whenever the stored ClassModel shape or the
// extraction rules change. Opening a store with another version drops every
// cached model.
const schemaVersion = "1"

// Badger is a persistent store backed by BadgerDB. Models are stored as JSON.
type Badger struct {
	db *badger.DB
}

// NewBadger opens (or creates) a BadgerDB-backed store at dir.
func NewBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // suppress badger logs
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}
	s := &Badger{db: db}
	if err := s.checkSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func modelKey(key string) []byte { return []byte(prefixModel + key) }

// checkSchema clears stale models when the stored schema version differs.
func (s *Badger) checkSchema() error {
	var current string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keySchema))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			current = string(val)
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("read cache schema: %w", err)
	}
	if current == schemaVersion {
		return nil
	}
	if _, err := s.Clear(); err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keySchema), []byte(schemaVersion))
	})
}

func (s *Badger) Get(key string) (*parser.ClassModel, bool, error) {
	var model *parser.ClassModel
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(modelKey(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var m parser.ClassModel
			if err := json.Unmarshal(val, &m); err != nil {
				return err
			}
			model = &m
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get model %s: %w", key, err)
	}
	return model, true, nil
}

func (s *Badger) Put(key string, model *parser.ClassModel) error {
	data, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(modelKey(key), data)
	})
}

// Count returns the number of cached models.
func (s *Badger) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixModel)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(opts.Prefix); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Clear removes every cached model and returns how many were dropped.
func (s *Badger) Clear() (int, error) {
	prefix := []byte(prefixModel)

	// Collect keys first, then delete in batches.
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan cache: %w", err)
	}

	// Delete in batches to avoid transaction size limits.
	const batchSize = 1000
	for i := 0; i < len(keys); i += batchSize {
		end := min(i+batchSize, len(keys))
		batch := keys[i:end]
		err := s.db.Update(func(txn *badger.Txn) error {
			for _, key := range batch {
				if err := txn.Delete(key); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("clear cache: %w", err)
		}
	}
	return len(keys), nil
}

func (s *Badger) Close() error {
	return s.db.Close()
}
