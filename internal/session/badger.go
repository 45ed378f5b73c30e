// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"
)

// BadgerStore is an embedded Store using Badger's native entry TTLs.
type BadgerStore struct {
	db      *badger.DB
	logger  zerolog.Logger
	janitor *janitor
}

// OpenBadgerStore opens a Badger database in dir. An empty dir opens an in-memory instance.
// A positive gcInterval runs value-log garbage collection in the background.
func OpenBadgerStore(dir string, gcInterval time.Duration, logger zerolog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger session store: %w", err)
	}

	s := &BadgerStore{db: db, logger: logger}
	if dir != "" {
		s.janitor = startJanitor(gcInterval, s.runGC)
	}
	return s, nil
}

func (s *BadgerStore) runGC() {
	for {
		err := s.db.RunValueLogGC(0.5)
		if err == nil {
			continue
		}
		if !errors.Is(err, badger.ErrNoRewrite) && !errors.Is(err, badger.ErrRejected) {
			s.logger.Warn().Err(err).Str("event", "session.badger_gc_failed").Msg("badger value log gc failed")
		}
		return
	}
}

// Get implements Store.
func (s *BadgerStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger get: %w", err)
	}
	return out, true, nil
}

// Set implements Store.
func (s *BadgerStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), cloneBytes(value))
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("badger set: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *BadgerStore) Delete(_ context.Context, key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("badger delete: %w", err)
	}
	return nil
}

// Take implements Store. Badger transactions are optimistic: when two takers race, the
// losing commit fails with ErrConflict, which is reported as absent because the winner
// already removed the key.
func (s *BadgerStore) Take(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return txn.Delete([]byte(key))
	})
	switch {
	case err == nil:
		return out, true, nil
	case errors.Is(err, badger.ErrKeyNotFound), errors.Is(err, badger.ErrConflict):
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("badger take: %w", err)
	}
}

// Update implements Store. A commit that loses against a concurrent writer fails with
// ErrConflict and the whole read-modify-write is retried.
func (s *BadgerStore) Update(_ context.Context, key string, ttl time.Duration, fn UpdateFunc) error {
	k := []byte(key)
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.db.Update(func(txn *badger.Txn) error {
			var current []byte
			found := false
			item, err := txn.Get(k)
			switch {
			case err == nil:
				if current, err = item.ValueCopy(nil); err != nil {
					return err
				}
				found = true
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}

			next, err := fn(current, found)
			if err != nil {
				return err
			}
			e := badger.NewEntry(k, cloneBytes(next))
			if ttl > 0 {
				e = e.WithTTL(ttl)
			}
			return txn.SetEntry(e)
		})
		if errors.Is(err, badger.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("badger update: %w", err)
		}
		return nil
	}
	return fmt.Errorf("badger update %q: %w", key, ErrContention)
}

// Close stops garbage collection and closes the database.
func (s *BadgerStore) Close() error {
	s.janitor.Stop()
	return s.db.Close()
}
