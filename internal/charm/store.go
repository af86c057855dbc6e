// ABOUTME: Key-value store abstraction behind the measurement client.
// ABOUTME: Backed by Charm Cloud KV for sync, or a local Badger directory.
package charm

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"
	"github.com/rs/zerolog"
)

// kvStore is the subset of key-value operations the client needs.
// *kv.KV from charm satisfies it, as does badgerStore.
type kvStore interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Close() error
}

// kvWrite is one key in a batch, with the value to restore if the batch
// cannot complete.
type kvWrite struct {
	key   []byte
	value []byte
	prev  []byte
}

// batchStore writes several keys atomically.
type batchStore interface {
	SetBatch(writes []kvWrite) error
}

// errKeyNotFound is returned by badgerStore.Get for a missing key.
var errKeyNotFound = errors.New("key not found")

// badgerStore keeps measurements in a local Badger database.
type badgerStore struct {
	db *badger.DB
}

func openBadger(dir string, log zerolog.Logger) (*badgerStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create badger directory: %w", err)
	}
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{log: log})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &badgerStore{db: db}, nil
}

func (s *badgerStore) Get(key []byte) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return errKeyNotFound
		}
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	return val, err
}

func (s *badgerStore) Set(key, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// SetBatch commits every write in one Badger transaction.
func (s *badgerStore) SetBatch(writes []kvWrite) error {
	return s.db.Update(func(txn *badger.Txn) error {
		for _, w := range writes {
			if err := txn.Set(w.key, w.value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *badgerStore) Delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (s *badgerStore) Keys() ([][]byte, error) {
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

func (s *badgerStore) Close() error {
	return s.db.Close()
}

// badgerLogger routes Badger's internal logging through zerolog.
// Info and debug chatter is demoted one level.
type badgerLogger struct {
	log zerolog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error().Str("component", "badger").Msgf(format, args...)
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn().Str("component", "badger").Msgf(format, args...)
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug().Str("component", "badger").Msgf(format, args...)
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Trace().Str("component", "badger").Msgf(format, args...)
}
