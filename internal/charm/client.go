// ABOUTME: Charm KV client wrapper for growth measurement storage.
// ABOUTME: Provides thread-safe initialization, automatic cloud sync and a local Badger mode.
package charm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/rs/zerolog"
)

const (
	// DBName is the Charm KV database name.
	DBName    = "growth"
	charmHost = "charm.2389.dev"

	MeasurementPrefix = "measurement:"
)

// ErrReadOnly is returned for writes while another process holds the lock.
var ErrReadOnly = errors.New("cannot write: database is locked by another process (MCP server?)")

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error
)

// Client stores measurements as JSON values under type-prefixed keys.
type Client struct {
	kv       kvStore
	remote   *kv.KV
	autoSync bool
	mu       sync.RWMutex
	log      zerolog.Logger
}

// InitClient initializes the global Charm Cloud client.
// Thread-safe; can be called multiple times.
func InitClient(log zerolog.Logger) (*Client, error) {
	clientOnce.Do(func() {
		if os.Getenv("CHARM_HOST") == "" {
			if err := os.Setenv("CHARM_HOST", charmHost); err != nil {
				clientErr = err
				return
			}
		}

		db, err := kv.OpenWithDefaultsFallback(DBName)
		if err != nil {
			clientErr = err
			return
		}

		globalClient = &Client{
			kv:       db,
			remote:   db,
			autoSync: true,
			log:      log.With().Str("backend", "charm").Logger(),
		}

		// Pull remote data on startup (skip in read-only mode)
		if !db.IsReadOnly() {
			if err := db.Sync(); err != nil {
				globalClient.log.Warn().Err(err).Msg("initial sync failed")
			}
		}
	})

	return globalClient, clientErr
}

// OpenLocal opens a Badger-backed client in dir. It never syncs.
func OpenLocal(dir string, log zerolog.Logger) (*Client, error) {
	store, err := openBadger(dir, log)
	if err != nil {
		return nil, err
	}
	return &Client{
		kv:  store,
		log: log.With().Str("backend", "badger").Logger(),
	}, nil
}

// Close closes the KV database connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.kv != nil {
		return c.kv.Close()
	}
	return nil
}

// IsRemote reports whether the client is backed by Charm Cloud.
func (c *Client) IsRemote() bool {
	return c.remote != nil
}

// IsReadOnly returns true if the database is open in read-only mode.
// This happens when another process (like an MCP server) holds the lock.
func (c *Client) IsReadOnly() bool {
	return c.remote != nil && c.remote.IsReadOnly()
}

// Sync synchronizes local state with Charm Cloud. A no-op for local stores.
func (c *Client) Sync() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.remote == nil || c.remote.IsReadOnly() {
		return nil
	}
	return c.remote.Sync()
}

// syncIfEnabled calls Sync if autoSync is enabled.
func (c *Client) syncIfEnabled() {
	if c.autoSync && c.remote != nil && !c.remote.IsReadOnly() {
		if err := c.remote.Sync(); err != nil {
			c.log.Warn().Err(err).Msg("sync after write failed")
		}
	}
}

// SetAutoSync enables or disables automatic sync after writes.
func (c *Client) SetAutoSync(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoSync = enabled
}

// ID returns the Charm user ID for the current account.
func (c *Client) ID() (string, error) {
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("create charm client: %w", err)
	}
	return cc.ID()
}

// Reset wipes local data and rebuilds from Charm Cloud.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remote == nil {
		return errors.New("reset requires the charm backend")
	}
	return c.remote.Reset()
}

// set stores a value with the given key. Caller holds c.mu.
func (c *Client) set(key string, data []byte) error {
	if c.IsReadOnly() {
		return ErrReadOnly
	}
	if err := c.kv.Set([]byte(key), data); err != nil {
		return err
	}
	c.syncIfEnabled()
	return nil
}

// setBatch writes every entry or none. Stores without batch support write
// in order and put back the previous values when a write fails.
// Caller holds c.mu.
func (c *Client) setBatch(writes []kvWrite) error {
	if c.IsReadOnly() {
		return ErrReadOnly
	}

	if b, ok := c.kv.(batchStore); ok {
		if err := b.SetBatch(writes); err != nil {
			return err
		}
		c.syncIfEnabled()
		return nil
	}

	for i, w := range writes {
		if err := c.kv.Set(w.key, w.value); err != nil {
			for _, done := range writes[:i] {
				if rerr := c.kv.Set(done.key, done.prev); rerr != nil {
					c.log.Error().Err(rerr).Str("key", string(done.key)).Msg("rollback failed")
				}
			}
			return err
		}
	}
	c.syncIfEnabled()
	return nil
}

// entry is a raw key with its value.
type entry struct {
	key   []byte
	value []byte
}

// scanPrefix returns all entries whose keys start with prefix. Caller holds c.mu.
func (c *Client) scanPrefix(prefix string) ([]entry, error) {
	keys, err := c.kv.Keys()
	if err != nil {
		return nil, err
	}

	var out []entry
	prefixBytes := []byte(prefix)
	for _, key := range keys {
		if !bytes.HasPrefix(key, prefixBytes) {
			continue
		}
		val, err := c.kv.Get(key)
		if err != nil {
			return nil, err
		}
		out = append(out, entry{key: key, value: val})
	}
	return out, nil
}

// hasKey reports whether key exists. Caller holds c.mu.
func (c *Client) hasKey(key string) (bool, error) {
	keys, err := c.kv.Keys()
	if err != nil {
		return false, err
	}
	for _, k := range keys {
		if string(k) == key {
			return true, nil
		}
	}
	return false, nil
}

// unmarshalJSON is a helper to unmarshal JSON data.
func unmarshalJSON[T any](data []byte) (*T, error) {
	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// marshalJSON is a helper to marshal data to JSON.
func marshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}
