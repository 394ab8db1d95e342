package cache

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	_ Store = NewMemoryStore()
	_ Store = RedisStore{}
)

// A Store keeps Entries by key until they expire.
//
// Get reports false for a key without an Entry or with an expired one.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool)
	Set(ctx context.Context, key string, e Entry, ttl time.Duration) error
}

// An Entry is a rendered response body and the content type it was rendered with.
type Entry struct {
	Body        []byte
	ContentType string
}

// A MemoryStore keeps Entries in a map.
//
// Server restarts reset this map.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	Entry

	expires time.Time
}

// NewMemoryStore constructs an empty *MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

// Get retrieves the Entry paired to key much like a regular map.
func (m *MemoryStore) Get(ctx context.Context, key string) (Entry, bool) {
	if key == "" {
		return Entry{}, false
	}

	select {
	case <-ctx.Done():
		return Entry{}, false

	default:
		m.mu.Lock()
		defer m.mu.Unlock()

		e, ok := m.entries[key]
		if !ok {
			return Entry{}, false
		}

		if !e.expires.IsZero() && !m.now().Before(e.expires) {
			delete(m.entries, key)
			return Entry{}, false
		}

		return e.Entry, true
	}
}

// Set overwrites the Entry paired to key.
// A ttl of zero or less never expires.
//
// For each call to Set, expired Entries are evicted.
// An empty key is ignored.
func (m *MemoryStore) Set(ctx context.Context, key string, e Entry, ttl time.Duration) error {
	if key == "" {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()

	default:
		m.mu.Lock()
		defer m.mu.Unlock()

		now := m.now()
		for k, v := range m.entries {
			if !v.expires.IsZero() && !now.Before(v.expires) {
				delete(m.entries, k)
			}
		}

		var expires time.Time
		if ttl > 0 {
			expires = now.Add(ttl)
		}

		m.entries[key] = memoryEntry{Entry: e, expires: expires}
		return nil
	}
}

// A RedisStore connects to a Redis backend
// for the purposes of caching rendered responses.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore constructs a RedisStore with the options passed in.
// Every key is stored under prefix.
func NewRedisStore(opts *redis.Options, prefix string) RedisStore {
	return RedisStore{client: redis.NewClient(opts), prefix: prefix}
}

// Get retrieves the Entry paired to key from the connected Redis backend.
func (r RedisStore) Get(ctx context.Context, key string) (Entry, bool) {
	select {
	case <-ctx.Done():
		return Entry{}, false

	default:
		b, err := r.client.Get(ctx, r.prefix+key).Bytes()
		if err != nil {
			return Entry{}, false
		}

		var e Entry
		if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&e); err != nil {
			return Entry{}, false
		}

		return e, true
	}
}

// Set saves the Entry by pairing it to the key in the Redis backend.
// A ttl of zero or less never expires.
func (r RedisStore) Set(ctx context.Context, key string, e Entry, ttl time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()

	default:
		b := new(bytes.Buffer)
		if err := gob.NewEncoder(b).Encode(e); err != nil {
			return fmt.Errorf("cannot encode %s: %w", key, err)
		}

		if ttl < 0 {
			ttl = 0
		}

		if err := r.client.Set(ctx, r.prefix+key, b.Bytes(), ttl).Err(); err != nil {
			return fmt.Errorf("cannot cache %s: %w", key, err)
		}

		return nil
	}
}

// Close releases the connections to the Redis backend.
func (r RedisStore) Close() error { return r.client.Close() }
