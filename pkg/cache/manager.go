package cache

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrCacheMiss indicates the requested key was not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// DefaultRetention is how long a stale entry is kept for revalidation.
const DefaultRetention = 24 * time.Hour

// Manager handles caching operations with Redis backend.
type Manager struct {
	redis     redis.UniversalClient
	retention time.Duration
}

// NewManager creates a new cache manager with Redis backend.
// Stale entries are kept for retention after they expire so they can be
// revalidated; retention <= 0 selects DefaultRetention.
func NewManager(redisClient redis.UniversalClient, retention time.Duration) *Manager {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Manager{
		redis:     redisClient,
		retention: retention,
	}
}

// Get retrieves a cache entry by key. Stale entries are returned as well;
// callers check IsExpired.
// Returns ErrCacheMiss if the key doesn't exist.
func (m *Manager) Get(ctx context.Context, key string) (*Entry, error) {
	data, err := m.redis.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			CacheMisses.Inc()
			return nil, ErrCacheMiss
		}
		CacheErrors.WithLabelValues("get").Inc()
		return nil, errors.Wrap(err, "redis get")
	}

	var entry Entry
	if err := sonic.Unmarshal(data, &entry); err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		_ = m.Delete(ctx, key)
		return nil, errors.Mark(errors.Wrap(err, "decode cache entry"), ErrInvalidEntry)
	}

	return &entry, nil
}

// Set stores a cache entry. Redis drops it once both the freshness window
// and the retention window have passed.
func (m *Manager) Set(ctx context.Context, key string, entry *Entry) error {
	if entry == nil {
		return errors.New("cache entry cannot be nil")
	}

	data, err := sonic.Marshal(entry)
	if err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return errors.Wrap(err, "marshal cache entry")
	}

	ttl := entry.TTL() + m.retention
	if err := m.redis.Set(ctx, key, data, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return errors.Wrap(err, "redis set")
	}

	return nil
}

// Delete removes a cache entry.
func (m *Manager) Delete(ctx context.Context, key string) error {
	if err := m.redis.Del(ctx, key).Err(); err != nil {
		CacheErrors.WithLabelValues("delete").Inc()
		return errors.Wrap(err, "redis del")
	}
	return nil
}

// Refresh extends a revalidated entry with a new freshness deadline.
// This is used after a 304 Not Modified response.
func (m *Manager) Refresh(ctx context.Context, key string, entry *Entry, expires time.Time) error {
	if entry == nil {
		return errors.New("cache entry cannot be nil")
	}
	refreshed := *entry
	refreshed.Expires = expires
	refreshed.CachedAt = time.Now()
	return m.Set(ctx, key, &refreshed)
}

// Retention returns the stale retention window.
func (m *Manager) Retention() time.Duration {
	return m.retention
}
