package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// BuildFunc produces a fresh result set for a FreshnessCache.
type BuildFunc func(ctx context.Context) ([]RecipeCard, error)

// FreshnessCache holds a single time-boxed slot in front of an expensive build.
// L1 is the in-process entry. L2 is an optional Redis snapshot that lets a
// restarted process reuse a still-fresh result; it expires with the TTL.
type FreshnessCache struct {
	name  string
	build BuildFunc
	ttl   time.Duration
	now   func() time.Time

	rdb   *redis.Client // nil if Redis unavailable
	l2Key string

	mu       sync.RWMutex
	entry    CacheEntry
	l2Loaded bool
	started  uint64 // rebuilds started so far
	slotGen  uint64 // start order of the rebuild that filled entry

	group singleflight.Group
}

// CacheOption configures a FreshnessCache.
type CacheOption func(*FreshnessCache)

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) CacheOption {
	return func(c *FreshnessCache) { c.now = now }
}

// WithRedis enables the L2 snapshot under key. A nil client is ignored.
func WithRedis(rdb *redis.Client, key string) CacheOption {
	return func(c *FreshnessCache) {
		if rdb == nil {
			return
		}
		c.rdb = rdb
		c.l2Key = key
	}
}

// NewFreshnessCache wraps build with a ttl-bounded slot.
func NewFreshnessCache(name string, ttl time.Duration, build BuildFunc, opts ...CacheOption) *FreshnessCache {
	c := &FreshnessCache{
		name:  name,
		build: build,
		ttl:   ttl,
		now:   time.Now,
		l2Key: "flavr:" + name,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TTL returns the configured time-to-live.
func (c *FreshnessCache) TTL() time.Duration { return c.ttl }

// Entry returns the current slot. Data must be treated as read-only.
func (c *FreshnessCache) Entry() CacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entry
}

// Get returns the cached cards while they are fresh, otherwise rebuilds.
// force skips the freshness check. A rebuild that yields zero cards still
// stamps the slot, so an empty result is served for the full TTL.
func (c *FreshnessCache) Get(ctx context.Context, force bool) ([]RecipeCard, error) {
	if force {
		entry, err := c.Refresh(ctx)
		if err != nil {
			return nil, err
		}
		return entry.Data, nil
	}

	if data, ok := c.fresh(); ok {
		CacheLookups.WithLabelValues(c.name, "hit").Inc()
		return data, nil
	}
	if data, ok := c.loadL2(ctx); ok {
		CacheLookups.WithLabelValues(c.name, "l2_hit").Inc()
		return data, nil
	}
	CacheLookups.WithLabelValues(c.name, "miss").Inc()

	v, err, _ := c.group.Do("stale", func() (any, error) {
		// Another caller may have rebuilt while we waited for the lock.
		if data, ok := c.fresh(); ok {
			return CacheEntry{Data: data}, nil
		}
		return c.rebuild(context.WithoutCancel(ctx), "stale")
	})
	if err != nil {
		return nil, err
	}
	return v.(CacheEntry).Data, nil
}

// Refresh forces a rebuild and returns the new slot. It may overlap a stale
// rebuild; whichever started later owns the slot.
func (c *FreshnessCache) Refresh(ctx context.Context) (CacheEntry, error) {
	v, err, _ := c.group.Do("forced", func() (any, error) {
		return c.rebuild(context.WithoutCancel(ctx), "forced")
	})
	if err != nil {
		return CacheEntry{}, err
	}
	return v.(CacheEntry), nil
}

// Invalidate drops the slot (and its L2 snapshot) so the next Get rebuilds.
func (c *FreshnessCache) Invalidate(ctx context.Context) {
	c.mu.Lock()
	c.entry = CacheEntry{}
	c.l2Loaded = true
	c.slotGen = c.started
	c.mu.Unlock()

	if c.rdb != nil {
		if err := c.rdb.Del(ctx, c.l2Key).Err(); err != nil {
			slog.Debug("cache: L2 delete failed", slog.String("cache", c.name), slog.Any("error", err))
		}
	}
}

func (c *FreshnessCache) fresh() ([]RecipeCard, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.entry.Timestamp.IsZero() || c.entry.Age(c.now()) >= c.ttl {
		return nil, false
	}
	return c.entry.Data, true
}

func (c *FreshnessCache) rebuild(ctx context.Context, trigger string) (CacheEntry, error) {
	c.mu.Lock()
	c.started++
	gen := c.started
	c.mu.Unlock()

	data, err := c.build(ctx)
	if err != nil {
		CacheRebuilds.WithLabelValues(c.name, trigger, "error").Inc()
		return CacheEntry{}, fmt.Errorf("rebuild %s: %w", c.name, err)
	}
	if data == nil {
		data = []RecipeCard{}
	}
	entry := CacheEntry{Timestamp: c.now(), Data: slices.Clip(data)}

	c.mu.Lock()
	if gen < c.slotGen {
		// A rebuild that started later already landed; never roll it back.
		current := c.entry
		c.mu.Unlock()
		CacheRebuilds.WithLabelValues(c.name, trigger, "superseded").Inc()
		slog.Debug("cache rebuild superseded",
			slog.String("cache", c.name),
			slog.String("trigger", trigger))
		if current.Timestamp.IsZero() {
			return entry, nil
		}
		return current, nil
	}
	c.entry = entry
	c.slotGen = gen
	c.l2Loaded = true
	c.mu.Unlock()

	CacheRebuilds.WithLabelValues(c.name, trigger, "ok").Inc()
	slog.Info("cache rebuilt",
		slog.String("cache", c.name),
		slog.String("trigger", trigger),
		slog.Int("cards", len(data)))

	c.storeL2(ctx, entry)
	return entry, nil
}

// loadL2 is consulted once, while the L1 slot has never been filled.
func (c *FreshnessCache) loadL2(ctx context.Context) ([]RecipeCard, bool) {
	if c.rdb == nil {
		return nil, false
	}
	c.mu.Lock()
	if c.l2Loaded {
		c.mu.Unlock()
		return nil, false
	}
	c.l2Loaded = true
	c.mu.Unlock()

	data, err := c.rdb.Get(ctx, c.l2Key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Warn("cache: L2 get failed", slog.String("cache", c.name), slog.Any("error", err))
		}
		return nil, false
	}
	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		slog.Warn("cache: L2 entry corrupt", slog.String("cache", c.name), slog.Any("error", err))
		return nil, false
	}
	if entry.Timestamp.IsZero() || entry.Age(c.now()) >= c.ttl {
		return nil, false
	}
	if entry.Data == nil {
		entry.Data = []RecipeCard{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.entry.Timestamp.IsZero() {
		// A rebuild landed first; it is at least as new.
		return c.entry.Data, true
	}
	c.entry = entry
	return entry.Data, true
}

func (c *FreshnessCache) storeL2(ctx context.Context, entry CacheEntry) {
	if c.rdb == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.l2Key, data, c.ttl).Err(); err != nil {
		slog.Warn("cache: L2 set failed", slog.String("cache", c.name), slog.Any("error", err))
	}
}

// NewRedisClient connects to redisURL for the L2 snapshot.
// Returns nil (L2 disabled) when the URL is empty, invalid or unreachable.
func NewRedisClient(redisURL string) *redis.Client {
	if redisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Warn("cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		return nil
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		slog.Warn("cache: redis unreachable, L2 disabled", slog.Any("error", err))
		_ = rdb.Close()
		return nil
	}
	slog.Info("cache: L2 redis connected", slog.String("addr", opts.Addr))
	return rdb
}
