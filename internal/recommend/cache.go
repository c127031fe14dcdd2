package recommend

import (
	"context"
	"sync"
	"time"
)

// GenerationRetention is how long an invalidation stamp outlives its last bump.
// It must exceed the slowest history fetch.
const GenerationRetention = 24 * time.Hour

// ProfileCache memoizes analyzed records per user+category. Implementations must
// return copies or immutable values; Invalidate must be called whenever a new
// answer is recorded for the pair.
//
// Every Invalidate moves the pair to a new generation. A caller reads Generation
// before fetching history and passes it to Set, which refuses with ErrStaleProfile
// once the generation has moved on. A record computed from history that predates
// an answer therefore never lands in the cache.
type ProfileCache interface {
	Get(ctx context.Context, userID, category string) (*PerformanceRecord, bool)
	Generation(ctx context.Context, userID, category string) (uint64, error)
	Set(ctx context.Context, rec *PerformanceRecord, gen uint64) error
	Invalidate(ctx context.Context, userID, category string) error
}

type memoryEntry struct {
	rec       *PerformanceRecord
	expiresAt time.Time
}

type memoryGeneration struct {
	value   uint64
	touched time.Time
}

// MemoryCache is a process-local ProfileCache with a fixed TTL.
type MemoryCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]memoryEntry
	// 代数取自全局递增序号，清理后也不会复用旧值
	gens map[string]memoryGeneration
	seq  uint64
	now  func() time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		gens:    make(map[string]memoryGeneration),
		now:     time.Now,
	}
}

func memoryKey(userID, category string) string {
	return userID + "\x00" + category
}

func (c *MemoryCache) Get(_ context.Context, userID, category string) (*PerformanceRecord, bool) {
	c.mu.RLock()
	entry, ok := c.entries[memoryKey(userID, category)]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.rec.clone(), true
}

func (c *MemoryCache) Generation(_ context.Context, userID, category string) (uint64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gens[memoryKey(userID, category)].value, nil
}

func (c *MemoryCache) Set(_ context.Context, rec *PerformanceRecord, gen uint64) error {
	if c.ttl <= 0 {
		return nil
	}
	key := memoryKey(rec.UserID, rec.Category)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key].value != gen {
		return ErrStaleProfile
	}
	c.entries[key] = memoryEntry{
		rec:       rec.clone(),
		expiresAt: c.now().Add(c.ttl),
	}
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, userID, category string) error {
	key := memoryKey(userID, category)

	c.mu.Lock()
	c.seq++
	c.gens[key] = memoryGeneration{value: c.seq, touched: c.now()}
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// Purge drops expired entries and generations idle for GenerationRetention.
func (c *MemoryCache) Purge() {
	now := c.now()
	c.mu.Lock()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	for k, g := range c.gens {
		if now.Sub(g.touched) > GenerationRetention {
			delete(c.gens, k)
		}
	}
	c.mu.Unlock()
}

// Len is the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
