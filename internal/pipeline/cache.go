package pipeline

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheTTL bounds how long synthesized prompts are reused.
const DefaultCacheTTL = 30 * time.Minute

// DefaultCacheSize bounds how many synthesized plans are kept.
const DefaultCacheSize = 128

type cacheEntry struct {
	scenes    []SceneSpec
	timeline  []TimelineEntry
	createdAt time.Time
	ttl       time.Duration
}

// PromptCache memoizes prompt synthesizer output keyed by a content
// fingerprint. Entries expire lazily: expiry is checked on read and an expired
// entry is deleted by the read that discovers it. Entries are immutable once
// written, so the underlying concurrent LRU needs no extra locking.
//
// The cache holds prompt output only. Remote job handles are single-use and
// time-bound and must never be stored here.
type PromptCache struct {
	entries *lru.Cache[string, cacheEntry]
	now     func() time.Time
}

// NewPromptCache creates a cache bounded to maxEntries.
func NewPromptCache(maxEntries int) (*PromptCache, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheSize
	}
	entries, err := lru.New[string, cacheEntry](maxEntries)
	if err != nil {
		return nil, err
	}
	return &PromptCache{entries: entries, now: time.Now}, nil
}

// Get returns the cached scene plan, or ok=false when the key is absent or
// expired. A nil cache always misses.
func (c *PromptCache) Get(key string) ([]SceneSpec, []TimelineEntry, bool) {
	if c == nil {
		return nil, nil, false
	}
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, nil, false
	}
	if e.ttl <= 0 || c.now().Sub(e.createdAt) > e.ttl {
		c.entries.Remove(key)
		return nil, nil, false
	}
	return e.scenes, e.timeline, true
}

// Put stores a scene plan under key. A zero or negative ttl means
// already-expired, so the entry is not stored at all.
func (c *PromptCache) Put(key string, scenes []SceneSpec, timeline []TimelineEntry, ttl time.Duration) {
	if c == nil || ttl <= 0 {
		return
	}
	c.entries.Add(key, cacheEntry{
		scenes:    scenes,
		timeline:  timeline,
		createdAt: c.now(),
		ttl:       ttl,
	})
}

// Len reports the number of stored entries, counting not-yet-collected
// expired ones.
func (c *PromptCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
