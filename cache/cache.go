package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/use-agent/domhash/domhash"
	"github.com/use-agent/domhash/models"
)

// Cache statuses reported to callers.
const (
	StatusHit    = "hit"
	StatusMiss   = "miss"
	StatusShared = "shared" // joined a computation already in flight
)

// Cache memoizes digest results per (content, options) key.
// It is safe for concurrent use; at most one computation runs per key.
type Cache struct {
	store      *lru.Cache[string, *domhash.Result]
	group      singleflight.Group
	maxEntries int

	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a Cache holding at most maxEntries results; the least
// recently used entry is evicted first.
func New(maxEntries int) (*Cache, error) {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	store, err := lru.New[string, *domhash.Result](maxEntries)
	if err != nil {
		return nil, err
	}
	return &Cache{store: store, maxEntries: maxEntries}, nil
}

// Key derives a cache key from content and the options fingerprint.
func Key(content string, opts domhash.Options) string {
	h := sha256.New()
	h.Write([]byte(opts.Fingerprint()))
	h.Write([]byte("|"))
	h.Write([]byte(content))
	return hex.EncodeToString(h.Sum(nil))
}

// Get retrieves a cached result.
func (c *Cache) Get(key string) (*domhash.Result, bool) {
	res, ok := c.store.Get(key)
	if ok {
		c.hits.Add(1)
	}
	return res, ok
}

// Set stores a result.
func (c *Cache) Set(key string, res *domhash.Result) {
	c.store.Add(key, res)
}

// Do returns the cached result for key or runs compute once, sharing the
// outcome with concurrent callers for the same key. Failures are not cached.
func (c *Cache) Do(key string, compute func() (*domhash.Result, error)) (*domhash.Result, string, error) {
	if res, ok := c.Get(key); ok {
		return res, StatusHit, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		if res, ok := c.store.Get(key); ok {
			return res, nil
		}
		c.misses.Add(1)
		res, err := compute()
		if err != nil {
			return nil, err
		}
		c.store.Add(key, res)
		return res, nil
	})
	if err != nil {
		return nil, "", err
	}

	status := StatusMiss
	if shared {
		status = StatusShared
	}
	return v.(*domhash.Result), status, nil
}

// Generate digests content through e, memoized under e's options.
func (c *Cache) Generate(e *domhash.Engine, content string) (*domhash.Result, string, error) {
	return c.Do(Key(content, e.Options()), func() (*domhash.Result, error) {
		return e.Generate(content)
	})
}

// Stats reports cache occupancy and counters.
func (c *Cache) Stats() models.CacheStats {
	return models.CacheStats{
		Entries:    c.store.Len(),
		MaxEntries: c.maxEntries,
		Hits:       c.hits.Load(),
		Misses:     c.misses.Load(),
	}
}
