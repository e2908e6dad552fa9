package records

import (
	"context"
	"sync"
	"time"

	"reconciler/core/metrics"
	"reconciler/core/reconcile"

	"golang.org/x/sync/singleflight"
)

// CacheConfig holds configuration for the record set cache.
type CacheConfig struct {
	// TTLSeconds is how long a loaded record set is reused. Zero disables caching.
	TTLSeconds int `mapstructure:"ttl_seconds" default:"60"`
}

// TTL returns the cache lifetime.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.TTLSeconds) * time.Second
}

// cachedSet is one loaded record set.
type cachedSet struct {
	records []reconcile.Record
	built   time.Time
	ttl     time.Duration
}

// isExpired returns true if this set has outlived its TTL.
func (c *cachedSet) isExpired() bool {
	if c.ttl == 0 {
		return true
	}
	return time.Since(c.built) > c.ttl
}

// CachedSource wraps a Source with a TTL cache keyed by source name and ref.
// Concurrent loads of the same ref share one underlying Load.
// Returned slices are shared between callers and must not be mutated.
type CachedSource struct {
	inner Source
	ttl   time.Duration

	mu   sync.RWMutex
	sets map[string]*cachedSet
	sf   singleflight.Group
}

// NewCachedSource wraps inner. A zero ttl passes every Load through.
func NewCachedSource(inner Source, ttl time.Duration) *CachedSource {
	return &CachedSource{
		inner: inner,
		ttl:   ttl,
		sets:  make(map[string]*cachedSet),
	}
}

// Name implements Source.
func (c *CachedSource) Name() string {
	return c.inner.Name()
}

func (c *CachedSource) key(ref string) string {
	return c.inner.Name() + "|" + ref
}

// Load implements Source.
func (c *CachedSource) Load(ctx context.Context, ref string) ([]reconcile.Record, error) {
	if c.ttl <= 0 {
		metrics.CacheMiss(c.inner.Name())
		return c.inner.Load(ctx, ref)
	}

	key := c.key(ref)

	// Fast path
	c.mu.RLock()
	set, exists := c.sets[key]
	c.mu.RUnlock()

	if exists && !set.isExpired() {
		metrics.CacheHit(c.inner.Name())
		return set.records, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Another caller may have filled the entry while we waited.
		c.mu.RLock()
		set, exists := c.sets[key]
		c.mu.RUnlock()

		if exists && !set.isExpired() {
			metrics.CacheHit(c.inner.Name())
			return set, nil
		}

		metrics.CacheMiss(c.inner.Name())
		recs, err := c.inner.Load(ctx, ref)
		if err != nil {
			return nil, err
		}

		fresh := &cachedSet{records: recs, built: time.Now(), ttl: c.ttl}
		c.mu.Lock()
		c.sets[key] = fresh
		c.mu.Unlock()

		return fresh, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*cachedSet).records, nil
}

// Invalidate drops the cached set for ref so the next Load reads the source.
func (c *CachedSource) Invalidate(ref string) {
	c.mu.Lock()
	delete(c.sets, c.key(ref))
	c.mu.Unlock()
}
