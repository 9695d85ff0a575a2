package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/sam-maryland/losers-bracket/internal/bracket"
	"github.com/sam-maryland/losers-bracket/internal/metrics"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTTL keeps live scores close to real time without hitting the
	// feed on every request.
	DefaultTTL = 90 * time.Second

	// DefaultFailureTTL caps how long an aggregation without live scores is
	// served before the live feed is tried again.
	DefaultFailureTTL = 15 * time.Second

	// DefaultComputeTimeout bounds a shared computation once it no longer
	// belongs to any single caller.
	DefaultComputeTimeout = 30 * time.Second
)

// CacheKey identifies one aggregation. Every input that changes the tally is
// part of the key.
type CacheKey struct {
	LeagueID    string
	Season      int
	Cutoff      int
	Window      bracket.Window
	CurrentWeek int
}

func (k CacheKey) String() string {
	return fmt.Sprintf("%s/%d/%d/%s/%d", k.LeagueID, k.Season, k.Cutoff, k.Window, k.CurrentWeek)
}

// Cache memoizes aggregations for a TTL. Concurrent misses for the same key
// share one computation. An aggregation whose live fetch failed is kept for
// the shorter failure TTL.
type Cache struct {
	ttl            time.Duration
	failureTTL     time.Duration
	computeTimeout time.Duration
	recorder       *metrics.Recorder

	store *ttlcache.Cache[CacheKey, bracket.Aggregation]
	group singleflight.Group
}

// NewCache creates a cache. A zero ttl disables storage.
func NewCache(ttl time.Duration, recorder *metrics.Recorder) *Cache {
	failureTTL := DefaultFailureTTL
	if ttl < failureTTL {
		failureTTL = ttl
	}
	return &Cache{
		ttl:            ttl,
		failureTTL:     failureTTL,
		computeTimeout: DefaultComputeTimeout,
		recorder:       recorder,
		store: ttlcache.New[CacheKey, bracket.Aggregation](
			ttlcache.WithTTL[CacheKey, bracket.Aggregation](ttl),
			ttlcache.WithDisableTouchOnHit[CacheKey, bracket.Aggregation](),
		),
	}
}

// WithComputeTimeout sets the deadline of a shared computation.
func (c *Cache) WithComputeTimeout(d time.Duration) *Cache {
	if d > 0 {
		c.computeTimeout = d
	}
	return c
}

// GetOrCompute returns the stored aggregation for key or computes it. The
// computation runs detached from ctx so that one caller giving up does not
// fail the others waiting on the same key; each caller still returns
// ctx.Err() as soon as its own context ends.
func (c *Cache) GetOrCompute(ctx context.Context, key CacheKey, compute func(context.Context) bracket.Aggregation) (bracket.Aggregation, error) {
	if item := c.store.Get(key); item != nil {
		c.recorder.RecordCacheLookup(true)
		return item.Value(), nil
	}
	c.recorder.RecordCacheLookup(false)

	ch := c.group.DoChan(key.String(), func() (interface{}, error) {
		if item := c.store.Get(key); item != nil {
			return item.Value(), nil
		}
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.computeTimeout)
		defer cancel()

		agg := compute(cctx)
		c.set(key, agg)
		return agg, nil
	})

	select {
	case res := <-ch:
		return res.Val.(bracket.Aggregation), nil
	case <-ctx.Done():
		return bracket.Aggregation{}, ctx.Err()
	}
}

// Invalidate drops every stored aggregation.
func (c *Cache) Invalidate() {
	c.store.DeleteAll()
}

// Len is the number of unexpired entries.
func (c *Cache) Len() int {
	return c.store.Len()
}

func (c *Cache) set(key CacheKey, agg bracket.Aggregation) {
	ttl := c.ttl
	if agg.Live.Attempted && !agg.Live.Available {
		ttl = c.failureTTL
	}
	if ttl <= 0 {
		return
	}
	c.store.DeleteExpired()
	c.store.Set(key, agg, ttl)
}
