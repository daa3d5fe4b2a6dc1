package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/weather-probability-service/internal/domain"
	"github.com/couchcryptid/weather-probability-service/internal/observability"
)

// Cached wraps a Service with an in-memory TTL'd LRU cache keyed by the
// request parameters. Identical requests inside the TTL return the
// memoized report; the cache only affects latency, never correctness.
type Cached struct {
	inner   Service
	cache   *ttlCache
	metrics *observability.Metrics
}

// NewCached creates a cache decorator around a service. The clock is
// injectable so tests can expire entries without sleeping.
func NewCached(inner Service, maxEntries int, ttl time.Duration, clk clockwork.Clock, metrics *observability.Metrics) *Cached {
	return &Cached{
		inner:   inner,
		cache:   newTTLCache(maxEntries, ttl, clk),
		metrics: metrics,
	}
}

func (c *Cached) Analyze(ctx context.Context, req domain.AnalysisRequest) (domain.Report, error) {
	key := requestKey(req)
	if report, result := c.cache.get(key); result == lookupHit {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return report, nil
	} else if result == lookupExpired {
		c.metrics.CacheLookups.WithLabelValues("expired").Inc()
	} else {
		c.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	report, err := c.inner.Analyze(ctx, req)
	if err != nil {
		return report, err
	}
	// Only cache fully successful reports so transient no-data outcomes
	// can be retried.
	if len(report.Failures) == 0 && len(report.Results) > 0 {
		c.cache.put(key, report)
	}
	return report, nil
}

// requestKey canonicalizes a request into a cache key. Variable order is
// preserved: it is part of the response shape.
func requestKey(req domain.AnalysisRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%.4f|%.4f|%s|%d|%d",
		req.Location.Latitude,
		req.Location.Longitude,
		req.Date.Format("01-02"),
		req.WindowDays,
		req.Years,
	)
	for _, sel := range req.Variables {
		fmt.Fprintf(&b, "|%s:%.4f", string(sel.Variable), sel.EffectiveThreshold())
	}
	return b.String()
}

type lookupResult int

const (
	lookupMiss lookupResult = iota
	lookupHit
	lookupExpired
)

// ttlCache is a thread-safe LRU cache whose entries expire after a fixed
// time-to-live.
type ttlCache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key      string
	value    domain.Report
	storedAt time.Time
	prev     *entry
	next     *entry
}

func newTTLCache(maxEntries int, ttl time.Duration, clk clockwork.Clock) *ttlCache {
	return &ttlCache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clk,
		entries:    make(map[string]*entry),
	}
}

func (c *ttlCache) get(key string) (domain.Report, lookupResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return domain.Report{}, lookupMiss
	}
	if c.clock.Since(e.storedAt) >= c.ttl {
		delete(c.entries, e.key)
		c.remove(e)
		return domain.Report{}, lookupExpired
	}
	c.moveToFront(e)
	return e.value, lookupHit
}

func (c *ttlCache) put(key string, value domain.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.storedAt = now
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, storedAt: now}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *ttlCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *ttlCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *ttlCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *ttlCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
