// Package cache provides the bounded, expiring store used for oEmbed and
// Gist responses.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Default limits.
const (
	DefaultSize = 1024
	DefaultTTL  = 24 * time.Hour
)

type entry struct {
	value  string
	stored time.Time
}

// Cache is an LRU-bounded string cache whose entries expire after a TTL.
// It is safe for concurrent use.
type Cache struct {
	lru *lru.Cache[string, entry]
	ttl time.Duration
	now func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock sets the time source used for expiry. Panics if now is nil.
func WithClock(now func() time.Time) Option {
	if now == nil {
		panic("cache: WithClock requires a non-nil clock")
	}
	return func(c *Cache) {
		c.now = now
	}
}

// New creates a Cache holding at most size entries for ttl each.
// Non-positive values select the defaults.
func New(size int, ttl time.Duration, opts ...Option) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	// lru.New only fails on a non-positive size.
	l, _ := lru.New[string, entry](size)
	c := &Cache{lru: l, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key if present and not expired.
// Expired entries are removed.
func (c *Cache) Get(key string) (string, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return "", false
	}
	if c.now().Sub(e.stored) >= c.ttl {
		c.lru.Remove(key)
		return "", false
	}
	return e.value, true
}

// Set stores value under key, evicting the least recently used entry when
// the cache is full.
func (c *Cache) Set(key, value string) {
	c.lru.Add(key, entry{value: value, stored: c.now()})
}

// Len returns the number of entries, including ones not yet found expired.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge removes every entry.
func (c *Cache) Purge() {
	c.lru.Purge()
}
