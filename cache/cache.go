// Package cache is an in-memory TTL cache for rendered captures, keyed
// by the capture parameters. It keeps the demo app from re-rendering
// the same page on every form submit.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"
)

// entry holds one cached capture with its creation timestamp.
type entry struct {
	image     []byte
	format    string
	createdAt time.Time
}

// Cache is a bounded in-memory capture cache. It is safe for
// concurrent use.
type Cache struct {
	mu         sync.RWMutex
	store      map[string]*entry
	maxEntries int
	ttl        time.Duration
}

// New creates a Cache holding at most maxEntries captures, each valid
// for ttl. A background goroutine sweeps expired entries every 5
// minutes.
func New(maxEntries int, ttl time.Duration) *Cache {
	c := &Cache{
		store:      make(map[string]*entry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}

	go c.cleanupLoop()
	return c
}

// Key derives a cache key from the parameters that influence the
// rendered image.
func Key(url, device, format string, fullPage, darkMode bool) string {
	h := sha256.New()
	h.Write([]byte(url))
	h.Write([]byte("|"))
	h.Write([]byte(device))
	h.Write([]byte("|"))
	h.Write([]byte(format))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.FormatBool(fullPage)))
	h.Write([]byte("|"))
	h.Write([]byte(strconv.FormatBool(darkMode)))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached image and its format if the entry exists and
// has not outlived the TTL.
func (c *Cache) Get(key string) ([]byte, string, bool) {
	c.mu.RLock()
	e, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, "", false
	}
	if time.Since(e.createdAt) > c.ttl {
		return nil, "", false
	}
	return e.image, e.format, true
}

// Set stores a capture. If the cache is at capacity, a random entry is
// evicted to make room (map iteration order is random in Go).
func (c *Cache) Set(key string, image []byte, format string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.store) >= c.maxEntries {
		for k := range c.store {
			delete(c.store, k)
			break
		}
	}

	c.store[key] = &entry{
		image:     image,
		format:    format,
		createdAt: time.Now(),
	}
}

// Len reports the number of stored entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// cleanupLoop evicts entries older than the TTL every 5 minutes.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-c.ttl)
		c.mu.Lock()
		for k, e := range c.store {
			if e.createdAt.Before(cutoff) {
				delete(c.store, k)
			}
		}
		c.mu.Unlock()
	}
}
