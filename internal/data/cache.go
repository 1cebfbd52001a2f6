package data

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// cacheEntry represents a cached analysis result
type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// ResultCache keeps finished analyses in memory so that exports and charts
// can be fetched after the run that produced them.
//
// Entries expire after ttl and are removed by a background sweep.
// Nothing is persisted; a restart empties the cache.
type ResultCache[T any] struct {
	mu    sync.RWMutex
	store map[string]*cacheEntry[T]
	ttl   time.Duration
	now   func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewResultCache creates a cache and starts its cleanup goroutine.
// A non-positive cleanupEvery disables the sweep; expired entries are
// then only hidden from Get.
func NewResultCache[T any](ttl, cleanupEvery time.Duration) *ResultCache[T] {
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &ResultCache[T]{
		store: make(map[string]*cacheEntry[T]),
		ttl:   ttl,
		now:   time.Now,
		stop:  make(chan struct{}),
	}
	if cleanupEvery > 0 {
		go c.cleanup(cleanupEvery)
	}
	return c
}

// NewKey returns a fresh random key for Put.
func NewKey() string {
	return uuid.NewString()
}

// Get retrieves a cached value if available and not expired
func (c *ResultCache[T]) Get(key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.store[key]
	if !exists {
		return zero, false
	}
	if c.now().After(entry.expiresAt) {
		return zero, false
	}
	return entry.value, true
}

// Set stores a value in the cache
func (c *ResultCache[T]) Set(key string, value T) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.store[key] = &cacheEntry[T]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Put stores value under a new key and returns it.
func (c *ResultCache[T]) Put(value T) string {
	key := NewKey()
	c.Set(key, value)
	return key
}

// Delete removes key. It is a no-op for unknown keys.
func (c *ResultCache[T]) Delete(key string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
}

// Len counts stored entries, including expired ones not yet swept.
func (c *ResultCache[T]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.store)
}

// Close stops the cleanup goroutine.
func (c *ResultCache[T]) Close() {
	if c == nil {
		return
	}
	c.stopOnce.Do(func() { close(c.stop) })
}

// cleanup periodically removes expired entries
func (c *ResultCache[T]) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *ResultCache[T]) sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for key, entry := range c.store {
		if now.After(entry.expiresAt) {
			delete(c.store, key)
		}
	}
}
