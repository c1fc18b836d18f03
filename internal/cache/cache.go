// internal/cache/cache.go
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Simon-Bruno/omen-backend-sub000/pkg/models"
)

// Clock supplies the current time. Injected so expiry behavior is testable
// without sleeping.
type Clock func() time.Time

// Cache defines the interface for page snapshot caching implementations.
type Cache interface {
	// Get retrieves a cached page by key.
	// Returns the cached Page and a boolean indicating if the key was found.
	Get(key string) (*models.Page, bool)

	// Set stores a page in cache using the cache's configured TTL.
	// If the key already exists, it is updated.
	Set(key string, page *models.Page) error

	// Delete removes a cached page by key.
	// Does not error if the key doesn't exist.
	Delete(key string) error

	// Clear removes all cached pages.
	Clear() error

	// Stats reports entry count, byte usage, and hit rate for shutdown
	// logging and diagnostics.
	Stats() map[string]interface{}

	// Close performs cleanup and closes the cache.
	// Implementations must ensure background goroutines are stopped.
	Close()
}

// cacheEntry represents a cached page with expiry metadata
type cacheEntry struct {
	Page      *models.Page
	ExpiresAt time.Time
	Key       string // For LRU tracking
}

// MemoryCache implements in-memory page caching with LRU eviction
type MemoryCache struct {
	store   map[string]*list.Element // Map key to list element
	lruList *list.List               // Doubly-linked list for LRU ordering
	mu      sync.RWMutex
	maxSize int64 // Maximum cache size in bytes
	size    int64 // Current size in bytes
	ttl     time.Duration
	now     Clock
	ctx     context.Context
	cancel  context.CancelFunc
	hits    uint64 // Cache hit counter
	misses  uint64 // Cache miss counter
}

// NewMemoryCache creates a new in-memory cache with LRU eviction. A zero
// clock defaults to time.Now.
func NewMemoryCache(maxSizeBytes int64, ttl time.Duration, now Clock) *MemoryCache {
	if maxSizeBytes <= 0 {
		maxSizeBytes = 100 * 1024 * 1024 // Default: 100MB
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if now == nil {
		now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())

	cache := &MemoryCache{
		store:   make(map[string]*list.Element),
		lruList: list.New(),
		maxSize: maxSizeBytes,
		ttl:     ttl,
		now:     now,
		ctx:     ctx,
		cancel:  cancel,
	}

	// Start background cleanup routine with context
	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached page, moving it to the front of the LRU list.
// Manual unlock instead of defer on the hot path.
func (mc *MemoryCache) Get(key string) (*models.Page, bool) {
	mc.mu.Lock() // Need write lock for LRU update
	element, exists := mc.store[key]
	if !exists {
		mc.misses++
		mc.mu.Unlock()
		return nil, false
	}

	entry := element.Value.(*cacheEntry)

	// Check if expired
	if mc.now().After(entry.ExpiresAt) {
		mc.misses++
		mc.mu.Unlock()
		// Expired, delete it
		go mc.Delete(key)
		return nil, false
	}

	// Move to front (most recently used)
	mc.lruList.MoveToFront(element)
	mc.hits++
	mc.mu.Unlock()

	log.Debug().Str("key", key).Msg("Cache hit")
	return entry.Page, true
}

// Set stores a page in cache, evicting least recently used entries when the
// size budget is exceeded.
func (mc *MemoryCache) Set(key string, page *models.Page) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	// Estimate size (rough approximation)
	size := entrySize(page)

	// Check if key already exists - update it
	if element, exists := mc.store[key]; exists {
		oldEntry := element.Value.(*cacheEntry)
		mc.size -= entrySize(oldEntry.Page)

		// Update entry
		element.Value = &cacheEntry{
			Page:      page,
			ExpiresAt: mc.now().Add(mc.ttl),
			Key:       key,
		}
		mc.lruList.MoveToFront(element)
		mc.size += size

		log.Debug().
			Str("key", key).
			Int64("size_bytes", size).
			Msg("Updated cache entry")

		return nil
	}

	// Check if we need to evict entries (LRU eviction)
	for mc.size+size > mc.maxSize && mc.lruList.Len() > 0 {
		mc.evictLRU()
	}

	entry := &cacheEntry{
		Page:      page,
		ExpiresAt: mc.now().Add(mc.ttl),
		Key:       key,
	}

	// Add to front of list (most recently used)
	element := mc.lruList.PushFront(entry)
	mc.store[key] = element
	mc.size += size

	log.Debug().
		Str("key", key).
		Int64("size_bytes", size).
		Msg("Cached page")

	return nil
}

// Delete removes a cached page
func (mc *MemoryCache) Delete(key string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if element, exists := mc.store[key]; exists {
		entry := element.Value.(*cacheEntry)
		mc.lruList.Remove(element)
		delete(mc.store, key)
		mc.size -= entrySize(entry.Page)
		log.Debug().Str("key", key).Msg("Deleted from cache")
	}

	return nil
}

// Clear removes all cached pages
func (mc *MemoryCache) Clear() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.store = make(map[string]*list.Element)
	mc.lruList = list.New()
	mc.size = 0
	mc.hits = 0
	mc.misses = 0

	log.Debug().Msg("Cache cleared")
	return nil
}

// Close stops the background cleanup goroutine
func (mc *MemoryCache) Close() {
	mc.cancel()
	log.Debug().Msg("Cache closed")
}

// evictLRU removes the least recently used entry (must be called with lock held)
func (mc *MemoryCache) evictLRU() {
	element := mc.lruList.Back()
	if element == nil {
		return
	}

	entry := element.Value.(*cacheEntry)
	mc.lruList.Remove(element)
	delete(mc.store, entry.Key)
	mc.size -= entrySize(entry.Page)

	log.Debug().Str("key", entry.Key).Msg("Evicted from cache (LRU)")
}

// cleanupExpired periodically removes expired entries
func (mc *MemoryCache) cleanupExpired() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			mc.mu.Lock()
			now := mc.now()

			// Iterate over list to find expired entries
			var next *list.Element
			for element := mc.lruList.Front(); element != nil; element = next {
				next = element.Next()
				entry := element.Value.(*cacheEntry)

				if now.After(entry.ExpiresAt) {
					mc.lruList.Remove(element)
					delete(mc.store, entry.Key)
					mc.size -= entrySize(entry.Page)
				}
			}
			mc.mu.Unlock()
		case <-mc.ctx.Done():
			log.Debug().Msg("Cache cleanup routine stopped")
			return
		}
	}
}

// Stats returns cache statistics including hit rate
func (mc *MemoryCache) Stats() map[string]interface{} {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	hitRate := 0.0
	total := mc.hits + mc.misses
	if total > 0 {
		hitRate = float64(mc.hits) / float64(total) * 100
	}

	return map[string]interface{}{
		"entries":     mc.lruList.Len(),
		"size_bytes":  mc.size,
		"max_size":    mc.maxSize,
		"utilization": float64(mc.size) / float64(mc.maxSize) * 100,
		"hits":        mc.hits,
		"misses":      mc.misses,
		"hit_rate":    hitRate,
	}
}

func entrySize(page *models.Page) int64 {
	size := int64(len(page.HTML) + len(page.Title) + len(page.URL))
	return size + 1024 // ~1KB overhead for struct, pointers, list element
}
