package main

import (
	"container/list"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

var pageCache = NewLRUCache[string, Page](500)
var queryCache = NewTTLCache[string, []map[string]any](5 * time.Minute)

// GetQueryKey derives the query-cache key from a statement and its values.
func GetQueryKey(queryStr string, queryVals ...any) string {
	h := xxhash.New()
	h.WriteString(queryStr)
	for _, v := range queryVals {h.WriteString("\x00"); h.WriteString(fmt.Sprint(v))}
	return strconv.FormatUint(h.Sum64(), 16)
}

/////////////////////////////////////// LRU CACHE ///////////////////////////////////////

type LRUCacheItem[K comparable, V any] struct {
	key K
	value V
}

type LRUCache[K comparable, V any] struct {
	mu sync.Mutex
	capacity int
	items    map[K]*list.Element
	queue    *list.List
}

func NewLRUCache[K comparable, V any](capacity int) *LRUCache[K, V] {
	if capacity <= 0 {capacity = 10}
	return &LRUCache[K, V]{
		capacity: capacity,
		items:    make(map[K]*list.Element),
		queue:    list.New(),
	}
}

func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, exists := c.items[key]; exists {
		c.queue.MoveToFront(element)
		// list.Element.Value is still 'any', so assert back to our item type.
		return element.Value.(*LRUCacheItem[K, V]).value, true
	}
	var zero V
	return zero, false
}

// Put adds or updates an item in the cache and makes it the most recently used.
func (c *LRUCache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if element, exists := c.items[key]; exists {
		c.queue.MoveToFront(element)
		element.Value.(*LRUCacheItem[K, V]).value = value
		return
	}

	// If the cache is full, evict the least recently used item.
	if c.queue.Len() >= c.capacity {
		oldest := c.queue.Back()
		if oldest != nil {
			c.queue.Remove(oldest)
			kv := oldest.Value.(*LRUCacheItem[K, V])
			delete(c.items, kv.key)
		}
	}
	element := c.queue.PushFront(&LRUCacheItem[K, V]{key: key, value: value})
	c.items[key] = element
}

// Update changes the value of an existing key WITHOUT moving it to the front.
// If the key does not exist, it does nothing and returns false.
func (c *LRUCache[K, V]) Update(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, exists := c.items[key]
	if !exists { return false }

	element.Value.(*LRUCacheItem[K, V]).value = value
	return true
}

// Delete removes an item from the cache completely.
// It returns true if the item was found and removed, false otherwise.
func (c *LRUCache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	element, exists := c.items[key]
	if !exists { return false }

	c.queue.Remove(element)
	delete(c.items, key)
	return true
}

/////////////////////////////////////// TTL CACHE ///////////////////////////////////////

type TTLCacheItem[V any] struct {
	value V
	expiresAt int64 // UnixNano timestamp
}

type TTLCache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]TTLCacheItem[V]
}

// NewTTLCache creates a cache that cleans itself every cleanupInterval.
func NewTTLCache[K comparable, V any](cleanupInterval time.Duration) *TTLCache[K, V] {
	c := &TTLCache[K, V]{items: make(map[K]TTLCacheItem[V])}

	// Background goroutine to delete expired items.
	go func() {
		ticker := time.NewTicker(cleanupInterval)
		for range ticker.C {
			c.mu.Lock()
			now := time.Now().UnixNano()
			for k, item := range c.items {
				if now > item.expiresAt { delete(c.items, k) }
			}
			c.mu.Unlock()
		}
	}()

	return c
}

func (c *TTLCache[K, V]) Set(key K, value V, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = TTLCacheItem[V]{value: value, expiresAt: time.Now().Add(duration).UnixNano()}
}

func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !exists {return zero, false}
	// It can be expired before the next cleanup cycle runs.
	if time.Now().UnixNano() > item.expiresAt {return zero, false}

	return item.value, true
}
