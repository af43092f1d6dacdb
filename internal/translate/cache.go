package translate

import (
	"container/list"
	"context"
	"sync"
)

// Cached memoizes successful translations of an inner Translator with
// least-recently-used eviction. Misses and failures are never stored.
type Cached struct {
	inner Translator
	size  int

	mu      sync.Mutex
	order   *list.List
	entries map[cacheKey]*list.Element
}

type cacheKey struct {
	dir  Direction
	text string
}

type cacheEntry struct {
	key    cacheKey
	result string
}

// NewCached wraps inner with a cache holding at most size results.
func NewCached(inner Translator, size int) *Cached {
	if size <= 0 {
		size = 1
	}
	return &Cached{
		inner:   inner,
		size:    size,
		order:   list.New(),
		entries: make(map[cacheKey]*list.Element),
	}
}

func (c *Cached) Translate(ctx context.Context, text string, dir Direction) (string, bool, error) {
	key := cacheKey{dir: dir, text: text}

	c.mu.Lock()
	if el, ok := c.entries[key]; ok {
		c.order.MoveToFront(el)
		result := el.Value.(*cacheEntry).result
		c.mu.Unlock()
		return result, true, nil
	}
	c.mu.Unlock()

	result, ok, err := c.inner.Translate(ctx, text, dir)
	if err != nil || !ok {
		return result, ok, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if el, exists := c.entries[key]; exists {
		c.order.MoveToFront(el)
		return result, true, nil
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, result: result})
	for c.order.Len() > c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
	return result, true, nil
}

// Len returns the number of cached results.
func (c *Cached) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
