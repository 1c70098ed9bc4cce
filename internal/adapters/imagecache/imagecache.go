// Package imagecache memoises downloaded decorative images.
package imagecache

import (
	"context"
	"sync"
	"sync/atomic"
)

// Entry is a cached image.
type Entry struct {
	MIME string
	Data string // base64
}

// Cache stores images by URL.
type Cache interface {
	// Get returns the cached entry for url, if present.
	Get(ctx context.Context, url string) (Entry, bool)

	// Put stores e under url, evicting the oldest entry when full.
	// Storing an existing url replaces its entry without changing its age.
	Put(ctx context.Context, url string, e Entry)

	// Delete drops url from the cache.
	Delete(ctx context.Context, url string)

	Size() int64
}

// node is one entry of the insertion-ordered list.
type node struct {
	url   string
	entry Entry
	next  *node
}

func (n *node) reset() {
	n.url = ""
	n.entry = Entry{}
	n.next = nil
}

// inMemoryCache keeps entries in a map plus a singly linked list ordered from
// newest (head) to oldest (tail). Eviction drops the tail.
// For maxSize <= 0 the cache is unbounded and the list is not maintained.
type inMemoryCache struct {
	mu       sync.RWMutex
	entries  map[string]*node
	head     *node
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryCache creates a new in-memory image cache.
func NewInMemoryCache(opts ...Option) Cache {
	c := &inMemoryCache{
		maxSize: 16,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.entries = make(map[string]*node)
	c.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}

	return c
}

func (c *inMemoryCache) Get(_ context.Context, url string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n, ok := c.entries[url]
	if !ok {
		return Entry{}, false
	}
	return n.entry, true
}

func (c *inMemoryCache) Put(_ context.Context, url string, e Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[url]; ok {
		n.entry = e
		return
	}

	n := c.nodePool.Get().(*node)
	n.url = url
	n.entry = e

	if c.maxSize > 0 {
		if len(c.entries) >= c.maxSize {
			c.evictOldest()
		}
		n.next = c.head
		c.head = n
	}

	c.entries[url] = n
	c.size.Add(1)
}

func (c *inMemoryCache) Delete(_ context.Context, url string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[url]
	if !ok {
		return
	}
	delete(c.entries, url)

	if c.maxSize > 0 {
		if c.head == n {
			c.head = n.next
		} else {
			cur := c.head
			for cur != nil && cur.next != n {
				cur = cur.next
			}
			if cur != nil {
				cur.next = n.next
			}
		}
	}

	n.reset()
	c.nodePool.Put(n)
	c.size.Add(-1)
}

// evictOldest removes the tail of the list. Must be called with c.mu held.
func (c *inMemoryCache) evictOldest() {
	if c.head == nil {
		return
	}

	var prev *node
	cur := c.head
	for cur.next != nil {
		prev = cur
		cur = cur.next
	}

	if prev == nil {
		c.head = nil
	} else {
		prev.next = nil
	}
	delete(c.entries, cur.url)
	cur.reset()
	c.nodePool.Put(cur)
	c.size.Add(-1)
}

func (c *inMemoryCache) Size() int64 {
	return c.size.Load()
}
