package fs

import (
	"container/list"

	"github.com/aretw0/strata/pkg/core"
)

// DefaultCacheSize is the hot cache capacity used when none is configured.
const DefaultCacheSize = 100

// hotCache keeps recently stored or retrieved entries in memory.
//
// Eviction is by insertion order: when full, the entry that was inserted
// first goes, regardless of how often it was read. Replacing an entry that is
// already cached keeps its original position.
type hotCache struct {
	capacity int
	order    *list.List // front is oldest; values are entry ids
	items    map[string]*list.Element
	entries  map[string]core.Entry
}

func newHotCache(capacity int) *hotCache {
	if capacity <= 0 {
		capacity = DefaultCacheSize
	}
	return &hotCache{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element),
		entries:  make(map[string]core.Entry),
	}
}

func (c *hotCache) get(id string) (core.Entry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

func (c *hotCache) put(e core.Entry) {
	if _, ok := c.items[e.ID]; ok {
		c.entries[e.ID] = e
		return
	}
	for c.order.Len() >= c.capacity {
		oldest := c.order.Front()
		id := oldest.Value.(string)
		c.order.Remove(oldest)
		delete(c.items, id)
		delete(c.entries, id)
	}
	c.items[e.ID] = c.order.PushBack(e.ID)
	c.entries[e.ID] = e
}

func (c *hotCache) evict(id string) {
	if el, ok := c.items[id]; ok {
		c.order.Remove(el)
		delete(c.items, id)
		delete(c.entries, id)
	}
}

func (c *hotCache) reset() {
	c.order.Init()
	c.items = make(map[string]*list.Element)
	c.entries = make(map[string]core.Entry)
}

func (c *hotCache) len() int { return c.order.Len() }
