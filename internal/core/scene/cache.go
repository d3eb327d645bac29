package scene

import "github.com/zeusync/scenebridge/internal/core/native"

type cacheEntry struct {
	id    native.ComponentID
	comp  Component
	entry *TypeEntry
	slot  int
}

// componentCache is the per-object arena of component handles. Lookups by id
// are O(1); order keeps insertion order for tag scans and holds tombstones
// until more than half of it is dead.
type componentCache struct {
	entries map[native.ComponentID]*cacheEntry
	order   []native.ComponentID
	dead    int
}

func newComponentCache() *componentCache {
	return &componentCache{entries: make(map[native.ComponentID]*cacheEntry)}
}

func (c *componentCache) len() int {
	return len(c.entries)
}

func (c *componentCache) get(id native.ComponentID) (*cacheEntry, bool) {
	e, ok := c.entries[id]
	return e, ok
}

// put stores a handle under id. Replacing keeps the original position.
func (c *componentCache) put(id native.ComponentID, comp Component, entry *TypeEntry) *cacheEntry {
	if old, ok := c.entries[id]; ok {
		old.comp = comp
		old.entry = entry
		return old
	}
	e := &cacheEntry{id: id, comp: comp, entry: entry, slot: len(c.order)}
	c.entries[id] = e
	c.order = append(c.order, id)
	return e
}

func (c *componentCache) evict(id native.ComponentID) (*cacheEntry, bool) {
	e, ok := c.entries[id]
	if !ok {
		return nil, false
	}
	delete(c.entries, id)
	c.dead++
	if c.dead > len(c.order)/2 {
		c.compact()
	}
	return e, true
}

// find returns the first live handle, in insertion order, whose type
// satisfies key.
func (c *componentCache) find(key *TypeEntry) (*cacheEntry, bool) {
	for i, id := range c.order {
		e, ok := c.entries[id]
		if !ok || e.slot != i {
			continue
		}
		if key.matches(e.entry) {
			return e, true
		}
	}
	return nil, false
}

// snapshot copies the live handles in insertion order.
func (c *componentCache) snapshot() []*cacheEntry {
	out := make([]*cacheEntry, 0, len(c.entries))
	for i, id := range c.order {
		if e, ok := c.entries[id]; ok && e.slot == i {
			out = append(out, e)
		}
	}
	return out
}

// clear empties the arena and returns what it held.
func (c *componentCache) clear() []*cacheEntry {
	out := c.snapshot()
	c.entries = make(map[native.ComponentID]*cacheEntry)
	c.order = nil
	c.dead = 0
	return out
}

// compact rebuilds order into a fresh slice so a caller ranging over the
// old one is unaffected.
func (c *componentCache) compact() {
	live := c.snapshot()
	order := make([]native.ComponentID, len(live))
	for i, e := range live {
		e.slot = i
		order[i] = e.id
	}
	c.order = order
	c.dead = 0
}
