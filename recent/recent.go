// Package recent keeps a small bounded record of just-selected
// identities so the selector does not hand out the same identity
// twice in quick succession, independent of store state.
package recent

import "sync"

const DefaultLimit = 10

// Cache is an ordered, deduplicated, size-bounded set of identity
// ids, most recent first. The zero value is not usable; use New.
type Cache struct {
	mu    sync.Mutex
	limit int
	ids   []string
}

func New(limit int) *Cache {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Cache{limit: limit}
}

// Add puts id at the front. If id is already present it is moved to
// the front instead of duplicated. Entries beyond the limit fall off
// the tail.
func (c *Cache) Add(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.ids)+1)
	ids = append(ids, id)
	for _, existing := range c.ids {
		if existing == id {
			continue
		}
		ids = append(ids, existing)
	}
	if len(ids) > c.limit {
		ids = ids[:c.limit]
	}
	c.ids = ids
}

// IDs returns a copy of the cached ids, most recent first.
func (c *Cache) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.ids))
	copy(out, c.ids)
	return out
}

// Contains reports whether id is in the cache.
func (c *Cache) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.ids {
		if existing == id {
			return true
		}
	}
	return false
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ids)
}
