package sense

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Stats contains cache statistics.
type Stats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`

	// Loads counts the keys stored from inventory reads.
	Loads int64 `json:"loads"`
	Size  int   `json:"size"`
}

type entry struct {
	id    string
	found bool
}

// Cache memoizes inventory lookups for the duration of a run. Entries are
// never evicted. Unknown keys are cached too, failed lookups are not.
//
// Concurrent misses on the same key share a single inventory lookup.
type Cache struct {
	inv Inventory

	mu      sync.RWMutex
	entries map[string]entry

	group singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
	loads  atomic.Int64
}

func NewCache(inv Inventory) *Cache {
	return &Cache{inv: inv, entries: map[string]entry{}}
}

func (c *Cache) get(key string) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// put stores e unless key is already cached and reports whether it did.
func (c *Cache) put(key string, e entry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return false
	}
	c.entries[key] = e
	return true
}

// Get returns the canonical id of key. The shared lookup of concurrent misses
// is not canceled with the context of the caller that started it.
func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	if e, ok := c.get(key); ok {
		c.hits.Add(1)
		return e.id, e.found, nil
	}

	c.misses.Add(1)

	fctx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(key, func() (any, error) {
		if e, ok := c.get(key); ok {
			return e, nil
		}

		id, found, err := c.inv.Lookup(fctx, key)
		if err != nil {
			return nil, err
		}

		e := entry{id: id, found: found}
		if c.put(key, e) {
			c.loads.Add(1)
		}
		return e, nil
	})
	if err != nil {
		return "", false, err
	}

	e := v.(entry)
	return e.id, e.found, nil
}

// Preload fills the cache with one batched lookup of the keys not yet cached.
func (c *Cache) Preload(ctx context.Context, keys []string) error {
	var missing []string
	seen := map[string]bool{}
	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		if _, ok := c.get(k); !ok {
			missing = append(missing, k)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	ids, err := c.inv.LookupBatch(ctx, missing)
	if err != nil {
		return err
	}

	for _, k := range missing {
		id, found := ids[k]
		if c.put(k, entry{id: id, found: found}) {
			c.loads.Add(1)
		}
	}
	return nil
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Cache) Stats() Stats {
	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Loads:  c.loads.Load(),
		Size:   c.Len(),
	}
}
