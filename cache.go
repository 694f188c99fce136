package poptravel

import (
	"sync"
	"time"
)

// ContentCache is an in-memory TTL cache of published content sitting in
// front of the store's read path. Admin mutations invalidate it wholesale,
// so the public pages never serve a record that was just unpublished.
type ContentCache struct {
	mu      sync.RWMutex
	records []Content
	fetched time.Time
	ttl     time.Duration
	store   ContentStore
}

// NewContentCache creates a ContentCache backed by the given store.
func NewContentCache(s ContentStore, ttl time.Duration) *ContentCache {
	return &ContentCache{store: s, ttl: ttl}
}

func (c *ContentCache) valid() bool {
	return c.records != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ContentCache) Invalidate() {
	c.mu.Lock()
	c.records = nil
	c.mu.Unlock()
}

func (c *ContentCache) load() error {
	if c.valid() {
		return nil
	}
	records, err := c.store.List(ListOptions{Status: StatusPublished})
	if err != nil {
		return err
	}
	if records == nil {
		records = []Content{}
	}
	c.records = records
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the cached published records after ensuring the cache
// is fresh. It tries a read lock first; only takes a write lock if a reload
// is needed.
func (c *ContentCache) ensureLoaded() ([]Content, error) {
	c.mu.RLock()
	if c.valid() {
		records := c.records
		c.mu.RUnlock()
		return records, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, err
	}
	return c.records, nil
}

// Published returns published records, optionally filtered to one category
// and capped at limit. Records come back newest-first.
func (c *ContentCache) Published(category Category, limit int) ([]Content, error) {
	records, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	var out []Content
	for _, r := range records {
		if category != "" && r.Category != category {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
