package source

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"context"
)

// Cache is the confined global-mutable-state exception of spec.md §9: a
// per-Resolver (never package-level) LRU of dereferenced, re-iterable
// documents, with in-flight fetch deduplication and an invalidate channel
// that HTTP-level cache-control signals (e.g. a webhook, or a 410 Gone
// observed on a later request) can publish to.
type Cache struct {
	lru   *lru.Cache[string, *Dereferenced]
	group singleflight.Group

	invalidate chan string
	done       chan struct{}
}

// NewCache constructs a Cache holding up to size documents.
func NewCache(size int) *Cache {
	l, _ := lru.New[string, *Dereferenced](size)
	c := &Cache{lru: l, invalidate: make(chan string, 16), done: make(chan struct{})}
	go c.runInvalidation()
	return c
}

func (c *Cache) runInvalidation() {
	for {
		select {
		case url := <-c.invalidate:
			c.lru.Remove(url)
		case <-c.done:
			return
		}
	}
}

// Invalidate asynchronously evicts url's cached entry. Safe to call from any
// goroutine, including an HTTP handler reacting to a cache-busting webhook.
func (c *Cache) Invalidate(url string) {
	select {
	case c.invalidate <- url:
	case <-c.done:
	}
}

// Close stops the invalidation goroutine. Safe to call once per Cache.
func (c *Cache) Close() {
	close(c.done)
}

// GetOrFetch returns the cached Dereferenced document for url, or fetches
// and parses it via fetch and deref, single-flighting concurrent requests
// for the same url so a burst of identical quad-pattern lookups against the
// same page triggers exactly one network round trip.
func (c *Cache) GetOrFetch(ctx context.Context, url string, headers map[string]string, fetcher Fetcher, deref Dereferencer) (*Dereferenced, error) {
	if v, ok := c.lru.Get(url); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(url, func() (any, error) {
		if v, ok := c.lru.Get(url); ok {
			return v, nil
		}
		resp, err := fetcher.Fetch(ctx, url, headers)
		if err != nil {
			return nil, err
		}
		parsed, err := deref.Dereference(ctx, resp)
		if err != nil {
			return nil, err
		}
		c.lru.Add(url, parsed)
		return parsed, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dereferenced), nil
}
