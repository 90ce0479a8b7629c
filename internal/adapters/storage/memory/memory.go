// Package memory implements an ephemeral cache store on top of go-cache.
package memory

import (
	"context"
	"slices"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
)

// Storage is a process-local set of named caches. Entries never expire.
type Storage struct {
	mu     sync.Mutex
	caches map[string]*Cache
}

// New creates an empty Storage.
func New() *Storage {
	return &Storage{caches: make(map[string]*Cache)}
}

// Open returns the named cache, creating it if needed.
func (s *Storage) Open(_ context.Context, name string) (ports.Cache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.caches[name]
	if !ok {
		// Zero cleanup interval: no janitor goroutine.
		c = &Cache{name: name, items: gocache.New(gocache.NoExpiration, 0)}
		s.caches[name] = c
	}
	return c, nil
}

// Names lists the open caches in lexical order.
func (s *Storage) Names(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.caches))
	for name := range s.caches {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

// Delete drops the named cache.
func (s *Storage) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.caches[name]
	if !ok {
		return false, nil
	}
	c.items.Flush()
	delete(s.caches, name)
	return true, nil
}

// Close is a no-op.
func (s *Storage) Close() error {
	return nil
}

// Cache is one named cache.
type Cache struct {
	name  string
	items *gocache.Cache
}

// Name returns the cache name.
func (c *Cache) Name() string {
	return c.name
}

// Get returns a copy of the stored response, or nil.
func (c *Cache) Get(_ context.Context, key string) (*domain.Response, error) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, nil
	}
	resp, ok := v.(*domain.Response)
	if !ok {
		return nil, domain.ErrStoreDecodeFailed
	}
	return resp.Clone(), nil
}

// Put stores a copy of resp.
func (c *Cache) Put(_ context.Context, key string, resp *domain.Response) error {
	if resp == nil {
		return domain.ErrStoreEncodeFailed
	}
	c.items.Set(key, resp.Clone(), gocache.NoExpiration)
	return nil
}

// Delete removes key.
func (c *Cache) Delete(_ context.Context, key string) (bool, error) {
	_, ok := c.items.Get(key)
	c.items.Delete(key)
	return ok, nil
}

// Keys lists the stored keys in lexical order.
func (c *Cache) Keys(_ context.Context) ([]string, error) {
	items := c.items.Items()
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}
