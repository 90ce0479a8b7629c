package ports

import (
	"context"

	"go.trai.ch/swcache/internal/core/domain"
)

//go:generate mockgen -source=cache_store.go -destination=mocks/mock_cache_store.go -package=mocks

// CacheStorage is the process-wide set of named caches.
type CacheStorage interface {
	// Open returns the named cache, creating it if it does not exist.
	Open(ctx context.Context, name string) (Cache, error)
	// Names lists every cache that has been opened and not deleted.
	Names(ctx context.Context) ([]string, error)
	// Delete removes the named cache and all its entries.
	// It reports whether the cache existed.
	Delete(ctx context.Context, name string) (bool, error)
}

// Cache is one named key to response mapping.
type Cache interface {
	// Name returns the cache name.
	Name() string
	// Get returns the stored response for key.
	// Returns nil, nil if not found.
	Get(ctx context.Context, key string) (*domain.Response, error)
	// Put stores resp under key, replacing any previous entry.
	Put(ctx context.Context, key string, resp *domain.Response) error
	// Delete removes the entry stored under key and reports whether it existed.
	Delete(ctx context.Context, key string) (bool, error)
	// Keys lists the keys of every stored entry.
	Keys(ctx context.Context) ([]string, error)
}
