// Package storage selects the cache store backend for a process.
package storage

import (
	"io"
	"os"

	"go.trai.ch/swcache/internal/adapters/storage/badger"
	"go.trai.ch/swcache/internal/adapters/storage/memory"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// Store is a cache storage holding resources until it is closed.
type Store interface {
	ports.CacheStorage
	io.Closer
}

// Open returns a memory store when settings ask for an ephemeral process,
// and a badger store below the data directory otherwise.
func Open(settings domain.Settings) (Store, error) {
	if settings.Ephemeral {
		return memory.New(), nil
	}

	dir := domain.StorePath(settings.DataDir)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "dir", dir)
	}
	store, err := badger.New(dir)
	if err != nil {
		return nil, err
	}
	return store, nil
}
