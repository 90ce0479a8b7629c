// Package badger implements the durable cache store on top of BadgerDB.
//
// Layout:
//
//	n:<name>                       -> name
//	e:<xxhash(name)>:<xxhash(key)> -> JSON record {key, response}
//
// Hashing keeps entry keys fixed-width and lets a whole cache be dropped by prefix.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/cespare/xxhash/v2"
	badgerdb "github.com/dgraph-io/badger/v4"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	prefixName  = "n:"
	prefixEntry = "e:"
)

// record is the stored value of a cache entry.
type record struct {
	Key      string           `json:"key"`
	Response *domain.Response `json:"response"`
}

// Storage is a set of named caches persisted in a single Badger database.
type Storage struct {
	db *badgerdb.DB
}

// New opens (or creates) the database in dir.
func New(dir string) (*Storage, error) {
	return open(badgerdb.DefaultOptions(dir).WithLogger(nil))
}

// NewInMemory opens a database that lives only in memory.
func NewInMemory() (*Storage, error) {
	return open(badgerdb.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func open(opts badgerdb.Options) (*Storage, error) {
	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "dir", opts.Dir)
	}
	return &Storage{db: db}, nil
}

// Close releases the database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// Open returns the named cache, recording its name on first use.
func (s *Storage) Open(_ context.Context, name string) (ports.Cache, error) {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		key := nameKey(name)
		_, err := txn.Get(key)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badgerdb.ErrKeyNotFound) {
			return err
		}
		return txn.Set(key, []byte(name))
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "cache", name)
	}
	return &Cache{db: s.db, name: name, prefix: entryPrefix(name)}, nil
}

// Names lists the known caches in lexical order.
func (s *Storage) Names(_ context.Context) ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = []byte(prefixName)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), prefixName))
		}
		return nil
	})
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreListFailed.Error())
	}
	slices.Sort(names)
	return names, nil
}

// Delete drops the named cache and every entry in it.
func (s *Storage) Delete(_ context.Context, name string) (bool, error) {
	existed := false
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		key := nameKey(name)
		_, err := txn.Get(key)
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		existed = true
		return txn.Delete(key)
	})
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrStoreDeleteFailed.Error()), "cache", name)
	}
	if err := s.db.DropPrefix(entryPrefix(name)); err != nil {
		return existed, zerr.With(zerr.Wrap(err, domain.ErrStoreDeleteFailed.Error()), "cache", name)
	}
	return existed, nil
}

// Cache is one named cache inside a Storage.
type Cache struct {
	db     *badgerdb.DB
	name   string
	prefix []byte
}

// Name returns the cache name.
func (c *Cache) Name() string { return c.name }

// Get returns the stored response for key, or nil on a miss.
func (c *Cache) Get(_ context.Context, key string) (*domain.Response, error) {
	var rec record
	found := false
	err := c.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(c.entryKey(key))
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &rec); err != nil {
				return errors.Join(domain.ErrStoreDecodeFailed, err)
			}
			found = true
			return nil
		})
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreReadFailed.Error()), "key", key)
	}
	// A hash collision shows up as a record for another key.
	if !found || rec.Key != key {
		return nil, nil
	}
	return rec.Response, nil
}

// Put stores resp under key, replacing any previous entry.
func (c *Cache) Put(_ context.Context, key string, resp *domain.Response) error {
	if resp == nil {
		return zerr.With(domain.ErrStoreEncodeFailed, "key", key)
	}
	val, err := json.Marshal(record{Key: key, Response: resp})
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreEncodeFailed.Error()), "key", key)
	}
	err = c.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(c.entryKey(key), val)
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrStoreWriteFailed.Error()), "key", key)
	}
	return nil
}

// Delete removes the entry for key and reports whether it existed.
func (c *Cache) Delete(_ context.Context, key string) (bool, error) {
	existed := false
	err := c.db.Update(func(txn *badgerdb.Txn) error {
		k := c.entryKey(key)
		_, err := txn.Get(k)
		if errors.Is(err, badgerdb.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		existed = true
		return txn.Delete(k)
	})
	if err != nil {
		return false, zerr.With(zerr.Wrap(err, domain.ErrStoreDeleteFailed.Error()), "key", key)
	}
	return existed, nil
}

// Keys lists the stored keys in lexical order.
func (c *Cache) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := c.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = c.prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				var rec record
				if err := json.Unmarshal(val, &rec); err != nil {
					return errors.Join(domain.ErrStoreDecodeFailed, err)
				}
				keys = append(keys, rec.Key)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreListFailed.Error()), "cache", c.name)
	}
	slices.Sort(keys)
	return keys, nil
}

func (c *Cache) entryKey(key string) []byte {
	return fmt.Appendf(slices.Clip(c.prefix), "%016x", xxhash.Sum64String(key))
}

func nameKey(name string) []byte {
	return []byte(prefixName + name)
}

func entryPrefix(name string) []byte {
	return fmt.Appendf(nil, "%s%016x:", prefixEntry, xxhash.Sum64String(name))
}
