package queue

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// blobStore reads and writes single JSON documents in the offline-data cache.
type blobStore struct {
	storage ports.CacheStorage
}

func (b blobStore) open(ctx context.Context) (ports.Cache, error) {
	c, err := b.storage.Open(ctx, domain.OfflineDataCacheName)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreOpenFailed.Error())
	}
	return c, nil
}

// read decodes the document under key into v. It reports false when nothing is stored.
// A document that does not decode is reported as corrupt.
func (b blobStore) read(ctx context.Context, key string, v any, corrupt error) (bool, error) {
	c, err := b.open(ctx)
	if err != nil {
		return false, err
	}
	resp, err := c.Get(ctx, key)
	if err != nil {
		return false, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}
	if resp == nil || len(resp.Body) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return false, errors.Join(corrupt, zerr.With(zerr.Wrap(err, domain.ErrStoreDecodeFailed.Error()), "key", key))
	}
	return true, nil
}

func (b blobStore) write(ctx context.Context, key string, v any, now time.Time) error {
	body, err := json.Marshal(v)
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreEncodeFailed.Error())
	}
	c, err := b.open(ctx)
	if err != nil {
		return err
	}
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	resp := &domain.Response{Status: http.StatusOK, Header: h, Body: body, StoredAt: now}
	if err := c.Put(ctx, key, resp); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

func (b blobStore) remove(ctx context.Context, key string) error {
	c, err := b.open(ctx)
	if err != nil {
		return err
	}
	if _, err := c.Delete(ctx, key); err != nil {
		return zerr.Wrap(err, domain.ErrStoreDeleteFailed.Error())
	}
	return nil
}
