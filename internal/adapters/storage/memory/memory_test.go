package memory_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swcache/internal/adapters/storage/memory"
	"go.trai.ch/swcache/internal/core/domain"
)

func TestStorage_OpenIsIdempotent(t *testing.T) {
	ctx := t.Context()
	s := memory.New()

	a, err := s.Open(ctx, "v1")
	require.NoError(t, err)
	require.NoError(t, a.Put(ctx, "GET http://app.test/", &domain.Response{Status: http.StatusOK}))

	b, err := s.Open(ctx, "v1")
	require.NoError(t, err)
	got, err := b.Get(ctx, "GET http://app.test/")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "v1", b.Name())
}

func TestStorage_NamesAndDelete(t *testing.T) {
	ctx := t.Context()
	s := memory.New()

	for _, n := range []string{"v2", "offline-data", "v1"} {
		_, err := s.Open(ctx, n)
		require.NoError(t, err)
	}

	names, err := s.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"offline-data", "v1", "v2"}, names)

	ok, err := s.Delete(ctx, "v1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, "v1")
	require.NoError(t, err)
	assert.False(t, ok)

	names, err = s.Names(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"offline-data", "v2"}, names)
}

func TestCache_GetMissAndCopies(t *testing.T) {
	ctx := t.Context()
	s := memory.New()
	c, err := s.Open(ctx, "v1")
	require.NoError(t, err)

	got, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	resp := &domain.Response{Status: http.StatusOK, Body: []byte("abc")}
	require.NoError(t, c.Put(ctx, "k", resp))
	resp.Body[0] = 'z'

	got, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got.Body)

	got.Body[0] = 'y'
	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again.Body)
}

func TestCache_KeysAndDelete(t *testing.T) {
	ctx := t.Context()
	c, err := memory.New().Open(ctx, "v1")
	require.NoError(t, err)

	require.NoError(t, c.Put(ctx, "b", &domain.Response{Status: http.StatusOK}))
	require.NoError(t, c.Put(ctx, "a", &domain.Response{Status: http.StatusOK}))

	keys, err := c.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	ok, err := c.Delete(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Delete(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_PutNil(t *testing.T) {
	c, err := memory.New().Open(t.Context(), "v1")
	require.NoError(t, err)
	assert.ErrorIs(t, c.Put(t.Context(), "k", nil), domain.ErrStoreEncodeFailed)
}
