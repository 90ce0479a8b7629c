package browser_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swcache/internal/adapters/browser"
	"go.trai.ch/swcache/internal/core/domain"
)

func TestOpener_Open(t *testing.T) {
	var opened []string
	o := browser.NewWithFunc(func(url string) error {
		opened = append(opened, url)
		return nil
	})

	require.NoError(t, o.Open(t.Context(), "http://localhost:8080/"))
	assert.Equal(t, []string{"http://localhost:8080/"}, opened)
}

func TestOpener_Failure(t *testing.T) {
	o := browser.NewWithFunc(func(string) error { return errors.New("no display") })

	err := o.Open(t.Context(), "http://localhost:8080/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrWindowOpenFailed.Error())
}

func TestOpener_Cancelled(t *testing.T) {
	called := false
	o := browser.NewWithFunc(func(string) error {
		called = true
		return nil
	})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	require.ErrorIs(t, o.Open(ctx, "http://localhost:8080/"), context.Canceled)
	assert.False(t, called)
}
