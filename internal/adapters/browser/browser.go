// Package browser opens windows in the user's default browser.
package browser

import (
	"context"
	"io"

	"github.com/pkg/browser"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// Opener implements ports.WindowOpener.
type Opener struct {
	open func(url string) error
}

var _ ports.WindowOpener = (*Opener)(nil)

// New creates an Opener that launches the system browser. Its output is discarded.
func New() *Opener {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &Opener{open: browser.OpenURL}
}

// Open opens url in a new window.
func (o *Opener) Open(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := o.open(url); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrWindowOpenFailed.Error()), "url", url)
	}
	return nil
}
