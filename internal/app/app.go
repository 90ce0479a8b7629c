// Package app implements the application layer for swcache.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.trai.ch/swcache/internal/adapters/config"
	"go.trai.ch/swcache/internal/adapters/storage"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/swcache/internal/engine/lifecycle"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	opener       ports.WindowOpener
	watcher      ports.Watcher
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	opener ports.WindowOpener,
	watcher ports.Watcher,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		opener:       opener,
		watcher:      watcher,
	}
}

// ServeOptions configuration for the Serve method.
type ServeOptions struct {
	ConfigPath string
}

// Serve runs the caching proxy until ctx is cancelled. The current version is installed in
// the background while requests are already being served.
func (a *App) Serve(ctx context.Context, opts ServeOptions) error {
	settings, err := a.load(opts.ConfigPath)
	if err != nil {
		return err
	}

	svc, err := a.build(settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			a.logger.Error(err)
		}
	}()

	if settings.StaticDir != "" {
		if err := a.watcher.Start(ctx, settings.StaticDir); err != nil {
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svc.server.Serve(ctx)
	})

	g.Go(func() error {
		if _, err := svc.lifecycle.Install(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})

	if settings.StaticDir != "" {
		g.Go(func() error {
			<-ctx.Done()
			return a.watcher.Stop()
		})
		g.Go(func() error {
			for batch := range a.watcher.Events() {
				a.invalidate(ctx, svc.lifecycle, batch)
			}
			return nil
		})
	}

	return g.Wait()
}

func (a *App) invalidate(ctx context.Context, lc *lifecycle.Manager, batch []ports.WatchEvent) {
	paths := make([]string, 0, len(batch))
	for _, event := range batch {
		paths = append(paths, "/"+event.Path)
	}
	n, err := lc.Invalidate(ctx, paths)
	if err != nil {
		a.logger.Error(err)
		return
	}
	if n > 0 {
		a.logger.Info(fmt.Sprintf("invalidated %d cached entries", n))
	}
}

// Info loads the configuration and describes the stored caches without starting the proxy.
func (a *App) Info(ctx context.Context, configPath string) (domain.CacheInfo, error) {
	var info domain.CacheInfo
	err := a.withStore(configPath, func(lc *lifecycle.Manager) error {
		var err error
		info, err = lc.Info(ctx)
		return err
	})
	// The lifecycle state only exists in a running proxy.
	info.State = ""
	return info, err
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	ConfigPath string
	All        bool
}

// Clean deletes every cache version. The offline data cache survives unless All is set.
func (a *App) Clean(ctx context.Context, opts CleanOptions) error {
	return a.withStore(opts.ConfigPath, func(lc *lifecycle.Manager) error {
		removed, err := lc.Clear(ctx, opts.All)
		for _, name := range removed {
			a.logger.Info("removed cache " + name)
		}
		if err == nil && len(removed) == 0 {
			a.logger.Info("nothing to clean")
		}
		return err
	})
}

// Config returns the effective configuration as YAML.
func (a *App) Config(configPath string) ([]byte, error) {
	settings, err := a.load(configPath)
	if err != nil {
		return nil, err
	}
	return config.Marshal(settings)
}

func (a *App) load(path string) (domain.Settings, error) {
	settings, err := a.configLoader.Load(path)
	if err != nil {
		return domain.Settings{}, zerr.Wrap(err, "failed to load configuration")
	}
	if l, ok := a.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(settings.Logging.JSON)
	}
	return settings, nil
}

// withStore opens the configured store for an offline operation.
func (a *App) withStore(configPath string, fn func(lc *lifecycle.Manager) error) (err error) {
	settings, err := a.load(configPath)
	if err != nil {
		return err
	}

	store, err := storage.Open(settings)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()

	// Info and Clear only touch the store.
	lc, err := lifecycle.New(store, nil, nil, nil, a.logger, settings)
	if err != nil {
		return err
	}
	return fn(lc)
}
