package app

import (
	"context"
	"errors"
	"net/http"

	"go.trai.ch/swcache/internal/adapters/clients"
	"go.trai.ch/swcache/internal/adapters/metrics"
	"go.trai.ch/swcache/internal/adapters/network"
	"go.trai.ch/swcache/internal/adapters/server"
	"go.trai.ch/swcache/internal/adapters/storage"
	"go.trai.ch/swcache/internal/adapters/telemetry"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/swcache/internal/engine/dispatch"
	"go.trai.ch/swcache/internal/engine/lifecycle"
	"go.trai.ch/swcache/internal/engine/notify"
	"go.trai.ch/swcache/internal/engine/queue"
	"go.trai.ch/swcache/internal/engine/router"
	"go.trai.ch/zerr"
)

// services is the runtime graph of a serving process. It depends on the loaded settings,
// so it is assembled after configuration rather than by the DI graph.
type services struct {
	store     storage.Store
	router    *router.Router
	hub       *clients.Hub
	lifecycle *lifecycle.Manager
	server    *server.Server
}

func (a *App) build(settings domain.Settings) (svc *services, err error) {
	origin, err := settings.OriginURL()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidURL.Error()), "origin", settings.Origin)
	}

	store, err := storage.Open(settings)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = store.Close()
		}
	}()

	fetcher, err := network.New(settings)
	if err != nil {
		return nil, err
	}

	var (
		recorder       *metrics.Metrics
		metricsHandler http.Handler
	)
	if settings.Metrics.Enabled {
		reg := metrics.NewRegistry()
		recorder = metrics.New(reg)
		metricsHandler = metrics.Handler(reg)
	}

	rt, err := router.New(store, fetcher, a.logger, telemetry.New(), recorder, settings)
	if err != nil {
		return nil, err
	}

	hub := clients.New(a.logger)
	sched := dispatch.NewScheduler(a.logger)
	q := queue.New(store, fetcher, hub, sched, a.logger, recorder, origin)
	backup := queue.NewBackup(store, hub, a.logger)

	lc, err := lifecycle.New(store, fetcher, hub, q, a.logger, settings)
	if err != nil {
		return nil, err
	}

	d := dispatch.New(lc, q, backup, sched, a.logger)
	n := notify.New(hub, a.opener, a.logger, origin)

	hub.SetHandler(func(ctx context.Context, _ string, cmd domain.Command) *domain.Message {
		return d.Reply(ctx, cmd)
	})
	hub.OnConnect(func(ctx context.Context, c ports.ClientInfo) {
		if err := lc.ClientConnected(ctx); err != nil {
			a.logger.Error(err)
		}
		sched.RunPending(ctx)
		if _, err := backup.ReportTo(ctx, c.ID); err != nil {
			a.logger.Error(err)
		}
		n.ClientConnected(ctx, c)
	})

	srv := server.New(rt, d, d, n, a.logger, server.Options{
		Listen:  settings.Listen,
		Origin:  origin,
		Clients: hub,
		Metrics: metricsHandler,
	})

	return &services{
		store:     store,
		router:    rt,
		hub:       hub,
		lifecycle: lc,
		server:    srv,
	}, nil
}

// Close waits for background refreshes, disconnects the clients and releases the store.
func (s *services) Close() error {
	return errors.Join(s.router.Close(), s.hub.Close(), s.store.Close())
}
