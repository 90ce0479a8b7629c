package router

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// strategyFunc resolves one request under a specific strategy.
type strategyFunc func(ctx context.Context, r *Router, req *domain.Request) (*domain.Response, error)

// strategies is the closed dispatch table. Its length is fixed by the strategy enum, so a new
// strategy without an entry leaves a nil slot that the table test catches.
var strategies = [domain.StrategyCount]strategyFunc{
	domain.StrategyBypass:               resolveBypass,
	domain.StrategyAudioFallback:        resolveAudio,
	domain.StrategyCacheFirst:           resolveImage,
	domain.StrategyNetworkFirst:         resolveDocument,
	domain.StrategyStaleWhileRevalidate: resolveStaleWhileRevalidate,
	domain.StrategyDefault:              resolveDefault,
}

// Router resolves intercepted requests against the current cache version and the network.
type Router struct {
	storage  ports.CacheStorage
	fetcher  ports.Fetcher
	logger   ports.Logger
	tracer   ports.Tracer
	metrics  ports.Metrics
	version  domain.CacheVersion
	policy   domain.Policy
	origin   *url.URL
	selector Selector
	bg       *background
	now      func() time.Time
}

// New creates a Router serving the version and policy named in settings.
func New(
	storage ports.CacheStorage,
	fetcher ports.Fetcher,
	logger ports.Logger,
	tracer ports.Tracer,
	metrics ports.Metrics,
	settings domain.Settings,
) (*Router, error) {
	origin, err := settings.OriginURL()
	if err != nil || origin.Host == "" {
		if err == nil {
			err = domain.ErrInvalidURL
		}
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidURL.Error()), "origin", settings.Origin)
	}

	return &Router{
		storage:  storage,
		fetcher:  fetcher,
		logger:   logger,
		tracer:   tracer,
		metrics:  metrics,
		version:  settings.CacheVersion(),
		policy:   settings.Policy,
		origin:   origin,
		selector: NewSelector(settings.Policy),
		bg:       newBackground(logger),
		now:      time.Now,
	}, nil
}

// Resolve answers req with exactly one strategy.
// A Default-strategy failure on an API path becomes a structured 503 here; any other error
// means nothing could serve the request.
func (r *Router) Resolve(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	if req == nil || req.URL == nil {
		return nil, domain.ErrInvalidURL
	}
	strategy := r.selector.Select(req)

	ctx, span := r.tracer.Start(ctx, "resolve", ports.WithAttributes(map[string]any{
		"swcache.strategy": strategy.String(),
		"http.method":      req.Method,
		"http.url":         req.URL.String(),
	}))
	defer span.End()

	start := time.Now()
	resp, err := strategies[strategy](ctx, r, req)
	if err != nil && strategy == domain.StrategyDefault && r.policy.IsAPIPath(req.URL.Path) {
		r.logger.Warn("api request failed offline: " + req.URL.String())
		resp, err = OfflineAPIError(r.now()), nil
	}

	if err != nil {
		span.RecordError(err)
		r.metrics.ObserveResolve(strategy, "", time.Since(start))
		return nil, err
	}

	span.SetAttribute("swcache.source", string(resp.Source))
	r.metrics.ObserveResolve(strategy, resp.Source, time.Since(start))
	return resp, nil
}

// Wait blocks until every background refresh started so far has finished.
func (r *Router) Wait() {
	r.bg.Wait()
}

// Close waits for background refreshes and releases the router.
func (r *Router) Close() error {
	r.bg.Close()
	return nil
}

// lookup returns the cached response for key in the current version, or nil.
// Read failures are logged and treated as a miss.
func (r *Router) lookup(ctx context.Context, key string) *domain.Response {
	cache, err := r.storage.Open(ctx, r.version.String())
	if err != nil {
		r.logger.Error(err)
		return nil
	}
	resp, err := cache.Get(ctx, key)
	if err != nil {
		r.logger.Error(err)
		return nil
	}
	if resp != nil {
		resp.Source = domain.SourceCache
	}
	return resp
}

// store writes resp under the request key when the request is a GET and the response a 200.
// Failures are logged; the response path never sees them.
func (r *Router) store(ctx context.Context, req *domain.Request, resp *domain.Response) {
	if !req.IsGet() || !resp.OK() {
		return
	}
	cache, err := r.storage.Open(ctx, r.version.String())
	if err != nil {
		r.logger.Error(err)
		return
	}
	entry := resp.Clone()
	entry.StoredAt = r.now()
	if err := cache.Put(ctx, req.Key(), entry); err != nil {
		r.logger.Error(zerr.With(err, "url", req.URL.String()))
	}
}

func (r *Router) fetch(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	resp, err := r.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}
	resp.Source = domain.SourceNetwork
	return resp, nil
}

// refreshInBackground re-fetches req detached from the response path and stores a 200.
func (r *Router) refreshInBackground(ctx context.Context, req *domain.Request) {
	req = req.Clone()
	r.bg.Go(ctx, func(ctx context.Context) error {
		resp, err := r.fetch(ctx, req)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "background refresh failed"), "url", req.URL.String())
		}
		r.store(ctx, req, resp)
		return nil
	})
}

// originKey returns the GET cache key of an origin-relative path.
func (r *Router) originKey(p string) string {
	ref, err := url.Parse(p)
	if err != nil {
		return ""
	}
	return domain.RequestKey(http.MethodGet, r.origin.ResolveReference(ref))
}

func (r *Router) isSameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, r.origin.Scheme) && strings.EqualFold(u.Host, r.origin.Host)
}

// mayPersist reports whether the Default strategy is allowed to store a response for u.
func (r *Router) mayPersist(u *url.URL) bool {
	return r.isSameOrigin(u) || r.policy.IsCDNHost(u.Hostname())
}
