package router

import (
	"context"
	"net/http"

	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/zerr"
)

func resolveBypass(ctx context.Context, r *Router, req *domain.Request) (*domain.Response, error) {
	return r.fetch(ctx, req)
}

// resolveImage serves images cache-first. A hit is returned at once while a detached refresh
// corrects staleness. On a total failure, character assets fall back to the cached character
// image and everything else to a generated placeholder.
func resolveImage(ctx context.Context, r *Router, req *domain.Request) (*domain.Response, error) {
	key := req.Key()
	if cached := r.lookup(ctx, key); cached != nil {
		r.refreshInBackground(ctx, req)
		return cached, nil
	}

	resp, err := r.fetch(ctx, req)
	if err == nil {
		r.store(ctx, req, resp)
		return resp, nil
	}
	r.logger.Warn("image unavailable, serving fallback: " + req.URL.String())

	if r.policy.IsCharacterPath(req.URL.Path) && r.policy.CharacterFallback != "" {
		if fallback := r.lookup(ctx, r.originKey(r.policy.CharacterFallback)); fallback != nil {
			fallback.Header = fallback.Header.Clone()
			if fallback.Header == nil {
				fallback.Header = make(http.Header)
			}
			fallback.Header.Set(domain.FallbackHeader, domain.FallbackImage)
			return fallback, nil
		}
	}
	return PlaceholderImage(r.policy, req.URL.Path), nil
}

// resolveDocument serves HTML network-first with the cached page, then the cached root
// document, then the offline page as fallbacks.
func resolveDocument(ctx context.Context, r *Router, req *domain.Request) (*domain.Response, error) {
	resp, err := r.fetch(ctx, req)
	if err == nil {
		r.store(ctx, req, resp)
		return resp, nil
	}

	if cached := r.lookup(ctx, req.Key()); cached != nil {
		return cached, nil
	}
	for _, root := range []string{"/", "/index.html"} {
		if cached := r.lookup(ctx, r.originKey(root)); cached != nil {
			cached.Header = cached.Header.Clone()
			if cached.Header == nil {
				cached.Header = make(http.Header)
			}
			cached.Header.Set(domain.FallbackHeader, domain.FallbackRootDocument)
			return cached, nil
		}
	}
	r.logger.Warn("document unavailable, serving offline page: " + req.URL.String())
	return OfflinePage(), nil
}

func resolveStaleWhileRevalidate(ctx context.Context, r *Router, req *domain.Request) (*domain.Response, error) {
	if cached := r.lookup(ctx, req.Key()); cached != nil {
		r.refreshInBackground(ctx, req)
		return cached, nil
	}

	resp, err := r.fetch(ctx, req)
	if err != nil {
		r.logger.Warn("cdn resource unavailable: " + req.URL.String())
		return NetworkError(), nil
	}
	r.store(ctx, req, resp)
	return resp, nil
}

// resolveAudio never fails: a missing track becomes a silent, zero-length response.
func resolveAudio(ctx context.Context, r *Router, req *domain.Request) (*domain.Response, error) {
	if cached := r.lookup(ctx, req.Key()); cached != nil {
		return cached, nil
	}

	resp, err := r.fetch(ctx, req)
	if err != nil {
		r.logger.Warn("audio unavailable, serving silence: " + req.URL.String())
		return SilentAudio(), nil
	}
	r.store(ctx, req, resp)
	return resp, nil
}

func resolveDefault(ctx context.Context, r *Router, req *domain.Request) (*domain.Response, error) {
	if cached := r.lookup(ctx, req.Key()); cached != nil {
		return cached, nil
	}

	resp, err := r.fetch(ctx, req)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrNetworkUnavailable.Error()), "url", req.URL.String())
	}
	if r.mayPersist(req.URL) {
		r.store(ctx, req, resp)
	}
	return resp, nil
}
