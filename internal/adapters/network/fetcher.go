// Package network implements ports.Fetcher over net/http.
package network

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/zerr"
)

const defaultTimeout = 10 * time.Second

// hopHeaders are connection-level headers that never belong to a stored response.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
	"Content-Length",
}

// Fetcher performs requests against the network. Requests for the configured origin are sent
// to the upstream server instead.
type Fetcher struct {
	client   *http.Client
	origin   *url.URL
	upstream *url.URL
}

// New creates a Fetcher from settings.
func New(settings domain.Settings) (*Fetcher, error) {
	timeout := settings.FetchTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return newFetcherWithClient(&http.Client{Timeout: timeout}, settings.Origin, settings.Upstream)
}

// newFetcherWithClient creates a Fetcher with a custom http client (used for testing).
func newFetcherWithClient(client *http.Client, origin, upstream string) (*Fetcher, error) {
	f := &Fetcher{client: client}
	var err error
	if f.origin, err = parseOptional(origin); err != nil {
		return nil, err
	}
	if f.upstream, err = parseOptional(upstream); err != nil {
		return nil, err
	}
	return f, nil
}

func parseOptional(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, zerr.With(domain.ErrInvalidURL, "url", raw)
	}
	return u, nil
}

// Fetch sends req and returns the complete response. Non-2xx statuses are not errors.
func (f *Fetcher) Fetch(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	if req == nil || req.URL == nil {
		return nil, domain.ErrInvalidURL
	}
	target := f.target(req.URL)

	var body io.Reader = http.NoBody
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidURL.Error()), "url", target.String())
	}
	httpReq.Header = req.Header.Clone()
	if httpReq.Header == nil {
		httpReq.Header = make(http.Header)
	}
	// Let the transport negotiate compression so bodies arrive decoded.
	httpReq.Header.Del("Accept-Encoding")
	for _, h := range hopHeaders {
		httpReq.Header.Del(h)
	}

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrNetworkFailure.Error()), "url", target.String())
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrNetworkFailure.Error()), "url", target.String())
	}

	header := resp.Header.Clone()
	for _, h := range hopHeaders {
		header.Del(h)
	}

	return &domain.Response{
		Status: resp.StatusCode,
		Header: header,
		Body:   data,
		Source: domain.SourceNetwork,
	}, nil
}

// target drops the fragment and rewrites same-origin URLs to the upstream server.
func (f *Fetcher) target(u *url.URL) *url.URL {
	out := *u
	out.Fragment = ""
	out.RawFragment = ""
	if f.origin == nil || f.upstream == nil {
		return &out
	}
	if !strings.EqualFold(u.Scheme, f.origin.Scheme) || !strings.EqualFold(u.Host, f.origin.Host) {
		return &out
	}
	out.Scheme = f.upstream.Scheme
	out.Host = f.upstream.Host
	if prefix := strings.TrimSuffix(f.upstream.Path, "/"); prefix != "" {
		out.Path = prefix + u.Path
		out.RawPath = ""
	}
	return &out
}
