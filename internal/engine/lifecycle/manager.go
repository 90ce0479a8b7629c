// Package lifecycle owns cache versions: install-time precache, activation, cleanup and refresh.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// precacheConcurrency bounds parallel asset fetches during install and refresh.
const precacheConcurrency = 4

// Flusher replays the offline action queue.
type Flusher interface {
	Flush(ctx context.Context) (domain.SyncResult, error)
}

// Manager is the sole owner of cache version creation and deletion.
type Manager struct {
	storage  ports.CacheStorage
	fetcher  ports.Fetcher
	hub      ports.ClientHub
	flusher  Flusher
	logger   ports.Logger
	version  domain.CacheVersion
	precache domain.Precache
	origin   *url.URL
	now      func() time.Time

	mu          sync.Mutex
	state       domain.LifecycleState
	skipWaiting bool
}

// New creates a Manager in the installing state. When skipWaiting is set the manager
// activates as soon as install completes.
func New(
	storage ports.CacheStorage,
	fetcher ports.Fetcher,
	hub ports.ClientHub,
	flusher Flusher,
	logger ports.Logger,
	settings domain.Settings,
) (*Manager, error) {
	origin, err := settings.OriginURL()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidURL.Error()), "origin", settings.Origin)
	}
	return &Manager{
		storage:     storage,
		fetcher:     fetcher,
		hub:         hub,
		flusher:     flusher,
		logger:      logger,
		version:     settings.CacheVersion(),
		precache:    settings.Precache,
		origin:      origin,
		now:         time.Now,
		state:       domain.StateInstalling,
		skipWaiting: settings.SkipWaiting,
	}, nil
}

// Version returns the current cache version.
func (m *Manager) Version() domain.CacheVersion {
	return m.version
}

// State returns the current lifecycle state.
func (m *Manager) State() domain.LifecycleState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Install pre-populates the current version with the core assets, then the rest.
// Assets that fail are logged and skipped. It returns the number of cached assets.
func (m *Manager) Install(ctx context.Context) (int, error) {
	m.mu.Lock()
	if m.state != domain.StateInstalling {
		m.mu.Unlock()
		return 0, zerr.With(domain.ErrInvalidTransition, "state", m.state.String())
	}
	m.mu.Unlock()

	cache, err := m.storage.Open(ctx, m.version.String())
	if err != nil {
		err = errors.Join(domain.ErrStoreOpenFailed, err)
		m.logger.Error(err)
		return 0, err
	}

	cached := m.addAll(ctx, cache, m.precache.Core)
	cached += m.addAll(ctx, cache, m.precache.Rest)
	m.logger.Info("installed " + m.version.String())

	m.mu.Lock()
	m.state = domain.StateWaiting
	activate := m.skipWaiting
	m.mu.Unlock()

	if activate {
		if err := m.Activate(ctx); err != nil {
			return cached, err
		}
	}
	return cached, nil
}

// SkipWaiting activates a waiting version. During install it defers activation until install
// completes. Once active it does nothing.
func (m *Manager) SkipWaiting(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case domain.StateInstalling:
		m.skipWaiting = true
		m.mu.Unlock()
		return nil
	case domain.StateWaiting:
		m.mu.Unlock()
		return m.Activate(ctx)
	default:
		m.mu.Unlock()
		return nil
	}
}

// ClientConnected activates a waiting version when at most one client is connected.
func (m *Manager) ClientConnected(ctx context.Context) error {
	if m.State() != domain.StateWaiting || len(m.hub.Clients()) > 1 {
		return nil
	}
	return m.Activate(ctx)
}

// Activate deletes every other cache version, claims the clients, flushes the offline queue
// and announces the version. Calling it while another activation runs, or after, is a no-op.
func (m *Manager) Activate(ctx context.Context) error {
	m.mu.Lock()
	switch m.state {
	case domain.StateWaiting:
		m.state = domain.StateActivating
		m.mu.Unlock()
	case domain.StateActivating, domain.StateActive:
		m.mu.Unlock()
		return nil
	default:
		state := m.state
		m.mu.Unlock()
		return zerr.With(domain.ErrInvalidTransition, "state", state.String())
	}

	if _, err := m.deleteStale(ctx); err != nil {
		m.mu.Lock()
		m.state = domain.StateWaiting
		m.mu.Unlock()
		m.logger.Error(err)
		return err
	}

	claimed := m.hub.Claim(ctx)
	m.logger.Info(fmt.Sprintf("activated %s, claimed %d clients", m.version, claimed))

	if _, err := m.flusher.Flush(ctx); err != nil {
		m.logger.Error(zerr.Wrap(err, "offline queue flush on activation failed"))
	}

	m.mu.Lock()
	m.state = domain.StateActive
	m.mu.Unlock()

	if err := m.hub.Broadcast(ctx, domain.ActivatedMessage(m.version.String())); err != nil {
		m.logger.Error(err)
	}
	return nil
}

// deleteStale removes every cache version other than the current one.
func (m *Manager) deleteStale(ctx context.Context) ([]string, error) {
	names, err := m.storage.Names(ctx)
	if err != nil {
		return nil, errors.Join(domain.ErrStoreListFailed, err)
	}

	var deleted []string
	for _, name := range names {
		if !m.version.IsStale(name) {
			continue
		}
		if _, err := m.storage.Delete(ctx, name); err != nil {
			return deleted, zerr.With(errors.Join(domain.ErrStoreDeleteFailed, err), "cache", name)
		}
		m.logger.Info("deleted old cache " + name)
		deleted = append(deleted, name)
	}
	return deleted, nil
}

// Add fetches one asset into the current version.
func (m *Manager) Add(ctx context.Context, rawURL string) error {
	cache, err := m.storage.Open(ctx, m.version.String())
	if err != nil {
		return errors.Join(domain.ErrStoreOpenFailed, err)
	}
	return m.add(ctx, cache, rawURL)
}

// Refresh re-fetches every precache asset and replaces the stored copy on a 200.
// It returns the number of refreshed assets.
func (m *Manager) Refresh(ctx context.Context) (int, error) {
	cache, err := m.storage.Open(ctx, m.version.String())
	if err != nil {
		err = errors.Join(domain.ErrStoreOpenFailed, err)
		m.logger.Error(err)
		return 0, err
	}
	n := m.addAll(ctx, cache, m.precache.All())
	m.logger.Info("content update refreshed assets")
	return n, nil
}

// Invalidate deletes the entries for the given origin paths from the current version.
// Removing /index.html also removes /. It returns the number of deleted entries.
func (m *Manager) Invalidate(ctx context.Context, paths []string) (int, error) {
	cache, err := m.storage.Open(ctx, m.version.String())
	if err != nil {
		return 0, errors.Join(domain.ErrStoreOpenFailed, err)
	}

	var targets []string
	for _, p := range paths {
		targets = append(targets, p)
		if p == "/index.html" {
			targets = append(targets, "/")
		}
	}

	deleted := 0
	for _, p := range targets {
		req, err := m.request(p)
		if err != nil {
			continue
		}
		ok, err := cache.Delete(ctx, req.Key())
		if err != nil {
			return deleted, errors.Join(domain.ErrStoreDeleteFailed, err)
		}
		if ok {
			deleted++
		}
	}
	return deleted, nil
}

// Info describes every known cache and its entry count.
func (m *Manager) Info(ctx context.Context) (domain.CacheInfo, error) {
	names, err := m.storage.Names(ctx)
	if err != nil {
		return domain.CacheInfo{}, errors.Join(domain.ErrStoreListFailed, err)
	}

	info := domain.CacheInfo{
		Version: m.version.String(),
		State:   m.State().String(),
		Caches:  make([]domain.CacheStats, 0, len(names)),
	}
	for _, name := range names {
		cache, err := m.storage.Open(ctx, name)
		if err != nil {
			return domain.CacheInfo{}, errors.Join(domain.ErrStoreOpenFailed, err)
		}
		keys, err := cache.Keys(ctx)
		if err != nil {
			return domain.CacheInfo{}, errors.Join(domain.ErrStoreListFailed, err)
		}
		info.Caches = append(info.Caches, domain.CacheStats{Name: name, Entries: len(keys)})
	}
	sort.Slice(info.Caches, func(i, j int) bool { return info.Caches[i].Name < info.Caches[j].Name })
	return info, nil
}

// Clear deletes every cache version. The offline-data cache is kept unless all is set.
// It returns the names of the deleted caches.
func (m *Manager) Clear(ctx context.Context, all bool) ([]string, error) {
	names, err := m.storage.Names(ctx)
	if err != nil {
		return nil, errors.Join(domain.ErrStoreListFailed, err)
	}

	var deleted []string
	for _, name := range names {
		if !all && domain.IsReservedCache(name) {
			continue
		}
		if _, err := m.storage.Delete(ctx, name); err != nil {
			return deleted, zerr.With(errors.Join(domain.ErrStoreDeleteFailed, err), "cache", name)
		}
		deleted = append(deleted, name)
	}
	slices.Sort(deleted)
	return deleted, nil
}

// addAll fetches urls into cache in parallel, logging and skipping failures.
func (m *Manager) addAll(ctx context.Context, cache ports.Cache, urls []string) int {
	var cached atomic.Int64
	var g errgroup.Group
	g.SetLimit(precacheConcurrency)

	for _, u := range urls {
		g.Go(func() error {
			if err := m.add(ctx, cache, u); err != nil {
				m.logger.Error(err)
				return nil
			}
			cached.Add(1)
			return nil
		})
	}
	_ = g.Wait()
	return int(cached.Load())
}

// add fetches rawURL and stores it when the response is a 200.
func (m *Manager) add(ctx context.Context, cache ports.Cache, rawURL string) error {
	req, err := m.request(rawURL)
	if err != nil {
		return zerr.With(errors.Join(domain.ErrPrecacheFailed, err), "url", rawURL)
	}

	resp, err := m.fetcher.Fetch(ctx, req)
	if err != nil {
		return zerr.With(errors.Join(domain.ErrPrecacheFailed, err), "url", req.URL.String())
	}
	if !resp.OK() {
		return zerr.With(zerr.With(domain.ErrPrecacheFailed, "status", resp.Status), "url", req.URL.String())
	}

	resp.StoredAt = m.now()
	if err := cache.Put(ctx, req.Key(), resp); err != nil {
		return zerr.With(errors.Join(domain.ErrStoreWriteFailed, err), "url", req.URL.String())
	}
	return nil
}

// request builds a GET for an asset, resolving origin-relative paths.
func (m *Manager) request(rawURL string) (*domain.Request, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrInvalidURL.Error())
	}
	return &domain.Request{
		Method:      http.MethodGet,
		URL:         m.origin.ResolveReference(ref),
		Destination: domain.DestinationNone,
		Header:      make(http.Header),
	}, nil
}
