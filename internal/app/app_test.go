package app_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swcache/internal/adapters/storage"
	"go.trai.ch/swcache/internal/app"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/swcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	app     *app.App
	loader  *mocks.MockConfigLoader
	logger  *mocks.MockLogger
	opener  *mocks.MockWindowOpener
	watcher *mocks.MockWatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &fixture{
		loader:  mocks.NewMockConfigLoader(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
		opener:  mocks.NewMockWindowOpener(ctrl),
		watcher: mocks.NewMockWatcher(ctrl),
	}
	f.app = app.New(f.loader, f.logger, f.opener, f.watcher)
	return f
}

func testSettings(t *testing.T) domain.Settings {
	t.Helper()
	settings := domain.DefaultSettings()
	settings.Version = "study-companion-test"
	settings.Origin = "http://study.test"
	settings.Listen = "127.0.0.1:0"
	settings.DataDir = t.TempDir()
	settings.Precache = domain.Precache{Core: []string{"/", "/index.html"}}
	return settings
}

func seedStore(t *testing.T, settings domain.Settings, names ...string) {
	t.Helper()
	store, err := storage.Open(settings)
	require.NoError(t, err)
	defer func() { require.NoError(t, store.Close()) }()

	for _, name := range names {
		cache, err := store.Open(t.Context(), name)
		require.NoError(t, err)
		require.NoError(t, cache.Put(t.Context(), "GET http://study.test/", &domain.Response{Status: http.StatusOK}))
	}
}

func TestApp_Serve(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html></html>"))
	}))
	t.Cleanup(upstream.Close)

	f := newFixture(t)
	settings := testSettings(t)
	settings.Upstream = upstream.URL
	f.loader.EXPECT().Load("").Return(settings, nil).AnyTimes()

	activated := make(chan struct{})
	var once sync.Once
	f.logger.EXPECT().Info(gomock.Any()).Do(func(msg string) {
		if strings.HasPrefix(msg, "activated study-companion-test") {
			once.Do(func() { close(activated) })
		}
	}).AnyTimes()
	f.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	f.logger.EXPECT().Error(gomock.Any()).AnyTimes()

	ctx, cancel := context.WithCancel(t.Context())
	errCh := make(chan error, 1)
	go func() {
		errCh <- f.app.Serve(ctx, app.ServeOptions{})
	}()

	select {
	case <-activated:
	case err := <-errCh:
		t.Fatalf("Serve returned before activation: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for activation")
	}

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	info, err := f.app.Info(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, "study-companion-test", info.Version)
	assert.Empty(t, info.State)
	assert.Contains(t, info.Caches, domain.CacheStats{Name: "study-companion-test", Entries: 2})
}

func TestApp_Serve_WatchesStaticDir(t *testing.T) {
	f := newFixture(t)
	settings := testSettings(t)
	settings.Ephemeral = true
	settings.Precache = domain.Precache{}
	settings.StaticDir = t.TempDir()
	f.loader.EXPECT().Load("").Return(settings, nil)
	f.logger.EXPECT().Info(gomock.Any()).AnyTimes()
	f.logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	f.logger.EXPECT().Error(gomock.Any()).AnyTimes()

	ctx, cancel := context.WithCancel(t.Context())
	stopped := make(chan struct{})
	f.watcher.EXPECT().Start(gomock.Any(), settings.StaticDir).Return(nil)
	f.watcher.EXPECT().Events().Return(func(func([]ports.WatchEvent) bool) {
		<-stopped
	})
	f.watcher.EXPECT().Stop().DoAndReturn(func() error {
		close(stopped)
		return nil
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- f.app.Serve(ctx, app.ServeOptions{})
	}()

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestApp_Serve_ConfigError(t *testing.T) {
	f := newFixture(t)
	f.loader.EXPECT().Load("custom.yaml").Return(domain.Settings{}, errors.New("bad yaml"))

	err := f.app.Serve(t.Context(), app.ServeOptions{ConfigPath: "custom.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestApp_Serve_WatcherError(t *testing.T) {
	f := newFixture(t)
	settings := testSettings(t)
	settings.Ephemeral = true
	settings.StaticDir = "missing"
	f.loader.EXPECT().Load("").Return(settings, nil)
	f.watcher.EXPECT().Start(gomock.Any(), "missing").Return(errors.New("no such directory"))

	err := f.app.Serve(t.Context(), app.ServeOptions{})
	require.ErrorContains(t, err, "no such directory")
}

func TestApp_Info(t *testing.T) {
	f := newFixture(t)
	settings := testSettings(t)
	seedStore(t, settings, "study-companion-test", domain.OfflineDataCacheName)
	f.loader.EXPECT().Load("").Return(settings, nil)

	info, err := f.app.Info(t.Context(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.CacheInfo{
		Version: "study-companion-test",
		Caches: []domain.CacheStats{
			{Name: domain.OfflineDataCacheName, Entries: 1},
			{Name: "study-companion-test", Entries: 1},
		},
	}, info)
}

func TestApp_Clean(t *testing.T) {
	t.Run("keeps offline data", func(t *testing.T) {
		f := newFixture(t)
		settings := testSettings(t)
		seedStore(t, settings, "study-companion-v1", "study-companion-test", domain.OfflineDataCacheName)
		f.loader.EXPECT().Load("").Return(settings, nil).Times(2)
		f.logger.EXPECT().Info("removed cache study-companion-test")
		f.logger.EXPECT().Info("removed cache study-companion-v1")

		require.NoError(t, f.app.Clean(t.Context(), app.CleanOptions{}))

		info, err := f.app.Info(t.Context(), "")
		require.NoError(t, err)
		assert.Equal(t, []domain.CacheStats{{Name: domain.OfflineDataCacheName, Entries: 1}}, info.Caches)
	})

	t.Run("all", func(t *testing.T) {
		f := newFixture(t)
		settings := testSettings(t)
		seedStore(t, settings, domain.OfflineDataCacheName)
		f.loader.EXPECT().Load("").Return(settings, nil)
		f.logger.EXPECT().Info("removed cache " + domain.OfflineDataCacheName)

		require.NoError(t, f.app.Clean(t.Context(), app.CleanOptions{All: true}))
	})

	t.Run("nothing to clean", func(t *testing.T) {
		f := newFixture(t)
		settings := testSettings(t)
		f.loader.EXPECT().Load("").Return(settings, nil)
		f.logger.EXPECT().Info("nothing to clean")

		require.NoError(t, f.app.Clean(t.Context(), app.CleanOptions{}))
	})
}

func TestApp_Config(t *testing.T) {
	f := newFixture(t)
	settings := testSettings(t)
	f.loader.EXPECT().Load("").Return(settings, nil)

	out, err := f.app.Config("")
	require.NoError(t, err)
	assert.Contains(t, string(out), "version: study-companion-test")
	assert.Contains(t, string(out), "fetch_timeout: 10s")
}
