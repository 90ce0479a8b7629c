package watcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swcache/internal/adapters/watcher"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/swcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestWatcher_ReportsRelativePaths(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets"), 0o750))

	logger := mocks.NewMockLogger(gomock.NewController(t))
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcher(logger, 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context(), root))
	t.Cleanup(func() { _ = w.Stop() })

	batches := make(chan []ports.WatchEvent, 8)
	go func() {
		for batch := range w.Events() {
			batches <- batch
		}
		close(batches)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(root, "assets", "app.js"), []byte("x"), 0o600))

	seen := map[string]bool{}
	deadline := time.After(5 * time.Second)
	for !seen["assets/app.js"] {
		select {
		case batch := <-batches:
			for _, e := range batch {
				seen[e.Path] = true
			}
		case <-deadline:
			t.Fatalf("no event for assets/app.js, saw %v", seen)
		}
	}

	require.NoError(t, w.Stop())
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-batches:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}
