package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/swcache/internal/app"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func newProvider(t *testing.T) (ComponentProvider, *mocks.MockConfigLoader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockLoader := mocks.NewMockConfigLoader(ctrl)
	mockLogger := mocks.NewMockLogger(ctrl)

	application := app.New(
		mockLoader,
		mockLogger,
		mocks.NewMockWindowOpener(ctrl),
		mocks.NewMockWatcher(ctrl),
	)

	provider := func(context.Context) (*app.Components, func(), error) {
		return &app.Components{
			App:    application,
			Logger: mockLogger,
		}, func() {}, nil
	}
	return provider, mockLoader, mockLogger
}

// TestRun_Success verifies that the run function returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	provider, _, _ := newProvider(t)

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stdout, new(bytes.Buffer), provider)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "swcache version")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, io.Discard, stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that run returns 1 and logs when the command execution fails.
func TestRun_ExecutionError(t *testing.T) {
	provider, mockLoader, mockLogger := newProvider(t)
	mockLoader.EXPECT().Load("").Return(domain.Settings{}, errors.New("load failed"))
	mockLogger.EXPECT().Error(gomock.Any()).Do(func(err error) {
		assert.Contains(t, err.Error(), "load failed")
	})

	exitCode := run(context.Background(), []string{"info"}, io.Discard, io.Discard, provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_Signal verifies that the context is canceled on signal.
func TestRun_Signal(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Listen = "127.0.0.1:0"
	settings.Ephemeral = true
	settings.Precache = domain.Precache{}

	provider, mockLoader, mockLogger := newProvider(t)
	mockLoader.EXPECT().Load("").Return(settings, nil)
	mockLogger.EXPECT().Info(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan int)

	go func() {
		errCh <- run(ctx, []string{"serve"}, io.Discard, io.Discard, provider)
	}()

	// Wait a bit to ensure run() reaches Serve()
	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case ret := <-errCh:
		assert.Equal(t, 0, ret)
	case <-time.After(5 * time.Second):
		t.Fatal("TestRun_Signal timed out waiting for run() to return")
	}
}
