package queue_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swcache/internal/adapters/storage/memory"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports/mocks"
	"go.trai.ch/swcache/internal/engine/queue"
	"go.uber.org/mock/gomock"
)

func setupBackupTest(t *testing.T) (*queue.Backup, *memory.Storage, *mocks.MockClientHub, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	storage := memory.New()
	hub := mocks.NewMockClientHub(ctrl)
	logger := mocks.NewMockLogger(ctrl)
	b := queue.NewBackup(storage, hub, logger)
	b.SetClock(func() time.Time { return fixedNow })
	return b, storage, hub, logger
}

func TestBackup_SaveOverwrites(t *testing.T) {
	b, storage, _, _ := setupBackupTest(t)

	_, err := b.Save(t.Context(), json.RawMessage(`{"sessions":1}`))
	require.NoError(t, err)
	_, err = b.Save(t.Context(), json.RawMessage(`{"sessions":2}`))
	require.NoError(t, err)

	got, err := b.Load(t.Context())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.JSONEq(t, `{"sessions":2}`, string(got.Data))
	assert.Equal(t, fixedNow, got.Timestamp)

	c, err := storage.Open(t.Context(), domain.OfflineDataCacheName)
	require.NoError(t, err)
	keys, err := c.Keys(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{domain.ProgressBackupKey}, keys)
}

func TestBackup_LoadEmpty(t *testing.T) {
	b, _, _, _ := setupBackupTest(t)

	got, err := b.Load(t.Context())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBackup_Report(t *testing.T) {
	b, _, hub, _ := setupBackupTest(t)

	found, err := b.Report(t.Context())
	require.NoError(t, err)
	assert.False(t, found)

	_, err = b.Save(t.Context(), json.RawMessage(`{"streak":4}`))
	require.NoError(t, err)

	hub.EXPECT().Broadcast(gomock.Any(), domain.Message{
		Type: domain.MessageProgressBackupFound,
		Data: json.RawMessage(`{"streak":4}`),
	})
	found, err = b.Report(t.Context())
	require.NoError(t, err)
	assert.True(t, found)
}

func TestBackup_ReportTo(t *testing.T) {
	b, _, hub, logger := setupBackupTest(t)
	_, err := b.Save(t.Context(), json.RawMessage(`{"streak":4}`))
	require.NoError(t, err)

	hub.EXPECT().Send(gomock.Any(), "client-1", gomock.Any()).Return(errors.New("gone"))
	logger.EXPECT().Error(gomock.Any())

	found, err := b.ReportTo(t.Context(), "client-1")
	require.Error(t, err)
	assert.True(t, found)
}

func TestBackup_Corrupt(t *testing.T) {
	b, storage, _, logger := setupBackupTest(t)
	logger.EXPECT().Error(gomock.Any())

	c, err := storage.Open(t.Context(), domain.OfflineDataCacheName)
	require.NoError(t, err)
	require.NoError(t, c.Put(t.Context(), domain.ProgressBackupKey, &domain.Response{Status: http.StatusOK, Body: []byte("[")}))

	_, err = b.Load(t.Context())
	require.ErrorIs(t, err, domain.ErrBackupCorrupt)

	_, err = b.Report(t.Context())
	require.ErrorIs(t, err, domain.ErrBackupCorrupt)
}
