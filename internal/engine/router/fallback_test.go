package router_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/engine/router"
)

func TestPlaceholderImage_Golden(t *testing.T) {
	resp := router.PlaceholderImage(domain.DefaultSettings().Policy, "/assets/images/badges/focus_master.png")

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "image/svg+xml", resp.ContentType())
	assert.Equal(t, domain.FallbackPlaceholder, resp.Header.Get(domain.FallbackHeader))

	g := goldie.New(t)
	g.Assert(t, "placeholder_focus_master", resp.Body)
}

func TestInitials(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "focus_master", want: "FM"},
		{in: "night-owl-extra", want: "NO"},
		{in: "streak", want: "S"},
		{in: "", want: "?"},
		{in: "__", want: "?"},
		{in: "7day_streak", want: "7S"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, router.Initials(tt.in))
		})
	}
}

func TestOfflinePage(t *testing.T) {
	resp := router.OfflinePage()

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, string(resp.Body), "You're Offline")
	assert.Contains(t, string(resp.Body), "<style>")
	assert.NotContains(t, string(resp.Body), "<link")
}

func TestSilentAudio(t *testing.T) {
	resp := router.SilentAudio()

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Empty(t, resp.Body)
	assert.Equal(t, domain.FallbackSilentAudio, resp.Header.Get(domain.FallbackHeader))
}

func TestOfflineAPIError(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	resp := router.OfflineAPIError(now)

	assert.Equal(t, http.StatusServiceUnavailable, resp.Status)
	assert.Equal(t, "application/json", resp.ContentType())

	var body map[string]any
	require.NoError(t, json.Unmarshal(resp.Body, &body))
	assert.Equal(t, "offline", body["error"])
	assert.Equal(t, true, body["offline"])
	assert.Equal(t, "2026-03-01T12:00:00Z", body["timestamp"])
	assert.NotEmpty(t, body["message"])
}

func TestNetworkError(t *testing.T) {
	resp := router.NetworkError()
	assert.Equal(t, http.StatusRequestTimeout, resp.Status)
	assert.Equal(t, "Network error", string(resp.Body))
}
