package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swcache/internal/adapters/server"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

type fakeResolver struct {
	got  *domain.Request
	resp *domain.Response
	err  error
}

func (f *fakeResolver) Resolve(_ context.Context, req *domain.Request) (*domain.Response, error) {
	f.got = req
	return f.resp, f.err
}

type fakeCommands struct {
	got   domain.Command
	reply *domain.Message
}

func (f *fakeCommands) Reply(_ context.Context, cmd domain.Command) *domain.Message {
	f.got = cmd
	return f.reply
}

type fakeSyncer struct {
	tags []domain.SyncTag
	err  error
}

func (f *fakeSyncer) Sync(_ context.Context, tag domain.SyncTag) error {
	f.tags = append(f.tags, tag)
	return f.err
}

type fakeNotifier struct {
	pushes []domain.Push
	clicks []domain.NotificationClick
}

func (f *fakeNotifier) Show(_ context.Context, p domain.Push) (domain.Notification, error) {
	f.pushes = append(f.pushes, p)
	return domain.NewNotification(p), nil
}

func (f *fakeNotifier) Click(_ context.Context, click domain.NotificationClick) error {
	f.clicks = append(f.clicks, click)
	return nil
}

type serverFixture struct {
	handler  http.Handler
	resolver *fakeResolver
	commands *fakeCommands
	syncer   *fakeSyncer
	notifier *fakeNotifier
}

func setupServerTest(t *testing.T, metrics http.Handler) *serverFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	origin, err := url.Parse("http://localhost:8080")
	require.NoError(t, err)

	f := &serverFixture{
		resolver: &fakeResolver{},
		commands: &fakeCommands{},
		syncer:   &fakeSyncer{},
		notifier: &fakeNotifier{},
	}
	s := server.New(f.resolver, f.commands, f.syncer, f.notifier, logger, server.Options{
		Listen:  "127.0.0.1:0",
		Origin:  origin,
		Metrics: metrics,
	})
	f.handler = s.Handler()
	return f
}

func (f *serverFixture) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestIntercept_NormalizesRequest(t *testing.T) {
	f := setupServerTest(t, nil)
	f.resolver.resp = &domain.Response{
		Status: http.StatusOK,
		Header: http.Header{"Content-Type": []string{"image/png"}},
		Body:   []byte("png"),
	}

	req := httptest.NewRequest(http.MethodGet, "/assets/images/arona.png?v=2", http.NoBody)
	req.Header.Set("Sec-Fetch-Dest", "image")
	req.Header.Set("Accept", "image/*")

	rec := f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	got := f.resolver.got
	require.NotNil(t, got)
	assert.Equal(t, "http://localhost:8080/assets/images/arona.png?v=2", got.URL.String())
	assert.Equal(t, domain.DestinationImage, got.Destination)
	assert.Equal(t, "image/*", got.Accept())
}

func TestIntercept_AbsoluteFormKeepsURL(t *testing.T) {
	f := setupServerTest(t, nil)
	f.resolver.resp = &domain.Response{Status: http.StatusOK}

	req := httptest.NewRequest(http.MethodGet, "https://cdn.tailwindcss.com/3.4.0", http.NoBody)
	req.Header.Set("Sec-Fetch-Dest", "empty")

	rec := f.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://cdn.tailwindcss.com/3.4.0", f.resolver.got.URL.String())
	assert.Equal(t, domain.DestinationNone, f.resolver.got.Destination)
}

func TestIntercept_ForwardsBody(t *testing.T) {
	f := setupServerTest(t, nil)
	f.resolver.resp = &domain.Response{Status: http.StatusCreated}

	rec := f.do(jsonRequest(http.MethodPost, "/api/sessions", `{"minutes":25}`))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, http.MethodPost, f.resolver.got.Method)
	assert.JSONEq(t, `{"minutes":25}`, string(f.resolver.got.Body))
}

func TestIntercept_RejectsOversizeBody(t *testing.T) {
	oversize := strings.Repeat("x", 9<<20)

	tests := []struct {
		name string
		body io.Reader
	}{
		{name: "declared length", body: strings.NewReader(oversize)},
		{name: "unknown length", body: io.MultiReader(strings.NewReader(oversize))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupServerTest(t, nil)
			f.resolver.resp = &domain.Response{Status: http.StatusOK}

			req := httptest.NewRequest(http.MethodPost, "/api/progress", tt.body)
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)

			rec := f.do(req)
			assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
			assert.Nil(t, f.resolver.got)
		})
	}
}

func TestIntercept_ErrorIsNetworkError(t *testing.T) {
	f := setupServerTest(t, nil)
	f.resolver.err = domain.ErrNetworkUnavailable

	rec := f.do(httptest.NewRequest(http.MethodGet, "/app.js", http.NoBody))
	assert.Equal(t, http.StatusRequestTimeout, rec.Code)
	assert.Equal(t, server.NetworkErrorBody, rec.Body.String())
}

func TestCommands(t *testing.T) {
	t.Run("reply", func(t *testing.T) {
		f := setupServerTest(t, nil)
		f.commands.reply = &domain.Message{Type: domain.MessageVersion, Version: "study-companion-v2"}

		rec := f.do(jsonRequest(http.MethodPost, "/sw/commands", `{"type":"GET_SW_VERSION"}`))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"type":"SW_VERSION","version":"study-companion-v2"}`, rec.Body.String())
		assert.Equal(t, domain.CommandGetVersion, f.commands.got.Type)
	})

	t.Run("no reply", func(t *testing.T) {
		f := setupServerTest(t, nil)

		rec := f.do(jsonRequest(http.MethodPost, "/sw/commands", `{"type":"SKIP_WAITING"}`))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("malformed", func(t *testing.T) {
		f := setupServerTest(t, nil)

		rec := f.do(jsonRequest(http.MethodPost, "/sw/commands", `{"type":`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var msg domain.Message
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &msg))
		assert.Equal(t, domain.MessageError, msg.Type)
	})
}

func TestSync(t *testing.T) {
	f := setupServerTest(t, nil)

	rec := f.do(httptest.NewRequest(http.MethodPost, "/sw/sync/background-sync", http.NoBody))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []domain.SyncTag{domain.SyncBackground}, f.syncer.tags)

	rec = f.do(httptest.NewRequest(http.MethodPost, "/sw/sync/nightly", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, f.syncer.tags, 1)

	f.syncer.err = errors.New("store offline")
	rec = f.do(httptest.NewRequest(http.MethodPost, "/sw/sync/content-update", http.NoBody))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNotifications(t *testing.T) {
	f := setupServerTest(t, nil)

	rec := f.do(jsonRequest(http.MethodPost, "/sw/push", `{"title":"Break over","tag":"timer"}`))
	assert.Equal(t, http.StatusOK, rec.Code)

	var n domain.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &n))
	assert.Equal(t, "Break over", n.Title)
	assert.Equal(t, "timer", n.Tag)
	assert.Equal(t, domain.DefaultNotificationIcon, n.Icon)

	rec = f.do(jsonRequest(http.MethodPost, "/sw/notifications/click", `{"action":"start-timer","url":"/"}`))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, f.notifier.clicks, 1)
	assert.Equal(t, domain.ActionStartTimer, f.notifier.clicks[0].Action)
}

func TestMetricsRoute(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("swcache_resolve_total 1\n"))
	})

	f := setupServerTest(t, metrics)
	rec := f.do(httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "swcache_resolve_total")
	assert.Nil(t, f.resolver.got)

	f = setupServerTest(t, nil)
	f.resolver.resp = &domain.Response{Status: http.StatusNotFound}
	rec = f.do(httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotNil(t, f.resolver.got)
}
