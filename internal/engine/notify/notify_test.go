package notify_test

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/swcache/internal/core/ports/mocks"
	"go.trai.ch/swcache/internal/engine/notify"
	"go.uber.org/mock/gomock"
)

type notifyTestMocks struct {
	hub    *mocks.MockClientHub
	opener *mocks.MockWindowOpener
	logger *mocks.MockLogger
}

func setupNotifyTest(t *testing.T) (*notify.Notifier, notifyTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := notifyTestMocks{
		hub:    mocks.NewMockClientHub(ctrl),
		opener: mocks.NewMockWindowOpener(ctrl),
		logger: mocks.NewMockLogger(ctrl),
	}
	origin, err := url.Parse("http://localhost:8080")
	require.NoError(t, err)
	return notify.New(m.hub, m.opener, m.logger, origin), m
}

func TestShow_BroadcastsWithDefaults(t *testing.T) {
	n, m := setupNotifyTest(t)

	m.hub.EXPECT().Broadcast(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ any, msg domain.Message) error {
			assert.Equal(t, domain.MessageShowNotification, msg.Type)
			require.NotNil(t, msg.Notification)
			assert.Equal(t, "Focus time!", msg.Notification.Title)
			assert.Equal(t, domain.DefaultNotificationTag, msg.Notification.Tag)
			return nil
		},
	)

	got, err := n.Show(t.Context(), domain.Push{Title: "Focus time!"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultNotificationBody, got.Body)
}

func TestClick_Dismiss(t *testing.T) {
	n, _ := setupNotifyTest(t)
	require.NoError(t, n.Click(t.Context(), domain.NotificationClick{Action: domain.ActionDismiss}))
}

func TestClick_FocusesMatchingClient(t *testing.T) {
	n, m := setupNotifyTest(t)

	m.hub.EXPECT().Clients().Return([]ports.ClientInfo{
		{ID: "other", URL: "https://elsewhere.test/"},
		{ID: "tab", URL: "http://localhost:8080/stats?x=1"},
	})
	gomock.InOrder(
		m.hub.EXPECT().Focus(gomock.Any(), "tab"),
		m.hub.EXPECT().Send(gomock.Any(), "tab", gomock.Any()).DoAndReturn(
			func(_ any, _ string, msg domain.Message) error {
				assert.Equal(t, domain.MessageStartTimer, msg.Type)
				assert.JSONEq(t, `{"action":"start-timer"}`, string(msg.Data))
				return nil
			},
		),
	)

	require.NoError(t, n.Click(t.Context(), domain.NotificationClick{Action: domain.ActionStartTimer}))
	assert.Equal(t, 0, n.Pending())
}

func TestClick_OpensWindowAndForwardsOnConnect(t *testing.T) {
	n, m := setupNotifyTest(t)

	m.hub.EXPECT().Clients().Return([]ports.ClientInfo{{ID: "stats", URL: "http://localhost:8080/stats"}})
	m.opener.EXPECT().Open(gomock.Any(), "http://localhost:8080/timer")

	require.NoError(t, n.Click(t.Context(), domain.NotificationClick{Action: domain.ActionStartTimer, URL: "/timer"}))
	assert.Equal(t, 1, n.Pending())

	// A client at another page does not take the forward.
	n.ClientConnected(t.Context(), ports.ClientInfo{ID: "late-stats", URL: "http://localhost:8080/stats"})
	assert.Equal(t, 1, n.Pending())

	m.hub.EXPECT().Send(gomock.Any(), "new-tab", gomock.Any())
	n.ClientConnected(t.Context(), ports.ClientInfo{ID: "new-tab", URL: "http://localhost:8080/timer/"})
	assert.Equal(t, 0, n.Pending())
}

func TestClick_OpenFailure(t *testing.T) {
	n, m := setupNotifyTest(t)

	m.hub.EXPECT().Clients().Return(nil)
	m.opener.EXPECT().Open(gomock.Any(), "http://localhost:8080/").Return(errors.New("no display"))

	err := n.Click(t.Context(), domain.NotificationClick{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrWindowOpenFailed.Error())
	assert.Equal(t, 0, n.Pending())

	// A later client must not receive the abandoned forward.
	n.ClientConnected(t.Context(), ports.ClientInfo{ID: "later", URL: "http://localhost:8080/anything"})
}

func TestClick_PendingIsBounded(t *testing.T) {
	n, m := setupNotifyTest(t)

	m.hub.EXPECT().Clients().Return(nil).Times(20)
	m.opener.EXPECT().Open(gomock.Any(), gomock.Any()).Return(nil).Times(20)

	for range 20 {
		require.NoError(t, n.Click(t.Context(), domain.NotificationClick{}))
	}
	assert.Equal(t, 16, n.Pending())
}
