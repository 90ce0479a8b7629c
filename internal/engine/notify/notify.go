// Package notify shows notifications and handles clicks on them.
package notify

import (
	"context"
	"encoding/json"
	"net/url"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// maxPending bounds the forwards waiting for a window; the oldest is dropped first.
const maxPending = 16

// forward is a message waiting for a client that has not connected yet.
type forward struct {
	target *url.URL
	msg    domain.Message
}

// Notifier displays notifications through connected clients and routes clicks back to them.
type Notifier struct {
	hub    ports.ClientHub
	opener ports.WindowOpener
	logger ports.Logger
	origin *url.URL

	mu      sync.Mutex
	pending []*forward
}

// New creates a Notifier. Relative notification URLs resolve against origin.
func New(hub ports.ClientHub, opener ports.WindowOpener, logger ports.Logger, origin *url.URL) *Notifier {
	return &Notifier{
		hub:    hub,
		opener: opener,
		logger: logger,
		origin: origin,
	}
}

// Show builds a notification from p and asks every client to display it.
func (n *Notifier) Show(ctx context.Context, p domain.Push) (domain.Notification, error) {
	notification := domain.NewNotification(p)
	msg := domain.Message{Type: domain.MessageShowNotification, Notification: &notification}
	if err := n.hub.Broadcast(ctx, msg); err != nil {
		return notification, err
	}
	return notification, nil
}

// Click handles a click on a notification. Dismiss does nothing. Otherwise a client showing
// the target URL is focused, or a new window is opened, and START_TIMER_FROM_NOTIFICATION is
// forwarded to it.
func (n *Notifier) Click(ctx context.Context, click domain.NotificationClick) error {
	if click.Action == domain.ActionDismiss {
		return nil
	}

	target, err := n.resolve(click.URL)
	if err != nil {
		return err
	}
	msg := startTimerMessage(click)

	for _, c := range n.hub.Clients() {
		if !matches(c.URL, target) {
			continue
		}
		if err := n.hub.Focus(ctx, c.ID); err != nil {
			n.logger.Error(err)
		}
		return n.hub.Send(ctx, c.ID, msg)
	}

	f := &forward{target: target, msg: msg}
	n.mu.Lock()
	if len(n.pending) >= maxPending {
		n.pending = slices.Delete(n.pending, 0, len(n.pending)-maxPending+1)
	}
	n.pending = append(n.pending, f)
	n.mu.Unlock()

	if err := n.opener.Open(ctx, target.String()); err != nil {
		n.drop(f)
		return zerr.With(zerr.Wrap(err, domain.ErrWindowOpenFailed.Error()), "url", target.String())
	}
	return nil
}

func (n *Notifier) drop(f *forward) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = slices.DeleteFunc(n.pending, func(p *forward) bool { return p == f })
}

// ClientConnected delivers forwards waiting for a client at c's URL.
func (n *Notifier) ClientConnected(ctx context.Context, c ports.ClientInfo) {
	n.mu.Lock()
	var deliver []domain.Message
	rest := n.pending[:0]
	for _, f := range n.pending {
		if matches(c.URL, f.target) {
			deliver = append(deliver, f.msg)
			continue
		}
		rest = append(rest, f)
	}
	n.pending = rest
	n.mu.Unlock()

	for _, msg := range deliver {
		if err := n.hub.Send(ctx, c.ID, msg); err != nil {
			n.logger.Error(err)
		}
	}
}

// Pending returns the number of undelivered forwards.
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}

func (n *Notifier) resolve(raw string) (*url.URL, error) {
	if raw == "" {
		raw = "/"
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidURL.Error()), "url", raw)
	}
	if n.origin == nil {
		return ref, nil
	}
	return n.origin.ResolveReference(ref), nil
}

func startTimerMessage(click domain.NotificationClick) domain.Message {
	action := click.Action
	if action == "" {
		action = domain.ActionStartTimer
	}
	//nolint:errchkjson // string fields only
	data, _ := json.Marshal(map[string]string{"action": action})
	return domain.Message{Type: domain.MessageStartTimer, Data: data}
}

// matches reports whether a client at raw shows target. The root path matches any page of
// the same origin.
func matches(raw string, target *url.URL) bool {
	u, err := url.Parse(raw)
	if err != nil || !strings.EqualFold(u.Host, target.Host) {
		return false
	}
	if target.Path == "" || target.Path == "/" {
		return true
	}
	return strings.TrimSuffix(u.Path, "/") == strings.TrimSuffix(target.Path, "/")
}
