// Package clients implements ports.ClientHub over WebSocket connections.
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.trai.ch/swcache/internal/core/domain"
	"go.trai.ch/swcache/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	writeWait   = 10 * time.Second
	pongWait    = 60 * time.Second
	pingPeriod  = (pongWait * 9) / 10
	maxCommand  = 64 * 1024
	urlQueryKey = "url"
)

// CommandHandler answers a command sent by a client. A nil reply sends nothing.
type CommandHandler func(ctx context.Context, clientID string, cmd domain.Command) *domain.Message

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

type client struct {
	info    ports.ClientInfo
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) write(msg domain.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *client) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.PingMessage, nil)
}

// Hub tracks connected pages and delivers messages to them.
type Hub struct {
	logger ports.Logger
	newID  func() string

	mu        sync.RWMutex
	clients   []*client
	claimed   bool
	onConnect []ports.ConnectFunc
	handler   CommandHandler
}

var _ ports.ClientHub = (*Hub)(nil)

// New creates an empty Hub.
func New(logger ports.Logger) *Hub {
	return &Hub{logger: logger, newID: uuid.NewString}
}

// SetHandler installs the command handler.
func (h *Hub) SetHandler(fn CommandHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handler = fn
}

// OnConnect registers fn to run after each client connects.
func (h *Hub) OnConnect(fn ports.ConnectFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onConnect = append(h.onConnect, fn)
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
// The page URL is read from the url query parameter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error(zerr.Wrap(err, "websocket upgrade failed"))
		return
	}
	h.Attach(r.Context(), conn, r.URL.Query().Get(urlQueryKey))
}

// Attach registers conn as a client and blocks reading commands until the connection closes.
func (h *Hub) Attach(ctx context.Context, conn *websocket.Conn, pageURL string) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.mu.Lock()
	c := &client{
		info: ports.ClientInfo{ID: h.newID(), URL: pageURL, Controlled: h.claimed},
		conn: conn,
	}
	h.clients = append(h.clients, c)
	info := c.info
	hooks := slices.Clone(h.onConnect)
	h.mu.Unlock()

	defer h.remove(c)

	for _, fn := range hooks {
		fn(ctx, info)
	}

	go h.keepAlive(ctx, c)
	h.readLoop(ctx, c, info.ID)
}

func (h *Hub) keepAlive(ctx context.Context, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) readLoop(ctx context.Context, c *client, id string) {
	c.conn.SetReadLimit(maxCommand)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var cmd domain.Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.reply(c, domain.ErrorMessage(domain.ErrInvalidCommand))
			continue
		}

		h.mu.RLock()
		handler := h.handler
		h.mu.RUnlock()
		if handler == nil {
			continue
		}
		if reply := handler(ctx, id, cmd); reply != nil {
			h.reply(c, *reply)
		}
	}
}

func (h *Hub) reply(c *client, msg domain.Message) {
	if err := c.write(msg); err != nil {
		h.logger.Error(zerr.With(zerr.Wrap(err, domain.ErrClientSendFailed.Error()), "client", c.info.ID))
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	h.clients = slices.DeleteFunc(h.clients, func(other *client) bool { return other == c })
	h.mu.Unlock()
	_ = c.conn.Close()
}

func (h *Hub) find(id string) *client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.info.ID == id {
			return c
		}
	}
	return nil
}

// Clients returns the connected clients in connection order.
func (h *Hub) Clients() []ports.ClientInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]ports.ClientInfo, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c.info)
	}
	return out
}

// Claim takes control of every connected client and of every client that connects later.
// It returns the number of connected clients.
func (h *Hub) Claim(_ context.Context) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.claimed = true
	for _, c := range h.clients {
		c.info.Controlled = true
	}
	return len(h.clients)
}

// Broadcast sends msg to every connected client.
func (h *Hub) Broadcast(_ context.Context, msg domain.Message) error {
	h.mu.RLock()
	targets := slices.Clone(h.clients)
	h.mu.RUnlock()

	var errs []error
	for _, c := range targets {
		if err := c.write(msg); err != nil {
			errs = append(errs, zerr.With(err, "client", c.info.ID))
		}
	}
	if len(errs) > 0 {
		return zerr.Wrap(errors.Join(errs...), domain.ErrClientSendFailed.Error())
	}
	return nil
}

// Send delivers msg to one client.
func (h *Hub) Send(_ context.Context, id string, msg domain.Message) error {
	c := h.find(id)
	if c == nil {
		return zerr.With(domain.ErrClientNotFound, "client", id)
	}
	if err := c.write(msg); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrClientSendFailed.Error()), "client", id)
	}
	return nil
}

// Focus asks a client to bring its window to the front.
func (h *Hub) Focus(ctx context.Context, id string) error {
	return h.Send(ctx, id, domain.Message{Type: domain.MessageFocus})
}

// Close disconnects every client.
func (h *Hub) Close() error {
	h.mu.RLock()
	targets := slices.Clone(h.clients)
	h.mu.RUnlock()

	for _, c := range targets {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(writeWait))
		c.writeMu.Unlock()
		_ = c.conn.Close()
	}
	return nil
}
