package ports

import (
	"context"

	"go.trai.ch/swcache/internal/core/domain"
)

//go:generate mockgen -source=clients.go -destination=mocks/mock_clients.go -package=mocks

// ClientInfo describes a connected front-end client.
type ClientInfo struct {
	ID         string
	URL        string
	Controlled bool
}

// ConnectFunc is called for every client that connects.
type ConnectFunc func(ctx context.Context, client ClientInfo)

// ClientHub delivers messages to connected front-end clients.
type ClientHub interface {
	// Broadcast sends msg to every connected client.
	Broadcast(ctx context.Context, msg domain.Message) error
	// Send sends msg to a single client.
	Send(ctx context.Context, clientID string, msg domain.Message) error
	// Focus asks a client to bring itself to the foreground.
	Focus(ctx context.Context, clientID string) error
	// Clients lists the connected clients.
	Clients() []ClientInfo
	// Claim takes control of every connected client and returns how many were claimed.
	Claim(ctx context.Context) int
	// OnConnect registers fn to run whenever a client connects.
	OnConnect(fn ConnectFunc)
}

// SyncRegistrar records a request for a background sync to run later.
type SyncRegistrar interface {
	Register(ctx context.Context, tag domain.SyncTag) error
}

// WindowOpener opens a new client window.
type WindowOpener interface {
	Open(ctx context.Context, url string) error
}
