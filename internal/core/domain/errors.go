package domain

import "go.trai.ch/zerr"

var (
	// ErrNetworkFailure is returned when a request cannot be completed over the network.
	ErrNetworkFailure = zerr.New("network request failed")

	// ErrNetworkUnavailable is returned by the router when a request has no cached copy and no
	// fallback, and the network could not serve it.
	ErrNetworkUnavailable = zerr.New("resource unavailable offline")

	// ErrStoreOpenFailed is returned when a named cache cannot be opened.
	ErrStoreOpenFailed = zerr.New("failed to open cache store")

	// ErrStoreReadFailed is returned when a cache entry cannot be read.
	ErrStoreReadFailed = zerr.New("failed to read cache entry")

	// ErrStoreWriteFailed is returned when a cache entry cannot be written.
	ErrStoreWriteFailed = zerr.New("failed to write cache entry")

	// ErrStoreDeleteFailed is returned when a cache entry or a cache cannot be deleted.
	ErrStoreDeleteFailed = zerr.New("failed to delete from cache store")

	// ErrStoreListFailed is returned when cache names or keys cannot be enumerated.
	ErrStoreListFailed = zerr.New("failed to list cache store")

	// ErrStoreDecodeFailed is returned when a stored entry cannot be decoded.
	ErrStoreDecodeFailed = zerr.New("failed to decode cache entry")

	// ErrStoreEncodeFailed is returned when an entry cannot be encoded for storage.
	ErrStoreEncodeFailed = zerr.New("failed to encode cache entry")

	// ErrQueueCorrupt is returned when the persisted offline queue is not valid JSON.
	ErrQueueCorrupt = zerr.New("offline queue is corrupt")

	// ErrQueueWriteFailed is returned when the offline queue cannot be persisted.
	ErrQueueWriteFailed = zerr.New("failed to persist offline queue")

	// ErrInvalidAction is returned when a queued action is missing its target.
	ErrInvalidAction = zerr.New("queued action requires a url")

	// ErrBackupCorrupt is returned when the progress backup is not valid JSON.
	ErrBackupCorrupt = zerr.New("progress backup is corrupt")

	// ErrPrecacheFailed is returned when an asset cannot be pre-populated during install.
	ErrPrecacheFailed = zerr.New("failed to precache asset")

	// ErrInvalidTransition is returned when a lifecycle transition is not allowed from the current state.
	ErrInvalidTransition = zerr.New("invalid lifecycle transition")

	// ErrUnknownCommand is returned when a client command has no handler.
	ErrUnknownCommand = zerr.New("unknown command")

	// ErrUnknownSyncTag is returned when a sync tag has no handler.
	ErrUnknownSyncTag = zerr.New("unknown sync tag")

	// ErrInvalidCommand is returned when a client command is missing a required field.
	ErrInvalidCommand = zerr.New("invalid command")

	// ErrClientNotFound is returned when a message targets a client that is not connected.
	ErrClientNotFound = zerr.New("client not found")

	// ErrClientSendFailed is returned when a message cannot be delivered to a client.
	ErrClientSendFailed = zerr.New("failed to send message to client")

	// ErrWindowOpenFailed is returned when a new window cannot be opened.
	ErrWindowOpenFailed = zerr.New("failed to open window")

	// ErrInvalidURL is returned when a request or configured URL cannot be parsed.
	ErrInvalidURL = zerr.New("invalid url")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be decoded.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigInvalid is returned when the loaded configuration fails validation.
	ErrConfigInvalid = zerr.New("invalid configuration")

	// ErrServerFailed is returned when the HTTP surface stops unexpectedly.
	ErrServerFailed = zerr.New("http server failed")
)
