package domain

import "encoding/json"

// MessageType tags a message sent to clients.
type MessageType string

// Messages emitted to clients.
const (
	MessageActivated           MessageType = "SW_ACTIVATED"
	MessageSyncStarted         MessageType = "SYNC_STARTED"
	MessageSyncComplete        MessageType = "SYNC_COMPLETE"
	MessageProgressBackupFound MessageType = "PROGRESS_BACKUP_FOUND"
	MessageStartTimer          MessageType = "START_TIMER_FROM_NOTIFICATION"
	MessageShowNotification    MessageType = "SHOW_NOTIFICATION"
	MessageFocus               MessageType = "FOCUS"
	MessageCacheInfo           MessageType = "CACHE_INFO"
	MessageVersion             MessageType = "SW_VERSION"
	MessageAcknowledged        MessageType = "ACK"
	MessageError               MessageType = "ERROR"
)

// Message is the envelope pushed to clients.
type Message struct {
	Type         MessageType     `json:"type"`
	Version      string          `json:"version,omitempty"`
	Count        *int            `json:"count,omitempty"`
	Successful   *int            `json:"successful,omitempty"`
	Total        *int            `json:"total,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
	Notification *Notification   `json:"notification,omitempty"`
	Info         *CacheInfo      `json:"info,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// ActivatedMessage announces that a version has taken control.
func ActivatedMessage(version string) Message {
	return Message{Type: MessageActivated, Version: version}
}

// SyncStartedMessage announces a flush of count queued actions.
func SyncStartedMessage(count int) Message {
	return Message{Type: MessageSyncStarted, Count: &count}
}

// SyncCompleteMessage reports the outcome of a flush.
func SyncCompleteMessage(res SyncResult) Message {
	return Message{Type: MessageSyncComplete, Successful: &res.Successful, Total: &res.Total}
}

// ErrorMessage builds an ERROR reply.
func ErrorMessage(err error) Message {
	return Message{Type: MessageError, Error: err.Error()}
}

// CommandType tags a command received from a client.
type CommandType string

// Commands accepted from clients.
const (
	CommandSkipWaiting        CommandType = "SKIP_WAITING"
	CommandCacheAsset         CommandType = "CACHE_ASSET"
	CommandGetCacheInfo       CommandType = "GET_CACHE_INFO"
	CommandQueueOfflineAction CommandType = "QUEUE_OFFLINE_ACTION"
	CommandClearCache         CommandType = "CLEAR_CACHE"
	CommandGetVersion         CommandType = "GET_SW_VERSION"
	CommandBackupProgress     CommandType = "BACKUP_PROGRESS"
)

// CommandTypes lists every command in a stable order.
func CommandTypes() []CommandType {
	return []CommandType{
		CommandSkipWaiting,
		CommandCacheAsset,
		CommandGetCacheInfo,
		CommandQueueOfflineAction,
		CommandClearCache,
		CommandGetVersion,
		CommandBackupProgress,
	}
}

// Command is a message received from a client.
type Command struct {
	Type   CommandType     `json:"type"`
	URL    string          `json:"url,omitempty"`
	Action *QueuedAction   `json:"action,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// SyncTag names a background sync job.
type SyncTag string

// Sync tags.
const (
	SyncBackground    SyncTag = "background-sync"
	SyncContentUpdate SyncTag = "content-update"
)

// SyncTags lists every sync tag.
func SyncTags() []SyncTag {
	return []SyncTag{SyncBackground, SyncContentUpdate}
}

// CacheStats is the entry count for one named cache.
type CacheStats struct {
	Name    string `json:"name"`
	Entries int    `json:"entries"`
}

// CacheInfo describes the stores known to the process.
type CacheInfo struct {
	Version string       `json:"version"`
	State   string       `json:"state,omitempty"`
	Caches  []CacheStats `json:"caches"`
}
