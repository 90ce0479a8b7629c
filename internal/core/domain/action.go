package domain

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// QueuedAction is a mutation captured while offline and replayed later.
type QueuedAction struct {
	ID        string          `json:"id"`
	URL       string          `json:"url"`
	Method    string          `json:"method"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NormalizedMethod returns the upper-cased method, defaulting to POST.
func (a QueuedAction) NormalizedMethod() string {
	if a.Method == "" {
		return http.MethodPost
	}
	return strings.ToUpper(a.Method)
}

// ActionFailure records one action that could not be replayed.
type ActionFailure struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

// SyncResult summarizes a flush of the offline queue.
type SyncResult struct {
	Successful int             `json:"successful"`
	Total      int             `json:"total"`
	Failures   []ActionFailure `json:"failures,omitempty"`
}

// Failed returns the number of actions that failed.
func (r SyncResult) Failed() int {
	return r.Total - r.Successful
}

// ProgressBackup is the single-slot snapshot of application progress.
type ProgressBackup struct {
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}
