package domain

import (
	"net/http"
	"time"
)

// Source records where a response came from.
type Source string

const (
	// SourceNetwork is a response fetched from the network.
	SourceNetwork Source = "network"
	// SourceCache is a response read from a cache store.
	SourceCache Source = "cache"
	// SourceFallback is a response synthesized locally.
	SourceFallback Source = "fallback"
)

// FallbackHeader is set on synthesized responses and names the kind of fallback.
const FallbackHeader = "X-Fallback"

// Fallback kinds reported in FallbackHeader.
const (
	FallbackPlaceholder  = "placeholder"
	FallbackImage        = "character-image"
	FallbackOfflinePage  = "offline-page"
	FallbackRootDocument = "root-document"
	FallbackSilentAudio  = "silent-audio"
	FallbackOfflineAPI   = "offline-api"
)

// Response is a stored or fetched response. It is also the value of a cache entry.
type Response struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header,omitempty"`
	Body     []byte      `json:"body,omitempty"`
	StoredAt time.Time   `json:"stored_at,omitzero"`
	Source   Source      `json:"-"`
}

// OK reports whether the response is a complete 200.
func (r *Response) OK() bool {
	return r != nil && r.Status == http.StatusOK
}

// Successful reports whether the response has a 2xx status.
func (r *Response) Successful() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Clone returns a deep copy so that a stored copy and a returned copy never share buffers.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	c := *r
	c.Header = r.Header.Clone()
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	return &c
}

// ContentType returns the Content-Type header value.
func (r *Response) ContentType() string {
	if r == nil || r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}
