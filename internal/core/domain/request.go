package domain

import (
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Destination is the declared kind of resource a request is fetching.
// It mirrors the values browsers put in the Sec-Fetch-Dest header.
type Destination string

const (
	// DestinationNone is used when the client declared nothing.
	DestinationNone Destination = ""
	// DestinationDocument is a top-level or framed HTML navigation.
	DestinationDocument Destination = "document"
	// DestinationImage is an image load.
	DestinationImage Destination = "image"
	// DestinationAudio is an audio element load.
	DestinationAudio Destination = "audio"
)

// Request is an intercepted request as seen by the router.
type Request struct {
	Method      string
	URL         *url.URL
	Destination Destination
	Header      http.Header
	Body        []byte
}

// NewRequest builds a GET request for the given absolute URL.
func NewRequest(rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return &Request{
		Method: http.MethodGet,
		URL:    u,
		Header: make(http.Header),
	}, nil
}

// Key returns the normalized identity of the request: upper-cased method and the URL
// without its fragment.
func (r *Request) Key() string {
	return RequestKey(r.Method, r.URL)
}

// RequestKey builds a cache key from a method and URL.
func RequestKey(method string, u *url.URL) string {
	if method == "" {
		method = http.MethodGet
	}
	if u == nil {
		return strings.ToUpper(method) + " "
	}
	clean := *u
	clean.Fragment = ""
	clean.RawFragment = ""
	return strings.ToUpper(method) + " " + clean.String()
}

// Accept returns the Accept header value, or an empty string.
func (r *Request) Accept() string {
	if r.Header == nil {
		return ""
	}
	return r.Header.Get("Accept")
}

// Extension returns the lower-cased file extension of the URL path without the dot.
func (r *Request) Extension() string {
	if r.URL == nil {
		return ""
	}
	ext := path.Ext(r.URL.Path)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsGet reports whether the request uses the GET method.
func (r *Request) IsGet() bool {
	return r.Method == "" || strings.EqualFold(r.Method, http.MethodGet)
}

// Clone returns a deep copy of the request.
func (r *Request) Clone() *Request {
	c := *r
	if r.URL != nil {
		u := *r.URL
		c.URL = &u
	}
	c.Header = r.Header.Clone()
	if r.Body != nil {
		c.Body = append([]byte(nil), r.Body...)
	}
	return &c
}
