package network_test

import (
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/swcache/internal/adapters/network"
	"go.trai.ch/swcache/internal/core/domain"
)

func setupFetcherTest(t *testing.T) (*network.Fetcher, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	f, err := network.NewFetcherWithClient(
		&http.Client{Transport: transport},
		"http://localhost:8080",
		"http://127.0.0.1:3000",
	)
	require.NoError(t, err)
	return f, transport
}

func newRequest(t *testing.T, raw string) *domain.Request {
	t.Helper()
	req, err := domain.NewRequest(raw)
	require.NoError(t, err)
	return req
}

func TestFetch_RewritesSameOriginToUpstream(t *testing.T) {
	f, transport := setupFetcherTest(t)

	transport.RegisterResponder(http.MethodGet, "http://127.0.0.1:3000/index.html",
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "text/html", req.Header.Get("Accept"))
			resp := httpmock.NewStringResponse(http.StatusOK, "<html></html>")
			resp.Header.Set("Content-Type", "text/html")
			resp.Header.Set("Connection", "keep-alive")
			return resp, nil
		})

	req := newRequest(t, "http://localhost:8080/index.html#top")
	req.Header.Set("Accept", "text/html")

	resp, err := f.Fetch(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, "<html></html>", string(resp.Body))
	assert.Equal(t, "text/html", resp.ContentType())
	assert.Empty(t, resp.Header.Get("Connection"))
	assert.Equal(t, domain.SourceNetwork, resp.Source)
}

func TestFetch_CrossOriginUnchanged(t *testing.T) {
	f, transport := setupFetcherTest(t)
	transport.RegisterResponder(http.MethodGet, "https://cdn.tailwindcss.com/",
		httpmock.NewStringResponder(http.StatusOK, "css"))

	resp, err := f.Fetch(t.Context(), newRequest(t, "https://cdn.tailwindcss.com/"))
	require.NoError(t, err)
	assert.Equal(t, "css", string(resp.Body))
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestFetch_NonSuccessIsNotError(t *testing.T) {
	f, transport := setupFetcherTest(t)
	transport.RegisterResponder(http.MethodGet, "http://127.0.0.1:3000/missing",
		httpmock.NewStringResponder(http.StatusNotFound, "not found"))

	resp, err := f.Fetch(t.Context(), newRequest(t, "http://localhost:8080/missing"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.False(t, resp.Successful())
}

func TestFetch_SendsMethodAndBody(t *testing.T) {
	f, transport := setupFetcherTest(t)
	transport.RegisterResponder(http.MethodPost, "http://127.0.0.1:3000/api/sessions",
		func(req *http.Request) (*http.Response, error) {
			body, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			assert.JSONEq(t, `{"minutes":25}`, string(body))
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			return httpmock.NewStringResponse(http.StatusCreated, ""), nil
		})

	req := newRequest(t, "http://localhost:8080/api/sessions")
	req.Method = http.MethodPost
	req.Header.Set("Content-Type", "application/json")
	req.Body = []byte(`{"minutes":25}`)

	resp, err := f.Fetch(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)
}

func TestFetch_TransportError(t *testing.T) {
	f, transport := setupFetcherTest(t)
	transport.RegisterResponder(http.MethodGet, "http://127.0.0.1:3000/",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := f.Fetch(t.Context(), newRequest(t, "http://localhost:8080/"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrNetworkFailure.Error())
}

func TestNew_InvalidUpstream(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Upstream = "not a url"

	_, err := network.New(settings)
	require.Error(t, err)
	assert.Contains(t, err.Error(), domain.ErrInvalidURL.Error())
}
