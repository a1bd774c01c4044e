package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"forem-reader/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(Options{BaseURL: srv.URL + "/api", PerPage: 15, Timeout: timeout, APIKey: "secret"}, zap.NewNop())
	require.NoError(t, err)
	return c
}

func summaries(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf(`{"id":%d,"title":"Post %d","tag_list":["react"]}`, 100-i, i)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestFetchList_RequestShapeAndOrder(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, summaries(15))
	}, time.Second)

	articles, err := c.FetchList(context.Background(), model.FilterParams{Tag: "react", Page: 2})
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "/api/articles", got.URL.Path)
	assert.Equal(t, "react", got.URL.Query().Get("tag"))
	assert.Equal(t, "2", got.URL.Query().Get("page"))
	assert.Equal(t, "15", got.URL.Query().Get("per_page"))
	assert.Equal(t, "application/json", got.Header.Get("Content-Type"))
	assert.Equal(t, "application/vnd.forem.api-v1+json", got.Header.Get("Accept"))
	assert.Equal(t, "secret", got.Header.Get("api-key"))

	require.Len(t, articles, 15)
	for i, a := range articles {
		assert.Equal(t, 100-i, a.ID, "order must be preserved")
	}
}

func TestFetchList_AppliesDefaults(t *testing.T) {
	var query string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		fmt.Fprint(w, "[]")
	}, time.Second)

	articles, err := c.FetchList(context.Background(), model.FilterParams{})
	require.NoError(t, err)
	assert.Empty(t, articles)
	assert.Contains(t, query, "tag=react")
	assert.Contains(t, query, "page=1")
}

func TestFetchDetail(t *testing.T) {
	payload := `{"id":42,"title":"X","body_html":"<p>Y</p>"}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/articles/42", r.URL.Path)
		fmt.Fprint(w, payload)
	}, time.Second)

	a, err := c.FetchDetail(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, a.ID)
	assert.Equal(t, "<p>Y</p>", a.BodyHTML)
	assert.Equal(t, payload, string(a.Raw))
}

func TestFetchDetail_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}, time.Second)

	_, err := c.FetchDetail(context.Background(), 1)
	require.Error(t, err)

	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, KindHTTP, re.Kind)
	assert.Equal(t, http.StatusNotFound, StatusCode(err))
	assert.False(t, IsTimeout(err))
}

func TestFetchDetail_Timeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)
	defer close(release)

	_, err := c.FetchDetail(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, IsTimeout(err), "got %v", err)
}

func TestFetchList_DecodeError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"not a list"}`)
	}, time.Second)

	_, err := c.FetchList(context.Background(), model.FilterParams{})
	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, KindDecode, re.Kind)
}

func TestFetchList_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	c, err := NewClient(Options{BaseURL: addr}, zap.NewNop())
	require.NoError(t, err)

	_, err = c.FetchList(context.Background(), model.FilterParams{})
	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, KindNetwork, re.Kind)
}

func TestNewClient_RejectsBadBaseURL(t *testing.T) {
	_, err := NewClient(Options{BaseURL: "ftp://example.com"}, zap.NewNop())
	assert.Error(t, err)
}
