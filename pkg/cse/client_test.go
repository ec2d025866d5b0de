package cse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", "test-cx", WithBaseURL(srv.URL), WithRateLimit(1000))
}

func pageJSON(start, n int) string {
	items := make([]Result, n)
	for i := range items {
		items[i] = Result{
			Title: fmt.Sprintf("result %d", start+i),
			Link:  fmt.Sprintf("https://example.com/%d", start+i),
		}
	}
	b, _ := json.Marshal(searchResponse{Items: items})
	return string(b)
}

func TestClient_Search(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "test-cx", r.URL.Query().Get("cx"))
		assert.Equal(t, "10", r.URL.Query().Get("num"))
		assert.Equal(t, "1", r.URL.Query().Get("start"))
		fmt.Fprint(w, pageJSON(1, 3))
	})

	results, err := c.Search(context.Background(), `"realtor" "Austin TX"`, 0, 0)
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.Equal(t, `"realtor" "Austin TX"`, gotQuery)
	assert.Equal(t, "result 1", results[0].Title)
}

func TestClient_Search_NoItems(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	results, err := c.Search(context.Background(), "q", 10, 1)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClient_Search_RetriesOn429(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, pageJSON(1, 1))
	})

	results, err := c.Search(context.Background(), "q", 10, 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, 2, attempts)
}

func TestClient_Search_NoRetryOn403(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.Search(context.Background(), "q", 10, 1)
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestClient_SearchPages(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		start := r.URL.Query().Get("start")
		switch start {
		case "1":
			fmt.Fprint(w, pageJSON(1, 10))
		case "11":
			fmt.Fprint(w, pageJSON(11, 5))
		default:
			fmt.Fprint(w, `{}`)
		}
	})

	results, queries, err := c.SearchPages(context.Background(), "q", 30)
	require.NoError(t, err)
	assert.Len(t, results, 15)
	assert.Equal(t, 3, queries, "stops after the short page's follow-up comes back empty")
	assert.Equal(t, "result 15", results[14].Title)
}

func TestClient_SearchPages_PartialOnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") == "1" {
			fmt.Fprint(w, pageJSON(1, 10))
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	})

	results, queries, err := c.SearchPages(context.Background(), "q", 20)
	require.NoError(t, err, "partial results degrade without error")
	assert.Len(t, results, 10)
	assert.Equal(t, 2, queries)
}

func TestClient_SearchPages_FirstPageFails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, queries, err := c.SearchPages(context.Background(), "q", 10)
	require.Error(t, err)
	assert.Equal(t, 1, queries)
}
