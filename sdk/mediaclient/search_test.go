package mediaclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected SearchParams
	}{
		{
			name:  "defaults",
			query: "q=cats",
			expected: SearchParams{
				Query:     "cats",
				MediaType: "all",
				Page:      1,
				Filters:   map[string]string{},
			},
		},
		{
			name:  "explicit media type and page",
			query: "q=cats&mediaType=audio&page=3",
			expected: SearchParams{
				Query:     "cats",
				MediaType: "audio",
				Page:      3,
				Filters:   map[string]string{},
			},
		},
		{
			name:  "extra parameters become filters",
			query: "q=cats&license=by&source=flickr",
			expected: SearchParams{
				Query:     "cats",
				MediaType: "all",
				Page:      1,
				Filters:   map[string]string{"license": "by", "source": "flickr"},
			},
		},
		{
			name:  "invalid page falls back to one",
			query: "q=cats&page=abc",
			expected: SearchParams{
				Query:     "cats",
				MediaType: "all",
				Page:      1,
				Filters:   map[string]string{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, ParseQuery(values))
		})
	}
}

// searchServer serves deterministic pages keyed by the page parameter.
func searchServer(t *testing.T, pages map[int]SearchResult) (*httptest.Server, *int64) {
	t.Helper()
	var calls int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&calls, 1)
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		result, ok := pages[page]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(result)
	}))
	t.Cleanup(server.Close)
	return server, &calls
}

func TestOrchestrator_ReplaceThenAppend(t *testing.T) {
	server, _ := searchServer(t, map[int]SearchResult{
		1: {
			ResultCount: 4,
			PageCount:   2,
			Page:        1,
			Results:     []MediaResult{{ID: "a"}, {ID: "b"}},
		},
		2: {
			ResultCount: 4,
			PageCount:   2,
			Page:        2,
			Results:     []MediaResult{{ID: "c"}, {ID: "d"}},
		},
	})

	o := NewOrchestrator(NewClient(server.URL))
	params := SearchParams{Query: "cats", MediaType: "image", Page: 1}

	assert.NoError(t, o.Search(context.Background(), params, false))
	assert.Len(t, o.Results(), 2)
	assert.Equal(t, 1, o.Page())
	assert.True(t, o.HasMore())

	params.Page = 2
	assert.NoError(t, o.Search(context.Background(), params, true))
	assert.Len(t, o.Results(), 4)
	assert.Equal(t, 2, o.Page())
	assert.False(t, o.HasMore())

	// A fresh replace search resets the list rather than growing it.
	params.Page = 2
	assert.NoError(t, o.Search(context.Background(), params, false))
	assert.Len(t, o.Results(), 2)
	assert.Equal(t, 1, o.Page())
}

func TestOrchestrator_AppendSkipsDuplicates(t *testing.T) {
	server, _ := searchServer(t, map[int]SearchResult{
		1: {
			ResultCount: 3,
			PageCount:   2,
			Page:        1,
			Results:     []MediaResult{{ID: "a"}, {ID: "b"}},
		},
		2: {
			ResultCount: 3,
			PageCount:   2,
			Page:        2,
			Results:     []MediaResult{{ID: "b"}, {ID: "c"}},
		},
	})

	o := NewOrchestrator(NewClient(server.URL))
	params := SearchParams{Query: "cats", MediaType: "image", Page: 1}

	assert.NoError(t, o.Search(context.Background(), params, false))
	params.Page = 2
	assert.NoError(t, o.Search(context.Background(), params, true))

	ids := []string{}
	for _, r := range o.Results() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestOrchestrator_EmptyQueryClearsWithoutNetworkCall(t *testing.T) {
	server, calls := searchServer(t, map[int]SearchResult{
		1: {
			ResultCount: 1,
			PageCount:   1,
			Page:        1,
			Results:     []MediaResult{{ID: "a"}},
		},
	})

	o := NewOrchestrator(NewClient(server.URL))
	assert.NoError(t, o.Search(context.Background(), SearchParams{Query: "cats", MediaType: "image", Page: 1}, false))
	assert.Len(t, o.Results(), 1)
	before := atomic.LoadInt64(calls)

	assert.NoError(t, o.Search(context.Background(), SearchParams{Query: "   "}, false))
	assert.Empty(t, o.Results())
	assert.Equal(t, 0, o.ResultCount())
	assert.False(t, o.HasMore())
	assert.Equal(t, before, atomic.LoadInt64(calls))
}

func TestOrchestrator_SlowResponseIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 1 {
			// Hold the first request until the second has completed.
			<-release
		}
		json.NewEncoder(w).Encode(SearchResult{
			ResultCount: 10,
			PageCount:   5,
			Page:        page,
			Results:     []MediaResult{{ID: "page-" + strconv.Itoa(page)}},
		})
	}))
	defer server.Close()

	o := NewOrchestrator(NewClient(server.URL))

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- o.Search(context.Background(), SearchParams{Query: "cats", MediaType: "image", Page: 1}, true)
	}()

	// Wait until the first request is in flight and held by the server.
	assert.Eventually(t, func() bool {
		o.mu.Lock()
		defer o.mu.Unlock()
		return o.nextID == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.NoError(t, o.Search(context.Background(), SearchParams{Query: "cats", MediaType: "image", Page: 2}, true))
	close(release)

	assert.ErrorIs(t, <-firstDone, ErrSuperseded)

	// The superseded response must not disturb the newer state.
	ids := []string{}
	for _, r := range o.Results() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"page-2"}, ids)
	assert.Equal(t, 2, o.Page())
}
