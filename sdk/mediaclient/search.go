package mediaclient

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"
)

// ErrSuperseded is returned when a search completes after a newer one was
// issued; its response is discarded rather than overwriting fresher state.
var ErrSuperseded = errors.New("search superseded by a newer request")

// SearchParams describes one search. Filters carries every URL parameter
// outside the reserved set, forwarded to the server verbatim.
type SearchParams struct {
	Query     string
	MediaType string
	Page      int
	PageSize  int
	Filters   map[string]string
}

// reservedQueryKeys are the URL parameters with dedicated meaning in
// ParseQuery; everything else becomes a filter.
var reservedQueryKeys = map[string]bool{
	"q":         true,
	"mediaType": true,
	"page":      true,
}

// ParseQuery extracts search parameters from URL query values. Media type
// defaults to "all" and page to 1.
func ParseQuery(values url.Values) SearchParams {
	params := SearchParams{
		Query:     values.Get("q"),
		MediaType: "all",
		Page:      1,
		Filters:   map[string]string{},
	}
	if mt := values.Get("mediaType"); mt != "" {
		params.MediaType = mt
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		params.Page = page
	}
	for key := range values {
		if reservedQueryKeys[key] {
			continue
		}
		if v := values.Get(key); v != "" {
			params.Filters[key] = v
		}
	}
	return params
}

// Orchestrator runs searches and accumulates the visible result list.
// Overlapping calls are not deduplicated; each carries a monotonically
// increasing id and only the latest issued request may apply its response,
// so a slow early page can never overwrite a fresher one.
type Orchestrator struct {
	client *Client

	mu          sync.Mutex
	nextID      uint64
	results     []MediaResult
	seen        map[string]bool
	resultCount int
	page        int
	pageCount   int
}

// NewOrchestrator creates an orchestrator over the client.
func NewOrchestrator(client *Client) *Orchestrator {
	return &Orchestrator{
		client: client,
		seen:   map[string]bool{},
	}
}

// Search executes a search. With replace semantics (appendPage false) the
// result list is replaced and paging restarts at 1; with append semantics the
// new page is merged onto the existing list, skipping ids already present.
// An empty query clears the list without a network call.
func (o *Orchestrator) Search(ctx context.Context, params SearchParams, appendPage bool) error {
	if strings.TrimSpace(params.Query) == "" {
		o.mu.Lock()
		o.clearLocked()
		o.mu.Unlock()
		return nil
	}

	if !appendPage {
		params.Page = 1
	}

	o.mu.Lock()
	o.nextID++
	id := o.nextID
	o.mu.Unlock()

	result, err := o.client.Search(ctx, params)

	o.mu.Lock()
	defer o.mu.Unlock()
	if id != o.nextID {
		return ErrSuperseded
	}
	if err != nil {
		return err
	}

	// Trust the page number carried by the response, not call order.
	page := result.Page
	if page == 0 {
		page = params.Page
	}

	if !appendPage {
		o.clearLocked()
	}
	for _, item := range result.Results {
		if o.seen[item.ID] {
			continue
		}
		o.seen[item.ID] = true
		o.results = append(o.results, item)
	}
	o.resultCount = result.ResultCount
	o.page = page
	o.pageCount = result.PageCount
	return nil
}

// Results returns a copy of the accumulated result list.
func (o *Orchestrator) Results() []MediaResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]MediaResult, len(o.results))
	copy(out, o.results)
	return out
}

// ResultCount returns the total number of matches reported by the server.
func (o *Orchestrator) ResultCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resultCount
}

// Page returns the last applied page number.
func (o *Orchestrator) Page() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.page
}

// HasMore reports whether pages remain beyond the last applied one.
func (o *Orchestrator) HasMore() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.page < o.pageCount
}

func (o *Orchestrator) clearLocked() {
	o.results = nil
	o.seen = map[string]bool{}
	o.resultCount = 0
	o.page = 0
	o.pageCount = 0
}
