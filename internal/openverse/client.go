package openverse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	apperrors "openlens/internal/errors"
	"openlens/internal/model"
)

const (
	// HTTP request timeout against the upstream API
	requestTimeout = 15 * time.Second
	// Maximum response body size (4MB); search pages stay well under this
	maxResponseSize = 4 << 20
)

// SearchParams describes one upstream search request. Filters carries every
// caller-supplied parameter outside the reserved set, forwarded verbatim.
type SearchParams struct {
	Query     string
	MediaType model.MediaType
	Page      int
	PageSize  int
	Filters   map[string]string
}

// API is the upstream media catalog surface the service layer depends on.
type API interface {
	Search(ctx context.Context, params SearchParams) (*SearchResult, error)
	Detail(ctx context.Context, mediaType model.MediaType, id string) (*MediaResult, error)
	Related(ctx context.Context, mediaType model.MediaType, id string) (*SearchResult, error)
	Stats(ctx context.Context) (Stats, error)
}

// Client calls the Openverse REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// Ensure Client implements API
var _ API = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// NewClient creates an Openverse API client rooted at baseURL
// (e.g. "https://api.openverse.org/v1").
func NewClient(baseURL string, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		logger: logger.With().Str("component", "openverse").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// endpointFor maps a media type to its upstream path segment.
func endpointFor(mediaType model.MediaType) (string, error) {
	switch mediaType {
	case model.MediaTypeImage:
		return "images", nil
	case model.MediaTypeAudio:
		return "audio", nil
	default:
		return "", apperrors.ErrInvalidMediaType
	}
}

// Search runs a paginated media search. mediaType "all" fans out to images
// and audio concurrently and merges the pages; "video" has no upstream
// endpoint and yields an empty result set.
func (c *Client) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	switch params.MediaType {
	case model.MediaTypeAll:
		return c.searchAll(ctx, params)
	case model.MediaTypeVideo:
		return &SearchResult{
			Page:     params.Page,
			PageSize: params.PageSize,
			Results:  []MediaResult{},
		}, nil
	}

	endpoint, err := endpointFor(params.MediaType)
	if err != nil {
		return nil, err
	}
	return c.searchEndpoint(ctx, endpoint, params)
}

func (c *Client) searchEndpoint(ctx context.Context, endpoint string, params SearchParams) (*SearchResult, error) {
	q := url.Values{}
	q.Set("q", params.Query)
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(params.PageSize))
	}
	// Deterministic ordering keeps cache keys derived from this URL stable.
	keys := make([]string, 0, len(params.Filters))
	for k := range params.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := params.Filters[k]; v != "" {
			q.Set(k, v)
		}
	}

	var result SearchResult
	u := fmt.Sprintf("%s/%s/?%s", c.baseURL, endpoint, q.Encode())
	if err := c.doGet(ctx, u, &result); err != nil {
		return nil, err
	}
	if result.Results == nil {
		result.Results = []MediaResult{}
	}
	return &result, nil
}

// searchAll queries images and audio concurrently and interleaves the pages.
// Result counts are summed; page_count is the larger of the two so callers
// keep paging until both types are exhausted. One failing type degrades to
// the other's results rather than failing the search.
func (c *Client) searchAll(ctx context.Context, params SearchParams) (*SearchResult, error) {
	type part struct {
		result *SearchResult
		err    error
	}
	parts := make([]part, 2)

	var wg sync.WaitGroup
	for i, endpoint := range []string{"images", "audio"} {
		wg.Add(1)
		go func(i int, endpoint string) {
			defer wg.Done()
			res, err := c.searchEndpoint(ctx, endpoint, params)
			parts[i] = part{result: res, err: err}
		}(i, endpoint)
	}
	wg.Wait()

	if parts[0].err != nil && parts[1].err != nil {
		return nil, parts[0].err
	}

	merged := &SearchResult{
		Page:     params.Page,
		PageSize: params.PageSize,
		Results:  []MediaResult{},
	}
	var lists [2][]MediaResult
	for i, p := range parts {
		if p.err != nil {
			c.logger.Warn().Err(p.err).Msg("partial media type failure during combined search")
			continue
		}
		merged.ResultCount += p.result.ResultCount
		if p.result.PageCount > merged.PageCount {
			merged.PageCount = p.result.PageCount
		}
		lists[i] = p.result.Results
	}
	for i := 0; i < len(lists[0]) || i < len(lists[1]); i++ {
		if i < len(lists[0]) {
			merged.Results = append(merged.Results, lists[0][i])
		}
		if i < len(lists[1]) {
			merged.Results = append(merged.Results, lists[1][i])
		}
	}
	return merged, nil
}

// Detail fetches a single media item.
func (c *Client) Detail(ctx context.Context, mediaType model.MediaType, id string) (*MediaResult, error) {
	endpoint, err := endpointFor(mediaType)
	if err != nil {
		return nil, err
	}
	var result MediaResult
	u := fmt.Sprintf("%s/%s/%s/", c.baseURL, endpoint, url.PathEscape(id))
	if err := c.doGet(ctx, u, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Related fetches items related to a media item, in the search envelope shape.
func (c *Client) Related(ctx context.Context, mediaType model.MediaType, id string) (*SearchResult, error) {
	endpoint, err := endpointFor(mediaType)
	if err != nil {
		return nil, err
	}
	var result SearchResult
	u := fmt.Sprintf("%s/%s/%s/related/", c.baseURL, endpoint, url.PathEscape(id))
	if err := c.doGet(ctx, u, &result); err != nil {
		return nil, err
	}
	if result.Results == nil {
		result.Results = []MediaResult{}
	}
	return &result, nil
}

// Stats fetches provider statistics for images and audio and returns them
// keyed by media type, body passed through verbatim.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{}
	for key, endpoint := range map[string]string{"images": "images", "audio": "audio"} {
		var raw json.RawMessage
		u := fmt.Sprintf("%s/%s/stats/", c.baseURL, endpoint)
		if err := c.doGet(ctx, u, &raw); err != nil {
			return nil, err
		}
		stats[key] = raw
	}
	return stats, nil
}

// doGet performs a bounded GET and decodes the JSON response, mapping
// failures onto the domain error taxonomy.
func (c *Client) doGet(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", apperrors.ErrUpstreamUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.ErrMediaNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.logger.Error().Int("status", resp.StatusCode).Str("url", u).Msg("upstream request failed")
		return fmt.Errorf("%w: status %d", apperrors.ErrUpstreamUnavailable, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", apperrors.ErrUpstreamUnavailable, err)
	}
	return nil
}
