package service

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"openlens/internal/cache"
	"openlens/internal/event"
	"openlens/internal/model"
	"openlens/internal/openverse"
)

const (
	searchCacheTTL = 5 * time.Minute
	detailCacheTTL = time.Hour
	statsCacheTTL  = 10 * time.Minute
)

// SearchService proxies media queries to the upstream catalog. A successful
// search by an authenticated user emits a history event as a side effect;
// that emission never blocks or fails the search itself.
type SearchService interface {
	Search(ctx context.Context, params openverse.SearchParams, userID *uuid.UUID) (*openverse.SearchResult, error)
	Detail(ctx context.Context, mediaType model.MediaType, id string) (*openverse.MediaResult, error)
	Related(ctx context.Context, mediaType model.MediaType, id string) (*openverse.SearchResult, error)
	Stats(ctx context.Context) (openverse.Stats, error)
}

type searchService struct {
	api       openverse.API
	cache     *cache.Client
	publisher event.Publisher
	logger    zerolog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(api openverse.API, cache *cache.Client, publisher event.Publisher, logger zerolog.Logger) SearchService {
	return &searchService{
		api:       api,
		cache:     cache,
		publisher: publisher,
		logger:    logger.With().Str("component", "search").Logger(),
	}
}

// Search runs a media search, serving repeats from cache, and records the
// execution for authenticated callers.
func (s *searchService) Search(ctx context.Context, params openverse.SearchParams, userID *uuid.UUID) (*openverse.SearchResult, error) {
	key := searchCacheKey(params)

	var result openverse.SearchResult
	hit, _ := s.cache.GetJSON(ctx, key, &result)
	if !hit {
		fresh, err := s.api.Search(ctx, params)
		if err != nil {
			return nil, err
		}
		result = *fresh
		_ = s.cache.SetJSON(ctx, key, &result, searchCacheTTL)
	}

	// Cache hits still count as executed searches for the history record.
	if userID != nil {
		s.publisher.Publish(event.SearchExecuted{
			UserID:      *userID,
			Query:       params.Query,
			MediaType:   params.MediaType,
			Filters:     params.Filters,
			ResultCount: result.ResultCount,
			OccurredAt:  time.Now(),
		})
	}

	return &result, nil
}

// Detail fetches one media item, caching it briefly.
func (s *searchService) Detail(ctx context.Context, mediaType model.MediaType, id string) (*openverse.MediaResult, error) {
	key := fmt.Sprintf("media:%s:%s", mediaType, id)

	var result openverse.MediaResult
	if hit, _ := s.cache.GetJSON(ctx, key, &result); hit {
		return &result, nil
	}

	fresh, err := s.api.Detail(ctx, mediaType, id)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, key, fresh, detailCacheTTL)
	return fresh, nil
}

// Related fetches items related to a media item.
func (s *searchService) Related(ctx context.Context, mediaType model.MediaType, id string) (*openverse.SearchResult, error) {
	key := fmt.Sprintf("related:%s:%s", mediaType, id)

	var result openverse.SearchResult
	if hit, _ := s.cache.GetJSON(ctx, key, &result); hit {
		return &result, nil
	}

	fresh, err := s.api.Related(ctx, mediaType, id)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, key, fresh, searchCacheTTL)
	return fresh, nil
}

// Stats returns upstream provider statistics.
func (s *searchService) Stats(ctx context.Context) (openverse.Stats, error) {
	const key = "openverse:stats"

	var stats openverse.Stats
	if hit, _ := s.cache.GetJSON(ctx, key, &stats); hit {
		return stats, nil
	}

	fresh, err := s.api.Stats(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, key, fresh, statsCacheTTL)
	return fresh, nil
}

// searchCacheKey builds a stable key from the normalized request parameters.
func searchCacheKey(params openverse.SearchParams) string {
	filters := url.Values{}
	keys := make([]string, 0, len(params.Filters))
	for k := range params.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		filters.Set(k, params.Filters[k])
	}
	return fmt.Sprintf("search:%s:%d:%d:%s:%s",
		params.MediaType, params.Page, params.PageSize,
		url.QueryEscape(params.Query), filters.Encode())
}
