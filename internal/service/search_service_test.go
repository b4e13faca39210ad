package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	apperrors "openlens/internal/errors"
	"openlens/internal/event"
	"openlens/internal/model"
	"openlens/internal/openverse"
)

// MockOpenverseAPI is a mock implementation of openverse.API.
type MockOpenverseAPI struct {
	mock.Mock
}

func (m *MockOpenverseAPI) Search(ctx context.Context, params openverse.SearchParams) (*openverse.SearchResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openverse.SearchResult), args.Error(1)
}

func (m *MockOpenverseAPI) Detail(ctx context.Context, mediaType model.MediaType, id string) (*openverse.MediaResult, error) {
	args := m.Called(ctx, mediaType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openverse.MediaResult), args.Error(1)
}

func (m *MockOpenverseAPI) Related(ctx context.Context, mediaType model.MediaType, id string) (*openverse.SearchResult, error) {
	args := m.Called(ctx, mediaType, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*openverse.SearchResult), args.Error(1)
}

func (m *MockOpenverseAPI) Stats(ctx context.Context) (openverse.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(openverse.Stats), args.Error(1)
}

// capturePublisher records published events for assertions.
type capturePublisher struct {
	mu     sync.Mutex
	events []event.SearchExecuted
}

func (p *capturePublisher) Publish(e event.SearchExecuted) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) published() []event.SearchExecuted {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]event.SearchExecuted, len(p.events))
	copy(out, p.events)
	return out
}

func TestSearchService_Search(t *testing.T) {
	userID := uuid.New()
	params := openverse.SearchParams{
		Query:     "sunset",
		MediaType: model.MediaTypeImage,
		Page:      1,
		PageSize:  20,
		Filters:   map[string]string{"license": "by"},
	}

	tests := []struct {
		name           string
		userID         *uuid.UUID
		setupMock      func(*MockOpenverseAPI)
		expectedError  error
		expectedEvents int
	}{
		{
			name:   "authenticated search records history",
			userID: &userID,
			setupMock: func(m *MockOpenverseAPI) {
				m.On("Search", mock.Anything, params).Return(&openverse.SearchResult{
					ResultCount: 42,
					PageCount:   3,
					Page:        1,
					Results:     []openverse.MediaResult{{ID: "m1", Title: "Sunset"}},
				}, nil)
			},
			expectedEvents: 1,
		},
		{
			name:   "anonymous search records nothing",
			userID: nil,
			setupMock: func(m *MockOpenverseAPI) {
				m.On("Search", mock.Anything, params).Return(&openverse.SearchResult{
					ResultCount: 42,
					Results:     []openverse.MediaResult{},
				}, nil)
			},
			expectedEvents: 0,
		},
		{
			name:   "upstream failure surfaces and records nothing",
			userID: &userID,
			setupMock: func(m *MockOpenverseAPI) {
				m.On("Search", mock.Anything, params).Return(nil, apperrors.ErrUpstreamUnavailable)
			},
			expectedError:  apperrors.ErrUpstreamUnavailable,
			expectedEvents: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAPI := new(MockOpenverseAPI)
			tt.setupMock(mockAPI)
			publisher := &capturePublisher{}

			service := NewSearchService(mockAPI, nil, publisher, zerolog.Nop())
			result, err := service.Search(context.Background(), params, tt.userID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, 42, result.ResultCount)
			}

			events := publisher.published()
			assert.Len(t, events, tt.expectedEvents)
			if tt.expectedEvents > 0 {
				assert.Equal(t, userID, events[0].UserID)
				assert.Equal(t, "sunset", events[0].Query)
				assert.Equal(t, model.MediaTypeImage, events[0].MediaType)
				assert.Equal(t, 42, events[0].ResultCount)
			}
			mockAPI.AssertExpectations(t)
		})
	}
}

func TestSearchService_Detail(t *testing.T) {
	mockAPI := new(MockOpenverseAPI)
	mockAPI.On("Detail", mock.Anything, model.MediaTypeImage, "abc").Return(&openverse.MediaResult{
		ID:    "abc",
		Title: "A Photo",
	}, nil)

	service := NewSearchService(mockAPI, nil, &capturePublisher{}, zerolog.Nop())
	result, err := service.Detail(context.Background(), model.MediaTypeImage, "abc")

	assert.NoError(t, err)
	assert.Equal(t, "abc", result.ID)
	mockAPI.AssertExpectations(t)
}

func TestSearchService_Detail_NotFound(t *testing.T) {
	mockAPI := new(MockOpenverseAPI)
	mockAPI.On("Detail", mock.Anything, model.MediaTypeAudio, "missing").Return(nil, apperrors.ErrMediaNotFound)

	service := NewSearchService(mockAPI, nil, &capturePublisher{}, zerolog.Nop())
	result, err := service.Detail(context.Background(), model.MediaTypeAudio, "missing")

	assert.ErrorIs(t, err, apperrors.ErrMediaNotFound)
	assert.Nil(t, result)
	mockAPI.AssertExpectations(t)
}

func TestSearchService_Related(t *testing.T) {
	mockAPI := new(MockOpenverseAPI)
	mockAPI.On("Related", mock.Anything, model.MediaTypeImage, "abc").Return(&openverse.SearchResult{
		ResultCount: 2,
		Results:     []openverse.MediaResult{{ID: "r1"}, {ID: "r2"}},
	}, nil)

	service := NewSearchService(mockAPI, nil, &capturePublisher{}, zerolog.Nop())
	result, err := service.Related(context.Background(), model.MediaTypeImage, "abc")

	assert.NoError(t, err)
	assert.Len(t, result.Results, 2)
	mockAPI.AssertExpectations(t)
}

func TestSearchCacheKey_StableAcrossFilterOrder(t *testing.T) {
	a := openverse.SearchParams{
		Query:     "forest",
		MediaType: model.MediaTypeImage,
		Page:      2,
		PageSize:  20,
		Filters:   map[string]string{"license": "by", "source": "flickr"},
	}
	b := a
	b.Filters = map[string]string{"source": "flickr", "license": "by"}

	assert.Equal(t, searchCacheKey(a), searchCacheKey(b))

	c := a
	c.Page = 3
	assert.NotEqual(t, searchCacheKey(a), searchCacheKey(c))
}
