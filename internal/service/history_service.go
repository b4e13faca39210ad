package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	apperrors "openlens/internal/errors"
	"openlens/internal/model"
	"openlens/internal/repository"
)

const (
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 100
)

// HistoryPage is one page of a user's search history plus pagination totals.
type HistoryPage struct {
	Items    []model.SearchHistory
	Total    int64
	Page     int
	PageSize int
	Pages    int
}

// HistoryService exposes a user's search history, strictly scoped to the
// requesting user.
type HistoryService interface {
	List(ctx context.Context, userID uuid.UUID, page, pageSize int) (*HistoryPage, error)
	DeleteOne(ctx context.Context, userID, id uuid.UUID) error
	ClearAll(ctx context.Context, userID uuid.UUID) error
}

type historyService struct {
	historyRepo repository.SearchHistoryRepository
}

// NewHistoryService creates a new history service.
func NewHistoryService(historyRepo repository.SearchHistoryRepository) HistoryService {
	return &historyService{historyRepo: historyRepo}
}

// List returns one page of the user's history, most recent first.
func (s *historyService) List(ctx context.Context, userID uuid.UUID, page, pageSize int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultHistoryPageSize
	}
	if pageSize > maxHistoryPageSize {
		pageSize = maxHistoryPageSize
	}

	items, total, err := s.historyRepo.ListByUser(ctx, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	pages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &HistoryPage{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Pages:    pages,
	}, nil
}

// DeleteOne removes a single history row. Rows owned by other users are
// indistinguishable from missing rows.
func (s *historyService) DeleteOne(ctx context.Context, userID, id uuid.UUID) error {
	deleted, err := s.historyRepo.DeleteOwned(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("delete history item: %w", err)
	}
	if !deleted {
		return apperrors.ErrHistoryNotFound
	}
	return nil
}

// ClearAll removes the user's entire history. Clearing an empty history
// succeeds.
func (s *historyService) ClearAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.historyRepo.DeleteAllByUser(ctx, userID); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}
