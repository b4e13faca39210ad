package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"openlens/internal/model"
)

// SearchHistoryRepository defines search history persistence operations.
// Every read and delete is scoped by the owning user.
type SearchHistoryRepository interface {
	Create(ctx context.Context, entry *model.SearchHistory) error
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.SearchHistory, int64, error)
	DeleteOwned(ctx context.Context, userID, id uuid.UUID) (bool, error)
	DeleteAllByUser(ctx context.Context, userID uuid.UUID) error
}

type searchHistoryRepository struct {
	db *gorm.DB
}

// NewSearchHistoryRepository creates a new search history repository.
func NewSearchHistoryRepository(db *gorm.DB) SearchHistoryRepository {
	return &searchHistoryRepository{db: db}
}

// Create inserts a new history row.
func (r *searchHistoryRepository) Create(ctx context.Context, entry *model.SearchHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByUser returns one page of the user's history, most recent first,
// together with the user's total row count.
func (r *searchHistoryRepository) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]model.SearchHistory, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.SearchHistory{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []model.SearchHistory
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// DeleteOwned removes one row if it belongs to the user. The boolean reports
// whether a row was actually deleted.
func (r *searchHistoryRepository) DeleteOwned(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.SearchHistory{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DeleteAllByUser removes every row for the user. Deleting an already empty
// history is a no-op success.
func (r *searchHistoryRepository) DeleteAllByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.SearchHistory{}).Error
}
