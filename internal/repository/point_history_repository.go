package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"pokrew/internal/model"
)

// PointHistoryRepository defines ledger persistence operations. Entries are
// append-only: there is deliberately no update or delete.
type PointHistoryRepository interface {
	Append(ctx context.Context, entry *model.PointHistory) error
	ListByUser(ctx context.Context, userID uint) ([]model.PointHistory, error)
	ListRecent(ctx context.Context, limit int) ([]model.PointHistory, error)
	SumByUserAndTypeSince(ctx context.Context, userID uint, pointType model.PointType, since time.Time) (int64, error)
}

type pointHistoryRepository struct {
	db *gorm.DB
}

// NewPointHistoryRepository creates a new point history repository.
func NewPointHistoryRepository(db *gorm.DB) PointHistoryRepository {
	return &pointHistoryRepository{db: db}
}

func (r *pointHistoryRepository) Append(ctx context.Context, entry *model.PointHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByUser returns a user's ledger newest-first, ties broken by id.
func (r *pointHistoryRepository) ListByUser(ctx context.Context, userID uint) ([]model.PointHistory, error) {
	var entries []model.PointHistory
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListRecent returns the newest entries across all users with the owning
// user preloaded, for the admin dashboard.
func (r *pointHistoryRepository) ListRecent(ctx context.Context, limit int) ([]model.PointHistory, error) {
	var entries []model.PointHistory
	if err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *pointHistoryRepository) SumByUserAndTypeSince(ctx context.Context, userID uint, pointType model.PointType, since time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.PointHistory{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ? AND type = ? AND created_at >= ?", userID, pointType, since).
		Scan(&total).Error
	return total, err
}
