package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pokrew/internal/model"
)

// MonthlyRequestStat aggregates redemption requests per calendar month.
type MonthlyRequestStat struct {
	Month        string `json:"month"`
	RequestCount int64  `json:"request_count"`
	TotalAmount  int64  `json:"total_amount"`
}

// ProductRequestStat aggregates redemption requests per product.
type ProductRequestStat struct {
	ProductName  string `json:"product_name"`
	RequestCount int64  `json:"request_count"`
	TotalAmount  int64  `json:"total_amount"`
}

// RequestRepository defines redemption request persistence operations.
type RequestRepository interface {
	Create(ctx context.Context, request *model.Request) error
	Update(ctx context.Context, request *model.Request) error
	FindByID(ctx context.Context, id uint) (*model.Request, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Request, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Request, error)
	ListAll(ctx context.Context) ([]model.Request, error)
	ListByStatus(ctx context.Context, status model.RequestStatus) ([]model.Request, error)
	CountByStatus(ctx context.Context, status model.RequestStatus) (int64, error)
	MonthlyStats(ctx context.Context) ([]MonthlyRequestStat, error)
	ProductStats(ctx context.Context) ([]ProductRequestStat, error)
}

type requestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new request repository.
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, request *model.Request) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *requestRepository) Update(ctx context.Context, request *model.Request) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uint) (*model.Request, error) {
	var request model.Request
	if err := r.db.WithContext(ctx).
		Preload("User").Preload("Product").
		First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// FindByIDForUpdate locks the request row so a pending request can only be
// resolved once even under concurrent approve/reject calls.
func (r *requestRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Request, error) {
	var request model.Request
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) ListByUser(ctx context.Context, userID uint) ([]model.Request, error) {
	var requests []model.Request
	if err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) ListAll(ctx context.Context) ([]model.Request, error) {
	var requests []model.Request
	if err := r.db.WithContext(ctx).
		Preload("User").Preload("Product").
		Order("created_at DESC, id DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) ListByStatus(ctx context.Context, status model.RequestStatus) ([]model.Request, error) {
	var requests []model.Request
	if err := r.db.WithContext(ctx).
		Preload("User").Preload("Product").
		Where("status = ?", status).
		Order("created_at DESC, id DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) CountByStatus(ctx context.Context, status model.RequestStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Request{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

// MonthlyStats groups requests by calendar month, newest month first.
func (r *requestRepository) MonthlyStats(ctx context.Context) ([]MonthlyRequestStat, error) {
	var stats []MonthlyRequestStat
	err := r.db.WithContext(ctx).Model(&model.Request{}).
		Select("DATE_FORMAT(created_at, '%Y-%m') AS month, COUNT(*) AS request_count, COALESCE(SUM(amount), 0) AS total_amount").
		Group("month").
		Order("month DESC").
		Scan(&stats).Error
	return stats, err
}

// ProductStats groups requests by product, most requested first.
func (r *requestRepository) ProductStats(ctx context.Context) ([]ProductRequestStat, error) {
	var stats []ProductRequestStat
	err := r.db.WithContext(ctx).Model(&model.Request{}).
		Select("products.name AS product_name, COUNT(*) AS request_count, COALESCE(SUM(requests.amount), 0) AS total_amount").
		Joins("JOIN products ON products.id = requests.product_id").
		Group("products.name").
		Order("request_count DESC").
		Scan(&stats).Error
	return stats, err
}
