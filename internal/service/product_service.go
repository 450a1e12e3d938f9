package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"pokrew/internal/cache"
	errs "pokrew/internal/errors"
	"pokrew/internal/model"
	"pokrew/internal/repository"
)

const (
	productCacheTTL   = 5 * time.Minute
	activeProductsKey = "products:active"
)

// ProductService manages the redeemable catalog. All mutations are
// admin-only (enforced at the router).
type ProductService interface {
	GetProduct(ctx context.Context, id uint) (*model.Product, error)
	ListActive(ctx context.Context) ([]model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)
	CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uint, product *model.Product) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uint) error
	ToggleActive(ctx context.Context, id uint) (*model.Product, error)
}

type productService struct {
	repo  repository.ProductRepository
	cache *cache.Client
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, cache *cache.Client) ProductService {
	return &productService{repo: repo, cache: cache}
}

// GetProduct retrieves a product by ID.
func (s *productService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// ListActive returns the purchasable catalog with caching.
func (s *productService) ListActive(ctx context.Context) ([]model.Product, error) {
	if data, _ := s.cache.Get(ctx, activeProductsKey); data != nil {
		var cached []model.Product
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(products); err == nil {
		_ = s.cache.Set(ctx, activeProductsKey, payload, productCacheTTL)
	}
	return products, nil
}

// ListAll returns every product including deactivated ones.
func (s *productService) ListAll(ctx context.Context) ([]model.Product, error) {
	return s.repo.List(ctx)
}

// CreateProduct adds a catalog item.
func (s *productService) CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	if product.Price <= 0 {
		return nil, errs.ErrInvalidAmount
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, activeProductsKey)
	return product, nil
}

// UpdateProduct edits a catalog item. Frozen request amounts are unaffected
// by price changes.
func (s *productService) UpdateProduct(ctx context.Context, id uint, product *model.Product) (*model.Product, error) {
	if product.Price <= 0 {
		return nil, errs.ErrInvalidAmount
	}

	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = product.Name
	existing.Price = product.Price
	existing.Description = product.Description
	existing.Link = product.Link
	existing.IsActive = product.IsActive
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, activeProductsKey)
	return existing, nil
}

// DeleteProduct removes a catalog item.
func (s *productService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrProductNotFound
		}
		return err
	}
	_ = s.cache.Delete(ctx, activeProductsKey)
	return nil
}

// ToggleActive flips a product's purchasable flag.
func (s *productService) ToggleActive(ctx context.Context, id uint) (*model.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	product.IsActive = !product.IsActive
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, activeProductsKey)
	return product, nil
}
