package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	errs "pokrew/internal/errors"
	"pokrew/internal/model"
)

func newTestProductService(store *memStore) ProductService {
	return NewProductService(&fakeProductRepo{store: store}, nil)
}

func TestProductService_CreateProduct(t *testing.T) {
	store := newMemStore()
	svc := newTestProductService(store)

	product, err := svc.CreateProduct(context.Background(), &model.Product{
		ID:       1,
		Name:     "Poker Chip Set",
		Price:    500,
		IsActive: true,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Poker Chip Set", product.Name)
	assert.NotNil(t, store.products[1])
}

func TestProductService_CreateProduct_InvalidPrice(t *testing.T) {
	store := newMemStore()
	svc := newTestProductService(store)

	product, err := svc.CreateProduct(context.Background(), &model.Product{Name: "Freebie", Price: 0})

	assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	assert.Nil(t, product)
	assert.Empty(t, store.products)
}

func TestProductService_UpdateProduct(t *testing.T) {
	store := newMemStore()
	seedProduct(store, 1, 500, true)
	svc := newTestProductService(store)

	updated, err := svc.UpdateProduct(context.Background(), 1, &model.Product{
		Name:     "Renamed",
		Price:    600,
		IsActive: false,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 600, updated.Price)
	assert.False(t, updated.IsActive)
	assert.Equal(t, 600, store.products[1].Price)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	store := newMemStore()
	svc := newTestProductService(store)

	updated, err := svc.UpdateProduct(context.Background(), 9, &model.Product{Name: "Ghost", Price: 100})

	assert.ErrorIs(t, err, errs.ErrProductNotFound)
	assert.Nil(t, updated)
}

func TestProductService_ToggleActive(t *testing.T) {
	store := newMemStore()
	seedProduct(store, 1, 500, true)
	svc := newTestProductService(store)

	product, err := svc.ToggleActive(context.Background(), 1)
	assert.NoError(t, err)
	assert.False(t, product.IsActive)

	product, err = svc.ToggleActive(context.Background(), 1)
	assert.NoError(t, err)
	assert.True(t, product.IsActive)
}

func TestProductService_DeleteProduct(t *testing.T) {
	store := newMemStore()
	seedProduct(store, 1, 500, true)
	svc := newTestProductService(store)

	assert.NoError(t, svc.DeleteProduct(context.Background(), 1))
	assert.Empty(t, store.products)

	assert.ErrorIs(t, svc.DeleteProduct(context.Background(), 1), errs.ErrProductNotFound)
}

func TestProductService_ListActive(t *testing.T) {
	store := newMemStore()
	seedProduct(store, 1, 500, true)
	seedProduct(store, 2, 300, false)
	svc := newTestProductService(store)

	active, err := svc.ListActive(context.Background())
	assert.NoError(t, err)
	assert.Len(t, active, 1)
	assert.Equal(t, uint(1), active[0].ID)

	all, err := svc.ListAll(context.Background())
	assert.NoError(t, err)
	assert.Len(t, all, 2)
}
