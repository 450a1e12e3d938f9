package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	errs "pokrew/internal/errors"
	"pokrew/internal/model"
)

func newTestRequestService(store *memStore) RequestService {
	ledger := newTestLedger(store)
	return NewRequestService(&fakeTxManager{store: store}, &fakeRequestRepo{store: store}, ledger, nil)
}

func seedProduct(store *memStore, id uint, price int, active bool) {
	store.products[id] = &model.Product{
		ID:       id,
		Name:     fmt.Sprintf("Product %d", id),
		Price:    price,
		Link:     "https://example.com/product",
		IsActive: active,
	}
}

func TestRequestService_CreateRequest(t *testing.T) {
	store := newMemStore()
	seedUser(store, 1, 1500, 1500)
	seedProduct(store, 10, 400, true)
	svc := newTestRequestService(store)

	request, err := svc.CreateRequest(context.Background(), 1, 10, 3)

	assert.NoError(t, err)
	assert.Equal(t, model.RequestStatusPending, request.Status)
	assert.Equal(t, 1200, request.Amount)
	assert.Equal(t, 1200, request.PendingAmount)
	assert.Equal(t, 3, request.Quantity)
	assert.Equal(t, "Product 10", request.Product.Name)

	// Hold placed: available down, confirmed points untouched, no ledger line.
	assert.Equal(t, 1500, store.users[1].Points)
	assert.Equal(t, 300, store.users[1].AvailablePoints)
	assert.Empty(t, store.history)
}

func TestRequestService_CreateRequest_Errors(t *testing.T) {
	tests := []struct {
		name          string
		productID     uint
		quantity      int
		expectedError error
	}{
		{
			name:          "unknown product",
			productID:     99,
			quantity:      1,
			expectedError: errs.ErrProductNotFound,
		},
		{
			name:          "deactivated product",
			productID:     11,
			quantity:      1,
			expectedError: errs.ErrProductNotFound,
		},
		{
			name:          "quantity below one",
			productID:     10,
			quantity:      0,
			expectedError: errs.ErrInvalidAmount,
		},
		{
			name:          "insufficient available balance",
			productID:     10,
			quantity:      4,
			expectedError: errs.ErrInsufficientAvailableBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			seedUser(store, 1, 1500, 1500)
			seedProduct(store, 10, 400, true)
			seedProduct(store, 11, 100, false)
			svc := newTestRequestService(store)

			request, err := svc.CreateRequest(context.Background(), 1, tt.productID, tt.quantity)

			assert.ErrorIs(t, err, tt.expectedError)
			assert.Nil(t, request)

			// Failed creation leaves no trace: no request row, no hold.
			assert.Empty(t, store.requests)
			assert.Equal(t, 1500, store.users[1].AvailablePoints)
			assert.Empty(t, store.history)
		})
	}
}

func TestRequestService_Approve(t *testing.T) {
	store := newMemStore()
	seedUser(store, 1, 1500, 1500)
	seedProduct(store, 10, 400, true)
	svc := newTestRequestService(store)

	created, err := svc.CreateRequest(context.Background(), 1, 10, 2)
	assert.NoError(t, err)

	approved, err := svc.Approve(context.Background(), created.ID)

	assert.NoError(t, err)
	assert.Equal(t, model.RequestStatusApproved, approved.Status)
	assert.Equal(t, 0, approved.PendingAmount)
	assert.Equal(t, 800, approved.Amount)

	// Hold realized: confirmed points drop, available stays down.
	assert.Equal(t, 700, store.users[1].Points)
	assert.Equal(t, 700, store.users[1].AvailablePoints)

	assert.Len(t, store.history, 1)
	assert.Equal(t, model.PointTypeWithdraw, store.history[0].Type)
	assert.Equal(t, 800, store.history[0].Amount)
	assert.Equal(t, fmt.Sprintf("product purchase approval (request %d)", created.ID), store.history[0].Reason)
}

func TestRequestService_Reject(t *testing.T) {
	store := newMemStore()
	seedUser(store, 1, 1500, 1500)
	seedProduct(store, 10, 400, true)
	svc := newTestRequestService(store)

	created, err := svc.CreateRequest(context.Background(), 1, 10, 2)
	assert.NoError(t, err)

	rejected, err := svc.Reject(context.Background(), created.ID, "out of stock")

	assert.NoError(t, err)
	assert.Equal(t, model.RequestStatusRejected, rejected.Status)
	assert.Equal(t, 0, rejected.PendingAmount)
	assert.Equal(t, "out of stock", rejected.RejectReason)

	// Create then reject is a full round trip: balances back where they
	// started and the ledger never saw the request.
	assert.Equal(t, 1500, store.users[1].Points)
	assert.Equal(t, 1500, store.users[1].AvailablePoints)
	assert.Empty(t, store.history)
}

func TestRequestService_Reject_WithoutReason(t *testing.T) {
	store := newMemStore()
	seedUser(store, 1, 1500, 1500)
	seedProduct(store, 10, 400, true)
	svc := newTestRequestService(store)

	created, err := svc.CreateRequest(context.Background(), 1, 10, 1)
	assert.NoError(t, err)

	// The reason is optional; rejection still releases the hold.
	rejected, err := svc.Reject(context.Background(), created.ID, "")

	assert.NoError(t, err)
	assert.Equal(t, model.RequestStatusRejected, rejected.Status)
	assert.Empty(t, rejected.RejectReason)
	assert.Equal(t, 1500, store.users[1].AvailablePoints)
}

func TestRequestService_SingleTerminalTransition(t *testing.T) {
	tests := []struct {
		name   string
		first  func(svc RequestService, id uint) error
		second func(svc RequestService, id uint) error
	}{
		{
			name: "approve then approve",
			first: func(svc RequestService, id uint) error {
				_, err := svc.Approve(context.Background(), id)
				return err
			},
			second: func(svc RequestService, id uint) error {
				_, err := svc.Approve(context.Background(), id)
				return err
			},
		},
		{
			name: "approve then reject",
			first: func(svc RequestService, id uint) error {
				_, err := svc.Approve(context.Background(), id)
				return err
			},
			second: func(svc RequestService, id uint) error {
				_, err := svc.Reject(context.Background(), id, "late")
				return err
			},
		},
		{
			name: "reject then approve",
			first: func(svc RequestService, id uint) error {
				_, err := svc.Reject(context.Background(), id, "out of stock")
				return err
			},
			second: func(svc RequestService, id uint) error {
				_, err := svc.Approve(context.Background(), id)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			seedUser(store, 1, 1500, 1500)
			seedProduct(store, 10, 400, true)
			svc := newTestRequestService(store)

			created, err := svc.CreateRequest(context.Background(), 1, 10, 1)
			assert.NoError(t, err)

			assert.NoError(t, tt.first(svc, created.ID))

			pointsAfter := store.users[1].Points
			availableAfter := store.users[1].AvailablePoints
			historyAfter := len(store.history)

			err = tt.second(svc, created.ID)
			assert.ErrorIs(t, err, errs.ErrInvalidRequestState)

			// The failed second transition changed nothing.
			assert.Equal(t, pointsAfter, store.users[1].Points)
			assert.Equal(t, availableAfter, store.users[1].AvailablePoints)
			assert.Len(t, store.history, historyAfter)
		})
	}
}

func TestRequestService_Approve_NotFound(t *testing.T) {
	store := newMemStore()
	svc := newTestRequestService(store)

	request, err := svc.Approve(context.Background(), 99)

	assert.ErrorIs(t, err, errs.ErrRequestNotFound)
	assert.Nil(t, request)
}

func TestRequestService_AmountFrozenAtCreation(t *testing.T) {
	store := newMemStore()
	seedUser(store, 1, 1500, 1500)
	seedProduct(store, 10, 400, true)
	svc := newTestRequestService(store)

	created, err := svc.CreateRequest(context.Background(), 1, 10, 2)
	assert.NoError(t, err)

	// Price rises after the request was placed.
	store.products[10].Price = 1000

	approved, err := svc.Approve(context.Background(), created.ID)

	assert.NoError(t, err)
	assert.Equal(t, 800, approved.Amount)
	assert.Equal(t, 700, store.users[1].Points)
}

func TestRequestService_Lists(t *testing.T) {
	store := newMemStore()
	seedUser(store, 1, 5000, 5000)
	seedUser(store, 2, 5000, 5000)
	seedProduct(store, 10, 100, true)
	svc := newTestRequestService(store)

	ctx := context.Background()
	first, err := svc.CreateRequest(ctx, 1, 10, 1)
	assert.NoError(t, err)
	_, err = svc.CreateRequest(ctx, 2, 10, 2)
	assert.NoError(t, err)

	_, err = svc.Approve(ctx, first.ID)
	assert.NoError(t, err)

	mine, err := svc.ListMine(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.ListAll(ctx)
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := svc.ListPending(ctx)
	assert.NoError(t, err)
	assert.Len(t, pending, 1)
	assert.Equal(t, uint(2), pending[0].UserID)
}
