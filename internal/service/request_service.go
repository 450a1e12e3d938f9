package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"pokrew/internal/cache"
	errs "pokrew/internal/errors"
	"pokrew/internal/model"
	"pokrew/internal/repository"
)

// RequestService drives a redemption request from creation to its single
// terminal transition: pending -> approved | rejected. All point-transfer
// side effects go through the ledger service inside the same transaction
// as the request-row write.
type RequestService interface {
	CreateRequest(ctx context.Context, userID, productID uint, quantity int) (*model.Request, error)
	Approve(ctx context.Context, requestID uint) (*model.Request, error)
	Reject(ctx context.Context, requestID uint, reason string) (*model.Request, error)
	ListMine(ctx context.Context, userID uint) ([]model.Request, error)
	ListAll(ctx context.Context) ([]model.Request, error)
	ListPending(ctx context.Context) ([]model.Request, error)
}

type requestService struct {
	txManager   repository.TxManager
	requestRepo repository.RequestRepository
	ledger      LedgerService
	cache       *cache.Client
}

// NewRequestService creates a new request workflow service.
func NewRequestService(txManager repository.TxManager, requestRepo repository.RequestRepository, ledger LedgerService, cache *cache.Client) RequestService {
	return &requestService{
		txManager:   txManager,
		requestRepo: requestRepo,
		ledger:      ledger,
		cache:       cache,
	}
}

// CreateRequest places a hold for price x quantity and inserts the pending
// request as one atomic pair. The amount is frozen at creation time; later
// price edits do not affect it.
func (s *requestService) CreateRequest(ctx context.Context, userID, productID uint, quantity int) (*model.Request, error) {
	if quantity < 1 {
		return nil, errs.ErrInvalidAmount
	}

	var created *model.Request
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, repos *repository.TxRepositories) error {
		product, err := repos.Products.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrProductNotFound
			}
			return err
		}
		// Deactivated products are not purchasable.
		if !product.IsActive {
			return errs.ErrProductNotFound
		}

		amount := product.Price * quantity
		if err := s.ledger.PlaceHold(ctx, repos, userID, amount); err != nil {
			return err
		}

		request := &model.Request{
			UserID:        userID,
			ProductID:     productID,
			Quantity:      quantity,
			Amount:        amount,
			PendingAmount: amount,
			Status:        model.RequestStatusPending,
		}
		if err := repos.Requests.Create(ctx, request); err != nil {
			return err
		}

		created = request
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, fmt.Sprintf("user:%d", userID))
	return s.requestRepo.FindByID(ctx, created.ID)
}

// Approve realizes the hold and marks the request approved. Both effects
// commit together or not at all.
func (s *requestService) Approve(ctx context.Context, requestID uint) (*model.Request, error) {
	var userID uint
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, repos *repository.TxRepositories) error {
		request, err := repos.Requests.FindByIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrRequestNotFound
			}
			return err
		}
		if request.Status != model.RequestStatusPending {
			return errs.ErrInvalidRequestState
		}

		reason := fmt.Sprintf("product purchase approval (request %d)", request.ID)
		if err := s.ledger.RealizeHold(ctx, repos, request.UserID, request.PendingAmount, reason); err != nil {
			return err
		}

		request.Status = model.RequestStatusApproved
		request.PendingAmount = 0
		if err := repos.Requests.Update(ctx, request); err != nil {
			return err
		}

		userID = request.UserID
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, fmt.Sprintf("user:%d", userID))
	return s.requestRepo.FindByID(ctx, requestID)
}

// Reject releases the hold back to the available balance and marks the
// request rejected. The reason is persisted for the audit trail.
func (s *requestService) Reject(ctx context.Context, requestID uint, reason string) (*model.Request, error) {
	var userID uint
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, repos *repository.TxRepositories) error {
		request, err := repos.Requests.FindByIDForUpdate(ctx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrRequestNotFound
			}
			return err
		}
		if request.Status != model.RequestStatusPending {
			return errs.ErrInvalidRequestState
		}

		if err := s.ledger.ReleaseHold(ctx, repos, request.UserID, request.PendingAmount); err != nil {
			return err
		}

		request.Status = model.RequestStatusRejected
		request.PendingAmount = 0
		request.RejectReason = reason
		if err := repos.Requests.Update(ctx, request); err != nil {
			return err
		}

		userID = request.UserID
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, fmt.Sprintf("user:%d", userID))
	return s.requestRepo.FindByID(ctx, requestID)
}

// ListMine returns a member's own requests, newest first.
func (s *requestService) ListMine(ctx context.Context, userID uint) ([]model.Request, error) {
	return s.requestRepo.ListByUser(ctx, userID)
}

// ListAll returns every request for the admin view, newest first.
func (s *requestService) ListAll(ctx context.Context) ([]model.Request, error) {
	return s.requestRepo.ListAll(ctx)
}

// ListPending returns requests awaiting resolution, newest first.
func (s *requestService) ListPending(ctx context.Context) ([]model.Request, error) {
	return s.requestRepo.ListByStatus(ctx, model.RequestStatusPending)
}
