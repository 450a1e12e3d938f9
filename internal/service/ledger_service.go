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

// LedgerService is the sole writer of the Points/AvailablePoints pair and
// the point_history ledger. Every balance change in the system goes through
// one of its operations so that 0 <= AvailablePoints <= Points always holds
// and every confirmed movement has exactly one ledger line.
//
// AdjustBalance and History manage their own transactions. The hold
// operations run against caller-supplied transactional repositories so the
// request workflow can pair them atomically with request-row writes.
type LedgerService interface {
	AdjustBalance(ctx context.Context, userID uint, pointType model.PointType, amount int, reason string) (*model.User, error)
	PlaceHold(ctx context.Context, repos *repository.TxRepositories, userID uint, amount int) error
	ReleaseHold(ctx context.Context, repos *repository.TxRepositories, userID uint, amount int) error
	RealizeHold(ctx context.Context, repos *repository.TxRepositories, userID uint, amount int, reason string) error
	History(ctx context.Context, userID uint) ([]model.PointHistory, error)
}

type ledgerService struct {
	txManager   repository.TxManager
	historyRepo repository.PointHistoryRepository
	cache       *cache.Client
}

// NewLedgerService creates the point accounting engine.
func NewLedgerService(txManager repository.TxManager, historyRepo repository.PointHistoryRepository, cache *cache.Client) LedgerService {
	return &ledgerService{
		txManager:   txManager,
		historyRepo: historyRepo,
		cache:       cache,
	}
}

// AdjustBalance applies a manual admin deposit or withdrawal. The delta hits
// Points and AvailablePoints equally: a manual adjustment is never part of a
// hold. Exactly one ledger line is appended in the same transaction.
func (s *ledgerService) AdjustBalance(ctx context.Context, userID uint, pointType model.PointType, amount int, reason string) (*model.User, error) {
	if amount <= 0 {
		return nil, errs.ErrInvalidAmount
	}
	if reason == "" {
		return nil, errs.ErrReasonRequired
	}
	if pointType != model.PointTypeDeposit && pointType != model.PointTypeWithdraw {
		return nil, errs.ErrInvalidPointType
	}

	delta := amount
	if pointType == model.PointTypeWithdraw {
		delta = -amount
	}

	var updated *model.User
	err := s.txManager.WithTransaction(ctx, func(ctx context.Context, repos *repository.TxRepositories) error {
		user, err := repos.Users.FindByIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.ErrUserNotFound
			}
			return err
		}

		newPoints := user.Points + delta
		newAvailable := user.AvailablePoints + delta
		// Withdrawing past an active hold would drive the available balance
		// negative even while confirmed points stay positive, so both sides
		// are guarded.
		if newPoints < 0 || newAvailable < 0 {
			return errs.ErrInsufficientBalance
		}

		user.Points = newPoints
		user.AvailablePoints = newAvailable
		if err := repos.Users.Update(ctx, user); err != nil {
			return err
		}

		entry := &model.PointHistory{
			UserID: userID,
			Type:   pointType,
			Amount: amount,
			Reason: reason,
		}
		if err := repos.History.Append(ctx, entry); err != nil {
			return err
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, fmt.Sprintf("user:%d", userID))
	return updated, nil
}

// PlaceHold reserves amount from the user's available balance when a
// redemption request is created. The hold is provisional: confirmed points
// are untouched and no ledger line is written.
func (s *ledgerService) PlaceHold(ctx context.Context, repos *repository.TxRepositories, userID uint, amount int) error {
	if amount <= 0 {
		return errs.ErrInvalidAmount
	}

	user, err := repos.Users.FindByIDForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrUserNotFound
		}
		return err
	}

	if amount > user.AvailablePoints {
		return errs.ErrInsufficientAvailableBalance
	}

	user.AvailablePoints -= amount
	return repos.Users.Update(ctx, user)
}

// ReleaseHold returns a hold to the available balance when a pending request
// is rejected. No net point movement occurred, so no ledger line.
func (s *ledgerService) ReleaseHold(ctx context.Context, repos *repository.TxRepositories, userID uint, amount int) error {
	if amount <= 0 {
		return errs.ErrInvalidAmount
	}

	user, err := repos.Users.FindByIDForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrUserNotFound
		}
		return err
	}

	user.AvailablePoints += amount
	return repos.Users.Update(ctx, user)
}

// RealizeHold converts a hold into a permanent spend when a request is
// approved. Only confirmed points move: the available balance was already
// reduced at hold-placement time and stays down. One withdraw line is
// appended for the movement.
func (s *ledgerService) RealizeHold(ctx context.Context, repos *repository.TxRepositories, userID uint, amount int, reason string) error {
	if amount <= 0 {
		return errs.ErrInvalidAmount
	}

	user, err := repos.Users.FindByIDForUpdate(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.ErrUserNotFound
		}
		return err
	}

	user.Points -= amount
	if err := repos.Users.Update(ctx, user); err != nil {
		return err
	}

	entry := &model.PointHistory{
		UserID: userID,
		Type:   model.PointTypeWithdraw,
		Amount: amount,
		Reason: reason,
	}
	return repos.History.Append(ctx, entry)
}

// History returns a user's ledger, newest first.
func (s *ledgerService) History(ctx context.Context, userID uint) ([]model.PointHistory, error) {
	return s.historyRepo.ListByUser(ctx, userID)
}
