package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxRepositories bundles repositories bound to a single database transaction.
// The ledger and request services use it to pair balance mutations with
// ledger appends and request-row writes atomically.
type TxRepositories struct {
	Users    UserRepository
	Products ProductRepository
	Requests RequestRepository
	History  PointHistoryRepository
}

// TxManager executes a function within one database transaction shared by
// every repository in TxRepositories. If fn returns an error the whole
// transaction rolls back; no partial write stays visible.
type TxManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repos *TxRepositories) error) error
}

type txManager struct {
	db *gorm.DB
}

// NewTxManager creates a transaction manager over a GORM connection.
func NewTxManager(db *gorm.DB) TxManager {
	return &txManager{db: db}
}

func (m *txManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos *TxRepositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &TxRepositories{
			Users:    NewUserRepository(tx),
			Products: NewProductRepository(tx),
			Requests: NewRequestRepository(tx),
			History:  NewPointHistoryRepository(tx),
		}
		return fn(ctx, repos)
	})
}
