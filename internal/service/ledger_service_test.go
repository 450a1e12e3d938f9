package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	errs "pokrew/internal/errors"
	"pokrew/internal/model"
	"pokrew/internal/repository"
)

// memStore is a shared in-memory backing store for the fake repositories.
type memStore struct {
	users         map[uint]*model.User
	products      map[uint]*model.Product
	requests      map[uint]*model.Request
	history       []model.PointHistory
	nextRequestID uint
	nextHistoryID uint
}

func newMemStore() *memStore {
	return &memStore{
		users:         make(map[uint]*model.User),
		products:      make(map[uint]*model.Product),
		requests:      make(map[uint]*model.Request),
		nextRequestID: 1,
		nextHistoryID: 1,
	}
}

func (s *memStore) snapshot() *memStore {
	cp := newMemStore()
	cp.nextRequestID = s.nextRequestID
	cp.nextHistoryID = s.nextHistoryID
	for id, u := range s.users {
		v := *u
		cp.users[id] = &v
	}
	for id, p := range s.products {
		v := *p
		cp.products[id] = &v
	}
	for id, r := range s.requests {
		v := *r
		cp.requests[id] = &v
	}
	cp.history = append(cp.history, s.history...)
	return cp
}

func (s *memStore) restore(from *memStore) {
	s.users = from.users
	s.products = from.products
	s.requests = from.requests
	s.history = from.history
	s.nextRequestID = from.nextRequestID
	s.nextHistoryID = from.nextHistoryID
}

// fakeTxManager runs the callback against the shared store and rolls the
// store back to a snapshot when the callback errors, mirroring a database
// transaction.
type fakeTxManager struct {
	store *memStore
}

func (m *fakeTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context, repos *repository.TxRepositories) error) error {
	before := m.store.snapshot()
	err := fn(ctx, newTxRepos(m.store))
	if err != nil {
		m.store.restore(before)
	}
	return err
}

func newTxRepos(store *memStore) *repository.TxRepositories {
	return &repository.TxRepositories{
		Users:    &fakeUserRepo{store: store},
		Products: &fakeProductRepo{store: store},
		Requests: &fakeRequestRepo{store: store},
		History:  &fakeHistoryRepo{store: store},
	}
}

type fakeUserRepo struct {
	store *memStore
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	v := *user
	r.store.users[user.ID] = &v
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	v := *user
	r.store.users[user.ID] = &v
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.store.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.store.users, id)
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uint) (*model.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	v := *u
	return &v, nil
}

func (r *fakeUserRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.User, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range r.store.users {
		if u.Email == email {
			v := *u
			return &v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(ctx context.Context) ([]model.User, error) {
	users := make([]model.User, 0, len(r.store.users))
	for _, u := range r.store.users {
		users = append(users, *u)
	}
	return users, nil
}

func (r *fakeUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.store.users)), nil
}

func (r *fakeUserRepo) SumPoints(ctx context.Context) (int64, error) {
	var total int64
	for _, u := range r.store.users {
		total += int64(u.Points)
	}
	return total, nil
}

func (r *fakeUserRepo) SumAvailablePoints(ctx context.Context) (int64, error) {
	var total int64
	for _, u := range r.store.users {
		total += int64(u.AvailablePoints)
	}
	return total, nil
}

type fakeProductRepo struct {
	store *memStore
}

func (r *fakeProductRepo) Create(ctx context.Context, product *model.Product) error {
	v := *product
	r.store.products[product.ID] = &v
	return nil
}

func (r *fakeProductRepo) Update(ctx context.Context, product *model.Product) error {
	v := *product
	r.store.products[product.ID] = &v
	return nil
}

func (r *fakeProductRepo) Delete(ctx context.Context, id uint) error {
	if _, ok := r.store.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.store.products, id)
	return nil
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	v := *p
	return &v, nil
}

func (r *fakeProductRepo) List(ctx context.Context) ([]model.Product, error) {
	products := make([]model.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		products = append(products, *p)
	}
	return products, nil
}

func (r *fakeProductRepo) ListActive(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	for _, p := range r.store.products {
		if p.IsActive {
			products = append(products, *p)
		}
	}
	return products, nil
}

type fakeRequestRepo struct {
	store *memStore
}

func (r *fakeRequestRepo) Create(ctx context.Context, request *model.Request) error {
	request.ID = r.store.nextRequestID
	r.store.nextRequestID++
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	v := *request
	r.store.requests[request.ID] = &v
	return nil
}

func (r *fakeRequestRepo) Update(ctx context.Context, request *model.Request) error {
	request.UpdatedAt = time.Now()
	v := *request
	r.store.requests[request.ID] = &v
	return nil
}

func (r *fakeRequestRepo) FindByID(ctx context.Context, id uint) (*model.Request, error) {
	req, ok := r.store.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	v := *req
	if u, ok := r.store.users[v.UserID]; ok {
		v.User = *u
	}
	if p, ok := r.store.products[v.ProductID]; ok {
		v.Product = *p
	}
	return &v, nil
}

func (r *fakeRequestRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.Request, error) {
	req, ok := r.store.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	v := *req
	return &v, nil
}

func (r *fakeRequestRepo) ListByUser(ctx context.Context, userID uint) ([]model.Request, error) {
	var requests []model.Request
	for _, req := range r.store.requests {
		if req.UserID == userID {
			requests = append(requests, *req)
		}
	}
	return requests, nil
}

func (r *fakeRequestRepo) ListAll(ctx context.Context) ([]model.Request, error) {
	requests := make([]model.Request, 0, len(r.store.requests))
	for _, req := range r.store.requests {
		requests = append(requests, *req)
	}
	return requests, nil
}

func (r *fakeRequestRepo) ListByStatus(ctx context.Context, status model.RequestStatus) ([]model.Request, error) {
	var requests []model.Request
	for _, req := range r.store.requests {
		if req.Status == status {
			requests = append(requests, *req)
		}
	}
	return requests, nil
}

func (r *fakeRequestRepo) CountByStatus(ctx context.Context, status model.RequestStatus) (int64, error) {
	requests, _ := r.ListByStatus(ctx, status)
	return int64(len(requests)), nil
}

func (r *fakeRequestRepo) MonthlyStats(ctx context.Context) ([]repository.MonthlyRequestStat, error) {
	return nil, nil
}

func (r *fakeRequestRepo) ProductStats(ctx context.Context) ([]repository.ProductRequestStat, error) {
	return nil, nil
}

type fakeHistoryRepo struct {
	store *memStore
}

func (r *fakeHistoryRepo) Append(ctx context.Context, entry *model.PointHistory) error {
	entry.ID = r.store.nextHistoryID
	r.store.nextHistoryID++
	entry.CreatedAt = time.Now()
	r.store.history = append(r.store.history, *entry)
	return nil
}

func (r *fakeHistoryRepo) ListByUser(ctx context.Context, userID uint) ([]model.PointHistory, error) {
	var entries []model.PointHistory
	for _, e := range r.store.history {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

func (r *fakeHistoryRepo) ListRecent(ctx context.Context, limit int) ([]model.PointHistory, error) {
	entries := append([]model.PointHistory(nil), r.store.history...)
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func (r *fakeHistoryRepo) SumByUserAndTypeSince(ctx context.Context, userID uint, pointType model.PointType, since time.Time) (int64, error) {
	var total int64
	for _, e := range r.store.history {
		if e.UserID == userID && e.Type == pointType && !e.CreatedAt.Before(since) {
			total += int64(e.Amount)
		}
	}
	return total, nil
}

func newTestLedger(store *memStore) LedgerService {
	return NewLedgerService(&fakeTxManager{store: store}, &fakeHistoryRepo{store: store}, nil)
}

func seedUser(store *memStore, id uint, points, available int) {
	store.users[id] = &model.User{
		ID:              id,
		Name:            "Member",
		Email:           "member@example.com",
		Points:          points,
		AvailablePoints: available,
	}
}

func TestLedgerService_AdjustBalance(t *testing.T) {
	tests := []struct {
		name              string
		startPoints       int
		startAvailable    int
		pointType         model.PointType
		amount            int
		reason            string
		expectedError     error
		expectedPoints    int
		expectedAvailable int
	}{
		{
			name:              "deposit raises both balances",
			startPoints:       1500,
			startAvailable:    1500,
			pointType:         model.PointTypeDeposit,
			amount:            200,
			reason:            "tournament win",
			expectedPoints:    1700,
			expectedAvailable: 1700,
		},
		{
			name:              "withdraw lowers both balances",
			startPoints:       1500,
			startAvailable:    1500,
			pointType:         model.PointTypeWithdraw,
			amount:            300,
			reason:            "table fee",
			expectedPoints:    1200,
			expectedAvailable: 1200,
		},
		{
			name:           "withdraw past total balance fails",
			startPoints:    100,
			startAvailable: 100,
			pointType:      model.PointTypeWithdraw,
			amount:         101,
			reason:         "table fee",
			expectedError:  errs.ErrInsufficientBalance,
		},
		{
			name:           "withdraw past held balance fails",
			startPoints:    1000,
			startAvailable: 200,
			pointType:      model.PointTypeWithdraw,
			amount:         500,
			reason:         "table fee",
			expectedError:  errs.ErrInsufficientBalance,
		},
		{
			name:           "zero amount rejected",
			startPoints:    1000,
			startAvailable: 1000,
			pointType:      model.PointTypeDeposit,
			amount:         0,
			reason:         "bonus",
			expectedError:  errs.ErrInvalidAmount,
		},
		{
			name:           "missing reason rejected",
			startPoints:    1000,
			startAvailable: 1000,
			pointType:      model.PointTypeDeposit,
			amount:         50,
			reason:         "",
			expectedError:  errs.ErrReasonRequired,
		},
		{
			name:           "pending is not a valid adjustment type",
			startPoints:    1000,
			startAvailable: 1000,
			pointType:      model.PointTypePending,
			amount:         50,
			reason:         "bonus",
			expectedError:  errs.ErrInvalidPointType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			seedUser(store, 1, tt.startPoints, tt.startAvailable)
			ledger := newTestLedger(store)

			user, err := ledger.AdjustBalance(context.Background(), 1, tt.pointType, tt.amount, tt.reason)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				// Rolled back: balances and ledger untouched.
				assert.Equal(t, tt.startPoints, store.users[1].Points)
				assert.Equal(t, tt.startAvailable, store.users[1].AvailablePoints)
				assert.Empty(t, store.history)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedPoints, user.Points)
			assert.Equal(t, tt.expectedAvailable, user.AvailablePoints)
			assert.Equal(t, tt.expectedPoints, store.users[1].Points)

			// Exactly one ledger line per successful adjustment.
			assert.Len(t, store.history, 1)
			assert.Equal(t, tt.pointType, store.history[0].Type)
			assert.Equal(t, tt.amount, store.history[0].Amount)
			assert.Equal(t, tt.reason, store.history[0].Reason)
		})
	}
}

func TestLedgerService_AdjustBalance_UserNotFound(t *testing.T) {
	store := newMemStore()
	ledger := newTestLedger(store)

	user, err := ledger.AdjustBalance(context.Background(), 42, model.PointTypeDeposit, 100, "bonus")

	assert.ErrorIs(t, err, errs.ErrUserNotFound)
	assert.Nil(t, user)
}

func TestLedgerService_PlaceHold(t *testing.T) {
	store := newMemStore()
	seedUser(store, 1, 1500, 1500)
	ledger := newTestLedger(store)

	err := (&fakeTxManager{store: store}).WithTransaction(context.Background(), func(ctx context.Context, repos *repository.TxRepositories) error {
		return ledger.PlaceHold(ctx, repos, 1, 600)
	})

	assert.NoError(t, err)
	assert.Equal(t, 1500, store.users[1].Points)
	assert.Equal(t, 900, store.users[1].AvailablePoints)
	// Holds are provisional: no ledger line.
	assert.Empty(t, store.history)
}

func TestLedgerService_PlaceHold_InsufficientAvailable(t *testing.T) {
	store := newMemStore()
	seedUser(store, 1, 1500, 500)
	ledger := newTestLedger(store)

	err := (&fakeTxManager{store: store}).WithTransaction(context.Background(), func(ctx context.Context, repos *repository.TxRepositories) error {
		return ledger.PlaceHold(ctx, repos, 1, 501)
	})

	assert.ErrorIs(t, err, errs.ErrInsufficientAvailableBalance)
	assert.Equal(t, 500, store.users[1].AvailablePoints)
	assert.Empty(t, store.history)
}

func TestLedgerService_ReleaseHold(t *testing.T) {
	store := newMemStore()
	seedUser(store, 1, 1500, 900)
	ledger := newTestLedger(store)

	err := (&fakeTxManager{store: store}).WithTransaction(context.Background(), func(ctx context.Context, repos *repository.TxRepositories) error {
		return ledger.ReleaseHold(ctx, repos, 1, 600)
	})

	assert.NoError(t, err)
	assert.Equal(t, 1500, store.users[1].Points)
	assert.Equal(t, 1500, store.users[1].AvailablePoints)
	assert.Empty(t, store.history)
}

func TestLedgerService_RealizeHold(t *testing.T) {
	store := newMemStore()
	seedUser(store, 1, 1500, 900)
	ledger := newTestLedger(store)

	err := (&fakeTxManager{store: store}).WithTransaction(context.Background(), func(ctx context.Context, repos *repository.TxRepositories) error {
		return ledger.RealizeHold(ctx, repos, 1, 600, "product purchase approval (request 7)")
	})

	assert.NoError(t, err)
	// Available stays where the hold left it, confirmed points drop.
	assert.Equal(t, 900, store.users[1].Points)
	assert.Equal(t, 900, store.users[1].AvailablePoints)

	assert.Len(t, store.history, 1)
	assert.Equal(t, model.PointTypeWithdraw, store.history[0].Type)
	assert.Equal(t, 600, store.history[0].Amount)
	assert.Equal(t, "product purchase approval (request 7)", store.history[0].Reason)
}

func TestLedgerService_InvariantHoldsAcrossSequence(t *testing.T) {
	store := newMemStore()
	seedUser(store, 1, 1500, 1500)
	ledger := newTestLedger(store)
	ctx := context.Background()
	tx := &fakeTxManager{store: store}

	checkInvariant := func() {
		u := store.users[1]
		assert.GreaterOrEqual(t, u.AvailablePoints, 0)
		assert.GreaterOrEqual(t, u.Points, u.AvailablePoints)
	}

	_, err := ledger.AdjustBalance(ctx, 1, model.PointTypeDeposit, 500, "monthly grant")
	assert.NoError(t, err)
	checkInvariant()

	err = tx.WithTransaction(ctx, func(ctx context.Context, repos *repository.TxRepositories) error {
		return ledger.PlaceHold(ctx, repos, 1, 1800)
	})
	assert.NoError(t, err)
	checkInvariant()

	// Withdrawal limited by the available side while the hold is live.
	_, err = ledger.AdjustBalance(ctx, 1, model.PointTypeWithdraw, 300, "table fee")
	assert.ErrorIs(t, err, errs.ErrInsufficientBalance)
	checkInvariant()

	err = tx.WithTransaction(ctx, func(ctx context.Context, repos *repository.TxRepositories) error {
		return ledger.RealizeHold(ctx, repos, 1, 1800, "product purchase approval (request 1)")
	})
	assert.NoError(t, err)
	checkInvariant()

	assert.Equal(t, 200, store.users[1].Points)
	assert.Equal(t, 200, store.users[1].AvailablePoints)
	assert.Len(t, store.history, 2)
}
