package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pokrew/internal/model"
	"pokrew/internal/repository"
)

const (
	recentHistoryLimit = 50
	recentRequestLimit = 10
	topMemberLimit     = 5
)

// HistoryLine is a ledger entry flattened for dashboard display.
type HistoryLine struct {
	ID        uint            `json:"id"`
	UserID    uint            `json:"user_id"`
	Type      model.PointType `json:"type"`
	Amount    int             `json:"amount"`
	Reason    string          `json:"reason"`
	CreatedAt time.Time       `json:"created_at"`
	UserName  string          `json:"user_name,omitempty"`
}

// TopMember ranks a member by deposits in the current month.
type TopMember struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Points          int    `json:"points"`
	AvailablePoints int    `json:"available_points"`
	TotalDeposit    int64  `json:"total_deposit"`
	TotalWithdraw   int64  `json:"total_withdraw"`
	Rank            int    `json:"rank"`
	Tier            string `json:"tier"`
}

// AdminDashboard aggregates club-wide balances and activity.
type AdminDashboard struct {
	TotalMembers         int64         `json:"total_members"`
	TotalPoints          int64         `json:"total_points"`
	TotalAvailablePoints int64         `json:"total_available_points"`
	TotalPendingPoints   int64         `json:"total_pending_points"`
	PendingRequests      int64         `json:"pending_requests"`
	RecentHistory        []HistoryLine `json:"recent_history"`
	TopMembers           []TopMember   `json:"top_members"`
}

// UserDashboard summarizes one member's balances and recent activity.
type UserDashboard struct {
	CurrentPoints   int             `json:"current_points"`
	AvailablePoints int             `json:"available_points"`
	PendingPoints   int             `json:"pending_points"`
	History         []HistoryLine   `json:"history"`
	Requests        []model.Request `json:"requests"`
}

// RequestStats holds the reporting aggregates.
type RequestStats struct {
	MonthlyStats []repository.MonthlyRequestStat `json:"monthly_stats"`
	ProductStats []repository.ProductRequestStat `json:"product_stats"`
}

// DashboardService is read-only reporting over the ledger and request
// tables. It owns no writes.
type DashboardService interface {
	AdminDashboard(ctx context.Context) (*AdminDashboard, error)
	UserDashboard(ctx context.Context, userID uint) (*UserDashboard, error)
	Stats(ctx context.Context) (*RequestStats, error)
}

type dashboardService struct {
	userRepo    repository.UserRepository
	requestRepo repository.RequestRepository
	historyRepo repository.PointHistoryRepository
	userService UserService
	requests    RequestService
	ledger      LedgerService
}

// NewDashboardService creates a new dashboard service.
func NewDashboardService(
	userRepo repository.UserRepository,
	requestRepo repository.RequestRepository,
	historyRepo repository.PointHistoryRepository,
	userService UserService,
	requests RequestService,
	ledger LedgerService,
) DashboardService {
	return &dashboardService{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		historyRepo: historyRepo,
		userService: userService,
		requests:    requests,
		ledger:      ledger,
	}
}

// AdminDashboard builds the club-wide view.
func (s *dashboardService) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	totalMembers, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count members: %w", err)
	}

	totalPoints, err := s.userRepo.SumPoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum points: %w", err)
	}

	totalAvailable, err := s.userRepo.SumAvailablePoints(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum available points: %w", err)
	}

	pendingRequests, err := s.requestRepo.CountByStatus(ctx, model.RequestStatusPending)
	if err != nil {
		return nil, fmt.Errorf("count pending requests: %w", err)
	}

	recent, err := s.historyRepo.ListRecent(ctx, recentHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("recent history: %w", err)
	}
	recentLines := make([]HistoryLine, 0, len(recent))
	for _, entry := range recent {
		recentLines = append(recentLines, HistoryLine{
			ID:        entry.ID,
			UserID:    entry.UserID,
			Type:      entry.Type,
			Amount:    entry.Amount,
			Reason:    entry.Reason,
			CreatedAt: entry.CreatedAt,
			UserName:  entry.User.Name,
		})
	}

	topMembers, err := s.topMembers(ctx)
	if err != nil {
		return nil, err
	}

	return &AdminDashboard{
		TotalMembers:         totalMembers,
		TotalPoints:          totalPoints,
		TotalAvailablePoints: totalAvailable,
		TotalPendingPoints:   totalPoints - totalAvailable,
		PendingRequests:      pendingRequests,
		RecentHistory:        recentLines,
		TopMembers:           topMembers,
	}, nil
}

// UserDashboard builds a member's own view.
func (s *dashboardService) UserDashboard(ctx context.Context, userID uint) (*UserDashboard, error) {
	user, err := s.userService.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.ledger.History(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user history: %w", err)
	}
	if len(history) > recentHistoryLimit {
		history = history[:recentHistoryLimit]
	}
	lines := make([]HistoryLine, 0, len(history))
	for _, entry := range history {
		lines = append(lines, HistoryLine{
			ID:        entry.ID,
			UserID:    entry.UserID,
			Type:      entry.Type,
			Amount:    entry.Amount,
			Reason:    entry.Reason,
			CreatedAt: entry.CreatedAt,
		})
	}

	requests, err := s.requests.ListMine(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user requests: %w", err)
	}
	if len(requests) > recentRequestLimit {
		requests = requests[:recentRequestLimit]
	}

	return &UserDashboard{
		CurrentPoints:   user.Points,
		AvailablePoints: user.AvailablePoints,
		PendingPoints:   user.PendingPoints(),
		History:         lines,
		Requests:        requests,
	}, nil
}

// Stats returns the per-month and per-product aggregates.
func (s *dashboardService) Stats(ctx context.Context) (*RequestStats, error) {
	monthly, err := s.requestRepo.MonthlyStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("monthly stats: %w", err)
	}

	products, err := s.requestRepo.ProductStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("product stats: %w", err)
	}

	return &RequestStats{
		MonthlyStats: monthly,
		ProductStats: products,
	}, nil
}

// topMembers ranks members by current-month deposits.
func (s *dashboardService) topMembers(ctx context.Context) ([]TopMember, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	members := make([]TopMember, 0, len(users))
	for _, user := range users {
		deposit, err := s.historyRepo.SumByUserAndTypeSince(ctx, user.ID, model.PointTypeDeposit, startOfMonth)
		if err != nil {
			return nil, fmt.Errorf("sum deposits: %w", err)
		}
		withdraw, err := s.historyRepo.SumByUserAndTypeSince(ctx, user.ID, model.PointTypeWithdraw, startOfMonth)
		if err != nil {
			return nil, fmt.Errorf("sum withdrawals: %w", err)
		}
		members = append(members, TopMember{
			ID:              user.ID,
			Name:            user.Name,
			Points:          user.Points,
			AvailablePoints: user.AvailablePoints,
			TotalDeposit:    deposit,
			TotalWithdraw:   withdraw,
			Tier:            memberTier(deposit),
		})
	}

	// Highest monthly deposits first.
	sort.Slice(members, func(i, j int) bool {
		return members[i].TotalDeposit > members[j].TotalDeposit
	})
	if len(members) > topMemberLimit {
		members = members[:topMemberLimit]
	}
	for i := range members {
		members[i].Rank = i + 1
	}

	return members, nil
}

func memberTier(monthlyDeposit int64) string {
	switch {
	case monthlyDeposit >= 10000:
		return "VIP"
	case monthlyDeposit >= 5000:
		return "Gold"
	case monthlyDeposit >= 2000:
		return "Silver"
	default:
		return "Bronze"
	}
}
