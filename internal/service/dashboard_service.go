package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/bugtracker/internal/domain"
	"github.com/spec-kit/bugtracker/internal/policy"
	"github.com/spec-kit/bugtracker/internal/repository"
	apperrors "github.com/spec-kit/bugtracker/pkg/util"
)

const (
	statsCacheKey = "bugtracker:stats"
	statsCacheTTL = 30 * time.Second
)

// StatusInfo describes a lifecycle state for metadata listings.
type StatusInfo struct {
	Value       domain.TicketStatus `json:"value"`
	Label       string              `json:"label"`
	Description string              `json:"description"`
}

// PriorityInfo describes a priority level for metadata listings.
type PriorityInfo struct {
	Value domain.TicketPriority `json:"value"`
	Label string                `json:"label"`
	Color string                `json:"color"`
}

// StatCount pairs an enum value with its ticket count.
type StatCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// TicketStats is the dashboard aggregate.
type TicketStats struct {
	Total      int         `json:"total"`
	Unassigned int         `json:"unassigned"`
	ByStatus   []StatCount `json:"by_status"`
	ByPriority []StatCount `json:"by_priority"`
}

// DashboardService serves metadata, the user directory and aggregate
// statistics. Stats are cached in redis with a short TTL; cache failures
// fall through to the database.
type DashboardService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	cache   *redis.Client
	logger  *zap.Logger
}

// DashboardDependencies bundles collaborators for the dashboard service.
type DashboardDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Cache      *redis.Client
}

// NewDashboardService constructs the service.
func NewDashboardService(deps DashboardDependencies, logger *zap.Logger) *DashboardService {
	return &DashboardService{
		tickets: deps.TicketRepo,
		users:   deps.UserRepo,
		cache:   deps.Cache,
		logger:  logger,
	}
}

// Statuses lists the assignable lifecycle states.
func (s *DashboardService) Statuses(actor *domain.User) ([]StatusInfo, error) {
	if !policy.Allows(actor.Role, policy.OpMetaRead) {
		return nil, apperrors.NewForbidden("insufficient permissions")
	}
	return []StatusInfo{
		{Value: domain.TicketStatusOpen, Label: "Open", Description: "Bug has been reported"},
		{Value: domain.TicketStatusInProgress, Label: "In Progress", Description: "Staff is working on it"},
		{Value: domain.TicketStatusResolved, Label: "Resolved", Description: "Bug has been fixed"},
		{Value: domain.TicketStatusClosed, Label: "Closed", Description: "Bug is verified and closed"},
	}, nil
}

// Priorities lists the priority levels.
func (s *DashboardService) Priorities(actor *domain.User) ([]PriorityInfo, error) {
	if !policy.Allows(actor.Role, policy.OpMetaRead) {
		return nil, apperrors.NewForbidden("insufficient permissions")
	}
	return []PriorityInfo{
		{Value: domain.TicketPriorityLow, Label: "Low", Color: "#52c41a"},
		{Value: domain.TicketPriorityMedium, Label: "Medium", Color: "#faad14"},
		{Value: domain.TicketPriorityHigh, Label: "High", Color: "#fa8c16"},
		{Value: domain.TicketPriorityCritical, Label: "Critical", Color: "#f5222d"},
	}, nil
}

// ListUsers returns the account directory for assignment pickers.
func (s *DashboardService) ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if !policy.Allows(actor.Role, policy.OpUserReadAll) {
		return nil, apperrors.NewForbidden("insufficient permissions")
	}
	return s.users.List(ctx)
}

// Stats returns ticket counts by status and priority plus totals.
func (s *DashboardService) Stats(ctx context.Context, actor *domain.User) (*TicketStats, error) {
	if !policy.Allows(actor.Role, policy.OpStatsRead) {
		return nil, apperrors.NewForbidden("insufficient permissions")
	}

	if cached := s.cachedStats(ctx); cached != nil {
		return cached, nil
	}

	raw, err := s.tickets.Stats(ctx)
	if err != nil {
		return nil, err
	}
	stats := &TicketStats{
		Total:      raw.Total,
		Unassigned: raw.Unassigned,
		ByStatus:   toStatCounts(raw.ByStatus),
		ByPriority: toStatCounts(raw.ByPriority),
	}
	s.storeStats(ctx, stats)
	return stats, nil
}

func (s *DashboardService) cachedStats(ctx context.Context) *TicketStats {
	if s.cache == nil {
		return nil
	}
	payload, err := s.cache.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var stats TicketStats
	if err := json.Unmarshal(payload, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *DashboardService) storeStats(ctx context.Context, stats *TicketStats) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statsCacheKey, payload, statsCacheTTL).Err(); err != nil {
		s.logger.Warn("failed to cache stats", zap.Error(err))
	}
}

func toStatCounts(counts map[string]int) []StatCount {
	result := make([]StatCount, 0, len(counts))
	for value, count := range counts {
		result = append(result, StatCount{Value: value, Count: count})
	}
	return result
}
