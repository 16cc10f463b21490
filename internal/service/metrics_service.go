package service

import (
	"context"
	"time"

	"github.com/deskline/helpdesk-service/internal/analytics"
	"github.com/deskline/helpdesk-service/internal/domain"
	"github.com/deskline/helpdesk-service/internal/repository"
	apperrors "github.com/deskline/helpdesk-service/pkg/util"
)

// MetricsService computes dashboard aggregates over the caller's visible
// tickets.
type MetricsService struct {
	tickets  *TicketService
	accounts repository.AccountRepository
	now      func() time.Time
}

// NewMetricsService creates the service.
func NewMetricsService(tickets *TicketService, accounts repository.AccountRepository) *MetricsService {
	return &MetricsService{tickets: tickets, accounts: accounts, now: tickets.now}
}

// Summary returns status counts and the average resolution time.
func (s *MetricsService) Summary(ctx context.Context, actor domain.Actor) (analytics.Summary, error) {
	tickets, err := s.tickets.Visible(ctx, actor)
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.Summarize(tickets), nil
}

// Timeline returns per-day creation counts for the trailing week.
func (s *MetricsService) Timeline(ctx context.Context, actor domain.Actor) ([]analytics.TimelinePoint, error) {
	tickets, err := s.tickets.Visible(ctx, actor)
	if err != nil {
		return nil, err
	}
	return analytics.Timeline(tickets, s.now(), analytics.TimelineDays), nil
}

// Categories returns ticket counts per category.
func (s *MetricsService) Categories(ctx context.Context, actor domain.Actor) ([]analytics.CategoryCount, error) {
	tickets, err := s.tickets.Visible(ctx, actor)
	if err != nil {
		return nil, err
	}
	return analytics.CategoryDistribution(tickets), nil
}

// AgentPerformance reports per-agent workload. Staff only.
func (s *MetricsService) AgentPerformance(ctx context.Context, actor domain.Actor) ([]analytics.AgentPerformance, error) {
	if !actor.IsStaff() {
		return nil, apperrors.NewForbidden("staff role required")
	}
	role := domain.RoleAgent
	agents, err := s.accounts.List(ctx, &role)
	if err != nil {
		return nil, storeError(err, "account", nil)
	}
	tickets, err := s.tickets.Visible(ctx, actor)
	if err != nil {
		return nil, err
	}
	return analytics.AgentsPerformance(agents, tickets), nil
}
