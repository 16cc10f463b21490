package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/deskline/helpdesk-service/internal/domain"
	"github.com/deskline/helpdesk-service/internal/events"
	"github.com/deskline/helpdesk-service/internal/policy"
	"github.com/deskline/helpdesk-service/internal/repository"
	apperrors "github.com/deskline/helpdesk-service/pkg/util"
)

// AssignmentService handles ticket assignment operations.
type AssignmentService struct {
	tickets    repository.TicketRepository
	accounts   repository.AccountRepository
	resolver   accountResolver
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo  repository.TicketRepository
	AccountRepo repository.AccountRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Clock       func() time.Time
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		accounts:   deps.AccountRepo,
		resolver:   accountResolver{accounts: deps.AccountRepo},
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// Assign hands the ticket to targetID. Checks run in a fixed order: target
// present, ticket exists, actor is staff, target exists, role pairing.
func (s *AssignmentService) Assign(ctx context.Context, actor domain.Actor, ticketID, targetID string) (*TicketView, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return nil, apperrors.NewValidationError("agentId is required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if !policy.Allowed(policy.ActionAssign, actor, ticket) {
		return nil, apperrors.NewForbidden("only staff can assign tickets")
	}

	target, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		return nil, storeError(err, "assignee", map[string]any{"assignee_id": targetID})
	}
	if !policy.CanAssignTo(actor, target.Role) {
		return nil, apperrors.NewForbidden("agents cannot assign tickets to other agents")
	}

	previous := ticket.AssigneeID
	updated, err := s.tickets.SetAssignee(ctx, ticket.ID, target.ID, domain.NextUpdatedAt(ticket.UpdatedAt, s.now()))
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	publishEvent(ctx, s.dispatcher, s.logger, s.now, events.Event{
		Type:   events.EventTicketAssigned,
		Ticket: updated,
		Actor:  actor,
		Payload: events.TicketAssignedPayload{
			PreviousAssigneeID: previous,
			AssigneeID:         target.ID,
		},
	})
	return s.resolver.view(ctx, updated)
}
