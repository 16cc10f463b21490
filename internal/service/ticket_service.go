package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deskline/helpdesk-service/internal/domain"
	"github.com/deskline/helpdesk-service/internal/events"
	"github.com/deskline/helpdesk-service/internal/policy"
	"github.com/deskline/helpdesk-service/internal/repository"
	apperrors "github.com/deskline/helpdesk-service/pkg/util"
)

// TicketScope narrows a listing to the caller's own tickets.
type TicketScope string

const (
	TicketScopeAll      TicketScope = "all"
	TicketScopeOwned    TicketScope = "owned"
	TicketScopeAssigned TicketScope = "assigned"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	resolver   accountResolver
	accounts   repository.AccountRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	AccountRepo repository.AccountRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Clock       func() time.Time
}

// TicketListFilter describes listing filters as received from the caller.
// Empty strings do not constrain.
type TicketListFilter struct {
	Status   string
	Priority string
	Category string
	Search   string
	Scope    string
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	AssignedTo  *string
}

// TicketUpdateInput carries the editable fields. Nil fields are left alone.
type TicketUpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Status      *string
	Priority    *string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		resolver:   accountResolver{accounts: deps.AccountRepo},
		accounts:   deps.AccountRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        clock,
	}
}

// List returns the tickets visible to actor, newest first.
func (s *TicketService) List(ctx context.Context, actor domain.Actor, filter TicketListFilter) ([]TicketView, error) {
	repoFilter, err := s.repositoryFilter(actor, filter)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, storeError(err, "ticket", nil)
	}
	return s.resolver.views(ctx, tickets)
}

// Visible returns every ticket actor may see, without resolving accounts.
func (s *TicketService) Visible(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error) {
	repoFilter, err := s.repositoryFilter(actor, TicketListFilter{})
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.List(ctx, repoFilter)
	if err != nil {
		return nil, storeError(err, "ticket", nil)
	}
	return tickets, nil
}

// Get fetches a ticket the actor may view.
func (s *TicketService) Get(ctx context.Context, actor domain.Actor, ticketID string) (*TicketView, error) {
	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.Allowed(policy.ActionView, actor, ticket) {
		return nil, apperrors.NewForbidden("not allowed to view this ticket")
	}
	return s.resolver.view(ctx, ticket)
}

// Create files a new ticket owned by actor. Staff may assign it in the same
// call.
func (s *TicketService) Create(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*TicketView, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	category := strings.TrimSpace(input.Category)

	missing := []string{}
	if title == "" {
		missing = append(missing, "title")
	}
	if description == "" {
		missing = append(missing, "description")
	}
	if category == "" {
		missing = append(missing, "category")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}

	priority := domain.TicketPriorityMedium
	if input.Priority != "" {
		priority = domain.TicketPriority(input.Priority)
		if !priority.Valid() {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
		}
	}

	var assigneeID *string
	if input.AssignedTo != nil && strings.TrimSpace(*input.AssignedTo) != "" {
		target := strings.TrimSpace(*input.AssignedTo)
		if !policy.CanAssign(actor) {
			return nil, apperrors.NewForbidden("only staff can assign tickets")
		}
		if err := s.checkAssignee(ctx, actor, target); err != nil {
			return nil, err
		}
		assigneeID = &target
	}

	now := domain.Timestamp(s.now())
	ticket := &domain.Ticket{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		Category:    category,
		OwnerID:     actor.ID,
		AssigneeID:  assigneeID,
		Comments:    []domain.Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, storeError(err, "ticket", nil)
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventTicketCreated,
		Ticket: ticket,
		Actor:  actor,
		Payload: events.TicketCreatedPayload{
			Priority: ticket.Priority,
			Category: ticket.Category,
			Title:    ticket.Title,
		},
	})
	if assigneeID != nil {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventTicketAssigned,
			Ticket:  ticket,
			Actor:   actor,
			Payload: events.TicketAssignedPayload{AssigneeID: *assigneeID},
		})
	}
	return s.resolver.view(ctx, ticket)
}

// Update applies the editable fields of input. Anything else the caller sent
// has already been dropped by the transport.
func (s *TicketService) Update(ctx context.Context, actor domain.Actor, ticketID string, input TicketUpdateInput) (*TicketView, error) {
	patch, fields, err := buildPatch(input)
	if err != nil {
		return nil, err
	}

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.Allowed(policy.ActionUpdate, actor, ticket) {
		return nil, apperrors.NewForbidden("not allowed to update this ticket")
	}

	oldStatus := ticket.Status
	updated, err := s.tickets.UpdateFields(ctx, ticket.ID, patch, domain.NextUpdatedAt(ticket.UpdatedAt, s.now()))
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventTicketUpdated,
		Ticket: updated,
		Actor:  actor,
		Payload: events.TicketUpdatedPayload{
			Fields:    fields,
			OldStatus: oldStatus,
			NewStatus: patch.Status,
		},
	})
	return s.resolver.view(ctx, updated)
}

// AddComment appends a comment authored by actor.
func (s *TicketService) AddComment(ctx context.Context, actor domain.Actor, ticketID, content string) (*CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content is required", nil)
	}

	ticket, err := s.load(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.Allowed(policy.ActionComment, actor, ticket) {
		return nil, apperrors.NewForbidden("not allowed to comment on this ticket")
	}

	updatedAt := domain.NextUpdatedAt(ticket.UpdatedAt, s.now())
	comment := domain.Comment{
		ID:        uuid.NewString(),
		Content:   content,
		AuthorID:  actor.ID,
		CreatedAt: updatedAt,
	}
	updated, err := s.tickets.AppendComment(ctx, ticket.ID, comment, updatedAt)
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	s.publishEvent(ctx, events.Event{
		Type:   events.EventTicketCommented,
		Ticket: updated,
		Actor:  actor,
		Payload: events.TicketCommentedPayload{
			CommentID:   comment.ID,
			AuthorID:    comment.AuthorID,
			BodyPreview: stringPreview(comment.Content, 120),
		},
	})

	view := &CommentView{Comment: comment, Author: AccountRef{ID: actor.ID, Role: actor.Role}}
	author, err := s.accounts.GetByID(ctx, actor.ID)
	switch {
	case err == nil:
		view.Author = accountRef(author)
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, storeError(err, "account", nil)
	}
	return view, nil
}

func (s *TicketService) load(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, storeError(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	return ticket, nil
}

// checkAssignee verifies the target account exists and that actor may hand
// tickets to it.
func (s *TicketService) checkAssignee(ctx context.Context, actor domain.Actor, targetID string) error {
	target, err := s.accounts.GetByID(ctx, targetID)
	if err != nil {
		return storeError(err, "assignee", map[string]any{"assignee_id": targetID})
	}
	if !policy.CanAssignTo(actor, target.Role) {
		return apperrors.NewForbidden("agents cannot assign tickets to other agents")
	}
	return nil
}

func (s *TicketService) repositoryFilter(actor domain.Actor, filter TicketListFilter) (repository.TicketFilter, error) {
	repoFilter := repository.TicketFilter{}
	if filter.Status != "" {
		status := domain.TicketStatus(filter.Status)
		if !status.Valid() {
			return repoFilter, apperrors.NewValidationError("invalid status filter", map[string]any{"status": filter.Status})
		}
		repoFilter.Status = &status
	}
	if filter.Priority != "" {
		priority := domain.TicketPriority(filter.Priority)
		if !priority.Valid() {
			return repoFilter, apperrors.NewValidationError("invalid priority filter", map[string]any{"priority": filter.Priority})
		}
		repoFilter.Priority = &priority
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		repoFilter.Category = &category
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		repoFilter.SearchTerm = &search
	}

	switch TicketScope(filter.Scope) {
	case "", TicketScopeAll:
	case TicketScopeOwned:
		owner := actor.ID
		repoFilter.OwnerID = &owner
	case TicketScopeAssigned:
		assignee := actor.ID
		repoFilter.AssigneeID = &assignee
	default:
		return repoFilter, apperrors.NewValidationError("invalid scope", map[string]any{"scope": filter.Scope})
	}

	if owner := policy.VisibleOwner(actor); owner != "" {
		repoFilter.OwnerID = &owner
	}
	return repoFilter, nil
}

func buildPatch(input TicketUpdateInput) (repository.TicketPatch, []string, error) {
	patch := repository.TicketPatch{}
	fields := []string{}
	invalid := map[string]any{}

	text := func(name string, value *string) *string {
		if value == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*value)
		if trimmed == "" {
			invalid[name] = "must not be empty"
			return nil
		}
		fields = append(fields, name)
		return &trimmed
	}
	patch.Title = text("title", input.Title)
	patch.Description = text("description", input.Description)
	patch.Category = text("category", input.Category)

	if input.Status != nil {
		status := domain.TicketStatus(*input.Status)
		if status.Valid() {
			patch.Status = &status
			fields = append(fields, "status")
		} else {
			invalid["status"] = *input.Status
		}
	}
	if input.Priority != nil {
		priority := domain.TicketPriority(*input.Priority)
		if priority.Valid() {
			patch.Priority = &priority
			fields = append(fields, "priority")
		} else {
			invalid["priority"] = *input.Priority
		}
	}

	if len(invalid) > 0 {
		return patch, nil, apperrors.NewValidationError("invalid ticket fields", invalid)
	}
	return patch, fields, nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	publishEvent(ctx, s.dispatcher, s.logger, s.now, event)
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, now func() time.Time, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now()
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handlers failed",
			zap.String("event_type", string(event.Type)),
			zap.String("ticket_id", event.TicketID()),
			zap.Error(err),
		)
	}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
