package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deskline/helpdesk-service/internal/domain"
	"github.com/deskline/helpdesk-service/internal/events"
	"github.com/deskline/helpdesk-service/internal/repository"
	apperrors "github.com/deskline/helpdesk-service/pkg/util"
)

// NotificationService turns ticket events into per-account feed entries.
type NotificationService struct {
	dispatcher events.Dispatcher
	feed       repository.NotificationRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, feed repository.NotificationRepository, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		feed:       feed,
		logger:     logger,
		now:        time.Now,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketUpdated, n.handleTicketUpdated)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	n.dispatcher.Subscribe(events.EventTicketCommented, n.handleTicketCommented)
}

// List returns the actor's feed, newest first.
func (n *NotificationService) List(ctx context.Context, actor domain.Actor, limit int) ([]domain.Notification, error) {
	items, err := n.feed.List(ctx, actor.ID, limit)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return items, nil
}

// Clear empties the actor's feed.
func (n *NotificationService) Clear(ctx context.Context, actor domain.Actor) error {
	if err := n.feed.Clear(ctx, actor.ID); err != nil {
		return apperrors.NewInternalError(err)
	}
	return nil
}

func (n *NotificationService) handleTicketUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketUpdatedPayload)
	if !ok || !payload.StatusChanged() || event.Ticket == nil {
		return nil
	}
	if event.Ticket.OwnerID == event.Actor.ID {
		return nil
	}
	message := fmt.Sprintf("Ticket %q moved from %s to %s", event.Ticket.Title, payload.OldStatus, *payload.NewStatus)
	return n.deliver(ctx, event, domain.NotificationTicketStatusChanged, message, event.Ticket.OwnerID)
}

func (n *NotificationService) handleTicketAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok || event.Ticket == nil {
		return nil
	}
	message := fmt.Sprintf("Ticket %q was assigned to you", event.Ticket.Title)
	return n.deliver(ctx, event, domain.NotificationTicketAssigned, message, payload.AssigneeID)
}

func (n *NotificationService) handleTicketCommented(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCommentedPayload)
	if !ok || event.Ticket == nil {
		return nil
	}
	recipients := []string{event.Ticket.OwnerID}
	if event.Ticket.AssigneeID != nil && *event.Ticket.AssigneeID != event.Ticket.OwnerID {
		recipients = append(recipients, *event.Ticket.AssigneeID)
	}
	filtered := recipients[:0]
	for _, id := range recipients {
		if id != payload.AuthorID {
			filtered = append(filtered, id)
		}
	}
	message := fmt.Sprintf("New comment on %q: %s", event.Ticket.Title, payload.BodyPreview)
	return n.deliver(ctx, event, domain.NotificationTicketCommented, message, filtered...)
}

func (n *NotificationService) deliver(ctx context.Context, event events.Event, kind domain.NotificationType, message string, recipients ...string) error {
	var errs []error
	for _, accountID := range recipients {
		if accountID == "" {
			continue
		}
		notification := domain.Notification{
			ID:        uuid.NewString(),
			AccountID: accountID,
			TicketID:  event.TicketID(),
			Type:      kind,
			Message:   message,
			CreatedAt: domain.Timestamp(n.now()),
		}
		if err := n.feed.Push(ctx, notification); err != nil {
			errs = append(errs, fmt.Errorf("notify %s: %w", accountID, err))
			continue
		}
		n.logger.Debug("notification queued",
			zap.String("account_id", accountID),
			zap.String("ticket_id", notification.TicketID),
			zap.String("type", string(kind)),
		)
	}
	return errors.Join(errs...)
}
