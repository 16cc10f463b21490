package events

import (
	"time"

	"github.com/deskline/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketUpdated   EventType = "ticket_updated"
	EventTicketCommented EventType = "ticket_commented"
	EventTicketAssigned  EventType = "ticket_assigned"
)

// Event represents a domain event emitted by services. Ticket is the state
// after the change.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Ticket    *domain.Ticket `json:"-"`
	Actor     domain.Actor   `json:"actor"`
	Timestamp time.Time      `json:"timestamp"`
	Payload   interface{}    `json:"payload"`
}

// TicketID returns the id of the ticket the event concerns.
func (e Event) TicketID() string {
	if e.Ticket == nil {
		return ""
	}
	return e.Ticket.ID
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Priority domain.TicketPriority `json:"priority"`
	Category string                `json:"category"`
	Title    string                `json:"title"`
}

// TicketUpdatedPayload lists the changed fields; status transitions carry
// both ends.
type TicketUpdatedPayload struct {
	Fields    []string             `json:"fields"`
	OldStatus domain.TicketStatus  `json:"old_status,omitempty"`
	NewStatus *domain.TicketStatus `json:"new_status,omitempty"`
}

// StatusChanged reports whether the update moved the ticket to another status.
func (p TicketUpdatedPayload) StatusChanged() bool {
	return p.NewStatus != nil && *p.NewStatus != p.OldStatus
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	PreviousAssigneeID *string `json:"previous_assignee_id,omitempty"`
	AssigneeID         string  `json:"assignee_id"`
}

// TicketCommentedPayload payload.
type TicketCommentedPayload struct {
	CommentID   string `json:"comment_id"`
	AuthorID    string `json:"author_id"`
	BodyPreview string `json:"body_preview"`
}
