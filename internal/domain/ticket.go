package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// Valid reports whether s is one of the declared statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityMedium TicketPriority = "medium"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

// Valid reports whether p is one of the declared priorities.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests. Comments are embedded and
// append-only.
type Ticket struct {
	ID          string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Category    string
	OwnerID     string
	AssigneeID  *string
	Comments    []Comment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOwnedBy reports whether accountID filed the ticket.
func (t *Ticket) IsOwnedBy(accountID string) bool {
	return t != nil && accountID != "" && t.OwnerID == accountID
}

// IsAssignedTo reports whether accountID is the current assignee.
func (t *Ticket) IsAssignedTo(accountID string) bool {
	return t != nil && t.AssigneeID != nil && accountID != "" && *t.AssigneeID == accountID
}

// ResolutionTime is the span between creation and the last update.
func (t *Ticket) ResolutionTime() time.Duration {
	return t.UpdatedAt.Sub(t.CreatedAt)
}

// Timestamp truncates t to the precision kept by every store driver.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// NextUpdatedAt returns the updatedAt value for a mutation happening at now.
// The result is always strictly after prev.
func NextUpdatedAt(prev, now time.Time) time.Time {
	next := Timestamp(now)
	if !next.After(prev) {
		next = Timestamp(prev).Add(time.Millisecond)
	}
	return next
}
