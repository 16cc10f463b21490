package domain

import "time"

// NotificationType names the event a notification was raised for.
type NotificationType string

const (
	NotificationTicketCommented     NotificationType = "ticket_commented"
	NotificationTicketAssigned      NotificationType = "ticket_assigned"
	NotificationTicketStatusChanged NotificationType = "ticket_status_changed"
)

// Notification is an entry in an account's feed.
type Notification struct {
	ID        string           `json:"id"`
	AccountID string           `json:"account_id"`
	TicketID  string           `json:"ticket_id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}
