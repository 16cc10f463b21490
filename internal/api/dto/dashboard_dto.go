package dto

import (
	"time"

	"github.com/deskline/helpdesk-service/internal/analytics"
	"github.com/deskline/helpdesk-service/internal/domain"
)

// MetricsResponse is the dashboard summary.
type MetricsResponse struct {
	TotalTickets          int     `json:"totalTickets"`
	OpenTickets           int     `json:"openTickets"`
	InProgressTickets     int     `json:"inProgressTickets"`
	ResolvedTickets       int     `json:"resolvedTickets"`
	ClosedTickets         int     `json:"closedTickets"`
	AverageResolutionTime float64 `json:"averageResolutionTime"`
}

// TimelinePointResponse is one day of the dashboard timeline.
type TimelinePointResponse struct {
	Date     string `json:"date"`
	Open     int    `json:"open"`
	Resolved int    `json:"resolved"`
}

// CategoryCountResponse is one slice of the category chart.
type CategoryCountResponse struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// AgentPerformanceResponse is one row of the agent table.
type AgentPerformanceResponse struct {
	AgentID               string  `json:"agentId"`
	Name                  string  `json:"name"`
	Email                 string  `json:"email"`
	Assigned              int     `json:"assigned"`
	Resolved              int     `json:"resolved"`
	AverageResolutionTime float64 `json:"averageResolutionTime"`
}

// NotificationResponse is one feed entry.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	TicketID  string                  `json:"ticketId"`
	Type      domain.NotificationType `json:"type"`
	Message   string                  `json:"message"`
	CreatedAt time.Time               `json:"createdAt"`
}

// NewMetricsResponse maps a summary.
func NewMetricsResponse(s analytics.Summary) MetricsResponse {
	return MetricsResponse{
		TotalTickets:          s.Total,
		OpenTickets:           s.Open,
		InProgressTickets:     s.InProgress,
		ResolvedTickets:       s.Resolved,
		ClosedTickets:         s.Closed,
		AverageResolutionTime: s.AverageResolutionHours,
	}
}

// NewTimelineResponse maps a timeline.
func NewTimelineResponse(points []analytics.TimelinePoint) []TimelinePointResponse {
	items := make([]TimelinePointResponse, 0, len(points))
	for _, p := range points {
		items = append(items, TimelinePointResponse{Date: p.Date, Open: p.Open, Resolved: p.Resolved})
	}
	return items
}

// NewCategoryResponse maps category counts.
func NewCategoryResponse(counts []analytics.CategoryCount) []CategoryCountResponse {
	items := make([]CategoryCountResponse, 0, len(counts))
	for _, c := range counts {
		items = append(items, CategoryCountResponse{Name: c.Name, Value: c.Value})
	}
	return items
}

// NewAgentPerformanceResponse maps agent rows.
func NewAgentPerformanceResponse(rows []analytics.AgentPerformance) []AgentPerformanceResponse {
	items := make([]AgentPerformanceResponse, 0, len(rows))
	for _, r := range rows {
		items = append(items, AgentPerformanceResponse{
			AgentID:               r.AgentID,
			Name:                  r.Name,
			Email:                 r.Email,
			Assigned:              r.Assigned,
			Resolved:              r.Resolved,
			AverageResolutionTime: r.AverageResolutionHours,
		})
	}
	return items
}

// NewNotificationListResponse maps a feed.
func NewNotificationListResponse(items []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, NotificationResponse{
			ID:        n.ID,
			TicketID:  n.TicketID,
			Type:      n.Type,
			Message:   n.Message,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}
