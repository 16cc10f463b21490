package dto

import (
	"time"

	"github.com/deskline/helpdesk-service/internal/domain"
	"github.com/deskline/helpdesk-service/internal/service"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	AssignedTo  *string `json:"assignedTo"`
}

// UpdateTicketRequest payload. Fields not listed here are dropped by the
// body parser.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AgentID string `json:"agentId"`
}

// AccountRefResponse is an account as embedded in ticket responses.
type AccountRefResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name,omitempty"`
	Email string      `json:"email,omitempty"`
	Role  domain.Role `json:"role,omitempty"`
}

// CommentResponse represents one thread entry.
type CommentResponse struct {
	ID        string             `json:"id"`
	Content   string             `json:"content"`
	Author    AccountRefResponse `json:"author"`
	CreatedAt time.Time          `json:"createdAt"`
}

// TicketResponse provides full ticket info.
type TicketResponse struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	Category    string                `json:"category"`
	Owner       AccountRefResponse    `json:"owner"`
	AssignedTo  *AccountRefResponse   `json:"assignedTo"`
	Comments    []CommentResponse     `json:"comments"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// NewTicketResponse maps a resolved ticket.
func NewTicketResponse(view *service.TicketView) TicketResponse {
	resp := TicketResponse{
		ID:          view.ID,
		Title:       view.Title,
		Description: view.Description,
		Status:      view.Status,
		Priority:    view.Priority,
		Category:    view.Category,
		Owner:       accountRef(view.Owner),
		Comments:    make([]CommentResponse, 0, len(view.CommentViews)),
		CreatedAt:   view.CreatedAt,
		UpdatedAt:   view.UpdatedAt,
	}
	if view.Assignee != nil {
		assignee := accountRef(*view.Assignee)
		resp.AssignedTo = &assignee
	}
	for i := range view.CommentViews {
		resp.Comments = append(resp.Comments, NewCommentResponse(&view.CommentViews[i]))
	}
	return resp
}

// NewTicketListResponse maps a listing.
func NewTicketListResponse(views []service.TicketView) []TicketResponse {
	items := make([]TicketResponse, 0, len(views))
	for i := range views {
		items = append(items, NewTicketResponse(&views[i]))
	}
	return items
}

// NewCommentResponse maps a resolved comment.
func NewCommentResponse(view *service.CommentView) CommentResponse {
	return CommentResponse{
		ID:        view.ID,
		Content:   view.Content,
		Author:    accountRef(view.Author),
		CreatedAt: view.CreatedAt,
	}
}

func accountRef(ref service.AccountRef) AccountRefResponse {
	return AccountRefResponse{ID: ref.ID, Name: ref.Name, Email: ref.Email, Role: ref.Role}
}
