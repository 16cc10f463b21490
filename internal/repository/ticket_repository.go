package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/deskline/helpdesk-service/internal/domain"
)

// TicketFilter captures listing parameters. Nil fields do not constrain.
type TicketFilter struct {
	OwnerID    *string
	AssigneeID *string
	Status     *domain.TicketStatus
	Priority   *domain.TicketPriority
	Category   *string
	SearchTerm *string
}

// TicketPatch lists the fields a field update may change.
type TicketPatch struct {
	Title       *string
	Description *string
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	Category    *string
}

// Empty reports whether the patch changes nothing.
func (p TicketPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil && p.Category == nil
}

// TicketRepository encapsulates ticket persistence. Every mutation is a single
// atomic store operation that also writes updatedAt; comments are appended,
// never rewritten.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	UpdateFields(ctx context.Context, id string, patch TicketPatch, updatedAt time.Time) (*domain.Ticket, error)
	AppendComment(ctx context.Context, id string, comment domain.Comment, updatedAt time.Time) (*domain.Ticket, error)
	SetAssignee(ctx context.Context, id, assigneeID string, updatedAt time.Time) (*domain.Ticket, error)
}

// commentRecord is the JSON shape of a comment inside the comments column.
type commentRecord struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository returns a Postgres-backed implementation.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, title, description, status, priority, category, owner_id, assignee_id, comments, created_at, updated_at`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	comments, err := encodeComments(ticket.Comments)
	if err != nil {
		return err
	}
	const query = `
        INSERT INTO tickets (id, title, description, status, priority, category, owner_id, assignee_id, comments, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9::jsonb,$10,$11)`
	_, err = r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.Category,
		ticket.OwnerID,
		ticket.AssigneeID,
		comments,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	return translate(err)
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	return scanTicket(r.pool.QueryRow(ctx, query, id))
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query, args := ticketListSQL(filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Ticket{}
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) UpdateFields(ctx context.Context, id string, patch TicketPatch, updatedAt time.Time) (*domain.Ticket, error) {
	query, args := ticketUpdateSQL(id, patch, updatedAt)
	return scanTicket(r.pool.QueryRow(ctx, query, args...))
}

func (r *ticketRepository) AppendComment(ctx context.Context, id string, comment domain.Comment, updatedAt time.Time) (*domain.Ticket, error) {
	appended, err := encodeComments([]domain.Comment{comment})
	if err != nil {
		return nil, err
	}
	query := `UPDATE tickets SET comments = comments || $2::jsonb, ` + touchUpdatedAt(3) + ` WHERE id=$1 RETURNING ` + ticketColumns
	return scanTicket(r.pool.QueryRow(ctx, query, id, appended, updatedAt))
}

func (r *ticketRepository) SetAssignee(ctx context.Context, id, assigneeID string, updatedAt time.Time) (*domain.Ticket, error) {
	query := `UPDATE tickets SET assignee_id=$2, ` + touchUpdatedAt(3) + ` WHERE id=$1 RETURNING ` + ticketColumns
	return scanTicket(r.pool.QueryRow(ctx, query, id, assigneeID, updatedAt))
}

// touchUpdatedAt sets updated_at to the later of parameter n and one
// millisecond past the stored value.
func touchUpdatedAt(n int) string {
	return fmt.Sprintf("updated_at=GREATEST(updated_at + interval '1 millisecond', $%d)", n)
}

func ticketListSQL(filter TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		clauses = append(clauses, fmt.Sprintf("owner_id=$%d", len(args)))
	}
	if filter.AssigneeID != nil {
		args = append(args, *filter.AssigneeID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, strings.ToLower(strings.TrimSpace(*filter.SearchTerm)))
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(strpos(LOWER(title), %s) > 0 OR strpos(LOWER(description), %s) > 0)", placeholder, placeholder))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s ORDER BY created_at DESC`,
		ticketColumns, strings.Join(clauses, " AND "))
	return query, args
}

func ticketUpdateSQL(id string, patch TicketPatch, updatedAt time.Time) (string, []any) {
	sets := []string{}
	args := []any{}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Description != nil {
		set("description", *patch.Description)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.Priority != nil {
		set("priority", *patch.Priority)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	args = append(args, updatedAt)
	sets = append(sets, touchUpdatedAt(len(args)))

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), ticketColumns)
	return query, args
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket   domain.Ticket
		comments []commentRecord
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.Category,
		&ticket.OwnerID,
		&ticket.AssigneeID,
		&comments,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, translate(err)
	}
	ticket.CreatedAt = ticket.CreatedAt.UTC()
	ticket.UpdatedAt = ticket.UpdatedAt.UTC()
	ticket.Comments = make([]domain.Comment, 0, len(comments))
	for _, rec := range comments {
		ticket.Comments = append(ticket.Comments, domain.Comment{
			ID:        rec.ID,
			Content:   rec.Content,
			AuthorID:  rec.AuthorID,
			CreatedAt: rec.CreatedAt.UTC(),
		})
	}
	return &ticket, nil
}

func encodeComments(comments []domain.Comment) (string, error) {
	records := make([]commentRecord, 0, len(comments))
	for _, c := range comments {
		records = append(records, commentRecord{
			ID:        c.ID,
			Content:   c.Content,
			AuthorID:  c.AuthorID,
			CreatedAt: c.CreatedAt,
		})
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode comments: %w", err)
	}
	return string(raw), nil
}
