package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/deskline/helpdesk-service/internal/domain"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"pgx no rows", pgx.ErrNoRows, ErrNotFound},
		{"wrapped pgx no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), ErrNotFound},
		{"mongo no documents", mongo.ErrNoDocuments, ErrNotFound},
		{"postgres unique violation", &pgconn.PgError{Code: "23505"}, ErrDuplicate},
		{"mongo duplicate key", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}, ErrDuplicate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translate(tt.in))
		})
	}

	other := errors.New("connection reset")
	assert.Equal(t, other, translate(other))
}

func TestTicketPatchEmpty(t *testing.T) {
	assert.True(t, TicketPatch{}.Empty())
	status := domain.TicketStatusResolved
	assert.False(t, TicketPatch{Status: &status}.Empty())
}

func TestMongoDocumentRoundTrip(t *testing.T) {
	assignee := "agent-1"
	ticket := &domain.Ticket{
		ID:         "t1",
		Title:      "Printer down",
		Status:     domain.TicketStatusOpen,
		Priority:   domain.TicketPriorityHigh,
		Category:   "Hardware",
		OwnerID:    "user-1",
		AssigneeID: &assignee,
	}

	doc := toTicketDocument(ticket)
	assert.NotNil(t, doc.Comments, "comments must be an empty array so $push can append")
	assert.Empty(t, doc.Comments)
	assert.Equal(t, "user-1", doc.Owner)

	back := doc.toDomain()
	assert.Equal(t, ticket.Title, back.Title)
	assert.Equal(t, domain.TicketPriorityHigh, back.Priority)
	assert.Equal(t, "agent-1", *back.AssigneeID)
	assert.Empty(t, back.Comments)
}

func TestEncodeComments(t *testing.T) {
	raw, err := encodeComments(nil)
	assert.NoError(t, err)
	assert.Equal(t, "[]", raw)

	raw, err = encodeComments([]domain.Comment{{ID: "c1", Content: "Checking now", AuthorID: "a1"}})
	assert.NoError(t, err)
	assert.Contains(t, raw, `"author_id":"a1"`)
}
