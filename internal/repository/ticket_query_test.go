package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/deskline/helpdesk-service/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func TestMongoTicketFilter(t *testing.T) {
	assert.Empty(t, mongoTicketFilter(TicketFilter{}))
	assert.Empty(t, mongoTicketFilter(TicketFilter{SearchTerm: ptr("   ")}), "blank search is no constraint")

	query := mongoTicketFilter(TicketFilter{
		OwnerID:    ptr("u1"),
		Status:     ptr(domain.TicketStatusOpen),
		Priority:   ptr(domain.TicketPriorityHigh),
		Category:   ptr("Hardware"),
		SearchTerm: ptr("  C++ (build) [x]? "),
	})
	assert.Equal(t, "u1", query["owner"])
	assert.Equal(t, "open", query["status"])
	assert.Equal(t, "high", query["priority"])
	assert.Equal(t, "Hardware", query["category"])
	assert.NotContains(t, query, "assignedTo")

	or, ok := query["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 2)
	want := primitive.Regex{Pattern: `C\+\+ \(build\) \[x\]\?`, Options: "i"}
	assert.Equal(t, bson.M{"title": want}, or[0])
	assert.Equal(t, bson.M{"description": want}, or[1])
}

func TestTicketUpdatePipeline(t *testing.T) {
	at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	pipeline := ticketUpdatePipeline(bson.D{literalField("title", "$5 refund")}, at)

	require.Len(t, pipeline, 1)
	require.Equal(t, "$set", pipeline[0][0].Key)
	set, ok := pipeline[0][0].Value.(bson.D)
	require.True(t, ok)
	require.Len(t, set, 2)

	assert.Equal(t, bson.E{Key: "title", Value: bson.M{"$literal": "$5 refund"}}, set[0])
	assert.Equal(t, "updatedAt", set[1].Key)
	assert.Equal(t, bson.M{"$max": bson.A{
		bson.M{"$add": bson.A{"$updatedAt", int64(1)}},
		at,
	}}, set[1].Value)
}

func TestTicketListSQL(t *testing.T) {
	query, args := ticketListSQL(TicketFilter{})
	assert.Equal(t, `SELECT `+ticketColumns+` FROM tickets WHERE 1=1 ORDER BY created_at DESC`, query)
	assert.Empty(t, args)

	query, args = ticketListSQL(TicketFilter{
		AssigneeID: ptr("a1"),
		Category:   ptr("Network"),
		SearchTerm: ptr("  VPN%_ "),
	})
	assert.Contains(t, query, "assignee_id=$1 AND category=$2")
	assert.Contains(t, query, "(strpos(LOWER(title), $3) > 0 OR strpos(LOWER(description), $3) > 0)")
	assert.Equal(t, []any{"a1", "Network", "vpn%_"}, args)
}

func TestTicketUpdateSQL(t *testing.T) {
	at := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	status := domain.TicketStatusResolved

	query, args := ticketUpdateSQL("t1", TicketPatch{Title: ptr("New title"), Status: &status}, at)
	assert.Equal(t,
		`UPDATE tickets SET title=$1, status=$2, updated_at=GREATEST(updated_at + interval '1 millisecond', $3) WHERE id=$4 RETURNING `+ticketColumns,
		query)
	assert.Equal(t, []any{"New title", status, at, "t1"}, args)

	query, args = ticketUpdateSQL("t1", TicketPatch{}, at)
	assert.Contains(t, query, "SET updated_at=GREATEST(updated_at + interval '1 millisecond', $1) WHERE id=$2")
	assert.Equal(t, []any{at, "t1"}, args)
}
