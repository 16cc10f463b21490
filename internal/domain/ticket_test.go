package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextUpdatedAt(t *testing.T) {
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		prev time.Time
		now  time.Time
		want time.Time
	}{
		{"clock advanced", base, base.Add(time.Second), base.Add(time.Second)},
		{"same instant", base, base, base.Add(time.Millisecond)},
		{"clock behind", base, base.Add(-time.Minute), base.Add(time.Millisecond)},
		{"sub-millisecond advance", base, base.Add(300 * time.Microsecond), base.Add(time.Millisecond)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextUpdatedAt(tt.prev, tt.now)
			assert.True(t, got.After(tt.prev))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, TicketStatusInProgress.Valid())
	assert.False(t, TicketStatus("pending").Valid())
	assert.True(t, TicketPriorityUrgent.Valid())
	assert.False(t, TicketPriority("critical").Valid())
	assert.True(t, RoleAgent.IsStaff())
	assert.False(t, RoleUser.IsStaff())
	assert.False(t, Role("owner").Valid())
}

func TestTicketRelations(t *testing.T) {
	agent := "agent-1"
	ticket := &Ticket{OwnerID: "user-1", AssigneeID: &agent}

	assert.True(t, ticket.IsOwnedBy("user-1"))
	assert.False(t, ticket.IsOwnedBy(""))
	assert.True(t, ticket.IsAssignedTo("agent-1"))
	assert.False(t, ticket.IsAssignedTo("user-1"))
}
