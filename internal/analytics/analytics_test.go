package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskline/helpdesk-service/internal/domain"
)

var base = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func ticket(status domain.TicketStatus, created time.Time, open time.Duration) domain.Ticket {
	return domain.Ticket{Status: status, CreatedAt: created, UpdatedAt: created.Add(open)}
}

func TestAverageResolutionHours(t *testing.T) {
	assert.Zero(t, AverageResolutionHours(nil))
	assert.Zero(t, AverageResolutionHours([]domain.Ticket{ticket(domain.TicketStatusOpen, base, 5*time.Hour)}))

	tickets := []domain.Ticket{
		ticket(domain.TicketStatusResolved, base, 2*time.Hour),
		ticket(domain.TicketStatusResolved, base, 4*time.Hour),
		ticket(domain.TicketStatusClosed, base, 100*time.Hour),
	}
	assert.InDelta(t, 3.0, AverageResolutionHours(tickets), 1e-9)
}

func TestSummarize(t *testing.T) {
	tickets := []domain.Ticket{
		ticket(domain.TicketStatusOpen, base, 0),
		ticket(domain.TicketStatusOpen, base, 0),
		ticket(domain.TicketStatusInProgress, base, 0),
		ticket(domain.TicketStatusResolved, base, 90*time.Minute),
		ticket(domain.TicketStatusClosed, base, 0),
	}

	got := Summarize(tickets)
	assert.Equal(t, Summary{
		Total:                  5,
		Open:                   2,
		InProgress:             1,
		Resolved:               1,
		Closed:                 1,
		AverageResolutionHours: 1.5,
	}, got)
}

func TestTimeline(t *testing.T) {
	now := time.Date(2024, 5, 10, 23, 30, 0, 0, time.UTC)
	tickets := []domain.Ticket{
		ticket(domain.TicketStatusOpen, now, 0),
		ticket(domain.TicketStatusResolved, now.Add(-2*time.Hour), time.Hour),
		ticket(domain.TicketStatusOpen, now.AddDate(0, 0, -6), 0),
		ticket(domain.TicketStatusInProgress, now.AddDate(0, 0, -3), 0),
		ticket(domain.TicketStatusOpen, now.AddDate(0, 0, -7), 0),
	}

	points := Timeline(tickets, now, TimelineDays)
	require.Len(t, points, 7)
	assert.Equal(t, "2024-05-04", points[0].Date)
	assert.Equal(t, "2024-05-10", points[6].Date)

	assert.Equal(t, TimelinePoint{Date: "2024-05-10", Open: 1, Resolved: 1}, points[6])
	assert.Equal(t, TimelinePoint{Date: "2024-05-04", Open: 1}, points[0])
	assert.Equal(t, TimelinePoint{Date: "2024-05-07"}, points[3], "in-progress tickets are not counted")
}

func TestAgentsPerformance(t *testing.T) {
	a1, a2 := "a1", "a2"
	agents := []domain.Account{
		{ID: a1, Name: "Ann", Email: "ann@example.com", Role: domain.RoleAgent},
		{ID: a2, Name: "Bob", Email: "bob@example.com", Role: domain.RoleAgent},
	}
	resolved := ticket(domain.TicketStatusResolved, base, 6*time.Hour)
	resolved.AssigneeID = &a1
	open := ticket(domain.TicketStatusOpen, base, 0)
	open.AssigneeID = &a1
	unassigned := ticket(domain.TicketStatusOpen, base, 0)

	rows := AgentsPerformance(agents, []domain.Ticket{resolved, open, unassigned})
	require.Len(t, rows, 2)
	assert.Equal(t, AgentPerformance{AgentID: a1, Name: "Ann", Email: "ann@example.com", Assigned: 2, Resolved: 1, AverageResolutionHours: 6}, rows[0])
	assert.Equal(t, 0, rows[1].Assigned)
	assert.Zero(t, rows[1].AverageResolutionHours)
}

func TestCategoryDistribution(t *testing.T) {
	categorized := func(category string) domain.Ticket {
		tk := ticket(domain.TicketStatusOpen, base, 0)
		tk.Category = category
		return tk
	}

	cases := []struct {
		name    string
		tickets []domain.Ticket
		want    []CategoryCount
	}{
		{name: "empty", tickets: nil, want: []CategoryCount{}},
		{
			name:    "largest first",
			tickets: []domain.Ticket{categorized("Software"), categorized("Hardware"), categorized("Software")},
			want:    []CategoryCount{{Name: "Software", Value: 2}, {Name: "Hardware", Value: 1}},
		},
		{
			name:    "ties by name",
			tickets: []domain.Ticket{categorized("Network"), categorized("Access"), categorized("Hardware")},
			want:    []CategoryCount{{Name: "Access", Value: 1}, {Name: "Hardware", Value: 1}, {Name: "Network", Value: 1}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CategoryDistribution(tc.tickets))
		})
	}
}
