// Package analytics folds a set of tickets into dashboard aggregates. Nothing
// is stored; callers pass the tickets visible to the requesting actor.
package analytics

import (
	"sort"
	"time"

	"github.com/deskline/helpdesk-service/internal/domain"
)

// TimelineDays is the width of the activity timeline, today included.
const TimelineDays = 7

const dateLayout = "2006-01-02"

// Summary holds ticket counts and the mean resolution time.
type Summary struct {
	Total                  int
	Open                   int
	InProgress             int
	Resolved               int
	Closed                 int
	AverageResolutionHours float64
}

// TimelinePoint counts the tickets created on Date by their current status.
type TimelinePoint struct {
	Date     string
	Open     int
	Resolved int
}

// AgentPerformance aggregates the tickets assigned to one agent.
type AgentPerformance struct {
	AgentID                string
	Name                   string
	Email                  string
	Assigned               int
	Resolved               int
	AverageResolutionHours float64
}

// CategoryCount is the number of tickets filed under one category.
type CategoryCount struct {
	Name  string
	Value int
}

// Summarize counts tickets by status.
func Summarize(tickets []domain.Ticket) Summary {
	summary := Summary{Total: len(tickets)}
	for i := range tickets {
		switch tickets[i].Status {
		case domain.TicketStatusOpen:
			summary.Open++
		case domain.TicketStatusInProgress:
			summary.InProgress++
		case domain.TicketStatusResolved:
			summary.Resolved++
		case domain.TicketStatusClosed:
			summary.Closed++
		}
	}
	summary.AverageResolutionHours = AverageResolutionHours(tickets)
	return summary
}

// AverageResolutionHours is the mean of updatedAt-createdAt in hours over the
// resolved tickets, or 0 when none are resolved.
func AverageResolutionHours(tickets []domain.Ticket) float64 {
	var (
		total    time.Duration
		resolved int
	)
	for i := range tickets {
		if tickets[i].Status != domain.TicketStatusResolved {
			continue
		}
		total += tickets[i].ResolutionTime()
		resolved++
	}
	if resolved == 0 {
		return 0
	}
	return total.Hours() / float64(resolved)
}

// Timeline buckets tickets into the trailing days calendar days ending at
// now (UTC), oldest first.
func Timeline(tickets []domain.Ticket, now time.Time, days int) []TimelinePoint {
	if days <= 0 {
		days = TimelineDays
	}
	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	points := make([]TimelinePoint, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i-days+1).Format(dateLayout)
		points[i] = TimelinePoint{Date: date}
		index[date] = i
	}

	for i := range tickets {
		pos, ok := index[tickets[i].CreatedAt.UTC().Format(dateLayout)]
		if !ok {
			continue
		}
		switch tickets[i].Status {
		case domain.TicketStatusOpen:
			points[pos].Open++
		case domain.TicketStatusResolved:
			points[pos].Resolved++
		}
	}
	return points
}

// AgentsPerformance computes one row per agent, in the order agents are given.
func AgentsPerformance(agents []domain.Account, tickets []domain.Ticket) []AgentPerformance {
	byAgent := make(map[string][]domain.Ticket, len(agents))
	for i := range tickets {
		if tickets[i].AssigneeID == nil {
			continue
		}
		byAgent[*tickets[i].AssigneeID] = append(byAgent[*tickets[i].AssigneeID], tickets[i])
	}

	result := make([]AgentPerformance, 0, len(agents))
	for _, agent := range agents {
		assigned := byAgent[agent.ID]
		summary := Summarize(assigned)
		result = append(result, AgentPerformance{
			AgentID:                agent.ID,
			Name:                   agent.Name,
			Email:                  agent.Email,
			Assigned:               summary.Total,
			Resolved:               summary.Resolved,
			AverageResolutionHours: summary.AverageResolutionHours,
		})
	}
	return result
}

// CategoryDistribution counts tickets per category, largest first and then
// by name.
func CategoryDistribution(tickets []domain.Ticket) []CategoryCount {
	counts := make(map[string]int)
	for i := range tickets {
		counts[tickets[i].Category]++
	}

	result := make([]CategoryCount, 0, len(counts))
	for name, value := range counts {
		result = append(result, CategoryCount{Name: name, Value: value})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Value != result[j].Value {
			return result[i].Value > result[j].Value
		}
		return result[i].Name < result[j].Name
	})
	return result
}
