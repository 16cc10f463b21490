// Package policy decides what an actor may do with a ticket. Every function
// is pure: callers load the ticket and the target account first and only
// then ask for a decision.
package policy

import "github.com/deskline/helpdesk-service/internal/domain"

// Action is an operation guarded by the policy.
type Action string

const (
	ActionView    Action = "view"
	ActionUpdate  Action = "update"
	ActionComment Action = "comment"
	ActionAssign  Action = "assign"
)

// CanView reports whether actor may read ticket. Staff see everything; end
// users see only the tickets they own.
func CanView(actor domain.Actor, ticket *domain.Ticket) bool {
	if ticket == nil {
		return false
	}
	if actor.IsStaff() {
		return true
	}
	return actor.Role == domain.RoleUser && ticket.IsOwnedBy(actor.ID)
}

// CanUpdate reports whether actor may edit the ticket's fields.
func CanUpdate(actor domain.Actor, ticket *domain.Ticket) bool {
	if ticket == nil {
		return false
	}
	return actor.IsStaff() || ticket.IsOwnedBy(actor.ID)
}

// CanComment reports whether actor may append to the ticket's thread.
func CanComment(actor domain.Actor, ticket *domain.Ticket) bool {
	return CanUpdate(actor, ticket)
}

// CanAssign reports whether actor may change the ticket's assignee at all.
func CanAssign(actor domain.Actor) bool {
	return actor.IsStaff()
}

// CanAssignTo reports whether actor may hand a ticket to an account with
// targetRole. Agents cannot delegate to other agents.
func CanAssignTo(actor domain.Actor, targetRole domain.Role) bool {
	if !CanAssign(actor) {
		return false
	}
	if actor.Role == domain.RoleAgent && targetRole == domain.RoleAgent {
		return false
	}
	return true
}

// Allowed dispatches on action. ActionAssign only checks the actor; use
// CanAssignTo once the target account is known.
func Allowed(action Action, actor domain.Actor, ticket *domain.Ticket) bool {
	switch action {
	case ActionView:
		return CanView(actor, ticket)
	case ActionUpdate:
		return CanUpdate(actor, ticket)
	case ActionComment:
		return CanComment(actor, ticket)
	case ActionAssign:
		return ticket != nil && CanAssign(actor)
	}
	return false
}

// VisibleOwner returns the owner id that must constrain listings for actor,
// or "" when the actor may list every ticket.
func VisibleOwner(actor domain.Actor) string {
	if actor.IsStaff() {
		return ""
	}
	return actor.ID
}
