package service

import (
	"time"

	"github.com/deskline/helpdesk-service/internal/domain"
)

// fixedClock returns the same instant on every call so monotonicity has to
// come from the service.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var (
	alice = domain.Account{ID: "u-alice", Name: "Alice", Email: "alice@example.com", Role: domain.RoleUser}
	bob   = domain.Account{ID: "u-bob", Name: "Bob", Email: "bob@example.com", Role: domain.RoleUser}
	agent = domain.Account{ID: "a-agent", Name: "Agent Smith", Email: "agent@example.com", Role: domain.RoleAgent}
	other = domain.Account{ID: "a-other", Name: "Other Agent", Email: "other@example.com", Role: domain.RoleAgent}
	admin = domain.Account{ID: "x-admin", Name: "Root", Email: "admin@example.com", Role: domain.RoleAdmin}
)

func actorOf(a domain.Account) domain.Actor {
	return domain.Actor{ID: a.ID, Role: a.Role}
}
