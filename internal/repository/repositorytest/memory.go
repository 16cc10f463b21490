// Package repositorytest provides in-memory repositories for tests.
package repositorytest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/deskline/helpdesk-service/internal/domain"
	"github.com/deskline/helpdesk-service/internal/repository"
)

// Tickets is a TicketRepository kept in a map. Creates counts successful
// inserts.
type Tickets struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
	Creates int
}

// NewTickets returns an empty ticket store.
func NewTickets() *Tickets {
	return &Tickets{tickets: map[string]domain.Ticket{}}
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.Comments = append([]domain.Comment{}, t.Comments...)
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		t.AssigneeID = &id
	}
	return t
}

func (m *Tickets) Create(_ context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[ticket.ID]; ok {
		return repository.ErrDuplicate
	}
	m.Creates++
	m.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (m *Tickets) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := cloneTicket(t)
	return &c, nil
}

func (m *Tickets) List(_ context.Context, f repository.TicketFilter) ([]domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Ticket{}
	for _, t := range m.tickets {
		if f.OwnerID != nil && t.OwnerID != *f.OwnerID {
			continue
		}
		if f.AssigneeID != nil && !t.IsAssignedTo(*f.AssigneeID) {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.Priority != nil && t.Priority != *f.Priority {
			continue
		}
		if f.Category != nil && t.Category != *f.Category {
			continue
		}
		if f.SearchTerm != nil {
			term := strings.ToLower(*f.SearchTerm)
			if !strings.Contains(strings.ToLower(t.Title), term) && !strings.Contains(strings.ToLower(t.Description), term) {
				continue
			}
		}
		out = append(out, cloneTicket(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Tickets) mutate(id string, updatedAt time.Time, fn func(*domain.Ticket)) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fn(&t)
	t.UpdatedAt = domain.NextUpdatedAt(t.UpdatedAt, updatedAt)
	m.tickets[id] = t
	c := cloneTicket(t)
	return &c, nil
}

func (m *Tickets) UpdateFields(_ context.Context, id string, p repository.TicketPatch, updatedAt time.Time) (*domain.Ticket, error) {
	return m.mutate(id, updatedAt, func(t *domain.Ticket) {
		if p.Title != nil {
			t.Title = *p.Title
		}
		if p.Description != nil {
			t.Description = *p.Description
		}
		if p.Category != nil {
			t.Category = *p.Category
		}
		if p.Status != nil {
			t.Status = *p.Status
		}
		if p.Priority != nil {
			t.Priority = *p.Priority
		}
	})
}

func (m *Tickets) AppendComment(_ context.Context, id string, c domain.Comment, updatedAt time.Time) (*domain.Ticket, error) {
	return m.mutate(id, updatedAt, func(t *domain.Ticket) {
		t.Comments = append(t.Comments, c)
	})
}

func (m *Tickets) SetAssignee(_ context.Context, id, assigneeID string, updatedAt time.Time) (*domain.Ticket, error) {
	return m.mutate(id, updatedAt, func(t *domain.Ticket) {
		t.AssigneeID = &assigneeID
	})
}

// Accounts is an AccountRepository kept in a map.
type Accounts struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
}

// NewAccounts returns a store seeded with accounts.
func NewAccounts(accounts ...domain.Account) *Accounts {
	m := &Accounts{accounts: map[string]domain.Account{}}
	for _, a := range accounts {
		m.accounts[a.ID] = a
	}
	return m
}

func (m *Accounts) Create(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Email == a.Email {
			return repository.ErrDuplicate
		}
	}
	m.accounts[a.ID] = *a
	return nil
}

func (m *Accounts) Update(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[a.ID]; !ok {
		return repository.ErrNotFound
	}
	m.accounts[a.ID] = *a
	return nil
}

func (m *Accounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (m *Accounts) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Email == email {
			found := a
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *Accounts) GetByIDs(_ context.Context, ids []string) (map[string]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]domain.Account{}
	for _, id := range ids {
		if a, ok := m.accounts[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

func (m *Accounts) List(_ context.Context, role *domain.Role) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Account{}
	for _, a := range m.accounts {
		if role != nil && a.Role != *role {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Accounts) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.accounts, id)
	return nil
}

// Feed is a NotificationRepository kept in memory, newest first.
type Feed struct {
	mu    sync.Mutex
	items map[string][]domain.Notification
}

// NewFeed returns an empty notification store.
func NewFeed() *Feed {
	return &Feed{items: map[string][]domain.Notification{}}
}

func (m *Feed) Push(_ context.Context, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[n.AccountID] = append([]domain.Notification{n}, m.items[n.AccountID]...)
	return nil
}

func (m *Feed) List(_ context.Context, accountID string, limit int) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.items[accountID]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return append([]domain.Notification{}, items...), nil
}

func (m *Feed) Clear(_ context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, accountID)
	return nil
}

var (
	_ repository.TicketRepository       = (*Tickets)(nil)
	_ repository.AccountRepository      = (*Accounts)(nil)
	_ repository.NotificationRepository = (*Feed)(nil)
)
