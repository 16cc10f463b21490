package service

import (
	"context"

	"github.com/deskline/helpdesk-service/internal/domain"
	"github.com/deskline/helpdesk-service/internal/repository"
)

// AccountRef is the display form of an account referenced by a ticket. A
// reference to a deleted account carries only the id.
type AccountRef struct {
	ID    string
	Name  string
	Email string
	Role  domain.Role
}

// CommentView is a comment with its author resolved.
type CommentView struct {
	domain.Comment
	Author AccountRef
}

// TicketView is a ticket with owner, assignee and comment authors resolved.
type TicketView struct {
	*domain.Ticket
	Owner        AccountRef
	Assignee     *AccountRef
	CommentViews []CommentView
}

type accountResolver struct {
	accounts repository.AccountRepository
}

func (r accountResolver) views(ctx context.Context, tickets []domain.Ticket) ([]TicketView, error) {
	seen := map[string]struct{}{}
	ids := []string{}
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for i := range tickets {
		add(tickets[i].OwnerID)
		if tickets[i].AssigneeID != nil {
			add(*tickets[i].AssigneeID)
		}
		for _, c := range tickets[i].Comments {
			add(c.AuthorID)
		}
	}

	accounts, err := r.accounts.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeError(err, "account", nil)
	}

	views := make([]TicketView, 0, len(tickets))
	for i := range tickets {
		t := &tickets[i]
		view := TicketView{
			Ticket:       t,
			Owner:        refFor(accounts, t.OwnerID),
			CommentViews: make([]CommentView, 0, len(t.Comments)),
		}
		if t.AssigneeID != nil {
			assignee := refFor(accounts, *t.AssigneeID)
			view.Assignee = &assignee
		}
		for _, c := range t.Comments {
			view.CommentViews = append(view.CommentViews, CommentView{Comment: c, Author: refFor(accounts, c.AuthorID)})
		}
		views = append(views, view)
	}
	return views, nil
}

func (r accountResolver) view(ctx context.Context, ticket *domain.Ticket) (*TicketView, error) {
	views, err := r.views(ctx, []domain.Ticket{*ticket})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func refFor(accounts map[string]domain.Account, id string) AccountRef {
	account, ok := accounts[id]
	if !ok {
		return AccountRef{ID: id}
	}
	return accountRef(&account)
}

func accountRef(account *domain.Account) AccountRef {
	return AccountRef{ID: account.ID, Name: account.Name, Email: account.Email, Role: account.Role}
}
