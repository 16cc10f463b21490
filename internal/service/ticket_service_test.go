package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/deskline/helpdesk-service/internal/domain"
	"github.com/deskline/helpdesk-service/internal/events"
	"github.com/deskline/helpdesk-service/internal/repository"
	"github.com/deskline/helpdesk-service/internal/repository/repositorytest"
	apperrors "github.com/deskline/helpdesk-service/pkg/util"
)

type harness struct {
	tickets  *repositorytest.Tickets
	accounts *repositorytest.Accounts
	feed     *repositorytest.Feed
	svc      *TicketService
	assign   *AssignmentService
	notify   *NotificationService
	metrics  *MetricsService
}

func newHarness(clock func() time.Time) *harness {
	tickets := repositorytest.NewTickets()
	accounts := repositorytest.NewAccounts(alice, bob, agent, other, admin)
	feed := repositorytest.NewFeed()
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()

	h := &harness{tickets: tickets, accounts: accounts, feed: feed}
	h.svc = NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		AccountRepo: accounts,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Clock:       clock,
	})
	h.assign = NewAssignmentService(AssignmentDependencies{
		TicketRepo:  tickets,
		AccountRepo: accounts,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Clock:       clock,
	})
	h.notify = NewNotificationService(dispatcher, feed, logger)
	h.notify.RegisterHandlers()
	h.metrics = NewMetricsService(h.svc, accounts)
	return h
}

func (h *harness) create(t *testing.T, owner domain.Account, title string) *TicketView {
	t.Helper()
	view, err := h.svc.Create(context.Background(), actorOf(owner), TicketCreateInput{
		Title:       title,
		Description: title + " description",
		Category:    "General",
	})
	require.NoError(t, err)
	return view
}

func TestPrinterDownScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(fixedClock(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)))

	created, err := h.svc.Create(ctx, actorOf(alice), TicketCreateInput{
		Title:       "Printer down",
		Description: "The 3rd floor printer shows a paper jam error",
		Category:    "Hardware",
		Priority:    "high",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, created.Status)
	assert.Equal(t, domain.TicketPriorityHigh, created.Priority)
	assert.Equal(t, alice.ID, created.OwnerID)
	assert.Equal(t, "Alice", created.Owner.Name)
	assert.Empty(t, created.Comments)

	comment, err := h.svc.AddComment(ctx, actorOf(agent), created.ID, "Checking now")
	require.NoError(t, err)
	assert.Equal(t, agent.ID, comment.AuthorID)
	assert.Equal(t, "Agent Smith", comment.Author.Name)
	assert.Equal(t, domain.RoleAgent, comment.Author.Role)

	afterComment, err := h.svc.Get(ctx, actorOf(agent), created.ID)
	require.NoError(t, err)
	require.Len(t, afterComment.Comments, 1)
	assert.Equal(t, agent.ID, afterComment.CommentViews[0].Author.ID)

	resolved := string(domain.TicketStatusResolved)
	updated, err := h.svc.Update(ctx, actorOf(agent), created.ID, TicketUpdateInput{Status: &resolved})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, updated.Status)
	assert.True(t, updated.UpdatedAt.After(afterComment.UpdatedAt))

	feed, err := h.notify.List(ctx, actorOf(alice), 0)
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, domain.NotificationTicketStatusChanged, feed[0].Type)
	assert.Equal(t, domain.NotificationTicketCommented, feed[1].Type)
}

func TestUpdatedAtStrictlyIncreases(t *testing.T) {
	ctx := context.Background()
	h := newHarness(fixedClock(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)))
	ticket := h.create(t, alice, "VPN drops")

	prev := ticket.UpdatedAt
	title := "VPN drops hourly"
	for i := 0; i < 3; i++ {
		updated, err := h.svc.Update(ctx, actorOf(alice), ticket.ID, TicketUpdateInput{Title: &title})
		require.NoError(t, err)
		assert.True(t, updated.UpdatedAt.After(prev), "iteration %d", i)
		prev = updated.UpdatedAt
	}

	_, err := h.svc.AddComment(ctx, actorOf(alice), ticket.ID, "still happening")
	require.NoError(t, err)
	stored, err := h.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.After(prev))

	assigned, err := h.assign.Assign(ctx, actorOf(admin), ticket.ID, agent.ID)
	require.NoError(t, err)
	assert.True(t, assigned.UpdatedAt.After(stored.UpdatedAt))
}

// staleReads returns the ticket as loaded, then lets a second writer commit a
// later updatedAt before the caller writes.
type staleReads struct {
	*repositorytest.Tickets
	competing time.Time
}

func (s *staleReads) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.Tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.Tickets.SetAssignee(ctx, id, agent.ID, s.competing); err != nil {
		return nil, err
	}
	return ticket, nil
}

func TestUpdatedAtNeverMovesBackUnderRace(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	h := newHarness(fixedClock(start))
	ticket := h.create(t, alice, "Monitor flickers")

	racing := &staleReads{Tickets: h.tickets, competing: start.Add(time.Hour)}
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  racing,
		AccountRepo: h.accounts,
		Dispatcher:  events.NewInMemoryDispatcher(),
		Logger:      zap.NewNop(),
		Clock:       fixedClock(start),
	})

	title := "Monitor flickers at boot"
	updated, err := svc.Update(ctx, actorOf(alice), ticket.ID, TicketUpdateInput{Title: &title})
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(racing.competing), "got %s", updated.UpdatedAt)

	_, err = svc.AddComment(ctx, actorOf(alice), ticket.ID, "also on the second screen")
	require.NoError(t, err)
	stored, err := h.tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt.After(updated.UpdatedAt))
}

var _ repository.TicketRepository = (*staleReads)(nil)

func TestUserSeesOnlyOwnedTickets(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	h := newHarness(func() time.Time { clock = clock.Add(time.Minute); return clock })

	mine := h.create(t, alice, "Laptop fan noisy")
	theirs := h.create(t, bob, "Email quota")

	list, err := h.svc.List(ctx, actorOf(alice), TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	_, err = h.svc.Get(ctx, actorOf(alice), theirs.ID)
	assert.True(t, apperrors.Is(err, "FORBIDDEN"))

	staff, err := h.svc.List(ctx, actorOf(agent), TicketListFilter{})
	require.NoError(t, err)
	require.Len(t, staff, 2)
	assert.Equal(t, theirs.ID, staff[0].ID, "newest first")
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	h := newHarness(func() time.Time { clock = clock.Add(time.Minute); return clock })

	vpn := h.create(t, alice, "VPN (a+b) broken")
	h.create(t, bob, "Monitor flicker")
	_, err := h.assign.Assign(ctx, actorOf(admin), vpn.ID, agent.ID)
	require.NoError(t, err)

	found, err := h.svc.List(ctx, actorOf(admin), TicketListFilter{Search: "(A+B)"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, vpn.ID, found[0].ID)

	assigned, err := h.svc.List(ctx, actorOf(agent), TicketListFilter{Scope: "assigned"})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Agent Smith", assigned[0].Assignee.Name)

	owned, err := h.svc.List(ctx, actorOf(bob), TicketListFilter{Scope: "owned"})
	require.NoError(t, err)
	assert.Len(t, owned, 1)

	_, err = h.svc.List(ctx, actorOf(admin), TicketListFilter{Status: "pending"})
	assert.True(t, apperrors.Is(err, "VALIDATION_FAILED"))
	_, err = h.svc.List(ctx, actorOf(admin), TicketListFilter{Scope: "everything"})
	assert.True(t, apperrors.Is(err, "VALIDATION_FAILED"))
}

func TestCreateValidationPersistsNothing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(time.Now)

	cases := []TicketCreateInput{
		{Description: "no title", Category: "General"},
		{Title: "no description", Category: "General"},
		{Title: "no category", Description: "x"},
		{Title: "bad priority", Description: "x", Category: "General", Priority: "critical"},
	}
	for _, input := range cases {
		_, err := h.svc.Create(ctx, actorOf(alice), input)
		assert.True(t, apperrors.Is(err, "VALIDATION_FAILED"), "%+v", input)
	}
	assert.Zero(t, h.tickets.Creates)
}

func TestCreateWithAssignee(t *testing.T) {
	ctx := context.Background()
	h := newHarness(time.Now)
	target := agent.ID
	input := TicketCreateInput{Title: "New hire setup", Description: "Laptop and badge", Category: "Onboarding", AssignedTo: &target}

	_, err := h.svc.Create(ctx, actorOf(alice), input)
	assert.True(t, apperrors.Is(err, "FORBIDDEN"))

	_, err = h.svc.Create(ctx, actorOf(other), input)
	assert.True(t, apperrors.Is(err, "FORBIDDEN"))

	missing := "nobody"
	_, err = h.svc.Create(ctx, actorOf(admin), TicketCreateInput{Title: "t", Description: "d", Category: "c", AssignedTo: &missing})
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))
	assert.Zero(t, h.tickets.Creates)

	view, err := h.svc.Create(ctx, actorOf(admin), input)
	require.NoError(t, err)
	require.NotNil(t, view.Assignee)
	assert.Equal(t, agent.ID, view.Assignee.ID)
}

func TestAddCommentAppendsInOrder(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	h := newHarness(func() time.Time { clock = clock.Add(time.Second); return clock })
	ticket := h.create(t, alice, "Wifi slow")

	for i, content := range []string{"first", "second", "third"} {
		_, err := h.svc.AddComment(ctx, actorOf(alice), ticket.ID, content)
		require.NoError(t, err)
		stored, err := h.tickets.GetByID(ctx, ticket.ID)
		require.NoError(t, err)
		require.Len(t, stored.Comments, i+1)
		assert.Equal(t, content, stored.Comments[i].Content)
	}

	_, err := h.svc.AddComment(ctx, actorOf(alice), ticket.ID, "   ")
	assert.True(t, apperrors.Is(err, "VALIDATION_FAILED"))
	_, err = h.svc.AddComment(ctx, actorOf(bob), ticket.ID, "let me in")
	assert.True(t, apperrors.Is(err, "FORBIDDEN"))
	_, err = h.svc.AddComment(ctx, actorOf(alice), "missing", "hello")
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))
}

func TestUpdateRejectsInvalidFields(t *testing.T) {
	ctx := context.Background()
	h := newHarness(time.Now)
	ticket := h.create(t, alice, "Keyboard")

	blank := "  "
	_, err := h.svc.Update(ctx, actorOf(alice), ticket.ID, TicketUpdateInput{Title: &blank})
	assert.True(t, apperrors.Is(err, "VALIDATION_FAILED"))

	status := "reopened"
	_, err = h.svc.Update(ctx, actorOf(alice), ticket.ID, TicketUpdateInput{Status: &status})
	assert.True(t, apperrors.Is(err, "VALIDATION_FAILED"))

	category := "Peripherals"
	_, err = h.svc.Update(ctx, actorOf(bob), ticket.ID, TicketUpdateInput{Category: &category})
	assert.True(t, apperrors.Is(err, "FORBIDDEN"))

	updated, err := h.svc.Update(ctx, actorOf(alice), ticket.ID, TicketUpdateInput{Category: &category})
	require.NoError(t, err)
	assert.Equal(t, "Peripherals", updated.Category)
	assert.Equal(t, "Keyboard", updated.Title)
}

func TestAssignRules(t *testing.T) {
	ctx := context.Background()
	h := newHarness(time.Now)
	ticket := h.create(t, alice, "Printer jam")

	_, err := h.assign.Assign(ctx, actorOf(agent), ticket.ID, "")
	assert.True(t, apperrors.Is(err, "VALIDATION_FAILED"))

	_, err = h.assign.Assign(ctx, actorOf(agent), "missing", other.ID)
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))

	_, err = h.assign.Assign(ctx, actorOf(alice), ticket.ID, agent.ID)
	assert.True(t, apperrors.Is(err, "FORBIDDEN"))

	_, err = h.assign.Assign(ctx, actorOf(agent), ticket.ID, "ghost")
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))

	_, err = h.assign.Assign(ctx, actorOf(agent), ticket.ID, other.ID)
	assert.True(t, apperrors.Is(err, "FORBIDDEN"))

	view, err := h.assign.Assign(ctx, actorOf(admin), ticket.ID, other.ID)
	require.NoError(t, err)
	require.NotNil(t, view.Assignee)
	assert.Equal(t, "Other Agent", view.Assignee.Name)

	feed, err := h.notify.List(ctx, actorOf(other), 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, domain.NotificationTicketAssigned, feed[0].Type)
	assert.Equal(t, ticket.ID, feed[0].TicketID)
}

func TestDeletedAccountResolvesToStub(t *testing.T) {
	ctx := context.Background()
	h := newHarness(time.Now)
	ticket := h.create(t, bob, "Old request")
	require.NoError(t, h.accounts.Delete(ctx, bob.ID))

	view, err := h.svc.Get(ctx, actorOf(admin), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, AccountRef{ID: bob.ID}, view.Owner)
}

func TestStringPreview(t *testing.T) {
	assert.Equal(t, "short", stringPreview("  short ", 10))
	assert.Equal(t, "abcdefg...", stringPreview("abcdefghijklmnop", 10))
}
