package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/deskline/helpdesk-service/internal/config"
	"github.com/deskline/helpdesk-service/internal/domain"
	"github.com/deskline/helpdesk-service/internal/repository/repositorytest"
	apperrors "github.com/deskline/helpdesk-service/pkg/util"
)

func newAccountService(accounts *repositorytest.Accounts) *AccountService {
	cfg := config.Config{Auth: config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 5,
		BcryptCost:            bcrypt.MinCost,
	}}
	return NewAccountService(cfg, AccountDependencies{
		AccountRepo: accounts,
		Clock:       fixedClock(time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)),
	})
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAccountService(repositorytest.NewAccounts())

	session, err := svc.Register(ctx, "Carol", " Carol@Example.com ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", session.Account.Email)
	assert.Equal(t, domain.RoleUser, session.Account.Role)
	assert.NotEmpty(t, session.Token)

	claims, err := svc.TokenManager().ParseToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.Account.ID, claims.AccountID)

	_, err = svc.Register(ctx, "Carol again", "carol@example.com", "x")
	assert.True(t, apperrors.Is(err, "CONFLICT"))

	_, err = svc.Register(ctx, "Dave", "not-an-email", "x")
	assert.True(t, apperrors.Is(err, "VALIDATION_FAILED"))

	login, err := svc.Login(ctx, "CAROL@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, session.Account.ID, login.Account.ID)

	_, err = svc.Login(ctx, "carol@example.com", "wrong")
	assert.True(t, apperrors.Is(err, "UNAUTHORIZED"))
	_, err = svc.Login(ctx, "nobody@example.com", "s3cret")
	assert.True(t, apperrors.Is(err, "UNAUTHORIZED"))
}

func TestAdminAccountManagement(t *testing.T) {
	ctx := context.Background()
	accounts := repositorytest.NewAccounts(alice, agent, admin)
	svc := newAccountService(accounts)

	_, err := svc.List(ctx, actorOf(agent))
	assert.True(t, apperrors.Is(err, "FORBIDDEN"))

	created, err := svc.Create(ctx, actorOf(admin), AccountCreateInput{Name: "Eve", Email: "eve@example.com", Password: "pw", Role: "agent"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAgent, created.Role)

	_, err = svc.Create(ctx, actorOf(admin), AccountCreateInput{Name: "Eve", Email: "eve@example.com", Password: "pw", Role: "agent"})
	assert.True(t, apperrors.Is(err, "CONFLICT"))
	_, err = svc.Create(ctx, actorOf(admin), AccountCreateInput{Name: "Mal", Email: "mal@example.com", Password: "pw", Role: "root"})
	assert.True(t, apperrors.Is(err, "VALIDATION_FAILED"))
	_, err = svc.Create(ctx, actorOf(admin), AccountCreateInput{Name: "Mal", Email: "mal@example.com"})
	assert.True(t, apperrors.Is(err, "VALIDATION_FAILED"))

	agents, err := svc.ListAgents(ctx, actorOf(admin))
	require.NoError(t, err)
	assert.Len(t, agents, 2)

	_, err = svc.Get(ctx, actorOf(admin), "missing")
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))

	err = svc.Delete(ctx, actorOf(admin), admin.ID)
	assert.True(t, apperrors.Is(err, "VALIDATION_FAILED"))
	err = svc.Delete(ctx, actorOf(admin), "missing")
	assert.True(t, apperrors.Is(err, "NOT_FOUND"))
	require.NoError(t, svc.Delete(ctx, actorOf(admin), created.ID))
}

func TestUpdateSelf(t *testing.T) {
	ctx := context.Background()
	accounts := repositorytest.NewAccounts(alice, bob)
	svc := newAccountService(accounts)

	taken := bob.Email
	_, err := svc.UpdateSelf(ctx, actorOf(alice), AccountUpdateInput{Email: &taken})
	assert.True(t, apperrors.Is(err, "CONFLICT"))

	name := "Alice Liddell"
	password := "n3w-pass"
	updated, err := svc.UpdateSelf(ctx, actorOf(alice), AccountUpdateInput{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, domain.RoleUser, updated.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(password)))

	blank := ""
	_, err = svc.UpdateSelf(ctx, actorOf(alice), AccountUpdateInput{Name: &blank})
	assert.True(t, apperrors.Is(err, "VALIDATION_FAILED"))
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newAccountService(repositorytest.NewAccounts())

	first, created, err := svc.EnsureAdmin(ctx, "", "ops@example.com", "bootstrap")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, domain.RoleAdmin, first.Role)

	second, created, err := svc.EnsureAdmin(ctx, "", "OPS@example.com", "other")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
}
