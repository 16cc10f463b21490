package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deskline/helpdesk-service/internal/auth"
	"github.com/deskline/helpdesk-service/internal/config"
	"github.com/deskline/helpdesk-service/internal/domain"
	"github.com/deskline/helpdesk-service/internal/repository"
	apperrors "github.com/deskline/helpdesk-service/pkg/util"
)

// AccountService coordinates registration, login and account administration.
type AccountService struct {
	accounts   repository.AccountRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

// AccountDependencies encapsulates repo requirements for the account service.
type AccountDependencies struct {
	AccountRepo repository.AccountRepository
	Logger      *zap.Logger
	Clock       func() time.Time
}

// AccountCreateInput is what an admin supplies to create an account.
type AccountCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AccountUpdateInput lists the fields an account may change on itself.
type AccountUpdateInput struct {
	Name     *string
	Email    *string
	Password *string
}

// Session is an authenticated account with its bearer token.
type Session struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, deps AccountDependencies) *AccountService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &AccountService{
		accounts:   deps.AccountRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
		now:        clock,
	}
}

// Register creates a new end-user account and signs it in.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	account, err := s.create(ctx, AccountCreateInput{Name: name, Email: email, Password: password, Role: string(domain.RoleUser)})
	if err != nil {
		return nil, err
	}
	return s.session(account)
}

// Login authenticates by email and password.
func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, storeError(err, "account", nil)
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.session(account)
}

// Me returns the caller's account.
func (s *AccountService) Me(ctx context.Context, actor domain.Actor) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("account no longer exists")
		}
		return nil, storeError(err, "account", nil)
	}
	return account, nil
}

// List returns every account.
func (s *AccountService) List(ctx context.Context, actor domain.Actor) ([]domain.Account, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	accounts, err := s.accounts.List(ctx, nil)
	if err != nil {
		return nil, storeError(err, "account", nil)
	}
	return accounts, nil
}

// ListAgents returns the accounts with the agent role.
func (s *AccountService) ListAgents(ctx context.Context, actor domain.Actor) ([]domain.Account, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	role := domain.RoleAgent
	accounts, err := s.accounts.List(ctx, &role)
	if err != nil {
		return nil, storeError(err, "account", nil)
	}
	return accounts, nil
}

// Get returns a single account.
func (s *AccountService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Account, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "account", map[string]any{"account_id": id})
	}
	return account, nil
}

// Create adds an account with any role.
func (s *AccountService) Create(ctx context.Context, actor domain.Actor, input AccountCreateInput) (*domain.Account, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.create(ctx, input)
}

// Delete removes an account. Admins cannot remove themselves.
func (s *AccountService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if id == actor.ID {
		return apperrors.NewValidationError("cannot delete your own account", nil)
	}
	if err := s.accounts.Delete(ctx, id); err != nil {
		return storeError(err, "account", map[string]any{"account_id": id})
	}
	return nil
}

// UpdateSelf changes name, email or password of the caller. Role is never
// self-service.
func (s *AccountService) UpdateSelf(ctx context.Context, actor domain.Actor, input AccountUpdateInput) (*domain.Account, error) {
	account, err := s.Me(ctx, actor)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperrors.NewValidationError("name must not be empty", nil)
		}
		account.Name = name
	}
	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if !govalidator.IsEmail(email) {
			return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": *input.Email})
		}
		if email != account.Email {
			if err := s.ensureEmailFree(ctx, email); err != nil {
				return nil, err
			}
			account.Email = email
		}
	}
	if input.Password != nil {
		if *input.Password == "" {
			return nil, apperrors.NewValidationError("password must not be empty", nil)
		}
		hash, err := auth.HashPassword(*input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		account.PasswordHash = hash
	}

	account.UpdatedAt = domain.NextUpdatedAt(account.UpdatedAt, s.now())
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, storeError(err, "account", map[string]any{"email": account.Email})
	}
	return account, nil
}

// EnsureAdmin creates an admin account with the given credentials unless an
// account with that email already exists.
func (s *AccountService) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.Account, bool, error) {
	existing, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, storeError(err, "account", nil)
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	account, err := s.create(ctx, AccountCreateInput{Name: name, Email: email, Password: password, Role: string(domain.RoleAdmin)})
	if err != nil {
		return nil, false, err
	}
	s.logger.Info("bootstrap admin created", zap.String("account_id", account.ID), zap.String("email", account.Email))
	return account, true, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AccountService) create(ctx context.Context, input AccountCreateInput) (*domain.Account, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)

	missing := []string{}
	if name == "" {
		missing = append(missing, "name")
	}
	if email == "" {
		missing = append(missing, "email")
	}
	if input.Password == "" {
		missing = append(missing, "password")
	}
	if input.Role == "" {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		return nil, apperrors.NewValidationError("missing required fields", map[string]any{"fields": missing})
	}
	if !govalidator.IsEmail(email) {
		return nil, apperrors.NewValidationError("invalid email", map[string]any{"email": input.Email})
	}
	role := domain.Role(input.Role)
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": input.Role})
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	now := domain.Timestamp(s.now())
	account := &domain.Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, storeError(err, "account", map[string]any{"email": email})
	}
	return account, nil
}

func (s *AccountService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return apperrors.NewConflict("email already registered", map[string]any{"email": email})
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return storeError(err, "account", nil)
	}
}

func (s *AccountService) session(account *domain.Account) (*Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{Account: account, Token: token, ExpiresAt: exp}, nil
}

func requireAdmin(actor domain.Actor) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
