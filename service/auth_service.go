package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/heimdall-auth/heimdall/core"
	"github.com/heimdall-auth/heimdall/ports"
)

// AuthService composes the validator, tokenizer, refresh store, revocation
// registry and rate limiter into the user-facing session operations.
type AuthService struct {
	cfg       Config
	tokenizer ports.Tokenizer
	users     ports.UserRepository
	eventPub  ports.EventPublisher
	logger    *slog.Logger

	refreshStore *RefreshTokenStore
	revocations  *RevocationRegistry
	limiter      *RateLimiter
}

// RegisterInput carries the registration fields after input-shape parsing.
type RegisterInput struct {
	Email    string
	Password string
	Role     string
}

// NewAuthService creates a new authentication service
func NewAuthService(
	cfg Config,
	tokenizer ports.Tokenizer,
	cache ports.Cache,
	users ports.UserRepository,
	eventPub ports.EventPublisher,
	clock ports.Clock,
	logger *slog.Logger,
) *AuthService {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		cfg:          cfg,
		tokenizer:    tokenizer,
		users:        users,
		eventPub:     eventPub,
		logger:       logger,
		refreshStore: NewRefreshTokenStore(cache, cfg.RefreshTTL),
		revocations:  NewRevocationRegistry(cache, clock),
		limiter:      NewRateLimiter(cache),
	}
}

// Register validates the credential, creates the identity and opens the
// first session. Tokens are only returned once the refresh token is safely
// on record; a store failure fails the whole operation.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*core.AuthResult, error) {
	email := NormalizeEmail(input.Email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(input.Password); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = s.cfg.DefaultRole
	}

	user, err := s.users.CreateUser(ctx, ports.CreateUserInput{
		Email:    email,
		Password: input.Password,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: create user: %v", core.ErrInfrastructure, err)
	}

	pair, accessID, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "login", user.ID, accessID)

	return &core.AuthResult{User: user, Tokens: pair}, nil
}

// Login authenticates an email+password pair. The rate limit is charged
// before the repository is consulted, so repeated failures exhaust the
// budget whether or not the email exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (*core.AuthResult, error) {
	email = NormalizeEmail(email)

	if err := s.limiter.Consume(ctx, email, s.cfg.LoginLimit, s.cfg.LoginWindow); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrAuthentication
		}
		return nil, fmt.Errorf("%w: find user: %v", core.ErrInfrastructure, err)
	}

	ok, err := s.users.VerifyPassword(ctx, user, password)
	if err != nil {
		return nil, fmt.Errorf("%w: verify password: %v", core.ErrInfrastructure, err)
	}
	if !ok {
		return nil, core.ErrAuthentication
	}

	pair, accessID, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, "login", user.ID, accessID)

	return &core.AuthResult{User: user, Tokens: pair}, nil
}

// Refresh rotates a refresh token for a fresh access+refresh pair. A token
// that is not the one currently on record fails as an invalid token; the
// caller never learns whether it was once valid.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*core.TokenPair, error) {
	claims, err := s.tokenizer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, core.ErrTokenInvalid
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrTokenInvalid
		}
		return nil, fmt.Errorf("%w: find user: %v", core.ErrInfrastructure, err)
	}

	access, accessClaims, err := s.tokenizer.IssueAccess(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	next, _, err := s.tokenizer.IssueRefresh(user)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	if err := s.refreshStore.ValidateAndRotate(ctx, claims.Subject, refreshToken, next); err != nil {
		if errors.Is(err, core.ErrTokenInvalid) {
			s.logger.Warn("refresh token replay rejected", "subject", claims.Subject)
			return nil, core.ErrTokenInvalid
		}
		return nil, err
	}

	s.notify(ctx, "refresh", user.ID, accessClaims.TokenID)

	return &core.TokenPair{AccessToken: access, RefreshToken: next}, nil
}

// Logout revokes the access token and invalidates the stored refresh token.
// Both actions must land; if either collaborator is unreachable the whole
// logout fails so the client cannot assume a dead session that is not.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	accessClaims, err := s.tokenizer.VerifyAccess(accessToken)
	if err != nil {
		return core.ErrTokenInvalid
	}

	refreshClaims, err := s.tokenizer.VerifyRefresh(refreshToken)
	if err != nil {
		return core.ErrTokenInvalid
	}
	if refreshClaims.Subject != accessClaims.Subject {
		return core.ErrTokenInvalid
	}

	if err := s.revocations.Revoke(ctx, accessClaims); err != nil {
		return err
	}
	if err := s.refreshStore.Invalidate(ctx, accessClaims.Subject); err != nil {
		return err
	}

	s.notify(ctx, "logout", accessClaims.Subject, accessClaims.TokenID)

	return nil
}

// VerifyAccess checks an access token structurally and against the
// revocation registry. Used by the request-authenticating middleware.
func (s *AuthService) VerifyAccess(ctx context.Context, accessToken string) (*core.Claims, error) {
	claims, err := s.tokenizer.VerifyAccess(accessToken)
	if err != nil {
		return nil, core.ErrTokenInvalid
	}

	revoked, err := s.revocations.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, core.ErrTokenRevoked
	}

	return claims, nil
}

// openSession issues an access+refresh pair and records the refresh token
// as the only valid one for the subject. Returns the access JTI for event
// payloads.
func (s *AuthService) openSession(ctx context.Context, user *core.User) (core.TokenPair, string, error) {
	access, accessClaims, err := s.tokenizer.IssueAccess(user)
	if err != nil {
		return core.TokenPair{}, "", fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, _, err := s.tokenizer.IssueRefresh(user)
	if err != nil {
		return core.TokenPair{}, "", fmt.Errorf("failed to issue refresh token: %w", err)
	}

	// Issuing tokens without successfully storing the refresh token is an
	// overall failure, never a partial success.
	if err := s.refreshStore.Store(ctx, user.ID, refresh); err != nil {
		return core.TokenPair{}, "", err
	}

	return core.TokenPair{AccessToken: access, RefreshToken: refresh}, accessClaims.TokenID, nil
}

// notify publishes a session lifecycle event. Event delivery is
// observability, not state: failures are logged and swallowed.
func (s *AuthService) notify(ctx context.Context, kind, userID, tokenID string) {
	if s.eventPub == nil {
		return
	}

	var err error
	switch kind {
	case "login":
		err = s.eventPub.PublishLogin(ctx, userID, tokenID)
	case "logout":
		err = s.eventPub.PublishLogout(ctx, userID, tokenID)
	case "refresh":
		err = s.eventPub.PublishRefresh(ctx, userID, tokenID)
	}
	if err != nil {
		s.logger.Warn("failed to publish session event", "kind", kind, "user_id", userID, "error", err)
	}
}
