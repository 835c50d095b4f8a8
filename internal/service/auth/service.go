package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/guidematch/internal/domain"
	"github.com/phrazzld/guidematch/internal/platform/logger"
	"github.com/phrazzld/guidematch/internal/store"
)

// dummyPassword is hashed once at startup; unknown emails are compared
// against its digest so they cost the same as a wrong password.
const dummyPassword = "guidematch-timing-equalizer"

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Identity  domain.SessionIdentity
	Token     string
	ExpiresAt time.Time
}

// Service authenticates accounts and manages their sessions.
type Service struct {
	accounts    store.AccountStore
	sessions    store.SessionStore
	passwords   PasswordHasher
	tokens      TokenService
	sessionTTL  time.Duration
	dummyDigest string
	now         func() time.Time
	logger      *slog.Logger
}

// NewService wires the auth service. sessionTTL must be positive.
func NewService(
	accounts store.AccountStore,
	sessions store.SessionStore,
	passwords PasswordHasher,
	tokens TokenService,
	sessionTTL time.Duration,
	logger *slog.Logger,
) (*Service, error) {
	if sessionTTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive, got %s", sessionTTL)
	}
	if logger == nil {
		logger = slog.Default()
	}

	dummyDigest, err := passwords.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy digest: %w", err)
	}

	return &Service{
		accounts:    accounts,
		sessions:    sessions,
		passwords:   passwords,
		tokens:      tokens,
		sessionTTL:  sessionTTL,
		dummyDigest: dummyDigest,
		now:         time.Now,
		logger:      logger.With(slog.String("component", "auth_service")),
	}, nil
}

// Authenticate checks email and password against the account of the given
// role. It returns ErrAccountNotFound or ErrBadCredentials, both of which
// wrap ErrInvalidCredentials.
func (s *Service) Authenticate(
	ctx context.Context,
	email, password string,
	role domain.Role,
) (*domain.SessionIdentity, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !role.Valid() {
		_ = s.passwords.Compare(s.dummyDigest, password)
		return nil, fmt.Errorf("%w: role %q", ErrAccountNotFound, role)
	}

	account, err := s.accounts.FindByEmail(ctx, role, email)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			_ = s.passwords.Compare(s.dummyDigest, password)
			log.Info("login for unknown account", slog.String("role", string(role)))
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := s.passwords.Compare(account.PasswordDigest, password); err != nil {
		log.Info("login with wrong password",
			slog.Int64("account_id", account.ID),
			slog.String("role", string(role)))
		return nil, ErrBadCredentials
	}

	identity := account.Identity()
	return &identity, nil
}

// Login authenticates and then opens a session, returning the signed token
// to hand to the client.
func (s *Service) Login(ctx context.Context, email, password string, role domain.Role) (*LoginResult, error) {
	identity, err := s.Authenticate(ctx, email, password, role)
	if err != nil {
		return nil, err
	}

	session := domain.NewSession(*identity, s.sessionTTL, s.now())
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.tokens.Sign(ctx, session)
	if err != nil {
		_ = s.sessions.Delete(ctx, session.ID)
		return nil, err
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("login succeeded",
		slog.Int64("account_id", identity.AccountID),
		slog.String("role", string(identity.Role)),
		slog.String("session_id", session.ID.String()))

	return &LoginResult{
		Identity:  *identity,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Resolve returns the identity behind a session token. The token must be
// validly signed and unexpired, and its session must still exist.
func (s *Service) Resolve(ctx context.Context, token string) (*domain.SessionIdentity, error) {
	claims, err := s.tokens.Parse(ctx, token)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, claims.SessionID)
	switch {
	case errors.Is(err, store.ErrSessionNotFound):
		return nil, ErrSessionRevoked
	case errors.Is(err, store.ErrSessionExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if session.Identity() != claims.Identity() {
		logger.FromContextOrDefault(ctx, s.logger).Warn("session token does not match stored session",
			slog.String("session_id", claims.SessionID.String()))
		return nil, ErrInvalidToken
	}

	identity := session.Identity()
	return &identity, nil
}

// Logout ends the session behind token. Tokens that are already unusable
// are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil
		}
		return err
	}

	if err := s.sessions.Delete(ctx, claims.SessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("logout",
		slog.Int64("account_id", claims.AccountID),
		slog.String("session_id", claims.SessionID.String()))
	return nil
}
