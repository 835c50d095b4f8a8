package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/guidematch/internal/domain"
	"github.com/phrazzld/guidematch/internal/platform/logger"
)

const tokenIssuer = "guidematch"

// MinSecretLength is the shortest accepted signing secret.
const MinSecretLength = 32

// TokenService signs and verifies session tokens.
type TokenService interface {
	// Sign issues a token for a persisted session.
	Sign(ctx context.Context, session *domain.Session) (string, error)

	// Parse verifies signature and expiry and extracts the claims.
	// Every failure wraps ErrNoSession.
	Parse(ctx context.Context, token string) (*Claims, error)
}

// Claims is what a valid session token asserts.
type Claims struct {
	SessionID uuid.UUID
	AccountID int64
	Role      domain.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity returns the identity the token claims.
func (c *Claims) Identity() domain.SessionIdentity {
	return domain.SessionIdentity{AccountID: c.AccountID, Role: c.Role}
}

// sessionClaims defines the structure of the JWT claims: jti is the session
// id and sub the account id.
type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// hmacTokenService is an implementation of TokenService using HMAC-SHA256 signing.
type hmacTokenService struct {
	signingKey []byte
	timeFunc   func() time.Time // Injectable for testing
	clockSkew  time.Duration
}

var _ TokenService = (*hmacTokenService)(nil)

// NewTokenService creates a token service using HMAC-SHA256 signing.
func NewTokenService(secret string) (TokenService, error) {
	return newTokenService(secret, time.Now)
}

func newTokenService(secret string, now func() time.Time) (*hmacTokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d characters", MinSecretLength)
	}
	return &hmacTokenService{
		signingKey: []byte(secret),
		timeFunc:   now,
		clockSkew:  30 * time.Second,
	}, nil
}

// Sign creates a signed token for session.
func (s *hmacTokenService) Sign(ctx context.Context, session *domain.Session) (string, error) {
	claims := sessionClaims{
		Role: string(session.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   strconv.FormatInt(session.AccountID, 10),
			IssuedAt:  jwt.NewNumericDate(s.timeFunc()),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			ID:        session.ID.String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign session token",
			"error", err,
			"account_id", session.AccountID)
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse validates a session token and returns its claims.
func (s *hmacTokenService) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	log := logger.FromContext(ctx)

	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&sessionClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(s.timeFunc),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug("session token expired")
			return nil, ErrExpiredToken
		}
		log.Debug("session token rejected", "error", err)
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sessionID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad session id", ErrInvalidToken)
	}
	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	role := domain.Role(claims.Role)
	if !role.Valid() {
		return nil, fmt.Errorf("%w: bad role", ErrInvalidToken)
	}

	result := &Claims{
		SessionID: sessionID,
		AccountID: accountID,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		result.IssuedAt = claims.IssuedAt.Time
	}
	return result, nil
}
