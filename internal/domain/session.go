package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionIdentity is the proof of a successful login: one account of one role.
type SessionIdentity struct {
	AccountID int64 `json:"account_id"`
	Role      Role  `json:"role"`
}

// Session is a persisted login. Its ID is the opaque token handed to the
// client (inside a signed cookie); deleting the row logs the client out.
type Session struct {
	ID        uuid.UUID `json:"id"`
	AccountID int64     `json:"account_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSession creates a session for identity that expires after ttl.
func NewSession(identity SessionIdentity, ttl time.Duration, now time.Time) *Session {
	now = now.UTC()
	return &Session{
		ID:        uuid.New(),
		AccountID: identity.AccountID,
		Role:      identity.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the session has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Identity returns the identity the session was issued for.
func (s *Session) Identity() SessionIdentity {
	return SessionIdentity{AccountID: s.AccountID, Role: s.Role}
}
