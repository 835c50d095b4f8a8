package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/guidematch/internal/domain"
)

// SessionStore defines the interface for persisted login sessions.
type SessionStore interface {
	// Create stores a new session.
	Create(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by id.
	// Returns ErrSessionNotFound if it does not exist and ErrSessionExpired if
	// it exists but has expired.
	Get(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes every session that expired before now and
	// returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
