package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/guidematch/internal/domain"
	"github.com/phrazzld/guidematch/internal/platform/logger"
	"github.com/phrazzld/guidematch/internal/store"
)

// PostgresSessionStore implements the store.SessionStore interface
// using the sessions table.
type PostgresSessionStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresSessionStore creates a new PostgreSQL implementation of the SessionStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresSessionStore(db store.DBTX, logger *slog.Logger) *PostgresSessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "session_store")),
		now:    time.Now,
	}
}

// Ensure PostgresSessionStore implements store.SessionStore interface
var _ store.SessionStore = (*PostgresSessionStore)(nil)

// Create implements store.SessionStore.Create.
func (s *PostgresSessionStore) Create(ctx context.Context, session *domain.Session) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO sessions (id, account_id, role, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.AccountID,
		string(session.Role),
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		log.Error("failed to create session",
			slog.String("error", err.Error()),
			slog.Int64("account_id", session.AccountID))
		return store.NewStoreError("session", "create", "failed to create session", MapError(err))
	}

	log.Debug("session created",
		slog.String("session_id", session.ID.String()),
		slog.Int64("account_id", session.AccountID),
		slog.Time("expires_at", session.ExpiresAt))
	return nil
}

// Get implements store.SessionStore.Get.
func (s *PostgresSessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, account_id, role, created_at, expires_at
		FROM sessions
		WHERE id = $1
	`

	var session domain.Session
	var role string
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID,
		&session.AccountID,
		&role,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("session not found", slog.String("session_id", id.String()))
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, store.NewStoreError("session", "get", "failed to get session", MapError(err))
	}
	session.Role = domain.Role(role)

	if session.IsExpired(s.now()) {
		log.Debug("session expired", slog.String("session_id", id.String()))
		return nil, store.ErrSessionExpired
	}
	return &session, nil
}

// Delete implements store.SessionStore.Delete.
func (s *PostgresSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		log.Error("failed to delete session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return store.NewStoreError("session", "delete", "failed to delete session", MapError(err))
	}
	return nil
}

// DeleteExpired implements store.SessionStore.DeleteExpired.
func (s *PostgresSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now.UTC())
	if err != nil {
		log.Error("failed to delete expired sessions", slog.String("error", err.Error()))
		return 0, store.NewStoreError("session", "delete_expired", "failed to delete expired sessions", MapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, store.NewStoreError("session", "delete_expired", "failed to count deleted sessions", err)
	}
	return int(n), nil
}
