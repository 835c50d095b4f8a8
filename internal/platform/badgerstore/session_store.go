package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/phrazzld/guidematch/internal/domain"
	"github.com/phrazzld/guidematch/internal/platform/logger"
	"github.com/phrazzld/guidematch/internal/store"
)

// sessionKeyPrefix namespaces session records in the key space.
const sessionKeyPrefix = "session:"

// SessionStore implements store.SessionStore on BadgerDB. Entries carry a
// Badger TTL matching the session expiry, so expired sessions also vanish
// during compaction even if DeleteExpired never runs.
type SessionStore struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewSessionStore creates a Badger-backed session store. The caller owns db
// and closes it on shutdown.
func NewSessionStore(db *badger.DB, logger *slog.Logger) *SessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "badger_session_store")),
		now:    time.Now,
	}
}

var _ store.SessionStore = (*SessionStore)(nil)

func sessionKey(id uuid.UUID) []byte {
	return []byte(sessionKeyPrefix + id.String())
}

// Create stores a new session.
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("%w: session already expired", store.ErrInvalidEntity)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(sessionKey(session.ID), data).WithTTL(ttl))
	})
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to create session",
			slog.String("error", err.Error()),
			slog.Int64("account_id", session.AccountID))
		return store.NewStoreError("session", "create", "failed to set session", err)
	}
	return nil
}

// Get retrieves a session by ID.
func (s *SessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	var session domain.Session

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &session)
		})
	})
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, err
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, store.NewStoreError("session", "get", "failed to read session", err)
	}

	if session.IsExpired(s.now()) {
		return nil, store.ErrSessionExpired
	}
	return &session, nil
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(sessionKey(id)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
	if err != nil {
		return store.NewStoreError("session", "delete", "failed to delete session", err)
	}
	return nil
}

// DeleteExpired removes all sessions that expired at or before now.
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	var expired [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(sessionKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			var session domain.Session
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &session)
			}); err != nil {
				continue
			}

			if session.IsExpired(now) {
				expired = append(expired, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, store.NewStoreError("session", "delete_expired", "failed to scan sessions", err)
	}

	count := 0
	for _, key := range expired {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		})
		if err != nil {
			logger.FromContextOrDefault(ctx, s.logger).Warn("failed to delete expired session",
				slog.String("error", err.Error()),
				slog.String("key", string(key)))
			continue
		}
		count++
	}
	return count, nil
}
