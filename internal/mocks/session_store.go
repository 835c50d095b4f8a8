package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/guidematch/internal/domain"
	"github.com/phrazzld/guidematch/internal/store"
)

// MockSessionStore implements store.SessionStore for testing, backed by a map.
type MockSessionStore struct {
	CreateFn func(ctx context.Context, session *domain.Session) error
	GetFn    func(ctx context.Context, id uuid.UUID) (*domain.Session, error)

	// Now is the clock used to decide expiry; time.Now when nil.
	Now func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.Session
}

// NewMockSessionStore creates an empty session store.
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[uuid.UUID]*domain.Session)}
}

var _ store.SessionStore = (*MockSessionStore)(nil)

func (m *MockSessionStore) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

// Create implements the SessionStore interface
func (m *MockSessionStore) Create(ctx context.Context, session *domain.Session) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, session)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

// Get implements the SessionStore interface
func (m *MockSessionStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	if session.IsExpired(m.now()) {
		return nil, store.ErrSessionExpired
	}
	copied := *session
	return &copied, nil
}

// Delete implements the SessionStore interface
func (m *MockSessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// DeleteExpired implements the SessionStore interface
func (m *MockSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, session := range m.sessions {
		if session.IsExpired(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired or not.
func (m *MockSessionStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
