package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/guidematch/internal/domain"
	"github.com/phrazzld/guidematch/internal/store"
)

// MockAccountStore implements store.AccountStore for testing. Without Fn
// overrides it behaves like a small in-memory store keyed by role and email.
type MockAccountStore struct {
	// Function fields for customizable behavior
	InsertFn               func(ctx context.Context, account *domain.Account) (int64, error)
	FindByEmailFn          func(ctx context.Context, role domain.Role, email string) (*domain.Account, error)
	FindByIDFn             func(ctx context.Context, role domain.Role, id int64) (*domain.Account, error)
	FindGuidesByLocationFn func(ctx context.Context, location string) ([]*domain.Account, error)

	// Data for default implementation
	Accounts    []*domain.Account
	InsertError error

	// Call tracking
	InsertCalls               int
	FindGuidesByLocationCalls int

	mu     sync.Mutex
	nextID int64
}

// NewMockAccountStore creates a new mock store with initialized defaults
func NewMockAccountStore() *MockAccountStore {
	return &MockAccountStore{}
}

var _ store.AccountStore = (*MockAccountStore)(nil)

// Insert implements the AccountStore interface
func (m *MockAccountStore) Insert(ctx context.Context, account *domain.Account) (int64, error) {
	m.mu.Lock()
	m.InsertCalls++
	m.mu.Unlock()

	if m.InsertFn != nil {
		return m.InsertFn(ctx, account)
	}
	if m.InsertError != nil {
		return 0, m.InsertError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.Accounts {
		if existing.Role == account.Role && existing.Email == account.Email {
			return 0, store.ErrEmailExists
		}
	}

	m.nextID++
	account.ID = m.nextID
	m.Accounts = append(m.Accounts, account)
	return account.ID, nil
}

// InsertTourist implements the AccountStore interface
func (m *MockAccountStore) InsertTourist(ctx context.Context, account *domain.Account) (int64, error) {
	account.Role = domain.RoleTourist
	return m.Insert(ctx, account)
}

// InsertGuide implements the AccountStore interface
func (m *MockAccountStore) InsertGuide(ctx context.Context, account *domain.Account) (int64, error) {
	account.Role = domain.RoleGuide
	return m.Insert(ctx, account)
}

// FindByEmail implements the AccountStore interface
func (m *MockAccountStore) FindByEmail(ctx context.Context, role domain.Role, email string) (*domain.Account, error) {
	if m.FindByEmailFn != nil {
		return m.FindByEmailFn(ctx, role, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	email = domain.NormalizeEmail(email)
	for _, a := range m.Accounts {
		if a.Role == role && a.Email == email {
			return a, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

// FindByID implements the AccountStore interface
func (m *MockAccountStore) FindByID(ctx context.Context, role domain.Role, id int64) (*domain.Account, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, role, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.Accounts {
		if a.Role == role && a.ID == id {
			return a, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

// FindGuidesByLocation implements the AccountStore interface
func (m *MockAccountStore) FindGuidesByLocation(ctx context.Context, location string) ([]*domain.Account, error) {
	m.mu.Lock()
	m.FindGuidesByLocationCalls++
	m.mu.Unlock()

	if m.FindGuidesByLocationFn != nil {
		return m.FindGuidesByLocationFn(ctx, location)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	location = domain.CanonicalPlace(location)
	guides := []*domain.Account{}
	if location == "" {
		return guides, nil
	}
	for _, a := range m.Accounts {
		if got, ok := a.Location(); ok && got == location {
			guides = append(guides, a)
		}
	}
	return guides, nil
}
