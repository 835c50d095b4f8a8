package mocks

import (
	"errors"
	"sync"
)

// ErrMockPasswordMismatch is returned by MockPasswordVerifier on failure.
var ErrMockPasswordMismatch = errors.New("password mismatch")

// MockPasswordVerifier implements auth.PasswordHasher for testing. Hash
// prefixes the password with "hashed:" and Compare checks that form unless
// CompareFn overrides it.
type MockPasswordVerifier struct {
	// CompareFn allows for custom comparison logic in tests
	CompareFn func(hashedPassword, password string) error

	// HashError is returned by Hash when set.
	HashError error

	// CompareCalledWith stores the arguments passed to the last Compare call
	CompareCalledWith struct {
		HashedPassword string
		Password       string
	}

	// CompareCallCount tracks how many times Compare was called
	CompareCallCount int

	mu sync.Mutex
}

// Hash implements the auth.PasswordHasher interface
func (m *MockPasswordVerifier) Hash(password string) (string, error) {
	if m.HashError != nil {
		return "", m.HashError
	}
	return "hashed:" + password, nil
}

// Compare implements the auth.PasswordVerifier interface
func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.mu.Lock()
	m.CompareCalledWith.HashedPassword = hashedPassword
	m.CompareCalledWith.Password = password
	m.CompareCallCount++
	m.mu.Unlock()

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if hashedPassword == "hashed:"+password {
		return nil
	}
	return ErrMockPasswordMismatch
}

// Calls returns how many times Compare ran.
func (m *MockPasswordVerifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CompareCallCount
}
