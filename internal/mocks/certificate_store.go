package mocks

import (
	"context"
	"io"
	"sync"
)

// MockCertificateStore records saved and removed certificates in memory.
type MockCertificateStore struct {
	SaveFn func(ctx context.Context, filename string, r io.Reader) (string, error)

	// Ref is returned by the default Save.
	Ref string

	mu      sync.Mutex
	Saved   map[string][]byte
	Removed []string
}

// NewMockCertificateStore returns a store whose Save answers with ref.
func NewMockCertificateStore(ref string) *MockCertificateStore {
	return &MockCertificateStore{Ref: ref, Saved: make(map[string][]byte)}
}

// Save implements the registration certificate store interface
func (m *MockCertificateStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, filename, r)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saved[m.Ref] = data
	return m.Ref, nil
}

// Remove implements the registration certificate store interface
func (m *MockCertificateStore) Remove(ctx context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Removed = append(m.Removed, ref)
	delete(m.Saved, ref)
	return nil
}
