package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("some error"),
			expected: false,
		},
		{
			name:     "ErrNotFound",
			err:      ErrNotFound,
			expected: true,
		},
		{
			name:     "ErrAccountNotFound",
			err:      ErrAccountNotFound,
			expected: true,
		},
		{
			name:     "wrapped ErrAccountNotFound",
			err:      fmt.Errorf("failed to find tourist: %w", ErrAccountNotFound),
			expected: true,
		},
		{
			name:     "ErrSessionNotFound",
			err:      ErrSessionNotFound,
			expected: true,
		},
		{
			name:     "ErrSessionExpired is not a not-found error",
			err:      ErrSessionExpired,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.expected {
				t.Errorf("IsNotFoundError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "ErrEmailExists",
			err:      ErrEmailExists,
			expected: true,
		},
		{
			name:     "wrapped ErrEmailExists",
			err:      fmt.Errorf("insert guide: %w", ErrEmailExists),
			expected: true,
		},
		{
			name:     "not found",
			err:      ErrAccountNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDuplicateError(tt.err); got != tt.expected {
				t.Errorf("IsDuplicateError() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestStoreError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreError("guide", "find", "query failed", cause)

	assert.Equal(t, "find operation on guide failed: query failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("session", "delete", "nothing to delete", nil)
	assert.Equal(t, "delete operation on session failed: nothing to delete", bare.Error())
	assert.Nil(t, errors.Unwrap(bare))
}
