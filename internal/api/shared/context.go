package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/guidematch/internal/domain"
)

// ContextKey is the type of request context keys owned by this package.
type ContextKey string

const (
	// TraceIDKey is the key for the trace ID in the request context.
	TraceIDKey ContextKey = "traceID"

	// IdentityKey is the key for the logged-in account's identity.
	IdentityKey ContextKey = "identity"

	// TraceIDLength is the number of random bytes in a trace ID (32 hex characters).
	TraceIDLength = 16
)

// SetTraceID adds a fresh trace ID to the context.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID from the context, or "" if there is none.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithIdentity stores the session identity of the current request.
func WithIdentity(ctx context.Context, identity domain.SessionIdentity) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// IdentityFromContext returns the session identity attached by the session
// middleware. It reports false when the request is anonymous.
func IdentityFromContext(ctx context.Context) (domain.SessionIdentity, bool) {
	identity, ok := ctx.Value(IdentityKey).(domain.SessionIdentity)
	if !ok || !identity.Role.Valid() || identity.AccountID <= 0 {
		return domain.SessionIdentity{}, false
	}
	return identity, true
}

// generateTraceID returns 16 random bytes as hex. If the system random
// source fails it falls back to a random UUID with the dashes removed, which
// has the same length.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if _, err := rand.Read(b); err != nil {
		slog.Error("failed to generate random trace ID", slog.String("error", err.Error()))
		id := uuid.New()
		return hex.EncodeToString(id[:])
	}
	return hex.EncodeToString(b)
}
