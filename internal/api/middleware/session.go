package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/phrazzld/guidematch/internal/api/shared"
	"github.com/phrazzld/guidematch/internal/domain"
	"github.com/phrazzld/guidematch/internal/platform/logger"
	"github.com/phrazzld/guidematch/internal/redact"
	"github.com/phrazzld/guidematch/internal/service/auth"
)

// SessionResolver turns a session token into the identity it was issued for.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.SessionIdentity, error)
}

// SessionMiddleware reads the session cookie and attaches the identity of
// logged-in requests to their context.
type SessionMiddleware struct {
	resolver SessionResolver
	cookie   shared.SessionCookie
}

// NewSessionMiddleware creates a SessionMiddleware.
func NewSessionMiddleware(resolver SessionResolver, cookie shared.SessionCookie) *SessionMiddleware {
	return &SessionMiddleware{
		resolver: resolver,
		cookie:   cookie,
	}
}

// Load attaches the session identity when the cookie resolves. Requests with
// no usable session pass through anonymously; a stale cookie is cleared.
func (m *SessionMiddleware) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.cookie.Token(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity, err := m.resolver.Resolve(r.Context(), token)
		if err != nil {
			log := logger.FromContext(r.Context())
			if errors.Is(err, auth.ErrNoSession) {
				log.Debug("ignoring unusable session cookie", slog.String("reason", err.Error()))
			} else {
				log.Error("failed to resolve session", slog.String("error", redact.Error(err)))
			}
			m.cookie.Clear(w)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithIdentity(r.Context(), *identity)))
	})
}

// RequireSession redirects anonymous requests to the login page.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.IdentityFromContext(r.Context()); !ok {
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSessionJSON rejects anonymous API requests with a 401 JSON error.
func RequireSessionJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.IdentityFromContext(r.Context()); !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
