package main

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/phrazzld/guidematch/internal/api"
	apiMiddleware "github.com/phrazzld/guidematch/internal/api/middleware"
	"github.com/phrazzld/guidematch/internal/api/shared"
	"github.com/phrazzld/guidematch/internal/config"
	"github.com/phrazzld/guidematch/internal/mocks"
	"github.com/phrazzld/guidematch/internal/service/auth"
	"github.com/phrazzld/guidematch/internal/service/matching"
	"github.com/phrazzld/guidematch/internal/service/registration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApp wires the router's dependencies with in-memory stores.
func newTestApp(t *testing.T, httpCfg config.HTTPConfig) *application {
	t.Helper()

	accounts := mocks.NewMockAccountStore()
	sessions := mocks.NewMockSessionStore()
	passwords := &mocks.MockPasswordVerifier{}

	tokens, err := auth.NewTokenService(strings.Repeat("x", auth.MinSecretLength))
	require.NoError(t, err)
	authService, err := auth.NewService(accounts, sessions, passwords, tokens, time.Hour, nil)
	require.NoError(t, err)
	views, err := api.NewViews([]string{".pdf"})
	require.NoError(t, err)

	cookie := shared.SessionCookie{Name: "guidematch_session"}
	return &application{
		config:   &config.Config{HTTP: httpCfg},
		logger:   slog.Default(),
		accounts: accounts,
		sessions: sessions,
		handler: api.NewHandler(
			authService,
			registration.NewService(accounts, mocks.NewMockCertificateStore("certificates/x.pdf"), passwords, nil),
			matching.NewService(accounts, nil),
			accounts,
			views,
			api.HandlerConfig{Cookie: cookie, MaxUploadBytes: 1 << 20},
			nil,
		),
		sessionMW: apiMiddleware.NewSessionMiddleware(authService, cookie),
	}
}

func TestRouterRoutes(t *testing.T) {
	t.Parallel()
	router := newTestApp(t, config.HTTPConfig{RateLimitWindowSeconds: 60}).setupRouter()

	tests := []struct {
		name         string
		method       string
		path         string
		wantStatus   int
		wantLocation string
		wantBody     string
	}{
		{name: "health", method: http.MethodGet, path: "/health", wantStatus: http.StatusOK, wantBody: "OK"},
		{name: "login page", method: http.MethodGet, path: "/", wantStatus: http.StatusOK, wantBody: "Log in"},
		{name: "register page", method: http.MethodGet, path: "/register", wantStatus: http.StatusOK, wantBody: "Register"},
		{name: "profile without session", method: http.MethodGet, path: "/profile", wantStatus: http.StatusSeeOther, wantLocation: "/"},
		{name: "api profile without session", method: http.MethodGet, path: "/api/profile", wantStatus: http.StatusUnauthorized, wantBody: "Login required"},
		{name: "logout without session", method: http.MethodGet, path: "/logout", wantStatus: http.StatusSeeOther, wantLocation: "/"},
		{name: "unknown route", method: http.MethodGet, path: "/cards", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodDelete, path: "/profile", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantLocation != "" {
				assert.Equal(t, tc.wantLocation, rec.Header().Get("Location"))
			}
			if tc.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tc.wantBody)
			}
		})
	}
}

func TestRouterRateLimitsLogin(t *testing.T) {
	t.Parallel()
	router := newTestApp(t, config.HTTPConfig{RateLimitRequests: 2, RateLimitWindowSeconds: 60}).setupRouter()

	form := url.Values{"user_type": {"Tourist"}, "email": {"ana@example.com"}, "password": {"wrong"}}
	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, post().Code)
	assert.Equal(t, http.StatusUnauthorized, post().Code)

	limited := post()
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Contains(t, limited.Body.String(), "Too many attempts")

	// Page views are not limited.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterCompressesPages(t *testing.T) {
	t.Parallel()
	router := newTestApp(t, config.HTTPConfig{RateLimitWindowSeconds: 60}).setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/register", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
}

func TestRouterExposesMetrics(t *testing.T) {
	t.Parallel()
	router := newTestApp(t, config.HTTPConfig{RateLimitWindowSeconds: 60}).setupRouter()

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `guidematch_http_requests_total{method="GET",route="/health",status="200"}`)
}

func TestRouterCORS(t *testing.T) {
	t.Parallel()
	router := newTestApp(t, config.HTTPConfig{
		RateLimitWindowSeconds: 60,
		CORSAllowedOrigins:     []string{"https://guides.example.com"},
	}).setupRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/profile", nil)
	req.Header.Set("Origin", "https://guides.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://guides.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORSOrigins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  config.Config
		want []string
	}{
		{name: "none", want: nil},
		{
			name: "base url fallback",
			cfg:  config.Config{Server: config.ServerConfig{BaseURL: "https://guidematch.example"}},
			want: []string{"https://guidematch.example"},
		},
		{
			name: "explicit list wins",
			cfg: config.Config{
				Server: config.ServerConfig{BaseURL: "https://guidematch.example"},
				HTTP:   config.HTTPConfig{CORSAllowedOrigins: []string{"https://a.example"}},
			},
			want: []string{"https://a.example"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			app := &application{config: &tc.cfg}
			assert.Equal(t, tc.want, app.corsOrigins())
		})
	}
}
