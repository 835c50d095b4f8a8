package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/gorilla/handlers"
	apiMiddleware "github.com/phrazzld/guidematch/internal/api/middleware"
	"github.com/phrazzld/guidematch/internal/api/shared"
	"github.com/phrazzld/guidematch/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// setupRouter builds the router with global middleware and all routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware(app.logger))
	r.Use(metrics.Middleware)
	if origins := app.corsOrigins(); len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	formLimit := app.formRateLimit()

	r.Group(func(r chi.Router) {
		r.Use(app.sessionMW.Load)

		r.Get("/", app.handler.Index)
		r.With(formLimit).Post("/login", app.handler.Login)
		r.Get("/register", app.handler.RegisterForm)
		r.With(formLimit).Post("/register", app.handler.Register)
		r.Get("/logout", app.handler.Logout)
		r.With(apiMiddleware.RequireSession).Get("/profile", app.handler.Profile)
		r.With(apiMiddleware.RequireSessionJSON).Get("/api/profile", app.handler.APIProfile)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response")
		}
	})
	r.Handle("/metrics", promhttp.Handler())

	return handlers.CompressHandler(r)
}

// formRateLimit limits login and register posts per client IP. A zero
// request budget disables limiting.
func (app *application) formRateLimit() func(http.Handler) http.Handler {
	cfg := app.config.HTTP
	if cfg.RateLimitRequests == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		cfg.RateLimitRequests,
		time.Duration(cfg.RateLimitWindowSeconds)*time.Second,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests,
				"Too many attempts. Please wait and try again.", nil)
		}),
	)
}

// corsOrigins falls back to the configured base URL when no origins are
// listed. With neither set, only same-origin requests are served.
func (app *application) corsOrigins() []string {
	if len(app.config.HTTP.CORSAllowedOrigins) > 0 {
		return app.config.HTTP.CORSAllowedOrigins
	}
	if app.config.Server.BaseURL != "" {
		return []string{app.config.Server.BaseURL}
	}
	return nil
}
