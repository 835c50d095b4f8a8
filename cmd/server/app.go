package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/phrazzld/guidematch/internal/api"
	apiMiddleware "github.com/phrazzld/guidematch/internal/api/middleware"
	"github.com/phrazzld/guidematch/internal/api/shared"
	"github.com/phrazzld/guidematch/internal/config"
	"github.com/phrazzld/guidematch/internal/platform/badgerstore"
	"github.com/phrazzld/guidematch/internal/platform/filestore"
	"github.com/phrazzld/guidematch/internal/platform/postgres"
	"github.com/phrazzld/guidematch/internal/service/auth"
	"github.com/phrazzld/guidematch/internal/service/matching"
	"github.com/phrazzld/guidematch/internal/service/registration"
	"github.com/phrazzld/guidematch/internal/store"
)

// application holds the shared dependencies so they can be closed together
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	badger *badger.DB

	accounts store.AccountStore
	sessions store.SessionStore

	handler   *api.Handler
	sessionMW *apiMiddleware.SessionMiddleware
	janitor   *auth.SessionJanitor

	stopJanitor context.CancelFunc
	janitorDone sync.WaitGroup
}

// newApplication wires stores, services and handlers. db must already be
// migrated.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		accounts: postgres.NewPostgresAccountStore(db, logger),
	}

	var err error
	app.sessions, app.badger, err = openSessionStore(cfg.Session, db, logger)
	if err != nil {
		return nil, err
	}

	// The caller owns db; only the session database is ours to close.
	fail := func(err error) (*application, error) {
		if app.badger != nil {
			_ = app.badger.Close()
		}
		return nil, err
	}

	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize password hasher: %w", err))
	}

	tokens, err := auth.NewTokenService(cfg.Auth.SessionSecret)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize token service: %w", err))
	}

	authService, err := auth.NewService(
		app.accounts,
		app.sessions,
		hasher,
		tokens,
		time.Duration(cfg.Auth.SessionTTLMinutes)*time.Minute,
		logger,
	)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize auth service: %w", err))
	}

	certificates, err := filestore.NewCertificateStore(filestore.Config{
		Dir:               cfg.Uploads.Dir,
		MaxBytes:          cfg.Uploads.MaxBytes,
		AllowedExtensions: cfg.Uploads.AllowedExtensions,
	}, logger)
	if err != nil {
		return fail(fmt.Errorf("failed to initialize certificate store: %w", err))
	}

	views, err := api.NewViews(cfg.Uploads.AllowedExtensions)
	if err != nil {
		return fail(fmt.Errorf("failed to load page templates: %w", err))
	}

	cookie := shared.SessionCookie{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}
	app.handler = api.NewHandler(
		authService,
		registration.NewService(app.accounts, certificates, hasher, logger),
		matching.NewService(app.accounts, logger),
		app.accounts,
		views,
		api.HandlerConfig{Cookie: cookie, MaxUploadBytes: cfg.Uploads.MaxBytes},
		logger,
	)
	app.sessionMW = apiMiddleware.NewSessionMiddleware(authService, cookie)
	app.janitor = auth.NewSessionJanitor(
		app.sessions,
		time.Duration(cfg.Session.CleanupIntervalMinutes)*time.Minute,
		logger,
	)

	logger.Info("application initialized", slog.String("session_backend", cfg.Session.Backend))
	return app, nil
}

// openSessionStore returns the configured session backend. The Badger
// database is returned so it can be closed on shutdown; it is nil for the
// Postgres backend.
func openSessionStore(
	cfg config.SessionConfig,
	db store.DBTX,
	logger *slog.Logger,
) (store.SessionStore, *badger.DB, error) {
	switch cfg.Backend {
	case "badger":
		bdb, err := badgerstore.Open(cfg.BadgerDir, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open session database: %w", err)
		}
		return badgerstore.NewSessionStore(bdb, logger), bdb, nil
	case "postgres":
		return postgres.NewPostgresSessionStore(db, logger), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// Run starts the session janitor and serves HTTP until shutdown.
func (app *application) Run(ctx context.Context) error {
	app.startJanitor(ctx)

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// startJanitor purges expired sessions once and then on every interval.
func (app *application) startJanitor(ctx context.Context) {
	ctx, app.stopJanitor = context.WithCancel(ctx)
	app.janitorDone.Add(1)
	go func() {
		defer app.janitorDone.Done()
		_, _ = app.janitor.Sweep(ctx)
		app.janitor.Run(ctx)
	}()
}

// cleanup releases application resources in reverse order of creation.
func (app *application) cleanup() {
	if app.stopJanitor != nil {
		app.stopJanitor()
		app.janitorDone.Wait()
	}

	if app.badger != nil {
		if err := app.badger.Close(); err != nil {
			app.logger.Error("error closing session database", slog.String("error", err.Error()))
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")
}
