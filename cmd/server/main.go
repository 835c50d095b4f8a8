// Package main runs the guidematch web server: tourists and tour guides
// register, log in and see the guides that match a tourist's destination
// and languages.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/phrazzld/guidematch/internal/platform/postgres"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command and exit ("+strings.Join(postgres.MigrationCommands, "|")+")")
	flag.Parse()

	if err := run(context.Background(), *migrateCmd); err != nil {
		slog.Error("guidematch failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// run loads configuration, then either executes a migration command or
// serves HTTP until SIGINT/SIGTERM.
func run(ctx context.Context, migrateCmd string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	logger, err := setupAppLogger(cfg)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() { _ = db.Close() }()
		return handleMigrations(ctx, db, migrateCmd, logger)
	}

	// A fresh database is initialised on first run.
	if err := handleMigrations(ctx, db, "up", logger); err != nil {
		_ = db.Close()
		return err
	}

	app, err := newApplication(cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}
