package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/guidematch/internal/config"
)

// loadAppConfig loads configuration from the environment, .env and config.yaml.
func loadAppConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// logConfig records the settings an operator most often needs to check.
// Secrets are reported only by presence.
func logConfig(cfg *config.Config, logger *slog.Logger) {
	logger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("base_url", cfg.Server.BaseURL),
		slog.String("session_backend", cfg.Session.Backend),
		slog.String("upload_dir", cfg.Uploads.Dir))
	logger.Debug("auth configuration",
		slog.Bool("session_secret_present", cfg.Auth.SessionSecret != ""),
		slog.Int("session_ttl_minutes", cfg.Auth.SessionTTLMinutes),
		slog.Bool("cookie_secure", cfg.Auth.CookieSecure))
}
