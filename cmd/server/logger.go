package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/guidematch/internal/config"
	"github.com/phrazzld/guidematch/internal/platform/logger"
)

// setupAppLogger configures the default JSON logger from config.
func setupAppLogger(cfg *config.Config) (*slog.Logger, error) {
	l, err := logger.Setup(logger.LoggerConfig{Level: cfg.Server.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}
	logConfig(cfg, l)
	return l, nil
}
