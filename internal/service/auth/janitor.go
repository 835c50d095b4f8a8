package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/phrazzld/guidematch/internal/store"
)

// SessionJanitor periodically purges expired sessions.
type SessionJanitor struct {
	sessions store.SessionStore
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

// NewSessionJanitor creates a janitor that sweeps every interval.
func NewSessionJanitor(sessions store.SessionStore, interval time.Duration, logger *slog.Logger) *SessionJanitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionJanitor{
		sessions: sessions,
		interval: interval,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "session_janitor")),
	}
}

// Sweep deletes expired sessions once.
func (j *SessionJanitor) Sweep(ctx context.Context) (int, error) {
	n, err := j.sessions.DeleteExpired(ctx, j.now())
	if err != nil {
		j.logger.Error("failed to purge expired sessions", slog.String("error", err.Error()))
		return 0, err
	}
	if n > 0 {
		j.logger.Info("purged expired sessions", slog.Int("count", n))
	}
	return n, nil
}

// Run sweeps until ctx is cancelled.
func (j *SessionJanitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_, _ = j.Sweep(ctx)
		}
	}
}
