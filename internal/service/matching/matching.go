// Package matching finds guides for a tourist: same place, at least one
// shared language.
package matching

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/guidematch/internal/domain"
	"github.com/phrazzld/guidematch/internal/platform/logger"
	"github.com/phrazzld/guidematch/internal/store"
)

// FindMatches returns the candidates located at the tourist's destination
// that share at least one language with the tourist, in candidate order.
// A tourist without a destination matches nobody.
func FindMatches(tourist *domain.Account, candidates []*domain.Account) []*domain.Account {
	matches := []*domain.Account{}

	destination, ok := tourist.Destination()
	if !ok {
		return matches
	}

	for _, guide := range candidates {
		location, ok := guide.Location()
		if !ok || location != destination {
			continue
		}
		if tourist.Languages.Intersects(guide.Languages) {
			matches = append(matches, guide)
		}
	}
	return matches
}

// Service looks up candidate guides and filters them with FindMatches.
type Service struct {
	accounts store.AccountStore
	logger   *slog.Logger
}

// NewService creates a matching service.
func NewService(accounts store.AccountStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		accounts: accounts,
		logger:   logger.With(slog.String("component", "matching_service")),
	}
}

// MatchesFor returns the guides matching tourist. Guides and tourists
// without a destination get an empty result without a store lookup.
func (s *Service) MatchesFor(ctx context.Context, tourist *domain.Account) ([]*domain.Account, error) {
	destination, ok := tourist.Destination()
	if !ok {
		return []*domain.Account{}, nil
	}

	candidates, err := s.accounts.FindGuidesByLocation(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("failed to load guides at destination: %w", err)
	}

	matches := FindMatches(tourist, candidates)
	logger.FromContextOrDefault(ctx, s.logger).Debug("matched guides",
		slog.Int64("tourist_id", tourist.ID),
		slog.Int("candidates", len(candidates)),
		slog.Int("matches", len(matches)))
	return matches, nil
}
