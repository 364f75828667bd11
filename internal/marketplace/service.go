package marketplace

import (
	"context"
	"fmt"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/Samrudhp/renova-backend/internal/materials"
)

// Service ranks the recycler directory for a user query.
type Service struct {
	engine *Engine
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new marketplace service
func NewService(engine *Engine, repo Repository, logger *zap.Logger) *Service {
	return &Service{
		engine: engine,
		repo:   repo,
		logger: logger,
	}
}

// NearbyRecyclers loads the directory and returns the ranked candidates for
// the given location and material.
func (s *Service) NearbyRecyclers(ctx context.Context, userLocation orb.Point, material materials.MaterialType, maxDistanceKm float64) ([]RankedRecycler, error) {
	candidates, err := s.repo.ListRecyclers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recycler directory: %w", err)
	}

	ranked, err := s.engine.Rank(userLocation, material, candidates, maxDistanceKm)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Ranked recyclers",
		zap.String("material", string(material)),
		zap.Float64("max_distance_km", maxDistanceKm),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(ranked)))

	return ranked, nil
}
