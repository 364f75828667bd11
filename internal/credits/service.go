package credits

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Samrudhp/renova-backend/internal/events"
	"github.com/Samrudhp/renova-backend/internal/materials"
)

// Service provides the scan-estimate and user-stats operations on top of the
// credit/impact engine.
type Service struct {
	engine    *Engine
	repo      Repository
	publisher events.Publisher
	now       func() time.Time
	logger    *zap.Logger
}

// NewService creates a new credits service
func NewService(engine *Engine, repo Repository, publisher events.Publisher, logger *zap.Logger) *Service {
	return &Service{
		engine:    engine,
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

// Engine exposes the underlying credit/impact engine for collaborating
// services that must share the exact credit formula.
func (s *Service) Engine() *Engine {
	return s.engine
}

// Estimate computes the pre-pickup credit quote and impact shown to the user
// after classification. When the request carries a user ID the estimate is
// also recorded as an additive scan event on the user's running totals.
func (s *Service) Estimate(ctx context.Context, req *EstimateRequest) (*EstimateResponse, error) {
	material, err := materials.Parse(req.Material)
	if err != nil {
		return nil, err
	}

	quote, err := s.engine.Quote(material, req.EstimatedWeightKg, req.CleanlinessScore)
	if err != nil {
		return nil, err
	}

	impact, err := s.engine.ComputeImpact(material, req.EstimatedWeightKg)
	if err != nil {
		return nil, err
	}

	if req.UserID != "" {
		now := s.now()
		if err := s.repo.ApplyScanEvent(ctx, req.UserID, impact, now); err != nil {
			return nil, fmt.Errorf("failed to record scan event: %w", err)
		}
		s.logger.Info("Scan estimate recorded",
			zap.String("user_id", req.UserID),
			zap.String("material", string(material)),
			zap.Float64("weight_kg", req.EstimatedWeightKg),
			zap.Int("credits", quote.Credits))

		if err := s.publisher.PublishScan(ctx, events.ScanEvent{
			UserID:            req.UserID,
			Material:          string(material),
			EstimatedWeightKg: req.EstimatedWeightKg,
			Credits:           quote.Credits,
			CO2SavedKg:        impact.CO2SavedKg,
			WaterSavedLiters:  impact.WaterSavedLiters,
			LandfillSavedKg:   impact.LandfillSavedKg,
			ScannedAt:         now,
		}); err != nil {
			s.logger.Warn("Failed to publish scan event",
				zap.String("user_id", req.UserID),
				zap.Error(err))
		}
	}

	return &EstimateResponse{
		Credits: quote.Credits,
		Impact:  impact,
	}, nil
}

// GetUserStats returns a user's lifetime balance and impact totals.
func (s *Service) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	stats, err := s.repo.GetUserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
