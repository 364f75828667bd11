package tokens

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Samrudhp/renova-backend/internal/credits"
	"github.com/Samrudhp/renova-backend/internal/events"
	"github.com/Samrudhp/renova-backend/internal/materials"
	"github.com/Samrudhp/renova-backend/pkg/workflows"
)

var (
	// ErrTokenExpired indicates a redemption attempt past the 24h window.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenUserMismatch indicates a redemption attempt by a user the token
	// is not bound to. Tokens are not transferable.
	ErrTokenUserMismatch = errors.New("token does not belong to this user")
	// ErrTokenSpaceExhausted indicates sustained code collisions. With a 36^6
	// code space this is a defensive invariant, not an expected path.
	ErrTokenSpaceExhausted = errors.New("token space exhausted")
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// Service implements the redemption token lifecycle: mint after physical
// weighing, redeem exactly once.
type Service struct {
	repo      Repository
	engine    *credits.Engine
	states    *workflows.StateMachine
	publisher events.Publisher
	expiry    time.Duration
	retries   int
	now       func() time.Time
	logger    *zap.Logger
}

// NewService creates a new tokens service
func NewService(repo Repository, engine *credits.Engine, publisher events.Publisher, expiry time.Duration, retries int, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		engine:    engine,
		states:    workflows.NewStateMachine(),
		publisher: publisher,
		expiry:    expiry,
		retries:   retries,
		now:       time.Now,
		logger:    logger,
	}
}

// Mint creates a redemption token after a recycler has weighed the drop-off.
// Credits come from the same formula as the scan-time estimate, applied to
// the measured weight.
func (s *Service) Mint(ctx context.Context, req *FinalizeRequest) (*RedemptionToken, error) {
	material, err := materials.Parse(req.Material)
	if err != nil {
		return nil, err
	}

	quote, err := s.engine.Quote(material, req.WeightKg, req.CleanlinessScore)
	if err != nil {
		return nil, err
	}

	now := s.now()
	code, err := s.uniqueCode(ctx, now)
	if err != nil {
		return nil, err
	}

	token := &RedemptionToken{
		ID:               uuid.New().String(),
		Code:             code,
		UserID:           req.UserID,
		Material:         quote.Material,
		WeightKg:         quote.WeightKg,
		CleanlinessScore: quote.CleanlinessScore,
		Credits:          quote.Credits,
		CreatedAt:        now,
		ExpiresAt:        now.Add(s.expiry),
	}

	if err := s.repo.Create(ctx, token); err != nil {
		return nil, err
	}

	s.logger.Info("Minted redemption token",
		zap.String("code", token.Code),
		zap.String("user_id", token.UserID),
		zap.String("material", string(token.Material)),
		zap.Float64("weight_kg", token.WeightKg),
		zap.Int("credits", token.Credits))

	return token, nil
}

// Redeem applies a token to the bound user's balance and impact totals,
// exactly once. The repository's conditional update guarantees a lost race
// surfaces as ErrTokenAlreadyRedeemed with no partial state.
func (s *Service) Redeem(ctx context.Context, req *RedeemRequest) (*RedeemResponse, error) {
	token, err := s.repo.GetByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	if token.UserID != req.UserID {
		return nil, ErrTokenUserMismatch
	}

	now := s.now()
	status := token.Status(now)
	if !s.states.CanTransition(status, StatusRedeemed) {
		switch status {
		case StatusRedeemed:
			return nil, ErrTokenAlreadyRedeemed
		case StatusExpired:
			return nil, ErrTokenExpired
		default:
			return nil, fmt.Errorf("token in unexpected status %s", status)
		}
	}

	impact, err := s.engine.ComputeImpact(token.Material, token.WeightKg)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Redeem(ctx, token.Code, now, impact); err != nil {
		return nil, err
	}

	s.logger.Info("Redeemed token",
		zap.String("code", token.Code),
		zap.String("user_id", token.UserID),
		zap.Int("credits", token.Credits))

	if err := s.publisher.PublishRedemption(ctx, events.RedemptionEvent{
		Code:             token.Code,
		UserID:           token.UserID,
		Material:         string(token.Material),
		WeightKg:         token.WeightKg,
		Credits:          token.Credits,
		CO2SavedKg:       impact.CO2SavedKg,
		WaterSavedLiters: impact.WaterSavedLiters,
		LandfillSavedKg:  impact.LandfillSavedKg,
		RedeemedAt:       now,
	}); err != nil {
		// Delivery is best-effort; the redemption itself already committed.
		s.logger.Warn("Failed to publish redemption event", zap.Error(err))
	}

	return &RedeemResponse{CreditsAwarded: token.Credits}, nil
}

// SweepExpired stamps tokens past their window; run periodically by the cron
// worker in main.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	count, err := s.repo.MarkExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("Marked expired tokens", zap.Int64("count", count))
	}
	return count, nil
}

// uniqueCode draws random codes until one is free among live tokens.
func (s *Service) uniqueCode(ctx context.Context, now time.Time) (string, error) {
	for attempt := 0; attempt < s.retries; attempt++ {
		code, err := randomCode()
		if err != nil {
			return "", err
		}

		inUse, err := s.repo.CodeInUse(ctx, code, now)
		if err != nil {
			return "", err
		}
		if !inUse {
			return code, nil
		}
	}

	s.logger.Error("Redemption code generation exhausted retries",
		zap.Int("retries", s.retries))
	return "", ErrTokenSpaceExhausted
}

func randomCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf), nil
}
