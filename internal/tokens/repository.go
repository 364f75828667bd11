package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Samrudhp/renova-backend/internal/credits"
)

var (
	// ErrTokenNotFound indicates an unknown redemption code.
	ErrTokenNotFound = errors.New("token not found")
	// ErrTokenAlreadyRedeemed indicates a second redemption attempt.
	ErrTokenAlreadyRedeemed = errors.New("token already redeemed")
)

// Repository defines data access for redemption tokens.
type Repository interface {
	Create(ctx context.Context, token *RedemptionToken) error
	GetByCode(ctx context.Context, code string) (*RedemptionToken, error)

	// CodeInUse reports whether a code is currently held by a live token:
	// one that is neither redeemed nor expired at the given instant.
	CodeInUse(ctx context.Context, code string, now time.Time) (bool, error)

	// Redeem marks the token redeemed and applies credits and impact to the
	// user's totals in a single transaction. The redeemed flag is flipped with
	// a conditional update, so of two concurrent calls exactly one succeeds
	// and the loser gets ErrTokenAlreadyRedeemed with no side effects.
	Redeem(ctx context.Context, code string, now time.Time, impact credits.EnvironmentalImpact) error

	// MarkExpired flips unredeemed tokens past their expiry to a terminal
	// audit state and returns how many rows were affected.
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, token *RedemptionToken) error {
	query := `
		INSERT INTO redemption_tokens (
			id, code, user_id, material, weight_kg, cleanliness_score,
			credits, created_at, expires_at, redeemed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false)
	`

	_, err := r.db.ExecContext(ctx, query,
		token.ID, token.Code, token.UserID, token.Material, token.WeightKg,
		token.CleanlinessScore, token.Credits, token.CreatedAt, token.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create redemption token: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*RedemptionToken, error) {
	query := `
		SELECT id, code, user_id, material, weight_kg, cleanliness_score,
			   credits, created_at, expires_at, redeemed, redeemed_at
		FROM redemption_tokens
		WHERE code = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var token RedemptionToken
	if err := r.db.GetContext(ctx, &token, query, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	return &token, nil
}

func (r *PostgresRepository) CodeInUse(ctx context.Context, code string, now time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM redemption_tokens
			WHERE code = $1 AND redeemed = false AND expires_at > $2
		)
	`

	var inUse bool
	if err := r.db.GetContext(ctx, &inUse, query, code, now); err != nil {
		return false, fmt.Errorf("failed to check code uniqueness: %w", err)
	}

	return inUse, nil
}

func (r *PostgresRepository) Redeem(ctx context.Context, code string, now time.Time, impact credits.EnvironmentalImpact) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin redemption: %w", err)
	}
	defer tx.Rollback()

	// Conditional update is the mutual exclusion point for concurrent
	// redemptions of the same code. The expiry guard keeps a stale row that
	// recycled the same code from being flipped.
	redeemQuery := `
		UPDATE redemption_tokens
		SET redeemed = true, redeemed_at = $2
		WHERE code = $1 AND redeemed = false AND expires_at > $2
		RETURNING user_id, credits
	`

	var (
		userID       string
		tokenCredits int
	)
	if err := tx.QueryRowContext(ctx, redeemQuery, code, now).Scan(&userID, &tokenCredits); err != nil {
		if err == sql.ErrNoRows {
			return ErrTokenAlreadyRedeemed
		}
		return fmt.Errorf("failed to redeem token: %w", err)
	}

	statsQuery := `
		INSERT INTO user_stats (
			user_id, tokens_balance, tokens_earned_lifetime,
			total_co2_saved_kg, total_water_saved_liters, total_landfill_saved_kg,
			total_scans, updated_at
		) VALUES ($1, $2, $2, $3, $4, $5, 1, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			tokens_balance = user_stats.tokens_balance + EXCLUDED.tokens_balance,
			tokens_earned_lifetime = user_stats.tokens_earned_lifetime + EXCLUDED.tokens_earned_lifetime,
			total_co2_saved_kg = user_stats.total_co2_saved_kg + EXCLUDED.total_co2_saved_kg,
			total_water_saved_liters = user_stats.total_water_saved_liters + EXCLUDED.total_water_saved_liters,
			total_landfill_saved_kg = user_stats.total_landfill_saved_kg + EXCLUDED.total_landfill_saved_kg,
			total_scans = user_stats.total_scans + 1,
			updated_at = EXCLUDED.updated_at
	`

	_, err = tx.ExecContext(ctx, statsQuery, userID, tokenCredits,
		impact.CO2SavedKg, impact.WaterSavedLiters, impact.LandfillSavedKg, now)
	if err != nil {
		return fmt.Errorf("failed to apply redemption to user totals: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit redemption: %w", err)
	}

	return nil
}

// MarkExpired stamps the stored expired flag for audit queries. A token past
// its expiry is already unredeemable whether or not the sweep has run; the
// flag only keeps reporting cheap.
func (r *PostgresRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE redemption_tokens
		SET expired = true
		WHERE redeemed = false AND expired = false AND expires_at <= $1
	`

	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to mark expired tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count expired tokens: %w", err)
	}
	return rows, nil
}
