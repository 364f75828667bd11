package credits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrUserNotFound indicates an unknown user ID.
var ErrUserNotFound = errors.New("user not found")

// Repository defines data access for user impact totals.
type Repository interface {
	GetUserStats(ctx context.Context, userID string) (*UserStats, error)
	ApplyScanEvent(ctx context.Context, userID string, impact EnvironmentalImpact, now time.Time) error
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetUserStats(ctx context.Context, userID string) (*UserStats, error) {
	query := `
		SELECT user_id, tokens_balance, tokens_earned_lifetime,
			   total_co2_saved_kg, total_water_saved_liters, total_landfill_saved_kg,
			   total_scans, updated_at
		FROM user_stats
		WHERE user_id = $1
	`

	var stats UserStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}

	return &stats, nil
}

// ApplyScanEvent adds a scan-time impact contribution to the user's running
// totals. The increment happens in SQL so concurrent scans never lose
// updates to a read-then-write race.
func (r *PostgresRepository) ApplyScanEvent(ctx context.Context, userID string, impact EnvironmentalImpact, now time.Time) error {
	query := `
		INSERT INTO user_stats (
			user_id, tokens_balance, tokens_earned_lifetime,
			total_co2_saved_kg, total_water_saved_liters, total_landfill_saved_kg,
			total_scans, updated_at
		) VALUES ($1, 0, 0, $2, $3, $4, 1, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			total_co2_saved_kg = user_stats.total_co2_saved_kg + EXCLUDED.total_co2_saved_kg,
			total_water_saved_liters = user_stats.total_water_saved_liters + EXCLUDED.total_water_saved_liters,
			total_landfill_saved_kg = user_stats.total_landfill_saved_kg + EXCLUDED.total_landfill_saved_kg,
			total_scans = user_stats.total_scans + 1,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, userID,
		impact.CO2SavedKg, impact.WaterSavedLiters, impact.LandfillSavedKg, now)
	if err != nil {
		return fmt.Errorf("failed to apply scan event: %w", err)
	}

	return nil
}
