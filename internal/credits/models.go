package credits

import (
	"time"

	"github.com/Samrudhp/renova-backend/internal/materials"
)

// CreditQuote is the ephemeral result of a credit computation. It is not
// persisted until a redemption token is minted from it.
type CreditQuote struct {
	Material         materials.MaterialType `json:"material"`
	WeightKg         float64                `json:"weight_kg"`
	CleanlinessScore float64                `json:"cleanliness_score"`
	Credits          int                    `json:"credits"`
}

// EnvironmentalImpact holds the environmental savings attributed to a scan or
// a redeemed drop-off.
type EnvironmentalImpact struct {
	CO2SavedKg       float64 `json:"co2_saved_kg"`
	WaterSavedLiters float64 `json:"water_saved_liters"`
	LandfillSavedKg  float64 `json:"landfill_saved_kg"`
}

// UserStats is the impact-relevant subset of a user account. Every field is
// monotonically non-decreasing; nothing in this module decrements a balance.
type UserStats struct {
	UserID                string    `json:"user_id" db:"user_id"`
	TokensBalance         int       `json:"tokens_balance" db:"tokens_balance"`
	TokensEarnedLifetime  int       `json:"tokens_earned_lifetime" db:"tokens_earned_lifetime"`
	TotalCO2SavedKg       float64   `json:"total_co2_saved_kg" db:"total_co2_saved_kg"`
	TotalWaterSavedLiters float64   `json:"total_water_saved_liters" db:"total_water_saved_liters"`
	TotalLandfillSavedKg  float64   `json:"total_landfill_saved_kg" db:"total_landfill_saved_kg"`
	TotalScans            int       `json:"total_scans" db:"total_scans"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

// EstimateRequest is the scan-estimate payload. UserID is optional: without
// it the estimate is advisory only and nothing is persisted.
type EstimateRequest struct {
	UserID            string  `json:"user_id"`
	Material          string  `json:"material" binding:"required"`
	EstimatedWeightKg float64 `json:"estimated_weight_kg"`
	CleanlinessScore  float64 `json:"cleanliness_score"`
}

// EstimateResponse is returned to the client alongside the recycler list.
type EstimateResponse struct {
	Credits int                 `json:"credits"`
	Impact  EnvironmentalImpact `json:"impact"`
}
