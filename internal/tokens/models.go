package tokens

import (
	"time"

	"github.com/Samrudhp/renova-backend/internal/materials"
)

// Token status values, aligned with pkg/workflows transitions. EXPIRED is a
// computed status: tokens pass their expiry without an explicit transition.
const (
	StatusCreated  = "CREATED"
	StatusRedeemed = "REDEEMED"
	StatusExpired  = "EXPIRED"
)

// RedemptionToken binds a (user, material, weight, credits) tuple to a short
// code minted after physical weighing. Tokens are mutated exactly once, on
// redemption, and are kept forever for audit.
type RedemptionToken struct {
	ID               string                 `json:"id" db:"id"`
	Code             string                 `json:"code" db:"code"`
	UserID           string                 `json:"user_id" db:"user_id"`
	Material         materials.MaterialType `json:"material" db:"material"`
	WeightKg         float64                `json:"weight_kg" db:"weight_kg"`
	CleanlinessScore float64                `json:"cleanliness_score" db:"cleanliness_score"`
	Credits          int                    `json:"credits" db:"credits"`
	CreatedAt        time.Time              `json:"created_at" db:"created_at"`
	ExpiresAt        time.Time              `json:"expires_at" db:"expires_at"`
	Redeemed         bool                   `json:"redeemed" db:"redeemed"`
	RedeemedAt       *time.Time             `json:"redeemed_at,omitempty" db:"redeemed_at"`
}

// Status computes the token's lifecycle state at the given instant.
func (t *RedemptionToken) Status(now time.Time) string {
	if t.Redeemed {
		return StatusRedeemed
	}
	if now.After(t.ExpiresAt) {
		return StatusExpired
	}
	return StatusCreated
}

// FinalizeRequest is the recycler-side payload after physical weighing.
type FinalizeRequest struct {
	UserID           string  `json:"user_id" binding:"required"`
	Material         string  `json:"material" binding:"required"`
	WeightKg         float64 `json:"weight_kg"`
	CleanlinessScore float64 `json:"cleanliness_score"`
}

// FinalizeResponse is returned to the recycler terminal.
type FinalizeResponse struct {
	Code      string    `json:"code"`
	Credits   int       `json:"credits"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RedeemRequest is the user-side redemption payload.
type RedeemRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Code   string `json:"code" binding:"required"`
}

// RedeemResponse reports the credits applied to the user's balance.
type RedeemResponse struct {
	CreditsAwarded int `json:"credits_awarded"`
}
