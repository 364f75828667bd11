package credits

import (
	"errors"
	"fmt"
	"math"

	"github.com/Samrudhp/renova-backend/internal/materials"
)

var (
	// ErrInvalidWeight indicates a negative weight.
	ErrInvalidWeight = errors.New("invalid weight")
	// ErrInvalidCleanliness indicates a cleanliness score outside [0,100].
	ErrInvalidCleanliness = errors.New("invalid cleanliness score")
)

// Engine converts (material, weight, cleanliness) into credits and
// environmental impact using an injected factor table. All methods are pure.
type Engine struct {
	factors materials.FactorTable
}

// NewEngine creates a credit/impact engine over a factor table.
func NewEngine(factors materials.FactorTable) *Engine {
	return &Engine{factors: factors}
}

// QuoteCredits computes floor(base_rate × weight × cleanliness/100).
//
// This is the single credit formula: the pre-pickup estimate and the
// post-pickup final amount both go through here, so rounding can never
// diverge between the two. Fractional credits round down, so very light items
// can legitimately quote 0.
func (e *Engine) QuoteCredits(material materials.MaterialType, weightKg, cleanlinessScore float64) (int, error) {
	if weightKg < 0 {
		return 0, fmt.Errorf("%w: %.3f kg", ErrInvalidWeight, weightKg)
	}
	if cleanlinessScore < 0 || cleanlinessScore > 100 {
		return 0, fmt.Errorf("%w: %.1f", ErrInvalidCleanliness, cleanlinessScore)
	}
	factor, err := e.factors.Lookup(material)
	if err != nil {
		return 0, err
	}

	credits := factor.BaseCreditRate * weightKg * (cleanlinessScore / 100)
	return int(math.Floor(credits)), nil
}

// Quote bundles the computed credits with their inputs. Callers that go on to
// mint a token persist the quote's fields; everywhere else it is ephemeral.
func (e *Engine) Quote(material materials.MaterialType, weightKg, cleanlinessScore float64) (CreditQuote, error) {
	credits, err := e.QuoteCredits(material, weightKg, cleanlinessScore)
	if err != nil {
		return CreditQuote{}, err
	}
	return CreditQuote{
		Material:         material,
		WeightKg:         weightKg,
		CleanlinessScore: cleanlinessScore,
		Credits:          credits,
	}, nil
}

// ComputeImpact converts diverted weight into environmental savings. Landfill
// savings count 1:1 with weight regardless of material.
func (e *Engine) ComputeImpact(material materials.MaterialType, weightKg float64) (EnvironmentalImpact, error) {
	if weightKg < 0 {
		return EnvironmentalImpact{}, fmt.Errorf("%w: %.3f kg", ErrInvalidWeight, weightKg)
	}
	factor, err := e.factors.Lookup(material)
	if err != nil {
		return EnvironmentalImpact{}, err
	}

	return EnvironmentalImpact{
		CO2SavedKg:       factor.CO2PerKg * weightKg,
		WaterSavedLiters: factor.WaterPerKg * weightKg,
		LandfillSavedKg:  weightKg,
	}, nil
}

// ApplyToTotals adds an impact to running user totals and counts the scan.
// Pure: the input is not mutated. Each scan and each redemption is a separate
// additive event.
func ApplyToTotals(totals UserStats, impact EnvironmentalImpact) UserStats {
	totals.TotalCO2SavedKg += impact.CO2SavedKg
	totals.TotalWaterSavedLiters += impact.WaterSavedLiters
	totals.TotalLandfillSavedKg += impact.LandfillSavedKg
	totals.TotalScans++
	return totals
}
