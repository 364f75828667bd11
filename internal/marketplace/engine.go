package marketplace

import (
	"errors"
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/Samrudhp/renova-backend/internal/config"
	"github.com/Samrudhp/renova-backend/internal/materials"
	"github.com/Samrudhp/renova-backend/pkg/geospatial"
)

// ErrInvalidRadius indicates a non-positive search radius.
var ErrInvalidRadius = errors.New("invalid search radius")

// Engine scores and ranks recycler candidates for a user location and target
// material. Stateless; safe for unlimited concurrent use.
type Engine struct {
	weights config.RankingConfig
	logger  *zap.Logger
}

// NewEngine creates a ranking engine with the configured score weights.
func NewEngine(weights config.RankingConfig, logger *zap.Logger) *Engine {
	return &Engine{
		weights: weights,
		logger:  logger,
	}
}

// Rank filters and scores candidates, returning them ordered best-first.
//
// Recyclers that do not accept the material or sit beyond maxDistanceKm are
// dropped. Malformed records (missing or invalid location) are skipped with a
// warning rather than failing the whole query. The output order is fully
// deterministic: score descending, then distance ascending, then ID.
func (e *Engine) Rank(userLocation orb.Point, material materials.MaterialType, candidates []Recycler, maxDistanceKm float64) ([]RankedRecycler, error) {
	if maxDistanceKm <= 0 {
		return nil, fmt.Errorf("%w: %.2f km", ErrInvalidRadius, maxDistanceKm)
	}
	if err := geospatial.Validate(userLocation); err != nil {
		return nil, err
	}
	if !materials.IsValid(material) {
		return nil, fmt.Errorf("%w: %q", materials.ErrUnknownMaterial, material)
	}

	ranked := make([]RankedRecycler, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate.Location == nil {
			e.logger.Warn("Skipping recycler with missing location",
				zap.String("recycler_id", candidate.ID))
			continue
		}
		if !candidate.Accepts(material) {
			continue
		}

		distanceKm, err := geospatial.Distance(userLocation, *candidate.Location)
		if err != nil {
			e.logger.Warn("Skipping recycler with invalid location",
				zap.String("recycler_id", candidate.ID),
				zap.Error(err))
			continue
		}
		if distanceKm > maxDistanceKm {
			continue
		}

		ranked = append(ranked, RankedRecycler{
			Recycler:   candidate,
			DistanceKm: distanceKm,
			TotalScore: e.score(candidate, distanceKm, maxDistanceKm),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalScore != ranked[j].TotalScore {
			return ranked[i].TotalScore > ranked[j].TotalScore
		}
		if ranked[i].DistanceKm != ranked[j].DistanceKm {
			return ranked[i].DistanceKm < ranked[j].DistanceKm
		}
		return ranked[i].Recycler.ID < ranked[j].Recycler.ID
	})

	return ranked, nil
}

// score computes the weighted composite. Material match contributes its full
// weight: non-accepting recyclers were already filtered out.
func (e *Engine) score(r Recycler, distanceKm, maxDistanceKm float64) float64 {
	distanceComponent := 1 - distanceKm/maxDistanceKm
	if distanceComponent < 0 {
		distanceComponent = 0
	}

	return e.weights.DistanceWeight*distanceComponent +
		e.weights.MaterialWeight*1.0 +
		e.weights.CapacityWeight*r.CapacityScore +
		e.weights.PriceWeight*r.PriceScore +
		e.weights.RoadAccessWeight*r.RoadAccessScore +
		e.weights.RatingWeight*(r.Rating/5)
}
