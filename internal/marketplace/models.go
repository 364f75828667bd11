package marketplace

import (
	"github.com/paulmach/orb"

	"github.com/Samrudhp/renova-backend/internal/materials"
)

// Recycler is a physical collection point capable of accepting specific
// material types. Records are created by an external ingestion process; the
// ranking engine treats them as read-only and must tolerate malformed rows.
type Recycler struct {
	ID                string                   `json:"id"`
	Name              string                   `json:"name"`
	Location          *orb.Point               `json:"location"`
	MaterialsAccepted []materials.MaterialType `json:"materials_accepted"`
	CapacityScore     float64                  `json:"capacity_score"`
	PriceScore        float64                  `json:"price_score"`
	RoadAccessScore   float64                  `json:"road_access_score"`
	Rating            float64                  `json:"rating"`
}

// Accepts reports whether the recycler accepts the given material.
func (r *Recycler) Accepts(m materials.MaterialType) bool {
	for _, accepted := range r.MaterialsAccepted {
		if accepted == m {
			return true
		}
	}
	return false
}

// RankedRecycler is a per-query scoring result. Derived, never stored.
type RankedRecycler struct {
	Recycler   Recycler `json:"recycler"`
	DistanceKm float64  `json:"distance_km"`
	TotalScore float64  `json:"total_score"`
}
