package marketplace

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/Samrudhp/renova-backend/internal/config"
	"github.com/Samrudhp/renova-backend/internal/materials"
	"github.com/Samrudhp/renova-backend/pkg/geospatial"
)

func productionWeights() config.RankingConfig {
	return config.RankingConfig{
		DistanceWeight:   0.30,
		MaterialWeight:   0.25,
		CapacityWeight:   0.15,
		PriceWeight:      0.10,
		RoadAccessWeight: 0.10,
		RatingWeight:     0.10,
	}
}

// pointAtKm returns a point the given great-circle distance due north of the
// origin, so engine-computed distances land on known values.
func pointAtKm(origin orb.Point, km float64) *orb.Point {
	latOffset := km / geospatial.EarthRadiusKm * 180 / 3.141592653589793
	p := geospatial.NewPoint(origin.Lat()+latOffset, origin.Lon())
	return &p
}

func TestRankPerfectCandidateScore(t *testing.T) {
	engine := NewEngine(productionWeights(), zap.NewNop())
	user := geospatial.NewPoint(12.97, 77.59)

	// 0.5 km of a 5 km radius, full marks elsewhere:
	// 0.30*0.9 + 0.25 + 0.15 + 0.10 + 0.10 + 0.10 = 0.97
	candidate := Recycler{
		ID:                "rec-1",
		Name:              "GreenCycle Hub",
		Location:          pointAtKm(user, 0.5),
		MaterialsAccepted: []materials.MaterialType{materials.PET},
		CapacityScore:     1.0,
		PriceScore:        1.0,
		RoadAccessScore:   1.0,
		Rating:            5,
	}

	ranked, err := engine.Rank(user, materials.PET, []Recycler{candidate}, 5)

	assert.NoError(t, err)
	assert.Len(t, ranked, 1)
	assert.InDelta(t, 0.5, ranked[0].DistanceKm, 0.001)
	assert.InDelta(t, 0.97, ranked[0].TotalScore, 0.001)
}

func TestRankFiltersMaterialAndRadius(t *testing.T) {
	engine := NewEngine(productionWeights(), zap.NewNop())
	user := geospatial.NewPoint(12.97, 77.59)

	candidates := []Recycler{
		{
			ID:                "accepts-near",
			Location:          pointAtKm(user, 1),
			MaterialsAccepted: []materials.MaterialType{materials.PET, materials.Glass},
		},
		{
			ID:                "wrong-material",
			Location:          pointAtKm(user, 1),
			MaterialsAccepted: []materials.MaterialType{materials.Paper},
		},
		{
			ID:                "too-far",
			Location:          pointAtKm(user, 12),
			MaterialsAccepted: []materials.MaterialType{materials.PET},
		},
	}

	ranked, err := engine.Rank(user, materials.PET, candidates, 5)

	assert.NoError(t, err)
	assert.Len(t, ranked, 1)
	assert.Equal(t, "accepts-near", ranked[0].Recycler.ID)
	for _, rr := range ranked {
		assert.True(t, rr.Recycler.Accepts(materials.PET))
		assert.LessOrEqual(t, rr.DistanceKm, 5.0)
	}
}

func TestRankSkipsMalformedRecords(t *testing.T) {
	engine := NewEngine(productionWeights(), zap.NewNop())
	user := geospatial.NewPoint(12.97, 77.59)

	badLocation := geospatial.NewPoint(95, 200)
	candidates := []Recycler{
		{
			ID:                "no-location",
			MaterialsAccepted: []materials.MaterialType{materials.PET},
		},
		{
			ID:                "bad-location",
			Location:          &badLocation,
			MaterialsAccepted: []materials.MaterialType{materials.PET},
		},
		{
			ID:                "good",
			Location:          pointAtKm(user, 2),
			MaterialsAccepted: []materials.MaterialType{materials.PET},
		},
	}

	ranked, err := engine.Rank(user, materials.PET, candidates, 5)

	assert.NoError(t, err)
	assert.Len(t, ranked, 1)
	assert.Equal(t, "good", ranked[0].Recycler.ID)
}

func TestRankOrdersByScoreThenDistance(t *testing.T) {
	// Zero distance weight makes otherwise-identical recyclers score exactly
	// equal, so ordering falls through to the distance tie-break.
	weights := config.RankingConfig{
		MaterialWeight:   0.55,
		CapacityWeight:   0.15,
		PriceWeight:      0.10,
		RoadAccessWeight: 0.10,
		RatingWeight:     0.10,
	}
	engine := NewEngine(weights, zap.NewNop())
	user := geospatial.NewPoint(12.97, 77.59)

	candidates := []Recycler{
		{
			ID:                "farther",
			Location:          pointAtKm(user, 2),
			MaterialsAccepted: []materials.MaterialType{materials.PET},
			CapacityScore:     0.8,
		},
		{
			ID:                "nearer",
			Location:          pointAtKm(user, 1),
			MaterialsAccepted: []materials.MaterialType{materials.PET},
			CapacityScore:     0.8,
		},
	}

	ranked, err := engine.Rank(user, materials.PET, candidates, 5)

	assert.NoError(t, err)
	assert.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].TotalScore, ranked[1].TotalScore)
	assert.Equal(t, "nearer", ranked[0].Recycler.ID)
	assert.Equal(t, "farther", ranked[1].Recycler.ID)
}

func TestRankTieBreaksByIDForDeterminism(t *testing.T) {
	engine := NewEngine(productionWeights(), zap.NewNop())
	user := geospatial.NewPoint(12.97, 77.59)
	shared := pointAtKm(user, 1)

	candidates := []Recycler{
		{ID: "b", Location: shared, MaterialsAccepted: []materials.MaterialType{materials.PET}},
		{ID: "a", Location: shared, MaterialsAccepted: []materials.MaterialType{materials.PET}},
	}

	ranked, err := engine.Rank(user, materials.PET, candidates, 5)

	assert.NoError(t, err)
	assert.Len(t, ranked, 2)
	assert.Equal(t, "a", ranked[0].Recycler.ID)
	assert.Equal(t, "b", ranked[1].Recycler.ID)
}

func TestRankIdempotent(t *testing.T) {
	engine := NewEngine(productionWeights(), zap.NewNop())
	user := geospatial.NewPoint(12.97, 77.59)

	candidates := []Recycler{
		{ID: "r1", Location: pointAtKm(user, 3), MaterialsAccepted: []materials.MaterialType{materials.PET}, Rating: 4},
		{ID: "r2", Location: pointAtKm(user, 1), MaterialsAccepted: []materials.MaterialType{materials.PET}, CapacityScore: 0.5},
		{ID: "r3", Location: pointAtKm(user, 2), MaterialsAccepted: []materials.MaterialType{materials.PET}, PriceScore: 0.9},
	}

	first, err := engine.Rank(user, materials.PET, candidates, 5)
	assert.NoError(t, err)
	second, err := engine.Rank(user, materials.PET, candidates, 5)
	assert.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRankEmptyAndAllFilteredInputs(t *testing.T) {
	engine := NewEngine(productionWeights(), zap.NewNop())
	user := geospatial.NewPoint(12.97, 77.59)

	ranked, err := engine.Rank(user, materials.PET, nil, 5)
	assert.NoError(t, err)
	assert.Empty(t, ranked)

	ranked, err = engine.Rank(user, materials.PET, []Recycler{
		{ID: "paper-only", Location: pointAtKm(user, 1), MaterialsAccepted: []materials.MaterialType{materials.Paper}},
	}, 5)
	assert.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestRankRejectsInvalidInputs(t *testing.T) {
	engine := NewEngine(productionWeights(), zap.NewNop())
	user := geospatial.NewPoint(12.97, 77.59)

	_, err := engine.Rank(user, materials.PET, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidRadius)

	_, err = engine.Rank(user, materials.PET, nil, -3)
	assert.ErrorIs(t, err, ErrInvalidRadius)

	_, err = engine.Rank(geospatial.NewPoint(95, 0), materials.PET, nil, 5)
	assert.ErrorIs(t, err, geospatial.ErrInvalidCoordinate)

	_, err = engine.Rank(user, materials.MaterialType("Styrofoam"), nil, 5)
	assert.ErrorIs(t, err, materials.ErrUnknownMaterial)
}
