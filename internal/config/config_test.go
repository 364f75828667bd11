package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Samrudhp/renova-backend/internal/materials"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")

	assert.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 24, cfg.Tokens.ExpiryHours)
	assert.Equal(t, 8, cfg.Tokens.MintRetries)
	assert.Equal(t, 5.0, cfg.Ranking.DefaultMaxDistanceKm)
}

func TestDefaultFactorTableCoversEveryMaterial(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.NoError(t, err)

	table, err := cfg.Materials.FactorTable()
	assert.NoError(t, err)

	for _, mt := range materials.All {
		factor, err := table.Lookup(mt)
		assert.NoError(t, err, "material %s", mt)
		assert.Greater(t, factor.BaseCreditRate, 0.0)
		assert.Greater(t, factor.CO2PerKg, 0.0)
		assert.Greater(t, factor.WaterPerKg, 0.0)
	}

	// Production rates from the deployed tables.
	pet, _ := table.Lookup(materials.PET)
	assert.Equal(t, 12.0, pet.BaseCreditRate)
	aluminum, _ := table.Lookup(materials.Aluminum)
	assert.Equal(t, 18.0, aluminum.BaseCreditRate)
}

func TestGetServerAddr(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.GetServerAddr())

	t.Setenv("SERVER_HOST", "127.0.0.1")
	cfg, err = LoadConfig("")
	assert.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.GetServerAddr())
}

func TestRankingWeightsSumToOne(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.NoError(t, err)

	sum := cfg.Ranking.DistanceWeight + cfg.Ranking.MaterialWeight +
		cfg.Ranking.CapacityWeight + cfg.Ranking.PriceWeight +
		cfg.Ranking.RoadAccessWeight + cfg.Ranking.RatingWeight
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestFactorTableRejectsUnknownMaterial(t *testing.T) {
	m := MaterialsConfig{
		Factors: map[string]materials.ImpactFactor{
			"Styrofoam": {BaseCreditRate: 1},
		},
	}

	_, err := m.FactorTable()
	assert.ErrorIs(t, err, materials.ErrUnknownMaterial)
}
