package materials

import (
	"errors"
	"fmt"
)

// MaterialType is the closed set of waste materials the platform scores.
// Classifier labels must be parsed through Parse before entering the core.
type MaterialType string

const (
	PET       MaterialType = "PET"
	HDPE      MaterialType = "HDPE"
	Paper     MaterialType = "Paper"
	Cardboard MaterialType = "Cardboard"
	Glass     MaterialType = "Glass"
	Aluminum  MaterialType = "Aluminum"
	Steel     MaterialType = "Steel"
	Metal     MaterialType = "Metal"
	EWaste    MaterialType = "E-Waste"
	Battery   MaterialType = "Battery"
	Plastic   MaterialType = "Plastic"
	Mixed     MaterialType = "Mixed"
	Organic   MaterialType = "Organic"
	Textile   MaterialType = "Textile"
)

// ErrUnknownMaterial indicates a label outside the closed material set.
var ErrUnknownMaterial = errors.New("unknown material")

// All lists every valid material type.
var All = []MaterialType{
	PET, HDPE, Paper, Cardboard, Glass, Aluminum, Steel,
	Metal, EWaste, Battery, Plastic, Mixed, Organic, Textile,
}

var valid = func() map[MaterialType]bool {
	m := make(map[MaterialType]bool, len(All))
	for _, mt := range All {
		m[mt] = true
	}
	return m
}()

// Parse validates a free-text material label against the closed set. There is
// deliberately no default material: an unrecognized classifier label fails
// here instead of being silently mis-scored downstream.
func Parse(label string) (MaterialType, error) {
	mt := MaterialType(label)
	if !valid[mt] {
		return "", fmt.Errorf("%w: %q", ErrUnknownMaterial, label)
	}
	return mt, nil
}

// IsValid reports whether m belongs to the closed material set.
func IsValid(m MaterialType) bool {
	return valid[m]
}

// ImpactFactor holds the static per-material conversion rates.
type ImpactFactor struct {
	CO2PerKg       float64 `json:"co2_per_kg"`
	WaterPerKg     float64 `json:"water_per_kg"`
	BaseCreditRate float64 `json:"base_credit_rate"`
}

// FactorTable is the per-material lookup injected into the credit and impact
// engines at construction. Read-only after load.
type FactorTable map[MaterialType]ImpactFactor

// Lookup returns the factors for a material, failing for anything outside the
// table rather than falling back to a default rate.
func (t FactorTable) Lookup(m MaterialType) (ImpactFactor, error) {
	f, ok := t[m]
	if !ok {
		return ImpactFactor{}, fmt.Errorf("%w: %q", ErrUnknownMaterial, m)
	}
	return f, nil
}
