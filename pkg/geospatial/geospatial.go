package geospatial

import (
	"errors"
	"math"

	"github.com/paulmach/orb"
)

// EarthRadiusKm is the mean Earth radius used for great-circle distances.
const EarthRadiusKm = 6371.0

// ErrInvalidCoordinate indicates a latitude outside [-90,90] or a longitude
// outside [-180,180].
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// NewPoint builds an orb.Point from latitude/longitude degrees. orb stores
// points as (lon, lat).
func NewPoint(lat, lon float64) orb.Point {
	return orb.Point{lon, lat}
}

// Validate checks that a point holds valid WGS84 degrees.
func Validate(p orb.Point) error {
	if math.Abs(p.Lat()) > 90 || math.Abs(p.Lon()) > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// Distance returns the haversine great-circle distance between two points in
// kilometers. Symmetric, and exactly zero for identical points.
func Distance(a, b orb.Point) (float64, error) {
	if err := Validate(a); err != nil {
		return 0, err
	}
	if err := Validate(b); err != nil {
		return 0, err
	}

	if a == b {
		return 0, nil
	}

	lat1 := a.Lat() * math.Pi / 180
	lat2 := b.Lat() * math.Pi / 180
	dLat := (b.Lat() - a.Lat()) * math.Pi / 180
	dLon := (b.Lon() - a.Lon()) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c, nil
}
