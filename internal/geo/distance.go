// Package geo computes great-circle distances and ranks venues by proximity.
package geo

import (
	"math"

	"github.com/futsalmap/webgis/internal/futsal"
)

const earthRadiusKm = 6371.0

// Distance returns the haversine great-circle distance between a and b in
// kilometres, rounded to two decimal places.
//
// Coordinates are not range-checked: out-of-range input still yields a
// finite, if meaningless, number.
func Distance(a, b futsal.GeoPoint) float64 {
	return Round2(haversine(a, b))
}

func haversine(a, b futsal.GeoPoint) float64 {
	lat1 := degreesToRadians(a.Lat)
	lat2 := degreesToRadians(b.Lat)
	deltaLat := degreesToRadians(b.Lat - a.Lat)
	deltaLon := degreesToRadians(b.Lon - a.Lon)

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	// Rounding near antipodes, or garbage coordinates, can push h outside
	// [0, 1] where the square roots below are undefined.
	h = math.Min(math.Max(h, 0), 1)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Round2 rounds km to hundredths, halves away from zero.
func Round2(km float64) float64 {
	return math.Round(km*100) / 100
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180.0
}
