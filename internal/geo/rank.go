package geo

import (
	"cmp"
	"slices"

	"github.com/futsalmap/webgis/internal/futsal"
)

// RankByProximity annotates every venue with its distance from origin and
// returns them nearest first. Venues at the same rounded distance keep their
// input order. The input slice is not modified.
func RankByProximity(origin futsal.GeoPoint, venues []futsal.Venue) []futsal.RankedVenue {
	ranked := make([]futsal.RankedVenue, len(venues))
	for i, v := range venues {
		ranked[i] = futsal.RankedVenue{
			Venue:      v,
			DistanceKm: Distance(origin, v.Location),
		}
	}

	slices.SortStableFunc(ranked, func(a, b futsal.RankedVenue) int {
		return cmp.Compare(a.DistanceKm, b.DistanceKm)
	})
	return ranked
}

// WithinRadius is RankByProximity restricted to venues no further than
// radiusKm from origin. The boundary is inclusive.
func WithinRadius(origin futsal.GeoPoint, venues []futsal.Venue, radiusKm float64) []futsal.RankedVenue {
	ranked := RankByProximity(origin, venues)

	// ranked is sorted, so the matches form a prefix.
	n, _ := slices.BinarySearchFunc(ranked, radiusKm, func(rv futsal.RankedVenue, r float64) int {
		if rv.DistanceKm <= r {
			return -1
		}
		return 1
	})
	return ranked[:n:n]
}
