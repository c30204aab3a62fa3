package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/futsalmap/webgis/internal/futsal"
)

var padang = futsal.GeoPoint{Lat: -0.9471, Lon: 100.4172}

func venueAt(id int64, lat, lon float64) futsal.Venue {
	return futsal.Venue{ID: id, Name: "Venue", Location: futsal.GeoPoint{Lat: lat, Lon: lon}}
}

func ids(ranked []futsal.RankedVenue) []int64 {
	out := make([]int64, len(ranked))
	for i, rv := range ranked {
		out[i] = rv.ID
	}
	return out
}

func TestRankByProximity(t *testing.T) {
	venues := []futsal.Venue{
		venueAt(1, -0.8897, 100.3501), // Tabing, ~9.8 km
		venueAt(2, -0.9480, 100.4180), // next door
		venueAt(3, -0.9147, 100.3621), // ~7.1 km
		venueAt(4, -0.9471, 100.4172), // exactly at origin
	}

	ranked := RankByProximity(padang, venues)

	require.Len(t, ranked, 4)
	assert.Equal(t, []int64{4, 2, 3, 1}, ids(ranked))
	assert.Equal(t, 0.0, ranked[0].DistanceKm)

	for i, rv := range ranked {
		assert.Equal(t, Distance(padang, rv.Location), rv.DistanceKm, "venue %d", rv.ID)
		if i > 0 {
			assert.LessOrEqual(t, ranked[i-1].DistanceKm, rv.DistanceKm)
		}
	}
}

func TestRankByProximityStable(t *testing.T) {
	venues := []futsal.Venue{
		venueAt(10, -0.90, 100.40),
		venueAt(11, -0.95, 100.35),
		venueAt(12, -0.90, 100.40),
		venueAt(13, -0.95, 100.35),
		venueAt(14, -0.90, 100.40),
	}

	ranked := RankByProximity(padang, venues)

	// 10/12/14 share a location, as do 11/13; each group keeps input order.
	var near, far []int64
	for _, rv := range ranked {
		switch rv.ID {
		case 10, 12, 14:
			near = append(near, rv.ID)
		default:
			far = append(far, rv.ID)
		}
	}
	assert.Equal(t, []int64{10, 12, 14}, near)
	assert.Equal(t, []int64{11, 13}, far)
}

func TestRankByProximityDoesNotMutateInput(t *testing.T) {
	venues := []futsal.Venue{
		venueAt(1, -0.8897, 100.3501),
		venueAt(2, -0.9480, 100.4180),
	}
	before := append([]futsal.Venue(nil), venues...)

	ranked := RankByProximity(padang, venues)
	ranked[0].Name = "changed"

	assert.Equal(t, before, venues)
}

func TestRankByProximityEmpty(t *testing.T) {
	assert.Empty(t, RankByProximity(padang, nil))
	assert.Empty(t, RankByProximity(padang, []futsal.Venue{}))
}

func TestRankByProximityMalformedCoordinates(t *testing.T) {
	venues := []futsal.Venue{
		venueAt(1, 999, -999),
		venueAt(2, -0.9480, 100.4180),
	}

	ranked := RankByProximity(padang, venues)

	require.Len(t, ranked, 2)
	assert.Equal(t, int64(2), ranked[0].ID)
	assert.Greater(t, ranked[1].DistanceKm, 0.0)
}

func TestWithinRadius(t *testing.T) {
	venues := []futsal.Venue{
		venueAt(1, -0.8897, 100.3501),
		venueAt(2, -0.9480, 100.4180),
		venueAt(3, -0.9147, 100.3621),
		venueAt(4, 1.3521, 103.8198), // Singapore
	}
	all := RankByProximity(padang, venues)

	tests := []struct {
		name   string
		radius float64
		want   []int64
	}{
		{"only the neighbour", 1, []int64{2}},
		{"city", 8, []int64{2, 3}},
		{"region", 50, []int64{2, 3, 1}},
		{"everything", 1000, []int64{2, 3, 1, 4}},
		{"zero radius without venue at origin", 0, []int64{}},
		{"negative radius", -5, []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WithinRadius(padang, venues, tt.radius)
			assert.Equal(t, tt.want, ids(got))
			// Result is always a prefix of the full ranking.
			assert.Equal(t, all[:len(got)], got)
		})
	}
}

func TestWithinRadiusInclusiveBoundary(t *testing.T) {
	venues := []futsal.Venue{
		venueAt(1, -0.9147, 100.3621),
		venueAt(2, -0.9471, 100.4172),
	}
	d := Distance(padang, venues[0].Location)

	got := WithinRadius(padang, venues, d)

	assert.Equal(t, []int64{2, 1}, ids(got))
	assert.Equal(t, []int64{2}, ids(WithinRadius(padang, venues, 0)))
}
