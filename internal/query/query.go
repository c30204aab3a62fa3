// Package query turns loosely typed URL query parameters into the typed
// criteria the ranking and filtering engines accept. Nothing unparsed ever
// reaches those engines: every failure is a *ValidationError naming the field.
package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/futsalmap/webgis/internal/futsal"
)

// Query parameter names.
const (
	ParamLat       = "lat"
	ParamLon       = "lon"
	ParamRadius    = "radius"
	ParamLimit     = "limit"
	ParamSearch    = "search"
	ParamMinPrice  = "minPrice"
	ParamMaxPrice  = "maxPrice"
	ParamMinRating = "minRating"
	ParamSortBy    = "sortBy"
)

// ValidationError reports a single bad or missing query parameter.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Nearby is a validated request for proximity ranking.
type Nearby struct {
	Origin futsal.GeoPoint
	// RadiusKm is nil when every venue should be ranked.
	RadiusKm *float64
	// Limit caps the result length; 0 means no cap.
	Limit  int
	Filter futsal.FilterCriteria
}

// ParseFilter reads the search/filter parameters. Blank values count as
// absent. An unknown sortBy is rejected here rather than silently ignored.
func ParseFilter(v url.Values) (futsal.FilterCriteria, error) {
	var c futsal.FilterCriteria
	c.Search = strings.TrimSpace(v.Get(ParamSearch))

	var err error
	if c.MinPrice, err = optionalFloat(v, ParamMinPrice); err != nil {
		return c, err
	}
	if c.MaxPrice, err = optionalFloat(v, ParamMaxPrice); err != nil {
		return c, err
	}
	if c.MinRating, err = optionalFloat(v, ParamMinRating); err != nil {
		return c, err
	}

	raw := strings.TrimSpace(v.Get(ParamSortBy))
	key, ok := futsal.ParseSortKey(raw)
	if !ok {
		return c, invalid(ParamSortBy, "unknown sort %q (want one of %s)", raw, sortKeyList())
	}
	c.SortBy = key
	return c, nil
}

// ParseNearby reads an origin, an optional radius and limit, and optional
// filter predicates. lat and lon are required and range-checked. sortBy is
// not accepted because results are ordered by distance.
func ParseNearby(v url.Values) (Nearby, error) {
	var q Nearby

	lat, err := requiredFloat(v, ParamLat)
	if err != nil {
		return q, err
	}
	lon, err := requiredFloat(v, ParamLon)
	if err != nil {
		return q, err
	}
	if lat < -90 || lat > 90 {
		return q, invalid(ParamLat, "must be between -90 and 90")
	}
	if lon < -180 || lon > 180 {
		return q, invalid(ParamLon, "must be between -180 and 180")
	}
	q.Origin = futsal.GeoPoint{Lat: lat, Lon: lon}

	if q.RadiusKm, err = optionalFloat(v, ParamRadius); err != nil {
		return q, err
	}
	if q.RadiusKm != nil && *q.RadiusKm < 0 {
		return q, invalid(ParamRadius, "must not be negative")
	}

	if s := strings.TrimSpace(v.Get(ParamLimit)); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return q, invalid(ParamLimit, "must be a non-negative integer")
		}
		q.Limit = n
	}

	if strings.TrimSpace(v.Get(ParamSortBy)) != "" {
		return q, invalid(ParamSortBy, "not supported for nearby search")
	}
	if q.Filter, err = ParseFilter(v); err != nil {
		return q, err
	}
	return q, nil
}

func requiredFloat(v url.Values, name string) (float64, error) {
	f, err := optionalFloat(v, name)
	if err != nil {
		return 0, err
	}
	if f == nil {
		return 0, invalid(name, "is required")
	}
	return *f, nil
}

func optionalFloat(v url.Values, name string) (*float64, error) {
	s := strings.TrimSpace(v.Get(name))
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, invalid(name, "must be a number")
	}
	return &f, nil
}

func sortKeyList() string {
	keys := make([]string, len(futsal.SortKeys))
	for i, k := range futsal.SortKeys {
		keys[i] = string(k)
	}
	return strings.Join(keys, ", ")
}
