// Package filter narrows and orders a venue collection by search text, price
// bounds, minimum rating and a sort key.
package filter

import (
	"cmp"
	"slices"
	"strings"

	"github.com/futsalmap/webgis/internal/futsal"
)

// Apply returns the venues satisfying every present criterion, ordered by
// c.SortBy. Predicates are conjunctive. With no sort key, or one Apply does
// not recognise, the input order is kept. The input slice is not modified.
//
// MinPrice greater than MaxPrice is allowed and matches nothing.
func Apply(venues []futsal.Venue, c futsal.FilterCriteria) []futsal.Venue {
	out := make([]futsal.Venue, 0, len(venues))
	for _, v := range venues {
		if Matches(v, c) {
			out = append(out, v)
		}
	}

	if less := comparator(c.SortBy); less != nil {
		slices.SortStableFunc(out, less)
	}
	return out
}

// Matches reports whether v satisfies all predicates in c. SortBy is ignored.
func Matches(v futsal.Venue, c futsal.FilterCriteria) bool {
	if c.Search != "" && !containsFold(v.Name, c.Search) && !containsFold(v.Address, c.Search) {
		return false
	}
	if c.MinPrice != nil && v.PricePerHour < *c.MinPrice {
		return false
	}
	if c.MaxPrice != nil && v.PricePerHour > *c.MaxPrice {
		return false
	}
	if c.MinRating != nil && v.AvgRating < *c.MinRating {
		return false
	}
	return true
}

func comparator(key futsal.SortKey) func(a, b futsal.Venue) int {
	switch key {
	case futsal.SortPriceAsc:
		return func(a, b futsal.Venue) int { return cmp.Compare(a.PricePerHour, b.PricePerHour) }
	case futsal.SortPriceDesc:
		return func(a, b futsal.Venue) int { return cmp.Compare(b.PricePerHour, a.PricePerHour) }
	case futsal.SortRatingAsc:
		return func(a, b futsal.Venue) int { return cmp.Compare(a.AvgRating, b.AvgRating) }
	case futsal.SortRatingDesc:
		return func(a, b futsal.Venue) int { return cmp.Compare(b.AvgRating, a.AvgRating) }
	case futsal.SortNameAsc:
		return func(a, b futsal.Venue) int { return strings.Compare(a.Name, b.Name) }
	case futsal.SortNameDesc:
		return func(a, b futsal.Venue) int { return strings.Compare(b.Name, a.Name) }
	}
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
