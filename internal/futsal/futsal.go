// Package futsal defines the core domain types shared by the ranking and
// filtering engines, the store and the HTTP layer.
// It has no external dependencies.
package futsal

// GeoPoint is a WGS 84 coordinate in decimal degrees.
// Valid points have Lat in [-90, 90] and Lon in [-180, 180]; see Valid.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether p lies within the latitude/longitude ranges.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Venue is one futsal field. AvgRating and ReviewCount are derived from
// ratings by the store and are read-only for everything else.
type Venue struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Address      string   `json:"address"`
	Location     GeoPoint `json:"location"`
	PricePerHour float64  `json:"pricePerHour"`
	Description  string   `json:"description"`
	Facilities   string   `json:"facilities"`
	Phone        string   `json:"phone"`
	OpeningHours string   `json:"openingHours"`
	PrimaryPhoto string   `json:"primaryPhoto,omitempty"`
	AvgRating    float64  `json:"avgRating"`
	ReviewCount  int      `json:"reviewCount"`
	CreatedAt    string   `json:"createdAt"`
	UpdatedAt    string   `json:"updatedAt"`
}

// RankedVenue is a Venue annotated with its distance from a reference point.
type RankedVenue struct {
	Venue
	DistanceKm float64 `json:"distanceKm"`
}

// SortKey selects the ordering applied after filtering. The zero value keeps
// the input order (creation recency, as supplied by the store).
type SortKey string

const (
	SortDefault    SortKey = ""
	SortPriceAsc   SortKey = "price_asc"
	SortPriceDesc  SortKey = "price_desc"
	SortRatingAsc  SortKey = "rating_asc"
	SortRatingDesc SortKey = "rating_desc"
	SortNameAsc    SortKey = "name_asc"
	SortNameDesc   SortKey = "name_desc"
)

// SortKeys lists every non-default key in a stable order.
var SortKeys = []SortKey{
	SortPriceAsc, SortPriceDesc,
	SortRatingAsc, SortRatingDesc,
	SortNameAsc, SortNameDesc,
}

// ParseSortKey maps a wire value onto a SortKey. Unknown values report false.
func ParseSortKey(s string) (SortKey, bool) {
	if s == "" {
		return SortDefault, true
	}
	for _, k := range SortKeys {
		if string(k) == s {
			return k, true
		}
	}
	return SortDefault, false
}

// FilterCriteria is a bag of independent, optional predicates. A nil pointer
// or empty Search means no constraint on that dimension.
type FilterCriteria struct {
	Search    string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	SortBy    SortKey
}

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	CreatedAt string `json:"createdAt"`
}

// Rating is one account's score and review for one venue.
type Rating struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"userId"`
	Username  string `json:"username"`
	VenueID   int64  `json:"venueId"`
	VenueName string `json:"venueName,omitempty"`
	Score     int    `json:"rating"`
	Review    string `json:"review"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

const (
	MinScore = 1
	MaxScore = 5
)

type Photo struct {
	ID        int64  `json:"id"`
	VenueID   int64  `json:"venueId"`
	URL       string `json:"url"`
	FileName  string `json:"-"`
	Caption   string `json:"caption"`
	IsPrimary bool   `json:"isPrimary"`
	CreatedAt string `json:"createdAt"`
}

// PriceRange summarises hourly prices across all venues. All fields are zero
// when there are no venues.
type PriceRange struct {
	Min float64 `json:"minPrice"`
	Max float64 `json:"maxPrice"`
	Avg float64 `json:"avgPrice"`
}
