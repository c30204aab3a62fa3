package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/futsalmap/webgis/internal/analytics"
	"github.com/futsalmap/webgis/internal/futsal"
)

// HealthResponse documents the /healthz body.
type HealthResponse map[string]struct {
	Status string `json:"status"`
}

type venueIDParam struct {
	ID int64 `path:"id"`
}

type filterParams struct {
	Search    string   `query:"search" description:"Case-insensitive substring of name or address."`
	MinPrice  *float64 `query:"minPrice"`
	MaxPrice  *float64 `query:"maxPrice"`
	MinRating *float64 `query:"minRating"`
}

type filterSortParams struct {
	filterParams
	SortBy string `query:"sortBy" enum:"price_asc,price_desc,rating_asc,rating_desc,name_asc,name_desc"`
}

type nearbyParams struct {
	filterParams
	Lat    float64  `query:"lat" required:"true" minimum:"-90" maximum:"90"`
	Lon    float64  `query:"lon" required:"true" minimum:"-180" maximum:"180"`
	Radius *float64 `query:"radius" minimum:"0" description:"Kilometres, inclusive."`
	Limit  *int     `query:"limit" minimum:"0"`
}

type photoUpload struct {
	Photos  []byte `formData:"photos" format:"binary" description:"Up to 10 image files."`
	Caption string `formData:"caption"`
}

type op struct {
	method, path, summary, description string
	req                                any
	resp                               map[int]any
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Futsal Map API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Find, filter, rate and manage futsal venues.")

	ops := []op{
		{http.MethodGet, "/healthz", "Health check", "Returns the health status of backend dependencies.", nil,
			map[int]any{200: HealthResponse{}, 503: HealthResponse{}}},

		{http.MethodGet, "/api/venues", "List venues", "All venues, newest first, with rating aggregates.", nil,
			map[int]any{200: []futsal.Venue{}}},
		{http.MethodGet, "/api/venues/nearby", "Nearby venues", "Venues ordered by great-circle distance from lat/lon. Optional radius keeps venues within that many kilometres.", nearbyParams{},
			map[int]any{200: []futsal.RankedVenue{}, 400: ErrorResponse{}}},
		{http.MethodGet, "/api/venues/filter", "Filter venues", "Conjunctive search and filter predicates with an optional sort key.", filterSortParams{},
			map[int]any{200: []futsal.Venue{}, 400: ErrorResponse{}}},
		{http.MethodGet, "/api/venues/price-range", "Price range", "Minimum, maximum and mean hourly price.", nil,
			map[int]any{200: futsal.PriceRange{}}},
		{http.MethodGet, "/api/venues/{id}", "Venue detail", "Venue with ratings, photos and the caller's own rating.", venueIDParam{},
			map[int]any{200: VenueDetailResponse{}, 404: ErrorResponse{}}},
		{http.MethodGet, "/api/venues/{id}/photos", "Venue photos", "Primary photo first.", venueIDParam{},
			map[int]any{200: []futsal.Photo{}}},
		{http.MethodGet, "/api/venues/{id}/ratings", "Venue ratings", "Newest first.", venueIDParam{},
			map[int]any{200: []futsal.Rating{}}},
		{http.MethodGet, "/api/venues/{id}/events", "Rating event stream", "Server-Sent Events for rating changes on one venue.", venueIDParam{},
			map[int]any{200: nil, 404: ErrorResponse{}}},

		{http.MethodPost, "/api/auth/register", "Register", "Creates a user account.", RegisterRequest{},
			map[int]any{201: futsal.User{}, 400: ErrorResponse{}, 409: ErrorResponse{}}},
		{http.MethodPost, "/api/auth/login", "Log in", "Sets the session cookie.", LoginRequest{},
			map[int]any{200: futsal.User{}, 401: ErrorResponse{}}},
		{http.MethodPost, "/api/auth/logout", "Log out", "Clears the session.", nil,
			map[int]any{200: nil}},
		{http.MethodGet, "/api/auth/me", "Current user", "Requires the session cookie.", nil,
			map[int]any{200: futsal.User{}, 401: ErrorResponse{}}},
		{http.MethodPost, "/api/ratings", "Rate a venue", "Creates or replaces the caller's rating. Requires the session cookie.", RatingRequest{},
			map[int]any{201: futsal.Rating{}, 200: futsal.Rating{}, 400: ErrorResponse{}, 401: ErrorResponse{}, 404: ErrorResponse{}}},

		{http.MethodGet, "/api/admin/dashboard", "Admin dashboard", "All venues and ratings. Admin only.", nil,
			map[int]any{200: AdminDashboardResponse{}, 401: ErrorResponse{}, 403: ErrorResponse{}}},
		{http.MethodPost, "/api/admin/venues", "Create venue", "Admin only.", VenueInput{},
			map[int]any{201: futsal.Venue{}, 400: ErrorResponse{}, 401: ErrorResponse{}, 403: ErrorResponse{}}},
		{http.MethodGet, "/api/admin/venues/{id}", "Get venue", "Admin only.", venueIDParam{},
			map[int]any{200: futsal.Venue{}, 404: ErrorResponse{}}},
		{http.MethodPut, "/api/admin/venues/{id}", "Update venue", "Admin only.", struct {
			venueIDParam
			VenueInput
		}{},
			map[int]any{200: futsal.Venue{}, 400: ErrorResponse{}, 404: ErrorResponse{}}},
		{http.MethodDelete, "/api/admin/venues/{id}", "Delete venue", "Removes ratings and photos too. Admin only.", venueIDParam{},
			map[int]any{200: nil, 404: ErrorResponse{}}},
		{http.MethodGet, "/api/admin/venues/{id}/photos", "List photos", "Admin only.", venueIDParam{},
			map[int]any{200: []futsal.Photo{}}},
		{http.MethodPost, "/api/admin/venues/{id}/photos", "Upload photos", "Multipart upload. The first photo becomes primary when the venue has none. Admin only.", struct {
			venueIDParam
			photoUpload
		}{},
			map[int]any{201: []futsal.Photo{}, 400: ErrorResponse{}, 404: ErrorResponse{}, 413: ErrorResponse{}}},
		{http.MethodPut, "/api/admin/venues/{id}/photos/{photoID}/primary", "Set primary photo", "Admin only.", struct {
			venueIDParam
			PhotoID int64 `path:"photoID"`
		}{},
			map[int]any{200: nil, 404: ErrorResponse{}}},
		{http.MethodDelete, "/api/admin/photos/{id}", "Delete photo", "Removes the file too. Admin only.", venueIDParam{},
			map[int]any{200: nil, 404: ErrorResponse{}}},
		{http.MethodDelete, "/api/admin/ratings/{id}", "Delete rating", "Moderation. Admin only.", venueIDParam{},
			map[int]any{200: nil, 404: ErrorResponse{}}},
		{http.MethodGet, "/api/admin/live", "Live rating feed", "WebSocket pushing every rating event. Admin only.", nil,
			map[int]any{101: nil, 401: ErrorResponse{}, 403: ErrorResponse{}}},

		{http.MethodGet, "/api/admin/analytics/general-stats", "General stats", "Admin only. Cached.", nil,
			map[int]any{200: analytics.GeneralStats{}}},
		{http.MethodGet, "/api/admin/analytics/popular-venues", "Popular venues", "Admin only. Cached.", nil,
			map[int]any{200: []analytics.PopularVenue{}}},
		{http.MethodGet, "/api/admin/analytics/rating-distribution", "Rating distribution", "Admin only. Cached.", nil,
			map[int]any{200: []analytics.RatingBucket{}}},
		{http.MethodGet, "/api/admin/analytics/ratings-per-month", "Ratings per month", "Admin only. Cached.", nil,
			map[int]any{200: []analytics.MonthlyRatings{}}},
		{http.MethodGet, "/api/admin/analytics/registrations-per-month", "Registrations per month", "Admin only. Cached.", nil,
			map[int]any{200: []analytics.MonthlyCount{}}},
		{http.MethodGet, "/api/admin/analytics/recent-activity", "Recent activity", "Admin only. Cached.", nil,
			map[int]any{200: []analytics.Activity{}}},
	}

	for _, o := range ops {
		oc, err := r.NewOperationContext(o.method, o.path)
		if err != nil {
			continue
		}
		oc.SetSummary(o.summary)
		oc.SetDescription(o.description)
		if o.req != nil {
			oc.AddReqStructure(o.req)
		}
		for status, body := range o.resp {
			switch {
			case status == http.StatusSwitchingProtocols:
				oc.AddRespStructure(nil, openapi.WithHTTPStatus(status), openapi.WithContentType("text/plain"))
			case o.path == "/api/venues/{id}/events" && status == http.StatusOK:
				oc.AddRespStructure(nil, openapi.WithHTTPStatus(status), openapi.WithContentType("text/event-stream"))
			default:
				oc.AddRespStructure(body, openapi.WithHTTPStatus(status))
			}
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
