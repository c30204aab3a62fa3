package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/futsalmap/webgis/internal/filter"
	"github.com/futsalmap/webgis/internal/futsal"
	"github.com/futsalmap/webgis/internal/geo"
	"github.com/futsalmap/webgis/internal/query"
)

// VenueDetailResponse is the response for GET /api/venues/{id}.
type VenueDetailResponse struct {
	Venue      futsal.Venue    `json:"venue"`
	Ratings    []futsal.Rating `json:"ratings"`
	Photos     []futsal.Photo  `json:"photos"`
	UserRating *futsal.Rating  `json:"userRating"`
}

func handleListVenues(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		venues, err := store.ListVenues(r.Context())
		if err != nil {
			logger.Error("listing venues", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, venues)
	}
}

// handleNearby filters first, then ranks by distance from the origin.
// defaultLimit applies when the request carries no limit; 0 means no cap.
func handleNearby(logger *slog.Logger, store Store, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := query.ParseNearby(r.URL.Query())
		if err != nil {
			writeQueryError(w, err)
			return
		}

		venues, err := store.ListVenues(r.Context())
		if err != nil {
			logger.Error("listing venues", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		venues = filter.Apply(venues, q.Filter)

		var ranked []futsal.RankedVenue
		if q.RadiusKm != nil {
			ranked = geo.WithinRadius(q.Origin, venues, *q.RadiusKm)
		} else {
			ranked = geo.RankByProximity(q.Origin, venues)
		}

		limit := q.Limit
		if limit == 0 {
			limit = defaultLimit
		}
		if limit > 0 && len(ranked) > limit {
			ranked = ranked[:limit]
		}
		writeJSON(w, http.StatusOK, ranked)
	}
}

func handleFilterVenues(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := query.ParseFilter(r.URL.Query())
		if err != nil {
			writeQueryError(w, err)
			return
		}

		venues, err := store.ListVenues(r.Context())
		if err != nil {
			logger.Error("listing venues", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, filter.Apply(venues, c))
	}
}

func handlePriceRange(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pr, err := store.PriceRange(r.Context())
		if err != nil {
			logger.Error("price range", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, pr)
	}
}

// handleVenueDetail includes the caller's own rating when a session cookie
// is present. An invalid session is treated as anonymous.
func handleVenueDetail(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid venue id")
			return
		}

		venue, err := store.GetVenue(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "venue not found")
			return
		}
		if err != nil {
			logger.Error("getting venue", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp := VenueDetailResponse{Venue: venue}
		if resp.Ratings, err = store.ListVenueRatings(r.Context(), id); err != nil {
			logger.Error("listing ratings", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if resp.Photos, err = store.ListPhotos(r.Context(), id); err != nil {
			logger.Error("listing photos", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if user, err := userFromRequest(r, store); err == nil {
			own, err := store.UserRating(r.Context(), user.ID, id)
			switch {
			case err == nil:
				resp.UserRating = &own
			case !errors.Is(err, ErrNotFound):
				logger.Error("getting own rating", "id", id, "error", err)
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleVenuePhotos(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid venue id")
			return
		}
		photos, err := store.ListPhotos(r.Context(), id)
		if err != nil {
			logger.Error("listing photos", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, photos)
	}
}

func handleVenueRatings(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid venue id")
			return
		}
		ratings, err := store.ListVenueRatings(r.Context(), id)
		if err != nil {
			logger.Error("listing ratings", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, ratings)
	}
}
