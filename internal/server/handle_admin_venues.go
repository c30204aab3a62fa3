package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/futsalmap/webgis/internal/futsal"
)

func (in *VenueInput) validate() string {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.Description = strings.TrimSpace(in.Description)
	in.Facilities = strings.TrimSpace(in.Facilities)
	in.Phone = strings.TrimSpace(in.Phone)
	in.OpeningHours = strings.TrimSpace(in.OpeningHours)
	switch {
	case in.Name == "":
		return "name is required"
	case in.Address == "":
		return "address is required"
	case !(futsal.GeoPoint{Lat: in.Lat, Lon: in.Lon}).Valid():
		return "lat must be between -90 and 90 and lon between -180 and 180"
	case in.Lat == 0 && in.Lon == 0:
		return "lat and lon are required"
	case in.PricePerHour < 0:
		return "pricePerHour must not be negative"
	}
	return ""
}

// AdminDashboardResponse is the response for GET /api/admin/dashboard.
type AdminDashboardResponse struct {
	Venues  []futsal.Venue  `json:"venues"`
	Ratings []futsal.Rating `json:"ratings"`
}

func handleAdminDashboard(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		venues, err := store.ListVenues(r.Context())
		if err != nil {
			logger.Error("listing venues", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		ratings, err := store.ListAllRatings(r.Context())
		if err != nil {
			logger.Error("listing ratings", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, AdminDashboardResponse{Venues: venues, Ratings: ratings})
	}
}

func handleAdminCreateVenue(logger *slog.Logger, store Store, an *analyticsCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req VenueInput
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		venue, err := store.CreateVenue(r.Context(), req)
		if err != nil {
			logger.Error("creating venue", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		an.invalidate(r.Context())

		writeJSON(w, http.StatusCreated, venue)
	}
}

func handleAdminGetVenue(logger *slog.Logger, store Store) http.HandlerFunc {
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

		writeJSON(w, http.StatusOK, venue)
	}
}

func handleAdminUpdateVenue(logger *slog.Logger, store Store, an *analyticsCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid venue id")
			return
		}

		var req VenueInput
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		venue, err := store.UpdateVenue(r.Context(), id, req)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "venue not found")
			return
		}
		if err != nil {
			logger.Error("updating venue", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		an.invalidate(r.Context())

		writeJSON(w, http.StatusOK, venue)
	}
}

// handleAdminDeleteVenue removes the venue and its photo files.
func handleAdminDeleteVenue(logger *slog.Logger, store Store, files PhotoFiles, an *analyticsCache) http.HandlerFunc {
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

		if err := store.DeleteVenue(r.Context(), id); err != nil {
			if errors.Is(err, ErrNotFound) {
				writeError(w, http.StatusNotFound, "venue not found")
				return
			}
			logger.Error("deleting venue", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		for _, p := range photos {
			if err := files.Delete(p.FileName); err != nil {
				logger.Warn("removing photo file", "file", p.FileName, "error", err)
			}
		}
		an.invalidate(r.Context())

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleAdminDeleteRating(logger *slog.Logger, store Store, broker *Broker, an *analyticsCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r, "id")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid rating id")
			return
		}

		rating, err := store.DeleteRating(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "rating not found")
			return
		}
		if err != nil {
			logger.Error("deleting rating", "id", id, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		logger.Info("rating removed", "id", id, "venue_id", rating.VenueID, "by", currentUser(r).Username)

		publishRating(r.Context(), logger, store, broker, EventRatingDeleted, rating)
		an.invalidate(r.Context())

		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
