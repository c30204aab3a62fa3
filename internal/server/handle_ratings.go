package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/futsalmap/webgis/internal/futsal"
)

// RatingRequest is the request body for POST /api/ratings.
type RatingRequest struct {
	VenueID int64  `json:"venueId"`
	Rating  int    `json:"rating"`
	Review  string `json:"review"`
}

func (req *RatingRequest) validate() string {
	req.Review = strings.TrimSpace(req.Review)
	if req.VenueID <= 0 {
		return "venueId is required"
	}
	if req.Rating < futsal.MinScore || req.Rating > futsal.MaxScore {
		return fmt.Sprintf("rating must be between %d and %d", futsal.MinScore, futsal.MaxScore)
	}
	return ""
}

// handleSubmitRating creates or replaces the caller's rating for a venue.
// It answers 201 for a first rating and 200 for a replacement.
func handleSubmitRating(logger *slog.Logger, store Store, broker *Broker, an *analyticsCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RatingRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		user := currentUser(r)
		rating, created, err := store.UpsertRating(r.Context(), user.ID, req.VenueID, req.Rating, req.Review)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "venue not found")
			return
		}
		if err != nil {
			logger.Error("saving rating", "venue_id", req.VenueID, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		typ, status := EventRatingUpdated, http.StatusOK
		if created {
			typ, status = EventRatingCreated, http.StatusCreated
		}
		publishRating(r.Context(), logger, store, broker, typ, rating)
		an.invalidate(r.Context())

		writeJSON(w, status, rating)
	}
}

// publishRating announces a change together with the venue's fresh aggregates.
func publishRating(ctx context.Context, logger *slog.Logger, store Store, broker *Broker, typ string, rating futsal.Rating) {
	event := RatingEvent{
		Type:     typ,
		VenueID:  rating.VenueID,
		RatingID: rating.ID,
		Username: rating.Username,
		Rating:   rating.Score,
	}
	if venue, err := store.GetVenue(ctx, rating.VenueID); err == nil {
		event.AvgRating = venue.AvgRating
		event.ReviewCount = venue.ReviewCount
	} else {
		logger.Warn("reloading venue aggregates", "venue_id", rating.VenueID, "error", err)
	}
	broker.Publish(event)
}
