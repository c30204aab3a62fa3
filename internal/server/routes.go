package server

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, opts Options) {
	store := opts.Store
	broker := NewBroker()
	an := newAnalyticsCache(opts.Cache, store, logger)
	authed := requireUser(logger, store)

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Futsal Map API", "/openapi.json", "/docs"))

	if opts.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(opts.UploadDir))))
	}

	r.Route("/api/venues", func(r chi.Router) {
		r.Get("/", handleListVenues(logger, store))
		r.Get("/nearby", handleNearby(logger, store, opts.NearbyLimit))
		r.Get("/filter", handleFilterVenues(logger, store))
		r.Get("/price-range", handlePriceRange(logger, store))
		r.Get("/{id}", handleVenueDetail(logger, store))
		r.Get("/{id}/photos", handleVenuePhotos(logger, store))
		r.Get("/{id}/ratings", handleVenueRatings(logger, store))
		r.Get("/{id}/events", handleVenueEvents(store, broker))
	})

	r.Post("/api/auth/register", handleRegister(logger, store, an))
	r.Post("/api/auth/login", handleLogin(logger, store, opts.SessionTTL))
	r.Post("/api/auth/logout", handleLogout(store))
	r.With(authed).Get("/api/auth/me", handleMe())

	r.With(authed).Post("/api/ratings", handleSubmitRating(logger, store, broker, an))

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authed)
		r.Use(requireAdmin)

		r.Get("/dashboard", handleAdminDashboard(logger, store))
		r.Get("/live", handleLive(logger, broker))

		r.Post("/venues", handleAdminCreateVenue(logger, store, an))
		r.Get("/venues/{id}", handleAdminGetVenue(logger, store))
		r.Put("/venues/{id}", handleAdminUpdateVenue(logger, store, an))
		r.Delete("/venues/{id}", handleAdminDeleteVenue(logger, store, opts.Files, an))

		r.Get("/venues/{id}/photos", handleVenuePhotos(logger, store))
		r.Post("/venues/{id}/photos", handleAdminUploadPhotos(logger, store, opts.Files, opts.MaxUploadBytes))
		r.Put("/venues/{id}/photos/{photoID}/primary", handleAdminSetPrimaryPhoto(logger, store))
		r.Delete("/photos/{id}", handleAdminDeletePhoto(logger, store, opts.Files))

		r.Delete("/ratings/{id}", handleAdminDeleteRating(logger, store, broker, an))

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/general-stats", handleAnalytics(logger, "general-stats", an.generalStats))
			r.Get("/popular-venues", handleAnalytics(logger, "popular-venues", an.popularVenues))
			r.Get("/rating-distribution", handleAnalytics(logger, "rating-distribution", an.ratingDistribution))
			r.Get("/ratings-per-month", handleAnalytics(logger, "ratings-per-month", an.ratingsPerMonth))
			r.Get("/registrations-per-month", handleAnalytics(logger, "registrations-per-month", an.registrationsPerMonth))
			r.Get("/recent-activity", handleAnalytics(logger, "recent-activity", an.recentActivity))
		})
	})

	r.With(authed, requireAdmin).Get("/admin/analytics", handleAnalyticsPage(logger, an))

	if opts.SPADir != "" {
		if info, err := os.Stat(opts.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", opts.SPADir)
			r.NotFound(handleSPA(opts.SPADir))
		}
	}
}
