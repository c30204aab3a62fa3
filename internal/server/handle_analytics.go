package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/futsalmap/webgis/internal/analytics"
	"github.com/futsalmap/webgis/internal/cache"
)

const (
	popularVenuesLimit  = 10
	recentActivityLimit = 20
	trendMonths         = 12
)

// analyticsCache fronts the store's aggregate queries with Redis. Any write
// that can change an aggregate calls invalidate.
type analyticsCache struct {
	c      *cache.Cache
	store  Store
	logger *slog.Logger
}

func newAnalyticsCache(c *cache.Cache, store Store, logger *slog.Logger) *analyticsCache {
	return &analyticsCache{c: c, store: store, logger: logger}
}

func (a *analyticsCache) invalidate(ctx context.Context) {
	if err := a.c.Invalidate(ctx); err != nil {
		a.logger.Warn("invalidating analytics cache", "error", err)
	}
}

func (a *analyticsCache) generalStats(ctx context.Context) (analytics.GeneralStats, error) {
	return cache.Remember(ctx, a.c, "general-stats", a.store.GeneralStats)
}

func (a *analyticsCache) popularVenues(ctx context.Context) ([]analytics.PopularVenue, error) {
	return cache.Remember(ctx, a.c, "popular-venues", func(ctx context.Context) ([]analytics.PopularVenue, error) {
		return a.store.PopularVenues(ctx, popularVenuesLimit)
	})
}

func (a *analyticsCache) ratingDistribution(ctx context.Context) ([]analytics.RatingBucket, error) {
	return cache.Remember(ctx, a.c, "rating-distribution", a.store.RatingDistribution)
}

func (a *analyticsCache) ratingsPerMonth(ctx context.Context) ([]analytics.MonthlyRatings, error) {
	return cache.Remember(ctx, a.c, "ratings-per-month", func(ctx context.Context) ([]analytics.MonthlyRatings, error) {
		return a.store.RatingsPerMonth(ctx, trendMonths)
	})
}

func (a *analyticsCache) registrationsPerMonth(ctx context.Context) ([]analytics.MonthlyCount, error) {
	return cache.Remember(ctx, a.c, "registrations-per-month", func(ctx context.Context) ([]analytics.MonthlyCount, error) {
		return a.store.RegistrationsPerMonth(ctx, trendMonths)
	})
}

func (a *analyticsCache) recentActivity(ctx context.Context) ([]analytics.Activity, error) {
	return cache.Remember(ctx, a.c, "recent-activity", func(ctx context.Context) ([]analytics.Activity, error) {
		return a.store.RecentActivity(ctx, recentActivityLimit)
	})
}

// handleAnalytics serves one cached aggregate as JSON.
func handleAnalytics[T any](logger *slog.Logger, name string, load func(context.Context) (T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := load(r.Context())
		if err != nil {
			logger.Error("loading analytics", "name", name, "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// handleAnalyticsPage renders the charts page. The series load concurrently.
func handleAnalyticsPage(logger *slog.Logger, an *analyticsCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var d analytics.Dashboard
		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() (err error) { d.Stats, err = an.generalStats(ctx); return })
		g.Go(func() (err error) { d.Popular, err = an.popularVenues(ctx); return })
		g.Go(func() (err error) { d.Distribution, err = an.ratingDistribution(ctx); return })
		g.Go(func() (err error) { d.PerMonth, err = an.ratingsPerMonth(ctx); return })
		g.Go(func() (err error) { d.Registrations, err = an.registrationsPerMonth(ctx); return })
		if err := g.Wait(); err != nil {
			logger.Error("loading analytics page", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		var buf bytes.Buffer
		if err := analytics.Render(&buf, d); err != nil {
			logger.Error("rendering analytics page", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}
