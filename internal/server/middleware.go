package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/futsalmap/webgis/internal/futsal"
)

type ctxKey int

const ctxKeyUser ctxKey = iota

// requireUser rejects requests without a live session.
func requireUser(logger *slog.Logger, store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := userFromRequest(r, store)
			if errors.Is(err, errNoSession) {
				writeError(w, http.StatusUnauthorized, "not authenticated")
				return
			}
			if err != nil {
				logger.Error("resolving session", "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireAdmin must run after requireUser.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r).Role != futsal.RoleAdmin {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func currentUser(r *http.Request) futsal.User {
	return r.Context().Value(ctxKeyUser).(futsal.User)
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		next.ServeHTTP(w, r)
	})
}
