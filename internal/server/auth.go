package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/futsalmap/webgis/internal/futsal"
)

var errNoSession = errors.New("no valid session")

const sessionCookieName = "session"

// userFromRequest reads the session cookie and resolves the account.
func userFromRequest(r *http.Request, store Store) (futsal.User, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return futsal.User{}, errNoSession
	}
	return store.UserFromSession(r.Context(), cookie.Value)
}

func setSessionCookie(w http.ResponseWriter, id string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
