package server

import (
	"net/http"
	"testing"

	"github.com/futsalmap/webgis/internal/futsal"
)

func TestRegister(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/api/auth/register", RegisterRequest{
		Username: " dewi ", Email: "Dewi@Example.com", Password: "secret1", ConfirmPassword: "secret1",
	}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	u := decode[futsal.User](t, w)
	if u.Username != "dewi" || u.Email != "dewi@example.com" || u.Role != futsal.RoleUser {
		t.Errorf("user = %+v", u)
	}
}

func TestRegisterValidation(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"missing username", RegisterRequest{Email: "a@b.c", Password: "secret1", ConfirmPassword: "secret1"}},
		{"missing confirm", RegisterRequest{Username: "a", Email: "a@b.c", Password: "secret1"}},
		{"bad email", RegisterRequest{Username: "a", Email: "nope", Password: "secret1", ConfirmPassword: "secret1"}},
		{"mismatch", RegisterRequest{Username: "a", Email: "a@b.c", Password: "secret1", ConfirmPassword: "secret2"}},
		{"too short", RegisterRequest{Username: "a", Email: "a@b.c", Password: "abc", ConfirmPassword: "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := e.do(http.MethodPost, "/api/auth/register", tt.req, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestRegisterConflict(t *testing.T) {
	e := newTestEnv(t)
	e.member("eko")

	for _, req := range []RegisterRequest{
		{Username: "eko", Email: "other@example.com", Password: "secret1", ConfirmPassword: "secret1"},
		{Username: "other", Email: "eko@example.com", Password: "secret1", ConfirmPassword: "secret1"},
	} {
		w := e.do(http.MethodPost, "/api/auth/register", req, nil)
		if w.Code != http.StatusConflict {
			t.Errorf("%+v: expected 409, got %d", req, w.Code)
		}
	}
}

func TestLoginSetsCookie(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/api/auth/login", LoginRequest{Username: testAdminUser, Password: testAdminPassword}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == sessionCookieName {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatal("expected session cookie")
	}
	if !session.HttpOnly || session.SameSite != http.SameSiteLaxMode || session.MaxAge != 3600 {
		t.Errorf("cookie attributes = %+v", session)
	}

	u := decode[futsal.User](t, w)
	if u.Role != futsal.RoleAdmin {
		t.Errorf("role = %q, want admin", u.Role)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		req  LoginRequest
		want int
	}{
		{LoginRequest{Username: testAdminUser, Password: "wrong"}, http.StatusUnauthorized},
		{LoginRequest{Username: "nobody", Password: "whatever"}, http.StatusUnauthorized},
		{LoginRequest{Username: "", Password: "x"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if w := e.do(http.MethodPost, "/api/auth/login", tt.req, nil); w.Code != tt.want {
			t.Errorf("%+v: expected %d, got %d", tt.req, tt.want, w.Code)
		}
	}
}

func TestMeAndLogout(t *testing.T) {
	e := newTestEnv(t)

	if w := e.do(http.MethodGet, "/api/auth/me", nil, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous me: expected 401, got %d", w.Code)
	}

	cookies := e.member("fajar")
	w := e.do(http.MethodGet, "/api/auth/me", nil, cookies)
	if w.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", w.Code)
	}
	if u := decode[futsal.User](t, w); u.Username != "fajar" {
		t.Errorf("username = %q", u.Username)
	}

	if w := e.do(http.MethodPost, "/api/auth/logout", nil, cookies); w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}
	if w := e.do(http.MethodGet, "/api/auth/me", nil, cookies); w.Code != http.StatusUnauthorized {
		t.Errorf("me after logout: expected 401, got %d", w.Code)
	}
}

func TestUnknownSessionRejected(t *testing.T) {
	e := newTestEnv(t)

	cookies := []*http.Cookie{{Name: sessionCookieName, Value: "deadbeef"}}
	if w := e.do(http.MethodGet, "/api/auth/me", nil, cookies); w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}
