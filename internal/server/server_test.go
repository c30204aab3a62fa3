package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/futsalmap/webgis/internal/cache"
	"github.com/futsalmap/webgis/internal/database"
	"github.com/futsalmap/webgis/internal/futsal"
	"github.com/futsalmap/webgis/internal/migrations"
	"github.com/futsalmap/webgis/internal/photos"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "admin123"
)

type testEnv struct {
	t     *testing.T
	store *SQLiteStore
	h     http.Handler
	mr    *miniredis.Miniredis
	files *photos.Storage
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := migrations.Run(ctx, db); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return NewSQLiteStore(db)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := quietLogger()
	store := setupTestStore(t)

	if err := SeedAdmin(context.Background(), logger, store, testAdminUser, "admin@futsal.local", testAdminPassword); err != nil {
		t.Fatalf("seeding admin: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	files, err := photos.New(t.TempDir(), 1<<20)
	if err != nil {
		t.Fatalf("photo storage: %v", err)
	}

	srv := New(logger, Options{
		Store:          store,
		Cache:          cache.New(rdb, "analytics", time.Minute),
		Files:          files,
		UploadDir:      files.Dir(),
		MaxUploadBytes: 1 << 20,
		SessionTTL:     time.Hour,
		CORSOrigins:    []string{"*"},
	})

	return &testEnv{t: t, store: store, h: srv.Handler(), mr: mr, files: files}
}

func (e *testEnv) do(method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("encoding body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(path string, files map[string][]byte, caption string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		fw, err := mw.CreateFormFile("photos", name)
		if err != nil {
			e.t.Fatalf("form file: %v", err)
		}
		fw.Write(data)
	}
	if caption != "" {
		mw.WriteField("caption", caption)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(username, password string) []*http.Cookie {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/login", LoginRequest{Username: username, Password: password}, nil)
	if w.Code != http.StatusOK {
		e.t.Fatalf("login %s: expected 200, got %d: %s", username, w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

func (e *testEnv) admin() []*http.Cookie {
	return e.login(testAdminUser, testAdminPassword)
}

// member registers a regular account and returns its session cookies.
func (e *testEnv) member(username string) []*http.Cookie {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/auth/register", RegisterRequest{
		Username: username, Email: username + "@example.com",
		Password: "secret1", ConfirmPassword: "secret1",
	}, nil)
	if w.Code != http.StatusCreated {
		e.t.Fatalf("register %s: expected 201, got %d: %s", username, w.Code, w.Body.String())
	}
	return e.login(username, "secret1")
}

func (e *testEnv) venue(name string, lat, lon, price float64) futsal.Venue {
	e.t.Helper()
	v, err := e.store.CreateVenue(context.Background(), VenueInput{
		Name: name, Address: "Jl. " + name + ", Padang", Lat: lat, Lon: lon, PricePerHour: price,
	})
	if err != nil {
		e.t.Fatalf("creating venue: %v", err)
	}
	return v
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decoding %q: %v", w.Body.String(), err)
	}
	return v
}

func TestSecurityHeaders(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/venues", nil, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"X-XSS-Protection":       "1; mode=block",
	} {
		if got := w.Header().Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
}

func TestCORSPreflight(t *testing.T) {
	e := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/venues", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatalf("expected Access-Control-Allow-Origin, got none (status %d)", w.Code)
	}
}
