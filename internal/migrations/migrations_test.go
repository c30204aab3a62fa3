package migrations_test

import (
	"context"
	"testing"

	"github.com/futsalmap/webgis/internal/database"
	"github.com/futsalmap/webgis/internal/migrations"
)

func TestMigrations(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if _, err := migrations.Run(context.Background(), db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	want := map[string]string{
		"users":           "table",
		"sessions":        "table",
		"venues":          "table",
		"ratings":         "table",
		"venue_photos":    "table",
		"venue_summaries": "view",
	}

	for name, typ := range want {
		var got string
		err := db.QueryRow(
			"SELECT type FROM sqlite_master WHERE name=?", name,
		).Scan(&got)
		if err != nil {
			t.Errorf("%s %q not found: %v", typ, name, err)
			continue
		}
		if got != typ {
			t.Errorf("%q is a %s, want %s", name, got, typ)
		}
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	if n, err := migrations.Run(context.Background(), db); err != nil || n == 0 {
		t.Fatalf("first run: applied %d, err %v", n, err)
	}
	n, err := migrations.Run(context.Background(), db)
	if err != nil {
		t.Fatalf("second run (should be no-op): %v", err)
	}
	if n != 0 {
		t.Errorf("second run applied %d migrations, want 0", n)
	}
}

func TestVenueSummariesAggregates(t *testing.T) {
	db, err := database.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	defer db.Close()
	if _, err := migrations.Run(context.Background(), db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	stmts := []string{
		`INSERT INTO users (id, username, email, password_hash) VALUES (1, 'a', 'a@x', 'h'), (2, 'b', 'b@x', 'h')`,
		`INSERT INTO venues (id, name, address, latitude, longitude, price_per_hour) VALUES (1, 'Rated', 'x', 0, 0, 1), (2, 'Unrated', 'y', 0, 0, 1)`,
		`INSERT INTO ratings (user_id, venue_id, rating) VALUES (1, 1, 4), (2, 1, 5)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}

	tests := []struct {
		id        int
		wantAvg   float64
		wantCount int
	}{
		{1, 4.5, 2},
		{2, 0, 0},
	}
	for _, tt := range tests {
		var avg float64
		var count int
		err := db.QueryRow(
			`SELECT avg_rating, review_count FROM venue_summaries WHERE id = ?`, tt.id,
		).Scan(&avg, &count)
		if err != nil {
			t.Fatalf("venue %d: %v", tt.id, err)
		}
		if avg != tt.wantAvg || count != tt.wantCount {
			t.Errorf("venue %d: avg=%v count=%d, want avg=%v count=%d", tt.id, avg, count, tt.wantAvg, tt.wantCount)
		}
	}
}
