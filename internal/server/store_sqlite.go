package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/futsalmap/webgis/internal/analytics"
	"github.com/futsalmap/webgis/internal/futsal"
)

// timestampLayout matches strftime('%Y-%m-%dT%H:%M:%fZ') so stored times
// compare lexicographically.
const timestampLayout = "2006-01-02T15:04:05.000Z"

const nowExpr = `strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE")
}

// --- venues ---

const venueColumns = `id, name, address, latitude, longitude, price_per_hour,
	description, facilities, phone, opening_hours, primary_photo,
	avg_rating, review_count, created_at, updated_at`

func scanVenue(row rowScanner) (futsal.Venue, error) {
	var v futsal.Venue
	err := row.Scan(&v.ID, &v.Name, &v.Address, &v.Location.Lat, &v.Location.Lon, &v.PricePerHour,
		&v.Description, &v.Facilities, &v.Phone, &v.OpeningHours, &v.PrimaryPhoto,
		&v.AvgRating, &v.ReviewCount, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// ListVenues returns every venue, newest first.
func (s *SQLiteStore) ListVenues(ctx context.Context) ([]futsal.Venue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+venueColumns+`
		FROM venue_summaries
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	venues := []futsal.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

func (s *SQLiteStore) GetVenue(ctx context.Context, id int64) (futsal.Venue, error) {
	v, err := scanVenue(s.db.QueryRowContext(ctx, `
		SELECT `+venueColumns+` FROM venue_summaries WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	return v, err
}

func (s *SQLiteStore) CreateVenue(ctx context.Context, in VenueInput) (futsal.Venue, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO venues (name, address, latitude, longitude, price_per_hour,
			description, facilities, phone, opening_hours)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, in.Name, in.Address, in.Lat, in.Lon, in.PricePerHour,
		in.Description, in.Facilities, in.Phone, in.OpeningHours).Scan(&id)
	if err != nil {
		return futsal.Venue{}, fmt.Errorf("inserting venue: %w", err)
	}
	return s.GetVenue(ctx, id)
}

func (s *SQLiteStore) UpdateVenue(ctx context.Context, id int64, in VenueInput) (futsal.Venue, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE venues SET
			name = ?, address = ?, latitude = ?, longitude = ?, price_per_hour = ?,
			description = ?, facilities = ?, phone = ?, opening_hours = ?,
			updated_at = `+nowExpr+`
		WHERE id = ?
	`, in.Name, in.Address, in.Lat, in.Lon, in.PricePerHour,
		in.Description, in.Facilities, in.Phone, in.OpeningHours, id)
	if err != nil {
		return futsal.Venue{}, fmt.Errorf("updating venue: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return futsal.Venue{}, ErrNotFound
	}
	return s.GetVenue(ctx, id)
}

// DeleteVenue removes a venue; ratings and photo rows cascade.
func (s *SQLiteStore) DeleteVenue(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM venues WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) PriceRange(ctx context.Context) (futsal.PriceRange, error) {
	var pr futsal.PriceRange
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(MIN(price_per_hour), 0),
		       COALESCE(MAX(price_per_hour), 0),
		       COALESCE(ROUND(AVG(price_per_hour), 2), 0)
		FROM venues
	`).Scan(&pr.Min, &pr.Max, &pr.Avg)
	return pr, err
}

// --- users and sessions ---

func (s *SQLiteStore) CreateUser(ctx context.Context, username, email, passwordHash string, role futsal.Role) (futsal.User, error) {
	var u futsal.User
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, email, password_hash, role)
		VALUES (?, ?, ?, ?)
		RETURNING id, username, email, role, created_at
	`, username, email, passwordHash, string(role)).Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.CreatedAt)
	if isUniqueViolation(err) {
		return u, ErrConflict
	}
	return u, err
}

// UserByUsername returns the account and its password hash.
func (s *SQLiteStore) UserByUsername(ctx context.Context, username string) (futsal.User, string, error) {
	var u futsal.User
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, email, role, created_at, password_hash
		FROM users WHERE username = ?
	`, username).Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.CreatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return u, "", ErrNotFound
	}
	return u, hash, err
}

func (s *SQLiteStore) CreateSession(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	expires := time.Now().UTC().Add(ttl).Format(timestampLayout)
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO sessions (user_id, expires_at)
		VALUES (?, ?)
		RETURNING id
	`, userID, expires).Scan(&id)
	return id, err
}

// UserFromSession resolves a live session. Expired or unknown sessions
// yield errNoSession.
func (s *SQLiteStore) UserFromSession(ctx context.Context, sessionID string) (futsal.User, error) {
	var u futsal.User
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.username, u.email, u.role, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.id = ? AND s.expires_at > `+nowExpr+`
	`, sessionID).Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, errNoSession
	}
	return u, err
}

func (s *SQLiteStore) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	return err
}

// EnsureAdmin creates the admin account unless the username is taken. It
// reports whether a row was inserted.
func (s *SQLiteStore) EnsureAdmin(ctx context.Context, username, email, passwordHash string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, role)
		VALUES (?, ?, ?, 'admin')
		ON CONFLICT DO NOTHING
	`, username, email, passwordHash)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SetPassword replaces the hash and signs the account out everywhere.
func (s *SQLiteStore) SetPassword(ctx context.Context, username, passwordHash string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRowContext(ctx, `
		UPDATE users SET password_hash = ? WHERE username = ? RETURNING id
	`, passwordHash, username).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// --- ratings ---

const ratingSelect = `
	SELECT r.id, r.user_id, u.username, r.venue_id, v.name, r.rating, r.review, r.created_at, r.updated_at
	FROM ratings r
	JOIN users u ON u.id = r.user_id
	JOIN venues v ON v.id = r.venue_id`

func scanRating(row rowScanner) (futsal.Rating, error) {
	var r futsal.Rating
	err := row.Scan(&r.ID, &r.UserID, &r.Username, &r.VenueID, &r.VenueName, &r.Score, &r.Review, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func queryRatings(ctx context.Context, q interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
}, query string, args ...any) ([]futsal.Rating, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ratings := []futsal.Rating{}
	for rows.Next() {
		r, err := scanRating(rows)
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, r)
	}
	return ratings, rows.Err()
}

// UpsertRating stores the account's single rating for a venue, replacing
// any earlier score and review. created is false on replacement.
func (s *SQLiteStore) UpsertRating(ctx context.Context, userID, venueID int64, score int, review string) (futsal.Rating, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return futsal.Rating{}, false, err
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM venues WHERE id = ?)`, venueID).Scan(&exists); err != nil {
		return futsal.Rating{}, false, err
	}
	if !exists {
		return futsal.Rating{}, false, ErrNotFound
	}

	var prior int
	if err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM ratings WHERE user_id = ? AND venue_id = ?
	`, userID, venueID).Scan(&prior); err != nil {
		return futsal.Rating{}, false, err
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO ratings (user_id, venue_id, rating, review)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, venue_id) DO UPDATE SET
			rating = excluded.rating,
			review = excluded.review,
			updated_at = `+nowExpr+`
		RETURNING id
	`, userID, venueID, score, review).Scan(&id)
	if err != nil {
		return futsal.Rating{}, false, fmt.Errorf("upserting rating: %w", err)
	}

	r, err := scanRating(tx.QueryRowContext(ctx, ratingSelect+` WHERE r.id = ?`, id))
	if err != nil {
		return futsal.Rating{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return futsal.Rating{}, false, err
	}
	return r, prior == 0, nil
}

func (s *SQLiteStore) ListVenueRatings(ctx context.Context, venueID int64) ([]futsal.Rating, error) {
	return queryRatings(ctx, s.db, ratingSelect+`
		WHERE r.venue_id = ?
		ORDER BY r.created_at DESC, r.id DESC
	`, venueID)
}

func (s *SQLiteStore) ListAllRatings(ctx context.Context) ([]futsal.Rating, error) {
	return queryRatings(ctx, s.db, ratingSelect+` ORDER BY r.created_at DESC, r.id DESC`)
}

func (s *SQLiteStore) UserRating(ctx context.Context, userID, venueID int64) (futsal.Rating, error) {
	r, err := scanRating(s.db.QueryRowContext(ctx, ratingSelect+`
		WHERE r.user_id = ? AND r.venue_id = ?
	`, userID, venueID))
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	return r, err
}

// DeleteRating returns the removed rating.
func (s *SQLiteStore) DeleteRating(ctx context.Context, id int64) (futsal.Rating, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return futsal.Rating{}, err
	}
	defer tx.Rollback()

	r, err := scanRating(tx.QueryRowContext(ctx, ratingSelect+` WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	if err != nil {
		return r, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ratings WHERE id = ?`, id); err != nil {
		return r, err
	}
	return r, tx.Commit()
}

// --- photos ---

const photoColumns = `id, venue_id, url, file_name, caption, is_primary, created_at`

func scanPhoto(row rowScanner) (futsal.Photo, error) {
	var p futsal.Photo
	err := row.Scan(&p.ID, &p.VenueID, &p.URL, &p.FileName, &p.Caption, &p.IsPrimary, &p.CreatedAt)
	return p, err
}

// AddPhotos inserts a batch. The first photo becomes primary only when the
// venue has none yet.
func (s *SQLiteStore) AddPhotos(ctx context.Context, venueID int64, photos []NewPhoto) ([]futsal.Photo, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var venueExists, hasPrimary bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM venues WHERE id = ?),
		       EXISTS (SELECT 1 FROM venue_photos WHERE venue_id = ? AND is_primary = 1)
	`, venueID, venueID).Scan(&venueExists, &hasPrimary)
	if err != nil {
		return nil, err
	}
	if !venueExists {
		return nil, ErrNotFound
	}

	out := make([]futsal.Photo, 0, len(photos))
	for i, p := range photos {
		primary := !hasPrimary && i == 0
		added, err := scanPhoto(tx.QueryRowContext(ctx, `
			INSERT INTO venue_photos (venue_id, url, file_name, caption, is_primary)
			VALUES (?, ?, ?, ?, ?)
			RETURNING `+photoColumns,
			venueID, p.URL, p.FileName, p.Caption, primary))
		if err != nil {
			return nil, fmt.Errorf("inserting photo: %w", err)
		}
		out = append(out, added)
	}
	return out, tx.Commit()
}

// ListPhotos returns the primary photo first, then the rest oldest first.
func (s *SQLiteStore) ListPhotos(ctx context.Context, venueID int64) ([]futsal.Photo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+photoColumns+`
		FROM venue_photos
		WHERE venue_id = ?
		ORDER BY is_primary DESC, created_at, id
	`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := []futsal.Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (s *SQLiteStore) GetPhoto(ctx context.Context, id int64) (futsal.Photo, error) {
	p, err := scanPhoto(s.db.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM venue_photos WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

// SetPrimaryPhoto makes photoID the venue's only primary photo.
func (s *SQLiteStore) SetPrimaryPhoto(ctx context.Context, venueID, photoID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var owned bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM venue_photos WHERE id = ? AND venue_id = ?)
	`, photoID, venueID).Scan(&owned)
	if err != nil {
		return err
	}
	if !owned {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE venue_photos SET is_primary = (id = ?) WHERE venue_id = ?
	`, photoID, venueID); err != nil {
		return err
	}
	return tx.Commit()
}

// DeletePhoto removes the row and returns it. When the primary photo goes,
// the oldest remaining photo takes over.
func (s *SQLiteStore) DeletePhoto(ctx context.Context, id int64) (futsal.Photo, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return futsal.Photo{}, err
	}
	defer tx.Rollback()

	p, err := scanPhoto(tx.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM venue_photos WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM venue_photos WHERE id = ?`, id); err != nil {
		return p, err
	}
	if p.IsPrimary {
		if _, err := tx.ExecContext(ctx, `
			UPDATE venue_photos SET is_primary = 1
			WHERE id = (
				SELECT id FROM venue_photos WHERE venue_id = ?
				ORDER BY created_at, id LIMIT 1
			)
		`, p.VenueID); err != nil {
			return p, err
		}
	}
	return p, tx.Commit()
}

// --- analytics ---

func (s *SQLiteStore) GeneralStats(ctx context.Context) (analytics.GeneralStats, error) {
	var st analytics.GeneralStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM venues),
			(SELECT COUNT(*) FROM users WHERE role = 'user'),
			(SELECT COUNT(*) FROM ratings),
			COALESCE((SELECT ROUND(AVG(rating), 1) FROM ratings), 0)
	`).Scan(&st.TotalVenues, &st.TotalUsers, &st.TotalReviews, &st.AvgRating)
	return st, err
}

// PopularVenues ranks rated venues by mean score, then by review count.
func (s *SQLiteStore) PopularVenues(ctx context.Context, limit int) ([]analytics.PopularVenue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, price_per_hour, ROUND(avg_rating, 1), review_count
		FROM venue_summaries
		WHERE review_count > 0
		ORDER BY avg_rating DESC, review_count DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []analytics.PopularVenue{}
	for rows.Next() {
		var v analytics.PopularVenue
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.PricePerHour, &v.AvgRating, &v.ReviewCount); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// RatingDistribution always returns one bucket per score.
func (s *SQLiteStore) RatingDistribution(ctx context.Context) ([]analytics.RatingBucket, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT rating, COUNT(*) FROM ratings GROUP BY rating`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	buckets := make([]analytics.RatingBucket, futsal.MaxScore-futsal.MinScore+1)
	for i := range buckets {
		buckets[i].Score = futsal.MinScore + i
	}
	for rows.Next() {
		var score, count int
		if err := rows.Scan(&score, &count); err != nil {
			return nil, err
		}
		if score >= futsal.MinScore && score <= futsal.MaxScore {
			buckets[score-futsal.MinScore].Count = count
		}
	}
	return buckets, rows.Err()
}

func monthsModifier(months int) string {
	return fmt.Sprintf("-%d months", max(months-1, 0))
}

func (s *SQLiteStore) RatingsPerMonth(ctx context.Context, months int) ([]analytics.MonthlyRatings, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(created_at, 1, 7) AS month, COUNT(*), ROUND(AVG(rating), 1)
		FROM ratings
		WHERE created_at >= date('now', 'start of month', ?)
		GROUP BY month
		ORDER BY month
	`, monthsModifier(months))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []analytics.MonthlyRatings{}
	for rows.Next() {
		var m analytics.MonthlyRatings
		if err := rows.Scan(&m.Month, &m.Count, &m.AvgRating); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RegistrationsPerMonth(ctx context.Context, months int) ([]analytics.MonthlyCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT substr(created_at, 1, 7) AS month, COUNT(*)
		FROM users
		WHERE role = 'user' AND created_at >= date('now', 'start of month', ?)
		GROUP BY month
		ORDER BY month
	`, monthsModifier(months))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []analytics.MonthlyCount{}
	for rows.Next() {
		var m analytics.MonthlyCount
		if err := rows.Scan(&m.Month, &m.Count); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RecentActivity(ctx context.Context, limit int) ([]analytics.Activity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, u.username, v.id, v.name, r.rating, r.review, r.created_at
		FROM ratings r
		JOIN users u ON u.id = r.user_id
		JOIN venues v ON v.id = r.venue_id
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []analytics.Activity{}
	for rows.Next() {
		var a analytics.Activity
		if err := rows.Scan(&a.RatingID, &a.Username, &a.VenueID, &a.VenueName, &a.Score, &a.Review, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
