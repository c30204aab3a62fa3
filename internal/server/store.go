package server

import (
	"context"
	"errors"
	"time"

	"github.com/futsalmap/webgis/internal/analytics"
	"github.com/futsalmap/webgis/internal/futsal"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

// VenueInput is the writable part of a venue.
type VenueInput struct {
	Name         string  `json:"name"`
	Address      string  `json:"address"`
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	PricePerHour float64 `json:"pricePerHour"`
	Description  string  `json:"description"`
	Facilities   string  `json:"facilities"`
	Phone        string  `json:"phone"`
	OpeningHours string  `json:"openingHours"`
}

// NewPhoto is a stored file waiting for its database row.
type NewPhoto struct {
	URL      string
	FileName string
	Caption  string
}

type Store interface {
	ListVenues(ctx context.Context) ([]futsal.Venue, error)
	GetVenue(ctx context.Context, id int64) (futsal.Venue, error)
	CreateVenue(ctx context.Context, in VenueInput) (futsal.Venue, error)
	UpdateVenue(ctx context.Context, id int64, in VenueInput) (futsal.Venue, error)
	DeleteVenue(ctx context.Context, id int64) error
	PriceRange(ctx context.Context) (futsal.PriceRange, error)

	CreateUser(ctx context.Context, username, email, passwordHash string, role futsal.Role) (futsal.User, error)
	UserByUsername(ctx context.Context, username string) (futsal.User, string, error)
	CreateSession(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	UserFromSession(ctx context.Context, sessionID string) (futsal.User, error)
	DeleteSession(ctx context.Context, sessionID string) error
	EnsureAdmin(ctx context.Context, username, email, passwordHash string) (bool, error)
	SetPassword(ctx context.Context, username, passwordHash string) error

	UpsertRating(ctx context.Context, userID, venueID int64, score int, review string) (futsal.Rating, bool, error)
	ListVenueRatings(ctx context.Context, venueID int64) ([]futsal.Rating, error)
	ListAllRatings(ctx context.Context) ([]futsal.Rating, error)
	UserRating(ctx context.Context, userID, venueID int64) (futsal.Rating, error)
	DeleteRating(ctx context.Context, id int64) (futsal.Rating, error)

	AddPhotos(ctx context.Context, venueID int64, photos []NewPhoto) ([]futsal.Photo, error)
	ListPhotos(ctx context.Context, venueID int64) ([]futsal.Photo, error)
	GetPhoto(ctx context.Context, id int64) (futsal.Photo, error)
	SetPrimaryPhoto(ctx context.Context, venueID, photoID int64) error
	DeletePhoto(ctx context.Context, id int64) (futsal.Photo, error)

	GeneralStats(ctx context.Context) (analytics.GeneralStats, error)
	PopularVenues(ctx context.Context, limit int) ([]analytics.PopularVenue, error)
	RatingDistribution(ctx context.Context) ([]analytics.RatingBucket, error)
	RatingsPerMonth(ctx context.Context, months int) ([]analytics.MonthlyRatings, error)
	RegistrationsPerMonth(ctx context.Context, months int) ([]analytics.MonthlyCount, error)
	RecentActivity(ctx context.Context, limit int) ([]analytics.Activity, error)
}
