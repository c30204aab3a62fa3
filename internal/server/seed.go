package server

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin creates the bootstrap admin account if the username is free.
func SeedAdmin(ctx context.Context, logger *slog.Logger, store Store, username, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	created, err := store.EnsureAdmin(ctx, username, email, string(hash))
	if err != nil {
		return fmt.Errorf("creating admin: %w", err)
	}
	if created {
		logger.Info("admin account created", "username", username)
	}
	return nil
}

var demoVenues = []VenueInput{
	{
		Name: "Garuda Futsal", Address: "Jl. Khatib Sulaiman No. 12, Padang",
		Lat: -0.9005, Lon: 100.3512, PricePerHour: 120000,
		Description: "Two indoor courts with synthetic turf.",
		Facilities:  "Parking, Canteen, Changing room", Phone: "0751-441122", OpeningHours: "08:00-23:00",
	},
	{
		Name: "Bintang Futsal Air Tawar", Address: "Jl. Prof. Dr. Hamka, Air Tawar, Padang",
		Lat: -0.8953, Lon: 100.3498, PricePerHour: 150000,
		Description: "Vinyl court near the university campus.",
		Facilities:  "Parking, Shower, Mushola", Phone: "0751-7055123", OpeningHours: "09:00-24:00",
	},
	{
		Name: "Arena Sport Center", Address: "Jl. Veteran No. 45, Padang",
		Lat: -0.9381, Lon: 100.3602, PricePerHour: 90000,
		Description: "Budget court in the city centre.",
		Facilities:  "Parking, Canteen", Phone: "0812-6655-4433", OpeningHours: "07:00-22:00",
	},
	{
		Name: "Champion Futsal Tabing", Address: "Jl. Adinegoro, Tabing, Padang Utara",
		Lat: -0.8897, Lon: 100.3501, PricePerHour: 100000,
		Description: "Three courts with stands for spectators.",
		Facilities:  "Parking, Stands, Shower", Phone: "0813-7412-9900", OpeningHours: "08:00-23:00",
	},
	{
		Name: "Dynamo Futsal Lubuk Begalung", Address: "Jl. By Pass, Lubuk Begalung, Padang",
		Lat: -0.9731, Lon: 100.4121, PricePerHour: 75000,
		Description: "Outdoor court with floodlights.",
		Facilities:  "Parking", Phone: "0852-6311-2200", OpeningHours: "15:00-23:00",
	},
}

// SeedDemoVenues inserts a handful of Padang venues when none exist.
func SeedDemoVenues(ctx context.Context, logger *slog.Logger, store Store) error {
	existing, err := store.ListVenues(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, v := range demoVenues {
		if _, err := store.CreateVenue(ctx, v); err != nil {
			return fmt.Errorf("seeding %s: %w", v.Name, err)
		}
	}
	logger.Info("demo venues seeded", "count", len(demoVenues))
	return nil
}
