package server

import (
	"context"
	"database/sql"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// SeedDemo creates a demo admin, a small photo catalog, and a published
// daily set for today if the database is empty. Idempotent: does nothing
// once an admin exists. Development convenience only.
func SeedDemo(ctx context.Context, logger *slog.Logger, db *sql.DB, store Store, clk Clock) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("pastplaces-demo"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO admins (email, password_hash) VALUES (?, ?)
	`, "demo@pastplaces.dev", string(hash))
	if err != nil {
		return err
	}

	demoPhotos := []Photo{
		{Lat: 48.8584, Lon: 2.2945, Year: intp(1889), URL: "https://images.pastplaces.dev/demo/eiffel.jpg", Credit: "Library of Congress", License: "PD", Place: "Paris, France", Description: "Eiffel Tower under construction"},
		{Lat: 40.6892, Lon: -74.0445, Year: intp(1905), URL: "https://images.pastplaces.dev/demo/liberty.jpg", Credit: "NYPL", License: "PD", Place: "New York, USA", Description: "Statue of Liberty from the harbor"},
		{Lat: -22.9519, Lon: -43.2105, Year: intp(1931), URL: "https://images.pastplaces.dev/demo/redentor.jpg", Credit: "Arquivo Nacional", License: "PD", Place: "Rio de Janeiro, Brazil", Description: "Christ the Redeemer inauguration"},
		{Lat: 51.5007, Lon: -0.1246, Year: intp(1922), URL: "https://images.pastplaces.dev/demo/bigben.jpg", Credit: "Imperial War Museum", License: "PD", Place: "London, UK", Description: "Big Ben in fog"},
		{Lat: 35.6586, Lon: 139.7454, Year: intp(1958), URL: "https://images.pastplaces.dev/demo/tokyotower.jpg", Credit: "Mainichi", License: "PD", Place: "Tokyo, Japan", Description: "Tokyo Tower nearing completion"},
	}

	photoIDs := make([]string, 0, len(demoPhotos))
	for _, p := range demoPhotos {
		created, err := store.CreatePhoto(ctx, p)
		if err != nil {
			return err
		}
		photoIDs = append(photoIDs, created.ID)
	}

	set, err := store.CreateDailySet(ctx, today(clk), photoIDs)
	if err != nil {
		return err
	}
	if err := store.PublishDailySet(ctx, set.ID); err != nil {
		return err
	}

	logger.Info("demo data seeded", "daily_set", set.ID, "date", set.DateUTC)
	return nil
}

func intp(v int) *int { return &v }
