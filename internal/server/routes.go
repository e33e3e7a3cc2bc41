package server

import (
	"database/sql"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, store Store, db *sql.DB, clk Clock, spaDir string) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("PastPlaces API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, db))

	// Player routes. Identity comes from headers, not the path.
	r.Get("/api/daily", handleDailySet(store, clk))
	r.Get("/api/daily/{date}", handleDailySet(store, clk))
	r.Post("/api/daily/submit", handleSubmit(logger, store, clk))
	r.Get("/api/leaderboard", handleLeaderboard(store, clk))

	// Admin auth.
	r.Post("/api/admin/login", handleAdminLogin(store))
	r.Post("/api/admin/logout", handleAdminLogout(store))
	r.Get("/api/admin/me", handleAdminMe(store))

	// Admin catalog — photos and daily sets, behind the session cookie.
	r.Route("/api/admin/photos", func(r chi.Router) {
		r.Use(adminAuthMiddleware(store))
		r.Get("/", handleAdminListPhotos(store))
		r.Post("/", handleAdminCreatePhoto(store))
		r.Get("/{id}", handleAdminGetPhoto(store))
		r.Put("/{id}", handleAdminUpdatePhoto(store))
		r.Delete("/{id}", handleAdminDeletePhoto(store))
	})

	r.Route("/api/admin/daily-sets", func(r chi.Router) {
		r.Use(adminAuthMiddleware(store))
		r.Get("/", handleAdminListDailySets(store))
		r.Post("/", handleAdminCreateDailySet(store))
		r.Get("/{id}", handleAdminGetDailySet(store))
		r.Post("/{id}/publish", handleAdminPublishDailySet(store))
		r.Delete("/{id}", handleAdminDeleteDailySet(store))
	})

	if spaDir != "" {
		if info, err := os.Stat(spaDir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", spaDir)
			r.NotFound(handleSPA(spaDir))
		}
	}
}
