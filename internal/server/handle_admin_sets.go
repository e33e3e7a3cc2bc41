package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type AdminDailySetRequest struct {
	DateUTC  string   `json:"dateUtc"`
	PhotoIDs []string `json:"photoIds"`
}

type AdminDailySetResponse struct {
	ID          string   `json:"id"`
	DateUTC     string   `json:"dateUtc"`
	IsPublished bool     `json:"isPublished"`
	PhotoIDs    []string `json:"photoIds"`
}

func handleAdminListDailySets(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sets, err := store.ListDailySets(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, sets)
	}
}

func handleAdminCreateDailySet(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminDailySetRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if _, err := time.Parse("2006-01-02", req.DateUTC); err != nil {
			writeError(w, http.StatusBadRequest, "dateUtc must be YYYY-MM-DD")
			return
		}
		if len(req.PhotoIDs) != dailySetSize {
			writeError(w, http.StatusBadRequest, "a daily set needs exactly 5 photos")
			return
		}
		seen := map[string]bool{}
		for _, id := range req.PhotoIDs {
			if seen[id] {
				writeError(w, http.StatusBadRequest, "duplicate photo id")
				return
			}
			seen[id] = true
		}

		// All photos must exist in the catalog.
		photos, err := store.PhotosByIDs(r.Context(), req.PhotoIDs)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if len(photos) != len(req.PhotoIDs) {
			writeError(w, http.StatusBadRequest, "unknown photo id")
			return
		}

		set, err := store.CreateDailySet(r.Context(), req.DateUTC, req.PhotoIDs)
		if errors.Is(err, ErrDuplicate) {
			writeError(w, http.StatusConflict, "a daily set already exists for this date")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusCreated, AdminDailySetResponse{
			ID:       set.ID,
			DateUTC:  set.DateUTC,
			PhotoIDs: set.PhotoIDs,
		})
	}
}

func handleAdminGetDailySet(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		set, err := store.DailySetByID(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "daily set not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, AdminDailySetResponse{
			ID:          set.ID,
			DateUTC:     set.DateUTC,
			IsPublished: set.IsPublished,
			PhotoIDs:    set.PhotoIDs,
		})
	}
}

func handleAdminPublishDailySet(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		set, err := store.DailySetByID(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "daily set not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if len(set.PhotoIDs) != dailySetSize {
			writeError(w, http.StatusConflict, "daily set must have exactly 5 photos to publish")
			return
		}

		if err := store.PublishDailySet(r.Context(), id); err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func handleAdminDeleteDailySet(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		has, err := store.SetHasSubmissions(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if has {
			writeError(w, http.StatusConflict, "daily set has submissions")
			return
		}

		err = store.DeleteDailySet(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "daily set not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
