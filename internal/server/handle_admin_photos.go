package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// AdminPhotoRequest is the create/update body for catalog photos. URL points
// at externally hosted imagery; this backend never handles files.
type AdminPhotoRequest struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Year        *int    `json:"year,omitempty"`
	URL         string  `json:"url"`
	Credit      string  `json:"credit,omitempty"`
	License     string  `json:"license,omitempty"`
	Description string  `json:"description,omitempty"`
	Place       string  `json:"place,omitempty"`
}

type AdminPhotoResponse struct {
	ID          string  `json:"id"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	Year        *int    `json:"year,omitempty"`
	URL         string  `json:"url"`
	Credit      string  `json:"credit,omitempty"`
	License     string  `json:"license,omitempty"`
	Description string  `json:"description,omitempty"`
	Place       string  `json:"place,omitempty"`
}

func (req *AdminPhotoRequest) validate() string {
	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" {
		return "url is required"
	}
	if req.Lat < -90 || req.Lat > 90 {
		return "lat must be within [-90, 90]"
	}
	if req.Lon < -180 || req.Lon > 180 {
		return "lon must be within [-180, 180]"
	}
	return ""
}

func (req AdminPhotoRequest) photo() Photo {
	return Photo{
		Lat:         req.Lat,
		Lon:         req.Lon,
		Year:        req.Year,
		URL:         req.URL,
		Credit:      req.Credit,
		License:     req.License,
		Description: req.Description,
		Place:       req.Place,
	}
}

func photoResponse(p Photo) AdminPhotoResponse {
	return AdminPhotoResponse{
		ID:          p.ID,
		Lat:         p.Lat,
		Lon:         p.Lon,
		Year:        p.Year,
		URL:         p.URL,
		Credit:      p.Credit,
		License:     p.License,
		Description: p.Description,
		Place:       p.Place,
	}
}

func handleAdminListPhotos(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photos, err := store.ListPhotos(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		resp := make([]AdminPhotoResponse, 0, len(photos))
		for _, p := range photos {
			resp = append(resp, photoResponse(p))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleAdminCreatePhoto(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminPhotoRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		p, err := store.CreatePhoto(r.Context(), req.photo())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusCreated, photoResponse(p))
	}
}

func handleAdminGetPhoto(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := store.GetPhoto(r.Context(), chi.URLParam(r, "id"))
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "photo not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, photoResponse(p))
	}
}

func handleAdminUpdatePhoto(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AdminPhotoRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if msg := req.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		p, err := store.UpdatePhoto(r.Context(), chi.URLParam(r, "id"), req.photo())
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "photo not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeJSON(w, http.StatusOK, photoResponse(p))
	}
}

func handleAdminDeletePhoto(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		inSet, err := store.PhotoInSet(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if inSet {
			writeError(w, http.StatusConflict, "photo belongs to a daily set")
			return
		}

		err = store.DeletePhoto(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, http.StatusNotFound, "photo not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
