package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// PhotoCard is what a player sees before guessing: the image and its
// attribution, never the answer coordinates or year.
type PhotoCard struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	Credit  string `json:"credit,omitempty"`
	License string `json:"license,omitempty"`
}

type DailySetResponse struct {
	ID      string      `json:"id"`
	DateUTC string      `json:"dateUtc"`
	Photos  []PhotoCard `json:"photos"`
}

// handleDailySet serves the published set for the requested date (today when
// the path has no date).
func handleDailySet(store Store, clk Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := chi.URLParam(r, "date")
		if date == "" {
			date = today(clk)
		} else if _, err := time.Parse("2006-01-02", date); err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		set, err := store.DailySetByDate(r.Context(), date)
		if errors.Is(err, ErrNotFound) || (err == nil && !set.IsPublished) {
			writeCode(w, http.StatusNotFound, codeSetNotFound, "no daily set for this date")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		photos, err := store.PhotosByIDs(r.Context(), set.PhotoIDs)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		cards := make([]PhotoCard, 0, len(set.PhotoIDs))
		for _, id := range set.PhotoIDs {
			p, ok := photos[id]
			if !ok {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			cards = append(cards, PhotoCard{
				ID:      p.ID,
				URL:     p.URL,
				Credit:  p.Credit,
				License: p.License,
			})
		}

		writeJSON(w, http.StatusOK, DailySetResponse{
			ID:      set.ID,
			DateUTC: set.DateUTC,
			Photos:  cards,
		})
	}
}
