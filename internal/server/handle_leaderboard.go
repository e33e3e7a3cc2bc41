package server

import (
	"net/http"
	"strconv"
	"time"
)

const (
	defaultBoardLimit = 100
	maxBoardLimit     = 1000
)

type LeaderboardResponse struct {
	DateUTC string       `json:"dateUtc"`
	Entries []BoardEntry `json:"entries"`
}

// handleLeaderboard returns the top-N submissions for a date, defaulting to
// today. Read-only; an empty board is a normal result, not an error.
func handleLeaderboard(store Store, clk Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			date = today(clk)
		} else if _, err := time.Parse("2006-01-02", date); err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		limit := defaultBoardLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 || n > maxBoardLimit {
				writeError(w, http.StatusBadRequest, "limit must be between 1 and 1000")
				return
			}
			limit = n
		}

		entries, err := store.Leaderboard(r.Context(), date, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, LeaderboardResponse{
			DateUTC: date,
			Entries: entries,
		})
	}
}
