package server

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"github.com/pastplaces/api/internal/geo"
	"github.com/pastplaces/api/internal/scoring"
)

// dailySetSize is the fixed number of photos in every daily set.
const dailySetSize = 5

type GuessInput struct {
	PhotoID     string  `json:"photoId"`
	GuessedLat  float64 `json:"guessedLat"`
	GuessedLon  float64 `json:"guessedLon"`
	GuessedYear *int    `json:"guessedYear,omitempty"`
}

type SubmitRequest struct {
	DailySetID   string       `json:"dailySetId"`
	DateUTC      string       `json:"dateUtc,omitempty"`
	Nickname     string       `json:"nickname,omitempty"`
	ConsentGiven bool         `json:"consentGiven"`
	Guesses      []GuessInput `json:"guesses"`
	TotalTimeMs  int          `json:"totalTimeMs"`
}

// PhotoScoreResult is the per-photo breakdown returned for UI feedback. The
// time score is informational in the Daily Challenge; only the location score
// counts toward the total.
type PhotoScoreResult struct {
	PhotoID       string  `json:"photoId"`
	LocationScore int     `json:"locationScore"`
	TimeScore     *int    `json:"timeScore,omitempty"`
	TotalScore    int     `json:"totalScore"`
	KmError       float64 `json:"kmError"`
	YearError     *int    `json:"yearError,omitempty"`
	CorrectLat    float64 `json:"correctLat"`
	CorrectLon    float64 `json:"correctLon"`
	CorrectYear   *int    `json:"correctYear,omitempty"`
	URL           string  `json:"url"`
	Place         string  `json:"place,omitempty"`
	Description   string  `json:"description,omitempty"`
	Credit        string  `json:"credit,omitempty"`
}

type SubmitResponse struct {
	SubmissionID    *int64             `json:"submissionId"`
	TotalScore      int                `json:"totalScore"`
	TotalTimeMs     int                `json:"totalTimeMs"`
	LeaderboardRank *int               `json:"leaderboardRank"`
	PotentialRank   *int               `json:"potentialRank"`
	IsSaved         bool               `json:"isSaved"`
	Photos          []PhotoScoreResult `json:"photos"`
}

// handleSubmit runs the Daily Challenge pipeline: validate, score, persist
// behind the dedup guard, rank. A failure at any validation step leaves no
// row behind; an ephemeral caller is scored and previewed but never stored.
func handleSubmit(logger *slog.Logger, store Store, clk Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SubmitRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ident, err := resolveIdentity(r, store, req.ConsentGiven)
		if errors.Is(err, errNoSession) {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		if len(req.Guesses) != dailySetSize {
			writeCode(w, http.StatusBadRequest, codeInvalidGuessCount,
				"exactly 5 guesses are required")
			return
		}
		for _, g := range req.Guesses {
			if g.GuessedLat < -90 || g.GuessedLat > 90 || g.GuessedLon < -180 || g.GuessedLon > 180 {
				writeCode(w, http.StatusBadRequest, codeInvalidCoordinates,
					"guessed coordinates out of range")
				return
			}
		}
		if req.TotalTimeMs < 0 {
			writeError(w, http.StatusBadRequest, "totalTimeMs must be non-negative")
			return
		}

		set, err := store.DailySetByID(r.Context(), req.DailySetID)
		if errors.Is(err, ErrNotFound) || (err == nil && !set.IsPublished) {
			writeCode(w, http.StatusNotFound, codeSetNotFound, "daily set not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if req.DateUTC != "" && req.DateUTC != set.DateUTC {
			writeCode(w, http.StatusUnprocessableEntity, codeDateMismatch,
				"submitted date does not match the daily set")
			return
		}

		if !guessedIDsMatchSet(req.Guesses, set.PhotoIDs) {
			writeCode(w, http.StatusUnprocessableEntity, codePhotoIDMismatch,
				"guessed photo ids do not match the daily set")
			return
		}

		req.Nickname = strings.TrimSpace(req.Nickname)
		if ident.canPersist() && !validNickname(req.Nickname) {
			writeCode(w, http.StatusBadRequest, codeInvalidNickname,
				"nickname must be 3-20 letters, digits, spaces, hyphens or underscores")
			return
		}

		photos, err := store.PhotosByIDs(r.Context(), set.PhotoIDs)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		totalScore := 0
		results := make([]PhotoScoreResult, 0, len(req.Guesses))
		for _, g := range req.Guesses {
			photo, ok := photos[g.PhotoID]
			if !ok {
				// Membership already passed, so a missing photo means the
				// catalog and the set disagree. Server-side bug.
				logger.Error("daily set references unknown photo",
					"daily_set_id", set.ID, "photo_id", g.PhotoID)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			res := scoreGuess(g, photo)
			totalScore += res.TotalScore
			results = append(results, res)
		}

		resp := SubmitResponse{
			TotalScore:  totalScore,
			TotalTimeMs: req.TotalTimeMs,
			Photos:      results,
		}

		if !ident.canPersist() {
			// Preview only: rank as if saved right now, against committed
			// rows. Persisted rows with an identical (score, time, instant)
			// triple outrank the preview, hence the MaxInt64 id bound.
			rank, err := store.Rank(r.Context(), set.DateUTC, totalScore,
				req.TotalTimeMs, timestamp(clk), math.MaxInt64)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			resp.PotentialRank = &rank
			writeJSON(w, http.StatusOK, resp)
			return
		}

		id, submittedAt, err := store.InsertSubmission(r.Context(), NewSubmission{
			DailySetID:  set.ID,
			DateUTC:     set.DateUTC,
			UserID:      ident.UserID,
			DeviceToken: ident.DeviceToken,
			Nickname:    req.Nickname,
			TotalScore:  totalScore,
			TotalTimeMs: req.TotalTimeMs,
		})
		if errors.Is(err, ErrDuplicate) {
			writeCode(w, http.StatusConflict, codeDuplicateSubmission,
				"already submitted for this date")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		rank, err := store.Rank(r.Context(), set.DateUTC, totalScore,
			req.TotalTimeMs, submittedAt, id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		resp.SubmissionID = &id
		resp.LeaderboardRank = &rank
		resp.IsSaved = true
		writeJSON(w, http.StatusOK, resp)
	}
}

// guessedIDsMatchSet reports whether the guessed photo ids are exactly the
// set's membership: same cardinality, same elements, no duplicates.
func guessedIDsMatchSet(guesses []GuessInput, setIDs []string) bool {
	if len(guesses) != len(setIDs) {
		return false
	}
	members := make(map[string]bool, len(setIDs))
	for _, id := range setIDs {
		members[id] = true
	}
	for _, g := range guesses {
		if !members[g.PhotoID] {
			return false
		}
		delete(members, g.PhotoID)
	}
	return len(members) == 0
}

func scoreGuess(g GuessInput, photo Photo) PhotoScoreResult {
	km := geo.DistanceKm(g.GuessedLat, g.GuessedLon, photo.Lat, photo.Lon)
	locScore := scoring.LocationScore(km)

	res := PhotoScoreResult{
		PhotoID:       photo.ID,
		LocationScore: locScore,
		KmError:       km,
		CorrectLat:    photo.Lat,
		CorrectLon:    photo.Lon,
		CorrectYear:   photo.Year,
		URL:           photo.URL,
		Place:         photo.Place,
		Description:   photo.Description,
		Credit:        photo.Credit,
	}

	if g.GuessedYear != nil && photo.Year != nil {
		yearErr := *g.GuessedYear - *photo.Year
		ts := scoring.TimeScore(yearErr)
		res.YearError = &yearErr
		res.TimeScore = &ts
	}

	res.TotalScore = scoring.ModeDailyChallenge.PhotoTotal(locScore, res.TimeScore)
	return res
}
