package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pastplaces/api/internal/database"
	"github.com/pastplaces/api/internal/migrations"
)

// testDate is "today" for every test: the fixed clock below always reports
// noon UTC on this date.
const testDate = "2026-08-30"

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testClock(t *testing.T) Clock {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, testDate+"T12:00:00Z")
	if err != nil {
		t.Fatalf("parsing test clock: %v", err)
	}
	return fixedClock{t: ts}
}

// setupStore opens a file-backed test database so concurrent requests share
// one database (":memory:" gives each pooled connection its own).
func setupStore(t *testing.T) (*SQLiteStore, *sql.DB) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := migrations.Run(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return NewSQLiteStore(db), db
}

// demoPhotos are the five reference answers used across the tests.
var demoPhotos = []Photo{
	{Lat: 48.8584, Lon: 2.2945, Year: intp(1889), URL: "https://img.test/eiffel.jpg", Place: "Paris"},
	{Lat: 40.6892, Lon: -74.0445, Year: intp(1905), URL: "https://img.test/liberty.jpg", Place: "New York"},
	{Lat: -22.9519, Lon: -43.2105, Year: intp(1931), URL: "https://img.test/redentor.jpg", Place: "Rio de Janeiro"},
	{Lat: 51.5007, Lon: -0.1246, Year: intp(1922), URL: "https://img.test/bigben.jpg", Place: "London"},
	{Lat: 35.6586, Lon: 139.7454, Year: intp(1958), URL: "https://img.test/tokyotower.jpg", Place: "Tokyo"},
}

// seedDailySet creates a published 5-photo set for date and returns it with
// the created photo ids in position order.
func seedDailySet(t *testing.T, store *SQLiteStore, date string) DailySet {
	t.Helper()
	ctx := context.Background()

	ids := make([]string, 0, len(demoPhotos))
	for _, p := range demoPhotos {
		created, err := store.CreatePhoto(ctx, p)
		if err != nil {
			t.Fatalf("creating photo: %v", err)
		}
		ids = append(ids, created.ID)
	}

	set, err := store.CreateDailySet(ctx, date, ids)
	if err != nil {
		t.Fatalf("creating daily set: %v", err)
	}
	if err := store.PublishDailySet(ctx, set.ID); err != nil {
		t.Fatalf("publishing daily set: %v", err)
	}
	set.IsPublished = true
	return set
}

func testRouter(t *testing.T, store *SQLiteStore, db *sql.DB) *chi.Mux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	addRoutes(r, logger, store, db, testClock(t), "")
	return r
}

// perfectGuesses guesses every photo's exact coordinates and year.
func perfectGuesses(set DailySet) []GuessInput {
	guesses := make([]GuessInput, len(set.PhotoIDs))
	for i, id := range set.PhotoIDs {
		p := demoPhotos[i]
		guesses[i] = GuessInput{
			PhotoID:     id,
			GuessedLat:  p.Lat,
			GuessedLon:  p.Lon,
			GuessedYear: p.Year,
		}
	}
	return guesses
}

func postSubmit(t *testing.T, r http.Handler, req SubmitRequest, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshaling request: %v", err)
	}

	httpReq := httptest.NewRequest(http.MethodPost, "/api/daily/submit", bytes.NewReader(body))
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding error response: %v", err)
	}
	return resp
}

func submissionCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM daily_submissions`).Scan(&count); err != nil {
		t.Fatalf("counting submissions: %v", err)
	}
	return count
}

// insertSubmission writes a leaderboard row directly, bypassing the handler,
// for tests that need exact scores and times.
func insertSubmission(t *testing.T, db *sql.DB, setID, date, deviceToken, nickname string, score, timeMs int, submittedAt string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(`
		INSERT INTO daily_submissions
			(daily_set_id, date_utc, device_token, nickname, total_score, total_time_ms, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, setID, date, deviceToken, nickname, score, timeMs, submittedAt).Scan(&id)
	if err != nil {
		t.Fatalf("inserting submission: %v", err)
	}
	return id
}
