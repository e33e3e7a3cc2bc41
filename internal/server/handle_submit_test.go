package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
)

func TestSubmitPerfectScore(t *testing.T) {
	store, db := setupStore(t)
	set := seedDailySet(t, store, testDate)
	r := testRouter(t, store, db)

	w := postSubmit(t, r, SubmitRequest{
		DailySetID:   set.ID,
		Nickname:     "Maria",
		ConsentGiven: true,
		Guesses:      perfectGuesses(set),
		TotalTimeMs:  95000,
	}, map[string]string{"X-Device-Token": "device-1"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp SubmitResponse
	json.NewDecoder(w.Body).Decode(&resp)

	if !resp.IsSaved || resp.SubmissionID == nil {
		t.Fatalf("expected a saved submission, got %+v", resp)
	}
	if resp.TotalScore != 50000 {
		t.Errorf("totalScore = %d, want 50000", resp.TotalScore)
	}
	if resp.LeaderboardRank == nil || *resp.LeaderboardRank != 1 {
		t.Errorf("leaderboardRank = %v, want 1", resp.LeaderboardRank)
	}
	if resp.PotentialRank != nil {
		t.Errorf("potentialRank should be nil for a saved submission, got %v", *resp.PotentialRank)
	}
	if len(resp.Photos) != 5 {
		t.Fatalf("expected 5 photo results, got %d", len(resp.Photos))
	}
	for _, p := range resp.Photos {
		if p.LocationScore != 10000 {
			t.Errorf("photo %s locationScore = %d, want 10000", p.PhotoID, p.LocationScore)
		}
		if p.KmError != 0 {
			t.Errorf("photo %s kmError = %f, want 0", p.PhotoID, p.KmError)
		}
		// Time score is computed for feedback but never summed into the
		// daily challenge total.
		if p.TimeScore == nil || *p.TimeScore != 10000 {
			t.Errorf("photo %s timeScore = %v, want 10000", p.PhotoID, p.TimeScore)
		}
		if p.TotalScore != 10000 {
			t.Errorf("photo %s totalScore = %d, want location-only 10000", p.PhotoID, p.TotalScore)
		}
	}
}

func TestSubmitWrongGuessCount(t *testing.T) {
	store, db := setupStore(t)
	set := seedDailySet(t, store, testDate)
	r := testRouter(t, store, db)

	w := postSubmit(t, r, SubmitRequest{
		DailySetID:   set.ID,
		Nickname:     "Maria",
		ConsentGiven: true,
		Guesses:      perfectGuesses(set)[:4],
	}, map[string]string{"X-Device-Token": "device-1"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != codeInvalidGuessCount {
		t.Errorf("code = %q, want %q", resp.Code, codeInvalidGuessCount)
	}
	if n := submissionCount(t, db); n != 0 {
		t.Errorf("expected no persisted rows, got %d", n)
	}
}

func TestSubmitForeignPhotoID(t *testing.T) {
	store, db := setupStore(t)
	set := seedDailySet(t, store, testDate)
	r := testRouter(t, store, db)

	guesses := perfectGuesses(set)
	guesses[2].PhotoID = "not-in-the-set"

	w := postSubmit(t, r, SubmitRequest{
		DailySetID:   set.ID,
		Nickname:     "Maria",
		ConsentGiven: true,
		Guesses:      guesses,
	}, map[string]string{"X-Device-Token": "device-1"})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if resp := decodeError(t, w); resp.Code != codePhotoIDMismatch {
		t.Errorf("code = %q, want %q", resp.Code, codePhotoIDMismatch)
	}
	if n := submissionCount(t, db); n != 0 {
		t.Errorf("expected no persisted rows, got %d", n)
	}
}

func TestSubmitDuplicatedPhotoID(t *testing.T) {
	store, db := setupStore(t)
	set := seedDailySet(t, store, testDate)
	r := testRouter(t, store, db)

	// Same cardinality, but one member repeated and one missing.
	guesses := perfectGuesses(set)
	guesses[4].PhotoID = guesses[0].PhotoID

	w := postSubmit(t, r, SubmitRequest{
		DailySetID:   set.ID,
		Nickname:     "Maria",
		ConsentGiven: true,
		Guesses:      guesses,
	}, map[string]string{"X-Device-Token": "device-1"})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != codePhotoIDMismatch {
		t.Errorf("code = %q, want %q", resp.Code, codePhotoIDMismatch)
	}
}

func TestSubmitInvalidNickname(t *testing.T) {
	store, db := setupStore(t)
	set := seedDailySet(t, store, testDate)
	r := testRouter(t, store, db)

	for _, nickname := range []string{"", "ab", "way-too-long-nickname-here", "bad!chars"} {
		w := postSubmit(t, r, SubmitRequest{
			DailySetID:   set.ID,
			Nickname:     nickname,
			ConsentGiven: true,
			Guesses:      perfectGuesses(set),
		}, map[string]string{"X-Device-Token": "device-1"})

		if w.Code != http.StatusBadRequest {
			t.Fatalf("nickname %q: expected 400, got %d", nickname, w.Code)
		}
		if resp := decodeError(t, w); resp.Code != codeInvalidNickname {
			t.Errorf("nickname %q: code = %q, want %q", nickname, resp.Code, codeInvalidNickname)
		}
	}
}

func TestSubmitCoordinatesOutOfRange(t *testing.T) {
	store, db := setupStore(t)
	set := seedDailySet(t, store, testDate)
	r := testRouter(t, store, db)

	guesses := perfectGuesses(set)
	guesses[0].GuessedLon = 181

	w := postSubmit(t, r, SubmitRequest{
		DailySetID:   set.ID,
		Nickname:     "Maria",
		ConsentGiven: true,
		Guesses:      guesses,
	}, map[string]string{"X-Device-Token": "device-1"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != codeInvalidCoordinates {
		t.Errorf("code = %q, want %q", resp.Code, codeInvalidCoordinates)
	}
}

func TestSubmitUnknownOrUnpublishedSet(t *testing.T) {
	store, db := setupStore(t)
	set := seedDailySet(t, store, testDate)
	r := testRouter(t, store, db)

	// Unknown set id.
	w := postSubmit(t, r, SubmitRequest{
		DailySetID:   "no-such-set",
		Nickname:     "Maria",
		ConsentGiven: true,
		Guesses:      perfectGuesses(set),
	}, map[string]string{"X-Device-Token": "device-1"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown set: expected 404, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != codeSetNotFound {
		t.Errorf("code = %q, want %q", resp.Code, codeSetNotFound)
	}

	// Draft (unpublished) set.
	ctx := context.Background()
	draftIDs := make([]string, 0, dailySetSize)
	for i := 0; i < dailySetSize; i++ {
		p, err := store.CreatePhoto(ctx, Photo{Lat: 1, Lon: 1, URL: "https://img.test/d.jpg"})
		if err != nil {
			t.Fatalf("creating photo: %v", err)
		}
		draftIDs = append(draftIDs, p.ID)
	}
	draft, err := store.CreateDailySet(ctx, "2026-09-01", draftIDs)
	if err != nil {
		t.Fatalf("creating draft set: %v", err)
	}

	guesses := make([]GuessInput, 5)
	for i, id := range draftIDs {
		guesses[i] = GuessInput{PhotoID: id, GuessedLat: 1, GuessedLon: 1}
	}
	w = postSubmit(t, r, SubmitRequest{
		DailySetID:   draft.ID,
		Nickname:     "Maria",
		ConsentGiven: true,
		Guesses:      guesses,
	}, map[string]string{"X-Device-Token": "device-1"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("draft set: expected 404, got %d", w.Code)
	}
}

func TestSubmitDateMismatch(t *testing.T) {
	store, db := setupStore(t)
	set := seedDailySet(t, store, testDate)
	r := testRouter(t, store, db)

	w := postSubmit(t, r, SubmitRequest{
		DailySetID:   set.ID,
		DateUTC:      "2020-01-01",
		Nickname:     "Maria",
		ConsentGiven: true,
		Guesses:      perfectGuesses(set),
	}, map[string]string{"X-Device-Token": "device-1"})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != codeDateMismatch {
		t.Errorf("code = %q, want %q", resp.Code, codeDateMismatch)
	}
}

func TestSubmitDuplicateRejected(t *testing.T) {
	store, db := setupStore(t)
	set := seedDailySet(t, store, testDate)
	r := testRouter(t, store, db)

	req := SubmitRequest{
		DailySetID:   set.ID,
		Nickname:     "Maria",
		ConsentGiven: true,
		Guesses:      perfectGuesses(set),
		TotalTimeMs:  90000,
	}
	headers := map[string]string{"X-Device-Token": "device-1"}

	if w := postSubmit(t, r, req, headers); w.Code != http.StatusOK {
		t.Fatalf("first submit: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w := postSubmit(t, r, req, headers)
	if w.Code != http.StatusConflict {
		t.Fatalf("second submit: expected 409, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != codeDuplicateSubmission {
		t.Errorf("code = %q, want %q", resp.Code, codeDuplicateSubmission)
	}
	if n := submissionCount(t, db); n != 1 {
		t.Errorf("expected exactly 1 row, got %d", n)
	}
}

func TestSubmitConcurrentDuplicates(t *testing.T) {
	store, db := setupStore(t)
	set := seedDailySet(t, store, testDate)
	r := testRouter(t, store, db)

	const attempts = 20
	var saved, duplicate atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			w := postSubmit(t, r, SubmitRequest{
				DailySetID:   set.ID,
				Nickname:     "Maria",
				ConsentGiven: true,
				Guesses:      perfectGuesses(set),
				TotalTimeMs:  90000,
			}, map[string]string{"X-Device-Token": "shared-device"})

			switch w.Code {
			case http.StatusOK:
				saved.Add(1)
			case http.StatusConflict:
				duplicate.Add(1)
			default:
				t.Errorf("unexpected status %d: %s", w.Code, w.Body.String())
			}
		}()
	}
	wg.Wait()

	if saved.Load() != 1 {
		t.Errorf("expected exactly 1 saved submission, got %d", saved.Load())
	}
	if duplicate.Load() != attempts-1 {
		t.Errorf("expected %d duplicates, got %d", attempts-1, duplicate.Load())
	}
	if n := submissionCount(t, db); n != 1 {
		t.Errorf("expected exactly 1 row in storage, got %d", n)
	}
}

func TestSubmitEphemeralPotentialRank(t *testing.T) {
	store, db := setupStore(t)
	set := seedDailySet(t, store, testDate)
	r := testRouter(t, store, db)

	// Two persisted rivals: one faster perfect run, one weaker run.
	insertSubmission(t, db, set.ID, testDate, "rival-1", "Speedy", 50000, 60000, testDate+"T10:00:00.000Z")
	insertSubmission(t, db, set.ID, testDate, "rival-2", "Slowpoke", 30000, 60000, testDate+"T10:05:00.000Z")

	// No device token, no consent: scored, previewed, never stored.
	w := postSubmit(t, r, SubmitRequest{
		DailySetID:  set.ID,
		Guesses:     perfectGuesses(set),
		TotalTimeMs: 120000,
	}, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp SubmitResponse
	json.NewDecoder(w.Body).Decode(&resp)

	if resp.IsSaved || resp.SubmissionID != nil {
		t.Fatalf("ephemeral submission must not be saved: %+v", resp)
	}
	if resp.LeaderboardRank != nil {
		t.Errorf("leaderboardRank should be nil, got %d", *resp.LeaderboardRank)
	}
	// Equal score but slower than rival-1, better than rival-2.
	if resp.PotentialRank == nil || *resp.PotentialRank != 2 {
		t.Errorf("potentialRank = %v, want 2", resp.PotentialRank)
	}
	if n := submissionCount(t, db); n != 2 {
		t.Errorf("expected the 2 seeded rows only, got %d", n)
	}
}

func TestSubmitConsentWithoutTokenIsEphemeral(t *testing.T) {
	store, db := setupStore(t)
	set := seedDailySet(t, store, testDate)
	r := testRouter(t, store, db)

	w := postSubmit(t, r, SubmitRequest{
		DailySetID:   set.ID,
		ConsentGiven: true,
		Guesses:      perfectGuesses(set),
	}, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp SubmitResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.IsSaved {
		t.Error("consent without a device token must not persist")
	}
	if n := submissionCount(t, db); n != 0 {
		t.Errorf("expected no rows, got %d", n)
	}
}

func TestSubmitAuthenticatedUser(t *testing.T) {
	store, db := setupStore(t)
	set := seedDailySet(t, store, testDate)
	r := testRouter(t, store, db)

	if _, err := db.Exec(`INSERT INTO user_sessions (token, user_id) VALUES ('tok-1', 'user-42')`); err != nil {
		t.Fatalf("seeding session: %v", err)
	}

	w := postSubmit(t, r, SubmitRequest{
		DailySetID:  set.ID,
		Nickname:    "Carlos",
		Guesses:     perfectGuesses(set),
		TotalTimeMs: 80000,
	}, map[string]string{"Authorization": "Bearer tok-1"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp SubmitResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.IsSaved {
		t.Fatal("authenticated submission should be saved")
	}

	var userID string
	if err := db.QueryRow(`SELECT user_id FROM daily_submissions WHERE id = ?`, *resp.SubmissionID).Scan(&userID); err != nil {
		t.Fatalf("reading row: %v", err)
	}
	if userID != "user-42" {
		t.Errorf("user_id = %q, want user-42", userID)
	}
}

func TestSubmitBadBearerToken(t *testing.T) {
	store, db := setupStore(t)
	set := seedDailySet(t, store, testDate)
	r := testRouter(t, store, db)

	w := postSubmit(t, r, SubmitRequest{
		DailySetID: set.ID,
		Nickname:   "Carlos",
		Guesses:    perfectGuesses(set),
	}, map[string]string{"Authorization": "Bearer bogus"})

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
