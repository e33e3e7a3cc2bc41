package server

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned by InsertSubmission when the storage-level
	// uniqueness guard on (date, identity) rejects the row. It is the
	// canonical duplicate signal; no pre-check is consulted.
	ErrDuplicate = errors.New("duplicate submission")
)

// Photo is a catalog entry. Lat, Lon and Year are the reference answers.
type Photo struct {
	ID          string
	Lat         float64
	Lon         float64
	Year        *int
	URL         string
	Credit      string
	License     string
	Description string
	Place       string
}

// DailySet is the fixed group of photos assigned to one calendar date.
type DailySet struct {
	ID          string
	DateUTC     string
	IsPublished bool
	PhotoIDs    []string
}

// NewSubmission is a validated, scored attempt ready to persist. Exactly one
// of UserID and DeviceToken is set.
type NewSubmission struct {
	DailySetID  string
	DateUTC     string
	UserID      string
	DeviceToken string
	Nickname    string
	TotalScore  int
	TotalTimeMs int
}

// BoardEntry is one leaderboard row; Rank is assigned by position in the
// ranking order, not stored.
type BoardEntry struct {
	Rank        int    `json:"rank"`
	Nickname    string `json:"nickname"`
	TotalScore  int    `json:"totalScore"`
	TotalTimeMs int    `json:"totalTimeMs"`
	SubmittedAt string `json:"submittedAt"`
}

type Store interface {
	UserIDFromSession(ctx context.Context, token string) (string, error)

	DailySetByDate(ctx context.Context, dateUTC string) (DailySet, error)
	DailySetByID(ctx context.Context, id string) (DailySet, error)
	PhotosByIDs(ctx context.Context, ids []string) (map[string]Photo, error)

	// InsertSubmission writes one row and returns its server-assigned id and
	// timestamp. Returns ErrDuplicate if the identity already submitted for
	// the date.
	InsertSubmission(ctx context.Context, sub NewSubmission) (id int64, submittedAt string, err error)

	// Rank returns the 1-based rank a submission with the given score, time
	// and instant holds on the date: one plus the number of rows that beat
	// it under the strict (score, time, instant, id) order. beforeID bounds
	// the final id tie-break; a persisted row passes its own id, a potential
	// (unsaved) rank passes an id larger than any real one so that every
	// persisted row with the identical triple outranks the preview.
	Rank(ctx context.Context, dateUTC string, score, timeMs int, instant string, beforeID int64) (int, error)

	Leaderboard(ctx context.Context, dateUTC string, limit int) ([]BoardEntry, error)

	AdminByEmail(ctx context.Context, email string) (adminID, passwordHash string, err error)
	CreateAdminSession(ctx context.Context, adminID string) (string, error)
	DeleteAdminSession(ctx context.Context, sessionID string) error
	AdminFromSession(ctx context.Context, sessionID string) (adminSession, error)

	ListPhotos(ctx context.Context) ([]Photo, error)
	CreatePhoto(ctx context.Context, p Photo) (Photo, error)
	GetPhoto(ctx context.Context, id string) (Photo, error)
	UpdatePhoto(ctx context.Context, id string, p Photo) (Photo, error)
	DeletePhoto(ctx context.Context, id string) error
	PhotoInSet(ctx context.Context, photoID string) (bool, error)

	ListDailySets(ctx context.Context) ([]DailySetSummary, error)
	CreateDailySet(ctx context.Context, dateUTC string, photoIDs []string) (DailySet, error)
	DeleteDailySet(ctx context.Context, id string) error
	PublishDailySet(ctx context.Context, id string) error
	SetHasSubmissions(ctx context.Context, id string) (bool, error)
}

// DailySetSummary is the admin list view of a daily set.
type DailySetSummary struct {
	ID          string `json:"id"`
	DateUTC     string `json:"dateUtc"`
	IsPublished bool   `json:"isPublished"`
	PhotoCount  int    `json:"photoCount"`
	CreatedAt   string `json:"createdAt"`
}
