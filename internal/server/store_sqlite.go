package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// The leaderboard's strict total order, used identically by Rank and
// Leaderboard: higher score first, then faster time, then earlier submission
// instant, then insert order. Keeping the comparator in one place is what
// guarantees a submitter's reported rank matches their leaderboard position.
const (
	boardOrder = `total_score DESC, total_time_ms ASC, submitted_at ASC, id ASC`

	// higherRanked is the same order expressed as a predicate: does an
	// existing row beat a candidate (score, time, instant, id)?
	// Placeholders: score, score, time, score, time, instant, instant, id.
	higherRanked = `(
		total_score > ?
		OR (total_score = ? AND total_time_ms < ?)
		OR (total_score = ? AND total_time_ms = ?
			AND (submitted_at < ? OR (submitted_at = ? AND id < ?)))
	)`
)

func (s *SQLiteStore) UserIDFromSession(ctx context.Context, token string) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM user_sessions WHERE token = ?
	`, token).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return userID, err
}

func (s *SQLiteStore) DailySetByDate(ctx context.Context, dateUTC string) (DailySet, error) {
	return s.dailySet(ctx, `WHERE date_utc = ?`, dateUTC)
}

func (s *SQLiteStore) DailySetByID(ctx context.Context, id string) (DailySet, error) {
	return s.dailySet(ctx, `WHERE id = ?`, id)
}

func (s *SQLiteStore) dailySet(ctx context.Context, where string, arg any) (DailySet, error) {
	var set DailySet
	var published int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, date_utc, is_published FROM daily_sets `+where,
		arg).Scan(&set.ID, &set.DateUTC, &published)
	if errors.Is(err, sql.ErrNoRows) {
		return set, ErrNotFound
	}
	if err != nil {
		return set, err
	}
	set.IsPublished = published != 0

	rows, err := s.db.QueryContext(ctx, `
		SELECT photo_id FROM daily_set_photos
		WHERE daily_set_id = ? ORDER BY position
	`, set.ID)
	if err != nil {
		return set, err
	}
	defer rows.Close()

	for rows.Next() {
		var photoID string
		if err := rows.Scan(&photoID); err != nil {
			return set, err
		}
		set.PhotoIDs = append(set.PhotoIDs, photoID)
	}
	return set, rows.Err()
}

func (s *SQLiteStore) PhotosByIDs(ctx context.Context, ids []string) (map[string]Photo, error) {
	if len(ids) == 0 {
		return map[string]Photo{}, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lat, lon, year, url, credit, license, description, place
		FROM photos WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := make(map[string]Photo, len(ids))
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos[p.ID] = p
	}
	return photos, rows.Err()
}

func (s *SQLiteStore) InsertSubmission(ctx context.Context, sub NewSubmission) (int64, string, error) {
	var id int64
	var submittedAt string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO daily_submissions
			(daily_set_id, date_utc, user_id, device_token, nickname, total_score, total_time_ms)
		VALUES (?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?)
		RETURNING id, submitted_at
	`, sub.DailySetID, sub.DateUTC, sub.UserID, sub.DeviceToken,
		sub.Nickname, sub.TotalScore, sub.TotalTimeMs).Scan(&id, &submittedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, "", ErrDuplicate
		}
		return 0, "", err
	}
	return id, submittedAt, nil
}

func (s *SQLiteStore) Rank(ctx context.Context, dateUTC string, score, timeMs int, instant string, beforeID int64) (int, error) {
	var beaten int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM daily_submissions
		WHERE date_utc = ? AND `+higherRanked,
		dateUTC, score, score, timeMs, score, timeMs, instant, instant, beforeID,
	).Scan(&beaten)
	if err != nil {
		return 0, err
	}
	return beaten + 1, nil
}

func (s *SQLiteStore) Leaderboard(ctx context.Context, dateUTC string, limit int) ([]BoardEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT nickname, total_score, total_time_ms, submitted_at
		FROM daily_submissions
		WHERE date_utc = ?
		ORDER BY `+boardOrder+`
		LIMIT ?
	`, dateUTC, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []BoardEntry{}
	for rows.Next() {
		var e BoardEntry
		if err := rows.Scan(&e.Nickname, &e.TotalScore, &e.TotalTimeMs, &e.SubmittedAt); err != nil {
			return nil, err
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) AdminByEmail(ctx context.Context, email string) (string, string, error) {
	var adminID, passwordHash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM admins WHERE email = ?
	`, email).Scan(&adminID, &passwordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound
	}
	return adminID, passwordHash, err
}

func (s *SQLiteStore) CreateAdminSession(ctx context.Context, adminID string) (string, error) {
	var sessionID string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO admin_sessions (admin_id)
		VALUES (?)
		RETURNING id
	`, adminID).Scan(&sessionID)
	return sessionID, err
}

func (s *SQLiteStore) DeleteAdminSession(ctx context.Context, sessionID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM admin_sessions WHERE id = ?`, sessionID)
	return err
}

func (s *SQLiteStore) AdminFromSession(ctx context.Context, sessionID string) (adminSession, error) {
	var sess adminSession
	err := s.db.QueryRowContext(ctx, `
		SELECT a.id, a.email
		FROM admin_sessions s
		JOIN admins a ON a.id = s.admin_id
		WHERE s.id = ?
	`, sessionID).Scan(&sess.AdminID, &sess.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return adminSession{}, errNoAdminSession
	}
	return sess, err
}

func (s *SQLiteStore) ListPhotos(ctx context.Context) ([]Photo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lat, lon, year, url, credit, license, description, place
		FROM photos ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := []Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (s *SQLiteStore) CreatePhoto(ctx context.Context, p Photo) (Photo, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO photos (lat, lon, year, url, credit, license, description, place)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`, p.Lat, p.Lon, p.Year, p.URL, p.Credit, p.License, p.Description, p.Place).Scan(&p.ID)
	return p, err
}

func (s *SQLiteStore) GetPhoto(ctx context.Context, id string) (Photo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, lat, lon, year, url, credit, license, description, place
		FROM photos WHERE id = ?
	`, id)
	p, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Photo{}, ErrNotFound
	}
	return p, err
}

func (s *SQLiteStore) UpdatePhoto(ctx context.Context, id string, p Photo) (Photo, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE photos SET lat = ?, lon = ?, year = ?, url = ?, credit = ?,
			license = ?, description = ?, place = ?
		WHERE id = ?
	`, p.Lat, p.Lon, p.Year, p.URL, p.Credit, p.License, p.Description, p.Place, id)
	if err != nil {
		return Photo{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Photo{}, ErrNotFound
	}
	p.ID = id
	return p, nil
}

func (s *SQLiteStore) DeletePhoto(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) PhotoInSet(ctx context.Context, photoID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM daily_set_photos WHERE photo_id = ?
	`, photoID).Scan(&count)
	return count > 0, err
}

func (s *SQLiteStore) ListDailySets(ctx context.Context) ([]DailySetSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.date_utc, d.is_published,
			(SELECT COUNT(*) FROM daily_set_photos p WHERE p.daily_set_id = d.id),
			d.created_at
		FROM daily_sets d
		ORDER BY d.date_utc DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sets := []DailySetSummary{}
	for rows.Next() {
		var d DailySetSummary
		var published int
		if err := rows.Scan(&d.ID, &d.DateUTC, &published, &d.PhotoCount, &d.CreatedAt); err != nil {
			return nil, err
		}
		d.IsPublished = published != 0
		sets = append(sets, d)
	}
	return sets, rows.Err()
}

func (s *SQLiteStore) CreateDailySet(ctx context.Context, dateUTC string, photoIDs []string) (DailySet, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DailySet{}, err
	}
	defer tx.Rollback()

	var id string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO daily_sets (date_utc) VALUES (?)
		RETURNING id
	`, dateUTC).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return DailySet{}, ErrDuplicate
		}
		return DailySet{}, err
	}

	for i, photoID := range photoIDs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO daily_set_photos (daily_set_id, photo_id, position)
			VALUES (?, ?, ?)
		`, id, photoID, i+1)
		if err != nil {
			return DailySet{}, fmt.Errorf("adding photo %s: %w", photoID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return DailySet{}, err
	}
	return DailySet{ID: id, DateUTC: dateUTC, PhotoIDs: photoIDs}, nil
}

func (s *SQLiteStore) DeleteDailySet(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM daily_sets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) PublishDailySet(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE daily_sets SET is_published = 1 WHERE id = ?
	`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) SetHasSubmissions(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM daily_submissions WHERE daily_set_id = ?
	`, id).Scan(&count)
	return count > 0, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (Photo, error) {
	var p Photo
	var year sql.NullInt64
	err := row.Scan(&p.ID, &p.Lat, &p.Lon, &year, &p.URL, &p.Credit,
		&p.License, &p.Description, &p.Place)
	if err != nil {
		return p, err
	}
	if year.Valid {
		y := int(year.Int64)
		p.Year = &y
	}
	return p, nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The libsql driver exposes no typed error, so match the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
