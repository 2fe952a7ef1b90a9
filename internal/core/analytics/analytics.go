// Package analytics records request history in a local SQLite database:
// which videos were fetched, what was extracted, and how requests failed.
package analytics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a request-history database. Safe for concurrent use; database/sql
// pools connections and SQLite serializes writers.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS video_requests (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	url         TEXT NOT NULL,
	platform    TEXT NOT NULL,
	title       TEXT,
	duration    REAL,
	status      TEXT NOT NULL,
	error       TEXT
);
CREATE TABLE IF NOT EXISTS extracted_frames (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id  INTEGER NOT NULL REFERENCES video_requests(id),
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	spec        TEXT NOT NULL,
	seconds     REAL NOT NULL,
	path        TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS user_analytics (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	client      TEXT NOT NULL,
	action      TEXT NOT NULL,
	detail      TEXT
);
CREATE INDEX IF NOT EXISTS idx_requests_platform ON video_requests(platform);
CREATE INDEX IF NOT EXISTS idx_requests_created ON video_requests(created_at);
`

// Request statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply analytics schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// RecordRequest logs one acquisition attempt and returns its row id for
// frame records to reference. errMsg is empty on success.
func (s *Store) RecordRequest(ctx context.Context, url, platform, title string, duration float64, errMsg string) (int64, error) {
	status := StatusOK
	var errCol sql.NullString
	if errMsg != "" {
		status = StatusFailed
		errCol = sql.NullString{String: errMsg, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO video_requests (url, platform, title, duration, status, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		url, platform, title, duration, status, errCol)
	if err != nil {
		return 0, fmt.Errorf("record request: %w", err)
	}
	return res.LastInsertId()
}

// RecordFrame logs one extracted frame under a request.
func (s *Store) RecordFrame(ctx context.Context, requestID int64, spec string, seconds float64, path string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO extracted_frames (request_id, spec, seconds, path) VALUES (?, ?, ?, ?)`,
		requestID, spec, seconds, path)
	if err != nil {
		return fmt.Errorf("record frame: %w", err)
	}
	return nil
}

// RecordAction logs a client-level event (page view, API call).
func (s *Store) RecordAction(ctx context.Context, client, action, detail string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_analytics (client, action, detail) VALUES (?, ?, ?)`,
		client, action, detail)
	if err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	return nil
}

// PlatformStat summarizes requests for one platform.
type PlatformStat struct {
	Platform string
	Requests int64
	Failed   int64
	Frames   int64
}

// PlatformStats aggregates per-platform request and frame counts.
func (s *Store) PlatformStats(ctx context.Context) ([]PlatformStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.platform,
		       COUNT(*),
		       SUM(CASE WHEN r.status = 'failed' THEN 1 ELSE 0 END),
		       (SELECT COUNT(*) FROM extracted_frames f
		        JOIN video_requests r2 ON r2.id = f.request_id
		        WHERE r2.platform = r.platform)
		FROM video_requests r
		GROUP BY r.platform
		ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, fmt.Errorf("platform stats: %w", err)
	}
	defer rows.Close()

	var out []PlatformStat
	for rows.Next() {
		var st PlatformStat
		if err := rows.Scan(&st.Platform, &st.Requests, &st.Failed, &st.Frames); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// RecentErrors returns the newest failed requests, most recent first.
func (s *Store) RecentErrors(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT platform || ': ' || COALESCE(error, '')
		FROM video_requests
		WHERE status = 'failed'
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent errors: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Prune deletes request, frame, and action rows older than the cutoff.
func (s *Store) Prune(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan).UTC().Format("2006-01-02 15:04:05")
	stmts := []string{
		`DELETE FROM extracted_frames WHERE request_id IN
		 (SELECT id FROM video_requests WHERE created_at < ?)`,
		`DELETE FROM video_requests WHERE created_at < ?`,
		`DELETE FROM user_analytics WHERE created_at < ?`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt, cutoff); err != nil {
			return fmt.Errorf("prune analytics: %w", err)
		}
	}
	return nil
}
