// Package archive keeps a local history of every posting that has been
// announced. The JSON seen file remains the durable dedup state; the
// archive is a best-effort record for browsing, so its failures are logged
// rather than escalated.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"usajobs-watch/internal/model"
)

// Store records accepted postings in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the archive database at dbPath and ensures the
// postings table exists.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening archive db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging archive db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS postings (
		fingerprint  TEXT PRIMARY KEY,
		posting_id   TEXT NOT NULL,
		title        TEXT NOT NULL,
		organization TEXT NOT NULL,
		location     TEXT NOT NULL,
		url          TEXT NOT NULL,
		grades       TEXT NOT NULL DEFAULT '[]',
		closes_at    TEXT NOT NULL DEFAULT '',
		first_seen   TEXT NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating postings table: %w", err)
	}

	return &Store{db: db}, nil
}

// Insert records a posting. Re-inserting the same fingerprint is a no-op.
func (s *Store) Insert(ctx context.Context, p model.Posting) error {
	gradesJSON, _ := json.Marshal(p.Grades)
	_, err := s.db.ExecContext(ctx, `
INSERT OR IGNORE INTO postings (fingerprint, posting_id, title, organization, location, url, grades, closes_at, first_seen)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Fingerprint, p.ID, p.Title, p.Organization, p.Location, p.URL,
		string(gradesJSON), p.ClosesAt, p.FirstSeen.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("archiving posting %s: %w", p.Fingerprint, err)
	}
	return nil
}

// Recent returns up to limit archived postings, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]model.Posting, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT fingerprint, posting_id, title, organization, location, url, grades, closes_at, first_seen
FROM postings
ORDER BY first_seen DESC
LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing archived postings: %w", err)
	}
	defer rows.Close()

	var out []model.Posting
	for rows.Next() {
		var p model.Posting
		var gradesJSON, firstSeen string
		if err := rows.Scan(&p.Fingerprint, &p.ID, &p.Title, &p.Organization, &p.Location, &p.URL, &gradesJSON, &p.ClosesAt, &firstSeen); err != nil {
			return nil, fmt.Errorf("scanning archived posting: %w", err)
		}
		_ = json.Unmarshal([]byte(gradesJSON), &p.Grades)
		p.FirstSeen, _ = time.Parse(time.RFC3339, firstSeen)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Count returns the number of archived postings.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM postings`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting archived postings: %w", err)
	}
	return n, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
