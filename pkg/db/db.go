// Package db provides the persistence layer. It wraps a SQLite database used
// for two things: caching AcousticBrainz feature sets by MusicBrainz recording
// ID so repeated enrichment does not hit the rate-limited upstreams again, and
// a log of fan-out searches backing the history endpoint. Callers open a
// single DB with New and reuse it.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps a sql.DB connection and exposes helper methods for the
// application's persistence layer.
type DB struct {
	*sql.DB
}

// New opens the SQLite database located at path, creating the file and
// schema when needed. ":memory:" gives a private in-memory database.
func New(path string) (*DB, error) {
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		d.SetMaxOpenConns(1)
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS features (mbid TEXT PRIMARY KEY, data TEXT NOT NULL, fetched_at TIMESTAMP NOT NULL)`,
		`CREATE TABLE IF NOT EXISTS searches (id INTEGER PRIMARY KEY AUTOINCREMENT, request_id TEXT, query TEXT NOT NULL, queries TEXT NOT NULL, track_count INTEGER NOT NULL, failed INTEGER NOT NULL, created_at TIMESTAMP NOT NULL)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_created ON searches(created_at)`,
	}
	for _, s := range stmts {
		if _, err := d.Exec(s); err != nil {
			d.Close()
			return nil, fmt.Errorf("init db: %w", err)
		}
	}
	return &DB{d}, nil
}

// SaveFeatures stores the raw feature JSON for mbid, replacing any earlier
// copy.
func (db *DB) SaveFeatures(ctx context.Context, mbid string, data json.RawMessage) error {
	_, err := db.ExecContext(ctx, `INSERT INTO features(mbid, data, fetched_at) VALUES(?, ?, ?) ON CONFLICT(mbid) DO UPDATE SET data=excluded.data, fetched_at=excluded.fetched_at`, mbid, string(data), time.Now().UTC())
	return err
}

// GetFeatures returns the cached feature JSON for mbid. sql.ErrNoRows is
// returned when nothing is cached.
func (db *DB) GetFeatures(ctx context.Context, mbid string) (json.RawMessage, error) {
	var data string
	if err := db.QueryRowContext(ctx, `SELECT data FROM features WHERE mbid=?`, mbid).Scan(&data); err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// Search is one logged fan-out run.
type Search struct {
	ID         int64     `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	Query      string    `json:"query"`
	Queries    []string  `json:"queries"`
	TrackCount int       `json:"track_count"`
	Failed     int       `json:"failed"`
	CreatedAt  time.Time `json:"created_at"`
}

// LogSearch records a fan-out run. CreatedAt defaults to now.
func (db *DB) LogSearch(ctx context.Context, s Search) error {
	queries, err := json.Marshal(s.Queries)
	if err != nil {
		return err
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	_, err = db.ExecContext(ctx, `INSERT INTO searches(request_id, query, queries, track_count, failed, created_at) VALUES(?, ?, ?, ?, ?, ?)`,
		s.RequestID, s.Query, string(queries), s.TrackCount, s.Failed, s.CreatedAt.UTC())
	return err
}

// RecentSearches returns up to limit searches, newest first.
func (db *DB) RecentSearches(ctx context.Context, limit int) ([]Search, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, request_id, query, queries, track_count, failed, created_at FROM searches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []Search{}
	for rows.Next() {
		var (
			s       Search
			queries string
		)
		if err := rows.Scan(&s.ID, &s.RequestID, &s.Query, &queries, &s.TrackCount, &s.Failed, &s.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(queries), &s.Queries); err != nil {
			return nil, fmt.Errorf("decode queries for search %d: %w", s.ID, err)
		}
		res = append(res, s)
	}
	return res, rows.Err()
}

// QueryCount represents how often a user query was searched.
type QueryCount struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// TopQueriesSince returns the most searched queries since the provided time.
func (db *DB) TopQueriesSince(ctx context.Context, since time.Time, limit int) ([]QueryCount, error) {
	rows, err := db.QueryContext(ctx, `SELECT query, COUNT(*) c FROM searches WHERE created_at>=? GROUP BY query ORDER BY c DESC, query LIMIT ?`, since.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []QueryCount{}
	for rows.Next() {
		var qc QueryCount
		if err := rows.Scan(&qc.Query, &qc.Count); err != nil {
			return nil, err
		}
		res = append(res, qc)
	}
	return res, rows.Err()
}
