package database

import (
	"database/sql"
	"fmt"
	"time"

	"picframe/internal/database/migrations"
	"picframe/internal/frame"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteHistory implements frame.History on a SQLite database.
type SQLiteHistory struct {
	db   *sql.DB
	path string
}

var _ frame.History = (*SQLiteHistory)(nil)

// NewSQLiteHistory opens the database at path and brings its schema up to date.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteHistory(path string) (*SQLiteHistory, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history database: %w", err)
	}
	return &SQLiteHistory{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite database connection with appropriate PRAGMAs.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to :memory: gets its own empty database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	// The server and a cron-driven rotate may write at the same time.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// CheckMigrations reports whether the schema is at the latest version.
func (s *SQLiteHistory) CheckMigrations() error {
	return migrations.Check(s.db)
}

// Path returns the database location this history was opened with.
func (s *SQLiteHistory) Path() string {
	return s.path
}

func (s *SQLiteHistory) StartDisplayEvent(event *frame.DisplayEvent) error {
	var finished any
	if event.FinishedAt.Valid {
		finished = event.FinishedAt.Time.UTC()
	}
	_, err := s.db.Exec(
		`INSERT INTO display_events (id, filename, source, status, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Filename, event.Trigger, event.Status, event.Error, event.StartedAt.UTC(), finished,
	)
	if err != nil {
		return fmt.Errorf("inserting display event %s: %w", event.ID, err)
	}
	return nil
}

func (s *SQLiteHistory) FinishDisplayEvent(id string, status string, errMsg string, finishedAt time.Time) error {
	res, err := s.db.Exec(
		`UPDATE display_events SET status = ?, error = ?, finished_at = ? WHERE id = ?`,
		status, errMsg, finishedAt.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating display event %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating display event %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("display event %s: %w", id, frame.ErrNotFound)
	}
	return nil
}

// ListDisplayEvents returns up to limit events, newest first.
// A limit of zero or less returns every event.
func (s *SQLiteHistory) ListDisplayEvents(limit int) ([]*frame.DisplayEvent, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT id, filename, source, status, error, started_at, finished_at
		 FROM display_events
		 ORDER BY started_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying display events: %w", err)
	}
	defer rows.Close()

	var events []*frame.DisplayEvent
	for rows.Next() {
		e := &frame.DisplayEvent{}
		if err := rows.Scan(&e.ID, &e.Filename, &e.Trigger, &e.Status, &e.Error, &e.StartedAt, &e.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning display event: %w", err)
		}
		e.StartedAt = e.StartedAt.Local()
		if e.FinishedAt.Valid {
			e.FinishedAt.Time = e.FinishedAt.Time.Local()
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating display events: %w", err)
	}
	return events, nil
}

func (s *SQLiteHistory) Close() error {
	return s.db.Close()
}
