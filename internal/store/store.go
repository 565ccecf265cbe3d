// Package store keeps a privacy-conscious log of contact form attempts in
// sqlite. Only a salted hash of the sender's IP is stored, never the message.
package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/artemstakhov/portfolio/internal/contact"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout sorts lexically, so range filters work on the TEXT column.
const timeLayout = "2006-01-02T15:04:05.000Z"

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Open opens (creating if needed) the sqlite database at path and applies
// pending migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// sqlite allows one writer; an in-memory database lives on one connection.
	db.SetMaxOpenConns(1)

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

// Migrate applies all embedded migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record implements contact.Recorder.
func (s *Store) Record(ctx context.Context, a contact.Attempt) error {
	types := make([]string, 0, len(a.FieldTypes))
	for _, t := range a.FieldTypes {
		types = append(types, string(t))
	}

	at := a.At
	if at.IsZero() {
		at = s.now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, hashed_ip, locale, outcome, field_types, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.Origin, a.Locale, string(a.Outcome), strings.Join(types, ","), a.Err, formatTime(at))
	if err != nil {
		return fmt.Errorf("failed to insert submission: %w", err)
	}
	return nil
}

// Cleanup removes records older than maxAge and returns how many went.
func (s *Store) Cleanup(ctx context.Context, maxAge time.Duration) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM submissions WHERE created_at < ?`, formatTime(s.now().Add(-maxAge)))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old submissions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
