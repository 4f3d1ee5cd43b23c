// Package sqlite persists the hotel ledger in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/neomorfeo/innledger/internal/domain"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store implements domain.Store using SQLite.
type Store struct {
	db *sql.DB
}

var _ domain.Store = (*Store)(nil)

// New opens a SQLite database, runs migrations, and returns a ready store.
// Pragmas are set through the DSN so that every pooled connection gets them.
func New(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", WithPragmas(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return NewFromDB(db)
}

// WithPragmas appends WAL mode, foreign keys and a busy timeout to dsn.
func WithPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// NewFromDB wraps an existing database connection, runs migrations, and returns a ready store.
// Use this when the *sql.DB has been pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*Store, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for use by other adapters (e.g., river).
func (s *Store) DB() *sql.DB {
	return s.db
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

// timeFormat is fixed width so stored instants compare lexicographically.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatDate(t time.Time) string {
	return domain.Date(t).Format(domain.DateLayout)
}

// decoder converts stored text back into domain values, keeping the first error.
type decoder struct {
	err error
}

func (d *decoder) time(s string) time.Time {
	t, err := time.Parse(timeFormat, s)
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("parsing time %q: %w", s, err)
	}
	return t
}

func (d *decoder) date(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// rangeClause adds a half-open filter on column when r is bounded.
func rangeClause(query, column string, r domain.TimeRange, args []any) (string, []any) {
	if !r.From.IsZero() {
		query += " AND " + column + " >= ?"
		args = append(args, formatTime(r.From))
	}
	if !r.To.IsZero() {
		query += " AND " + column + " < ?"
		args = append(args, formatTime(r.To))
	}
	return query, args
}

// queryAll runs query and scans every row with scan.
func queryAll[T any](ctx context.Context, db *sql.DB, scan func(scanner) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// queryOne scans a single row, mapping sql.ErrNoRows to a *NotFoundError.
func queryOne[T any](ctx context.Context, db *sql.DB, kind domain.EntityKind, id string, scan func(scanner) (T, error), query string, args ...any) (T, error) {
	v, err := scan(db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		var zero T
		return zero, &domain.NotFoundError{Kind: kind, ID: id}
	}
	return v, err
}

// execOne runs a tenant-scoped write and reports a *NotFoundError when no row matched.
func execOne(ctx context.Context, db *sql.DB, kind domain.EntityKind, id, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("writing %s: %w", kind, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return &domain.NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

// isUniqueViolation checks if a SQLite error is a UNIQUE constraint violation.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isForeignKeyViolation checks if a SQLite error is a FOREIGN KEY constraint violation.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}
