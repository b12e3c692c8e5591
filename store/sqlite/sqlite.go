/*
Package sqlite provides a SQLite-backed implementation of saft.ExportStore.

PURPOSE:
  Records every export submission with its outcome. The form uses it to
  show the last generated file per document type; the history endpoints
  list and download it.

APPEND-ONLY:
  Submissions are facts. There are no UPDATE or DELETE statements on the
  exports table; a retried export is a new row with a new ID.

KEY TABLES:
  exports: One row per submission (succeeded or failed)

INDEXES:
  - idx_exports_type_status_created: LastExport lookup (hot path)
  - idx_exports_created: History listing

CONCURRENCY:
  Uses sync.RWMutex around the connection pool. An in-memory database is
  pinned to one connection, otherwise every pooled connection would see
  its own empty database.

USAGE:
  store, err := sqlite.New("./data/saft.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - saft/store.go: Interface definition
  - saft/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/saft-export/saft"
)

// timeLayout is fixed width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Compile-time interface check.
var _ saft.ExportStore = (*Store)(nil)

// Store implements saft.ExportStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exports (
		id TEXT PRIMARY KEY,
		document_type TEXT NOT NULL,
		period TEXT NOT NULL,
		year TEXT NOT NULL,
		month TEXT NOT NULL DEFAULT '',
		day TEXT NOT NULL DEFAULT '',
		only_billing INTEGER NOT NULL DEFAULT 1,
		status TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_exports_type_status_created
		ON exports(document_type, status, created_at DESC);

	CREATE INDEX IF NOT EXISTS idx_exports_created
		ON exports(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EXPORT RECORDS
// =============================================================================

// SaveExport inserts a submission record.
func (s *Store) SaveExport(ctx context.Context, rec saft.ExportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO exports (id, document_type, period, year, month, day, only_billing, status, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		string(rec.DocumentType),
		string(rec.Period),
		rec.Year,
		rec.Month,
		rec.Day,
		rec.OnlyBilling,
		string(rec.Status),
		rec.Message,
		createdAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert export %s: %w", rec.ID, err)
	}
	return nil
}

// LastExport returns the most recent succeeded export for the document type.
func (s *Store) LastExport(ctx context.Context, doc saft.DocumentType) (*saft.ExportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, document_type, period, year, month, day, only_billing, status, message, created_at
		FROM exports
		WHERE document_type = ? AND status = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`,
		string(doc), string(saft.StatusSucceeded),
	)

	rec, err := scanExport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListExports returns records newest first; limit <= 0 returns all.
func (s *Store) ListExports(ctx context.Context, limit int) ([]saft.ExportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, document_type, period, year, month, day, only_billing, status, message, created_at
		FROM exports
		ORDER BY created_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	var records []saft.ExportRecord
	for rows.Next() {
		rec, err := scanExport(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanExport(sc scanner) (saft.ExportRecord, error) {
	var rec saft.ExportRecord
	var doc, period, status, createdAt string

	err := sc.Scan(&rec.ID, &doc, &period, &rec.Year, &rec.Month, &rec.Day,
		&rec.OnlyBilling, &status, &rec.Message, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to scan export row: %w", err)
	}

	rec.DocumentType = saft.DocumentType(doc)
	rec.Period = saft.Period(period)
	rec.Status = saft.ExportStatus(status)
	rec.CreatedAt, err = time.Parse(timeLayout, createdAt)
	if err != nil {
		return rec, fmt.Errorf("export %s has malformed created_at %q: %w", rec.ID, createdAt, err)
	}
	return rec, nil
}
