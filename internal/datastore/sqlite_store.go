package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/meshhound/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the snapshot in a found_files table.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger
}

// NewSQLiteStore opens (or creates) the database and ensures the schema.
func NewSQLiteStore(path string, logger zerolog.Logger) (*SQLiteStore, error) {
	logger = logger.With().Str("component", "SQLiteStore").Logger()

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open failed for %s: %w", path, err)
	}
	// One writer at a time; sqlite serializes anyway.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: path, logger: logger}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug().Str("path", path).Msg("Catalog database ready")
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	const query = `
	CREATE TABLE IF NOT EXISTS found_files (
		position INTEGER NOT NULL,
		url TEXT NOT NULL UNIQUE,
		format TEXT NOT NULL,
		origin TEXT NOT NULL,
		size_bytes INTEGER,
		size TEXT NOT NULL,
		discovered_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_found_files_position ON found_files (position);
	`
	_, err := s.db.Exec(query)
	return err
}

// Load returns every stored record ordered by insertion position.
func (s *SQLiteStore) Load(ctx context.Context) ([]models.FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, format, origin, size_bytes, size, discovered_at FROM found_files ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query found_files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []models.FileRecord
	for rows.Next() {
		var (
			rec          models.FileRecord
			format       string
			sizeBytes    sql.NullInt64
			discoveredAt int64
		)
		if err := rows.Scan(&rec.URL, &format, &rec.Origin, &sizeBytes, &rec.Size, &discoveredAt); err != nil {
			return nil, fmt.Errorf("failed to scan found_files row: %w", err)
		}
		rec.Format = models.FormatTag(format)
		if sizeBytes.Valid {
			rec.SizeBytes = models.Int64Ptr(sizeBytes.Int64)
		}
		rec.DiscoveredAt = time.Unix(0, discoveredAt).UTC()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate found_files: %w", err)
	}

	s.logger.Debug().Int("count", len(records)).Msg("Loaded catalog snapshot")
	return records, nil
}

// Save replaces the table contents in a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, records []models.FileRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM found_files`); err != nil {
		return fmt.Errorf("failed to clear found_files: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO found_files (position, url, format, origin, size_bytes, size, discovered_at) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, rec := range records {
		var sizeBytes sql.NullInt64
		if rec.SizeBytes != nil {
			sizeBytes = sql.NullInt64{Int64: *rec.SizeBytes, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, rec.URL, string(rec.Format), rec.Origin, sizeBytes, rec.Size, rec.DiscoveredAt.UTC().UnixNano()); err != nil {
			return fmt.Errorf("failed to insert %s: %w", rec.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	s.logger.Debug().Int("count", len(records)).Msg("Saved catalog snapshot")
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
