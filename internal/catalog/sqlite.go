// Package catalog persists the inventory snapshot and scan history in a
// SQLite database so the CLI can show results between runs.
package catalog

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"cleansnap/internal/catalog/migrations"
	"cleansnap/internal/clean"
	"cleansnap/internal/model"
)

// SQLiteCatalog implements the Catalog interface using SQLite.
type SQLiteCatalog struct {
	db   *sql.DB
	path string
}

var _ clean.Catalog = (*SQLiteCatalog)(nil)

// NewSQLiteCatalog opens (and migrates) a SQLite catalog.
// path can be a file path or ":memory:" for an in-memory database.
func NewSQLiteCatalog(path string) (*SQLiteCatalog, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating catalog: %w", err)
	}

	return &SQLiteCatalog{db: db, path: path}, nil
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tests that need a raw configured connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// SaveScan records the summary of a completed scan.
func (c *SQLiteCatalog) SaveScan(rec *clean.ScanRecord) error {
	_, err := c.db.Exec(`
		INSERT INTO scans (id, operation, started_at, finished_at, asset_count,
			duplicate_groups, duplicate_count, similar_groups, savings_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Operation, rec.StartedAt, rec.FinishedAt, rec.AssetCount,
		rec.DuplicateGroups, rec.DuplicateCount, rec.SimilarGroups, rec.SavingsBytes)
	if err != nil {
		return fmt.Errorf("inserting scan record: %w", err)
	}
	return nil
}

// ListScans returns the most recent scan records, newest first.
func (c *SQLiteCatalog) ListScans(limit int) ([]*clean.ScanRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := c.db.Query(`
		SELECT id, operation, started_at, finished_at, asset_count,
			duplicate_groups, duplicate_count, similar_groups, savings_bytes
		FROM scans ORDER BY finished_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying scans: %w", err)
	}
	defer rows.Close()

	var recs []*clean.ScanRecord
	for rows.Next() {
		rec := &clean.ScanRecord{}
		if err := rows.Scan(&rec.ID, &rec.Operation, &rec.StartedAt, &rec.FinishedAt,
			&rec.AssetCount, &rec.DuplicateGroups, &rec.DuplicateCount,
			&rec.SimilarGroups, &rec.SavingsBytes); err != nil {
			return nil, fmt.Errorf("scanning scan record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scan records: %w", err)
	}
	return recs, nil
}

// ReplaceAssets replaces the stored inventory snapshot in one transaction.
func (c *SQLiteCatalog) ReplaceAssets(assets []model.Asset) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM assets"); err != nil {
		return fmt.Errorf("clearing asset snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO assets (id, created_at, byte_size, pixel_width, pixel_height, kind, is_screenshot)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing asset insert: %w", err)
	}
	defer stmt.Close()

	for _, a := range assets {
		var createdAt sql.NullTime
		if a.CreatedAt != nil {
			createdAt = sql.NullTime{Time: *a.CreatedAt, Valid: true}
		}
		if _, err := stmt.Exec(a.ID, createdAt, a.ByteSize, a.PixelWidth,
			a.PixelHeight, int(a.Kind), a.IsScreenshot); err != nil {
			return fmt.Errorf("inserting asset %s: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing asset snapshot: %w", err)
	}
	return nil
}

// Assets returns the stored inventory snapshot.
func (c *SQLiteCatalog) Assets() ([]model.Asset, error) {
	rows, err := c.db.Query(`
		SELECT id, created_at, byte_size, pixel_width, pixel_height, kind, is_screenshot
		FROM assets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		var a model.Asset
		var createdAt sql.NullTime
		var kind int
		if err := rows.Scan(&a.ID, &createdAt, &a.ByteSize, &a.PixelWidth,
			&a.PixelHeight, &kind, &a.IsScreenshot); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		if createdAt.Valid {
			t := createdAt.Time
			a.CreatedAt = &t
		}
		a.Kind = model.MediaKind(kind)
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assets: %w", err)
	}
	return assets, nil
}

// RemoveAssets drops the given ids from the stored snapshot.
func (c *SQLiteCatalog) RemoveAssets(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	if _, err := c.db.Exec("DELETE FROM assets WHERE id IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("removing assets: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}
