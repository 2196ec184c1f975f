package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/sverlaine/mediadup/pkg/models"
)

// Cache persists extracted metadata records in SQLite so unchanged
// files are not re-parsed on every run. Entries are keyed by absolute
// path and validated against file size and modification time; a stale
// entry is overwritten on the next Store.
type Cache struct {
	db   *sql.DB
	path string
}

const cacheSchema = `
CREATE TABLE IF NOT EXISTS metadata_cache (
    path         TEXT PRIMARY KEY,
    size         INTEGER NOT NULL,
    mod_time     TEXT NOT NULL,
    captured_at  TEXT,
    width        INTEGER,
    height       INTEGER,
    duration_ms  INTEGER,
    camera_make  TEXT,
    camera_model TEXT,
    rating       INTEGER,
    extracted_at TEXT NOT NULL
)`

// OpenCache initializes or connects to the cache database at path
func OpenCache(path string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("ensure cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(cacheSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply cache schema: %w", err)
	}

	return &Cache{db: db, path: path}, nil
}

// Close closes the underlying database connection
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Lookup returns the cached record for the file if present and still
// valid for the file's current size and modification time.
func (c *Cache) Lookup(ctx context.Context, file *models.MediaFile) (*models.MetadataRecord, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT size, mod_time, captured_at, width, height, duration_ms,
		        camera_make, camera_model, rating
		   FROM metadata_cache WHERE path = ?`, file.Path)

	var (
		size        int64
		modTime     string
		capturedAt  sql.NullString
		width       sql.NullInt64
		height      sql.NullInt64
		durationMS  sql.NullInt64
		cameraMake  sql.NullString
		cameraModel sql.NullString
		rating      sql.NullInt64
	)
	err := row.Scan(&size, &modTime, &capturedAt, &width, &height, &durationMS, &cameraMake, &cameraModel, &rating)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache lookup: %w", err)
	}

	if size != file.Size || modTime != file.ModTime.UTC().Format(time.RFC3339Nano) {
		return nil, false, nil
	}

	record := &models.MetadataRecord{FileSize: &size}
	if capturedAt.Valid {
		t, parseErr := time.Parse(time.RFC3339Nano, capturedAt.String)
		if parseErr != nil {
			return nil, false, nil
		}
		record.CapturedAt = &t
	}
	if width.Valid && height.Valid {
		record.Pixels = &models.Dimensions{Width: int(width.Int64), Height: int(height.Int64)}
	}
	if durationMS.Valid {
		ms := durationMS.Int64
		record.DurationMS = &ms
	}
	if cameraMake.Valid {
		s := cameraMake.String
		record.CameraMake = &s
	}
	if cameraModel.Valid {
		s := cameraModel.String
		record.CameraModel = &s
	}
	if rating.Valid {
		r := int(rating.Int64)
		record.Rating = &r
	}

	return record, true, nil
}

// Store inserts or replaces the cached record for the file
func (c *Cache) Store(ctx context.Context, file *models.MediaFile, record *models.MetadataRecord) error {
	var (
		capturedAt  sql.NullString
		width       sql.NullInt64
		height      sql.NullInt64
		durationMS  sql.NullInt64
		cameraMake  sql.NullString
		cameraModel sql.NullString
		rating      sql.NullInt64
	)
	if record.CapturedAt != nil {
		capturedAt = sql.NullString{String: record.CapturedAt.UTC().Format(time.RFC3339Nano), Valid: true}
	}
	if record.Pixels != nil {
		width = sql.NullInt64{Int64: int64(record.Pixels.Width), Valid: true}
		height = sql.NullInt64{Int64: int64(record.Pixels.Height), Valid: true}
	}
	if record.DurationMS != nil {
		durationMS = sql.NullInt64{Int64: *record.DurationMS, Valid: true}
	}
	if record.CameraMake != nil {
		cameraMake = sql.NullString{String: *record.CameraMake, Valid: true}
	}
	if record.CameraModel != nil {
		cameraModel = sql.NullString{String: *record.CameraModel, Valid: true}
	}
	if record.Rating != nil {
		rating = sql.NullInt64{Int64: int64(*record.Rating), Valid: true}
	}

	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO metadata_cache (
		    path, size, mod_time, captured_at, width, height,
		    duration_ms, camera_make, camera_model, rating, extracted_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		file.Path,
		file.Size,
		file.ModTime.UTC().Format(time.RFC3339Nano),
		capturedAt,
		width,
		height,
		durationMS,
		cameraMake,
		cameraModel,
		rating,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("cache store: %w", err)
	}
	return nil
}

// Prune removes entries whose path is not in the given set. Called
// after a run to keep the cache from growing past the scanned library.
func (c *Cache) Prune(ctx context.Context, keep map[string]bool) (int64, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT path FROM metadata_cache`)
	if err != nil {
		return 0, fmt.Errorf("cache prune scan: %w", err)
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			rows.Close()
			return 0, fmt.Errorf("cache prune scan: %w", err)
		}
		if !keep[path] {
			stale = append(stale, path)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("cache prune scan: %w", err)
	}

	var removed int64
	for _, path := range stale {
		res, err := c.db.ExecContext(ctx, `DELETE FROM metadata_cache WHERE path = ?`, path)
		if err != nil {
			return removed, fmt.Errorf("cache prune delete: %w", err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}
	return removed, nil
}
