package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type Repository interface {
	CreateConversion(ctx context.Context, c *Conversion) error
	GetConversion(ctx context.Context, id string) (*Conversion, error)
	FindCompleted(ctx context.Context, contentHash, optionsKey string) (*Conversion, error)
	ListConversions(ctx context.Context, limit int) ([]*Conversion, error)
	CompleteConversion(ctx context.Context, c *Conversion) error
	FailConversion(ctx context.Context, id, errorMsg string) error
	DeleteConversion(ctx context.Context, id string) (bool, error)
	CountConversions(ctx context.Context) (int, error)

	GetWatchedFile(ctx context.Context, path string) (*WatchedFile, error)
	UpsertWatchedFile(ctx context.Context, w *WatchedFile) error

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const conversionColumns = `id, filename, content_hash, options_key, sequence_id, sequence, fps, size, row_count, status, error, rows_json, created_at, updated_at`

func (r *SQLiteRepository) CreateConversion(ctx context.Context, c *Conversion) error {
	rowsJSON, err := encodeRows(c)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO conversions (`+conversionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.Filename, c.ContentHash, c.OptionsKey, nullString(c.SequenceID), nullString(c.Sequence), c.FPS, c.Size,
		c.RowCount, c.Status, nullString(c.Error), rowsJSON,
		c.CreatedAt.UTC().Format(time.RFC3339), c.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetConversion(ctx context.Context, id string) (*Conversion, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+conversionColumns+` FROM conversions WHERE id = ?`, id)
	return scanConversion(row)
}

// FindCompleted returns the newest completed conversion of the given content
// and options, or nil when there is none.
func (r *SQLiteRepository) FindCompleted(ctx context.Context, contentHash, optionsKey string) (*Conversion, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+conversionColumns+` FROM conversions
		WHERE content_hash = ? AND options_key = ? AND status = 'completed'
		ORDER BY created_at DESC LIMIT 1
	`, contentHash, optionsKey)
	return scanConversion(row)
}

// ListConversions returns history newest first, without row payloads.
func (r *SQLiteRepository) ListConversions(ctx context.Context, limit int) ([]*Conversion, error) {
	if limit <= 0 {
		limit = 50
	}
	rs, err := r.db.QueryContext(ctx, `
		SELECT `+conversionColumns+` FROM conversions ORDER BY created_at DESC, rowid DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rs.Close()

	var out []*Conversion
	for rs.Next() {
		c, err := scanConversion(rs)
		if err != nil {
			return nil, err
		}
		c.Rows = nil
		out = append(out, c)
	}
	return out, rs.Err()
}

func (r *SQLiteRepository) CompleteConversion(ctx context.Context, c *Conversion) error {
	rowsJSON, err := encodeRows(c)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE conversions SET status = 'completed', sequence_id = ?, sequence = ?, row_count = ?, rows_json = ?, error = NULL, updated_at = ?
		WHERE id = ?
	`, nullString(c.SequenceID), nullString(c.Sequence), len(c.Rows), rowsJSON, time.Now().UTC().Format(time.RFC3339), c.ID)
	return err
}

func (r *SQLiteRepository) FailConversion(ctx context.Context, id, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE conversions SET status = 'failed', error = ?, updated_at = ? WHERE id = ?
	`, nullString(errorMsg), time.Now().UTC().Format(time.RFC3339), id)
	return err
}

// DeleteConversion reports whether a record was removed.
func (r *SQLiteRepository) DeleteConversion(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM conversions WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *SQLiteRepository) CountConversions(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversions").Scan(&count)
	return count, err
}

func (r *SQLiteRepository) GetWatchedFile(ctx context.Context, path string) (*WatchedFile, error) {
	var w WatchedFile
	var mtime, processedAt string
	var convID, outPath sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT path, size, mtime, conversion_id, output_path, processed_at FROM watched_files WHERE path = ?
	`, path).Scan(&w.Path, &w.Size, &mtime, &convID, &outPath, &processedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	w.ConversionID = convID.String
	w.OutputPath = outPath.String
	w.Mtime, _ = time.Parse(time.RFC3339Nano, mtime)
	w.ProcessedAt, _ = time.Parse(time.RFC3339, processedAt)
	return &w, nil
}

func (r *SQLiteRepository) UpsertWatchedFile(ctx context.Context, w *WatchedFile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO watched_files (path, size, mtime, conversion_id, output_path, processed_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			mtime = excluded.mtime,
			conversion_id = excluded.conversion_id,
			output_path = excluded.output_path,
			processed_at = excluded.processed_at
	`, w.Path, w.Size, w.Mtime.UTC().Format(time.RFC3339Nano), nullString(w.ConversionID), nullString(w.OutputPath),
		w.ProcessedAt.UTC().Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConversion(row scanner) (*Conversion, error) {
	var c Conversion
	var sequenceID, sequence, errMsg, rowsJSON sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&c.ID, &c.Filename, &c.ContentHash, &c.OptionsKey, &sequenceID, &sequence, &c.FPS, &c.Size,
		&c.RowCount, &c.Status, &errMsg, &rowsJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.SequenceID = sequenceID.String
	c.Sequence = sequence.String
	c.Error = errMsg.String
	if rowsJSON.Valid && rowsJSON.String != "" {
		if err := json.Unmarshal([]byte(rowsJSON.String), &c.Rows); err != nil {
			return nil, fmt.Errorf("decode rows of conversion %s: %w", c.ID, err)
		}
	}
	c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	c.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &c, nil
}

func encodeRows(c *Conversion) (sql.NullString, error) {
	if c.Rows == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(c.Rows)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode rows: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
