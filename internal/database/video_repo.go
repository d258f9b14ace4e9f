package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/markusc/posescout/internal/models"
)

type VideoRepo struct {
	db *DB
}

func NewVideoRepo(db *DB) *VideoRepo {
	return &VideoRepo{db: db}
}

// InsertURLs records the given URLs as unprocessed videos, skipping any
// URL already present (deduplication is by exact URL match). Returns the
// number of newly inserted records.
func (r *VideoRepo) InsertURLs(ctx context.Context, urls []string, originKeyword string) (int, error) {
	query := `INSERT INTO videos (id, url, origin_keyword, is_processed, duration, added_at)
		VALUES (?, ?, ?, ?, 0, ?) ON CONFLICT (url) DO NOTHING`

	var origin sql.NullString
	if originKeyword != "" {
		origin = sql.NullString{String: models.NormalizeKeyword(originKeyword), Valid: true}
	}

	added := 0
	for _, url := range urls {
		if url == "" {
			continue
		}
		v := models.NewVideoRecord(url, originKeyword)
		res, err := r.db.conn.ExecContext(ctx, r.db.rebind(query),
			v.ID, v.URL, origin, false, v.AddedAt)
		if err != nil {
			return added, fmt.Errorf("failed to insert url %s: %w", url, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			added++
		}
	}
	return added, nil
}

func (r *VideoRepo) GetByID(ctx context.Context, id string) (*models.VideoRecord, error) {
	query := `SELECT id, url, origin_keyword, is_processed, duration, added_at
		FROM videos WHERE id = ?`

	return r.scanOne(r.db.conn.QueryRowContext(ctx, r.db.rebind(query), id))
}

func (r *VideoRepo) GetByURL(ctx context.Context, url string) (*models.VideoRecord, error) {
	query := `SELECT id, url, origin_keyword, is_processed, duration, added_at
		FROM videos WHERE url = ?`

	return r.scanOne(r.db.conn.QueryRowContext(ctx, r.db.rebind(query), url))
}

func (r *VideoRepo) scanOne(row *sql.Row) (*models.VideoRecord, error) {
	var v models.VideoRecord
	var origin sql.NullString
	err := row.Scan(&v.ID, &v.URL, &origin, &v.IsProcessed, &v.Duration, &v.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("video: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	v.OriginKeyword = origin.String
	return &v, nil
}

// ListUnprocessed returns up to limit videos awaiting classification,
// oldest first.
func (r *VideoRepo) ListUnprocessed(ctx context.Context, limit int) ([]models.VideoRecord, error) {
	query := `SELECT id, url, origin_keyword, is_processed, duration, added_at
		FROM videos WHERE is_processed = ? ORDER BY added_at ASC LIMIT ?`

	return r.queryVideos(ctx, query, false, limit)
}

// List returns all videos; processed filters by the is_processed flag
// when non-nil.
func (r *VideoRepo) List(ctx context.Context, processed *bool) ([]models.VideoRecord, error) {
	if processed == nil {
		query := `SELECT id, url, origin_keyword, is_processed, duration, added_at
			FROM videos ORDER BY added_at DESC`
		return r.queryVideos(ctx, query)
	}
	query := `SELECT id, url, origin_keyword, is_processed, duration, added_at
		FROM videos WHERE is_processed = ? ORDER BY added_at DESC`
	return r.queryVideos(ctx, query, *processed)
}

func (r *VideoRepo) queryVideos(ctx context.Context, query string, args ...any) ([]models.VideoRecord, error) {
	rows, err := r.db.conn.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.VideoRecord
	for rows.Next() {
		var v models.VideoRecord
		var origin sql.NullString
		if err := rows.Scan(&v.ID, &v.URL, &origin, &v.IsProcessed, &v.Duration, &v.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		v.OriginKeyword = origin.String
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// MarkProcessed flags the video as classified and records its probed
// container duration in seconds.
func (r *VideoRepo) MarkProcessed(ctx context.Context, id string, duration float64) error {
	query := `UPDATE videos SET is_processed = ?, duration = ? WHERE id = ?`

	res, err := r.db.conn.ExecContext(ctx, r.db.rebind(query), true, duration, id)
	if err != nil {
		return fmt.Errorf("failed to mark video processed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("video %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes the video record; its scenes and predictions cascade.
func (r *VideoRepo) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM videos WHERE id = ?`

	if _, err := r.db.conn.ExecContext(ctx, r.db.rebind(query), id); err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return nil
}
