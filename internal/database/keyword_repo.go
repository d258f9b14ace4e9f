package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/markusc/posescout/internal/models"
)

type KeywordRepo struct {
	db *DB
}

func NewKeywordRepo(db *DB) *KeywordRepo {
	return &KeywordRepo{db: db}
}

// Upsert inserts the keyword after normalization. An existing keyword
// is left untouched so repeated uploads cannot reset counters.
func (r *KeywordRepo) Upsert(ctx context.Context, text string) error {
	text = models.NormalizeKeyword(text)
	if text == "" {
		return fmt.Errorf("empty keyword")
	}

	query := `INSERT INTO keywords (keyword, last_processed, use_counter, quality_metric)
		VALUES (?, ?, 0, 0) ON CONFLICT (keyword) DO NOTHING`

	_, err := r.db.conn.ExecContext(ctx, r.db.rebind(query), text, time.Time{})
	if err != nil {
		return fmt.Errorf("failed to insert keyword: %w", err)
	}
	return nil
}

func (r *KeywordRepo) GetByText(ctx context.Context, text string) (*models.Keyword, error) {
	text = models.NormalizeKeyword(text)

	query := `SELECT keyword, last_processed, use_counter, quality_metric
		FROM keywords WHERE keyword = ?`

	var kw models.Keyword
	err := r.db.conn.QueryRowContext(ctx, r.db.rebind(query), text).Scan(
		&kw.Text, &kw.LastProcessed, &kw.UseCounter, &kw.QualityMetric,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("keyword %q: %w", text, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get keyword: %w", err)
	}
	return &kw, nil
}

// List returns all keywords ordered by descending quality metric.
func (r *KeywordRepo) List(ctx context.Context) ([]models.Keyword, error) {
	query := `SELECT keyword, last_processed, use_counter, quality_metric
		FROM keywords ORDER BY quality_metric DESC, keyword`

	return r.queryKeywords(ctx, query)
}

// ListForDispatch returns up to limit keywords in search-dispatch order:
// least recently processed first, ties broken by ascending use counter.
func (r *KeywordRepo) ListForDispatch(ctx context.Context, limit int) ([]models.Keyword, error) {
	query := `SELECT keyword, last_processed, use_counter, quality_metric
		FROM keywords ORDER BY last_processed ASC, use_counter ASC LIMIT ?`

	return r.queryKeywords(ctx, query, limit)
}

func (r *KeywordRepo) queryKeywords(ctx context.Context, query string, args ...any) ([]models.Keyword, error) {
	rows, err := r.db.conn.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query keywords: %w", err)
	}
	defer rows.Close()

	var keywords []models.Keyword
	for rows.Next() {
		var kw models.Keyword
		if err := rows.Scan(&kw.Text, &kw.LastProcessed, &kw.UseCounter, &kw.QualityMetric); err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}
		keywords = append(keywords, kw)
	}
	return keywords, rows.Err()
}

// MarkUsed increments the use counter and stamps last_processed.
func (r *KeywordRepo) MarkUsed(ctx context.Context, text string) error {
	query := `UPDATE keywords
		SET use_counter = use_counter + 1, last_processed = ?
		WHERE keyword = ?`

	res, err := r.db.conn.ExecContext(ctx, r.db.rebind(query), time.Now().UTC(), models.NormalizeKeyword(text))
	if err != nil {
		return fmt.Errorf("failed to mark keyword used: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("keyword %q: %w", text, ErrNotFound)
	}
	return nil
}

// SetQualityMetric overwrites the stored metric for the keyword.
func (r *KeywordRepo) SetQualityMetric(ctx context.Context, text string, metric float64) error {
	query := `UPDATE keywords SET quality_metric = ? WHERE keyword = ?`

	res, err := r.db.conn.ExecContext(ctx, r.db.rebind(query), metric, models.NormalizeKeyword(text))
	if err != nil {
		return fmt.Errorf("failed to set quality metric: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("keyword %q: %w", text, ErrNotFound)
	}
	return nil
}

func (r *KeywordRepo) Delete(ctx context.Context, text string) error {
	query := `DELETE FROM keywords WHERE keyword = ?`

	if _, err := r.db.conn.ExecContext(ctx, r.db.rebind(query), models.NormalizeKeyword(text)); err != nil {
		return fmt.Errorf("failed to delete keyword: %w", err)
	}
	return nil
}
