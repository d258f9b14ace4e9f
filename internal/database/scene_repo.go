package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/markusc/posescout/internal/models"
)

type SceneRepo struct {
	db *DB
}

func NewSceneRepo(db *DB) *SceneRepo {
	return &SceneRepo{db: db}
}

// LabeledScene is one persisted scene joined with its prediction and
// owning video, as consumed by the keyword quality aggregator.
type LabeledScene struct {
	VideoID       string
	StartTime     float64
	EndTime       float64
	Label         models.Label
	VideoDuration float64
}

// SaveResults persists the classified scenes of one pipeline run in a
// single transaction. Scenes and predictions are written once and never
// updated afterwards.
func (r *SceneRepo) SaveResults(ctx context.Context, results []models.SceneResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sceneQuery := r.db.rebind(`INSERT INTO scenes (id, video_id, start_time, end_time) VALUES (?, ?, ?, ?)`)
	predQuery := r.db.rebind(`INSERT INTO predictions (scene_id, label) VALUES (?, ?)`)

	for _, res := range results {
		id := uuid.New().String()
		if _, err := tx.ExecContext(ctx, sceneQuery, id, res.VideoID, res.StartTime, res.EndTime); err != nil {
			return fmt.Errorf("failed to insert scene: %w", err)
		}
		if _, err := tx.ExecContext(ctx, predQuery, id, string(res.Label)); err != nil {
			return fmt.Errorf("failed to insert prediction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit scenes: %w", err)
	}
	return nil
}

// ListByVideo returns the video's scenes with their labels, in time order.
func (r *SceneRepo) ListByVideo(ctx context.Context, videoID string) ([]LabeledScene, error) {
	query := `SELECT s.video_id, s.start_time, s.end_time, p.label, v.duration
		FROM scenes s
		JOIN predictions p ON p.scene_id = s.id
		JOIN videos v ON v.id = s.video_id
		WHERE s.video_id = ?
		ORDER BY s.start_time`

	return r.queryLabeled(ctx, query, videoID)
}

// ListByKeyword returns all labeled scenes of the keyword's processed
// videos, grouped by video and ordered by scene start.
func (r *SceneRepo) ListByKeyword(ctx context.Context, keyword string) ([]LabeledScene, error) {
	query := `SELECT s.video_id, s.start_time, s.end_time, p.label, v.duration
		FROM scenes s
		JOIN predictions p ON p.scene_id = s.id
		JOIN videos v ON v.id = s.video_id
		WHERE v.origin_keyword = ? AND v.is_processed = ?
		ORDER BY s.video_id, s.start_time`

	return r.queryLabeled(ctx, query, models.NormalizeKeyword(keyword), true)
}

func (r *SceneRepo) queryLabeled(ctx context.Context, query string, args ...any) ([]LabeledScene, error) {
	rows, err := r.db.conn.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenes: %w", err)
	}
	defer rows.Close()

	var scenes []LabeledScene
	for rows.Next() {
		var sc LabeledScene
		var label string
		if err := rows.Scan(&sc.VideoID, &sc.StartTime, &sc.EndTime, &label, &sc.VideoDuration); err != nil {
			return nil, fmt.Errorf("failed to scan scene: %w", err)
		}
		sc.Label = models.Label(label)
		scenes = append(scenes, sc)
	}
	return scenes, rows.Err()
}

// DeleteByVideo removes the video's scenes; predictions cascade.
func (r *SceneRepo) DeleteByVideo(ctx context.Context, videoID string) error {
	query := `DELETE FROM scenes WHERE video_id = ?`

	if _, err := r.db.conn.ExecContext(ctx, r.db.rebind(query), videoID); err != nil {
		return fmt.Errorf("failed to delete scenes: %w", err)
	}
	return nil
}
