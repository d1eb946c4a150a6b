package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrRunNotFound = errors.New("store: run not found")

const sqliteTimeLayout = "2006-01-02 15:04:05"

func (s *Store) CreateRun(ctx context.Context, run *Run) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO runs (id, product_image_url, avatar_image_url, marketing_angle, status)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.ProductImageURL, run.AvatarImageURL, run.MarketingAngle, RunStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun records the terminal outcome of a run together with its scene
// artifacts in a single transaction.
func (s *Store) CompleteRun(ctx context.Context, run *Run, scenes []RunScene) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE runs SET status = ?, video_url = ?, render_id = ?, prompt = ?, error = ?, updated_at = datetime('now')
		 WHERE id = ?`,
		run.Status, run.VideoURL, run.RenderID, run.Prompt, run.Error, run.ID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	for _, scene := range scenes {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_scenes (run_id, scene_id, position, job_id, video_url, duration)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (run_id, scene_id) DO UPDATE SET job_id = excluded.job_id, video_url = excluded.video_url, duration = excluded.duration`,
			run.ID, scene.SceneID, scene.Position, scene.JobID, scene.VideoURL, scene.Duration)
		if err != nil {
			return fmt.Errorf("failed to record scene %s: %w", scene.SceneID, err)
		}
	}

	return tx.Commit()
}

func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, product_image_url, avatar_image_url, marketing_angle, status, video_url, render_id, prompt, error, created_at, updated_at
		 FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, product_image_url, avatar_image_url, marketing_angle, status, video_url, render_id, prompt, error, created_at, updated_at
		 FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *Store) GetRunScenes(ctx context.Context, runID string) ([]RunScene, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT run_id, scene_id, position, job_id, video_url, duration
		 FROM run_scenes WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list run scenes: %w", err)
	}
	defer rows.Close()

	var scenes []RunScene
	for rows.Next() {
		var scene RunScene
		if err := rows.Scan(&scene.RunID, &scene.SceneID, &scene.Position, &scene.JobID, &scene.VideoURL, &scene.Duration); err != nil {
			return nil, fmt.Errorf("failed to scan run scene: %w", err)
		}
		scenes = append(scenes, scene)
	}
	return scenes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var createdAt, updatedAt string
	err := row.Scan(&run.ID, &run.ProductImageURL, &run.AvatarImageURL, &run.MarketingAngle,
		&run.Status, &run.VideoURL, &run.RenderID, &run.Prompt, &run.Error, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	run.CreatedAt, _ = time.Parse(sqliteTimeLayout, createdAt)
	run.UpdatedAt, _ = time.Parse(sqliteTimeLayout, updatedAt)
	return &run, nil
}
