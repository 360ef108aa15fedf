package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLiteProgressStore keeps best scores on the local machine for the command
// line tool. It implements quiz.ProgressStore.
type SQLiteProgressStore struct {
	db *sql.DB
}

func NewSQLiteProgressStore(db *sql.DB) (*SQLiteProgressStore, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS module_progress (
			module_id TEXT PRIMARY KEY,
			best_score INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise progress schema: %w", err)
	}
	return &SQLiteProgressStore{db: db}, nil
}

func (s *SQLiteProgressStore) GetBestScore(ctx context.Context, moduleID string) (int, error) {
	var score int
	err := s.db.QueryRowContext(ctx, "SELECT best_score FROM module_progress WHERE module_id = ?", moduleID).Scan(&score)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return score, err
}

func (s *SQLiteProgressStore) SaveScoreIfBetter(ctx context.Context, moduleID string, score int) (bool, error) {
	if score <= 0 {
		return false, nil
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO module_progress (module_id, best_score) VALUES (?, ?)
		ON CONFLICT (module_id) DO UPDATE
		SET best_score = excluded.best_score, updated_at = CURRENT_TIMESTAMP
		WHERE module_progress.best_score < excluded.best_score`, moduleID, score)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *SQLiteProgressStore) ResetScore(ctx context.Context, moduleID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM module_progress WHERE module_id = ?", moduleID)
	return err
}
