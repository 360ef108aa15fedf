package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"isl-backend/internal/models"
	"isl-backend/internal/quiz"
)

type ProgressRepo struct {
	pool *pgxpool.Pool
}

func NewProgressRepo(pool *pgxpool.Pool) *ProgressRepo {
	return &ProgressRepo{pool: pool}
}

func (r *ProgressRepo) GetBestScore(ctx context.Context, userID uuid.UUID, moduleID string) (int, error) {
	var score int
	err := r.pool.QueryRow(ctx,
		"SELECT best_score FROM module_progress WHERE user_id = $1 AND module_id = $2",
		userID, moduleID,
	).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return score, err
}

// SaveScoreIfBetter relies on the conditional upsert so concurrent sessions
// of the same learner can never lower the stored best.
func (r *ProgressRepo) SaveScoreIfBetter(ctx context.Context, userID uuid.UUID, moduleID string, score int) (bool, error) {
	if score <= 0 {
		return false, nil
	}
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO module_progress (user_id, module_id, best_score)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, module_id) DO UPDATE
		SET best_score = EXCLUDED.best_score, updated_at = NOW()
		WHERE module_progress.best_score < EXCLUDED.best_score
	`, userID, moduleID, score)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ProgressRepo) ResetScore(ctx context.Context, userID uuid.UUID, moduleID string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE module_progress SET best_score = 0, updated_at = NOW() WHERE user_id = $1 AND module_id = $2",
		userID, moduleID,
	)
	return err
}

func (r *ProgressRepo) MarkLessonComplete(ctx context.Context, userID uuid.UUID, moduleID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		INSERT INTO module_progress (user_id, module_id, lessons_completed)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, module_id) DO UPDATE
		SET lessons_completed = module_progress.lessons_completed + 1, updated_at = NOW()
		RETURNING lessons_completed
	`, userID, moduleID).Scan(&count)
	return count, err
}

func (r *ProgressRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ModuleProgress, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, module_id, best_score, lessons_completed, updated_at
		FROM module_progress WHERE user_id = $1 ORDER BY module_id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var progress []*models.ModuleProgress
	for rows.Next() {
		p := &models.ModuleProgress{}
		if err := rows.Scan(&p.UserID, &p.ModuleID, &p.BestScore, &p.LessonsCompleted, &p.UpdatedAt); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}

// ForUser scopes the repository to one learner for the quiz engine.
func (r *ProgressRepo) ForUser(userID uuid.UUID) quiz.ProgressStore {
	return userProgress{repo: r, userID: userID}
}

type userProgress struct {
	repo   *ProgressRepo
	userID uuid.UUID
}

func (u userProgress) GetBestScore(ctx context.Context, moduleID string) (int, error) {
	return u.repo.GetBestScore(ctx, u.userID, moduleID)
}

func (u userProgress) SaveScoreIfBetter(ctx context.Context, moduleID string, score int) (bool, error) {
	return u.repo.SaveScoreIfBetter(ctx, u.userID, moduleID, score)
}

func (u userProgress) ResetScore(ctx context.Context, moduleID string) error {
	return u.repo.ResetScore(ctx, u.userID, moduleID)
}
