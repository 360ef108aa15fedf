package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"isl-backend/internal/models"
)

type AttemptRepo struct {
	pool *pgxpool.Pool
}

func NewAttemptRepo(pool *pgxpool.Pool) *AttemptRepo {
	return &AttemptRepo{pool: pool}
}

// Create stores a finished attempt. Re-delivered results for the same
// session are ignored; the returned bool reports whether a row was written.
func (r *AttemptRepo) Create(ctx context.Context, a *models.QuizAttempt) (bool, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO quiz_attempts (id, user_id, session_id, module_id, score, question_count, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id) DO NOTHING`,
		a.ID, a.UserID, a.SessionID, a.ModuleID, a.Score, a.QuestionCount, a.StartedAt, a.CompletedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *AttemptRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QuizAttempt, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, session_id, module_id, score, question_count, started_at, completed_at
		FROM quiz_attempts WHERE user_id = $1
		ORDER BY completed_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]*models.QuizAttempt, 0)
	for rows.Next() {
		a := &models.QuizAttempt{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.SessionID, &a.ModuleID, &a.Score, &a.QuestionCount, &a.StartedAt, &a.CompletedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func (r *AttemptRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM quiz_attempts WHERE user_id = $1", userID).Scan(&n)
	return n, err
}
