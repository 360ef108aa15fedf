package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"isl-backend/internal/catalog"
	"isl-backend/internal/models"
)

const recentAttemptsLimit = 5

type progressRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ModuleProgress, error)
	ResetScore(ctx context.Context, userID uuid.UUID, moduleID string) error
	MarkLessonComplete(ctx context.Context, userID uuid.UUID, moduleID string) (int, error)
}

type attemptRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*models.QuizAttempt, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type userLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ProgressService reports per-module learning progress: best quiz scores
// and completed lessons.
type ProgressService struct {
	catalog  *catalog.Catalog
	progress progressRepository
	attempts attemptRepository
	users    userLookup
	events   eventPublisher
}

func NewProgressService(cat *catalog.Catalog, progress progressRepository, attempts attemptRepository, users userLookup, events eventPublisher) *ProgressService {
	return &ProgressService{
		catalog:  cat,
		progress: progress,
		attempts: attempts,
		users:    users,
		events:   events,
	}
}

// List returns one entry per catalog module, in catalog order. Modules the
// learner never touched report zero.
func (s *ProgressService) List(ctx context.Context, userID uuid.UUID) ([]models.ModuleProgressView, error) {
	stored, err := s.progress.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	byModule := make(map[string]*models.ModuleProgress, len(stored))
	for _, p := range stored {
		byModule[p.ModuleID] = p
	}

	views := make([]models.ModuleProgressView, 0, len(s.catalog.Modules()))
	for _, m := range s.catalog.Modules() {
		view := models.ModuleProgressView{Module: m.Summary()}
		if p, ok := byModule[m.ID]; ok {
			view.BestScore = p.BestScore
			view.LessonsCompleted = p.LessonsCompleted
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *ProgressService) Reset(ctx context.Context, userID uuid.UUID, moduleID string) error {
	if _, ok := s.catalog.ModuleByID(moduleID); !ok {
		return &NotFoundError{Message: "Module not found"}
	}
	if err := s.progress.ResetScore(ctx, userID, moduleID); err != nil {
		return fmt.Errorf("failed to reset score: %w", err)
	}
	s.publish(ctx, userID, moduleID)
	return nil
}

func (s *ProgressService) MarkLessonComplete(ctx context.Context, userID uuid.UUID, moduleID string) (int, error) {
	if _, ok := s.catalog.ModuleByID(moduleID); !ok {
		return 0, &NotFoundError{Message: "Module not found"}
	}
	count, err := s.progress.MarkLessonComplete(ctx, userID, moduleID)
	if err != nil {
		return 0, fmt.Errorf("failed to record lesson: %w", err)
	}
	s.publish(ctx, userID, moduleID)
	return count, nil
}

func (s *ProgressService) Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "User not found"}
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	modules, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.attempts.ListByUser(ctx, userID, recentAttemptsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}
	taken, err := s.attempts.CountByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count attempts: %w", err)
	}

	profile := &models.Profile{
		User:           user,
		TotalSigns:     len(s.catalog.AllItems()),
		QuizzesTaken:   taken,
		Modules:        modules,
		RecentAttempts: recent,
	}
	for _, m := range modules {
		profile.LessonsCompleted += m.LessonsCompleted
		if m.LessonsCompleted >= m.Module.ItemCount {
			profile.ModulesCompleted++
		}
	}
	profile.CompletionPercent = completionPercent(profile.LessonsCompleted, profile.TotalSigns)
	profile.Level = learnerLevel(profile.CompletionPercent)
	return profile, nil
}

// completionPercent rounds lessons over signs to a whole percent, capped at
// 100 since lessons can be repeated.
func completionPercent(lessons, signs int) int {
	pct := int(math.Round(float64(lessons) / float64(max(signs, 1)) * 100))
	return min(pct, 100)
}

func learnerLevel(percent int) string {
	switch {
	case percent == 100:
		return models.LevelExpert
	case percent > 80:
		return models.LevelAdvanced
	case percent > 30:
		return models.LevelIntermediate
	default:
		return models.LevelBeginner
	}
}

func (s *ProgressService) publish(ctx context.Context, userID uuid.UUID, moduleID string) {
	err := s.events.PublishUpdate(ctx, userID, models.WSMessage{
		Type:    models.EventProgressUpdate,
		Payload: map[string]string{"module_id": moduleID},
	})
	if err != nil {
		log.Printf("failed to publish progress update for user %s: %v", userID, err)
	}
}
