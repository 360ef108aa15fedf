package models

import (
	"time"

	"github.com/google/uuid"
)

type ModuleProgress struct {
	UserID           uuid.UUID `json:"-"`
	ModuleID         string    `json:"module_id"`
	BestScore        int       `json:"best_score"`
	LessonsCompleted int       `json:"lessons_completed"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type ModuleProgressView struct {
	Module           ModuleSummary `json:"module"`
	BestScore        int           `json:"best_score"`
	LessonsCompleted int           `json:"lessons_completed"`
}

// Learner levels, from fewest to most lessons completed.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
	LevelExpert       = "Expert"
)

type Profile struct {
	User              *User                `json:"user"`
	TotalSigns        int                  `json:"total_signs"`
	LessonsCompleted  int                  `json:"lessons_completed"`
	CompletionPercent int                  `json:"completion_percent"`
	ModulesCompleted  int                  `json:"modules_completed"`
	Level             string               `json:"level"`
	QuizzesTaken      int                  `json:"quizzes_taken"`
	Modules           []ModuleProgressView `json:"modules"`
	RecentAttempts    []*QuizAttempt       `json:"recent_attempts"`
}
