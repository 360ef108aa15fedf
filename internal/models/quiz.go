package models

import (
	"time"

	"github.com/google/uuid"
)

type StartQuizRequest struct {
	Seed *uint64 `json:"seed"`
}

type AnswerRequest struct {
	OptionID string `json:"option_id"`
}

// QuizOption is an answer choice as shown to the learner.
type QuizOption struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

type QuizQuestionView struct {
	Index       int          `json:"index"`
	PromptMedia string       `json:"prompt_media"`
	PromptVideo string       `json:"prompt_video,omitempty"`
	Options     []QuizOption `json:"options"`
	ConfirmedID string       `json:"confirmed_id,omitempty"`
}

type QuizSessionView struct {
	ID            uuid.UUID         `json:"id"`
	ModuleID      string            `json:"module_id"`
	QuestionCount int               `json:"question_count"`
	Score         int               `json:"score"`
	Finished      bool              `json:"finished"`
	AdvanceAt     *time.Time        `json:"advance_at,omitempty"`
	Question      *QuizQuestionView `json:"question,omitempty"`
}

type AnswerResult struct {
	Correct   bool            `json:"correct"`
	Credited  bool            `json:"credited"`
	Finished  bool            `json:"finished"`
	NewBest   bool            `json:"new_best"`
	AdvanceAt *time.Time      `json:"advance_at,omitempty"`
	Session   QuizSessionView `json:"session"`
}

// QuizAttempt is the history record of a finished quiz session.
type QuizAttempt struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	SessionID     uuid.UUID `json:"session_id"`
	ModuleID      string    `json:"module_id"`
	Score         int       `json:"score"`
	QuestionCount int       `json:"question_count"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
}
