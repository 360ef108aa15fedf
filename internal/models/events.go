package models

import "github.com/google/uuid"

// WebSocket message types
const (
	EventQuizAdvanced   = "quiz.advanced"
	EventQuizFinished   = "quiz.finished"
	EventAttemptStored  = "attempt.recorded"
	EventProgressUpdate = "progress.updated"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type QuizAdvancedEvent struct {
	SessionID     uuid.UUID `json:"session_id"`
	QuestionIndex int       `json:"question_index"`
}

type QuizFinishedEvent struct {
	SessionID     uuid.UUID `json:"session_id"`
	ModuleID      string    `json:"module_id"`
	Score         int       `json:"score"`
	QuestionCount int       `json:"question_count"`
	NewBest       bool      `json:"new_best"`
}

type AttemptRecordedEvent struct {
	AttemptID uuid.UUID `json:"attempt_id"`
	ModuleID  string    `json:"module_id"`
	Score     int       `json:"score"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// UserChannel is the Redis pub/sub channel carrying one user's updates.
func UserChannel(userID uuid.UUID) string {
	return "user_updates:" + userID.String()
}
