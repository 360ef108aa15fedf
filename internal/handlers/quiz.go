package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"isl-backend/internal/middleware"
	"isl-backend/internal/models"
)

type quizRunner interface {
	Start(ctx context.Context, userID uuid.UUID, moduleID string, seed *uint64) (*models.QuizSessionView, error)
	Get(ctx context.Context, userID, sessionID uuid.UUID) (*models.QuizSessionView, error)
	Answer(ctx context.Context, userID, sessionID uuid.UUID, optionID string) (*models.AnswerResult, error)
	Exit(ctx context.Context, userID, sessionID uuid.UUID) error
}

type QuizHandler struct {
	quiz quizRunner
}

func NewQuizHandler(quiz quizRunner) *QuizHandler {
	return &QuizHandler{quiz: quiz}
}

// Start begins a quiz for the module in the URL. The body is optional and
// may pin the generator seed.
func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req models.StartQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	view, err := h.quiz.Start(r.Context(), userID, chi.URLParam(r, "id"), req.Seed)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.quiz.Get(r.Context(), middleware.GetUserID(r.Context()), sessionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *QuizHandler) Answer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	result, err := h.quiz.Answer(r.Context(), middleware.GetUserID(r.Context()), sessionID, req.OptionID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *QuizHandler) Exit(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	if err := h.quiz.Exit(r.Context(), middleware.GetUserID(r.Context()), sessionID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz exited"})
}

func sessionIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid quiz session ID", r))
		return uuid.Nil, false
	}
	return id, true
}
