package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"isl-backend/internal/middleware"
	"isl-backend/internal/models"
)

type progressReporter interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.ModuleProgressView, error)
	Reset(ctx context.Context, userID uuid.UUID, moduleID string) error
	MarkLessonComplete(ctx context.Context, userID uuid.UUID, moduleID string) (int, error)
	Profile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

type ProgressHandler struct {
	progress progressReporter
}

func NewProgressHandler(progress progressReporter) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

func (h *ProgressHandler) List(w http.ResponseWriter, r *http.Request) {
	views, err := h.progress.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"modules": views})
}

func (h *ProgressHandler) Reset(w http.ResponseWriter, r *http.Request) {
	moduleID := chi.URLParam(r, "moduleId")
	if err := h.progress.Reset(r.Context(), middleware.GetUserID(r.Context()), moduleID); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"module_id":  moduleID,
		"best_score": 0,
	})
}

func (h *ProgressHandler) MarkLessonComplete(w http.ResponseWriter, r *http.Request) {
	moduleID := chi.URLParam(r, "moduleId")
	count, err := h.progress.MarkLessonComplete(r.Context(), middleware.GetUserID(r.Context()), moduleID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"module_id":         moduleID,
		"lessons_completed": count,
	})
}

func (h *ProgressHandler) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.progress.Profile(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
