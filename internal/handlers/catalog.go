package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"isl-backend/internal/catalog"
	"isl-backend/internal/models"
)

// CatalogHandler serves the static learning content. It needs no auth.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

func (h *CatalogHandler) ListModules(w http.ResponseWriter, r *http.Request) {
	modules := h.catalog.Modules()
	summaries := make([]models.ModuleSummary, 0, len(modules))
	for _, m := range modules {
		summaries = append(summaries, m.Summary())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"modules": summaries})
}

func (h *CatalogHandler) GetModule(w http.ResponseWriter, r *http.Request) {
	module, ok := h.catalog.ModuleByID(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Module not found", r))
		return
	}
	writeJSON(w, http.StatusOK, module)
}

// Dictionary lists every sign, optionally filtered by ?q= on the label.
func (h *CatalogHandler) Dictionary(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	items := h.catalog.Search(q)
	if items == nil {
		items = []models.FlashcardItem{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": len(items),
	})
}
