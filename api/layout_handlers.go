package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"genealogy-service/models"
)

// LayoutStore applies batch layout saves.
type LayoutStore interface {
	SaveLayout(treeID int64, layout *models.TreeLayout) (*models.TreeLayout, error)
}

// HistoryStore reads and replays the per-tree operation log.
type HistoryStore interface {
	ListByTreeID(treeID int64) ([]*models.HistoryRecord, error)
	Undo(treeID int64) (*models.HistoryRecord, error)
}

// LayoutHandler serves the per-tree layout, history and undo endpoints,
// mounted on the /api/trees subrouter.
type LayoutHandler struct {
	layouts  LayoutStore
	history  HistoryStore
	validate *validator.Validate
	logger   *zap.Logger
}

func NewLayoutHandler(layouts LayoutStore, history HistoryStore, logger *zap.Logger) *LayoutHandler {
	return &LayoutHandler{layouts: layouts, history: history, validate: validator.New(), logger: logger}
}

func (h *LayoutHandler) Register(r chi.Router) {
	r.Put("/{id}/layout", h.saveLayout)
	r.Get("/{id}/history", h.listHistory)
	r.Post("/{id}/undo", h.undo)
}

// saveLayout replaces the editor's one-request-per-row save sequence with a
// single transactional batch: either the whole layout commits or none of it.
func (h *LayoutHandler) saveLayout(w http.ResponseWriter, r *http.Request) {
	treeID, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tree ID in path")
		return
	}

	var payload LayoutPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid layout fields: "+err.Error())
		return
	}

	layout, err := h.layouts.SaveLayout(treeID, payload.toModel())
	if err != nil {
		respondStoreError(w, h.logger, err, "Layout target not found", "Failed to save layout")
		return
	}
	respondWithJSON(w, http.StatusOK, layout)
}

func (h *LayoutHandler) listHistory(w http.ResponseWriter, r *http.Request) {
	treeID, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tree ID in path")
		return
	}
	records, err := h.history.ListByTreeID(treeID)
	if err != nil {
		respondStoreError(w, h.logger, err, "", "Failed to fetch history")
		return
	}
	if records == nil { // return an empty list, not null
		records = []*models.HistoryRecord{}
	}
	respondWithJSON(w, http.StatusOK, records)
}

func (h *LayoutHandler) undo(w http.ResponseWriter, r *http.Request) {
	treeID, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tree ID in path")
		return
	}
	record, err := h.history.Undo(treeID)
	if err != nil {
		respondStoreError(w, h.logger, err, "No history to undo", "Failed to undo")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Undo applied successfully",
		"undone":  record,
	})
}
