package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"genealogy-service/models"
)

// TreeStore is the subset of the data access layer the tree endpoints use.
type TreeStore interface {
	ListTrees() ([]*models.Tree, error)
	GetTreeByID(id int64) (*models.Tree, error)
	CreateTree(name string, description *string) (*models.Tree, error)
	UpdateTree(id int64, name string, description *string) (*models.Tree, error)
	DeleteTree(id int64) error
}

// TreeHandler serves the /api/trees CRUD endpoints.
type TreeHandler struct {
	store    TreeStore
	validate *validator.Validate
	logger   *zap.Logger
}

func NewTreeHandler(store TreeStore, logger *zap.Logger) *TreeHandler {
	return &TreeHandler{store: store, validate: validator.New(), logger: logger}
}

func (h *TreeHandler) Register(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *TreeHandler) list(w http.ResponseWriter, r *http.Request) {
	trees, err := h.store.ListTrees()
	if err != nil {
		respondStoreError(w, h.logger, err, "", "Failed to fetch trees")
		return
	}
	if trees == nil { // return an empty list, not null
		trees = []*models.Tree{}
	}
	respondWithJSON(w, http.StatusOK, trees)
}

func (h *TreeHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tree ID in path")
		return
	}
	tree, err := h.store.GetTreeByID(id)
	if err != nil {
		respondStoreError(w, h.logger, err, "Tree not found", "Failed to fetch tree")
		return
	}
	respondWithJSON(w, http.StatusOK, tree)
}

func (h *TreeHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload TreePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Tree name is required")
		return
	}

	tree, err := h.store.CreateTree(payload.Name, blankToNil(payload.Description))
	if err != nil {
		respondStoreError(w, h.logger, err, "", "Failed to create tree")
		return
	}
	respondWithJSON(w, http.StatusOK, tree)
}

func (h *TreeHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tree ID in path")
		return
	}

	var payload TreePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Tree name is required")
		return
	}

	tree, err := h.store.UpdateTree(id, payload.Name, blankToNil(payload.Description))
	if err != nil {
		respondStoreError(w, h.logger, err, "Tree not found", "Failed to update tree")
		return
	}
	respondWithJSON(w, http.StatusOK, tree)
}

func (h *TreeHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tree ID in path")
		return
	}
	if err := h.store.DeleteTree(id); err != nil {
		respondStoreError(w, h.logger, err, "Tree not found", "Failed to delete tree")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Tree deleted successfully"})
}
