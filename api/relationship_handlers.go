package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"genealogy-service/models"
)

// RelationshipStore is the subset of the data access layer the relationship
// endpoints use.
type RelationshipStore interface {
	ListRelationshipsByTreeID(treeID int64) ([]*models.Relationship, error)
	GetRelationshipByID(id int64) (*models.Relationship, error)
	CreateRelationship(rel *models.Relationship) (*models.Relationship, error)
	UpdateRelationship(id int64, relationshipType string) (*models.Relationship, error)
	DeleteRelationship(id int64) error
}

// RelationshipHandler serves the /api/relationships CRUD endpoints.
type RelationshipHandler struct {
	store    RelationshipStore
	validate *validator.Validate
	logger   *zap.Logger
}

func NewRelationshipHandler(store RelationshipStore, logger *zap.Logger) *RelationshipHandler {
	return &RelationshipHandler{store: store, validate: validator.New(), logger: logger}
}

func (h *RelationshipHandler) Register(r chi.Router) {
	r.Get("/tree/{treeId}", h.listByTree)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *RelationshipHandler) listByTree(w http.ResponseWriter, r *http.Request) {
	treeID, err := parseIDParam(r, "treeId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tree ID in path")
		return
	}
	rels, err := h.store.ListRelationshipsByTreeID(treeID)
	if err != nil {
		respondStoreError(w, h.logger, err, "", "Failed to fetch relationships")
		return
	}
	if rels == nil { // return an empty list, not null
		rels = []*models.Relationship{}
	}
	respondWithJSON(w, http.StatusOK, rels)
}

func (h *RelationshipHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid relationship ID in path")
		return
	}
	rel, err := h.store.GetRelationshipByID(id)
	if err != nil {
		respondStoreError(w, h.logger, err, "Relationship not found", "Failed to fetch relationship")
		return
	}
	respondWithJSON(w, http.StatusOK, rel)
}

func (h *RelationshipHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload RelationshipPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid relationship fields: "+err.Error())
		return
	}

	rel, err := h.store.CreateRelationship(&models.Relationship{
		TreeID:           payload.TreeID,
		SourceNodeID:     payload.SourceNodeID,
		TargetNodeID:     payload.TargetNodeID,
		RelationshipType: payload.RelationshipType,
	})
	if err != nil {
		respondStoreError(w, h.logger, err, "", "Failed to create relationship")
		return
	}
	respondWithJSON(w, http.StatusOK, rel)
}

func (h *RelationshipHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid relationship ID in path")
		return
	}

	var payload UpdateRelationshipPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Relationship type is required")
		return
	}

	rel, err := h.store.UpdateRelationship(id, payload.RelationshipType)
	if err != nil {
		respondStoreError(w, h.logger, err, "Relationship not found", "Failed to update relationship")
		return
	}
	respondWithJSON(w, http.StatusOK, rel)
}

func (h *RelationshipHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid relationship ID in path")
		return
	}
	if err := h.store.DeleteRelationship(id); err != nil {
		respondStoreError(w, h.logger, err, "Relationship not found", "Failed to delete relationship")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Relationship deleted successfully"})
}
