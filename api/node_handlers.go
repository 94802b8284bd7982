package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"genealogy-service/models"
)

// NodeStore is the subset of the data access layer the node endpoints use.
type NodeStore interface {
	ListNodesByTreeID(treeID int64) ([]*models.Node, error)
	GetNodeByID(id int64) (*models.Node, error)
	CreateNode(node *models.Node) (*models.Node, error)
	UpdateNode(id int64, node *models.Node) (*models.Node, error)
	DeleteNode(id int64) error
}

// NodeHandler serves the /api/nodes CRUD endpoints.
type NodeHandler struct {
	store    NodeStore
	validate *validator.Validate
	logger   *zap.Logger
}

func NewNodeHandler(store NodeStore, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{store: store, validate: validator.New(), logger: logger}
}

func (h *NodeHandler) Register(r chi.Router) {
	r.Get("/tree/{treeId}", h.listByTree)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *NodeHandler) listByTree(w http.ResponseWriter, r *http.Request) {
	treeID, err := parseIDParam(r, "treeId")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tree ID in path")
		return
	}
	nodes, err := h.store.ListNodesByTreeID(treeID)
	if err != nil {
		respondStoreError(w, h.logger, err, "", "Failed to fetch nodes")
		return
	}
	if nodes == nil { // return an empty list, not null
		nodes = []*models.Node{}
	}
	respondWithJSON(w, http.StatusOK, nodes)
}

func (h *NodeHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid node ID in path")
		return
	}
	node, err := h.store.GetNodeByID(id)
	if err != nil {
		respondStoreError(w, h.logger, err, "Node not found", "Failed to fetch node")
		return
	}
	respondWithJSON(w, http.StatusOK, node)
}

func (h *NodeHandler) create(w http.ResponseWriter, r *http.Request) {
	var payload CreateNodePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid node fields: "+err.Error())
		return
	}

	node, err := h.store.CreateNode(payload.toModel(payload.TreeID))
	if err != nil {
		respondStoreError(w, h.logger, err, "", "Failed to create node")
		return
	}
	respondWithJSON(w, http.StatusOK, node)
}

func (h *NodeHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid node ID in path")
		return
	}

	var payload NodePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(&payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid node fields: "+err.Error())
		return
	}

	node, err := h.store.UpdateNode(id, payload.toModel(0))
	if err != nil {
		respondStoreError(w, h.logger, err, "Node not found", "Failed to update node")
		return
	}
	respondWithJSON(w, http.StatusOK, node)
}

func (h *NodeHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid node ID in path")
		return
	}
	if err := h.store.DeleteNode(id); err != nil {
		respondStoreError(w, h.logger, err, "Node not found", "Failed to delete node")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Node deleted successfully"})
}
