package api

import "genealogy-service/models"

// Request bodies use camelCase field names while persisted rows serialize
// with snake_case names; the asymmetry is part of the API contract.

// TreePayload is the create/update body for trees.
type TreePayload struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}

// NodePayload is the update body for nodes; creates add the tree reference.
type NodePayload struct {
	Name        string  `json:"name" validate:"required"`
	PhotoURL    *string `json:"photoUrl"`
	BirthDate   *string `json:"birthDate" validate:"omitempty,datetime=2006-01-02"`
	Gender      *string `json:"gender" validate:"omitempty,oneof=male female"`
	Description *string `json:"description"`
	XPosition   float64 `json:"xPosition"`
	YPosition   float64 `json:"yPosition"`
}

// CreateNodePayload is the create body for nodes.
type CreateNodePayload struct {
	TreeID int64 `json:"treeId" validate:"required"`
	NodePayload
}

// RelationshipPayload is the create body for relationships. The type falls
// back to the store default when omitted.
type RelationshipPayload struct {
	TreeID           int64  `json:"treeId" validate:"required"`
	SourceNodeID     int64  `json:"sourceNodeId" validate:"required"`
	TargetNodeID     int64  `json:"targetNodeId" validate:"required"`
	RelationshipType string `json:"relationshipType"`
}

// UpdateRelationshipPayload is the update body for relationships; the type is
// the only mutable field of an edge.
type UpdateRelationshipPayload struct {
	RelationshipType string `json:"relationshipType" validate:"required"`
}

// LayoutPayload is the batch save body: the tree's fields plus full-field
// overwrites for every listed node and relationship, applied atomically.
type LayoutPayload struct {
	Name          string                      `json:"name" validate:"required"`
	Description   *string                     `json:"description"`
	Nodes         []LayoutNodePayload         `json:"nodes" validate:"dive"`
	Relationships []LayoutRelationshipPayload `json:"relationships" validate:"dive"`
}

// LayoutNodePayload addresses an existing node row by id.
type LayoutNodePayload struct {
	ID int64 `json:"id" validate:"required"`
	NodePayload
}

// LayoutRelationshipPayload addresses an existing relationship row by id.
type LayoutRelationshipPayload struct {
	ID               int64  `json:"id" validate:"required"`
	RelationshipType string `json:"relationshipType" validate:"required"`
}

// blankToNil folds empty strings from the client into JSON-null semantics so
// optional columns store NULL instead of "".
func blankToNil(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}

func (p *NodePayload) toModel(treeID int64) *models.Node {
	return &models.Node{
		TreeID:      treeID,
		Name:        p.Name,
		PhotoURL:    blankToNil(p.PhotoURL),
		BirthDate:   blankToNil(p.BirthDate),
		Gender:      blankToNil(p.Gender),
		Description: blankToNil(p.Description),
		XPosition:   p.XPosition,
		YPosition:   p.YPosition,
	}
}

func (p *LayoutPayload) toModel() *models.TreeLayout {
	layout := &models.TreeLayout{
		Tree: models.Tree{
			Name:        p.Name,
			Description: blankToNil(p.Description),
		},
	}
	for i := range p.Nodes {
		node := p.Nodes[i].toModel(0)
		node.ID = p.Nodes[i].ID
		layout.Nodes = append(layout.Nodes, node)
	}
	for _, rel := range p.Relationships {
		layout.Relationships = append(layout.Relationships, &models.Relationship{
			ID:               rel.ID,
			RelationshipType: rel.RelationshipType,
		})
	}
	return layout
}
