package models

import "encoding/json"

// Tree is a named genealogy workspace. It owns nodes and relationships;
// deleting a tree cascades to both.
type Tree struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	CreatedAt   string  `json:"created_at,omitempty"` // RFC3339, converted from time.Time
	UpdatedAt   string  `json:"updated_at,omitempty"` // RFC3339, converted from time.Time
}

// Node is a person entry within a tree, with biographical fields and a
// position on the editor canvas. Nullable columns map to pointers so absent
// values serialize as JSON null.
type Node struct {
	ID          int64   `json:"id"`
	TreeID      int64   `json:"tree_id"`
	Name        string  `json:"name"`
	PhotoURL    *string `json:"photo_url"`
	BirthDate   *string `json:"birth_date"` // YYYY-MM-DD
	Gender      *string `json:"gender"`     // "male" or "female"
	Description *string `json:"description"`
	XPosition   float64 `json:"x_position"`
	YPosition   float64 `json:"y_position"`
	CreatedAt   string  `json:"created_at,omitempty"`
	UpdatedAt   string  `json:"updated_at,omitempty"`
}

// Relationship is a directed, typed edge between two nodes of the same tree.
type Relationship struct {
	ID               int64  `json:"id"`
	TreeID           int64  `json:"tree_id"`
	SourceNodeID     int64  `json:"source_node_id"`
	TargetNodeID     int64  `json:"target_node_id"`
	RelationshipType string `json:"relationship_type"`
	CreatedAt        string `json:"created_at,omitempty"`
	UpdatedAt        string `json:"updated_at,omitempty"`
}

// HistoryRecord is one entry of the per-tree append-only operation log.
// OldData and NewData hold JSON snapshots of the affected row: creates store
// NewData, updates store both, deletes store OldData.
type HistoryRecord struct {
	ID         int64           `json:"id"`
	TreeID     int64           `json:"tree_id"`
	ActionType string          `json:"action_type"`
	EntityType string          `json:"entity_type"`
	EntityID   *int64          `json:"entity_id"`
	OldData    json.RawMessage `json:"old_data"`
	NewData    json.RawMessage `json:"new_data"`
	CreatedAt  string          `json:"created_at,omitempty"`
}

// DeletedNode is the OldData shape recorded when a node is deleted: the node
// row itself plus the relationships the delete cascades away, so an undo can
// restore all of them.
type DeletedNode struct {
	Node          Node            `json:"node"`
	Relationships []*Relationship `json:"relationships"`
}

// TreeLayout is the full editable state of one tree: its own fields plus
// every node and relationship row. It is both the payload applied by the
// batch layout save and the snapshot it records for undo.
type TreeLayout struct {
	Tree          Tree            `json:"tree"`
	Nodes         []*Node         `json:"nodes"`
	Relationships []*Relationship `json:"relationships"`
}
