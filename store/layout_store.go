package store

import (
	"database/sql"
	"errors"
	"fmt"

	"genealogy-service/models"
)

// LayoutStore persists a whole tree layout in one transaction, replacing the
// editor's request-per-row save sequence. Either every row write commits or
// none does.
type LayoutStore struct {
	db      *sql.DB
	history *HistoryStore
}

func NewLayoutStore(db *sql.DB, history *HistoryStore) *LayoutStore {
	return &LayoutStore{db: db, history: history}
}

// loadTreeLayout reads the tree row plus all of its nodes and relationships.
// With forUpdate the tree row is locked so concurrent layout saves serialize.
func loadTreeLayout(q execer, treeID int64, forUpdate bool) (*models.TreeLayout, error) {
	query := `SELECT ` + treeColumns + ` FROM trees WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	tree, err := scanTree(q.QueryRow(query, treeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tree with ID %d: %w", treeID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading tree ID %d: %w", treeID, err)
	}

	nodes, err := queryNodes(q,
		`SELECT `+nodeColumns+` FROM nodes WHERE tree_id = $1 ORDER BY created_at, id`, treeID)
	if err != nil {
		return nil, fmt.Errorf("error reading nodes for tree ID %d: %w", treeID, err)
	}
	rels, err := queryRelationships(q,
		`SELECT `+relationshipColumns+` FROM relationships WHERE tree_id = $1 ORDER BY created_at, id`, treeID)
	if err != nil {
		return nil, fmt.Errorf("error reading relationships for tree ID %d: %w", treeID, err)
	}

	return &models.TreeLayout{Tree: *tree, Nodes: nodes, Relationships: rels}, nil
}

// SaveLayout applies a batch update of the tree's fields and the listed node
// and relationship rows inside a single transaction, records one layout
// history entry with the before/after snapshots, and returns the resulting
// full layout. A row that does not exist in the tree aborts the whole save
// with ErrNotFound.
func (s *LayoutStore) SaveLayout(treeID int64, layout *models.TreeLayout) (*models.TreeLayout, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning layout transaction: %w", err)
	}
	defer tx.Rollback()

	old, err := loadTreeLayout(tx, treeID, true)
	if err != nil {
		return nil, err
	}

	layout.Tree.ID = treeID
	if err := applyTreeLayout(tx, layout); err != nil {
		return nil, err
	}

	updated, err := loadTreeLayout(tx, treeID, false)
	if err != nil {
		return nil, err
	}

	if s.history != nil {
		if err := s.history.record(tx, treeID, ActionUpdate, EntityLayout, treeID, old, updated); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing layout save: %w", err)
	}
	return updated, nil
}
