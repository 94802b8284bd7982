package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"genealogy-service/models"
)

const nodeColumns = "id, tree_id, name, photo_url, birth_date, gender, description, x_position, y_position, created_at, updated_at"

// NodeStore handles database operations for person nodes.
type NodeStore struct {
	db      *sql.DB
	history *HistoryStore
}

func NewNodeStore(db *sql.DB, history *HistoryStore) *NodeStore {
	return &NodeStore{db: db, history: history}
}

func scanNode(s scanner) (*models.Node, error) {
	node := &models.Node{}
	var birthDate sql.NullTime
	var createdAt, updatedAt time.Time
	err := s.Scan(
		&node.ID,
		&node.TreeID,
		&node.Name,
		&node.PhotoURL,
		&birthDate,
		&node.Gender,
		&node.Description,
		&node.XPosition,
		&node.YPosition,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	node.BirthDate = formatDate(birthDate)
	node.CreatedAt = formatTimestamp(createdAt)
	node.UpdatedAt = formatTimestamp(updatedAt)
	return node, nil
}

func queryNodes(q execer, query string, args ...any) ([]*models.Node, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []*models.Node
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

// ListNodesByTreeID retrieves all nodes of a tree in creation order. A tree
// with no nodes yields an empty result, not an error.
func (s *NodeStore) ListNodesByTreeID(treeID int64) ([]*models.Node, error) {
	nodes, err := queryNodes(s.db,
		`SELECT `+nodeColumns+` FROM nodes WHERE tree_id = $1 ORDER BY created_at, id`, treeID)
	if err != nil {
		return nil, fmt.Errorf("error listing nodes for tree ID %d: %w", treeID, err)
	}
	return nodes, nil
}

// GetNodeByID retrieves a node by its ID.
func (s *NodeStore) GetNodeByID(id int64) (*models.Node, error) {
	row := s.db.QueryRow(`SELECT `+nodeColumns+` FROM nodes WHERE id = $1`, id)
	node, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("node with ID %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting node by ID %d: %w", id, err)
	}
	return node, nil
}

// CreateNode inserts a new node. The tree reference is validated by the
// foreign key; a missing tree surfaces as ErrConstraint.
func (s *NodeStore) CreateNode(node *models.Node) (*models.Node, error) {
	row := s.db.QueryRow(
		`INSERT INTO nodes (tree_id, name, photo_url, birth_date, gender, description, x_position, y_position)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING `+nodeColumns,
		node.TreeID,
		node.Name,
		node.PhotoURL,
		node.BirthDate,
		node.Gender,
		node.Description,
		node.XPosition,
		node.YPosition,
	)
	created, err := scanNode(row)
	if err != nil {
		return nil, wrapWriteError("error creating node", err)
	}
	s.history.Record(created.TreeID, ActionCreate, EntityNode, created.ID, nil, created)
	return created, nil
}

// UpdateNode overwrites all mutable fields of a node. The tree reference and
// created_at are never touched. The old snapshot is read under a row lock in
// the same transaction as the update so the history record is exact even
// under concurrent writers.
func (s *NodeStore) UpdateNode(id int64, node *models.Node) (*models.Node, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning node update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+nodeColumns+` FROM nodes WHERE id = $1 FOR UPDATE`, id)
	old, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("node with ID %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting node by ID %d: %w", id, err)
	}

	row = tx.QueryRow(
		`UPDATE nodes SET name = $1, photo_url = $2, birth_date = $3, gender = $4, description = $5,
		   x_position = $6, y_position = $7, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $8 RETURNING `+nodeColumns,
		node.Name,
		node.PhotoURL,
		node.BirthDate,
		node.Gender,
		node.Description,
		node.XPosition,
		node.YPosition,
		id,
	)
	updated, err := scanNode(row)
	if err != nil {
		return nil, wrapWriteError("error updating node", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing node update: %w", err)
	}
	s.history.Record(old.TreeID, ActionUpdate, EntityNode, id, old, updated)
	return updated, nil
}

// DeleteNode removes a node. The relationships the delete cascades away are
// captured first so the history record can restore them on undo.
func (s *NodeStore) DeleteNode(id int64) error {
	cascaded, err := queryRelationships(s.db,
		`SELECT `+relationshipColumns+` FROM relationships
		 WHERE source_node_id = $1 OR target_node_id = $1 ORDER BY created_at, id`, id)
	if err != nil {
		return fmt.Errorf("error capturing relationships for node ID %d: %w", id, err)
	}

	row := s.db.QueryRow(`DELETE FROM nodes WHERE id = $1 RETURNING `+nodeColumns, id)
	deleted, err := scanNode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("node with ID %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return wrapWriteError("error deleting node", err)
	}

	s.history.Record(deleted.TreeID, ActionDelete, EntityNode, id,
		&models.DeletedNode{Node: *deleted, Relationships: cascaded}, nil)
	return nil
}
