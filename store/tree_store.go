package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"genealogy-service/models"
)

const treeColumns = "id, name, description, created_at, updated_at"

// TreeStore handles database operations for trees. The pool and the history
// recorder are injected; a nil history disables operation logging.
type TreeStore struct {
	db      *sql.DB
	history *HistoryStore
}

func NewTreeStore(db *sql.DB, history *HistoryStore) *TreeStore {
	return &TreeStore{db: db, history: history}
}

func scanTree(s scanner) (*models.Tree, error) {
	tree := &models.Tree{}
	var createdAt, updatedAt time.Time
	if err := s.Scan(&tree.ID, &tree.Name, &tree.Description, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	tree.CreatedAt = formatTimestamp(createdAt)
	tree.UpdatedAt = formatTimestamp(updatedAt)
	return tree, nil
}

// ListTrees retrieves all trees, newest first.
func (s *TreeStore) ListTrees() ([]*models.Tree, error) {
	rows, err := s.db.Query(`SELECT ` + treeColumns + ` FROM trees ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("error listing trees: %w", err)
	}
	defer rows.Close()

	var trees []*models.Tree
	for rows.Next() {
		tree, err := scanTree(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning tree row: %w", err)
		}
		trees = append(trees, tree)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tree rows: %w", err)
	}
	return trees, nil
}

// GetTreeByID retrieves a tree by its ID.
func (s *TreeStore) GetTreeByID(id int64) (*models.Tree, error) {
	row := s.db.QueryRow(`SELECT `+treeColumns+` FROM trees WHERE id = $1`, id)
	tree, err := scanTree(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tree with ID %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting tree by ID %d: %w", id, err)
	}
	return tree, nil
}

// CreateTree inserts a new tree and returns the created row with its
// generated ID and timestamps.
func (s *TreeStore) CreateTree(name string, description *string) (*models.Tree, error) {
	row := s.db.QueryRow(
		`INSERT INTO trees (name, description) VALUES ($1, $2) RETURNING `+treeColumns,
		name, description,
	)
	tree, err := scanTree(row)
	if err != nil {
		return nil, wrapWriteError("error creating tree", err)
	}
	s.history.Record(tree.ID, ActionCreate, EntityTree, tree.ID, nil, tree)
	return tree, nil
}

// UpdateTree overwrites the tree's mutable fields and refreshes updated_at.
// The old snapshot is read under a row lock in the same transaction as the
// update so the history record is exact even under concurrent writers.
func (s *TreeStore) UpdateTree(id int64, name string, description *string) (*models.Tree, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning tree update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+treeColumns+` FROM trees WHERE id = $1 FOR UPDATE`, id)
	old, err := scanTree(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tree with ID %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting tree by ID %d: %w", id, err)
	}

	row = tx.QueryRow(
		`UPDATE trees SET name = $1, description = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $3 RETURNING `+treeColumns,
		name, description, id,
	)
	tree, err := scanTree(row)
	if err != nil {
		return nil, wrapWriteError("error updating tree", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing tree update: %w", err)
	}
	s.history.Record(id, ActionUpdate, EntityTree, id, old, tree)
	return tree, nil
}

// DeleteTree removes a tree; the schema cascades the delete to its nodes,
// relationships and history. No history record is written because a record
// could not reference the deleted tree.
func (s *TreeStore) DeleteTree(id int64) error {
	result, err := s.db.Exec(`DELETE FROM trees WHERE id = $1`, id)
	if err != nil {
		return wrapWriteError("error deleting tree", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected for delete on tree ID %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("tree with ID %d: %w", id, ErrNotFound)
	}
	return nil
}
