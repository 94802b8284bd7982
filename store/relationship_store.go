package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"genealogy-service/models"
)

const relationshipColumns = "id, tree_id, source_node_id, target_node_id, relationship_type, created_at, updated_at"

// DefaultRelationshipType is used when a create request omits the type.
const DefaultRelationshipType = "relative"

// RelationshipStore handles database operations for relationship edges.
type RelationshipStore struct {
	db      *sql.DB
	history *HistoryStore
}

func NewRelationshipStore(db *sql.DB, history *HistoryStore) *RelationshipStore {
	return &RelationshipStore{db: db, history: history}
}

func scanRelationship(s scanner) (*models.Relationship, error) {
	rel := &models.Relationship{}
	var createdAt, updatedAt time.Time
	err := s.Scan(
		&rel.ID,
		&rel.TreeID,
		&rel.SourceNodeID,
		&rel.TargetNodeID,
		&rel.RelationshipType,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}
	rel.CreatedAt = formatTimestamp(createdAt)
	rel.UpdatedAt = formatTimestamp(updatedAt)
	return rel, nil
}

func queryRelationships(q execer, query string, args ...any) ([]*models.Relationship, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rels []*models.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}

// ListRelationshipsByTreeID retrieves all relationships of a tree in creation
// order.
func (s *RelationshipStore) ListRelationshipsByTreeID(treeID int64) ([]*models.Relationship, error) {
	rels, err := queryRelationships(s.db,
		`SELECT `+relationshipColumns+` FROM relationships WHERE tree_id = $1 ORDER BY created_at, id`, treeID)
	if err != nil {
		return nil, fmt.Errorf("error listing relationships for tree ID %d: %w", treeID, err)
	}
	return rels, nil
}

// GetRelationshipByID retrieves a relationship by its ID.
func (s *RelationshipStore) GetRelationshipByID(id int64) (*models.Relationship, error) {
	row := s.db.QueryRow(`SELECT `+relationshipColumns+` FROM relationships WHERE id = $1`, id)
	rel, err := scanRelationship(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("relationship with ID %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting relationship by ID %d: %w", id, err)
	}
	return rel, nil
}

// CreateRelationship inserts a new edge. The composite foreign keys reject
// endpoints outside the relationship's tree, the check constraint rejects
// self-loops and the unique constraint rejects exact duplicates; all of these
// surface as ErrConstraint.
func (s *RelationshipStore) CreateRelationship(rel *models.Relationship) (*models.Relationship, error) {
	relType := rel.RelationshipType
	if relType == "" {
		relType = DefaultRelationshipType
	}

	row := s.db.QueryRow(
		`INSERT INTO relationships (tree_id, source_node_id, target_node_id, relationship_type)
		 VALUES ($1, $2, $3, $4) RETURNING `+relationshipColumns,
		rel.TreeID, rel.SourceNodeID, rel.TargetNodeID, relType,
	)
	created, err := scanRelationship(row)
	if err != nil {
		return nil, wrapWriteError("error creating relationship", err)
	}
	s.history.Record(created.TreeID, ActionCreate, EntityRelationship, created.ID, nil, created)
	return created, nil
}

// UpdateRelationship overwrites the relationship type, the only mutable field
// of an edge. The old snapshot is read under a row lock in the same
// transaction as the update so the history record is exact even under
// concurrent writers.
func (s *RelationshipStore) UpdateRelationship(id int64, relationshipType string) (*models.Relationship, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning relationship update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+relationshipColumns+` FROM relationships WHERE id = $1 FOR UPDATE`, id)
	old, err := scanRelationship(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("relationship with ID %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error getting relationship by ID %d: %w", id, err)
	}

	row = tx.QueryRow(
		`UPDATE relationships SET relationship_type = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2 RETURNING `+relationshipColumns,
		relationshipType, id,
	)
	updated, err := scanRelationship(row)
	if err != nil {
		return nil, wrapWriteError("error updating relationship", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing relationship update: %w", err)
	}
	s.history.Record(old.TreeID, ActionUpdate, EntityRelationship, id, old, updated)
	return updated, nil
}

// DeleteRelationship removes an edge.
func (s *RelationshipStore) DeleteRelationship(id int64) error {
	row := s.db.QueryRow(`DELETE FROM relationships WHERE id = $1 RETURNING `+relationshipColumns, id)
	deleted, err := scanRelationship(row)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("relationship with ID %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return wrapWriteError("error deleting relationship", err)
	}
	s.history.Record(deleted.TreeID, ActionDelete, EntityRelationship, id, deleted, nil)
	return nil
}
