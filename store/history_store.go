package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"genealogy-service/models"
)

const historyColumns = "id, tree_id, action_type, entity_type, entity_id, old_data, new_data, created_at"

// Action types recorded in the history log.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Entity types recorded in the history log. EntityLayout marks a batch layout
// save, whose snapshots cover the whole tree.
const (
	EntityTree         = "tree"
	EntityNode         = "node"
	EntityRelationship = "relationship"
	EntityLayout       = "layout"
)

// HistoryStore maintains the per-tree append-only operation log and replays
// it for undo.
type HistoryStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewHistoryStore(db *sql.DB, logger *zap.Logger) *HistoryStore {
	return &HistoryStore{db: db, logger: logger}
}

func scanHistory(s scanner) (*models.HistoryRecord, error) {
	rec := &models.HistoryRecord{}
	var oldData, newData []byte
	var createdAt time.Time
	err := s.Scan(
		&rec.ID,
		&rec.TreeID,
		&rec.ActionType,
		&rec.EntityType,
		&rec.EntityID,
		&oldData,
		&newData,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	rec.OldData = json.RawMessage(oldData)
	rec.NewData = json.RawMessage(newData)
	rec.CreatedAt = formatTimestamp(createdAt)
	return rec, nil
}

func marshalSnapshot(v any) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// record appends one log entry on the given pool or transaction.
func (h *HistoryStore) record(q execer, treeID int64, action, entity string, entityID int64, oldData, newData any) error {
	oldJSON, err := marshalSnapshot(oldData)
	if err != nil {
		return fmt.Errorf("error marshalling old data: %w", err)
	}
	newJSON, err := marshalSnapshot(newData)
	if err != nil {
		return fmt.Errorf("error marshalling new data: %w", err)
	}
	_, err = q.Exec(
		`INSERT INTO history (tree_id, action_type, entity_type, entity_id, old_data, new_data)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		treeID, action, entity, entityID, oldJSON, newJSON,
	)
	if err != nil {
		return fmt.Errorf("error appending history: %w", err)
	}
	return nil
}

// Record appends one log entry best-effort: a failed append is logged and
// never fails the primary write that triggered it. Safe on a nil receiver,
// which disables logging entirely.
func (h *HistoryStore) Record(treeID int64, action, entity string, entityID int64, oldData, newData any) {
	if h == nil {
		return
	}
	if err := h.record(h.db, treeID, action, entity, entityID, oldData, newData); err != nil {
		h.logger.Warn("history append failed",
			zap.Int64("tree_id", treeID),
			zap.String("action", action),
			zap.String("entity", entity),
			zap.Int64("entity_id", entityID),
			zap.Error(err),
		)
	}
}

// ListByTreeID retrieves the tree's history, newest first.
func (h *HistoryStore) ListByTreeID(treeID int64) ([]*models.HistoryRecord, error) {
	rows, err := h.db.Query(
		`SELECT `+historyColumns+` FROM history WHERE tree_id = $1 ORDER BY created_at DESC, id DESC`, treeID)
	if err != nil {
		return nil, fmt.Errorf("error listing history for tree ID %d: %w", treeID, err)
	}
	defer rows.Close()

	var records []*models.HistoryRecord
	for rows.Next() {
		rec, err := scanHistory(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning history row: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return records, nil
}

// Undo reverses the most recent logged operation of a tree: it locks the
// latest history record, applies its compensating write and consumes the
// record, all in one transaction. Returns ErrNotFound when the tree has no
// history.
func (h *HistoryStore) Undo(treeID int64) (*models.HistoryRecord, error) {
	tx, err := h.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("error beginning undo transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(
		`SELECT `+historyColumns+` FROM history WHERE tree_id = $1
		 ORDER BY created_at DESC, id DESC LIMIT 1 FOR UPDATE`, treeID)
	rec, err := scanHistory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no history for tree ID %d: %w", treeID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading history for tree ID %d: %w", treeID, err)
	}

	if err := compensate(tx, rec); err != nil {
		return nil, err
	}

	// The record is consumed: undoing is itself undone by editing forward,
	// not by redo.
	if _, err := tx.Exec(`DELETE FROM history WHERE id = $1`, rec.ID); err != nil {
		return nil, fmt.Errorf("error consuming history record %d: %w", rec.ID, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing undo: %w", err)
	}
	return rec, nil
}
