package store

import (
	"encoding/json"
	"fmt"

	"genealogy-service/models"
)

// compensate applies the inverse of a logged operation: created rows are
// deleted, updated rows restored from their old snapshot, deleted rows
// re-inserted with their original ids.
func compensate(q execer, rec *models.HistoryRecord) error {
	switch rec.EntityType {
	case EntityTree:
		return compensateTree(q, rec)
	case EntityNode:
		return compensateNode(q, rec)
	case EntityRelationship:
		return compensateRelationship(q, rec)
	case EntityLayout:
		return compensateLayout(q, rec)
	}
	return fmt.Errorf("unknown history entity type %q", rec.EntityType)
}

func compensateTree(q execer, rec *models.HistoryRecord) error {
	switch rec.ActionType {
	case ActionCreate:
		// Removing the tree cascades to everything it owns, including the
		// remainder of its history.
		if _, err := q.Exec(`DELETE FROM trees WHERE id = $1`, rec.EntityID); err != nil {
			return wrapWriteError("error undoing tree create", err)
		}
		return nil
	case ActionUpdate:
		var old models.Tree
		if err := json.Unmarshal(rec.OldData, &old); err != nil {
			return fmt.Errorf("error decoding tree snapshot: %w", err)
		}
		_, err := q.Exec(
			`UPDATE trees SET name = $1, description = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`,
			old.Name, old.Description, old.ID,
		)
		if err != nil {
			return wrapWriteError("error undoing tree update", err)
		}
		return nil
	}
	return fmt.Errorf("unsupported tree history action %q", rec.ActionType)
}

func compensateNode(q execer, rec *models.HistoryRecord) error {
	switch rec.ActionType {
	case ActionCreate:
		if _, err := q.Exec(`DELETE FROM nodes WHERE id = $1`, rec.EntityID); err != nil {
			return wrapWriteError("error undoing node create", err)
		}
		return nil
	case ActionUpdate:
		var old models.Node
		if err := json.Unmarshal(rec.OldData, &old); err != nil {
			return fmt.Errorf("error decoding node snapshot: %w", err)
		}
		_, err := q.Exec(
			`UPDATE nodes SET name = $1, photo_url = $2, birth_date = $3, gender = $4, description = $5,
			   x_position = $6, y_position = $7, updated_at = CURRENT_TIMESTAMP
			 WHERE id = $8`,
			old.Name, old.PhotoURL, old.BirthDate, old.Gender, old.Description,
			old.XPosition, old.YPosition, old.ID,
		)
		if err != nil {
			return wrapWriteError("error undoing node update", err)
		}
		return nil
	case ActionDelete:
		var old models.DeletedNode
		if err := json.Unmarshal(rec.OldData, &old); err != nil {
			return fmt.Errorf("error decoding deleted node snapshot: %w", err)
		}
		if err := insertNodeRow(q, &old.Node); err != nil {
			return err
		}
		// Restore the relationships the delete cascaded away.
		for _, rel := range old.Relationships {
			if err := insertRelationshipRow(q, rel); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("unsupported node history action %q", rec.ActionType)
}

func compensateRelationship(q execer, rec *models.HistoryRecord) error {
	switch rec.ActionType {
	case ActionCreate:
		if _, err := q.Exec(`DELETE FROM relationships WHERE id = $1`, rec.EntityID); err != nil {
			return wrapWriteError("error undoing relationship create", err)
		}
		return nil
	case ActionUpdate:
		var old models.Relationship
		if err := json.Unmarshal(rec.OldData, &old); err != nil {
			return fmt.Errorf("error decoding relationship snapshot: %w", err)
		}
		_, err := q.Exec(
			`UPDATE relationships SET relationship_type = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`,
			old.RelationshipType, old.ID,
		)
		if err != nil {
			return wrapWriteError("error undoing relationship update", err)
		}
		return nil
	case ActionDelete:
		var old models.Relationship
		if err := json.Unmarshal(rec.OldData, &old); err != nil {
			return fmt.Errorf("error decoding relationship snapshot: %w", err)
		}
		return insertRelationshipRow(q, &old)
	}
	return fmt.Errorf("unsupported relationship history action %q", rec.ActionType)
}

func compensateLayout(q execer, rec *models.HistoryRecord) error {
	if rec.ActionType != ActionUpdate {
		return fmt.Errorf("unsupported layout history action %q", rec.ActionType)
	}
	var old models.TreeLayout
	if err := json.Unmarshal(rec.OldData, &old); err != nil {
		return fmt.Errorf("error decoding layout snapshot: %w", err)
	}
	return applyTreeLayout(q, &old)
}

// insertNodeRow re-inserts a node with its original id and timestamps, then
// resyncs the id sequence so later inserts do not collide.
func insertNodeRow(q execer, node *models.Node) error {
	_, err := q.Exec(
		`INSERT INTO nodes (id, tree_id, name, photo_url, birth_date, gender, description,
		   x_position, y_position, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		node.ID, node.TreeID, node.Name, node.PhotoURL, node.BirthDate, node.Gender,
		node.Description, node.XPosition, node.YPosition, node.CreatedAt, node.UpdatedAt,
	)
	if err != nil {
		return wrapWriteError("error restoring node", err)
	}
	return resyncSerial(q, "nodes")
}

// insertRelationshipRow re-inserts an edge with its original id, then resyncs
// the id sequence.
func insertRelationshipRow(q execer, rel *models.Relationship) error {
	_, err := q.Exec(
		`INSERT INTO relationships (id, tree_id, source_node_id, target_node_id, relationship_type,
		   created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rel.ID, rel.TreeID, rel.SourceNodeID, rel.TargetNodeID, rel.RelationshipType,
		rel.CreatedAt, rel.UpdatedAt,
	)
	if err != nil {
		return wrapWriteError("error restoring relationship", err)
	}
	return resyncSerial(q, "relationships")
}

// resyncSerial moves a table's id sequence past the largest present id.
// Needed after inserting rows with explicit ids. Only called with fixed
// table names.
func resyncSerial(q execer, table string) error {
	query := fmt.Sprintf(
		`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT COALESCE(MAX(id), 1) FROM %s))`,
		table, table)
	if _, err := q.Exec(query); err != nil {
		return fmt.Errorf("error resyncing %s id sequence: %w", table, err)
	}
	return nil
}

// applyTreeLayout writes a full tree layout: the tree's own fields plus a
// full-field overwrite of every listed node and relationship. Rows are
// matched within the tree only; a missing row yields ErrNotFound so a
// surrounding transaction persists nothing.
func applyTreeLayout(q execer, layout *models.TreeLayout) error {
	result, err := q.Exec(
		`UPDATE trees SET name = $1, description = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $3`,
		layout.Tree.Name, layout.Tree.Description, layout.Tree.ID,
	)
	if err != nil {
		return wrapWriteError("error updating tree layout", err)
	}
	if err := requireRow(result, fmt.Sprintf("tree with ID %d", layout.Tree.ID)); err != nil {
		return err
	}

	for _, node := range layout.Nodes {
		result, err := q.Exec(
			`UPDATE nodes SET name = $1, photo_url = $2, birth_date = $3, gender = $4, description = $5,
			   x_position = $6, y_position = $7, updated_at = CURRENT_TIMESTAMP
			 WHERE id = $8 AND tree_id = $9`,
			node.Name, node.PhotoURL, node.BirthDate, node.Gender, node.Description,
			node.XPosition, node.YPosition, node.ID, layout.Tree.ID,
		)
		if err != nil {
			return wrapWriteError("error updating node layout", err)
		}
		if err := requireRow(result, fmt.Sprintf("node with ID %d in tree %d", node.ID, layout.Tree.ID)); err != nil {
			return err
		}
	}

	for _, rel := range layout.Relationships {
		result, err := q.Exec(
			`UPDATE relationships SET relationship_type = $1, updated_at = CURRENT_TIMESTAMP
			 WHERE id = $2 AND tree_id = $3`,
			rel.RelationshipType, rel.ID, layout.Tree.ID,
		)
		if err != nil {
			return wrapWriteError("error updating relationship layout", err)
		}
		if err := requireRow(result, fmt.Sprintf("relationship with ID %d in tree %d", rel.ID, layout.Tree.ID)); err != nil {
			return err
		}
	}
	return nil
}
