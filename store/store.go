package store

import (
	"database/sql"
	"fmt"
	"time"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// execer is satisfied by both *sql.DB and *sql.Tx, letting the row-level
// helpers run inside or outside a transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// requireRow translates "zero rows affected" into ErrNotFound.
func requireRow(result sql.Result, what string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}

// formatTimestamp renders a database timestamp as RFC3339 for JSON output.
func formatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339)
}

// formatDate renders a nullable DATE column as YYYY-MM-DD, or nil when null.
func formatDate(t sql.NullTime) *string {
	if !t.Valid {
		return nil
	}
	s := t.Time.Format("2006-01-02")
	return &s
}
