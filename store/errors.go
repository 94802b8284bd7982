package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrNotFound signals that the requested row does not exist. Handlers map it
// to HTTP 404; every other store failure surfaces as a generic 500.
var ErrNotFound = errors.New("not found")

// ErrConstraint signals that the database rejected a write because a
// foreign-key, check or uniqueness rule was violated.
var ErrConstraint = errors.New("constraint violation")

// SQLSTATE class 23 covers all integrity constraint violations.
const classIntegrityViolation = "23"

// wrapWriteError converts driver-level constraint failures into ErrConstraint
// so callers can dispatch with errors.Is; other errors pass through wrapped.
func wrapWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == classIntegrityViolation {
		return fmt.Errorf("%s: %w: %s", op, ErrConstraint, pqErr.Message)
	}
	return fmt.Errorf("%s: %w", op, err)
}
