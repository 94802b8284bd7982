// Package snapshot provides the in-memory undo/redo model used by editing
// surfaces: a bounded stack of immutable state snapshots with a cursor. It is
// independent of the persistence layer; nothing here survives a restart.
package snapshot

import "sync"

// DefaultCapacity bounds a History when the caller passes no usable capacity.
const DefaultCapacity = 50

// History is a bounded snapshot stack with a cursor. Push records a new
// state, dropping any redo tail beyond the cursor and evicting the oldest
// entry once the bound is reached; Undo and Redo only move the cursor.
// Snapshots are stored as given and must be treated as immutable by callers.
// Safe for concurrent use.
type History[T any] struct {
	mu       sync.Mutex
	entries  []T
	cursor   int // index of the current entry, -1 when empty
	capacity int
}

// New creates a History bounded to capacity entries; non-positive capacities
// fall back to DefaultCapacity.
func New[T any](capacity int) *History[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &History[T]{
		entries:  make([]T, 0, capacity),
		cursor:   -1,
		capacity: capacity,
	}
}

// Push records state as the new current entry. Entries past the cursor (the
// redo tail) are discarded first, so redo is only available until the next
// edit, matching editor semantics.
func (h *History[T]) Push(state T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:h.cursor+1], state)
	if len(h.entries) > h.capacity {
		h.entries = h.entries[1:] // evict the oldest snapshot
	}
	h.cursor = len(h.entries) - 1
}

// Undo moves the cursor one entry back and returns the snapshot there.
// Reports false when there is no earlier entry to return.
func (h *History[T]) Undo() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor <= 0 {
		var zero T
		return zero, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Redo moves the cursor one entry forward and returns the snapshot there.
// Reports false when the cursor is already at the newest entry.
func (h *History[T]) Redo() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor < 0 || h.cursor >= len(h.entries)-1 {
		var zero T
		return zero, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// Current returns the snapshot at the cursor, reporting false when empty.
func (h *History[T]) Current() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor < 0 {
		var zero T
		return zero, false
	}
	return h.entries[h.cursor], true
}

// CanUndo reports whether Undo would succeed.
func (h *History[T]) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor > 0
}

// CanRedo reports whether Redo would succeed.
func (h *History[T]) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor >= 0 && h.cursor < len(h.entries)-1
}

// Len returns the number of retained snapshots.
func (h *History[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
