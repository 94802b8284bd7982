package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyHistory(t *testing.T) {
	h := New[string](10)

	assert.Equal(t, 0, h.Len())
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	_, ok := h.Current()
	assert.False(t, ok)
	_, ok = h.Undo()
	assert.False(t, ok)
	_, ok = h.Redo()
	assert.False(t, ok)
}

func TestPushAndCurrent(t *testing.T) {
	h := New[string](10)
	h.Push("a")
	h.Push("b")

	current, ok := h.Current()
	assert.True(t, ok)
	assert.Equal(t, "b", current)
	assert.Equal(t, 2, h.Len())
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestUndoRedo(t *testing.T) {
	h := New[string](10)
	h.Push("a")
	h.Push("b")
	h.Push("c")

	state, ok := h.Undo()
	assert.True(t, ok)
	assert.Equal(t, "b", state)

	state, ok = h.Undo()
	assert.True(t, ok)
	assert.Equal(t, "a", state)

	// Bottom of the stack.
	_, ok = h.Undo()
	assert.False(t, ok)

	state, ok = h.Redo()
	assert.True(t, ok)
	assert.Equal(t, "b", state)

	state, ok = h.Redo()
	assert.True(t, ok)
	assert.Equal(t, "c", state)

	_, ok = h.Redo()
	assert.False(t, ok)
}

func TestPushDiscardsRedoTail(t *testing.T) {
	h := New[string](10)
	h.Push("a")
	h.Push("b")
	h.Push("c")

	h.Undo()
	h.Undo()
	assert.True(t, h.CanRedo())

	// A new edit after undo forks the timeline and drops the redo tail.
	h.Push("d")
	assert.False(t, h.CanRedo())
	assert.Equal(t, 2, h.Len())

	current, _ := h.Current()
	assert.Equal(t, "d", current)
	state, ok := h.Undo()
	assert.True(t, ok)
	assert.Equal(t, "a", state)
}

func TestCapacityEviction(t *testing.T) {
	h := New[int](3)
	for i := 1; i <= 5; i++ {
		h.Push(i)
	}

	assert.Equal(t, 3, h.Len())
	current, _ := h.Current()
	assert.Equal(t, 5, current)

	// Only the newest three snapshots survive.
	state, _ := h.Undo()
	assert.Equal(t, 4, state)
	state, _ = h.Undo()
	assert.Equal(t, 3, state)
	_, ok := h.Undo()
	assert.False(t, ok)
}

func TestNewNonPositiveCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		h := New[int](capacity)
		for i := 0; i < DefaultCapacity+10; i++ {
			h.Push(i)
		}
		assert.Equal(t, DefaultCapacity, h.Len())
	}
}

func TestSingleEntry(t *testing.T) {
	h := New[string](10)
	h.Push("only")

	// One snapshot means nothing to undo to.
	assert.False(t, h.CanUndo())
	_, ok := h.Undo()
	assert.False(t, ok)

	current, ok := h.Current()
	assert.True(t, ok)
	assert.Equal(t, "only", current)
}
