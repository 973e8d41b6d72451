// Package history keeps a bounded linear list of model snapshots for undo
// and redo.
package history

// DefaultLimit is the number of snapshots kept when New is given a
// non-positive limit.
const DefaultLimit = 50

// History is a snapshot timeline with a cursor. Save records a new state
// after the cursor and discards any redo branch; Undo and Redo move the
// cursor. It is not safe for concurrent use.
type History[T any] struct {
	limit  int
	states []T
	pos    int
}

// New returns an empty History keeping at most limit snapshots.
func New[T any](limit int) *History[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History[T]{limit: limit, pos: -1}
}

// Save records s as the current state.
func (h *History[T]) Save(s T) {
	h.states = append(h.states[:h.pos+1], s)
	if over := len(h.states) - h.limit; over > 0 {
		var zero T
		for i := 0; i < over; i++ {
			h.states[i] = zero
		}
		h.states = h.states[over:]
	}
	h.pos = len(h.states) - 1
}

// Current returns the state at the cursor.
func (h *History[T]) Current() (T, bool) {
	if h.pos < 0 {
		var zero T
		return zero, false
	}
	return h.states[h.pos], true
}

// Undo steps back and returns the state to restore.
func (h *History[T]) Undo() (T, bool) {
	if !h.CanUndo() {
		var zero T
		return zero, false
	}
	h.pos--
	return h.states[h.pos], true
}

// Redo steps forward and returns the state to restore.
func (h *History[T]) Redo() (T, bool) {
	if !h.CanRedo() {
		var zero T
		return zero, false
	}
	h.pos++
	return h.states[h.pos], true
}

func (h *History[T]) CanUndo() bool { return h.pos > 0 }
func (h *History[T]) CanRedo() bool { return h.pos >= 0 && h.pos < len(h.states)-1 }

// Len returns the number of stored snapshots.
func (h *History[T]) Len() int { return len(h.states) }

// Reset drops every snapshot and records s as the only state.
func (h *History[T]) Reset(s T) {
	h.states = h.states[:0]
	h.pos = -1
	h.Save(s)
}
