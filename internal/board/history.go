package board

// DefaultHistoryCap bounds undo memory when no cap is configured.
const DefaultHistoryCap = 20

// History is a bounded undo stack with a cursor.
//
// The cursor always points at the entry for the current visible state.
// Push drops any entries after the cursor before appending, and evicts the
// oldest entry once the cap is exceeded. There is no redo.
type History[T any] struct {
	entries []T
	cursor  int
	limit   int
}

// NewHistory creates an empty history holding at most limit entries.
// A limit below 1 falls back to DefaultHistoryCap.
func NewHistory[T any](limit int) *History[T] {
	if limit < 1 {
		limit = DefaultHistoryCap
	}
	return &History[T]{
		entries: make([]T, 0, limit),
		cursor:  -1,
		limit:   limit,
	}
}

// Push records entry as the new current state.
func (h *History[T]) Push(entry T) {
	h.entries = append(h.entries[:h.cursor+1], entry)
	h.cursor++
	if len(h.entries) > h.limit {
		// shift down so the backing array does not grow unbounded
		n := copy(h.entries, h.entries[1:])
		var zero T
		h.entries[n] = zero
		h.entries = h.entries[:n]
		h.cursor--
	}
}

// Undo moves the cursor back one entry and returns the entry now current.
// It reports false and changes nothing when the cursor is at the first entry.
func (h *History[T]) Undo() (T, bool) {
	if h.cursor <= 0 {
		var zero T
		return zero, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Current returns the entry at the cursor.
func (h *History[T]) Current() (T, bool) {
	if h.cursor < 0 {
		var zero T
		return zero, false
	}
	return h.entries[h.cursor], true
}

// Reset drops every entry and starts over from entry.
func (h *History[T]) Reset(entry T) {
	clear(h.entries)
	h.entries = append(h.entries[:0], entry)
	h.cursor = 0
}

func (h *History[T]) Len() int    { return len(h.entries) }
func (h *History[T]) Cursor() int { return h.cursor }
func (h *History[T]) Limit() int  { return h.limit }

// CanUndo reports whether Undo would move the cursor.
func (h *History[T]) CanUndo() bool {
	return h.cursor > 0
}
