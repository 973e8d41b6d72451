// Package selection tracks the active layer set and moves layers through
// the internal and external clipboards.
package selection

import (
	"github.com/gogpu/layerforge/layer"
)

// Set is the ordered set of selected layers. Order is insertion order; the
// first element is the lead layer for snapping and single-layer UI.
type Set struct {
	items  []*layer.Layer
	anchor *layer.Layer
}

// Layers returns a copy of the selection in insertion order.
func (s *Set) Layers() []*layer.Layer {
	out := make([]*layer.Layer, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Set) Len() int    { return len(s.items) }
func (s *Set) Empty() bool { return len(s.items) == 0 }

// First returns the lead layer, or nil.
func (s *Set) First() *layer.Layer {
	if len(s.items) == 0 {
		return nil
	}
	return s.items[0]
}

// Contains reports whether l is selected.
func (s *Set) Contains(l *layer.Layer) bool { return s.index(l) >= 0 }

func (s *Set) index(l *layer.Layer) int {
	for i, it := range s.items {
		if it == l {
			return i
		}
	}
	return -1
}

// Add selects l. Invisible and already selected layers are ignored.
func (s *Set) Add(l *layer.Layer) bool {
	if l == nil || !l.Visible || s.Contains(l) {
		return false
	}
	s.items = append(s.items, l)
	return true
}

// Remove deselects l.
func (s *Set) Remove(l *layer.Layer) bool {
	i := s.index(l)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	if s.anchor == l {
		s.anchor = nil
	}
	return true
}

// Replace makes ls the whole selection.
func (s *Set) Replace(ls ...*layer.Layer) {
	s.items = s.items[:0]
	s.anchor = nil
	for _, l := range ls {
		s.Add(l)
	}
	if len(s.items) > 0 {
		s.anchor = s.items[0]
	}
}

// Clear deselects everything.
func (s *Set) Clear() {
	s.items = nil
	s.anchor = nil
}

// Click applies the pointer selection rules for a press on l and reports
// whether the selection changed. order is the display order used for
// Shift ranges.
//
//   - plain: replace with l, unless l is already the sole selection
//   - ctrl: toggle l
//   - shift: select the range between the anchor and l
func (s *Set) Click(l *layer.Layer, ctrl, shift bool, order []*layer.Layer) bool {
	if l == nil {
		return false
	}
	switch {
	case ctrl:
		s.anchor = l
		if s.Remove(l) {
			return true
		}
		return s.Add(l)
	case shift && s.anchor != nil:
		return s.selectRange(s.anchor, l, order)
	}
	if len(s.items) == 1 && s.items[0] == l {
		return false
	}
	s.Replace(l)
	return true
}

func (s *Set) selectRange(from, to *layer.Layer, order []*layer.Layer) bool {
	i, j := -1, -1
	for k, l := range order {
		if l == from {
			i = k
		}
		if l == to {
			j = k
		}
	}
	if i < 0 || j < 0 {
		anchor := s.anchor
		s.Replace(to)
		return anchor != to
	}
	if i > j {
		i, j = j, i
	}
	anchor := s.anchor
	s.items = s.items[:0]
	for _, l := range order[i : j+1] {
		s.Add(l)
	}
	s.anchor = anchor
	return true
}

// Prune drops layers that are no longer in store or have become
// invisible, and returns how many were removed.
func (s *Set) Prune(store *layer.Store) int {
	n := 0
	kept := s.items[:0]
	for _, l := range s.items {
		if l.Visible && store.Contains(l) {
			kept = append(kept, l)
			continue
		}
		if s.anchor == l {
			s.anchor = nil
		}
		n++
	}
	s.items = kept
	return n
}
