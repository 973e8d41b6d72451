package layer

import "sort"

// Direction is a relative reorder step.
type Direction int

const (
	Up Direction = iota
	Down
)

// MoveLayers swaps each selected layer with its unselected neighbour one
// step up or down in paint order. Indices are processed descending for Up
// and ascending for Down so that a block of selected layers moves as one.
// z-indices are renormalized afterwards.
func (s *Store) MoveLayers(selected []*Layer, dir Direction) {
	s.Normalize()
	sel := make(map[*Layer]bool, len(selected))
	idx := make([]int, 0, len(selected))
	for _, l := range selected {
		if i := s.IndexOf(l); i >= 0 && !sel[l] {
			sel[l] = true
			idx = append(idx, i)
		}
	}
	if dir == Up {
		sort.Sort(sort.Reverse(sort.IntSlice(idx)))
	} else {
		sort.Ints(idx)
	}
	for _, i := range idx {
		switch dir {
		case Up:
			if i < len(s.layers)-1 && !sel[s.layers[i+1]] {
				s.layers[i], s.layers[i+1] = s.layers[i+1], s.layers[i]
			}
		case Down:
			if i > 0 && !sel[s.layers[i-1]] {
				s.layers[i], s.layers[i-1] = s.layers[i-1], s.layers[i]
			}
		}
	}
	s.renumber()
}

// MoveLayersTo moves the selected layers as a block to position toIndex of
// the display order (topmost first), counted among the unselected layers.
// The block keeps its internal order.
func (s *Store) MoveLayersTo(selected []*Layer, toIndex int) {
	s.Normalize()
	sel := make(map[*Layer]bool, len(selected))
	for _, l := range selected {
		if s.Contains(l) {
			sel[l] = true
		}
	}
	if len(sel) == 0 {
		return
	}
	display := s.DisplayOrder()
	moving := make([]*Layer, 0, len(sel))
	others := make([]*Layer, 0, len(display))
	for _, l := range display {
		if sel[l] {
			moving = append(moving, l)
		} else {
			others = append(others, l)
		}
	}
	if toIndex < 0 {
		toIndex = 0
	}
	if toIndex > len(others) {
		toIndex = len(others)
	}
	out := make([]*Layer, 0, len(display))
	out = append(out, others[:toIndex]...)
	out = append(out, moving...)
	out = append(out, others[toIndex:]...)

	for i, l := range out {
		s.layers[len(out)-1-i] = l
	}
	s.renumber()
}
