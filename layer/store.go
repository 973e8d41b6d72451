package layer

import (
	"sort"
	"strconv"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/geom"
)

// Store owns the layers of one canvas, kept sorted ascending by ZIndex so
// that iteration order is paint order.
//
// Store is not safe for concurrent use; it is mutated from the event loop.
type Store struct {
	layers []*Layer
}

// NewStore returns an empty store.
func NewStore() *Store { return &Store{} }

// Len returns the number of layers.
func (s *Store) Len() int { return len(s.layers) }

// Layers returns the layers in paint order (ascending z). The slice is a
// copy; the layers are shared.
func (s *Store) Layers() []*Layer {
	out := make([]*Layer, len(s.layers))
	copy(out, s.layers)
	return out
}

// DisplayOrder returns the layers topmost first, as a layers list shows them.
func (s *Store) DisplayOrder() []*Layer {
	out := make([]*Layer, len(s.layers))
	for i, l := range s.layers {
		out[len(s.layers)-1-i] = l
	}
	return out
}

// Get returns the layer with the given id, or nil.
func (s *Store) Get(id string) *Layer {
	for _, l := range s.layers {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// IndexOf returns the paint-order index of l, or -1.
func (s *Store) IndexOf(l *Layer) int {
	for i, x := range s.layers {
		if x == l {
			return i
		}
	}
	return -1
}

// Contains reports whether l is owned by the store.
func (s *Store) Contains(l *Layer) bool { return s.IndexOf(l) >= 0 }

// TopZ returns the highest z-index, or -1 when empty.
func (s *Store) TopZ() int {
	if len(s.layers) == 0 {
		return -1
	}
	return s.layers[len(s.layers)-1].ZIndex
}

// Add places l above every existing layer. An empty name becomes
// "Layer n"; the name is made unique either way.
func (s *Store) Add(l *Layer) error {
	if l == nil {
		return layerforge.Wrap("add layer", layerforge.ErrValidation)
	}
	if l.ID == "" {
		l.ID = NewID()
	}
	if l.Name == "" {
		l.Name = "Layer " + strconv.Itoa(len(s.layers)+1)
	}
	l.Name = s.UniqueName(l.Name, l)
	l.ZIndex = s.TopZ() + 1
	s.layers = append(s.layers, l)
	return nil
}

// AddGroup places ls above every existing layer while keeping their
// relative z order.
func (s *Store) AddGroup(ls []*Layer) error {
	group := make([]*Layer, len(ls))
	copy(group, ls)
	sort.SliceStable(group, func(i, j int) bool { return group[i].ZIndex < group[j].ZIndex })
	for _, l := range group {
		if err := s.Add(l); err != nil {
			return err
		}
	}
	return nil
}

// InsertAt inserts l at paint-order index i (clamped) and renormalizes.
func (s *Store) InsertAt(l *Layer, i int) {
	if i < 0 {
		i = 0
	}
	if i > len(s.layers) {
		i = len(s.layers)
	}
	if l.ID == "" {
		l.ID = NewID()
	}
	l.Name = s.UniqueName(l.Name, l)
	s.layers = append(s.layers, nil)
	copy(s.layers[i+1:], s.layers[i:])
	s.layers[i] = l
	s.renumber()
}

// Remove deletes the given layers and renormalizes z. It returns the number
// removed.
func (s *Store) Remove(ls ...*Layer) int {
	drop := make(map[*Layer]bool, len(ls))
	for _, l := range ls {
		drop[l] = true
	}
	kept := s.layers[:0]
	n := 0
	for _, l := range s.layers {
		if drop[l] {
			n++
			continue
		}
		kept = append(kept, l)
	}
	for i := len(kept); i < len(s.layers); i++ {
		s.layers[i] = nil
	}
	s.layers = kept
	if n > 0 {
		s.renumber()
	}
	return n
}

// Replace swaps the whole content for ls, sorted by their z-index.
func (s *Store) Replace(ls []*Layer) {
	s.layers = make([]*Layer, len(ls))
	copy(s.layers, ls)
	s.Sort()
}

// Sort re-sorts ascending by z-index. Equal z keep their relative order.
func (s *Store) Sort() {
	sort.SliceStable(s.layers, func(i, j int) bool { return s.layers[i].ZIndex < s.layers[j].ZIndex })
}

// Normalize sorts and then rewrites z-indices as 0..N-1.
func (s *Store) Normalize() {
	s.Sort()
	s.renumber()
}

func (s *Store) renumber() {
	for i, l := range s.layers {
		l.ZIndex = i
	}
}

// HitTest returns the topmost visible layer whose rotated frame contains p.
func (s *Store) HitTest(p geom.Vec) *Layer {
	for i := len(s.layers) - 1; i >= 0; i-- {
		l := s.layers[i]
		if l.Visible && l.Contains(p) {
			return l
		}
	}
	return nil
}

// Bounds returns the union of the rotated bounds of ls.
func Bounds(ls []*Layer) geom.Rect {
	pts := make([]geom.Vec, 0, 4*len(ls))
	for _, l := range ls {
		c := l.Corners()
		pts = append(pts, c[:]...)
	}
	return geom.Bounds(pts...)
}
