package layer

import (
	"testing"

	"github.com/gogpu/layerforge/geom"
)

func newStore(names ...string) (*Store, []*Layer) {
	s := NewStore()
	ls := make([]*Layer, len(names))
	for i, n := range names {
		ls[i] = &Layer{Name: n, Width: 10, Height: 10, Visible: true}
		_ = s.Add(ls[i])
	}
	return s, ls
}

func names(ls []*Layer) string {
	out := ""
	for _, l := range ls {
		out += l.Name
	}
	return out
}

func checkDense(t *testing.T, s *Store) {
	t.Helper()
	for i, l := range s.Layers() {
		if l.ZIndex != i {
			t.Fatalf("layer %q at %d has z %d", l.Name, i, l.ZIndex)
		}
	}
}

func TestAddAssignsTopZ(t *testing.T) {
	s, ls := newStore("A", "B", "C")
	for i, l := range ls {
		if l.ZIndex != i {
			t.Errorf("%s z = %d, want %d", l.Name, l.ZIndex, i)
		}
	}
	if s.TopZ() != 2 {
		t.Errorf("TopZ = %d", s.TopZ())
	}
	if err := s.Add(nil); err == nil {
		t.Error("Add(nil) should fail")
	}
}

func TestDefaultAndUniqueNames(t *testing.T) {
	s := NewStore()
	a := &Layer{}
	_ = s.Add(a)
	if a.Name != "Layer 1" {
		t.Errorf("default name = %q", a.Name)
	}
	b := &Layer{Name: "Layer 1"}
	_ = s.Add(b)
	if b.Name != "Layer 1 (1)" {
		t.Errorf("collision name = %q", b.Name)
	}
	c := &Layer{Name: "Layer 1 (1)"}
	_ = s.Add(c)
	if c.Name != "Layer 1 (2)" {
		t.Errorf("suffix collision name = %q", c.Name)
	}
	s.Remove(b)
	d := &Layer{Name: "Layer 1"}
	_ = s.Add(d)
	if d.Name != "Layer 1 (1)" {
		t.Errorf("lowest free n not reused: %q", d.Name)
	}
}

func TestUniqueNameNFC(t *testing.T) {
	s := NewStore()
	_ = s.Add(&Layer{Name: "caf\u00e9"})
	l := &Layer{Name: "cafe\u0301"}
	_ = s.Add(l)
	if l.Name != "cafe\u0301 (1)" {
		t.Errorf("canonically equal names not detected: %q", l.Name)
	}
}

func TestRenameExcludesSelf(t *testing.T) {
	s, ls := newStore("A", "B")
	s.Rename(ls[0], " A ")
	if ls[0].Name != "A" {
		t.Errorf("Rename to own name = %q", ls[0].Name)
	}
	s.Rename(ls[1], "A")
	if ls[1].Name != "A (1)" {
		t.Errorf("Rename collision = %q", ls[1].Name)
	}
}

func TestRemoveRenormalizes(t *testing.T) {
	s, ls := newStore("A", "B", "C", "D")
	if n := s.Remove(ls[1], ls[2]); n != 2 {
		t.Fatalf("Remove = %d", n)
	}
	if names(s.Layers()) != "AD" {
		t.Errorf("order = %s", names(s.Layers()))
	}
	checkDense(t, s)
	if s.Remove(ls[1]) != 0 {
		t.Error("removing absent layer reported a removal")
	}
}

func TestAddGroupKeepsRelativeOrder(t *testing.T) {
	s, _ := newStore("A")
	x := &Layer{Name: "X", ZIndex: 7}
	y := &Layer{Name: "Y", ZIndex: 3}
	if err := s.AddGroup([]*Layer{x, y}); err != nil {
		t.Fatal(err)
	}
	if names(s.Layers()) != "AYX" {
		t.Errorf("order = %s", names(s.Layers()))
	}
	checkDense(t, s)
}

func TestInsertAt(t *testing.T) {
	s, _ := newStore("A", "B", "C")
	s.InsertAt(&Layer{Name: "F"}, 1)
	if names(s.Layers()) != "AFBC" {
		t.Errorf("order = %s", names(s.Layers()))
	}
	checkDense(t, s)
	s.InsertAt(&Layer{Name: "G"}, 99)
	if names(s.Layers()) != "AFBCG" {
		t.Errorf("clamped order = %s", names(s.Layers()))
	}
}

func TestReplaceSorts(t *testing.T) {
	s := NewStore()
	s.Replace([]*Layer{{Name: "B", ZIndex: 5}, {Name: "A", ZIndex: 1}})
	if names(s.Layers()) != "AB" {
		t.Errorf("order = %s", names(s.Layers()))
	}
	s.Normalize()
	checkDense(t, s)
}

func TestHitTest(t *testing.T) {
	s := NewStore()
	low := &Layer{Name: "low", Width: 100, Height: 100, Visible: true}
	high := &Layer{Name: "high", X: 50, Y: 50, Width: 100, Height: 100, Visible: true}
	hidden := &Layer{Name: "hidden", Width: 200, Height: 200}
	_ = s.Add(low)
	_ = s.Add(high)
	_ = s.Add(hidden)

	tests := []struct {
		p    geom.Vec
		want *Layer
	}{
		{geom.V(10, 10), low},
		{geom.V(75, 75), high},
		{geom.V(180, 180), nil},
	}
	for _, tt := range tests {
		if got := s.HitTest(tt.p); got != tt.want {
			t.Errorf("HitTest(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestBounds(t *testing.T) {
	a := &Layer{Width: 10, Height: 10}
	b := &Layer{X: 20, Y: 5, Width: 10, Height: 10}
	if got := Bounds([]*Layer{a, b}); got != geom.R(0, 0, 30, 15) {
		t.Errorf("Bounds = %+v", got)
	}
}
