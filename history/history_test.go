package history

import "testing"

func TestUndoRedo(t *testing.T) {
	h := New[int](10)
	if _, ok := h.Undo(); ok {
		t.Fatal("undo on empty history succeeded")
	}
	h.Save(1)
	h.Save(2)
	h.Save(3)

	steps := []struct {
		name string
		op   func() (int, bool)
		want int
		ok   bool
	}{
		{"undo", h.Undo, 2, true},
		{"undo", h.Undo, 1, true},
		{"undo at start", h.Undo, 0, false},
		{"redo", h.Redo, 2, true},
		{"redo", h.Redo, 3, true},
		{"redo at end", h.Redo, 0, false},
	}
	for i, s := range steps {
		got, ok := s.op()
		if got != s.want || ok != s.ok {
			t.Errorf("step %d %s = (%d, %v), want (%d, %v)", i, s.name, got, ok, s.want, s.ok)
		}
	}
}

func TestSaveDropsRedoBranch(t *testing.T) {
	h := New[string](10)
	h.Save("a")
	h.Save("b")
	h.Undo()
	h.Save("c")
	if h.CanRedo() {
		t.Error("redo should be gone after a new save")
	}
	if got, _ := h.Current(); got != "c" {
		t.Errorf("current = %q, want c", got)
	}
	if got, _ := h.Undo(); got != "a" {
		t.Errorf("undo = %q, want a", got)
	}
	if h.Len() != 2 {
		t.Errorf("len = %d, want 2", h.Len())
	}
}

func TestLimit(t *testing.T) {
	h := New[int](3)
	for i := 1; i <= 5; i++ {
		h.Save(i)
	}
	if h.Len() != 3 {
		t.Fatalf("len = %d, want 3", h.Len())
	}
	h.Undo()
	got, _ := h.Undo()
	if got != 3 {
		t.Errorf("oldest reachable = %d, want 3", got)
	}
	if h.CanUndo() {
		t.Error("should not undo past the limit")
	}
}

func TestReset(t *testing.T) {
	h := New[int](0)
	h.Save(1)
	h.Save(2)
	h.Reset(7)
	if h.CanUndo() || h.CanRedo() {
		t.Error("reset history should have no undo or redo")
	}
	if got, ok := h.Current(); !ok || got != 7 {
		t.Errorf("current = (%d, %v), want (7, true)", got, ok)
	}
}
