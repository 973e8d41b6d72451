package mask

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/layerforge/geom"
)

func hardBrush(size float64) Option {
	return WithBrush(Brush{Size: size, Strength: 1, Hardness: 1})
}

func TestEmptyMask(t *testing.T) {
	e := New(geom.R(0, 0, 100, 100))
	if !e.Empty() || e.Mask() != nil || e.MaskForOutputArea() != nil {
		t.Error("new mask should be empty")
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct{ a, want int }{{0, 0}, {511, 0}, {512, 1}, {-1, -1}, {-512, -1}, {-513, -2}}
	for _, tt := range tests {
		if got := floorDiv(tt.a, ChunkSize); got != tt.want {
			t.Errorf("floorDiv(%d) = %d, want %d", tt.a, got, tt.want)
		}
	}
}

func TestDabAndOutputArea(t *testing.T) {
	e := New(geom.R(0, 0, 100, 100), hardBrush(10))
	e.Dab(geom.V(50, 50), false)

	m := e.MaskForOutputArea()
	if m == nil || m.Bounds() != image.Rect(0, 0, 100, 100) {
		t.Fatalf("MaskForOutputArea bounds = %v", m)
	}
	if m.AlphaAt(50, 50).A != 255 {
		t.Errorf("painted pixel = %d", m.AlphaAt(50, 50).A)
	}
	if m.AlphaAt(0, 0).A != 0 || m.AlphaAt(60, 50).A != 0 {
		t.Error("paint leaked outside the dab")
	}
}

func TestSoftDabAccumulates(t *testing.T) {
	e := New(geom.R(0, 0, 64, 64), WithBrush(Brush{Size: 10, Strength: 0.5, Hardness: 1}))
	e.Dab(geom.V(20, 20), false)
	if got := e.MaskForOutputArea().AlphaAt(20, 20).A; got != 128 {
		t.Errorf("first dab = %d, want 128", got)
	}
	e.Dab(geom.V(20, 20), false)
	if got := e.MaskForOutputArea().AlphaAt(20, 20).A; got < 191 || got > 192 {
		t.Errorf("second dab = %d, want about 191.5", got)
	}
}

func TestUpdatePositionKeepsWorldContent(t *testing.T) {
	e := New(geom.R(0, 0, 100, 100), hardBrush(4))
	e.Dab(geom.V(50, 50), false)
	e.UpdatePosition(-50, -50)
	if e.X != -50 || e.Y != -50 {
		t.Fatalf("position = %v,%v", e.X, e.Y)
	}
	m := e.MaskForOutputArea()
	if m.AlphaAt(0, 0).A != 255 {
		t.Errorf("content did not follow the mask position")
	}
	if m.AlphaAt(50, 50).A != 0 {
		t.Errorf("old location still painted")
	}
}

func TestNegativeCoordinates(t *testing.T) {
	e := New(geom.R(0, 0, 10, 10), hardBrush(4))
	e.Dab(geom.V(-10, -10), false)
	full := e.Mask()
	if full == nil {
		t.Fatal("Mask() = nil")
	}
	if !image.Pt(-10, -10).In(full.Bounds()) || full.AlphaAt(-10, -10).A != 255 {
		t.Errorf("bounds %v, value %d", full.Bounds(), full.AlphaAt(-10, -10).A)
	}
	if e.MaskForOutputArea() != nil {
		t.Error("paint outside the area should not be reported for it")
	}
}

func TestEraseStrokePrunes(t *testing.T) {
	e := New(geom.R(0, 0, 100, 100), hardBrush(10))
	e.BeginStroke(geom.V(50, 50), false)
	e.EndStroke()
	e.BeginStroke(geom.V(50, 50), true)
	if !e.Stroking() {
		t.Error("Stroking() = false during stroke")
	}
	e.EndStroke()
	if !e.Empty() {
		t.Error("fully erased chunk should be dropped")
	}
}

func TestStrokeTo(t *testing.T) {
	e := New(geom.R(0, 0, 100, 100), hardBrush(10))
	e.StrokeTo(geom.V(5, 5)) // ignored outside a stroke
	if !e.Empty() {
		t.Fatal("StrokeTo without BeginStroke painted")
	}
	e.BeginStroke(geom.V(10, 50), false)
	e.StrokeTo(geom.V(90, 50))
	e.EndStroke()
	m := e.MaskForOutputArea()
	for _, x := range []int{10, 30, 50, 70, 89} {
		if m.AlphaAt(x, 50).A != 255 {
			t.Errorf("stroke gap at x=%d", x)
		}
	}
}

func TestSetMask(t *testing.T) {
	e := New(geom.R(0, 0, 4, 2))
	src := image.NewAlpha(image.Rect(0, 0, 4, 2))
	src.SetAlpha(1, 0, color.Alpha{A: 200})
	e.SetMask(src)
	m := e.MaskForOutputArea()
	if m.AlphaAt(1, 0).A != 200 || m.AlphaAt(0, 0).A != 0 {
		t.Errorf("SetMask copy wrong: %v", m.Pix)
	}

	full := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	for i := range full.Pix {
		full.Pix[i] = 255
	}
	e.SetMask(full)
	m = e.MaskForOutputArea()
	for _, v := range m.Pix {
		if v != 255 {
			t.Fatalf("scaled SetMask = %v", m.Pix)
		}
	}

	e.SetMask(nil)
	if !e.Empty() {
		t.Error("SetMask(nil) should clear the area")
	}
}

func TestResizeKeepsContent(t *testing.T) {
	e := New(geom.R(0, 0, 10, 10), hardBrush(2))
	e.Dab(geom.V(5, 5), false)
	e.Resize(20, 30)
	m := e.MaskForOutputArea()
	if m.Bounds() != image.Rect(0, 0, 20, 30) || m.AlphaAt(5, 5).A == 0 {
		t.Errorf("after Resize bounds %v value %d", m.Bounds(), m.AlphaAt(5, 5).A)
	}
	if e.OutputArea() != geom.R(0, 0, 20, 30) {
		t.Errorf("OutputArea = %v", e.OutputArea())
	}
}

func TestSnapshotRestore(t *testing.T) {
	e := New(geom.R(0, 0, 10, 10), hardBrush(2))
	e.Dab(geom.V(5, 5), false)
	snap := e.Snapshot()

	e.Clear()
	e.UpdatePosition(3, 3)
	e.Dab(geom.V(1, 1), false)

	e.Restore(snap)
	if e.X != 0 || e.Y != 0 {
		t.Errorf("position not restored: %v,%v", e.X, e.Y)
	}
	m := e.MaskForOutputArea()
	if m.AlphaAt(5, 5).A != 255 || m.AlphaAt(1, 1).A != 0 {
		t.Error("content not restored")
	}

	// Painting after restore must not alter the snapshot.
	e.Dab(geom.V(8, 8), false)
	e.Restore(snap)
	if e.MaskForOutputArea().AlphaAt(8, 8).A != 0 {
		t.Error("painting after restore changed the snapshot")
	}

	e.Restore(nil)
	if !e.Empty() {
		t.Error("Restore(nil) should clear")
	}
}

func TestSnapshotCopyOnWrite(t *testing.T) {
	tests := []struct {
		name   string
		change func(e *Engine)
		shared bool
	}{
		{"unchanged", func(*Engine) {}, true},
		{"same value", func(e *Engine) { e.set(5, 5, e.get(5, 5)) }, true},
		{"painted", func(e *Engine) { e.Dab(geom.V(5, 5), true) }, false},
		{"restored", func(e *Engine) { e.Restore(e.Snapshot()) }, true},
	}
	key := keyFor(5, 5)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(geom.R(0, 0, 10, 10), hardBrush(2))
			e.Dab(geom.V(5, 5), false)
			first := e.Snapshot()
			tt.change(e)
			second := e.Snapshot()

			if got := &first.chunks[key][0] == &second.chunks[key][0]; got != tt.shared {
				t.Errorf("chunk shared = %t, want %t", got, tt.shared)
			}
			if first.chunks[key][e.chunks[key].PixOffset(5, 5)] != 255 {
				t.Error("first snapshot changed")
			}
		})
	}
}

func TestFromAlphaAndLuminance(t *testing.T) {
	img := image.NewNRGBA(image.Rect(2, 2, 4, 3))
	img.SetNRGBA(2, 2, color.NRGBA{255, 255, 255, 255})
	img.SetNRGBA(3, 2, color.NRGBA{0, 0, 0, 255})

	a := FromAlpha(img, true)
	if a.Bounds() != image.Rect(0, 0, 2, 1) || a.Pix[0] != 0 || a.Pix[1] != 0 {
		t.Errorf("FromAlpha inverted = %v", a.Pix)
	}
	l := FromLuminance(img)
	if l.Pix[0] != 255 || l.Pix[1] != 0 {
		t.Errorf("FromLuminance = %v", l.Pix)
	}
}
