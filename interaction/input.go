package interaction

import (
	"context"
	"math"
	"strings"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/layer"
)

// Wheel zooms the view when nothing is selected and otherwise rotates or
// scales the selection:
//
//	Shift       rotate by WheelRotateStep
//	Shift+Ctrl  snap rotation to the next WheelRotateStep multiple
//	Ctrl        grow or shrink the larger side by 1
//	none        step the height to the next multiple of GridSize
//
// Negative DeltaY (scrolling up) zooms in and grows.
func (m *Machine) Wheel(e WheelEvent) {
	if e.DeltaY == 0 || m.mode != None {
		return
	}
	m.mods = e.Mods
	m.pointer = m.View.ToWorld(e.Screen)
	sel := m.target.Selection()
	if sel.Empty() {
		f := m.cfg.ZoomStep
		if e.DeltaY > 0 {
			f = 1 / f
		}
		m.View.ZoomAt(e.Screen, f, m.cfg.ZoomMin, m.cfg.ZoomMax)
		return
	}
	up := e.DeltaY < 0
	step := m.cfg.WheelRotateStep
	for _, l := range sel.Layers() {
		switch {
		case e.Mods.Shift && e.Mods.Ctrl:
			if up {
				l.Rotation = geom.SnapDown(l.Rotation, step)
			} else {
				l.Rotation = geom.SnapUp(l.Rotation, step)
			}
			l.Rotation = geom.NormalizeDegrees(l.Rotation)
		case e.Mods.Shift:
			if up {
				l.Rotation -= step
			} else {
				l.Rotation += step
			}
			l.Rotation = geom.NormalizeDegrees(l.Rotation)
		case e.Mods.Ctrl:
			d := 1.0
			if !up {
				d = -1
			}
			if l.Width >= l.Height {
				m.scaleTo(l, l.Width+d, l.Height*(l.Width+d)/l.Width)
			} else {
				m.scaleTo(l, l.Width*(l.Height+d)/l.Height, l.Height+d)
			}
		default:
			var h float64
			if up {
				h = geom.SnapUp(l.Height, m.cfg.GridSize)
			} else {
				h = geom.SnapDown(l.Height, m.cfg.GridSize)
			}
			h = math.Max(h, m.cfg.MinSize)
			m.scaleTo(l, l.Width*h/l.Height, h)
		}
	}
	m.target.SaveState()
}

// scaleTo resizes l about its center, clamping both sides to MinSize while
// keeping the requested aspect.
func (m *Machine) scaleTo(l *layer.Layer, w, h float64) {
	if !(w > 0 && h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		layerforge.Logger().Warn("interaction: clamped degenerate size", "layer", l.ID, "w", w, "h", h)
		w, h = math.Max(l.Width, m.cfg.MinSize), math.Max(l.Height, m.cfg.MinSize)
	}
	if k := m.cfg.MinSize / math.Min(w, h); k > 1 {
		w, h = w*k, h*k
	}
	c := l.Center()
	l.Width, l.Height = w, h
	l.SetCenter(c)
}

// Key handles a key press and reports whether it was consumed.
func (m *Machine) Key(ctx context.Context, e KeyEvent) bool {
	m.mods = e.Mods
	key := e.Key
	if len(key) == 1 {
		key = strings.ToLower(key)
	}
	if e.Mods.Command() {
		switch key {
		case "z":
			if e.Mods.Shift {
				m.target.Redo()
			} else {
				m.target.Undo()
			}
			return true
		case "y":
			m.target.Redo()
			return true
		case "c":
			m.target.Copy()
			return true
		case "v":
			if err := m.target.Paste(ctx, m.pointer); err != nil {
				layerforge.Logger().Warn("interaction: paste failed", "err", err)
			}
			return true
		}
	}
	if m.Tool == ShapeTool {
		switch key {
		case "Enter":
			m.target.CloseShape()
			return true
		case "Escape":
			m.target.ClearShape()
			return true
		}
	}

	sel := m.target.Selection()
	if sel.Empty() || m.mode != None {
		return false
	}
	step := m.cfg.NudgeStep
	if e.Mods.Shift {
		step = m.cfg.NudgeStepLarge
	}
	var dx, dy, dr float64
	switch key {
	case "ArrowLeft":
		dx = -step
	case "ArrowRight":
		dx = step
	case "ArrowUp":
		dy = -step
	case "ArrowDown":
		dy = step
	case "[":
		dr = -step
	case "]":
		dr = step
	case "Delete", "Backspace":
		m.target.Remove(sel.Layers())
		m.target.SaveState()
		return true
	default:
		return false
	}
	for _, l := range sel.Layers() {
		l.X += dx
		l.Y += dy
		if dr != 0 {
			l.Rotation = geom.NormalizeDegrees(l.Rotation + dr)
		}
	}
	m.target.SaveState()
	return true
}
