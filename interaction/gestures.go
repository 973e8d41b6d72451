package interaction

import (
	"math"

	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/layer"
)

// alive filters the gesture targets down to layers still in the store.
func (m *Machine) alive() []*layer.Layer {
	store := m.target.Layers()
	out := m.targets[:0:0]
	for _, l := range m.targets {
		if store.Contains(l) {
			out = append(out, l)
		}
	}
	return out
}

// drag moves every target to its origin plus the total pointer delta.
func (m *Machine) drag(w geom.Vec) {
	targets := m.alive()
	if len(targets) == 0 {
		m.abandon("drag targets removed")
		return
	}
	if m.mods.Alt && !m.cloned {
		targets = m.cloneTargets(targets)
	}
	m.targets = targets

	dx, dy := w.X-m.start.X, w.Y-m.start.Y
	if m.mods.Ctrl {
		lead := targets[0]
		if first := m.target.Selection().First(); first != nil {
			if _, ok := m.origins[first]; ok {
				lead = first
			}
		}
		o := m.origins[lead]
		ax, ay := m.snapAdjust(lead, o.x+dx, o.y+dy)
		dx += ax
		dy += ay
	}
	for _, l := range targets {
		o := m.origins[l]
		l.X, l.Y = o.x+dx, o.y+dy
	}
	if dx != 0 || dy != 0 {
		m.changed = true
	}
}

// cloneTargets puts the originals back where the gesture started and
// makes their copies the drag targets. It runs at most once per gesture.
func (m *Machine) cloneTargets(targets []*layer.Layer) []*layer.Layer {
	for _, l := range targets {
		o := m.origins[l]
		l.X, l.Y = o.x, o.y
	}
	clones := m.target.Duplicate(targets)
	origins := make(map[*layer.Layer]frame, len(clones))
	for i, c := range clones {
		origins[c] = m.origins[targets[i]]
	}
	m.origins = origins
	m.cloned = true
	m.target.Selection().Replace(clones...)
	return clones
}

// snapAdjust returns the offset that aligns lead, placed at (x, y), with
// the nearest edge or center of another visible layer or of the output
// area within the snap distance, falling back to the grid.
func (m *Machine) snapAdjust(lead *layer.Layer, x, y float64) (float64, float64) {
	moved := *lead
	moved.X, moved.Y = x, y
	b := moved.Bounds()
	xs := [3]float64{b.X, b.X + b.Width/2, b.X + b.Width}
	ys := [3]float64{b.Y, b.Y + b.Height/2, b.Y + b.Height}

	grid := m.cfg.GridSize
	ax := geom.Snap(b.X, grid) - b.X
	ay := geom.Snap(b.Y, grid) - b.Y

	limit := m.cfg.SnapDistance / zoomOr1(m.View.Zoom)
	bestX, bestY := limit, limit
	consider := func(r geom.Rect) {
		for _, t := range [3]float64{r.X, r.X + r.Width/2, r.X + r.Width} {
			for _, v := range xs {
				if d := t - v; math.Abs(d) < bestX {
					bestX, ax = math.Abs(d), d
				}
			}
		}
		for _, t := range [3]float64{r.Y, r.Y + r.Height/2, r.Y + r.Height} {
			for _, v := range ys {
				if d := t - v; math.Abs(d) < bestY {
					bestY, ay = math.Abs(d), d
				}
			}
		}
	}
	consider(m.target.OutputArea())
	for _, l := range m.target.Layers().Layers() {
		if !l.Visible {
			continue
		}
		if _, moving := m.origins[l]; moving {
			continue
		}
		consider(l.Bounds())
	}
	return ax, ay
}

// resize applies a handle drag to the active layer with the opposite
// handle as a fixed anchor.
func (m *Machine) resize(w geom.Vec) {
	l := m.active
	if l == nil || !m.target.Layers().Contains(l) {
		m.abandon("resize target removed")
		return
	}
	if l.CropMode && l.CropBounds != nil && l.HasOriginalSize() {
		m.resizeCrop(l, w)
		return
	}
	o := m.origins[l]
	sx, sy := m.handle.Sign()

	// Pointer relative to the anchor, in the layer's unrotated axes.
	d := geom.RotateAbout(geom.Vec{X: w.X - m.anchor.X, Y: w.Y - m.anchor.Y}, geom.Vec{}, -o.rot)
	nw, nh := o.w, o.h
	if sx != 0 {
		nw = d.X * sx
	}
	if sy != 0 {
		nh = d.Y * sy
	}

	if m.mods.Shift && o.w > 0 && o.h > 0 {
		ratio := o.w / o.h
		switch {
		case sx == 0:
			nw = nh * ratio
		case sy == 0:
			nh = nw / ratio
		case nw/o.w > nh/o.h:
			nh = nw / ratio
		default:
			nw = nh * ratio
		}
	}
	if m.mods.Ctrl {
		if sx != 0 || m.mods.Shift {
			nw = math.Max(geom.Snap(nw, m.cfg.GridSize), m.cfg.GridSize)
		}
		if sy != 0 || m.mods.Shift {
			nh = math.Max(geom.Snap(nh, m.cfg.GridSize), m.cfg.GridSize)
		}
	}
	if nw < m.cfg.MinSize || nh < m.cfg.MinSize {
		nw = math.Max(nw, m.cfg.MinSize)
		nh = math.Max(nh, m.cfg.MinSize)
	}

	// The center sits half the new size away from the anchor, towards
	// the dragged handle.
	off := geom.RotateAbout(geom.Vec{X: sx * nw / 2, Y: sy * nh / 2}, geom.Vec{}, o.rot)
	l.Width, l.Height = nw, nh
	l.SetCenter(geom.Vec{X: m.anchor.X + off.X, Y: m.anchor.Y + off.Y})
	m.changed = true
}

// resizeCrop moves the crop edges under the dragged handle, in source
// pixel space. The transform frame is left alone.
func (m *Machine) resizeCrop(l *layer.Layer, w geom.Vec) {
	o := m.origins[l]
	if o.crop == nil {
		m.abandon("crop removed")
		return
	}
	sx, sy := m.handle.Sign()
	if l.FlipH {
		sx = -sx
	}
	if l.FlipV {
		sy = -sy
	}
	q := l.ToLocal(w)
	if l.FlipH {
		q.X = -q.X
	}
	if l.FlipV {
		q.Y = -q.Y
	}
	kx := l.OriginalWidth / l.Width
	ky := l.OriginalHeight / l.Height
	u := (q.X + l.Width/2) * kx
	v := (q.Y + l.Height/2) * ky
	minW := m.cfg.MinSize * kx
	minH := m.cfg.MinSize * ky

	left, top := o.crop.X, o.crop.Y
	right, bottom := o.crop.X+o.crop.Width, o.crop.Y+o.crop.Height
	switch sx {
	case 1:
		right = geom.Clamp(u, left+minW, l.OriginalWidth)
	case -1:
		left = geom.Clamp(u, 0, right-minW)
	}
	switch sy {
	case 1:
		bottom = geom.Clamp(v, top+minH, l.OriginalHeight)
	case -1:
		top = geom.Clamp(v, 0, bottom-minH)
	}
	l.CropBounds = &geom.Rect{X: left, Y: top, Width: right - left, Height: bottom - top}
	m.changed = true
}

// rotate turns every target by the pointer's angular travel around the
// active layer's center.
func (m *Machine) rotate(w geom.Vec) {
	if m.active == nil || !m.target.Layers().Contains(m.active) {
		m.abandon("rotate target removed")
		return
	}
	delta := geom.Angle(m.active.Center(), w) - m.angle0
	for _, l := range m.alive() {
		o := m.origins[l]
		r := o.rot + delta
		if m.mods.Shift {
			r = geom.SnapAngle(r, m.cfg.RotateSnap)
		}
		l.Rotation = geom.NormalizeDegrees(r)
	}
	m.changed = true
}
