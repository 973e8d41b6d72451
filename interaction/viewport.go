package interaction

import "github.com/gogpu/layerforge/geom"

// Viewport maps screen pixels to world coordinates. (X, Y) is the world
// point shown at the screen origin.
type Viewport struct {
	X, Y float64
	Zoom float64
}

// ToWorld converts a screen point.
func (v Viewport) ToWorld(s geom.Vec) geom.Vec {
	z := v.zoom()
	return geom.Vec{X: s.X/z + v.X, Y: s.Y/z + v.Y}
}

// ToScreen converts a world point.
func (v Viewport) ToScreen(w geom.Vec) geom.Vec {
	z := v.zoom()
	return geom.Vec{X: (w.X - v.X) * z, Y: (w.Y - v.Y) * z}
}

// Pan moves the view by a screen-space pointer delta: content follows the
// pointer.
func (v *Viewport) Pan(dx, dy float64) {
	z := v.zoom()
	v.X -= dx / z
	v.Y -= dy / z
}

// ZoomAt multiplies the zoom by factor, clamped to [lo, hi], keeping the
// world point under the screen point s fixed.
func (v *Viewport) ZoomAt(s geom.Vec, factor, lo, hi float64) {
	w := v.ToWorld(s)
	v.Zoom = geom.Clamp(v.zoom()*factor, lo, hi)
	v.X = w.X - s.X/v.Zoom
	v.Y = w.Y - s.Y/v.Zoom
}

func (v Viewport) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}
