package mask

import (
	"math"

	"github.com/gogpu/layerforge/geom"
)

// Brush describes a round paint/erase dab.
type Brush struct {
	// Size is the dab diameter in world units.
	Size float64
	// Strength scales the dab coverage, 0..1.
	Strength float64
	// Hardness is the fraction of the radius painted at full strength;
	// the remainder fades out with a smoothstep.
	Hardness float64
}

// DefaultBrush returns the brush a new mask starts with.
func DefaultBrush() Brush {
	return Brush{Size: 20, Strength: 0.5, Hardness: 0.5}
}

// coverage returns the dab weight at distance d from its center.
func (b Brush) coverage(d float64) float64 {
	r := b.Size / 2
	if r <= 0 || d > r {
		return 0
	}
	inner := r * geom.Clamp(b.Hardness, 0, 1)
	w := 1.0
	if d > inner {
		t := (d - inner) / (r - inner)
		w = 1 - t*t*(3-2*t)
	}
	return w * geom.Clamp(b.Strength, 0, 1)
}

type stroke struct {
	last  geom.Vec
	erase bool
}

// Dab applies one brush dab centered on the world point p.
func (e *Engine) Dab(p geom.Vec, erase bool) {
	r := e.Brush.Size / 2
	if r <= 0 {
		return
	}
	o := e.origin()
	lx, ly := p.X-float64(o.X), p.Y-float64(o.Y)
	x0, x1 := int(math.Floor(lx-r)), int(math.Ceil(lx+r))
	y0, y1 := int(math.Floor(ly-r)), int(math.Ceil(ly+r))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			// Sample at pixel centers.
			d := math.Hypot(float64(x)+0.5-lx, float64(y)+0.5-ly)
			w := e.Brush.coverage(d)
			if w <= 0 {
				continue
			}
			a := float64(e.get(x, y)) / 255
			if erase {
				a *= 1 - w
			} else {
				a += (1 - a) * w
			}
			e.set(x, y, uint8(math.Round(a*255)))
		}
	}
}

// BeginStroke starts a stroke at p with a first dab.
func (e *Engine) BeginStroke(p geom.Vec, erase bool) {
	e.stroke = &stroke{last: p, erase: erase}
	e.Dab(p, erase)
}

// StrokeTo continues the current stroke to p, spacing dabs a quarter of
// the brush size apart. It is a no-op outside a stroke.
func (e *Engine) StrokeTo(p geom.Vec) {
	s := e.stroke
	if s == nil {
		return
	}
	spacing := math.Max(1, e.Brush.Size/4)
	dist := geom.Dist(s.last, p)
	if dist < spacing {
		return
	}
	steps := int(dist / spacing)
	for i := 1; i <= steps; i++ {
		t := float64(i) * spacing / dist
		e.Dab(geom.Vec{X: s.last.X + (p.X-s.last.X)*t, Y: s.last.Y + (p.Y-s.last.Y)*t}, s.erase)
	}
	t := float64(steps) * spacing / dist
	s.last = geom.Vec{X: s.last.X + (p.X-s.last.X)*t, Y: s.last.Y + (p.Y-s.last.Y)*t}
}

// EndStroke finishes the current stroke and drops chunks emptied by
// erasing.
func (e *Engine) EndStroke() {
	if e.stroke != nil && e.stroke.erase {
		e.prune()
	}
	e.stroke = nil
}

// Stroking reports whether a stroke is in progress.
func (e *Engine) Stroking() bool { return e.stroke != nil }
