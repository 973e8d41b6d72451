package geom

import (
	"image"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Rect is an axis-aligned rectangle with its origin at the top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// R is shorthand for Rect{x, y, w, h}.
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, Width: w, Height: h} }

// RectFromBox converts a gonum box into a Rect.
func RectFromBox(b r2.Box) Rect {
	b = b.Canon()
	return Rect{X: b.Min.X, Y: b.Min.Y, Width: b.Max.X - b.Min.X, Height: b.Max.Y - b.Min.Y}
}

func (r Rect) Min() Vec    { return Vec{X: r.X, Y: r.Y} }
func (r Rect) Max() Vec    { return Vec{X: r.X + r.Width, Y: r.Y + r.Height} }
func (r Rect) Size() Vec   { return Vec{X: r.Width, Y: r.Height} }
func (r Rect) Center() Vec { return Vec{X: r.X + r.Width/2, Y: r.Y + r.Height/2} }

// Box returns r as a gonum box.
func (r Rect) Box() r2.Box { return r2.Box{Min: r.Min(), Max: r.Max()} }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether p lies inside r (edges inclusive).
func (r Rect) Contains(p Vec) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Union returns the smallest rectangle containing r and o. Empty operands
// are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.Empty() {
		return o
	}
	if o.Empty() {
		return r
	}
	return RectFromBox(r.Box().Union(o.Box()))
}

// Intersect returns the overlap of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x0 := math.Max(r.X, o.X)
	y0 := math.Max(r.Y, o.Y)
	x1 := math.Min(r.X+r.Width, o.X+o.Width)
	y1 := math.Min(r.Y+r.Height, o.Y+o.Height)
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Image returns the integer pixel rectangle covering r.
func (r Rect) Image() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.Width)), int(math.Ceil(r.Y+r.Height)),
	)
}

// Bounds returns the axis-aligned bounding rectangle of pts.
func Bounds(pts ...Vec) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// RotatedCorners returns the four corners of r rotated by deg around its
// center, in order top-left, top-right, bottom-right, bottom-left.
func RotatedCorners(r Rect, deg float64) [4]Vec {
	c := r.Center()
	return [4]Vec{
		RotateAbout(Vec{X: r.X, Y: r.Y}, c, deg),
		RotateAbout(Vec{X: r.X + r.Width, Y: r.Y}, c, deg),
		RotateAbout(Vec{X: r.X + r.Width, Y: r.Y + r.Height}, c, deg),
		RotateAbout(Vec{X: r.X, Y: r.Y + r.Height}, c, deg),
	}
}

// RotatedBounds returns the axis-aligned bounds of r rotated by deg around
// its center.
func RotatedBounds(r Rect, deg float64) Rect {
	c := RotatedCorners(r, deg)
	return Bounds(c[:]...)
}
