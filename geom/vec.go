package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Vec is a point or displacement in world coordinates.
type Vec = r2.Vec

// V is shorthand for Vec{X: x, Y: y}.
func V(x, y float64) Vec { return Vec{X: x, Y: y} }

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// NormalizeDegrees maps deg into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	if d >= 360 {
		d = 0
	}
	return d
}

// sincos returns the sine and cosine of deg degrees, exact for quarter
// turns.
func sincos(deg float64) (sin, cos float64) {
	switch NormalizeDegrees(deg) {
	case 0:
		return 0, 1
	case 90:
		return 1, 0
	case 180:
		return 0, -1
	case 270:
		return -1, 0
	}
	return math.Sincos(Radians(deg))
}

// RotateAbout rotates p around pivot by deg degrees (clockwise on screen).
func RotateAbout(p, pivot Vec, deg float64) Vec {
	sin, cos := sincos(deg)
	if sin == 0 && cos == 1 {
		return p
	}
	o := r2.Sub(p, pivot)
	return r2.Add(Vec{X: o.X*cos - o.Y*sin, Y: o.X*sin + o.Y*cos}, pivot)
}

// Angle returns the direction of p as seen from origin, in degrees.
func Angle(origin, p Vec) float64 {
	d := r2.Sub(p, origin)
	return Degrees(math.Atan2(d.Y, d.X))
}

// Dist returns the Euclidean distance between p and q.
func Dist(p, q Vec) float64 { return r2.Norm(r2.Sub(p, q)) }

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
