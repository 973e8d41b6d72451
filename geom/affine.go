package geom

import (
	"math"

	"golang.org/x/image/math/f64"
)

// Affine is a 2D affine transform in row-major 2x3 form:
//
//	| A  B  C |
//	| D  E  F |
//
// mapping x' = A*x + B*y + C and y' = D*x + E*y + F.
type Affine struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Affine { return Affine{A: 1, E: 1} }

// Translate returns a translation by (x, y).
func Translate(x, y float64) Affine { return Affine{A: 1, C: x, E: 1, F: y} }

// Scale returns a scale by (x, y). Negative factors mirror.
func Scale(x, y float64) Affine { return Affine{A: x, E: y} }

// Rotate returns a rotation by deg degrees, clockwise on screen. Quarter
// turns are exact.
func Rotate(deg float64) Affine {
	sin, cos := sincos(deg)
	return Affine{A: cos, B: -sin, D: sin, E: cos}
}

// Mul returns m*o: o is applied first, then m.
func (m Affine) Mul(o Affine) Affine {
	return Affine{
		A: m.A*o.A + m.B*o.D,
		B: m.A*o.B + m.B*o.E,
		C: m.A*o.C + m.B*o.F + m.C,
		D: m.D*o.A + m.E*o.D,
		E: m.D*o.B + m.E*o.E,
		F: m.D*o.C + m.E*o.F + m.F,
	}
}

// Then is the fluent form of o.Mul(m): apply m, then o.
func (m Affine) Then(o Affine) Affine { return o.Mul(m) }

// Apply transforms the point p.
func (m Affine) Apply(p Vec) Vec {
	return Vec{X: m.A*p.X + m.B*p.Y + m.C, Y: m.D*p.X + m.E*p.Y + m.F}
}

// Invert returns the inverse transform and false if m is singular.
func (m Affine) Invert() (Affine, bool) {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-12 {
		return Identity(), false
	}
	inv := 1 / det
	return Affine{
		A: m.E * inv,
		B: -m.B * inv,
		C: (m.B*m.F - m.C*m.E) * inv,
		D: -m.D * inv,
		E: m.A * inv,
		F: (m.C*m.D - m.A*m.F) * inv,
	}, true
}

// Aff3 returns m in the layout used by golang.org/x/image/draw.
func (m Affine) Aff3() f64.Aff3 {
	return f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
}
