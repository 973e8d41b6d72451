package geom

import "math"

// Snap rounds v to the nearest multiple of grid. A non-positive grid
// returns v unchanged.
func Snap(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}

// SnapUp returns the smallest multiple of grid strictly greater than v.
func SnapUp(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return (math.Floor(v/grid) + 1) * grid
}

// SnapDown returns the largest multiple of grid strictly less than v.
func SnapDown(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return (math.Ceil(v/grid) - 1) * grid
}

// SnapVec snaps both components of p.
func SnapVec(p Vec, grid float64) Vec {
	return Vec{X: Snap(p.X, grid), Y: Snap(p.Y, grid)}
}

// SnapRect returns the grid-aligned rectangle spanned by the snapped
// corners a and b, in any order.
func SnapRect(a, b Vec, grid float64) Rect {
	a, b = SnapVec(a, grid), SnapVec(b, grid)
	return Bounds(a, b)
}

// SnapAngle rounds deg to the nearest multiple of step.
func SnapAngle(deg, step float64) float64 {
	return Snap(deg, step)
}
