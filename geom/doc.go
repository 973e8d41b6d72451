// Package geom holds the world-space geometry shared by layers, the mask and
// the interaction machine: vectors (gonum r2), rectangles, rotation about a
// pivot, affine transforms and grid snapping.
//
// World coordinates are y-down. Positive angles rotate clockwise on screen.
package geom
