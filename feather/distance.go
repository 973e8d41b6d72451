// Package feather builds the soft-edge alpha masks behind a layer's blend
// area: a Euclidean distance field to the nearest fully transparent pixel,
// shaped by a smoothstep falloff and cached per source and amount.
package feather

import (
	"image"
	"math"
)

// far stands in for infinity in the distance transform; finite so that
// differences never produce NaN.
const far = 1e20

// DistanceField returns, for every pixel of sr in src, the Euclidean
// distance in pixels to the nearest pixel whose alpha is zero. Pixels
// outside sr count as transparent, so the outermost ring of an opaque
// image is at distance 1. The result is row-major, sr.Dx() wide.
func DistanceField(src image.Image, sr image.Rectangle) []float64 {
	w, h := sr.Dx(), sr.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}
	// One transparent pixel of padding on every side.
	pw, ph := w+2, h+2
	grid := make([]float64, pw*ph)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if alphaAt(src, sr.Min.X+x, sr.Min.Y+y) != 0 {
				grid[(y+1)*pw+x+1] = far
			}
		}
	}

	n := pw
	if ph > n {
		n = ph
	}
	f := make([]float64, n)
	d := make([]float64, n)
	v := make([]int, n)
	z := make([]float64, n+1)

	for x := 0; x < pw; x++ {
		for y := 0; y < ph; y++ {
			f[y] = grid[y*pw+x]
		}
		edt1d(f[:ph], d[:ph], v, z)
		for y := 0; y < ph; y++ {
			grid[y*pw+x] = d[y]
		}
	}
	for y := 0; y < ph; y++ {
		row := grid[y*pw : (y+1)*pw]
		copy(f[:pw], row)
		edt1d(f[:pw], d[:pw], v, z)
		copy(row, d[:pw])
	}

	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = math.Sqrt(grid[(y+1)*pw+x+1])
		}
	}
	return out
}

// edt1d is the Felzenszwalb-Huttenlocher squared distance transform of a
// sampled function: d[q] = min_p (q-p)^2 + f[p].
func edt1d(f, d []float64, v []int, z []float64) {
	n := len(f)
	k := 0
	v[0] = 0
	z[0] = -far
	z[1] = far
	for q := 1; q < n; q++ {
		fq := f[q] + float64(q*q)
		s := (fq - (f[v[k]] + float64(v[k]*v[k]))) / float64(2*q-2*v[k])
		for s <= z[k] {
			k--
			s = (fq - (f[v[k]] + float64(v[k]*v[k]))) / float64(2*q-2*v[k])
		}
		k++
		v[k] = q
		z[k] = s
		z[k+1] = far
	}
	k = 0
	for q := 0; q < n; q++ {
		for z[k+1] < float64(q) {
			k++
		}
		dq := float64(q - v[k])
		d[q] = dq*dq + f[v[k]]
	}
}

func alphaAt(img image.Image, x, y int) uint8 {
	switch m := img.(type) {
	case *image.NRGBA:
		return m.Pix[m.PixOffset(x, y)+3]
	case *image.RGBA:
		return m.Pix[m.PixOffset(x, y)+3]
	case *image.Alpha:
		return m.Pix[m.PixOffset(x, y)]
	}
	_, _, _, a := img.At(x, y).RGBA()
	return uint8(a >> 8)
}
