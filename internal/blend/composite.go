package blend

import "image"

// clip narrows r to dst and to the source bounds sb, assuming sp is the
// source point that maps to r.Min, and returns the adjusted rectangle and
// source point.
func clip(r, db, sb image.Rectangle, sp image.Point) (image.Rectangle, image.Point) {
	orig := r.Min
	r = r.Intersect(db)
	r = r.Intersect(sb.Add(orig.Sub(sp)))
	return r, sp.Add(r.Min.Sub(orig))
}

// Composite blends the src pixels starting at sp onto dst over rectangle r
// using fn, with every source pixel first scaled by opacity (0-255).
func Composite(dst *image.RGBA, r image.Rectangle, src *image.RGBA, sp image.Point, fn Func, opacity byte) {
	r, sp = clip(r, dst.Bounds(), src.Bounds(), sp)
	if r.Empty() || opacity == 0 {
		return
	}
	w := r.Dx() * 4
	for y := 0; y < r.Dy(); y++ {
		di := dst.PixOffset(r.Min.X, r.Min.Y+y)
		si := src.PixOffset(sp.X, sp.Y+y)
		drow := dst.Pix[di : di+w : di+w]
		srow := src.Pix[si : si+w : si+w]
		for i := 0; i < w; i += 4 {
			if srow[i+3] == 0 {
				continue
			}
			s0, s1, s2, s3 := Scale(srow[i], srow[i+1], srow[i+2], srow[i+3], opacity)
			drow[i], drow[i+1], drow[i+2], drow[i+3] = fn(s0, s1, s2, s3, drow[i], drow[i+1], drow[i+2], drow[i+3])
		}
	}
}

// CompositeMask applies fn with a coverage-only source read from the alpha
// of m starting at mp. The source color is black, so only operators driven
// by source alpha (DestinationIn, DestinationOut) are meaningful.
func CompositeMask(dst *image.RGBA, r image.Rectangle, m *image.Alpha, mp image.Point, fn Func) {
	r, mp = clip(r, dst.Bounds(), m.Bounds(), mp)
	if r.Empty() {
		return
	}
	for y := 0; y < r.Dy(); y++ {
		di := dst.PixOffset(r.Min.X, r.Min.Y+y)
		mi := m.PixOffset(mp.X, mp.Y+y)
		for x := 0; x < r.Dx(); x++ {
			d := dst.Pix[di+4*x : di+4*x+4 : di+4*x+4]
			d[0], d[1], d[2], d[3] = fn(0, 0, 0, m.Pix[mi+x], d[0], d[1], d[2], d[3])
		}
	}
}
