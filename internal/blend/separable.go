package blend

import "math"

// separable applies the W3C general formula for a separable blend mode:
//
//	Co = (1 - Sa)*D + (1 - Da)*S + Sa*Da*B(Cs, Cb)
//	Ao = Sa + Da - Sa*Da
//
// where S and D are premultiplied and B operates on straight colors.
func separable(sr, sg, sb, sa, dr, dg, db, da byte, mix func(cs, cb byte) byte) (byte, byte, byte, byte) {
	if sa == 0 {
		return dr, dg, db, da
	}
	if da == 0 {
		return sr, sg, sb, sa
	}
	ch := func(s, d byte) byte {
		b := mix(unpremultiply(s, sa), unpremultiply(d, da))
		num := uint32(s)*uint32(255-da)*255 + uint32(d)*uint32(255-sa)*255 + uint32(sa)*uint32(da)*uint32(b)
		v := (num + 65025/2) / 65025
		if v > 255 {
			return 255
		}
		return byte(v)
	}
	a := uint32(sa) + uint32(da) - div255(uint32(sa)*uint32(da))
	return ch(sr, dr), ch(sg, dg), ch(sb, db), byte(a)
}

// Multiply: B = Cs*Cb.
func Multiply(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, mulDiv255)
}

// Screen: B = Cs + Cb - Cs*Cb.
func Screen(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, screen)
}

func screen(cs, cb byte) byte {
	return byte(uint32(cs) + uint32(cb) - uint32(mulDiv255(cs, cb)))
}

// hardLight is the per-channel hard light with source s and backdrop b.
func hardLight(s, b byte) byte {
	if uint32(s)*2 <= 255 {
		return byte(div255(2 * uint32(s) * uint32(b)))
	}
	t := byte(2*uint32(s) - 255)
	return screen(t, b)
}

// Overlay: HardLight with the layers swapped.
func Overlay(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(cs, cb byte) byte { return hardLight(cb, cs) })
}

// HardLight: Multiply or Screen depending on the source.
func HardLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, hardLight)
}

// Darken: B = min(Cs, Cb).
func Darken(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(cs, cb byte) byte {
		if cs < cb {
			return cs
		}
		return cb
	})
}

// Lighten: B = max(Cs, Cb).
func Lighten(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(cs, cb byte) byte {
		if cs > cb {
			return cs
		}
		return cb
	})
}

// ColorDodge: B = min(1, Cb/(1-Cs)), with B = 0 when Cb = 0.
func ColorDodge(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(cs, cb byte) byte {
		if cb == 0 {
			return 0
		}
		if cs == 255 {
			return 255
		}
		v := (uint32(cb)*255 + uint32(255-cs)/2) / uint32(255-cs)
		if v > 255 {
			return 255
		}
		return byte(v)
	})
}

// ColorBurn: B = 1 - min(1, (1-Cb)/Cs), with B = 1 when Cb = 1.
func ColorBurn(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(cs, cb byte) byte {
		if cb == 255 {
			return 255
		}
		if cs == 0 {
			return 0
		}
		v := (uint32(255-cb)*255 + uint32(cs)/2) / uint32(cs)
		if v > 255 {
			return 0
		}
		return byte(255 - v)
	})
}

// SoftLight: the W3C soft light curve.
func SoftLight(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(cs, cb byte) byte {
		s := float64(cs) / 255
		b := float64(cb) / 255
		var r float64
		if s <= 0.5 {
			r = b - (1-2*s)*b*(1-b)
		} else {
			var d float64
			if b <= 0.25 {
				d = ((16*b-12)*b + 4) * b
			} else {
				d = math.Sqrt(b)
			}
			r = b + (2*s-1)*(d-b)
		}
		return clamp(int32(math.Round(r * 255)))
	})
}

// Difference: B = |Cs - Cb|.
func Difference(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(cs, cb byte) byte {
		if cs > cb {
			return cs - cb
		}
		return cb - cs
	})
}

// Exclusion: B = Cs + Cb - 2*Cs*Cb.
func Exclusion(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return separable(sr, sg, sb, sa, dr, dg, db, da, func(cs, cb byte) byte {
		return clamp(int32(cs) + int32(cb) - int32(div255(2*uint32(cs)*uint32(cb))))
	})
}
