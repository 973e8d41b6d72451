// Package blend implements premultiplied-alpha compositing operators on
// 8-bit channels: the Porter-Duff operators the compositor needs and the
// W3C separable blend modes.
//
// All arithmetic is exact integer math rounded to nearest; intermediate
// products are widened so that doubled or summed channels never wrap.
//
// References:
//   - Porter-Duff: "Compositing Digital Images" (1984)
//   - W3C Compositing and Blending Level 1: https://www.w3.org/TR/compositing-1/
package blend

// mulDiv255 returns round(a*b/255) using Alvy Ray Smith's shift form.
func mulDiv255(a, b byte) byte {
	t := uint32(a)*uint32(b) + 128
	return byte((t + (t >> 8)) >> 8)
}

// div255 returns round(x/255) for any x that fits a uint32.
func div255(x uint32) uint32 {
	return (x + 127) / 255
}

// unpremultiply recovers the straight channel value of c under alpha a.
func unpremultiply(c, a byte) byte {
	if a == 0 {
		return 0
	}
	v := (uint32(c)*255 + uint32(a)/2) / uint32(a)
	if v > 255 {
		return 255
	}
	return byte(v)
}

func clamp(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func addClamp(a, b byte) byte {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return byte(s)
}

// Scale multiplies all four premultiplied channels by k/255. It applies a
// layer opacity to a source pixel.
func Scale(r, g, b, a, k byte) (byte, byte, byte, byte) {
	if k == 255 {
		return r, g, b, a
	}
	return mulDiv255(r, k), mulDiv255(g, k), mulDiv255(b, k), mulDiv255(a, k)
}

// OpacityByte converts an opacity in [0, 1] to a channel weight.
func OpacityByte(o float64) byte {
	if o <= 0 {
		return 0
	}
	if o >= 1 {
		return 255
	}
	return byte(o*255 + 0.5)
}
