package blend

// Func is a per-pixel compositing operator. All values are premultiplied
// alpha in 0-255; s is the source (the layer being drawn), d the backdrop.
type Func func(sr, sg, sb, sa, dr, dg, db, da byte) (r, g, b, a byte)

// SourceOver is the normal operator: S + D*(1-Sa).
func SourceOver(sr, sg, sb, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	if sa == 255 {
		return sr, sg, sb, sa
	}
	if sa == 0 {
		return dr, dg, db, da
	}
	inv := 255 - sa
	return addClamp(sr, mulDiv255(dr, inv)),
		addClamp(sg, mulDiv255(dg, inv)),
		addClamp(sb, mulDiv255(db, inv)),
		addClamp(sa, mulDiv255(da, inv))
}

// DestinationIn keeps the backdrop where the source is opaque: D*Sa.
func DestinationIn(_, _, _, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	return mulDiv255(dr, sa), mulDiv255(dg, sa), mulDiv255(db, sa), mulDiv255(da, sa)
}

// DestinationOut keeps the backdrop where the source is transparent:
// D*(1-Sa).
func DestinationOut(_, _, _, sa, dr, dg, db, da byte) (byte, byte, byte, byte) {
	inv := 255 - sa
	return mulDiv255(dr, inv), mulDiv255(dg, inv), mulDiv255(db, inv), mulDiv255(da, inv)
}
