package layer

import (
	"image"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
)

var idCounter atomic.Uint64

// NewID returns a process-unique layer identifier.
func NewID() string {
	n := idCounter.Add(1)
	return "layer_" + strconv.FormatInt(time.Now().UnixMilli(), 36) + "_" + strconv.FormatUint(n, 36)
}

// ImageIDFor returns a content identity for img: equal pixels and bounds give
// equal ids. It is used as the image storage key and as the cache key for
// derived bitmaps.
func ImageIDFor(img image.Image) string {
	if img == nil {
		return ""
	}
	return "img_" + strconv.FormatUint(ContentHash(img), 16)
}

// Pixel layouts told apart by ContentHash. Equal bytes in different
// layouts are different pixels.
const (
	hashOther byte = iota
	hashNRGBA
	hashRGBA
	hashAlpha
)

// ContentHash digests the pixel layout, bounds and pixels of img with
// xxhash.
func ContentHash(img image.Image) uint64 {
	d := xxhash.New()
	b := img.Bounds()
	var hdr [17]byte
	putInt := func(off, v int) {
		u := uint32(v)
		hdr[off], hdr[off+1], hdr[off+2], hdr[off+3] = byte(u), byte(u>>8), byte(u>>16), byte(u>>24)
	}
	putInt(0, b.Min.X)
	putInt(4, b.Min.Y)
	putInt(8, b.Dx())
	putInt(12, b.Dy())
	switch img.(type) {
	case *image.NRGBA:
		hdr[16] = hashNRGBA
	case *image.RGBA:
		hdr[16] = hashRGBA
	case *image.Alpha:
		hdr[16] = hashAlpha
	default:
		hdr[16] = hashOther
	}
	_, _ = d.Write(hdr[:])

	switch m := img.(type) {
	case *image.NRGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := m.PixOffset(b.Min.X, y)
			_, _ = d.Write(m.Pix[i : i+4*b.Dx()])
		}
	case *image.RGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := m.PixOffset(b.Min.X, y)
			_, _ = d.Write(m.Pix[i : i+4*b.Dx()])
		}
	case *image.Alpha:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := m.PixOffset(b.Min.X, y)
			_, _ = d.Write(m.Pix[i : i+b.Dx()])
		}
	default:
		row := make([]byte, 0, 8*b.Dx())
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row = row[:0]
			for x := b.Min.X; x < b.Max.X; x++ {
				r, g, bl, a := img.At(x, y).RGBA()
				row = append(row, byte(r>>8), byte(g>>8), byte(bl>>8), byte(a>>8))
			}
			_, _ = d.Write(row)
		}
	}
	return d.Sum64()
}
