// Package mask implements the world-space paintable alpha mask: an
// unbounded plane stored as fixed-size chunks, positioned independently of
// the output area and queried either whole or restricted to that area.
package mask

import (
	"image"
	"math"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/geom"
	"golang.org/x/image/draw"
)

// ChunkSize is the edge length of one storage chunk in pixels.
const ChunkSize = 512

type chunkKey struct{ cx, cy int }

// Engine is the paintable mask. X and Y are the world position of the
// mask's local origin; moving the output area shifts them so that painted
// content stays put in world space.
type Engine struct {
	X, Y float64

	// Brush configures painting.
	Brush Brush

	area   geom.Rect
	chunks map[chunkKey]*image.Alpha
	// shared marks chunks whose pixels a Snapshot also holds. They are
	// copied before the first write.
	shared map[chunkKey]bool
	stroke *stroke
}

// Option configures an Engine.
type Option func(*Engine)

// WithBrush sets the initial brush.
func WithBrush(b Brush) Option {
	return func(e *Engine) { e.Brush = b }
}

// WithPosition sets the initial world position of the mask origin.
func WithPosition(x, y float64) Option {
	return func(e *Engine) { e.X, e.Y = x, y }
}

// New returns an empty mask tracking the given output area.
func New(area geom.Rect, opts ...Option) *Engine {
	e := &Engine{
		Brush:  DefaultBrush(),
		area:   area,
		chunks: make(map[chunkKey]*image.Alpha),
		shared: make(map[chunkKey]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OutputArea returns the world rectangle MaskForOutputArea samples.
func (e *Engine) OutputArea() geom.Rect { return e.area }

// SetOutputArea replaces the tracked output area.
func (e *Engine) SetOutputArea(r geom.Rect) { e.area = r }

// Resize changes the size of the tracked output area. Painted content is
// kept.
func (e *Engine) Resize(width, height float64) {
	e.area.Width = math.Max(width, 0)
	e.area.Height = math.Max(height, 0)
}

// UpdatePosition shifts the mask by (dx, dy) in world space.
func (e *Engine) UpdatePosition(dx, dy float64) {
	e.X += dx
	e.Y += dy
}

// Empty reports whether nothing has been painted.
func (e *Engine) Empty() bool { return len(e.chunks) == 0 }

// Clear erases everything.
func (e *Engine) Clear() {
	e.chunks = make(map[chunkKey]*image.Alpha)
	e.shared = make(map[chunkKey]bool)
}

func (e *Engine) origin() image.Point {
	return image.Pt(int(math.Round(e.X)), int(math.Round(e.Y)))
}

// localArea returns the output area in mask-local pixel coordinates.
func (e *Engine) localArea() image.Rectangle {
	return e.area.Image().Sub(e.origin())
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func keyFor(lx, ly int) chunkKey {
	return chunkKey{floorDiv(lx, ChunkSize), floorDiv(ly, ChunkSize)}
}

func chunkRect(k chunkKey) image.Rectangle {
	return image.Rect(k.cx*ChunkSize, k.cy*ChunkSize, (k.cx+1)*ChunkSize, (k.cy+1)*ChunkSize)
}

func (e *Engine) get(lx, ly int) uint8 {
	c := e.chunks[keyFor(lx, ly)]
	if c == nil {
		return 0
	}
	return c.Pix[c.PixOffset(lx, ly)]
}

// set writes one local pixel. Chunks are created on the first non-zero
// write and copied on the first write after a Snapshot.
func (e *Engine) set(lx, ly int, v uint8) {
	k := keyFor(lx, ly)
	c := e.chunks[k]
	if c == nil {
		if v == 0 {
			return
		}
		c = image.NewAlpha(chunkRect(k))
		e.chunks[k] = c
	}
	i := c.PixOffset(lx, ly)
	if c.Pix[i] == v {
		return
	}
	if e.shared[k] {
		c = &image.Alpha{Pix: append([]byte(nil), c.Pix...), Stride: c.Stride, Rect: c.Rect}
		e.chunks[k] = c
		delete(e.shared, k)
	}
	c.Pix[i] = v
}

// copyRegion copies the local rectangle lr into dst, whose bounds have the
// same size. It reports whether any chunk overlapped.
func (e *Engine) copyRegion(dst *image.Alpha, lr image.Rectangle) bool {
	found := false
	off := dst.Rect.Min.Sub(lr.Min)
	for _, c := range e.chunks {
		ir := c.Rect.Intersect(lr)
		if ir.Empty() {
			continue
		}
		found = true
		for y := ir.Min.Y; y < ir.Max.Y; y++ {
			si := c.PixOffset(ir.Min.X, y)
			di := dst.PixOffset(ir.Min.X+off.X, y+off.Y)
			copy(dst.Pix[di:di+ir.Dx()], c.Pix[si:si+ir.Dx()])
		}
	}
	return found
}

// Mask returns the whole painted mask with bounds in world pixel
// coordinates, or nil when nothing is painted.
func (e *Engine) Mask() *image.Alpha {
	if len(e.chunks) == 0 {
		return nil
	}
	var lr image.Rectangle
	for _, c := range e.chunks {
		lr = lr.Union(c.Rect)
	}
	dst := image.NewAlpha(lr.Add(e.origin()))
	e.copyRegion(dst, lr)
	return dst
}

// MaskForOutputArea returns the mask cropped and aligned to the output
// area, with bounds (0, 0, w, h). It returns nil when no painted chunk
// overlaps the area.
func (e *Engine) MaskForOutputArea() *image.Alpha {
	lr := e.localArea()
	if lr.Empty() {
		return nil
	}
	dst := image.NewAlpha(image.Rect(0, 0, lr.Dx(), lr.Dy()))
	if !e.copyRegion(dst, lr) {
		return nil
	}
	return dst
}

// SetMask replaces the mask over the output area with the alpha channel of
// img, scaled to the area size. Content outside the area is kept.
func (e *Engine) SetMask(img image.Image) {
	lr := e.localArea()
	if lr.Empty() {
		return
	}
	src := image.NewAlpha(image.Rect(0, 0, lr.Dx(), lr.Dy()))
	if img != nil {
		if img.Bounds().Size() == src.Rect.Size() {
			draw.Draw(src, src.Rect, img, img.Bounds().Min, draw.Src)
		} else {
			draw.BiLinear.Scale(src, src.Rect, img, img.Bounds(), draw.Src, nil)
		}
	}
	for y := 0; y < lr.Dy(); y++ {
		for x := 0; x < lr.Dx(); x++ {
			e.set(lr.Min.X+x, lr.Min.Y+y, src.Pix[y*src.Stride+x])
		}
	}
	e.prune()
	layerforge.Logger().Debug("mask: replaced output area", "w", lr.Dx(), "h", lr.Dy())
}

// prune drops chunks that hold no coverage.
func (e *Engine) prune() {
	for k, c := range e.chunks {
		empty := true
		for _, v := range c.Pix {
			if v != 0 {
				empty = false
				break
			}
		}
		if empty {
			delete(e.chunks, k)
			delete(e.shared, k)
		}
	}
}

// FromLuminance converts a grayscale-style mask image into alpha coverage:
// white is fully masked. The result has bounds at the origin.
func FromLuminance(img image.Image) *image.Alpha {
	b := img.Bounds()
	out := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			// Rec. 601 luma of the premultiplied color.
			l := (299*r + 587*g + 114*bl) / 1000
			if l > a {
				l = a
			}
			out.Pix[y*out.Stride+x] = uint8(l >> 8)
		}
	}
	return out
}

// FromAlpha extracts the alpha channel of img, optionally inverted. The
// result has bounds at the origin.
func FromAlpha(img image.Image, invert bool) *image.Alpha {
	b := img.Bounds()
	out := image.NewAlpha(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			v := uint8(a >> 8)
			if invert {
				v = 255 - v
			}
			out.Pix[y*out.Stride+x] = v
		}
	}
	return out
}
