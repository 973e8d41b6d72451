// Package composite renders z-ordered layers into pixel buffers and derives
// the flattened outputs the editor exports: the full canvas, the canvas
// with the painted mask applied, the selection and the export mask.
package composite

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/feather"
	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/internal/blend"
	"github.com/gogpu/layerforge/layer"
)

// DefaultFeatherCacheSize is the number of feather masks kept by a
// Compositor created without WithFeather or WithFeatherCacheSize.
const DefaultFeatherCacheSize = 32

// maxPixels bounds a single render target.
const maxPixels = 1 << 28

// Compositor draws layers. It holds the resampling kernel and the feather
// mask cache; it is safe to reuse across renders.
type Compositor struct {
	interp  draw.Interpolator
	feather *feather.Blender
}

// Option configures a Compositor.
type Option func(*Compositor)

// WithInterpolator sets the resampling kernel used for scaled or rotated
// layers. The default is draw.ApproxBiLinear.
func WithInterpolator(i draw.Interpolator) Option {
	return func(c *Compositor) {
		if i != nil {
			c.interp = i
		}
	}
}

// WithFeather shares an existing feather mask cache.
func WithFeather(b *feather.Blender) Option {
	return func(c *Compositor) {
		if b != nil {
			c.feather = b
		}
	}
}

// WithFeatherCacheSize sets the capacity of a private feather mask cache.
func WithFeatherCacheSize(n int) Option {
	return func(c *Compositor) { c.feather = feather.NewBlender(n) }
}

// New returns a Compositor.
func New(opts ...Option) *Compositor {
	c := &Compositor{interp: draw.ApproxBiLinear}
	for _, opt := range opts {
		opt(c)
	}
	if c.feather == nil {
		c.feather = feather.NewBlender(DefaultFeatherCacheSize)
	}
	return c
}

// Feather returns the feather mask cache.
func (c *Compositor) Feather() *feather.Blender { return c.feather }

// Invalidate drops cached feather masks derived from imageID. Call it
// whenever a layer's image is replaced.
func (c *Compositor) Invalidate(imageID string) int {
	return c.feather.Invalidate(imageID)
}

var operators = [...]blend.Func{
	layer.Normal:     blend.SourceOver,
	layer.Multiply:   blend.Multiply,
	layer.Screen:     blend.Screen,
	layer.Overlay:    blend.Overlay,
	layer.Darken:     blend.Darken,
	layer.Lighten:    blend.Lighten,
	layer.ColorDodge: blend.ColorDodge,
	layer.ColorBurn:  blend.ColorBurn,
	layer.HardLight:  blend.HardLight,
	layer.SoftLight:  blend.SoftLight,
	layer.Difference: blend.Difference,
	layer.Exclusion:  blend.Exclusion,
}

// Operator returns the pixel operator for m. Unknown modes composite as
// Normal.
func Operator(m layer.BlendMode) blend.Func {
	if int(m) >= len(operators) {
		return blend.SourceOver
	}
	return operators[m]
}

// NewBuffer allocates a transparent buffer covering target, addressed from
// (0, 0).
func NewBuffer(target geom.Rect) (*image.RGBA, error) {
	w := int(math.Ceil(target.Width))
	h := int(math.Ceil(target.Height))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("composite: empty target %vx%v: %w", target.Width, target.Height, layerforge.ErrRender)
	}
	if w > maxPixels/h {
		return nil, fmt.Errorf("composite: target %dx%d too large: %w", w, h, layerforge.ErrRender)
	}
	return image.NewRGBA(image.Rect(0, 0, w, h)), nil
}

// Render draws layers into a new buffer covering target. Layers paint in
// ascending ZIndex; the slice itself is not reordered.
func (c *Compositor) Render(layers []*layer.Layer, target geom.Rect) (*image.RGBA, error) {
	dst, err := NewBuffer(target)
	if err != nil {
		layerforge.Logger().Error("composite: allocation failed", "area", target, "err", err)
		return nil, err
	}
	c.Draw(dst, layers, target.Min())
	return dst, nil
}

// Draw composites layers onto dst, where dst pixel (0, 0) corresponds to
// the world point origin.
func (c *Compositor) Draw(dst *image.RGBA, layers []*layer.Layer, origin geom.Vec) {
	ordered := make([]*layer.Layer, len(layers))
	copy(ordered, layers)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ZIndex < ordered[j].ZIndex })
	for _, l := range ordered {
		c.drawLayer(dst, l, origin)
	}
}

// sourceRect maps the layer's crop into the pixel bounds of its image.
func sourceRect(l *layer.Layer) image.Rectangle {
	b := l.Image.Bounds()
	if l.CropBounds == nil || !l.HasOriginalSize() {
		return b
	}
	kx := float64(b.Dx()) / l.OriginalWidth
	ky := float64(b.Dy()) / l.OriginalHeight
	cb := *l.CropBounds
	r := image.Rect(
		b.Min.X+int(math.Round(cb.X*kx)),
		b.Min.Y+int(math.Round(cb.Y*ky)),
		b.Min.X+int(math.Round((cb.X+cb.Width)*kx)),
		b.Min.Y+int(math.Round((cb.Y+cb.Height)*ky)),
	)
	return r.Intersect(b)
}

// layerTransform maps source pixels of size sw x sh onto the buffer whose
// origin is at world point origin.
func layerTransform(l *layer.Layer, sw, sh int, origin geom.Vec) geom.Affine {
	c := l.Center()
	d := l.DestRect()
	fx, fy := 1.0, 1.0
	if l.FlipH {
		fx = -1
	}
	if l.FlipV {
		fy = -1
	}
	return geom.Translate(c.X-origin.X, c.Y-origin.Y).
		Mul(geom.Rotate(l.Rotation)).
		Mul(geom.Scale(fx, fy)).
		Mul(geom.Translate(d.X, d.Y)).
		Mul(geom.Scale(d.Width/float64(sw), d.Height/float64(sh)))
}

func (c *Compositor) drawLayer(dst *image.RGBA, l *layer.Layer, origin geom.Vec) {
	if l == nil || !l.Visible || l.Image == nil || l.Width <= 0 || l.Height <= 0 {
		return
	}
	opacity := blend.OpacityByte(l.Opacity)
	if opacity == 0 {
		return
	}
	sr := sourceRect(l)
	if sr.Empty() {
		return
	}
	var src image.Image = l.Image
	if sr != l.Image.Bounds() || sr.Min != (image.Point{}) {
		src = imaging.Crop(l.Image, sr)
	}
	sw, sh := sr.Dx(), sr.Dy()
	m := layerTransform(l, sw, sh, origin)

	var pts [4]geom.Vec
	for i, p := range [4]geom.Vec{{}, {X: float64(sw)}, {X: float64(sw), Y: float64(sh)}, {Y: float64(sh)}} {
		pts[i] = m.Apply(p)
	}
	area := geom.Bounds(pts[:]...).Image().Intersect(dst.Bounds())
	if area.Empty() {
		return
	}
	scratch := image.NewRGBA(area)

	var opts *draw.Options
	if l.BlendArea > 0 {
		id := l.ImageID
		if id == "" {
			id = layer.ImageIDFor(l.Image)
		}
		if fm := c.feather.Mask(id, l.Image, sr, l.BlendArea); fm != nil {
			opts = &draw.Options{SrcMask: fm}
		}
	}
	c.interp.Transform(scratch, m.Aff3(), src, image.Rect(0, 0, sw, sh), draw.Over, opts)
	blend.Composite(dst, area, scratch, area.Min, Operator(l.BlendMode), opacity)
}
