package canvas

import (
	"image"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/composite"
	"github.com/gogpu/layerforge/geom"
)

// Flatten renders every layer into the output area.
func (c *Canvas) Flatten() (*image.RGBA, error) {
	return c.comp.FlattenAll(c.store.Layers(), c.area)
}

// FlattenWithMask renders every layer into the output area and erases
// wherever the mask is painted or the custom shape excludes.
func (c *Canvas) FlattenWithMask() (*image.RGBA, error) {
	return c.comp.FlattenWithMask(c.store.Layers(), c.area, c.maskSource())
}

// FlattenSelection renders the selected layers into their bounding box.
// It returns a nil image when nothing is selected.
func (c *Canvas) FlattenSelection() (*image.RGBA, geom.Rect, error) {
	return c.comp.FlattenSelection(c.sel.Layers())
}

// ExportMask returns the standalone export mask of the output area.
func (c *Canvas) ExportMask() (*image.NRGBA, error) {
	img, err := c.comp.ExportMask(c.store.Layers(), c.area, c.maskSource())
	if err != nil {
		return nil, err
	}
	layerforge.Logger().Info("canvas: mask exported", "area", c.area)
	return img, nil
}

// Thumbnail renders the output area scaled to fit within w by h.
func (c *Canvas) Thumbnail(w, h int) (*image.NRGBA, error) {
	img, err := c.Flatten()
	if err != nil {
		return nil, err
	}
	return imaging.Fit(img, w, h, imaging.Box), nil
}

// shapedMask combines the painted mask with the area outside a closed
// custom shape.
type shapedMask struct{ c *Canvas }

func (c *Canvas) maskSource() composite.MaskSource { return shapedMask{c} }

func (m shapedMask) MaskForOutputArea() *image.Alpha {
	painted := m.c.mask.MaskForOutputArea()
	outside := m.c.outsideShape()
	switch {
	case outside == nil:
		return painted
	case painted == nil:
		return outside
	}
	r := painted.Rect.Intersect(outside.Rect)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := outside.PixOffset(x, y)
			outside.Pix[i] = screen(outside.Pix[i], painted.Pix[painted.PixOffset(x, y)])
		}
	}
	return outside
}

// outsideShape rasterizes the complement of the closed custom shape over
// the output area, or returns nil when there is no closed shape.
func (c *Canvas) outsideShape() *image.Alpha {
	if !c.shapeClosed || len(c.shape) < 3 {
		return nil
	}
	w := int(math.Ceil(c.area.Width))
	h := int(math.Ceil(c.area.Height))
	if w <= 0 || h <= 0 {
		return nil
	}
	z := vector.NewRasterizer(w, h)
	z.DrawOp = draw.Src
	for i, p := range c.shape {
		x, y := float32(p.X-c.area.X), float32(p.Y-c.area.Y)
		if i == 0 {
			z.MoveTo(x, y)
			continue
		}
		z.LineTo(x, y)
	}
	z.ClosePath()
	inside := image.NewAlpha(image.Rect(0, 0, w, h))
	z.Draw(inside, inside.Bounds(), image.Opaque, image.Point{})
	for i, v := range inside.Pix {
		inside.Pix[i] = 255 - v
	}
	return inside
}

func screen(a, b uint8) uint8 {
	p := uint32(a)*uint32(b) + 127
	return uint8(uint32(a) + uint32(b) - p/255)
}
