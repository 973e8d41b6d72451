package composite

import (
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/internal/blend"
	"github.com/gogpu/layerforge/layer"
)

// MaskSource supplies the painted mask aligned to the output area, with
// bounds (0, 0, w, h). A nil result means nothing is painted there.
type MaskSource interface {
	MaskForOutputArea() *image.Alpha
}

// FlattenAll renders every layer into the output area.
func (c *Compositor) FlattenAll(layers []*layer.Layer, area geom.Rect) (*image.RGBA, error) {
	img, err := c.Render(layers, area)
	if err != nil {
		return nil, err
	}
	layerforge.Logger().Debug("composite: flattened", "layers", len(layers), "area", area)
	return img, nil
}

// FlattenWithMask renders every layer into the output area and then erases
// wherever the mask is painted: the result alpha is multiplied by
// 1 - maskAlpha.
func (c *Compositor) FlattenWithMask(layers []*layer.Layer, area geom.Rect, ms MaskSource) (*image.RGBA, error) {
	img, err := c.FlattenAll(layers, area)
	if err != nil {
		return nil, err
	}
	if ms == nil {
		return img, nil
	}
	if m := ms.MaskForOutputArea(); m != nil {
		blend.CompositeMask(img, img.Bounds(), m, m.Rect.Min, blend.DestinationOut)
	}
	return img, nil
}

// SelectionBounds returns the tight axis-aligned box around the rotated
// corners of layers.
func SelectionBounds(layers []*layer.Layer) geom.Rect {
	return layer.Bounds(layers)
}

// FlattenSelection renders layers into their combined rotated bounding box
// and returns the image with the box it covers. It returns a nil image and
// no error when layers is empty or the box has no area.
func (c *Compositor) FlattenSelection(layers []*layer.Layer) (*image.RGBA, geom.Rect, error) {
	if len(layers) == 0 {
		return nil, geom.Rect{}, nil
	}
	box := SelectionBounds(layers)
	if box.Width <= 0 || box.Height <= 0 {
		return nil, geom.Rect{}, nil
	}
	// Whole pixels, anchored at the box origin.
	box.Width = math.Ceil(box.Width)
	box.Height = math.Ceil(box.Height)
	img, err := c.Render(layers, box)
	if err != nil {
		return nil, geom.Rect{}, err
	}
	return img, box, nil
}

// ExportMask derives the standalone export mask for the output area:
// pixels not covered by visible layers are masked, and the painted mask is
// screen-merged on top. The result is white everywhere with the weight in
// alpha.
func (c *Compositor) ExportMask(layers []*layer.Layer, area geom.Rect, ms MaskSource) (*image.NRGBA, error) {
	comp, err := c.Render(layers, area)
	if err != nil {
		return nil, err
	}
	b := comp.Bounds()
	out := image.NewNRGBA(b)
	var painted *image.Alpha
	if ms != nil {
		painted = ms.MaskForOutputArea()
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := 255 - comp.Pix[comp.PixOffset(x, y)+3]
			if painted != nil && (image.Point{X: x, Y: y}).In(painted.Rect) {
				m := painted.Pix[painted.PixOffset(x, y)]
				a = screen(a, m)
			}
			i := out.PixOffset(x, y)
			out.Pix[i+0] = 255
			out.Pix[i+1] = 255
			out.Pix[i+2] = 255
			out.Pix[i+3] = a
		}
	}
	return out, nil
}

func screen(a, b byte) byte {
	p := uint32(a)*uint32(b) + 127
	return byte(uint32(a) + uint32(b) - p/255)
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return layerforge.Wrap("composite: encode png", err)
	}
	return nil
}
