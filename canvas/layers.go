package canvas

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/layer"
	"github.com/gogpu/layerforge/mask"
)

// AddMode decides where AddLayer places a new image.
type AddMode string

const (
	// AddDefault places the image at its natural size on the output area
	// origin.
	AddDefault AddMode = "default"
	// AddCenter centers the image at its natural size on the output area.
	AddCenter AddMode = "center"
	// AddFit scales the image to fit inside the output area, keeping its
	// aspect, and centers it. Larger images are downsampled.
	AddFit AddMode = "fit"
	// AddMouse centers the image at its natural size on the pointer.
	AddMouse AddMode = "mouse"
)

// ParseAddMode parses one of the AddMode names.
func ParseAddMode(s string) (AddMode, error) {
	switch m := AddMode(s); m {
	case AddDefault, AddCenter, AddFit, AddMouse:
		return m, nil
	}
	return "", fmt.Errorf("canvas: unknown add mode %q: %w", s, layerforge.ErrValidation)
}

// AddOptions tunes AddLayer.
type AddOptions struct {
	// Mode overrides the canvas add mode when set.
	Mode AddMode
	// Name is the requested layer name; the store makes it unique.
	Name string
	// Mask, when set, multiplies the image alpha once before the layer is
	// created. It is resized to the image when the sizes differ.
	Mask image.Image
	// At overrides the pointer position used by AddMouse.
	At *geom.Vec
}

// AddLayer places img on the canvas above every layer, selects it and
// records a history entry.
func (c *Canvas) AddLayer(img image.Image, opts AddOptions) (*layer.Layer, error) {
	l, err := c.newLayer(img, opts)
	if err != nil {
		return nil, err
	}
	if err := c.store.Add(l); err != nil {
		return nil, err
	}
	c.sel.Replace(l)
	c.SaveState()
	layerforge.Logger().Info("canvas: layer added", "layer", l.ID, "name", l.Name)
	return l, nil
}

func (c *Canvas) newLayer(img image.Image, opts AddOptions) (*layer.Layer, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, layerforge.Wrap("canvas: add layer", layerforge.ErrValidation)
	}
	if opts.Mask != nil {
		img = bakeMask(img, opts.Mask)
	}
	mode := opts.Mode
	if mode == "" {
		mode = c.cfg.AddMode
	}
	area := c.area
	if mode == AddFit {
		b := img.Bounds()
		aw, ah := int(area.Width), int(area.Height)
		if aw > 0 && ah > 0 && (b.Dx() > aw || b.Dy() > ah) {
			img = imaging.Fit(img, aw, ah, imaging.Lanczos)
		}
	}

	l := layer.New(img)
	l.Name = opts.Name
	switch mode {
	case AddCenter:
		l.SetCenter(area.Center())
	case AddFit:
		k := math.Min(area.Width/l.Width, area.Height/l.Height)
		l.Width, l.Height = l.Width*k, l.Height*k
		l.SetCenter(area.Center())
	case AddMouse:
		at := c.machine.Pointer()
		if opts.At != nil {
			at = *opts.At
		}
		l.SetCenter(at)
	default:
		l.X, l.Y = area.X, area.Y
	}
	return l, nil
}

// bakeMask returns a copy of img with its alpha multiplied by the alpha
// of m.
func bakeMask(img, m image.Image) *image.NRGBA {
	out := imaging.Clone(img)
	size := out.Bounds().Size()
	if m.Bounds().Size() != size {
		m = imaging.Resize(m, size.X, size.Y, imaging.Linear)
	}
	a := mask.FromAlpha(m, false)
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			i := out.PixOffset(x, y) + 3
			v := uint32(out.Pix[i]) * uint32(a.Pix[a.PixOffset(x, y)])
			out.Pix[i] = uint8((v + 127) / 255)
		}
	}
	return out
}

// Duplicate adds copies of ls with fresh ids above every layer, keeping
// their relative order, and returns them in the order of ls.
func (c *Canvas) Duplicate(ls []*layer.Layer) []*layer.Layer {
	out := make([]*layer.Layer, 0, len(ls))
	for _, l := range ls {
		if !c.store.Contains(l) {
			continue
		}
		d := l.Clone()
		d.ID = layer.NewID()
		out = append(out, d)
	}
	if err := c.store.AddGroup(out); err != nil {
		layerforge.Logger().Warn("canvas: duplicate failed", "err", err)
		return nil
	}
	return out
}

// Remove deletes ls from the store and the selection.
func (c *Canvas) Remove(ls []*layer.Layer) {
	n := c.store.Remove(ls...)
	c.sel.Prune(c.store)
	layerforge.Logger().Debug("canvas: layers removed", "count", n)
}

// Fuse flattens the selected layers into one new layer that takes the
// slot of the topmost selected layer. It returns nil when fewer than two
// layers are selected or the selection has no area.
func (c *Canvas) Fuse() (*layer.Layer, error) {
	sel := c.sel.Layers()
	if len(sel) < 2 {
		return nil, nil
	}
	img, box, err := c.comp.FlattenSelection(sel)
	if err != nil || img == nil {
		return nil, err
	}
	top := -1
	for _, l := range sel {
		if i := c.store.IndexOf(l); i > top {
			top = i
		}
	}
	fused := layer.New(img)
	fused.Name = "Fused"
	fused.X, fused.Y = box.X, box.Y
	c.store.Remove(sel...)
	c.store.InsertAt(fused, top-(len(sel)-1))
	c.sel.Replace(fused)
	c.SaveState()
	layerforge.Logger().Info("canvas: layers fused", "layer", fused.ID, "count", len(sel))
	return fused, nil
}

// ToggleVisibility flips l's visibility. A hidden layer leaves the
// selection.
func (c *Canvas) ToggleVisibility(l *layer.Layer) {
	if !c.store.Contains(l) {
		return
	}
	l.Visible = !l.Visible
	if !l.Visible {
		c.sel.Remove(l)
	}
	c.SaveState()
}

// SetBlendMode changes how l composites onto the layers below.
func (c *Canvas) SetBlendMode(l *layer.Layer, m layer.BlendMode) error {
	if !m.Valid() {
		return fmt.Errorf("canvas: blend mode %d: %w", m, layerforge.ErrValidation)
	}
	l.BlendMode = m
	c.SaveState()
	return nil
}

// SetOpacity sets l's opacity, clamped to [0, 1].
func (c *Canvas) SetOpacity(l *layer.Layer, v float64) error {
	if math.IsNaN(v) {
		return fmt.Errorf("canvas: opacity NaN: %w", layerforge.ErrValidation)
	}
	l.Opacity = geom.Clamp(v, 0, 1)
	c.SaveState()
	return nil
}

// SetBlendArea sets the edge feather percentage, clamped to [0, 100].
func (c *Canvas) SetBlendArea(l *layer.Layer, v float64) error {
	if math.IsNaN(v) {
		return fmt.Errorf("canvas: blend area NaN: %w", layerforge.ErrValidation)
	}
	l.BlendArea = geom.Clamp(v, 0, 100)
	c.SaveState()
	return nil
}

// ReplaceImage swaps l's pixels, keeping its frame. Cached feather masks
// of the old image are dropped. A crop survives only when the source size
// is unchanged.
func (c *Canvas) ReplaceImage(l *layer.Layer, img image.Image) error {
	if img == nil || img.Bounds().Empty() {
		return layerforge.Wrap("canvas: replace image", layerforge.ErrValidation)
	}
	old := l.ImageID
	if old == "" && l.Image != nil {
		old = layer.ImageIDFor(l.Image)
	}
	if n := c.comp.Invalidate(old); n > 0 {
		layerforge.Logger().Debug("canvas: feather masks dropped", "layer", l.ID, "count", n)
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	if w != l.OriginalWidth || h != l.OriginalHeight {
		l.CropBounds = nil
		l.CropMode = false
	}
	l.Image = img
	l.ImageID = layer.ImageIDFor(img)
	l.OriginalWidth, l.OriginalHeight = w, h
	c.SaveState()
	return nil
}

// MoveLayers moves the selection one step up or down in paint order.
func (c *Canvas) MoveLayers(dir layer.Direction) {
	if c.sel.Empty() {
		return
	}
	c.store.MoveLayers(c.sel.Layers(), dir)
	c.SaveState()
}

// MoveLayersTo moves the selection to display index i.
func (c *Canvas) MoveLayersTo(i int) {
	if c.sel.Empty() {
		return
	}
	c.store.MoveLayersTo(c.sel.Layers(), i)
	c.SaveState()
}

// Rename gives l a unique variant of name.
func (c *Canvas) Rename(l *layer.Layer, name string) {
	c.store.Rename(l, name)
	c.SaveState()
}
