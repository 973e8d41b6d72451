package canvas

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/layer"
	"github.com/gogpu/layerforge/mask"
)

// Matter removes the background of an image and returns the foreground
// with the background made transparent.
type Matter interface {
	Matte(ctx context.Context, img image.Image) (image.Image, error)
}

var errEmptyMatte = errors.New("empty result")

// Matte sends the first selected layer's image to m and replaces it with
// the result. The result's alpha never exceeds the layer's own alpha, so
// pixels that were transparent stay transparent. Failures are reported to
// the configured Notifier and match layerforge.ErrIO.
func (c *Canvas) Matte(ctx context.Context, m Matter) (*layer.Layer, error) {
	ls := c.sel.Layers()
	if len(ls) == 0 || ls[0].Image == nil {
		return nil, layerforge.Wrap("canvas: matte", layerforge.ErrValidation)
	}
	l := ls[0]
	res, err := m.Matte(ctx, l.Image)
	if err == nil && (res == nil || res.Bounds().Empty()) {
		err = errEmptyMatte
	}
	if err != nil {
		layerforge.Logger().Error("canvas: matte failed", "layer", l.ID, "err", err)
		c.cfg.Notifier.Notify(slog.LevelWarn, "Background removal failed")
		if errors.Is(err, layerforge.ErrIO) {
			return nil, fmt.Errorf("canvas: matte %s: %w", l.ID, err)
		}
		return nil, fmt.Errorf("canvas: matte %s: %w: %w", l.ID, layerforge.ErrIO, err)
	}
	if err := c.ReplaceImage(l, combineAlpha(l.Image, res)); err != nil {
		return nil, err
	}
	layerforge.Logger().Info("canvas: matted", "layer", l.ID)
	return l, nil
}

// combineAlpha returns matted at the size of orig, with each pixel's alpha
// lowered to orig's alpha where that is smaller.
func combineAlpha(orig, matted image.Image) *image.NRGBA {
	ob := orig.Bounds()
	out := imaging.Clone(matted)
	if out.Rect.Dx() != ob.Dx() || out.Rect.Dy() != ob.Dy() {
		out = imaging.Resize(out, ob.Dx(), ob.Dy(), imaging.Linear)
	}
	a := mask.FromAlpha(orig, false)
	for y := 0; y < ob.Dy(); y++ {
		for x := 0; x < ob.Dx(); x++ {
			i := out.PixOffset(x, y) + 3
			if v := a.Pix[a.PixOffset(x, y)]; v < out.Pix[i] {
				out.Pix[i] = v
			}
		}
	}
	return out
}
