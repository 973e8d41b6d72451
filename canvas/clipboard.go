package canvas

import (
	"context"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/selection"
)

// Copy puts the selection on the internal clipboard.
func (c *Canvas) Copy() {
	c.clip.Copy(c.sel.Layers())
}

// Paste inserts the clipboard content centered on at and selects it.
// Internal copies keep their relative offsets and z order and land above
// every layer. External images become new layers centered on at.
func (c *Canvas) Paste(ctx context.Context, at geom.Vec) error {
	p, err := c.clip.Paste(ctx)
	if err != nil {
		return err
	}
	if p.Empty() {
		return nil
	}
	added := p.Layers
	if len(added) > 0 {
		selection.Arrange(added, at)
		if err := c.store.AddGroup(added); err != nil {
			return err
		}
	}
	for _, img := range p.Images {
		l, err := c.newLayer(img, AddOptions{Mode: AddMouse, At: &at})
		if err != nil {
			return err
		}
		if err := c.store.Add(l); err != nil {
			return err
		}
		added = append(added, l)
	}
	c.sel.Replace(added...)
	c.SaveState()
	layerforge.Logger().Info("canvas: pasted", "layers", len(added))
	return nil
}
