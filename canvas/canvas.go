// Package canvas ties the editor core together: the layer store, the
// selection, the paintable mask, the output area and its custom shape,
// undo history, the clipboard and the interaction machine that drives
// them.
package canvas

import (
	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/composite"
	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/history"
	"github.com/gogpu/layerforge/interaction"
	"github.com/gogpu/layerforge/layer"
	"github.com/gogpu/layerforge/mask"
	"github.com/gogpu/layerforge/selection"
)

// Pending is an area reserved on the canvas for a batch result that has
// not arrived yet. It moves with the content when the output area is
// rebased.
type Pending struct {
	ID   string    `json:"id"`
	Area geom.Rect `json:"area"`
}

// Canvas is one editor instance. It implements interaction.Target and is
// not safe for concurrent use.
type Canvas struct {
	cfg Config

	store *layer.Store
	sel   selection.Set
	mask  *mask.Engine
	area  geom.Rect

	shape       []geom.Vec
	shapeClosed bool
	pending     []Pending

	comp    *composite.Compositor
	clip    *selection.Manager
	hist    *history.History[*State]
	machine *interaction.Machine
}

var _ interaction.Target = (*Canvas)(nil)

// New returns an empty canvas. The initial state is recorded as the first
// history entry.
func New(opts ...Option) *Canvas {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	clipOpts := append([]selection.Option{
		selection.WithPreference(cfg.ClipboardPreference),
		selection.WithNotifier(cfg.Notifier),
	}, cfg.ClipboardOptions...)
	c := &Canvas{
		cfg:   cfg,
		store: layer.NewStore(),
		area:  cfg.OutputArea,
		mask:  mask.New(cfg.OutputArea),
		comp: composite.New(
			composite.WithInterpolator(cfg.Interpolator),
			composite.WithFeatherCacheSize(cfg.FeatherCacheSize),
		),
		clip: selection.NewManager(clipOpts...),
		hist: history.New[*State](cfg.HistoryLimit),
	}
	c.machine = interaction.New(c, cfg.machineConfig())
	c.hist.Reset(c.state())
	return c
}

// Config returns the resolved settings.
func (c *Canvas) Config() Config { return c.cfg }

// Layers returns the layer store.
func (c *Canvas) Layers() *layer.Store { return c.store }

// Selection returns the current selection.
func (c *Canvas) Selection() *selection.Set { return &c.sel }

// Mask returns the paintable mask.
func (c *Canvas) Mask() *mask.Engine { return c.mask }

// Machine returns the interaction machine bound to this canvas.
func (c *Canvas) Machine() *interaction.Machine { return c.machine }

// Compositor returns the renderer used for previews and exports.
func (c *Canvas) Compositor() *composite.Compositor { return c.comp }

// Clipboard returns the clipboard manager.
func (c *Canvas) Clipboard() *selection.Manager { return c.clip }

// OutputArea returns the exported world rectangle.
func (c *Canvas) OutputArea() geom.Rect { return c.area }

// SetOutputArea makes r the new output area. The area keeps its origin:
// layers, the mask, pending areas and the custom shape move by minus the
// origin delta so nothing shifts relative to the exported region.
func (c *Canvas) SetOutputArea(r geom.Rect) {
	if r.Empty() {
		layerforge.Logger().Warn("canvas: ignored empty output area", "area", r)
		return
	}
	dx, dy := r.X-c.area.X, r.Y-c.area.Y
	if dx != 0 || dy != 0 {
		for _, l := range c.store.Layers() {
			l.X -= dx
			l.Y -= dy
		}
		c.mask.UpdatePosition(-dx, -dy)
		for i := range c.pending {
			c.pending[i].Area = c.pending[i].Area.Translate(-dx, -dy)
		}
		for i := range c.shape {
			c.shape[i].X -= dx
			c.shape[i].Y -= dy
		}
	}
	c.area.Width, c.area.Height = r.Width, r.Height
	c.mask.SetOutputArea(c.area)
	layerforge.Logger().Info("canvas: output area changed", "area", c.area, "dx", dx, "dy", dy)
}

// Shape returns the custom output-area polygon and whether it is closed.
func (c *Canvas) Shape() ([]geom.Vec, bool) {
	out := make([]geom.Vec, len(c.shape))
	copy(out, c.shape)
	return out, c.shapeClosed
}

// ClearShape removes the custom output-area shape.
func (c *Canvas) ClearShape() {
	c.shape = nil
	c.shapeClosed = false
}

// AddShapePoint appends a vertex. Adding to a closed shape starts a new
// one.
func (c *Canvas) AddShapePoint(p geom.Vec) {
	if c.shapeClosed {
		c.ClearShape()
	}
	c.shape = append(c.shape, p)
}

// CloseShape finishes the polygon. Fewer than three points cannot enclose
// anything and clear the shape instead.
func (c *Canvas) CloseShape() {
	if len(c.shape) < 3 {
		layerforge.Logger().Warn("canvas: shape needs three points", "points", len(c.shape))
		c.ClearShape()
		return
	}
	c.shapeClosed = true
	c.SaveState()
}

// AddPending reserves area for the batch result id, replacing an earlier
// reservation with the same id.
func (c *Canvas) AddPending(id string, area geom.Rect) {
	for i := range c.pending {
		if c.pending[i].ID == id {
			c.pending[i].Area = area
			return
		}
	}
	c.pending = append(c.pending, Pending{ID: id, Area: area})
}

// PendingAreas returns the open reservations.
func (c *Canvas) PendingAreas() []Pending {
	out := make([]Pending, len(c.pending))
	copy(out, c.pending)
	return out
}

// ResolvePending removes the reservation id and returns it.
func (c *Canvas) ResolvePending(id string) (Pending, bool) {
	for i, p := range c.pending {
		if p.ID == id {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return p, true
		}
	}
	return Pending{}, false
}

// BlendMenu forwards the request to the configured callback.
func (c *Canvas) BlendMenu(l *layer.Layer, screen geom.Vec) {
	if c.cfg.BlendMenu != nil {
		c.cfg.BlendMenu(l, screen)
	}
}
