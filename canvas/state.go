package canvas

import (
	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/layer"
	"github.com/gogpu/layerforge/mask"
)

// State is an immutable snapshot of everything undo restores. Layers are
// shallow clones: pixels are shared, geometry is not.
type State struct {
	Layers      []*layer.Layer
	Selected    []string
	OutputArea  geom.Rect
	Mask        *mask.Snapshot
	Shape       []geom.Vec
	ShapeClosed bool
}

func cloneLayers(ls []*layer.Layer) []*layer.Layer {
	out := make([]*layer.Layer, len(ls))
	for i, l := range ls {
		out[i] = l.Clone()
	}
	return out
}

func (c *Canvas) state() *State {
	s := &State{
		Layers:      cloneLayers(c.store.Layers()),
		OutputArea:  c.area,
		Mask:        c.mask.Snapshot(),
		Shape:       append([]geom.Vec(nil), c.shape...),
		ShapeClosed: c.shapeClosed,
	}
	for _, l := range c.sel.Layers() {
		s.Selected = append(s.Selected, l.ID)
	}
	return s
}

// Snapshot returns the current state.
func (c *Canvas) Snapshot() *State { return c.state() }

// Restore replaces the canvas content with s. The selection is rebuilt
// from the ids recorded in s. An in-flight gesture is cancelled.
func (c *Canvas) Restore(s *State) {
	if s == nil {
		return
	}
	c.machine.Cancel()
	c.store.Replace(cloneLayers(s.Layers))
	c.area = s.OutputArea
	c.mask.SetOutputArea(c.area)
	c.mask.Restore(s.Mask)
	c.shape = append([]geom.Vec(nil), s.Shape...)
	c.shapeClosed = s.ShapeClosed

	c.sel.Clear()
	for _, id := range s.Selected {
		if l := c.store.Get(id); l != nil {
			c.sel.Add(l)
		}
	}
}

// SaveState records the current state in the undo history.
func (c *Canvas) SaveState() {
	c.hist.Save(c.state())
	layerforge.Logger().Debug("canvas: state saved", "entries", c.hist.Len())
	if c.cfg.OnSave != nil {
		c.cfg.OnSave()
	}
}

// Undo restores the previous state and reports whether there was one.
func (c *Canvas) Undo() bool {
	s, ok := c.hist.Undo()
	if !ok {
		return false
	}
	c.Restore(s)
	return true
}

// Redo reapplies the next state and reports whether there was one.
func (c *Canvas) Redo() bool {
	s, ok := c.hist.Redo()
	if !ok {
		return false
	}
	c.Restore(s)
	return true
}

// CanUndo reports whether Undo would change anything.
func (c *Canvas) CanUndo() bool { return c.hist.CanUndo() }

// CanRedo reports whether Redo would change anything.
func (c *Canvas) CanRedo() bool { return c.hist.CanRedo() }
