package interaction

import (
	"context"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/layer"
	"github.com/gogpu/layerforge/mask"
	"github.com/gogpu/layerforge/selection"
)

// Target is the model a Machine edits.
type Target interface {
	Layers() *layer.Store
	Selection() *selection.Set
	Mask() *mask.Engine

	OutputArea() geom.Rect
	// SetOutputArea makes r, given in current world coordinates, the new
	// output area. Implementations keep the area origin and rebase all
	// content by the origin delta.
	SetOutputArea(r geom.Rect)

	ClearShape()
	AddShapePoint(p geom.Vec)
	CloseShape()

	// Duplicate adds copies of ls above every layer and returns them in
	// the same order.
	Duplicate(ls []*layer.Layer) []*layer.Layer
	Remove(ls []*layer.Layer)
	Copy()
	Paste(ctx context.Context, at geom.Vec) error

	SaveState()
	Undo() bool
	Redo() bool

	// BlendMenu asks the UI to show the blend mode menu for l.
	BlendMenu(l *layer.Layer, screen geom.Vec)
}

// frame is a pre-gesture copy of the editable layer geometry.
type frame struct {
	x, y, w, h, rot float64
	crop            *geom.Rect
}

func frameOf(l *layer.Layer) frame {
	f := frame{x: l.X, y: l.Y, w: l.Width, h: l.Height, rot: l.Rotation}
	if l.CropBounds != nil {
		c := *l.CropBounds
		f.crop = &c
	}
	return f
}

// Machine is the interaction state machine. It is driven by one event
// source and is not safe for concurrent use.
type Machine struct {
	cfg    Config
	target Target

	// View is the current pan and zoom.
	View Viewport
	// Tool selects what a primary press does.
	Tool Tool

	mode    Mode
	mods    Modifiers
	pointer geom.Vec

	startScreen geom.Vec
	lastScreen  geom.Vec
	start       geom.Vec

	handle  Handle
	active  *layer.Layer
	anchor  geom.Vec
	angle0  float64
	origins map[*layer.Layer]frame
	targets []*layer.Layer

	cloned  bool
	changed bool

	preview    geom.Rect
	hasPreview bool
	hover      Handle
	hoverLayer *layer.Layer
}

// New returns an idle Machine editing t.
func New(t Target, cfg Config) *Machine {
	return &Machine{
		cfg:    cfg,
		target: t,
		View:   Viewport{Zoom: 1},
	}
}

// Mode returns the active gesture.
func (m *Machine) Mode() Mode { return m.mode }

// Config returns the tuning constants.
func (m *Machine) Config() Config { return m.cfg }

// Pointer returns the last known world pointer position.
func (m *Machine) Pointer() geom.Vec { return m.pointer }

// Modifiers returns the latched modifier state.
func (m *Machine) Modifiers() Modifiers { return m.mods }

// Preview returns the pending output-area rectangle while resizing or
// moving the canvas.
func (m *Machine) Preview() (geom.Rect, bool) { return m.preview, m.hasPreview }

// Cursor returns the CSS cursor for the current state.
func (m *Machine) Cursor() string {
	switch m.mode {
	case Panning, Rotating:
		return "grabbing"
	case Dragging, MovingCanvas:
		return "move"
	case Resizing:
		if m.active != nil {
			return m.handle.CursorFor(m.active.Rotation)
		}
	case ResizingCanvas, DrawingMask, DrawingShape:
		return "crosshair"
	case None:
		if m.hover != NoHandle && m.hoverLayer != nil {
			return m.hover.CursorFor(m.hoverLayer.Rotation)
		}
		if m.hoverLayer != nil {
			return "move"
		}
	}
	return "default"
}

func (m *Machine) setMode(to Mode) {
	if m.mode == to {
		return
	}
	layerforge.Logger().Debug("interaction: mode", "from", m.mode, "mode", to)
	m.mode = to
}

// reset returns to None and drops all gesture state.
func (m *Machine) reset() {
	m.setMode(None)
	m.handle = NoHandle
	m.active = nil
	m.origins = nil
	m.targets = nil
	m.cloned = false
	m.changed = false
	m.hasPreview = false
}

// abandon drops a gesture whose target vanished.
func (m *Machine) abandon(reason string) {
	layerforge.Logger().Warn("interaction: gesture abandoned", "mode", m.mode, "reason", reason)
	m.reset()
}

func (m *Machine) snapshot(ls []*layer.Layer) {
	m.origins = make(map[*layer.Layer]frame, len(ls))
	for _, l := range ls {
		m.origins[l] = frameOf(l)
	}
	m.targets = ls
}

// PointerDown starts a gesture. Presses while a gesture is active are
// ignored.
func (m *Machine) PointerDown(e PointerEvent) {
	if m.mode != None {
		return
	}
	m.mods = e.Mods
	w := m.View.ToWorld(e.Screen)
	m.pointer, m.start = w, w
	m.startScreen, m.lastScreen = e.Screen, e.Screen
	m.changed, m.cloned = false, false

	if e.Button == Primary {
		switch m.Tool {
		case MaskTool:
			m.target.Mask().BeginStroke(w, e.Mods.Alt)
			m.setMode(DrawingMask)
			return
		case ShapeTool:
			m.target.AddShapePoint(w)
			m.setMode(DrawingShape)
			return
		}
	}

	sel := m.target.Selection()
	store := m.target.Layers()
	switch {
	case e.Mods.Shift && e.Mods.Ctrl:
		m.preview, m.hasPreview = m.target.OutputArea(), true
		m.setMode(MovingCanvas)
		return
	case e.Mods.Shift:
		m.target.ClearShape()
		m.preview, m.hasPreview = m.target.OutputArea(), true
		m.setMode(ResizingCanvas)
		return
	case e.Button == Secondary:
		if l := store.HitTest(w); l != nil && sel.Contains(l) {
			m.target.BlendMenu(l, e.Screen)
			return
		}
		m.setMode(Panning)
		return
	case e.Button != Primary:
		m.setMode(Panning)
		return
	}

	if l, h := m.handleUnder(w); l != nil {
		m.active, m.handle = l, h
		if h == Rot {
			m.angle0 = geom.Angle(l.Center(), w)
			m.snapshot(sel.Layers())
			m.setMode(Rotating)
			return
		}
		m.anchor = HandlePosition(l, h.Opposite(), m.View.Zoom, m.cfg)
		m.snapshot([]*layer.Layer{l})
		m.setMode(Resizing)
		return
	}

	if l := store.HitTest(w); l != nil {
		sel.Click(l, e.Mods.Command(), false, store.DisplayOrder())
		m.snapshot(sel.Layers())
		m.setMode(PotentialDrag)
		return
	}
	if !e.Mods.Command() {
		sel.Clear()
	}
	m.setMode(Panning)
}

// handleUnder returns the topmost selected layer with a handle under w.
func (m *Machine) handleUnder(w geom.Vec) (*layer.Layer, Handle) {
	sel := m.target.Selection()
	for _, l := range m.target.Layers().DisplayOrder() {
		if !sel.Contains(l) {
			continue
		}
		if h := HandleAt(l, w, m.View.Zoom, m.cfg); h != NoHandle {
			return l, h
		}
	}
	return nil, NoHandle
}

// PointerMove advances the active gesture.
func (m *Machine) PointerMove(e PointerEvent) {
	m.mods = e.Mods
	w := m.View.ToWorld(e.Screen)
	m.pointer = w
	defer func() { m.lastScreen = e.Screen }()

	switch m.mode {
	case None:
		m.updateHover(w)
	case Panning:
		m.View.Pan(e.Screen.X-m.lastScreen.X, e.Screen.Y-m.lastScreen.Y)
		// Keep the world pointer consistent with the moved view.
		m.pointer = m.View.ToWorld(e.Screen)
	case PotentialDrag:
		if geom.Dist(w, m.start) > m.cfg.DragThreshold {
			m.setMode(Dragging)
			m.drag(w)
		}
	case Dragging:
		m.drag(w)
	case Resizing:
		m.resize(w)
	case Rotating:
		m.rotate(w)
	case DrawingMask:
		m.target.Mask().StrokeTo(w)
	case ResizingCanvas:
		m.preview = geom.SnapRect(m.start, w, m.cfg.GridSize)
	case MovingCanvas:
		area := m.target.OutputArea()
		dx := geom.Snap(w.X-m.start.X, m.cfg.GridSize)
		dy := geom.Snap(w.Y-m.start.Y, m.cfg.GridSize)
		m.preview = area.Translate(dx, dy)
	}
}

func (m *Machine) updateHover(w geom.Vec) {
	m.hover, m.hoverLayer = NoHandle, nil
	if m.Tool != TransformTool {
		return
	}
	if l, h := m.handleUnder(w); l != nil {
		m.hover, m.hoverLayer = h, l
		return
	}
	m.hoverLayer = m.target.Layers().HitTest(w)
}

// PointerUp finishes the active gesture and returns to None.
func (m *Machine) PointerUp(e PointerEvent) {
	m.mods = e.Mods
	m.finish(true)
}

// finish ends the gesture. Canvas previews are committed only when commit
// is set.
func (m *Machine) finish(commit bool) {
	switch m.mode {
	case DrawingMask:
		m.target.Mask().EndStroke()
		m.target.SaveState()
	case ResizingCanvas, MovingCanvas:
		if commit {
			m.commitCanvas()
		}
	case Dragging, Resizing, Rotating:
		if m.changed || m.cloned {
			m.target.SaveState()
		}
	}
	m.reset()
}

// commitCanvas applies the previewed output area. The view shifts with the
// content so nothing moves on screen.
func (m *Machine) commitCanvas() {
	if !m.hasPreview {
		return
	}
	area := m.target.OutputArea()
	r := m.preview
	if r.Width < m.cfg.MinSize || r.Height < m.cfg.MinSize {
		layerforge.Logger().Warn("interaction: canvas rectangle too small", "area", r)
		return
	}
	if r == area {
		return
	}
	dx, dy := r.X-area.X, r.Y-area.Y
	m.target.SetOutputArea(r)
	m.View.X -= dx
	m.View.Y -= dy
	m.target.SaveState()
}

// Blur cancels the gesture when the window loses focus: modifier latches
// are cleared, a clone-drag is finalized and canvas previews are dropped.
func (m *Machine) Blur() {
	m.mods = Modifiers{}
	m.hover, m.hoverLayer = NoHandle, nil
	m.finish(false)
}

// Cancel drops the active gesture without committing or recording it.
// Callers use it before replacing the model under the machine.
func (m *Machine) Cancel() {
	if m.mode == DrawingMask {
		m.target.Mask().EndStroke()
	}
	m.reset()
}

// KeyUp releases latched modifiers.
func (m *Machine) KeyUp(e KeyEvent) {
	m.mods = e.Mods
	switch e.Key {
	case "Shift":
		m.mods.Shift = false
	case "Control":
		m.mods.Ctrl = false
	case "Alt":
		m.mods.Alt = false
	case "Meta":
		m.mods.Meta = false
	}
}
