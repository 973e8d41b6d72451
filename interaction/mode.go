// Package interaction turns pointer, wheel and keyboard events into edits
// of a canvas: selecting, dragging, resizing and rotating layers, painting
// the mask, panning and zooming the view, and resizing or moving the
// output area.
package interaction

// Mode is the single active gesture.
type Mode uint8

const (
	None Mode = iota
	Panning
	Dragging
	Resizing
	Rotating
	DrawingMask
	ResizingCanvas
	MovingCanvas
	PotentialDrag
	DrawingShape

	modeCount
)

var modeNames = [modeCount]string{
	None:           "none",
	Panning:        "panning",
	Dragging:       "dragging",
	Resizing:       "resizing",
	Rotating:       "rotating",
	DrawingMask:    "drawingMask",
	ResizingCanvas: "resizingCanvas",
	MovingCanvas:   "movingCanvas",
	PotentialDrag:  "potentialDrag",
	DrawingShape:   "drawingShape",
}

func (m Mode) String() string {
	if m < modeCount {
		return modeNames[m]
	}
	return "unknown"
}

// Tool selects what a primary press does.
type Tool uint8

const (
	// TransformTool selects and transforms layers.
	TransformTool Tool = iota
	// MaskTool paints the mask; Alt erases.
	MaskTool
	// ShapeTool adds points to the custom output-area shape.
	ShapeTool
)

func (t Tool) String() string {
	switch t {
	case TransformTool:
		return "transform"
	case MaskTool:
		return "mask"
	case ShapeTool:
		return "shape"
	}
	return "unknown"
}
