package interaction

import "github.com/gogpu/layerforge/geom"

// Button identifies a pointer button.
type Button uint8

const (
	Primary Button = iota
	Middle
	Secondary
)

// Modifiers is the modifier key state of an event.
type Modifiers struct {
	Shift, Ctrl, Alt, Meta bool
}

// Command reports whether the platform command modifier (Ctrl or Cmd) is
// held.
func (m Modifiers) Command() bool { return m.Ctrl || m.Meta }

// PointerEvent is a press, move or release at a screen position.
type PointerEvent struct {
	Screen geom.Vec
	Button Button
	Mods   Modifiers
}

// WheelEvent is one wheel notch or trackpad scroll. Negative DeltaY
// scrolls up.
type WheelEvent struct {
	Screen geom.Vec
	DeltaY float64
	Mods   Modifiers
}

// KeyEvent is a key press or release. Key uses DOM key names: "ArrowLeft",
// "Delete", "[", "z".
type KeyEvent struct {
	Key  string
	Mods Modifiers
}
