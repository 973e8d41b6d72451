package interaction

import (
	"math"

	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/layer"
)

// Handle is a transform control point of a layer: eight resize handles
// around the frame and the rotation handle above its top edge.
type Handle uint8

const (
	NoHandle Handle = iota
	N
	NE
	E
	SE
	S
	SW
	W
	NW
	Rot

	handleCount
)

var handleNames = [handleCount]string{"", "n", "ne", "e", "se", "s", "sw", "w", "nw", "rot"}

func (h Handle) String() string {
	if h < handleCount {
		return handleNames[h]
	}
	return "unknown"
}

var opposite = [handleCount]Handle{
	NoHandle: NoHandle,
	N:        S,
	NE:       SW,
	E:        W,
	SE:       NW,
	S:        N,
	SW:       NE,
	W:        E,
	NW:       SE,
	Rot:      NoHandle,
}

// Opposite returns the handle used as the fixed anchor while h is
// dragged.
func (h Handle) Opposite() Handle {
	if h < handleCount {
		return opposite[h]
	}
	return NoHandle
}

var cursors = [handleCount]string{
	NoHandle: "default",
	N:        "n-resize",
	NE:       "ne-resize",
	E:        "e-resize",
	SE:       "se-resize",
	S:        "s-resize",
	SW:       "sw-resize",
	W:        "w-resize",
	NW:       "nw-resize",
	Rot:      "grab",
}

// Cursor returns the CSS cursor for h on an unrotated layer.
func (h Handle) Cursor() string {
	if h < handleCount {
		return cursors[h]
	}
	return cursors[NoHandle]
}

// compass lists the resize handles clockwise from north.
var compass = [8]Handle{N, NE, E, SE, S, SW, W, NW}

// CursorFor returns the resize cursor matching the on-screen direction of
// h on a layer rotated by deg degrees.
func (h Handle) CursorFor(deg float64) string {
	if h == NoHandle || h == Rot || h >= handleCount {
		return h.Cursor()
	}
	steps := int(math.Round(geom.NormalizeDegrees(deg) / 45))
	return compass[(int(h)-int(N)+steps)%8].Cursor()
}

var signs = [handleCount][2]float64{
	N:  {0, -1},
	NE: {1, -1},
	E:  {1, 0},
	SE: {1, 1},
	S:  {0, 1},
	SW: {-1, 1},
	W:  {-1, 0},
	NW: {-1, -1},
}

// Sign returns the direction of h from the frame center along the local x
// and y axes, each -1, 0 or 1.
func (h Handle) Sign() (sx, sy float64) {
	if h >= handleCount {
		return 0, 0
	}
	return signs[h][0], signs[h][1]
}

// IsCorner reports whether h moves both dimensions.
func (h Handle) IsCorner() bool {
	sx, sy := h.Sign()
	return sx != 0 && sy != 0
}

// handleRect returns the rectangle, in center-relative local coordinates,
// that carries the handles: the frame normally, the displayed crop in crop
// mode.
func handleRect(l *layer.Layer) geom.Rect {
	if l.CropMode && l.CropBounds != nil && l.HasOriginalSize() {
		d := l.DestRect()
		if l.FlipH {
			d.X = -d.X - d.Width
		}
		if l.FlipV {
			d.Y = -d.Y - d.Height
		}
		return d
	}
	return geom.Rect{X: -l.Width / 2, Y: -l.Height / 2, Width: l.Width, Height: l.Height}
}

// localHandle returns the center-relative local position of h. rotOffset
// is the distance of the rotation handle above the top edge.
func localHandle(r geom.Rect, h Handle, rotOffset float64) geom.Vec {
	c := r.Center()
	if h == Rot {
		return geom.Vec{X: c.X, Y: r.Y - rotOffset}
	}
	sx, sy := h.Sign()
	return geom.Vec{X: c.X + sx*r.Width/2, Y: c.Y + sy*r.Height/2}
}

// HandlePosition returns the world position of h on l at the given zoom.
func HandlePosition(l *layer.Layer, h Handle, zoom float64, cfg Config) geom.Vec {
	return l.ToWorld(localHandle(handleRect(l), h, cfg.RotationHandleOffset/zoomOr1(zoom)))
}

// HandleAt returns the handle of l under the world point p, or NoHandle.
// The hit radius is constant on screen. The rotation handle is not offered
// in crop mode.
func HandleAt(l *layer.Layer, p geom.Vec, zoom float64, cfg Config) Handle {
	z := zoomOr1(zoom)
	radius := cfg.HandleRadius / z
	r := handleRect(l)
	q := l.ToLocal(p)
	best, bestD := NoHandle, math.Inf(1)
	for h := N; h < handleCount; h++ {
		if h == Rot && l.CropMode {
			continue
		}
		d := geom.Dist(q, localHandle(r, h, cfg.RotationHandleOffset/z))
		if d <= radius && d < bestD {
			best, bestD = h, d
		}
	}
	return best
}

func zoomOr1(z float64) float64 {
	if z <= 0 {
		return 1
	}
	return z
}
