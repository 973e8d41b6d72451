// Package layer defines placed raster layers and the z-ordered Store that
// owns them.
package layer

import (
	"image"
	"math"

	"github.com/gogpu/layerforge/geom"
)

// Layer is one raster image placed on the canvas.
//
// X, Y, Width and Height describe the transform frame in world coordinates.
// Rotation is in degrees, clockwise, around the frame center. Flips are a
// sign change of the drawing scale inside the rotated frame. CropBounds,
// when set, is a rectangle in source pixel space and is always accompanied
// by OriginalWidth and OriginalHeight.
type Layer struct {
	ID      string `json:"id"`
	ImageID string `json:"imageId"`
	Name    string `json:"name"`

	Image image.Image `json:"-"`

	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	FlipH    bool    `json:"flipH,omitempty"`
	FlipV    bool    `json:"flipV,omitempty"`

	OriginalWidth  float64    `json:"originalWidth,omitempty"`
	OriginalHeight float64    `json:"originalHeight,omitempty"`
	CropBounds     *geom.Rect `json:"cropBounds,omitempty"`

	BlendMode BlendMode `json:"blendMode"`
	Opacity   float64   `json:"opacity"`
	BlendArea float64   `json:"blendArea"`
	Visible   bool      `json:"visible"`
	ZIndex    int       `json:"zIndex"`

	// CropMode makes resize handles edit CropBounds instead of the frame.
	CropMode bool `json:"-"`
}

// New returns a visible, fully opaque layer framing img at its natural size.
func New(img image.Image) *Layer {
	l := &Layer{
		ID:        NewID(),
		Image:     img,
		BlendMode: Normal,
		Opacity:   1,
		Visible:   true,
	}
	if img != nil {
		b := img.Bounds()
		l.ImageID = ImageIDFor(img)
		l.Width, l.Height = float64(b.Dx()), float64(b.Dy())
		l.OriginalWidth, l.OriginalHeight = l.Width, l.Height
	}
	return l
}

// Clone returns a shallow copy: the image is shared, the crop rectangle is
// not.
func (l *Layer) Clone() *Layer {
	c := *l
	if l.CropBounds != nil {
		cb := *l.CropBounds
		c.CropBounds = &cb
	}
	return &c
}

// Frame returns the unrotated transform frame.
func (l *Layer) Frame() geom.Rect {
	return geom.Rect{X: l.X, Y: l.Y, Width: l.Width, Height: l.Height}
}

// Center returns the rotation pivot.
func (l *Layer) Center() geom.Vec {
	return geom.Vec{X: l.X + l.Width/2, Y: l.Y + l.Height/2}
}

// SetCenter moves the frame so that its center is c.
func (l *Layer) SetCenter(c geom.Vec) {
	l.X = c.X - l.Width/2
	l.Y = c.Y - l.Height/2
}

// Corners returns the rotated frame corners: top-left, top-right,
// bottom-right, bottom-left.
func (l *Layer) Corners() [4]geom.Vec {
	return geom.RotatedCorners(l.Frame(), l.Rotation)
}

// Bounds returns the axis-aligned bounds of the rotated frame.
func (l *Layer) Bounds() geom.Rect {
	return geom.RotatedBounds(l.Frame(), l.Rotation)
}

// ToLocal maps a world point into the unrotated frame axes, relative to the
// frame center.
func (l *Layer) ToLocal(p geom.Vec) geom.Vec {
	c := l.Center()
	q := geom.RotateAbout(p, c, -l.Rotation)
	return geom.Vec{X: q.X - c.X, Y: q.Y - c.Y}
}

// ToWorld is the inverse of ToLocal.
func (l *Layer) ToWorld(local geom.Vec) geom.Vec {
	c := l.Center()
	return geom.RotateAbout(geom.Vec{X: c.X + local.X, Y: c.Y + local.Y}, c, l.Rotation)
}

// Contains reports whether the world point p falls inside the rotated frame.
func (l *Layer) Contains(p geom.Vec) bool {
	q := l.ToLocal(p)
	return math.Abs(q.X) <= l.Width/2 && math.Abs(q.Y) <= l.Height/2
}

// SourceSize returns the source pixel dimensions used to map crops: the
// recorded original size, else the image bounds.
func (l *Layer) SourceSize() (w, h float64) {
	if l.OriginalWidth > 0 && l.OriginalHeight > 0 {
		return l.OriginalWidth, l.OriginalHeight
	}
	if l.Image != nil {
		b := l.Image.Bounds()
		return float64(b.Dx()), float64(b.Dy())
	}
	return l.Width, l.Height
}

// HasOriginalSize reports whether OriginalWidth and OriginalHeight are set.
func (l *Layer) HasOriginalSize() bool {
	return l.OriginalWidth > 0 && l.OriginalHeight > 0
}

// SourceRect returns the sampled source rectangle: the crop when present,
// otherwise the full source.
func (l *Layer) SourceRect() geom.Rect {
	if l.CropBounds != nil && l.HasOriginalSize() {
		return *l.CropBounds
	}
	w, h := l.SourceSize()
	return geom.Rect{Width: w, Height: h}
}

// DestRect returns where SourceRect lands inside the transform frame, in
// frame-local coordinates with the origin at the frame center. Without an
// original size the whole frame is covered.
func (l *Layer) DestRect() geom.Rect {
	if !l.HasOriginalSize() {
		return geom.Rect{X: -l.Width / 2, Y: -l.Height / 2, Width: l.Width, Height: l.Height}
	}
	sx := l.Width / l.OriginalWidth
	sy := l.Height / l.OriginalHeight
	src := l.SourceRect()
	return geom.Rect{
		X:      -l.Width/2 + src.X*sx,
		Y:      -l.Height/2 + src.Y*sy,
		Width:  src.Width * sx,
		Height: src.Height * sy,
	}
}

// VisibleRect returns the world-space unrotated rectangle actually covered
// by pixels: the frame for uncropped layers, the crop's destination
// otherwise.
func (l *Layer) VisibleRect() geom.Rect {
	d := l.DestRect()
	c := l.Center()
	return d.Translate(c.X, c.Y)
}
