package feather

import (
	"image"
	"math"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/internal/cache"
)

// Width returns the feather distance in pixels for a w x h source at the
// given blend area percentage: amount percent of half the shorter side, so
// 100 feathers all the way to the middle.
func Width(w, h int, amount float64) float64 {
	short := w
	if h < short {
		short = h
	}
	f := float64(short) / 2 * amount / 100
	if f < 1 {
		f = 1
	}
	return f
}

// Falloff maps a distance to mask coverage. Pixels touching transparency
// (d <= 1) are fully transparent, pixels at or beyond width+1 fully
// opaque, with a Hermite smoothstep in between.
func Falloff(d, width float64) float64 {
	if width <= 0 {
		return 1
	}
	t := (d - 1) / width
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

// Build computes a feather mask for sr of src. The mask is sr.Dx() x
// sr.Dy() with its origin at (0, 0). It returns nil for an empty rectangle
// or a non-positive amount.
func Build(src image.Image, sr image.Rectangle, amount float64) *image.Alpha {
	if sr.Empty() || amount <= 0 {
		return nil
	}
	w, h := sr.Dx(), sr.Dy()
	dist := DistanceField(src, sr)
	width := Width(w, h, amount)
	m := image.NewAlpha(image.Rect(0, 0, w, h))
	for i, d := range dist {
		m.Pix[i] = uint8(math.Round(Falloff(d, width) * 255))
	}
	return m
}

// Key identifies a cached mask.
type Key struct {
	Source string
	Crop   image.Rectangle
	// Amount is the blend area in hundredths of a percent.
	Amount int
}

// Blender caches feather masks by source identity, crop and amount.
type Blender struct {
	cache *cache.Cache[Key, *image.Alpha]
}

// NewBlender returns a Blender holding at most capacity masks.
func NewBlender(capacity int) *Blender {
	return &Blender{cache: cache.New[Key, *image.Alpha](capacity)}
}

// Mask returns the feather mask for sr of src at amount, building it on a
// cache miss. sourceID must identify the pixel content of src; callers use
// the layer's image id.
func (b *Blender) Mask(sourceID string, src image.Image, sr image.Rectangle, amount float64) *image.Alpha {
	if amount <= 0 || sr.Empty() {
		return nil
	}
	k := Key{Source: sourceID, Crop: sr, Amount: int(math.Round(amount * 100))}
	if sourceID == "" {
		// Without an identity the result cannot be reused safely.
		return Build(src, sr, amount)
	}
	return b.cache.GetOrCreate(k, func() *image.Alpha {
		layerforge.Logger().Debug("feather: building mask", "key", sourceID, "w", sr.Dx(), "h", sr.Dy(), "amount", amount)
		return Build(src, sr, amount)
	})
}

// Invalidate drops every mask derived from sourceID and returns how many
// were removed.
func (b *Blender) Invalidate(sourceID string) int {
	return b.cache.DeleteFunc(func(k Key) bool { return k.Source == sourceID })
}

// Len returns the number of cached masks.
func (b *Blender) Len() int { return b.cache.Len() }
