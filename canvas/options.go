package canvas

import (
	"golang.org/x/image/draw"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/composite"
	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/history"
	"github.com/gogpu/layerforge/interaction"
	"github.com/gogpu/layerforge/layer"
	"github.com/gogpu/layerforge/selection"
)

// DefaultOutputArea is the output area of a new canvas.
var DefaultOutputArea = geom.R(0, 0, 512, 512)

// Config holds the resolved canvas settings.
type Config struct {
	GridSize      float64
	MinSize       float64
	DragThreshold float64
	ZoomMin       float64
	ZoomMax       float64

	OutputArea          geom.Rect
	Interpolator        draw.Interpolator
	FeatherCacheSize    int
	HistoryLimit        int
	ClipboardPreference selection.Preference
	AddMode             AddMode

	// ClipboardOptions are passed to the clipboard manager after the
	// preference.
	ClipboardOptions []selection.Option

	// BlendMenu is called when the user asks for the blend mode menu of a
	// selected layer.
	BlendMenu func(l *layer.Layer, screen geom.Vec)

	// OnSave runs after every history snapshot. Hosts hook persistence
	// here.
	OnSave func()

	// Notifier receives user-visible failures from the clipboard and
	// matting.
	Notifier layerforge.Notifier
}

// Option configures a Canvas.
//
// Example:
//
//	c := canvas.New(
//		canvas.WithOutputArea(geom.R(0, 0, 1024, 768)),
//		canvas.WithGridSize(32),
//	)
type Option func(*Config)

func defaultConfig() Config {
	ic := interaction.DefaultConfig()
	return Config{
		GridSize:            ic.GridSize,
		MinSize:             ic.MinSize,
		DragThreshold:       ic.DragThreshold,
		ZoomMin:             ic.ZoomMin,
		ZoomMax:             ic.ZoomMax,
		OutputArea:          DefaultOutputArea,
		Interpolator:        draw.ApproxBiLinear,
		FeatherCacheSize:    composite.DefaultFeatherCacheSize,
		HistoryLimit:        history.DefaultLimit,
		ClipboardPreference: selection.PreferSystem,
		AddMode:             AddDefault,
		Notifier:            layerforge.LogNotifier{},
	}
}

// WithGridSize sets the snapping grid. Non-positive values are ignored.
func WithGridSize(size float64) Option {
	return func(c *Config) {
		if size > 0 {
			c.GridSize = size
		}
	}
}

// WithMinSize sets the smallest layer side a gesture may produce.
func WithMinSize(size float64) Option {
	return func(c *Config) {
		if size > 0 {
			c.MinSize = size
		}
	}
}

// WithDragThreshold sets how far the pointer travels before a press on a
// layer becomes a drag.
func WithDragThreshold(d float64) Option {
	return func(c *Config) {
		if d >= 0 {
			c.DragThreshold = d
		}
	}
}

// WithZoomLimits sets the zoom clamp. Invalid ranges are ignored.
func WithZoomLimits(lo, hi float64) Option {
	return func(c *Config) {
		if lo > 0 && hi >= lo {
			c.ZoomMin, c.ZoomMax = lo, hi
		}
	}
}

// WithOutputArea sets the initial output area.
func WithOutputArea(r geom.Rect) Option {
	return func(c *Config) {
		if !r.Empty() {
			c.OutputArea = r
		}
	}
}

// WithInterpolator sets the resampling kernel used to render layers.
func WithInterpolator(i draw.Interpolator) Option {
	return func(c *Config) {
		if i != nil {
			c.Interpolator = i
		}
	}
}

// WithFeatherCacheSize bounds the number of cached edge-blend masks.
func WithFeatherCacheSize(n int) Option {
	return func(c *Config) { c.FeatherCacheSize = n }
}

// WithHistoryLimit bounds the number of undo snapshots.
func WithHistoryLimit(n int) Option {
	return func(c *Config) { c.HistoryLimit = n }
}

// WithClipboardPreference routes external pastes.
func WithClipboardPreference(p selection.Preference) Option {
	return func(c *Config) { c.ClipboardPreference = p }
}

// WithClipboardOptions configures the external clipboard sources.
func WithClipboardOptions(opts ...selection.Option) Option {
	return func(c *Config) { c.ClipboardOptions = append(c.ClipboardOptions, opts...) }
}

// WithAddMode sets where AddLayer places images by default.
func WithAddMode(m AddMode) Option {
	return func(c *Config) {
		if m != "" {
			c.AddMode = m
		}
	}
}

// WithBlendMenu sets the blend menu callback.
func WithBlendMenu(f func(l *layer.Layer, screen geom.Vec)) Option {
	return func(c *Config) { c.BlendMenu = f }
}

// WithOnSave sets the hook run after every history snapshot.
func WithOnSave(f func()) Option {
	return func(c *Config) { c.OnSave = f }
}

// WithNotifier sets where user-visible failures are reported. Nil is
// ignored.
func WithNotifier(n layerforge.Notifier) Option {
	return func(c *Config) {
		if n != nil {
			c.Notifier = n
		}
	}
}

func (c Config) machineConfig() interaction.Config {
	ic := interaction.DefaultConfig()
	ic.GridSize = c.GridSize
	ic.MinSize = c.MinSize
	ic.DragThreshold = c.DragThreshold
	ic.ZoomMin = c.ZoomMin
	ic.ZoomMax = c.ZoomMax
	return ic
}
