package selection

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/layer"
)

// Preference routes pastes that the internal clipboard cannot serve.
type Preference string

const (
	// PreferSystem reads the platform clipboard.
	PreferSystem Preference = "system"
	// PreferClipspace reads the host application's clipboard channel.
	PreferClipspace Preference = "clipspace"
)

// ParsePreference validates a preference name.
func ParsePreference(s string) (Preference, error) {
	switch p := Preference(s); p {
	case PreferSystem, PreferClipspace:
		return p, nil
	}
	return "", fmt.Errorf("selection: unknown clipboard preference %q: %w", s, layerforge.ErrValidation)
}

// Payload is what an external clipboard holds. At most one of Image and
// Text is normally set.
type Payload struct {
	Image image.Image
	Text  string
}

// External is a clipboard outside the process.
type External interface {
	Read(ctx context.Context) (Payload, error)
}

// ImageLoader fetches images named by pasted text. LoadPath goes through
// the host backend so that paths on the server side resolve.
type ImageLoader interface {
	LoadPath(ctx context.Context, path string) (image.Image, error)
	LoadURL(ctx context.Context, url string) (image.Image, error)
}

// FilePicker asks the user to choose an image file manually.
type FilePicker interface {
	PickImage(ctx context.Context) (image.Image, error)
}

// Pasted is the result of a paste. Layers come from the internal clipboard
// and are fresh copies ready to be positioned; Images come from an external
// source and still need layers.
type Pasted struct {
	Layers []*layer.Layer
	Images []image.Image
}

// Empty reports whether nothing was pasted.
func (p Pasted) Empty() bool { return len(p.Layers) == 0 && len(p.Images) == 0 }

// Manager owns the internal clipboard and routes external pastes.
type Manager struct {
	internal   []*layer.Layer
	preference Preference
	system     External
	clipspace  External
	loader     ImageLoader
	picker     FilePicker
	notifier   layerforge.Notifier
}

// Option configures a Manager.
type Option func(*Manager)

func WithPreference(p Preference) Option { return func(m *Manager) { m.preference = p } }
func WithSystem(e External) Option       { return func(m *Manager) { m.system = e } }
func WithClipspace(e External) Option    { return func(m *Manager) { m.clipspace = e } }
func WithLoader(l ImageLoader) Option    { return func(m *Manager) { m.loader = l } }
func WithPicker(p FilePicker) Option     { return func(m *Manager) { m.picker = p } }

// WithNotifier sets where user-facing paste failures are reported. The
// default logs them.
func WithNotifier(n layerforge.Notifier) Option { return func(m *Manager) { m.notifier = n } }

// NewManager returns a Manager preferring the system clipboard, read
// through SystemClipboard unless WithSystem replaces it. WithSystem(nil)
// disables the system source.
func NewManager(opts ...Option) *Manager {
	m := &Manager{preference: PreferSystem, system: SystemClipboard{}, notifier: layerforge.LogNotifier{}}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Preference returns the external routing preference.
func (m *Manager) Preference() Preference { return m.preference }

// Source returns the external clipboard the current preference reads, or
// nil when none is configured.
func (m *Manager) Source() External {
	if m.preference == PreferClipspace {
		return m.clipspace
	}
	return m.system
}

// SetPreference changes the external routing preference.
func (m *Manager) SetPreference(p Preference) { m.preference = p }

// Copy stores shallow copies of ls in the internal clipboard and returns
// how many were stored. Copying nothing keeps the previous content.
func (m *Manager) Copy(ls []*layer.Layer) int {
	if len(ls) == 0 {
		return 0
	}
	m.internal = make([]*layer.Layer, len(ls))
	for i, l := range ls {
		m.internal[i] = l.Clone()
	}
	layerforge.Logger().Debug("selection: copied", "layers", len(ls))
	return len(ls)
}

// Internal returns the internal clipboard content.
func (m *Manager) Internal() []*layer.Layer { return m.internal }

// ClearInternal empties the internal clipboard so that pastes go to the
// external path.
func (m *Manager) ClearInternal() { m.internal = nil }

// Paste returns the next thing to paste. The internal clipboard wins; each
// call returns new copies with fresh ids. Failures are reported to the
// notifier and returned wrapped in ErrIO.
func (m *Manager) Paste(ctx context.Context) (Pasted, error) {
	if len(m.internal) > 0 {
		out := make([]*layer.Layer, len(m.internal))
		for i, l := range m.internal {
			c := l.Clone()
			c.ID = layer.NewID()
			out[i] = c
		}
		return Pasted{Layers: out}, nil
	}
	src := m.Source()
	if src == nil {
		m.notifier.Notify(slog.LevelInfo, "Nothing to paste: no "+string(m.preference)+" clipboard is available")
		return Pasted{}, nil
	}
	p, err := src.Read(ctx)
	if err != nil {
		m.notifier.Notify(slog.LevelWarn, "Could not read the clipboard")
		return Pasted{}, fmt.Errorf("selection: read %s clipboard: %w", m.preference, errors.Join(layerforge.ErrIO, err))
	}
	if p.Image != nil {
		return Pasted{Images: []image.Image{p.Image}}, nil
	}
	if m.preference != PreferSystem || p.Text == "" {
		return Pasted{}, nil
	}
	img, err := m.loadText(ctx, p.Text)
	if err != nil {
		return Pasted{}, err
	}
	if img == nil {
		return Pasted{}, nil
	}
	return Pasted{Images: []image.Image{img}}, nil
}

// loadText resolves clipboard text naming an image. It returns nil, nil
// when the text does not look like an image reference.
func (m *Manager) loadText(ctx context.Context, text string) (image.Image, error) {
	text = CleanText(text)
	switch {
	case IsImageURL(text):
		if m.loader == nil {
			return nil, nil
		}
		img, err := m.loader.LoadURL(ctx, text)
		if err != nil {
			m.notifier.Notify(slog.LevelWarn, "Could not load the image URL from the clipboard")
			return nil, fmt.Errorf("selection: load url: %w", errors.Join(layerforge.ErrIO, err))
		}
		return img, nil
	case IsImagePath(text):
		p, _ := LocalPath(text)
		if m.loader != nil {
			img, err := m.loader.LoadPath(ctx, p)
			if err == nil {
				return img, nil
			}
			layerforge.Logger().Warn("selection: backend path load failed", "path", p, "err", err)
		}
		m.notifier.Notify(slog.LevelInfo, "Could not load "+p+"; choose the file manually")
		if m.picker == nil {
			return nil, fmt.Errorf("selection: load path %q: %w", p, layerforge.ErrIO)
		}
		img, err := m.picker.PickImage(ctx)
		if err != nil {
			return nil, fmt.Errorf("selection: file picker: %w", errors.Join(layerforge.ErrIO, err))
		}
		return img, nil
	}
	return nil, nil
}

// Arrange moves group so that the center of its combined rotated bounding
// box lands on at, keeping the relative offsets between the layers.
func Arrange(group []*layer.Layer, at geom.Vec) {
	if len(group) == 0 {
		return
	}
	c := layer.Bounds(group).Center()
	dx, dy := at.X-c.X, at.Y-c.Y
	for _, l := range group {
		l.X += dx
		l.Y += dy
	}
}
