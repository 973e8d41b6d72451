package host

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/internal/poll"
	"github.com/gogpu/layerforge/mask"
)

// MaskTarget is the canvas side of a mask editing session.
type MaskTarget interface {
	Mask() *mask.Engine
	Flatten() (*image.RGBA, error)
	FlattenWithMask() (*image.RGBA, error)
	ExportMask() (*image.NRGBA, error)
	SaveState()
}

// MaskEditor is the host's own mask editing dialog.
type MaskEditor interface {
	// Open shows the editor on the uploaded image ref.
	Open(ctx context.Context, ref string) error
	// Ready reports whether the editor's mask canvas can accept a bitmap.
	Ready(ctx context.Context) (bool, error)
	// SetMask draws img into the editor's mask canvas.
	SetMask(ctx context.Context, img image.Image) error
	// Result returns the edited image after the editor closed, or nil when
	// it closed without producing one. Masked pixels are transparent.
	Result(ctx context.Context) (image.Image, error)
}

// DefaultBridgePoll bounds the wait for the editor to become ready.
var DefaultBridgePoll = poll.Config{Attempts: 50, Interval: 100 * time.Millisecond, Backoff: 1}

// MaskEditorBridge hands the canvas composite to the host mask editor and
// reads the edited mask back.
type MaskEditorBridge struct {
	editor   MaskEditor
	uploader ImageUploader
	poll     poll.Config
	name     string
	preview  func(*image.RGBA)
}

// BridgeOption configures a MaskEditorBridge.
type BridgeOption func(*MaskEditorBridge)

// WithReadyPolling sets the attempts and interval used while waiting for
// the editor.
func WithReadyPolling(attempts int, interval time.Duration) BridgeOption {
	return func(b *MaskEditorBridge) {
		b.poll = poll.Config{Attempts: attempts, Interval: interval, Backoff: 1}
	}
}

// WithUploadName sets the filename of the uploaded composite.
func WithUploadName(name string) BridgeOption {
	return func(b *MaskEditorBridge) { b.name = name }
}

// WithPreview registers a callback receiving the masked composite whenever
// a session changes the mask.
func WithPreview(fn func(*image.RGBA)) BridgeOption {
	return func(b *MaskEditorBridge) { b.preview = fn }
}

// NewMaskEditorBridge returns a bridge to editor that uploads through up.
func NewMaskEditorBridge(editor MaskEditor, up ImageUploader, opts ...BridgeOption) *MaskEditorBridge {
	b := &MaskEditorBridge{
		editor:   editor,
		uploader: up,
		poll:     DefaultBridgePoll,
		name:     "layerforge_mask_editor.png",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Open snapshots the mask, uploads the composite and opens the editor.
// With baked set the uploaded composite has the mask applied. Readiness
// polling starts immediately; call EditSession.Ready to push the mask.
func (b *MaskEditorBridge) Open(ctx context.Context, t MaskTarget, baked bool) (*EditSession, error) {
	snap := t.Mask().Snapshot()

	flatten := t.Flatten
	if baked {
		flatten = t.FlattenWithMask
	}
	img, err := flatten()
	if err != nil {
		return nil, layerforge.Wrap("host: mask editor flatten", err)
	}
	pre, err := t.ExportMask()
	if err != nil {
		return nil, layerforge.Wrap("host: mask editor export", err)
	}
	ref, err := b.uploader.Upload(ctx, b.name, img)
	if err != nil {
		return nil, err
	}
	if err := b.editor.Open(ctx, ref); err != nil {
		return nil, layerforge.Wrap("host: open mask editor", err)
	}
	layerforge.Logger().Info("host: mask editor opened", "ref", ref, "baked", baked)

	task := poll.Start(ctx, b.poll, func(ctx context.Context) (struct{}, bool, error) {
		ok, err := b.editor.Ready(ctx)
		return struct{}{}, ok, err
	})
	return &EditSession{b: b, t: t, snap: snap, pre: pre, ready: task}, nil
}

// EditSession is one open editor. Exactly one of Cancel or Close ends it.
type EditSession struct {
	b     *MaskEditorBridge
	t     MaskTarget
	snap  *mask.Snapshot
	pre   *image.NRGBA
	ready *poll.Task[struct{}]

	mu   sync.Mutex
	done bool
}

// Ready waits for the editor and pushes the pre-rendered mask into it.
func (s *EditSession) Ready(ctx context.Context) error {
	if _, err := s.ready.Wait(); err != nil {
		layerforge.Logger().Warn("host: mask editor never became ready", "attempts", s.ready.Attempts(), "err", err)
		return fmt.Errorf("host: mask editor not ready: %w: %w", layerforge.ErrStateInconsistency, err)
	}
	if err := s.b.editor.SetMask(ctx, s.pre); err != nil {
		return layerforge.Wrap("host: push mask", err)
	}
	layerforge.Logger().Debug("host: mask pushed", "attempts", s.ready.Attempts())
	return nil
}

func (s *EditSession) finish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false
	}
	s.done = true
	s.ready.Cancel()
	return true
}

// Cancel restores the mask saved when the session opened.
func (s *EditSession) Cancel() {
	if !s.finish() {
		return
	}
	s.t.Mask().Restore(s.snap)
	layerforge.Logger().Info("host: mask edit cancelled")
	s.b.regenerate(s.t)
}

// Close reads the editor result and replaces the mask over the output area
// with its inverted alpha. A missing result leaves the mask untouched and
// returns an error matching layerforge.ErrStateInconsistency.
func (s *EditSession) Close(ctx context.Context) error {
	if !s.finish() {
		return nil
	}
	res, err := s.b.editor.Result(ctx)
	if err != nil {
		return layerforge.Wrap("host: mask editor result", err)
	}
	if res == nil {
		layerforge.Logger().Warn("host: mask editor closed without a result")
		return layerforge.Wrap("host: mask editor result", layerforge.ErrStateInconsistency)
	}
	s.t.Mask().SetMask(mask.FromAlpha(res, true))
	s.t.SaveState()
	layerforge.Logger().Info("host: mask edit applied", "size", res.Bounds().Size())
	s.b.regenerate(s.t)
	return nil
}

func (b *MaskEditorBridge) regenerate(t MaskTarget) {
	if b.preview == nil {
		return
	}
	img, err := t.FlattenWithMask()
	if err != nil {
		layerforge.Logger().Warn("host: preview failed", "err", err)
		return
	}
	b.preview(img)
}
