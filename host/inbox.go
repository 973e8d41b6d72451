package host

import (
	"context"
	"image"
	"image/draw"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/layerforge"
)

// DefaultInboxTTL is how long an unclaimed payload is kept.
const DefaultInboxTTL = 5 * time.Minute

// BlankSize is the side of the image and mask returned when no payload
// has arrived for a node.
const BlankSize = 512

// Payload is one canvas export addressed to a node: data URLs of the
// flattened image and of its mask.
type Payload struct {
	NodeID string `json:"nodeId"`
	Image  string `json:"image,omitempty"`
	Mask   string `json:"mask,omitempty"`
}

// Output is a decoded payload. Mask is grayscale, white is masked.
type Output struct {
	Image *image.NRGBA
	Mask  *image.Gray
}

type entry struct {
	p        Payload
	received time.Time
}

// Inbox receives payloads from canvases and hands them to the node run
// that consumes them. It satisfies Transport.
type Inbox struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
	cached  Output

	busy atomic.Bool
}

var _ Transport = (*Inbox)(nil)

// NewInbox returns an inbox dropping entries older than ttl. A ttl of zero
// means DefaultInboxTTL.
func NewInbox(ttl time.Duration) *Inbox {
	if ttl <= 0 {
		ttl = DefaultInboxTTL
	}
	return &Inbox{ttl: ttl, now: time.Now, entries: make(map[string]entry), cached: blankOutput()}
}

// Send stores p for nodeID, replacing an unclaimed earlier payload.
func (in *Inbox) Send(ctx context.Context, nodeID string, p Payload) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if nodeID == "" {
		return layerforge.Wrap("host: inbox send", layerforge.ErrValidation)
	}
	p.NodeID = nodeID
	in.mu.Lock()
	in.entries[nodeID] = entry{p: p, received: in.now()}
	in.mu.Unlock()
	layerforge.Logger().Info("host: canvas data received", "node", nodeID)
	return nil
}

// Pending reports whether a payload for nodeID is waiting.
func (in *Inbox) Pending(nodeID string) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	_, ok := in.entries[nodeID]
	return ok
}

// Cleanup drops entries older than the TTL and returns how many it removed.
func (in *Inbox) Cleanup() int {
	cutoff := in.now().Add(-in.ttl)
	in.mu.Lock()
	defer in.mu.Unlock()
	n := 0
	for id, e := range in.entries {
		if e.received.Before(cutoff) {
			delete(in.entries, id)
			n++
		}
	}
	if n > 0 {
		layerforge.Logger().Info("host: inbox cleaned", "removed", n)
	}
	return n
}

// TryBegin claims the processing slot. It returns false when another run
// holds it.
func (in *Inbox) TryBegin() bool { return in.busy.CompareAndSwap(false, true) }

// End releases the processing slot.
func (in *Inbox) End() { in.busy.Store(false) }

// Cached returns the output of the last completed run.
func (in *Inbox) Cached() Output {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.cached
}

// Take claims the payload for nodeID and decodes it. Missing parts are
// replaced by a blank BlankSize square. When another run is in progress
// the cached output is returned instead. Undecodable parts fail the call
// and the payload is consumed.
func (in *Inbox) Take(nodeID string) (Output, error) {
	if !in.TryBegin() {
		layerforge.Logger().Warn("host: run already in progress, returning cached output", "node", nodeID)
		return in.Cached(), nil
	}
	defer in.End()

	in.mu.Lock()
	e, ok := in.entries[nodeID]
	delete(in.entries, nodeID)
	in.mu.Unlock()
	if !ok {
		layerforge.Logger().Warn("host: no canvas data, using blank output", "node", nodeID)
	}

	out := blankOutput()
	if e.p.Image != "" {
		img, err := DecodeDataURL(e.p.Image)
		if err != nil {
			return Output{}, layerforge.Wrap("host: inbox image", err)
		}
		out.Image = toOpaqueNRGBA(img)
	}
	if e.p.Mask != "" {
		m, err := DecodeDataURL(e.p.Mask)
		if err != nil {
			return Output{}, layerforge.Wrap("host: inbox mask", err)
		}
		out.Mask = toGray(m)
	}

	in.mu.Lock()
	in.cached = out
	in.mu.Unlock()
	return out, nil
}

func blankOutput() Output {
	r := image.Rect(0, 0, BlankSize, BlankSize)
	img := image.NewNRGBA(r)
	draw.Draw(img, r, image.Black, image.Point{}, draw.Src)
	return Output{Image: img, Mask: image.NewGray(r)}
}

// toOpaqueNRGBA drops alpha. Straight color is kept; fully transparent
// pixels become black.
func toOpaqueNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 255
	}
	return out
}

// toGray takes the luma of the premultiplied color, so white with a given
// alpha and an opaque gray of the same weight give the same value.
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Rect, img, b.Min, draw.Src)
	return out
}
