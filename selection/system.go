package selection

import (
	"context"
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/gogpu/layerforge"
)

// SystemClipboard reads the platform clipboard as text. Image payloads are
// not available through it; pasted text naming an image file or URL is
// resolved by the Manager.
type SystemClipboard struct{}

// Read returns the clipboard text.
func (SystemClipboard) Read(context.Context) (Payload, error) {
	if clipboard.Unsupported {
		return Payload{}, fmt.Errorf("selection: system clipboard unsupported: %w", layerforge.ErrIO)
	}
	s, err := clipboard.ReadAll()
	if err != nil {
		return Payload{}, err
	}
	return Payload{Text: s}, nil
}
