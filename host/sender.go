package host

import (
	"context"
	"image"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/layer"
)

// Transport delivers a payload to the node that consumes it, for example
// over a websocket. *Inbox is the in-process implementation.
type Transport interface {
	Send(ctx context.Context, nodeID string, p Payload) error
}

// Source is the canvas side of an export.
type Source interface {
	Layers() *layer.Store
	FlattenWithMask() (*image.RGBA, error)
	ExportMask() (*image.NRGBA, error)
}

// Sender exports a canvas to the host. With a Transport the image and mask
// travel as data URLs; otherwise both are uploaded.
type Sender struct {
	Transport Transport
	Uploader  ImageUploader
	// Store, when set, also keeps the last exported image per node.
	Store     ImageStore

	guard SaveGuard
}

// Send exports src for nodeID. It returns false with a nil error when the
// canvas has no layers. Concurrent sends for the same node share one
// export.
func (s *Sender) Send(ctx context.Context, nodeID string, src Source) (bool, error) {
	ok, shared, err := s.guard.Do(nodeID, func() (bool, error) {
		return s.send(ctx, nodeID, src)
	})
	if shared {
		layerforge.Logger().Debug("host: send joined in-flight export", "node", nodeID)
	}
	return ok, err
}

func (s *Sender) send(ctx context.Context, nodeID string, src Source) (bool, error) {
	if src.Layers().Len() == 0 {
		layerforge.Logger().Debug("host: nothing to send", "node", nodeID)
		return false, nil
	}
	img, err := src.FlattenWithMask()
	if err != nil {
		return false, layerforge.Wrap("host: send flatten", err)
	}
	m, err := src.ExportMask()
	if err != nil {
		return false, layerforge.Wrap("host: send mask", err)
	}

	url, err := EncodeDataURL(img)
	if err != nil {
		return false, err
	}
	if s.Store != nil {
		if err := s.Store.SaveImage(ctx, nodeID, url); err != nil {
			return false, err
		}
	}

	switch {
	case s.Transport != nil:
		p := Payload{NodeID: nodeID, Image: url}
		if p.Mask, err = EncodeDataURL(m); err != nil {
			return false, err
		}
		if err := s.Transport.Send(ctx, nodeID, p); err != nil {
			layerforge.Logger().Error("host: send failed", "node", nodeID, "err", err)
			return false, layerforge.Wrap("host: send", err)
		}
	case s.Uploader != nil:
		if _, err := s.Uploader.Upload(ctx, nodeID+".png", img); err != nil {
			return false, err
		}
		if _, err := s.Uploader.Upload(ctx, nodeID+"_mask.png", m); err != nil {
			return false, err
		}
	default:
		return false, layerforge.Wrap("host: send: no transport or uploader", layerforge.ErrValidation)
	}
	layerforge.Logger().Info("host: canvas sent", "node", nodeID, "size", img.Bounds().Size())
	return true, nil
}
