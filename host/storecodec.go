package host

import (
	"context"
	"image"
	"time"

	"github.com/gogpu/layerforge/layer"
)

// StoreCodec keeps document images in an ImageStore and references them
// by content id, so identical pixels are stored once.
type StoreCodec struct {
	Store   ImageStore
	// Timeout bounds each store call. Zero means no deadline.
	Timeout time.Duration
}

func (c StoreCodec) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout > 0 {
		return context.WithTimeout(context.Background(), c.Timeout)
	}
	return context.WithCancel(context.Background())
}

func (c StoreCodec) EncodeImage(img image.Image) (string, error) {
	url, err := EncodeDataURL(img)
	if err != nil {
		return "", err
	}
	id := layer.ImageIDFor(img)
	ctx, cancel := c.ctx()
	defer cancel()
	if err := c.Store.SaveImage(ctx, id, url); err != nil {
		return "", err
	}
	return id, nil
}

func (c StoreCodec) DecodeImage(ref string) (image.Image, error) {
	ctx, cancel := c.ctx()
	defer cancel()
	url, err := c.Store.LoadImage(ctx, ref)
	if err != nil {
		return nil, err
	}
	return DecodeDataURL(url)
}
