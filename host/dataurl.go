package host

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/layerforge"
)

const pngDataURLPrefix = "data:image/png;base64,"

// DecodeImage decodes PNG, JPEG, GIF, BMP, TIFF or WebP data. EXIF
// orientation is applied.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("host: decode image: %w: %w", layerforge.ErrValidation, err)
	}
	return img, nil
}

// EncodeDataURL encodes img as a PNG data URL.
func EncodeDataURL(img image.Image) (string, error) {
	if img == nil {
		return "", layerforge.Wrap("host: encode data url", layerforge.ErrValidation)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", layerforge.Wrap("host: encode data url", err)
	}
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// DecodeDataURL decodes a base64 data URL of any registered image format.
// A bare base64 payload without the data: header is accepted too.
func DecodeDataURL(s string) (image.Image, error) {
	payload := s
	if strings.HasPrefix(s, "data:") {
		header, data, ok := strings.Cut(s, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("host: data url header %q: %w", header, layerforge.ErrValidation)
		}
		payload = data
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("host: data url payload: %w: %w", layerforge.ErrValidation, err)
	}
	return DecodeImage(bytes.NewReader(raw))
}

// DataURLCodec stores document images inline as PNG data URLs.
type DataURLCodec struct{}

func (DataURLCodec) EncodeImage(img image.Image) (string, error) { return EncodeDataURL(img) }

func (DataURLCodec) DecodeImage(ref string) (image.Image, error) { return DecodeDataURL(ref) }
