package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"

	"github.com/gogpu/layerforge"
)

// HTTPMatter asks a background-removal endpoint to matte an image. The
// request carries the image as a PNG data URL; the response carries the
// matted image the same way. The endpoint answers 429 while another
// request is running.
type HTTPMatter struct {
	endpoint   string
	client     *http.Client
	threshold  float64
	refinement int
}

// MatterOption configures an HTTPMatter.
type MatterOption func(*HTTPMatter)

// WithMatterClient sets the client. The default is http.DefaultClient.
func WithMatterClient(c *http.Client) MatterOption {
	return func(m *HTTPMatter) {
		if c != nil {
			m.client = c
		}
	}
}

// WithThreshold sets the foreground cut-off in [0,1]. Default 0.5.
func WithThreshold(t float64) MatterOption {
	return func(m *HTTPMatter) { m.threshold = t }
}

// WithRefinement sets the refinement passes. Default 1.
func WithRefinement(n int) MatterOption {
	return func(m *HTTPMatter) { m.refinement = n }
}

// NewHTTPMatter returns a matter posting to endpoint.
func NewHTTPMatter(endpoint string, opts ...MatterOption) *HTTPMatter {
	m := &HTTPMatter{
		endpoint:   endpoint,
		client:     http.DefaultClient,
		threshold:  0.5,
		refinement: 1,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type matteRequest struct {
	Image      string  `json:"image"`
	Threshold  float64 `json:"threshold"`
	Refinement int     `json:"refinement"`
}

type matteResponse struct {
	MattedImage string `json:"matted_image"`
	AlphaMask   string `json:"alpha_mask"`
	Error       string `json:"error"`
}

// Matte posts img and decodes the matted image from the response.
// Transport failures and non-2xx answers match layerforge.ErrIO; the
// latter are *RejectedError.
func (m *HTTPMatter) Matte(ctx context.Context, img image.Image) (image.Image, error) {
	url, err := EncodeDataURL(img)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(matteRequest{Image: url, Threshold: m.threshold, Refinement: m.refinement})
	if err != nil {
		return nil, layerforge.Wrap("host: matte", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("host: matte: %w: %w", layerforge.ErrValidation, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("host: matte: %w: %w", layerforge.ErrIO, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("host: matte: %w: %w", layerforge.ErrIO, err)
	}
	var r matteResponse
	jerr := json.Unmarshal(raw, &r)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := r.Error
		if jerr != nil || msg == "" {
			msg = string(bytes.TrimSpace(raw))
		}
		return nil, &RejectedError{Op: "matte", Name: "image", Status: resp.StatusCode, Body: msg}
	}
	if jerr != nil || r.MattedImage == "" {
		return nil, fmt.Errorf("host: matte: no matted image in response: %w", layerforge.ErrIO)
	}
	out, err := DecodeDataURL(r.MattedImage)
	if err != nil {
		return nil, fmt.Errorf("host: matte: %w", err)
	}
	layerforge.Logger().Info("host: matted", "size", out.Bounds().Size())
	return out, nil
}
