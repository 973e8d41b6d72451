package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"path"

	"github.com/disintegration/imaging"

	"github.com/gogpu/layerforge"
)

// DefaultFallbackName is the filename retried once when the backend
// rejects the caller's name.
const DefaultFallbackName = "layerforge_upload.png"

// ImageUploader sends a bitmap to the host backend and returns the
// reference the backend assigned to it.
type ImageUploader interface {
	Upload(ctx context.Context, name string, img image.Image) (string, error)
}

// RejectedError is returned when the backend answered with a non-2xx
// status. It matches layerforge.ErrIO.
type RejectedError struct {
	Op     string // "upload" when empty
	Name   string
	Status int
	Body   string
}

func (e *RejectedError) Error() string {
	op := e.Op
	if op == "" {
		op = "upload"
	}
	return fmt.Sprintf("host: %s %s rejected: %d %s", op, e.Name, e.Status, e.Body)
}

func (e *RejectedError) Unwrap() error { return layerforge.ErrIO }

// Uploader posts PNG images as multipart forms.
type Uploader struct {
	endpoint string
	client   *http.Client
	field    string
	fallback string
	fields   map[string]string
}

var _ ImageUploader = (*Uploader)(nil)

// UploaderOption configures an Uploader.
type UploaderOption func(*Uploader)

// WithHTTPClient sets the client. The default is http.DefaultClient.
func WithHTTPClient(c *http.Client) UploaderOption {
	return func(u *Uploader) {
		if c != nil {
			u.client = c
		}
	}
}

// WithFileField sets the form field carrying the file. Default "image".
func WithFileField(name string) UploaderOption {
	return func(u *Uploader) { u.field = name }
}

// WithFallbackName sets the filename retried after a rejection. An empty
// name disables the retry.
func WithFallbackName(name string) UploaderOption {
	return func(u *Uploader) { u.fallback = name }
}

// WithFormField adds a plain form field to every upload, such as
// "type"="temp".
func WithFormField(key, value string) UploaderOption {
	return func(u *Uploader) { u.fields[key] = value }
}

// NewUploader returns an uploader posting to endpoint.
func NewUploader(endpoint string, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		endpoint: endpoint,
		client:   http.DefaultClient,
		field:    "image",
		fallback: DefaultFallbackName,
		fields:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Upload encodes img as PNG and posts it under name. When the backend
// rejects the request, the upload is retried once under the fallback name.
// Transport failures are returned without a retry.
func (u *Uploader) Upload(ctx context.Context, name string, img image.Image) (string, error) {
	if img == nil || name == "" {
		return "", layerforge.Wrap("host: upload", layerforge.ErrValidation)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", layerforge.Wrap("host: upload "+name, err)
	}
	ref, err := u.post(ctx, name, buf.Bytes())
	var rej *RejectedError
	if errors.As(err, &rej) && u.fallback != "" && u.fallback != name {
		layerforge.Logger().Warn("host: upload rejected, retrying", "name", name, "status", rej.Status, "fallback", u.fallback)
		ref, err = u.post(ctx, u.fallback, buf.Bytes())
	}
	if err != nil {
		layerforge.Logger().Error("host: upload failed", "name", name, "err", err)
		return "", err
	}
	layerforge.Logger().Info("host: uploaded", "ref", ref, "bytes", buf.Len())
	return ref, nil
}

type uploadResponse struct {
	Name      string `json:"name"`
	Subfolder string `json:"subfolder"`
}

func (u *Uploader) post(ctx context.Context, name string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(u.field, name)
	if err != nil {
		return "", layerforge.Wrap("host: upload "+name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return "", layerforge.Wrap("host: upload "+name, err)
	}
	for k, v := range u.fields {
		if err := mw.WriteField(k, v); err != nil {
			return "", layerforge.Wrap("host: upload "+name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", layerforge.Wrap("host: upload "+name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("host: upload %s: %w: %w", name, layerforge.ErrValidation, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := u.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("host: upload %s: %w: %w", name, layerforge.ErrIO, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &RejectedError{Name: name, Status: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}
	var r uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil || r.Name == "" {
		return name, nil
	}
	if r.Subfolder != "" {
		return path.Join(r.Subfolder, r.Name), nil
	}
	return r.Name, nil
}
