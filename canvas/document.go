package canvas

import (
	"encoding/json"
	"fmt"
	"image"
	"io"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/layer"
	"github.com/gogpu/layerforge/mask"
)

// DocumentVersion is the version written by Document.
const DocumentVersion = 1

// ImageCodec turns images into string references and back, for example
// data URLs or storage keys.
type ImageCodec interface {
	EncodeImage(img image.Image) (string, error)
	DecodeImage(ref string) (image.Image, error)
}

// Document is the serializable form of a canvas. Layer pixels live in
// Images keyed by ImageID; the mask is stored as the part covering the
// output area.
type Document struct {
	Version     int               `json:"version"`
	OutputArea  geom.Rect         `json:"outputArea"`
	Layers      []*layer.Layer    `json:"layers"`
	Images      map[string]string `json:"images,omitempty"`
	Mask        string            `json:"mask,omitempty"`
	Shape       []geom.Vec        `json:"shape,omitempty"`
	ShapeClosed bool              `json:"shapeClosed,omitempty"`
	Pending     []Pending         `json:"pending,omitempty"`
}

// ReadDocument decodes a JSON document.
func ReadDocument(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("canvas: read document: %w", err)
	}
	if d.Version > DocumentVersion {
		return nil, fmt.Errorf("canvas: document version %d: %w", d.Version, layerforge.ErrValidation)
	}
	return &d, nil
}

// Write encodes d as indented JSON.
func (d *Document) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return layerforge.Wrap("canvas: write document", err)
	}
	return nil
}

// Document captures the canvas content, encoding every distinct image and
// the mask with codec.
func (c *Canvas) Document(codec ImageCodec) (*Document, error) {
	d := &Document{
		Version:     DocumentVersion,
		OutputArea:  c.area,
		Layers:      cloneLayers(c.store.Layers()),
		Images:      make(map[string]string),
		Shape:       append([]geom.Vec(nil), c.shape...),
		ShapeClosed: c.shapeClosed,
		Pending:     c.PendingAreas(),
	}
	for _, l := range d.Layers {
		if l.Image == nil {
			continue
		}
		if l.ImageID == "" {
			l.ImageID = layer.ImageIDFor(l.Image)
		}
		if _, ok := d.Images[l.ImageID]; ok {
			continue
		}
		ref, err := codec.EncodeImage(l.Image)
		if err != nil {
			return nil, fmt.Errorf("canvas: encode layer %s: %w", l.ID, err)
		}
		d.Images[l.ImageID] = ref
	}
	if m := c.mask.MaskForOutputArea(); m != nil {
		ref, err := codec.EncodeImage(m)
		if err != nil {
			return nil, fmt.Errorf("canvas: encode mask: %w", err)
		}
		d.Mask = ref
	}
	return d, nil
}

// Load replaces the canvas content with d and resets the history to it.
// Layers whose image cannot be decoded fail the whole load.
func (c *Canvas) Load(d *Document, codec ImageCodec) error {
	if d == nil || d.OutputArea.Empty() {
		return layerforge.Wrap("canvas: load", layerforge.ErrValidation)
	}
	decoded := make(map[string]image.Image, len(d.Images))
	layers := make([]*layer.Layer, 0, len(d.Layers))
	for _, src := range d.Layers {
		if src == nil {
			continue
		}
		l := src.Clone()
		if l.ID == "" {
			l.ID = layer.NewID()
		}
		img, ok := decoded[l.ImageID]
		if !ok {
			ref, found := d.Images[l.ImageID]
			if !found {
				return fmt.Errorf("canvas: layer %s: image %q missing: %w", l.ID, l.ImageID, layerforge.ErrValidation)
			}
			var err error
			if img, err = codec.DecodeImage(ref); err != nil {
				return fmt.Errorf("canvas: decode image %q: %w", l.ImageID, err)
			}
			decoded[l.ImageID] = img
		}
		l.Image = img
		if !l.BlendMode.Valid() {
			l.BlendMode = layer.Normal
		}
		layers = append(layers, l)
	}

	var m image.Image
	if d.Mask != "" {
		var err error
		if m, err = codec.DecodeImage(d.Mask); err != nil {
			return fmt.Errorf("canvas: decode mask: %w", err)
		}
	}

	c.machine.Cancel()
	c.sel.Clear()
	c.store.Replace(layers)
	c.store.Normalize()
	c.area = d.OutputArea
	c.mask.Restore(nil)
	c.mask.X, c.mask.Y = 0, 0
	c.mask.SetOutputArea(c.area)
	if m != nil {
		c.mask.SetMask(mask.FromAlpha(m, false))
	}
	c.shape = append([]geom.Vec(nil), d.Shape...)
	c.shapeClosed = d.ShapeClosed && len(c.shape) >= 3
	c.pending = append([]Pending(nil), d.Pending...)
	c.hist.Reset(c.state())
	layerforge.Logger().Info("canvas: document loaded", "layers", len(layers), "area", c.area)
	return nil
}
