package host_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/canvas"
	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/host"
)

func TestSendEmptyCanvas(t *testing.T) {
	in := host.NewInbox(0)
	s := &host.Sender{Transport: in}
	ok, err := s.Send(context.Background(), "5", canvas.New(canvas.WithOutputArea(geom.R(0, 0, 4, 4))))
	if ok || err != nil {
		t.Errorf("Send = %v, %v, want false, nil", ok, err)
	}
	if in.Pending("5") {
		t.Error("empty canvas produced a payload")
	}
}

func TestSendThroughInbox(t *testing.T) {
	c := newCanvas(t)
	paint := image.NewAlpha(image.Rect(0, 0, 4, 4))
	paint.SetAlpha(0, 0, color.Alpha{A: 255})
	c.Mask().SetMask(paint)

	in := host.NewInbox(0)
	store := host.NewMemoryStore()
	s := &host.Sender{Transport: in, Store: store}
	ok, err := s.Send(context.Background(), "5", c)
	if !ok || err != nil {
		t.Fatalf("Send = %v, %v", ok, err)
	}
	if _, err := store.LoadImage(context.Background(), "5"); err != nil {
		t.Errorf("stored image: %v", err)
	}

	out, err := in.Take("5")
	if err != nil {
		t.Fatal(err)
	}
	if out.Image.Rect.Size() != image.Pt(4, 4) {
		t.Fatalf("image size = %v", out.Image.Rect)
	}
	if got := out.Image.NRGBAAt(2, 2); got.R < 250 || got.G > 5 {
		t.Errorf("image pixel = %v, want red", got)
	}
	if got := out.Mask.GrayAt(0, 0).Y; got != 255 {
		t.Errorf("mask at painted pixel = %d", got)
	}
	if got := out.Mask.GrayAt(2, 2).Y; got != 0 {
		t.Errorf("mask at clean pixel = %d", got)
	}
}

func TestSendUploads(t *testing.T) {
	c := newCanvas(t)
	paint := image.NewAlpha(image.Rect(0, 0, 4, 4))
	paint.SetAlpha(0, 0, color.Alpha{A: 255})
	c.Mask().SetMask(paint)

	up := &fakeUploader{}
	s := &host.Sender{Uploader: up}
	ok, err := s.Send(context.Background(), "9", c)
	if !ok || err != nil {
		t.Fatalf("Send = %v, %v", ok, err)
	}
	if len(up.names) != 2 || up.names[0] != "9.png" || up.names[1] != "9_mask.png" {
		t.Errorf("uploads = %v", up.names)
	}
	m, isNRGBA := up.imgs[1].(*image.NRGBA)
	if !isNRGBA {
		t.Fatalf("mask uploaded as %T", up.imgs[1])
	}
	checkWhiteMask(t, m, image.Pt(0, 0), 255)
	checkWhiteMask(t, m, image.Pt(2, 2), 0)
}

// checkWhiteMask asserts the export mask format: white everywhere, weight
// in alpha.
func checkWhiteMask(t *testing.T, m image.Image, p image.Point, alpha uint8) {
	t.Helper()
	got := color.NRGBAModel.Convert(m.At(p.X, p.Y)).(color.NRGBA)
	if got.R != 255 || got.G != 255 || got.B != 255 || got.A != alpha {
		t.Errorf("mask pixel %v = %+v, want white with alpha %d", p, got, alpha)
	}
}

type failingTransport struct{}

func (failingTransport) Send(context.Context, string, host.Payload) error {
	return layerforge.ErrIO
}

func TestSendErrors(t *testing.T) {
	c := newCanvas(t)
	if _, err := (&host.Sender{}).Send(context.Background(), "1", c); !errors.Is(err, layerforge.ErrValidation) {
		t.Errorf("no route err = %v", err)
	}
	ok, err := (&host.Sender{Transport: failingTransport{}}).Send(context.Background(), "1", c)
	if ok || !errors.Is(err, layerforge.ErrIO) {
		t.Errorf("transport failure = %v, %v", ok, err)
	}
}

type recordingTransport struct{ got []host.Payload }

func (r *recordingTransport) Send(_ context.Context, _ string, p host.Payload) error {
	r.got = append(r.got, p)
	return nil
}

func TestSendPayloadMaskKeepsAlpha(t *testing.T) {
	c := newCanvas(t)
	paint := image.NewAlpha(image.Rect(0, 0, 4, 4))
	paint.SetAlpha(1, 1, color.Alpha{A: 255})
	c.Mask().SetMask(paint)

	tr := &recordingTransport{}
	if ok, err := (&host.Sender{Transport: tr}).Send(context.Background(), "2", c); !ok || err != nil {
		t.Fatalf("Send = %v, %v", ok, err)
	}
	if len(tr.got) != 1 {
		t.Fatalf("payloads = %d", len(tr.got))
	}
	m, err := host.DecodeDataURL(tr.got[0].Mask)
	if err != nil {
		t.Fatal(err)
	}
	checkWhiteMask(t, m, image.Pt(1, 1), 255)
	checkWhiteMask(t, m, image.Pt(2, 2), 0)
}
