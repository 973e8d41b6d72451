package host

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"github.com/gogpu/layerforge"
)

func checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: uint8(40 * x), G: uint8(60 * y), B: 200, A: 255}
			if (x+y)%2 == 1 {
				c.A = 128
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func samePixels(t *testing.T, got image.Image, want *image.NRGBA) {
	t.Helper()
	if got.Bounds().Size() != want.Rect.Size() {
		t.Fatalf("size = %v, want %v", got.Bounds().Size(), want.Rect.Size())
	}
	b := got.Bounds()
	for y := 0; y < want.Rect.Dy(); y++ {
		for x := 0; x < want.Rect.Dx(); x++ {
			g := color.NRGBAModel.Convert(got.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			if w := want.NRGBAAt(x, y); g != w {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, g, w)
			}
		}
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	var s MemoryStore
	if err := s.SaveImage(ctx, "a", "data:1"); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveImage(ctx, "a", "data:2"); err != nil {
		t.Fatal(err)
	}
	if got, err := s.LoadImage(ctx, "a"); err != nil || got != "data:2" {
		t.Errorf("LoadImage = %q, %v", got, err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d", s.Len())
	}
	if err := s.RemoveImage(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadImage(ctx, "a"); !errors.Is(err, layerforge.ErrIO) {
		t.Errorf("missing image err = %v", err)
	}
	if err := s.SaveImage(ctx, "", "x"); !errors.Is(err, layerforge.ErrValidation) {
		t.Errorf("empty id err = %v", err)
	}
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := s.SaveImage(cancelled, "b", "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled ctx err = %v", err)
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	src := checker(5, 3)
	url, err := EncodeDataURL(src)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Fatalf("url prefix = %q", url[:30])
	}
	img, err := DecodeDataURL(url)
	if err != nil {
		t.Fatal(err)
	}
	samePixels(t, img, src)

	bare := strings.TrimPrefix(url, "data:image/png;base64,")
	if _, err := DecodeDataURL(bare); err != nil {
		t.Errorf("bare base64: %v", err)
	}
}

func TestDataURLErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no comma", "data:image/png;base64"},
		{"not base64 header", "data:image/png,abcd"},
		{"bad payload", "data:image/png;base64,!!!"},
		{"not an image", "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("hello"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeDataURL(tt.in); !errors.Is(err, layerforge.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
	if _, err := EncodeDataURL(nil); !errors.Is(err, layerforge.ErrValidation) {
		t.Errorf("nil image err = %v", err)
	}
}

func TestDecodeImageFormats(t *testing.T) {
	src := checker(4, 4)
	tests := []struct {
		name   string
		encode func(*bytes.Buffer) error
	}{
		{"bmp", func(b *bytes.Buffer) error { return bmp.Encode(b, src) }},
		{"tiff", func(b *bytes.Buffer) error { return tiff.Encode(b, src, nil) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf); err != nil {
				t.Fatal(err)
			}
			img, err := DecodeImage(&buf)
			if err != nil {
				t.Fatal(err)
			}
			if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
				t.Errorf("bounds = %v", img.Bounds())
			}
		})
	}
}

func TestStoreCodecDedupes(t *testing.T) {
	store := NewMemoryStore()
	codec := StoreCodec{Store: store, Timeout: time.Second}
	src := checker(3, 3)

	a, err := codec.EncodeImage(src)
	if err != nil {
		t.Fatal(err)
	}
	b, err := codec.EncodeImage(checker(3, 3))
	if err != nil {
		t.Fatal(err)
	}
	if a != b || store.Len() != 1 {
		t.Errorf("refs %q, %q with %d stored images", a, b, store.Len())
	}
	img, err := codec.DecodeImage(a)
	if err != nil {
		t.Fatal(err)
	}
	samePixels(t, img, src)
	if _, err := codec.DecodeImage("img_missing"); !errors.Is(err, layerforge.ErrIO) {
		t.Errorf("missing ref err = %v", err)
	}
}

func TestSaveGuardSharesInFlight(t *testing.T) {
	var g SaveGuard
	var runs atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	results := make([]bool, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _, _ = g.Do("node", func() (bool, error) {
			runs.Add(1)
			close(started)
			<-release
			return true, nil
		})
	}()
	<-started
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _, _ = g.Do("node", func() (bool, error) {
			runs.Add(1)
			return false, nil
		})
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", runs.Load())
	}
	if !results[0] || !results[1] {
		t.Errorf("results = %v, want both true", results)
	}

	ok, shared, err := g.Do("node", func() (bool, error) { return false, errors.New("later") })
	if ok || shared || err == nil {
		t.Errorf("later Do = %v, %v, %v", ok, shared, err)
	}
}
