package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gogpu/layerforge/canvas"
	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/host"
)

// writeDoc saves a 6x4 canvas with two layers and returns its path.
func writeDoc(t *testing.T) string {
	t.Helper()
	c := canvas.New(canvas.WithOutputArea(geom.R(0, 0, 6, 4)))
	img := image.NewNRGBA(image.Rect(0, 0, 3, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+3] = 255, 255
	}
	if _, err := c.AddLayer(img, canvas.AddOptions{Name: "left"}); err != nil {
		t.Fatal(err)
	}
	l, err := c.AddLayer(img, canvas.AddOptions{Name: "right"})
	if err != nil {
		t.Fatal(err)
	}
	l.X = 3
	return saveDoc(t, c)
}

// saveDoc writes c as a document with inline images and returns its path.
func saveDoc(t *testing.T, c *canvas.Canvas) string {
	t.Helper()
	d, err := c.Document(host.DataURLCodec{})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "doc.json")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := d.Write(f); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := host.DecodeImage(f)
	if err != nil {
		t.Fatal(err)
	}
	return img
}

func TestRender(t *testing.T) {
	doc := writeDoc(t)
	dir := t.TempDir()
	out := filepath.Join(dir, "out.png")
	if _, err := run(t, "render", doc, "-o", out); err != nil {
		t.Fatal(err)
	}
	img := decodePNG(t, out)
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 4 {
		t.Errorf("image bounds = %v", img.Bounds())
	}
	if r, _, _, a := img.At(4, 2).RGBA(); r>>8 != 255 || a>>8 != 255 {
		t.Errorf("pixel (4,2) = %v", img.At(4, 2))
	}
	m := decodePNG(t, filepath.Join(dir, "out_mask.png"))
	if _, _, _, a := m.At(1, 1).RGBA(); a != 0 {
		t.Errorf("covered pixel masked: %v", m.At(1, 1))
	}
}

func TestMaskCommand(t *testing.T) {
	doc := writeDoc(t)
	out := filepath.Join(t.TempDir(), "m.png")
	if _, err := run(t, "mask", doc, "-o", out); err != nil {
		t.Fatal(err)
	}
	m := decodePNG(t, out)
	if got := color.NRGBAModel.Convert(m.At(0, 0)).(color.NRGBA); got.A != 0 {
		t.Errorf("mask pixel = %v", got)
	}
}

func TestInfo(t *testing.T) {
	out, err := run(t, "info", writeDoc(t))
	if err != nil {
		t.Fatal(err)
	}
	right := strings.Index(out, "right")
	left := strings.Index(out, "left")
	if right < 0 || left < 0 || right > left {
		t.Errorf("layers not listed topmost first:\n%s", out)
	}
	if !strings.Contains(out, "output area: 6x4") {
		t.Errorf("missing output area:\n%s", out)
	}
}

func TestMissingDocument(t *testing.T) {
	if _, err := run(t, "info", filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected an error for a missing document")
	}
	if _, err := run(t, "render"); err == nil {
		t.Error("expected an argument error")
	}
}

func TestEmptyDocumentWritesNothing(t *testing.T) {
	doc := saveDoc(t, canvas.New(canvas.WithOutputArea(geom.R(0, 0, 6, 4))))
	tests := []struct {
		name string
		args []string
	}{
		{"render", []string{"render", doc}},
		{"mask", []string{"mask", doc}},
		{"matte", []string{"matte", doc, "--endpoint", "http://127.0.0.1:1/matting"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.png")
			got, err := run(t, append(tt.args, "-o", out)...)
			if err != nil {
				t.Fatal(err)
			}
			if strings.TrimSpace(got) != "nothing to save" {
				t.Errorf("output = %q", got)
			}
			if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("%s written: %v", out, err)
			}
		})
	}
}

func TestMatteCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Image string `json:"image"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		img, err := host.DecodeDataURL(req.Image)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		url, err := host.EncodeDataURL(image.NewNRGBA(img.Bounds()))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"matted_image":%q}`, url)
	}))
	defer srv.Close()

	doc := writeDoc(t)
	out := filepath.Join(t.TempDir(), "matted.json")
	if _, err := run(t, "matte", doc, "--endpoint", srv.URL, "--layer", "left", "-o", out); err != nil {
		t.Fatal(err)
	}
	img := filepath.Join(t.TempDir(), "out.png")
	if _, err := run(t, "render", out, "--no-mask", "-o", img); err != nil {
		t.Fatal(err)
	}
	r := decodePNG(t, img)
	if _, _, _, a := r.At(1, 1).RGBA(); a != 0 {
		t.Errorf("matted layer still visible: %v", r.At(1, 1))
	}
	if _, _, _, a := r.At(4, 1).RGBA(); a != 0xffff {
		t.Errorf("other layer changed: %v", r.At(4, 1))
	}

	if _, err := run(t, "matte", doc, "--endpoint", srv.URL, "--layer", "missing"); err == nil {
		t.Error("expected an error for an unknown layer")
	}
}
