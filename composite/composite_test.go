package composite

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"golang.org/x/image/draw"

	"github.com/gogpu/layerforge"
	"github.com/gogpu/layerforge/geom"
	"github.com/gogpu/layerforge/layer"
)

var (
	red   = color.NRGBA{R: 255, A: 255}
	green = color.NRGBA{G: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
)

// strip returns a w x 1 image with one color per pixel.
func strip(cs ...color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, len(cs), 1))
	for x, c := range cs {
		img.SetNRGBA(x, 0, c)
	}
	return img
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func placed(img image.Image, x, y float64) *layer.Layer {
	l := layer.New(img)
	l.X, l.Y = x, y
	return l
}

func rgbaAt(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

func opaqueRGBA(c color.NRGBA) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

func TestRenderStretchesIntoFrame(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, red)
	src.SetNRGBA(1, 0, green)
	src.SetNRGBA(0, 1, blue)
	src.SetNRGBA(1, 1, white)

	l := placed(src, 1, 1)
	l.Width, l.Height = 4, 4

	c := New(WithInterpolator(draw.NearestNeighbor))
	img, err := c.Render([]*layer.Layer{l}, geom.R(0, 0, 6, 6))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{1, 1, opaqueRGBA(red)},
		{2, 2, opaqueRGBA(red)},
		{3, 1, opaqueRGBA(green)},
		{4, 2, opaqueRGBA(green)},
		{1, 4, opaqueRGBA(blue)},
		{4, 4, opaqueRGBA(white)},
		{0, 0, color.RGBA{}},
		{5, 5, color.RGBA{}},
		{0, 3, color.RGBA{}},
	}
	for _, tt := range tests {
		if got := rgbaAt(img, tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRenderTargetOrigin(t *testing.T) {
	l := placed(solid(2, 2, red), 10, 20)
	img, err := New().Render([]*layer.Layer{l}, geom.R(9, 19, 4, 4))
	if err != nil {
		t.Fatal(err)
	}
	if got := rgbaAt(img, 1, 1); got != opaqueRGBA(red) {
		t.Errorf("(1,1) = %v, want red", got)
	}
	if got := rgbaAt(img, 0, 0); got.A != 0 {
		t.Errorf("(0,0) = %v, want transparent", got)
	}
	if got := rgbaAt(img, 3, 3); got.A != 0 {
		t.Errorf("(3,3) = %v, want transparent", got)
	}
}

func TestRenderFullTurnMatchesUnrotated(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for i := range src.Pix {
		src.Pix[i] = byte(i*37 + 11)
	}
	for i := 3; i < len(src.Pix); i += 4 {
		src.Pix[i] = 255
	}
	base := placed(src, 2, 1)
	turned := base.Clone()
	turned.Rotation = 360

	c := New()
	area := geom.R(0, 0, 8, 6)
	a, err := c.Render([]*layer.Layer{base}, area)
	if err != nil {
		t.Fatal(err)
	}
	b, err := c.Render([]*layer.Layer{turned}, area)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("rotation 360 differs from rotation 0")
	}
}

func TestRenderQuarterTurnClockwise(t *testing.T) {
	// Left half red, right half blue.
	src := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 {
				src.SetNRGBA(x, y, red)
			} else {
				src.SetNRGBA(x, y, blue)
			}
		}
	}
	l := placed(src, 0, 0)
	l.Rotation = 90

	box := l.Bounds()
	if box != geom.R(1, -1, 2, 4) {
		t.Fatalf("bounds = %+v", box)
	}
	img, err := New(WithInterpolator(draw.NearestNeighbor)).Render([]*layer.Layer{l}, box)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []image.Point{{0, 0}, {1, 1}} {
		if got := rgbaAt(img, p.X, p.Y); got != opaqueRGBA(red) {
			t.Errorf("%v = %v, want red on top", p, got)
		}
	}
	for _, p := range []image.Point{{0, 3}, {1, 2}} {
		if got := rgbaAt(img, p.X, p.Y); got != opaqueRGBA(blue) {
			t.Errorf("%v = %v, want blue at the bottom", p, got)
		}
	}
}

func TestRenderFlip(t *testing.T) {
	tests := []struct {
		name         string
		flipH, flipV bool
		want         []color.NRGBA
	}{
		{"none", false, false, []color.NRGBA{red, blue}},
		{"horizontal", true, false, []color.NRGBA{blue, red}},
		{"vertical", false, true, []color.NRGBA{red, blue}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := placed(strip(red, blue), 0, 0)
			l.FlipH, l.FlipV = tt.flipH, tt.flipV
			img, err := New(WithInterpolator(draw.NearestNeighbor)).Render([]*layer.Layer{l}, geom.R(0, 0, 2, 1))
			if err != nil {
				t.Fatal(err)
			}
			for x, c := range tt.want {
				if got := rgbaAt(img, x, 0); got != opaqueRGBA(c) {
					t.Errorf("x=%d: got %v, want %v", x, got, c)
				}
			}
		})
	}
}

func TestRenderCropStaysPinned(t *testing.T) {
	a := color.NRGBA{R: 10, A: 255}
	b := color.NRGBA{R: 20, A: 255}
	c := color.NRGBA{R: 30, A: 255}
	d := color.NRGBA{R: 40, A: 255}
	l := placed(strip(a, b, c, d), 0, 0)
	l.CropBounds = &geom.Rect{X: 1, Y: 0, Width: 2, Height: 1}

	img, err := New().Render([]*layer.Layer{l}, geom.R(0, 0, 4, 1))
	if err != nil {
		t.Fatal(err)
	}
	want := []color.RGBA{{}, opaqueRGBA(b), opaqueRGBA(c), {}}
	for x, w := range want {
		if got := rgbaAt(img, x, 0); got != w {
			t.Errorf("x=%d: got %v, want %v", x, got, w)
		}
	}
}

func TestRenderCropScalesWithFrame(t *testing.T) {
	l := placed(strip(red, green, blue, white), 0, 0)
	l.CropBounds = &geom.Rect{X: 2, Y: 0, Width: 2, Height: 1}
	l.Width, l.Height = 8, 2

	img, err := New(WithInterpolator(draw.NearestNeighbor)).Render([]*layer.Layer{l}, geom.R(0, 0, 8, 2))
	if err != nil {
		t.Fatal(err)
	}
	for x := 0; x < 4; x++ {
		if got := rgbaAt(img, x, 1); got.A != 0 {
			t.Errorf("x=%d: got %v, want transparent left of the crop", x, got)
		}
	}
	for x, w := range map[int]color.NRGBA{4: blue, 5: blue, 6: white, 7: white} {
		if got := rgbaAt(img, x, 0); got != opaqueRGBA(w) {
			t.Errorf("x=%d: got %v, want %v", x, got, w)
		}
	}
}

func TestRenderPaintsByZIndex(t *testing.T) {
	bottom := placed(solid(1, 1, red), 0, 0)
	top := placed(solid(1, 1, blue), 0, 0)
	bottom.ZIndex, top.ZIndex = 0, 1

	img, err := New().Render([]*layer.Layer{top, bottom}, geom.R(0, 0, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got := rgbaAt(img, 0, 0); got != opaqueRGBA(blue) {
		t.Errorf("got %v, want blue on top", got)
	}

	top.Visible = false
	img, _ = New().Render([]*layer.Layer{top, bottom}, geom.R(0, 0, 1, 1))
	if got := rgbaAt(img, 0, 0); got != opaqueRGBA(red) {
		t.Errorf("hidden top: got %v, want red", got)
	}
}

func TestRenderOpacity(t *testing.T) {
	l := placed(solid(1, 1, red), 0, 0)
	l.Opacity = 0.5
	img, err := New().Render([]*layer.Layer{l}, geom.R(0, 0, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := rgbaAt(img, 0, 0), (color.RGBA{R: 128, A: 128}); got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRenderBlendModes(t *testing.T) {
	gray := color.NRGBA{R: 128, G: 128, B: 128, A: 255}
	light := color.NRGBA{R: 200, G: 100, B: 30, A: 255}
	for _, mode := range layer.BlendModes() {
		t.Run(mode.String(), func(t *testing.T) {
			bottom := placed(solid(1, 1, gray), 0, 0)
			top := placed(solid(1, 1, light), 0, 0)
			top.ZIndex = 1
			top.BlendMode = mode
			img, err := New().Render([]*layer.Layer{bottom, top}, geom.R(0, 0, 1, 1))
			if err != nil {
				t.Fatal(err)
			}
			r, g, b, a := Operator(mode)(light.R, light.G, light.B, 255, gray.R, gray.G, gray.B, 255)
			want := color.RGBA{R: r, G: g, B: b, A: a}
			if got := rgbaAt(img, 0, 0); got != want {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestOperatorTable(t *testing.T) {
	for _, mode := range layer.BlendModes() {
		if Operator(mode) == nil {
			t.Errorf("%v has no operator", mode)
		}
	}
	r, _, _, _ := Operator(layer.BlendMode(200))(255, 0, 0, 255, 0, 0, 0, 0)
	if r != 255 {
		t.Error("unknown mode should composite as normal")
	}
	if r, _, _, _ := Operator(layer.Multiply)(128, 128, 128, 255, 128, 128, 128, 255); r != 64 {
		t.Errorf("multiply red = %d, want 64", r)
	}
}

func TestRenderFeather(t *testing.T) {
	l := placed(solid(9, 9, red), 0, 0)
	l.BlendArea = 100

	c := New()
	img, err := c.Render([]*layer.Layer{l}, geom.R(0, 0, 9, 9))
	if err != nil {
		t.Fatal(err)
	}
	if edge := rgbaAt(img, 0, 4); edge.A != 0 {
		t.Errorf("edge alpha = %d, want 0", edge.A)
	}
	center := rgbaAt(img, 4, 4)
	inner := rgbaAt(img, 2, 4)
	if !(center.A > inner.A && inner.A > 0) {
		t.Errorf("alpha not increasing toward the center: inner %d, center %d", inner.A, center.A)
	}
	if c.Feather().Len() != 1 {
		t.Errorf("cached masks = %d, want 1", c.Feather().Len())
	}
	if _, err := c.Render([]*layer.Layer{l}, geom.R(0, 0, 9, 9)); err != nil {
		t.Fatal(err)
	}
	if c.Feather().Len() != 1 {
		t.Errorf("cached masks after rerender = %d, want 1", c.Feather().Len())
	}
	if n := c.Invalidate(l.ImageID); n != 1 {
		t.Errorf("Invalidate removed %d, want 1", n)
	}
}

func TestRenderErrors(t *testing.T) {
	for _, area := range []geom.Rect{{}, geom.R(0, 0, -5, 10), geom.R(0, 0, 1<<20, 1<<20)} {
		if _, err := New().Render(nil, area); !errors.Is(err, layerforge.ErrRender) {
			t.Errorf("Render(%+v) error = %v, want ErrRender", area, err)
		}
	}
}

func TestFlattenAllEmpty(t *testing.T) {
	img, err := New().FlattenAll(nil, geom.R(0, 0, 3, 2))
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("bounds = %v", img.Bounds())
	}
	for _, v := range img.Pix {
		if v != 0 {
			t.Fatal("empty composite should be transparent")
		}
	}
}

type alphaSource struct{ m *image.Alpha }

func (s alphaSource) MaskForOutputArea() *image.Alpha { return s.m }

func TestFlattenWithMask(t *testing.T) {
	l := placed(solid(4, 1, red), 0, 0)
	m := image.NewAlpha(image.Rect(0, 0, 4, 1))
	m.Pix[0] = 255
	m.Pix[1] = 128

	img, err := New().FlattenWithMask([]*layer.Layer{l}, geom.R(0, 0, 4, 1), alphaSource{m})
	if err != nil {
		t.Fatal(err)
	}
	wantA := []uint8{0, 127, 255, 255}
	for x, w := range wantA {
		if got := rgbaAt(img, x, 0).A; got != w {
			t.Errorf("x=%d alpha = %d, want %d", x, got, w)
		}
	}
	if _, err := New().FlattenWithMask([]*layer.Layer{l}, geom.R(0, 0, 4, 1), alphaSource{}); err != nil {
		t.Errorf("nil mask: %v", err)
	}
}

func TestFlattenSelection(t *testing.T) {
	c := New()
	img, box, err := c.FlattenSelection(nil)
	if img != nil || err != nil || box != (geom.Rect{}) {
		t.Errorf("empty selection = %v, %v, %v; want nil", img, box, err)
	}

	flat := placed(solid(2, 2, red), 5, 5)
	flat.Width = 0
	if img, _, err := c.FlattenSelection([]*layer.Layer{flat}); img != nil || err != nil {
		t.Errorf("zero area selection = %v, %v; want nil", img, err)
	}

	a := placed(solid(2, 2, red), 10, 10)
	b := placed(solid(2, 2, blue), 14, 11)
	img, box, err = c.FlattenSelection([]*layer.Layer{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if box != geom.R(10, 10, 6, 3) {
		t.Errorf("box = %+v", box)
	}
	if img.Bounds() != image.Rect(0, 0, 6, 3) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got := rgbaAt(img, 0, 0); got != opaqueRGBA(red) {
		t.Errorf("(0,0) = %v, want red", got)
	}
	if got := rgbaAt(img, 5, 2); got != opaqueRGBA(blue) {
		t.Errorf("(5,2) = %v, want blue", got)
	}
}

func TestExportMask(t *testing.T) {
	l := placed(solid(2, 2, red), 0, 0)
	painted := image.NewAlpha(image.Rect(0, 0, 4, 2))
	painted.Pix[0] = 255 // on the layer
	painted.Pix[3] = 100 // off the layer, already masked
	painted.Pix[5] = 100 // on the layer, partially

	out, err := New().ExportMask([]*layer.Layer{l}, geom.R(0, 0, 4, 2), alphaSource{painted})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 255 || out.Pix[i+1] != 255 || out.Pix[i+2] != 255 {
			t.Fatalf("pixel %d is not white: %v", i/4, out.Pix[i:i+4])
		}
	}
	tests := []struct {
		x, y int
		want uint8
	}{
		{0, 0, 255},
		{1, 0, 0},
		{1, 1, 100},
		{2, 0, 255},
		{3, 0, 255},
		{3, 1, 255},
	}
	for _, tt := range tests {
		if got := out.NRGBAAt(tt.x, tt.y).A; got != tt.want {
			t.Errorf("(%d,%d) alpha = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestExportMaskNoLayers(t *testing.T) {
	out, err := New().ExportMask(nil, geom.R(0, 0, 2, 2), nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 3; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 255 {
			t.Fatal("uncovered area should be fully masked")
		}
	}
}

func TestEncodePNG(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, solid(3, 2, red)); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 3, 2) {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestScreen(t *testing.T) {
	tests := []struct{ a, b, want byte }{
		{0, 0, 0},
		{255, 0, 255},
		{0, 200, 200},
		{255, 255, 255},
		{128, 128, 192},
	}
	for _, tt := range tests {
		if got := screen(tt.a, tt.b); got != tt.want {
			t.Errorf("screen(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
