package render

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/taigrr/raster/pkg/palette"
)

func TestFramebuffer(t *testing.T) {
	fb := NewFramebuffer(4, 3)
	if n := fb.Count(Empty); n != 12 {
		t.Fatalf("new framebuffer has %d empty cells, want 12", n)
	}

	fb.Draw(1, 2, 7)
	fb.Draw(-1, 0, 9)
	fb.Draw(0, 4, 9)
	fb.Draw(3, 0, 9)

	if got := fb.At(1, 2); got != 7 {
		t.Errorf("At(1, 2) = %d, want 7", got)
	}
	if got := fb.Count(9); got != 0 {
		t.Errorf("out of bounds draws landed: %d cells", got)
	}
	if got := fb.At(5, 5); got != Empty {
		t.Errorf("At(5, 5) = %d, want Empty", got)
	}

	fb.Clear()
	if got := fb.At(1, 2); got != Empty {
		t.Errorf("At(1, 2) = %d after Clear, want Empty", got)
	}
}

func TestFramebufferImage(t *testing.T) {
	pal := palette.Default()
	fb := NewFramebuffer(2, 2)
	fb.Draw(0, 0, 215) // white
	fb.Draw(1, 1, redIndex)

	bg := color.RGBA{30, 30, 40, 255}
	img := fb.ToImage(pal, bg)

	if got := img.RGBAAt(0, 0); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("pixel (0, 0) = %v, want white", got)
	}
	if got := img.RGBAAt(1, 1); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("pixel (1, 1) = %v, want red", got)
	}
	if got := img.RGBAAt(1, 0); got != bg {
		t.Errorf("empty pixel = %v, want background %v", got, bg)
	}

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := fb.SavePNG(path, pal, bg, 3); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := decoded.Bounds(); b.Dx() != 6 || b.Dy() != 6 {
		t.Errorf("decoded size = %v, want 6x6", b)
	}
	// The red cell covers the bottom-right 3x3 block.
	for _, p := range [][2]int{{3, 3}, {5, 5}, {3, 5}} {
		r, g, b, _ := decoded.At(p[0], p[1]).RGBA()
		if r>>8 != 255 || g != 0 || b != 0 {
			t.Errorf("pixel %v = (%d, %d, %d), want red", p, r>>8, g>>8, b>>8)
		}
	}
}

func TestSavePNGBadPath(t *testing.T) {
	fb := NewFramebuffer(1, 1)
	if err := fb.SavePNG(filepath.Join(t.TempDir(), "missing", "frame.png"), palette.Default(), color.Black, 1); err == nil {
		t.Error("SavePNG into a missing directory succeeded")
	}
}

func TestUpscale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.RGBA{255, 0, 0, 255})
	src.Set(1, 0, color.RGBA{0, 0, 255, 255})

	if got := Upscale(src, 1); got != src {
		t.Error("Upscale(img, 1) should return img itself")
	}

	dst := Upscale(src, 4)
	if b := dst.Bounds(); b.Dx() != 8 || b.Dy() != 4 {
		t.Fatalf("bounds = %v, want 8x4", b)
	}
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{0, 0, color.RGBA{255, 0, 0, 255}},
		{3, 3, color.RGBA{255, 0, 0, 255}},
		{4, 0, color.RGBA{0, 0, 255, 255}},
		{7, 3, color.RGBA{0, 0, 255, 255}},
	}
	for _, tt := range tests {
		if got := dst.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}
