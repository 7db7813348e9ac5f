package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/taigrr/raster/pkg/palette"
	"golang.org/x/image/draw"
)

// Empty marks a framebuffer cell nothing was drawn into.
const Empty = -1

// Framebuffer is an in-memory Surface holding one palette index per cell.
// It backs headless snapshots and makes rendered frames easy to inspect.
type Framebuffer struct {
	Width  int   // Width in cells
	Height int   // Height in cells
	Cells  []int // Row-major palette indices, Empty where nothing was drawn

	// Frames counts calls to Present.
	Frames int
}

// NewFramebuffer creates an empty framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		Cells:  make([]int, width*height),
	}
	fb.Clear()
	return fb
}

// Clear marks every cell Empty.
func (fb *Framebuffer) Clear() {
	for i := range fb.Cells {
		fb.Cells[i] = Empty
	}
}

// Draw sets the cell at (row, col). Out of bounds writes are ignored.
func (fb *Framebuffer) Draw(row, col, index int) {
	if col < 0 || col >= fb.Width || row < 0 || row >= fb.Height {
		return
	}
	fb.Cells[row*fb.Width+col] = index
}

// Present finishes a frame.
func (fb *Framebuffer) Present() error {
	fb.Frames++
	return nil
}

// At returns the palette index at (row, col), or Empty if out of bounds.
func (fb *Framebuffer) At(row, col int) int {
	if col < 0 || col >= fb.Width || row < 0 || row >= fb.Height {
		return Empty
	}
	return fb.Cells[row*fb.Width+col]
}

// Count returns how many cells hold index.
func (fb *Framebuffer) Count(index int) int {
	n := 0
	for _, c := range fb.Cells {
		if c == index {
			n++
		}
	}
	return n
}

// ToImage resolves the framebuffer through p into an image. Empty cells are
// filled with background.
func (fb *Framebuffer) ToImage(p palette.Palette, background color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	table := p.Table()
	for row := range fb.Height {
		for col := range fb.Width {
			c := background
			if idx := fb.Cells[row*fb.Width+col]; idx >= 0 && idx < len(table) {
				c = table[idx]
			}
			img.Set(col, row, c)
		}
	}
	return img
}

// Upscale enlarges img by an integer factor with nearest-neighbour
// sampling, so every cell becomes a sharp factor x factor block. Factors
// below 2 return img unchanged.
func Upscale(img *image.RGBA, factor int) *image.RGBA {
	if factor < 2 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// SavePNG writes the framebuffer as a PNG file, each cell scale pixels wide.
func (fb *Framebuffer) SavePNG(path string, p palette.Palette, background color.Color, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}

	if err := png.Encode(f, Upscale(fb.ToImage(p, background), scale)); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return f.Close()
}
