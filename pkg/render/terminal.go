package render

import (
	"image/color"
	"log/slog"

	"github.com/charmbracelet/colorprofile"
	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/raster/pkg/palette"
)

// DefaultGlyph fills a cell with its background colour.
const DefaultGlyph = " "

// halfBlock shows the top pixel as foreground and the bottom as background.
const halfBlock = "▀"

// lowerHalfBlock shows a lone bottom pixel, leaving the top half in the
// terminal background.
const lowerHalfBlock = "▄"

// shadeRamp stands in for colours on terminals without colour support,
// darkest first.
var shadeRamp = []string{" ", ".", ":", "-", "=", "+", "*", "#", "%", "@"}

// CellScreen is the part of a uv.Screen the terminal surface writes to.
type CellScreen interface {
	SetCell(x, y int, c *uv.Cell)
}

// TerminalOption configures a TerminalSurface.
type TerminalOption func(*TerminalSurface)

// WithGlyph sets the character drawn in every cell. With a space the cell
// colour is the background, otherwise the foreground.
func WithGlyph(g string) TerminalOption {
	return func(t *TerminalSurface) {
		if g != "" {
			t.glyph = g
		}
	}
}

// WithHalfBlock packs two pixel rows into each terminal row using the
// upper half block, doubling vertical resolution.
func WithHalfBlock(enabled bool) TerminalOption {
	return func(t *TerminalSurface) {
		t.halfBlock = enabled
	}
}

// WithProfile sets the terminal colour profile the palette is converted to.
// The default is TrueColor.
func WithProfile(p colorprofile.Profile) TerminalOption {
	return func(t *TerminalSurface) {
		t.profile = p
	}
}

// WithFlush sets the function Present calls once cells are written, usually
// the terminal's Display method.
func WithFlush(flush func() error) TerminalOption {
	return func(t *TerminalSurface) {
		t.flush = flush
	}
}

// TerminalSurface is a Surface drawing into a rectangle of terminal cells.
// The palette is converted to the terminal's colour profile once, when the
// surface is created.
type TerminalSurface struct {
	scr  CellScreen
	area uv.Rectangle

	glyph     string
	halfBlock bool
	profile   colorprofile.Profile
	flush     func() error

	colors []color.Color // display colour per palette index, nil if none
	shades []string      // glyph per palette index when colours are unavailable

	// pixels buffers half-block frames until Present pairs up the rows.
	pixels []int
}

// NewTerminalSurface creates a surface covering area of scr.
func NewTerminalSurface(scr CellScreen, area uv.Rectangle, pal palette.Palette, opts ...TerminalOption) *TerminalSurface {
	t := &TerminalSurface{
		scr:     scr,
		area:    area,
		glyph:   DefaultGlyph,
		profile: colorprofile.TrueColor,
	}
	for _, opt := range opts {
		opt(t)
	}

	t.buildTable(pal)
	if t.halfBlock {
		rows, cols := t.Size()
		t.pixels = make([]int, rows*cols)
	}

	Logger().Info("terminal surface",
		slog.Int("cols", area.Dx()),
		slog.Int("rows", area.Dy()),
		slog.Any("profile", t.profile),
		slog.Bool("half_block", t.halfBlock),
	)
	return t
}

func (t *TerminalSurface) buildTable(pal palette.Palette) {
	table := pal.Table()
	t.colors = make([]color.Color, len(table))
	t.shades = make([]string, len(table))
	for i, c := range table {
		t.colors[i] = t.profile.Convert(c)

		l, _, _ := pal.Color(i).Lab()
		step := int(l * float64(len(shadeRamp)))
		t.shades[i] = shadeRamp[min(max(step, 0), len(shadeRamp)-1)]
	}
}

// Size returns the pixel grid the surface displays, which is the size a
// camera drawing on it should have.
func (t *TerminalSurface) Size() (rows, cols int) {
	rows = t.area.Dy()
	if t.halfBlock {
		rows *= 2
	}
	return rows, t.area.Dx()
}

// Clear blanks the area.
func (t *TerminalSurface) Clear() {
	if t.halfBlock {
		for i := range t.pixels {
			t.pixels[i] = Empty
		}
		return
	}
	for y := t.area.Min.Y; y < t.area.Max.Y; y++ {
		for x := t.area.Min.X; x < t.area.Max.X; x++ {
			t.scr.SetCell(x, y, &uv.Cell{Content: " ", Width: 1})
		}
	}
}

// Draw paints one pixel.
func (t *TerminalSurface) Draw(row, col, index int) {
	rows, cols := t.Size()
	if row < 0 || row >= rows || col < 0 || col >= cols {
		return
	}
	if t.halfBlock {
		t.pixels[row*cols+col] = index
		return
	}
	t.scr.SetCell(t.area.Min.X+col, t.area.Min.Y+row, t.cell(index))
}

// cell builds a full-cell glyph for a palette index.
func (t *TerminalSurface) cell(index int) *uv.Cell {
	c := t.color(index)
	if c == nil {
		return &uv.Cell{Content: t.shade(index), Width: 1}
	}
	if t.glyph == DefaultGlyph {
		return &uv.Cell{Content: t.glyph, Width: 1, Style: uv.Style{Bg: c}}
	}
	return &uv.Cell{Content: t.glyph, Width: 1, Style: uv.Style{Fg: c}}
}

func (t *TerminalSurface) color(index int) color.Color {
	if index < 0 || index >= len(t.colors) {
		return nil
	}
	return t.colors[index]
}

func (t *TerminalSurface) shade(index int) string {
	if index < 0 || index >= len(t.shades) {
		return " "
	}
	return t.shades[index]
}

// Present writes buffered half-block rows, then flushes.
func (t *TerminalSurface) Present() error {
	if t.halfBlock {
		t.drawHalfBlocks()
	}
	if t.flush != nil {
		return t.flush()
	}
	return nil
}

// drawHalfBlocks converts pixel row pairs to cells.
// Each terminal row represents 2 pixel rows: ▀ with fg=top and bg=bottom.
func (t *TerminalSurface) drawHalfBlocks() {
	_, cols := t.Size()
	for row := 0; row < t.area.Dy(); row++ {
		top := t.pixels[2*row*cols:]
		bot := t.pixels[(2*row+1)*cols:]
		for col := range cols {
			x, y := t.area.Min.X+col, t.area.Min.Y+row
			topColor, botColor := t.color(top[col]), t.color(bot[col])

			switch {
			case top[col] == Empty && bot[col] == Empty:
				t.scr.SetCell(x, y, &uv.Cell{Content: " ", Width: 1})
			case topColor == nil && botColor == nil:
				// No colour support: show whichever pixel is set.
				idx := top[col]
				if idx == Empty {
					idx = bot[col]
				}
				t.scr.SetCell(x, y, &uv.Cell{Content: t.shade(idx), Width: 1})
			case top[col] == Empty:
				t.scr.SetCell(x, y, &uv.Cell{
					Content: lowerHalfBlock,
					Width:   1,
					Style:   uv.Style{Fg: botColor},
				})
			default:
				t.scr.SetCell(x, y, &uv.Cell{
					Content: halfBlock,
					Width:   1,
					Style:   uv.Style{Fg: topColor, Bg: botColor},
				})
			}
		}
	}
}
