// Package palette maps continuous colours onto the small fixed palette a
// terminal can display.
//
// Colours are colorful.Color values with channels in [0, 1]. Mesh colours
// are sRGB encoded; the rasterizer converts them to linear light for
// interpolation and back to sRGB before quantizing.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultLevels is the number of levels per channel of the default palette,
// giving 6*6*6 = 216 colours.
const DefaultLevels = 6

// ErrInvalidLevels is returned for a palette with fewer than two levels.
var ErrInvalidLevels = errors.New("palette needs at least two levels per channel")

// SRGBToLinear converts every channel of c from sRGB to linear light.
func SRGBToLinear(c colorful.Color) colorful.Color {
	r, g, b := c.LinearRgb()
	return colorful.Color{R: r, G: g, B: b}
}

// LinearToSRGB converts every channel of c from linear light to sRGB.
func LinearToSRGB(c colorful.Color) colorful.Color {
	return colorful.LinearRgb(c.R, c.G, c.B)
}

// Quantizer selects how a channel value is split into levels.
type Quantizer int

const (
	// Sqrt spaces levels on a square-root curve so more of them sit near
	// full brightness. Level k represents sqrt(k/(N-1)).
	Sqrt Quantizer = iota
	// Uniform spaces levels evenly. Level k represents k/(N-1).
	Uniform
)

func (q Quantizer) String() string {
	switch q {
	case Sqrt:
		return "sqrt"
	case Uniform:
		return "uniform"
	default:
		return fmt.Sprintf("Quantizer(%d)", int(q))
	}
}

// ParseQuantizer parses "sqrt" or "uniform".
func ParseQuantizer(s string) (Quantizer, error) {
	switch s {
	case "sqrt":
		return Sqrt, nil
	case "uniform":
		return Uniform, nil
	default:
		return 0, fmt.Errorf("unknown quantizer %q (want sqrt or uniform)", s)
	}
}

// Level maps a channel value to a level in [0, n-1]. The value is clamped
// to [0, 1] first.
func (q Quantizer) Level(v float64, n int) int {
	v = clamp01(v)
	if q == Sqrt {
		v *= v
	}
	level := int(math.Floor(v * float64(n)))
	return min(max(level, 0), n-1)
}

// Value returns the channel value that level represents.
func (q Quantizer) Value(level, n int) float64 {
	v := float64(level) / float64(n-1)
	if q == Sqrt {
		return math.Sqrt(v)
	}
	return v
}

// Palette is an N*N*N colour cube. It is a value type; build one at startup
// and hand it to both the camera and the surface.
type Palette struct {
	levels    int
	quantizer Quantizer
}

// New creates a palette with the given number of levels per channel.
func New(levels int, q Quantizer) (Palette, error) {
	if levels < 2 {
		return Palette{}, fmt.Errorf("%d levels: %w", levels, ErrInvalidLevels)
	}
	return Palette{levels: levels, quantizer: q}, nil
}

// Default returns the 6-level square-root palette.
func Default() Palette {
	return Palette{levels: DefaultLevels, quantizer: Sqrt}
}

// Levels returns the number of levels per channel.
func (p Palette) Levels() int { return p.levels }

// Quantizer returns the level spacing in use.
func (p Palette) Quantizer() Quantizer { return p.quantizer }

// Size returns the number of palette entries.
func (p Palette) Size() int { return p.levels * p.levels * p.levels }

// Index quantizes an sRGB colour to a palette index:
//
//	index = (r*N + g)*N + b
//
// where r, g and b are the per-channel levels.
func (p Palette) Index(c colorful.Color) int {
	n := p.levels
	r := p.quantizer.Level(c.R, n)
	g := p.quantizer.Level(c.G, n)
	b := p.quantizer.Level(c.B, n)
	return (r*n+g)*n + b
}

// Color returns the representative sRGB colour of index. Out of range
// indices are clamped.
func (p Palette) Color(index int) colorful.Color {
	n := p.levels
	index = min(max(index, 0), p.Size()-1)
	b := index % n
	g := (index / n) % n
	r := index / (n * n)
	return colorful.Color{
		R: p.quantizer.Value(r, n),
		G: p.quantizer.Value(g, n),
		B: p.quantizer.Value(b, n),
	}
}

// Table returns the display colour of every index, in index order.
func (p Palette) Table() []color.Color {
	table := make([]color.Color, p.Size())
	for i := range table {
		table[i] = p.Color(i).Clamped()
	}
	return table
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
