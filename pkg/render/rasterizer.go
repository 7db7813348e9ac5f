package render

import (
	"iter"
	"log/slog"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/raster/pkg/math3d"
	"github.com/taigrr/raster/pkg/models"
	"github.com/taigrr/raster/pkg/palette"
)

// Surface is a character grid a Camera draws on. Rows and columns passed to
// Draw are always inside the camera's grid.
type Surface interface {
	Clear()
	Draw(row, col, index int)
	Present() error
}

// FaceSource yields the resolved faces of a mesh. *models.Mesh implements
// it.
type FaceSource interface {
	Faces() iter.Seq[models.FaceView]
}

// RenderStats counts what happened during the last render.
type RenderStats struct {
	Faces        int // faces visited
	BehindCamera int // faces skipped because a vertex had depth <= 0
	Degenerate   int // faces skipped because they project to zero area
	Pixels       int // pixels drawn (including ones later overdrawn)
}

// Stats returns the statistics of the last render.
func (c *Camera) Stats() RenderStats {
	return c.stats
}

// Render draws one frame of mesh onto s: it clears the surface and the
// z-buffer, scan-converts every face, then presents. The only error is the
// one returned by s.Present.
func (c *Camera) Render(mesh FaceSource, s Surface) error {
	s.Clear()
	c.clearDepth()
	c.stats = RenderStats{}

	for face := range mesh.Faces() {
		c.stats.Faces++
		c.drawFace(face, s)
	}

	Logger().Debug("frame rendered",
		slog.Int("faces", c.stats.Faces),
		slog.Int("behind_camera", c.stats.BehindCamera),
		slog.Int("degenerate", c.stats.Degenerate),
		slog.Int("pixels", c.stats.Pixels),
	)
	return s.Present()
}

// shadedVertex holds what the scan loop needs per corner.
type shadedVertex struct {
	px   math3d.Vec2    // pixel position
	invZ float64        // 1 / camera-space depth
	lin  colorful.Color // linear colour divided by depth
}

func (c *Camera) drawFace(face models.FaceView, s Surface) {
	var v [3]shadedVertex
	for i, p := range face.Vertices {
		cam := c.worldToCam.Apply(p)
		img, err := c.Project(cam)
		if err != nil {
			// No clipping: the whole face goes.
			c.stats.BehindCamera++
			return
		}
		v[i].px = c.ImagePlaneToPixel(img)
		v[i].invZ = 1 / cam.Z
		lin := palette.SRGBToLinear(face.Colors[i])
		v[i].lin = colorful.Color{R: lin.R * v[i].invZ, G: lin.G * v[i].invZ, B: lin.B * v[i].invZ}
	}

	area := edgeFunction(v[0].px, v[1].px, v[2].px)
	if area == 0 || math.IsNaN(area) {
		c.stats.Degenerate++
		return
	}

	minRow, maxRow, minCol, maxCol, ok := boundingBox(v[0].px, v[1].px, v[2].px, c.intr.Height, c.intr.Width)
	if !ok {
		return
	}

	flatIndex := c.palette.Index(face.Color())

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			q := math3d.V2(float64(col), float64(row))
			b, inside := barycentric(q, v[0].px, v[1].px, v[2].px, area)
			if !inside {
				continue
			}

			z := 1 / (b[0]*v[0].invZ + b[1]*v[1].invZ + b[2]*v[2].invZ)

			if c.depthTest {
				i := row*c.intr.Width + col
				if c.zbuffer[i] < z {
					continue
				}
				c.zbuffer[i] = z
			}

			index := flatIndex
			if c.shading == Interpolated {
				lin := colorful.Color{
					R: z * (b[0]*v[0].lin.R + b[1]*v[1].lin.R + b[2]*v[2].lin.R),
					G: z * (b[0]*v[0].lin.G + b[1]*v[1].lin.G + b[2]*v[2].lin.G),
					B: z * (b[0]*v[0].lin.B + b[1]*v[1].lin.B + b[2]*v[2].lin.B),
				}
				index = c.palette.Index(palette.LinearToSRGB(lin))
			}

			s.Draw(row, col, index)
			c.stats.Pixels++
		}
	}
}

// edgeFunction returns twice the signed area of the triangle (a, b, p). It
// is zero when p is on the line through a and b.
func edgeFunction(p, a, b math3d.Vec2) float64 {
	return (p.X-a.X)*(b.Y-a.Y) - (p.Y-a.Y)*(b.X-a.X)
}

// barycentric returns the weights of q with respect to p1, p2, p3 and
// whether q is inside or on the triangle. area must be
// edgeFunction(p1, p2, p3) and non-zero. Both windings are accepted and
// edge pixels count as inside.
func barycentric(q, p1, p2, p3 math3d.Vec2, area float64) ([3]float64, bool) {
	e12 := edgeFunction(q, p1, p2)
	e23 := edgeFunction(q, p2, p3)
	e31 := edgeFunction(q, p3, p1)

	if !(e12 >= 0 && e23 >= 0 && e31 >= 0) && !(e12 <= 0 && e23 <= 0 && e31 <= 0) {
		return [3]float64{}, false
	}
	return [3]float64{
		math.Abs(e23 / area),
		math.Abs(e31 / area),
		math.Abs(e12 / area),
	}, true
}

// boundingBox returns the inclusive pixel rectangle covering the triangle,
// clipped to a rows x cols grid. ok is false when nothing is left.
func boundingBox(p1, p2, p3 math3d.Vec2, rows, cols int) (minRow, maxRow, minCol, maxCol int, ok bool) {
	lo := math.Max(math.Ceil(min(p1.Y, p2.Y, p3.Y)), 0)
	hi := math.Min(math.Floor(max(p1.Y, p2.Y, p3.Y)), float64(rows-1))
	left := math.Max(math.Ceil(min(p1.X, p2.X, p3.X)), 0)
	right := math.Min(math.Floor(max(p1.X, p2.X, p3.X)), float64(cols-1))

	// Written so NaN coordinates also end up here.
	if !(lo <= hi) || !(left <= right) {
		return 0, 0, 0, 0, false
	}
	return int(lo), int(hi), int(left), int(right), true
}
