package scene

import (
	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/raster/pkg/math3d"
	"github.com/taigrr/raster/pkg/models"
)

// Pyramid returns the default mesh: a square pyramid with its apex on +z,
// each face in its own colour.
func Pyramid() *models.Mesh {
	vertices := []math3d.Vec3{
		math3d.V3(0, 0, 0.8),
		math3d.V3(0.5, 0, -0.4),
		math3d.V3(0, 0.5, -0.4),
		math3d.V3(-0.5, 0, -0.4),
		math3d.V3(0, -0.5, -0.4),
	}
	faces := []models.Face{
		{V: [3]int{0, 1, 2}},
		{V: [3]int{0, 2, 3}},
		{V: [3]int{0, 3, 4}},
		{V: [3]int{0, 4, 1}},
		{V: [3]int{1, 3, 2}},
		{V: [3]int{1, 4, 3}},
	}
	colors := []colorful.Color{
		{R: 1},       // red
		{G: 1},       // green
		{R: 1, G: 1}, // yellow
		{B: 1},       // blue
		{R: 1, B: 1}, // magenta
		{G: 1, B: 1}, // cyan
	}

	mesh, err := models.NewFlatMesh("pyramid", vertices, faces, colors)
	if err != nil {
		panic(err)
	}
	return mesh
}
