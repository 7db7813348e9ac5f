// Package models provides the indexed triangle mesh the renderer draws, and
// loaders that build one from text or glTF files.
package models

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/raster/pkg/math3d"
)

// ErrOutOfRange is returned when a face references a vertex that does not
// exist, or when a colour slice does not line up with what it colours.
var ErrOutOfRange = errors.New("out of range")

// DefaultColor is used for meshes built without any colour information.
var DefaultColor = colorful.Color{R: 0.8, G: 0.8, B: 0.8}

// Face is a triangle stored as three indices into the mesh's vertices.
// Winding order carries no meaning.
type Face struct {
	V [3]int
}

// FaceView is a resolved face: world-space positions and sRGB colours of
// its three corners. Views are produced on demand and never stored.
type FaceView struct {
	Vertices [3]math3d.Vec3
	Colors   [3]colorful.Color
}

// Color returns the single colour used when the face is drawn flat. Faces of
// flat-coloured meshes have three identical colours; for vertex-coloured
// meshes the corners are averaged in linear light.
func (f FaceView) Color() colorful.Color {
	if f.Colors[0] == f.Colors[1] && f.Colors[1] == f.Colors[2] {
		return f.Colors[0]
	}
	var r, g, b float64
	for _, c := range f.Colors {
		lr, lg, lb := c.LinearRgb()
		r += lr
		g += lg
		b += lb
	}
	return colorful.LinearRgb(r/3, g/3, b/3)
}

// Mesh owns vertex positions, their colours (per vertex or per face) and the
// face index list. Once built, only rigid whole-mesh transforms change it.
type Mesh struct {
	Name string

	vertices     []math3d.Vec3
	vertexColors []colorful.Color // one per vertex, or nil
	faces        []Face
	faceColors   []colorful.Color // one per face, or nil

	// Bounding box, kept current by every mutator.
	boundsMin math3d.Vec3
	boundsMax math3d.Vec3
}

// NewMesh builds a mesh coloured per vertex. colors may be nil, in which case
// every vertex gets DefaultColor; otherwise it must have one entry per vertex.
func NewMesh(name string, vertices []math3d.Vec3, faces []Face, colors []colorful.Color) (*Mesh, error) {
	if colors != nil && len(colors) != len(vertices) {
		return nil, fmt.Errorf("%d vertex colours for %d vertices: %w", len(colors), len(vertices), ErrOutOfRange)
	}
	if err := checkFaces(faces, len(vertices)); err != nil {
		return nil, err
	}
	m := &Mesh{
		Name:         name,
		vertices:     slices.Clone(vertices),
		vertexColors: slices.Clone(colors),
		faces:        slices.Clone(faces),
	}
	m.calculateBounds()
	return m, nil
}

// NewFlatMesh builds a mesh with one colour per face.
func NewFlatMesh(name string, vertices []math3d.Vec3, faces []Face, colors []colorful.Color) (*Mesh, error) {
	if len(colors) != len(faces) {
		return nil, fmt.Errorf("%d face colours for %d faces: %w", len(colors), len(faces), ErrOutOfRange)
	}
	if err := checkFaces(faces, len(vertices)); err != nil {
		return nil, err
	}
	m := &Mesh{
		Name:       name,
		vertices:   slices.Clone(vertices),
		faces:      slices.Clone(faces),
		faceColors: slices.Clone(colors),
	}
	m.calculateBounds()
	return m, nil
}

func checkFaces(faces []Face, vertexCount int) error {
	for i, f := range faces {
		for _, idx := range f.V {
			if idx < 0 || idx >= vertexCount {
				return fmt.Errorf("face %d: vertex index %d with %d vertices: %w", i, idx, vertexCount, ErrOutOfRange)
			}
		}
	}
	return nil
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.vertices)
}

// TriangleCount returns the number of faces.
func (m *Mesh) TriangleCount() int {
	return len(m.faces)
}

// Vertex returns the position of vertex i.
func (m *Mesh) Vertex(i int) math3d.Vec3 {
	return m.vertices[i]
}

// FaceIndices returns the index record of face i.
func (m *Mesh) FaceIndices(i int) Face {
	return m.faces[i]
}

// HasVertexColors reports whether colours are stored per vertex.
func (m *Mesh) HasVertexColors() bool {
	return m.vertexColors != nil
}

// Face resolves face i.
func (m *Mesh) Face(i int) FaceView {
	f := m.faces[i]
	var view FaceView
	for k, idx := range f.V {
		view.Vertices[k] = m.vertices[idx]
		switch {
		case m.faceColors != nil:
			view.Colors[k] = m.faceColors[i]
		case m.vertexColors != nil:
			view.Colors[k] = m.vertexColors[idx]
		default:
			view.Colors[k] = DefaultColor
		}
	}
	return view
}

// Faces returns a sequence of resolved faces in storage order. The sequence
// only reads the mesh, so it can be ranged over any number of times.
func (m *Mesh) Faces() iter.Seq[FaceView] {
	return func(yield func(FaceView) bool) {
		for i := range m.faces {
			if !yield(m.Face(i)) {
				return
			}
		}
	}
}

// Transform applies a rigid transform to every vertex in place. Faces and
// colours are untouched.
func (m *Mesh) Transform(t math3d.Rigid) {
	for i := range m.vertices {
		m.vertices[i] = t.Apply(m.vertices[i])
	}
	m.calculateBounds()
}

// Fit centres the mesh on the origin and scales it uniformly so its largest
// dimension equals size. It is meant for load time; per-frame motion goes
// through Transform.
func (m *Mesh) Fit(size float64) {
	center := m.Center()
	dims := m.Size()
	maxDim := max(dims.X, dims.Y, dims.Z)
	scale := 1.0
	if maxDim > 0 {
		scale = size / maxDim
	}
	for i := range m.vertices {
		m.vertices[i] = m.vertices[i].Sub(center).Scale(scale)
	}
	m.calculateBounds()
}

// calculateBounds computes the axis-aligned bounding box.
func (m *Mesh) calculateBounds() {
	if len(m.vertices) == 0 {
		m.boundsMin, m.boundsMax = math3d.Zero3(), math3d.Zero3()
		return
	}

	m.boundsMin = m.vertices[0]
	m.boundsMax = m.vertices[0]

	for _, v := range m.vertices[1:] {
		m.boundsMin = m.boundsMin.Min(v)
		m.boundsMax = m.boundsMax.Max(v)
	}
}

// Bounds returns the axis-aligned bounding box.
func (m *Mesh) Bounds() (lo, hi math3d.Vec3) {
	return m.boundsMin, m.boundsMax
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.boundsMin.Add(m.boundsMax).Scale(0.5)
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.boundsMax.Sub(m.boundsMin)
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	return &Mesh{
		Name:         m.Name,
		vertices:     slices.Clone(m.vertices),
		vertexColors: slices.Clone(m.vertexColors),
		faces:        slices.Clone(m.faces),
		faceColors:   slices.Clone(m.faceColors),
		boundsMin:    m.boundsMin,
		boundsMax:    m.boundsMax,
	}
}
