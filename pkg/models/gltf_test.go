package models

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/qmuntal/gltf"
	"github.com/taigrr/raster/pkg/math3d"
)

func TestLoadGLBInvalidPath(t *testing.T) {
	_, err := LoadGLB("/nonexistent/path.glb")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}
}

func TestGLTFLoaderCreation(t *testing.T) {
	loader := NewGLTFLoader()
	if loader == nil {
		t.Fatal("NewGLTFLoader returned nil")
	}
	if loader.Color != DefaultColor {
		t.Errorf("Color = %v, want %v", loader.Color, DefaultColor)
	}
}

// triangleDoc builds a single-triangle document. Positions are float VEC3,
// indices unsigned shorts, and COLOR_0 (if withColor) normalized ubyte VEC4.
func triangleDoc(withColor bool) *gltf.Document {
	var data []byte
	for _, f := range []float32{0, 0, 1, 1, 0, 1, 0, 1, 1} {
		data = binary.LittleEndian.AppendUint32(data, math.Float32bits(f))
	}
	for _, i := range []uint16{0, 2, 1} {
		data = binary.LittleEndian.AppendUint16(data, i)
	}
	data = append(data, 0, 0) // pad to 4 bytes
	colorOffset := len(data)
	data = append(data,
		255, 0, 0, 255,
		0, 255, 0, 255,
		0, 0, 255, 255,
	)

	doc := &gltf.Document{
		Buffers: []*gltf.Buffer{{ByteLength: len(data), Data: data}},
		BufferViews: []*gltf.BufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: 36},
			{Buffer: 0, ByteOffset: 36, ByteLength: 6},
			{Buffer: 0, ByteOffset: colorOffset, ByteLength: 12},
		},
		Accessors: []*gltf.Accessor{
			{BufferView: gltf.Index(0), ComponentType: gltf.ComponentFloat, Count: 3, Type: gltf.AccessorVec3},
			{BufferView: gltf.Index(1), ComponentType: gltf.ComponentUshort, Count: 3, Type: gltf.AccessorScalar},
			{BufferView: gltf.Index(2), ComponentType: gltf.ComponentUbyte, Normalized: true, Count: 3, Type: gltf.AccessorVec4},
		},
		Materials: []*gltf.Material{{
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{BaseColorFactor: &[4]float64{0, 0, 1, 1}},
		}},
	}

	attrs := map[string]int{gltf.POSITION: 0}
	if withColor {
		attrs[attrColor0] = 2
	}
	doc.Meshes = []*gltf.Mesh{{
		Name: "tri",
		Primitives: []*gltf.Primitive{{
			Attributes: attrs,
			Indices:    gltf.Index(1),
			Material:   gltf.Index(0),
			Mode:       gltf.PrimitiveTriangles,
		}},
	}}
	return doc
}

func TestFromDocumentVertexColors(t *testing.T) {
	mesh, err := NewGLTFLoader().FromDocument("tri", triangleDoc(true))
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if mesh.VertexCount() != 3 || mesh.TriangleCount() != 1 {
		t.Fatalf("got %d vertices, %d faces, want 3, 1", mesh.VertexCount(), mesh.TriangleCount())
	}
	if got, want := mesh.FaceIndices(0), (Face{V: [3]int{0, 2, 1}}); got != want {
		t.Errorf("FaceIndices(0) = %v, want %v", got, want)
	}
	if !mesh.HasVertexColors() {
		t.Fatal("expected vertex colours")
	}

	face := mesh.Face(0)
	if !face.Vertices[1].ApproxEqual(math3d.V3(0, 1, 1), 1e-9) {
		t.Errorf("vertex 1 of face = %v, want (0, 1, 1)", face.Vertices[1])
	}
	want := []colorful.Color{{R: 1}, {B: 1}, {G: 1}}
	for i, c := range face.Colors {
		if !c.AlmostEqualRgb(want[i]) {
			t.Errorf("Colors[%d] = %v, want %v", i, c, want[i])
		}
	}
}

func TestFromDocumentMaterialColor(t *testing.T) {
	mesh, err := NewGLTFLoader().FromDocument("tri", triangleDoc(false))
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	for i, c := range mesh.Face(0).Colors {
		if !c.AlmostEqualRgb(colorful.Color{B: 1}) {
			t.Errorf("Colors[%d] = %v, want blue", i, c)
		}
	}
}

func TestFromDocumentDefaultColor(t *testing.T) {
	doc := triangleDoc(false)
	doc.Meshes[0].Primitives[0].Material = nil

	loader := &GLTFLoader{Color: colorful.Color{R: 1, G: 1}}
	mesh, err := loader.FromDocument("tri", doc)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if got := mesh.Face(0).Color(); got != loader.Color {
		t.Errorf("Color() = %v, want %v", got, loader.Color)
	}
}

func TestFromDocumentBadIndex(t *testing.T) {
	doc := triangleDoc(true)
	// Point the index accessor past the three vertices.
	binary.LittleEndian.PutUint16(doc.Buffers[0].Data[36:], 3)

	_, err := NewGLTFLoader().FromDocument("tri", doc)
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("err = %v, want ErrOutOfRange", err)
	}
}

func TestFromDocumentTruncatedBuffer(t *testing.T) {
	doc := triangleDoc(false)
	doc.Accessors[0].Count = 100

	_, err := NewGLTFLoader().FromDocument("tri", doc)
	if !errors.Is(err, ErrOutOfRange) {
		t.Errorf("err = %v, want ErrOutOfRange", err)
	}
}

func TestFromDocumentEmpty(t *testing.T) {
	mesh, err := NewGLTFLoader().FromDocument("empty", &gltf.Document{})
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	if mesh.TriangleCount() != 0 {
		t.Errorf("TriangleCount() = %d, want 0", mesh.TriangleCount())
	}
}
