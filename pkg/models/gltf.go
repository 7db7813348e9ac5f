package models

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"path/filepath"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/qmuntal/gltf"
	"github.com/taigrr/raster/pkg/math3d"
)

// attrColor0 is the glTF vertex colour attribute.
const attrColor0 = "COLOR_0"

var errNoBufferData = errors.New("buffer has no data")

// GLTFLoader loads GLTF/GLB files into Mesh format.
type GLTFLoader struct {
	// Color is used for primitives with neither vertex colours nor a
	// material base colour.
	Color colorful.Color
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{Color: DefaultColor}
}

// LoadGLB loads a binary (.glb) or JSON (.gltf) file.
func LoadGLB(path string) (*Mesh, error) {
	return NewGLTFLoader().Load(path)
}

// MeshFromDocument builds a mesh from an already decoded document using the
// default loader options.
func MeshFromDocument(name string, doc *gltf.Document) (*Mesh, error) {
	return NewGLTFLoader().FromDocument(name, doc)
}

// Load loads a GLTF or GLB file and returns a Mesh.
func (l *GLTFLoader) Load(path string) (*Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return l.FromDocument(filepath.Base(path), doc)
}

// FromDocument merges every triangle primitive of every mesh in doc into a
// single vertex-coloured Mesh.
//
// glTF colours (COLOR_0 and baseColorFactor) are linear; they are stored
// sRGB encoded like every other mesh colour.
func (l *GLTFLoader) FromDocument(name string, doc *gltf.Document) (*Mesh, error) {
	var (
		vertices []math3d.Vec3
		colors   []colorful.Color
		faces    []Face
	)

	for _, m := range doc.Meshes {
		for pi, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
				// Skip non-triangle primitives (lines, points, strips)
				continue
			}

			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}

			positions, err := readVec3Accessor(doc, posIdx)
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: read positions: %w", m.Name, pi, err)
			}

			primColors, err := l.primitiveColors(doc, prim, len(positions))
			if err != nil {
				return nil, fmt.Errorf("mesh %q primitive %d: read colours: %w", m.Name, pi, err)
			}

			// Base vertex index for this primitive
			baseVertex := len(vertices)
			vertices = append(vertices, positions...)
			colors = append(colors, primColors...)

			if prim.Indices != nil {
				indices, err := readIndices(doc, *prim.Indices)
				if err != nil {
					return nil, fmt.Errorf("mesh %q primitive %d: read indices: %w", m.Name, pi, err)
				}
				for i := 0; i+2 < len(indices); i += 3 {
					faces = append(faces, Face{V: [3]int{
						baseVertex + indices[i],
						baseVertex + indices[i+1],
						baseVertex + indices[i+2],
					}})
				}
			} else {
				// No indices, assume sequential triangles
				for i := 0; i+2 < len(positions); i += 3 {
					faces = append(faces, Face{V: [3]int{baseVertex + i, baseVertex + i + 1, baseVertex + i + 2}})
				}
			}
		}
	}

	mesh, err := NewMesh(name, vertices, faces, colors)
	if err != nil {
		return nil, fmt.Errorf("build mesh %q: %w", name, err)
	}
	return mesh, nil
}

// primitiveColors returns one sRGB colour per vertex: COLOR_0 if present,
// else the material base colour, else the loader's colour.
func (l *GLTFLoader) primitiveColors(doc *gltf.Document, prim *gltf.Primitive, count int) ([]colorful.Color, error) {
	colors := make([]colorful.Color, count)

	if idx, ok := prim.Attributes[attrColor0]; ok {
		vals, comps, err := readAccessor(doc, idx)
		if err != nil {
			return nil, err
		}
		if comps < 3 {
			return nil, fmt.Errorf("COLOR_0 has %d components", comps)
		}
		for i := range colors {
			if (i+1)*comps > len(vals) {
				return nil, fmt.Errorf("COLOR_0 has fewer than %d entries: %w", count, ErrOutOfRange)
			}
			v := vals[i*comps:]
			colors[i] = colorful.LinearRgb(v[0], v[1], v[2]).Clamped()
		}
		return colors, nil
	}

	c := l.Color
	if prim.Material != nil && *prim.Material < len(doc.Materials) {
		mat := doc.Materials[*prim.Material]
		if mat.PBRMetallicRoughness != nil && mat.PBRMetallicRoughness.BaseColorFactor != nil {
			f := mat.PBRMetallicRoughness.BaseColorFactor
			c = colorful.LinearRgb(f[0], f[1], f[2]).Clamped()
		}
	}
	for i := range colors {
		colors[i] = c
	}
	return colors, nil
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	vals, comps, err := readAccessor(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if comps != 3 {
		return nil, fmt.Errorf("expected VEC3, got %d components", comps)
	}

	result := make([]math3d.Vec3, len(vals)/3)
	for i := range result {
		result[i] = math3d.V3(vals[i*3], vals[i*3+1], vals[i*3+2])
	}
	return result, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d: %w", accessorIdx, ErrOutOfRange)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Normalized {
		return nil, fmt.Errorf("normalized index accessor")
	}

	vals, comps, err := readAccessor(doc, accessorIdx)
	if err != nil {
		return nil, err
	}
	if comps != 1 {
		return nil, fmt.Errorf("expected SCALAR indices, got %d components", comps)
	}

	result := make([]int, len(vals))
	for i, v := range vals {
		result[i] = int(v)
	}
	return result, nil
}

// readAccessor decodes an accessor into a flat float64 slice and reports the
// number of components per element. Normalized integer data is mapped to
// [0, 1] the way glTF specifies; other integers are returned as is.
func readAccessor(doc *gltf.Document, accessorIdx int) ([]float64, int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, 0, fmt.Errorf("accessor %d: %w", accessorIdx, ErrOutOfRange)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}
	if *accessor.BufferView >= len(doc.BufferViews) {
		return nil, 0, fmt.Errorf("buffer view %d: %w", *accessor.BufferView, ErrOutOfRange)
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	if bufferView.Buffer >= len(doc.Buffers) {
		return nil, 0, fmt.Errorf("buffer %d: %w", bufferView.Buffer, ErrOutOfRange)
	}
	bufData := doc.Buffers[bufferView.Buffer].Data
	if bufData == nil {
		return nil, 0, errNoBufferData
	}

	var comps int
	switch accessor.Type {
	case gltf.AccessorScalar:
		comps = 1
	case gltf.AccessorVec2:
		comps = 2
	case gltf.AccessorVec3:
		comps = 3
	case gltf.AccessorVec4:
		comps = 4
	default:
		return nil, 0, fmt.Errorf("unsupported accessor type: %v", accessor.Type)
	}

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentByte, gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentShort, gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint, gltf.ComponentFloat:
		size = 4
	default:
		return nil, 0, fmt.Errorf("unsupported component type: %v", accessor.ComponentType)
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	stride := bufferView.ByteStride
	if stride == 0 {
		stride = comps * size
	}
	count := accessor.Count
	if count > 0 && start+(count-1)*stride+comps*size > len(bufData) {
		return nil, 0, fmt.Errorf("accessor reads past end of buffer: %w", ErrOutOfRange)
	}

	result := make([]float64, 0, count*comps)
	for i := range count {
		offset := start + i*stride
		for j := range comps {
			b := bufData[offset+j*size:]
			result = append(result, decodeComponent(b, accessor.ComponentType, accessor.Normalized))
		}
	}
	return result, comps, nil
}

// decodeComponent reads one little-endian component.
func decodeComponent(b []byte, ct gltf.ComponentType, normalized bool) float64 {
	switch ct {
	case gltf.ComponentByte:
		v := float64(int8(b[0]))
		if normalized {
			return math.Max(v/127, -1)
		}
		return v
	case gltf.ComponentUbyte:
		v := float64(b[0])
		if normalized {
			return v / 255
		}
		return v
	case gltf.ComponentShort:
		v := float64(int16(binary.LittleEndian.Uint16(b)))
		if normalized {
			return math.Max(v/32767, -1)
		}
		return v
	case gltf.ComponentUshort:
		v := float64(binary.LittleEndian.Uint16(b))
		if normalized {
			return v / 65535
		}
		return v
	case gltf.ComponentUint:
		return float64(binary.LittleEndian.Uint32(b))
	default:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
}
