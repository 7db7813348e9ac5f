package models

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/taigrr/raster/pkg/math3d"
)

// ErrSyntax is returned for a malformed line in a mesh text file.
var ErrSyntax = errors.New("syntax error")

// LoadMesh reads a mesh text file from disk.
func LoadMesh(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mesh: %w", err)
	}
	defer f.Close()

	return ParseMesh(filepath.Base(path), f)
}

// ParseMesh reads the line-oriented mesh format:
//
//	v x y z          vertex
//	v x y z r g b    vertex with an sRGB colour in [0, 1]
//	f i j k          face
//
// Face indices are 1-based, as in OBJ files; negative indices count back
// from the most recent vertex. "i/t/n" forms use the position index, and
// faces with more than three corners are split into a triangle fan. Blank
// lines, comments and any other directive are ignored.
//
// Either every vertex has a colour or none does; a mesh without colours is
// drawn in DefaultColor.
func ParseMesh(name string, r io.Reader) (*Mesh, error) {
	var (
		vertices []math3d.Vec3
		colors   []colorful.Color
		faces    []Face
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			vals, err := parseFloats(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			switch len(vals) {
			case 3:
			case 6:
				for _, c := range vals[3:] {
					if !(c >= 0 && c <= 1) {
						return nil, fmt.Errorf("line %d: colour value %v outside [0, 1]: %w", lineNo, c, ErrSyntax)
					}
				}
				colors = append(colors, colorful.Color{R: vals[3], G: vals[4], B: vals[5]})
			default:
				return nil, fmt.Errorf("line %d: vertex has %d values, want 3 or 6: %w", lineNo, len(vals), ErrSyntax)
			}
			vertices = append(vertices, math3d.V3(vals[0], vals[1], vals[2]))

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face has %d indices, want at least 3: %w", lineNo, len(fields)-1, ErrSyntax)
			}
			idx := make([]int, 0, len(fields)-1)
			for _, field := range fields[1:] {
				i, err := parseIndex(field, len(vertices))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				idx = append(idx, i)
			}
			for k := 1; k+1 < len(idx); k++ {
				faces = append(faces, Face{V: [3]int{idx[0], idx[k], idx[k+1]}})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mesh: %w", err)
	}

	mesh, err := NewMesh(name, vertices, faces, colors)
	if err != nil {
		return nil, fmt.Errorf("build mesh %q: %w", name, err)
	}
	return mesh, nil
}

func parseFloats(fields []string) ([]float64, error) {
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", f, ErrSyntax)
		}
		vals[i] = v
	}
	return vals, nil
}

// parseIndex converts a 1-based (or negative, relative) file index into a
// 0-based mesh index.
func parseIndex(field string, vertexCount int) (int, error) {
	pos, _, _ := strings.Cut(field, "/")
	n, err := strconv.Atoi(pos)
	if err != nil {
		return 0, fmt.Errorf("bad index %q: %w", field, ErrSyntax)
	}
	switch {
	case n > 0:
		return n - 1, nil
	case n < 0:
		return vertexCount + n, nil
	default:
		return 0, fmt.Errorf("index 0 (indices start at 1): %w", ErrOutOfRange)
	}
}
