// Package mesh implements the terrain mesh pipeline stages: building a
// triangulated surface from an elevation grid, extruding it into a closed
// printable solid, and scaling it to a physical footprint.
package mesh

import (
	"errors"
	"fmt"

	"github.com/Faultbox/terratile/pkg/geom"
)

// Mesh errors.
var (
	ErrEmptyMesh  = errors.New("empty mesh")
	ErrFaceIndex  = errors.New("face index out of range")
	ErrDegenerate = errors.New("degenerate geometry")
)

// Mesh is an indexed triangle mesh. Faces wind counter-clockwise when viewed
// from outside the surface, so a flat terrain tile has +z top normals.
//
// Perimeter is the ordered chain of boundary vertex indices, counter-clockwise
// viewed from +z. It is tagged by the builder and remapped (never recomputed)
// by the fallback simplifier, so base extrusion does not depend on the mesh
// still being a regular grid. GridWidth is the row stride of a grid-indexed
// mesh; it is zero once an operation destroys grid regularity.
type Mesh struct {
	Vertices  []geom.Vec3
	Faces     [][3]int
	Perimeter []int
	GridWidth int
}

// Validate checks that every face and perimeter index is in range.
func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 {
		return ErrEmptyMesh
	}
	for fi, f := range m.Faces {
		for _, idx := range f {
			if idx < 0 || idx >= len(m.Vertices) {
				return fmt.Errorf("%w: face %d references vertex %d of %d", ErrFaceIndex, fi, idx, len(m.Vertices))
			}
		}
	}
	for _, idx := range m.Perimeter {
		if idx < 0 || idx >= len(m.Vertices) {
			return fmt.Errorf("%w: perimeter references vertex %d of %d", ErrFaceIndex, idx, len(m.Vertices))
		}
	}
	return nil
}

// FaceNormal returns the unit normal of face fi, or the zero vector for a
// degenerate (collinear) face.
func (m *Mesh) FaceNormal(fi int) geom.Vec3 {
	f := m.Faces[fi]
	v0 := m.Vertices[f[0]]
	v1 := m.Vertices[f[1]]
	v2 := m.Vertices[f[2]]
	return v1.Sub(v0).Cross(v2.Sub(v0)).Normalize()
}

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min, Max geom.Vec3
}

// Bounds returns the axis-aligned bounding box over all vertices.
// The zero Bounds is returned for an empty mesh.
func (m *Mesh) Bounds() Bounds {
	if len(m.Vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: m.Vertices[0], Max: m.Vertices[0]}
	for _, v := range m.Vertices[1:] {
		if v.X < b.Min.X {
			b.Min.X = v.X
		}
		if v.Y < b.Min.Y {
			b.Min.Y = v.Y
		}
		if v.Z < b.Min.Z {
			b.Min.Z = v.Z
		}
		if v.X > b.Max.X {
			b.Max.X = v.X
		}
		if v.Y > b.Max.Y {
			b.Max.Y = v.Y
		}
		if v.Z > b.Max.Z {
			b.Max.Z = v.Z
		}
	}
	return b
}
