package mesh

import (
	"fmt"
	"math"

	"github.com/Faultbox/terratile/pkg/geom"
)

// Extrude closes an open surface mesh into a printable solid: every surface
// vertex is duplicated at baseZ = minZ - thickness (the copy of vertex k lands
// at k+n), the top faces are mirrored onto the base with reversed winding, and
// vertical walls connect the perimeter chain to its base copy.
//
// When the mesh carries no perimeter chain the boundary is reconstructed with
// the legacy round(sqrt(n)) square-grid walk; that only holds up if the
// vertices still approximate a square grid layout.
func Extrude(m *Mesh, thickness float64) (*Mesh, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if thickness <= 0 {
		return nil, fmt.Errorf("%w: base thickness %v, must be positive", ErrDegenerate, thickness)
	}

	chain := m.Perimeter
	if len(chain) < 3 {
		side := int(math.Round(math.Sqrt(float64(len(m.Vertices)))))
		if side < 2 || side*side != len(m.Vertices) {
			return nil, fmt.Errorf("%w: no perimeter chain and %d vertices is not a square grid",
				ErrDegenerate, len(m.Vertices))
		}
		chain = gridPerimeter(side, side)
	}

	n := len(m.Vertices)
	minZ := m.Vertices[0].Z
	for _, v := range m.Vertices[1:] {
		if v.Z < minZ {
			minZ = v.Z
		}
	}
	baseZ := minZ - thickness

	vertices := make([]geom.Vec3, 0, 2*n)
	vertices = append(vertices, m.Vertices...)
	for _, v := range m.Vertices {
		vertices = append(vertices, geom.Vec3{X: v.X, Y: v.Y, Z: baseZ})
	}

	faces := make([][3]int, 0, 2*len(m.Faces)+2*len(chain))
	faces = append(faces, m.Faces...)

	// Base copy of every top face, reindexed past the surface vertices and
	// reversed so the normal points down.
	for _, f := range m.Faces {
		faces = append(faces, [3]int{f[2] + n, f[1] + n, f[0] + n})
	}

	// Side walls: two triangles per perimeter segment, including the closing
	// segment. With the chain counter-clockwise viewed from +z this winding
	// puts the wall normals outward.
	for k := range chain {
		a := chain[k]
		b := chain[(k+1)%len(chain)]
		faces = append(faces, [3]int{a, a + n, b + n}, [3]int{a, b + n, b})
	}

	// The solid is closed; it has no boundary to carry forward.
	return &Mesh{Vertices: vertices, Faces: faces}, nil
}
