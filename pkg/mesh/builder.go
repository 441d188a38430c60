package mesh

import (
	"github.com/Faultbox/terratile/pkg/formats"
	"github.com/Faultbox/terratile/pkg/geom"
)

// BuildFromGrid triangulates an elevation grid into a dense surface mesh.
//
// The surface spans a size x size footprint in model units, centered on the
// origin. Elevations are normalized against the grid's declared bounds and
// stretched by verticalExaggeration; the elevation range is clamped to at
// least 1 so a flat grid cannot produce a zero or negative scale.
//
// The result is grid-indexed: vertex (i, j) sits at index j*Width+i, each
// interior quad contributes two triangles with a fixed diagonal, and the
// perimeter chain walks the outer ring counter-clockwise viewed from +z.
func BuildFromGrid(g *formats.ElevationGrid, verticalExaggeration, size float64) (*Mesh, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	w, h := g.Width, g.Height
	elevRange := g.Range()
	if elevRange < 1 {
		elevRange = 1
	}
	scale := (3 / elevRange) * verticalExaggeration
	half := size / 2

	vertices := make([]geom.Vec3, 0, w*h)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			vertices = append(vertices, geom.Vec3{
				X: (float64(i)/float64(w-1))*size - half,
				Y: (float64(j)/float64(h-1))*size - half,
				Z: (g.At(i, j) - g.MinElevation) * scale,
			})
		}
	}

	faces := make([][3]int, 0, 2*(w-1)*(h-1))
	for j := 0; j < h-1; j++ {
		for i := 0; i < w-1; i++ {
			v0 := j*w + i
			v1 := v0 + 1
			v2 := (j+1)*w + i
			v3 := v2 + 1
			faces = append(faces, [3]int{v0, v1, v2}, [3]int{v1, v3, v2})
		}
	}

	return &Mesh{
		Vertices:  vertices,
		Faces:     faces,
		Perimeter: gridPerimeter(w, h),
		GridWidth: w,
	}, nil
}

// gridPerimeter returns the boundary ring of a w x h grid in counter-clockwise
// order viewed from +z: south row east-bound, east column north-bound, north
// row west-bound, west column south-bound.
func gridPerimeter(w, h int) []int {
	chain := make([]int, 0, 2*(w-1)+2*(h-1))
	for i := 0; i < w; i++ {
		chain = append(chain, i)
	}
	for j := 1; j < h; j++ {
		chain = append(chain, j*w+w-1)
	}
	for i := w - 2; i >= 0; i-- {
		chain = append(chain, (h-1)*w+i)
	}
	for j := h - 2; j >= 1; j-- {
		chain = append(chain, j*w)
	}
	return chain
}
