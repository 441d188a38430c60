package mesh

import (
	"fmt"
)

// ScaleToTile scales the mesh in place so its XY footprint spans targetSize
// physical units, then re-centers: XY centered on the origin and the lowest
// point at z = 0 so the base sits flush with the print bed.
//
// The scale is uniform, taken from the joint extent of all x and y
// coordinates. A zero extent means the input is degenerate and is reported as
// ErrDegenerate before any division happens.
func ScaleToTile(m *Mesh, targetSize float64) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if targetSize <= 0 {
		return fmt.Errorf("%w: target tile size %v, must be positive", ErrDegenerate, targetSize)
	}

	lo := m.Vertices[0].X
	hi := m.Vertices[0].X
	for _, v := range m.Vertices {
		if v.X < lo {
			lo = v.X
		}
		if v.X > hi {
			hi = v.X
		}
		if v.Y < lo {
			lo = v.Y
		}
		if v.Y > hi {
			hi = v.Y
		}
	}
	extent := hi - lo
	if extent <= 0 {
		return fmt.Errorf("%w: XY extent is zero, cannot scale to %v", ErrDegenerate, targetSize)
	}

	scale := targetSize / extent
	for i := range m.Vertices {
		m.Vertices[i] = m.Vertices[i].Scale(scale)
	}

	b := m.Bounds()
	cx := (b.Min.X + b.Max.X) / 2
	cy := (b.Min.Y + b.Max.Y) / 2
	for i := range m.Vertices {
		m.Vertices[i].X -= cx
		m.Vertices[i].Y -= cy
		m.Vertices[i].Z -= b.Min.Z
	}
	return nil
}
