package simplify

import (
	"fmt"
	"math"
	"sort"

	"github.com/Faultbox/terratile/pkg/geom"
	"github.com/Faultbox/terratile/pkg/mesh"
)

// Strategy identifies which simplification path produced a result.
type Strategy string

// Strategies.
const (
	StrategyExternal    Strategy = "external"
	StrategyFallback    Strategy = "fallback"
	StrategyPassthrough Strategy = "passthrough"
)

// Simplify reduces the mesh toward the configured target face count.
//
// With HighQuality set and a Decimator wired in, the external decimator runs.
// If the decimator is absent or fails, Simplify falls back to the internal
// importance-sampling strategy and returns the fallback result together with
// an error satisfying errors.Is(err, ErrDecimatorUnavailable) — the caller
// decides whether that deserves a warning, the pipeline keeps going.
func Simplify(m *mesh.Mesh, cfg Config) (*mesh.Mesh, Strategy, error) {
	target := cfg.TargetFaces
	if target <= 0 {
		target = len(m.Faces) / 10
		if target < 1000 {
			target = 1000
		}
	}

	if cfg.HighQuality && cfg.Decimator != nil {
		verts, faces, err := cfg.Decimator.Decimate(m.Vertices, m.Faces, DecimateOptions{
			TargetFaces:      target,
			QualityThreshold: cfg.QualityThreshold,
			PreserveBoundary: cfg.PreserveBoundary,
			PreserveNormal:   cfg.PreserveNormal,
			PreserveTopology: cfg.PreserveTopology,
		})
		if err == nil {
			// The decimator gives no index mapping, so the perimeter chain
			// and grid regularity are gone; extrusion will reconstruct.
			return &mesh.Mesh{Vertices: verts, Faces: faces}, StrategyExternal, nil
		}
		out, strat, ferr := fallback(m, target)
		if ferr != nil {
			return nil, strat, ferr
		}
		return out, strat, fmt.Errorf("%w: %v", ErrDecimatorUnavailable, err)
	}

	out, strat, err := fallback(m, target)
	if err != nil {
		return nil, strat, err
	}
	if cfg.HighQuality {
		return out, strat, ErrDecimatorUnavailable
	}
	return out, strat, nil
}

// fallback implements the importance-sampling strategy: rank interior grid
// vertices by the absolute discrete Laplacian of their elevation, always keep
// the full boundary ring so the tile outline stays exact, keep the most
// important interior vertices up to the budget, and retriangulate the kept
// points with a 2D Delaunay pass.
func fallback(m *mesh.Mesh, target int) (*mesh.Mesh, Strategy, error) {
	n := len(m.Vertices)
	if target >= n {
		return m, StrategyPassthrough, nil
	}

	width := m.GridWidth
	if width <= 0 {
		width = int(math.Round(math.Sqrt(float64(n))))
	}
	if width < 2 || n%width != 0 {
		return nil, StrategyFallback, fmt.Errorf("%w: %d vertices do not form a grid of width %d",
			mesh.ErrDegenerate, n, width)
	}
	height := n / width

	boundary := make([]bool, n)
	chain := m.Perimeter
	if len(chain) < 3 {
		chain = nil
		for j := 0; j < height; j++ {
			for i := 0; i < width; i++ {
				if i == 0 || j == 0 || i == width-1 || j == height-1 {
					chain = append(chain, j*width+i)
				}
			}
		}
	}
	for _, idx := range chain {
		boundary[idx] = true
	}

	importance := vertexImportance(m.Vertices, width, height)

	var interior []int
	for idx := 0; idx < n; idx++ {
		if !boundary[idx] {
			interior = append(interior, idx)
		}
	}

	// Interior budget is what remains after the mandatory boundary ring;
	// ties keep natural index order.
	budget := target - (n - len(interior))
	if budget < 0 {
		budget = 0
	}
	if budget > len(interior) {
		budget = len(interior)
	}
	sort.SliceStable(interior, func(a, b int) bool {
		return importance[interior[a]] > importance[interior[b]]
	})

	keep := make([]bool, n)
	for idx, b := range boundary {
		keep[idx] = b
	}
	for _, idx := range interior[:budget] {
		keep[idx] = true
	}

	oldToNew := make([]int, n)
	var vertices []geom.Vec3
	for idx := 0; idx < n; idx++ {
		if keep[idx] {
			oldToNew[idx] = len(vertices)
			vertices = append(vertices, m.Vertices[idx])
		} else {
			oldToNew[idx] = -1
		}
	}

	faces := triangulate(vertices)

	perimeter := make([]int, 0, len(m.Perimeter))
	for _, idx := range m.Perimeter {
		perimeter = append(perimeter, oldToNew[idx])
	}

	return &mesh.Mesh{
		Vertices:  vertices,
		Faces:     faces,
		Perimeter: perimeter,
	}, StrategyFallback, nil
}

// vertexImportance scores every interior grid vertex by the absolute discrete
// Laplacian |z - mean(z of 4-neighbors)|. Boundary vertices score zero.
func vertexImportance(vertices []geom.Vec3, width, height int) []float64 {
	importance := make([]float64, len(vertices))
	for j := 1; j < height-1; j++ {
		for i := 1; i < width-1; i++ {
			idx := j*width + i
			avg := (vertices[idx-1].Z + vertices[idx+1].Z +
				vertices[idx-width].Z + vertices[idx+width].Z) / 4
			importance[idx] = math.Abs(vertices[idx].Z - avg)
		}
	}
	return importance
}
