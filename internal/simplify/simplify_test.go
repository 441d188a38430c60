package simplify

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/Faultbox/terratile/pkg/formats"
	"github.com/Faultbox/terratile/pkg/geom"
	"github.com/Faultbox/terratile/pkg/mesh"
)

func buildGrid(t *testing.T, w, h int, elevations []float64, minElev, maxElev float64) *mesh.Mesh {
	t.Helper()
	g := &formats.ElevationGrid{
		Width:        w,
		Height:       h,
		Elevations:   elevations,
		MinElevation: minElev,
		MaxElevation: maxElev,
	}
	m, err := mesh.BuildFromGrid(g, 1, 10)
	if err != nil {
		t.Fatalf("BuildFromGrid failed: %v", err)
	}
	return m
}

func buildFlatGrid(t *testing.T, w, h int) *mesh.Mesh {
	t.Helper()
	return buildGrid(t, w, h, make([]float64, w*h), 0, 1)
}

func TestSimplify_PassthroughBelowTarget(t *testing.T) {
	m := buildFlatGrid(t, 3, 3)

	out, strat, err := Simplify(m, Config{TargetFaces: 1000})
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if strat != StrategyPassthrough {
		t.Errorf("strategy = %q, want %q", strat, StrategyPassthrough)
	}
	if len(out.Vertices) != 9 || len(out.Faces) != 8 {
		t.Errorf("passthrough changed mesh: %d vertices, %d faces", len(out.Vertices), len(out.Faces))
	}
}

func TestSimplify_BoundaryAlwaysRetained(t *testing.T) {
	m := buildFlatGrid(t, 6, 6)
	boundaryPoints := make(map[geom.Vec3]bool)
	for _, idx := range m.Perimeter {
		boundaryPoints[m.Vertices[idx]] = true
	}

	out, strat, err := Simplify(m, Config{TargetFaces: 25})
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if strat != StrategyFallback {
		t.Errorf("strategy = %q, want %q", strat, StrategyFallback)
	}

	got := make(map[geom.Vec3]bool)
	for _, v := range out.Vertices {
		got[v] = true
	}
	for p := range boundaryPoints {
		if !got[p] {
			t.Errorf("boundary vertex %v dropped by simplification", p)
		}
	}
}

func TestSimplify_TargetBelowBoundaryCount(t *testing.T) {
	m := buildFlatGrid(t, 6, 6)

	out, _, err := Simplify(m, Config{TargetFaces: 4})
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	// 6x6 grid has a 20-vertex boundary ring; interior budget clamps to zero.
	if len(out.Vertices) != 20 {
		t.Errorf("expected boundary-only 20 vertices, got %d", len(out.Vertices))
	}
}

func TestSimplify_KeepsMostImportantInterior(t *testing.T) {
	elevations := make([]float64, 36)
	elevations[2*6+2] = 100 // single spike at interior cell (2,2)
	m := buildGrid(t, 6, 6, elevations, 0, 100)

	// Budget for exactly one interior vertex beyond the 20-vertex ring.
	out, _, err := Simplify(m, Config{TargetFaces: 21})
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if len(out.Vertices) != 21 {
		t.Fatalf("expected 21 vertices, got %d", len(out.Vertices))
	}

	spikeZ := m.Vertices[2*6+2].Z
	found := false
	for _, v := range out.Vertices {
		if math.Abs(v.Z-spikeZ) < 1e-12 && v.Z > 0 {
			found = true
		}
	}
	if !found {
		t.Error("spike vertex was not retained as most important interior point")
	}
}

func TestSimplify_PerimeterChainSurvives(t *testing.T) {
	m := buildFlatGrid(t, 8, 8)

	out, _, err := Simplify(m, Config{TargetFaces: 30})
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if len(out.Perimeter) != len(m.Perimeter) {
		t.Fatalf("perimeter length %d, want %d", len(out.Perimeter), len(m.Perimeter))
	}
	if err := out.Validate(); err != nil {
		t.Errorf("simplified mesh failed validation: %v", err)
	}
	for i, idx := range out.Perimeter {
		orig := m.Vertices[m.Perimeter[i]]
		if out.Vertices[idx] != orig {
			t.Errorf("perimeter[%d] remapped to wrong vertex: %v vs %v", i, out.Vertices[idx], orig)
		}
	}
}

func TestSimplify_FacesWindCounterClockwise(t *testing.T) {
	elevations := make([]float64, 64)
	for i := range elevations {
		elevations[i] = float64((i * 7) % 13)
	}
	m := buildGrid(t, 8, 8, elevations, 0, 13)

	out, _, err := Simplify(m, Config{TargetFaces: 40})
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	for fi, f := range out.Faces {
		a, b, c := out.Vertices[f[0]], out.Vertices[f[1]], out.Vertices[f[2]]
		if orient2d(a, b, c) <= 0 {
			t.Errorf("face %d is not counter-clockwise in XY", fi)
		}
	}
}

// stubDecimator satisfies Decimator for testing the selection predicate.
type stubDecimator struct {
	verts []geom.Vec3
	faces [][3]int
	err   error
	calls int
}

func (d *stubDecimator) Decimate(v []geom.Vec3, f [][3]int, opts DecimateOptions) ([]geom.Vec3, [][3]int, error) {
	d.calls++
	if d.err != nil {
		return nil, nil, d.err
	}
	return d.verts, d.faces, nil
}

func TestSimplify_ExternalDecimator(t *testing.T) {
	m := buildFlatGrid(t, 4, 4)
	dec := &stubDecimator{
		verts: m.Vertices[:4],
		faces: [][3]int{{0, 1, 2}, {1, 3, 2}},
	}

	out, strat, err := Simplify(m, Config{TargetFaces: 2, HighQuality: true, Decimator: dec})
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if strat != StrategyExternal {
		t.Errorf("strategy = %q, want %q", strat, StrategyExternal)
	}
	if dec.calls != 1 {
		t.Errorf("decimator called %d times, want 1", dec.calls)
	}
	if len(out.Faces) != 2 {
		t.Errorf("expected decimator output, got %d faces", len(out.Faces))
	}
	if len(out.Perimeter) != 0 {
		t.Error("external path should not fabricate a perimeter chain")
	}
}

func TestSimplify_DecimatorFailureFallsBack(t *testing.T) {
	m := buildFlatGrid(t, 6, 6)
	dec := &stubDecimator{err: fmt.Errorf("import failed")}

	out, strat, err := Simplify(m, Config{TargetFaces: 25, HighQuality: true, Decimator: dec})
	if !errors.Is(err, ErrDecimatorUnavailable) {
		t.Errorf("expected ErrDecimatorUnavailable, got %v", err)
	}
	if strat != StrategyFallback {
		t.Errorf("strategy = %q, want %q", strat, StrategyFallback)
	}
	if out == nil || len(out.Vertices) == 0 {
		t.Fatal("fallback result missing despite recoverable error")
	}
}

func TestSimplify_NoDecimatorHighQuality(t *testing.T) {
	m := buildFlatGrid(t, 6, 6)

	out, _, err := Simplify(m, Config{TargetFaces: 25, HighQuality: true})
	if !errors.Is(err, ErrDecimatorUnavailable) {
		t.Errorf("expected ErrDecimatorUnavailable signal, got %v", err)
	}
	if out == nil {
		t.Fatal("expected usable fallback mesh")
	}
}

func TestSimplify_LowQualityNoSignal(t *testing.T) {
	m := buildFlatGrid(t, 6, 6)

	_, _, err := Simplify(m, Config{TargetFaces: 25, HighQuality: false})
	if err != nil {
		t.Errorf("low-quality path should not signal, got %v", err)
	}
}

func TestTriangulate_Square(t *testing.T) {
	points := []geom.Vec3{
		{X: 0, Y: 0},
		{X: 1, Y: 0},
		{X: 0, Y: 1},
		{X: 1, Y: 1},
	}
	faces := triangulate(points)
	if len(faces) != 2 {
		t.Fatalf("expected 2 triangles for a square, got %d", len(faces))
	}
	for fi, f := range faces {
		if orient2d(points[f[0]], points[f[1]], points[f[2]]) <= 0 {
			t.Errorf("triangle %d not counter-clockwise", fi)
		}
	}
}

func TestTriangulate_SquareWithCenter(t *testing.T) {
	points := []geom.Vec3{
		{X: -1, Y: -1},
		{X: 1, Y: -1},
		{X: 1, Y: 1},
		{X: -1, Y: 1},
		{X: 0, Y: 0},
	}
	faces := triangulate(points)
	if len(faces) != 4 {
		t.Fatalf("expected 4 triangles, got %d", len(faces))
	}
}

// auditDirectedEdges fails the test if any directed edge is shared by two
// faces, and returns the edge usage map for further checks.
func auditDirectedEdges(t *testing.T, faces [][3]int) map[[2]int]int {
	t.Helper()
	directed := make(map[[2]int]int)
	for _, f := range faces {
		for i := 0; i < 3; i++ {
			directed[[2]int{f[i], f[(i+1)%3]}]++
		}
	}
	for e, c := range directed {
		if c > 1 {
			t.Fatalf("directed edge %v used by %d faces", e, c)
		}
	}
	return directed
}

func TestTriangulate_GridManifold(t *testing.T) {
	// Every cell of a regular grid has four co-circular corners, the worst
	// case for the in-circle decision.
	const w, h = 8, 8
	points := make([]geom.Vec3, 0, w*h)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			points = append(points, geom.Vec3{
				X: float64(i)/(w-1)*10 - 5,
				Y: float64(j)/(h-1)*10 - 5,
			})
		}
	}
	faces := triangulate(points)

	// A triangulation using all n points with b of them on the hull has
	// exactly 2n - 2 - b faces; more means overlaps, fewer means holes.
	const hullCount = 2*w + 2*h - 4
	if want := 2*w*h - 2 - hullCount; len(faces) != want {
		t.Fatalf("face count = %d, want %d", len(faces), want)
	}

	directed := auditDirectedEdges(t, faces)
	boundary := 0
	for e, c := range directed {
		if c == 1 && directed[[2]int{e[1], e[0]}] == 0 {
			boundary++
		}
	}
	if boundary != hullCount {
		t.Errorf("boundary edge count = %d, want %d", boundary, hullCount)
	}
}

func TestSimplify_FallbackManifoldTopology(t *testing.T) {
	w, h := 16, 16
	elevations := make([]float64, w*h)
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			elevations[j*w+i] = 50 + 40*math.Sin(float64(i)/3)*math.Cos(float64(j)/4)
		}
	}
	m := buildGrid(t, w, h, elevations, 10, 90)

	out, strat, err := Simplify(m, Config{TargetFaces: 100})
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if strat != StrategyFallback {
		t.Fatalf("strategy = %q, want %q", strat, StrategyFallback)
	}

	directed := auditDirectedEdges(t, out.Faces)

	// The retriangulated surface must be a manifold disk whose boundary is
	// exactly the perimeter chain, or extrusion cannot seal the solid.
	segments := make(map[[2]int]bool)
	for i, a := range out.Perimeter {
		b := out.Perimeter[(i+1)%len(out.Perimeter)]
		segments[[2]int{a, b}] = true
		if n := directed[[2]int{a, b}]; n != 1 {
			t.Errorf("perimeter segment %d->%d used by %d faces, want 1", a, b, n)
		}
		if n := directed[[2]int{b, a}]; n != 0 {
			t.Errorf("perimeter segment %d->%d has %d reversed uses", a, b, n)
		}
	}
	for e, c := range directed {
		if c == 1 && directed[[2]int{e[1], e[0]}] == 0 && !segments[e] {
			t.Errorf("boundary edge %v is not a perimeter segment", e)
		}
	}
}

func TestTriangulate_TooFewPoints(t *testing.T) {
	points := []geom.Vec3{{X: 0, Y: 0}, {X: 1, Y: 1}}
	if faces := triangulate(points); faces != nil {
		t.Errorf("expected nil for fewer than 3 points, got %v", faces)
	}
}
