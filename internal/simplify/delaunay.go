package simplify

import (
	"math"
	"sort"

	"github.com/Faultbox/terratile/pkg/geom"
)

// triangulate computes the 2D Delaunay triangulation of the points projected
// onto the XY plane (z is carried by the caller, not used here), using the
// incremental Bowyer-Watson construction. Output faces are counter-clockwise
// in XY and sorted for deterministic order; exactly-collinear triangles are
// dropped.
func triangulate(points []geom.Vec3) [][3]int {
	n := len(points)
	if n < 3 {
		return nil
	}

	pts := make([]geom.Vec3, n, n+3)
	copy(pts, points)
	pts = append(pts, superTriangle(points)...)

	type tri [3]int
	tris := []tri{{n, n + 1, n + 2}}

	for p := 0; p < n; p++ {
		// Triangles whose circumcircle contains the new point are invalid.
		var kept []tri
		edges := make(map[[2]int][2]int)
		for _, t := range tris {
			if inCircumcircle(pts, t[0], t[1], t[2], pts[p]) {
				for i := 0; i < 3; i++ {
					e := [2]int{t[i], t[(i+1)%3]}
					key := e
					if key[0] > key[1] {
						key[0], key[1] = key[1], key[0]
					}
					if _, dup := edges[key]; dup {
						delete(edges, key)
					} else {
						edges[key] = e
					}
				}
			} else {
				kept = append(kept, t)
			}
		}

		// Re-triangulate the polygonal hole against the new point. Edges
		// shared by two invalid triangles are interior to the hole and were
		// dropped above. A hole edge collinear with the new point would
		// produce a zero-area sliver; the two neighboring hole edges cover
		// that region, so it is skipped.
		tris = kept
		for _, e := range edges {
			if orient2d(pts[e[0]], pts[e[1]], pts[p]) == 0 {
				continue
			}
			tris = append(tris, tri{e[0], e[1], p})
		}
	}

	out := make([][3]int, 0, len(tris))
	for _, t := range tris {
		if t[0] >= n || t[1] >= n || t[2] >= n {
			continue // touches the super-triangle
		}
		area := orient2d(pts[t[0]], pts[t[1]], pts[t[2]])
		switch {
		case area > 0:
			out = append(out, [3]int{t[0], t[1], t[2]})
		case area < 0:
			out = append(out, [3]int{t[0], t[2], t[1]})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		if out[i][1] != out[j][1] {
			return out[i][1] < out[j][1]
		}
		return out[i][2] < out[j][2]
	})
	return out
}

// superTriangle returns three vertices enclosing every input point with a
// wide margin.
func superTriangle(points []geom.Vec3) []geom.Vec3 {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	delta := math.Max(maxX-minX, maxY-minY)
	if delta == 0 {
		delta = 1
	}
	midX := (minX + maxX) / 2
	midY := (minY + maxY) / 2

	return []geom.Vec3{
		{X: midX - 20*delta, Y: midY - delta},
		{X: midX + 20*delta, Y: midY - delta},
		{X: midX, Y: midY + 20*delta},
	}
}

// Relative error bounds for the sign filters below, after Shewchuk's
// floating-point predicates. A determinant whose magnitude falls inside the
// bound scaled by the term magnitudes cannot be trusted and is treated as an
// exact tie.
const (
	incircleErrBound = 1.2e-14
	orientErrBound   = 4e-16
)

// inCircumcircle reports whether p lies inside or on the circumcircle of
// triangle (a, b, c) in the XY plane. On-circle points count as inside:
// grid inputs are co-circular almost everywhere, and the insertion cavity
// stays consistent only when every tied triangle is carved out together.
// Collinear triangles have no bounded circumcircle and report true.
func inCircumcircle(pts []geom.Vec3, a, b, c int, p geom.Vec3) bool {
	adx, ady := pts[a].X-p.X, pts[a].Y-p.Y
	bdx, bdy := pts[b].X-p.X, pts[b].Y-p.Y
	cdx, cdy := pts[c].X-p.X, pts[c].Y-p.Y

	ad := adx*adx + ady*ady
	bd := bdx*bdx + bdy*bdy
	cd := cdx*cdx + cdy*cdy

	det := ad*(bdx*cdy-cdx*bdy) + bd*(cdx*ady-adx*cdy) + cd*(adx*bdy-bdx*ady)
	perm := ad*(math.Abs(bdx*cdy)+math.Abs(cdx*bdy)) +
		bd*(math.Abs(cdx*ady)+math.Abs(adx*cdy)) +
		cd*(math.Abs(adx*bdy)+math.Abs(bdx*ady))

	orient := orient2d(pts[a], pts[b], pts[c])
	if orient == 0 {
		return true
	}
	if orient < 0 {
		det = -det
	}
	return det >= -incircleErrBound*perm
}

// orient2d returns twice the signed XY area of triangle (a, b, c); positive
// means counter-clockwise viewed from +z. Values inside the rounding-error
// band collapse to exactly zero, so callers can compare against 0 to detect
// collinearity.
func orient2d(a, b, c geom.Vec3) float64 {
	l := (b.X - a.X) * (c.Y - a.Y)
	r := (c.X - a.X) * (b.Y - a.Y)
	det := l - r
	if math.Abs(det) <= orientErrBound*(math.Abs(l)+math.Abs(r)) {
		return 0
	}
	return det
}
