package normalise

import (
	"fmt"

	"github.com/fogleman/delaunay"
)

// scatteredInterpolator evaluates piecewise-linear interpolation over the
// Delaunay triangulation of scattered samples. Evaluation is a total
// function: targets outside the convex hull report ok = false instead of
// extrapolating, and the caller turns that into NaN.
type scatteredInterpolator struct {
	tri  *delaunay.Triangulation
	vals []float64
}

// newScatteredInterpolator triangulates the sample locations. Degenerate
// inputs (all collinear, fewer than 3 distinct points) return an error; the
// caller treats that as an unstable day and emits NaN for its slice.
func newScatteredInterpolator(xs, ys, vals []float64) (*scatteredInterpolator, error) {
	if len(xs) != len(ys) || len(xs) != len(vals) {
		return nil, fmt.Errorf("normalise: sample slices disagree: %d, %d, %d", len(xs), len(ys), len(vals))
	}

	// Collapse duplicate locations, keeping the first value seen, so the
	// triangulation never receives coincident points.
	type key struct{ x, y float64 }
	seen := make(map[key]bool, len(xs))
	points := make([]delaunay.Point, 0, len(xs))
	kept := make([]float64, 0, len(vals))
	for i := range xs {
		k := key{xs[i], ys[i]}
		if seen[k] {
			continue
		}
		seen[k] = true
		points = append(points, delaunay.Point{X: xs[i], Y: ys[i]})
		kept = append(kept, vals[i])
	}

	tri, err := delaunay.Triangulate(points)
	if err != nil {
		return nil, fmt.Errorf("normalise: triangulation failed: %w", err)
	}
	if len(tri.Triangles) == 0 {
		return nil, fmt.Errorf("normalise: degenerate triangulation (%d points)", len(points))
	}
	return &scatteredInterpolator{tri: tri, vals: kept}, nil
}

// Eval interpolates at (x, y). ok is false outside the convex hull.
func (si *scatteredInterpolator) Eval(x, y float64) (float64, bool) {
	const eps = 1e-12

	tris := si.tri.Triangles
	pts := si.tri.Points
	for t := 0; t < len(tris); t += 3 {
		a, b, c := pts[tris[t]], pts[tris[t+1]], pts[tris[t+2]]

		det := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
		if det == 0 {
			continue
		}
		wa := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / det
		wb := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / det
		wc := 1 - wa - wb

		if wa >= -eps && wb >= -eps && wc >= -eps {
			va := si.vals[tris[t]]
			vb := si.vals[tris[t+1]]
			vc := si.vals[tris[t+2]]
			return wa*va + wb*vb + wc*vc, true
		}
	}
	return 0, false
}
