package label

import "github.com/meridian-data/extremetrack/internal/grid"

// Morphological close-then-open used by the volume (3-D) labelling mode to
// bridge one-cell gaps and shave speckle before stacking masks in time. The
// structuring element is the radius-r Chebyshev disc, realised as r
// iterations of the one-step 8-neighbourhood so that dilation and erosion
// follow the grid topology across edge adjacencies.

// Dilate grows the active region by one topology step, repeated radius
// times. radius <= 0 returns the mask unchanged.
func Dilate(g *grid.Grid, m *grid.DayMask, radius int) *grid.DayMask {
	cur := m
	for r := 0; r < radius; r++ {
		next := grid.NewDayMask(g)
		eachCell(g, func(c grid.Cell) {
			if cur.At(c) {
				next.Set(c, true)
				return
			}
			for _, off := range grid.Offsets8 {
				if n, ok := g.Neighbour(c, off[0], off[1]); ok && cur.At(n) {
					next.Set(c, true)
					return
				}
			}
		})
		cur = next
	}
	return cur
}

// Erode shrinks the active region by one topology step, repeated radius
// times. A missing neighbour (true boundary) erodes the cell, so active
// regions pull back from poles and unlinked edges.
func Erode(g *grid.Grid, m *grid.DayMask, radius int) *grid.DayMask {
	cur := m
	for r := 0; r < radius; r++ {
		next := grid.NewDayMask(g)
		eachCell(g, func(c grid.Cell) {
			if !cur.At(c) {
				return
			}
			for _, off := range grid.Offsets8 {
				n, ok := g.Neighbour(c, off[0], off[1])
				if !ok || !cur.At(n) {
					return
				}
			}
			next.Set(c, true)
		})
		cur = next
	}
	return cur
}

// CloseOpen applies morphological closing (dilate, erode) followed by
// opening (erode, dilate) with the same radius.
func CloseOpen(g *grid.Grid, m *grid.DayMask, radius int) *grid.DayMask {
	if radius <= 0 {
		return m
	}
	closed := Erode(g, Dilate(g, m, radius), radius)
	return Dilate(g, Erode(g, closed, radius), radius)
}

func eachCell(g *grid.Grid, fn func(grid.Cell)) {
	for f := 1; f <= g.NumFaces(); f++ {
		shape := g.FaceShape(f)
		for i := 1; i <= shape.Nx; i++ {
			for j := 1; j <= shape.Ny; j++ {
				fn(grid.Cell{Face: f, I: i, J: j})
			}
		}
	}
}
