package grid

import "fmt"

// DayMask is a grid-shaped boolean field for a single day: true marks an
// active (extreme) cell. The mask always matches its Grid exactly; there is
// no way to construct one with a different shape.
type DayMask struct {
	grid *Grid
	data [][]bool // per face, row-major on (i, j)
}

// NewDayMask allocates an all-false mask over g.
func NewDayMask(g *Grid) *DayMask {
	data := make([][]bool, g.NumFaces())
	for f := range data {
		shape := g.FaceShape(f + 1)
		data[f] = make([]bool, shape.Nx*shape.Ny)
	}
	return &DayMask{grid: g, data: data}
}

// Grid returns the topology the mask is shaped on.
func (m *DayMask) Grid() *Grid { return m.grid }

func (m *DayMask) index(c Cell) int {
	shape := m.grid.FaceShape(c.Face)
	return (c.I-1)*shape.Ny + (c.J - 1)
}

// Set marks cell c active or inactive. Panics on a cell outside the grid;
// masks are produced by pre-validated upstream code, so this is a bug trap,
// not a data error.
func (m *DayMask) Set(c Cell, active bool) {
	if !m.grid.Contains(c) {
		panic(fmt.Sprintf("grid: Set on cell %+v outside grid", c))
	}
	m.data[c.Face-1][m.index(c)] = active
}

// At reports whether cell c is active. Cells outside the grid are inactive.
func (m *DayMask) At(c Cell) bool {
	if !m.grid.Contains(c) {
		return false
	}
	return m.data[c.Face-1][m.index(c)]
}

// SetRange marks the inclusive 1-based block [i0,i1]×[j0,j1] on face f.
// Test fixtures and synthetic masks are built almost entirely from ranges.
func (m *DayMask) SetRange(f, i0, i1, j0, j1 int, active bool) {
	for i := i0; i <= i1; i++ {
		for j := j0; j <= j1; j++ {
			m.Set(Cell{Face: f, I: i, J: j}, active)
		}
	}
}

// CountActive returns the number of active cells.
func (m *DayMask) CountActive() int {
	n := 0
	for _, face := range m.data {
		for _, v := range face {
			if v {
				n++
			}
		}
	}
	return n
}
