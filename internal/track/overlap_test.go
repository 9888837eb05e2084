package track

import (
	"testing"

	"github.com/meridian-data/extremetrack/internal/grid"
	"github.com/meridian-data/extremetrack/internal/label"
)

func block(t *testing.T, i0, i1, j0, j1 int) *label.Object {
	t.Helper()
	var cells []grid.Cell
	for i := i0; i <= i1; i++ {
		for j := j0; j <= j1; j++ {
			cells = append(cells, grid.Cell{Face: 1, I: i, J: j})
		}
	}
	return label.NewObject(cells)
}

func TestOverlapSymmetricAndBounded(t *testing.T) {
	a := block(t, 10, 19, 5, 9) // 50 cells
	b := block(t, 15, 24, 5, 9) // 50 cells, 25 shared

	ab, ba := Overlap(a, b), Overlap(b, a)
	if ab != ba {
		t.Errorf("overlap not symmetric: %g vs %g", ab, ba)
	}
	if ab < 0 || ab > 1 {
		t.Errorf("overlap out of [0,1]: %g", ab)
	}
	if ab != 0.5 {
		t.Errorf("overlap = %g, want 0.5", ab)
	}
}

func TestOverlapSubsetIsOne(t *testing.T) {
	parent := block(t, 10, 29, 5, 14)
	child := block(t, 12, 15, 6, 9)

	if got := Overlap(parent, child); got != 1.0 {
		t.Errorf("subset overlap = %g, want 1", got)
	}
	if got := Overlap(child, parent); got != 1.0 {
		t.Errorf("subset overlap (swapped) = %g, want 1", got)
	}
}

func TestOverlapDisjointIsZero(t *testing.T) {
	a := block(t, 1, 5, 1, 5)
	b := block(t, 20, 25, 20, 25)
	if got := Overlap(a, b); got != 0 {
		t.Errorf("disjoint overlap = %g, want 0", got)
	}
}

// The min denominator favours a small child against a large parent.
func TestOverlapMinDenominator(t *testing.T) {
	parent := block(t, 10, 29, 5, 14) // 200 cells
	child := block(t, 10, 13, 5, 9)   // 20 cells, all inside parent

	// With a max or union denominator this would be 0.1; with min it is 1.
	if got := Overlap(parent, child); got != 1.0 {
		t.Errorf("overlap = %g, want 1 (|A∩B|/min)", got)
	}
}
