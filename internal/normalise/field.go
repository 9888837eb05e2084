package normalise

import (
	"github.com/ctessum/sparse"
)

// Field is the read-only anomaly source: an indexable view of the 4-D
// array D[lonIdx, latIdx, dayIdx, varIdx], 0-based on every axis. Missing
// data is NaN.
type Field interface {
	At(lonIdx, latIdx, dayIdx, varIdx int) float64
	Dims() (nLon, nLat, nDay, nVar int)
}

// DenseField adapts a sparse.DenseArray with shape (lon, lat, day, var) to
// the Field interface.
type DenseField struct {
	A *sparse.DenseArray
}

// NewDenseField wraps a 4-D dense array. The array's shape is the source
// of truth for Dims.
func NewDenseField(a *sparse.DenseArray) DenseField {
	return DenseField{A: a}
}

// At returns D[lon, lat, day, var].
func (f DenseField) At(lonIdx, latIdx, dayIdx, varIdx int) float64 {
	return f.A.Get(lonIdx, latIdx, dayIdx, varIdx)
}

// Dims returns the axis extents.
func (f DenseField) Dims() (nLon, nLat, nDay, nVar int) {
	return f.A.Shape[0], f.A.Shape[1], f.A.Shape[2], f.A.Shape[3]
}
