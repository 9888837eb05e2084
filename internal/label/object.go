package label

import (
	"sort"

	"github.com/meridian-data/extremetrack/internal/grid"
)

// Object is a maximal connected set of active cells emitted by the
// labeller. Cells are held sorted by their packed key, so the first cell is
// the minimum cell identifier and two objects with the same cells compare
// equal element-wise. The key set doubles as the intersection index for the
// overlap kernel.
type Object struct {
	cells []grid.Cell
	keys  map[int64]struct{}
}

// NewObject builds an Object from cells, sorting and de-duplicating.
func NewObject(cells []grid.Cell) *Object {
	sorted := append([]grid.Cell(nil), cells...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key() < sorted[j].Key() })

	o := &Object{
		cells: sorted[:0],
		keys:  make(map[int64]struct{}, len(sorted)),
	}
	for _, c := range sorted {
		k := c.Key()
		if _, dup := o.keys[k]; dup {
			continue
		}
		o.keys[k] = struct{}{}
		o.cells = append(o.cells, c)
	}
	return o
}

// Size returns the cell count.
func (o *Object) Size() int { return len(o.cells) }

// Cells returns the member cells in (face, i, j) order. Callers must not
// mutate the returned slice.
func (o *Object) Cells() []grid.Cell { return o.cells }

// MinCell returns the minimum cell identifier, the deterministic emission
// sort key.
func (o *Object) MinCell() grid.Cell { return o.cells[0] }

// Contains reports membership of a single cell.
func (o *Object) Contains(c grid.Cell) bool {
	_, ok := o.keys[c.Key()]
	return ok
}

// IntersectCount returns |o ∩ other|, probing the smaller set against the
// larger one.
func (o *Object) IntersectCount(other *Object) int {
	a, b := o, other
	if b.Size() < a.Size() {
		a, b = b, a
	}
	n := 0
	for k := range a.keys {
		if _, ok := b.keys[k]; ok {
			n++
		}
	}
	return n
}

// Equal reports whether two objects have exactly the same cells.
func (o *Object) Equal(other *Object) bool {
	if o.Size() != other.Size() {
		return false
	}
	for i := range o.cells {
		if o.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Union merges any number of objects into one. Used on split days where the
// union of all matching children becomes the track's object.
func Union(objs ...*Object) *Object {
	total := 0
	for _, o := range objs {
		total += o.Size()
	}
	cells := make([]grid.Cell, 0, total)
	for _, o := range objs {
		cells = append(cells, o.cells...)
	}
	return NewObject(cells)
}
