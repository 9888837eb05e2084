// Package label turns day masks into connected objects. Labelling is
// two-pass: each face is labelled in isolation with a scan over the local
// connectivity, then a disjoint-set forest merges labels across declared
// edge adjacencies, so an object straddling the longitude seam (or a face
// boundary of a tiled sphere) is emitted once.
package label

import (
	"sort"

	"github.com/meridian-data/extremetrack/internal/grid"
	"github.com/meridian-data/extremetrack/internal/monitoring"
)

// Config holds labeller parameters.
type Config struct {
	MinPix       int // smallest emitted object, in cells
	Connectivity int // 4 or 8
}

// DefaultConfig returns the default labeller parameters.
func DefaultConfig() Config {
	return Config{MinPix: 10, Connectivity: 8}
}

func offsets(connectivity int) [][2]int {
	if connectivity == 4 {
		return grid.Offsets4[:]
	}
	return grid.Offsets8[:]
}

// Day labels a single day mask and returns the objects of size >= MinPix,
// sorted by minimum cell identifier. An empty day is not an error: it logs
// a warning and returns an empty list.
func Day(g *grid.Grid, m *grid.DayMask, cfg Config) []*Object {
	offs := offsets(cfg.Connectivity)

	// Pass 1: label each face in isolation. localLabel holds 0 for
	// inactive cells and 1..n_f for active ones; globalOffset[f] shifts
	// face-local labels into one id space.
	nFaces := g.NumFaces()
	localLabel := make([][]int32, nFaces)
	globalOffset := make([]int32, nFaces)
	var total int32

	for f := 1; f <= nFaces; f++ {
		globalOffset[f-1] = total
		n := labelFace(g, m, f, offs, &localLabel[f-1])
		total += n
	}

	if total == 0 {
		monitoring.Logf("label: empty day mask, no objects")
		return []*Object{}
	}

	// Pass 2: union labels across face boundaries. Only offsets that leave
	// the cell's face matter here; in-face adjacency is already folded into
	// the local labels.
	forest := NewDisjointSet(int(total))
	for f := 1; f <= nFaces; f++ {
		shape := g.FaceShape(f)
		for i := 1; i <= shape.Nx; i++ {
			for j := 1; j <= shape.Ny; j++ {
				c := grid.Cell{Face: f, I: i, J: j}
				la := localLabel[f-1][faceIndex(shape, i, j)]
				if la == 0 {
					continue
				}
				for _, off := range offs {
					n, ok := g.Neighbour(c, off[0], off[1])
					if !ok || n.Face == f && sameFaceStep(c, n) {
						continue
					}
					lb := localLabel[n.Face-1][faceIndex(g.FaceShape(n.Face), n.I, n.J)]
					if lb == 0 {
						continue
					}
					forest.Union(
						int(globalOffset[f-1]+la-1),
						int(globalOffset[n.Face-1]+lb-1),
					)
				}
			}
		}
	}

	// Bucket cells by root label, then filter and order.
	buckets := make(map[int][]grid.Cell)
	for f := 1; f <= nFaces; f++ {
		shape := g.FaceShape(f)
		for i := 1; i <= shape.Nx; i++ {
			for j := 1; j <= shape.Ny; j++ {
				l := localLabel[f-1][faceIndex(shape, i, j)]
				if l == 0 {
					continue
				}
				root := forest.Find(int(globalOffset[f-1] + l - 1))
				buckets[root] = append(buckets[root], grid.Cell{Face: f, I: i, J: j})
			}
		}
	}

	objects := make([]*Object, 0, len(buckets))
	for _, cells := range buckets {
		if len(cells) < cfg.MinPix {
			continue
		}
		objects = append(objects, NewObject(cells))
	}
	sort.Slice(objects, func(a, b int) bool {
		return objects[a].MinCell().Key() < objects[b].MinCell().Key()
	})

	if len(objects) == 0 {
		monitoring.Logf("label: no objects of size >= %d", cfg.MinPix)
	}
	return objects
}

// sameFaceStep reports whether n is the plain in-face neighbour of c, as
// opposed to a wrap that re-enters the same face through a linked edge
// (a one-face cylinder does exactly that).
func sameFaceStep(c, n grid.Cell) bool {
	di, dj := n.I-c.I, n.J-c.J
	return di >= -1 && di <= 1 && dj >= -1 && dj <= 1
}

func faceIndex(shape grid.Face, i, j int) int {
	return (i-1)*shape.Ny + (j - 1)
}

// labelFace performs in-face connected-component labelling with a
// raster-scan union-find over cell indices, then renumbers roots to the
// compact range 1..n. Returns n.
func labelFace(g *grid.Grid, m *grid.DayMask, f int, offs [][2]int, out *[]int32) int32 {
	shape := g.FaceShape(f)
	size := shape.Nx * shape.Ny
	*out = make([]int32, size)

	forest := NewDisjointSet(size)
	active := make([]bool, size)

	for i := 1; i <= shape.Nx; i++ {
		for j := 1; j <= shape.Ny; j++ {
			c := grid.Cell{Face: f, I: i, J: j}
			if !m.At(c) {
				continue
			}
			idx := faceIndex(shape, i, j)
			active[idx] = true
			// Union with already-scanned in-face neighbours only; the
			// forward half of the neighbourhood is reached when the scan
			// gets there.
			for _, off := range offs {
				ni, nj := i+off[0], j+off[1]
				if ni < 1 || ni > shape.Nx || nj < 1 || nj > shape.Ny {
					continue
				}
				nIdx := faceIndex(shape, ni, nj)
				if nIdx >= idx {
					continue
				}
				if active[nIdx] {
					forest.Union(idx, nIdx)
				}
			}
		}
	}

	// Renumber roots to 1..n in scan order.
	var n int32
	rootLabel := make(map[int]int32)
	for idx := 0; idx < size; idx++ {
		if !active[idx] {
			continue
		}
		root := forest.Find(idx)
		l, ok := rootLabel[root]
		if !ok {
			n++
			l = n
			rootLabel[root] = l
		}
		(*out)[idx] = l
	}
	return n
}
