package track

import (
	"sort"

	"github.com/google/uuid"
	"github.com/meridian-data/extremetrack/internal/grid"
	"github.com/meridian-data/extremetrack/internal/label"
	"github.com/meridian-data/extremetrack/internal/monitoring"
)

// VolumeConfig holds parameters for the stacked (3-D) labelling mode.
type VolumeConfig struct {
	MinPix          int // smallest component, counted in voxels over the whole lifetime
	Connectivity    int // spatial connectivity per slice: 4 or 8
	CloseOpenRadius int // morphological close-then-open disc radius per slice; 0 disables
}

// DefaultVolumeConfig returns default volume-mode parameters.
func DefaultVolumeConfig() VolumeConfig {
	return VolumeConfig{MinPix: 10, Connectivity: 8, CloseOpenRadius: 0}
}

// LabelVolume runs the alternative 3-D mode: masks are filtered per slice,
// stacked with time as a third connectivity dimension, and each 3-D
// component becomes one track directly. The resulting tracks carry no
// split or merge annotations; days within a component are contiguous by
// construction. masks[d] is the mask for day startDay+d.
func LabelVolume(g *grid.Grid, masks []*grid.DayMask, startDay int, cfg VolumeConfig) *TrackSet {
	filtered := make([]*grid.DayMask, len(masks))
	for d, m := range masks {
		filtered[d] = label.CloseOpen(g, m, cfg.CloseOpenRadius)
	}

	// Index active voxels. voxelID maps (day offset, cell key) to a dense
	// index for the disjoint-set forest.
	type voxel struct {
		d    int
		cell grid.Cell
	}
	var voxels []voxel
	voxelID := make(map[int64]map[int]int) // cell key → day offset → id
	for d, m := range filtered {
		eachActive(g, m, func(c grid.Cell) {
			k := c.Key()
			if voxelID[k] == nil {
				voxelID[k] = make(map[int]int)
			}
			voxelID[k][d] = len(voxels)
			voxels = append(voxels, voxel{d: d, cell: c})
		})
	}
	if len(voxels) == 0 {
		monitoring.Logf("track: volume mode found no active voxels")
		return &TrackSet{}
	}

	offs := grid.Offsets8[:]
	if cfg.Connectivity == 4 {
		offs = grid.Offsets4[:]
	}

	forest := label.NewDisjointSet(len(voxels))
	for id, v := range voxels {
		// Same-slice spatial neighbours.
		for _, off := range offs {
			n, ok := g.Neighbour(v.cell, off[0], off[1])
			if !ok {
				continue
			}
			if nid, ok := voxelID[n.Key()][v.d]; ok {
				forest.Union(id, nid)
			}
		}
		// Next slice: same cell plus the full spatial neighbourhood, which
		// together with the symmetric previous-slice case gives 26-style
		// space-time connectivity.
		next := v.d + 1
		if next >= len(filtered) {
			continue
		}
		if nid, ok := voxelID[v.cell.Key()][next]; ok {
			forest.Union(id, nid)
		}
		for _, off := range grid.Offsets8 {
			n, ok := g.Neighbour(v.cell, off[0], off[1])
			if !ok {
				continue
			}
			if nid, ok := voxelID[n.Key()][next]; ok {
				forest.Union(id, nid)
			}
		}
	}

	// Bucket voxels per component, then per day.
	components := make(map[int]map[int][]grid.Cell) // root → day offset → cells
	counts := make(map[int]int)
	for id, v := range voxels {
		root := forest.Find(id)
		if components[root] == nil {
			components[root] = make(map[int][]grid.Cell)
		}
		components[root][v.d] = append(components[root][v.d], v.cell)
		counts[root]++
	}

	var tracks []*Track
	for root, byDay := range components {
		if counts[root] < cfg.MinPix {
			continue
		}
		days := make([]int, 0, len(byDay))
		for d := range byDay {
			days = append(days, d)
		}
		sort.Ints(days)

		tr := &Track{
			ID:     uuid.New(),
			OriDay: startDay + days[0],
		}
		for _, d := range days {
			tr.extend(startDay+d, label.NewObject(byDay[d]))
		}
		tracks = append(tracks, tr)
	}

	// Deterministic order and origin identifiers: sort by (ori day, first
	// cell), then number tracks 1..k within each birth day.
	sort.Slice(tracks, func(a, b int) bool {
		if tracks[a].OriDay != tracks[b].OriDay {
			return tracks[a].OriDay < tracks[b].OriDay
		}
		return tracks[a].Objects[0].MinCell().Key() < tracks[b].Objects[0].MinCell().Key()
	})
	order := make(map[int]int)
	for _, tr := range tracks {
		order[tr.OriDay]++
		tr.OriOrder = order[tr.OriDay]
	}

	return &TrackSet{Tracks: tracks}
}

func eachActive(g *grid.Grid, m *grid.DayMask, fn func(grid.Cell)) {
	for f := 1; f <= g.NumFaces(); f++ {
		shape := g.FaceShape(f)
		for i := 1; i <= shape.Nx; i++ {
			for j := 1; j <= shape.Ny; j++ {
				c := grid.Cell{Face: f, I: i, J: j}
				if m.At(c) {
					fn(c)
				}
			}
		}
	}
}
