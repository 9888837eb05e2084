// Package pipeline wires the stages together: mask source → day labeller
// (parallel over days) → tracker (strictly sequential in day order) →
// normaliser (parallel over track×variable) → composite reducer. There is
// no I/O here; sources are in-process views owned by the caller.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/ctessum/sparse"
	"github.com/google/uuid"

	"github.com/meridian-data/extremetrack/internal/composite"
	"github.com/meridian-data/extremetrack/internal/config"
	"github.com/meridian-data/extremetrack/internal/grid"
	"github.com/meridian-data/extremetrack/internal/label"
	"github.com/meridian-data/extremetrack/internal/monitoring"
	"github.com/meridian-data/extremetrack/internal/normalise"
	"github.com/meridian-data/extremetrack/internal/track"
)

// MaskSource yields (day, mask) pairs in strictly increasing day order.
// The caller owns mask storage; the pipeline borrows each mask during
// labelling only.
type MaskSource interface {
	Next() (day int, mask *grid.DayMask, ok bool)
}

// SliceSource adapts an in-memory mask slice to MaskSource, numbering days
// from StartDay.
type SliceSource struct {
	Masks    []*grid.DayMask
	StartDay int
	pos      int
}

// Next implements MaskSource.
func (s *SliceSource) Next() (int, *grid.DayMask, bool) {
	if s.pos >= len(s.Masks) {
		return 0, nil, false
	}
	start := s.StartDay
	if start == 0 {
		start = 1
	}
	day := start + s.pos
	m := s.Masks[s.pos]
	s.pos++
	return day, m, true
}

// Result bundles the outputs of a full analysis run with its identity and
// the parameter snapshot that produced it.
type Result struct {
	RunID     uuid.UUID
	Params    *config.Params
	TrackSet  *track.TrackSet
	Tensor    *sparse.DenseArray // T[r, θ, p, n, v]
	Composite *sparse.DenseArray // C[r, θ, p, v]
}

// Track labels every day and links the objects into a TrackSet. Labelling
// runs as a parallel-for over days; the tracker then consumes the per-day
// object lists in day order. Cancellation is cooperative at day
// boundaries: on ctx.Done the search set is archived early and the
// truncated TrackSet is returned with a nil error.
func Track(ctx context.Context, g *grid.Grid, source MaskSource, params *config.Params) (*track.TrackSet, error) {
	if params == nil {
		params = config.Empty()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	type dayMask struct {
		day  int
		mask *grid.DayMask
	}
	var days []dayMask
	lastDay := 0
	for {
		day, mask, ok := source.Next()
		if !ok {
			break
		}
		if lastDay != 0 && day <= lastDay {
			return nil, fmt.Errorf("pipeline: mask source day %d not after day %d", day, lastDay)
		}
		if mask.Grid() != g {
			return nil, fmt.Errorf("%w: day %d mask is shaped on a different grid", normalise.ErrShapeMismatch, day)
		}
		lastDay = day
		days = append(days, dayMask{day, mask})
	}

	labelCfg := label.Config{
		MinPix:       params.GetMinPix(),
		Connectivity: params.GetConnectivity(),
	}

	// Parallel-for over independent days.
	objects := make([][]*label.Object, len(days))
	workers := runtime.GOMAXPROCS(0)
	if workers > len(days) && len(days) > 0 {
		workers = len(days)
	}
	var wg sync.WaitGroup
	work := make(chan int)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				objects[idx] = label.Day(g, days[idx].mask, labelCfg)
			}
		}()
	}
	for idx := range days {
		work <- idx
	}
	close(work)
	wg.Wait()

	tracker := track.NewTracker(track.Config{
		Alpha:  params.GetAlpha(),
		CutOff: params.GetCutOff(),
	})
	for idx := range days {
		select {
		case <-ctx.Done():
			monitoring.Logf("pipeline: cancelled before day %d, archiving %d active tracks", days[idx].day, tracker.Active())
			return tracker.Finalise(), nil
		default:
		}
		if err := tracker.Step(days[idx].day, objects[idx]); err != nil {
			return nil, err
		}
	}
	return tracker.Finalise(), nil
}

// TrackVolume runs the alternative 3-D mode: masks are drained from the
// source, filtered, stacked in time and labelled as one volume. Day gaps in
// the source are not permitted in this mode.
func TrackVolume(g *grid.Grid, source MaskSource, params *config.Params) (*track.TrackSet, error) {
	if params == nil {
		params = config.Empty()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var masks []*grid.DayMask
	startDay, lastDay := 0, 0
	for {
		day, mask, ok := source.Next()
		if !ok {
			break
		}
		if startDay == 0 {
			startDay = day
		} else if day != lastDay+1 {
			return nil, fmt.Errorf("pipeline: volume mode needs consecutive days, got %d after %d", day, lastDay)
		}
		if mask.Grid() != g {
			return nil, fmt.Errorf("%w: day %d mask is shaped on a different grid", normalise.ErrShapeMismatch, day)
		}
		lastDay = day
		masks = append(masks, mask)
	}
	if len(masks) == 0 {
		return &track.TrackSet{}, nil
	}

	return track.LabelVolume(g, masks, startDay, track.VolumeConfig{
		MinPix:          params.GetMinPix(),
		Connectivity:    params.GetConnectivity(),
		CloseOpenRadius: params.GetCloseOpenRadius(),
	}), nil
}

// Normalise projects every track of the set into the polar × phase frame.
func Normalise(set *track.TrackSet, field normalise.Field, lon, lat []float64, params *config.Params) (*sparse.DenseArray, error) {
	if params == nil {
		params = config.Empty()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	n := normalise.New(normalise.Config{
		Resolution:    params.GetResolution(),
		NPhases:       params.GetNPhases(),
		EarthRadiusKm: params.GetEarthRadiusKm(),
	})
	return n.Run(set, field, lon, lat)
}

// Analyse runs the full chain and stamps the result with a run identity.
func Analyse(ctx context.Context, g *grid.Grid, source MaskSource, field normalise.Field, lon, lat []float64, params *config.Params) (*Result, error) {
	if params == nil {
		params = config.Empty()
	}

	set, err := Track(ctx, g, source, params)
	if err != nil {
		return nil, err
	}
	tensor, err := Normalise(set, field, lon, lat, params)
	if err != nil {
		return nil, err
	}
	comp, err := composite.Reduce(tensor, params.GetCompositeMethod())
	if err != nil {
		return nil, err
	}
	return &Result{
		RunID:     uuid.New(),
		Params:    params,
		TrackSet:  set,
		Tensor:    tensor,
		Composite: comp,
	}, nil
}

// SortTracks orders a track slice by (ori day, ori order) for stable
// reporting. Archive order itself is implementation-defined.
func SortTracks(tracks []*track.Track) {
	sort.Slice(tracks, func(a, b int) bool {
		if tracks[a].OriDay != tracks[b].OriDay {
			return tracks[a].OriDay < tracks[b].OriDay
		}
		return tracks[a].OriOrder < tracks[b].OriOrder
	})
}
