// Package normalise projects each track into the standard polar × lifecycle
// frame: a per-day spatial resample onto a polar grid scaled by the track's
// R_max, followed by linear resampling of each polar cell onto a fixed
// number of lifecycle phases. The output is the 5-D tensor
// T[r, θ, p, n, v] with NaN wherever an interpolation has no support.
package normalise

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/interp"

	"github.com/meridian-data/extremetrack/internal/geo"
	"github.com/meridian-data/extremetrack/internal/monitoring"
	"github.com/meridian-data/extremetrack/internal/track"
)

// ErrShapeMismatch is returned when the anomaly field axes do not match the
// coordinate vectors or the track day range.
var ErrShapeMismatch = errors.New("shape mismatch")

// Config holds normaliser parameters.
type Config struct {
	Resolution    int     // polar grid resolution R
	NPhases       int     // lifecycle phase count P
	EarthRadiusKm float64 // geodesic radius
	Workers       int     // parallel (track, variable) workers; 0 means GOMAXPROCS
}

// DefaultConfig returns default normaliser parameters.
func DefaultConfig() Config {
	return Config{
		Resolution:    50,
		NPhases:       5,
		EarthRadiusKm: geo.DefaultEarthRadiusKm,
	}
}

// Normaliser maps a TrackSet plus an anomaly field to the normalised
// tensor. Tracks are independent once the set is finalised, so the work is
// a parallel-for over (track, variable) pairs writing disjoint tensor
// slices.
type Normaliser struct {
	cfg Config
}

// New creates a Normaliser. Parameters are validated by internal/config
// before they arrive here.
func New(cfg Config) *Normaliser {
	if cfg.Resolution == 0 {
		cfg = DefaultConfig()
	}
	return &Normaliser{cfg: cfg}
}

// polarTarget holds the precomputed unit-disc target coordinates
// x[r*R+θ], y[r*R+θ] shared by every track.
type polarTarget struct {
	res  int
	x, y []float64
}

func newPolarTarget(res int) polarTarget {
	t := polarTarget{
		res: res,
		x:   make([]float64, res*res),
		y:   make([]float64, res*res),
	}
	for r := 0; r < res; r++ {
		radius := float64(r) / float64(res-1)
		for th := 0; th < res; th++ {
			angle := 2 * math.Pi * float64(th) / float64(res)
			t.x[r*res+th] = radius * math.Sin(angle)
			t.y[r*res+th] = radius * math.Cos(angle)
		}
	}
	return t
}

// Run produces the tensor T[r, θ, p, n, v] for the whole track set. lon and
// lat are the grid coordinate vectors; field day index 0 corresponds to
// tracker day 1.
func (n *Normaliser) Run(set *track.TrackSet, field Field, lon, lat []float64) (*sparse.DenseArray, error) {
	nLon, nLat, nDay, nVar := field.Dims()
	if len(lon) != nLon || len(lat) != nLat {
		return nil, fmt.Errorf("%w: field is %dx%d but coordinate vectors are %dx%d",
			ErrShapeMismatch, nLon, nLat, len(lon), len(lat))
	}
	for _, tr := range set.Tracks {
		if tr.OriDay < 1 || tr.LastDay() > nDay {
			return nil, fmt.Errorf("%w: track spans days [%d, %d] but field has %d days",
				ErrShapeMismatch, tr.OriDay, tr.LastDay(), nDay)
		}
	}

	res, phases := n.cfg.Resolution, n.cfg.NPhases
	tensor := sparse.ZerosDense(res, res, phases, len(set.Tracks), nVar)
	for i := range tensor.Elements {
		tensor.Elements[i] = math.NaN()
	}

	target := newPolarTarget(res)

	type job struct{ trackIdx, varIdx int }
	jobs := make(chan job)

	workers := n.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for jb := range jobs {
				n.normaliseOne(set.Tracks[jb.trackIdx], jb.trackIdx, jb.varIdx, field, lon, lat, target, tensor)
			}
		}()
	}
	for ti := range set.Tracks {
		for vi := 0; vi < nVar; vi++ {
			jobs <- job{ti, vi}
		}
	}
	close(jobs)
	wg.Wait()

	return tensor, nil
}

// normaliseOne fills the (n, v) slice of the tensor for one track and one
// variable. All failure modes inside are local: they leave NaN behind and
// never propagate.
func (n *Normaliser) normaliseOne(tr *track.Track, trackIdx, varIdx int, field Field, lon, lat []float64, target polarTarget, tensor *sparse.DenseArray) {
	rMax := geo.MaxRadius(tr, lon, lat, n.cfg.EarthRadiusKm)
	if rMax == 0 {
		monitoring.Logf("normalise: track %s has zero radius, skipping", tr.ID)
		return
	}

	res := target.res
	days := len(tr.Days)

	// Stage 1: spatial projection per day. spatial[(r*res+θ)*days + d].
	spatial := make([]float64, res*res*days)
	for i := range spatial {
		spatial[i] = math.NaN()
	}
	for d, day := range tr.Days {
		n.projectDay(tr, d, day-1, varIdx, rMax, field, lon, lat, target, spatial, days)
	}

	// Stage 2: temporal resampling of each polar cell onto the phases.
	phases := n.cfg.NPhases
	tOrig := make([]float64, days)
	for d := range tOrig {
		tOrig[d] = float64(d) / float64(days)
	}

	xs := make([]float64, 0, days)
	ys := make([]float64, 0, days)
	for cell := 0; cell < res*res; cell++ {
		xs, ys = xs[:0], ys[:0]
		for d := 0; d < days; d++ {
			v := spatial[cell*days+d]
			if !math.IsNaN(v) {
				xs = append(xs, tOrig[d])
				ys = append(ys, v)
			}
		}
		if len(xs) < 2 {
			continue // whole phase column stays NaN
		}

		var pl interp.PiecewiseLinear
		if err := pl.Fit(xs, ys); err != nil {
			continue
		}
		r, th := cell/res, cell%res
		for p := 0; p < phases; p++ {
			tp := float64(p) / float64(phases)
			// Nearest-endpoint extension outside the sampled range.
			if tp < xs[0] {
				tp = xs[0]
			} else if tp > xs[len(xs)-1] {
				tp = xs[len(xs)-1]
			}
			tensor.Set(pl.Predict(tp), r, th, p, trackIdx, varIdx)
		}
	}
}

// projectDay samples the anomaly field around the day's centroid and
// interpolates it onto the polar targets, writing into spatial. dayIdx is
// the 0-based field day.
func (n *Normaliser) projectDay(tr *track.Track, d, dayIdx, varIdx int, rMax float64, field Field, lon, lat []float64, target polarTarget, spatial []float64, days int) {
	lonC, latC := geo.Centroid(tr.Objects[d], lon, lat)
	earthR := n.cfg.EarthRadiusKm

	// Bounding-box prefilter around the centroid, then signed-haversine
	// local coordinates scaled by R_max.
	latScale := earthR * math.Pi / 180
	var xs, ys, vals []float64
	for i, lonV := range lon {
		if math.Abs(lonV-lonC) >= 2*rMax {
			continue
		}
		for j, latV := range lat {
			if math.Abs(latV-latC)*latScale >= 2*rMax {
				continue
			}
			a := field.At(i, j, dayIdx, varIdx)
			if math.IsNaN(a) {
				continue
			}
			x := sign(lonV-lonC) * geo.Haversine(latC, lonC, latC, lonV, earthR)
			y := sign(latV-latC) * geo.Haversine(latC, lonC, latV, lonC, earthR)
			xs = append(xs, x/rMax)
			ys = append(ys, y/rMax)
			vals = append(vals, a)
		}
	}

	if len(vals) < 4 {
		return // day slice stays NaN
	}

	si, err := newScatteredInterpolator(xs, ys, vals)
	if err != nil {
		monitoring.Logf("normalise: track %s day %d: %v", tr.ID, tr.Days[d], err)
		return
	}

	res := target.res
	for cell := 0; cell < res*res; cell++ {
		if v, ok := si.Eval(target.x[cell], target.y[cell]); ok {
			spatial[cell*days+d] = v
		}
	}
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
