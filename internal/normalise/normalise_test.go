package normalise

import (
	"errors"
	"math"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"

	"github.com/meridian-data/extremetrack/internal/geo"
	"github.com/meridian-data/extremetrack/internal/grid"
	"github.com/meridian-data/extremetrack/internal/label"
	"github.com/meridian-data/extremetrack/internal/monitoring"
	"github.com/meridian-data/extremetrack/internal/track"
)

func init() {
	monitoring.SetLogger(nil)
}

func linspace(start, step float64, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = start + float64(i)*step
	}
	return v
}

func blockObject(i0, i1, j0, j1 int) *label.Object {
	var cells []grid.Cell
	for i := i0; i <= i1; i++ {
		for j := j0; j <= j1; j++ {
			cells = append(cells, grid.Cell{Face: 1, I: i, J: j})
		}
	}
	return label.NewObject(cells)
}

func constantTrack(days int, o *label.Object) *track.Track {
	tr := &track.Track{ID: uuid.New(), OriDay: 1, OriOrder: 1}
	for d := 1; d <= days; d++ {
		tr.Days = append(tr.Days, d)
		tr.Objects = append(tr.Objects, o)
	}
	return tr
}

// Scenario: a radially symmetric Gaussian anomaly field; the angular
// average of the normalised tensor at each radius must approximate the
// analytic profile.
func TestGaussianRoundTrip(t *testing.T) {
	lon := linspace(100, 0.25, 41) // 100..110
	lat := linspace(-5, 0.25, 41)  // -5..5

	// Object roughly centred on (105, 0); R_max ≈ 2σ by construction.
	obj := blockObject(9, 33, 9, 33)
	tr := constantTrack(3, obj)
	set := &track.TrackSet{Tracks: []*track.Track{tr}}

	rMax := geo.MaxRadius(tr, lon, lat, geo.DefaultEarthRadiusKm)
	if rMax <= 0 {
		t.Fatal("test object has zero radius")
	}
	sigma := rMax / 2
	lonC, latC := geo.Centroid(obj, lon, lat)

	field := sparse.ZerosDense(41, 41, 3, 1)
	for i := range lon {
		for j := range lat {
			d := geo.Haversine(latC, lonC, lat[j], lon[i], geo.DefaultEarthRadiusKm)
			v := math.Exp(-d * d / (sigma * sigma))
			for day := 0; day < 3; day++ {
				field.Set(v, i, j, day, 0)
			}
		}
	}

	cfg := Config{Resolution: 20, NPhases: 3, EarthRadiusKm: geo.DefaultEarthRadiusKm}
	tensor, err := New(cfg).Run(set, NewDenseField(field), lon, lat)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, r := range []int{0, 5, 10, 15} {
		rho := float64(r) / float64(cfg.Resolution-1)
		want := math.Exp(-(rho * rMax) * (rho * rMax) / (sigma * sigma))

		var ring []float64
		for th := 0; th < cfg.Resolution; th++ {
			v := tensor.Get(r, th, 1, 0, 0)
			if !math.IsNaN(v) {
				ring = append(ring, v)
			}
		}
		if len(ring) == 0 {
			t.Fatalf("radius %d: all angular samples NaN", r)
		}
		got := floats.Sum(ring) / float64(len(ring))
		if math.Abs(got-want) > 0.05 {
			t.Errorf("radius %d: angular mean = %g, want %g ± 0.05", r, got, want)
		}
	}
}

// NaN appears only where interpolation lacks support: a fully finite field
// over a well-sampled disc leaves the interior free of NaN.
func TestNoSpuriousNaN(t *testing.T) {
	lon := linspace(100, 0.25, 41)
	lat := linspace(-5, 0.25, 41)
	obj := blockObject(9, 33, 9, 33)
	tr := constantTrack(2, obj)
	set := &track.TrackSet{Tracks: []*track.Track{tr}}

	field := sparse.ZerosDense(41, 41, 2, 1)
	for i := 0; i < 41; i++ {
		for j := 0; j < 41; j++ {
			for d := 0; d < 2; d++ {
				field.Set(1.5, i, j, d, 0)
			}
		}
	}

	cfg := Config{Resolution: 10, NPhases: 2, EarthRadiusKm: geo.DefaultEarthRadiusKm}
	tensor, err := New(cfg).Run(set, NewDenseField(field), lon, lat)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Interior radii are well inside the sampled hull.
	for r := 0; r < 8; r++ {
		for th := 0; th < 10; th++ {
			for p := 0; p < 2; p++ {
				if math.IsNaN(tensor.Get(r, th, p, 0, 0)) {
					t.Fatalf("spurious NaN at (r=%d, θ=%d, p=%d)", r, th, p)
				}
			}
		}
	}
}

func TestZeroRadiusTrackSkipped(t *testing.T) {
	warned := false
	monitoring.SetLogger(func(format string, v ...interface{}) { warned = true })
	defer monitoring.SetLogger(nil)

	lon := linspace(0, 1, 20)
	lat := linspace(0, 1, 20)
	single := label.NewObject([]grid.Cell{{Face: 1, I: 5, J: 5}})
	tr := constantTrack(3, single)
	set := &track.TrackSet{Tracks: []*track.Track{tr}}

	field := sparse.ZerosDense(20, 20, 3, 1)
	cfg := Config{Resolution: 5, NPhases: 2, EarthRadiusKm: geo.DefaultEarthRadiusKm}
	tensor, err := New(cfg).Run(set, NewDenseField(field), lon, lat)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	for i, v := range tensor.Elements {
		if !math.IsNaN(v) {
			t.Fatalf("element %d = %g, want all-NaN for a zero-radius track", i, v)
		}
	}
	if !warned {
		t.Error("zero-radius skip should log a warning")
	}
}

func TestSingleDayTrackPhaseColumnNaN(t *testing.T) {
	// One day gives one temporal sample per polar cell; fewer than two
	// samples means the whole phase column is NaN.
	lon := linspace(100, 0.25, 41)
	lat := linspace(-5, 0.25, 41)
	obj := blockObject(9, 33, 9, 33)
	tr := constantTrack(1, obj)
	set := &track.TrackSet{Tracks: []*track.Track{tr}}

	field := sparse.ZerosDense(41, 41, 1, 1)
	for i := 0; i < 41; i++ {
		for j := 0; j < 41; j++ {
			field.Set(2.0, i, j, 0, 0)
		}
	}

	cfg := Config{Resolution: 8, NPhases: 3, EarthRadiusKm: geo.DefaultEarthRadiusKm}
	tensor, err := New(cfg).Run(set, NewDenseField(field), lon, lat)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, v := range tensor.Elements {
		if !math.IsNaN(v) {
			t.Fatal("single-day track should resample to all-NaN phases")
		}
	}
}

func TestShapeMismatch(t *testing.T) {
	lon := linspace(0, 1, 10)
	lat := linspace(0, 1, 10)
	obj := blockObject(2, 5, 2, 5)
	set := &track.TrackSet{Tracks: []*track.Track{constantTrack(2, obj)}}

	// Coordinate vectors disagree with the field axes.
	field := sparse.ZerosDense(12, 10, 2, 1)
	_, err := New(DefaultConfig()).Run(set, NewDenseField(field), lon, lat)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("err = %v, want ErrShapeMismatch", err)
	}

	// Track extends past the field's day axis.
	field = sparse.ZerosDense(10, 10, 1, 1)
	_, err = New(DefaultConfig()).Run(set, NewDenseField(field), lon, lat)
	if !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("err = %v, want ErrShapeMismatch", err)
	}
}

func TestInterpolatorOutsideHull(t *testing.T) {
	xs := []float64{-1, 1, 1, -1}
	ys := []float64{-1, -1, 1, 1}
	vals := []float64{1, 2, 3, 4}

	si, err := newScatteredInterpolator(xs, ys, vals)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := si.Eval(5, 5); ok {
		t.Error("target outside the hull should not evaluate")
	}
	if v, ok := si.Eval(0, 0); !ok || v < 1 || v > 4 {
		t.Errorf("centre eval = %g, %v; want interpolated value in [1, 4]", v, ok)
	}
}

func TestInterpolatorDegenerate(t *testing.T) {
	// Collinear points cannot triangulate.
	xs := []float64{0, 1, 2, 3}
	ys := []float64{0, 0, 0, 0}
	vals := []float64{1, 1, 1, 1}
	if _, err := newScatteredInterpolator(xs, ys, vals); err == nil {
		t.Error("collinear samples should fail to triangulate")
	}
}
