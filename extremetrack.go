package extremetrack

import (
	"context"

	"github.com/ctessum/sparse"

	"github.com/meridian-data/extremetrack/internal/composite"
	"github.com/meridian-data/extremetrack/internal/config"
	"github.com/meridian-data/extremetrack/internal/grid"
	"github.com/meridian-data/extremetrack/internal/label"
	"github.com/meridian-data/extremetrack/internal/normalise"
	"github.com/meridian-data/extremetrack/internal/pipeline"
	"github.com/meridian-data/extremetrack/internal/track"
)

// Canonical implementations live in the internal packages; the exported
// surface is aliases plus thin wrappers, so embedding applications see one
// import path.

// Grid topology.
type (
	Grid     = grid.Grid
	Face     = grid.Face
	Cell     = grid.Cell
	Edge     = grid.Edge
	EdgeLink = grid.EdgeLink
	DayMask  = grid.DayMask
)

const (
	EdgeLeft   = grid.EdgeLeft
	EdgeRight  = grid.EdgeRight
	EdgeTop    = grid.EdgeTop
	EdgeBottom = grid.EdgeBottom
)

// NewGrid builds a multi-face grid from face shapes and edge adjacencies.
var NewGrid = grid.New

// NewCylindricalGrid builds the common single-face grid with periodic
// longitude.
var NewCylindricalGrid = grid.NewCylindrical

// NewDayMask allocates an all-inactive mask over a grid.
var NewDayMask = grid.NewDayMask

// ErrInvalidGrid tags grid construction failures.
var ErrInvalidGrid = grid.ErrInvalidGrid

// Labelling.
type Object = label.Object

// LabelDay labels one day mask into connected objects.
func LabelDay(g *Grid, m *DayMask, minPix, connectivity int) []*Object {
	return label.Day(g, m, label.Config{MinPix: minPix, Connectivity: connectivity})
}

// Tracking.
type (
	Track         = track.Track
	TrackSet      = track.TrackSet
	Tracker       = track.Tracker
	TrackerConfig = track.Config
)

// NewTracker creates a day-sequential tracker.
var NewTracker = track.NewTracker

// Overlap is the matching kernel |A ∩ B| / min(|A|, |B|).
var Overlap = track.Overlap

// Configuration.
type (
	Params          = config.Params
	CompositeMethod = config.CompositeMethod
)

// LoadParams reads tuning parameters from a TOML file.
var LoadParams = config.Load

// ErrParameterOutOfRange tags configuration range failures.
var ErrParameterOutOfRange = config.ErrParameterOutOfRange

// Composite methods.
const (
	CompositeMean   = config.CompositeMean
	CompositeMedian = config.CompositeMedian
	CompositeStd    = config.CompositeStd
)

// Normalisation and pipeline.
type (
	Field       = normalise.Field
	DenseField  = normalise.DenseField
	MaskSource  = pipeline.MaskSource
	SliceSource = pipeline.SliceSource
	Result      = pipeline.Result
)

// NewDenseField wraps a 4-D dense anomaly array as a Field.
var NewDenseField = normalise.NewDenseField

// ErrShapeMismatch tags anomaly-field and mask shape failures.
var ErrShapeMismatch = normalise.ErrShapeMismatch

// TrackMasks labels and links a day-mask sequence into a TrackSet.
// Cancellation is cooperative at day boundaries; a cancelled run returns
// the valid truncated TrackSet.
func TrackMasks(ctx context.Context, g *Grid, source MaskSource, params *Params) (*TrackSet, error) {
	return pipeline.Track(ctx, g, source, params)
}

// TrackMasksVolume runs the alternative 3-D stacked mode, producing one
// track per space-time component without split or merge annotations.
func TrackMasksVolume(g *Grid, source MaskSource, params *Params) (*TrackSet, error) {
	return pipeline.TrackVolume(g, source, params)
}

// NormaliseTracks projects every track onto the polar × lifecycle frame,
// returning the tensor T[r, θ, p, n, v].
func NormaliseTracks(set *TrackSet, field Field, lon, lat []float64, params *Params) (*sparse.DenseArray, error) {
	return pipeline.Normalise(set, field, lon, lat, params)
}

// CompositeTracks reduces a normalised tensor over the track axis.
func CompositeTracks(tensor *sparse.DenseArray, method CompositeMethod) (*sparse.DenseArray, error) {
	return composite.Reduce(tensor, method)
}

// Analyse runs the full chain: tracking, normalisation and compositing.
var Analyse = pipeline.Analyse
