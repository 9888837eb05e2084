package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ErrParameterOutOfRange is wrapped by every Validate failure so callers can
// distinguish configuration errors from data-dependent degeneracies.
var ErrParameterOutOfRange = errors.New("parameter out of range")

// CompositeMethod selects the aggregate computed over the track axis.
type CompositeMethod string

const (
	CompositeMean   CompositeMethod = "mean"
	CompositeMedian CompositeMethod = "median"
	CompositeStd    CompositeMethod = "std"
)

// Params represents the tuning parameters for a tracker run. All fields are
// optional pointers so a partial TOML file (or a runtime update) only
// overrides what it mentions; the Get* accessors supply defaults for nil
// fields.
type Params struct {
	// Labeller params
	MinPix       *int `toml:"minpix,omitempty"`
	Connectivity *int `toml:"connectivity,omitempty"`

	// Tracker params
	Alpha  *float64 `toml:"alpha,omitempty"`
	CutOff *int     `toml:"cut_off,omitempty"` // minimum track duration in days; 0 disables

	// Normaliser params
	Resolution    *int     `toml:"resolution,omitempty"`
	NPhases       *int     `toml:"n_phases,omitempty"`
	EarthRadiusKm *float64 `toml:"earth_radius,omitempty"`

	// Composite params
	CompositeMethod *string `toml:"composite_method,omitempty"`

	// Volume (3-D) labelling mode
	CloseOpenRadius *int `toml:"close_open_radius,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }
func ptrString(v string) *string    { return &v }

// Empty returns a Params with all fields unset.
func Empty() *Params {
	return &Params{}
}

// Load reads a Params from a TOML file. Fields omitted from the file retain
// their defaults, so partial configs are safe.
func Load(path string) (*Params, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".toml" {
		return nil, fmt.Errorf("config file must have .toml extension, got %q", ext)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	p := Empty()
	if err := toml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("failed to parse config TOML: %w", err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return p, nil
}

// Validate checks that every set field is within its documented range.
func (p *Params) Validate() error {
	if p.MinPix != nil && *p.MinPix < 1 {
		return fmt.Errorf("%w: minpix must be >= 1, got %d", ErrParameterOutOfRange, *p.MinPix)
	}
	if p.Connectivity != nil && *p.Connectivity != 4 && *p.Connectivity != 8 {
		return fmt.Errorf("%w: connectivity must be 4 or 8, got %d", ErrParameterOutOfRange, *p.Connectivity)
	}
	if p.Alpha != nil && (*p.Alpha < 0 || *p.Alpha > 1) {
		return fmt.Errorf("%w: alpha must be in [0, 1], got %g", ErrParameterOutOfRange, *p.Alpha)
	}
	if p.CutOff != nil && *p.CutOff < 0 {
		return fmt.Errorf("%w: cut_off must be non-negative, got %d", ErrParameterOutOfRange, *p.CutOff)
	}
	if p.Resolution != nil && *p.Resolution < 2 {
		return fmt.Errorf("%w: resolution must be >= 2, got %d", ErrParameterOutOfRange, *p.Resolution)
	}
	if p.NPhases != nil && *p.NPhases < 1 {
		return fmt.Errorf("%w: n_phases must be >= 1, got %d", ErrParameterOutOfRange, *p.NPhases)
	}
	if p.EarthRadiusKm != nil && *p.EarthRadiusKm <= 0 {
		return fmt.Errorf("%w: earth_radius must be positive, got %g", ErrParameterOutOfRange, *p.EarthRadiusKm)
	}
	if p.CompositeMethod != nil {
		switch CompositeMethod(*p.CompositeMethod) {
		case CompositeMean, CompositeMedian, CompositeStd:
		default:
			return fmt.Errorf("%w: composite_method must be mean, median or std, got %q", ErrParameterOutOfRange, *p.CompositeMethod)
		}
	}
	if p.CloseOpenRadius != nil && *p.CloseOpenRadius < 0 {
		return fmt.Errorf("%w: close_open_radius must be non-negative, got %d", ErrParameterOutOfRange, *p.CloseOpenRadius)
	}
	return nil
}

// GetMinPix returns the minpix value or the default.
func (p *Params) GetMinPix() int {
	if p.MinPix == nil {
		return 10
	}
	return *p.MinPix
}

// GetConnectivity returns the connectivity value or the default.
func (p *Params) GetConnectivity() int {
	if p.Connectivity == nil {
		return 8
	}
	return *p.Connectivity
}

// GetAlpha returns the overlap threshold or the default.
func (p *Params) GetAlpha() float64 {
	if p.Alpha == nil {
		return 0.5
	}
	return *p.Alpha
}

// GetCutOff returns the minimum archive duration in days, 0 when disabled.
func (p *Params) GetCutOff() int {
	if p.CutOff == nil {
		return 0
	}
	return *p.CutOff
}

// GetResolution returns the polar grid resolution or the default.
func (p *Params) GetResolution() int {
	if p.Resolution == nil {
		return 50
	}
	return *p.Resolution
}

// GetNPhases returns the lifecycle phase count or the default.
func (p *Params) GetNPhases() int {
	if p.NPhases == nil {
		return 5
	}
	return *p.NPhases
}

// GetEarthRadiusKm returns the geodesic radius in km or the default.
func (p *Params) GetEarthRadiusKm() float64 {
	if p.EarthRadiusKm == nil {
		return 6371.0
	}
	return *p.EarthRadiusKm
}

// GetCompositeMethod returns the composite method or the default.
func (p *Params) GetCompositeMethod() CompositeMethod {
	if p.CompositeMethod == nil {
		return CompositeMean
	}
	return CompositeMethod(*p.CompositeMethod)
}

// GetCloseOpenRadius returns the morphological disc radius used by the
// volume labelling mode, 0 when the filter is disabled.
func (p *Params) GetCloseOpenRadius() int {
	if p.CloseOpenRadius == nil {
		return 0
	}
	return *p.CloseOpenRadius
}
