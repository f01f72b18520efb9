package harp

import (
	"os"
	"sync"

	"github.com/BurntSushi/toml"
)

// OutOfBoundsPolicy controls how point regridding (§4.E.2) handles target
// points that fall outside the source grid.
type OutOfBoundsPolicy int

const (
	// OutOfBoundsNaN returns NaN for out-of-range target points.
	OutOfBoundsNaN OutOfBoundsPolicy = iota
	// OutOfBoundsClampToEdge repeats the nearest source value.
	OutOfBoundsClampToEdge
	// OutOfBoundsExtrapolateLinear linearly (or log-linearly) extrapolates
	// from the nearest two source points.
	OutOfBoundsExtrapolateLinear
)

// Context holds the process-wide settings of §5: the unit database
// location, the two climatology enable flags, and the regrid
// out-of-bounds policy. Per the Design Notes ("unit system as singleton"),
// this is a handle owned by the caller rather than hidden global state;
// DefaultContext lazily creates a shared instance for callers that don't
// need isolation, but every operation in this package accepts an explicit
// *Context so concurrent, independently-configured callers are possible.
//
// Changing a Context's fields while an operation that reads them is in
// flight is undefined, per §5.
type Context struct {
	UnitDatabasePath     string
	ClimatologyUSStd76   bool
	ClimatologyAFGL86    bool
	RegridOutOfBounds    OutOfBoundsPolicy
	PropagateUncertainty bool

	// climatology is lazily created by Climatology() the first time either
	// flag above is set; it is nil when both are false.
	climatology Climatology
}

// Climatology returns the Context's reference-profile source, or nil if
// neither ClimatologyUSStd76 nor ClimatologyAFGL86 is enabled. The current
// implementation backs both flags with the same in-memory stub (§12 item
// 6); AFGL86Profile additionally takes the datetime/latitude the
// US-Standard-76 profile ignores.
func (c *Context) Climatology() Climatology {
	if !c.ClimatologyUSStd76 && !c.ClimatologyAFGL86 {
		return nil
	}
	if c.climatology == nil {
		c.climatology = NewStubClimatology()
	}
	return c.climatology
}

// NewContext returns a Context with the documented defaults: no unit
// database override, both climatologies disabled, NaN on out-of-bounds
// regridding, and PropagateUncertainty off, so "_uncertainty" variables
// bin as root-sum-square uncertainties (matching harp-bin.c's default
// binning_type resolution for them, §4.D).
func NewContext() *Context {
	return &Context{}
}

type tomlContext struct {
	UnitDatabasePath     string `toml:"unit_database_path"`
	ClimatologyUSStd76   bool   `toml:"climatology_usstd76"`
	ClimatologyAFGL86    bool   `toml:"climatology_afgl86"`
	RegridOutOfBounds    string `toml:"regrid_out_of_bounds"`
	PropagateUncertainty bool   `toml:"propagate_uncertainty"`
}

// LoadContext decodes a Context from a TOML settings file, the way
// spatialmodel-inmap's own configuration tooling loads run settings.
func LoadContext(path string) (*Context, error) {
	var tc tomlContext
	if _, err := toml.DecodeFile(path, &tc); err != nil {
		return nil, Wrap(err, "loading harp context from %q", path)
	}
	ctx := NewContext()
	ctx.UnitDatabasePath = tc.UnitDatabasePath
	ctx.ClimatologyUSStd76 = tc.ClimatologyUSStd76
	ctx.ClimatologyAFGL86 = tc.ClimatologyAFGL86
	ctx.PropagateUncertainty = tc.PropagateUncertainty
	switch tc.RegridOutOfBounds {
	case "", "nan":
		ctx.RegridOutOfBounds = OutOfBoundsNaN
	case "clamp_to_edge":
		ctx.RegridOutOfBounds = OutOfBoundsClampToEdge
	case "extrapolate_linear":
		ctx.RegridOutOfBounds = OutOfBoundsExtrapolateLinear
	default:
		return nil, Errorf(KindInvalidArgument, "unknown regrid_out_of_bounds policy %q", tc.RegridOutOfBounds)
	}
	return ctx, nil
}

var (
	defaultContextOnce sync.Once
	defaultContext      *Context
)

// DefaultContext returns the lazily-initialized process-wide Context, for
// callers (typically single-binary CLIs) that don't need to isolate
// settings across goroutines. If the environment variable
// HARP_CONTEXT_FILE names a readable TOML file, it is used to populate the
// singleton on first access; otherwise NewContext's defaults apply.
func DefaultContext() *Context {
	defaultContextOnce.Do(func() {
		if path := os.Getenv("HARP_CONTEXT_FILE"); path != "" {
			if ctx, err := LoadContext(path); err == nil {
				defaultContext = ctx
				return
			}
		}
		defaultContext = NewContext()
	})
	return defaultContext
}
