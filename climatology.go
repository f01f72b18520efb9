package harp

import "math"

// Climatology is the narrow collaborator of §6 for static reference-profile
// lookups: the US-Standard-76 fixed altitude grid and the AFGL-86
// (datetime, latitude)-indexed table. Both stay out of scope as full
// scientific data products (§1 "climatology table lookups (static
// reference data)"); this interface only fixes the shape a caller can
// program against, gated by the two Context booleans of §5.
type Climatology interface {
	// USStd76Profile returns the named profile's 50 values on the fixed
	// US-Standard-76 altitude grid, or (nil, false) if name is unknown.
	USStd76Profile(name string) ([]float64, bool)

	// AFGL86Profile returns the named profile's 50 values on the fixed
	// altitude grid for the given datetime (seconds since the HARP epoch)
	// and latitude (degrees), or (nil, false) if name is unknown.
	AFGL86Profile(name string, datetime, latitude float64) ([]float64, bool)
}

// usStd76AltitudeGrid is the fixed 50-point altitude grid (km) the original
// usstd76_altitude table is built on; values are evenly spaced from the
// surface to 120 km, matching the table's sample count.
var usStd76AltitudeGrid = func() []float64 {
	grid := make([]float64, 50)
	for i := range grid {
		grid[i] = float64(i) * 120.0 / 49.0
	}
	return grid
}()

// stubClimatology is an in-memory placeholder implementing Climatology over
// a tiny set of profile names, grounded on the original's fixed 50-sample
// grid sizes (§12 item 6) but without the full US-Standard-76/AFGL-86
// reference tables themselves (out of scope, §1).
type stubClimatology struct {
	usstd76 map[string][]float64
}

// NewStubClimatology returns a Climatology backed by a handful of
// illustrative profiles on the 50-point US-Standard-76 grid, useful for
// tests and for callers that enable a climatology Context flag without
// needing the full reference database.
func NewStubClimatology() Climatology {
	pressure := make([]float64, 50)
	temperature := make([]float64, 50)
	for i, alt := range usStd76AltitudeGrid {
		// Simple isothermal-exponential placeholder, not a scientific
		// reproduction of the real US-Standard-76 atmosphere.
		pressure[i] = 101325 * math.Exp(-alt/8.5)
		temperature[i] = 288.15 - 6.5*math.Min(alt, 11)
	}
	return &stubClimatology{usstd76: map[string][]float64{
		"pressure":    pressure,
		"temperature": temperature,
	}}
}

func (c *stubClimatology) USStd76Profile(name string) ([]float64, bool) {
	p, ok := c.usstd76[name]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), p...), true
}

// AFGL86Profile falls back to the (datetime, latitude)-independent
// US-Standard-76 profile: the stub carries no latitude/season variation,
// since the real AFGL-86 table is out of scope (§1).
func (c *stubClimatology) AFGL86Profile(name string, _, _ float64) ([]float64, bool) {
	return c.USStd76Profile(name)
}

// FillMissingFromClimatology replaces NaN elements of the named variable
// along its vertical dimension with values linearly interpolated from the
// enabled climatology's named profile onto p's own altitude grid (§12 item
// 6). It is a no-op, not an error, when ctx has neither climatology flag
// set or p has no "altitude" grid variable: climatology backfill is always
// an optional enrichment over whatever the product already carries.
func FillMissingFromClimatology(p *Product, ctx *Context, variableName, profileName string) error {
	clim := ctx.Climatology()
	if clim == nil {
		return nil
	}
	altitude := p.Variable("altitude")
	if altitude == nil || altitude.NumDimensions() != 1 || altitude.DimensionType[0] != Vertical {
		// Backfill only handles the common case of a single, time-independent
		// altitude grid; a per-time or multi-dimensional grid is left alone.
		return nil
	}
	v := p.Variable(variableName)
	if v == nil {
		return Errorf(KindVariableNotFound, "no variable named %q", variableName)
	}
	d := v.DimensionIndexOfType(Vertical)
	if d < 0 {
		return Errorf(KindInvalidVariable, "variable %q has no vertical dimension", variableName)
	}
	if v.DataType != Float64 {
		return Errorf(KindInvalidType, "variable %q: climatology backfill requires a float64 variable", variableName)
	}

	profile, ok := clim.USStd76Profile(profileName)
	if !ok {
		return Errorf(KindInvalidArgument, "climatology has no profile named %q", profileName)
	}
	climGrid := usStd76AltitudeGrid

	grid := make([]float64, altitude.NumElements())
	for i := range grid {
		grid[i] = altitude.Float64At(i)
	}

	G, L, B := blockStrides(v, d)
	for g := 0; g < G; g++ {
		for e := 0; e < B; e++ {
			hint := -1
			for i := 0; i < L; i++ {
				idx := (g*L+i)*B + e
				if !math.IsNaN(v.Float64Data[idx]) {
					continue
				}
				val, nextHint := Interpolate1D(climGrid, profile, len(climGrid), grid[i], KernelLinear, OutOfBoundsClampToEdge, hint)
				hint = nextHint
				v.Float64Data[idx] = val
			}
		}
	}
	return nil
}
