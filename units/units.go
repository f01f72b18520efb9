// Package units implements the narrow unit-library collaborator of §6:
// parse(string) → unit, compatible(a,b) → bool, compare(a,b) → order, and
// converter(from,to) → func(float64) float64. The empty string parses as
// "1" (dimensionless), matching §6.
//
// The dimension algebra (which base dimensions a unit carries, and at what
// power) is modeled with github.com/ctessum/unit's Dimensions type, the
// same package spatialmodel-inmap uses to keep physical quantities honest.
// That package doesn't parse UDUNITS-2 strings itself — it only exposes
// constructors for predefined physical dimensions — so the symbol table
// and compound-expression parser below are this package's own addition,
// built against an AmountDim (for "mol") that github.com/ctessum/unit lacks.
//
// UDUNITS-2's C implementation forces the C locale around its internal
// strtod calls because its number parsing is locale-sensitive; Go's
// strconv is always locale-independent, so there is no equivalent
// work-around here — not an oversight, just a non-issue in this runtime.
package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ctessum/unit"
)

// AmountDim is the "amount of substance" dimension (mole), which
// github.com/ctessum/unit doesn't predefine because it targets physical
// atmospheric-dispersion quantities rather than chemistry mixing ratios.
var AmountDim = unit.NewDimension("mol")

// Unit is an opaque parsed unit: a multiplicative scale factor and offset
// (for affine units like degC) relative to the unit's SI base, plus its
// dimension vector.
type Unit struct {
	symbol     string
	dimensions unit.Dimensions
	scale      float64
	offset     float64
}

func (u *Unit) String() string { return u.symbol }

// Dimensionless is the parse result of "" and "1".
var Dimensionless = &Unit{symbol: "1", dimensions: unit.Dimless, scale: 1}

type unitDef struct {
	dims   unit.Dimensions
	scale  float64 // multiply by scale to get the SI base value
	offset float64 // SI = (value + offset) * scale; only degC has one, applied before scaling
}

// baseUnits is the symbol table of recognized unprefixed unit symbols.
// Coverage is deliberately limited to the quantities harp's own variables
// use (pressure, angle, length, time, mixing ratio, column density), not a
// general UDUNITS-2 database.
var baseUnits = map[string]unitDef{
	"1":        {dims: unit.Dimless, scale: 1},
	"%":        {dims: unit.Dimless, scale: 0.01},
	"ppm":      {dims: unit.Dimless, scale: 1e-6},
	"ppb":      {dims: unit.Dimless, scale: 1e-9},
	"ppt":      {dims: unit.Dimless, scale: 1e-12},
	"m":        {dims: unit.Meter, scale: 1},
	"km":       {dims: unit.Meter, scale: 1000},
	"cm":       {dims: unit.Meter, scale: 0.01},
	"mm":       {dims: unit.Meter, scale: 0.001},
	"s":        {dims: unit.Second, scale: 1},
	"min":      {dims: unit.Second, scale: 60},
	"h":        {dims: unit.Second, scale: 3600},
	"hr":       {dims: unit.Second, scale: 3600},
	"d":        {dims: unit.Second, scale: 86400},
	"Pa":       {dims: unit.Pascal, scale: 1},
	"hPa":      {dims: unit.Pascal, scale: 100},
	"mbar":     {dims: unit.Pascal, scale: 100},
	"bar":      {dims: unit.Pascal, scale: 1e5},
	"atm":      {dims: unit.Pascal, scale: 101325},
	"K":        {dims: unit.Kelvin, scale: 1},
	"degC":     {dims: unit.Kelvin, scale: 1, offset: 273.15},
	"kg":       {dims: unit.Kilogram, scale: 1},
	"g":        {dims: unit.Kilogram, scale: 0.001},
	"mol":      {dims: unit.Dimensions{AmountDim: 1}, scale: 1},
	"molecule": {dims: unit.Dimensions{AmountDim: 1}, scale: 1 / 6.02214076e23},
	"degree":   {dims: unit.Dimensions{unit.AngleDim: 1}, scale: math.Pi / 180},
	"radian":   {dims: unit.Dimensions{unit.AngleDim: 1}, scale: 1},
	"rad":      {dims: unit.Dimensions{unit.AngleDim: 1}, scale: 1},
	"DU":       {dims: unit.Dimensions{AmountDim: 1, unit.LengthDim: -2}, scale: 4.4615e-4},
	"sr":       {dims: unit.Dimensions{}, scale: 1},
	"W":        {dims: unit.Watt, scale: 1},
	"J":        {dims: unit.Joule, scale: 1},
	"Hz":       {dims: unit.Herz, scale: 1},
	"A":        {dims: unit.Dimensions{unit.CurrentDim: 1}, scale: 1},
	"cd":       {dims: unit.Dimensions{unit.LuminousIntensityDim: 1}, scale: 1},
}

// siPrefixes maps a recognized SI prefix to its multiplicative factor. Only
// symbols that start with one of these AND have the remaining suffix
// present in baseUnits are treated as prefixed; "m" itself is not
// reinterpreted as "milli-" + nothing.
var siPrefixes = []struct {
	prefix string
	factor float64
}{
	{"k", 1e3}, {"h", 1e2}, {"da", 1e1}, {"d", 1e-1}, {"c", 1e-2},
	{"m", 1e-3}, {"u", 1e-6}, {"µ", 1e-6}, {"n", 1e-9}, {"M", 1e6}, {"G", 1e9},
}

func lookupSymbol(sym string) (unitDef, bool) {
	if d, ok := baseUnits[sym]; ok {
		return d, true
	}
	for _, p := range siPrefixes {
		if strings.HasPrefix(sym, p.prefix) {
			rest := sym[len(p.prefix):]
			if d, ok := baseUnits[rest]; ok && d.offset == 0 {
				return unitDef{dims: d.dims, scale: d.scale * p.factor}, true
			}
		}
	}
	return unitDef{}, false
}

// term is one "symbol[exponent]" component of a compound unit expression,
// e.g. "m2", "s-1", "hPa".
func splitTerm(term string) (symbol string, exponent int, err error) {
	i := 0
	for i < len(term) && !((term[i] == '-' || (term[i] >= '0' && term[i] <= '9')) && i > 0) {
		i++
	}
	symbol = term[:i]
	if i == len(term) {
		return symbol, 1, nil
	}
	n, err := strconv.Atoi(term[i:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid exponent in unit term %q", term)
	}
	return symbol, n, nil
}

// Parse parses a UDUNITS-2-flavored compound unit expression: a
// whitespace/'.'-separated product of symbol[exponent] terms, with an
// optional single '/' dividing numerator terms from denominator terms
// (e.g. "mol m-2 s-1", "hPa", "kg.m-2", "mol/mol"). The empty string and
// "1" both mean dimensionless, per §6.
func Parse(s string) (*Unit, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "1" {
		return Dimensionless, nil
	}
	numerator, denominator := s, ""
	if i := strings.Index(s, "/"); i >= 0 {
		numerator, denominator = s[:i], s[i+1:]
	}
	dims := unit.Dimensions{}
	scale := 1.0
	var offset float64
	var hasOffset bool
	apply := func(part string, sign int) error {
		if part == "" {
			return nil
		}
		for _, term := range splitTerms(part) {
			symbol, exponent, err := splitTerm(term)
			if err != nil {
				return err
			}
			def, ok := lookupSymbol(symbol)
			if !ok {
				return fmt.Errorf("unrecognized unit symbol %q in %q", symbol, s)
			}
			if def.offset != 0 {
				if exponent*sign != 1 || hasOffset {
					return fmt.Errorf("affine unit %q cannot be combined in a compound expression", symbol)
				}
				offset = def.offset
				hasOffset = true
			}
			for dim, p := range def.dims {
				dims[dim] += p * exponent * sign
			}
			scale *= math.Pow(def.scale, float64(exponent*sign))
		}
		return nil
	}
	if err := apply(numerator, 1); err != nil {
		return nil, err
	}
	if err := apply(denominator, -1); err != nil {
		return nil, err
	}
	for dim, p := range dims {
		if p == 0 {
			delete(dims, dim)
		}
	}
	return &Unit{symbol: s, dimensions: dims, scale: scale, offset: offset}, nil
}

func splitTerms(s string) []string {
	s = strings.ReplaceAll(s, ".", " ")
	return strings.Fields(s)
}

// Compatible reports whether a and b have the same dimension vector and
// can therefore be converted between.
func Compatible(a, b *Unit) bool {
	return a.dimensions.Matches(b.dimensions)
}

// Order is the three-way result of Compare.
type Order int

const (
	Less Order = -1
	Equal Order = 0
	Greater Order = 1
)

// Compare orders two compatible units by their SI scale factor (a larger
// scale factor means one unit of a is a larger physical quantity than one
// unit of b). It is an error to compare incompatible units.
func Compare(a, b *Unit) (Order, error) {
	if !Compatible(a, b) {
		return 0, fmt.Errorf("units %q and %q are not compatible", a.symbol, b.symbol)
	}
	switch {
	case a.scale < b.scale:
		return Less, nil
	case a.scale > b.scale:
		return Greater, nil
	default:
		return Equal, nil
	}
}

// Converter returns a function mapping values expressed in `from` to the
// equivalent value expressed in `to`. Both units must share the same
// dimension vector.
func Converter(from, to *Unit) (func(float64) float64, error) {
	if !Compatible(from, to) {
		return nil, fmt.Errorf("cannot convert %q to %q: incompatible dimensions", from.symbol, to.symbol)
	}
	return func(v float64) float64 {
		si := (v + from.offset) * from.scale
		return si/to.scale - to.offset
	}, nil
}
