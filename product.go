package harp

import "math"

// Product is an ordered collection of uniquely-named variables sharing a
// dimension-length table for the five named dimension types, plus the two
// free-text provenance strings of §3.
type Product struct {
	SourceProduct string
	History       string

	variables []*Variable
	index     map[string]int
	dimension map[DimensionType]int
}

// NewProduct returns an empty product.
func NewProduct() *Product {
	return &Product{
		index:     make(map[string]int),
		dimension: make(map[DimensionType]int),
	}
}

// Variables returns the product's variables in insertion order. The slice
// is owned by the caller's view only — mutate variables through the
// Product's own methods (AddVariable/RemoveVariable) rather than by
// appending to or reslicing the returned slice.
func (p *Product) Variables() []*Variable {
	return p.variables
}

// Variable returns the named variable, or nil if it doesn't exist.
func (p *Product) Variable(name string) *Variable {
	if i, ok := p.index[name]; ok {
		return p.variables[i]
	}
	return nil
}

// HasVariable reports whether a variable with the given name exists.
func (p *Product) HasVariable(name string) bool {
	_, ok := p.index[name]
	return ok
}

// Dimension returns the product-level length recorded for the named
// dimension type t (zero if no variable uses t). Independent is not a
// valid argument and always returns zero.
func (p *Product) Dimension(t DimensionType) int {
	return p.dimension[t]
}

// AddVariable inserts v into the product, enforcing name uniqueness and
// the named-dimension length coherence invariant of §3/§8: every named
// dimension of v must match the product's existing length for that type,
// or (if the product has no prior user of that type) establishes it.
func (p *Product) AddVariable(v *Variable) error {
	if _, exists := p.index[v.Name]; exists {
		return Errorf(KindInvalidName, "product already has a variable named %q", v.Name)
	}
	if err := v.Verify(); err != nil {
		return err
	}
	for i, dt := range v.DimensionType {
		if !dt.IsNamed() {
			continue
		}
		if existing, ok := p.dimension[dt]; ok {
			if existing != v.Dimension[i] {
				return Errorf(KindArrayDimsMismatch,
					"variable %q: dimension %s length %d does not match product length %d",
					v.Name, dt, v.Dimension[i], existing)
			}
		} else {
			p.dimension[dt] = v.Dimension[i]
		}
	}
	p.index[v.Name] = len(p.variables)
	p.variables = append(p.variables, v)
	return nil
}

// RemoveVariable drops the named variable from the product, recomputing
// any named-dimension length that is no longer used by any remaining
// variable back to zero (§3 invariant: dimension[t] is zero iff no
// variable uses t).
func (p *Product) RemoveVariable(name string) error {
	i, ok := p.index[name]
	if !ok {
		return Errorf(KindVariableNotFound, "no variable named %q", name)
	}
	p.variables = append(p.variables[:i], p.variables[i+1:]...)
	delete(p.index, name)
	for j := i; j < len(p.variables); j++ {
		p.index[p.variables[j].Name] = j
	}
	p.recomputeDimensions()
	return nil
}

func (p *Product) recomputeDimensions() {
	next := make(map[DimensionType]int)
	for _, v := range p.variables {
		for i, dt := range v.DimensionType {
			if dt.IsNamed() {
				next[dt] = v.Dimension[i]
			}
		}
	}
	p.dimension = next
}

// SetDimension forcibly sets the product-level length for a named
// dimension type without touching any variable. This is used by binning
// (§4.D post-pass, "reset the product's time dimension length to K") where
// the product-level bookkeeping changes in lockstep with, but logically
// ahead of, the per-variable rearrange that actually resizes the data.
func (p *Product) SetDimension(t DimensionType, length int) {
	if length <= 0 {
		delete(p.dimension, t)
		return
	}
	p.dimension[t] = length
}

// Verify validates every variable and the cross-variable dimension
// coherence invariant of §3/§8.
func (p *Product) Verify() error {
	seen := map[string]bool{}
	lengths := map[DimensionType]int{}
	used := map[DimensionType]bool{}
	for _, v := range p.variables {
		if seen[v.Name] {
			return Errorf(KindInvalidVariable, "duplicate variable name %q", v.Name)
		}
		seen[v.Name] = true
		if err := v.Verify(); err != nil {
			return err
		}
		for i, dt := range v.DimensionType {
			if !dt.IsNamed() {
				continue
			}
			used[dt] = true
			if l, ok := lengths[dt]; ok && l != v.Dimension[i] {
				return Errorf(KindArrayDimsMismatch, "dimension %s has inconsistent lengths across the product", dt)
			}
			lengths[dt] = v.Dimension[i]
		}
	}
	for _, dt := range namedDimensionTypes {
		if used[dt] && p.dimension[dt] != lengths[dt] {
			return Errorf(KindArrayDimsMismatch, "product dimension table disagrees with variable %s length", dt)
		}
		if !used[dt] && p.dimension[dt] != 0 {
			return Errorf(KindArrayDimsMismatch, "product records a length for unused dimension %s", dt)
		}
	}
	return nil
}

// Metadata computes the lightweight companion of §3, used by external I/O
// layers that only need shape/provenance without loading full data.
func (p *Product) Metadata(filename string) *ProductMetadata {
	m := &ProductMetadata{
		Filename:      filename,
		SourceProduct: p.SourceProduct,
		History:       p.History,
		DatetimeStart: math.Inf(1),
		DatetimeStop:  math.Inf(-1),
		Dimension:     make(map[DimensionType]int, len(p.dimension)),
	}
	for t, l := range p.dimension {
		m.Dimension[t] = l
	}
	if v := p.Variable("datetime_start"); v != nil && v.DataType.IsFloating() && v.NumElements() > 0 {
		min := math.Inf(1)
		for i := 0; i < v.NumElements(); i++ {
			if x := v.Float64At(i); x < min {
				min = x
			}
		}
		m.DatetimeStart = min
	}
	if v := p.Variable("datetime_stop"); v != nil && v.DataType.IsFloating() && v.NumElements() > 0 {
		max := math.Inf(-1)
		for i := 0; i < v.NumElements(); i++ {
			if x := v.Float64At(i); x > max {
				max = x
			}
		}
		m.DatetimeStop = max
	}
	return m
}
