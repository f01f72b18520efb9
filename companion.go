package harp

// CompanionKind identifies the role a companion variable plays relative to
// its parent (§9 Design Notes, "Companion-variable lookup").
type CompanionKind int

const (
	CompanionCount CompanionKind = iota
	CompanionWeight
)

func (k CompanionKind) suffix() string {
	switch k {
	case CompanionCount:
		return "_count"
	case CompanionWeight:
		return "_weight"
	default:
		return ""
	}
}

// Companion locates the variable that carries per-element aggregation
// metadata for the variable named name: `<name>_count` or `<name>_weight`.
// This is the single lookup point the Design Notes call for, replacing the
// ad hoc string-suffix search scattered through the original's binning and
// regridding loops.
func (p *Product) Companion(name string, kind CompanionKind) (*Variable, bool) {
	v := p.Variable(name + kind.suffix())
	return v, v != nil
}

// WeightOrCount returns the weight companion of name if present, else the
// count companion, else (nil, false, false). The second bool reports
// whether what was found is a weight (true) or a count (false); it is
// only meaningful when the first bool is true. This mirrors §4.D's
// "weight takes precedence over count; if neither exists, use count=1
// everywhere" policy.
func (p *Product) WeightOrCount(name string) (companion *Variable, isWeight bool, found bool) {
	if v, ok := p.Companion(name, CompanionWeight); ok {
		return v, true, true
	}
	if v, ok := p.Companion(name, CompanionCount); ok {
		return v, false, true
	}
	return nil, false, false
}
