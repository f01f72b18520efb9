package harp

import (
	"math"
	"strings"

	"github.com/stcorp/harp-sub000/internal/numeric"
)

// RebinKind is the per-variable classification of §4.E.1.
type RebinKind int

const (
	RebinSkip RebinKind = iota
	RebinRemove
	RebinWeight
	RebinAngle
	RebinSum
	RebinAverage
)

func isPartialColumnSumName(name string) bool {
	if !strings.Contains(name, "_column_") {
		return false
	}
	for _, suffix := range []string{"_density", "_apriori", "_avk", "_dfs"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

func is1DColumnAVK(v *Variable, axis DimensionType) bool {
	return strings.HasSuffix(v.Name, "_avk") && v.NumDimensions() == 1 && v.DimensionType[0] == axis
}

func classifyRebin(v *Variable, axis DimensionType) RebinKind {
	if !v.HasDimensionType(axis) {
		return RebinSkip
	}
	count := 0
	for _, dt := range v.DimensionType {
		if dt == axis {
			count++
		}
	}
	if count > 1 {
		return RebinRemove
	}
	name := v.Name
	switch {
	case v.DataType == String:
		return RebinRemove
	case !v.HasUnit:
		return RebinRemove
	case len(v.EnumValues) > 0:
		return RebinRemove
	case strings.HasSuffix(name, "_bounds") && name != axis.String()+"_bounds":
		return RebinRemove
	case strings.HasSuffix(name, "_avk") && !is1DColumnAVK(v, axis):
		return RebinRemove
	case strings.HasSuffix(name, "count") && v.DataType == Int32 && !v.HasUnit:
		return RebinRemove
	}
	if strings.HasSuffix(name, "count") && v.DataType == Int32 {
		return RebinWeight
	}
	if strings.HasSuffix(name, "weight") && v.DataType == Float32 {
		return RebinWeight
	}
	lower := strings.ToLower(name)
	if strings.Contains(lower, "latitude") || strings.Contains(lower, "longitude") ||
		strings.Contains(lower, "angle") || strings.Contains(lower, "direction") {
		return RebinAngle
	}
	if isPartialColumnSumName(name) {
		return RebinSum
	}
	return RebinAverage
}

// overlapTable is the flattened per-target-cell overlap map of §4.E.1.
type overlapTable struct {
	index  []int
	weight []float64
	offset []int
	length []int
}

// buildOverlapTable computes, for each of the D target intervals, the list
// of source interval indices it overlaps and the corresponding overlap
// fraction (overlap length / source interval length).
func buildOverlapTable(sourceBounds, targetBounds [][2]float64) *overlapTable {
	t := &overlapTable{offset: make([]int, len(targetBounds)+1)}
	for j, tb := range targetBounds {
		minB, maxB := tb[0], tb[1]
		if minB > maxB {
			minB, maxB = maxB, minB
		}
		for k, sb := range sourceBounds {
			minA, maxA := sb[0], sb[1]
			if minA > maxA {
				minA, maxA = maxA, minA
			}
			lo := math.Max(minA, minB)
			hi := math.Min(maxA, maxB)
			if hi <= lo {
				continue
			}
			denom := maxA - minA
			if denom == 0 {
				continue
			}
			t.index = append(t.index, k)
			t.weight = append(t.weight, (hi-lo)/denom)
		}
		t.offset[j+1] = len(t.index)
	}
	t.length = make([]int, len(targetBounds))
	for j := range targetBounds {
		t.length[j] = t.offset[j+1] - t.offset[j]
	}
	return t
}

func (t *overlapTable) cell(j int) ([]int, []float64) {
	o, l := t.offset[j], t.length[j]
	return t.index[o : o+l], t.weight[o : o+l]
}

// RebinOptions carries the axis and bounds inputs of §4.E.1.
// TargetBoundsByTime, when non-nil, supplies one target-bounds row per
// time slice in preference to the time-independent TargetBounds, and may
// be combined with either a time-independent or time-dependent source
// bounds variable (§12.3's four combinations).
type RebinOptions struct {
	Axis               DimensionType
	TargetBounds       [][2]float64
	TargetBoundsByTime [][][2]float64
	AxisIsPressure     bool
}

// Rebin maps the variables of p that vary along opts.Axis from their
// current bounds onto opts.TargetBounds (or opts.TargetBoundsByTime) using
// area-overlap-weighted aggregation. p is mutated in place; the target
// bounds variable (<axis>_bounds) is present in p on return.
func Rebin(p *Product, opts RebinOptions, ctx *Context) error {
	if ctx == nil {
		ctx = NewContext()
	}
	axis := opts.Axis
	boundsName := axis.String() + "_bounds"
	sourceBoundsVar := p.Variable(boundsName)
	if sourceBoundsVar == nil {
		return Errorf(KindVariableNotFound, "no %q variable to rebin against", boundsName)
	}
	L := p.Dimension(axis)

	var targetBounds [][2]float64
	if opts.TargetBoundsByTime != nil {
		targetBounds = opts.TargetBoundsByTime[0]
		for i, row := range opts.TargetBoundsByTime {
			if len(row) != len(targetBounds) {
				return Errorf(KindArrayDimsMismatch, "rebin: target bounds at time %d has length %d, time 0 has %d", i, len(row), len(targetBounds))
			}
		}
	} else {
		targetBounds = opts.TargetBounds
	}
	D := len(targetBounds)

	tableFor, err := resolveBoundsPair(sourceBoundsVar, L, opts)
	if err != nil {
		return err
	}

	kinds := make(map[string]RebinKind, len(p.Variables()))
	for _, v := range p.Variables() {
		kinds[v.Name] = classifyRebin(v, axis)
	}
	if err := p.RemoveVariable(boundsName); err != nil {
		return err
	}

	M := L
	if D > M {
		M = D
	}
	axisIdx := make(map[string]int)
	for _, v := range p.Variables() {
		k := kinds[v.Name]
		if k == RebinSkip || k == RebinRemove {
			continue
		}
		d := v.DimensionIndexOfType(axis)
		axisIdx[v.Name] = d
		if v.Dimension[d] != M {
			if err := v.ResizeDimension(d, M); err != nil {
				return err
			}
		}
		if v.DataType != Float64 && k != RebinWeight {
			if err := v.ConvertType(Float64); err != nil {
				return err
			}
		}
	}

	angleOriginalUnit := map[string]string{}
	for _, v := range p.Variables() {
		if kinds[v.Name] != RebinAngle {
			continue
		}
		d := axisIdx[v.Name]
		if err := prepareAngleAlongAxis(p, v, d, L, angleOriginalUnit, kinds, axisIdx); err != nil {
			return err
		}
	}

	for _, v := range p.Variables() {
		k := kinds[v.Name]
		d, ok := axisIdx[v.Name]
		if !ok {
			continue
		}
		switch k {
		case RebinAngle:
			aggregateRebinAngle(v, d, tableFor, D)
		case RebinSum:
			aggregateRebinSumOrAverage(v, d, tableFor, D, false, companionWeightArray(p, v.Name, v, d))
		case RebinAverage:
			aggregateRebinSumOrAverage(v, d, tableFor, D, true, companionWeightArray(p, v.Name, v, d))
		}
	}
	for _, v := range p.Variables() {
		if kinds[v.Name] != RebinWeight {
			continue
		}
		d := axisIdx[v.Name]
		aggregateRebinSumOrAverage(v, d, tableFor, D, false, nil)
	}

	for _, v := range p.Variables() {
		if kinds[v.Name] != RebinAngle {
			continue
		}
		d := axisIdx[v.Name]
		if err := finalizeAngleAlongAxis(p, v, d, angleOriginalUnit[v.Name]); err != nil {
			return err
		}
	}

	for _, v := range p.Variables() {
		k, ok := axisIdx[v.Name]
		_ = k
		if !ok {
			continue
		}
		d := axisIdx[v.Name]
		if v.Dimension[d] != D {
			if err := v.ResizeDimension(d, D); err != nil {
				return err
			}
		}
	}

	for i := len(p.Variables()) - 1; i >= 0; i-- {
		v := p.Variables()[i]
		if kinds[v.Name] == RebinRemove {
			if err := p.RemoveVariable(v.Name); err != nil {
				return err
			}
		}
	}

	p.SetDimension(axis, D)
	// targetBounds is always the caller-supplied, un-logged bounds (any
	// log-domain transform for the pressure special case happens only on
	// the local copies resolveBoundsPair builds for overlap computation,
	// per the Design Notes' "ensure the variable returned back to the
	// product is the original bounds, not the log-domain intermediate").
	nb, err := NewVariable(boundsName, Float64, []DimensionType{axis, Independent}, []int{D, 2})
	if err != nil {
		return err
	}
	for j, b := range targetBounds {
		nb.Float64Data[j*2] = b[0]
		nb.Float64Data[j*2+1] = b[1]
	}
	return p.AddVariable(nb)
}

// readBoundsPairs reads one [D,2] slice (starting at the given flat offset,
// in elements) of a bounds variable into D (lower,upper) pairs.
func readBoundsPairs(v *Variable, offset, D int) [][2]float64 {
	out := make([][2]float64, D)
	for i := 0; i < D; i++ {
		out[i][0] = v.Float64At(offset + i*2)
		out[i][1] = v.Float64At(offset + i*2 + 1)
	}
	return out
}

// resolveBoundsPair implements §12.3's source/target bounds resolution: the
// source bounds variable may be time-independent ([L,2]) or time-dependent
// ([time,L,2]); the caller-supplied target bounds may likewise be
// time-independent (opts.TargetBounds) or time-dependent
// (opts.TargetBoundsByTime). It builds one overlap table per distinct time
// slice (or a single shared table when neither side is time-dependent) and
// returns tableFor(g), where g is the *group* index from blockStrides for
// the axis being rebinned — for every variable shape this library rebins,
// the axis directly follows the time dimension (or there is no time
// dimension at all), so g coincides with the time index whenever one
// exists. The pressure special case (opts.AxisIsPressure) log-transforms
// both sides before computing overlaps; the bounds returned to the caller
// elsewhere in Rebin are always the original, un-logged values.
func resolveBoundsPair(sourceBoundsVar *Variable, L int, opts RebinOptions) (tableFor func(g int) *overlapTable, err error) {
	srcTimeDependent := sourceBoundsVar.NumDimensions() == 3 && sourceBoundsVar.DimensionType[0] == Time
	if sourceBoundsVar.Dimension[sourceBoundsVar.NumDimensions()-1] != 2 {
		return nil, Errorf(KindInvalidVariable, "variable %q is not a bounds variable", sourceBoundsVar.Name)
	}
	if d := sourceBoundsVar.Dimension[sourceBoundsVar.NumDimensions()-2]; d != L {
		return nil, Errorf(KindArrayDimsMismatch, "bounds variable %q has length %d, axis has length %d", sourceBoundsVar.Name, d, L)
	}

	tgtTimeDependent := opts.TargetBoundsByTime != nil
	var targetRow func(t int) [][2]float64
	if tgtTimeDependent {
		targetRow = func(t int) [][2]float64 { return opts.TargetBoundsByTime[t] }
	} else {
		targetRow = func(int) [][2]float64 { return opts.TargetBounds }
	}

	numTimes := 1
	if srcTimeDependent {
		numTimes = sourceBoundsVar.Dimension[0]
	}
	if tgtTimeDependent {
		if srcTimeDependent && len(opts.TargetBoundsByTime) != numTimes {
			return nil, Errorf(KindArrayDimsMismatch, "rebin: time-dependent target bounds has %d slices, source has %d", len(opts.TargetBoundsByTime), numTimes)
		}
		numTimes = len(opts.TargetBoundsByTime)
	}
	timeDependent := srcTimeDependent || tgtTimeDependent

	logPair := func(pairs [][2]float64) [][2]float64 {
		if !opts.AxisIsPressure {
			return pairs
		}
		out := make([][2]float64, len(pairs))
		for i, b := range pairs {
			out[i] = [2]float64{math.Log(b[0]), math.Log(b[1])}
		}
		return out
	}

	sourceRow := func(t int) [][2]float64 {
		offset := 0
		if srcTimeDependent {
			offset = t * L * 2
		}
		return readBoundsPairs(sourceBoundsVar, offset, L)
	}

	tables := make([]*overlapTable, numTimes)
	for t := 0; t < numTimes; t++ {
		st, tt := 0, 0
		if srcTimeDependent {
			st = t
		}
		if tgtTimeDependent {
			tt = t
		}
		tables[t] = buildOverlapTable(logPair(sourceRow(st)), logPair(targetRow(tt)))
	}
	return func(g int) *overlapTable {
		if !timeDependent {
			return tables[0]
		}
		if g < 0 || g >= len(tables) {
			g = 0
		}
		return tables[g]
	}, nil
}

func prepareAngleAlongAxis(p *Product, v *Variable, axisDim, L int, originalUnit map[string]string, kinds map[string]RebinKind, axisIdx map[string]int) error {
	wname := v.Name + "_weight"
	w := p.Variable(wname)
	if w == nil {
		dims := append([]DimensionType(nil), v.DimensionType...)
		lens := append([]int(nil), v.Dimension...)
		// Float64 here (not Float32, the usual weight companion dtype) since
		// this variable is now also registered as RebinWeight and runs
		// through aggregateRebinSumOrAverage, which operates on Float64Data.
		nv, err := NewVariable(wname, Float64, dims, lens)
		if err != nil {
			return err
		}
		for i := range nv.Float64Data {
			nv.Float64Data[i] = 1
		}
		if err := p.AddVariable(nv); err != nil {
			return err
		}
		w = nv
		// The companion is created after the product-wide classify/resize
		// pass already ran, so it must be registered into both maps here
		// or it is silently skipped by every later pass keyed on them
		// (aggregation and the final down-size to D), leaving it at its
		// pre-rebin length and breaking dimension coherence.
		kinds[wname] = RebinWeight
		axisIdx[wname] = axisDim
	}
	originalUnit[v.Name] = v.Unit
	if v.HasUnit && v.Unit != "radian" && v.Unit != "rad" {
		if err := v.ConvertUnit("radian"); err != nil {
			return err
		}
	}
	if err := v.AddDimension(v.NumDimensions(), Independent, 2); err != nil {
		return err
	}
	// Each element is now a pair holding two copies of its angle; replace
	// it by its weighted unit-vector components for aggregateRebinAngle.
	n := v.NumElements() / 2
	for i := 0; i < n; i++ {
		wt := 1.0
		if w.NumElements() == n {
			wt = w.Float64At(i)
		}
		x, y, _ := numeric.CircularComponents(v.Float64Data[i*2], wt)
		v.Float64Data[i*2], v.Float64Data[i*2+1] = x, y
	}
	return nil
}

// companionWeightArray returns the per-(group, source-index) companion
// weight or count for name, flattened to length G*L where L is the
// current (already up-sized) length of axis d, or nil when no companion
// exists or its shape doesn't match (treated as all-ones by the caller).
func companionWeightArray(p *Product, name string, v *Variable, d int) []float64 {
	companion, _, found := p.WeightOrCount(name)
	if !found {
		return nil
	}
	G, L, _ := blockStrides(v, d)
	n := G * L
	if companion.NumElements() != n {
		return nil
	}
	w := make([]float64, n)
	for i := 0; i < n; i++ {
		w[i] = companion.Float64At(i)
	}
	return w
}

func aggregateRebinAngle(v *Variable, d int, tableFor func(g int) *overlapTable, D int) {
	G, L, B := blockStrides(v, d)
	half := B / 2
	out := make([]float64, G*D*B)
	for g := 0; g < G; g++ {
		table := tableFor(g)
		for j := 0; j < D; j++ {
			idx, weight := table.cell(j)
			for e := 0; e < half; e++ {
				var xsum, ysum float64
				for ki, srcIdx := range idx {
					if srcIdx >= L {
						continue
					}
					x := v.Float64Data[(g*L+srcIdx)*B+e*2]
					y := v.Float64Data[(g*L+srcIdx)*B+e*2+1]
					w := weight[ki]
					xsum += w * x
					ysum += w * y
				}
				out[(g*D+j)*B+e*2] = xsum
				out[(g*D+j)*B+e*2+1] = ysum
			}
		}
	}
	scatterGroupResult(v, G, L, B, D, out)
}

// scatterGroupResult writes the D-wide per-group result at the front of
// each group's (current, already up-sized to M) B-stride span, so that
// the caller's subsequent ResizeDimension(d, D) — which truncates every
// group to its first D blocks — keeps exactly these values.
func scatterGroupResult(v *Variable, G, M, B, D int, out []float64) {
	for g := 0; g < G; g++ {
		copy(v.Float64Data[g*M*B:g*M*B+D*B], out[g*D*B:(g+1)*D*B])
	}
}

// aggregateRebinSumOrAverage accumulates valuesum (and, for average,
// weightsum) over the overlap table, multiplying each contribution by the
// overlap fraction and by companionWeight[g*L+srcIdx] (the per-source
// companion weight/count, or 1 everywhere when companionWeight is nil).
func aggregateRebinSumOrAverage(v *Variable, d int, tableFor func(g int) *overlapTable, D int, average bool, companionWeight []float64) {
	G, L, B := blockStrides(v, d)
	out := make([]float64, G*D*B)
	weightsum := make([]float64, G*D)
	for g := 0; g < G; g++ {
		table := tableFor(g)
		for j := 0; j < D; j++ {
			idx, weight := table.cell(j)
			for k := 0; k < B; k++ {
				sum, wsum := 0.0, 0.0
				for ki, srcIdx := range idx {
					if srcIdx >= L {
						continue
					}
					val := v.Float64Data[(g*L+srcIdx)*B+k]
					if math.IsNaN(val) {
						continue
					}
					w := weight[ki]
					if companionWeight != nil {
						w *= companionWeight[g*L+srcIdx]
					}
					sum += w * val
					wsum += w
				}
				out[(g*D+j)*B+k] = sum
				if k == 0 {
					weightsum[g*D+j] = wsum
				}
			}
		}
	}
	if average {
		for g := 0; g < G; g++ {
			for j := 0; j < D; j++ {
				wsum := weightsum[g*D+j]
				for k := 0; k < B; k++ {
					idx := (g*D+j)*B + k
					if wsum == 0 {
						out[idx] = math.NaN()
					} else {
						out[idx] = out[idx] / wsum
					}
				}
			}
		}
	}
	scatterGroupResult(v, G, L, B, D, out)
}

func finalizeAngleAlongAxis(p *Product, v *Variable, d int, originalUnit string) error {
	w := p.Variable(v.Name + "_weight")
	G, M, B := blockStrides(v, d)
	half := B / 2
	theta := make([]float64, G*M*half)
	for g := 0; g < G; g++ {
		for j := 0; j < M; j++ {
			for e := 0; e < half; e++ {
				x := v.Float64Data[(g*M+j)*B+e*2]
				y := v.Float64Data[(g*M+j)*B+e*2+1]
				angle, magnitude := numeric.CircularMean(x, y)
				idx := (g*M+j)*half + e
				if magnitude == 0 {
					theta[idx] = math.NaN()
				} else {
					theta[idx] = angle
				}
				if w != nil {
					wIdx := (g*M + j)
					switch w.DataType {
					case Float32:
						w.Float32Data[wIdx] = float32(magnitude)
					case Float64:
						w.Float64Data[wIdx] = magnitude
					}
				}
			}
		}
	}
	if err := v.RemoveDimensionAt(v.NumDimensions()-1, 0); err != nil {
		return err
	}
	copy(v.Float64Data, theta)
	if originalUnit != "" && originalUnit != "radian" && originalUnit != "rad" {
		return v.ConvertUnit(originalUnit)
	}
	return nil
}
