package harp

import (
	"fmt"
	"math"
	"strings"

	"github.com/stcorp/harp-sub000/internal/numeric"
)

// BinningKind is the per-variable classification of §4.D.
type BinningKind int

const (
	BinSkip BinningKind = iota
	BinRemove
	BinWeight
	BinTimeMin
	BinTimeMax
	BinAngle
	BinUncertainty
	BinAverage
)

func isAveragingKernelName(name string) bool {
	return strings.HasSuffix(name, "_avk")
}

func isCountOrWeightName(name string) bool {
	return strings.HasSuffix(name, "count") || strings.HasSuffix(name, "weight")
}

// hasOversizedBoundsTrailer reports whether v is a latitude_bounds or
// longitude_bounds variable whose trailing independent dimension has
// length greater than 2 (more than a simple two-corner interval), per
// §4.D's remove condition.
func hasOversizedBoundsTrailer(v *Variable) bool {
	if v.Name != "latitude_bounds" && v.Name != "longitude_bounds" {
		return false
	}
	n := len(v.Dimension)
	if n == 0 {
		return false
	}
	return v.DimensionType[n-1] == Independent && v.Dimension[n-1] > 2
}

// isValidCompanionShape implements harp-bin.c's shape test for a count or
// weight companion variable: the leading dimension must be time, and only
// the bare name "count" is additionally required to be strictly 1-D.
func isValidCompanionShape(v *Variable) bool {
	if v.NumDimensions() == 0 || v.DimensionType[0] != Time {
		return false
	}
	if v.Name == "count" {
		return v.NumDimensions() == 1
	}
	return true
}

// classifyBinning implements the classifier table of §4.D. The ordering
// below follows the Design Notes' §9 resolution of the ambiguous source
// behavior: the count/weight name-and-type test runs before the
// string/enumeration remove test, so a variable that is both enumerated
// and named "..._count" is classified weight, not remove.
func classifyBinning(v *Variable, ctx *Context) BinningKind {
	if !v.HasDimensionType(Time) {
		return BinSkip
	}
	if v.DimensionType[0] != Time {
		return BinRemove
	}
	name := v.Name
	switch {
	case strings.HasSuffix(name, "count") && v.DataType == Int32 && !v.HasUnit && isValidCompanionShape(v):
		return BinWeight
	case strings.HasSuffix(name, "weight") && v.DataType == Float32 && !v.HasUnit && isValidCompanionShape(v):
		return BinWeight
	}
	switch {
	case v.DataType == String:
		return BinRemove
	case len(v.EnumValues) > 0:
		return BinRemove
	case isAveragingKernelName(name):
		return BinRemove
	case hasOversizedBoundsTrailer(v):
		return BinRemove
	case isCountOrWeightName(name):
		// Matched the suffix but failed the type/shape/unit test above:
		// an invalid count or weight variable.
		return BinRemove
	case !v.HasUnit:
		return BinRemove
	}
	lower := strings.ToLower(name)
	switch name {
	case "datetime_start":
		if v.NumDimensions() == 1 {
			return BinTimeMin
		}
	case "datetime_stop":
		if v.NumDimensions() == 1 {
			return BinTimeMax
		}
	}
	if strings.Contains(name, "_uncertainty_random") {
		return BinUncertainty
	}
	if strings.Contains(name, "_uncertainty_systematic") {
		return BinAverage
	}
	if strings.Contains(name, "_uncertainty") {
		if ctx.PropagateUncertainty {
			return BinAverage
		}
		return BinUncertainty
	}
	if strings.Contains(lower, "latitude") || strings.Contains(lower, "longitude") ||
		strings.Contains(lower, "angle") || strings.Contains(lower, "direction") {
		return BinAngle
	}
	return BinAverage
}

type binPlan struct {
	K         int
	binIndex  []int
	binCount  []int
	index     []int // lowest original sample index per bin
	kinds     map[string]BinningKind
}

func buildBinPlan(binIndex []int, K int) (*binPlan, error) {
	binCount := make([]int, K)
	index := make([]int, K)
	found := make([]bool, K)
	for i, b := range binIndex {
		if b < 0 || b >= K {
			return nil, Errorf(KindInvalidIndex, "bin index %d at sample %d out of range [0,%d)", b, i, K)
		}
		binCount[b]++
		if !found[b] {
			index[b] = i
			found[b] = true
		}
	}
	return &binPlan{K: K, binIndex: binIndex, binCount: binCount, index: index}, nil
}

// Bin groups the time dimension of p according to binIndex (length must
// equal p's time dimension, each entry in [0,K)) and aggregates every
// variable per its binning kind (§4.D). p is mutated in place.
func Bin(p *Product, binIndex []int, K int, ctx *Context) error {
	return binWithOverrides(p, binIndex, K, ctx, nil)
}

// BinFull assigns every sample to bin 0 (§4.D).
func BinFull(p *Product, ctx *Context) error {
	N := p.Dimension(Time)
	if N == 0 {
		return Errorf(KindInvalidArgument, "cannot bin a product with no time samples")
	}
	idx := make([]int, N)
	return Bin(p, idx, 1, ctx)
}

// BinWithVariable defines bins by equal-value tuples of the named 1-D
// time-dependent variables (NaN treated as equal to NaN), and preserves
// those variables even if their own classification would normally be
// BinRemove (§4.D).
func BinWithVariable(p *Product, names []string, ctx *Context) error {
	N := p.Dimension(Time)
	if N == 0 {
		return Errorf(KindInvalidArgument, "cannot bin a product with no time samples")
	}
	vars := make([]*Variable, len(names))
	for i, name := range names {
		v := p.Variable(name)
		if v == nil {
			return Errorf(KindVariableNotFound, "no variable named %q", name)
		}
		if v.NumDimensions() != 1 || v.DimensionType[0] != Time {
			return Errorf(KindInvalidArgument, "variable %q must be 1-D and time-dependent to bin by", name)
		}
		vars[i] = v
	}
	keyOf := func(i int) string {
		var b strings.Builder
		for _, v := range vars {
			fmt.Fprintf(&b, "%v|", v.At(i).keyRepr())
		}
		return b.String()
	}
	binIndex := make([]int, N)
	seen := map[string]int{}
	next := 0
	for i := 0; i < N; i++ {
		k := keyOf(i)
		b, ok := seen[k]
		if !ok {
			b = next
			seen[k] = b
			next++
		}
		binIndex[i] = b
	}
	preserve := map[string]bool{}
	for _, name := range names {
		preserve[name] = true
	}
	return binWithOverrides(p, binIndex, next, ctx, preserve)
}

func binWithOverrides(p *Product, binIndex []int, K int, ctx *Context, preserve map[string]bool) error {
	if ctx == nil {
		ctx = NewContext()
	}
	N := p.Dimension(Time)
	if N == 0 {
		return Errorf(KindInvalidArgument, "cannot bin a product with no time samples")
	}
	if len(binIndex) != N {
		return Errorf(KindArrayDimsMismatch, "bin_index length %d does not match the time dimension %d", len(binIndex), N)
	}
	plan, err := buildBinPlan(binIndex, K)
	if err != nil {
		return err
	}
	for b, c := range plan.binCount {
		if c == 0 {
			warnf("bin %d has no contributing samples; its variables will be filled with NaN/0", b)
		}
	}
	kinds := make(map[string]BinningKind, len(p.Variables()))
	for _, v := range p.Variables() {
		k := classifyBinning(v, ctx)
		if preserve[v.Name] && k == BinRemove {
			k = BinAverage
		}
		kinds[v.Name] = k
	}
	plan.kinds = kinds

	// Pre-pass step 3: convert every variable that will be aggregated to
	// float64. Weight-kind companions keep their native type; skip and
	// remove variables are untouched.
	for _, v := range p.Variables() {
		switch kinds[v.Name] {
		case BinSkip, BinWeight, BinRemove:
			continue
		}
		if v.DataType != Float64 {
			if err := v.ConvertType(Float64); err != nil {
				return err
			}
		}
	}

	angleOriginalUnit := map[string]string{}
	for _, v := range p.Variables() {
		if kinds[v.Name] != BinAngle {
			continue
		}
		if err := prepareAngleVariable(p, v, N, angleOriginalUnit); err != nil {
			return err
		}
	}

	localWeight := map[string][]float64{}
	for _, v := range p.Variables() {
		k := kinds[v.Name]
		if k != BinAverage && k != BinUncertainty {
			continue
		}
		localWeight[v.Name] = prepareWeightedVariable(p, v, N, k == BinUncertainty)
	}

	// weightSums carries each weighted variable's per-bin divisor from
	// aggregateWeighted to finalizeWeightedVariable below, scoped to this
	// single Bin call rather than shared package state.
	weightSums := map[*Variable]weightedBinState{}

	// Aggregation pass.
	for _, v := range p.Variables() {
		k := kinds[v.Name]
		switch k {
		case BinSkip, BinRemove, BinWeight:
			continue
		case BinTimeMin, BinTimeMax:
			aggregateMinMax(v, plan, k == BinTimeMax)
		case BinAngle:
			aggregateAngle(v, plan)
		case BinAverage, BinUncertainty:
			weightSums[v] = aggregateWeighted(v, plan, localWeight[v.Name], k == BinUncertainty)
		}
	}
	// Second pass: sum weight-kind companions.
	for _, v := range p.Variables() {
		if kinds[v.Name] != BinWeight {
			continue
		}
		aggregateSum(v, plan)
	}

	p.SetDimension(Time, plan.K)

	if p.Variable("count") == nil {
		cv, err := NewVariable("count", Int32, []DimensionType{Time}, []int{plan.K})
		if err != nil {
			return err
		}
		for b, c := range plan.binCount {
			cv.Int32Data[b] = int32(c)
		}
		if err := p.AddVariable(cv); err != nil {
			return err
		}
	}

	for _, v := range p.Variables() {
		if kinds[v.Name] == BinAngle {
			if err := finalizeAngleVariable(p, v, angleOriginalUnit[v.Name]); err != nil {
				return err
			}
		}
	}
	for _, v := range p.Variables() {
		k := kinds[v.Name]
		if k != BinAverage && k != BinUncertainty {
			continue
		}
		finalizeWeightedVariable(v, plan, weightSums[v])
	}

	for i := len(p.Variables()) - 1; i >= 0; i-- {
		v := p.Variables()[i]
		if kinds[v.Name] == BinRemove {
			if err := p.RemoveVariable(v.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// keyRepr renders a Scalar into a string that is stable and treats NaN as
// equal to NaN, for use as a grouping key in BinWithVariable.
func (s Scalar) keyRepr() string {
	if s.Type == String {
		return s.str
	}
	v := s.AsFloat64()
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%g", v)
}

func aggregateMinMax(v *Variable, plan *binPlan, isMax bool) {
	B := v.NumElements() / v.Dimension[0]
	accBuf := numeric.NewFloatBuffer(plan.K * B)
	acc := accBuf.Data()
	for i := range acc {
		acc[i] = math.NaN()
	}
	for i := 0; i < v.Dimension[0]; i++ {
		b := plan.binIndex[i]
		for k := 0; k < B; k++ {
			val := v.Float64Data[i*B+k]
			if isMax {
				acc[b*B+k] = numeric.NaNMax(acc[b*B+k], val)
			} else {
				acc[b*B+k] = numeric.NaNMin(acc[b*B+k], val)
			}
		}
	}
	writeBinResultAndRearrange(v, plan, acc, B)
}

func aggregateSum(v *Variable, plan *binPlan) {
	B := v.NumElements() / v.Dimension[0]
	switch v.DataType {
	case Int32:
		acc := make([]int64, plan.K*B)
		for i := 0; i < v.Dimension[0]; i++ {
			b := plan.binIndex[i]
			for k := 0; k < B; k++ {
				acc[b*B+k] += int64(v.Int32Data[i*B+k])
			}
		}
		result := make([]float64, len(acc))
		for i, x := range acc {
			result[i] = float64(x)
		}
		writeBinResultAndRearrange(v, plan, result, B)
	case Float32:
		acc := make([]float64, plan.K*B)
		for i := 0; i < v.Dimension[0]; i++ {
			b := plan.binIndex[i]
			for k := 0; k < B; k++ {
				acc[b*B+k] += float64(v.Float32Data[i*B+k])
			}
		}
		writeBinResultAndRearrange(v, plan, acc, B)
	}
}

// writeBinResultAndRearrange rearranges dimension 0 down to length K using
// index[] (§4.D's "Rearrange" step), then writes the per-bin aggregate
// (shape [K,B]) into row b of the result. Writing after the rearrange keeps
// an empty bin, whose index[b] is 0, from sharing a slot with the bin that
// holds sample 0.
func writeBinResultAndRearrange(v *Variable, plan *binPlan, result []float64, B int) {
	_ = v.RearrangeDimension(0, plan.index[:plan.K])
	for b := 0; b < plan.K; b++ {
		switch v.DataType {
		case Int32:
			for k := 0; k < B; k++ {
				v.Int32Data[b*B+k] = int32(result[b*B+k])
			}
		case Float32:
			for k := 0; k < B; k++ {
				v.Float32Data[b*B+k] = float32(result[b*B+k])
			}
		case Float64:
			for k := 0; k < B; k++ {
				v.Float64Data[b*B+k] = result[b*B+k]
			}
		}
	}
}

func prepareAngleVariable(p *Product, v *Variable, N int, originalUnit map[string]string) error {
	wname := v.Name + "_weight"
	w := p.Variable(wname)
	if w == nil {
		nv, err := NewVariable(wname, Float32, []DimensionType{Time}, []int{N})
		if err != nil {
			return err
		}
		for i := range nv.Float32Data {
			nv.Float32Data[i] = 1
		}
		if err := p.AddVariable(nv); err != nil {
			return err
		}
		w = nv
	}
	originalUnit[v.Name] = v.Unit
	if v.HasUnit && v.Unit != "radian" && v.Unit != "rad" {
		if err := v.ConvertUnit("radian"); err != nil {
			return err
		}
	}
	d := v.NumDimensions()
	if err := v.AddDimension(d, Independent, 2); err != nil {
		return err
	}
	for i := 0; i < N; i++ {
		theta := v.Float64Data[i*2]
		wt := w.Float64At(i)
		x, y, outW := numeric.CircularComponents(theta, wt)
		v.Float64Data[i*2] = x
		v.Float64Data[i*2+1] = y
		switch w.DataType {
		case Float32:
			w.Float32Data[i] = float32(outW)
		case Float64:
			w.Float64Data[i] = outW
		}
	}
	return nil
}

func aggregateAngle(v *Variable, plan *binPlan) {
	acc := make([]float64, plan.K*2)
	N := v.Dimension[0]
	for i := 0; i < N; i++ {
		b := plan.binIndex[i]
		acc[b*2] += v.Float64Data[i*2]
		acc[b*2+1] += v.Float64Data[i*2+1]
	}
	writeBinResultAndRearrange(v, plan, acc, 2)
}

func finalizeAngleVariable(p *Product, v *Variable, originalUnit string) error {
	w := p.Variable(v.Name + "_weight")
	N := v.Dimension[0]
	theta := make([]float64, N)
	for i := 0; i < N; i++ {
		x, y := v.Float64Data[i*2], v.Float64Data[i*2+1]
		angle, magnitude := numeric.CircularMean(x, y)
		if magnitude == 0 {
			theta[i] = math.NaN()
		} else {
			theta[i] = angle
		}
		if w != nil {
			switch w.DataType {
			case Float32:
				w.Float32Data[i] = float32(magnitude)
			case Float64:
				w.Float64Data[i] = magnitude
			}
		}
	}
	if err := v.RemoveDimensionAt(v.NumDimensions()-1, 0); err != nil {
		return err
	}
	copy(v.Float64Data, theta)
	if originalUnit != "" && originalUnit != "radian" && originalUnit != "rad" {
		if err := v.ConvertUnit(originalUnit); err != nil {
			return err
		}
	}
	return nil
}

// prepareWeightedVariable applies §4.D's pre-pass step 5 (multiply by the
// companion weight, or count, squaring for uncertainty) fused with the
// aggregation pass's NaN policy (a NaN anywhere in a sample's block zeros
// that sample's local weight), and returns the per-sample local weight
// array later consumed by aggregateWeighted/finalizeWeightedVariable.
func prepareWeightedVariable(p *Product, v *Variable, N int, squared bool) []float64 {
	companion, isWeight, found := p.WeightOrCount(v.Name)
	localWeight := make([]float64, N)
	for i := range localWeight {
		localWeight[i] = 1
	}
	if found {
		for i := 0; i < N; i++ {
			localWeight[i] = companion.Float64At(i)
		}
	}
	_ = isWeight
	B := v.NumElements() / v.Dimension[0]
	for i := 0; i < N; i++ {
		nan := false
		for k := 0; k < B; k++ {
			if math.IsNaN(v.Float64Data[i*B+k]) {
				nan = true
				break
			}
		}
		if nan {
			localWeight[i] = 0
		}
		w := localWeight[i]
		for k := 0; k < B; k++ {
			val := v.Float64Data[i*B+k]
			if math.IsNaN(val) {
				val = 0
			}
			val *= w
			if squared {
				val *= val
			}
			v.Float64Data[i*B+k] = val
		}
	}
	return localWeight
}

func aggregateWeighted(v *Variable, plan *binPlan, localWeight []float64, uncertainty bool) weightedBinState {
	B := v.NumElements() / v.Dimension[0]
	valuesumBuf := numeric.NewFloatBuffer(plan.K * B)
	valuesum := valuesumBuf.Data()
	weightsumBuf := numeric.NewFloatBuffer(plan.K)
	weightsum := weightsumBuf.Data()
	N := v.Dimension[0]
	for i := 0; i < N; i++ {
		b := plan.binIndex[i]
		weightsum[b] += localWeight[i]
		for k := 0; k < B; k++ {
			valuesum[b*B+k] += v.Float64Data[i*B+k]
		}
	}
	writeBinResultAndRearrange(v, plan, valuesum, B)
	if weightsumBuf.Sum() == 0 {
		warnf("variable %q: every bin received zero weight; its binned values will be NaN", v.Name)
	}
	return weightedBinState{weightsum: weightsum, uncertainty: uncertainty}
}

type weightedBinState struct {
	weightsum   []float64
	uncertainty bool
}

func finalizeWeightedVariable(v *Variable, plan *binPlan, state weightedBinState) {
	B := v.NumElements() / plan.K
	for b := 0; b < plan.K; b++ {
		divisor := state.weightsum[b]
		for k := 0; k < B; k++ {
			idx := b*B + k
			val := v.Float64Data[idx]
			if state.uncertainty {
				val = math.Sqrt(val)
			}
			if divisor == 0 {
				v.Float64Data[idx] = math.NaN()
			} else {
				v.Float64Data[idx] = val / divisor
			}
		}
	}
}
