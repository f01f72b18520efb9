package harp

import (
	"math"
	"strings"

	"github.com/stcorp/harp-sub000/units"
)

// RegridKind is the per-variable classification of §4.E.2.
type RegridKind int

const (
	RegridSkip RegridKind = iota
	RegridRemove
	RegridInterval
	RegridLogLog
	RegridLinear
)

func classifyRegrid(v *Variable, axis DimensionType) RegridKind {
	if !v.HasDimensionType(axis) {
		return RegridSkip
	}
	count := 0
	for _, dt := range v.DimensionType {
		if dt == axis {
			count++
		}
	}
	if count > 1 {
		return RegridRemove
	}
	name := v.Name
	switch {
	case v.DataType == String:
		return RegridRemove
	case !v.HasUnit:
		return RegridRemove
	case len(v.EnumValues) > 0:
		return RegridRemove
	case strings.HasSuffix(name, "_uncertainty"):
		return RegridRemove
	case strings.HasSuffix(name, "_bounds"):
		return RegridRemove
	case axis == Time && (name == "datetime_start" || name == "datetime_stop" || name == "datetime_length"):
		return RegridRemove
	}
	if is1DColumnAVK(v, axis) || isPartialColumnSumName(name) {
		return RegridInterval
	}
	if strings.HasPrefix(name, "aerosol_optical_depth") || strings.HasPrefix(name, "aerosol_extinction_coefficient") {
		return RegridLogLog
	}
	return RegridLinear
}

// RegridOptions carries the target axis grid (and, when interval
// interpolation is needed, bounds) of §4.E.2. TargetGridByTime, when
// non-nil, supplies one grid row per time index and takes precedence over
// TargetGrid; TargetBoundsByTime is its interval-bounds counterpart.
type RegridOptions struct {
	Axis           DimensionType
	TargetGrid     []float64
	TargetBounds   [][2]float64
	TargetGridByTime   [][]float64
	TargetBoundsByTime [][][2]float64
	AxisIsPressure bool

	// TargetUnit, when non-empty, names the unit TargetGrid/TargetBounds (or
	// their by-time counterparts) are expressed in. If it differs from the
	// axis grid variable's own unit, Regrid converts the target values into
	// the source unit before building grids (§12 item 4) rather than
	// requiring the caller to pre-convert.
	TargetUnit string
}

// Regrid resamples every variable of p that varies along opts.Axis from its
// current grid onto opts.TargetGrid (or the per-time grids of
// opts.TargetGridByTime) using the variable-kind-specific kernel of
// §4.E.2. p is mutated in place.
func Regrid(p *Product, opts RegridOptions, ctx *Context) error {
	if ctx == nil {
		ctx = NewContext()
	}
	axis := opts.Axis
	gridName := axis.String()
	sourceGridVar := p.Variable(gridName)
	if sourceGridVar == nil {
		return Errorf(KindVariableNotFound, "no %q grid variable to regrid against", gridName)
	}
	timeDependent := sourceGridVar.NumDimensions() == 2
	numTimes := 1
	if timeDependent {
		numTimes = sourceGridVar.Dimension[0]
	}

	if err := reconcileTargetUnit(&opts, sourceGridVar.Unit); err != nil {
		return err
	}

	sourceRow := func(t int) []float64 { return gridRow(sourceGridVar, timeDependent, t) }
	var targetRow func(t int) []float64
	targetTimeDependent := opts.TargetGridByTime != nil
	if targetTimeDependent {
		targetRow = func(t int) []float64 { return opts.TargetGridByTime[t] }
	} else {
		targetRow = func(int) []float64 { return opts.TargetGrid }
	}
	targetBoundsExplicit := opts.TargetBoundsByTime != nil || opts.TargetBounds != nil
	var targetBoundsRow func(t int) [][2]float64
	switch {
	case opts.TargetBoundsByTime != nil:
		targetBoundsRow = func(t int) [][2]float64 { return opts.TargetBoundsByTime[t] }
	case opts.TargetBounds != nil:
		targetBoundsRow = func(int) [][2]float64 { return opts.TargetBounds }
	default:
		targetBoundsRow = func(t int) [][2]float64 { return deriveBoundsFromMidpoints(trimGrid(targetRow(t))) }
	}

	sourceDeclaredLen := sourceGridVar.Dimension[sourceGridVar.NumDimensions()-1]
	targetDeclaredLen := len(targetRow(0))
	M := sourceDeclaredLen
	if targetDeclaredLen > M {
		M = targetDeclaredLen
	}

	D := 0
	for t := 0; t < numTimes; t++ {
		if n := EffectiveLength(targetRow(t)); n > D {
			D = n
		}
	}
	if D == 0 {
		return Errorf(KindInvalidArgument, "target grid for %s regridding has no valid points", gridName)
	}

	logGrid := func(row []float64) []float64 {
		if !opts.AxisIsPressure {
			return row
		}
		out := make([]float64, len(row))
		for i, x := range row {
			out[i] = math.Log(x)
		}
		return out
	}

	kinds := make(map[string]RegridKind, len(p.Variables()))
	for _, v := range p.Variables() {
		kinds[v.Name] = classifyRegrid(v, axis)
	}
	// The source grid variable is read by every interpolation below and is
	// replaced as a whole by installRegriddedAxis, so it is not resampled.
	kinds[gridName] = RegridSkip

	axisIdx := make(map[string]int)
	for _, v := range p.Variables() {
		k := kinds[v.Name]
		if k == RegridSkip || k == RegridRemove {
			continue
		}
		d := v.DimensionIndexOfType(axis)
		axisIdx[v.Name] = d
		if v.Dimension[d] != M {
			if err := v.ResizeDimension(d, M); err != nil {
				return err
			}
		}
		if v.DataType != Float64 {
			if err := v.ConvertType(Float64); err != nil {
				return err
			}
		}
	}

	overlapCache := make(map[int]*overlapTable)
	overlapFor := func(t int) *overlapTable {
		if tbl, ok := overlapCache[t]; ok {
			return tbl
		}
		// Bounds derived from a grid are derived from the (possibly
		// log-transformed) grid values directly; explicit bounds are
		// log-transformed themselves, matching the pressure special case
		// of §4.E.1/§4.E.2.
		srcBounds := deriveBoundsFromMidpoints(logGrid(trimGrid(sourceRow(t))))
		var tgtBounds [][2]float64
		if targetBoundsExplicit {
			tgtBounds = targetBoundsRow(t)
			if opts.AxisIsPressure {
				tgtBounds = logBounds(tgtBounds)
			}
		} else {
			tgtBounds = deriveBoundsFromMidpoints(logGrid(trimGrid(targetRow(t))))
		}
		tbl := buildOverlapTable(srcBounds, tgtBounds)
		overlapCache[t] = tbl
		return tbl
	}

	usedInterval := false
	for _, v := range p.Variables() {
		k := kinds[v.Name]
		d, ok := axisIdx[v.Name]
		if !ok {
			continue
		}
		if k == RegridInterval {
			usedInterval = true
		}
		kernel := regridKernel(k)
		regridVariable(v, d, timeOuterProduct(v, d), func(t int) ([]float64, []float64) {
			src := logGrid(sourceRow(t))
			tgt := logGrid(targetRow(t))
			return src, tgt
		}, kernel, k, overlapFor, ctx.RegridOutOfBounds, D)
	}

	for _, v := range p.Variables() {
		d, ok := axisIdx[v.Name]
		if !ok {
			continue
		}
		if v.Dimension[d] != D {
			if err := v.ResizeDimension(d, D); err != nil {
				return err
			}
		}
	}

	needBounds := usedInterval || targetBoundsExplicit
	return installRegriddedAxis(p, axis, gridName, targetRow, targetBoundsRow, numTimes, targetTimeDependent, D, needBounds)
}

// reconcileTargetUnit converts opts' target grid/bounds fields in place from
// opts.TargetUnit into sourceUnit when the two differ but are dimensionally
// compatible (e.g. hPa vs Pa), so callers can hand Regrid a target axis
// expressed in whatever unit is convenient (§12 item 4). It is a no-op when
// TargetUnit is empty or already matches sourceUnit.
func reconcileTargetUnit(opts *RegridOptions, sourceUnit string) error {
	if opts.TargetUnit == "" || opts.TargetUnit == sourceUnit {
		return nil
	}
	from, err := units.Parse(opts.TargetUnit)
	if err != nil {
		return Wrap(err, "regrid target unit %q", opts.TargetUnit)
	}
	to, err := units.Parse(sourceUnit)
	if err != nil {
		return Wrap(err, "regrid axis unit %q", sourceUnit)
	}
	convert, err := units.Converter(from, to)
	if err != nil {
		return Wrap(err, "converting regrid target unit %q to axis unit %q", opts.TargetUnit, sourceUnit)
	}
	convertRow := func(row []float64) []float64 {
		out := make([]float64, len(row))
		for i, x := range row {
			out[i] = convert(x)
		}
		return out
	}
	convertBounds := func(b [][2]float64) [][2]float64 {
		out := make([][2]float64, len(b))
		for i, p := range b {
			out[i] = [2]float64{convert(p[0]), convert(p[1])}
		}
		return out
	}
	if opts.TargetGrid != nil {
		opts.TargetGrid = convertRow(opts.TargetGrid)
	}
	if opts.TargetBounds != nil {
		opts.TargetBounds = convertBounds(opts.TargetBounds)
	}
	for i, row := range opts.TargetGridByTime {
		opts.TargetGridByTime[i] = convertRow(row)
	}
	for i, b := range opts.TargetBoundsByTime {
		opts.TargetBoundsByTime[i] = convertBounds(b)
	}
	return nil
}

func gridRow(v *Variable, timeDependent bool, t int) []float64 {
	if !timeDependent {
		return v.Float64Data
	}
	D := v.Dimension[1]
	return v.Float64Data[t*D : (t+1)*D]
}

// trimGrid returns the leading effective (non-NaN-tail) portion of a grid
// row, per §4.E.2's trailing-NaN trimming rule.
func trimGrid(row []float64) []float64 {
	return row[:EffectiveLength(row)]
}

// deriveBoundsFromMidpoints builds interval bounds for a point grid by
// taking the midpoint between neighboring grid points, extrapolating the
// outer edge of the first and last interval (§4.E.2, "derived ... from
// midpoints").
func deriveBoundsFromMidpoints(grid []float64) [][2]float64 {
	n := len(grid)
	out := make([][2]float64, n)
	if n == 0 {
		return out
	}
	if n == 1 {
		out[0] = [2]float64{grid[0], grid[0]}
		return out
	}
	mid := make([]float64, n-1)
	for i := range mid {
		mid[i] = (grid[i] + grid[i+1]) / 2
	}
	out[0][0] = grid[0] - (mid[0] - grid[0])
	for i := 0; i < n-1; i++ {
		out[i][1] = mid[i]
		out[i+1][0] = mid[i]
	}
	out[n-1][1] = grid[n-1] + (grid[n-1] - mid[n-2])
	return out
}

func logBounds(b [][2]float64) [][2]float64 {
	out := make([][2]float64, len(b))
	for i, p := range b {
		out[i] = [2]float64{math.Log(p[0]), math.Log(p[1])}
	}
	return out
}

// timeOuterProduct returns the product of v's dimension lengths strictly
// between the time axis (index 0, if present) and axis index d: dividing a
// group index g by this value recovers the time index of that group,
// matching blockStrides' row-major group enumeration.
func timeOuterProduct(v *Variable, d int) int {
	if len(v.DimensionType) == 0 || v.DimensionType[0] != Time {
		return 0
	}
	inner := 1
	for i := 1; i < d; i++ {
		inner *= v.Dimension[i]
	}
	return inner
}

func regridKernel(k RegridKind) InterpKernel {
	switch k {
	case RegridLogLog:
		return KernelLogLogLinear
	default:
		return KernelLinear
	}
}

// regridVariable resamples v along axis d from its source grid onto the
// target grid, per variable kind k (§4.E.2's [G, L_src, E] aggregation).
// gridsForTime returns the (possibly log-transformed) source/target grid
// rows for group g's time index; overlapFor lazily builds/caches the
// interval overlap table for a time index, used only by RegridInterval.
func regridVariable(v *Variable, d, timeOuter int, gridsForTime func(t int) (src, tgt []float64), kernel InterpKernel, k RegridKind, overlapFor func(t int) *overlapTable, policy OutOfBoundsPolicy, D int) {
	G, L, B := blockStrides(v, d)
	out := make([]float64, G*D*B)
	for i := range out {
		out[i] = math.NaN()
	}
	for g := 0; g < G; g++ {
		t := 0
		if timeOuter > 0 {
			t = g / timeOuter
		}
		src, tgt := gridsForTime(t)
		n := EffectiveLength(src)
		targetN := EffectiveLength(tgt)
		for e := 0; e < B; e++ {
			if k == RegridInterval {
				table := overlapFor(t)
				full := make([]float64, L)
				for i := 0; i < L; i++ {
					full[i] = v.Float64Data[(g*L+i)*B+e]
				}
				for j := 0; j < targetN; j++ {
					idx, weight := table.cell(j)
					out[(g*D+j)*B+e] = IntervalAt(full, idx, weight)
				}
				continue
			}
			y := make([]float64, n)
			for i := 0; i < n; i++ {
				y[i] = v.Float64Data[(g*L+i)*B+e]
			}
			hint := -1
			for j := 0; j < targetN; j++ {
				val, nextHint := Interpolate1D(src, y, n, tgt[j], kernel, policy, hint)
				out[(g*D+j)*B+e] = val
				hint = nextHint
			}
		}
	}
	scatterGroupResult(v, G, L, B, D, out)
}

// installRegriddedAxis replaces the grid variable named gridName with the
// new target grid and target dimension length D. Any existing bounds
// variable is removed; a new one holding the target bounds is added only
// when needBounds is set (a variable needed interval interpolation, or
// target bounds were given explicitly).
func installRegriddedAxis(p *Product, axis DimensionType, gridName string, targetRow func(t int) []float64, targetBoundsRow func(t int) [][2]float64, numTimes int, timeDependent bool, D int, needBounds bool) error {
	if p.HasVariable(gridName) {
		if err := p.RemoveVariable(gridName); err != nil {
			return err
		}
	}
	boundsName := gridName + "_bounds"
	if p.HasVariable(boundsName) {
		if err := p.RemoveVariable(boundsName); err != nil {
			return err
		}
	}

	var nv *Variable
	var err error
	if timeDependent {
		nv, err = NewVariable(gridName, Float64, []DimensionType{Time, axis}, []int{numTimes, D})
	} else {
		nv, err = NewVariable(gridName, Float64, []DimensionType{axis}, []int{D})
	}
	if err != nil {
		return err
	}
	for t := 0; t < numTimes; t++ {
		row := targetRow(t)
		n := D
		if len(row) < n {
			n = len(row)
		}
		for i := 0; i < n; i++ {
			if timeDependent {
				nv.Float64Data[t*D+i] = row[i]
			} else {
				nv.Float64Data[i] = row[i]
			}
		}
		for i := n; i < D; i++ {
			if timeDependent {
				nv.Float64Data[t*D+i] = math.NaN()
			} else {
				nv.Float64Data[i] = math.NaN()
			}
		}
		if !timeDependent {
			break
		}
	}
	if err := p.AddVariable(nv); err != nil {
		return err
	}

	if !needBounds {
		return nil
	}
	var nb *Variable
	if timeDependent {
		nb, err = NewVariable(boundsName, Float64, []DimensionType{Time, axis, Independent}, []int{numTimes, D, 2})
	} else {
		nb, err = NewVariable(boundsName, Float64, []DimensionType{axis, Independent}, []int{D, 2})
	}
	if err != nil {
		return err
	}
	for t := 0; t < numTimes; t++ {
		bounds := targetBoundsRow(t)
		base := 0
		if timeDependent {
			base = t * D * 2
		}
		n := D
		if len(bounds) < n {
			n = len(bounds)
		}
		for j := 0; j < n; j++ {
			nb.Float64Data[base+j*2] = bounds[j][0]
			nb.Float64Data[base+j*2+1] = bounds[j][1]
		}
		if !timeDependent {
			break
		}
	}
	return p.AddVariable(nb)
}
