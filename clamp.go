package harp

import "math"

// ClampOptions carries the target axis grid, bounds, and clamp range of
// §4.E.3. As with RegridOptions, TargetGridByTime/TargetBoundsByTime (when
// non-nil) supply one row per time slice in preference to the
// time-independent TargetGrid/TargetBounds fields.
type ClampOptions struct {
	Axis               DimensionType
	TargetGrid         []float64
	TargetBounds       [][2]float64
	TargetGridByTime   [][]float64
	TargetBoundsByTime [][][2]float64
	Lower, Upper       float64
	AxisIsPressure     bool
}

// Clamp trims a target axis grid to [opts.Lower, opts.Upper] per time
// slice, dropping intervals entirely outside the range, clipping the
// remaining end intervals to the bound and recomputing their centre
// (arithmetic mean, or geometric mean when opts.AxisIsPressure), then
// regrids p onto the clamped target (§4.E.3).
func Clamp(p *Product, opts ClampOptions, ctx *Context) error {
	timeDependent := opts.TargetGridByTime != nil
	numTimes := 1
	if timeDependent {
		numTimes = len(opts.TargetGridByTime)
	}

	clampedGrid := make([][]float64, numTimes)
	clampedBounds := make([][][2]float64, numTimes)
	for t := 0; t < numTimes; t++ {
		var grid []float64
		var bounds [][2]float64
		if timeDependent {
			grid = opts.TargetGridByTime[t]
			if opts.TargetBoundsByTime != nil {
				bounds = opts.TargetBoundsByTime[t]
			}
		} else {
			grid = opts.TargetGrid
			if opts.TargetBounds != nil {
				bounds = opts.TargetBounds
			}
		}
		grid = trimGrid(grid)
		if bounds == nil {
			bounds = deriveBoundsFromMidpoints(grid)
		} else {
			bounds = bounds[:len(grid)]
		}
		g, b := clampGridAndBounds(bounds, opts.Lower, opts.Upper, opts.AxisIsPressure)
		if len(g) == 0 {
			return Errorf(KindInvalidArgument, "clamping %s to [%g, %g] leaves no intervals", opts.Axis, opts.Lower, opts.Upper)
		}
		clampedGrid[t] = g
		clampedBounds[t] = b
	}

	regridOpts := RegridOptions{Axis: opts.Axis, AxisIsPressure: opts.AxisIsPressure}
	if timeDependent {
		regridOpts.TargetGridByTime = clampedGrid
		regridOpts.TargetBoundsByTime = clampedBounds
	} else {
		regridOpts.TargetGrid = clampedGrid[0]
		regridOpts.TargetBounds = clampedBounds[0]
	}
	return Regrid(p, regridOpts, ctx)
}

// clampGridAndBounds drops every interval of bounds whose span lies
// entirely outside [lower,upper], clips the remaining end intervals to the
// boundary, and recomputes each kept interval's centre point.
func clampGridAndBounds(bounds [][2]float64, lower, upper float64, geometric bool) ([]float64, [][2]float64) {
	lo, hi := lower, upper
	if lo > hi {
		lo, hi = hi, lo
	}
	var outGrid []float64
	var outBounds [][2]float64
	for _, b := range bounds {
		blo, bhi := b[0], b[1]
		if blo > bhi {
			blo, bhi = bhi, blo
		}
		if bhi <= lo || blo >= hi {
			continue
		}
		clo, chi := math.Max(blo, lo), math.Min(bhi, hi)
		var center float64
		if geometric {
			center = math.Sqrt(clo * chi)
		} else {
			center = (clo + chi) / 2
		}
		outBounds = append(outBounds, [2]float64{clo, chi})
		outGrid = append(outGrid, center)
	}
	return outGrid, outBounds
}
