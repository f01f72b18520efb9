// Package numeric holds the shared scratch-buffer and reduction helpers
// used by binning and regridding (§4.D, §4.E). Buffers are backed by
// github.com/ctessum/sparse, the same dense-array package
// spatialmodel-inmap uses for its own gridded CTM data, so binning's
// per-bin float64 accumulators reuse a library already in the dependency
// graph instead of a bespoke slice type. Vector reductions lean on gonum.org/v1/gonum/floats where it
// has a direct match; the NaN-aware policies specific to §4.D/§4.E (e.g.
// "NaN in the accumulator slot is replaced by any non-NaN sample") are not
// expressible as an ordinary fmin/fmax and are implemented directly.
package numeric

import (
	"math"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// FloatBuffer is a flat float64 scratch buffer of fixed size; binning
// allocates one per aggregated variable for its per-bin accumulators.
type FloatBuffer struct {
	arr *sparse.DenseArray
}

// NewFloatBuffer allocates a zero-filled buffer of the given shape.
func NewFloatBuffer(shape ...int) *FloatBuffer {
	return &FloatBuffer{arr: sparse.ZerosDense(shape...)}
}

// Data returns the buffer's backing slice for direct indexed access.
func (b *FloatBuffer) Data() []float64 { return b.arr.Elements }

// Reset zeros every element without reallocating.
func (b *FloatBuffer) Reset() {
	for i := range b.arr.Elements {
		b.arr.Elements[i] = 0
	}
}

// Sum returns the sum of all elements (gonum/floats).
func (b *FloatBuffer) Sum() float64 {
	return floats.Sum(b.arr.Elements)
}

// Scale multiplies every element by c in place (gonum/floats).
func (b *FloatBuffer) Scale(c float64) {
	floats.Scale(c, b.arr.Elements)
}

// IntBuffer is a flat int scratch buffer, used for per-bin sample counts.
type IntBuffer struct {
	arr *sparse.DenseArrayInt
}

// NewIntBuffer allocates a zero-filled integer buffer of the given shape.
func NewIntBuffer(shape ...int) *IntBuffer {
	return &IntBuffer{arr: sparse.ZerosDenseInt(shape...)}
}

// Data returns the buffer's backing slice.
func (b *IntBuffer) Data() []int { return b.arr.Elements }

// NaNMin folds candidate into acc following §4.D's "running min, with NaN
// preferring non-NaN neighbors" policy: an existing NaN accumulator is
// replaced unconditionally by the candidate, a NaN candidate leaves acc
// unchanged, and otherwise the smaller of the two values wins. This is deliberately not
// math.Min, which has its own (different) NaN behavior across Go/runtime
// versions (Design Notes §9).
func NaNMin(acc, candidate float64) float64 {
	if math.IsNaN(acc) {
		return candidate
	}
	if math.IsNaN(candidate) {
		return acc
	}
	if candidate < acc {
		return candidate
	}
	return acc
}

// NaNMax is NaNMin's counterpart for running maxima.
func NaNMax(acc, candidate float64) float64 {
	if math.IsNaN(acc) {
		return candidate
	}
	if math.IsNaN(candidate) {
		return acc
	}
	if candidate > acc {
		return candidate
	}
	return acc
}

// CircularComponents converts an angle in radians and an associated weight
// into its unit-vector components (§4.D "angle" kind): weight is zeroed
// (and the returned components are zero) when the angle is NaN or the
// weight is zero or NaN.
func CircularComponents(angleRadians, weight float64) (x, y, outWeight float64) {
	if math.IsNaN(angleRadians) || math.IsNaN(weight) || weight == 0 {
		return 0, 0, 0
	}
	return weight * math.Cos(angleRadians), weight * math.Sin(angleRadians), weight
}

// CircularMean recovers the mean angle (radians) and magnitude from
// accumulated unit-vector components (§4.D post-pass).
func CircularMean(x, y float64) (angleRadians, magnitude float64) {
	return math.Atan2(y, x), math.Hypot(x, y)
}
