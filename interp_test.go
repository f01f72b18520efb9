package harp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindIndex_IncreasingGrid(t *testing.T) {
	grid := []float64{0, 10, 20, 30}
	assert.Equal(t, -1, FindIndex(grid, -5, -1))
	assert.Equal(t, 0, FindIndex(grid, 5, -1))
	assert.Equal(t, 1, FindIndex(grid, 10, -1))
	assert.Equal(t, 3, FindIndex(grid, 30, -1))
	assert.Equal(t, 4, FindIndex(grid, 35, -1))
}

func TestFindIndex_DecreasingGrid(t *testing.T) {
	grid := []float64{30, 20, 10, 0}
	assert.Equal(t, 0, FindIndex(grid, 25, -1))
	assert.Equal(t, 2, FindIndex(grid, 5, -1))
	assert.Equal(t, -1, FindIndex(grid, 35, -1))
}

func TestFindIndex_HintAccelerates(t *testing.T) {
	grid := []float64{0, 10, 20, 30, 40}
	i := FindIndex(grid, 25, 2)
	assert.Equal(t, 2, i)
}

func TestLinearAt(t *testing.T) {
	assert.InDelta(t, 50, LinearAt(0, 0, 10, 100, 5), 1e-9)
}

func TestLogLinearAt(t *testing.T) {
	v := LogLinearAt(1, 0, 100, 100, 10)
	assert.InDelta(t, 50, v, 1e-9)
}

func TestLogLogLinearAt(t *testing.T) {
	v := LogLogLinearAt(1, 1, 100, 100, 10)
	assert.InDelta(t, 10, v, 1e-6)
}

func TestIntervalAt_WeightedSumSkipsNaN(t *testing.T) {
	source := []float64{10, math.NaN(), 30}
	v := IntervalAt(source, []int{0, 1, 2}, []float64{0.5, 0.5, 0.5})
	assert.InDelta(t, 0.5*10+0.5*30, v, 1e-9)
}

func TestIntervalAt_NoContributionsIsNaN(t *testing.T) {
	source := []float64{math.NaN()}
	v := IntervalAt(source, []int{0}, []float64{1})
	assert.True(t, math.IsNaN(v))
}

func TestEffectiveLength(t *testing.T) {
	assert.Equal(t, 3, EffectiveLength([]float64{1, 2, 3, math.NaN(), math.NaN()}))
	assert.Equal(t, 4, EffectiveLength([]float64{1, 2, 3, 4}))
}

func TestInterpolate1D_InBounds(t *testing.T) {
	x := []float64{0, 10, 20}
	y := []float64{0, 100, 200}
	v, hint := Interpolate1D(x, y, 3, 5, KernelLinear, OutOfBoundsNaN, -1)
	assert.InDelta(t, 50, v, 1e-9)
	assert.Equal(t, 0, hint)
}

func TestInterpolate1D_ExactLastPoint(t *testing.T) {
	x := []float64{0, 10, 20}
	y := []float64{0, 100, 200}
	v, _ := Interpolate1D(x, y, 3, 20, KernelLinear, OutOfBoundsNaN, -1)
	assert.InDelta(t, 200, v, 1e-9)
}

func TestInterpolate1D_OutOfBoundsNaN(t *testing.T) {
	x := []float64{0, 10}
	y := []float64{0, 100}
	v, _ := Interpolate1D(x, y, 2, 20, KernelLinear, OutOfBoundsNaN, -1)
	assert.True(t, math.IsNaN(v))
}

func TestInterpolate1D_OutOfBoundsClampToEdge(t *testing.T) {
	x := []float64{0, 10}
	y := []float64{0, 100}
	v, _ := Interpolate1D(x, y, 2, -5, KernelLinear, OutOfBoundsClampToEdge, -1)
	assert.InDelta(t, 0, v, 1e-9)
	v2, _ := Interpolate1D(x, y, 2, 20, KernelLinear, OutOfBoundsClampToEdge, -1)
	assert.InDelta(t, 100, v2, 1e-9)
}

func TestInterpolate1D_OutOfBoundsExtrapolateLinear(t *testing.T) {
	x := []float64{0, 10}
	y := []float64{0, 100}
	v, _ := Interpolate1D(x, y, 2, 20, KernelLinear, OutOfBoundsExtrapolateLinear, -1)
	assert.InDelta(t, 200, v, 1e-9)
}

func TestInterpolate1D_SinglePointReturnsItsValue(t *testing.T) {
	x := []float64{5}
	y := []float64{42}
	v, hint := Interpolate1D(x, y, 1, 99, KernelLinear, OutOfBoundsNaN, -1)
	assert.Equal(t, 42.0, v)
	assert.Equal(t, 0, hint)
}

func TestNaturalSplineSecondDerivatives_EndpointsAreZero(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{0, 1, 0, 1}
	y2 := NaturalSplineSecondDerivatives(x, y)
	assert.InDelta(t, 0, y2[0], 1e-9)
	assert.InDelta(t, 0, y2[3], 1e-9)
}
