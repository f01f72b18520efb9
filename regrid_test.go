package harp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegrid_ExactGridPointsIsIdentity(t *testing.T) {
	p := NewProduct()
	grid := mustVar(t, "vertical", Float64, []DimensionType{Vertical}, []int{2})
	grid.Float64Data = []float64{0, 10}
	grid.SetUnit("m")
	require.NoError(t, p.AddVariable(grid))

	x := mustVar(t, "x", Float64, []DimensionType{Vertical}, []int{2})
	x.Float64Data = []float64{0, 100}
	x.SetUnit("K")
	require.NoError(t, p.AddVariable(x))

	opts := RegridOptions{Axis: Vertical, TargetGrid: []float64{0, 10}}
	require.NoError(t, Regrid(p, opts, nil))

	gotX := p.Variable("x")
	require.NotNil(t, gotX)
	assert.InDelta(t, 0, gotX.Float64Data[0], 1e-9)
	assert.InDelta(t, 100, gotX.Float64Data[1], 1e-9)

	gotGrid := p.Variable("vertical")
	require.NotNil(t, gotGrid)
	assert.Equal(t, []float64{0, 10}, gotGrid.Float64Data)
}

func TestRegrid_LinearInterpolationAtMidpoint(t *testing.T) {
	p := NewProduct()
	grid := mustVar(t, "vertical", Float64, []DimensionType{Vertical}, []int{2})
	grid.Float64Data = []float64{0, 10}
	grid.SetUnit("m")
	require.NoError(t, p.AddVariable(grid))

	x := mustVar(t, "x", Float64, []DimensionType{Vertical}, []int{2})
	x.Float64Data = []float64{0, 100}
	x.SetUnit("K")
	require.NoError(t, p.AddVariable(x))

	opts := RegridOptions{Axis: Vertical, TargetGrid: []float64{5}}
	require.NoError(t, Regrid(p, opts, nil))

	gotX := p.Variable("x")
	require.NotNil(t, gotX)
	assert.InDelta(t, 50, gotX.Float64Data[0], 1e-9)
}

func TestRegrid_OutOfBoundsDefaultsToNaN(t *testing.T) {
	p := NewProduct()
	grid := mustVar(t, "vertical", Float64, []DimensionType{Vertical}, []int{2})
	grid.Float64Data = []float64{0, 10}
	grid.SetUnit("m")
	require.NoError(t, p.AddVariable(grid))

	x := mustVar(t, "x", Float64, []DimensionType{Vertical}, []int{2})
	x.Float64Data = []float64{0, 100}
	x.SetUnit("K")
	require.NoError(t, p.AddVariable(x))

	opts := RegridOptions{Axis: Vertical, TargetGrid: []float64{20}}
	require.NoError(t, Regrid(p, opts, nil))

	gotX := p.Variable("x")
	require.NotNil(t, gotX)
	assert.True(t, math.IsNaN(gotX.Float64Data[0]))
}

func TestRegrid_OutOfBoundsClampToEdge(t *testing.T) {
	p := NewProduct()
	grid := mustVar(t, "vertical", Float64, []DimensionType{Vertical}, []int{2})
	grid.Float64Data = []float64{0, 10}
	grid.SetUnit("m")
	require.NoError(t, p.AddVariable(grid))

	x := mustVar(t, "x", Float64, []DimensionType{Vertical}, []int{2})
	x.Float64Data = []float64{0, 100}
	x.SetUnit("K")
	require.NoError(t, p.AddVariable(x))

	ctx := NewContext()
	ctx.RegridOutOfBounds = OutOfBoundsClampToEdge
	opts := RegridOptions{Axis: Vertical, TargetGrid: []float64{20}}
	require.NoError(t, Regrid(p, opts, ctx))

	gotX := p.Variable("x")
	require.NotNil(t, gotX)
	assert.InDelta(t, 100, gotX.Float64Data[0], 1e-9)
}

func TestRegrid_TargetUnitReconciliation(t *testing.T) {
	p := NewProduct()
	grid := mustVar(t, "vertical", Float64, []DimensionType{Vertical}, []int{3})
	grid.Float64Data = []float64{0, 1000, 2000}
	grid.SetUnit("m")
	require.NoError(t, p.AddVariable(grid))

	x := mustVar(t, "x", Float64, []DimensionType{Vertical}, []int{3})
	x.Float64Data = []float64{0, 100, 200}
	x.SetUnit("K")
	require.NoError(t, p.AddVariable(x))

	opts := RegridOptions{Axis: Vertical, TargetGrid: []float64{1}, TargetUnit: "km"}
	require.NoError(t, Regrid(p, opts, nil))

	gotX := p.Variable("x")
	require.NotNil(t, gotX)
	assert.InDelta(t, 100, gotX.Float64Data[0], 1e-6)

	gotGrid := p.Variable("vertical")
	require.NotNil(t, gotGrid)
	assert.InDelta(t, 1000, gotGrid.Float64Data[0], 1e-6)
}

func TestRegrid_RejectsMissingGridVariable(t *testing.T) {
	p := NewProduct()
	x := mustVar(t, "x", Float64, []DimensionType{Vertical}, []int{2})
	x.SetUnit("K")
	require.NoError(t, p.AddVariable(x))

	opts := RegridOptions{Axis: Vertical, TargetGrid: []float64{0, 10}}
	err := Regrid(p, opts, nil)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindVariableNotFound, kind)
}
