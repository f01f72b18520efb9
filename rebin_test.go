package harp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBoundsVar(t *testing.T, name string, axis DimensionType, bounds [][2]float64) *Variable {
	t.Helper()
	v, err := NewVariable(name, Float64, []DimensionType{axis, Independent}, []int{len(bounds), 2})
	require.NoError(t, err)
	for i, b := range bounds {
		v.Float64Data[i*2] = b[0]
		v.Float64Data[i*2+1] = b[1]
	}
	return v
}

func TestRebin_IdenticalGridsIsIdentity(t *testing.T) {
	p := NewProduct()
	require.NoError(t, p.AddVariable(newBoundsVar(t, "vertical_bounds", Vertical, [][2]float64{{0, 10}, {10, 20}})))
	v := mustVar(t, "value", Float64, []DimensionType{Vertical}, []int{2})
	v.Float64Data = []float64{100, 200}
	v.SetUnit("hPa")
	require.NoError(t, p.AddVariable(v))

	opts := RebinOptions{Axis: Vertical, TargetBounds: [][2]float64{{0, 10}, {10, 20}}}
	require.NoError(t, Rebin(p, opts, nil))

	assert.Equal(t, 2, p.Dimension(Vertical))
	got := p.Variable("value")
	require.NotNil(t, got)
	assert.InDelta(t, 100, got.Float64Data[0], 1e-9)
	assert.InDelta(t, 200, got.Float64Data[1], 1e-9)
}

func TestRebin_HalfOverlapAverages(t *testing.T) {
	p := NewProduct()
	require.NoError(t, p.AddVariable(newBoundsVar(t, "vertical_bounds", Vertical, [][2]float64{{0, 10}, {10, 20}})))
	v := mustVar(t, "value", Float64, []DimensionType{Vertical}, []int{2})
	v.Float64Data = []float64{100, 200}
	v.SetUnit("hPa")
	require.NoError(t, p.AddVariable(v))

	opts := RebinOptions{Axis: Vertical, TargetBounds: [][2]float64{{5, 15}}}
	require.NoError(t, Rebin(p, opts, nil))

	assert.Equal(t, 1, p.Dimension(Vertical))
	got := p.Variable("value")
	require.NotNil(t, got)
	assert.InDelta(t, 150, got.Float64Data[0], 1e-9)
}

func TestRebin_RemovesStringAndUnitlessVariables(t *testing.T) {
	p := NewProduct()
	require.NoError(t, p.AddVariable(newBoundsVar(t, "vertical_bounds", Vertical, [][2]float64{{0, 10}, {10, 20}})))
	v := mustVar(t, "value", Float64, []DimensionType{Vertical}, []int{2})
	v.Float64Data = []float64{100, 200}
	v.SetUnit("hPa")
	require.NoError(t, p.AddVariable(v))
	s := mustVar(t, "flag", String, []DimensionType{Vertical}, []int{2})
	s.StringData = []string{"a", "b"}
	require.NoError(t, p.AddVariable(s))

	opts := RebinOptions{Axis: Vertical, TargetBounds: [][2]float64{{0, 10}, {10, 20}}}
	require.NoError(t, Rebin(p, opts, nil))

	assert.False(t, p.HasVariable("flag"))
}

func TestRebin_AngleVariableCoarsenedAxisKeepsWeightCompanionInSync(t *testing.T) {
	p := NewProduct()
	require.NoError(t, p.AddVariable(newBoundsVar(t, "vertical_bounds", Vertical, [][2]float64{{0, 10}, {10, 20}})))
	dir := mustVar(t, "wind_direction", Float64, []DimensionType{Vertical}, []int{2})
	dir.Float64Data = []float64{350, 10}
	dir.SetUnit("degree")
	require.NoError(t, p.AddVariable(dir))

	opts := RebinOptions{Axis: Vertical, TargetBounds: [][2]float64{{0, 20}}}
	require.NoError(t, Rebin(p, opts, nil))

	assert.Equal(t, 1, p.Dimension(Vertical))
	got := p.Variable("wind_direction")
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Dimension[0])

	w := p.Variable("wind_direction_weight")
	require.NotNil(t, w)
	assert.Equal(t, 1, w.Dimension[0])
	assert.Len(t, w.Float64Data, 1)
}

func TestRebin_RejectsMissingBoundsVariable(t *testing.T) {
	p := NewProduct()
	v := mustVar(t, "value", Float64, []DimensionType{Vertical}, []int{2})
	v.SetUnit("hPa")
	require.NoError(t, p.AddVariable(v))

	opts := RebinOptions{Axis: Vertical, TargetBounds: [][2]float64{{0, 10}, {10, 20}}}
	err := Rebin(p, opts, nil)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindVariableNotFound, kind)
}
