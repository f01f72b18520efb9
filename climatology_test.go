package harp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_Climatology_NilWhenDisabled(t *testing.T) {
	ctx := NewContext()
	assert.Nil(t, ctx.Climatology())
}

func TestContext_Climatology_LazilyCreatedWhenEnabled(t *testing.T) {
	ctx := NewContext()
	ctx.ClimatologyUSStd76 = true
	clim := ctx.Climatology()
	require.NotNil(t, clim)
	_, ok := clim.USStd76Profile("pressure")
	assert.True(t, ok)
}

func TestStubClimatology_USStd76Profile_UnknownNameNotFound(t *testing.T) {
	clim := NewStubClimatology()
	_, ok := clim.USStd76Profile("nonexistent")
	assert.False(t, ok)
}

func TestStubClimatology_USStd76Profile_ReturnsIndependentCopies(t *testing.T) {
	clim := NewStubClimatology()
	a, ok := clim.USStd76Profile("pressure")
	require.True(t, ok)
	a[0] = -1
	b, _ := clim.USStd76Profile("pressure")
	assert.NotEqual(t, -1.0, b[0])
}

func TestStubClimatology_AFGL86FallsBackToUSStd76(t *testing.T) {
	clim := NewStubClimatology()
	a, ok := clim.AFGL86Profile("temperature", 0, 45)
	require.True(t, ok)
	b, _ := clim.USStd76Profile("temperature")
	assert.Equal(t, b, a)
}

func TestFillMissingFromClimatology_FillsOnlyMissingLevels(t *testing.T) {
	p := NewProduct()
	altitude := mustVar(t, "altitude", Float64, []DimensionType{Vertical}, []int{3})
	altitude.Float64Data = []float64{0, 10, 20}
	altitude.SetUnit("km")
	require.NoError(t, p.AddVariable(altitude))

	temperature := mustVar(t, "temperature", Float64, []DimensionType{Vertical}, []int{3})
	temperature.Float64Data = []float64{300, math.NaN(), 280}
	require.NoError(t, p.AddVariable(temperature))

	ctx := NewContext()
	ctx.ClimatologyUSStd76 = true
	require.NoError(t, FillMissingFromClimatology(p, ctx, "temperature", "temperature"))

	got := p.Variable("temperature")
	require.NotNil(t, got)
	assert.Equal(t, 300.0, got.Float64Data[0])
	assert.False(t, math.IsNaN(got.Float64Data[1]))
	assert.Equal(t, 280.0, got.Float64Data[2])
}

func TestFillMissingFromClimatology_NoopWhenClimatologyDisabled(t *testing.T) {
	p := NewProduct()
	altitude := mustVar(t, "altitude", Float64, []DimensionType{Vertical}, []int{1})
	require.NoError(t, p.AddVariable(altitude))
	temperature := mustVar(t, "temperature", Float64, []DimensionType{Vertical}, []int{1})
	temperature.Float64Data = []float64{math.NaN()}
	require.NoError(t, p.AddVariable(temperature))

	require.NoError(t, FillMissingFromClimatology(p, NewContext(), "temperature", "temperature"))

	got := p.Variable("temperature")
	assert.True(t, math.IsNaN(got.Float64Data[0]))
}

func TestFillMissingFromClimatology_RejectsUnknownVariable(t *testing.T) {
	p := NewProduct()
	altitude := mustVar(t, "altitude", Float64, []DimensionType{Vertical}, []int{1})
	require.NoError(t, p.AddVariable(altitude))

	ctx := NewContext()
	ctx.ClimatologyUSStd76 = true
	err := FillMissingFromClimatology(p, ctx, "temperature", "temperature")
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindVariableNotFound, kind)
}
