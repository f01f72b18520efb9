package harp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertType_Int32ToFloat64(t *testing.T) {
	v, err := NewVariable("x", Int32, []DimensionType{Time}, []int{3})
	require.NoError(t, err)
	v.Int32Data = []int32{1, 2, 3}
	require.NoError(t, v.ConvertType(Float64))
	assert.Equal(t, Float64, v.DataType)
	assert.Equal(t, []float64{1, 2, 3}, v.Float64Data)
	assert.Nil(t, v.Int32Data)
}

func TestConvertType_FloatToIntTruncates(t *testing.T) {
	v, err := NewVariable("x", Float64, []DimensionType{Time}, []int{3})
	require.NoError(t, err)
	v.Float64Data = []float64{1.9, -1.9, 2.1}
	require.NoError(t, v.ConvertType(Int32))
	assert.Equal(t, []int32{1, -1, 2}, v.Int32Data)
}

func TestConvertType_NoopWhenSameType(t *testing.T) {
	v, err := NewVariable("x", Float64, []DimensionType{Time}, []int{1})
	require.NoError(t, err)
	v.Float64Data = []float64{7}
	require.NoError(t, v.ConvertType(Float64))
	assert.Equal(t, []float64{7}, v.Float64Data)
}

func TestConvertType_ClampsValidRange(t *testing.T) {
	v, err := NewVariable("x", Float64, []DimensionType{Time}, []int{1})
	require.NoError(t, err)
	v.ValidMin = NewFloat64Scalar(-1e10)
	v.ValidMax = NewFloat64Scalar(1e10)
	require.NoError(t, v.ConvertType(Int8))
	lo, hi := typeExtremes(Int8)
	assert.Equal(t, lo, v.ValidMin.AsFloat64())
	assert.Equal(t, hi, v.ValidMax.AsFloat64())
}

func TestConvertType_RejectsStringNumericConversion(t *testing.T) {
	v, err := NewVariable("x", String, []DimensionType{Time}, []int{1})
	require.NoError(t, err)
	err = v.ConvertType(Float64)
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindInvalidType, kind)

	vf, err := NewVariable("y", Float64, []DimensionType{Time}, []int{1})
	require.NoError(t, err)
	err = vf.ConvertType(String)
	require.Error(t, err)
}

func TestConvertUnit_HectoPascalToPascal(t *testing.T) {
	v, err := NewVariable("pressure", Float64, []DimensionType{Time}, []int{2})
	require.NoError(t, err)
	v.Float64Data = []float64{10, 20}
	v.SetUnit("hPa")
	require.NoError(t, v.ConvertUnit("Pa"))
	assert.Equal(t, []float64{1000, 2000}, v.Float64Data)
	assert.Equal(t, "Pa", v.Unit)
}

func TestConvertUnit_PromotesIntegerToFloat64(t *testing.T) {
	v, err := NewVariable("pressure", Int32, []DimensionType{Time}, []int{1})
	require.NoError(t, err)
	v.Int32Data = []int32{10}
	v.SetUnit("hPa")
	require.NoError(t, v.ConvertUnit("Pa"))
	assert.Equal(t, Float64, v.DataType)
	assert.Equal(t, []float64{1000}, v.Float64Data)
}

func TestConvertUnit_KeepsFloat32AsFloat32(t *testing.T) {
	v, err := NewVariable("pressure", Float32, []DimensionType{Time}, []int{1})
	require.NoError(t, err)
	v.Float32Data = []float32{10}
	v.SetUnit("hPa")
	require.NoError(t, v.ConvertUnit("Pa"))
	assert.Equal(t, Float32, v.DataType)
	assert.InDelta(t, float32(1000), v.Float32Data[0], 1e-3)
}

func TestConvertUnit_SkipsNaN(t *testing.T) {
	v, err := NewVariable("pressure", Float64, []DimensionType{Time}, []int{2})
	require.NoError(t, err)
	v.Float64Data = []float64{math.NaN(), 20}
	v.SetUnit("hPa")
	require.NoError(t, v.ConvertUnit("Pa"))
	assert.True(t, math.IsNaN(v.Float64Data[0]))
	assert.Equal(t, 2000.0, v.Float64Data[1])
}

func TestConvertUnit_RejectsMissingUnit(t *testing.T) {
	v, err := NewVariable("pressure", Float64, []DimensionType{Time}, []int{1})
	require.NoError(t, err)
	err = v.ConvertUnit("Pa")
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindUnitConversion, kind)
}

func TestConvertUnit_RejectsIncompatibleDimensions(t *testing.T) {
	v, err := NewVariable("pressure", Float64, []DimensionType{Time}, []int{1})
	require.NoError(t, err)
	v.SetUnit("hPa")
	err = v.ConvertUnit("m")
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindUnitConversion, kind)
}
