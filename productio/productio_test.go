package productio

import (
	"testing"

	harp "github.com/stcorp/harp-sub000"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndependentDimName(t *testing.T) {
	assert.Equal(t, "pressure_independent_1", independentDimName("pressure", 1))
}

func TestZeroSample_OneEntryPerNumericType(t *testing.T) {
	cases := []harp.DataType{harp.Int8, harp.Int16, harp.Int32, harp.Float32, harp.Float64}
	for _, dt := range cases {
		sample, err := zeroSample(dt)
		require.NoError(t, err)
		assert.NotNil(t, sample)
	}
}

func TestZeroSample_RejectsString(t *testing.T) {
	_, err := zeroSample(harp.String)
	assert.Error(t, err)
}

func TestDataTypeOf_RoundTripsWithZeroSample(t *testing.T) {
	cases := []harp.DataType{harp.Int8, harp.Int16, harp.Int32, harp.Float32, harp.Float64}
	for _, dt := range cases {
		sample, err := zeroSample(dt)
		require.NoError(t, err)
		got, err := dataTypeOf(sample)
		require.NoError(t, err)
		assert.Equal(t, dt, got)
	}
}

func TestDataTypeOf_RejectsUnsupportedType(t *testing.T) {
	_, err := dataTypeOf([]bool{true})
	assert.Error(t, err)
}

func TestRawData_ReturnsUnderlyingTypedSlice(t *testing.T) {
	v, err := harp.NewVariable("x", harp.Int32, []harp.DimensionType{harp.Independent}, []int{3})
	require.NoError(t, err)
	v.Int32Data = []int32{1, 2, 3}
	data, ok := rawData(v).([]int32)
	require.True(t, ok)
	assert.Equal(t, []int32{1, 2, 3}, data)
}

func TestCopyInto_CopiesMatchingSlice(t *testing.T) {
	v, err := harp.NewVariable("x", harp.Float64, []harp.DimensionType{harp.Independent}, []int{3})
	require.NoError(t, err)
	require.NoError(t, copyInto(v, []float64{1, 2, 3}))
	assert.Equal(t, []float64{1, 2, 3}, v.Float64Data)
}

func TestCopyInto_RejectsUnsupportedType(t *testing.T) {
	v, err := harp.NewVariable("x", harp.Float64, []harp.DimensionType{harp.Independent}, []int{1})
	require.NoError(t, err)
	assert.Error(t, copyInto(v, []bool{true}))
}
