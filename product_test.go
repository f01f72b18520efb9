package harp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustVar(t *testing.T, name string, dt DataType, dimTypes []DimensionType, dims []int) *Variable {
	t.Helper()
	v, err := NewVariable(name, dt, dimTypes, dims)
	require.NoError(t, err)
	return v
}

func TestProduct_AddVariable_EstablishesDimensionLength(t *testing.T) {
	p := NewProduct()
	require.NoError(t, p.AddVariable(mustVar(t, "pressure", Float64, []DimensionType{Time, Vertical}, []int{2, 3})))
	assert.Equal(t, 2, p.Dimension(Time))
	assert.Equal(t, 3, p.Dimension(Vertical))
}

func TestProduct_AddVariable_RejectsMismatchedDimensionLength(t *testing.T) {
	p := NewProduct()
	require.NoError(t, p.AddVariable(mustVar(t, "pressure", Float64, []DimensionType{Time}, []int{2})))
	err := p.AddVariable(mustVar(t, "temperature", Float64, []DimensionType{Time}, []int{3}))
	require.Error(t, err)
	kind, _ := KindOf(err)
	assert.Equal(t, KindArrayDimsMismatch, kind)
}

func TestProduct_AddVariable_RejectsDuplicateName(t *testing.T) {
	p := NewProduct()
	require.NoError(t, p.AddVariable(mustVar(t, "x", Float64, []DimensionType{Time}, []int{2})))
	err := p.AddVariable(mustVar(t, "x", Float64, []DimensionType{Time}, []int{2}))
	assert.Error(t, err)
}

func TestProduct_RemoveVariable_ResetsUnusedDimension(t *testing.T) {
	p := NewProduct()
	require.NoError(t, p.AddVariable(mustVar(t, "pressure", Float64, []DimensionType{Time, Vertical}, []int{2, 3})))
	require.NoError(t, p.RemoveVariable("pressure"))
	assert.Equal(t, 0, p.Dimension(Time))
	assert.Equal(t, 0, p.Dimension(Vertical))
	assert.False(t, p.HasVariable("pressure"))
}

func TestProduct_RemoveVariable_KeepsDimensionIfStillUsed(t *testing.T) {
	p := NewProduct()
	require.NoError(t, p.AddVariable(mustVar(t, "pressure", Float64, []DimensionType{Time}, []int{2})))
	require.NoError(t, p.AddVariable(mustVar(t, "temperature", Float64, []DimensionType{Time}, []int{2})))
	require.NoError(t, p.RemoveVariable("pressure"))
	assert.Equal(t, 2, p.Dimension(Time))
}

func TestProduct_Verify_DetectsDimensionTableDisagreement(t *testing.T) {
	p := NewProduct()
	require.NoError(t, p.AddVariable(mustVar(t, "pressure", Float64, []DimensionType{Time}, []int{2})))
	p.SetDimension(Time, 5)
	assert.Error(t, p.Verify())
}

func TestProduct_Metadata_DatetimeRange(t *testing.T) {
	p := NewProduct()
	start := mustVar(t, "datetime_start", Float64, []DimensionType{Time}, []int{3})
	start.Float64Data = []float64{10, 5, 20}
	stop := mustVar(t, "datetime_stop", Float64, []DimensionType{Time}, []int{3})
	stop.Float64Data = []float64{11, 6, 21}
	require.NoError(t, p.AddVariable(start))
	require.NoError(t, p.AddVariable(stop))

	m := p.Metadata("test.nc")
	assert.Equal(t, 5.0, m.DatetimeStart)
	assert.Equal(t, 21.0, m.DatetimeStop)
	assert.Equal(t, 3, m.Dimension[Time])
}
