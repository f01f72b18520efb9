package harp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVariable_Copy_IsDeepAndIndependent(t *testing.T) {
	v, err := NewVariable("x", String, []DimensionType{Time}, []int{2})
	require.NoError(t, err)
	v.StringData = []string{"a", "b"}

	cp := v.Copy()
	cp.StringData[0] = "changed"
	assert.Equal(t, "a", v.StringData[0])
	assert.Equal(t, "changed", cp.StringData[0])

	cp.Dimension[0] = 99
	assert.Equal(t, 2, v.Dimension[0])
}

func TestVariable_Append_ConcatenatesAlongTime(t *testing.T) {
	a, err := NewVariable("x", Int32, []DimensionType{Time, Vertical}, []int{2, 3})
	require.NoError(t, err)
	a.Int32Data = []int32{1, 2, 3, 4, 5, 6}
	b, err := NewVariable("x", Int32, []DimensionType{Time, Vertical}, []int{1, 3})
	require.NoError(t, err)
	b.Int32Data = []int32{7, 8, 9}

	require.NoError(t, a.Append(b))
	assert.Equal(t, []int32{1, 2, 3, 4, 5, 6, 7, 8, 9}, a.Int32Data)
	assert.Equal(t, 3, a.Dimension[0])
}

func TestVariable_Append_RejectsNameMismatch(t *testing.T) {
	a, err := NewVariable("x", Int32, []DimensionType{Time}, []int{1})
	require.NoError(t, err)
	b, err := NewVariable("y", Int32, []DimensionType{Time}, []int{1})
	require.NoError(t, err)
	assert.Error(t, a.Append(b))
}

func TestVariable_Append_RejectsNonTimeOuterDimension(t *testing.T) {
	a, err := NewVariable("x", Int32, []DimensionType{Vertical}, []int{2})
	require.NoError(t, err)
	b, err := NewVariable("x", Int32, []DimensionType{Vertical}, []int{2})
	require.NoError(t, err)
	assert.Error(t, a.Append(b))
}

func TestVariable_Append_RejectsInnerDimensionMismatch(t *testing.T) {
	a, err := NewVariable("x", Int32, []DimensionType{Time, Vertical}, []int{1, 3})
	require.NoError(t, err)
	b, err := NewVariable("x", Int32, []DimensionType{Time, Vertical}, []int{1, 2})
	require.NoError(t, err)
	assert.Error(t, a.Append(b))
}
