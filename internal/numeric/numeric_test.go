package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatBuffer_ZeroedOnCreationAndReset(t *testing.T) {
	b := NewFloatBuffer(3)
	assert.Equal(t, []float64{0, 0, 0}, b.Data())
	b.Data()[0] = 5
	b.Reset()
	assert.Equal(t, []float64{0, 0, 0}, b.Data())
}

func TestFloatBuffer_SumAndScale(t *testing.T) {
	b := NewFloatBuffer(3)
	data := b.Data()
	data[0], data[1], data[2] = 1, 2, 3
	assert.Equal(t, 6.0, b.Sum())
	b.Scale(2)
	assert.Equal(t, []float64{2, 4, 6}, b.Data())
}

func TestIntBuffer_ZeroedOnCreation(t *testing.T) {
	b := NewIntBuffer(4)
	assert.Equal(t, []int{0, 0, 0, 0}, b.Data())
}

func TestNaNMin(t *testing.T) {
	assert.Equal(t, 1.0, NaNMin(math.NaN(), 1))
	assert.Equal(t, 1.0, NaNMin(1, math.NaN()))
	assert.Equal(t, 1.0, NaNMin(1, 2))
	assert.Equal(t, 1.0, NaNMin(2, 1))
}

func TestNaNMax(t *testing.T) {
	assert.Equal(t, 2.0, NaNMax(math.NaN(), 2))
	assert.Equal(t, 2.0, NaNMax(2, math.NaN()))
	assert.Equal(t, 2.0, NaNMax(1, 2))
	assert.Equal(t, 2.0, NaNMax(2, 1))
}

func TestCircularComponents_ZeroedWhenWeightZeroOrNaN(t *testing.T) {
	x, y, w := CircularComponents(0, 0)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)
	assert.Equal(t, 0.0, w)

	x, y, w = CircularComponents(math.NaN(), 1)
	assert.Equal(t, 0.0, x)
	assert.Equal(t, 0.0, y)
	assert.Equal(t, 0.0, w)
}

func TestCircularComponents_UnitVectorAtZeroAngle(t *testing.T) {
	x, y, w := CircularComponents(0, 1)
	assert.InDelta(t, 1, x, 1e-9)
	assert.InDelta(t, 0, y, 1e-9)
	assert.Equal(t, 1.0, w)
}

func TestCircularMean_RecoversAngleAndMagnitude(t *testing.T) {
	angle, magnitude := CircularMean(1, 0)
	assert.InDelta(t, 0, angle, 1e-9)
	assert.InDelta(t, 1, magnitude, 1e-9)

	angle2, magnitude2 := CircularMean(0, 0)
	assert.InDelta(t, 0, magnitude2, 1e-9)
	_ = angle2
}
