package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKalmanUpdateSingleState(t *testing.T) {
	assert := assert.New(t)
	// one active state, one measurement directly observing it
	x := []float64{10.0}
	p := []float64{4.0}
	h := []float64{1.0}
	v := []float64{2.0} // innovation: measurement says x should be 2 higher
	r := []float64{1.0}

	err := KalmanUpdate(x, p, h, v, r, 1, 1)
	assert.NoError(err)
	// K = P/(P+R) = 4/5; xp = 10 + 0.8*2 = 11.6
	assert.InDelta(11.6, x[0], 1e-9)
	assert.Less(p[0], 4.0)
}

func TestKalmanUpdateSkipsInactiveStates(t *testing.T) {
	assert := assert.New(t)
	x := []float64{0, 5.0} // first state inactive (zero)
	p := []float64{0, 0, 0, 2.0}
	h := []float64{1.0, 1.0}
	v := []float64{1.0}
	r := []float64{1.0}

	err := KalmanUpdate(x, p, h, v, r, 2, 1)
	assert.NoError(err)
	assert.Equal(0.0, x[0], "inactive state must not be touched")
	assert.NotEqual(5.0, x[1], "active state should have been updated")
}

func TestSymmetrizeAveragesOffDiagonal(t *testing.T) {
	assert := assert.New(t)
	p := []float64{1, 3, 5, 2}
	Symmetrize(p, 2)
	assert.Equal(p[1], p[2])
	assert.InDelta(4.0, p[1], 1e-9)
}
