package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEyeIsIdentity(t *testing.T) {
	assert := assert.New(t)
	e := Eye(3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.Equal(want, e[i+j*3])
		}
	}
}

func TestMatMulIdentity(t *testing.T) {
	assert := assert.New(t)
	a := []float64{1, 2, 3, 4, 5, 6} // 2x3 column-major
	e := Eye(3)
	c := Mat(2, 3)
	MatMul("NN", 2, 3, 3, 1.0, a, e, 0.0, c)
	for i := range a {
		assert.InDelta(a[i], c[i], 1e-12)
	}
}

func TestMatInvRoundTrip(t *testing.T) {
	assert := assert.New(t)
	a := []float64{4, 2, 7, 6} // 2x2 column-major: [[4,7],[2,6]]
	orig := append([]float64(nil), a...)
	err := MatInv(a, 2)
	assert.NoError(err)

	prod := Mat(2, 2)
	MatMul("NN", 2, 2, 2, 1.0, orig, a, 0.0, prod)
	assert.InDelta(1.0, prod[0], 1e-9)
	assert.InDelta(0.0, prod[1], 1e-9)
	assert.InDelta(0.0, prod[2], 1e-9)
	assert.InDelta(1.0, prod[3], 1e-9)
}

func TestMatInvSingularReturnsError(t *testing.T) {
	assert := assert.New(t)
	a := []float64{1, 2, 2, 4} // rank-deficient
	err := MatInv(a, 2)
	assert.Error(err)
}
