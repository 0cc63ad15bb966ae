package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineOrDot_NormalizedVectorsUseDotProduct(t *testing.T) {
	a := normalize([]float32{1, 2, 3})
	b := normalize([]float32{1, 2, 3})

	sim := cosineOrDot(a, b)
	assert.InDelta(t, 1.0, sim, 1e-6)
}

func TestCosineOrDot_UnnormalizedFallsBackToCosine(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 5}

	sim := cosineOrDot(a, b)
	assert.InDelta(t, 0.0, sim, 1e-6)
}

func TestCosineOrDot_MismatchedLengthReturnsZero(t *testing.T) {
	assert.Equal(t, 0.0, cosineOrDot([]float32{1, 2}, []float32{1}))
}

func TestNormalize_ZeroVectorUnchanged(t *testing.T) {
	zero := []float32{0, 0, 0}
	assert.Equal(t, zero, normalize(zero))
}
