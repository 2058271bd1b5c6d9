package reindex

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeVector(t *testing.T) {
	tests := []struct {
		name     string
		input    []float32
		expected []float32
	}{
		{
			name:     "unit vector unchanged",
			input:    []float32{0.0, 1.0, 0.0},
			expected: []float32{0.0, 1.0, 0.0},
		},
		{
			name:     "scales a non-unit vector",
			input:    []float32{3.0, 4.0},
			expected: []float32{0.6, 0.8},
		},
		{
			name:     "negative components",
			input:    []float32{-2.0, 2.0},
			expected: []float32{-1.0 / float32(math.Sqrt(2)), 1.0 / float32(math.Sqrt(2))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizeVector(tt.input)
			require.Len(t, result, len(tt.expected))

			for i := range result {
				assert.InDelta(t, tt.expected[i], result[i], 1e-6, "element %d", i)
			}

			var magnitude float32
			for _, v := range result {
				magnitude += v * v
			}
			assert.InDelta(t, 1.0, math.Sqrt(float64(magnitude)), 1e-6, "result should have unit length")
		})
	}
}

func TestNormalizeVector_ZeroVector(t *testing.T) {
	result := NormalizeVector([]float32{0.0, 0.0, 0.0})
	assert.Equal(t, []float32{0.0, 0.0, 0.0}, result, "zero vector cannot be normalized")
}

func TestNormalizeVector_Empty(t *testing.T) {
	assert.Empty(t, NormalizeVector(nil))
	assert.Empty(t, NormalizeVector([]float32{}))
}

func TestNormalizeVector_DoesNotMutateInput(t *testing.T) {
	input := []float32{3.0, 4.0}
	_ = NormalizeVector(input)
	assert.Equal(t, []float32{3.0, 4.0}, input)
}
