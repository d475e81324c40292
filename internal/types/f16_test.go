package types

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloat16MatrixShape(t *testing.T) {
	m := NewFloat16Matrix(3, 2, "half")
	assert.Equal(t, uint64(12), m.ByteSize())
	assert.Equal(t, [3]uint32{3, 2, 1}, m.DimensionSizes())
	assert.Len(t, m.Bytes(), 12)
}

func TestFloat16MatrixRoundTrip(t *testing.T) {
	src := NewFloat16Matrix(2, 2, "src")
	src.Set(0, 0, 1.0)
	src.Set(0, 1, -0.5)
	src.Set(1, 0, 1024)
	src.Set(1, 1, 0.1) // not exactly representable in f16

	dst := NewFloat16Matrix(2, 2, "dst")
	require.NoError(t, dst.ReadData(src.Bytes()))

	// Exactly representable halves survive unchanged; the rest land within
	// half-precision tolerance.
	assert.Equal(t, float32(1.0), dst.At(0, 0))
	assert.Equal(t, float32(-0.5), dst.At(0, 1))
	assert.Equal(t, float32(1024), dst.At(1, 0))
	assert.Less(t, math32.Abs(dst.At(1, 1)-0.1), float32(1e-3))
}

func TestFloat16MatrixReadDataLengthGuard(t *testing.T) {
	m := NewFloat16Matrix(2, 2, "m")
	assert.Error(t, m.ReadData(make([]byte, 16))) // f32-sized buffer is wrong here
	assert.NoError(t, m.ReadData(make([]byte, 8)))
}

func TestFloat16MatrixFill(t *testing.T) {
	m := NewFloat16Matrix(2, 3, "m")
	m.Fill(2.5)

	out := NewFloat16Matrix(2, 3, "out")
	require.NoError(t, out.ReadData(m.Bytes()))
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			assert.Equal(t, float32(2.5), out.At(r, c))
		}
	}
}
