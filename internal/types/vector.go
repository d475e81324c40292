package types

import "github.com/pkg/errors"

// Vector is a one-dimensional float32 variable.
type Vector struct {
	name string
	data []float32
}

// NewVector creates a zeroed vector with n elements.
func NewVector(n int, name string) *Vector {
	return &Vector{name: name, data: make([]float32, n)}
}

// NewVectorFromSlice creates a vector backed by data, which is used directly.
func NewVectorFromSlice(data []float32, name string) *Vector {
	return &Vector{name: name, data: data}
}

// Len returns the number of elements.
func (v *Vector) Len() int { return len(v.data) }

// At returns element i.
func (v *Vector) At(i int) float32 { return v.data[i] }

// Set assigns element i.
func (v *Vector) Set(i int, x float32) { v.data[i] = x }

// Fill sets every element to x.
func (v *Vector) Fill(x float32) {
	for i := range v.data {
		v.data[i] = x
	}
}

// Data returns the underlying element slice.
func (v *Vector) Data() []float32 { return v.data }

// Name implements Variable.
func (v *Vector) Name() string { return v.name }

// ByteSize implements Variable.
func (v *Vector) ByteSize() uint64 {
	return uint64(len(v.data)) * 4
}

// Bytes implements Variable.
func (v *Vector) Bytes() []byte {
	return float32Bytes(v.data)
}

// ReadData implements Variable.
func (v *Vector) ReadData(data []byte) error {
	if uint64(len(data)) != v.ByteSize() {
		return errors.Errorf("types: vector %q: got %d bytes, want %d", v.name, len(data), v.ByteSize())
	}
	copy(float32Bytes(v.data), data)
	return nil
}

// DimensionSizes implements Variable: element count on x.
func (v *Vector) DimensionSizes() [3]uint32 {
	return [3]uint32{uint32(len(v.data)), 1, 1}
}
