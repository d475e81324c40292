// Package types provides ready-made Variable implementations for common
// host-side data shapes: float32 matrices and vectors, plus a float16-encoded
// matrix for shaders working on half-precision storage buffers.
//
// All types use a flat little-endian byte layout with no padding, matching
// the WGSL layout of a flat array<f32> (or array<u32> holding packed halves).
package types

import (
	"unsafe"

	"github.com/pkg/errors"
)

// Matrix is a row-major float32 matrix. Element (r, c) lives at index
// r*cols + c, which is how a flat array<f32> in WGSL is expected to index it.
type Matrix struct {
	name string
	rows int
	cols int
	data []float32
}

// NewMatrix creates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int, name string) *Matrix {
	return &Matrix{
		name: name,
		rows: rows,
		cols: cols,
		data: make([]float32, rows*cols),
	}
}

// NewMatrixFromSlice creates a matrix backed by data, which must hold exactly
// rows*cols elements. The slice is used directly, not copied.
func NewMatrixFromSlice(data []float32, rows, cols int, name string) (*Matrix, error) {
	if len(data) != rows*cols {
		return nil, errors.Errorf("types: matrix %q: %d elements for %dx%d shape", name, len(data), rows, cols)
	}
	return &Matrix{name: name, rows: rows, cols: cols, data: data}, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// At returns element (r, c).
func (m *Matrix) At(r, c int) float32 {
	return m.data[r*m.cols+c]
}

// Set assigns element (r, c).
func (m *Matrix) Set(r, c int, v float32) {
	m.data[r*m.cols+c] = v
}

// Fill sets every element to v.
func (m *Matrix) Fill(v float32) {
	for i := range m.data {
		m.data[i] = v
	}
}

// Data returns the underlying row-major element slice.
func (m *Matrix) Data() []float32 {
	return m.data
}

// Name implements Variable.
func (m *Matrix) Name() string { return m.name }

// ByteSize implements Variable.
func (m *Matrix) ByteSize() uint64 {
	return uint64(len(m.data)) * 4
}

// Bytes implements Variable. The returned slice reinterprets the element
// storage in place; it is valid until the matrix is garbage collected.
func (m *Matrix) Bytes() []byte {
	return float32Bytes(m.data)
}

// ReadData implements Variable, overwriting the elements from device bytes.
func (m *Matrix) ReadData(data []byte) error {
	if uint64(len(data)) != m.ByteSize() {
		return errors.Errorf("types: matrix %q: got %d bytes, want %d", m.name, len(data), m.ByteSize())
	}
	copy(float32Bytes(m.data), data)
	return nil
}

// DimensionSizes implements Variable: rows on x, columns on y.
func (m *Matrix) DimensionSizes() [3]uint32 {
	return [3]uint32{uint32(m.rows), uint32(m.cols), 1}
}

// float32Bytes reinterprets a float32 slice as its underlying bytes.
func float32Bytes(data []float32) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
}
