package types

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Float16Matrix is a row-major matrix kept as float32 on the host and
// mirrored to the device as IEEE 754 half-precision values, two bytes per
// element. Useful with shaders that operate on packed f16 storage buffers at
// half the transfer cost of f32.
//
// Precision is that of float16: round-tripping through the device quantizes
// each element to the nearest representable half.
type Float16Matrix struct {
	name    string
	rows    int
	cols    int
	data    []float32
	encoded []byte // scratch for Bytes, re-encoded on each call
}

// NewFloat16Matrix creates a zeroed rows x cols half-precision matrix.
func NewFloat16Matrix(rows, cols int, name string) *Float16Matrix {
	return &Float16Matrix{
		name: name,
		rows: rows,
		cols: cols,
		data: make([]float32, rows*cols),
	}
}

// Rows returns the number of rows.
func (m *Float16Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Float16Matrix) Cols() int { return m.cols }

// At returns element (r, c).
func (m *Float16Matrix) At(r, c int) float32 {
	return m.data[r*m.cols+c]
}

// Set assigns element (r, c).
func (m *Float16Matrix) Set(r, c int, v float32) {
	m.data[r*m.cols+c] = v
}

// Fill sets every element to v.
func (m *Float16Matrix) Fill(v float32) {
	for i := range m.data {
		m.data[i] = v
	}
}

// Name implements Variable.
func (m *Float16Matrix) Name() string { return m.name }

// ByteSize implements Variable: two bytes per element.
func (m *Float16Matrix) ByteSize() uint64 {
	return uint64(len(m.data)) * 2
}

// Bytes implements Variable, encoding the elements to little-endian halves.
func (m *Float16Matrix) Bytes() []byte {
	if m.encoded == nil {
		m.encoded = make([]byte, m.ByteSize())
	}
	for i, v := range m.data {
		binary.LittleEndian.PutUint16(m.encoded[i*2:], float16.Fromfloat32(v).Bits())
	}
	return m.encoded
}

// ReadData implements Variable, decoding little-endian halves from the device.
func (m *Float16Matrix) ReadData(data []byte) error {
	if uint64(len(data)) != m.ByteSize() {
		return errors.Errorf("types: f16 matrix %q: got %d bytes, want %d", m.name, len(data), m.ByteSize())
	}
	for i := range m.data {
		bits := binary.LittleEndian.Uint16(data[i*2:])
		m.data[i] = float16.Frombits(bits).Float32()
	}
	return nil
}

// DimensionSizes implements Variable: rows on x, columns on y.
func (m *Float16Matrix) DimensionSizes() [3]uint32 {
	return [3]uint32{uint32(m.rows), uint32(m.cols), 1}
}
