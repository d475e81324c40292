// Copyright 2026 The gpucalc Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package types provides ready-made Variable implementations: float32
// matrices and vectors, and a float16-encoded matrix for half-precision
// storage-buffer shaders. Callers with other data shapes implement
// compute.Variable directly.
package types

import (
	"github.com/gpucalc/gpucalc/compute"
	internaltypes "github.com/gpucalc/gpucalc/internal/types"
)

// Compile-time checks that the built-in types implement compute.Variable.
var (
	_ compute.Variable = (*Matrix)(nil)
	_ compute.Variable = (*Vector)(nil)
	_ compute.Variable = (*Float16Matrix)(nil)
)

// Matrix is a row-major float32 matrix variable.
type Matrix = internaltypes.Matrix

// Vector is a one-dimensional float32 variable.
type Vector = internaltypes.Vector

// Float16Matrix is a matrix mirrored to the device as IEEE 754 halves.
type Float16Matrix = internaltypes.Float16Matrix

// NewMatrix creates a zeroed rows x cols matrix.
func NewMatrix(rows, cols int, name string) *Matrix {
	return internaltypes.NewMatrix(rows, cols, name)
}

// NewMatrixFromSlice creates a matrix backed by data, which must hold exactly
// rows*cols elements.
func NewMatrixFromSlice(data []float32, rows, cols int, name string) (*Matrix, error) {
	return internaltypes.NewMatrixFromSlice(data, rows, cols, name)
}

// NewVector creates a zeroed vector with n elements.
func NewVector(n int, name string) *Vector {
	return internaltypes.NewVector(n, name)
}

// NewVectorFromSlice creates a vector backed by data.
func NewVectorFromSlice(data []float32, name string) *Vector {
	return internaltypes.NewVectorFromSlice(data, name)
}

// NewFloat16Matrix creates a zeroed rows x cols half-precision matrix.
func NewFloat16Matrix(rows, cols int, name string) *Float16Matrix {
	return internaltypes.NewFloat16Matrix(rows, cols, name)
}
