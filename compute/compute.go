// Copyright 2026 The gpucalc Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package compute provides the public API for sequencing compute-shader
// dispatches on a GPU device.
//
// A caller defines variables (any type implementing Variable, or one of the
// types package implementations), wraps them in shared handles, binds them to
// shader binding slots, groups the bindings into functions and registers the
// functions with an Algorithm:
//
//	sh := shader.FromSource(wgslSource)
//	m := types.NewMatrix(3, 3, "m")
//	h := compute.NewHandle(m)
//
//	alg, err := compute.New("add-one")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer alg.Release()
//
//	fn := compute.NewFunction(sh, "add_one", []compute.VariableBind{
//	    compute.NewVariableBind(h, 0),
//	})
//	alg.AddFunction(fn)
//
//	if err := alg.Run(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := alg.ReadOutput(h); err != nil {
//	    log.Fatal(err)
//	}
package compute

import (
	internalcompute "github.com/gpucalc/gpucalc/internal/compute"
	internalshader "github.com/gpucalc/gpucalc/internal/shader"
)

// Variable is the capability contract for host-side data that can be
// mirrored to and from GPU memory.
type Variable = internalcompute.Variable

// Handle is a shared, lock-guarded reference to a caller-owned Variable.
type Handle = internalcompute.Handle

// VariableBind pairs a variable handle with a shader binding slot.
type VariableBind = internalcompute.VariableBind

// Function is one compute-shader entry point plus its variable bindings.
type Function = internalcompute.Function

// Algorithm is an ordered sequence of functions executed sequentially on one
// GPU device.
type Algorithm = internalcompute.Algorithm

// Error types reported by Algorithm operations.
type (
	// WorkgroupError reports a variable extent exceeding the dispatch limit.
	WorkgroupError = internalcompute.WorkgroupError
	// EntryPointError reports a failed shader compile or missing entry point.
	EntryPointError = internalcompute.EntryPointError
	// DispatchError reports a device failure while executing one function.
	DispatchError = internalcompute.DispatchError
)

// Sentinel errors; match with errors.Is.
var (
	ErrDeviceUnavailable = internalcompute.ErrDeviceUnavailable
	ErrAlreadyRun        = internalcompute.ErrAlreadyRun
	ErrNotRun            = internalcompute.ErrNotRun
	ErrVariableNotBound  = internalcompute.ErrVariableNotBound
	ErrNoBindings        = internalcompute.ErrNoBindings
)

// New acquires a GPU device and returns an empty algorithm.
//
// Returns an error wrapping ErrDeviceUnavailable when no compute-capable
// device exists, before any function is added. Call Release when done to
// free GPU resources.
func New(label string) (*Algorithm, error) {
	return internalcompute.New(label)
}

// NewHandle wraps a caller-owned variable in a shareable, lock-guarded
// handle. The same handle must be used for binding and for ReadOutput.
func NewHandle(v Variable) *Handle {
	return internalcompute.NewHandle(v)
}

// NewVariableBind associates a handle with a binding slot in the shader's
// bind group 0.
func NewVariableBind(h *Handle, binding uint32) VariableBind {
	return internalcompute.NewVariableBind(h, binding)
}

// NewFunction creates a function from a shader, a compute entry-point name
// declared in it, and an ordered set of bindings. The binds slice is owned by
// the function after the call.
func NewFunction(sh *internalshader.Shader, entryPoint string, binds []VariableBind) *Function {
	return internalcompute.NewFunction(sh, entryPoint, binds)
}

// IsAvailable checks if a compute-capable GPU device is present on the
// current system. Useful for graceful fallback when no GPU is available.
func IsAvailable() bool {
	return internalcompute.IsAvailable()
}
