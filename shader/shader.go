// Copyright 2026 The gpucalc Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package shader provides WGSL shader source containers for the compute API.
//
// A Shader wraps opaque WGSL text; nothing is validated until the WebGPU
// backend compiles the module. Replace supports token substitution for array
// extents only known at run time:
//
//	sh, err := shader.FromFile("kernels/scale.wgsl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sh.Replace("$N", strconv.Itoa(n))
package shader

import (
	internalshader "github.com/gpucalc/gpucalc/internal/shader"
)

// Shader is a WGSL source container with token templating.
type Shader = internalshader.Shader

// FromSource creates a Shader from WGSL source text.
func FromSource(source string) *Shader {
	return internalshader.FromSource(source)
}

// FromFile loads WGSL source from a file.
func FromFile(path string) (*Shader, error) {
	return internalshader.FromFile(path)
}
