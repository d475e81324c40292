// Package shader holds WGSL shader sources and prepares them for compilation.
// Sources are treated as opaque text; validation happens in the WebGPU
// backend when the module is compiled.
package shader

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
)

// Shader is a WGSL source container.
//
// It supports token substitution so array extents that are only known at run
// time can be patched into the source before compilation (WGSL has no
// overridable array sizes). A template source with tokens is not valid WGSL
// until every token has been replaced.
type Shader struct {
	source string
	name   string
}

// FromSource creates a Shader from WGSL source text.
// No validation is performed here.
func FromSource(source string) *Shader {
	return &Shader{source: source}
}

// FromFile loads WGSL source from a file.
// The file name (without directory) becomes the shader's diagnostic name.
func FromFile(path string) (*Shader, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("shader: failed to read %s: %w", path, err)
	}
	return &Shader{
		source: string(content),
		name:   filepath.Base(path),
	}, nil
}

// SetName sets the diagnostic name of the shader.
func (s *Shader) SetName(name string) {
	s.name = name
}

// Name returns the diagnostic name, or "" if unnamed.
func (s *Shader) Name() string {
	return s.name
}

// Replace substitutes every occurrence of from with to in the source.
// No correctness check is done on the resulting code.
func (s *Shader) Replace(from, to string) {
	s.source = strings.ReplaceAll(s.source, from, to)
}

// Source returns the current WGSL source text.
func (s *Shader) Source() string {
	return s.source
}

// Hash returns a content hash of the current source, used as a cache key for
// compiled modules and pipelines. Replace changes the hash.
func (s *Shader) Hash() string {
	h := fnv.New64a()
	h.Write([]byte(s.source))
	return fmt.Sprintf("%016x", h.Sum64())
}
