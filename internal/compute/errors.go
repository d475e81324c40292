package compute

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors reported by Algorithm operations. Wrapped errors carry
// context; match with errors.Is.
var (
	// ErrDeviceUnavailable is returned by New when no compute-capable GPU
	// device can be acquired.
	ErrDeviceUnavailable = errors.New("compute: no compute-capable device available")

	// ErrAlreadyRun is returned when AddFunction or Run is called on an
	// algorithm whose Run has already been invoked.
	ErrAlreadyRun = errors.New("compute: algorithm has already been run")

	// ErrNotRun is returned by ReadOutput before a successful Run.
	ErrNotRun = errors.New("compute: algorithm has not been run")

	// ErrVariableNotBound is returned by ReadOutput for a handle that was
	// never bound to any function of the algorithm.
	ErrVariableNotBound = errors.New("compute: variable was not bound in this algorithm")

	// ErrNoBindings is returned when a function without variable bindings is
	// dispatched; the dispatch grid is sized from the first binding.
	ErrNoBindings = errors.New("compute: function has no variable bindings")
)

// WorkgroupError reports a variable whose extent along one axis exceeds the
// per-axis dispatch limit.
type WorkgroupError struct {
	Variable string
	Axis     int
	Extent   uint32
}

func (e *WorkgroupError) Error() string {
	return fmt.Sprintf("compute: variable %q: extent %d on axis %d exceeds the dispatch limit of %d workgroups",
		e.Variable, e.Extent, e.Axis, maxWorkgroupsPerAxis)
}

// EntryPointError reports a shader whose compilation failed or whose entry
// point does not exist.
type EntryPointError struct {
	EntryPoint string
	Shader     string
	Err        error
}

func (e *EntryPointError) Error() string {
	if e.Shader != "" {
		return fmt.Sprintf("compute: entry point %q in shader %q: %v", e.EntryPoint, e.Shader, e.Err)
	}
	return fmt.Sprintf("compute: entry point %q: %v", e.EntryPoint, e.Err)
}

func (e *EntryPointError) Unwrap() error { return e.Err }

// DispatchError reports a device failure while executing one function, such
// as a binding that does not match the shader's declared layout.
type DispatchError struct {
	Function string
	Err      error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("compute: function %q: %v", e.Function, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }
