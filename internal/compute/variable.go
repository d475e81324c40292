// Package compute sequences compute-shader dispatches on a single GPU device.
//
// Callers implement the Variable interface for their host-side data, wrap
// each variable in a lock-guarded Handle, associate handles with shader
// binding slots via VariableBind, group bindings into Functions, and register
// the functions with an Algorithm. Run dispatches every function strictly in
// registration order; ReadOutput copies a variable's device buffer back into
// host memory on demand.
package compute

import "sync"

// Variable is the capability contract for host-side data that can be mirrored
// to and from GPU memory. Implementations are supplied by the caller; the
// types package provides ready-made ones for common shapes.
type Variable interface {
	// Name returns a diagnostic name, or "" if unnamed. It has no
	// functional effect.
	Name() string

	// ByteSize returns the total bytes needed to represent the variable on
	// the device. It must equal len(Bytes()) at call time.
	ByteSize() uint64

	// Bytes returns a read-only byte view of the current contents, used to
	// populate the device buffer. The encoding must be a deterministic flat
	// reinterpretation of the native representation with no platform padding.
	Bytes() []byte

	// ReadData overwrites the contents from bytes read off the device.
	// It must accept exactly ByteSize() bytes and reject any other length.
	ReadData(data []byte) error

	// DimensionSizes returns the logical extents along up to three axes,
	// used to size the dispatch grid. Unused axes are 1.
	DimensionSizes() [3]uint32
}

// maxWorkgroupsPerAxis is the WebGPU default limit for workgroup counts per
// dispatch dimension.
const maxWorkgroupsPerAxis = 65535

// workgroupsFor derives the dispatch grid from a variable's dimensions.
// Zero extents dispatch a single workgroup on that axis.
func workgroupsFor(name string, dims [3]uint32) ([3]uint32, error) {
	grid := [3]uint32{1, 1, 1}
	for axis, extent := range dims {
		if extent > maxWorkgroupsPerAxis {
			return grid, &WorkgroupError{Variable: name, Axis: axis, Extent: extent}
		}
		if extent > 0 {
			grid[axis] = extent
		}
	}
	return grid, nil
}

// Handle is a shared, mutex-guarded reference to a caller-owned Variable.
//
// The caller keeps ownership of the variable; the algorithm acquires the lock
// only for the duration of an upload or readback byte copy. Handle identity
// (the pointer) is what associates a variable with its device buffer, so the
// same Handle must be used for binding and for ReadOutput.
type Handle struct {
	mu sync.Mutex
	v  Variable
}

// NewHandle wraps a variable in a shareable handle.
func NewHandle(v Variable) *Handle {
	return &Handle{v: v}
}

// With runs f with the variable while holding the handle's lock.
// Use it to inspect or mutate the variable when an algorithm may be touching
// it from another goroutine.
func (h *Handle) With(f func(Variable)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f(h.v)
}

// Name returns the variable's diagnostic name.
func (h *Handle) Name() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.v.Name()
}

// snapshot copies the variable's current bytes and dimensions under the lock.
func (h *Handle) snapshot() (name string, dims [3]uint32, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	data = make([]byte, h.v.ByteSize())
	copy(data, h.v.Bytes())
	return h.v.Name(), h.v.DimensionSizes(), data
}

// dimensions returns the variable's name and extents under the lock.
func (h *Handle) dimensions() (name string, dims [3]uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.v.Name(), h.v.DimensionSizes()
}

// load overwrites the variable from device bytes under the lock.
func (h *Handle) load(data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.v.ReadData(data)
}
