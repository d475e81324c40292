package compute

import (
	"fmt"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gpucalc/gpucalc/internal/device"
)

// Algorithm owns a GPU device and an ordered list of functions, and executes
// them strictly in registration order on the device's single queue.
//
// An algorithm moves through two states: while building, functions can be
// appended; after Run it is executed and only ReadOutput (and Release) are
// valid. A failed Run leaves the algorithm unusable; build a new one.
//
// Algorithms are not safe for concurrent use; a single goroutine drives
// construction, Run and readback. Variables themselves are lock-guarded
// through their handles.
type Algorithm struct {
	label string
	dev   *device.Device

	functions []*Function
	buffers   map[*Handle]*device.Buffer

	started  bool
	executed bool
}

// New acquires a GPU device and returns an empty algorithm.
// The label is used for diagnostics only. Returns an error wrapping
// ErrDeviceUnavailable when no compute-capable device exists.
func New(label string) (*Algorithm, error) {
	dev, err := device.New()
	if err != nil {
		return nil, errors.WithMessagef(ErrDeviceUnavailable, "%v", err)
	}
	klog.V(1).Infof("compute: algorithm %q using %s", label, dev.Name())
	return &Algorithm{
		label:   label,
		dev:     dev,
		buffers: make(map[*Handle]*device.Buffer),
	}, nil
}

// Label returns the diagnostic label the algorithm was created with.
func (a *Algorithm) Label() string {
	return a.label
}

// DeviceName describes the GPU device backing the algorithm.
func (a *Algorithm) DeviceName() string {
	return a.dev.Name()
}

// AddFunction appends a function to the dispatch sequence. Append order is
// dispatch order; no dependency analysis is performed. Adding a function
// after Run fails with ErrAlreadyRun.
func (a *Algorithm) AddFunction(f *Function) error {
	if a.started {
		return ErrAlreadyRun
	}
	a.functions = append(a.functions, f)
	return nil
}

// Run prepares and dispatches every registered function in order, then blocks
// until the device has finished all submitted work. Buffers are allocated and
// uploaded for each variable the first time one of its bindings is prepared;
// functions sharing a handle share the buffer, which is how sequential
// functions chain results.
//
// Run can be invoked once. After a failed Run the algorithm must be rebuilt.
func (a *Algorithm) Run() error {
	if a.started {
		return ErrAlreadyRun
	}
	a.started = true

	for i, f := range a.functions {
		if err := a.dispatch(f); err != nil {
			return err
		}
		klog.V(2).Infof("compute: algorithm %q dispatched function %d/%d (%s)",
			a.label, i+1, len(a.functions), f.entryPoint)
	}

	if err := a.dev.Sync(); err != nil {
		return errors.WithMessagef(err, "compute: algorithm %q", a.label)
	}

	a.executed = true
	return nil
}

// dispatch prepares one function's buffers and submits its compute pass.
func (a *Algorithm) dispatch(f *Function) error {
	if len(f.binds) == 0 {
		return errors.WithMessagef(ErrNoBindings, "function %q", f.entryPoint)
	}

	pipeline, err := a.dev.CompilePipeline(f.shader.Source(), f.shader.Hash(), f.entryPoint)
	if err != nil {
		return &EntryPointError{EntryPoint: f.entryPoint, Shader: f.shader.Name(), Err: err}
	}

	entries := make([]device.BindingEntry, 0, len(f.binds))
	for _, vb := range f.binds {
		buf, ok := a.buffers[vb.handle]
		if !ok {
			name, _, data := vb.handle.snapshot()
			if name == "" {
				name = fmt.Sprintf("binding-%d", vb.binding)
			}
			buf = a.dev.CreateStorageBuffer(name, data)
			a.buffers[vb.handle] = buf
		}
		entries = append(entries, device.BindingEntry{Binding: vb.binding, Buffer: buf})
	}

	// The first binding is authoritative for the dispatch grid; shaders
	// co-size their bound resources.
	name, dims := f.binds[0].handle.dimensions()
	grid, err := workgroupsFor(name, dims)
	if err != nil {
		return err
	}

	if err := a.dev.Dispatch(pipeline, entries, grid); err != nil {
		return &DispatchError{Function: f.entryPoint, Err: err}
	}
	return nil
}

// ReadOutput copies the device buffer backing the handle's variable into host
// memory and overwrites the variable through its ReadData method. It is an
// explicit, per-variable operation; nothing is read back automatically.
//
// Fails with ErrNotRun before a successful Run, and with ErrVariableNotBound
// for a handle that no function of this algorithm bound.
func (a *Algorithm) ReadOutput(h *Handle) error {
	if !a.executed {
		return ErrNotRun
	}
	buf, ok := a.buffers[h]
	if !ok {
		return errors.WithMessagef(ErrVariableNotBound, "variable %q", h.Name())
	}

	data, err := a.dev.ReadBuffer(buf)
	if err != nil {
		return errors.WithMessagef(err, "compute: readback of variable %q", h.Name())
	}
	return h.load(data)
}

// Release frees the device buffers created by Run and the device itself.
// The algorithm must not be used afterwards.
func (a *Algorithm) Release() {
	if a.dev == nil {
		return
	}
	for _, buf := range a.buffers {
		a.dev.ReleaseBuffer(buf)
	}
	a.buffers = nil
	a.dev.Release()
	a.dev = nil
}

// IsAvailable reports whether a compute-capable GPU device is present.
func IsAvailable() bool {
	return device.IsAvailable()
}
