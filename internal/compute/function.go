package compute

import (
	"github.com/gpucalc/gpucalc/internal/shader"
)

// VariableBind pairs a variable handle with a binding slot in the shader's
// bind group 0. It carries no behavior; binding-index uniqueness and layout
// conformance are validated by the device at dispatch time.
type VariableBind struct {
	handle  *Handle
	binding uint32
}

// NewVariableBind associates a handle with a binding slot.
func NewVariableBind(h *Handle, binding uint32) VariableBind {
	return VariableBind{handle: h, binding: binding}
}

// Handle returns the bound variable handle.
func (vb VariableBind) Handle() *Handle {
	return vb.handle
}

// Binding returns the binding slot inside the shader's bind group.
func (vb VariableBind) Binding() uint32 {
	return vb.binding
}

// Function is one compute-shader entry point together with its ordered
// variable bindings. Device buffers for its variables are allocated by the
// Algorithm when Run prepares the function, sized to each variable's byte
// size at that moment; later host-side mutations are not re-uploaded.
type Function struct {
	shader     *shader.Shader
	entryPoint string
	binds      []VariableBind
}

// NewFunction creates a function from a shader, the name of a compute entry
// point declared in it, and the bindings to attach. The binds slice is owned
// by the function after the call.
func NewFunction(sh *shader.Shader, entryPoint string, binds []VariableBind) *Function {
	return &Function{
		shader:     sh,
		entryPoint: entryPoint,
		binds:      binds,
	}
}

// EntryPoint returns the entry-point name the function dispatches.
func (f *Function) EntryPoint() string {
	return f.entryPoint
}

// Bindings returns the function's variable bindings in binding order.
func (f *Function) Bindings() []VariableBind {
	return f.binds
}
