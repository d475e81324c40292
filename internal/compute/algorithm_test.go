package compute

import (
	"errors"
	"strconv"
	"testing"

	"github.com/gpucalc/gpucalc/internal/shader"
	"github.com/gpucalc/gpucalc/internal/types"
)

// Flat row-major layout, one invocation per element. id.x is the row, id.y
// the column, matching Matrix.DimensionSizes.
const mat3WGSL = `
@group(0) @binding(0)
var<storage, read_write> a: array<f32>;

@compute @workgroup_size(1, 1)
fn add_one(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x * 3u + id.y;
    a[i] = a[i] + 1.0;
}

@compute @workgroup_size(1, 1)
fn copy_in_place(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x * 3u + id.y;
    a[i] = a[i];
}
`

const sumWGSL = `
@group(0) @binding(0)
var<storage, read_write> a: array<f32>;
@group(0) @binding(1)
var<storage, read_write> b: array<f32>;

@compute @workgroup_size(1, 1)
fn add_matrices(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x * 3u + id.y;
    a[i] = a[i] + b[i];
}
`

// add_one over a $COLS-wide matrix; the token is patched per test.
const templateWGSL = `
@group(0) @binding(0)
var<storage, read_write> a: array<f32>;

@compute @workgroup_size(1, 1)
fn add_one(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x * $COLSu + id.y;
    a[i] = a[i] + 1.0;
}
`

// newTestAlgorithm acquires a device-backed algorithm or skips the test when
// no GPU is available.
func newTestAlgorithm(t *testing.T, label string) *Algorithm {
	t.Helper()
	alg, err := New(label)
	if err != nil {
		if errors.Is(err, ErrDeviceUnavailable) {
			t.Skipf("GPU not available: %v", err)
		}
		t.Fatalf("New: %v", err)
	}
	return alg
}

func TestAddOne3x3(t *testing.T) {
	alg := newTestAlgorithm(t, "add-one")
	defer alg.Release()

	m := types.NewMatrix(3, 3, "m")
	h := NewHandle(m)

	fn := NewFunction(shader.FromSource(mat3WGSL), "add_one", []VariableBind{
		NewVariableBind(h, 0),
	})
	if err := alg.AddFunction(fn); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}

	if err := alg.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := alg.ReadOutput(h); err != nil {
		t.Fatalf("ReadOutput: %v", err)
	}

	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if m.At(r, c) != 1 {
				t.Errorf("m[%d][%d] = %v, want 1", r, c, m.At(r, c))
			}
		}
	}
}

func TestSequentialSharedVariable(t *testing.T) {
	alg := newTestAlgorithm(t, "sequential")
	defer alg.Release()

	const rows, cols = 64, 64
	m := types.NewMatrix(rows, cols, "m")
	h := NewHandle(m)

	sh := shader.FromSource(templateWGSL)
	sh.Replace("$COLS", strconv.Itoa(cols))

	// Two functions bound to the same handle share one device buffer, so the
	// second dispatch sees the first one's result.
	for i := 0; i < 2; i++ {
		fn := NewFunction(sh, "add_one", []VariableBind{NewVariableBind(h, 0)})
		if err := alg.AddFunction(fn); err != nil {
			t.Fatalf("AddFunction: %v", err)
		}
	}

	if err := alg.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := alg.ReadOutput(h); err != nil {
		t.Fatalf("ReadOutput: %v", err)
	}

	for i, v := range m.Data() {
		if v != 2 {
			t.Fatalf("element %d = %v, want 2 (add_one applied twice)", i, v)
		}
	}
}

func TestAddMatrices(t *testing.T) {
	alg := newTestAlgorithm(t, "add-matrices")
	defer alg.Release()

	a := types.NewMatrix(3, 3, "a")
	a.Fill(1)
	b := types.NewMatrix(3, 3, "b")
	b.Fill(2)

	ha := NewHandle(a)
	hb := NewHandle(b)

	fn := NewFunction(shader.FromSource(sumWGSL), "add_matrices", []VariableBind{
		NewVariableBind(ha, 0),
		NewVariableBind(hb, 1),
	})
	if err := alg.AddFunction(fn); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}

	if err := alg.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := alg.ReadOutput(ha); err != nil {
		t.Fatalf("ReadOutput(a): %v", err)
	}
	if err := alg.ReadOutput(hb); err != nil {
		t.Fatalf("ReadOutput(b): %v", err)
	}

	for i := range a.Data() {
		if a.Data()[i] != 3 {
			t.Errorf("a[%d] = %v, want 3", i, a.Data()[i])
		}
		if b.Data()[i] != 2 {
			t.Errorf("b[%d] = %v, want 2 (unchanged)", i, b.Data()[i])
		}
	}
}

func TestByteRoundTrip(t *testing.T) {
	alg := newTestAlgorithm(t, "round-trip")
	defer alg.Release()

	data := []float32{0.5, -1.25, 3e6, 0, 42, -0.001, 7, 1e-30, 9}
	m, err := types.NewMatrixFromSlice(data, 3, 3, "m")
	if err != nil {
		t.Fatalf("NewMatrixFromSlice: %v", err)
	}
	want := append([]float32(nil), data...)
	h := NewHandle(m)

	fn := NewFunction(shader.FromSource(mat3WGSL), "copy_in_place", []VariableBind{
		NewVariableBind(h, 0),
	})
	if err := alg.AddFunction(fn); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}

	if err := alg.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := alg.ReadOutput(h); err != nil {
		t.Fatalf("ReadOutput: %v", err)
	}

	for i := range want {
		if m.Data()[i] != want[i] {
			t.Errorf("element %d = %v, want %v", i, m.Data()[i], want[i])
		}
	}
}

func TestReadOutputUnboundVariable(t *testing.T) {
	alg := newTestAlgorithm(t, "unbound")
	defer alg.Release()

	bound := NewHandle(types.NewMatrix(3, 3, "bound"))
	fn := NewFunction(shader.FromSource(mat3WGSL), "add_one", []VariableBind{
		NewVariableBind(bound, 0),
	})
	if err := alg.AddFunction(fn); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}
	if err := alg.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	stray := types.NewMatrix(3, 3, "stray")
	stray.Fill(5)
	err := alg.ReadOutput(NewHandle(stray))
	if !errors.Is(err, ErrVariableNotBound) {
		t.Fatalf("ReadOutput(unbound) = %v, want ErrVariableNotBound", err)
	}
	for _, v := range stray.Data() {
		if v != 5 {
			t.Fatal("unbound variable was mutated by failed readback")
		}
	}
}

func TestStateMachine(t *testing.T) {
	alg := newTestAlgorithm(t, "states")
	defer alg.Release()

	h := NewHandle(types.NewMatrix(3, 3, "m"))
	fn := NewFunction(shader.FromSource(mat3WGSL), "add_one", []VariableBind{
		NewVariableBind(h, 0),
	})

	// Readback is invalid before Run.
	if err := alg.ReadOutput(h); !errors.Is(err, ErrNotRun) {
		t.Fatalf("ReadOutput before Run = %v, want ErrNotRun", err)
	}

	if err := alg.AddFunction(fn); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}
	if err := alg.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Building is closed once Run has been invoked.
	if err := alg.AddFunction(fn); !errors.Is(err, ErrAlreadyRun) {
		t.Fatalf("AddFunction after Run = %v, want ErrAlreadyRun", err)
	}
	if err := alg.Run(); !errors.Is(err, ErrAlreadyRun) {
		t.Fatalf("second Run = %v, want ErrAlreadyRun", err)
	}
}

func TestEntryPointNotFound(t *testing.T) {
	alg := newTestAlgorithm(t, "bad-entry")
	defer alg.Release()

	h := NewHandle(types.NewMatrix(3, 3, "m"))
	fn := NewFunction(shader.FromSource(mat3WGSL), "no_such_entry", []VariableBind{
		NewVariableBind(h, 0),
	})
	if err := alg.AddFunction(fn); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}

	err := alg.Run()
	var epErr *EntryPointError
	if !errors.As(err, &epErr) {
		t.Fatalf("Run = %v, want EntryPointError", err)
	}
	if epErr.EntryPoint != "no_such_entry" {
		t.Errorf("EntryPoint = %q, want %q", epErr.EntryPoint, "no_such_entry")
	}
}

func TestFunctionWithoutBindings(t *testing.T) {
	alg := newTestAlgorithm(t, "no-binds")
	defer alg.Release()

	fn := NewFunction(shader.FromSource(mat3WGSL), "add_one", nil)
	if err := alg.AddFunction(fn); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}
	if err := alg.Run(); !errors.Is(err, ErrNoBindings) {
		t.Fatalf("Run = %v, want ErrNoBindings", err)
	}
}

func TestWorkgroupLimitSurfacedAtRun(t *testing.T) {
	alg := newTestAlgorithm(t, "too-big")
	defer alg.Release()

	v := &fakeVariable{name: "huge", data: make([]byte, 4), dims: [3]uint32{70000, 1, 1}}
	fn := NewFunction(shader.FromSource(mat3WGSL), "add_one", []VariableBind{
		NewVariableBind(NewHandle(v), 0),
	})
	if err := alg.AddFunction(fn); err != nil {
		t.Fatalf("AddFunction: %v", err)
	}

	err := alg.Run()
	var wgErr *WorkgroupError
	if !errors.As(err, &wgErr) {
		t.Fatalf("Run = %v, want WorkgroupError", err)
	}
	if wgErr.Axis != 0 {
		t.Errorf("Axis = %d, want 0", wgErr.Axis)
	}
}
