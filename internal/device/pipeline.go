package device

import (
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Pipeline is a compiled compute pipeline for one shader entry point.
type Pipeline struct {
	pipeline *wgpu.ComputePipeline
	entry    string
}

// Entry returns the entry-point name the pipeline was compiled for.
func (p *Pipeline) Entry() string {
	return p.entry
}

// BindingEntry associates a buffer with a binding slot in bind group 0.
type BindingEntry struct {
	Binding uint32
	Buffer  *Buffer
}

// compileShader compiles WGSL source into a ShaderModule, cached by source hash.
func (d *Device) compileShader(hash, source string) *wgpu.ShaderModule {
	d.mu.RLock()
	if shader, exists := d.shaders[hash]; exists {
		d.mu.RUnlock()
		return shader
	}
	d.mu.RUnlock()

	shader := d.device.CreateShaderModuleWGSL(source)

	d.mu.Lock()
	d.shaders[hash] = shader
	d.mu.Unlock()

	return shader
}

// CompilePipeline returns a compute pipeline for the given WGSL source and
// entry point, compiling and caching it on first use. The bind group layout
// is derived automatically from the shader.
//
// A missing entry point or invalid shader surfaces as an error here, since
// wgpu-native reports those failures during pipeline creation.
func (d *Device) CompilePipeline(source, hash, entryPoint string) (p *Pipeline, err error) {
	key := hash + ":" + entryPoint

	d.mu.RLock()
	if cached, exists := d.pipelines[key]; exists {
		d.mu.RUnlock()
		return cached, nil
	}
	d.mu.RUnlock()

	// wgpu-native panics through the binding on validation failure.
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = errors.Errorf("device: failed to compile pipeline for entry point %q: %v", entryPoint, r)
		}
	}()

	shader := d.compileShader(hash, source)
	pipeline := d.device.CreateComputePipelineSimple(nil, shader, entryPoint)
	if pipeline == nil {
		return nil, errors.Errorf("device: entry point %q not found in shader", entryPoint)
	}

	p = &Pipeline{pipeline: pipeline, entry: entryPoint}

	d.mu.Lock()
	d.pipelines[key] = p
	d.mu.Unlock()

	return p, nil
}

// Dispatch encodes and submits one compute pass: bind group 0 from entries,
// the given pipeline, and a dispatch over the workgroup grid. The submission
// is asynchronous; call Sync to wait for completion.
func (d *Device) Dispatch(p *Pipeline, entries []BindingEntry, workgroups [3]uint32) (err error) {
	// Validation failures (binding/layout mismatch, bad dispatch) panic
	// through the binding; report them as errors instead.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("device: dispatch of %q failed: %v", p.entry, r)
		}
	}()

	bindEntries := make([]wgpu.BindGroupEntry, 0, len(entries))
	for _, e := range entries {
		bindEntries = append(bindEntries, wgpu.BufferBindingEntry(e.Binding, e.Buffer.raw, 0, e.Buffer.alloc))
	}

	bindGroupLayout := p.pipeline.GetBindGroupLayout(0)
	bindGroup := d.device.CreateBindGroupSimple(bindGroupLayout, bindEntries)
	defer bindGroup.Release()

	encoder := d.device.CreateCommandEncoder(nil)
	computePass := encoder.BeginComputePass(nil)
	computePass.SetPipeline(p.pipeline)
	computePass.SetBindGroup(0, bindGroup, nil)
	computePass.DispatchWorkgroups(workgroups[0], workgroups[1], workgroups[2])
	computePass.End()

	cmdBuffer := encoder.Finish(nil)
	d.queue.Submit(cmdBuffer)

	klog.V(3).Infof("device: dispatched %q over %v workgroups", p.entry, workgroups)
	return nil
}
