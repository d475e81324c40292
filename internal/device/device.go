// Package device wraps the WebGPU device and queue used to execute compute
// dispatches. Uses go-webgpu (github.com/go-webgpu/webgpu) for zero-CGO
// WebGPU bindings.
//
// The package owns adapter/device/queue acquisition, the shader-module and
// pipeline caches, buffer creation and GPU-to-host readback. Everything above
// it (variable bookkeeping, dispatch ordering) lives in internal/compute.
package device

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrNoAdapter is returned by New when no compute-capable adapter or device
// can be acquired, or when the native WebGPU library is missing.
var ErrNoAdapter = errors.New("device: no compute-capable adapter available")

// Device owns one WebGPU device and its default queue.
//
// All command submission goes through the single queue, so submitted work
// executes in submission order. Compiled shader modules and pipelines are
// cached by source hash and entry point.
type Device struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*Pipeline
	mu        sync.RWMutex

	adapterInfo *wgpu.AdapterInfoGo

	// Buffer pool for staging buffer reuse
	pool *BufferPool

	// 4-byte marker buffer used by Sync to fence queue completion.
	fence *Buffer

	// Memory tracking
	memoryStats struct {
		totalAllocatedBytes uint64
		peakMemoryBytes     uint64
		activeBuffers       int64
		mu                  sync.Mutex
	}
}

// New acquires a WebGPU device and queue from the first suitable adapter,
// preferring high-performance adapters.
// Returns an error wrapping ErrNoAdapter if WebGPU is not available.
func New() (d *Device, err error) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			d = nil
			err = errors.WithMessagef(ErrNoAdapter, "native library not available: %v", r)
		}
	}()

	instance, _ := wgpu.CreateInstance(nil)

	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, errors.WithMessagef(ErrNoAdapter, "request adapter: %v", adapterErr)
	}

	// Adapter info is diagnostic only; GetInfo may fail without consequence.
	adapterInfo, _ := adapter.GetInfo()

	dev, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, errors.WithMessagef(ErrNoAdapter, "request device: %v", deviceErr)
	}

	queue := dev.GetQueue()
	if queue == nil {
		dev.Release()
		adapter.Release()
		instance.Release()
		return nil, errors.WithMessage(ErrNoAdapter, "failed to get queue")
	}

	d = &Device{
		instance:    instance,
		adapter:     adapter,
		device:      dev,
		queue:       queue,
		shaders:     make(map[string]*wgpu.ShaderModule),
		pipelines:   make(map[string]*Pipeline),
		adapterInfo: adapterInfo,
	}
	d.pool = NewBufferPool(dev)
	d.fence = d.CreateStorageBuffer("fence", make([]byte, 4))

	klog.V(2).Infof("device: acquired adapter %s (%s)", adapterInfo.Device, adapterInfo.Vendor)
	return d, nil
}

// Release frees every cached pipeline and shader module, the buffer pool and
// the underlying WebGPU objects. The Device must not be used afterwards.
func (d *Device) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fence != nil {
		d.ReleaseBuffer(d.fence)
		d.fence = nil
	}
	if d.pool != nil {
		d.pool.Clear()
		d.pool = nil
	}

	for _, p := range d.pipelines {
		p.pipeline.Release()
	}
	d.pipelines = nil

	for _, s := range d.shaders {
		s.Release()
	}
	d.shaders = nil

	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
}

// AdapterInfo returns information about the GPU adapter in use.
func (d *Device) AdapterInfo() *wgpu.AdapterInfoGo {
	return d.adapterInfo
}

// Name returns a human-readable description of the device.
func (d *Device) Name() string {
	if d.adapterInfo != nil {
		return "WebGPU (" + d.adapterInfo.Device + " " + d.adapterInfo.Vendor + ")"
	}
	return "WebGPU"
}

// IsAvailable checks if WebGPU is available on this system.
func IsAvailable() (available bool) {
	// Recover from panic if wgpu_native library is not found.
	defer func() {
		if r := recover(); r != nil {
			available = false
		}
	}()

	instance, _ := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, err := instance.RequestAdapter(nil)
	if err != nil {
		return false
	}
	adapter.Release()

	return true
}

// ListAdapters returns information about available GPU adapters.
// WebGPU has no enumeration API, so this reports the default adapter only.
func ListAdapters() (adapters []*wgpu.AdapterInfoGo, err error) {
	defer func() {
		if r := recover(); r != nil {
			adapters = nil
			err = errors.WithMessagef(ErrNoAdapter, "native library not available: %v", r)
		}
	}()

	instance, _ := wgpu.CreateInstance(nil)
	defer instance.Release()

	adapter, adapterErr := instance.RequestAdapter(nil)
	if adapterErr != nil {
		return nil, errors.WithMessagef(ErrNoAdapter, "request adapter: %v", adapterErr)
	}
	defer adapter.Release()

	info, _ := adapter.GetInfo()
	return []*wgpu.AdapterInfoGo{info}, nil
}

// MemoryStats represents GPU memory usage statistics.
type MemoryStats struct {
	// Total bytes allocated since device creation
	TotalAllocatedBytes uint64
	// Peak memory usage in bytes
	PeakMemoryBytes uint64
	// Number of currently active buffers
	ActiveBuffers int64
	// Staging buffer pool statistics
	PoolAllocated uint64
	PoolReleased  uint64
	PoolHits      uint64
	PoolMisses    uint64
	PooledBuffers int
}

// MemoryStats returns current GPU memory usage statistics.
func (d *Device) MemoryStats() MemoryStats {
	d.memoryStats.mu.Lock()
	stats := MemoryStats{
		TotalAllocatedBytes: d.memoryStats.totalAllocatedBytes,
		PeakMemoryBytes:     d.memoryStats.peakMemoryBytes,
		ActiveBuffers:       d.memoryStats.activeBuffers,
	}
	d.memoryStats.mu.Unlock()

	allocated, released, hits, misses, pooled := d.pool.Stats()
	stats.PoolAllocated = allocated
	stats.PoolReleased = released
	stats.PoolHits = hits
	stats.PoolMisses = misses
	stats.PooledBuffers = pooled
	return stats
}

// trackBufferAllocation records a buffer allocation in memory statistics.
func (d *Device) trackBufferAllocation(size uint64) {
	d.memoryStats.mu.Lock()
	defer d.memoryStats.mu.Unlock()

	d.memoryStats.totalAllocatedBytes += size
	d.memoryStats.activeBuffers++

	if d.memoryStats.totalAllocatedBytes > d.memoryStats.peakMemoryBytes {
		d.memoryStats.peakMemoryBytes = d.memoryStats.totalAllocatedBytes
	}
}

// trackBufferRelease records a buffer release in memory statistics.
func (d *Device) trackBufferRelease(size uint64) {
	d.memoryStats.mu.Lock()
	defer d.memoryStats.mu.Unlock()

	if d.memoryStats.totalAllocatedBytes >= size {
		d.memoryStats.totalAllocatedBytes -= size
	}
	d.memoryStats.activeBuffers--
}
