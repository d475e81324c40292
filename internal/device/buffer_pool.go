package device

import (
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"
)

// sizeClass categorizes buffers for pooling.
type sizeClass int

const (
	classSmall sizeClass = iota
	classMedium
	classLarge
)

const (
	smallThreshold  = 4 * 1024    // 4KB
	mediumThreshold = 1024 * 1024 // 1MB
	maxPoolSize     = 32          // Max pooled buffers per class
)

// pooledBuffer wraps a GPU buffer with the metadata needed for reuse.
type pooledBuffer struct {
	buffer *wgpu.Buffer
	size   uint64
	usage  wgpu.BufferUsage
}

// BufferPool reuses transient GPU buffers to cut allocation overhead.
// Readback creates one staging buffer per call; pooling lets repeated
// readbacks of similarly sized variables share allocations.
type BufferPool struct {
	device *wgpu.Device

	small  []*pooledBuffer
	medium []*pooledBuffer
	large  []*pooledBuffer

	mu sync.Mutex

	totalAllocated uint64
	totalReleased  uint64
	poolHits       uint64
	poolMisses     uint64
}

// NewBufferPool creates a buffer pool for the given device.
func NewBufferPool(device *wgpu.Device) *BufferPool {
	return &BufferPool{device: device}
}

// Acquire returns a pooled buffer whose size and usage cover the request,
// creating a new one when nothing suitable is pooled.
func (p *BufferPool) Acquire(size uint64, usage wgpu.BufferUsage) *wgpu.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	class := classify(size)
	pool := p.pool(class)

	for i, pb := range pool {
		if pb.size >= size && pb.usage&usage == usage {
			buffer := pb.buffer
			p.remove(class, i)
			p.poolHits++
			return buffer
		}
	}

	p.poolMisses++
	p.totalAllocated++

	return p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage: usage,
		Size:  size,
	})
}

// Release returns a buffer to the pool. A full pool releases the buffer
// immediately instead.
func (p *BufferPool) Release(buffer *wgpu.Buffer, size uint64, usage wgpu.BufferUsage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.totalReleased++

	class := classify(size)
	if len(p.pool(class)) >= maxPoolSize {
		buffer.Release()
		return
	}

	p.add(class, &pooledBuffer{buffer: buffer, size: size, usage: usage})
}

// Clear releases every pooled buffer. Called when the device is released.
func (p *BufferPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, pool := range [][]*pooledBuffer{p.small, p.medium, p.large} {
		for _, pb := range pool {
			pb.buffer.Release()
		}
	}
	p.small = p.small[:0]
	p.medium = p.medium[:0]
	p.large = p.large[:0]
}

// Stats returns pool usage statistics.
func (p *BufferPool) Stats() (allocated, released, hits, misses uint64, pooledCount int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.totalAllocated, p.totalReleased, p.poolHits, p.poolMisses,
		len(p.small) + len(p.medium) + len(p.large)
}

// classify determines the size class for a buffer.
func classify(size uint64) sizeClass {
	if size < smallThreshold {
		return classSmall
	}
	if size < mediumThreshold {
		return classMedium
	}
	return classLarge
}

func (p *BufferPool) pool(class sizeClass) []*pooledBuffer {
	switch class {
	case classSmall:
		return p.small
	case classMedium:
		return p.medium
	default:
		return p.large
	}
}

func (p *BufferPool) add(class sizeClass, pb *pooledBuffer) {
	switch class {
	case classSmall:
		p.small = append(p.small, pb)
	case classMedium:
		p.medium = append(p.medium, pb)
	default:
		p.large = append(p.large, pb)
	}
}

func (p *BufferPool) remove(class sizeClass, i int) {
	switch class {
	case classSmall:
		p.small = append(p.small[:i], p.small[i+1:]...)
	case classMedium:
		p.medium = append(p.medium[:i], p.medium[i+1:]...)
	default:
		p.large = append(p.large[:i], p.large[i+1:]...)
	}
}
