package device

import (
	"unsafe"

	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/pkg/errors"
)

// Buffer is a GPU-resident storage buffer together with the logical byte size
// of the host data it mirrors. WebGPU buffer copies require 4-byte alignment,
// so the allocation may be slightly larger than the logical size.
type Buffer struct {
	raw   *wgpu.Buffer
	size  uint64 // logical byte size of the host data
	alloc uint64 // aligned allocation size
	label string
}

// Size returns the logical byte size of the host data mirrored by the buffer.
func (b *Buffer) Size() uint64 {
	return b.size
}

// Label returns the diagnostic label the buffer was created with.
func (b *Buffer) Label() string {
	return b.label
}

// alignUp rounds size up to the next multiple of 4 for WebGPU buffer copies.
func alignUp(size uint64) uint64 {
	return (size + 3) &^ 3
}

// CreateStorageBuffer creates a storage buffer and uploads data into it.
// The buffer is created mapped so the upload is a single host-side copy.
func (d *Device) CreateStorageBuffer(label string, data []byte) *Buffer {
	size := uint64(len(data))
	alloc := alignUp(size)

	buffer := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Usage:            wgpu.BufferUsageStorage | wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst,
		Size:             alloc,
		MappedAtCreation: wgpu.True,
	})

	mappedPtr := buffer.GetMappedRange(0, alloc)
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), alloc)
	copy(mappedSlice, data)
	buffer.Unmap()

	d.trackBufferAllocation(alloc)

	return &Buffer{raw: buffer, size: size, alloc: alloc, label: label}
}

// ReleaseBuffer releases a storage buffer created with CreateStorageBuffer.
func (d *Device) ReleaseBuffer(b *Buffer) {
	if b == nil || b.raw == nil {
		return
	}
	b.raw.Release()
	b.raw = nil
	d.trackBufferRelease(b.alloc)
}

// ReadBuffer copies a storage buffer back to host memory and returns the
// logical-size byte slice. A pooled staging buffer is used since storage
// buffers cannot be mapped directly.
func (d *Device) ReadBuffer(b *Buffer) ([]byte, error) {
	staging := d.pool.Acquire(b.alloc, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)
	defer d.pool.Release(staging, b.alloc, wgpu.BufferUsageMapRead|wgpu.BufferUsageCopyDst)

	encoder := d.device.CreateCommandEncoder(nil)
	encoder.CopyBufferToBuffer(b.raw, 0, staging, 0, b.alloc)
	cmdBuffer := encoder.Finish(nil)
	d.queue.Submit(cmdBuffer)

	err := staging.MapAsync(d.device, wgpu.MapModeRead, 0, b.alloc)
	if err != nil {
		return nil, errors.Wrapf(err, "device: failed to map staging buffer for %q", b.label)
	}

	mappedPtr := staging.GetMappedRange(0, b.alloc)
	mappedSlice := unsafe.Slice((*byte)(mappedPtr), b.alloc)
	result := make([]byte, b.alloc)
	copy(result, mappedSlice)

	staging.Unmap()

	return result[:b.size], nil
}

// Sync blocks until all previously submitted queue work has completed.
// The queue executes command buffers in submission order, so mapping a
// staging copy of the fence buffer only succeeds once everything submitted
// before it has finished.
func (d *Device) Sync() error {
	_, err := d.ReadBuffer(d.fence)
	return errors.WithMessage(err, "device: sync")
}
