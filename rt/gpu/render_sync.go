package gpu

import (
	"fmt"

	"github.com/gekko3d/pointsync/rt/core"
	"github.com/gekko3d/pointsync/rt/points"

	"github.com/cogentcore/webgpu/wgpu"
)

// RenderSync consumes the dirty attributes of a source once a tick is complete.
type RenderSync interface {
	Sync(src points.Source) error
}

// rangedAttribute is implemented by attributes that know which slots changed.
type rangedAttribute interface {
	DirtyRange() (first, count int, ok bool)
	AppendRangeBytes(dst []byte, first, count int) []byte
}

// Buffer is a GPU buffer owned by the uploader.
type Buffer interface {
	GetSize() uint64
	Release()
}

// Device creates and fills vertex buffers.
type Device interface {
	CreateBuffer(desc *wgpu.BufferDescriptor) (Buffer, error)
	WriteBuffer(buf Buffer, offset uint64, data []byte) error
}

type wgpuDevice struct {
	device *wgpu.Device
	queue  *wgpu.Queue
}

// WrapDevice adapts a wgpu device and its queue to Device.
func WrapDevice(device *wgpu.Device) Device {
	return &wgpuDevice{device: device, queue: device.GetQueue()}
}

func (d *wgpuDevice) CreateBuffer(desc *wgpu.BufferDescriptor) (Buffer, error) {
	buf, err := d.device.CreateBuffer(desc)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *wgpuDevice) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*wgpu.Buffer)
	if !ok {
		return fmt.Errorf("write %T: not a wgpu buffer", buf)
	}
	return d.queue.WriteBuffer(b, offset, data)
}

// BufferUploader mirrors attribute buffers into vertex buffers, one per
// attribute label. Buffers are recreated when the attribute outgrows them.
type BufferUploader struct {
	Device Device
	Logger core.Logger

	buffers   map[string]Buffer
	scratch   []byte
	drawCount int
	bounds    core.Bounds
}

var _ RenderSync = (*BufferUploader)(nil)

func NewBufferUploader(device Device, logger core.Logger) *BufferUploader {
	return &BufferUploader{
		Device:  device,
		Logger:  core.OrNop(logger),
		buffers: make(map[string]Buffer),
		scratch: make([]byte, 0, 64*1024),
		bounds:  core.Bounds{Empty: true},
	}
}

// Sync uploads every dirty attribute of src and clears its dirty flag.
func (u *BufferUploader) Sync(src points.Source) error {
	for _, attr := range src.Attributes() {
		if !attr.Dirty() {
			continue
		}
		size := byteSize(attr)
		if size == 0 {
			attr.ClearDirty()
			continue
		}
		buf, recreated, err := u.ensureBuffer(attr.Label(), size)
		if err != nil {
			return fmt.Errorf("sync %s: %w", attr.Label(), err)
		}
		var offset uint64
		offset, u.scratch = encodeUpload(attr, recreated, u.scratch[:0])
		if err := u.Device.WriteBuffer(buf, offset, u.scratch); err != nil {
			return fmt.Errorf("sync %s: write: %w", attr.Label(), err)
		}
		attr.ClearDirty()
	}
	u.drawCount = src.VisibleCount()
	u.bounds = src.Bounds()
	return nil
}

// encodeUpload picks the bytes to write for attr. A fresh GPU buffer always
// gets the whole array; otherwise only the dirty slot range when known.
func encodeUpload(attr core.Attribute, full bool, dst []byte) (uint64, []byte) {
	if r, ok := attr.(rangedAttribute); ok && !full {
		if first, count, dirty := r.DirtyRange(); dirty {
			offset := uint64(first * attr.ItemSize() * attr.ElementBytes())
			return offset, r.AppendRangeBytes(dst, first, count)
		}
	}
	return 0, attr.AppendBytes(dst, attr.Capacity())
}

func byteSize(attr core.Attribute) uint64 {
	return uint64(attr.Capacity() * attr.ItemSize() * attr.ElementBytes())
}

func (u *BufferUploader) ensureBuffer(label string, neededSize uint64) (Buffer, bool, error) {
	if neededSize%4 != 0 {
		neededSize += 4 - (neededSize % 4)
	}

	current := u.buffers[label]
	if current != nil && current.GetSize() >= neededSize {
		return current, false, nil
	}
	if current != nil {
		current.Release()
		delete(u.buffers, label)
	}

	buf, err := u.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             neededSize,
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, false, err
	}
	u.buffers[label] = buf
	u.Logger.Debugf("gpu: (re)created %s buffer, %d bytes", label, neededSize)
	return buf, true, nil
}

// Buffer returns the GPU buffer mirroring the attribute with the given label.
func (u *BufferUploader) Buffer(label string) Buffer { return u.buffers[label] }

// DrawCount is the visible count recorded by the last Sync.
func (u *BufferUploader) DrawCount() int { return u.drawCount }

// Bounds is the bounding volume recorded by the last Sync.
func (u *BufferUploader) Bounds() core.Bounds { return u.bounds }

func (u *BufferUploader) Release() {
	for label, buf := range u.buffers {
		buf.Release()
		delete(u.buffers, label)
	}
}
