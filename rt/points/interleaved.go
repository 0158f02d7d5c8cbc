package points

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gekko3d/pointsync/rt/core"
)

// PointStride is the number of float32 components per point in the interleaved layout:
// position(3) size(1) color(3) alpha(1).
const PointStride = 8

// InterleavedAttribute is one attribute region inside an InterleavedBuffer. It
// tracks its own dirty state and the slot range touched since the last upload.
type InterleavedAttribute struct {
	Name     core.AttributeName
	Offset   int
	ItemSize int

	dirty            bool
	firstDirty, last int
}

func (ia *InterleavedAttribute) Dirty() bool { return ia.dirty }

// DirtySlots returns the inclusive slot range written since the last upload.
func (ia *InterleavedAttribute) DirtySlots() (first, last int, ok bool) {
	return ia.firstDirty, ia.last, ia.dirty
}

func (ia *InterleavedAttribute) mark(slot int) {
	if !ia.dirty {
		ia.firstDirty, ia.last = slot, slot
		ia.dirty = true
		return
	}
	ia.firstDirty = min(ia.firstDirty, slot)
	ia.last = max(ia.last, slot)
}

// InterleavedBuffer stores every point attribute in a single float32 array
// addressed by index*stride+offset. Its capacity is fixed.
type InterleavedBuffer struct {
	array    []float32
	stride   int
	capacity int
	attrs    []*InterleavedAttribute
	byName   map[core.AttributeName]*InterleavedAttribute
}

func NewInterleavedBuffer(capacity int) *InterleavedBuffer {
	b := &InterleavedBuffer{
		array:    make([]float32, capacity*PointStride),
		stride:   PointStride,
		capacity: capacity,
		attrs: []*InterleavedAttribute{
			{Name: core.AttrPosition, Offset: 0, ItemSize: 3},
			{Name: core.AttrSize, Offset: 3, ItemSize: 1},
			{Name: core.AttrColor, Offset: 4, ItemSize: 3},
			{Name: core.AttrAlpha, Offset: 7, ItemSize: 1},
		},
		byName: make(map[core.AttributeName]*InterleavedAttribute, 4),
	}
	for _, a := range b.attrs {
		b.byName[a.Name] = a
	}
	return b
}

// Attribute returns the region for name, nil when the layout does not carry it.
func (b *InterleavedBuffer) Attribute(name core.AttributeName) *InterleavedAttribute {
	return b.byName[name]
}

func (b *InterleavedBuffer) write(attr *InterleavedAttribute, index int, components ...float32) {
	if index < 0 || index >= b.capacity {
		panic(fmt.Sprintf("interleaved %s: index %d out of range [0,%d)", attr.Name, index, b.capacity))
	}
	copy(b.array[index*b.stride+attr.Offset:index*b.stride+attr.Offset+attr.ItemSize], components)
	attr.mark(index)
}

// At returns the components of name stored at index. The slice aliases the buffer.
func (b *InterleavedBuffer) At(name core.AttributeName, index int) []float32 {
	attr := b.byName[name]
	if attr == nil {
		panic(fmt.Sprintf("interleaved: no %s attribute in layout", name))
	}
	if index < 0 || index >= b.capacity {
		panic(fmt.Sprintf("interleaved %s: index %d out of range [0,%d)", name, index, b.capacity))
	}
	o := index*b.stride + attr.Offset
	return b.array[o : o+attr.ItemSize : o+attr.ItemSize]
}

func (b *InterleavedBuffer) Array() []float32 { return b.array }
func (b *InterleavedBuffer) Stride() int      { return b.stride }

func (b *InterleavedBuffer) Label() string     { return "points" }
func (b *InterleavedBuffer) ItemSize() int     { return b.stride }
func (b *InterleavedBuffer) Capacity() int     { return b.capacity }
func (b *InterleavedBuffer) ElementBytes() int { return 4 }
func (b *InterleavedBuffer) Usage() core.Usage { return core.UsageDynamicDraw }

func (b *InterleavedBuffer) Fields() []core.Field {
	fields := make([]core.Field, len(b.attrs))
	for i, a := range b.attrs {
		fields[i] = core.Field{Name: a.Name, Offset: a.Offset, ItemSize: a.ItemSize}
	}
	return fields
}

// Grow panics: the interleaved layout is allocated once.
func (b *InterleavedBuffer) Grow(newCapacity int) {
	if newCapacity != b.capacity {
		panic(fmt.Sprintf("interleaved buffer: fixed capacity %d, cannot grow to %d", b.capacity, newCapacity))
	}
}

func (b *InterleavedBuffer) Dirty() bool {
	for _, a := range b.attrs {
		if a.dirty {
			return true
		}
	}
	return false
}

func (b *InterleavedBuffer) ClearDirty() {
	for _, a := range b.attrs {
		a.dirty = false
	}
}

// DirtyRange is the union of the dirty slot ranges of all attributes, as
// [first, first+count) slots.
func (b *InterleavedBuffer) DirtyRange() (first, count int, ok bool) {
	lo, hi := b.capacity, -1
	for _, a := range b.attrs {
		if f, l, dirty := a.DirtySlots(); dirty {
			lo = min(lo, f)
			hi = max(hi, l)
		}
	}
	if hi < 0 {
		return 0, 0, false
	}
	return lo, hi - lo + 1, true
}

func (b *InterleavedBuffer) AppendBytes(dst []byte, count int) []byte {
	if count < 0 || count > b.capacity {
		count = b.capacity
	}
	for _, v := range b.array[:count*b.stride] {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// AppendRangeBytes encodes slots [first, first+count).
func (b *InterleavedBuffer) AppendRangeBytes(dst []byte, first, count int) []byte {
	if first < 0 || count < 0 || first+count > b.capacity {
		panic(fmt.Sprintf("interleaved buffer: range [%d,%d) out of [0,%d)", first, first+count, b.capacity))
	}
	for _, v := range b.array[first*b.stride : (first+count)*b.stride] {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}
