package core

import (
	"encoding/binary"
	"fmt"
	"math"
)

// AttributeName identifies one per-particle attribute stream.
type AttributeName int

const (
	AttrPosition AttributeName = iota
	AttrSize
	AttrColor
	AttrAlpha
	AttrRotation
	AttrScale
	AttrSpriteIndex

	attributeNameCount
)

var attributeLabels = [attributeNameCount]string{
	AttrPosition:    "position",
	AttrSize:        "size",
	AttrColor:       "color",
	AttrAlpha:       "alpha",
	AttrRotation:    "aRotation",
	AttrScale:       "aScale",
	AttrSpriteIndex: "aSpriteIdx",
}

func (n AttributeName) String() string {
	if n < 0 || n >= attributeNameCount {
		return fmt.Sprintf("AttributeName(%d)", int(n))
	}
	return attributeLabels[n]
}

// Usage is the upload hint for the rendering backend.
type Usage uint8

const (
	UsageStaticDraw Usage = iota
	UsageDynamicDraw
)

// Element is the set of component types an attribute buffer can hold.
type Element interface {
	float32 | uint8
}

// Field describes one named attribute inside an element, in components.
type Field struct {
	Name     AttributeName
	Offset   int
	ItemSize int
	Integer  bool
}

// Attribute is the type-erased view of an attribute buffer used by slot growth
// and by the render sync side.
type Attribute interface {
	Label() string
	// ItemSize is the number of components per slot (the stride for interleaved data).
	ItemSize() int
	Fields() []Field
	Capacity() int
	// ElementBytes is the encoded size of one component as produced by AppendBytes.
	ElementBytes() int
	Usage() Usage
	Grow(newCapacity int)
	Dirty() bool
	ClearDirty()
	// AppendBytes appends the little-endian encoding of the first count elements.
	AppendBytes(dst []byte, count int) []byte
}

// AttributeBuffer is a fixed capacity contiguous array holding one attribute
// for every slot. len(array) == capacity*itemSize at all times.
type AttributeBuffer[T Element] struct {
	name     AttributeName
	array    []T
	itemSize int
	usage    Usage
	dirty    bool
}

func NewAttributeBuffer[T Element](name AttributeName, capacity, itemSize int, usage Usage) *AttributeBuffer[T] {
	if itemSize < 1 || itemSize > 4 {
		panic(fmt.Sprintf("attribute %s: unsupported item size %d", name, itemSize))
	}
	if capacity < 0 {
		panic(fmt.Sprintf("attribute %s: negative capacity %d", name, capacity))
	}
	return &AttributeBuffer[T]{
		name:     name,
		array:    make([]T, capacity*itemSize),
		itemSize: itemSize,
		usage:    usage,
		dirty:    true,
	}
}

func (b *AttributeBuffer[T]) Name() AttributeName { return b.name }
func (b *AttributeBuffer[T]) Label() string       { return b.name.String() }
func (b *AttributeBuffer[T]) ItemSize() int       { return b.itemSize }
func (b *AttributeBuffer[T]) Capacity() int       { return len(b.array) / b.itemSize }
func (b *AttributeBuffer[T]) Usage() Usage        { return b.usage }
func (b *AttributeBuffer[T]) Dirty() bool         { return b.dirty }
func (b *AttributeBuffer[T]) ClearDirty()         { b.dirty = false }

// Array exposes the backing store. Callers must not keep it across Grow.
func (b *AttributeBuffer[T]) Array() []T { return b.array }

func (b *AttributeBuffer[T]) Fields() []Field {
	var zero T
	_, integer := any(zero).(uint8)
	return []Field{{Name: b.name, ItemSize: b.itemSize, Integer: integer}}
}

func (b *AttributeBuffer[T]) ElementBytes() int {
	// uint8 components are widened to uint32 on encode
	return 4
}

func (b *AttributeBuffer[T]) checkSlot(slot int) {
	if slot < 0 || slot >= b.Capacity() {
		panic(fmt.Sprintf("attribute %s: slot %d out of range [0,%d)", b.name, slot, b.Capacity()))
	}
}

// Write stores one element at slot. The number of components must match the item size.
func (b *AttributeBuffer[T]) Write(slot int, components ...T) {
	b.checkSlot(slot)
	if len(components) != b.itemSize {
		panic(fmt.Sprintf("attribute %s: got %d components, item size is %d", b.name, len(components), b.itemSize))
	}
	copy(b.array[slot*b.itemSize:], components)
	b.dirty = true
}

func (b *AttributeBuffer[T]) SetX(slot int, x T) {
	b.checkSlot(slot)
	b.array[slot*b.itemSize] = x
	b.dirty = true
}

func (b *AttributeBuffer[T]) SetXYZ(slot int, x, y, z T) {
	b.checkSlot(slot)
	if b.itemSize < 3 {
		panic(fmt.Sprintf("attribute %s: SetXYZ on item size %d", b.name, b.itemSize))
	}
	o := slot * b.itemSize
	b.array[o] = x
	b.array[o+1] = y
	b.array[o+2] = z
	b.dirty = true
}

// At returns the components stored at slot. The slice aliases the buffer.
func (b *AttributeBuffer[T]) At(slot int) []T {
	b.checkSlot(slot)
	o := slot * b.itemSize
	return b.array[o : o+b.itemSize : o+b.itemSize]
}

// Grow reallocates the backing store for newCapacity elements, keeping the
// leading min(old,new) elements. Truncation safety is the caller's job.
func (b *AttributeBuffer[T]) Grow(newCapacity int) {
	if newCapacity < 0 {
		panic(fmt.Sprintf("attribute %s: negative capacity %d", b.name, newCapacity))
	}
	array := make([]T, newCapacity*b.itemSize)
	copy(array, b.array)
	b.array = array
	b.dirty = true
}

func (b *AttributeBuffer[T]) AppendBytes(dst []byte, count int) []byte {
	if count < 0 || count > b.Capacity() {
		count = b.Capacity()
	}
	n := count * b.itemSize
	switch arr := any(b.array).(type) {
	case []float32:
		for _, v := range arr[:n] {
			dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
		}
	case []uint8:
		for _, v := range arr[:n] {
			dst = binary.LittleEndian.AppendUint32(dst, uint32(v))
		}
	}
	return dst
}
