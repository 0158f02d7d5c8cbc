package points

import (
	"math"

	"github.com/gekko3d/pointsync/rt/core"
)

// GrowthFactor is applied to the current capacity when the table runs out of slots.
const GrowthFactor = 1.5

// SlotTable maps particles to slots of a set of attribute buffers and keeps the
// live slots packed in [0, alive). Slots in [alive, alive+dead) are reserved
// capacity. All attributes share the table's capacity.
type SlotTable struct {
	capacity int
	alive    int
	dead     int

	owners []*core.Particle
	attrs  []core.Attribute
}

func NewSlotTable(capacity int, attrs ...core.Attribute) *SlotTable {
	t := &SlotTable{
		capacity: capacity,
		owners:   make([]*core.Particle, capacity),
		attrs:    attrs,
	}
	for _, a := range attrs {
		if a.Capacity() != capacity {
			a.Grow(capacity)
		}
	}
	return t
}

func (t *SlotTable) Capacity() int   { return t.capacity }
func (t *SlotTable) AliveCount() int { return t.alive }
func (t *SlotTable) DeadCount() int  { return t.dead }

// Amount is alive plus reserved slots.
func (t *SlotTable) Amount() int { return t.alive + t.dead }

// Last is the particle holding the last live slot, nil when nothing is alive.
func (t *SlotTable) Last() *core.Particle {
	if t.alive == 0 {
		return nil
	}
	return t.owners[t.alive-1]
}

// Owner returns the particle bound to slot, or nil.
func (t *SlotTable) Owner(slot int) *core.Particle {
	if slot < 0 || slot >= t.alive {
		return nil
	}
	return t.owners[slot]
}

// Reserve makes sure count slots past the live range are available, growing the
// buffers when the reserved range runs past capacity. Returns whether it grew.
func (t *SlotTable) Reserve(count int) bool {
	needMore := count - t.dead
	if needMore <= 0 {
		return false
	}
	grew := false
	if t.Amount()+needMore > t.capacity {
		t.expand(needMore)
		grew = true
	}
	t.dead += needMore
	return grew
}

// Allocate binds p to the first free slot. Already bound particles keep their slot.
func (t *SlotTable) Allocate(p *core.Particle) (slot int, allocated bool) {
	if idx, ok := p.BufferIdx(); ok {
		return idx, false
	}
	t.Reserve(1)
	slot = t.alive
	t.alive++
	t.dead--
	t.owners[slot] = p
	p.BindBufferIdx(slot)
	return slot, true
}

// Release frees the slot of p. When p was not in the last live slot, the particle
// from the last live slot is moved into the freed one and returned so the caller
// can rewrite its attributes. A nil particle and nil error mean no data moved.
func (t *SlotTable) Release(p *core.Particle) (*core.Particle, error) {
	if t.alive == 0 {
		slot, _ := p.BufferIdx()
		return nil, &core.InvariantError{Kind: core.ReleaseWhenEmpty, Particle: p.ID, Slot: slot}
	}
	if p.Released() {
		return nil, &core.InvariantError{Kind: core.DoubleRelease, Particle: p.ID, Slot: -1, Alive: t.alive}
	}
	slot, ok := p.BufferIdx()
	if !ok {
		return nil, nil
	}
	if slot >= t.alive {
		return nil, &core.InvariantError{Kind: core.SlotOutOfRange, Particle: p.ID, Slot: slot, Alive: t.alive}
	}
	if t.owners[slot] != p {
		return nil, &core.InvariantError{Kind: core.SlotOwnerMismatch, Particle: p.ID, Slot: slot, Alive: t.alive}
	}

	t.alive--
	t.dead++
	p.UnbindBufferIdx()

	last := t.owners[t.alive]
	t.owners[t.alive] = nil
	if last == p {
		return nil, nil
	}
	t.owners[slot] = last
	last.BindBufferIdx(slot)
	return last, nil
}

func (t *SlotTable) expand(amountToAdd int) {
	newCount := int(math.Floor(float64(t.capacity) * GrowthFactor))
	if newCount-t.alive < amountToAdd {
		newCount = int(math.Floor(float64(t.alive) + float64(amountToAdd)*GrowthFactor))
	}
	// reserved slots from an earlier batch sit between alive and the new demand
	if need := t.Amount() + amountToAdd; newCount < need {
		newCount = need
	}
	for _, a := range t.attrs {
		a.Grow(newCount)
	}
	owners := make([]*core.Particle, newCount)
	copy(owners, t.owners)
	t.owners = owners
	t.capacity = newCount
}
