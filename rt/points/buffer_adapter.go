package points

import (
	"math"

	"github.com/gekko3d/pointsync/rt/core"
)

// DefaultInitialCapacity is used by the compacting adapter when MaxParticles is unset.
const DefaultInitialCapacity = 8

type BufferOptions struct {
	// MaxParticles is the initial capacity. Zero starts small and grows.
	MaxParticles int
	// DrawRange is the initial visible fraction. Nil means fully visible.
	DrawRange *float32
	Logger    core.Logger
}

// BufferPointsAdapter mirrors particles into separate attribute buffers kept
// packed by a SlotTable. Removal swaps the last live particle into the hole.
type BufferPointsAdapter struct {
	failState

	table *SlotTable

	position *core.AttributeBuffer[float32]
	rotation *core.AttributeBuffer[float32]
	scale    *core.AttributeBuffer[float32]
	sprite   *core.AttributeBuffer[uint8]
	attrs    []core.Attribute

	drawRange float32
	visible   int
	bounds    core.Bounds
}

func NewBufferPointsAdapter(opts BufferOptions) *BufferPointsAdapter {
	capacity := opts.MaxParticles
	if capacity <= 0 {
		capacity = DefaultInitialCapacity
	}
	a := &BufferPointsAdapter{
		failState: failState{name: "buffer points", logger: core.OrNop(opts.Logger)},
		position:  core.NewAttributeBuffer[float32](core.AttrPosition, capacity, 3, core.UsageDynamicDraw),
		rotation:  core.NewAttributeBuffer[float32](core.AttrRotation, capacity, 1, core.UsageDynamicDraw),
		scale:     core.NewAttributeBuffer[float32](core.AttrScale, capacity, 1, core.UsageDynamicDraw),
		sprite:    core.NewAttributeBuffer[uint8](core.AttrSpriteIndex, capacity, 1, core.UsageStaticDraw),
		drawRange: 1,
		bounds:    core.Bounds{Empty: true},
	}
	a.attrs = []core.Attribute{a.position, a.rotation, a.scale, a.sprite}
	a.table = NewSlotTable(capacity, a.attrs...)
	if opts.DrawRange != nil {
		a.drawRange = clamp01(*opts.DrawRange)
	}
	return a
}

func (a *BufferPointsAdapter) OnParticleCreated(p *core.Particle) error {
	if err := a.check(); err != nil {
		return err
	}
	before := a.table.Capacity()
	slot, allocated := a.table.Allocate(p)
	if !allocated {
		return nil
	}
	if a.table.Capacity() != before {
		a.logger.Debugf("buffer points: grew %d -> %d slots", before, a.table.Capacity())
	}
	a.integrate(p, slot)
	a.sprite.SetX(slot, p.Sprite)
	a.updateVisible()
	return nil
}

func (a *BufferPointsAdapter) OnParticleUpdate(p *core.Particle) error {
	if err := a.check(); err != nil {
		return err
	}
	slot, ok := p.BufferIdx()
	if !ok {
		a.logger.Debugf("buffer points: update for untracked particle %s", p.ID)
		return nil
	}
	a.integrate(p, slot)
	return nil
}

func (a *BufferPointsAdapter) OnParticleDead(p *core.Particle) error {
	if err := a.check(); err != nil {
		return err
	}
	moved, err := a.table.Release(p)
	if err != nil {
		return a.fail(err)
	}
	if moved != nil {
		slot, _ := moved.BufferIdx()
		a.integrate(moved, slot)
		a.sprite.SetX(slot, moved.Sprite)
	}
	a.updateVisible()
	return nil
}

// Reserve grows the buffers ahead of a batch of count creations.
func (a *BufferPointsAdapter) Reserve(count int) error {
	if err := a.check(); err != nil {
		return err
	}
	a.table.Reserve(count)
	return nil
}

// SetDrawRange sets the visible fraction of the alive particles, clamped to [0,1].
func (a *BufferPointsAdapter) SetDrawRange(fraction float32) {
	a.drawRange = clamp01(fraction)
	a.updateVisible()
}

// OnSystemUpdate recomputes the bounding volume over the live particles.
func (a *BufferPointsAdapter) OnSystemUpdate() error {
	if err := a.check(); err != nil {
		return err
	}
	a.bounds = core.BoundsOf(a.position.Array(), a.table.AliveCount())
	return nil
}

// integrate writes the per-tick attributes. The sprite index is written only on
// create and when a particle moves slot.
func (a *BufferPointsAdapter) integrate(p *core.Particle, slot int) {
	a.position.SetXYZ(slot, p.Position.X(), p.Position.Y(), p.Position.Z())
	a.rotation.SetX(slot, p.Rotation.Z())
	a.scale.SetX(slot, p.Radius)
}

func (a *BufferPointsAdapter) updateVisible() {
	a.visible = int(float32(a.table.AliveCount()) * a.drawRange)
}

func (a *BufferPointsAdapter) AliveCount() int     { return a.table.AliveCount() }
func (a *BufferPointsAdapter) DeadCount() int      { return a.table.DeadCount() }
func (a *BufferPointsAdapter) Capacity() int       { return a.table.Capacity() }
func (a *BufferPointsAdapter) VisibleCount() int   { return a.visible }
func (a *BufferPointsAdapter) DrawRange() float32  { return a.drawRange }
func (a *BufferPointsAdapter) Bounds() core.Bounds { return a.bounds }
func (a *BufferPointsAdapter) Slots() *SlotTable   { return a.table }

func (a *BufferPointsAdapter) Attributes() []core.Attribute { return a.attrs }

func (a *BufferPointsAdapter) Position() *core.AttributeBuffer[float32]  { return a.position }
func (a *BufferPointsAdapter) Rotation() *core.AttributeBuffer[float32]  { return a.rotation }
func (a *BufferPointsAdapter) Scale() *core.AttributeBuffer[float32]     { return a.scale }
func (a *BufferPointsAdapter) SpriteIndex() *core.AttributeBuffer[uint8] { return a.sprite }

// clamp01 maps NaN to 0.
func clamp01(v float32) float32 {
	if math.IsNaN(float64(v)) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
