package points

import (
	"github.com/gekko3d/pointsync/rt/core"

	"github.com/google/uuid"
)

// DefaultOffsetCapacity is the fixed point count used when MaxParticles is unset.
const DefaultOffsetCapacity = 1024

type OffsetOptions struct {
	MaxParticles int
	Logger       core.Logger
}

// OffsetPointsAdapter writes each particle's target state into an interleaved
// buffer at the particle's own Index. Indices are never compacted or reclaimed.
type OffsetPointsAdapter struct {
	failState

	buffer  *InterleavedBuffer
	targets *core.TargetPool
	attrs   []core.Attribute
	bounds  core.Bounds

	position, size, color, alpha *InterleavedAttribute
}

func NewOffsetPointsAdapter(opts OffsetOptions) *OffsetPointsAdapter {
	capacity := opts.MaxParticles
	if capacity <= 0 {
		capacity = DefaultOffsetCapacity
	}
	buf := NewInterleavedBuffer(capacity)
	return &OffsetPointsAdapter{
		failState: failState{name: "offset points", logger: core.OrNop(opts.Logger)},
		buffer:    buf,
		targets:   core.NewTargetPool(),
		attrs:     []core.Attribute{buf},
		bounds:    core.Bounds{Empty: true},
		position:  buf.Attribute(core.AttrPosition),
		size:      buf.Attribute(core.AttrSize),
		color:     buf.Attribute(core.AttrColor),
		alpha:     buf.Attribute(core.AttrAlpha),
	}
}

func (a *OffsetPointsAdapter) OnParticleCreated(p *core.Particle) error {
	if err := a.check(); err != nil {
		return err
	}
	if err := a.checkIndex(p); err != nil {
		return err
	}
	if p.Target == nil {
		if bound, ok := a.targets.Lookup(p.ID); ok {
			return a.fail(&core.InvariantError{
				Kind:     core.DuplicateIdentity,
				Particle: p.ID,
				Slot:     bound.Index,
				Alive:    a.targets.Active(),
			})
		}
		p.Target = a.targets.Acquire(p.ID)
	}
	p.Target.CopyFrom(p)
	a.mapTargetToPoint(p.Target)
	return nil
}

func (a *OffsetPointsAdapter) OnParticleUpdate(p *core.Particle) error {
	if err := a.check(); err != nil {
		return err
	}
	if p.Target == nil {
		return nil
	}
	if err := a.checkIndex(p); err != nil {
		return err
	}
	p.Target.CopyFrom(p)
	a.mapTargetToPoint(p.Target)
	return nil
}

// OnParticleDead writes the last target state once more, then unbinds the target.
// The point keeps that state until the index is written again.
func (a *OffsetPointsAdapter) OnParticleDead(p *core.Particle) error {
	if err := a.check(); err != nil {
		return err
	}
	if p.Target == nil {
		return nil
	}
	a.mapTargetToPoint(p.Target)
	if bound, ok := a.targets.Lookup(p.ID); ok && bound == p.Target {
		a.targets.Release(p.ID)
	}
	p.Target = nil
	return nil
}

// OnSystemUpdate recomputes the bounding volume over the points of tracked particles.
func (a *OffsetPointsAdapter) OnSystemUpdate() error {
	if err := a.check(); err != nil {
		return err
	}
	var bb core.BoundsBuilder
	bb.Reset()
	a.targets.Each(func(_ uuid.UUID, t *core.Target) bool {
		bb.Add(t.Position)
		return true
	})
	b := bb.Box()
	if !b.Empty {
		a.targets.Each(func(_ uuid.UUID, t *core.Target) bool {
			b.Expand(t.Position)
			return true
		})
	}
	a.bounds = b
	return nil
}

func (a *OffsetPointsAdapter) checkIndex(p *core.Particle) error {
	if p.Index >= 0 && p.Index < a.buffer.Capacity() {
		return nil
	}
	return a.fail(&core.InvariantError{
		Kind:     core.IndexOutOfRange,
		Particle: p.ID,
		Slot:     p.Index,
		Alive:    a.targets.Active(),
	})
}

func (a *OffsetPointsAdapter) mapTargetToPoint(t *core.Target) {
	a.buffer.write(a.position, t.Index, t.Position.X(), t.Position.Y(), t.Position.Z())
	a.buffer.write(a.size, t.Index, t.Size)
	a.buffer.write(a.color, t.Index, t.Color.X(), t.Color.Y(), t.Color.Z())
	a.buffer.write(a.alpha, t.Index, t.Alpha)
}

// ActiveCount is the number of particles currently holding a target.
func (a *OffsetPointsAdapter) ActiveCount() int { return a.targets.Active() }

// VisibleCount is the full point capacity; dead points stay at their last state.
func (a *OffsetPointsAdapter) VisibleCount() int { return a.buffer.Capacity() }

func (a *OffsetPointsAdapter) Capacity() int                { return a.buffer.Capacity() }
func (a *OffsetPointsAdapter) Buffer() *InterleavedBuffer   { return a.buffer }
func (a *OffsetPointsAdapter) Targets() *core.TargetPool    { return a.targets }
func (a *OffsetPointsAdapter) Attributes() []core.Attribute { return a.attrs }
func (a *OffsetPointsAdapter) Bounds() core.Bounds          { return a.bounds }
