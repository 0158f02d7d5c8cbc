package points

import (
	"fmt"

	"github.com/gekko3d/pointsync/rt/core"
)

// Adapter receives particle lifecycle events from the simulation. Events for a
// particle arrive in created, updated, dead order within a tick, and
// OnSystemUpdate is the last call of every tick.
type Adapter interface {
	OnParticleCreated(p *core.Particle) error
	OnParticleUpdate(p *core.Particle) error
	OnParticleDead(p *core.Particle) error
	OnSystemUpdate() error
}

// Source is what the render sync side reads after a tick.
type Source interface {
	Attributes() []core.Attribute
	VisibleCount() int
	Bounds() core.Bounds
}

var (
	_ Adapter = (*BufferPointsAdapter)(nil)
	_ Adapter = (*OffsetPointsAdapter)(nil)
	_ Source  = (*BufferPointsAdapter)(nil)
	_ Source  = (*OffsetPointsAdapter)(nil)
)

// failState latches the first invariant violation of an adapter.
type failState struct {
	name   string
	logger core.Logger
	err    error
}

func (f *failState) check() error {
	if f.err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", core.ErrAdapterFailed, f.err)
}

func (f *failState) fail(err error) error {
	f.err = err
	f.logger.Errorf("%s: %v", f.name, err)
	return err
}

// Err returns the invariant violation that stopped the adapter, if any.
func (f *failState) Err() error { return f.err }
