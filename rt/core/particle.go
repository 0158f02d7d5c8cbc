package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type slotState uint8

const (
	slotUnbound slotState = iota
	slotBound
	slotReleased
)

// Particle is the per-particle snapshot handed over by the simulation.
// Everything except the slot bindings is read-only for the adapters.
type Particle struct {
	ID       uuid.UUID
	Position mgl32.Vec3
	Scale    float32
	Radius   float32
	Rotation mgl32.Vec3 // only Z is mirrored
	Color    mgl32.Vec3 // RGB 0..1
	Alpha    float32
	Sprite   uint8

	// Index is the stable slot used by the offset adapter. Assigned by the caller.
	Index int
	// Target is bound by the offset adapter while the particle is tracked.
	Target *Target

	bufferIdx int
	state     slotState
}

func NewParticle() *Particle {
	return &Particle{
		ID:     uuid.New(),
		Scale:  1,
		Radius: 1,
		Color:  mgl32.Vec3{1, 1, 1},
		Alpha:  1,
	}
}

// BufferIdx returns the compacting slot of the particle, if any.
func (p *Particle) BufferIdx() (int, bool) {
	if p.state != slotBound {
		return 0, false
	}
	return p.bufferIdx, true
}

func (p *Particle) BindBufferIdx(slot int) {
	p.bufferIdx = slot
	p.state = slotBound
}

// UnbindBufferIdx clears the slot and remembers that the particle was released,
// so a second release can be told apart from a particle that was never created.
func (p *Particle) UnbindBufferIdx() {
	p.bufferIdx = 0
	p.state = slotReleased
}

// Released reports whether the particle's slot was released and not rebound since.
func (p *Particle) Released() bool {
	return p.state == slotReleased
}
