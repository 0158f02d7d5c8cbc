package core

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Target holds the next state of a particle as it will be written to the point buffer.
type Target struct {
	Position mgl32.Vec3
	Size     float32
	Color    mgl32.Vec3
	Alpha    float32

	// Index the target was last written at.
	Index int
}

func (t *Target) reset() {
	*t = Target{Size: 1, Color: mgl32.Vec3{1, 1, 1}, Alpha: 1}
}

// CopyFrom maps the mutable particle properties onto the target.
func (t *Target) CopyFrom(p *Particle) {
	t.Position = p.Position
	t.Size = p.Scale * p.Radius
	t.Color = p.Color
	t.Alpha = p.Alpha
	t.Index = p.Index
}

// TargetPool is a free list of targets keyed by particle identity. Targets are
// allocated once and recycled, never dropped.
type TargetPool struct {
	free   []*Target
	active map[uuid.UUID]*Target
	made   int
}

func NewTargetPool() *TargetPool {
	return &TargetPool{
		free:   make([]*Target, 0, 64),
		active: make(map[uuid.UUID]*Target),
	}
}

// Acquire returns the target bound to id, taking one from the free list if needed.
func (tp *TargetPool) Acquire(id uuid.UUID) *Target {
	if t, ok := tp.active[id]; ok {
		return t
	}
	var t *Target
	if n := len(tp.free); n > 0 {
		t = tp.free[n-1]
		tp.free[n-1] = nil
		tp.free = tp.free[:n-1]
	} else {
		t = &Target{}
		tp.made++
	}
	t.reset()
	tp.active[id] = t
	return t
}

// Lookup returns the target currently bound to id.
func (tp *TargetPool) Lookup(id uuid.UUID) (*Target, bool) {
	t, ok := tp.active[id]
	return t, ok
}

// Release returns the target bound to id to the free list. Unknown ids are ignored.
func (tp *TargetPool) Release(id uuid.UUID) bool {
	t, ok := tp.active[id]
	if !ok {
		return false
	}
	delete(tp.active, id)
	tp.free = append(tp.free, t)
	return true
}

func (tp *TargetPool) Active() int { return len(tp.active) }
func (tp *TargetPool) Free() int   { return len(tp.free) }

// Allocated is the number of targets ever created by the pool.
func (tp *TargetPool) Allocated() int { return tp.made }

// Each calls fn for every bound target until fn returns false.
func (tp *TargetPool) Each(fn func(id uuid.UUID, t *Target) bool) {
	for id, t := range tp.active {
		if !fn(id, t) {
			return
		}
	}
}
