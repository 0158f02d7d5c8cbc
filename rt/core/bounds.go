package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Bounds is the bounding volume of the live particles: an AABB plus a sphere
// centered on the box.
type Bounds struct {
	Min    mgl32.Vec3
	Max    mgl32.Vec3
	Center mgl32.Vec3
	Radius float32
	Empty  bool
}

// BoundsBuilder accumulates points in two passes, box first, then sphere radius.
type BoundsBuilder struct {
	min, max mgl32.Vec3
	points   int
}

func (bb *BoundsBuilder) Reset() {
	inf := float32(1e20)
	bb.min = mgl32.Vec3{inf, inf, inf}
	bb.max = mgl32.Vec3{-inf, -inf, -inf}
	bb.points = 0
}

func (bb *BoundsBuilder) Add(p mgl32.Vec3) {
	if bb.points == 0 {
		bb.min, bb.max = p, p
	} else {
		bb.min = mgl32.Vec3{min(bb.min.X(), p.X()), min(bb.min.Y(), p.Y()), min(bb.min.Z(), p.Z())}
		bb.max = mgl32.Vec3{max(bb.max.X(), p.X()), max(bb.max.Y(), p.Y()), max(bb.max.Z(), p.Z())}
	}
	bb.points++
}

// Box returns the partial result after the first pass. Radius is still zero.
func (bb *BoundsBuilder) Box() Bounds {
	if bb.points == 0 {
		return Bounds{Empty: true}
	}
	return Bounds{
		Min:    bb.min,
		Max:    bb.max,
		Center: bb.min.Add(bb.max).Mul(0.5),
	}
}

// Expand grows the sphere radius of b so it contains p.
func (b *Bounds) Expand(p mgl32.Vec3) {
	if d := p.Sub(b.Center).Len(); d > b.Radius {
		b.Radius = d
	}
}

// BoundsOf computes bounds for a packed float32 xyz array holding count points.
func BoundsOf(xyz []float32, count int) Bounds {
	var bb BoundsBuilder
	bb.Reset()
	for i := 0; i < count; i++ {
		bb.Add(mgl32.Vec3{xyz[i*3], xyz[i*3+1], xyz[i*3+2]})
	}
	b := bb.Box()
	if b.Empty {
		return b
	}
	for i := 0; i < count; i++ {
		b.Expand(mgl32.Vec3{xyz[i*3], xyz[i*3+1], xyz[i*3+2]})
	}
	return b
}
