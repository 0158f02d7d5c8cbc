package main

import (
	"math"
	"math/rand"

	"github.com/gekko3d/pointsync/rt/core"
	"github.com/gekko3d/pointsync/rt/points"

	"github.com/go-gl/mathgl/mgl32"
)

// emitterConfig drives a tiny CPU emitter that produces lifecycle events.
type emitterConfig struct {
	MaxParticles int

	SpawnRate        float32    // particles per second
	LifetimeRange    [2]float32 // seconds (min,max)
	StartSpeedRange  [2]float32 // units/sec (min,max)
	StartSizeRange   [2]float32 // world units (min,max)
	StartColorMin    [4]float32 // RGBA min (0..1)
	StartColorMax    [4]float32 // RGBA max (0..1)
	Gravity          float32    // positive acceleration downward (m/s^2)
	Drag             float32    // per-second linear drag (0..inf)
	ConeAngleDegrees float32    // 0=along emitter up axis; larger spreads
	SpriteCount      int
}

func defaultEmitterConfig(maxParticles int) emitterConfig {
	return emitterConfig{
		MaxParticles:     maxParticles,
		SpawnRate:        240,
		LifetimeRange:    [2]float32{0.5, 2.5},
		StartSpeedRange:  [2]float32{2, 6},
		StartSizeRange:   [2]float32{0.05, 0.2},
		StartColorMin:    [4]float32{0.8, 0.3, 0.1, 0.6},
		StartColorMax:    [4]float32{1, 0.7, 0.2, 1},
		Gravity:          9.8,
		Drag:             0.4,
		ConeAngleDegrees: 25,
		SpriteCount:      3,
	}
}

type simParticle struct {
	p    *core.Particle
	vel  mgl32.Vec3
	age  float32
	life float32
}

type emitter struct {
	cfg      emitterConfig
	origin   mgl32.Vec3
	rotation mgl32.Quat
	rng      *rand.Rand

	live     []simParticle
	spawnAcc float32

	// offset adapter indices are handed out here, never by the adapter
	freeIndices []int
	nextIndex   int
}

func newEmitter(cfg emitterConfig, seed int64) *emitter {
	return &emitter{
		cfg:      cfg,
		rotation: mgl32.QuatIdent(),
		rng:      rand.New(rand.NewSource(seed)),
		live:     make([]simParticle, 0, cfg.MaxParticles),
	}
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// Sample a direction in a cone around the emitter's up axis, then rotate by the emitter rotation.
func (e *emitter) sampleDirection() mgl32.Vec3 {
	axis := mgl32.Vec3{0, 1, 0}
	if e.cfg.ConeAngleDegrees <= 0 {
		return e.rotation.Rotate(axis).Normalize()
	}
	thetaMax := float32(math.Pi) * (e.cfg.ConeAngleDegrees / 180.0)
	cosTheta := lerp(float32(math.Cos(float64(thetaMax))), 1.0, e.rng.Float32())
	sinTheta := float32(math.Sqrt(float64(1.0 - cosTheta*cosTheta)))
	phi := 2.0 * float32(math.Pi) * e.rng.Float32()

	local := mgl32.Vec3{
		float32(math.Cos(float64(phi))) * sinTheta,
		cosTheta,
		float32(math.Sin(float64(phi))) * sinTheta,
	}
	return e.rotation.Rotate(local).Normalize()
}

func (e *emitter) acquireIndex() int {
	if n := len(e.freeIndices); n > 0 {
		idx := e.freeIndices[n-1]
		e.freeIndices = e.freeIndices[:n-1]
		return idx
	}
	idx := e.nextIndex
	e.nextIndex++
	return idx
}

func (e *emitter) spawn() simParticle {
	p := core.NewParticle()
	p.Index = e.acquireIndex()
	p.Position = e.origin
	p.Radius = lerp(e.cfg.StartSizeRange[0], e.cfg.StartSizeRange[1], e.rng.Float32())
	p.Rotation = mgl32.Vec3{0, 0, e.rng.Float32() * 2 * math.Pi}
	var c [4]float32
	for j := 0; j < 4; j++ {
		c[j] = lerp(e.cfg.StartColorMin[j], e.cfg.StartColorMax[j], e.rng.Float32())
	}
	p.Color = mgl32.Vec3{c[0], c[1], c[2]}
	p.Alpha = c[3]
	if e.cfg.SpriteCount > 0 {
		p.Sprite = uint8(e.rng.Intn(e.cfg.SpriteCount))
	}
	speed := lerp(e.cfg.StartSpeedRange[0], e.cfg.StartSpeedRange[1], e.rng.Float32())
	return simParticle{
		p:    p,
		vel:  e.sampleDirection().Mul(speed),
		life: lerp(e.cfg.LifetimeRange[0], e.cfg.LifetimeRange[1], e.rng.Float32()),
	}
}

// killAt swap-removes one simulated particle.
func (e *emitter) killAt(i int) {
	last := len(e.live) - 1
	e.freeIndices = append(e.freeIndices, e.live[i].p.Index)
	e.live[i] = e.live[last]
	e.live[last] = simParticle{}
	e.live = e.live[:last]
}

// step advances the emitter by dt and delivers the tick's events to every adapter,
// finishing with OnSystemUpdate.
func (e *emitter) step(dt float32, adapters ...points.Adapter) error {
	e.spawnAcc += e.cfg.SpawnRate * dt
	spawnCount := int(e.spawnAcc)
	if spawnCount > 0 {
		e.spawnAcc -= float32(spawnCount)
	}
	if free := e.cfg.MaxParticles - len(e.live); spawnCount > free {
		spawnCount = free
	}
	for i := 0; i < spawnCount; i++ {
		sp := e.spawn()
		e.live = append(e.live, sp)
		for _, a := range adapters {
			if err := a.OnParticleCreated(sp.p); err != nil {
				return err
			}
		}
	}

	drag := float32(math.Max(0, float64(1.0-e.cfg.Drag*dt)))
	i := 0
	for i < len(e.live) {
		sp := &e.live[i]
		sp.age += dt
		if sp.age >= sp.life {
			for _, a := range adapters {
				if err := a.OnParticleDead(sp.p); err != nil {
					return err
				}
			}
			e.killAt(i)
			continue
		}
		sp.vel = sp.vel.Add(mgl32.Vec3{0, -e.cfg.Gravity * dt, 0}).Mul(drag)
		sp.p.Position = sp.p.Position.Add(sp.vel.Mul(dt))
		sp.p.Alpha = 1 - sp.age/sp.life
		for _, a := range adapters {
			if err := a.OnParticleUpdate(sp.p); err != nil {
				return err
			}
		}
		i++
	}

	for _, a := range adapters {
		if err := a.OnSystemUpdate(); err != nil {
			return err
		}
	}
	return nil
}

func (e *emitter) alive() int { return len(e.live) }
