package systems

import (
	"math/rand"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/particles"
)

// PhysicsParams holds the tunables of the normal-mode integrator.
type PhysicsParams struct {
	DT                 float32
	DiffusionSpeed     float32
	AttractionStrength float32
	Randomness         float32
	Gravity            float32 // Positive pulls toward -y
	CollisionRadius    float32
	CollisionDamping   float32
	CollisionWindow    int
	Damping            float32
	MaxLifetime        float32 // Seconds
	Size               SizeRange
}

// PhysicsParamsFromConfig converts the simulation config section.
func PhysicsParamsFromConfig(cfg config.SimulationConfig) PhysicsParams {
	return PhysicsParams{
		DT:                 float32(cfg.DT),
		DiffusionSpeed:     float32(cfg.DiffusionSpeed),
		AttractionStrength: float32(cfg.AttractionStrength),
		Randomness:         float32(cfg.Randomness),
		Gravity:            float32(cfg.Gravity),
		CollisionRadius:    float32(cfg.CollisionRadius),
		CollisionDamping:   float32(cfg.CollisionDamping),
		CollisionWindow:    cfg.CollisionWindow,
		Damping:            float32(cfg.Damping),
		MaxLifetime:        float32(cfg.MaxLifetime),
		Size:               SizeRange{Base: float32(cfg.BaseSize), Variation: float32(cfg.SizeVariation)},
	}
}

// MaxSpeed is the velocity cap of the normal mode.
func (p PhysicsParams) MaxSpeed() float32 {
	return 3 * p.DiffusionSpeed
}

// PhysicsSystem is the "normal" mode integrator: particles are pulled toward
// their live shape targets while aging, colliding and being pushed by the
// force field.
type PhysicsSystem struct {
	Params PhysicsParams
	colors *ColorModel
	rng    *rand.Rand
	reborn []bool // scratch: particles reborn this tick
}

// NewPhysicsSystem creates the normal-mode integrator.
func NewPhysicsSystem(params PhysicsParams, colors *ColorModel, rng *rand.Rand) *PhysicsSystem {
	return &PhysicsSystem{Params: params, colors: colors, rng: rng}
}

// Mode implements Integrator.
func (ps *PhysicsSystem) Mode() Mode { return ModeNormal }

// Enter implements Integrator. Particles resume from wherever they are.
func (ps *PhysicsSystem) Enter(s *particles.Store) {}

// Step advances every particle by one tick.
func (ps *PhysicsSystem) Step(s *particles.Store, in StepInput) {
	p := ps.Params
	n := s.Count
	if cap(ps.reborn) < n {
		ps.reborn = make([]bool, n)
	}
	reborn := ps.reborn[:n]

	norm := p.DT * frameNorm
	var lifeStep float32
	if p.MaxLifetime > 0 {
		lifeStep = p.DT / p.MaxLifetime
	}
	field := in.Field

	// Phase 1: aging and force accumulation
	for i := 0; i < n; i++ {
		life := s.Lifetimes[i] + lifeStep
		if life >= 1 {
			s.Rebirth(i, ps.rng, p.DiffusionSpeed)
			reborn[i] = true
			continue
		}
		s.Lifetimes[i] = life
		reborn[i] = false

		j := 3 * i
		px, py, pz := s.Positions[j], s.Positions[j+1], s.Positions[j+2]
		var fx, fy, fz float32

		// Attraction toward the live target
		dx, dy, dz := s.Targets[j]-px, s.Targets[j+1]-py, s.Targets[j+2]-pz
		if d := length3(dx, dy, dz); d > epsilon {
			k := p.AttractionStrength / d
			fx += dx * k
			fy += dy * k
			fz += dz * k
		}

		// Gravity on the vertical channel
		fy -= p.Gravity * s.Masses[i]

		// Force field with linear falloff
		if field.Enabled && field.Radius > 0 {
			ex, ey, ez := px-field.Center[0], py-field.Center[1], pz-field.Center[2]
			if d := length3(ex, ey, ez); d < field.Radius && d > epsilon {
				k := field.Strength * (1 - d/field.Radius) / d
				if !field.Repel {
					k = -k
				}
				fx += ex * k
				fy += ey * k
				fz += ez * k
			}
		}

		// Jitter
		if p.Randomness > 0 {
			fx += (ps.rng.Float32() - 0.5) * p.Randomness
			fy += (ps.rng.Float32() - 0.5) * p.Randomness
			fz += (ps.rng.Float32() - 0.5) * p.Randomness
		}

		s.Velocities[j] += fx * norm
		s.Velocities[j+1] += fy * norm
		s.Velocities[j+2] += fz * norm
	}

	// Phase 2: local collision over an index window
	ResolveCollisions(s, p.CollisionRadius, p.CollisionDamping, p.CollisionWindow, reborn)

	// Phase 3: damping, clamp, size, position, color
	maxSpeed := p.MaxSpeed()
	for i := 0; i < n; i++ {
		j := 3 * i
		if reborn[i] {
			speedNorm := normSpeed(s.Speed(i), maxSpeed)
			s.Sizes[i] = p.Size.At(speedNorm)
			ps.colors.ByAge(s, i, speedNorm)
			continue
		}

		vx := s.Velocities[j] * p.Damping
		vy := s.Velocities[j+1] * p.Damping
		vz := s.Velocities[j+2] * p.Damping
		speed := length3(vx, vy, vz)
		if speed > maxSpeed && speed > epsilon {
			k := maxSpeed / speed
			vx, vy, vz = vx*k, vy*k, vz*k
			speed = maxSpeed
		}
		s.Velocities[j], s.Velocities[j+1], s.Velocities[j+2] = vx, vy, vz

		speedNorm := normSpeed(speed, maxSpeed)
		s.Sizes[i] = p.Size.At(speedNorm)

		s.Positions[j] += vx * norm
		s.Positions[j+1] += vy * norm
		s.Positions[j+2] += vz * norm

		ps.colors.ByAge(s, i, speedNorm)
	}
}

// normSpeed maps speed to [0, 1] against the cap.
func normSpeed(speed, maxSpeed float32) float32 {
	if maxSpeed <= epsilon {
		return 0
	}
	return clamp01(speed / maxSpeed)
}

// ResolveCollisions tests each particle against the next window indices (not
// spatial neighbors) and pushes overlapping pairs apart by half the overlap
// each, damping both velocities. Particles flagged in skip are left alone;
// skip may be nil.
func ResolveCollisions(s *particles.Store, radius, damping float32, window int, skip []bool) {
	if radius <= 0 || window <= 0 {
		return
	}
	n := s.Count
	for i := 0; i < n; i++ {
		if skip != nil && skip[i] {
			continue
		}
		last := i + window
		if last >= n {
			last = n - 1
		}
		a := 3 * i
		for k := i + 1; k <= last; k++ {
			if skip != nil && skip[k] {
				continue
			}
			b := 3 * k
			dx := s.Positions[b] - s.Positions[a]
			dy := s.Positions[b+1] - s.Positions[a+1]
			dz := s.Positions[b+2] - s.Positions[a+2]
			d := length3(dx, dy, dz)
			if d >= radius || d < epsilon {
				continue
			}

			push := (radius - d) / 2 / d
			dx, dy, dz = dx*push, dy*push, dz*push
			s.Positions[a] -= dx
			s.Positions[a+1] -= dy
			s.Positions[a+2] -= dz
			s.Positions[b] += dx
			s.Positions[b+1] += dy
			s.Positions[b+2] += dz

			for c := 0; c < 3; c++ {
				s.Velocities[a+c] *= damping
				s.Velocities[b+c] *= damping
			}
		}
	}
}
