// Package particles owns the flat per-particle buffers shared by the
// integrators and the render surface.
package particles

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrResize is returned when a requested particle count cannot be allocated.
var ErrResize = errors.New("particles: unrecoverable resize")

// Store holds per-particle state as flat slices. Vector channels are
// interleaved xyz triplets of length 3*Count; scalar channels have length Count.
type Store struct {
	Count int

	Positions  []float32
	Velocities []float32
	Targets    []float32 // Live attraction destinations
	Origins    []float32 // Initial samples used on birth/rebirth
	Colors     []float32

	Masses    []float32
	Lifetimes []float32
	Sizes     []float32

	// MaxParticles caps Resize. Zero means no cap.
	MaxParticles int
}

// NewStore allocates a store for n particles.
func NewStore(n, maxParticles int) (*Store, error) {
	s := &Store{MaxParticles: maxParticles}
	if err := s.Resize(n); err != nil {
		return nil, err
	}
	return s, nil
}

// Resize reallocates every buffer for n particles. Contents are zeroed;
// callers re-sample shapes and call Respawn afterwards. On error the store
// is left unchanged.
func (s *Store) Resize(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: count %d must be positive", ErrResize, n)
	}
	if s.MaxParticles > 0 && n > s.MaxParticles {
		return fmt.Errorf("%w: count %d exceeds cap %d", ErrResize, n, s.MaxParticles)
	}
	if n > math.MaxInt32/3 {
		return fmt.Errorf("%w: count %d overflows vector channels", ErrResize, n)
	}

	s.Count = n
	s.Positions = make([]float32, 3*n)
	s.Velocities = make([]float32, 3*n)
	s.Targets = make([]float32, 3*n)
	s.Origins = make([]float32, 3*n)
	s.Colors = make([]float32, 3*n)
	s.Masses = make([]float32, n)
	s.Lifetimes = make([]float32, n)
	s.Sizes = make([]float32, n)
	return nil
}

// Validate checks the buffer-length invariant.
func (s *Store) Validate() error {
	n := s.Count
	vec := map[string][]float32{
		"positions":  s.Positions,
		"velocities": s.Velocities,
		"targets":    s.Targets,
		"origins":    s.Origins,
		"colors":     s.Colors,
	}
	for name, b := range vec {
		if len(b) != 3*n {
			return fmt.Errorf("particles: %s has length %d, want %d", name, len(b), 3*n)
		}
	}
	scalar := map[string][]float32{
		"masses":    s.Masses,
		"lifetimes": s.Lifetimes,
		"sizes":     s.Sizes,
	}
	for name, b := range scalar {
		if len(b) != n {
			return fmt.Errorf("particles: %s has length %d, want %d", name, len(b), n)
		}
	}
	return nil
}

// Respawn treats every particle as freshly created: position at its origin,
// random velocity, mass and lifetime.
func (s *Store) Respawn(rng *rand.Rand, diffusionSpeed float32) {
	copy(s.Positions, s.Origins)
	for i := 0; i < s.Count; i++ {
		s.randomizeMotion(i, rng, diffusionSpeed)
		// Staggered ages so rebirths spread out over time
		s.Lifetimes[i] = rng.Float32()
	}
}

// Rebirth resets particle i in place: lifetime 0, back at its origin,
// fresh velocity and mass.
func (s *Store) Rebirth(i int, rng *rand.Rand, diffusionSpeed float32) {
	j := 3 * i
	s.Positions[j] = s.Origins[j]
	s.Positions[j+1] = s.Origins[j+1]
	s.Positions[j+2] = s.Origins[j+2]
	s.Lifetimes[i] = 0
	s.randomizeMotion(i, rng, diffusionSpeed)
}

func (s *Store) randomizeMotion(i int, rng *rand.Rand, diffusionSpeed float32) {
	x, y, z := RandomDirection(rng)
	speed := diffusionSpeed * (0.8 + 0.4*rng.Float32())
	j := 3 * i
	s.Velocities[j] = x * speed
	s.Velocities[j+1] = y * speed
	s.Velocities[j+2] = z * speed
	s.Masses[i] = 0.5 + 0.5*rng.Float32()
}

// Position returns the position of particle i.
func (s *Store) Position(i int) (x, y, z float32) {
	j := 3 * i
	return s.Positions[j], s.Positions[j+1], s.Positions[j+2]
}

// Velocity returns the velocity of particle i.
func (s *Store) Velocity(i int) (x, y, z float32) {
	j := 3 * i
	return s.Velocities[j], s.Velocities[j+1], s.Velocities[j+2]
}

// SetPosition overwrites the position of particle i.
func (s *Store) SetPosition(i int, x, y, z float32) {
	j := 3 * i
	s.Positions[j], s.Positions[j+1], s.Positions[j+2] = x, y, z
}

// SetVelocity overwrites the velocity of particle i.
func (s *Store) SetVelocity(i int, x, y, z float32) {
	j := 3 * i
	s.Velocities[j], s.Velocities[j+1], s.Velocities[j+2] = x, y, z
}

// Speed returns the velocity magnitude of particle i.
func (s *Store) Speed(i int) float32 {
	x, y, z := s.Velocity(i)
	return float32(math.Sqrt(float64(x*x + y*y + z*z)))
}

// RandomDirection returns a unit vector uniformly distributed on the sphere.
func RandomDirection(rng *rand.Rand) (x, y, z float32) {
	theta := 2 * math.Pi * rng.Float64()
	cosPhi := 2*rng.Float64() - 1
	sinPhi := math.Sqrt(1 - cosPhi*cosPhi)
	return float32(sinPhi * math.Cos(theta)), float32(sinPhi * math.Sin(theta)), float32(cosPhi)
}
