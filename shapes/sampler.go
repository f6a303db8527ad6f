// Package shapes samples target point sets for the named swarm shapes.
package shapes

import (
	"math"
	"math/rand"
	"strings"

	"github.com/pthm-cable/swarm/config"
)

// Shape identifies a target formation.
type Shape string

const (
	Sphere Shape = "sphere"
	Torus  Shape = "torus"
	Mesh   Shape = "mesh"
)

// ParseShape maps a name to a Shape. Unknown names fall back to Sphere.
func ParseShape(name string) Shape {
	switch Shape(strings.ToLower(strings.TrimSpace(name))) {
	case Torus:
		return Torus
	case Mesh:
		return Mesh
	default:
		return Sphere
	}
}

// Sampler fills target buffers with points on or inside a shape.
type Sampler struct {
	cfg  config.ShapeConfig
	rng  *rand.Rand
	mesh []float32 // flat xyz vertices, already scaled
}

// NewSampler creates a sampler drawing from rng.
func NewSampler(cfg config.ShapeConfig, rng *rand.Rand) *Sampler {
	return &Sampler{cfg: cfg, rng: rng}
}

// SetMesh installs the vertex list used by the mesh shape. Vertices are flat
// xyz triplets; a trailing partial triplet is ignored. An empty list clears the mesh.
func (s *Sampler) SetMesh(vertices []float32) {
	n := len(vertices) / 3
	if n == 0 {
		s.mesh = nil
		return
	}
	scale := float32(s.cfg.MeshScale)
	s.mesh = make([]float32, 3*n)
	for i := range s.mesh {
		s.mesh[i] = vertices[i] * scale
	}
}

// HasMesh reports whether a mesh is installed.
func (s *Sampler) HasMesh() bool {
	return len(s.mesh) > 0
}

// Fill writes len(dst)/3 points of the given shape into dst. It returns false
// and leaves dst untouched when the shape cannot be sampled (mesh without vertices).
func (s *Sampler) Fill(shape Shape, dst []float32) bool {
	switch shape {
	case Torus:
		s.fillTorus(dst)
	case Mesh:
		if !s.HasMesh() {
			return false
		}
		s.fillMesh(dst)
	default:
		s.FillSphere(dst, s.cfg.SphereRadius)
	}
	return true
}

// FillSphere samples points uniformly by volume inside a sphere of the given radius.
func (s *Sampler) FillSphere(dst []float32, radius float64) {
	for j := 0; j+2 < len(dst); j += 3 {
		r := radius * math.Cbrt(s.rng.Float64())
		theta := 2 * math.Pi * s.rng.Float64()
		phi := math.Acos(2*s.rng.Float64() - 1)
		sinPhi := math.Sin(phi)
		dst[j] = float32(r * sinPhi * math.Cos(theta))
		dst[j+1] = float32(r * sinPhi * math.Sin(theta))
		dst[j+2] = float32(r * math.Cos(phi))
	}
}

// fillTorus samples the torus surface around the z axis with bounded per-axis jitter.
func (s *Sampler) fillTorus(dst []float32) {
	major, minor, jitter := s.cfg.TorusMajor, s.cfg.TorusMinor, s.cfg.TorusJitter
	for j := 0; j+2 < len(dst); j += 3 {
		u := 2 * math.Pi * s.rng.Float64()
		v := 2 * math.Pi * s.rng.Float64()
		ring := major + minor*math.Cos(v)
		dst[j] = float32(ring*math.Cos(u) + s.jitter(jitter))
		dst[j+1] = float32(ring*math.Sin(u) + s.jitter(jitter))
		dst[j+2] = float32(minor*math.Sin(v) + s.jitter(jitter))
	}
}

func (s *Sampler) jitter(bound float64) float64 {
	if bound <= 0 {
		return 0
	}
	return (2*s.rng.Float64() - 1) * bound
}

// fillMesh draws vertices uniformly with replacement.
func (s *Sampler) fillMesh(dst []float32) {
	n := len(s.mesh) / 3
	for j := 0; j+2 < len(dst); j += 3 {
		k := 3 * s.rng.Intn(n)
		dst[j] = s.mesh[k]
		dst[j+1] = s.mesh[k+1]
		dst[j+2] = s.mesh[k+2]
	}
}
