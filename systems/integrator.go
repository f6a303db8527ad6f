// Package systems provides the per-tick particle update strategies.
package systems

import (
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/swarm/particles"
)

// frameNorm converts per-second rates at dt into per-frame steps at 60fps.
const frameNorm = 60

// Mode selects the active per-tick strategy.
type Mode string

const (
	ModeNormal Mode = "normal"
	ModeBoids  Mode = "boids"
)

// ParseMode maps a name to a Mode. Unknown names select ModeNormal.
func ParseMode(name string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(name))) == ModeBoids {
		return ModeBoids
	}
	return ModeNormal
}

// ForceField is a spherical attractor/repeller independent of shape targets.
type ForceField struct {
	Enabled  bool
	Center   [3]float32
	Strength float32
	Radius   float32
	Repel    bool
}

// StepInput carries the per-tick external state shared by all strategies.
type StepInput struct {
	Tick          uint64
	Field         ForceField
	ControlTarget r3.Vec // Boids seek point; ignored when its magnitude is <= 0.1
}

// Integrator is one interchangeable per-tick update over the particle buffers.
type Integrator interface {
	Mode() Mode
	// Enter runs once when the swarm switches into this mode.
	Enter(s *particles.Store)
	Step(s *particles.Store, in StepInput)
}
