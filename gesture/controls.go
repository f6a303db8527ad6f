package gesture

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/shapes"
)

// Controls is the per-tick result of mapping a snapshot.
type Controls struct {
	Tracking bool // A hand is present

	// Primary hand position in world units
	Center r3.Vec
	Repel  bool

	Scale      float32 // Smoothed display scale
	Yaw, Pitch float32 // Radians, from the hand rotation in [-1,1]

	// Shape is set for exactly one tick once a finger count has been held
	// for the debounce period.
	Shape shapes.Shape
}

// Mapper turns snapshots into controls. It keeps the smoothing and
// debounce state between ticks, so one Mapper serves one swarm.
type Mapper struct {
	cfg   config.GestureConfig
	scale float32

	candidate int // Finger count being held
	held      int // Ticks the candidate has been held
	fired     bool
}

// NewMapper creates a mapper at unit scale.
func NewMapper(cfg config.GestureConfig) *Mapper {
	return &Mapper{cfg: cfg, scale: 1}
}

// Apply maps one snapshot. Call once per tick.
func (m *Mapper) Apply(s Snapshot) Controls {
	h, ok := s.Primary()
	if !ok {
		m.relaxScale(1)
		m.resetDebounce(0)
		return Controls{Scale: m.scale}
	}

	span := float32(m.cfg.WorldSpan)
	c := Controls{
		Tracking: true,
		Center: r3.Vec{
			X: float64((h.X - 0.5) * 2 * span),
			Y: float64((0.5 - h.Y) * 2 * span),
		},
		Repel: float64(h.Pinch) <= m.cfg.PinchThreshold,
		Yaw:   h.RotationZ * math.Pi,
		Pitch: h.RotationX * math.Pi / 2,
	}

	pinch := clampUnit(h.Pinch)
	lo, hi := float32(m.cfg.MinScale), float32(m.cfg.MaxScale)
	m.relaxScale(lo + (hi-lo)*pinch)
	c.Scale = m.scale

	c.Shape = m.debounce(h.FingerCount)
	return c
}

// Scale returns the current smoothed scale.
func (m *Mapper) Scale() float32 {
	return m.scale
}

func (m *Mapper) relaxScale(target float32) {
	k := float32(m.cfg.ScaleSmoothing)
	if k <= 0 || k > 1 {
		k = 1
	}
	m.scale += (target - m.scale) * k
}

func (m *Mapper) debounce(fingers int) shapes.Shape {
	shape, ok := FingerShape(fingers)
	if !ok {
		m.resetDebounce(0)
		return ""
	}
	if fingers != m.candidate {
		m.resetDebounce(fingers)
	}
	m.held++
	if m.fired || m.held < m.cfg.ShapeDebounce {
		return ""
	}
	m.fired = true
	return shape
}

func (m *Mapper) resetDebounce(candidate int) {
	m.candidate = candidate
	m.held = 0
	m.fired = false
}

// FingerShape maps an extended finger count to a shape.
func FingerShape(fingers int) (shapes.Shape, bool) {
	switch fingers {
	case 1:
		return shapes.Sphere, true
	case 2:
		return shapes.Torus, true
	case 3:
		return shapes.Mesh, true
	}
	return "", false
}

func clampUnit(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
