package main

import (
	"github.com/pthm-cable/swarm/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable integrator parameters.
// Damping stays at its configured value. Diffusion speed also sets the
// velocity cap, so its lower bound keeps the swarm moving.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "attraction_strength", Path: "simulation.attraction_strength", Min: 0.001, Max: 0.05, Default: 0.005},
			{Name: "diffusion_speed", Path: "simulation.diffusion_speed", Min: 0.005, Max: 0.1, Default: 0.02},
			{Name: "randomness", Path: "simulation.randomness", Min: 0.0, Max: 0.02, Default: 0.004},
			{Name: "collision_damping", Path: "simulation.collision_damping", Min: 0.5, Max: 1.0, Default: 0.9},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Simulation.AttractionStrength = clamped[0]
	cfg.Simulation.DiffusionSpeed = clamped[1]
	cfg.Simulation.Randomness = clamped[2]
	cfg.Simulation.CollisionDamping = clamped[3]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Simulation.AttractionStrength,
		cfg.Simulation.DiffusionSpeed,
		cfg.Simulation.Randomness,
		cfg.Simulation.CollisionDamping,
	}
}

// EvalRecord is one row of the tuning log.
type EvalRecord struct {
	Eval               int     `csv:"eval"`
	Fitness            float64 `csv:"fitness"`
	Settled            float64 `csv:"settled_error"`
	AttractionStrength float64 `csv:"attraction_strength"`
	DiffusionSpeed     float64 `csv:"diffusion_speed"`
	Randomness         float64 `csv:"randomness"`
	CollisionDamping   float64 `csv:"collision_damping"`
}

// NewEvalRecord builds a log row from clamped parameter values.
func NewEvalRecord(eval int, fitness, settled float64, v []float64) EvalRecord {
	return EvalRecord{
		Eval:               eval,
		Fitness:            fitness,
		Settled:            settled,
		AttractionStrength: v[0],
		DiffusionSpeed:     v[1],
		Randomness:         v[2],
		CollisionDamping:   v[3],
	}
}
