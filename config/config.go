// Package config provides configuration loading and access for the swarm.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all swarm configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Simulation SimulationConfig `yaml:"simulation"`
	Boids      BoidsConfig      `yaml:"boids"`
	Shape      ShapeConfig      `yaml:"shape"`
	Quality    QualityConfig    `yaml:"quality"`
	Color      ColorConfig      `yaml:"color"`
	Gesture    GestureConfig    `yaml:"gesture"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// SimulationConfig holds the "normal" mode integrator parameters.
type SimulationConfig struct {
	DT                 float64          `yaml:"dt"`
	InitialCount       int              `yaml:"initial_count"`
	InitialShape       string           `yaml:"initial_shape"`
	DiffusionSpeed     float64          `yaml:"diffusion_speed"`
	AttractionStrength float64          `yaml:"attraction_strength"`
	Randomness         float64          `yaml:"randomness"`
	Gravity            float64          `yaml:"gravity"`
	CollisionRadius    float64          `yaml:"collision_radius"`
	CollisionDamping   float64          `yaml:"collision_damping"`
	CollisionWindow    int              `yaml:"collision_window"` // Subsequent indices tested per particle
	Damping            float64          `yaml:"damping"`          // Per-tick velocity multiplier
	MaxLifetime        float64          `yaml:"max_lifetime"`     // Seconds from birth to rebirth
	BaseSize           float64          `yaml:"base_size"`
	SizeVariation      float64          `yaml:"size_variation"`
	ForceField         ForceFieldConfig `yaml:"force_field"`
}

// ForceFieldConfig describes a spherical attractor/repeller.
type ForceFieldConfig struct {
	Strength float64    `yaml:"strength"`
	Radius   float64    `yaml:"radius"`
	Center   [3]float64 `yaml:"center"`
	Mode     string     `yaml:"mode"`      // "attract" or "repel"
	AlwaysOn bool       `yaml:"always_on"` // Active even while no hand is tracked
}

// BoidsConfig holds flocking parameters.
type BoidsConfig struct {
	SeparationWeight  float64 `yaml:"separation_weight"`
	AlignmentWeight   float64 `yaml:"alignment_weight"`
	CohesionWeight    float64 `yaml:"cohesion_weight"`
	TargetWeight      float64 `yaml:"target_weight"`
	DesiredSeparation float64 `yaml:"desired_separation"`
	NeighborRadius    float64 `yaml:"neighbor_radius"`
	MaxSpeed          float64 `yaml:"max_speed"`
	MaxForce          float64 `yaml:"max_force"`
	MinSpeed          float64 `yaml:"min_speed"`
	BoundaryRadius    float64 `yaml:"boundary_radius"`
	BoundaryForce     float64 `yaml:"boundary_force"`
	NeighborSamples   int     `yaml:"neighbor_samples"` // Candidate indices scanned per particle
	MaxNeighbors      int     `yaml:"max_neighbors"`    // Accepted neighbors cap
	ArrivalRadius     float64 `yaml:"arrival_radius"`   // seek() slows down inside this distance
}

// ShapeConfig holds shape sampling parameters.
type ShapeConfig struct {
	SphereRadius float64 `yaml:"sphere_radius"`
	TorusMajor   float64 `yaml:"torus_major"`
	TorusMinor   float64 `yaml:"torus_minor"`
	TorusJitter  float64 `yaml:"torus_jitter"` // Per-axis bound for volume jitter
	MeshScale    float64 `yaml:"mesh_scale"`
	MeshPath     string  `yaml:"mesh_path"` // Optional OBJ/CSV vertex file
}

// QualityConfig holds adaptive particle-count parameters.
type QualityConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Tiers        []int   `yaml:"tiers"` // Ascending particle counts
	MinTier      int     `yaml:"min_tier"`
	MaxTier      int     `yaml:"max_tier"`
	TargetFPS    float64 `yaml:"target_fps"`
	Interval     int     `yaml:"interval"`      // Ticks between evaluations
	SampleWindow int     `yaml:"sample_window"` // FPS samples kept
	MinSamples   int     `yaml:"min_samples"`   // Startup grace period
	LowRatio     float64 `yaml:"low_ratio"`     // Step down below target*low_ratio
	HighRatio    float64 `yaml:"high_ratio"`    // Step up above target*high_ratio
	MaxParticles int     `yaml:"max_particles"` // Hard allocation cap
}

// ColorConfig holds particle color parameters.
type ColorConfig struct {
	Base           [3]float64 `yaml:"base"`
	Opacity        float64    `yaml:"opacity"`
	YouthWeight    float64    `yaml:"youth_weight"`
	SpeedWeight    float64    `yaml:"speed_weight"`
	MinBrightness  float64    `yaml:"min_brightness"`
	TailBrightness float64    `yaml:"tail_brightness"` // Boids index gradient floor
}

// GestureConfig holds hand-input mapping parameters.
type GestureConfig struct {
	WorldSpan      float64 `yaml:"world_span"` // Half-extent mapped from normalized hand position
	PinchThreshold float64 `yaml:"pinch_threshold"`
	MinScale       float64 `yaml:"min_scale"`
	MaxScale       float64 `yaml:"max_scale"`
	ScaleSmoothing float64 `yaml:"scale_smoothing"` // Fraction of the gap closed per tick
	ShapeDebounce  int     `yaml:"shape_debounce"`  // Ticks a finger count must hold
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // Seconds per stats window
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
	TargetErrorSamples  int     `yaml:"target_error_samples"` // Particles probed per window
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32        float32 // Simulation.DT as float32
	StatsTicks  int     // Telemetry.StatsWindow in ticks
	TierIndex   map[int]int
	ScreenW32   float32
	ScreenH32   float32
	FieldRepels bool
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.ComputeDerived()

	return cfg, nil
}

// Validate checks values the simulation cannot run with.
func (c *Config) Validate() error {
	q := &c.Quality
	if len(q.Tiers) == 0 {
		return fmt.Errorf("quality.tiers: at least one tier required")
	}
	for i, t := range q.Tiers {
		if t <= 0 {
			return fmt.Errorf("quality.tiers[%d]: count must be positive, got %d", i, t)
		}
		if i > 0 && t <= q.Tiers[i-1] {
			return fmt.Errorf("quality.tiers: must be strictly ascending at index %d", i)
		}
		if q.MaxParticles > 0 && t > q.MaxParticles {
			return fmt.Errorf("quality.tiers[%d]: %d exceeds max_particles %d", i, t, q.MaxParticles)
		}
	}
	if q.MinTier < 0 || q.MaxTier >= len(q.Tiers) || q.MinTier > q.MaxTier {
		return fmt.Errorf("quality: tier bounds [%d, %d] invalid for %d tiers", q.MinTier, q.MaxTier, len(q.Tiers))
	}
	if c.Simulation.DT <= 0 {
		return fmt.Errorf("simulation.dt: must be positive")
	}
	if c.Simulation.MaxLifetime <= 0 {
		return fmt.Errorf("simulation.max_lifetime: must be positive")
	}
	if c.Shape.SphereRadius <= 0 || c.Shape.TorusMajor <= 0 || c.Shape.TorusMinor <= 0 {
		return fmt.Errorf("shape: radii must be positive")
	}
	if c.Simulation.DiffusionSpeed <= 0 {
		return fmt.Errorf("simulation.diffusion_speed: must be positive")
	}
	if c.Boids.MaxForce <= 0 || c.Boids.NeighborRadius <= 0 {
		return fmt.Errorf("boids: max_force and neighbor_radius must be positive")
	}
	if c.Boids.MinSpeed > c.Boids.MaxSpeed {
		return fmt.Errorf("boids: min_speed %.3f exceeds max_speed %.3f", c.Boids.MinSpeed, c.Boids.MaxSpeed)
	}
	switch c.Simulation.ForceField.Mode {
	case "attract", "repel":
	default:
		return fmt.Errorf("simulation.force_field.mode: unknown mode %q", c.Simulation.ForceField.Mode)
	}
	return nil
}

// ComputeDerived calculates values derived from loaded config.
// Call again after mutating a loaded config in place.
func (c *Config) ComputeDerived() {
	c.Derived.DT32 = float32(c.Simulation.DT)
	c.Derived.StatsTicks = int(c.Telemetry.StatsWindow / c.Simulation.DT)
	if c.Derived.StatsTicks < 1 {
		c.Derived.StatsTicks = 1
	}
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)
	c.Derived.FieldRepels = c.Simulation.ForceField.Mode == "repel"

	c.Derived.TierIndex = make(map[int]int, len(c.Quality.Tiers))
	for i, t := range c.Quality.Tiers {
		c.Derived.TierIndex[t] = i
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
