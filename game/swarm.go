// Package game owns one swarm simulation: the particle store, the active
// integrator, the quality controller and the gesture mapping, advanced
// once per display frame by the host loop.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/gesture"
	"github.com/pthm-cable/swarm/particles"
	"github.com/pthm-cable/swarm/quality"
	"github.com/pthm-cable/swarm/shapes"
	"github.com/pthm-cable/swarm/systems"
	"github.com/pthm-cable/swarm/telemetry"
)

// Clock supplies frame timestamps.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// Options holds swarm initialization options.
type Options struct {
	Seed      int64  // RNG seed (0 = time-based)
	Clock     Clock  // Frame clock (nil = wall clock)
	LogStats  bool   // Log telemetry windows via slog
	OutputDir string // Directory for CSV output (empty = disabled)

	// StatsCallback receives every flushed telemetry window.
	StatsCallback func(telemetry.WindowStats)
}

// Swarm is a single particle swarm. Several may coexist; none of them
// share state.
type Swarm struct {
	cfg   *config.Config
	rng   *rand.Rand
	clock Clock

	store   *particles.Store
	sampler *shapes.Sampler
	colors  *systems.ColorModel

	physics  *systems.PhysicsSystem
	flocking *systems.FlockingSystem
	active   systems.Integrator

	quality *quality.Controller
	mapper  *gesture.Mapper

	// Telemetry
	perf          *telemetry.PerfCollector
	collector     *telemetry.Collector
	output        *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)

	shape    shapes.Shape
	controls gesture.Controls
	opacity  float32
	tick     uint64
	dirty    bool
}

// New creates a swarm from cfg. The initial count snaps to the nearest
// quality tier.
func New(cfg *config.Config, opts Options) (*Swarm, error) {
	if cfg == nil {
		return nil, fmt.Errorf("game: nil config")
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	clock := opts.Clock
	if clock == nil {
		clock = wallClock{}
	}

	rng := rand.New(rand.NewSource(seed))
	sampler := shapes.NewSampler(cfg.Shape, rng)
	if cfg.Shape.MeshPath != "" {
		vertices, err := shapes.LoadVertices(cfg.Shape.MeshPath)
		if err != nil {
			return nil, fmt.Errorf("loading mesh: %w", err)
		}
		sampler.SetMesh(vertices)
	}

	colors := systems.NewColorModel(cfg.Color)
	qc := quality.NewController(cfg.Quality, cfg.Simulation.InitialCount)

	store, err := particles.NewStore(qc.Count(), cfg.Quality.MaxParticles)
	if err != nil {
		return nil, fmt.Errorf("allocating particles: %w", err)
	}

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		output.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	s := &Swarm{
		cfg:     cfg,
		rng:     rng,
		clock:   clock,
		store:   store,
		sampler: sampler,
		colors:  colors,
		physics: systems.NewPhysicsSystem(systems.PhysicsParamsFromConfig(cfg.Simulation), colors, rng),
		flocking: systems.NewFlockingSystem(
			systems.BoidsParamsFromConfig(cfg.Boids, cfg.Simulation), colors, sampler, rng),
		quality:       qc,
		mapper:        gesture.NewMapper(cfg.Gesture),
		perf:          telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Simulation.DT, cfg.Telemetry.TargetErrorSamples),
		output:        output,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
		shape:         shapes.ParseShape(cfg.Simulation.InitialShape),
		opacity:       float32(cfg.Color.Opacity),
	}
	s.active = s.physics
	s.controls.Scale = 1

	s.populate()
	return s, nil
}

// populate samples targets and origins for the current shape and treats
// every particle as newly born.
func (s *Swarm) populate() {
	st := s.store
	if !s.sampler.Fill(s.shape, st.Targets) {
		// Fresh buffers have no previous target to keep
		slog.Warn("shape unavailable, using sphere", "shape", s.shape)
		s.shape = shapes.Sphere
		s.sampler.Fill(s.shape, st.Targets)
	}
	copy(st.Origins, st.Targets)
	st.Respawn(s.rng, float32(s.cfg.Simulation.DiffusionSpeed))
	s.active.Enter(st)
	s.dirty = true
}

// resize reallocates the store for n particles and repopulates it.
func (s *Swarm) resize(n int) error {
	if err := s.store.Resize(n); err != nil {
		return err
	}
	s.populate()
	return nil
}

// SetShape switches the target formation. Live targets and birth samples
// are resampled; positions and velocities are untouched so particles
// travel to the new shape. A mesh request without mesh data is ignored and
// SetShape reports false.
func (s *Swarm) SetShape(name string) bool {
	shape := shapes.ParseShape(name)
	if !s.sampler.Fill(shape, s.store.Targets) {
		slog.Warn("shape unavailable", "shape", shape)
		return false
	}
	copy(s.store.Origins, s.store.Targets)
	if shape != s.shape {
		s.collector.RecordShapeChange()
	}
	s.shape = shape
	s.dirty = true
	return true
}

// SetMesh replaces the mesh vertex list. When the mesh shape is active the
// targets are resampled immediately.
func (s *Swarm) SetMesh(vertices []float32) {
	s.sampler.SetMesh(vertices)
	if s.shape == shapes.Mesh {
		s.SetShape(string(shapes.Mesh))
	}
}

// SetParticleCount moves to the tier nearest n and rebuilds the store.
// On failure the previous count stays in effect and the error wraps
// particles.ErrResize.
func (s *Swarm) SetParticleCount(n int) error {
	prev := s.store.Count
	count := s.quality.SetCount(n)
	if count == prev {
		return nil
	}
	if err := s.resize(count); err != nil {
		s.quality.SetCount(prev)
		return fmt.Errorf("setting particle count %d: %w", count, err)
	}
	return nil
}

// SetControlMode selects the integrator. Entering a mode runs its reset
// once; selecting the active mode is a no-op.
func (s *Swarm) SetControlMode(mode string) {
	m := systems.ParseMode(mode)
	if m == s.active.Mode() {
		return
	}
	switch m {
	case systems.ModeBoids:
		s.active = s.flocking
	default:
		s.active = s.physics
	}
	s.active.Enter(s.store)
	s.collector.RecordModeChange()
	s.dirty = true
	slog.Info("control mode", "mode", m, "tick", s.tick)
}

// SetColor sets the base color and the display opacity. Values are
// clamped to [0,1].
func (s *Swarm) SetColor(rgb [3]float32, opacity float32) {
	for i := range rgb {
		s.colors.Base[i] = clampUnit(rgb[i])
	}
	s.opacity = clampUnit(opacity)
	s.dirty = true
}

// Update advances the swarm by one tick using the given gesture snapshot.
// The only error is an unrecoverable resize after a tier change.
func (s *Swarm) Update(snap gesture.Snapshot) error {
	s.perf.StartTick()
	defer s.perf.EndTick()

	s.perf.RecordFrame(s.clock.Now())
	fps := s.perf.FPS()

	s.perf.StartPhase(telemetry.PhaseControls)
	s.controls = s.mapper.Apply(snap)
	if s.controls.Shape != "" {
		s.SetShape(string(s.controls.Shape))
	}
	in := s.stepInput()

	s.perf.StartPhase(telemetry.PhaseIntegrate)
	s.active.Step(s.store, in)

	s.perf.StartPhase(telemetry.PhaseQuality)
	s.collector.RecordFPS(fps)
	if s.cfg.Quality.Enabled {
		if d, ok := s.quality.Observe(fps); ok && d.Changed() {
			s.perf.StartPhase(telemetry.PhaseResize)
			if err := s.resize(d.To); err != nil {
				return fmt.Errorf("tier change %d -> %d: %w", d.From, d.To, err)
			}
			s.collector.RecordTierChange()
			slog.Info("tier change",
				"from", d.From,
				"to", d.To,
				"fps", d.AverageFPS,
				"tick", s.tick,
			)
		}
	}

	s.tick++
	s.dirty = true

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	s.flushTelemetry()
	return nil
}

// stepInput builds the integrator input from the configured field and the
// mapped gesture controls. A tracked hand moves and enables the field and
// becomes the boids control target.
func (s *Swarm) stepInput() systems.StepInput {
	ff := s.cfg.Simulation.ForceField
	in := systems.StepInput{
		Tick: s.tick,
		Field: systems.ForceField{
			Enabled:  ff.AlwaysOn,
			Center:   [3]float32{float32(ff.Center[0]), float32(ff.Center[1]), float32(ff.Center[2])},
			Strength: float32(ff.Strength),
			Radius:   float32(ff.Radius),
			Repel:    s.cfg.Derived.FieldRepels,
		},
	}
	if c := s.controls; c.Tracking {
		in.Field.Enabled = true
		in.Field.Center = [3]float32{float32(c.Center.X), float32(c.Center.Y), float32(c.Center.Z)}
		in.Field.Repel = c.Repel
		in.ControlTarget = c.Center
	}
	return in
}

// Close flushes and closes telemetry output.
func (s *Swarm) Close() error {
	return s.output.Close()
}

// Store returns the particle buffers. Callers must only read them between
// updates.
func (s *Swarm) Store() *particles.Store { return s.store }

// Shape returns the active target shape.
func (s *Swarm) Shape() shapes.Shape { return s.shape }

// Count returns the current particle count.
func (s *Swarm) Count() int { return s.store.Count }

// Tier returns the current quality tier index.
func (s *Swarm) Tier() int { return s.quality.Tier() }

// Mode returns the active control mode.
func (s *Swarm) Mode() systems.Mode { return s.active.Mode() }

// Scale returns the smoothed display scale from the pinch gesture.
func (s *Swarm) Scale() float32 { return s.controls.Scale }

// Rotation returns the display yaw and pitch in radians.
func (s *Swarm) Rotation() (yaw, pitch float32) { return s.controls.Yaw, s.controls.Pitch }

// Controls returns the gesture controls applied on the last update.
func (s *Swarm) Controls() gesture.Controls { return s.controls }

// Opacity returns the display opacity.
func (s *Swarm) Opacity() float32 { return s.opacity }

// Color returns the base color.
func (s *Swarm) Color() [3]float32 { return s.colors.Base }

// Tick returns the number of completed updates.
func (s *Swarm) Tick() uint64 { return s.tick }

// Dirty reports whether the buffers changed since ClearDirty.
func (s *Swarm) Dirty() bool { return s.dirty }

// ClearDirty marks the buffers as consumed by the render surface.
func (s *Swarm) ClearDirty() { s.dirty = false }

// Perf returns aggregated update timings.
func (s *Swarm) Perf() telemetry.PerfStats { return s.perf.Stats() }

// FPS returns the instantaneous frame rate seen by the quality controller.
func (s *Swarm) FPS() float64 { return s.perf.FPS() }

func clampUnit(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
