package telemetry

import (
	"math"

	"github.com/pthm-cable/swarm/particles"
)

// WindowInfo describes the swarm configuration at flush time.
type WindowInfo struct {
	Count int
	Tier  int
	Mode  string
	Shape string
}

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks uint64
	dt                  float64
	probes              int

	windowStartTick uint64

	tierChanges  int
	shapeChanges int
	modeChanges  int
	fpsSum       float64
	fpsCount     int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick
// probes: particles probed for the target error
func NewCollector(windowDurationSec, dt float64, probes int) *Collector {
	ticks := uint64(1)
	if dt > 0 && windowDurationSec > dt {
		ticks = uint64(math.Round(windowDurationSec / dt))
	}
	return &Collector{
		windowDurationTicks: ticks,
		dt:                  dt,
		probes:              probes,
	}
}

// RecordTierChange records a quality tier change.
func (c *Collector) RecordTierChange() {
	c.tierChanges++
}

// RecordShapeChange records a target shape change.
func (c *Collector) RecordShapeChange() {
	c.shapeChanges++
}

// RecordModeChange records a control mode transition.
func (c *Collector) RecordModeChange() {
	c.modeChanges++
}

// RecordFPS adds a frame rate sample. Non-positive samples are ignored.
func (c *Collector) RecordFPS(fps float64) {
	if fps <= 0 {
		return
	}
	c.fpsSum += fps
	c.fpsCount++
}

// ShouldFlush returns true if the current window has ended.
func (c *Collector) ShouldFlush(currentTick uint64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces stats for the window ending at currentTick and starts a
// new window.
func (c *Collector) Flush(currentTick uint64, s *particles.Store, info WindowInfo) WindowStats {
	m := Measure(s, c.probes)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,
		Count:           info.Count,
		Tier:            info.Tier,
		Mode:            info.Mode,
		Shape:           info.Shape,
		SpeedMean:       m.SpeedMean,
		SpeedP90:        m.SpeedP90,
		SpeedMax:        m.SpeedMax,
		LifetimeMean:    m.LifetimeMean,
		TargetError:     m.TargetError,
		TierChanges:     c.tierChanges,
		ShapeChanges:    c.shapeChanges,
		ModeChanges:     c.modeChanges,
	}
	if c.fpsCount > 0 {
		stats.FPSMean = c.fpsSum / float64(c.fpsCount)
	}

	c.windowStartTick = currentTick
	c.tierChanges = 0
	c.shapeChanges = 0
	c.modeChanges = 0
	c.fpsSum = 0
	c.fpsCount = 0

	return stats
}

// WindowDurationTicks returns the window length in ticks.
func (c *Collector) WindowDurationTicks() uint64 {
	return c.windowDurationTicks
}
