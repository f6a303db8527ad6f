// Package quality adapts the particle count to the measured frame rate.
package quality

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/swarm/config"
)

// Decision is the outcome of one evaluation window.
type Decision struct {
	From, To   int     // Particle counts
	AverageFPS float64 // Rolling average that triggered the change
}

// Changed reports whether the count moved to another tier.
func (d Decision) Changed() bool {
	return d.From != d.To
}

// Controller tracks a rolling FPS window and steps the particle count
// through a fixed ascending tier ladder.
type Controller struct {
	cfg  config.QualityConfig
	tier int // index into cfg.Tiers

	samples     []float64 // ring buffer
	writeIndex  int
	sampleCount int
	ticks       int
}

// NewController creates a controller starting at the tier nearest to count.
func NewController(cfg config.QualityConfig, count int) *Controller {
	window := cfg.SampleWindow
	if window < 1 {
		window = 30
	}
	c := &Controller{
		cfg:     cfg,
		samples: make([]float64, window),
	}
	c.tier = c.clampTier(c.nearestTier(count))
	return c
}

// Count returns the particle count of the current tier.
func (c *Controller) Count() int {
	return c.cfg.Tiers[c.tier]
}

// Tier returns the current tier index.
func (c *Controller) Tier() int {
	return c.tier
}

// Snap returns the tier count nearest to n within the configured bounds.
// Ties resolve to the lower tier.
func (c *Controller) Snap(n int) int {
	return c.cfg.Tiers[c.clampTier(c.nearestTier(n))]
}

// SetCount moves the controller to the tier nearest n and restarts the
// sample window. It returns the snapped count.
func (c *Controller) SetCount(n int) int {
	c.tier = c.clampTier(c.nearestTier(n))
	c.Reset()
	return c.Count()
}

// Reset discards collected samples and the interval counter.
func (c *Controller) Reset() {
	c.writeIndex = 0
	c.sampleCount = 0
	c.ticks = 0
}

// Observe records one frame-rate sample. Every Interval ticks it evaluates
// the window and returns the resulting decision; ok is false on ticks
// without an evaluation.
func (c *Controller) Observe(fps float64) (d Decision, ok bool) {
	if fps > 0 {
		c.samples[c.writeIndex] = fps
		c.writeIndex = (c.writeIndex + 1) % len(c.samples)
		if c.sampleCount < len(c.samples) {
			c.sampleCount++
		}
	}

	c.ticks++
	interval := c.cfg.Interval
	if interval < 1 {
		interval = 1
	}
	if c.ticks < interval {
		return Decision{}, false
	}
	c.ticks = 0
	return c.Evaluate(), true
}

// Evaluate applies the step-down/step-up rule to the current window.
// Fewer than MinSamples samples is a startup grace period: no change.
func (c *Controller) Evaluate() Decision {
	from := c.Count()
	if c.sampleCount < c.cfg.MinSamples || c.sampleCount == 0 {
		return Decision{From: from, To: from}
	}

	avg := c.Average()
	next := c.tier
	switch {
	case avg < c.cfg.LowRatio*c.cfg.TargetFPS:
		next--
	case avg > c.cfg.HighRatio*c.cfg.TargetFPS:
		next++
	}
	next = c.clampTier(next)

	d := Decision{From: from, To: c.cfg.Tiers[next], AverageFPS: avg}
	if next != c.tier {
		c.tier = next
		// The old samples describe the previous load
		c.writeIndex = 0
		c.sampleCount = 0
	}
	return d
}

// Average returns the mean of the collected samples, or 0 when empty.
func (c *Controller) Average() float64 {
	if c.sampleCount == 0 {
		return 0
	}
	return stat.Mean(c.samples[:c.sampleCount], nil)
}

// SampleCount returns how many samples the window currently holds.
func (c *Controller) SampleCount() int {
	return c.sampleCount
}

func (c *Controller) nearestTier(n int) int {
	tiers := c.cfg.Tiers
	i := sort.SearchInts(tiers, n)
	switch {
	case i == 0:
		return 0
	case i == len(tiers):
		return len(tiers) - 1
	case tiers[i] == n:
		return i
	}
	if n-tiers[i-1] <= tiers[i]-n {
		return i - 1
	}
	return i
}

func (c *Controller) clampTier(i int) int {
	if i < c.cfg.MinTier {
		i = c.cfg.MinTier
	}
	if i > c.cfg.MaxTier {
		i = c.cfg.MaxTier
	}
	if i < 0 {
		i = 0
	}
	if i >= len(c.cfg.Tiers) {
		i = len(c.cfg.Tiers) - 1
	}
	return i
}
