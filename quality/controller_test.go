package quality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/swarm/config"
)

func testQualityConfig() config.QualityConfig {
	return config.QualityConfig{
		Enabled:      true,
		Tiers:        []int{1000, 2000, 5000, 10000, 20000, 40000},
		MinTier:      1,
		MaxTier:      4,
		TargetFPS:    60,
		Interval:     60,
		SampleWindow: 30,
		MinSamples:   10,
		LowRatio:     0.7,
		HighRatio:    1.3,
	}
}

// runWindow feeds one evaluation interval of constant fps.
func runWindow(t *testing.T, c *Controller, fps float64) Decision {
	t.Helper()
	for i := 0; i < 59; i++ {
		_, ok := c.Observe(fps)
		require.False(t, ok, "evaluated early at tick %d", i)
	}
	d, ok := c.Observe(fps)
	require.True(t, ok)
	return d
}

func TestStepsDownOneTierPerWindow(t *testing.T) {
	c := NewController(testQualityConfig(), 20000)
	require.Equal(t, 20000, c.Count())

	want := []int{10000, 5000, 2000, 2000, 2000} // floor at MinTier=1
	for i, w := range want {
		d := runWindow(t, c, 30) // below 0.7*60
		assert.Equal(t, w, d.To, "window %d", i)
		assert.Equal(t, w, c.Count())
	}
}

func TestStepsUpAndClampsAtMax(t *testing.T) {
	c := NewController(testQualityConfig(), 5000)

	want := []int{10000, 20000, 20000}
	for i, w := range want {
		d := runWindow(t, c, 120) // above 1.3*60
		assert.Equal(t, w, d.To, "window %d", i)
	}
}

func TestHoldsInsideBand(t *testing.T) {
	c := NewController(testQualityConfig(), 5000)
	for i := 0; i < 3; i++ {
		d := runWindow(t, c, 55)
		assert.False(t, d.Changed())
		assert.InDelta(t, 55, d.AverageFPS, 1e-9)
	}
}

func TestStartupGracePeriod(t *testing.T) {
	cfg := testQualityConfig()
	cfg.Interval = 5 // evaluates before MinSamples are collected
	c := NewController(cfg, 5000)

	for i := 0; i < 5; i++ {
		c.Observe(10)
	}
	assert.Equal(t, 5, c.SampleCount())
	assert.Equal(t, 5000, c.Count())

	// Zero samples (no frame timing yet) are not recorded
	c.Observe(0)
	assert.Equal(t, 5, c.SampleCount())

	for i := 0; i < 5; i++ {
		c.Observe(10)
	}
	// The interval fired with nine samples; the tenth unlocks the rule
	assert.Equal(t, 5000, c.Count())
	assert.Equal(t, 10, c.SampleCount())
	d := c.Evaluate()
	assert.True(t, d.Changed())
	assert.Equal(t, 2000, d.To)
}

func TestRollingWindowKeepsRecentSamples(t *testing.T) {
	cfg := testQualityConfig()
	cfg.Interval = 1000
	c := NewController(cfg, 5000)

	for i := 0; i < 30; i++ {
		c.Observe(10)
	}
	for i := 0; i < 30; i++ {
		c.Observe(50)
	}
	assert.Equal(t, 30, c.SampleCount())
	assert.InDelta(t, 50, c.Average(), 1e-9)
}

func TestSnap(t *testing.T) {
	c := NewController(testQualityConfig(), 5000)

	tests := []struct {
		in, want int
	}{
		{5000, 5000},
		{3600, 5000},
		// Below MinTier
		{1, 2000},
		// Ties pick the lower tier, then clamp to MinTier
		{1500, 2000},
		{3500, 2000},
		// Above MaxTier
		{1 << 30, 20000},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, c.Snap(tc.in), "Snap(%d)", tc.in)
	}

	assert.Equal(t, 10000, c.SetCount(9000))
	assert.Equal(t, 10000, c.Count())
	assert.Zero(t, c.SampleCount())
}
