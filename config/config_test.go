package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Simulation.InitialCount)
	assert.Equal(t, "sphere", cfg.Simulation.InitialShape)
	assert.InDelta(t, 1.0/60.0, cfg.Simulation.DT, 1e-9)
	assert.Equal(t, []int{1000, 2000, 5000, 10000, 20000, 40000}, cfg.Quality.Tiers)

	// Initial count must sit on the tier ladder
	_, ok := cfg.Derived.TierIndex[cfg.Simulation.InitialCount]
	assert.True(t, ok, "initial count %d is not a tier", cfg.Simulation.InitialCount)
	assert.Equal(t, 300, cfg.Derived.StatsTicks)
	assert.True(t, cfg.Derived.FieldRepels)
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "swarm.yaml")
	overlay := []byte("boids:\n  max_speed: 0.08\nsimulation:\n  force_field:\n    mode: attract\n")
	require.NoError(t, os.WriteFile(path, overlay, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 0.08, cfg.Boids.MaxSpeed, 1e-12)
	// Untouched fields keep their defaults
	assert.InDelta(t, 0.01, cfg.Boids.MinSpeed, 1e-12)
	assert.False(t, cfg.Derived.FieldRepels)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty tiers", func(c *Config) { c.Quality.Tiers = nil }},
		{"descending tiers", func(c *Config) { c.Quality.Tiers = []int{5000, 1000}; c.Quality.MaxTier = 1 }},
		{"tier above cap", func(c *Config) { c.Quality.MaxParticles = 10 }},
		{"max tier out of range", func(c *Config) { c.Quality.MaxTier = 99 }},
		{"zero dt", func(c *Config) { c.Simulation.DT = 0 }},
		{"zero lifetime", func(c *Config) { c.Simulation.MaxLifetime = 0 }},
		{"bad field mode", func(c *Config) { c.Simulation.ForceField.Mode = "spin" }},
		{"min above max speed", func(c *Config) { c.Boids.MinSpeed = 1 }},
		{"zero diffusion", func(c *Config) { c.Simulation.DiffusionSpeed = 0 }},
		{"negative diffusion", func(c *Config) { c.Simulation.DiffusionSpeed = -0.1 }},
		{"zero max force", func(c *Config) { c.Boids.MaxForce = 0 }},
		{"zero neighbor radius", func(c *Config) { c.Boids.NeighborRadius = 0 }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Boids.TargetWeight = 2.5

	path := filepath.Join(t.TempDir(), "out.yaml")
	require.NoError(t, cfg.WriteYAML(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, loaded.Boids.TargetWeight, 1e-12)
}
