package particles

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResizeBufferLengths(t *testing.T) {
	tiers := []int{1000, 2000, 5000, 10000, 20000, 40000}
	rng := rand.New(rand.NewSource(1))

	s, err := NewStore(tiers[0], 100000)
	require.NoError(t, err)

	// Walk up and down the ladder; counts share no relationship
	order := []int{5000, 1000, 40000, 2000, 20000, 10000}
	for _, n := range order {
		require.NoError(t, s.Resize(n))
		s.Respawn(rng, 0.02)

		assert.Equal(t, n, s.Count)
		assert.Len(t, s.Positions, 3*n)
		assert.Len(t, s.Velocities, 3*n)
		assert.Len(t, s.Targets, 3*n)
		assert.Len(t, s.Origins, 3*n)
		assert.Len(t, s.Colors, 3*n)
		assert.Len(t, s.Masses, n)
		assert.Len(t, s.Lifetimes, n)
		assert.Len(t, s.Sizes, n)
		require.NoError(t, s.Validate())

		for i, life := range s.Lifetimes {
			if life < 0 || life >= 1 {
				t.Fatalf("count %d: lifetime[%d] = %f outside [0,1)", n, i, life)
			}
		}
	}
}

func TestResizeRejectsInvalidCounts(t *testing.T) {
	s, err := NewStore(100, 1000)
	require.NoError(t, err)

	tests := []struct {
		name string
		n    int
	}{
		{"zero", 0},
		{"negative", -5},
		{"above cap", 1001},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := s.Resize(tc.n)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrResize))
			// Store keeps its previous consistent state
			assert.Equal(t, 100, s.Count)
			assert.NoError(t, s.Validate())
		})
	}
}

func TestRespawnRanges(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	s, err := NewStore(2000, 0)
	require.NoError(t, err)
	for i := range s.Origins {
		s.Origins[i] = float32(i)
	}

	const diffusion = 0.05
	s.Respawn(rng, diffusion)

	assert.Equal(t, s.Origins, s.Positions)
	for i := 0; i < s.Count; i++ {
		speed := s.Speed(i)
		assert.GreaterOrEqual(t, speed, float32(0.8*diffusion)-1e-6)
		assert.Less(t, speed, float32(1.2*diffusion)+1e-6)
		assert.GreaterOrEqual(t, s.Masses[i], float32(0.5))
		assert.Less(t, s.Masses[i], float32(1.0))
	}
}

func TestRebirth(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	s, err := NewStore(4, 0)
	require.NoError(t, err)
	s.Origins[6], s.Origins[7], s.Origins[8] = 1, 2, 3
	s.SetPosition(2, 9, 9, 9)
	s.Lifetimes[2] = 0.99

	s.Rebirth(2, rng, 0.02)

	x, y, z := s.Position(2)
	assert.Equal(t, [3]float32{1, 2, 3}, [3]float32{x, y, z})
	assert.Zero(t, s.Lifetimes[2])
	assert.Greater(t, s.Speed(2), float32(0))
}

func TestRandomDirectionIsUnit(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		x, y, z := RandomDirection(rng)
		mag := math.Sqrt(float64(x*x + y*y + z*z))
		assert.InDelta(t, 1.0, mag, 1e-5)
	}
}
