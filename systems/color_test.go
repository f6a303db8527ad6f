package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgeBrightness(t *testing.T) {
	c := testColors()

	tests := []struct {
		name      string
		life      float32
		speedNorm float32
		want      float32
	}{
		{"newborn at rest", 0, 0, 0.25 + 0.75*0.6},
		{"newborn at full speed", 0, 1, 1},
		{"old at rest", 1, 0, 0.25},
		{"speed clamps above one", 0.5, 3, 0.25 + 0.75*(0.3+0.4)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, c.AgeBrightness(tc.life, tc.speedNorm), 1e-6)
		})
	}
}

func TestChannelsClamped(t *testing.T) {
	c := testColors()
	c.Base = [3]float32{2, -1, 0.5}

	s := newTestStore(t, 1)
	c.ByAge(s, 0, 1)
	assert.Equal(t, []float32{1, 0, 0.5}, s.Colors)
}

func TestRankBrightness(t *testing.T) {
	c := testColors()
	assert.Equal(t, float32(1), c.RankBrightness(0, 1))
	assert.Equal(t, float32(1), c.RankBrightness(0, 100))
	assert.InDelta(t, 0.3, c.RankBrightness(99, 100), 1e-6)
	assert.InDelta(t, 0.65, c.RankBrightness(50, 101), 1e-6)
}

func TestSizeRange(t *testing.T) {
	r := SizeRange{Base: 1, Variation: 2}
	assert.Equal(t, float32(1), r.At(0))
	assert.Equal(t, float32(2), r.At(0.5))
	assert.Equal(t, float32(3), r.At(7))
	assert.Equal(t, float32(1), r.At(-1))
}
