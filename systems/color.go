package systems

import (
	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/particles"
)

// ColorModel derives per-particle RGB from age, speed or array position.
type ColorModel struct {
	Base           [3]float32
	YouthWeight    float32
	SpeedWeight    float32
	MinBrightness  float32
	TailBrightness float32
}

// NewColorModel builds a color model from config.
func NewColorModel(cfg config.ColorConfig) *ColorModel {
	return &ColorModel{
		Base:           [3]float32{float32(cfg.Base[0]), float32(cfg.Base[1]), float32(cfg.Base[2])},
		YouthWeight:    float32(cfg.YouthWeight),
		SpeedWeight:    float32(cfg.SpeedWeight),
		MinBrightness:  float32(cfg.MinBrightness),
		TailBrightness: float32(cfg.TailBrightness),
	}
}

// AgeBrightness blends the youth term (1-life) with normalized speed.
func (c *ColorModel) AgeBrightness(life, speedNorm float32) float32 {
	blend := c.YouthWeight*(1-life) + c.SpeedWeight*clamp01(speedNorm)
	return c.MinBrightness + (1-c.MinBrightness)*blend
}

// RankBrightness fades from 1 at index 0 to TailBrightness at the last index.
func (c *ColorModel) RankBrightness(i, n int) float32 {
	if n <= 1 {
		return 1
	}
	t := float32(i) / float32(n-1)
	return 1 - (1-c.TailBrightness)*t
}

// ByAge writes the age/speed color for particle i.
func (c *ColorModel) ByAge(s *particles.Store, i int, speedNorm float32) {
	c.apply(s, i, c.AgeBrightness(s.Lifetimes[i], speedNorm))
}

// ByRank writes the index-gradient color for particle i.
func (c *ColorModel) ByRank(s *particles.Store, i int) {
	c.apply(s, i, c.RankBrightness(i, s.Count))
}

func (c *ColorModel) apply(s *particles.Store, i int, brightness float32) {
	j := 3 * i
	s.Colors[j] = clamp01(c.Base[0] * brightness)
	s.Colors[j+1] = clamp01(c.Base[1] * brightness)
	s.Colors[j+2] = clamp01(c.Base[2] * brightness)
}

// SizeRange maps normalized speed onto [Base, Base+Variation].
type SizeRange struct {
	Base      float32
	Variation float32
}

// At returns the size for a normalized speed in [0, 1].
func (r SizeRange) At(speedNorm float32) float32 {
	return r.Base + r.Variation*clamp01(speedNorm)
}
