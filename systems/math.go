package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// epsilon guards divisions by near-zero distances and speeds.
const epsilon = 1e-6

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// length3 returns the magnitude of (x, y, z).
func length3(x, y, z float32) float32 {
	return float32(math.Sqrt(float64(x*x + y*y + z*z)))
}

// limit caps the magnitude of v at max.
func limit(v r3.Vec, max float64) r3.Vec {
	n := r3.Norm(v)
	if n > max && n > epsilon {
		return r3.Scale(max/n, v)
	}
	return v
}

// unit returns v normalized, or the zero vector when v is degenerate.
func unit(v r3.Vec) r3.Vec {
	n := r3.Norm(v)
	if n < epsilon {
		return r3.Vec{}
	}
	return r3.Scale(1/n, v)
}

// loadVec reads the triplet at particle index i.
func loadVec(buf []float32, i int) r3.Vec {
	j := 3 * i
	return r3.Vec{X: float64(buf[j]), Y: float64(buf[j+1]), Z: float64(buf[j+2])}
}

// storeVec writes v to the triplet at particle index i.
func storeVec(buf []float32, i int, v r3.Vec) {
	j := 3 * i
	buf[j] = float32(v.X)
	buf[j+1] = float32(v.Y)
	buf[j+2] = float32(v.Z)
}
