// Package gesture carries hand-tracking input from a producer goroutine to
// the simulation and maps it onto swarm controls.
package gesture

// Hand is one tracked hand. X and Y are normalized image coordinates in
// [0,1] with Y pointing down. Rotations are normalized to [-1,1];
// the mapper scales them to radians.
type Hand struct {
	Present     bool
	X, Y        float32
	RotationZ   float32 // Roll of the palm, drives yaw
	RotationX   float32 // Tilt of the palm, drives pitch
	Pinch       float32 // 0 = open, 1 = fully pinched
	FingerCount int
}

// Snapshot is the complete input state for one frame.
type Snapshot struct {
	Hands [2]Hand
}

// Neutral returns the snapshot used when no hand is tracked.
func Neutral() Snapshot {
	return Snapshot{Hands: [2]Hand{
		{X: 0.5, Y: 0.5},
		{X: 0.5, Y: 0.5},
	}}
}

// Primary returns the first present hand.
func (s Snapshot) Primary() (Hand, bool) {
	for _, h := range s.Hands {
		if h.Present {
			return h, true
		}
	}
	return Hand{}, false
}

// Present reports how many hands are tracked.
func (s Snapshot) Present() int {
	n := 0
	for _, h := range s.Hands {
		if h.Present {
			n++
		}
	}
	return n
}
