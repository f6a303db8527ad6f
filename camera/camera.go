// Package camera provides an orbit camera around the swarm origin.
package camera

import "math"

// Orbit looks at the origin from a point on a sphere. Yaw turns around
// the vertical axis, pitch tilts toward the poles and Zoom shrinks the
// orbit radius.
type Orbit struct {
	Yaw, Pitch float32 // Radians
	Distance   float32 // Orbit radius at zoom 1
	Zoom       float32

	// Constraints
	MaxPitch         float32
	MinZoom, MaxZoom float32
}

// New creates an orbit camera on the +z axis at the given distance.
func New(distance float32) *Orbit {
	return &Orbit{
		Distance: distance,
		Zoom:     1.0,
		MaxPitch: 1.5, // just short of straight up
		MinZoom:  0.25,
		MaxZoom:  4.0,
	}
}

// Eye returns the camera position in world coordinates.
func (c *Orbit) Eye() (x, y, z float32) {
	r := c.Radius()
	sy, cy := sincos(c.Yaw)
	sp, cp := sincos(c.Pitch)
	return r * cp * sy, r * sp, r * cp * cy
}

// Radius returns the effective orbit radius.
func (c *Orbit) Radius() float32 {
	return c.Distance / c.Zoom
}

// Up returns the camera up vector. It stays world-up; pitch is clamped so
// the view never flips.
func (c *Orbit) Up() (x, y, z float32) {
	return 0, 1, 0
}

// SetRotation sets yaw and pitch, clamping pitch.
func (c *Orbit) SetRotation(yaw, pitch float32) {
	c.Yaw = wrapAngle(yaw)
	c.Pitch = clamp(pitch, -c.MaxPitch, c.MaxPitch)
}

// Rotate adds the given deltas, e.g. from a mouse drag.
func (c *Orbit) Rotate(dYaw, dPitch float32) {
	c.SetRotation(c.Yaw+dYaw, c.Pitch+dPitch)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Orbit) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Orbit) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the default orientation and zoom.
func (c *Orbit) Reset() {
	c.Yaw, c.Pitch = 0, 0
	c.Zoom = 1.0
}

// wrapAngle maps a into (-pi, pi].
func wrapAngle(a float32) float32 {
	r := math.Remainder(float64(a), 2*math.Pi)
	if r == -math.Pi {
		r = math.Pi
	}
	return float32(r)
}

func sincos(a float32) (s, c float32) {
	s64, c64 := math.Sincos(float64(a))
	return float32(s64), float32(c64)
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
