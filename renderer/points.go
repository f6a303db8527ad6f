// Package renderer draws the particle buffers with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/swarm/camera"
	"github.com/pthm-cable/swarm/particles"
)

// PointCloud draws every particle as a small cube colored from the store.
// It only reads the buffers, after the update for the frame has finished.
type PointCloud struct {
	cam    rl.Camera3D
	orbit  *camera.Orbit
	bounds bool
}

// NewPointCloud creates a renderer viewing the origin through orbit.
func NewPointCloud(orbit *camera.Orbit) *PointCloud {
	return &PointCloud{
		orbit: orbit,
		cam: rl.Camera3D{
			Target:     rl.NewVector3(0, 0, 0),
			Up:         rl.NewVector3(0, 1, 0),
			Fovy:       45,
			Projection: rl.CameraPerspective,
		},
	}
}

// ToggleBounds shows or hides the reference sphere.
func (p *PointCloud) ToggleBounds() {
	p.bounds = !p.bounds
}

// Draw renders the store. Opacity applies to every particle; boundary is
// the radius of the optional reference sphere.
func (p *PointCloud) Draw(s *particles.Store, opacity, boundary float32) {
	x, y, z := p.orbit.Eye()
	p.cam.Position = rl.NewVector3(x, y, z)
	ux, uy, uz := p.orbit.Up()
	p.cam.Up = rl.NewVector3(ux, uy, uz)

	alpha := toByte(opacity)

	rl.BeginMode3D(p.cam)
	for i := 0; i < s.Count; i++ {
		j := 3 * i
		pos := rl.NewVector3(s.Positions[j], s.Positions[j+1], s.Positions[j+2])
		c := rl.Color{
			R: toByte(s.Colors[j]),
			G: toByte(s.Colors[j+1]),
			B: toByte(s.Colors[j+2]),
			A: alpha,
		}
		size := s.Sizes[i]
		rl.DrawCubeV(pos, rl.NewVector3(size, size, size), c)
	}
	if p.bounds && boundary > 0 {
		rl.DrawSphereWires(rl.NewVector3(0, 0, 0), boundary, 12, 16, rl.Fade(rl.DarkGray, 0.4))
	}
	rl.EndMode3D()
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
