package camera

import (
	"math"
	"testing"
)

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestNew(t *testing.T) {
	cam := New(6)

	x, y, z := cam.Eye()
	if !approx(x, 0) || !approx(y, 0) || !approx(z, 6) {
		t.Errorf("expected eye at (0, 0, 6), got (%f, %f, %f)", x, y, z)
	}
	if cam.Zoom != 1.0 {
		t.Errorf("expected zoom 1.0, got %f", cam.Zoom)
	}
}

func TestEyeOrientation(t *testing.T) {
	testCases := []struct {
		name       string
		yaw, pitch float32
		x, y, z    float32
	}{
		{"quarter turn", math.Pi / 2, 0, 6, 0, 0},
		{"half turn", math.Pi, 0, 0, 0, -6},
		{"tilted up", 0, math.Pi / 6, 0, 3, 6 * float32(math.Sqrt(3)) / 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cam := New(6)
			cam.SetRotation(tc.yaw, tc.pitch)
			x, y, z := cam.Eye()
			if !approx(x, tc.x) || !approx(y, tc.y) || !approx(z, tc.z) {
				t.Errorf("expected (%f, %f, %f), got (%f, %f, %f)", tc.x, tc.y, tc.z, x, y, z)
			}
		})
	}
}

func TestEyeStaysOnSphere(t *testing.T) {
	cam := New(4)
	for i := 0; i < 50; i++ {
		cam.Rotate(0.37, 0.11)
		x, y, z := cam.Eye()
		r := float32(math.Sqrt(float64(x*x + y*y + z*z)))
		if !approx(r, cam.Radius()) {
			t.Fatalf("step %d: eye distance %f, want %f", i, r, cam.Radius())
		}
		if cam.Yaw <= -math.Pi || cam.Yaw > math.Pi {
			t.Fatalf("step %d: yaw %f not wrapped", i, cam.Yaw)
		}
	}
}

func TestPitchClamped(t *testing.T) {
	cam := New(6)
	cam.SetRotation(0, 3)
	if cam.Pitch != cam.MaxPitch {
		t.Errorf("expected pitch clamped to %f, got %f", cam.MaxPitch, cam.Pitch)
	}
	cam.Rotate(0, -10)
	if cam.Pitch != -cam.MaxPitch {
		t.Errorf("expected pitch clamped to %f, got %f", -cam.MaxPitch, cam.Pitch)
	}
}

func TestZoomClamping(t *testing.T) {
	cam := New(6)

	cam.SetZoom(10.0)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}

	cam.SetZoom(0.01)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}

	cam.SetZoom(1)
	cam.ZoomBy(2)
	if !approx(cam.Radius(), 3) {
		t.Errorf("expected radius 3 at zoom 2, got %f", cam.Radius())
	}
}

func TestReset(t *testing.T) {
	cam := New(6)
	cam.SetRotation(1, 0.5)
	cam.SetZoom(2)
	cam.Reset()
	if cam.Yaw != 0 || cam.Pitch != 0 || cam.Zoom != 1 {
		t.Errorf("expected defaults after reset, got yaw=%f pitch=%f zoom=%f", cam.Yaw, cam.Pitch, cam.Zoom)
	}
}
