package gesture

import (
	"bytes"
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/shapes"
)

func testGestureConfig() config.GestureConfig {
	return config.GestureConfig{
		WorldSpan:      2.5,
		PinchThreshold: 0.5,
		MinScale:       0.5,
		MaxScale:       1.5,
		ScaleSmoothing: 1,
		ShapeDebounce:  3,
	}
}

func hand(x, y, pinch float32, fingers int) Snapshot {
	s := Neutral()
	s.Hands[0] = Hand{Present: true, X: x, Y: y, Pinch: pinch, FingerCount: fingers}
	return s
}

func TestLatestDefaultsToNeutral(t *testing.T) {
	var l Latest
	assert.Equal(t, Neutral(), l.Load())
	assert.Zero(t, l.Seq())

	l.Store(hand(0.2, 0.3, 1, 2))
	l.Store(hand(0.7, 0.1, 0, 1))
	got := l.Load()
	assert.Equal(t, float32(0.7), got.Hands[0].X)
	assert.Equal(t, uint64(2), l.Seq())
}

func TestLatestConcurrentStoreLoad(t *testing.T) {
	var l Latest
	var wg sync.WaitGroup

	const n = 5000
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 1; i <= n; i++ {
			s := hand(float32(i), float32(i), 0, i)
			l.Store(s)
		}
	}()

	// Every read sees one whole snapshot, never a mix of two
	for i := 0; i < n; i++ {
		s := l.Load()
		h := s.Hands[0]
		if h.Present {
			require.Equal(t, float32(h.FingerCount), h.X)
			require.Equal(t, h.X, h.Y)
		}
	}
	wg.Wait()
	assert.Equal(t, float32(n), l.Load().Hands[0].X)
}

func TestPrimaryHand(t *testing.T) {
	s := Neutral()
	_, ok := s.Primary()
	assert.False(t, ok)
	assert.Zero(t, s.Present())

	s.Hands[1] = Hand{Present: true, X: 0.9}
	h, ok := s.Primary()
	require.True(t, ok)
	assert.Equal(t, float32(0.9), h.X)
	assert.Equal(t, 1, s.Present())
}

func TestMapperPosition(t *testing.T) {
	tests := []struct {
		name         string
		x, y         float32
		wantX, wantY float64
	}{
		{"center", 0.5, 0.5, 0, 0},
		{"top right", 1, 0, 2.5, 2.5},
		{"bottom left", 0, 1, -2.5, -2.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMapper(testGestureConfig())
			c := m.Apply(hand(tc.x, tc.y, 0, 0))
			assert.True(t, c.Tracking)
			assert.InDelta(t, tc.wantX, c.Center.X, 1e-6)
			assert.InDelta(t, tc.wantY, c.Center.Y, 1e-6)
			assert.Zero(t, c.Center.Z)
		})
	}
}

func TestMapperPinch(t *testing.T) {
	tests := []struct {
		pinch     float32
		repel     bool
		wantScale float32
	}{
		{0, true, 0.5},
		{0.5, true, 1.0},
		{0.8, false, 1.3},
		{2, false, 1.5},
	}
	for _, tc := range tests {
		m := NewMapper(testGestureConfig())
		c := m.Apply(hand(0.5, 0.5, tc.pinch, 0))
		assert.Equal(t, tc.repel, c.Repel, "pinch %v", tc.pinch)
		assert.InDelta(t, tc.wantScale, c.Scale, 1e-6, "pinch %v", tc.pinch)
	}
}

func TestMapperScaleSmoothing(t *testing.T) {
	cfg := testGestureConfig()
	cfg.ScaleSmoothing = 0.1
	m := NewMapper(cfg)

	prev := m.Scale()
	for i := 0; i < 100; i++ {
		c := m.Apply(hand(0.5, 0.5, 1, 0))
		assert.GreaterOrEqual(t, c.Scale, prev)
		assert.LessOrEqual(t, c.Scale, float32(1.5))
		prev = c.Scale
	}
	assert.InDelta(t, 1.5, prev, 1e-3)

	// Losing the hand relaxes back toward unit scale
	for i := 0; i < 100; i++ {
		m.Apply(Neutral())
	}
	assert.InDelta(t, 1.0, m.Scale(), 1e-3)
}

func TestMapperRotation(t *testing.T) {
	m := NewMapper(testGestureConfig())
	s := hand(0.5, 0.5, 0, 0)
	s.Hands[0].RotationZ = 0.5
	s.Hands[0].RotationX = -1
	c := m.Apply(s)
	assert.InDelta(t, math.Pi/2, c.Yaw, 1e-6)
	assert.InDelta(t, -math.Pi/2, c.Pitch, 1e-6)

	// Normalized extremes map to half turns of yaw and quarter turns of pitch
	s.Hands[0].RotationZ = -1
	s.Hands[0].RotationX = 1
	c = m.Apply(s)
	assert.InDelta(t, -math.Pi, c.Yaw, 1e-6)
	assert.InDelta(t, math.Pi/2, c.Pitch, 1e-6)
}

func TestMapperNoHand(t *testing.T) {
	m := NewMapper(testGestureConfig())
	c := m.Apply(Neutral())
	assert.False(t, c.Tracking)
	assert.Zero(t, c.Center)
	assert.Equal(t, float32(1), c.Scale)
	assert.Empty(t, c.Shape)
}

func TestMapperShapeDebounce(t *testing.T) {
	m := NewMapper(testGestureConfig())

	seq := []struct {
		fingers int
		want    shapes.Shape
	}{
		{2, ""},
		{2, ""},
		{2, shapes.Torus},
		{2, ""}, // fires once per hold
		{3, ""}, // new count restarts the hold
		{1, ""},
		{1, ""},
		{1, shapes.Sphere},
		{0, ""},
		{3, ""},
		{3, ""},
		{3, shapes.Mesh},
		{7, ""},
	}
	for i, step := range seq {
		c := m.Apply(hand(0.5, 0.5, 0, step.fingers))
		assert.Equal(t, step.want, c.Shape, "tick %d fingers %d", i, step.fingers)
	}
}

func TestFramesCSV(t *testing.T) {
	a := hand(0.25, 0.75, 0.6, 2)
	a.Hands[0].RotationZ = 0.5
	b := Neutral()
	b.Hands[1] = Hand{Present: true, X: 0.1, Y: 0.2, RotationX: -0.3, FingerCount: 3}

	var buf bytes.Buffer
	require.NoError(t, WriteFrames(&buf, []Frame{NewFrame(0, a), NewFrame(1, b)}))
	assert.Contains(t, buf.String(), "h0_present")

	frames, err := ReadFrames(&buf)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	assert.Equal(t, a, frames[0].Snapshot())
	assert.Equal(t, b, frames[1].Snapshot())
	assert.Equal(t, 1, frames[1].Tick)
}

func TestReplayRunsToEnd(t *testing.T) {
	frames := []Frame{
		NewFrame(0, hand(0.1, 0.1, 0, 1)),
		NewFrame(1, hand(0.2, 0.2, 0, 2)),
		NewFrame(2, hand(0.3, 0.3, 0, 3)),
	}
	var l Latest
	r := NewReplay(frames, time.Millisecond, false)
	require.NoError(t, r.Run(context.Background(), &l))

	// Three frames then the release
	assert.Equal(t, uint64(4), l.Seq())
	assert.Equal(t, Neutral(), l.Load())
}

func TestReplayStopsOnCancel(t *testing.T) {
	frames := []Frame{NewFrame(0, hand(0.1, 0.1, 0, 1))}
	var l Latest
	r := NewReplay(frames, time.Millisecond, true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, &l) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("replay did not stop")
	}
	assert.True(t, l.Load().Hands[0].Present)
}
