package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/shapes"
)

func TestRunSampleTorus(t *testing.T) {
	cfg := config.Default().Shape
	var buf bytes.Buffer
	require.NoError(t, runSample(&buf, cfg, "torus", 50, 7))

	pts, err := shapes.ParseCSV(&buf)
	require.NoError(t, err)
	require.Len(t, pts, 150)

	// Every point lies within the jittered tube around the major circle.
	slack := cfg.TorusMinor + math.Sqrt(3)*cfg.TorusJitter + 1e-4
	for i := 0; i < len(pts); i += 3 {
		x, y, z := float64(pts[i]), float64(pts[i+1]), float64(pts[i+2])
		ring := math.Hypot(x, y) - cfg.TorusMajor
		if d := math.Hypot(ring, z); d > slack {
			t.Fatalf("point %d at tube distance %.4f, want <= %.4f", i/3, d, slack)
		}
	}
}

func TestRunSampleDeterministic(t *testing.T) {
	cfg := config.Default().Shape
	var a, b bytes.Buffer
	require.NoError(t, runSample(&a, cfg, "sphere", 20, 3))
	require.NoError(t, runSample(&b, cfg, "sphere", 20, 3))
	assert.Equal(t, a.String(), b.String())
}

func TestRunSampleErrors(t *testing.T) {
	cfg := config.Default().Shape
	cfg.MeshPath = ""
	var buf bytes.Buffer

	assert.Error(t, runSample(&buf, cfg, "cube", 10, 1))
	assert.Error(t, runSample(&buf, cfg, "sphere", 0, 1))
	assert.Error(t, runSample(&buf, cfg, "mesh", 10, 1))
	assert.Zero(t, buf.Len())
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	obj := filepath.Join(dir, "tri.obj")
	out := filepath.Join(dir, "tri.csv")
	require.NoError(t, os.WriteFile(obj, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0644))

	cmd := newRootCmd()
	cmd.SetArgs([]string{"convert", obj, "--output", out})
	require.NoError(t, cmd.Execute())

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	pts, err := shapes.ParseCSV(f)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, pts)
}

func TestSampleCommandStdout(t *testing.T) {
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"sample", "sphere", "-n", "5"})
	require.NoError(t, cmd.Execute())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "x,y,z", lines[0])
	assert.Len(t, lines, 6)
}
