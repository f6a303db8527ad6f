package shapes

import (
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/swarm/config"
)

func testShapeConfig() config.ShapeConfig {
	return config.ShapeConfig{
		SphereRadius: 2.0,
		TorusMajor:   1.6,
		TorusMinor:   0.5,
		TorusJitter:  0.05,
		MeshScale:    2.0,
	}
}

func TestParseShape(t *testing.T) {
	tests := []struct {
		in   string
		want Shape
	}{
		{"sphere", Sphere},
		{"torus", Torus},
		{" Torus ", Torus},
		{"mesh", Mesh},
		{"default", Sphere},
		{"cube", Sphere},
		{"", Sphere},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, ParseShape(tc.in), "ParseShape(%q)", tc.in)
	}
}

func TestSphereSampling(t *testing.T) {
	cfg := testShapeConfig()
	s := NewSampler(cfg, rand.New(rand.NewSource(42)))

	const n = 20000
	dst := make([]float32, 3*n)
	require.True(t, s.Fill(Sphere, dst))

	// Uniform volume sampling means (d/R)^3 is uniform on [0,1)
	var sum float64
	below := 0
	for i := 0; i < n; i++ {
		x, y, z := float64(dst[3*i]), float64(dst[3*i+1]), float64(dst[3*i+2])
		d := math.Sqrt(x*x + y*y + z*z)
		require.LessOrEqual(t, d, cfg.SphereRadius+1e-5)

		u := math.Pow(d/cfg.SphereRadius, 3)
		sum += u
		if u < 0.5 {
			below++
		}
	}
	assert.InDelta(t, 0.5, sum/n, 0.02, "mean of (d/R)^3")
	assert.InDelta(t, 0.5, float64(below)/n, 0.02, "median of (d/R)^3")
}

func TestTorusSampling(t *testing.T) {
	cfg := testShapeConfig()
	s := NewSampler(cfg, rand.New(rand.NewSource(5)))

	const n = 5000
	dst := make([]float32, 3*n)
	require.True(t, s.Fill(Torus, dst))

	// Per-axis jitter in [-j, j] moves a point at most sqrt(3)*j
	bound := math.Sqrt(3)*cfg.TorusJitter + 1e-5
	for i := 0; i < n; i++ {
		x, y, z := float64(dst[3*i]), float64(dst[3*i+1]), float64(dst[3*i+2])
		ring := math.Sqrt(x*x+y*y) - cfg.TorusMajor
		dist := math.Sqrt(ring*ring + z*z)
		require.InDelta(t, cfg.TorusMinor, dist, bound, "point %d", i)
	}
}

func TestTorusWithoutJitter(t *testing.T) {
	cfg := testShapeConfig()
	cfg.TorusJitter = 0
	s := NewSampler(cfg, rand.New(rand.NewSource(6)))

	dst := make([]float32, 3*500)
	s.Fill(Torus, dst)
	for i := 0; i < 500; i++ {
		x, y, z := float64(dst[3*i]), float64(dst[3*i+1]), float64(dst[3*i+2])
		ring := math.Sqrt(x*x+y*y) - cfg.TorusMajor
		assert.InDelta(t, cfg.TorusMinor, math.Sqrt(ring*ring+z*z), 1e-5)
	}
}

func TestMeshSampling(t *testing.T) {
	cfg := testShapeConfig()
	s := NewSampler(cfg, rand.New(rand.NewSource(9)))
	s.SetMesh([]float32{1, 0, 0, 0, 1, 0, 0, 0, 1})

	dst := make([]float32, 3*300)
	require.True(t, s.Fill(Mesh, dst))

	seen := map[[3]float32]int{}
	for i := 0; i < 300; i++ {
		p := [3]float32{dst[3*i], dst[3*i+1], dst[3*i+2]}
		seen[p]++
	}
	// Only scaled vertices appear, each of them drawn
	assert.Len(t, seen, 3)
	for _, p := range [][3]float32{{2, 0, 0}, {0, 2, 0}, {0, 0, 2}} {
		assert.Greater(t, seen[p], 50, "vertex %v", p)
	}
}

func TestMeshWithoutVerticesIsNoop(t *testing.T) {
	s := NewSampler(testShapeConfig(), rand.New(rand.NewSource(1)))
	dst := []float32{7, 7, 7, 8, 8, 8}

	assert.False(t, s.Fill(Mesh, dst))
	assert.Equal(t, []float32{7, 7, 7, 8, 8, 8}, dst)

	s.SetMesh([]float32{1, 2}) // partial triplet only
	assert.False(t, s.HasMesh())
	assert.False(t, s.Fill(Mesh, dst))
	assert.Equal(t, []float32{7, 7, 7, 8, 8, 8}, dst)
}

func TestSeededSamplerIsReproducible(t *testing.T) {
	a := make([]float32, 300)
	b := make([]float32, 300)
	NewSampler(testShapeConfig(), rand.New(rand.NewSource(77))).Fill(Torus, a)
	NewSampler(testShapeConfig(), rand.New(rand.NewSource(77))).Fill(Torus, b)
	assert.Equal(t, a, b)
}

func TestParseOBJ(t *testing.T) {
	obj := `# cube corner
v 1.0 2.0 3.0
vn 0 0 1
v -1 -2 -3.5
f 1 2 3
`
	verts, err := ParseOBJ(strings.NewReader(obj))
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, -1, -2, -3.5}, verts)

	_, err = ParseOBJ(strings.NewReader("v 1 two 3\n"))
	assert.Error(t, err)
}

func TestLoadVerticesCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.csv")
	require.NoError(t, os.WriteFile(path, []byte("x,y,z\n0.5,1,2\n3,4,5\n"), 0644))

	verts, err := LoadVertices(path)
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 1, 2, 3, 4, 5}, verts)

	rows := ToVertices(verts)
	assert.Equal(t, Vertex{X: 3, Y: 4, Z: 5}, rows[1])
}

func TestLoadVerticesUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.stl")
	require.NoError(t, os.WriteFile(path, []byte("solid"), 0644))
	_, err := LoadVertices(path)
	assert.Error(t, err)
}
