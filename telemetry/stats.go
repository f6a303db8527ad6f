package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/swarm/particles"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick uint64  `csv:"-"`
	WindowEndTick   uint64  `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Swarm state at window end
	Count int    `csv:"count"`
	Tier  int    `csv:"tier"`
	Mode  string `csv:"mode"`
	Shape string `csv:"shape"`

	// Motion (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	LifetimeMean float64 `csv:"lifetime_mean"`

	// Mean distance from a probed particle to the nearest target point
	TargetError float64 `csv:"target_error"`

	// Events during window
	TierChanges  int `csv:"tier_changes"`
	ShapeChanges int `csv:"shape_changes"`
	ModeChanges  int `csv:"mode_changes"`

	FPSMean float64 `csv:"fps_mean"`
}

// Measurement is the state-derived part of a window.
type Measurement struct {
	SpeedMean, SpeedP90, SpeedMax float64
	LifetimeMean                  float64
	TargetError                   float64
}

// Measure computes motion statistics over every particle and the target
// error over up to probes evenly spaced particles. probes <= 0 skips the
// target error.
func Measure(s *particles.Store, probes int) Measurement {
	n := s.Count
	if n == 0 {
		return Measurement{}
	}

	speeds := make([]float64, n)
	lifetimes := make([]float64, n)
	for i := 0; i < n; i++ {
		speeds[i] = float64(s.Speed(i))
		lifetimes[i] = float64(s.Lifetimes[i])
	}
	sort.Float64s(speeds)

	m := Measurement{
		SpeedMean:    stat.Mean(speeds, nil),
		SpeedP90:     stat.Quantile(0.9, stat.Empirical, speeds, nil),
		SpeedMax:     speeds[n-1],
		LifetimeMean: stat.Mean(lifetimes, nil),
	}
	if probes > 0 {
		m.TargetError = TargetError(s, probes)
	}
	return m
}

// TargetError returns the mean distance from up to probes particles to
// their nearest target point. It measures how well the swarm fills the
// current shape regardless of which particle owns which target.
func TargetError(s *particles.Store, probes int) float64 {
	n := s.Count
	if n == 0 || probes <= 0 {
		return 0
	}

	pts := make(kdtree.Points, n)
	for i := 0; i < n; i++ {
		pts[i] = kdtree.Point{
			float64(s.Targets[3*i]),
			float64(s.Targets[3*i+1]),
			float64(s.Targets[3*i+2]),
		}
	}
	tree := kdtree.New(pts, false)

	stride := n / probes
	if stride < 1 {
		stride = 1
	}
	var sum float64
	var count int
	for i := 0; i < n && count < probes; i += stride {
		x, y, z := s.Position(i)
		_, d2 := tree.Nearest(kdtree.Point{float64(x), float64(y), float64(z)})
		sum += math.Sqrt(d2)
		count++
	}
	return sum / float64(count)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("window_start", s.WindowStartTick),
		slog.Uint64("window_end", s.WindowEndTick),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("count", s.Count),
		slog.Int("tier", s.Tier),
		slog.String("mode", s.Mode),
		slog.String("shape", s.Shape),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("lifetime_mean", s.LifetimeMean),
		slog.Float64("target_error", s.TargetError),
		slog.Int("tier_changes", s.TierChanges),
		slog.Int("shape_changes", s.ShapeChanges),
		slog.Int("mode_changes", s.ModeChanges),
		slog.Float64("fps_mean", s.FPSMean),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"count", s.Count,
		"mode", s.Mode,
		"shape", s.Shape,
		"speed_mean", s.SpeedMean,
		"target_error", s.TargetError,
		"fps", s.FPSMean,
	)
}
