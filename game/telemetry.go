package game

import (
	"log/slog"

	"github.com/pthm-cable/swarm/telemetry"
)

// flushTelemetry emits the stats window once it has ended.
func (s *Swarm) flushTelemetry() {
	if !s.collector.ShouldFlush(s.tick) {
		return
	}

	stats := s.collector.Flush(s.tick, s.store, telemetry.WindowInfo{
		Count: s.store.Count,
		Tier:  s.quality.Tier(),
		Mode:  string(s.active.Mode()),
		Shape: string(s.shape),
	})
	perfStats := s.perf.Stats()

	if s.statsCallback != nil {
		s.statsCallback(stats)
	}

	if s.logStats {
		stats.LogStats()
		slog.Info("perf", "stats", perfStats)
	}

	if s.output != nil {
		if err := s.output.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := s.output.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
