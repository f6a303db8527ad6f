package main

import (
	"context"
	"math"
	"sync"

	"github.com/pthm-cable/swarm/config"
	"github.com/pthm-cable/swarm/game"
	"github.com/pthm-cable/swarm/telemetry"
)

// FitnessEvaluator runs headless swarms and scores how well they hold
// their target shape.
type FitnessEvaluator struct {
	params     *ParamVector
	ticks      uint64
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastSettled float64 // settled error from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. Each run lasts ticks
// updates; the target shape switches from the initial shape to the torus
// halfway through.
func NewFitnessEvaluator(params *ParamVector, ticks uint64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		ticks:      ticks,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastSettled returns the mean final-window target error from the most
// recent evaluation.
func (fe *FitnessEvaluator) LastSettled() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSettled
}

// runResult holds the telemetry windows from a single run.
type runResult struct {
	windows []telemetry.WindowStats
	err     error
}

// Evaluate computes fitness for a raw parameter vector (lower = better).
// Fitness is the mean target error across every window of every seed, so
// both slow convergence and a loose final shape are penalized.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total, settled float64
	for _, r := range results {
		f, last := computeFitness(r)
		total += f
		settled += last
	}
	n := float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastSettled = settled / n
	fe.mu.Unlock()

	return total / n
}

// runSimulation runs one headless swarm with the given parameters and seed.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	// Fixed particle count keeps runs comparable.
	cfg.Quality.Enabled = false
	cfg.ComputeDerived()

	result := runResult{}
	s, err := game.New(cfg, game.Options{
		Seed: seed,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windows = append(result.windows, stats)
		},
	})
	if err != nil {
		result.err = err
		return result
	}
	defer s.Close()

	ctx := context.Background()
	half := fe.ticks / 2
	if err := game.RunHeadless(ctx, s, nil, half); err != nil {
		result.err = err
		return result
	}
	s.SetShape("torus")
	if err := game.RunHeadless(ctx, s, nil, fe.ticks); err != nil {
		result.err = err
	}
	return result
}

// computeFitness returns the mean window target error and the final
// window's error. Failed or empty runs score +Inf.
func computeFitness(r runResult) (fitness, settled float64) {
	if r.err != nil || len(r.windows) == 0 {
		return math.Inf(1), math.Inf(1)
	}
	var sum float64
	for _, w := range r.windows {
		if math.IsNaN(w.TargetError) {
			return math.Inf(1), math.Inf(1)
		}
		sum += w.TargetError
	}
	return sum / float64(len(r.windows)), r.windows[len(r.windows)-1].TargetError
}

// copyConfig creates a deep copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Quality.Tiers = append([]int(nil), fe.baseConfig.Quality.Tiers...)
	return &cfg
}
