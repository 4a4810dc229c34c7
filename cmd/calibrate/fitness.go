package main

import (
	"io"
	"log/slog"
	"sync"

	"github.com/pthm-cable/habitat/config"
	"github.com/pthm-cable/habitat/connectivity"
	"github.com/pthm-cable/habitat/terrain"
	"github.com/pthm-cable/habitat/world"
)

// Metrics describes the shape of a generated world.
type Metrics struct {
	Landmasses  float64 // land regions holding at least majorLandShare of all land
	LargestLand float64 // largest land region / land tiles
	LakeDensity float64 // lakes per 10k tiles
	CoastShare  float64 // land tiles touching open water / land tiles
}

// Targets are the metrics a calibrated world should approach, with the
// scale each error is divided by before squaring.
type Targets struct {
	Metrics
	Scale Metrics
}

// DefaultTargets describes an Earth-like map: a handful of continents, no
// single supercontinent, scattered lakes and ragged coasts.
func DefaultTargets() Targets {
	return Targets{
		Metrics: Metrics{Landmasses: 6, LargestLand: 0.35, LakeDensity: 3, CoastShare: 0.25},
		Scale:   Metrics{Landmasses: 2, LargestLand: 0.1, LakeDensity: 2, CoastShare: 0.08},
	}
}

const majorLandShare = 0.02

// Measure computes the metrics of an annotated world.
func Measure(w *world.World, r *connectivity.Regions) Metrics {
	var land int
	for _, n := range r.LandSizes[1:] {
		land += n
	}
	if land == 0 {
		return Metrics{}
	}

	var m Metrics
	var largest int
	for _, n := range r.LandSizes[1:] {
		if float64(n) >= majorLandShare*float64(land) {
			m.Landmasses++
		}
		largest = max(largest, n)
	}
	m.LargestLand = float64(largest) / float64(land)
	m.LakeDensity = float64(r.LakeCount()) * 10000 / float64(w.Len())

	var coast int
	for i := range w.Tiles {
		t := &w.Tiles[i]
		if !t.IsLand() {
			continue
		}
		for _, n := range t.Neighbors {
			if w.Tiles[n].IsOpenWater() {
				coast++
				break
			}
		}
	}
	m.CoastShare = float64(coast) / float64(land)
	return m
}

// Error is the scaled squared distance of m from the targets.
func (t Targets) Error(m Metrics) float64 {
	sq := func(got, want, scale float64) float64 {
		d := (got - want) / scale
		return d * d
	}
	return sq(m.Landmasses, t.Landmasses, t.Scale.Landmasses) +
		sq(m.LargestLand, t.LargestLand, t.Scale.LargestLand) +
		sq(m.LakeDensity, t.LakeDensity, t.Scale.LakeDensity) +
		sq(m.CoastShare, t.CoastShare, t.Scale.CoastShare)
}

// FitnessEvaluator generates worlds and scores them against the targets.
type FitnessEvaluator struct {
	params     *ParamVector
	seeds      []int64
	baseConfig *config.Config
	targets    Targets
	quiet      *slog.Logger

	mu          sync.Mutex
	lastMetrics Metrics // averaged over seeds, from the latest Evaluate
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, seeds []int64, baseCfg *config.Config, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		seeds:      seeds,
		baseConfig: baseCfg,
		targets:    targets,
		quiet:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// LastMetrics returns the seed-averaged metrics of the most recent evaluation.
func (fe *FitnessEvaluator) LastMetrics() Metrics {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMetrics
}

// Evaluate computes fitness for a raw parameter vector (lower = better): the
// mean target error over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := *fe.baseConfig
	fe.params.ApplyToConfig(&cfg, x)

	results := make([]Metrics, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			tc := cfg.ToTerrain()
			tc.Seed = s
			w := terrain.NewGenerator(tc, terrain.WithLogger(fe.quiet)).Generate()
			w, regions := connectivity.Annotate(w)
			results[idx] = Measure(w, regions)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	var avg Metrics
	for _, m := range results {
		total += fe.targets.Error(m)
		avg.Landmasses += m.Landmasses
		avg.LargestLand += m.LargestLand
		avg.LakeDensity += m.LakeDensity
		avg.CoastShare += m.CoastShare
	}
	n := float64(len(fe.seeds))
	avg.Landmasses /= n
	avg.LargestLand /= n
	avg.LakeDensity /= n
	avg.CoastShare /= n
	fitness := total / n

	fe.mu.Lock()
	fe.lastMetrics = avg
	fe.mu.Unlock()

	return fitness
}
