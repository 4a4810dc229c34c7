// Package terrain builds the tile grid for a new world: layered noise and
// seeded continents are combined into a height field, ranked to hit an exact
// ocean ratio, then given climate, biomes and decorative coastal features.
package terrain

import (
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/habitat/noise"
	"github.com/pthm-cable/habitat/world"
)

// Generation phases reported to the PhaseTimer.
const (
	PhaseNoise      = "noise"
	PhaseContinents = "continents"
	PhaseMountains  = "mountains"
	PhaseElevation  = "elevation"
	PhaseClimate    = "climate"
	PhaseFeatures   = "features"
)

// PhaseTimer receives phase boundaries during generation.
type PhaseTimer interface {
	StartPhase(name string)
}

// Generator produces worlds from a Config.
type Generator struct {
	cfg    Config
	logger *slog.Logger
	timer  PhaseTimer
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the generator's logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithPhaseTimer reports generation phases to t.
func WithPhaseTimer(t PhaseTimer) Option {
	return func(g *Generator) { g.timer = t }
}

// NewGenerator creates a generator for cfg.
func NewGenerator(cfg Config, opts ...Option) *Generator {
	g := &Generator{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds a world with the default generator.
func Generate(cfg Config) *world.World {
	return NewGenerator(cfg).Generate()
}

// Generate builds a new world. A zero seed is replaced by one derived from
// the wall clock; the seed actually used is recorded on the world.
func (g *Generator) Generate() *world.World {
	seed := g.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
		g.logger.Info("seed derived from clock", "seed", seed)
	}

	w := g.baseWorld(seed)

	g.phase(PhaseFeatures)
	newCarver(w, rand.New(rand.NewSource(seed+11)), g.logger, g.cfg.PostProcessBudget).run(g.cfg.Features)
	w.UpdateGlobalTemperature()

	g.logger.Info("world generated",
		"width", w.Width,
		"height", w.Height,
		"seed", seed,
		"ocean_fraction", w.OceanFraction(),
		"global_temperature", w.GlobalTemperature,
	)
	return w
}

// baseWorld runs every step before decorative post-processing.
func (g *Generator) baseWorld(seed int64) *world.World {
	cfg := g.cfg
	W, H := cfg.Width, cfg.Height

	g.phase(PhaseNoise)
	l := layers{
		continental: noise.Fractal(W, H, 5, 0.5, 2, cfg.ContinentScale, seed),
		coastal:     noise.Fractal(W, H, 4, 0.5, 2, cfg.CoastalScale, seed+1),
		detail:      noise.Fractal(W, H, 3, 0.5, 2, cfg.DetailScale, seed+2),
		latitude:    latitudeField(W, H),
	}

	g.phase(PhaseContinents)
	rng := rand.New(rand.NewSource(seed + 7))
	l.continents = continentField(rng, cfg, seed+3)

	g.phase(PhaseMountains)
	l.mountains = mountainField(cfg, seed+5, l.continents)
	l.oceanFloor = noise.Fractal(W, H, 4, 0.5, 2, cfg.OceanFloorScale, seed+6)
	l.ridges = midOceanRidges(rng, cfg, l.continents)

	g.phase(PhaseElevation)
	ranks := PercentileRanks(l.combine(cfg.Weights))
	ratio := cfg.oceanRatio()
	w := world.New(W, H, seed)
	w.Primordial = cfg.Primordial
	for i := range w.Tiles {
		w.Tiles[i].Elevation = ElevationForRank(ranks[i], ratio)
	}

	g.phase(PhaseClimate)
	deriveClimate(w)
	return w
}

func (g *Generator) phase(name string) {
	if g.timer != nil {
		g.timer.StartPhase(name)
	}
}

// layers holds every intermediate field, each row-major and in [0, 1].
type layers struct {
	continents  []float64
	latitude    []float64
	continental []float64
	coastal     []float64
	detail      []float64
	mountains   []float64
	oceanFloor  []float64
	ridges      []float64
}

// combine blends the layers. Mountains only count where land is likely and
// ocean-floor relief only where water is likely.
func (l layers) combine(wt LayerWeights) []float64 {
	out := make([]float64, len(l.continents))
	for i := range out {
		base := wt.Continents*l.continents[i] +
			wt.Latitude*l.latitude[i] +
			wt.Continental*l.continental[i] +
			wt.Coastal*l.coastal[i] +
			wt.Detail*l.detail[i]
		mask := smoothstep(0.25, 0.6, 0.7*l.continents[i]+0.3*l.continental[i])
		floor := 0.6*l.oceanFloor[i] + 0.4*l.ridges[i]
		out[i] = base + wt.Mountains*l.mountains[i]*mask + wt.OceanFloor*floor*(1-mask)
	}
	return out
}

func smoothstep(edge0, edge1, x float64) float64 {
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// Reclassify returns a copy of w with every elevation re-expressed against a
// new sea level, climate and biomes recomputed, and region annotations
// cleared. Tile ids and neighbors are unchanged; w is not modified.
func Reclassify(w *world.World, seaLevel float64) *world.World {
	out := w.Clone()
	delta := seaLevel - w.SeaLevel
	for i := range out.Tiles {
		t := &out.Tiles[i]
		t.Elevation -= delta
		t.IsLake = false
		t.LandRegion = 0
		t.WaterRegion = 0
	}
	out.SeaLevel = seaLevel
	deriveClimate(out)
	return out
}
