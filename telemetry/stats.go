package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/habitat/dispersal"
	"github.com/pthm-cable/habitat/ecosystem"
	"github.com/pthm-cable/habitat/world"
)

// Summary describes the distribution of a sample.
type Summary struct {
	N    int
	Mean float64
	Std  float64
	Min  float64
	P10  float64
	P50  float64
	P90  float64
	Max  float64
}

// Summarize computes mean, sample standard deviation and empirical
// quantiles of values. An empty sample yields the zero Summary.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	s := Summary{
		N:   n,
		Min: sorted[0],
		Max: sorted[n-1],
		P10: stat.Quantile(0.10, stat.Empirical, sorted, nil),
		P50: stat.Quantile(0.50, stat.Empirical, sorted, nil),
		P90: stat.Quantile(0.90, stat.Empirical, sorted, nil),
	}
	if n == 1 {
		s.Mean = sorted[0]
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(sorted, nil)
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("n", s.N),
		slog.Float64("mean", s.Mean),
		slog.Float64("std", s.Std),
		slog.Float64("min", s.Min),
		slog.Float64("p10", s.P10),
		slog.Float64("p50", s.P50),
		slog.Float64("p90", s.P90),
		slog.Float64("max", s.Max),
	)
}

// WorldStats summarizes a generated or reclassified grid.
type WorldStats struct {
	Tiles         int
	OceanFraction float64
	LandRegions   int
	WaterRegions  int
	Lakes         int
	Elevation     Summary
	Temperature   Summary
	Humidity      Summary
	Resources     Summary
	TopBiomes     []BiomeCount
}

// BiomeCount is the number of tiles carrying one biome.
type BiomeCount struct {
	Biome world.Biome
	Tiles int
}

// NewWorldStats summarizes w. Region and lake counts are only meaningful
// once connectivity has been annotated.
func NewWorldStats(w *world.World) WorldStats {
	f := w.Fields()
	s := WorldStats{
		Tiles:         w.Len(),
		OceanFraction: w.OceanFraction(),
		Elevation:     Summarize(f.Elevation),
		Temperature:   Summarize(f.Temperature),
		Humidity:      Summarize(f.Humidity),
		Resources:     Summarize(f.Resources),
	}

	land := make(map[int32]bool)
	water := make(map[int32]bool)
	lakes := make(map[int32]bool)
	for i := range f.Biome {
		if r := f.LandRegion[i]; r != 0 {
			land[r] = true
		}
		if r := f.WaterRegion[i]; r != 0 {
			water[r] = true
			if f.Lake[i] {
				lakes[r] = true
			}
		}
	}
	s.LandRegions = len(land)
	s.WaterRegions = len(water)
	s.Lakes = len(lakes)

	for b, n := range w.BiomeCounts() {
		s.TopBiomes = append(s.TopBiomes, BiomeCount{Biome: b, Tiles: n})
	}
	sort.Slice(s.TopBiomes, func(i, j int) bool {
		a, b := s.TopBiomes[i], s.TopBiomes[j]
		if a.Tiles != b.Tiles {
			return a.Tiles > b.Tiles
		}
		return a.Biome < b.Biome
	})
	if len(s.TopBiomes) > 5 {
		s.TopBiomes = s.TopBiomes[:5]
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s WorldStats) LogValue() slog.Value {
	biomes := make([]slog.Attr, 0, len(s.TopBiomes))
	for _, b := range s.TopBiomes {
		biomes = append(biomes, slog.Int(b.Biome.String(), b.Tiles))
	}
	return slog.GroupValue(
		slog.Int("tiles", s.Tiles),
		slog.Float64("ocean_fraction", s.OceanFraction),
		slog.Int("land_regions", s.LandRegions),
		slog.Int("water_regions", s.WaterRegions),
		slog.Int("lakes", s.Lakes),
		slog.Any("elevation", s.Elevation),
		slog.Any("temperature", s.Temperature),
		slog.Any("humidity", s.Humidity),
		slog.Any("resources", s.Resources),
		slog.Attr{Key: "top_biomes", Value: slog.GroupValue(biomes...)},
	)
}

// TurnStats is the per-turn row of turns.csv.
type TurnStats struct {
	Turn          int `csv:"turn"`
	Species       int `csv:"species"`
	Dispersed     int `csv:"dispersed"`
	Founded       int `csv:"founded"`
	Passive       int `csv:"passive"`
	Pressure      int `csv:"pressure"`
	Overflow      int `csv:"overflow"`
	PreyTracking  int `csv:"prey_tracking"`
	OccupiedTiles int `csv:"occupied_tiles"`

	// Tiles per species
	RangeMean float64 `csv:"range_mean"`
	RangeP50  float64 `csv:"range_p50"`
	RangeMax  float64 `csv:"range_max"`

	// Suitability of occupied cells; the mean is weighted by share
	SuitMean float64 `csv:"suit_mean"`
	SuitP10  float64 `csv:"suit_p10"`
	SuitP50  float64 `csv:"suit_p50"`
	SuitP90  float64 `csv:"suit_p90"`
}

// NewTurnStats flattens a turn report into a turns.csv row.
func NewTurnStats(r *ecosystem.TurnReport) TurnStats {
	ts := TurnStats{
		Turn:          r.Turn,
		Species:       r.Species,
		Dispersed:     r.Dispersed,
		Founded:       r.Founded,
		Passive:       r.Modes[dispersal.Passive],
		Pressure:      r.Modes[dispersal.PressureDriven],
		Overflow:      r.Modes[dispersal.Overflow],
		PreyTracking:  r.Modes[dispersal.PreyTracking],
		OccupiedTiles: r.OccupiedTiles,
	}
	if len(r.Records) == 0 {
		return ts
	}

	perSpecies := make(map[int]int)
	suits := make([]float64, len(r.Records))
	shares := make([]float64, len(r.Records))
	for i, rec := range r.Records {
		perSpecies[rec.SpeciesID]++
		suits[i] = rec.Suitability
		shares[i] = rec.Share
	}
	ranges := make([]float64, 0, len(perSpecies))
	for _, n := range perSpecies {
		ranges = append(ranges, float64(n))
	}
	rs := Summarize(ranges)
	ts.RangeMean, ts.RangeP50, ts.RangeMax = rs.Mean, rs.P50, rs.Max

	ss := Summarize(suits)
	ts.SuitMean = ss.Mean
	if total := floats.Sum(shares); total > 0 {
		ts.SuitMean = stat.Mean(suits, shares)
	}
	ts.SuitP10, ts.SuitP50, ts.SuitP90 = ss.P10, ss.P50, ss.P90
	return ts
}

// LogValue implements slog.LogValuer for structured logging.
func (s TurnStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("turn", s.Turn),
		slog.Int("species", s.Species),
		slog.Int("dispersed", s.Dispersed),
		slog.Int("founded", s.Founded),
		slog.Int("occupied_tiles", s.OccupiedTiles),
		slog.Float64("range_mean", s.RangeMean),
		slog.Float64("range_max", s.RangeMax),
		slog.Float64("suit_mean", s.SuitMean),
		slog.Float64("suit_p50", s.SuitP50),
	)
}
