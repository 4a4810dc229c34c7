package terrain

import "math/rand"

// IntRange is an inclusive integer range picked uniformly.
type IntRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Pick returns a value in [Min, Max].
func (r IntRange) Pick(rng *rand.Rand) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Intn(r.Max-r.Min+1)
}

// LayerWeights are the linear-combination weights of the height layers.
type LayerWeights struct {
	Continents  float64 `yaml:"continents"`
	Latitude    float64 `yaml:"latitude"`
	Continental float64 `yaml:"continental"`
	Coastal     float64 `yaml:"coastal"`
	Detail      float64 `yaml:"detail"`
	Mountains   float64 `yaml:"mountains"`
	OceanFloor  float64 `yaml:"ocean_floor"`
}

// FeatureCounts holds the per-category counts for post-processing, before
// area scaling.
type FeatureCounts struct {
	VolcanicArcs IntRange `yaml:"volcanic_arcs"`
	Archipelagos IntRange `yaml:"archipelagos"`
	ShelfIslands IntRange `yaml:"shelf_islands"`
	Seamounts    IntRange `yaml:"seamounts"`
	Atolls       IntRange `yaml:"atolls"`
	Bays         IntRange `yaml:"bays"`
	Peninsulas   IntRange `yaml:"peninsulas"`
	InlandSeas   IntRange `yaml:"inland_seas"`
}

// Config holds world generation parameters.
type Config struct {
	Width      int
	Height     int
	Seed       int64   // 0 = derive from wall clock
	OceanRatio float64 // fraction of tiles below sea level
	Primordial bool    // suppress vegetation cover

	ContinentScale  float64 // noise cycles around the equator
	CoastalScale    float64
	DetailScale     float64
	MountainScale   float64
	OceanFloorScale float64
	WarpScale       float64

	MajorContinents IntRange
	MinorLandmasses IntRange
	MidOceanRidges  IntRange

	Weights  LayerWeights
	Features FeatureCounts

	// PostProcessBudget caps the fraction of tiles decorative carving may
	// flip from water to land, and separately from land to water.
	PostProcessBudget float64
}

// DefaultConfig returns a reasonable starting configuration.
func DefaultConfig() Config {
	return Config{
		Width:      256,
		Height:     128,
		OceanRatio: 0.70,

		ContinentScale:  2,
		CoastalScale:    6,
		DetailScale:     14,
		MountainScale:   3,
		OceanFloorScale: 5,
		WarpScale:       4,

		MajorContinents: IntRange{Min: 5, Max: 7},
		MinorLandmasses: IntRange{Min: 8, Max: 12},
		MidOceanRidges:  IntRange{Min: 2, Max: 3},

		Weights: LayerWeights{
			Continents:  0.45,
			Latitude:    0.12,
			Continental: 0.18,
			Coastal:     0.10,
			Detail:      0.04,
			Mountains:   0.15,
			OceanFloor:  0.06,
		},

		Features: FeatureCounts{
			VolcanicArcs: IntRange{Min: 1, Max: 3},
			Archipelagos: IntRange{Min: 2, Max: 4},
			ShelfIslands: IntRange{Min: 4, Max: 10},
			Seamounts:    IntRange{Min: 3, Max: 6},
			Atolls:       IntRange{Min: 2, Max: 5},
			Bays:         IntRange{Min: 3, Max: 8},
			Peninsulas:   IntRange{Min: 3, Max: 6},
			InlandSeas:   IntRange{Min: 1, Max: 2},
		},

		PostProcessBudget: 0.03,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 64
	cfg.Height = 32
	cfg.Seed = 42
	return cfg
}

func (c Config) oceanRatio() float64 {
	switch {
	case c.OceanRatio < 0.01:
		return 0.01
	case c.OceanRatio > 0.99:
		return 0.99
	}
	return c.OceanRatio
}
