// Package config provides configuration loading and access for the habitat
// generator and simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/habitat/dispersal"
	"github.com/pthm-cable/habitat/species"
	"github.com/pthm-cable/habitat/suitability"
	"github.com/pthm-cable/habitat/terrain"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all configuration parameters.
type Config struct {
	World       WorldConfig         `yaml:"world"`
	Terrain     TerrainConfig       `yaml:"terrain"`
	Suitability suitability.Weights `yaml:"suitability"`
	Dispersal   dispersal.Params    `yaml:"dispersal"`
	Simulation  SimulationConfig    `yaml:"simulation"`
	Telemetry   TelemetryConfig     `yaml:"telemetry"`
	Store       StoreConfig         `yaml:"store"`
	Species     []species.Species   `yaml:"species"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// WorldConfig holds grid dimensions and the global generation knobs.
type WorldConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	Seed       int64   `yaml:"seed"`        // 0 = derive from wall clock
	OceanRatio float64 `yaml:"ocean_ratio"` // fraction of tiles below sea level
	Primordial bool    `yaml:"primordial"`  // no vegetation cover
	SeaLevel   float64 `yaml:"sea_level"`   // meters; 0 = no reclassification
}

// TerrainConfig holds the layer and feature parameters of the generator.
type TerrainConfig struct {
	ContinentScale  float64 `yaml:"continent_scale"`
	CoastalScale    float64 `yaml:"coastal_scale"`
	DetailScale     float64 `yaml:"detail_scale"`
	MountainScale   float64 `yaml:"mountain_scale"`
	OceanFloorScale float64 `yaml:"ocean_floor_scale"`
	WarpScale       float64 `yaml:"warp_scale"`

	MajorContinents terrain.IntRange `yaml:"major_continents"`
	MinorLandmasses terrain.IntRange `yaml:"minor_landmasses"`
	MidOceanRidges  terrain.IntRange `yaml:"mid_ocean_ridges"`

	Weights           terrain.LayerWeights  `yaml:"weights"`
	Features          terrain.FeatureCounts `yaml:"features"`
	PostProcessBudget float64               `yaml:"post_process_budget"`
}

// SimulationConfig holds turn-driver settings.
type SimulationConfig struct {
	Turns int `yaml:"turns"`
	// AfterReclassify is the number of turns run on the reclassified grid
	// when world.sea_level is nonzero.
	AfterReclassify int `yaml:"after_reclassify"`
}

// TelemetryConfig holds output settings.
type TelemetryConfig struct {
	OutputDir  string `yaml:"output_dir"`  // empty disables CSV output
	PerfWindow int    `yaml:"perf_window"` // turns averaged per perf row
	LogEvery   int    `yaml:"log_every"`   // turns between summary log lines
}

// StoreConfig holds the sqlite store settings.
type StoreConfig struct {
	Path          string `yaml:"path"` // empty disables the store
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	Seed  int64 // World.Seed, or the wall clock when it is 0
	Tiles int   // Width * Height
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only fields present in the file are overwritten. A species list
		// replaces the default list as a whole.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates the configuration and recomputes derived values. Call
// it again after changing fields, for example from command-line flags.
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// Validate reports the first out-of-range setting.
func (c *Config) Validate() error {
	switch {
	case c.World.Width < 2 || c.World.Height < 2:
		return fmt.Errorf("%w: world size %dx%d", ErrInvalid, c.World.Width, c.World.Height)
	case c.World.OceanRatio <= 0 || c.World.OceanRatio >= 1:
		return fmt.Errorf("%w: ocean_ratio %v outside (0, 1)", ErrInvalid, c.World.OceanRatio)
	case c.Terrain.PostProcessBudget < 0 || c.Terrain.PostProcessBudget > 0.5:
		return fmt.Errorf("%w: post_process_budget %v", ErrInvalid, c.Terrain.PostProcessBudget)
	case c.Simulation.Turns < 0 || c.Simulation.AfterReclassify < 0:
		return fmt.Errorf("%w: negative turns", ErrInvalid)
	case c.Dispersal.RetentionFloor < 0 || c.Dispersal.RetentionFloor >= 1:
		return fmt.Errorf("%w: retention_floor %v outside [0, 1)", ErrInvalid, c.Dispersal.RetentionFloor)
	case c.Dispersal.JumpProbability < 0 || c.Dispersal.JumpProbability > 1:
		return fmt.Errorf("%w: jump_probability %v", ErrInvalid, c.Dispersal.JumpProbability)
	}

	seen := make(map[int]bool, len(c.Species))
	for _, s := range c.Species {
		if seen[s.ID] {
			return fmt.Errorf("%w: species id %d: %w", ErrInvalid, s.ID, species.ErrDuplicateSpecies)
		}
		seen[s.ID] = true
		if s.TrophicLevel < 1 {
			return fmt.Errorf("%w: species %d trophic_level %d", ErrInvalid, s.ID, s.TrophicLevel)
		}
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Seed = c.World.Seed
	if c.Derived.Seed == 0 {
		c.Derived.Seed = time.Now().UnixNano()
	}
	c.Derived.Tiles = c.World.Width * c.World.Height

	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 1
	}
	if c.Telemetry.LogEvery < 1 {
		c.Telemetry.LogEvery = 1
	}
}

// ToTerrain returns the generator configuration, seeded with the derived seed.
func (c *Config) ToTerrain() terrain.Config {
	t := c.Terrain
	return terrain.Config{
		Width:             c.World.Width,
		Height:            c.World.Height,
		Seed:              c.Derived.Seed,
		OceanRatio:        c.World.OceanRatio,
		Primordial:        c.World.Primordial,
		ContinentScale:    t.ContinentScale,
		CoastalScale:      t.CoastalScale,
		DetailScale:       t.DetailScale,
		MountainScale:     t.MountainScale,
		OceanFloorScale:   t.OceanFloorScale,
		WarpScale:         t.WarpScale,
		MajorContinents:   t.MajorContinents,
		MinorLandmasses:   t.MinorLandmasses,
		MidOceanRidges:    t.MidOceanRidges,
		Weights:           t.Weights,
		Features:          t.Features,
		PostProcessBudget: t.PostProcessBudget,
	}
}

// ToWeights returns the suitability blend.
func (c *Config) ToWeights() suitability.Weights {
	return c.Suitability
}

// ToDispersal returns the dispersal parameters, seeded from the derived seed.
func (c *Config) ToDispersal() dispersal.Params {
	p := c.Dispersal
	p.Seed = c.Derived.Seed
	return p
}

// Registry builds a species registry from the configured founder list.
func (c *Config) Registry() (*species.Registry, error) {
	reg := species.NewRegistry()
	for _, s := range c.Species {
		if err := reg.Add(s); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
