package dispersal

import (
	"fmt"
	"math"

	"github.com/pthm-cable/habitat/species"
)

// Mode is the dispersal behavior selected for a species in a turn.
type Mode uint8

const (
	Passive Mode = iota
	PressureDriven
	Overflow
	PreyTracking
)

func (m Mode) String() string {
	switch m {
	case Passive:
		return "passive"
	case PressureDriven:
		return "pressure"
	case Overflow:
		return "overflow"
	case PreyTracking:
		return "prey_tracking"
	}
	return fmt.Sprintf("mode(%d)", m)
}

// Blend weights a candidate's suitability, proximity and prey density.
type Blend struct {
	Suitability float64 `yaml:"suitability"`
	Distance    float64 `yaml:"distance"`
	Prey        float64 `yaml:"prey"`
}

// PressureParams drive escape from high mortality.
type PressureParams struct {
	DeathRateThreshold float64 `yaml:"death_rate_threshold"`
	RangeMultiplier    float64 `yaml:"range_multiplier"`
	MinImprovement     float64 `yaml:"min_improvement"` // over the current mean suitability
	DispersalRatio     float64 `yaml:"dispersal_ratio"`
	TopK               int     `yaml:"top_k"`
	Blend              Blend   `yaml:"blend"`
}

// PreyTrackingParams drive consumers toward prey.
type PreyTrackingParams struct {
	MinTrophicLevel  int     `yaml:"min_trophic_level"`
	DensityThreshold float64 `yaml:"density_threshold"`
	DispersalRatio   float64 `yaml:"dispersal_ratio"`
	TopK             int     `yaml:"top_k"`
	Blend            Blend   `yaml:"blend"`
}

// OverflowParams drive crowding-driven spread.
type OverflowParams struct {
	PopulationThreshold float64 `yaml:"population_threshold"`
	MaxTiles            int     `yaml:"max_tiles"`
	DispersalRatio      float64 `yaml:"dispersal_ratio"`
	TopK                int     `yaml:"top_k"`
	Blend               Blend   `yaml:"blend"`
}

// PassiveParams drive the baseline background spread.
type PassiveParams struct {
	BaseProbability float64 `yaml:"base_probability"`
	DispersalRatio  float64 `yaml:"dispersal_ratio"`
	TopK            int     `yaml:"top_k"`
	Blend           Blend   `yaml:"blend"`
}

// Params configures the engine.
type Params struct {
	Pressure     PressureParams     `yaml:"pressure"`
	PreyTracking PreyTrackingParams `yaml:"prey_tracking"`
	Overflow     OverflowParams     `yaml:"overflow"`
	Passive      PassiveParams      `yaml:"passive"`

	// ViabilityFloor is the minimum suitability and target score a tile
	// needs to be a target.
	ViabilityFloor float64 `yaml:"viability_floor"`
	// RetentionFloor is the minimum fraction kept on origin tiles.
	RetentionFloor float64 `yaml:"retention_floor"`
	// YearsPerTurn scales passive spread by generations elapsed per turn.
	YearsPerTurn float64 `yaml:"years_per_turn"`

	// JumpProbability is the per-species per-turn chance of one long-range
	// target that ignores region boundaries.
	JumpProbability     float64 `yaml:"jump_probability"`
	JumpRangeMultiplier float64 `yaml:"jump_range_multiplier"`

	Seed int64 `yaml:"-"`
}

// DefaultParams returns the standard parameters. Jumps are disabled.
func DefaultParams() Params {
	return Params{
		Pressure: PressureParams{
			DeathRateThreshold: 0.3,
			RangeMultiplier:    2,
			MinImprovement:     0.05,
			DispersalRatio:     0.7,
			TopK:               6,
			Blend:              Blend{Suitability: 0.8, Distance: 0.2},
		},
		PreyTracking: PreyTrackingParams{
			MinTrophicLevel:  2,
			DensityThreshold: 0.2,
			DispersalRatio:   0.4,
			TopK:             4,
			Blend:            Blend{Suitability: 0.3, Distance: 0.2, Prey: 0.5},
		},
		Overflow: OverflowParams{
			PopulationThreshold: 1000,
			MaxTiles:            3,
			DispersalRatio:      0.35,
			TopK:                8,
			Blend:               Blend{Suitability: 0.35, Distance: 0.65},
		},
		Passive: PassiveParams{
			BaseProbability: 0.3,
			DispersalRatio:  0.15,
			TopK:            3,
			Blend:           Blend{Suitability: 0.5, Distance: 0.5},
		},
		ViabilityFloor:      0.05,
		RetentionFloor:      0.2,
		YearsPerTurn:        1,
		JumpProbability:     0,
		JumpRangeMultiplier: 3,
	}
}

// policy is the flattened view of one mode's parameters.
type policy struct {
	ratio          float64
	topK           int
	rangeMult      float64
	minImprovement float64
	blend          Blend
}

func (p Params) policy(m Mode) policy {
	var pol policy
	switch m {
	case PressureDriven:
		pol = policy{
			ratio:          p.Pressure.DispersalRatio,
			topK:           p.Pressure.TopK,
			rangeMult:      p.Pressure.RangeMultiplier,
			minImprovement: p.Pressure.MinImprovement,
			blend:          p.Pressure.Blend,
		}
	case PreyTracking:
		pol = policy{ratio: p.PreyTracking.DispersalRatio, topK: p.PreyTracking.TopK, rangeMult: 1, blend: p.PreyTracking.Blend}
	case Overflow:
		pol = policy{ratio: p.Overflow.DispersalRatio, topK: p.Overflow.TopK, rangeMult: 1, blend: p.Overflow.Blend}
	case Passive:
		pol = policy{ratio: p.Passive.DispersalRatio, topK: p.Passive.TopK, rangeMult: 1, blend: p.Passive.Blend}
	default:
		panic(fmt.Sprintf("dispersal: unhandled mode %v", m))
	}
	pol.ratio = math.Max(0, math.Min(pol.ratio, 1-p.RetentionFloor))
	if pol.rangeMult <= 0 {
		pol.rangeMult = 1
	}
	return pol
}

// selectMode picks the first matching mode in priority order.
// preyDensity is the share-weighted prey density on occupied tiles, or NaN
// when no prey field was supplied.
func (p Params) selectMode(s *species.Species, tiles int, preyDensity float64) Mode {
	switch {
	case s.DeathRate > p.Pressure.DeathRateThreshold:
		return PressureDriven
	case s.TrophicLevel >= p.PreyTracking.MinTrophicLevel && !math.IsNaN(preyDensity) &&
		preyDensity < p.PreyTracking.DensityThreshold:
		return PreyTracking
	case s.Population > p.Overflow.PopulationThreshold && tiles <= p.Overflow.MaxTiles:
		return Overflow
	}
	return Passive
}

// passiveProbability is the chance a passive species spreads this turn.
// Small bodies and many generations per turn both raise it.
func (p Params) passiveProbability(prof species.Profile) float64 {
	size := 1 / (1 + 0.5*math.Log10(1+prof.BodyMass))
	years := p.YearsPerTurn
	if years <= 0 {
		years = 1
	}
	generations := years / prof.GenerationTime
	tempo := 1 + math.Log10(1+generations)
	return math.Max(0, math.Min(1, p.Passive.BaseProbability*size*tempo))
}
