package main

import (
	"github.com/pthm-cable/habitat/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of terrain parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Layer weights
			{Name: "w_continents", Path: "terrain.weights.continents", Min: 0.2, Max: 0.7, Default: 0.45},
			{Name: "w_latitude", Path: "terrain.weights.latitude", Min: 0.0, Max: 0.3, Default: 0.12},
			{Name: "w_continental", Path: "terrain.weights.continental", Min: 0.05, Max: 0.4, Default: 0.18},
			{Name: "w_coastal", Path: "terrain.weights.coastal", Min: 0.0, Max: 0.3, Default: 0.10},
			{Name: "w_detail", Path: "terrain.weights.detail", Min: 0.0, Max: 0.15, Default: 0.04},
			{Name: "w_mountains", Path: "terrain.weights.mountains", Min: 0.0, Max: 0.3, Default: 0.15},
			{Name: "w_ocean_floor", Path: "terrain.weights.ocean_floor", Min: 0.0, Max: 0.2, Default: 0.06},
			// Noise scales (cycles around the equator)
			{Name: "continent_scale", Path: "terrain.continent_scale", Min: 1, Max: 5, Default: 2},
			{Name: "coastal_scale", Path: "terrain.coastal_scale", Min: 3, Max: 12, Default: 6},
			{Name: "warp_scale", Path: "terrain.warp_scale", Min: 1, Max: 8, Default: 4},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config. Order must match Specs.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	c := pv.Clamp(values)
	t := &cfg.Terrain

	t.Weights.Continents = c[0]
	t.Weights.Latitude = c[1]
	t.Weights.Continental = c[2]
	t.Weights.Coastal = c[3]
	t.Weights.Detail = c[4]
	t.Weights.Mountains = c[5]
	t.Weights.OceanFloor = c[6]

	t.ContinentScale = c[7]
	t.CoastalScale = c[8]
	t.WarpScale = c[9]
}

// ExtractFromConfig extracts current parameter values from a Config.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	t := cfg.Terrain
	return []float64{
		t.Weights.Continents,
		t.Weights.Latitude,
		t.Weights.Continental,
		t.Weights.Coastal,
		t.Weights.Detail,
		t.Weights.Mountains,
		t.Weights.OceanFloor,
		t.ContinentScale,
		t.CoastalScale,
		t.WarpScale,
	}
}
