package species

import "math"

// Traits is the optional trait block of a species. A nil field takes the
// documented default when the species is resolved.
type Traits struct {
	OptimalTemperature   *float64 `yaml:"optimal_temperature,omitempty"`   // °C, default 15
	TemperatureTolerance *float64 `yaml:"temperature_tolerance,omitempty"` // °C, default 10
	OptimalHumidity      *float64 `yaml:"optimal_humidity,omitempty"`      // default 0.5
	HumidityTolerance    *float64 `yaml:"humidity_tolerance,omitempty"`    // default 0.25
	OptimalElevation     *float64 `yaml:"optimal_elevation,omitempty"`     // m, default by habitat
	ElevationTolerance   *float64 `yaml:"elevation_tolerance,omitempty"`   // m, default 1500
	OptimalSalinity      *float64 `yaml:"optimal_salinity,omitempty"`      // ‰, default by habitat
	SalinityTolerance    *float64 `yaml:"salinity_tolerance,omitempty"`    // ‰, default 8
	Aquatic              *float64 `yaml:"aquatic,omitempty"`               // 0..1, default by habitat
	BodyMass             *float64 `yaml:"body_mass,omitempty"`             // kg, default 1
	GenerationTime       *float64 `yaml:"generation_time,omitempty"`       // years, default 1
	ResourceNeed         *float64 `yaml:"resource_need,omitempty"`         // default 100
	MovementRange        *int     `yaml:"movement_range,omitempty"`        // tiles, default by mobility
}

// Trait defaults.
const (
	DefaultOptimalTemperature   = 15.0
	DefaultTemperatureTolerance = 10.0
	DefaultOptimalHumidity      = 0.5
	DefaultHumidityTolerance    = 0.25
	DefaultElevationTolerance   = 1500.0
	DefaultSalinityTolerance    = 8.0
	DefaultBodyMass             = 1.0
	DefaultGenerationTime       = 1.0
	DefaultResourceNeed         = 100.0

	// minTolerance keeps Gaussian matches finite for zero tolerances.
	minTolerance = 1e-3
)

// habitatDefaults are the elevation (m) and salinity (‰) optima per habitat.
var habitatDefaults = [...]struct{ elevation, salinity float64 }{
	Terrestrial:  {300, 0},
	Marine:       {-200, 35},
	Freshwater:   {0, 0.5},
	Coastal:      {0, 30},
	Amphibious:   {0, 0.5},
	DeepWater:    {-3000, 35},
	Aerial:       {500, 0},
	Hydrothermal: {-2500, 35},
}

// Profile is a fully resolved trait set. Every field has a value.
type Profile struct {
	OptimalTemperature   float64
	TemperatureTolerance float64
	OptimalHumidity      float64
	HumidityTolerance    float64
	OptimalElevation     float64
	ElevationTolerance   float64
	OptimalSalinity      float64
	SalinityTolerance    float64
	Aquatic              float64
	BodyMass             float64
	GenerationTime       float64
	ResourceNeed         float64
	MovementRange        int
	Medium               Medium
}

// Resolve applies defaults to t for the given habitat and mobility. The
// habitat tag decides the medium; an explicit aquatic scalar is pulled into
// the band that medium allows.
func Resolve(t Traits, h Habitat, m Mobility) Profile {
	hd := habitatDefaults[Terrestrial]
	if int(h) < len(habitatDefaults) {
		hd = habitatDefaults[h]
	}
	medium := h.Medium()

	p := Profile{
		OptimalTemperature:   orDefault(t.OptimalTemperature, DefaultOptimalTemperature),
		TemperatureTolerance: tolerance(t.TemperatureTolerance, DefaultTemperatureTolerance),
		OptimalHumidity:      clamp(orDefault(t.OptimalHumidity, DefaultOptimalHumidity), 0, 1),
		HumidityTolerance:    tolerance(t.HumidityTolerance, DefaultHumidityTolerance),
		OptimalElevation:     orDefault(t.OptimalElevation, hd.elevation),
		ElevationTolerance:   tolerance(t.ElevationTolerance, DefaultElevationTolerance),
		OptimalSalinity:      math.Max(0, orDefault(t.OptimalSalinity, hd.salinity)),
		SalinityTolerance:    tolerance(t.SalinityTolerance, DefaultSalinityTolerance),
		Aquatic:              reconcileAquatic(t.Aquatic, medium),
		BodyMass:             math.Max(orDefault(t.BodyMass, DefaultBodyMass), 1e-9),
		GenerationTime:       math.Max(orDefault(t.GenerationTime, DefaultGenerationTime), 1e-6),
		ResourceNeed:         math.Max(orDefault(t.ResourceNeed, DefaultResourceNeed), 1+1e-9),
		MovementRange:        m.Range(),
		Medium:               medium,
	}
	if t.MovementRange != nil && *t.MovementRange > 0 {
		p.MovementRange = *t.MovementRange
	}
	return p
}

func reconcileAquatic(v *float64, medium Medium) float64 {
	switch medium {
	case MediumAquatic:
		if v == nil {
			return 1
		}
		return clamp(*v, 0.8, 1)
	case MediumTerrestrial:
		if v == nil {
			return 0
		}
		return clamp(*v, 0, 0.2)
	}
	if v == nil {
		return 0.5
	}
	return clamp(*v, 0.3, 0.7)
}

func orDefault(v *float64, def float64) float64 {
	if v == nil || math.IsNaN(*v) {
		return def
	}
	return *v
}

func tolerance(v *float64, def float64) float64 {
	return math.Max(orDefault(v, def), minTolerance)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Float returns a pointer to v, for filling Traits literals.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for filling Traits literals.
func Int(v int) *int { return &v }
