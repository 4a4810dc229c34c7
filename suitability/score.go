package suitability

import (
	"errors"
	"math"

	"github.com/pthm-cable/habitat/species"
)

// Weights controls the blend of match terms. The score is the weighted mean
// of the terms, so only the ratios matter.
type Weights struct {
	Temperature float64 `yaml:"temperature"`
	Humidity    float64 `yaml:"humidity"`
	Resource    float64 `yaml:"resource"`
	Habitat     float64 `yaml:"habitat"`

	// PreySaturation is the prey density at which a consumer's food term
	// reaches 1.
	PreySaturation float64 `yaml:"prey_saturation"`
}

// DefaultWeights returns the standard blend.
func DefaultWeights() Weights {
	return Weights{
		Temperature:    0.30,
		Humidity:       0.15,
		Resource:       0.25,
		Habitat:        0.30,
		PreySaturation: 0.25,
	}
}

func (w Weights) total() float64 {
	return w.Temperature + w.Humidity + w.Resource + w.Habitat
}

func gaussian(v, opt, tol float64) float64 {
	d := (v - opt) / tol
	return math.Exp(-0.5 * d * d)
}

// ErrIncompatibleMedium is returned when a species is placed on a tile its
// medium forbids.
var ErrIncompatibleMedium = errors.New("tile incompatible with species medium")

// Incompatible reports the hard medium constraint: strictly aquatic species
// on land and strictly terrestrial species on any water.
func Incompatible(medium species.Medium, water bool) bool {
	switch medium {
	case species.MediumAquatic:
		return !water
	case species.MediumTerrestrial:
		return water
	}
	return false
}

// scorePair compares one species row against one tile row. prey is the
// consumer's prey density at the tile, or NaN when none was supplied.
func (w Weights) scorePair(s, t []float64, prey float64) float64 {
	water := t[tWater] == 1
	if Incompatible(species.Medium(s[fMedium]), water) {
		return 0
	}

	temp := gaussian(t[tTemp], s[fOptTemp], s[fTempTol])

	// Air humidity matters less the more aquatic the species is.
	hum := s[fAquatic] + (1-s[fAquatic])*gaussian(t[tHum], s[fOptHum], s[fHumTol])

	var food float64
	if s[fProducer] == 1 || math.IsNaN(prey) {
		food = math.Log(t[tResources]) / math.Log(s[fNeed])
	} else {
		sat := w.PreySaturation
		if sat <= 0 {
			sat = 1
		}
		food = prey / sat
	}
	food = clamp01(food)

	habitat := (gaussian(t[tElev], s[fOptElev], s[fElevTol]) +
		gaussian(t[tSal], s[fOptSal], s[fSalTol]) +
		(1 - math.Abs(s[fAquatic]-t[tWater]))) / 3

	total := w.total()
	if total <= 0 {
		return 0
	}
	return clamp01((w.Temperature*temp + w.Humidity*hum + w.Resource*food + w.Habitat*habitat) / total)
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
