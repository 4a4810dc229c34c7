package suitability

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pthm-cable/habitat/species"
	"github.com/pthm-cable/habitat/world"
)

// Species feature columns.
const (
	fOptTemp = iota
	fTempTol
	fOptHum
	fHumTol
	fOptElev
	fElevTol
	fOptSal
	fSalTol
	fAquatic
	fNeed
	fProducer
	fMedium
	SpeciesFeatureWidth
)

// Tile feature columns.
const (
	tTemp = iota
	tHum
	tElev
	tSal
	tWater
	tResources
	TileFeatureWidth
)

// SpeciesFeatures returns one row per species, in slice order.
func SpeciesFeatures(list []*species.Species) *mat.Dense {
	if len(list) == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(len(list), SpeciesFeatureWidth, nil)
	for i, s := range list {
		p := s.Profile()
		producer := 0.0
		if s.IsProducer() {
			producer = 1
		}
		m.SetRow(i, []float64{
			fOptTemp:  p.OptimalTemperature,
			fTempTol:  p.TemperatureTolerance,
			fOptHum:   p.OptimalHumidity,
			fHumTol:   p.HumidityTolerance,
			fOptElev:  p.OptimalElevation,
			fElevTol:  p.ElevationTolerance,
			fOptSal:   p.OptimalSalinity,
			fSalTol:   p.SalinityTolerance,
			fAquatic:  p.Aquatic,
			fNeed:     p.ResourceNeed,
			fProducer: producer,
			fMedium:   float64(p.Medium),
		})
	}
	return m
}

// TileFeatures returns one row per tile, in id order.
func TileFeatures(w *world.World) *mat.Dense {
	if len(w.Tiles) == 0 {
		return &mat.Dense{}
	}
	m := mat.NewDense(len(w.Tiles), TileFeatureWidth, nil)
	for i := range w.Tiles {
		t := &w.Tiles[i]
		water := 0.0
		if !t.IsLand() {
			water = 1
		}
		m.SetRow(i, []float64{
			tTemp:      t.Temperature,
			tHum:       t.Humidity,
			tElev:      t.Elevation,
			tSal:       t.Salinity,
			tWater:     water,
			tResources: t.Resources,
		})
	}
	return m
}
