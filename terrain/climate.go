package terrain

import (
	"math"

	"github.com/pthm-cable/habitat/parallel"
	"github.com/pthm-cable/habitat/world"
)

// Climate constants.
const (
	lapseRate         = 6.5  // °C per km of elevation
	oceanInertia      = 0.8  // ocean departures from the mean are damped
	landAmplification = 1.1  // continental interiors swing further
	meanSurfaceTemp   = 14.0 // pivot for inertia and amplification
	deepWaterTemp     = 2.0
	seawaterFreezing  = -2.0

	coastalHumidity  = 0.3 // bonus at the coast, decays with distance
	coastalDecay     = 6.0 // tiles
	monsoonHumidity  = 0.15
	monsoonReach     = 10 // tiles from the coast
	monsoonLatitude  = 30.0
	oceanHumidityAdd = 0.4
)

// temperatureAt returns surface temperature for a tile at normalized
// latitude lat and column x.
func temperatureAt(lat, elevation float64, x, width int) float64 {
	a := math.Abs(lat)
	c := math.Cos(a * math.Pi / 2)
	base := 30*math.Pow(c, 1.2) - 18*math.Pow(a, 3)

	if elevation >= 0 {
		t := base - lapseRate*elevation/1000
		return meanSurfaceTemp + (t-meanSurfaceTemp)*landAmplification
	}

	// Alternating warm and cold boundary currents, strongest at the equator.
	current := 3 * math.Sin(4*math.Pi*float64(x)/float64(width)) * c
	t := meanSurfaceTemp + (base+current-meanSurfaceTemp)*oceanInertia

	k := 0.5 * math.Min(-elevation/6000, 1)
	t = t*(1-k) + deepWaterTemp*k
	return math.Max(t, seawaterFreezing)
}

// humidityAt returns relative humidity in [0, 1]. oceanDist is the step
// distance to the nearest water tile, or world.Unreached.
func humidityAt(lat float64, land bool, oceanDist int) float64 {
	latDeg := math.Abs(lat) * 90
	h := 0.5 + 0.35*math.Cos(6*latDeg*math.Pi/180)
	if !land {
		return clamp01(h + oceanHumidityAdd)
	}
	if oceanDist >= 0 {
		h += coastalHumidity * math.Exp(-float64(oceanDist)/coastalDecay)
		if latDeg < monsoonLatitude && oceanDist <= monsoonReach {
			h += monsoonHumidity * (1 - latDeg/monsoonLatitude)
		}
	}
	return clamp01(h)
}

// salinityAt returns salinity in ‰. Land is 0. Lakes are corrected once
// connectivity is known.
func salinityAt(lat float64, land bool) float64 {
	if land {
		return 0
	}
	latDeg := math.Abs(lat) * 90
	s := 35 + 2*math.Exp(-math.Pow((latDeg-25)/12, 2))
	s -= 3 * math.Max(0, (latDeg-60)/30)
	return s
}

// resourcesAt returns a productivity index in [1, 1000].
func resourcesAt(lat, temperature, elevation, humidity float64) float64 {
	tempFit := math.Exp(-math.Pow((temperature-22)/15, 2))

	var elevFit, humFit float64
	if elevation >= 0 {
		elevFit = math.Exp(-elevation / 2500)
		humFit = 0.2 + 0.8*humidity
	} else {
		depth := -elevation
		elevFit = 1
		if depth > 200 {
			elevFit = math.Max(0.05, math.Exp(-(depth-200)/2000))
		}
		humFit = 1
	}
	latFactor := 0.6 + 0.4*math.Cos(math.Abs(lat)*math.Pi/2)

	return clamp(1+999*tempFit*elevFit*humFit*latFactor, 1, 1000)
}

// biomeFor classifies a tile. In primordial mode land is restricted to ice,
// desert and bare rock.
func biomeFor(elevation, temperature, humidity float64, primordial bool) world.Biome {
	if elevation < 0 {
		switch {
		case elevation < -6000:
			return world.BiomeTrench
		case elevation < -2000:
			return world.BiomeDeepOcean
		case elevation < -200:
			return world.BiomeOcean
		case !primordial && temperature >= 20 && elevation > -50:
			return world.BiomeReef
		}
		return world.BiomeShelf
	}

	if primordial {
		switch {
		case temperature < 0:
			return world.BiomeIceSheet
		case humidity < 0.3:
			return world.BiomeDesert
		}
		return world.BiomeBareRock
	}

	switch {
	case temperature < -10:
		return world.BiomeIceSheet
	case elevation > 3500:
		return world.BiomeBareRock
	case elevation > 2200:
		return world.BiomeAlpine
	case temperature < 0:
		return world.BiomeTundra
	case temperature < 6:
		if humidity > 0.35 {
			return world.BiomeTaiga
		}
		return world.BiomeTundra
	case humidity < 0.2:
		return world.BiomeDesert
	case temperature < 18:
		switch {
		case humidity < 0.4:
			return world.BiomeGrassland
		case humidity > 0.8 && elevation < 300:
			return world.BiomeWetland
		}
		return world.BiomeTemperateForest
	}

	switch {
	case humidity < 0.35:
		return world.BiomeShrubland
	case humidity < 0.6:
		return world.BiomeSavanna
	case humidity > 0.85 && elevation < 200:
		return world.BiomeWetland
	}
	return world.BiomeRainforest
}

// applyClimate derives every physical field of tile id from its elevation.
func applyClimate(w *world.World, id, oceanDist int) {
	t := &w.Tiles[id]
	lat := w.Latitude(t.Y)
	land := t.IsLand()

	t.Temperature = temperatureAt(lat, t.Elevation, t.X, w.Width)
	t.Humidity = humidityAt(lat, land, oceanDist)
	t.Salinity = salinityAt(lat, land)
	t.Resources = resourcesAt(lat, t.Temperature, t.Elevation, t.Humidity)
	t.Biome = biomeFor(t.Elevation, t.Temperature, t.Humidity, w.Primordial)
}

// oceanDistances returns the step distance from every tile to the nearest
// water tile.
func oceanDistances(w *world.World) []int {
	sources := make([]int, 0, len(w.Tiles))
	for i := range w.Tiles {
		if !w.Tiles[i].IsLand() {
			sources = append(sources, i)
		}
	}
	return w.DistanceField(sources, -1, nil)
}

// deriveClimate recomputes all derived fields for every tile.
func deriveClimate(w *world.World) {
	dist := oceanDistances(w)
	parallel.For(len(w.Tiles), func(start, end int) {
		for id := start; id < end; id++ {
			applyClimate(w, id, dist[id])
		}
	})
	w.UpdateGlobalTemperature()
}
