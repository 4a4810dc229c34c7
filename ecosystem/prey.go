package ecosystem

import (
	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/habitat/dispersal"
	"github.com/pthm-cable/habitat/species"
	"github.com/pthm-cable/habitat/suitability"
	"github.com/pthm-cable/habitat/world"
)

// PreyProvider supplies prey-density fields for consumer species.
type PreyProvider interface {
	PreyFields(w *world.World, list []*species.Species, occ map[int][]dispersal.Cell) suitability.PreyFields
}

// LowerTrophicDensity is the default provider. A consumer at level L sees
// the population mass of every species at level L-1 on each tile, scaled so
// the densest tile is 1.
type LowerTrophicDensity struct{}

// PreyFields implements PreyProvider.
func (LowerTrophicDensity) PreyFields(w *world.World, list []*species.Species, occ map[int][]dispersal.Cell) suitability.PreyFields {
	byLevel := make(map[int][]float64)
	mass := func(level int) []float64 {
		if f, ok := byLevel[level]; ok {
			return f
		}
		f := make([]float64, len(w.Tiles))
		for _, s := range list {
			if s.TrophicLevel != level || s.Population <= 0 {
				continue
			}
			for _, c := range occ[s.ID] {
				if w.Contains(c.Tile) {
					f[c.Tile] += s.Population * c.Share
				}
			}
		}
		if top := floats.Max(f); top > 0 {
			floats.Scale(1/top, f)
		}
		byLevel[level] = f
		return f
	}

	out := make(suitability.PreyFields)
	if len(w.Tiles) == 0 {
		return out
	}
	for _, s := range list {
		if s.IsProducer() {
			continue
		}
		out[s.ID] = mass(s.TrophicLevel - 1)
	}
	return out
}
