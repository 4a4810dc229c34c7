// Package connectivity partitions the grid into connected land and water
// regions and separates lakes from open ocean.
//
// Regions are 8-connected components on the square grid with the east-west
// wrap. A water region touching the north or south row is ocean; any other
// water region is a lake.
package connectivity

import (
	"log/slog"

	"github.com/pthm-cable/habitat/world"
)

// FreshwaterSalinity is assigned to every lake tile by Annotate, in ‰.
const FreshwaterSalinity = 0.5

// Regions is the labeling of one world. Region ids start at 1; 0 means the
// tile belongs to the other mask.
type Regions struct {
	Land  []int32 // per tile
	Water []int32 // per tile

	// Sizes and lake flags are indexed by region id; index 0 is unused.
	LandSizes  []int
	WaterSizes []int
	Lake       []bool
}

// LandCount returns the number of land regions.
func (r *Regions) LandCount() int { return len(r.LandSizes) - 1 }

// WaterCount returns the number of water regions, lakes included.
func (r *Regions) WaterCount() int { return len(r.WaterSizes) - 1 }

// LakeCount returns the number of water regions classified as lakes.
func (r *Regions) LakeCount() int {
	n := 0
	for _, lake := range r.Lake {
		if lake {
			n++
		}
	}
	return n
}

// IsLake reports whether water region id is a lake.
func (r *Regions) IsLake(id int32) bool {
	return id > 0 && int(id) < len(r.Lake) && r.Lake[id]
}

// LogValue implements slog.LogValuer.
func (r *Regions) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("land_regions", r.LandCount()),
		slog.Int("water_regions", r.WaterCount()),
		slog.Int("lakes", r.LakeCount()),
	)
}

// Classify labels both masks of w. w is not modified.
func Classify(w *world.World) *Regions {
	n := len(w.Tiles)
	r := &Regions{
		Land:       make([]int32, n),
		Water:      make([]int32, n),
		LandSizes:  []int{0},
		WaterSizes: []int{0},
		Lake:       []bool{false},
	}

	queue := make([]int, 0, n)
	for start := range w.Tiles {
		land := w.Tiles[start].IsLand()
		labels := r.Water
		if land {
			labels = r.Land
		}
		if labels[start] != 0 {
			continue
		}

		var id int32
		if land {
			id = int32(len(r.LandSizes))
		} else {
			id = int32(len(r.WaterSizes))
		}

		size, boundary := 0, false
		labels[start] = id
		queue = append(queue[:0], start)
		for head := 0; head < len(queue); head++ {
			cur := queue[head]
			size++
			x, y := cur%w.Width, cur/w.Width
			if y == 0 || y == w.Height-1 {
				boundary = true
			}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nb := w.Index(x+dx, y+dy)
					if nb < 0 || labels[nb] != 0 || w.Tiles[nb].IsLand() != land {
						continue
					}
					labels[nb] = id
					queue = append(queue, nb)
				}
			}
		}

		if land {
			r.LandSizes = append(r.LandSizes, size)
		} else {
			r.WaterSizes = append(r.WaterSizes, size)
			r.Lake = append(r.Lake, !boundary)
		}
	}
	return r
}

// Annotate returns a copy of w with region ids, lake flags and lake salinity
// filled in, along with the labeling used.
func Annotate(w *world.World) (*world.World, *Regions) {
	r := Classify(w)
	out := w.Clone()
	for i := range out.Tiles {
		t := &out.Tiles[i]
		t.LandRegion = r.Land[i]
		t.WaterRegion = r.Water[i]
		t.IsLake = r.IsLake(r.Water[i])
		if t.IsLake {
			t.Salinity = FreshwaterSalinity
		}
	}
	return out, r
}
