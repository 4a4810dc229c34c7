// Package world holds the tile grid: a dense, arena-indexed array of tiles
// on a hex layout that wraps east-west and is bounded north-south.
package world

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownTile is returned when a tile id is not present in the grid.
	ErrUnknownTile = errors.New("unknown tile")
	// ErrUnannotated is returned when a tile carries no region id, as after
	// a reclassification that was not followed by connectivity labeling.
	ErrUnannotated = errors.New("world regions not annotated")
)

// World is the tile grid plus global scalars. Tile identity and the neighbor
// graph never change after New.
type World struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Seed     int64   `json:"seed"`
	SeaLevel float64 `json:"sea_level"` // meters above the generation datum

	// GlobalTemperature is the mean surface temperature over all tiles.
	GlobalTemperature float64 `json:"global_temperature"`
	Primordial        bool    `json:"primordial"`

	Tiles []Tile `json:"tiles"`
}

// New allocates a width×height grid with ids, coordinates and neighbor
// lists. All physical fields are zero.
func New(width, height int, seed int64) *World {
	w := &World{
		Width:  width,
		Height: height,
		Seed:   seed,
		Tiles:  make([]Tile, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			id := y*width + x
			w.Tiles[id] = Tile{
				ID:        id,
				X:         x,
				Y:         y,
				Hex:       OffsetToAxial(x, y),
				Neighbors: w.computeNeighbors(x, y),
			}
		}
	}
	return w
}

func (w *World) computeNeighbors(x, y int) []int {
	out := make([]int, 0, 6)
	for _, d := range oddRowDirections[y&1] {
		ny := y + d[1]
		if ny < 0 || ny >= w.Height {
			continue
		}
		id := ny*w.Width + modInt(x+d[0], w.Width)
		if id == y*w.Width+x || containsInt(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Len returns the number of tiles.
func (w *World) Len() int {
	return len(w.Tiles)
}

// Index returns the tile id at (x, y). x wraps; y out of range returns -1.
func (w *World) Index(x, y int) int {
	if y < 0 || y >= w.Height || w.Width == 0 {
		return -1
	}
	return y*w.Width + modInt(x, w.Width)
}

// Tile returns the tile with the given id.
func (w *World) Tile(id int) (*Tile, error) {
	if id < 0 || id >= len(w.Tiles) {
		return nil, fmt.Errorf("tile %d: %w", id, ErrUnknownTile)
	}
	return &w.Tiles[id], nil
}

// Contains reports whether id is a valid tile id.
func (w *World) Contains(id int) bool {
	return id >= 0 && id < len(w.Tiles)
}

// Latitude returns the normalized latitude of row y in [-1, 1];
// -1 is the north edge, +1 the south edge.
func (w *World) Latitude(y int) float64 {
	if w.Height <= 1 {
		return 0
	}
	return (float64(y)+0.5)/float64(w.Height)*2 - 1
}

// Distance returns the hex distance between two tiles, honoring the
// east-west wrap.
func (w *World) Distance(a, b int) int {
	ha := w.Tiles[a].Hex
	hb := w.Tiles[b].Hex
	best := math.MaxInt
	for _, shift := range [3]int{0, -w.Width, w.Width} {
		d := AxialDistance(ha, HexCoord{Q: hb.Q + shift, R: hb.R})
		if d < best {
			best = d
		}
	}
	return best
}

// Clone returns a deep copy of the world. Neighbor slices are shared since
// they are immutable.
func (w *World) Clone() *World {
	c := *w
	c.Tiles = make([]Tile, len(w.Tiles))
	copy(c.Tiles, w.Tiles)
	return &c
}

// OceanFraction returns the fraction of tiles with elevation below zero.
func (w *World) OceanFraction() float64 {
	if len(w.Tiles) == 0 {
		return 0
	}
	water := 0
	for i := range w.Tiles {
		if !w.Tiles[i].IsLand() {
			water++
		}
	}
	return float64(water) / float64(len(w.Tiles))
}

// UpdateGlobalTemperature recomputes GlobalTemperature from the tiles.
func (w *World) UpdateGlobalTemperature() {
	if len(w.Tiles) == 0 {
		w.GlobalTemperature = 0
		return
	}
	var sum float64
	for i := range w.Tiles {
		sum += w.Tiles[i].Temperature
	}
	w.GlobalTemperature = sum / float64(len(w.Tiles))
}

// BiomeCounts returns a summary of biome distribution.
func (w *World) BiomeCounts() map[Biome]int {
	counts := make(map[Biome]int)
	for i := range w.Tiles {
		counts[w.Tiles[i].Biome]++
	}
	return counts
}

// String returns a summary of the world.
func (w *World) String() string {
	return fmt.Sprintf("World(%dx%d, seed=%d, ocean=%.3f)", w.Width, w.Height, w.Seed, w.OceanFraction())
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
