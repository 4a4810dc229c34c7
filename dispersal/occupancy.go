package dispersal

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/habitat/species"
	"github.com/pthm-cable/habitat/suitability"
	"github.com/pthm-cable/habitat/world"
)

// ErrInvalidShares is returned when an occupancy has negative shares,
// repeated tiles, or shares summing above 1.
var ErrInvalidShares = errors.New("invalid population shares")

const shareEpsilon = 1e-9

// Cell is one occupied tile of a species.
type Cell struct {
	Tile        int     `csv:"tile_id"`
	Share       float64 `csv:"share"`
	Suitability float64 `csv:"suitability"` // at assignment time
}

// Record is one (species, tile) occupancy row handed to persistence.
type Record struct {
	SpeciesID   int     `csv:"species_id" db:"species_id"`
	TileID      int     `csv:"tile_id" db:"tile_id"`
	Share       float64 `csv:"share" db:"share"`
	Suitability float64 `csv:"suitability" db:"suitability"`
}

// EvenCells spreads a full share evenly over tiles, dropping repeats.
func EvenCells(tiles []int) []Cell {
	seen := make(map[int]bool, len(tiles))
	var cells []Cell
	for _, t := range tiles {
		if seen[t] {
			continue
		}
		seen[t] = true
		cells = append(cells, Cell{Tile: t})
	}
	for i := range cells {
		cells[i].Share = 1 / float64(len(cells))
	}
	sortCells(cells)
	return cells
}

// TotalShare returns the sum of shares.
func TotalShare(cells []Cell) float64 {
	shares := make([]float64, len(cells))
	for i, c := range cells {
		shares[i] = c.Share
	}
	return floats.Sum(shares)
}

// Tiles returns the tile ids of cells.
func Tiles(cells []Cell) []int {
	out := make([]int, len(cells))
	for i, c := range cells {
		out[i] = c.Tile
	}
	return out
}

func validateCells(w *world.World, speciesID int, cells []Cell) error {
	seen := make(map[int]bool, len(cells))
	for _, c := range cells {
		if !w.Contains(c.Tile) {
			return fmt.Errorf("species %d occupies tile %d: %w", speciesID, c.Tile, world.ErrUnknownTile)
		}
		if seen[c.Tile] {
			return fmt.Errorf("species %d lists tile %d twice: %w", speciesID, c.Tile, ErrInvalidShares)
		}
		seen[c.Tile] = true
		if c.Share < 0 {
			return fmt.Errorf("species %d tile %d share %v: %w", speciesID, c.Tile, c.Share, ErrInvalidShares)
		}
	}
	if total := TotalShare(cells); total > 1+shareEpsilon {
		return fmt.Errorf("species %d shares sum to %v: %w", speciesID, total, ErrInvalidShares)
	}
	return nil
}

// checkPlacement rejects cells on tiles the species' medium forbids and cells
// on tiles without a region id.
func checkPlacement(w *world.World, speciesID int, medium species.Medium, cells []Cell) error {
	for _, c := range cells {
		t := &w.Tiles[c.Tile]
		if suitability.Incompatible(medium, !t.IsLand()) {
			return fmt.Errorf("species %d (%s) on tile %d: %w", speciesID, medium, c.Tile, suitability.ErrIncompatibleMedium)
		}
		if t.Region() == 0 {
			return fmt.Errorf("species %d on tile %d: %w", speciesID, c.Tile, world.ErrUnannotated)
		}
	}
	return nil
}

func sortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool { return cells[i].Tile < cells[j].Tile })
}
