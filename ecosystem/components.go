package ecosystem

import "github.com/pthm-cable/habitat/dispersal"

// ECS components for species entities. Static species data stays in the
// registry; entities carry the state that changes turn to turn.

// Identity links an entity to its registry entry.
type Identity struct {
	SpeciesID int
}

// Population is the current size and mortality of a species.
type Population struct {
	Size      float64
	DeathRate float64
}

// Range is the set of occupied tiles with their shares.
type Range struct {
	Cells []dispersal.Cell
}

// Status records the last dispersal decision.
type Status struct {
	Mode      dispersal.Mode
	Dispersed bool
	Targets   int
	LastTurn  int
	Founded   bool // placed on its best tile by the driver
}
