package world

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// OffsetToAxial converts odd-row offset grid coordinates to axial.
// Odd rows are shifted half a tile east.
func OffsetToAxial(x, y int) HexCoord {
	return HexCoord{Q: x - (y-(y&1))/2, R: y}
}

// AxialDistance returns the hex distance between two coordinates on an
// unwrapped plane.
func AxialDistance(a, b HexCoord) int {
	dq := absInt(a.Q - b.Q)
	dr := absInt(a.R - b.R)
	ds := absInt(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	m := dq
	if dr > m {
		m = dr
	}
	if ds > m {
		m = ds
	}
	return m
}

// Neighbor offsets for odd-row offset layout, indexed by row parity.
var oddRowDirections = [2][6][2]int{
	// Even rows
	{{+1, 0}, {-1, 0}, {0, -1}, {-1, -1}, {0, +1}, {-1, +1}},
	// Odd rows
	{{+1, 0}, {-1, 0}, {+1, -1}, {0, -1}, {+1, +1}, {0, +1}},
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func modInt(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
