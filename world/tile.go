package world

// Tile is one cell of the world grid.
type Tile struct {
	ID  int      `json:"id"`
	X   int      `json:"x"` // wraps east-west
	Y   int      `json:"y"` // bounded, 0 is the north edge
	Hex HexCoord `json:"hex"`

	Elevation   float64 `json:"elevation"`   // meters, negative is underwater
	Biome       Biome   `json:"biome"`       // derived
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // 0..1
	Salinity    float64 `json:"salinity"`    // ‰
	Resources   float64 `json:"resources"`   // 1..1000

	// Neighbors holds the ids of the hex-adjacent tiles. It is shared between
	// clones and never modified after the world is created.
	Neighbors []int `json:"neighbors"`

	IsLake      bool  `json:"is_lake"`
	LandRegion  int32 `json:"land_region"`  // 0 for water
	WaterRegion int32 `json:"water_region"` // 0 for land
}

// IsLand reports whether the tile is above or at sea level.
func (t *Tile) IsLand() bool {
	return t.Elevation >= 0
}

// IsOpenWater reports whether the tile is water that is not a lake.
func (t *Tile) IsOpenWater() bool {
	return !t.IsLand() && !t.IsLake
}

// RegionKey identifies a connected region across both masks: land regions
// are positive, water regions negative, 0 means unassigned.
type RegionKey int32

// Region returns the tile's region key.
func (t *Tile) Region() RegionKey {
	if t.LandRegion != 0 {
		return RegionKey(t.LandRegion)
	}
	return RegionKey(-t.WaterRegion)
}
