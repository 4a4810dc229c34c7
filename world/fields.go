package world

// Fields is a bulk, read-only export of the grid: one flat array per field
// in tile-id order, for map rendering.
type Fields struct {
	Width  int
	Height int

	Elevation   []float64
	Temperature []float64
	Humidity    []float64
	Salinity    []float64
	Resources   []float64
	Biome       []Biome
	LandRegion  []int32
	WaterRegion []int32
	Lake        []bool
}

// Fields copies every exported field out of the grid.
func (w *World) Fields() Fields {
	n := len(w.Tiles)
	f := Fields{
		Width:       w.Width,
		Height:      w.Height,
		Elevation:   make([]float64, n),
		Temperature: make([]float64, n),
		Humidity:    make([]float64, n),
		Salinity:    make([]float64, n),
		Resources:   make([]float64, n),
		Biome:       make([]Biome, n),
		LandRegion:  make([]int32, n),
		WaterRegion: make([]int32, n),
		Lake:        make([]bool, n),
	}
	for i := range w.Tiles {
		t := &w.Tiles[i]
		f.Elevation[i] = t.Elevation
		f.Temperature[i] = t.Temperature
		f.Humidity[i] = t.Humidity
		f.Salinity[i] = t.Salinity
		f.Resources[i] = t.Resources
		f.Biome[i] = t.Biome
		f.LandRegion[i] = t.LandRegion
		f.WaterRegion[i] = t.WaterRegion
		f.Lake[i] = t.IsLake
	}
	return f
}
