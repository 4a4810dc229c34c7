package world

// Biome is a derived classification of a tile. It is recomputed from
// elevation, temperature and humidity and never read back as input.
type Biome uint8

const (
	BiomeTrench    Biome = iota // Below -6000 m
	BiomeDeepOcean              // Abyssal plains
	BiomeOcean                  // Continental slope
	BiomeShelf                  // Continental shelf, above -200 m
	BiomeReef                   // Warm shallow shelf
	BiomeIceSheet
	BiomeTundra
	BiomeTaiga
	BiomeTemperateForest
	BiomeGrassland
	BiomeShrubland
	BiomeDesert
	BiomeSavanna
	BiomeRainforest
	BiomeWetland
	BiomeAlpine
	BiomeBareRock
)

var biomeNames = [...]string{
	BiomeTrench:          "Trench",
	BiomeDeepOcean:       "Deep Ocean",
	BiomeOcean:           "Ocean",
	BiomeShelf:           "Shelf",
	BiomeReef:            "Reef",
	BiomeIceSheet:        "Ice Sheet",
	BiomeTundra:          "Tundra",
	BiomeTaiga:           "Taiga",
	BiomeTemperateForest: "Temperate Forest",
	BiomeGrassland:       "Grassland",
	BiomeShrubland:       "Shrubland",
	BiomeDesert:          "Desert",
	BiomeSavanna:         "Savanna",
	BiomeRainforest:      "Rainforest",
	BiomeWetland:         "Wetland",
	BiomeAlpine:          "Alpine",
	BiomeBareRock:        "Bare Rock",
}

// String returns a human-readable name for a biome.
func (b Biome) String() string {
	if int(b) < len(biomeNames) {
		return biomeNames[b]
	}
	return "Unknown"
}

// IsWater reports whether the biome is a water biome.
func (b Biome) IsWater() bool {
	return b <= BiomeReef
}

// IsVegetated reports whether the biome carries vegetation cover.
func (b Biome) IsVegetated() bool {
	switch b {
	case BiomeTaiga, BiomeTemperateForest, BiomeGrassland, BiomeShrubland,
		BiomeSavanna, BiomeRainforest, BiomeWetland, BiomeTundra:
		return true
	}
	return false
}
