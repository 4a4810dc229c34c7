package species

import "fmt"

// Habitat is the habitat-type tag supplied by the species registry.
type Habitat uint8

const (
	Terrestrial Habitat = iota
	Marine
	Freshwater
	Coastal
	Amphibious
	DeepWater
	Aerial
	Hydrothermal
)

var habitatNames = [...]string{
	Terrestrial:  "terrestrial",
	Marine:       "marine",
	Freshwater:   "freshwater",
	Coastal:      "coastal",
	Amphibious:   "amphibious",
	DeepWater:    "deep-water",
	Aerial:       "aerial",
	Hydrothermal: "hydrothermal",
}

func (h Habitat) String() string {
	if int(h) < len(habitatNames) {
		return habitatNames[h]
	}
	return fmt.Sprintf("habitat(%d)", h)
}

// MarshalText implements encoding.TextMarshaler.
func (h Habitat) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Habitat) UnmarshalText(b []byte) error {
	for i, name := range habitatNames {
		if name == string(b) {
			*h = Habitat(i)
			return nil
		}
	}
	return fmt.Errorf("unknown habitat %q", b)
}

// Medium is the physical medium a species can live in. It decides the hard
// suitability constraint.
type Medium uint8

const (
	MediumTerrestrial Medium = iota // strictly terrestrial
	MediumAquatic                   // strictly aquatic
	MediumAmphibious                // either
)

func (m Medium) String() string {
	switch m {
	case MediumTerrestrial:
		return "terrestrial"
	case MediumAquatic:
		return "aquatic"
	case MediumAmphibious:
		return "amphibious"
	}
	return fmt.Sprintf("medium(%d)", m)
}

// Medium returns the medium implied by the habitat tag.
func (h Habitat) Medium() Medium {
	switch h {
	case Marine, Freshwater, DeepWater, Hydrothermal:
		return MediumAquatic
	case Coastal, Amphibious, Aerial:
		return MediumAmphibious
	}
	return MediumTerrestrial
}

// Mobility is the movement class of a species.
type Mobility uint8

const (
	Sessile Mobility = iota
	Crawling
	Running
	Swimming
	Flying
)

var mobilityNames = [...]string{
	Sessile:  "sessile",
	Crawling: "crawling",
	Running:  "running",
	Swimming: "swimming",
	Flying:   "flying",
}

// Movement ranges in tiles per turn.
var mobilityRanges = [...]int{
	Sessile:  1,
	Crawling: 2,
	Running:  4,
	Swimming: 5,
	Flying:   8,
}

func (m Mobility) String() string {
	if int(m) < len(mobilityNames) {
		return mobilityNames[m]
	}
	return fmt.Sprintf("mobility(%d)", m)
}

// Range returns the default movement range of the class in tiles.
func (m Mobility) Range() int {
	if int(m) < len(mobilityRanges) {
		return mobilityRanges[m]
	}
	return 1
}

// IgnoresRegions reports whether the class crosses region boundaries.
func (m Mobility) IgnoresRegions() bool {
	return m == Flying
}

// MarshalText implements encoding.TextMarshaler.
func (m Mobility) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mobility) UnmarshalText(b []byte) error {
	for i, name := range mobilityNames {
		if name == string(b) {
			*m = Mobility(i)
			return nil
		}
	}
	return fmt.Errorf("unknown mobility %q", b)
}
