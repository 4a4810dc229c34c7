package species

import (
	"errors"
	"strings"
	"testing"
)

func TestResolveDefaults(t *testing.T) {
	p := Resolve(Traits{}, Terrestrial, Running)
	if p.OptimalTemperature != DefaultOptimalTemperature {
		t.Errorf("OptimalTemperature = %v, want %v", p.OptimalTemperature, DefaultOptimalTemperature)
	}
	if p.ResourceNeed != DefaultResourceNeed {
		t.Errorf("ResourceNeed = %v, want %v", p.ResourceNeed, DefaultResourceNeed)
	}
	if p.MovementRange != Running.Range() {
		t.Errorf("MovementRange = %d, want %d", p.MovementRange, Running.Range())
	}
	if p.Medium != MediumTerrestrial || p.Aquatic != 0 {
		t.Errorf("medium = %v aquatic = %v, want terrestrial 0", p.Medium, p.Aquatic)
	}
}

func TestResolveOverrides(t *testing.T) {
	p := Resolve(Traits{
		OptimalTemperature:   Float(28),
		TemperatureTolerance: Float(0),
		MovementRange:        Int(3),
	}, Marine, Swimming)

	if p.OptimalTemperature != 28 {
		t.Errorf("OptimalTemperature = %v, want 28", p.OptimalTemperature)
	}
	if p.TemperatureTolerance <= 0 {
		t.Errorf("TemperatureTolerance = %v, want floored above 0", p.TemperatureTolerance)
	}
	if p.MovementRange != 3 {
		t.Errorf("MovementRange = %d, want 3", p.MovementRange)
	}
	if p.OptimalSalinity != 35 {
		t.Errorf("OptimalSalinity = %v, want marine default 35", p.OptimalSalinity)
	}
}

func TestAquaticReconciled(t *testing.T) {
	tests := []struct {
		habitat Habitat
		aquatic *float64
		want    float64
		medium  Medium
	}{
		{Marine, nil, 1, MediumAquatic},
		{Marine, Float(0.1), 0.8, MediumAquatic},
		{Terrestrial, Float(0.9), 0.2, MediumTerrestrial},
		{Amphibious, nil, 0.5, MediumAmphibious},
		{Coastal, Float(1), 0.7, MediumAmphibious},
		{Aerial, nil, 0.5, MediumAmphibious},
		{Hydrothermal, nil, 1, MediumAquatic},
	}
	for _, tt := range tests {
		t.Run(tt.habitat.String(), func(t *testing.T) {
			p := Resolve(Traits{Aquatic: tt.aquatic}, tt.habitat, Crawling)
			if p.Aquatic != tt.want || p.Medium != tt.medium {
				t.Errorf("aquatic = %v medium = %v, want %v %v", p.Aquatic, p.Medium, tt.want, tt.medium)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	if err := r.Add(Species{ID: 2, Name: "b"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(Species{ID: 1, Name: "a"}); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(Species{ID: 1}); !errors.Is(err, ErrDuplicateSpecies) {
		t.Errorf("Add(duplicate) = %v, want ErrDuplicateSpecies", err)
	}
	if _, err := r.Get(9); !errors.Is(err, ErrUnknownSpecies) {
		t.Errorf("Get(9) = %v, want ErrUnknownSpecies", err)
	}

	all := r.All()
	if len(all) != 2 || all[0].ID != 1 || all[1].ID != 2 {
		t.Errorf("All() not sorted by id")
	}

	v := r.Version()
	if err := r.Remove(2); err != nil {
		t.Fatal(err)
	}
	if r.Version() == v {
		t.Error("Remove should bump the version")
	}
	if err := r.Remove(2); !errors.Is(err, ErrUnknownSpecies) {
		t.Errorf("Remove(missing) = %v, want ErrUnknownSpecies", err)
	}
}

func TestDecode(t *testing.T) {
	src := `
- id: 1
  name: kelp
  habitat: marine
  mobility: sessile
  trophic_level: 1
  population: 1000
  traits:
    optimal_temperature: 12
- id: 2
  name: crab
  habitat: coastal
  mobility: crawling
  trophic_level: 2
`
	list, err := Decode(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Habitat != Marine || list[0].Mobility != Sessile {
		t.Errorf("kelp = %v %v", list[0].Habitat, list[0].Mobility)
	}
	if list[0].Traits.OptimalTemperature == nil || *list[0].Traits.OptimalTemperature != 12 {
		t.Error("optimal_temperature not decoded")
	}
	if list[1].Traits.OptimalTemperature != nil {
		t.Error("absent trait should stay nil")
	}

	if _, err := Decode(strings.NewReader("- habitat: lava\n")); err == nil {
		t.Error("unknown habitat should fail")
	}
}
