package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/habitat/dispersal"
	"github.com/pthm-cable/habitat/species"
	"github.com/pthm-cable/habitat/suitability"
	"github.com/pthm-cable/habitat/terrain"
)

func TestDefaultsMatchPackageDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}

	tc := cfg.ToTerrain()
	want := terrain.DefaultConfig()
	want.Seed = cfg.Derived.Seed
	if tc != want {
		t.Errorf("ToTerrain() = %+v, want %+v", tc, want)
	}

	if got := cfg.ToWeights(); got != suitability.DefaultWeights() {
		t.Errorf("ToWeights() = %+v, want %+v", got, suitability.DefaultWeights())
	}

	dp := cfg.ToDispersal()
	wantDP := dispersal.DefaultParams()
	wantDP.Seed = cfg.Derived.Seed
	if dp != wantDP {
		t.Errorf("ToDispersal() = %+v, want %+v", dp, wantDP)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Derived.Seed == 0 {
		t.Error("seed 0 should derive a nonzero seed")
	}
	if cfg.Derived.Tiles != cfg.World.Width*cfg.World.Height {
		t.Errorf("Derived.Tiles = %d, want %d", cfg.Derived.Tiles, cfg.World.Width*cfg.World.Height)
	}
	if len(cfg.Species) == 0 {
		t.Fatal("expected default founder species")
	}
	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry error: %v", err)
	}
	if reg.Len() != len(cfg.Species) {
		t.Errorf("registry has %d species, want %d", reg.Len(), len(cfg.Species))
	}
}

func TestLoadMergesUserFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	data := []byte(`
world:
  width: 64
  seed: 99
dispersal:
  jump_probability: 0.1
species:
  - id: 10
    name: sea grass
    habitat: marine
    mobility: sessile
    trophic_level: 1
    population: 100
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.World.Width != 64 {
		t.Errorf("Width = %d, want 64", cfg.World.Width)
	}
	if cfg.World.Height != 128 {
		t.Errorf("Height = %d, want default 128", cfg.World.Height)
	}
	if cfg.Derived.Seed != 99 {
		t.Errorf("Derived.Seed = %d, want 99", cfg.Derived.Seed)
	}
	if cfg.ToDispersal().JumpProbability != 0.1 {
		t.Errorf("JumpProbability = %v, want 0.1", cfg.ToDispersal().JumpProbability)
	}
	if cfg.ToDispersal().Passive.TopK != 3 {
		t.Errorf("Passive.TopK = %d, want default 3", cfg.ToDispersal().Passive.TopK)
	}
	if len(cfg.Species) != 1 || cfg.Species[0].Habitat != species.Marine {
		t.Errorf("Species = %+v, want one marine species", cfg.Species)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		invalid bool
	}{
		{"missing file", filepath.Join(dir, "nope.yaml"), false},
		{"bad yaml", write("bad.yaml", "world: [1, 2"), false},
		{"unknown habitat", write("hab.yaml", "species:\n  - id: 1\n    habitat: lava\n    trophic_level: 1\n"), false},
		{"ocean ratio", write("ratio.yaml", "world:\n  ocean_ratio: 1.5\n"), true},
		{"tiny world", write("tiny.yaml", "world:\n  width: 1\n"), true},
		{"duplicate species", write("dup.yaml", "species:\n  - {id: 1, trophic_level: 1}\n  - {id: 1, trophic_level: 2}\n"), true},
		{"trophic level", write("troph.yaml", "species:\n  - {id: 1, trophic_level: 0}\n"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrInvalid); got != tt.invalid {
				t.Errorf("errors.Is(err, ErrInvalid) = %v, want %v (err: %v)", got, tt.invalid, err)
			}
		})
	}
}

func TestDuplicateSpeciesWrapsSentinel(t *testing.T) {
	cfg := Defaults()
	cfg.Species = append(cfg.Species, cfg.Species[0])
	err := cfg.Validate()
	if !errors.Is(err, species.ErrDuplicateSpecies) {
		t.Errorf("Validate() = %v, want ErrDuplicateSpecies", err)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Defaults()
	cfg.World.Seed = 1234
	cfg.World.Primordial = true
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML error: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load written file: %v", err)
	}
	if got.World != cfg.World {
		t.Errorf("World = %+v, want %+v", got.World, cfg.World)
	}
	if len(got.Species) != len(cfg.Species) {
		t.Errorf("species count = %d, want %d", len(got.Species), len(cfg.Species))
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("Cfg() before Init should panic")
		}
	}()
	Cfg()
}

func TestInit(t *testing.T) {
	saved := global
	defer func() { global = saved }()

	if err := Init(""); err != nil {
		t.Fatalf("Init error: %v", err)
	}
	if Cfg().World.Width == 0 {
		t.Error("Cfg() returned zero world width")
	}
}
