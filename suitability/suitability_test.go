package suitability

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/habitat/species"
	"github.com/pthm-cable/habitat/world"
)

// testWorld builds a 6x4 world: the top two rows water, the rest land, with
// varied climate.
func testWorld() *world.World {
	w := world.New(6, 4, 1)
	for i := range w.Tiles {
		t := &w.Tiles[i]
		if t.Y < 2 {
			t.Elevation = -100 - 50*float64(t.X)
			t.Salinity = 35
		} else {
			t.Elevation = 100 * float64(t.X)
		}
		t.Temperature = float64(5 * t.X)
		t.Humidity = float64(t.Y) / 4
		t.Resources = 1 + float64(i)*40
	}
	return w
}

func mustSpecies(s species.Species) *species.Species {
	s.Resolve()
	return &s
}

func TestScoresInUnitRange(t *testing.T) {
	w := testWorld()
	list := []*species.Species{
		mustSpecies(species.Species{ID: 1, Habitat: species.Terrestrial, TrophicLevel: 1}),
		mustSpecies(species.Species{ID: 2, Habitat: species.Marine, TrophicLevel: 2}),
		mustSpecies(species.Species{ID: 3, Habitat: species.Amphibious, TrophicLevel: 3}),
	}
	m, err := NewEngine(DefaultWeights()).Compute(list, w, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range list {
		row, err := m.Row(s.ID)
		if err != nil {
			t.Fatal(err)
		}
		for j, v := range row {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Errorf("species %d tile %d: score %v out of [0,1]", s.ID, j, v)
			}
		}
	}
}

func TestMediumHardZero(t *testing.T) {
	w := testWorld()
	aquatic := mustSpecies(species.Species{ID: 1, Habitat: species.Marine, Traits: species.Traits{Aquatic: species.Float(0)}})
	land := mustSpecies(species.Species{ID: 2, Habitat: species.Terrestrial, Traits: species.Traits{Aquatic: species.Float(1)}})
	amph := mustSpecies(species.Species{ID: 3, Habitat: species.Amphibious})

	w.Tiles[w.Index(2, 1)].IsLake = true

	m, err := NewEngine(DefaultWeights()).Compute([]*species.Species{aquatic, land, amph}, w, nil)
	if err != nil {
		t.Fatal(err)
	}
	for id := range w.Tiles {
		a, _ := m.At(1, id)
		l, _ := m.At(2, id)
		am, _ := m.At(3, id)
		if w.Tiles[id].IsLand() {
			if a != 0 {
				t.Errorf("aquatic on land tile %d = %v, want 0", id, a)
			}
		} else if l != 0 {
			t.Errorf("terrestrial on water tile %d = %v, want 0", id, l)
		}
		if am == 0 {
			t.Errorf("amphibious on tile %d = 0, want > 0", id)
		}
	}
}

func TestIdenticalValuesScoreOne(t *testing.T) {
	tests := []struct {
		name    string
		habitat species.Habitat
		elev    float64
		sal     float64
	}{
		{"terrestrial", species.Terrestrial, 300, 0},
		{"marine", species.Marine, -200, 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := world.New(2, 2, 1)
			tile := &w.Tiles[0]
			tile.Elevation = tt.elev
			tile.Salinity = tt.sal
			tile.Temperature = 21
			tile.Humidity = 0.6
			tile.Resources = 500

			s := mustSpecies(species.Species{
				ID:           1,
				Habitat:      tt.habitat,
				TrophicLevel: 1,
				Traits: species.Traits{
					OptimalTemperature: species.Float(21),
					OptimalHumidity:    species.Float(0.6),
				},
			})
			m, err := NewEngine(DefaultWeights()).Compute([]*species.Species{s}, w, nil)
			if err != nil {
				t.Fatal(err)
			}
			if got, _ := m.At(1, 0); math.Abs(got-1) > 1e-12 {
				t.Errorf("score = %v, want 1", got)
			}
		})
	}
}

func TestConsumerUsesPrey(t *testing.T) {
	w := testWorld()
	s := mustSpecies(species.Species{ID: 5, Habitat: species.Terrestrial, TrophicLevel: 2})
	prey := make([]float64, len(w.Tiles))
	rich := w.Index(3, 3)
	prey[rich] = 1

	e := NewEngine(DefaultWeights())
	with, err := e.Compute([]*species.Species{s}, w, PreyFields{5: prey})
	if err != nil {
		t.Fatal(err)
	}
	poor := w.Index(3, 2)
	a, _ := with.At(5, rich)
	b, _ := with.At(5, poor)
	if a <= b {
		t.Errorf("tile with prey scored %v, without %v", a, b)
	}
}

func TestOrderIndependent(t *testing.T) {
	w := testWorld()
	list := []*species.Species{
		mustSpecies(species.Species{ID: 1, Habitat: species.Terrestrial}),
		mustSpecies(species.Species{ID: 2, Habitat: species.Coastal}),
		mustSpecies(species.Species{ID: 3, Habitat: species.Marine, TrophicLevel: 2}),
		mustSpecies(species.Species{ID: 4, Habitat: species.Freshwater}),
	}
	e := NewEngine(DefaultWeights())
	base, err := e.Compute(list, w, nil)
	if err != nil {
		t.Fatal(err)
	}

	shuffled := append([]*species.Species(nil), list...)
	rand.New(rand.NewSource(3)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	again, err := e.Compute(shuffled, w, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range list {
		for id := range w.Tiles {
			a, _ := base.At(s.ID, id)
			b, _ := again.At(s.ID, id)
			if a != b {
				t.Fatalf("species %d tile %d: %v != %v after shuffle", s.ID, id, a, b)
			}
		}
	}
}

func TestContractErrors(t *testing.T) {
	w := testWorld()
	s := mustSpecies(species.Species{ID: 1})
	e := NewEngine(DefaultWeights())

	if _, err := e.Compute([]*species.Species{s, s}, w, nil); !errors.Is(err, species.ErrDuplicateSpecies) {
		t.Errorf("duplicate species: err = %v", err)
	}
	if _, err := e.Compute([]*species.Species{s}, w, PreyFields{1: {0.5}}); !errors.Is(err, ErrFieldLength) {
		t.Errorf("short prey field: err = %v", err)
	}
	if _, err := e.Compute([]*species.Species{s}, w, PreyFields{7: make([]float64, len(w.Tiles))}); !errors.Is(err, species.ErrUnknownSpecies) {
		t.Errorf("prey for unknown species: err = %v", err)
	}

	m, err := e.Compute([]*species.Species{s}, w, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.At(2, 0); !errors.Is(err, species.ErrUnknownSpecies) {
		t.Errorf("At(unknown species) err = %v", err)
	}
	if _, err := m.At(1, len(w.Tiles)); !errors.Is(err, world.ErrUnknownTile) {
		t.Errorf("At(unknown tile) err = %v", err)
	}
}

func TestBest(t *testing.T) {
	w := testWorld()
	s := mustSpecies(species.Species{ID: 1, Habitat: species.Marine})
	m, err := NewEngine(DefaultWeights()).Compute([]*species.Species{s}, w, nil)
	if err != nil {
		t.Fatal(err)
	}
	best, score, err := m.Best(1)
	if err != nil {
		t.Fatal(err)
	}
	if best < 0 || w.Tiles[best].IsLand() || score <= 0 {
		t.Errorf("Best() = %d (%v), want a water tile", best, score)
	}
}

func TestCache(t *testing.T) {
	c := NewCache()
	calls := 0
	compute := func() (*Matrix, error) {
		calls++
		return &Matrix{}, nil
	}

	key := CacheKey{SpeciesVersion: 1, TileVersion: 1, Turn: 0}
	first, _ := c.GetOrCompute(key, compute)
	second, _ := c.GetOrCompute(key, compute)
	if first != second || calls != 1 {
		t.Errorf("same key recomputed: calls = %d", calls)
	}

	for _, k := range []CacheKey{
		{SpeciesVersion: 2, TileVersion: 1},
		{SpeciesVersion: 2, TileVersion: 2},
		{SpeciesVersion: 2, TileVersion: 2, Turn: 1},
	} {
		c.GetOrCompute(k, compute)
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4 after three key changes", calls)
	}

	c.Invalidate()
	if _, ok := c.Get(CacheKey{SpeciesVersion: 2, TileVersion: 2, Turn: 1}); ok {
		t.Error("Get after Invalidate should miss")
	}
	hits, misses := c.Stats()
	if hits != 1 || misses != 4 {
		t.Errorf("Stats() = %d, %d, want 1, 4", hits, misses)
	}
}

func BenchmarkCompute(b *testing.B) {
	w := world.New(256, 128, 1)
	for i := range w.Tiles {
		w.Tiles[i].Resources = 1 + float64(i%1000)
		w.Tiles[i].Temperature = float64(i%40) - 10
	}
	list := make([]*species.Species, 32)
	for i := range list {
		list[i] = mustSpecies(species.Species{ID: i, Habitat: species.Habitat(i % 8)})
	}
	e := NewEngine(DefaultWeights())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Compute(list, w, nil); err != nil {
			b.Fatal(err)
		}
	}
}
