package connectivity

import (
	"io"
	"log/slog"
	"testing"

	"github.com/pthm-cable/habitat/terrain"
	"github.com/pthm-cable/habitat/world"
)

// gridWorld builds a world from rows of '#' (land) and '.' (water).
func gridWorld(rows ...string) *world.World {
	w := world.New(len(rows[0]), len(rows), 1)
	for y, row := range rows {
		for x, c := range row {
			elev := 100.0
			if c == '.' {
				elev = -100
			}
			w.Tiles[y*w.Width+x].Elevation = elev
		}
	}
	return w
}

func generated(seed int64) *world.World {
	cfg := terrain.SmallTestConfig()
	cfg.Seed = seed
	g := terrain.NewGenerator(cfg, terrain.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	return g.Generate()
}

func TestLakeVersusOcean(t *testing.T) {
	w := gridWorld(
		"........",
		"########",
		"###..###",
		"########",
		"#.######",
		"########",
		"........",
	)
	r := Classify(w)

	if got := r.WaterCount(); got != 4 {
		t.Fatalf("WaterCount() = %d, want 4", got)
	}
	if got := r.LakeCount(); got != 2 {
		t.Errorf("LakeCount() = %d, want 2", got)
	}
	if got := r.LandCount(); got != 1 {
		t.Errorf("LandCount() = %d, want 1", got)
	}
	if r.IsLake(r.Water[0]) {
		t.Error("north row water classified as lake")
	}
	if r.IsLake(r.Water[6*8]) {
		t.Error("south row water classified as lake")
	}

	single := r.Water[4*8+1]
	if !r.IsLake(single) {
		t.Error("singleton enclosed water should be a lake")
	}
	if r.WaterSizes[single] != 1 {
		t.Errorf("singleton lake size = %d, want 1", r.WaterSizes[single])
	}
	if r.Water[2*8+3] != r.Water[2*8+4] {
		t.Error("adjacent lake tiles have different ids")
	}
}

func TestWrapJoinsRegions(t *testing.T) {
	w := gridWorld(
		"......",
		"#....#",
		"......",
	)
	r := Classify(w)
	if r.Land[1*6+0] != r.Land[1*6+5] {
		t.Error("land at x=0 and x=W-1 should share a region across the seam")
	}
	if r.LandCount() != 1 {
		t.Errorf("LandCount() = %d, want 1", r.LandCount())
	}
}

func TestDiagonalConnects(t *testing.T) {
	w := gridWorld(
		"......",
		".#....",
		"..#...",
		"......",
	)
	r := Classify(w)
	if r.Land[1*6+1] != r.Land[2*6+2] {
		t.Error("diagonal land tiles should be 8-connected")
	}
}

func TestOceanOnBoundaryRows(t *testing.T) {
	for seed := int64(1); seed <= 6; seed++ {
		w := generated(seed)
		r := Classify(w)
		for _, y := range []int{0, w.Height - 1} {
			for x := 0; x < w.Width; x++ {
				id := r.Water[y*w.Width+x]
				if id != 0 && r.IsLake(id) {
					t.Fatalf("seed %d: boundary tile (%d,%d) labeled lake", seed, x, y)
				}
			}
		}
	}
}

func TestRegionsAreConnected(t *testing.T) {
	w := generated(7)
	r := Classify(w)

	check := func(name string, labels []int32, sizes []int) {
		visited := make([]bool, len(labels))
		for start, id := range labels {
			if id == 0 || visited[start] {
				continue
			}
			count := 0
			queue := []int{start}
			visited[start] = true
			for head := 0; head < len(queue); head++ {
				cur := queue[head]
				count++
				x, y := cur%w.Width, cur/w.Width
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nb := w.Index(x+dx, y+dy)
						if nb < 0 || visited[nb] || labels[nb] != id {
							continue
						}
						visited[nb] = true
						queue = append(queue, nb)
					}
				}
			}
			if count != sizes[id] {
				t.Errorf("%s region %d: reached %d tiles, size %d", name, id, count, sizes[id])
			}
		}
	}
	check("land", r.Land, r.LandSizes)
	check("water", r.Water, r.WaterSizes)

	for i := range w.Tiles {
		if (r.Land[i] == 0) == (r.Water[i] == 0) {
			t.Fatalf("tile %d must carry exactly one region id", i)
		}
	}
}

func TestAnnotate(t *testing.T) {
	w := gridWorld(
		"......",
		"######",
		"##.###",
		"######",
		"......",
	)
	w.Tiles[2*6+2].Salinity = 34

	out, r := Annotate(w)
	lake := &out.Tiles[2*6+2]
	if !lake.IsLake {
		t.Fatal("enclosed tile not flagged as lake")
	}
	if lake.Salinity != FreshwaterSalinity {
		t.Errorf("lake salinity = %v, want %v", lake.Salinity, FreshwaterSalinity)
	}
	if w.Tiles[2*6+2].IsLake {
		t.Error("Annotate modified its input")
	}
	if out.Tiles[0].IsLake || !out.Tiles[0].IsOpenWater() {
		t.Error("north row should be open water")
	}
	if out.Tiles[6].LandRegion != r.Land[6] || out.Tiles[6].WaterRegion != 0 {
		t.Error("land tile region ids not copied")
	}
}

func TestClassifyIdempotent(t *testing.T) {
	w := generated(11)
	annotated, first := Annotate(w)
	again, second := Annotate(annotated)
	for i := range w.Tiles {
		if first.Land[i] != second.Land[i] || first.Water[i] != second.Water[i] {
			t.Fatalf("tile %d: labels differ between passes", i)
		}
		if annotated.Tiles[i].IsLake != again.Tiles[i].IsLake {
			t.Fatalf("tile %d: lake flag differs between passes", i)
		}
	}
}
