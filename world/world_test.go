package world

import (
	"errors"
	"testing"
)

func TestNeighborsSymmetric(t *testing.T) {
	w := New(16, 9, 1)
	for i := range w.Tiles {
		for _, n := range w.Tiles[i].Neighbors {
			if !containsInt(w.Tiles[n].Neighbors, i) {
				t.Fatalf("tile %d lists %d as neighbor but not vice versa", i, n)
			}
		}
	}
}

func TestNeighborCounts(t *testing.T) {
	w := New(16, 9, 1)
	tests := []struct {
		name string
		x, y int
		want int
	}{
		{"interior", 5, 4, 6},
		{"west seam", 0, 4, 6},
		{"east seam", 15, 3, 6},
		{"north edge", 5, 0, 4},
		{"south edge", 5, 8, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := len(w.Tiles[w.Index(tt.x, tt.y)].Neighbors)
			if got != tt.want {
				t.Errorf("len(Neighbors(%d,%d)) = %d, want %d", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestIndexWrapsX(t *testing.T) {
	w := New(10, 4, 1)
	if got, want := w.Index(-1, 2), w.Index(9, 2); got != want {
		t.Errorf("Index(-1, 2) = %d, want %d", got, want)
	}
	if got, want := w.Index(12, 1), w.Index(2, 1); got != want {
		t.Errorf("Index(12, 1) = %d, want %d", got, want)
	}
	if got := w.Index(3, 4); got != -1 {
		t.Errorf("Index(3, 4) = %d, want -1", got)
	}
}

func TestDistanceMatchesBFS(t *testing.T) {
	w := New(20, 12, 1)
	for _, src := range []int{0, w.Index(19, 5), w.Index(7, 11)} {
		field := w.DistanceField([]int{src}, -1, nil)
		for id := range w.Tiles {
			if got := w.Distance(src, id); got != field[id] {
				t.Fatalf("Distance(%d, %d) = %d, BFS = %d", src, id, got, field[id])
			}
		}
	}
}

func TestDistanceAcrossSeam(t *testing.T) {
	w := New(30, 6, 1)
	if got := w.Distance(w.Index(0, 2), w.Index(29, 2)); got != 1 {
		t.Errorf("Distance across seam = %d, want 1", got)
	}
}

func TestDistanceFieldMaxDistAndPassable(t *testing.T) {
	w := New(12, 6, 1)
	src := w.Index(3, 3)
	field := w.DistanceField([]int{src}, 2, nil)
	for id, d := range field {
		if d > 2 {
			t.Fatalf("tile %d has distance %d beyond maxDist", id, d)
		}
	}

	blocked := w.DistanceField([]int{src}, -1, func(int) bool { return false })
	for id, d := range blocked {
		if id != src && d != Unreached {
			t.Fatalf("tile %d reached through impassable grid", id)
		}
	}
}

func TestTileUnknown(t *testing.T) {
	w := New(4, 4, 1)
	if _, err := w.Tile(16); !errors.Is(err, ErrUnknownTile) {
		t.Errorf("Tile(16) error = %v, want ErrUnknownTile", err)
	}
	if _, err := w.Tile(-1); !errors.Is(err, ErrUnknownTile) {
		t.Errorf("Tile(-1) error = %v, want ErrUnknownTile", err)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	w := New(4, 4, 1)
	c := w.Clone()
	c.Tiles[3].Elevation = 500
	if w.Tiles[3].Elevation != 0 {
		t.Error("mutating clone changed original")
	}
}

func TestRegionKey(t *testing.T) {
	land := Tile{Elevation: 10, LandRegion: 3}
	water := Tile{Elevation: -10, WaterRegion: 7}
	if land.Region() != 3 {
		t.Errorf("land Region() = %d, want 3", land.Region())
	}
	if water.Region() != -7 {
		t.Errorf("water Region() = %d, want -7", water.Region())
	}
}

func TestFieldsTileOrdered(t *testing.T) {
	w := New(5, 3, 1)
	for i := range w.Tiles {
		w.Tiles[i].Elevation = float64(i)
	}
	f := w.Fields()
	for i, e := range f.Elevation {
		if e != float64(i) {
			t.Errorf("Elevation[%d] = %v, want %v", i, e, float64(i))
		}
	}
}

func TestLatitudeRange(t *testing.T) {
	w := New(4, 10, 1)
	if lat := w.Latitude(0); lat >= 0 || lat < -1 {
		t.Errorf("Latitude(0) = %v, want in [-1, 0)", lat)
	}
	if lat := w.Latitude(9); lat <= 0 || lat > 1 {
		t.Errorf("Latitude(9) = %v, want in (0, 1]", lat)
	}
}
