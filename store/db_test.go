package store

import (
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/pthm-cable/habitat/connectivity"
	"github.com/pthm-cable/habitat/dispersal"
	"github.com/pthm-cable/habitat/ecosystem"
	"github.com/pthm-cable/habitat/species"
	"github.com/pthm-cable/habitat/world"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "habitat.db"), 0, WithLogger(quiet))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// smallWorld is a 6x4 annotated world with a lake at (2,1).
func smallWorld() *world.World {
	w := world.New(6, 4, 3)
	for i := range w.Tiles {
		t := &w.Tiles[i]
		t.Elevation = 200
		t.Temperature = 15
		t.Humidity = 0.5
		t.Resources = 300
	}
	w.Tiles[w.Index(2, 1)].Elevation = -20
	out, _ := connectivity.Annotate(w)
	return out
}

func TestPersistBeforeBeginRun(t *testing.T) {
	db := openTemp(t)
	if err := db.Persist(0, nil); !errors.Is(err, ErrNoRun) {
		t.Errorf("Persist() = %v, want ErrNoRun", err)
	}
	if err := db.SaveTiles(smallWorld()); !errors.Is(err, ErrNoRun) {
		t.Errorf("SaveTiles() = %v, want ErrNoRun", err)
	}
}

func TestBeginRunAndRuns(t *testing.T) {
	db := openTemp(t)
	w := smallWorld()

	id, err := db.BeginRun(w, 0.3)
	if err != nil {
		t.Fatalf("BeginRun error: %v", err)
	}
	if id == uuid.Nil || db.RunID() != id {
		t.Fatalf("RunID = %v, want %v", db.RunID(), id)
	}

	runs, err := db.Runs()
	if err != nil {
		t.Fatalf("Runs error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(Runs) = %d, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != id || r.Seed != 3 || r.Width != 6 || r.Height != 4 || r.OceanRatio != 0.3 {
		t.Errorf("run = %+v", r)
	}
}

func TestSaveTilesReplaces(t *testing.T) {
	db := openTemp(t)
	w := smallWorld()
	id, err := db.BeginRun(w, 0.1)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := db.SaveTiles(w); err != nil {
			t.Fatalf("SaveTiles #%d error: %v", i, err)
		}
	}

	rows, err := db.Tiles(id)
	if err != nil {
		t.Fatalf("Tiles error: %v", err)
	}
	if len(rows) != w.Len() {
		t.Fatalf("len(Tiles) = %d, want %d", len(rows), w.Len())
	}
	lake := w.Index(2, 1)
	for _, row := range rows {
		tile := &w.Tiles[row.ID]
		if row.X != tile.X || row.Y != tile.Y || row.Elevation != tile.Elevation {
			t.Errorf("tile %d = %+v, want x=%d y=%d elev=%v", row.ID, row, tile.X, tile.Y, tile.Elevation)
		}
		if row.IsLake != (row.ID == lake) {
			t.Errorf("tile %d IsLake = %v", row.ID, row.IsLake)
		}
		if row.Biome != tile.Biome.String() {
			t.Errorf("tile %d biome = %q, want %q", row.ID, row.Biome, tile.Biome.String())
		}
	}
}

func TestPersistAndQuery(t *testing.T) {
	db := openTemp(t)
	id, err := db.BeginRun(smallWorld(), 0.1)
	if err != nil {
		t.Fatal(err)
	}

	if turn, err := db.LatestTurn(id); err != nil || turn != -1 {
		t.Errorf("LatestTurn on empty = %d, %v; want -1, nil", turn, err)
	}

	first := []dispersal.Record{
		{SpeciesID: 2, TileID: 5, Share: 0.4, Suitability: 0.7},
		{SpeciesID: 1, TileID: 3, Share: 1, Suitability: 0.9},
		{SpeciesID: 2, TileID: 4, Share: 0.6, Suitability: 0.8},
	}
	if err := db.Persist(0, first); err != nil {
		t.Fatalf("Persist error: %v", err)
	}
	// Re-persisting a turn replaces it.
	second := first[1:]
	if err := db.Persist(0, second); err != nil {
		t.Fatalf("Persist replace error: %v", err)
	}
	if err := db.Persist(1, first); err != nil {
		t.Fatalf("Persist turn 1 error: %v", err)
	}

	got, err := db.Occupancy(id, 0)
	if err != nil {
		t.Fatalf("Occupancy error: %v", err)
	}
	want := []dispersal.Record{
		{SpeciesID: 1, TileID: 3, Share: 1, Suitability: 0.9},
		{SpeciesID: 2, TileID: 4, Share: 0.6, Suitability: 0.8},
	}
	if len(got) != len(want) {
		t.Fatalf("Occupancy(0) = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Occupancy(0)[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	if turn, err := db.LatestTurn(id); err != nil || turn != 1 {
		t.Errorf("LatestTurn = %d, %v; want 1, nil", turn, err)
	}

	onTile, err := db.SpeciesOnTile(id, 1, 5)
	if err != nil {
		t.Fatalf("SpeciesOnTile error: %v", err)
	}
	if len(onTile) != 1 || onTile[0].SpeciesID != 2 {
		t.Errorf("SpeciesOnTile = %+v, want species 2 only", onTile)
	}
}

func TestDBAsSimulationSink(t *testing.T) {
	db := openTemp(t)
	w := smallWorld()
	id, err := db.BeginRun(w, 0.1)
	if err != nil {
		t.Fatal(err)
	}

	reg := species.NewRegistry()
	if err := reg.Add(species.Species{
		ID:           1,
		Name:         "meadow grass",
		Habitat:      species.Terrestrial,
		Mobility:     species.Sessile,
		TrophicLevel: 1,
		Population:   100,
	}); err != nil {
		t.Fatal(err)
	}

	sim := ecosystem.New(w, reg, ecosystem.WithSink(db), ecosystem.WithLogger(quiet))
	for i := 0; i < 3; i++ {
		if _, err := sim.Turn(); err != nil {
			t.Fatalf("Turn %d error: %v", i, err)
		}
	}

	turn, err := db.LatestTurn(id)
	if err != nil || turn != 2 {
		t.Fatalf("LatestTurn = %d, %v; want 2, nil", turn, err)
	}
	recs, err := db.Occupancy(id, turn)
	if err != nil {
		t.Fatal(err)
	}
	var total float64
	for _, r := range recs {
		total += r.Share
	}
	if len(recs) == 0 || total < 0.999 || total > 1.001 {
		t.Errorf("stored shares = %v over %d rows, want 1", total, len(recs))
	}
}
