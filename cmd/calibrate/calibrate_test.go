package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/habitat/config"
	"github.com/pthm-cable/habitat/connectivity"
	"github.com/pthm-cable/habitat/world"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Defaults()

	got := pv.ExtractFromConfig(cfg)
	want := pv.DefaultVector()
	if len(got) != pv.Dim() {
		t.Fatalf("ExtractFromConfig returned %d values, want %d", len(got), pv.Dim())
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("%s = %v, want default %v", pv.Specs[i].Name, got[i], want[i])
		}
	}

	norm := pv.Normalize(want)
	back := pv.Denormalize(norm)
	for i := range want {
		if math.Abs(back[i]-want[i]) > 1e-12 {
			t.Errorf("Denormalize(Normalize(%s)) = %v, want %v", pv.Specs[i].Name, back[i], want[i])
		}
	}

	values := make([]float64, pv.Dim())
	for i, s := range pv.Specs {
		values[i] = s.Max + 1
	}
	pv.ApplyToConfig(cfg, values)
	for i, v := range pv.ExtractFromConfig(cfg) {
		if v != pv.Specs[i].Max {
			t.Errorf("%s after clamped apply = %v, want %v", pv.Specs[i].Name, v, pv.Specs[i].Max)
		}
	}
}

func TestMeasure(t *testing.T) {
	// 10x6: two land blocks on rows 1..4 (x 1..3 and x 6..8), a lake at
	// (2,2), ocean elsewhere.
	w := world.New(10, 6, 1)
	for i := range w.Tiles {
		tile := &w.Tiles[i]
		tile.Elevation = -100
		inRows := tile.Y >= 1 && tile.Y <= 4
		if inRows && ((tile.X >= 1 && tile.X <= 3) || (tile.X >= 6 && tile.X <= 8)) {
			tile.Elevation = 100
		}
	}
	w.Tiles[w.Index(2, 2)].Elevation = -5
	w, regions := connectivity.Annotate(w)

	m := Measure(w, regions)
	if m.Landmasses != 2 {
		t.Errorf("Landmasses = %v, want 2", m.Landmasses)
	}
	// 11 land tiles in the first block, 12 in the second.
	if want := 12.0 / 23.0; math.Abs(m.LargestLand-want) > 1e-9 {
		t.Errorf("LargestLand = %v, want %v", m.LargestLand, want)
	}
	if want := 10000.0 / 60.0; math.Abs(m.LakeDensity-want) > 1e-9 {
		t.Errorf("LakeDensity = %v, want %v", m.LakeDensity, want)
	}
	if m.CoastShare <= 0 || m.CoastShare > 1 {
		t.Errorf("CoastShare = %v, want in (0, 1]", m.CoastShare)
	}
}

func TestTargetsError(t *testing.T) {
	tg := DefaultTargets()
	if got := tg.Error(tg.Metrics); got != 0 {
		t.Errorf("Error(targets) = %v, want 0", got)
	}
	off := tg.Metrics
	off.Landmasses += tg.Scale.Landmasses
	if got := tg.Error(off); math.Abs(got-1) > 1e-12 {
		t.Errorf("Error one scale off = %v, want 1", got)
	}
}

func TestEvaluateSmallWorld(t *testing.T) {
	cfg := config.Defaults()
	cfg.World.Width = 48
	cfg.World.Height = 24
	if err := cfg.Finalize(); err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, []int64{1, 2}, cfg, DefaultTargets())

	x := pv.DefaultVector()
	a := fe.Evaluate(x)
	b := fe.Evaluate(x)
	if math.IsNaN(a) || a < 0 {
		t.Fatalf("fitness = %v, want finite and non-negative", a)
	}
	if a != b {
		t.Errorf("Evaluate not deterministic: %v vs %v", a, b)
	}
}
