package main

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/pthm-cable/habitat/config"
	"github.com/pthm-cable/habitat/connectivity"
	"github.com/pthm-cable/habitat/dispersal"
	"github.com/pthm-cable/habitat/ecosystem"
	"github.com/pthm-cable/habitat/store"
	"github.com/pthm-cable/habitat/suitability"
	"github.com/pthm-cable/habitat/telemetry"
	"github.com/pthm-cable/habitat/terrain"
	"github.com/pthm-cable/habitat/world"
)

const phaseConnectivity = "connectivity"

// run generates a world, seeds the configured species and drives the turns.
func run(cfg *config.Config, logger *slog.Logger) error {
	out, err := telemetry.NewOutputManager(cfg.Telemetry.OutputDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}

	logger.Info("generating world",
		"seed", cfg.Derived.Seed,
		"width", cfg.World.Width,
		"height", cfg.World.Height,
		"ocean_ratio", cfg.World.OceanRatio,
		"primordial", cfg.World.Primordial,
	)
	genPerf := telemetry.NewPerfCollector(1)
	w := buildWorld(cfg, logger, genPerf)
	genPerf.Stats().LogStats(logger, "generation perf")

	if err := out.WriteTiles("tiles.csv", w); err != nil {
		return err
	}

	var db *store.DB
	if cfg.Store.Path != "" {
		db, err = store.Open(cfg.Store.Path, cfg.Store.BusyTimeoutMS, store.WithLogger(logger))
		if err != nil {
			return err
		}
		defer db.Close()
		runID, err := db.BeginRun(w, cfg.World.OceanRatio)
		if err != nil {
			return err
		}
		if err := db.SaveTiles(w); err != nil {
			return fmt.Errorf("save tiles: %w", err)
		}
		logger.Info("run stored", "run", runID, "path", cfg.Store.Path)
	}

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	var totalPop float64
	for _, sp := range reg.All() {
		totalPop += sp.Population
	}
	logger.Info("species registered",
		"species", reg.Len(),
		"population", humanize.Comma(int64(totalPop)),
	)

	turnPerf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	opts := []ecosystem.Option{
		ecosystem.WithSuitability(suitability.NewEngine(cfg.ToWeights(), suitability.WithLogger(logger))),
		ecosystem.WithDispersal(dispersal.NewEngine(cfg.ToDispersal(), dispersal.WithLogger(logger))),
		ecosystem.WithTimer(turnPerf),
		ecosystem.WithLogger(logger),
	}
	if out != nil {
		opts = append(opts, ecosystem.WithSink(out))
	}
	if db != nil {
		opts = append(opts, ecosystem.WithSink(db))
	}
	sim := ecosystem.New(w, reg, opts...)

	if err := runTurns(sim, cfg, cfg.Simulation.Turns, out, turnPerf, logger); err != nil {
		return err
	}

	if cfg.World.SeaLevel == 0 {
		return nil
	}

	genPerf.Reset()
	genPerf.StartTick()
	genPerf.StartPhase(terrain.PhaseElevation)
	shifted := terrain.Reclassify(sim.World(), cfg.World.SeaLevel)
	genPerf.StartPhase(phaseConnectivity)
	shifted, regions := connectivity.Annotate(shifted)
	genPerf.EndTick()

	logger.Info("sea level changed",
		"sea_level", cfg.World.SeaLevel,
		"regions", regions,
		"world", telemetry.NewWorldStats(shifted),
	)
	genPerf.Stats().LogStats(logger, "reclassification perf")

	if err := sim.SetWorld(shifted); err != nil {
		return err
	}
	if err := out.WriteTiles(fmt.Sprintf("tiles_sea_%+.0fm.csv", cfg.World.SeaLevel), shifted); err != nil {
		return err
	}
	if db != nil {
		if err := db.SaveTiles(shifted); err != nil {
			return fmt.Errorf("save tiles: %w", err)
		}
	}
	return runTurns(sim, cfg, cfg.Simulation.AfterReclassify, out, turnPerf, logger)
}

// buildWorld generates and annotates the grid, timing every phase.
func buildWorld(cfg *config.Config, logger *slog.Logger, perf *telemetry.PerfCollector) *world.World {
	perf.StartTick()
	gen := terrain.NewGenerator(cfg.ToTerrain(),
		terrain.WithLogger(logger),
		terrain.WithPhaseTimer(perf),
	)
	w := gen.Generate()

	perf.StartPhase(phaseConnectivity)
	w, regions := connectivity.Annotate(w)
	perf.EndTick()

	logger.Info("world ready",
		"tiles", humanize.Comma(int64(w.Len())),
		"regions", regions,
		"world", telemetry.NewWorldStats(w),
	)
	return w
}

// runTurns advances the simulation n turns, writing turn and perf rows.
func runTurns(sim *ecosystem.Sim, cfg *config.Config, n int, out *telemetry.OutputManager, perf *telemetry.PerfCollector, logger *slog.Logger) error {
	for i := 0; i < n; i++ {
		report, err := sim.Turn()
		if err != nil {
			return err
		}

		stats := telemetry.NewTurnStats(report)
		if err := out.WriteTurn(stats); err != nil {
			return err
		}
		if (report.Turn+1)%cfg.Telemetry.LogEvery == 0 {
			logger.Info("turn stats", "stats", stats)
		}
		if (report.Turn+1)%cfg.Telemetry.PerfWindow == 0 {
			ps := perf.Stats()
			ps.LogStats(logger, "turn perf")
			if err := out.WritePerf(ps, report.Turn); err != nil {
				return err
			}
		}
	}
	return nil
}
