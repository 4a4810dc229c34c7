package main

import (
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/pthm-cable/habitat/config"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "World seed (0 = use config, where 0 means time-based)")
	width := flag.Int("width", 0, "Grid width in tiles (0 = use config)")
	height := flag.Int("height", 0, "Grid height in tiles (0 = use config)")
	oceanRatio := flag.Float64("ocean-ratio", 0, "Fraction of tiles below sea level (0 = use config)")
	primordial := flag.Bool("primordial", false, "Generate without vegetation cover")
	turns := flag.Int("turns", -1, "Simulation turns (-1 = use config)")
	seaLevel := flag.Float64("sea-level", 0, "Reclassify at this sea level in meters after the turns (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	dbPath := flag.String("db", "", "SQLite database for runs, tiles and occupancy")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "json", "Log format: json or text")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	opts := &slog.HandlerOptions{Level: parseLevel(*logLevel)}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if strings.EqualFold(*logFormat, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// Flags override the file only when set.
	if *seed != 0 {
		cfg.World.Seed = *seed
	}
	if *width > 0 {
		cfg.World.Width = *width
	}
	if *height > 0 {
		cfg.World.Height = *height
	}
	if *oceanRatio > 0 {
		cfg.World.OceanRatio = *oceanRatio
	}
	if *primordial {
		cfg.World.Primordial = true
	}
	if *turns >= 0 {
		cfg.Simulation.Turns = *turns
	}
	if *seaLevel != 0 {
		cfg.World.SeaLevel = *seaLevel
	}
	if *outputDir != "" {
		cfg.Telemetry.OutputDir = *outputDir
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	if err := cfg.Finalize(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}
