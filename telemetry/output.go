package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/habitat/config"
	"github.com/pthm-cable/habitat/dispersal"
	"github.com/pthm-cable/habitat/world"
)

// TileRecord is one row of a tiles CSV.
type TileRecord struct {
	ID          int     `csv:"id"`
	X           int     `csv:"x"`
	Y           int     `csv:"y"`
	Elevation   float64 `csv:"elevation"`
	Biome       string  `csv:"biome"`
	Temperature float64 `csv:"temperature"`
	Humidity    float64 `csv:"humidity"`
	Salinity    float64 `csv:"salinity"`
	Resources   float64 `csv:"resources"`
	LandRegion  int32   `csv:"land_region"`
	WaterRegion int32   `csv:"water_region"`
	Lake        bool    `csv:"lake"`
}

// TileRecords flattens the grid in tile-id order.
func TileRecords(w *world.World) []TileRecord {
	f := w.Fields()
	out := make([]TileRecord, len(f.Elevation))
	for i := range out {
		out[i] = TileRecord{
			ID:          i,
			X:           i % f.Width,
			Y:           i / f.Width,
			Elevation:   f.Elevation[i],
			Biome:       f.Biome[i].String(),
			Temperature: f.Temperature[i],
			Humidity:    f.Humidity[i],
			Salinity:    f.Salinity[i],
			Resources:   f.Resources[i],
			LandRegion:  f.LandRegion[i],
			WaterRegion: f.WaterRegion[i],
			Lake:        f.Lake[i],
		}
	}
	return out
}

// OccupancyRecord is one row of occupancy.csv.
type OccupancyRecord struct {
	Turn        int     `csv:"turn"`
	SpeciesID   int     `csv:"species_id"`
	TileID      int     `csv:"tile_id"`
	Share       float64 `csv:"share"`
	Suitability float64 `csv:"suitability"`
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir           string
	occupancyFile *os.File
	turnsFile     *os.File
	perfFile      *os.File

	// Track if headers have been written
	occupancyHeaderWritten bool
	turnsHeaderWritten     bool
	perfHeaderWritten      bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled). Every method is a no-op on
// a nil manager.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  **os.File
	}{
		{"occupancy.csv", &om.occupancyFile},
		{"turns.csv", &om.turnsFile},
		{"perf.csv", &om.perfFile},
	}
	for _, f := range files {
		fh, err := os.Create(filepath.Join(dir, f.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", f.name, err)
		}
		*f.dst = fh
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTiles writes the whole grid to a fresh CSV file called name.
func (om *OutputManager) WriteTiles(name string, w *world.World) error {
	if om == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, name))
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if err := gocsv.Marshal(TileRecords(w), f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return f.Close()
}

// Persist appends a turn's occupancy to occupancy.csv. It satisfies
// ecosystem.Sink.
func (om *OutputManager) Persist(turn int, records []dispersal.Record) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	rows := make([]OccupancyRecord, len(records))
	for i, r := range records {
		rows[i] = OccupancyRecord{
			Turn:        turn,
			SpeciesID:   r.SpeciesID,
			TileID:      r.TileID,
			Share:       r.Share,
			Suitability: r.Suitability,
		}
	}
	if err := appendCSV(om.occupancyFile, rows, &om.occupancyHeaderWritten); err != nil {
		return fmt.Errorf("writing occupancy: %w", err)
	}
	return nil
}

// WriteTurn writes a turn summary to turns.csv.
func (om *OutputManager) WriteTurn(stats TurnStats) error {
	if om == nil {
		return nil
	}
	if err := appendCSV(om.turnsFile, []TurnStats{stats}, &om.turnsHeaderWritten); err != nil {
		return fmt.Errorf("writing turns: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, turn int) error {
	if om == nil {
		return nil
	}
	records := []PerfStatsCSV{stats.ToCSV(turn)}
	if err := appendCSV(om.perfFile, records, &om.perfHeaderWritten); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// appendCSV writes records with a header on the first call only.
func appendCSV(f *os.File, records any, headerWritten *bool) error {
	if *headerWritten {
		return gocsv.MarshalWithoutHeaders(records, f)
	}
	if err := gocsv.Marshal(records, f); err != nil {
		return err
	}
	*headerWritten = true
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.occupancyFile, om.turnsFile, om.perfFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
