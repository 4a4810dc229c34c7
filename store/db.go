// Package store provides SQLite-based persistence for generated worlds and
// per-turn species occupancy.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/habitat/dispersal"
	"github.com/pthm-cable/habitat/world"
)

// ErrNoRun is returned when occupancy is persisted before BeginRun.
var ErrNoRun = errors.New("no active run")

// Run is one generated world.
type Run struct {
	ID         uuid.UUID `db:"id"`
	Seed       int64     `db:"seed"`
	Width      int       `db:"width"`
	Height     int       `db:"height"`
	OceanRatio float64   `db:"ocean_ratio"`
	CreatedAt  int64     `db:"created_at"` // unix nanoseconds
}

// TileRow is one stored tile.
type TileRow struct {
	RunID       uuid.UUID `db:"run_id"`
	ID          int       `db:"id"`
	X           int       `db:"x"`
	Y           int       `db:"y"`
	Elevation   float64   `db:"elevation"`
	Biome       string    `db:"biome"`
	Temperature float64   `db:"temperature"`
	Humidity    float64   `db:"humidity"`
	Salinity    float64   `db:"salinity"`
	Resources   float64   `db:"resources"`
	LandRegion  int32     `db:"land_region"`
	WaterRegion int32     `db:"water_region"`
	IsLake      bool      `db:"is_lake"`
}

// occupancyRow is the insert shape of one occupancy record.
type occupancyRow struct {
	RunID uuid.UUID `db:"run_id"`
	Turn  int       `db:"turn"`
	dispersal.Record
}

// DB wraps a SQLite connection.
type DB struct {
	conn   *sqlx.DB
	run    uuid.UUID
	logger *slog.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for save summaries.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) { db.logger = l }
}

// Open opens or creates a SQLite database at the given path.
func Open(path string, busyTimeoutMS int, opts ...Option) (*DB, error) {
	if busyTimeoutMS <= 0 {
		busyTimeoutMS = 5000
	}
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", path, busyTimeoutMS)
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite has a single writer.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn, logger: slog.Default()}
	for _, opt := range opts {
		opt(db)
	}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		ocean_ratio REAL NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tiles (
		run_id TEXT NOT NULL REFERENCES runs(id),
		id INTEGER NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		elevation REAL NOT NULL,
		biome TEXT NOT NULL,
		temperature REAL NOT NULL,
		humidity REAL NOT NULL,
		salinity REAL NOT NULL,
		resources REAL NOT NULL,
		land_region INTEGER NOT NULL,
		water_region INTEGER NOT NULL,
		is_lake INTEGER NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS occupancy (
		run_id TEXT NOT NULL REFERENCES runs(id),
		turn INTEGER NOT NULL,
		species_id INTEGER NOT NULL,
		tile_id INTEGER NOT NULL,
		share REAL NOT NULL,
		suitability REAL NOT NULL,
		PRIMARY KEY (run_id, turn, species_id, tile_id)
	);

	CREATE INDEX IF NOT EXISTS idx_occupancy_tile ON occupancy(run_id, turn, tile_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// BeginRun records a new run for w and makes it the target of later saves.
func (db *DB) BeginRun(w *world.World, oceanRatio float64) (uuid.UUID, error) {
	r := Run{
		ID:         uuid.New(),
		Seed:       w.Seed,
		Width:      w.Width,
		Height:     w.Height,
		OceanRatio: oceanRatio,
		CreatedAt:  time.Now().UnixNano(),
	}
	_, err := db.conn.NamedExec(`INSERT INTO runs (id, seed, width, height, ocean_ratio, created_at)
		VALUES (:id, :seed, :width, :height, :ocean_ratio, :created_at)`, r)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert run: %w", err)
	}
	db.run = r.ID
	return r.ID, nil
}

// RunID returns the active run, or uuid.Nil.
func (db *DB) RunID() uuid.UUID {
	return db.run
}

// SaveTiles writes every tile of w under the active run (full replace).
func (db *DB) SaveTiles(w *world.World) error {
	if db.run == uuid.Nil {
		return ErrNoRun
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tiles WHERE run_id = ?", db.run); err != nil {
		return err
	}

	stmt, err := tx.PrepareNamed(`INSERT INTO tiles
		(run_id, id, x, y, elevation, biome, temperature, humidity, salinity,
		 resources, land_region, water_region, is_lake)
		VALUES (:run_id, :id, :x, :y, :elevation, :biome, :temperature, :humidity, :salinity,
		 :resources, :land_region, :water_region, :is_lake)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range w.Tiles {
		t := &w.Tiles[i]
		row := TileRow{
			RunID:       db.run,
			ID:          t.ID,
			X:           t.X,
			Y:           t.Y,
			Elevation:   t.Elevation,
			Biome:       t.Biome.String(),
			Temperature: t.Temperature,
			Humidity:    t.Humidity,
			Salinity:    t.Salinity,
			Resources:   t.Resources,
			LandRegion:  t.LandRegion,
			WaterRegion: t.WaterRegion,
			IsLake:      t.IsLake,
		}
		if _, err := stmt.Exec(row); err != nil {
			return fmt.Errorf("insert tile %d: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	db.logger.Debug("tiles saved", "run", db.run, "tiles", len(w.Tiles))
	return nil
}

// Persist writes one turn's occupancy under the active run, replacing any
// rows already stored for that turn. It satisfies ecosystem.Sink.
func (db *DB) Persist(turn int, records []dispersal.Record) error {
	if db.run == uuid.Nil {
		return ErrNoRun
	}
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM occupancy WHERE run_id = ? AND turn = ?", db.run, turn); err != nil {
		return err
	}

	stmt, err := tx.PrepareNamed(`INSERT INTO occupancy
		(run_id, turn, species_id, tile_id, share, suitability)
		VALUES (:run_id, :turn, :species_id, :tile_id, :share, :suitability)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(occupancyRow{RunID: db.run, Turn: turn, Record: r}); err != nil {
			return fmt.Errorf("insert occupancy %d/%d: %w", r.SpeciesID, r.TileID, err)
		}
	}
	return tx.Commit()
}

// Runs lists every stored run, oldest first.
func (db *DB) Runs() ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT id, seed, width, height, ocean_ratio, created_at FROM runs ORDER BY created_at, id")
	return runs, err
}

// Tiles returns the stored tiles of a run in id order.
func (db *DB) Tiles(run uuid.UUID) ([]TileRow, error) {
	var rows []TileRow
	err := db.conn.Select(&rows, `SELECT run_id, id, x, y, elevation, biome, temperature, humidity,
		salinity, resources, land_region, water_region, is_lake
		FROM tiles WHERE run_id = ? ORDER BY id`, run)
	return rows, err
}

// Occupancy returns the records of one turn ordered by species then tile.
func (db *DB) Occupancy(run uuid.UUID, turn int) ([]dispersal.Record, error) {
	var recs []dispersal.Record
	err := db.conn.Select(&recs, `SELECT species_id, tile_id, share, suitability
		FROM occupancy WHERE run_id = ? AND turn = ? ORDER BY species_id, tile_id`, run, turn)
	return recs, err
}

// LatestTurn returns the last turn with stored occupancy, or -1 when none.
func (db *DB) LatestTurn(run uuid.UUID) (int, error) {
	var turn int
	err := db.conn.Get(&turn, "SELECT COALESCE(MAX(turn), -1) FROM occupancy WHERE run_id = ?", run)
	return turn, err
}

// SpeciesOnTile returns the occupancy records of one tile in a turn.
func (db *DB) SpeciesOnTile(run uuid.UUID, turn, tile int) ([]dispersal.Record, error) {
	var recs []dispersal.Record
	err := db.conn.Select(&recs, `SELECT species_id, tile_id, share, suitability
		FROM occupancy WHERE run_id = ? AND turn = ? AND tile_id = ? ORDER BY species_id`,
		run, turn, tile)
	return recs, err
}
