// Package dispersal decides each turn where every species spreads. A mode is
// selected per species, candidate tiles are scored from suitability,
// proximity, region connectivity and prey, and a fraction of the population
// moves to the best of them.
package dispersal

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/pthm-cable/habitat/parallel"
	"github.com/pthm-cable/habitat/species"
	"github.com/pthm-cable/habitat/suitability"
	"github.com/pthm-cable/habitat/world"
)

// Input is everything one dispersal pass reads. None of it is modified.
type Input struct {
	World   *world.World
	Scores  *suitability.Matrix
	Species []*species.Species

	// Occupancy holds current cells by species id. A species without an
	// entry is treated as spread evenly over its Tiles.
	Occupancy map[int][]Cell
	Prey      suitability.PreyFields
	Turn      int
}

// Target is a tile newly selected this turn.
type Target struct {
	Tile  int     `csv:"tile_id"`
	Score float64 `csv:"score"`
	Share float64 `csv:"share"`
	Jump  bool    `csv:"jump"`
}

// Outcome is the result of one species' pass.
type Outcome struct {
	SpeciesID int
	Mode      Mode
	Dispersed bool
	Moved     float64 // share moved to targets
	Targets   []Target
	Cells     []Cell // occupancy after the pass
}

// Result holds every species' outcome, sorted by species id.
type Result struct {
	Turn     int
	Outcomes []Outcome
}

// Records flattens the result for persistence.
func (r *Result) Records() []Record {
	var out []Record
	for _, o := range r.Outcomes {
		for _, c := range o.Cells {
			out = append(out, Record{
				SpeciesID:   o.SpeciesID,
				TileID:      c.Tile,
				Share:       c.Share,
				Suitability: c.Suitability,
			})
		}
	}
	return out
}

// Occupancy returns the post-pass cells keyed by species id.
func (r *Result) Occupancy() map[int][]Cell {
	out := make(map[int][]Cell, len(r.Outcomes))
	for _, o := range r.Outcomes {
		out[o.SpeciesID] = o.Cells
	}
	return out
}

// Engine runs dispersal passes.
type Engine struct {
	params Params
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an engine.
func NewEngine(p Params, opts ...Option) *Engine {
	e := &Engine{params: p, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Params returns the engine's parameters.
func (e *Engine) Params() Params {
	return e.params
}

// Disperse runs one pass for every species. Species are independent, so they
// are processed in parallel; each draws from its own seeded source.
func (e *Engine) Disperse(in Input) (*Result, error) {
	if in.World == nil || in.Scores == nil {
		return nil, fmt.Errorf("dispersal: world and scores are required")
	}
	list := append([]*species.Species(nil), in.Species...)
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if err := checkKeys(list, in); err != nil {
		return nil, err
	}

	outcomes := make([]Outcome, len(list))
	errs := make([]error, len(list))
	parallel.For(len(list), func(start, end int) {
		for i := start; i < end; i++ {
			outcomes[i], errs[i] = e.disperseOne(in, list[i])
		}
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return &Result{Turn: in.Turn, Outcomes: outcomes}, nil
}

// checkKeys rejects occupancy or prey entries for species not in the pass.
func checkKeys(list []*species.Species, in Input) error {
	known := make(map[int]bool, len(list))
	for _, s := range list {
		known[s.ID] = true
	}
	for id := range in.Occupancy {
		if !known[id] {
			return fmt.Errorf("occupancy for species %d: %w", id, species.ErrUnknownSpecies)
		}
	}
	for id := range in.Prey {
		if !known[id] {
			return fmt.Errorf("prey field for species %d: %w", id, species.ErrUnknownSpecies)
		}
	}
	return nil
}

type candidate struct {
	tile  int
	score float64
	jump  bool
}

func (e *Engine) disperseOne(in Input, s *species.Species) (Outcome, error) {
	w := in.World
	row, err := in.Scores.Row(s.ID)
	if err != nil {
		return Outcome{}, err
	}
	if len(row) != len(w.Tiles) {
		return Outcome{}, fmt.Errorf("species %d: %d scores for %d tiles: %w",
			s.ID, len(row), len(w.Tiles), suitability.ErrFieldLength)
	}

	cells, ok := in.Occupancy[s.ID]
	if !ok {
		cells = EvenCells(s.Tiles)
	}
	if err := validateCells(w, s.ID, cells); err != nil {
		return Outcome{}, err
	}
	prof := s.Profile()
	if err := checkPlacement(w, s.ID, prof.Medium, cells); err != nil {
		return Outcome{}, err
	}
	cells = append([]Cell(nil), cells...)
	for i := range cells {
		cells[i].Suitability = row[cells[i].Tile]
	}
	sortCells(cells)

	prey := in.Prey[s.ID]
	if prey != nil && len(prey) != len(w.Tiles) {
		return Outcome{}, fmt.Errorf("species %d prey field: %w", s.ID, suitability.ErrFieldLength)
	}

	out := Outcome{SpeciesID: s.ID, Cells: cells}
	total := TotalShare(cells)
	if len(cells) == 0 || total <= 0 || s.Population <= 0 {
		return out, nil
	}

	currentSuit, preyDensity := 0.0, math.NaN()
	if prey != nil {
		preyDensity = 0
	}
	for _, c := range cells {
		currentSuit += row[c.Tile] * c.Share / total
		if prey != nil {
			preyDensity += prey[c.Tile] * c.Share / total
		}
	}

	out.Mode = e.params.selectMode(s, len(cells), preyDensity)
	pol := e.params.policy(out.Mode)
	rng := speciesRNG(e.params.Seed, in.Turn, s.ID)

	if out.Mode == Passive && rng.Float64() >= e.params.passiveProbability(prof) {
		return out, nil
	}
	jump := e.params.JumpProbability > 0 && rng.Float64() < e.params.JumpProbability

	origin := Tiles(cells)
	occupied := make(map[int]bool, len(cells))
	regions := make(map[world.RegionKey]bool)
	for _, t := range origin {
		occupied[t] = true
		regions[w.Tiles[t].Region()] = true
	}
	gated := !s.Mobility.IgnoresRegions()

	reach := max(1, int(math.Ceil(float64(prof.MovementRange)*pol.rangeMult)))
	dist := w.DistanceField(origin, reach, nil)

	floor := e.params.ViabilityFloor
	minSuit := floor
	if pol.minImprovement > 0 {
		minSuit = max(minSuit, currentSuit+pol.minImprovement)
	}
	var cands []candidate
	for id, d := range dist {
		if d < 1 || occupied[id] {
			continue
		}
		suit := row[id]
		if suit <= 0 {
			continue
		}
		if gated {
			r := w.Tiles[id].Region()
			if r == 0 {
				return Outcome{}, fmt.Errorf("species %d candidate tile %d: %w", s.ID, id, world.ErrUnannotated)
			}
			if !regions[r] {
				continue
			}
		}
		if suit < minSuit {
			continue
		}
		proximity := float64(reach-d+1) / float64(reach)
		score := pol.blend.Suitability*suit + pol.blend.Distance*proximity
		if prey != nil {
			score += pol.blend.Prey * prey[id]
		}
		if score <= floor {
			continue
		}
		cands = append(cands, candidate{tile: id, score: score})
	}
	rankCandidates(cands)
	if pol.topK > 0 && len(cands) > pol.topK {
		cands = cands[:pol.topK]
	}

	if jump {
		if c, ok := e.jumpTarget(w, s, prof, row, minSuit, origin, occupied, cands); ok {
			cands = append(cands, c)
		}
	}

	if len(cands) == 0 || pol.ratio <= 0 {
		e.logger.Debug("no viable dispersal target", "species", s.ID, "mode", out.Mode.String())
		return out, nil
	}

	out.Dispersed = true
	out.Cells, out.Targets, out.Moved = reallocate(cells, cands, pol.ratio, row)
	return out, nil
}

// jumpTarget picks the most suitable unoccupied tile within the jump range,
// ignoring region boundaries. The tile must reach minSuit, the same bar the
// mode sets for ordinary candidates. Medium-incompatible tiles score 0 and
// are never picked.
func (e *Engine) jumpTarget(w *world.World, s *species.Species, prof species.Profile, row []float64, minSuit float64, origin []int, occupied map[int]bool, chosen []candidate) (candidate, bool) {
	mult := e.params.JumpRangeMultiplier
	if mult <= 0 {
		mult = 1
	}
	reach := max(1, int(math.Ceil(float64(prof.MovementRange)*mult)))
	taken := make(map[int]bool, len(chosen))
	for _, c := range chosen {
		taken[c.tile] = true
	}

	dist := w.DistanceField(origin, reach, nil)
	best := candidate{tile: -1}
	for id, d := range dist {
		if d < 1 || occupied[id] || taken[id] {
			continue
		}
		if suit := row[id]; suit >= minSuit && suit > 0 && suit > best.score {
			best = candidate{tile: id, score: suit, jump: true}
		}
	}
	if best.tile < 0 {
		return best, false
	}
	e.logger.Debug("dispersal jump", "species", s.ID, "tile", best.tile)
	return best, true
}

// rankCandidates sorts by score descending, ties by tile id.
func rankCandidates(cands []candidate) {
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].score != cands[j].score {
			return cands[i].score > cands[j].score
		}
		return cands[i].tile < cands[j].tile
	})
}

// reallocate moves ratio of every origin share to the targets in proportion
// to their scores. The last target receives the remainder so the total share
// is unchanged.
func reallocate(cells []Cell, cands []candidate, ratio float64, row []float64) ([]Cell, []Target, float64) {
	next := make([]Cell, 0, len(cells)+len(cands))
	moved := 0.0
	for _, c := range cells {
		keep := c.Share * (1 - ratio)
		moved += c.Share - keep
		next = append(next, Cell{Tile: c.Tile, Share: keep, Suitability: row[c.Tile]})
	}

	sum := 0.0
	for _, c := range cands {
		sum += c.score
	}

	targets := make([]Target, len(cands))
	given := 0.0
	for i, c := range cands {
		share := moved * c.score / sum
		if i == len(cands)-1 {
			share = math.Max(0, moved-given)
		}
		given += share
		targets[i] = Target{Tile: c.tile, Score: c.score, Share: share, Jump: c.jump}
		next = append(next, Cell{Tile: c.tile, Share: share, Suitability: row[c.tile]})
	}
	sortCells(next)
	return next, targets, moved
}

// speciesRNG derives an independent source per (seed, turn, species).
func speciesRNG(seed int64, turn, id int) *rand.Rand {
	h := uint64(seed)*0x9E3779B97F4A7C15 ^ uint64(turn)*0xBF58476D1CE4E5B9 ^ uint64(id)*0x94D049BB133111EB
	h ^= h >> 31
	h *= 0x94D049BB133111EB
	h ^= h >> 29
	return rand.New(rand.NewSource(int64(h)))
}
