// Package ecosystem drives turns: it keeps per-species state in an ECS world,
// scores species against the tile grid, runs dispersal and hands the new
// occupancy to sinks.
package ecosystem

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/habitat/dispersal"
	"github.com/pthm-cable/habitat/species"
	"github.com/pthm-cable/habitat/suitability"
	"github.com/pthm-cable/habitat/world"
)

// Turn phases reported to the Timer.
const (
	PhaseSnapshot    = "snapshot"
	PhasePrey        = "prey"
	PhaseSuitability = "suitability"
	PhaseFounders    = "founders"
	PhaseDispersal   = "dispersal"
	PhaseApply       = "apply"
	PhaseSinks       = "sinks"
)

// Sink receives the full occupancy after every turn.
type Sink interface {
	Persist(turn int, records []dispersal.Record) error
}

// Timer receives turn and phase boundaries.
type Timer interface {
	StartTick()
	StartPhase(name string)
	EndTick()
}

// Sim owns the tile grid reference, the species registry and the ECS world
// holding species state.
type Sim struct {
	world    *world.World
	registry *species.Registry

	ecs      *ecs.World
	mapper   *ecs.Map4[Identity, Population, Range, Status]
	filter   *ecs.Filter4[Identity, Population, Range, Status]
	popMap   *ecs.Map1[Population]
	rangeMap *ecs.Map1[Range]
	entities map[int]ecs.Entity

	scorer    *suitability.Engine
	disperser *dispersal.Engine
	cache     *suitability.Cache
	prey      PreyProvider
	sinks     []Sink
	timer     Timer
	logger    *slog.Logger

	turn        int
	tileVersion uint64
}

// Option configures a Sim.
type Option func(*Sim)

// WithSuitability sets the scoring engine.
func WithSuitability(e *suitability.Engine) Option { return func(s *Sim) { s.scorer = e } }

// WithDispersal sets the dispersal engine.
func WithDispersal(e *dispersal.Engine) Option { return func(s *Sim) { s.disperser = e } }

// WithCache shares a score cache with the caller.
func WithCache(c *suitability.Cache) Option { return func(s *Sim) { s.cache = c } }

// WithPreyProvider replaces the default trophic stand-in.
func WithPreyProvider(p PreyProvider) Option { return func(s *Sim) { s.prey = p } }

// WithSink adds an occupancy sink.
func WithSink(k Sink) Option { return func(s *Sim) { s.sinks = append(s.sinks, k) } }

// WithTimer reports turn phases to t.
func WithTimer(t Timer) Option { return func(s *Sim) { s.timer = t } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Sim) { s.logger = l } }

// New creates a simulation over w. The registry may already hold species;
// each gets an entity spread evenly over its Tiles.
func New(w *world.World, reg *species.Registry, opts ...Option) *Sim {
	ew := ecs.NewWorld()
	s := &Sim{
		world:    w,
		registry: reg,
		ecs:      ew,
		mapper:   ecs.NewMap4[Identity, Population, Range, Status](ew),
		filter:   ecs.NewFilter4[Identity, Population, Range, Status](ew),
		popMap:   ecs.NewMap1[Population](ew),
		rangeMap: ecs.NewMap1[Range](ew),
		entities: make(map[int]ecs.Entity),
		prey:     LowerTrophicDensity{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.scorer == nil {
		s.scorer = suitability.NewEngine(suitability.DefaultWeights(), suitability.WithLogger(s.logger))
	}
	if s.disperser == nil {
		s.disperser = dispersal.NewEngine(dispersal.DefaultParams(), dispersal.WithLogger(s.logger))
	}
	if s.cache == nil {
		s.cache = suitability.NewCache()
	}
	if reg == nil {
		s.registry = species.NewRegistry()
	}
	for _, sp := range s.registry.All() {
		s.spawn(sp)
	}
	return s
}

func (s *Sim) spawn(sp *species.Species) {
	id := Identity{SpeciesID: sp.ID}
	pop := Population{Size: sp.Population, DeathRate: sp.DeathRate}
	rng := Range{Cells: dispersal.EvenCells(sp.Tiles)}
	st := Status{LastTurn: -1}
	s.entities[sp.ID] = s.mapper.NewEntity(&id, &pop, &rng, &st)
}

// World returns the current tile grid.
func (s *Sim) World() *world.World { return s.world }

// Registry returns the species registry.
func (s *Sim) Registry() *species.Registry { return s.registry }

// TurnIndex returns the index of the next turn.
func (s *Sim) TurnIndex() int { return s.turn }

// AddSpecies registers sp and creates its entity. Initial tiles must exist
// and suit the species' medium.
func (s *Sim) AddSpecies(sp species.Species) error {
	medium := sp.Profile().Medium
	for _, t := range sp.Tiles {
		if !s.world.Contains(t) {
			return fmt.Errorf("species %d tile %d: %w", sp.ID, t, world.ErrUnknownTile)
		}
		if !fits(s.world, medium, t) {
			return fmt.Errorf("species %d (%s) on tile %d: %w", sp.ID, medium, t, suitability.ErrIncompatibleMedium)
		}
	}
	if err := s.registry.Add(sp); err != nil {
		return err
	}
	stored, err := s.registry.Get(sp.ID)
	if err != nil {
		return err
	}
	s.spawn(stored)
	return nil
}

// RemoveSpecies drops a species and its entity.
func (s *Sim) RemoveSpecies(id int) error {
	if err := s.registry.Remove(id); err != nil {
		return err
	}
	s.ecs.RemoveEntity(s.entities[id])
	delete(s.entities, id)
	return nil
}

// SetPopulation updates a species' size and death rate, as reported by the
// population-dynamics layer.
func (s *Sim) SetPopulation(id int, size, deathRate float64) error {
	e, ok := s.entities[id]
	if !ok {
		return fmt.Errorf("species %d: %w", id, species.ErrUnknownSpecies)
	}
	pop := s.popMap.Get(e)
	pop.Size = size
	pop.DeathRate = deathRate
	return nil
}

// Occupancy returns a copy of a species' current cells.
func (s *Sim) Occupancy(id int) ([]dispersal.Cell, error) {
	e, ok := s.entities[id]
	if !ok {
		return nil, fmt.Errorf("species %d: %w", id, species.ErrUnknownSpecies)
	}
	return append([]dispersal.Cell(nil), s.rangeMap.Get(e).Cells...), nil
}

// SetWorld swaps in a new grid, such as one reclassified for a new sea
// level. Tile identity must be unchanged; cached scores are invalidated.
//
// Shares left on tiles the species' medium now forbids move to the nearest
// tile it can live on. When no such tile exists anywhere the share is lost
// and the population shrinks with it; a species losing its whole range goes
// extinct.
func (s *Sim) SetWorld(w *world.World) error {
	if w.Len() != s.world.Len() {
		return fmt.Errorf("new world has %d tiles, want %d: %w", w.Len(), s.world.Len(), world.ErrUnknownTile)
	}
	s.world = w
	s.tileVersion++
	s.cache.Invalidate()

	for _, sp := range s.registry.All() {
		e, ok := s.entities[sp.ID]
		if !ok {
			continue
		}
		_, pop, rng, _ := s.mapper.Get(e)
		before := dispersal.TotalShare(rng.Cells)
		cells, moved, lost := relocate(w, sp.Profile().Medium, rng.Cells)
		if moved == 0 && lost == 0 {
			continue
		}
		if lost > 0 {
			kept := before - lost
			if kept <= 0 {
				s.logger.Warn("species extinct after reclassification", "species", sp.ID, "lost", lost)
				pop.Size = 0
				rng.Cells = nil
				continue
			}
			pop.Size *= kept / before
			for i := range cells {
				cells[i].Share *= before / kept
			}
			s.logger.Info("range lost to reclassification", "species", sp.ID, "lost", lost)
		}
		if moved > 0 {
			s.logger.Info("stranded range relocated", "species", sp.ID, "moved", moved)
		}
		rng.Cells = cells
	}
	return nil
}

func fits(w *world.World, medium species.Medium, tile int) bool {
	return !suitability.Incompatible(medium, !w.Tiles[tile].IsLand())
}

// relocate moves every share on a tile medium forbids to the nearest allowed
// tile, lowest id first on ties, merging into cells already held there.
// Shares with nowhere to go are returned as lost.
func relocate(w *world.World, medium species.Medium, cells []dispersal.Cell) ([]dispersal.Cell, float64, float64) {
	byTile := make(map[int]dispersal.Cell, len(cells))
	var stranded []dispersal.Cell
	for _, c := range cells {
		if fits(w, medium, c.Tile) {
			byTile[c.Tile] = c
		} else {
			stranded = append(stranded, c)
		}
	}
	if len(stranded) == 0 {
		return cells, 0, 0
	}

	moved, lost := 0.0, 0.0
	for _, c := range stranded {
		dist := w.DistanceField([]int{c.Tile}, -1, nil)
		best := -1
		for id, d := range dist {
			if d > 0 && fits(w, medium, id) && (best < 0 || d < dist[best]) {
				best = id
			}
		}
		if best < 0 {
			lost += c.Share
			continue
		}
		dst := byTile[best]
		dst.Tile = best
		dst.Share += c.Share
		byTile[best] = dst
		moved += c.Share
	}

	out := make([]dispersal.Cell, 0, len(byTile))
	for _, c := range byTile {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tile < out[j].Tile })
	return out, moved, lost
}

// snapshot copies species state out of the ECS world. Each species is a
// copy of its registry entry carrying the current population.
func (s *Sim) snapshot() ([]*species.Species, map[int][]dispersal.Cell, error) {
	occ := make(map[int][]dispersal.Cell, len(s.entities))
	pops := make(map[int]Population, len(s.entities))

	query := s.filter.Query()
	for query.Next() {
		id, pop, rng, _ := query.Get()
		occ[id.SpeciesID] = append([]dispersal.Cell(nil), rng.Cells...)
		pops[id.SpeciesID] = *pop
	}

	reg := s.registry.All()
	list := make([]*species.Species, 0, len(reg))
	for _, sp := range reg {
		pop, ok := pops[sp.ID]
		if !ok {
			return nil, nil, fmt.Errorf("species %d has no entity: %w", sp.ID, species.ErrUnknownSpecies)
		}
		cp := *sp
		cp.Population = pop.Size
		cp.DeathRate = pop.DeathRate
		cp.Tiles = dispersal.Tiles(occ[sp.ID])
		list = append(list, &cp)
	}
	return list, occ, nil
}

// Turn runs one full turn: snapshot, prey fields, suitability, founder
// placement, dispersal, apply and sinks.
func (s *Sim) Turn() (*TurnReport, error) {
	s.startTick()
	defer s.endTick()

	s.phase(PhaseSnapshot)
	list, occ, err := s.snapshot()
	if err != nil {
		return nil, err
	}

	s.phase(PhasePrey)
	prey := s.prey.PreyFields(s.world, list, occ)

	s.phase(PhaseSuitability)
	key := suitability.CacheKey{
		SpeciesVersion: s.registry.Version(),
		TileVersion:    s.tileVersion,
		Turn:           s.turn,
	}
	scores, err := s.cache.GetOrCompute(key, func() (*suitability.Matrix, error) {
		return s.scorer.Compute(list, s.world, prey)
	})
	if err != nil {
		return nil, fmt.Errorf("turn %d: suitability: %w", s.turn, err)
	}

	s.phase(PhaseFounders)
	founded, err := s.placeFounders(list, occ, scores)
	if err != nil {
		return nil, err
	}

	s.phase(PhaseDispersal)
	res, err := s.disperser.Disperse(dispersal.Input{
		World:     s.world,
		Scores:    scores,
		Species:   list,
		Occupancy: occ,
		Prey:      prey,
		Turn:      s.turn,
	})
	if err != nil {
		return nil, fmt.Errorf("turn %d: dispersal: %w", s.turn, err)
	}

	s.phase(PhaseApply)
	report := s.apply(res, founded)

	s.phase(PhaseSinks)
	for _, k := range s.sinks {
		if err := k.Persist(s.turn, report.Records); err != nil {
			return nil, fmt.Errorf("turn %d: persist: %w", s.turn, err)
		}
	}

	s.logger.Info("turn complete", "turn", s.turn, "report", report)
	s.turn++
	return report, nil
}

// placeFounders seeds every living species without tiles on its
// best-scoring tile.
func (s *Sim) placeFounders(list []*species.Species, occ map[int][]dispersal.Cell, scores *suitability.Matrix) (map[int]bool, error) {
	founded := make(map[int]bool)
	for _, sp := range list {
		if len(occ[sp.ID]) > 0 || sp.Population <= 0 {
			continue
		}
		tile, score, err := scores.Best(sp.ID)
		if err != nil {
			return nil, err
		}
		if tile < 0 {
			s.logger.Info("no habitable tile for founder", "species", sp.ID)
			continue
		}
		occ[sp.ID] = []dispersal.Cell{{Tile: tile, Share: 1, Suitability: score}}
		sp.Tiles = []int{tile}
		founded[sp.ID] = true
		s.logger.Debug("founder placed", "species", sp.ID, "tile", tile, "suitability", score)
	}
	return founded, nil
}

// apply writes dispersal outcomes back into the ECS world.
func (s *Sim) apply(res *dispersal.Result, founded map[int]bool) *TurnReport {
	report := &TurnReport{Turn: res.Turn, Records: res.Records(), Founded: len(founded)}
	occupied := make(map[int]bool)
	for _, o := range res.Outcomes {
		e, ok := s.entities[o.SpeciesID]
		if !ok {
			continue
		}
		_, _, rng, st := s.mapper.Get(e)
		rng.Cells = o.Cells
		*st = Status{
			Mode:      o.Mode,
			Dispersed: o.Dispersed,
			Targets:   len(o.Targets),
			LastTurn:  res.Turn,
			Founded:   st.Founded || founded[o.SpeciesID],
		}

		report.Species++
		if o.Dispersed {
			report.Dispersed++
			report.Modes[o.Mode]++
		}
		for _, c := range o.Cells {
			occupied[c.Tile] = true
		}
	}
	report.OccupiedTiles = len(occupied)
	return report
}

func (s *Sim) startTick() {
	if s.timer != nil {
		s.timer.StartTick()
	}
}

func (s *Sim) phase(name string) {
	if s.timer != nil {
		s.timer.StartPhase(name)
	}
}

func (s *Sim) endTick() {
	if s.timer != nil {
		s.timer.EndTick()
	}
}

// TurnReport summarizes one turn.
type TurnReport struct {
	Turn          int
	Species       int
	Dispersed     int
	Founded       int
	Modes         [4]int // dispersing species per dispersal.Mode
	OccupiedTiles int
	Records       []dispersal.Record
}

// LogValue implements slog.LogValuer.
func (r *TurnReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("species", r.Species),
		slog.Int("dispersed", r.Dispersed),
		slog.Int("founded", r.Founded),
		slog.Int("passive", r.Modes[dispersal.Passive]),
		slog.Int("pressure", r.Modes[dispersal.PressureDriven]),
		slog.Int("overflow", r.Modes[dispersal.Overflow]),
		slog.Int("prey_tracking", r.Modes[dispersal.PreyTracking]),
		slog.Int("occupied_tiles", r.OccupiedTiles),
	)
}
