package terrain

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/pthm-cable/habitat/world"
)

// Post-processing carves islands and coastal variety into a finished height
// field. Each category draws its candidates from the current world and skips
// itself when there are none.

// referenceArea is the tile count at which feature counts are used as-is.
const referenceArea = 256 * 128

// localSearchRadius bounds the water search when a carved tile recomputes its
// climate.
const localSearchRadius = 12

type carver struct {
	w      *world.World
	rng    *rand.Rand
	logger *slog.Logger
	scale  float64

	landBudget  int // water→land flips remaining
	waterBudget int // land→water flips remaining
	claimed     int
}

func newCarver(w *world.World, rng *rand.Rand, logger *slog.Logger, budget float64) *carver {
	n := len(w.Tiles)
	allowance := int(math.Max(0, budget) * float64(n))
	return &carver{
		w:           w,
		rng:         rng,
		logger:      logger,
		scale:       clamp(float64(n)/referenceArea, 0.25, 4),
		landBudget:  allowance,
		waterBudget: allowance,
	}
}

func (c *carver) run(f FeatureCounts) {
	c.volcanicArcs(c.count(f.VolcanicArcs))
	c.archipelagos(c.count(f.Archipelagos))
	c.shelfIslands(c.count(f.ShelfIslands))
	c.seamounts(c.count(f.Seamounts))
	c.atolls(c.count(f.Atolls))
	c.bays(c.count(f.Bays))
	c.peninsulas(c.count(f.Peninsulas))
	c.inlandSeas(c.count(f.InlandSeas))

	c.logger.Debug("terrain features carved",
		"tiles", c.claimed,
		"land_budget_left", c.landBudget,
		"water_budget_left", c.waterBudget,
	)
}

func (c *carver) count(r IntRange) int {
	n := r.Pick(c.rng)
	if n <= 0 {
		return 0
	}
	return max(1, int(math.Round(float64(n)*c.scale)))
}

func (c *carver) skip(feature, reason string) {
	c.logger.Debug("terrain feature skipped", "feature", feature, "reason", reason)
}

func (c *carver) isWater(id int) bool {
	return !c.w.Tiles[id].IsLand()
}

func (c *carver) isLand(id int) bool {
	return c.w.Tiles[id].IsLand()
}

func (c *carver) collect(keep func(t *world.Tile) bool) []int {
	var out []int
	for i := range c.w.Tiles {
		if keep(&c.w.Tiles[i]) {
			out = append(out, i)
		}
	}
	return out
}

func (c *carver) pick(ids []int) *world.Tile {
	return &c.w.Tiles[ids[c.rng.Intn(len(ids))]]
}

// setElevation moves a tile to elev and recomputes its climate. Crossing sea
// level is charged against the matching budget; false means the budget is
// spent and nothing changed.
func (c *carver) setElevation(id int, elev float64) bool {
	t := &c.w.Tiles[id]
	wasLand := t.IsLand()
	switch isLand := elev >= 0; {
	case !wasLand && isLand:
		if c.landBudget <= 0 {
			return false
		}
		c.landBudget--
	case wasLand && !isLand:
		if c.waterBudget <= 0 {
			return false
		}
		c.waterBudget--
	}
	t.Elevation = elev
	applyClimate(c.w, id, c.nearestWater(id))
	c.claimed++
	return true
}

// nearestWater returns the step distance to the closest water tile within
// localSearchRadius, or world.Unreached.
func (c *carver) nearestWater(id int) int {
	if c.isWater(id) {
		return 0
	}
	seen := map[int]bool{id: true}
	frontier := []int{id}
	for d := 1; d <= localSearchRadius && len(frontier) > 0; d++ {
		var next []int
		for _, cur := range frontier {
			for _, n := range c.w.Tiles[cur].Neighbors {
				if seen[n] {
					continue
				}
				if c.isWater(n) {
					return d
				}
				seen[n] = true
				next = append(next, n)
			}
		}
		frontier = next
	}
	return world.Unreached
}

// grow claims up to size tiles breadth-first from seed, visiting neighbors in
// random order. Only tiles accepted by ok are claimed. layers[i] is the BFS
// depth of ids[i].
func (c *carver) grow(seed, size int, ok func(id int) bool) (ids, layers []int) {
	if size <= 0 || !ok(seed) {
		return nil, nil
	}
	seen := map[int]bool{seed: true}
	ids = []int{seed}
	layers = []int{0}
	for head := 0; head < len(ids) && len(ids) < size; head++ {
		nb := c.w.Tiles[ids[head]].Neighbors
		for _, k := range c.rng.Perm(len(nb)) {
			n := nb[k]
			if seen[n] {
				continue
			}
			seen[n] = true
			if !ok(n) {
				continue
			}
			ids = append(ids, n)
			layers = append(layers, layers[head]+1)
			if len(ids) >= size {
				break
			}
		}
	}
	return ids, layers
}

// raiseIsland grows a land mass out of water around seed, peaking at the
// seed tile and sloping down to at least 1 m at the rim.
func (c *carver) raiseIsland(seed, size int, peak float64) int {
	ids, layers := c.grow(seed, size, c.isWater)
	if len(ids) == 0 {
		return 0
	}
	rim := float64(layers[len(layers)-1] + 1)
	raised := 0
	for i, id := range ids {
		elev := math.Max(1, peak*(1-float64(layers[i])/rim))
		if !c.setElevation(id, elev) {
			break
		}
		raised++
	}
	return raised
}

func (c *carver) volcanicArcs(n int) {
	starts := c.collect(func(t *world.Tile) bool { return t.Elevation < -3000 })
	if len(starts) == 0 {
		c.skip("volcanic arcs", "no deep ocean")
		return
	}
	for k := 0; k < n; k++ {
		start := c.pick(starts)
		x, y := float64(start.X), float64(start.Y)
		heading := c.rng.Float64() * 2 * math.Pi
		islands := 6 + c.rng.Intn(7)
		for i := 0; i < islands; i++ {
			id := c.w.Index(int(math.Round(x)), int(math.Round(y)))
			if id < 0 {
				break
			}
			if c.isWater(id) {
				c.raiseIsland(id, 2+c.rng.Intn(5), 300+c.rng.Float64()*1200)
			}
			heading += (c.rng.Float64() - 0.5) * 0.8
			step := 3 + c.rng.Float64()*2
			x += math.Cos(heading) * step
			y += math.Sin(heading) * step
		}
	}
}

func (c *carver) archipelagos(n int) {
	centers := c.collect(func(t *world.Tile) bool { return t.Elevation > -4000 && t.Elevation < -200 })
	if len(centers) == 0 {
		c.skip("archipelagos", "no mid-depth ocean")
		return
	}
	for k := 0; k < n; k++ {
		center := c.pick(centers)
		islands := 5 + c.rng.Intn(6)
		for i := 0; i < islands; i++ {
			r := 2 + c.rng.Float64()*6
			theta := c.rng.Float64() * 2 * math.Pi
			id := c.w.Index(
				int(math.Round(float64(center.X)+r*math.Cos(theta))),
				int(math.Round(float64(center.Y)+r*math.Sin(theta))),
			)
			if id < 0 || !c.isWater(id) {
				continue
			}
			c.raiseIsland(id, 1+c.rng.Intn(4), 50+c.rng.Float64()*350)
		}
	}
}

func (c *carver) shelfIslands(n int) {
	var land []int
	for i := range c.w.Tiles {
		if c.isLand(i) {
			land = append(land, i)
		}
	}
	toLand := c.w.DistanceField(land, 4, nil)
	candidates := c.collect(func(t *world.Tile) bool {
		d := toLand[t.ID]
		return t.Elevation >= -200 && t.Elevation < 0 && d >= 2
	})
	if len(candidates) == 0 {
		c.skip("shelf islands", "no shelf near coastline")
		return
	}
	for k := 0; k < n; k++ {
		c.raiseIsland(c.pick(candidates).ID, 1+c.rng.Intn(5), 20+c.rng.Float64()*180)
	}
}

// seamounts raise submerged peaks that always stay below sea level.
func (c *carver) seamounts(n int) {
	candidates := c.collect(func(t *world.Tile) bool { return t.Elevation < -4000 })
	if len(candidates) == 0 {
		c.skip("seamounts", "no abyssal ocean")
		return
	}
	for k := 0; k < n; k++ {
		ids, layers := c.grow(c.pick(candidates).ID, 3+c.rng.Intn(5), c.isWater)
		peak := -(300 + c.rng.Float64()*1200)
		for i, id := range ids {
			elev := math.Min(peak-float64(layers[i])*600, maxOceanElevation)
			if elev > c.w.Tiles[id].Elevation {
				c.setElevation(id, elev)
			}
		}
	}
}

// atolls ring a shallow lagoon with low land in tropical water.
func (c *carver) atolls(n int) {
	candidates := c.collect(func(t *world.Tile) bool {
		if t.Elevation >= 0 || t.Elevation < -1000 || len(t.Neighbors) != 6 {
			return false
		}
		if math.Abs(c.w.Latitude(t.Y))*90 >= 25 {
			return false
		}
		for _, nb := range t.Neighbors {
			if c.isLand(nb) {
				return false
			}
		}
		return true
	})
	if len(candidates) == 0 {
		c.skip("atolls", "no open tropical shallows")
		return
	}
	for k := 0; k < n; k++ {
		center := c.pick(candidates)
		c.setElevation(center.ID, -(5 + c.rng.Float64()*20))
		for _, nb := range center.Neighbors {
			if c.isWater(nb) && !c.setElevation(nb, 2+c.rng.Float64()*3) {
				return
			}
		}
	}
}

// heading returns the unit vector from tile a toward tile b, honoring the wrap.
func (c *carver) heading(a, b *world.Tile) (float64, float64) {
	dx := wrapDelta(float64(b.X-a.X), float64(c.w.Width))
	dy := float64(b.Y - a.Y)
	l := math.Hypot(dx, dy)
	if l == 0 {
		return 0, 0
	}
	return dx / l, dy / l
}

// coastal returns land (or water) tiles bordering the other medium.
func (c *carver) coastal(land bool) []int {
	return c.collect(func(t *world.Tile) bool {
		if t.IsLand() != land {
			return false
		}
		for _, nb := range t.Neighbors {
			if c.isLand(nb) != land {
				return true
			}
		}
		return false
	})
}

func (c *carver) oppositeNeighbor(t *world.Tile) *world.Tile {
	var opts []int
	for _, nb := range t.Neighbors {
		if c.isLand(nb) != t.IsLand() {
			opts = append(opts, nb)
		}
	}
	if len(opts) == 0 {
		return nil
	}
	return &c.w.Tiles[opts[c.rng.Intn(len(opts))]]
}

// bays flood land inward from the coast along a direction vector.
func (c *carver) bays(n int) {
	candidates := c.coastal(true)
	if len(candidates) == 0 {
		c.skip("bays", "no coastline")
		return
	}
	for k := 0; k < n; k++ {
		start := c.pick(candidates)
		if !start.IsLand() {
			continue
		}
		from := c.oppositeNeighbor(start)
		if from == nil {
			continue
		}
		dx, dy := c.heading(from, start)
		x, y := float64(start.X), float64(start.Y)
		length := 3 + c.rng.Intn(6)
		for i := 0; i < length; i++ {
			id := c.w.Index(int(math.Round(x)), int(math.Round(y)))
			if id < 0 {
				break
			}
			if c.isLand(id) && !c.setElevation(id, -(5+c.rng.Float64()*55)) {
				return
			}
			if i < length/2 {
				nb := c.w.Tiles[id].Neighbors
				side := nb[c.rng.Intn(len(nb))]
				if c.isLand(side) && !c.setElevation(side, -(5+c.rng.Float64()*30)) {
					return
				}
			}
			x += dx
			y += dy
		}
	}
}

// peninsulas raise a tapering strip of shallow ocean outward from the coast.
func (c *carver) peninsulas(n int) {
	candidates := c.collect(func(t *world.Tile) bool { return t.Elevation > -1000 && t.Elevation < 0 })
	coast := make(map[int]bool)
	for _, id := range c.coastal(false) {
		coast[id] = true
	}
	var starts []int
	for _, id := range candidates {
		if coast[id] {
			starts = append(starts, id)
		}
	}
	if len(starts) == 0 {
		c.skip("peninsulas", "no shallow water on a coastline")
		return
	}
	for k := 0; k < n; k++ {
		start := c.pick(starts)
		if start.IsLand() {
			continue
		}
		from := c.oppositeNeighbor(start)
		if from == nil {
			continue
		}
		dx, dy := c.heading(from, start)
		x, y := float64(start.X), float64(start.Y)
		length := 4 + c.rng.Intn(7)
		for i := 0; i < length; i++ {
			id := c.w.Index(int(math.Round(x)), int(math.Round(y)))
			if id < 0 {
				break
			}
			elev := 5 + 195*(1-float64(i)/float64(length))
			if c.isWater(id) && !c.setElevation(id, elev) {
				return
			}
			x += dx
			y += dy
		}
	}
}

// inlandSeas flood-fill a low pocket well away from the coast.
func (c *carver) inlandSeas(n int) {
	dist := oceanDistances(c.w)
	candidates := c.collect(func(t *world.Tile) bool {
		return t.IsLand() && t.Elevation < 800 && dist[t.ID] >= 6
	})
	if len(candidates) == 0 {
		c.skip("inland seas", "no deep interior lowland")
		return
	}
	for k := 0; k < n; k++ {
		start := c.pick(candidates)
		if !start.IsLand() {
			continue
		}
		ceiling := start.Elevation + 150
		ids, _ := c.grow(start.ID, 10+c.rng.Intn(31), func(id int) bool {
			t := &c.w.Tiles[id]
			return t.IsLand() && t.Elevation <= ceiling && dist[id] >= 2
		})
		for _, id := range ids {
			if !c.setElevation(id, -(20 + c.rng.Float64()*130)) {
				return
			}
		}
	}
}
