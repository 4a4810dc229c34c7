package world

// Unreached marks tiles a distance field did not reach.
const Unreached = -1

// DistanceField runs a multi-source breadth-first search over hex neighbors
// and returns the step count from the nearest source for every tile, or
// Unreached. Search stops expanding at maxDist (negative means unlimited).
// passable, if non-nil, restricts which tiles may be entered.
func (w *World) DistanceField(sources []int, maxDist int, passable func(id int) bool) []int {
	dist := make([]int, len(w.Tiles))
	for i := range dist {
		dist[i] = Unreached
	}

	queue := make([]int, 0, len(sources))
	for _, s := range sources {
		if !w.Contains(s) || dist[s] != Unreached {
			continue
		}
		dist[s] = 0
		queue = append(queue, s)
	}

	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		if maxDist >= 0 && dist[cur] >= maxDist {
			continue
		}
		for _, n := range w.Tiles[cur].Neighbors {
			if dist[n] != Unreached {
				continue
			}
			if passable != nil && !passable(n) {
				continue
			}
			dist[n] = dist[cur] + 1
			queue = append(queue, n)
		}
	}
	return dist
}
