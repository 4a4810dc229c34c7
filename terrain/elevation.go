package terrain

import "gonum.org/v1/gonum/floats"

// Elevation bands in meters. Each band maps the part of the normalized rank
// up to upTo linearly onto [lo, hi].
type band struct {
	upTo, lo, hi float64
}

var (
	oceanBands = []band{
		{upTo: 0.05, lo: -11000, hi: -6000}, // trenches
		{upTo: 0.85, lo: -6000, hi: -200},   // abyss and slope
		{upTo: 1.00, lo: -200, hi: 0},       // shelf
	}
	landBands = []band{
		{upTo: 0.55, lo: 0, hi: 300},
		{upTo: 0.80, lo: 300, hi: 1000},
		{upTo: 0.95, lo: 1000, hi: 3000},
		{upTo: 1.00, lo: 3000, hi: 5000},
	}
)

// maxOceanElevation keeps every ocean-ranked tile strictly below sea level.
const maxOceanElevation = -1

// PercentileRanks returns (rank + 0.5) / n for each value, where rank is the
// position in ascending order. Ties are ordered by index.
func PercentileRanks(field []float64) []float64 {
	n := len(field)
	sorted := make([]float64, n)
	copy(sorted, field)
	inds := make([]int, n)
	floats.ArgsortStable(sorted, inds)

	ranks := make([]float64, n)
	for r, idx := range inds {
		ranks[idx] = (float64(r) + 0.5) / float64(n)
	}
	return ranks
}

// ElevationForRank maps a percentile rank p in (0, 1) to meters. Ranks below
// oceanRatio become ocean, the rest land. The mapping is non-decreasing in p.
func ElevationForRank(p, oceanRatio float64) float64 {
	if p < oceanRatio {
		e := mapBands(p/oceanRatio, oceanBands)
		if e > maxOceanElevation {
			e = maxOceanElevation
		}
		return e
	}
	return mapBands((p-oceanRatio)/(1-oceanRatio), landBands)
}

func mapBands(q float64, bands []band) float64 {
	q = clamp01(q)
	from := 0.0
	for _, b := range bands {
		if q <= b.upTo {
			t := 0.0
			if b.upTo > from {
				t = (q - from) / (b.upTo - from)
			}
			return b.lo + t*(b.hi-b.lo)
		}
		from = b.upTo
	}
	return bands[len(bands)-1].hi
}
