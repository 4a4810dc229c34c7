// Package noise provides seed-reproducible 2D scalar fields used as terrain
// building blocks. All fields wrap along x (the world is a cylinder) and clamp
// along y.
package noise

import (
	"math"
	"math/rand"
)

// Perlin generates coherent gradient noise from a seeded permutation table.
// A Perlin value is immutable after construction and safe for concurrent use.
type Perlin struct {
	perm [512]int
}

// NewPerlin creates a new Perlin noise generator.
func NewPerlin(seed int64) *Perlin {
	p := &Perlin{}
	rng := rand.New(rand.NewSource(seed))

	// Initialize permutation table
	var perm [256]int
	for i := range perm {
		perm[i] = i
	}

	// Shuffle
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}

	// Duplicate
	for i := 0; i < 256; i++ {
		p.perm[i] = perm[i]
		p.perm[i+256] = perm[i]
	}

	return p
}

// Gradient returns a noise value in [-1, 1] for 2D coordinates.
// When period > 0 the lattice repeats every period units along x, so
// Gradient(x, y, p) == Gradient(x+p, y, p).
func (p *Perlin) Gradient(x, y float64, period int) float64 {
	fx0 := math.Floor(x)
	fy0 := math.Floor(y)

	xi0 := int(fx0)
	xi1 := xi0 + 1
	if period > 0 {
		xi0 = modInt(xi0, period)
		xi1 = modInt(xi1, period)
	}
	yi0 := int(fy0)

	X0 := xi0 & 255
	X1 := xi1 & 255
	Y0 := yi0 & 255
	Y1 := (yi0 + 1) & 255

	// Relative position in cell
	x -= fx0
	y -= fy0

	u := fade(x)
	v := fade(y)

	g00 := grad2D(p.perm[p.perm[X0]+Y0], x, y)
	g10 := grad2D(p.perm[p.perm[X1]+Y0], x-1, y)
	g01 := grad2D(p.perm[p.perm[X0]+Y1], x, y-1)
	g11 := grad2D(p.perm[p.perm[X1]+Y1], x-1, y-1)

	n := lerp(v, lerp(u, g00, g10), lerp(u, g01, g11))
	return clamp(n, -1, 1)
}

// GradientNoise evaluates a single gradient-noise sample for the given seed.
// Prefer NewPerlin when sampling many points with the same seed.
func GradientNoise(x, y float64, period int, seed int64) float64 {
	return NewPerlin(seed).Gradient(x, y, period)
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad2D(hash int, x, y float64) float64 {
	switch hash & 7 {
	case 0:
		return x + y
	case 1:
		return -x + y
	case 2:
		return x - y
	case 3:
		return -x - y
	case 4:
		return x
	case 5:
		return -x
	case 6:
		return y
	default:
		return -y
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func modInt(a, m int) int {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
