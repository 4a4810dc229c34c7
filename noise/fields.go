package noise

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/habitat/parallel"
)

// octaveSeedStride separates per-octave permutation tables.
const octaveSeedStride = 7919

// Fractal sums octaves layers of gradient noise at increasing frequency and
// decreasing amplitude, then min-max normalizes to [0, 1]. The result is a
// row-major width*height field.
//
// baseScale is the number of noise cycles around the x circumference at the
// first octave. Each octave's x period is rounded to a whole number of cycles
// so the field tiles seamlessly at x=0/x=width.
func Fractal(width, height, octaves int, persistence, lacunarity, baseScale float64, seed int64) []float64 {
	field := make([]float64, width*height)
	if width <= 0 || height <= 0 || octaves <= 0 {
		return field
	}

	sources := octaveSources(octaves, seed)
	amp := 1.0
	freq := baseScale
	for o := 0; o < octaves; o++ {
		accumulate(field, width, height, sources[o], freq, amp, func(n float64) float64 { return n })
		amp *= persistence
		freq *= lacunarity
	}

	Normalize(field)
	return field
}

// Ridge layers gradient noise like Fractal, but each layer is transformed as
// (1 - |n|)^2 before summation, producing sharp linear ridges. Persistence is
// fixed at 0.5 and lacunarity at 2.
func Ridge(width, height, octaves int, baseScale float64, seed int64) []float64 {
	field := make([]float64, width*height)
	if width <= 0 || height <= 0 || octaves <= 0 {
		return field
	}

	sources := octaveSources(octaves, seed)
	amp := 1.0
	freq := baseScale
	for o := 0; o < octaves; o++ {
		accumulate(field, width, height, sources[o], freq, amp, func(n float64) float64 {
			r := 1 - math.Abs(n)
			return r * r
		})
		amp *= 0.5
		freq *= 2
	}

	Normalize(field)
	return field
}

// Normalize rescales field in place to [0, 1]. A zero-variance field becomes
// a constant 0.5.
func Normalize(field []float64) {
	if len(field) == 0 {
		return
	}
	lo := floats.Min(field)
	hi := floats.Max(field)
	span := hi - lo
	if span < 1e-12 {
		for i := range field {
			field[i] = 0.5
		}
		return
	}
	floats.AddConst(-lo, field)
	floats.Scale(1/span, field)
}

func octaveSources(octaves int, seed int64) []*Perlin {
	sources := make([]*Perlin, octaves)
	for o := range sources {
		sources[o] = NewPerlin(seed + int64(o)*octaveSeedStride)
	}
	return sources
}

// accumulate adds amp*shape(noise) to every cell. Rows are independent, so
// they are computed in parallel.
func accumulate(field []float64, width, height int, src *Perlin, freq, amp float64, shape func(float64) float64) {
	period := cyclesFor(freq)
	cellsPerUnit := float64(period) / float64(width)

	parallel.For(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			ny := (clampRow(y, height) + 0.5) * cellsPerUnit
			row := field[y*width : (y+1)*width]
			for x := range row {
				nx := (float64(x) + 0.5) * cellsPerUnit
				row[x] += amp * shape(src.Gradient(nx, ny, period))
			}
		}
	})
}

// cyclesFor rounds a frequency to a whole number of cycles around x.
func cyclesFor(freq float64) int {
	p := int(math.Round(freq))
	if p < 1 {
		p = 1
	}
	return p
}

func clampRow(y, height int) float64 {
	if y < 0 {
		return 0
	}
	if y > height-1 {
		return float64(height - 1)
	}
	return float64(y)
}
