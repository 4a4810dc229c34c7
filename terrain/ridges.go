package terrain

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/habitat/noise"
)

// edgeField returns the normalized gradient magnitude of field, which is high
// along continental margins.
func edgeField(field []float64, width, height int) []float64 {
	out := make([]float64, len(field))
	for y := 0; y < height; y++ {
		up := max(y-1, 0)
		down := min(y+1, height-1)
		for x := 0; x < width; x++ {
			left := (x - 1 + width) % width
			right := (x + 1) % width
			gx := field[y*width+right] - field[y*width+left]
			gy := field[down*width+x] - field[up*width+x]
			out[y*width+x] = math.Hypot(gx, gy)
		}
	}
	noise.Normalize(out)
	return out
}

// mountainField modulates ridged noise by continental margin strength so
// ranges follow coastlines.
func mountainField(cfg Config, seed int64, continents []float64) []float64 {
	ridges := noise.Ridge(cfg.Width, cfg.Height, 5, cfg.MountainScale, seed)
	edges := edgeField(continents, cfg.Width, cfg.Height)
	for i := range ridges {
		ridges[i] *= 0.4 + 0.6*edges[i]
	}
	return ridges
}

const ridgeRadius = 3.0

// midOceanRidges traces jittered random walks through deep water and stamps
// (1 - d/r)^2 bumps along them. Walks start where continents is low; if no
// such start is found the ridge is skipped.
func midOceanRidges(rng *rand.Rand, cfg Config, continents []float64) []float64 {
	W, H := cfg.Width, cfg.Height
	field := make([]float64, W*H)
	count := cfg.MidOceanRidges.Pick(rng)

	for k := 0; k < count; k++ {
		x, y, ok := oceanStart(rng, W, H, continents)
		if !ok {
			continue
		}
		heading := math.Pi/2 + (rng.Float64()-0.5)*0.6
		if rng.Intn(2) == 0 {
			heading += math.Pi
		}
		base := heading
		for step := 0; step < 3*H; step++ {
			stampBump(field, W, H, x, y)
			heading += (rng.Float64() - 0.5) * 0.5
			heading = heading*0.9 + base*0.1
			x += math.Cos(heading)
			y += math.Sin(heading)
			if y < 0 || y >= float64(H) {
				break
			}
		}
	}
	return field
}

func oceanStart(rng *rand.Rand, W, H int, continents []float64) (float64, float64, bool) {
	for attempt := 0; attempt < 32; attempt++ {
		x := rng.Intn(W)
		y := int(float64(H) * (0.1 + 0.8*rng.Float64()))
		if continents[y*W+x] < 0.2 {
			return float64(x) + 0.5, float64(y) + 0.5, true
		}
	}
	return 0, 0, false
}

func stampBump(field []float64, W, H int, cx, cy float64) {
	r := int(math.Ceil(ridgeRadius))
	ix, iy := int(math.Floor(cx)), int(math.Floor(cy))
	for dy := -r; dy <= r; dy++ {
		y := iy + dy
		if y < 0 || y >= H {
			continue
		}
		for dx := -r; dx <= r; dx++ {
			px := float64(ix+dx) + 0.5
			py := float64(y) + 0.5
			d := math.Hypot(px-cx, py-cy)
			if d >= ridgeRadius {
				continue
			}
			v := (1 - d/ridgeRadius) * (1 - d/ridgeRadius)
			i := y*W + ((ix+dx)%W+W)%W
			if v > field[i] {
				field[i] = v
			}
		}
	}
}
