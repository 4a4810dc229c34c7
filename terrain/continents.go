package terrain

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/habitat/noise"
	"github.com/pthm-cable/habitat/parallel"
)

// blob is one warped, rotated, anisotropic Gaussian landmass seed.
type blob struct {
	cx, cy float64 // center in cell units
	sx, sy float64 // standard deviations along the rotated axes
	angle  float64
	amp    float64
	warp   float64 // displacement strength as a fraction of sx/sy
}

// latitudeWeight peaks at the equator and falls off toward the poles. The
// northern hemisphere (lat < 0) carries more land.
func latitudeWeight(lat float64) float64 {
	a := math.Abs(lat)
	w := 1 - math.Pow(a, 2.5)
	if lat < 0 {
		w *= 1.1
	} else {
		w *= 0.92
	}
	if a > 0.85 {
		w *= (1 - a) / 0.15
	}
	return clamp01(w)
}

func latitudeField(width, height int) []float64 {
	field := make([]float64, width*height)
	for y := 0; y < height; y++ {
		lat := (float64(y)+0.5)/float64(height)*2 - 1
		w := latitudeWeight(lat)
		for x := 0; x < width; x++ {
			field[y*width+x] = w
		}
	}
	return field
}

// placeContinents draws the major continents and minor landmasses.
func placeContinents(rng *rand.Rand, cfg Config) []blob {
	W := float64(cfg.Width)
	H := float64(cfg.Height)

	major := cfg.MajorContinents.Pick(rng)
	minor := cfg.MinorLandmasses.Pick(rng)
	blobs := make([]blob, 0, major+minor)

	for i := 0; i < major; i++ {
		sx := W * (0.06 + 0.06*rng.Float64())
		sy := math.Min(sx*(0.55+0.6*rng.Float64()), H*0.3)
		blobs = append(blobs, blob{
			cx:    rng.Float64() * W,
			cy:    H * (0.18 + 0.64*rng.Float64()),
			sx:    sx,
			sy:    sy,
			angle: rng.Float64() * math.Pi,
			amp:   1,
			warp:  0.5,
		})
	}
	for i := 0; i < minor; i++ {
		sx := W * (0.018 + 0.025*rng.Float64())
		sy := math.Min(sx*(0.6+0.8*rng.Float64()), H*0.15)
		blobs = append(blobs, blob{
			cx:    rng.Float64() * W,
			cy:    H * (0.1 + 0.8*rng.Float64()),
			sx:    sx,
			sy:    sy,
			angle: rng.Float64() * math.Pi,
			amp:   0.65,
			warp:  0.35,
		})
	}
	return blobs
}

// stampContinents evaluates the soft union 1 - Π(1 - g) of all blobs at each
// cell, with cell positions displaced by two independent warp fields.
func stampContinents(width, height int, blobs []blob, warpX, warpY []float64) []float64 {
	field := make([]float64, width*height)
	parallel.For(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				i := y*width + x
				px := float64(x) + 0.5
				py := float64(y) + 0.5
				miss := 1.0
				for _, b := range blobs {
					dx := wrapDelta(px+warpX[i]*b.warp*b.sx-b.cx, float64(width))
					dy := py + warpY[i]*b.warp*b.sy - b.cy
					sin, cos := math.Sincos(b.angle)
					rx := dx*cos + dy*sin
					ry := -dx*sin + dy*cos
					g := b.amp * math.Exp(-0.5*(rx*rx/(b.sx*b.sx)+ry*ry/(b.sy*b.sy)))
					miss *= 1 - g
				}
				field[i] = 1 - miss
			}
		}
	})
	return field
}

// continentField places and stamps landmasses for the given seed.
func continentField(rng *rand.Rand, cfg Config, seed int64) []float64 {
	blobs := placeContinents(rng, cfg)
	wx := noise.NewWarp(seed).Field(cfg.Width, cfg.Height, cfg.WarpScale)
	wy := noise.NewWarp(seed+1).Field(cfg.Width, cfg.Height, cfg.WarpScale)
	return stampContinents(cfg.Width, cfg.Height, blobs, wx, wy)
}

// wrapDelta folds a horizontal offset into [-width/2, width/2).
func wrapDelta(d, width float64) float64 {
	d = math.Mod(d, width)
	if d < -width/2 {
		d += width
	} else if d >= width/2 {
		d -= width
	}
	return d
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
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
