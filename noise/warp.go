package noise

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/habitat/parallel"
)

// Warp produces smooth displacement fields for domain warping. Samples are
// taken on a cylinder embedded in 3D simplex noise, so the field is
// continuous across the x seam.
type Warp struct {
	noise opensimplex.Noise
}

// NewWarp creates a warp field source for the given seed.
func NewWarp(seed int64) *Warp {
	return &Warp{noise: opensimplex.New(seed)}
}

// At returns the warp value in [-1, 1] at cell (x, y) of a width-wide world.
// scale is the number of features around the circumference.
func (w *Warp) At(x, y float64, width int, scale float64) float64 {
	radius := scale / (2 * math.Pi)
	theta := 2 * math.Pi * x / float64(width)
	cx := math.Cos(theta) * radius
	cz := math.Sin(theta) * radius
	cy := y / float64(width) * scale

	// Two octaves keep blob edges ragged without high-frequency speckle.
	n := w.noise.Eval3(cx, cy, cz) + 0.5*w.noise.Eval3(cx*2+17.3, cy*2, cz*2)
	return clamp(n/1.5, -1, 1)
}

// Field samples At for every cell at cell centers.
func (w *Warp) Field(width, height int, scale float64) []float64 {
	field := make([]float64, width*height)
	parallel.For(height, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				field[y*width+x] = w.At(float64(x)+0.5, float64(y)+0.5, width, scale)
			}
		}
	})
	return field
}
