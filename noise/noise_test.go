package noise

import (
	"math"
	"testing"
)

func TestGradientRange(t *testing.T) {
	p := NewPerlin(7)
	for i := 0; i < 2000; i++ {
		x := float64(i) * 0.173
		y := float64(i%97) * 0.311
		n := p.Gradient(x, y, 0)
		if n < -1 || n > 1 {
			t.Fatalf("Gradient(%v, %v) = %v, outside [-1, 1]", x, y, n)
		}
	}
}

func TestGradientWrapsAlongX(t *testing.T) {
	tests := []struct {
		name   string
		period int
	}{
		{"period 1", 1},
		{"period 8", 8},
		{"period 300", 300},
	}

	p := NewPerlin(99)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, x := range []float64{0.25, 1.5, 3.75} {
				for _, y := range []float64{0.1, 2.6, 9.9} {
					a := p.Gradient(x, y, tt.period)
					b := p.Gradient(x+float64(tt.period), y, tt.period)
					if math.Abs(a-b) > 1e-9 {
						t.Errorf("Gradient(%v) = %v, Gradient(%v) = %v, want equal", x, a, x+float64(tt.period), b)
					}
				}
			}
		})
	}
}

func TestGradientNoiseMatchesPerlin(t *testing.T) {
	got := GradientNoise(1.3, 2.7, 4, 11)
	want := NewPerlin(11).Gradient(1.3, 2.7, 4)
	if got != want {
		t.Errorf("GradientNoise = %v, want %v", got, want)
	}
}

func TestFractalDeterministic(t *testing.T) {
	a := Fractal(64, 32, 5, 0.5, 2.0, 3.0, 42)
	b := Fractal(64, 32, 5, 0.5, 2.0, 3.0, 42)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("cell %d differs: %v vs %v", i, a[i], b[i])
		}
	}

	c := Fractal(64, 32, 5, 0.5, 2.0, 3.0, 43)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical fields")
	}
}

func TestFieldsNormalized(t *testing.T) {
	tests := []struct {
		name  string
		field []float64
	}{
		{"fractal", Fractal(48, 24, 4, 0.5, 2.0, 2.0, 1)},
		{"ridge", Ridge(48, 24, 4, 2.0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lo, hi := math.Inf(1), math.Inf(-1)
			for _, v := range tt.field {
				lo = math.Min(lo, v)
				hi = math.Max(hi, v)
			}
			if lo != 0 {
				t.Errorf("min = %v, want 0", lo)
			}
			if math.Abs(hi-1) > 1e-12 {
				t.Errorf("max = %v, want 1", hi)
			}
		})
	}
}

func TestRidgeDeterministic(t *testing.T) {
	a := Ridge(40, 20, 4, 3.0, 5)
	b := Ridge(40, 20, 4, 3.0, 5)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("cell %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestFractalSeamIsContinuous(t *testing.T) {
	w, h := 128, 16
	f := Fractal(w, h, 3, 0.5, 2.0, 2.0, 3)

	// The step across the seam should look like any other horizontal step.
	var seam, interior float64
	for y := 0; y < h; y++ {
		seam += math.Abs(f[y*w] - f[y*w+w-1])
		interior += math.Abs(f[y*w+w/2] - f[y*w+w/2-1])
	}
	if seam > 4*interior+0.05*float64(h) {
		t.Errorf("seam step %v much larger than interior step %v", seam, interior)
	}
}

func TestNormalizeZeroVariance(t *testing.T) {
	f := []float64{3, 3, 3}
	Normalize(f)
	for i, v := range f {
		if v != 0.5 {
			t.Errorf("f[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestWarpDeterministicAndBounded(t *testing.T) {
	a := NewWarp(5).Field(32, 16, 4)
	b := NewWarp(5).Field(32, 16, 4)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("cell %d differs", i)
		}
		if a[i] < -1 || a[i] > 1 {
			t.Fatalf("cell %d = %v outside [-1, 1]", i, a[i])
		}
	}
}

func TestWarpWrapsAlongX(t *testing.T) {
	w := NewWarp(8)
	a := w.At(0, 5, 64, 3)
	b := w.At(64, 5, 64, 3)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("At(0) = %v, At(width) = %v, want equal", a, b)
	}
}

func BenchmarkFractal128x64(b *testing.B) {
	for n := 0; n < b.N; n++ {
		Fractal(128, 64, 6, 0.5, 2.0, 2.0, int64(n))
	}
}
