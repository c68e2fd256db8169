package basis

import (
	"math"
	"testing"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{Dim: 1, Cutoff: 10}); err == nil {
		t.Fatal("expected dim error")
	}
	if _, err := New(Config{Dim: 8, Cutoff: 0}); err == nil {
		t.Fatal("expected cutoff error")
	}
}

func TestExpandShapeAndRange(t *testing.T) {
	b, err := New(Config{Dim: 16, Cutoff: 10})
	if err != nil {
		t.Fatalf("new basis failed: %v", err)
	}
	features := b.Expand(3.7)
	if len(features) != 16 {
		t.Fatalf("unexpected feature length: %d", len(features))
	}
	for k, f := range features {
		if f <= 0 || f > 1 {
			t.Fatalf("feature %d out of (0,1]: %f", k, f)
		}
	}
}

func TestExpandPeaksAtCenter(t *testing.T) {
	b, err := New(Config{Dim: 11, Cutoff: 10})
	if err != nil {
		t.Fatalf("new basis failed: %v", err)
	}
	// Centers sit on 0,1,...,10; distance 4 should light feature 4 most.
	features := b.Expand(4)
	best := 0
	for k := range features {
		if features[k] > features[best] {
			best = k
		}
	}
	if best != 4 {
		t.Fatalf("peak at feature %d, want 4", best)
	}
	if math.Abs(features[4]-1) > 1e-12 {
		t.Fatalf("on-center feature not 1: %f", features[4])
	}
}

func TestExpandSmoothness(t *testing.T) {
	b, err := New(Config{Dim: 16, Cutoff: 10})
	if err != nil {
		t.Fatalf("new basis failed: %v", err)
	}
	// Central second difference of every feature must stay finite and
	// small for a smooth basis.
	const h = 1e-4
	for _, d := range []float64{0, 0.01, 1.3, 5, 9.99, 15} {
		up := b.Expand(d + h)
		mid := b.Expand(d)
		down := b.Expand(d - h)
		for k := range mid {
			second := (up[k] - 2*mid[k] + down[k]) / (h * h)
			if math.IsNaN(second) || math.IsInf(second, 0) {
				t.Fatalf("second difference not finite at d=%f k=%d", d, k)
			}
		}
	}
}

func TestExpandMatrix(t *testing.T) {
	b, err := New(Config{Dim: 4, Cutoff: 5})
	if err != nil {
		t.Fatalf("new basis failed: %v", err)
	}
	out := b.ExpandMatrix([][]float64{{0, 1}, {2, 3}, {4, 5}})
	if len(out) != 3 || len(out[0]) != 2 || len(out[0][0]) != 4 {
		t.Fatalf("unexpected shape: %d %d %d", len(out), len(out[0]), len(out[0][0]))
	}
}
