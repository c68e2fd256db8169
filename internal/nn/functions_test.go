package nn

import (
	"math"
	"testing"
)

func TestSSP(t *testing.T) {
	if got := SSP(0); math.Abs(got) > 1e-12 {
		t.Fatalf("SSP(0) should be 0, got %g", got)
	}
	// Asymptotically linear on the right, vanishing on the left.
	if got := SSP(40); math.Abs(got-(40-math.Ln2)) > 1e-9 {
		t.Fatalf("unexpected SSP(40): %f", got)
	}
	if got := SSP(-40); math.Abs(got+math.Ln2) > 1e-9 {
		t.Fatalf("unexpected SSP(-40): %f", got)
	}
	for _, x := range []float64{-500, -1, 0, 1, 500} {
		if v := SSP(x); math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("SSP(%f) not finite: %f", x, v)
		}
	}
}

func TestSoftplusMonotone(t *testing.T) {
	prev := Softplus(-10)
	for x := -9.5; x <= 10; x += 0.5 {
		cur := Softplus(x)
		if cur <= prev {
			t.Fatalf("softplus not increasing at x=%f", x)
		}
		prev = cur
	}
}

func TestSigmoid(t *testing.T) {
	if got := Sigmoid(0); math.Abs(got-0.5) > 1e-12 {
		t.Fatalf("Sigmoid(0) should be 0.5, got %f", got)
	}
	if got := Sigmoid(800); math.Abs(got-1) > 1e-12 {
		t.Fatalf("Sigmoid(800) should saturate at 1, got %f", got)
	}
	if got := Sigmoid(-800); got != math.Exp(-800)/(1+math.Exp(-800)) && got > 1e-12 {
		t.Fatalf("Sigmoid(-800) should saturate at 0, got %g", got)
	}
	// Symmetry: sigmoid(x) + sigmoid(-x) == 1.
	for _, x := range []float64{0.1, 1, 3.7} {
		if s := Sigmoid(x) + Sigmoid(-x); math.Abs(s-1) > 1e-12 {
			t.Fatalf("sigmoid symmetry broken at x=%f: %f", x, s)
		}
	}
}

func TestHadamardAndAdd(t *testing.T) {
	got := Hadamard([]float64{1, 2, 3}, []float64{4, 5, 6})
	want := []float64{4, 10, 18}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected hadamard at %d: %f", i, got[i])
		}
	}
	dst := []float64{1, 1}
	AddInPlace(dst, []float64{2, 3})
	if dst[0] != 3 || dst[1] != 4 {
		t.Fatalf("unexpected add: %v", dst)
	}
}
