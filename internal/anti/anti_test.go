package anti

import (
	"math"
	"testing"

	xrand "golang.org/x/exp/rand"

	"qmcnet/internal/geom"
	"qmcnet/internal/model"
	"qmcnet/internal/nn"
	"qmcnet/internal/trace"
)

func newTestAnsatz(t *testing.T, seed uint64) *Laughlin {
	t.Helper()
	l, err := New(Config{LatentDim: 6}, xrand.NewSource(seed))
	if err != nil {
		t.Fatalf("new antisymmetrizer failed: %v", err)
	}
	return l
}

func apply(t *testing.T, l *Laughlin, xs [][3]float64) float64 {
	t.Helper()
	v, err := l.Apply(xs, geom.PairwiseDistances(xs, xs), trace.Nop())
	if err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	return v
}

var testGroup = [][3]float64{
	{0.3, -0.2, 0.1},
	{-0.7, 0.5, 0.9},
	{1.1, 0.4, -0.6},
	{0.2, -1.3, 0.8},
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{LatentDim: 0}, xrand.NewSource(1)); err == nil {
		t.Fatal("expected latent dim error")
	}
}

func TestApplyRejectsSmallOrMismatchedInput(t *testing.T) {
	l := newTestAnsatz(t, 1)
	one := [][3]float64{{0, 0, 0}}
	if _, err := l.Apply(one, geom.PairwiseDistances(one, one), trace.Nop()); err == nil {
		t.Fatal("expected group size error")
	}
	if _, err := l.Apply(testGroup, [][]float64{{0}}, trace.Nop()); err == nil {
		t.Fatal("expected distance shape error")
	}
}

func TestAntisymmetryUnderEveryPairSwap(t *testing.T) {
	l := newTestAnsatz(t, 7)
	base := apply(t, l, testGroup)
	if base == 0 {
		t.Fatal("test configuration unexpectedly degenerate")
	}
	n := len(testGroup)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			swapped := apply(t, l, geom.Swap(testGroup, i, j))
			if math.Abs(swapped+base) > 1e-12*math.Abs(base) {
				t.Fatalf("swap (%d,%d) not antisymmetric: %g vs %g", i, j, swapped, base)
			}
		}
	}
}

func TestCoincidenceGivesExactZero(t *testing.T) {
	l := newTestAnsatz(t, 11)
	xs := [][3]float64{
		{0.4, 0.1, -0.2},
		{0.4, 0.1, -0.2},
		{-0.9, 0.3, 0.7},
	}
	if v := apply(t, l, xs); v != 0 {
		t.Fatalf("coincident particles should give exactly zero, got %g", v)
	}
}

func TestMagnitudeInvariantUnderPermutations(t *testing.T) {
	l := newTestAnsatz(t, 13)
	base := math.Abs(apply(t, l, testGroup))
	perms := [][]int{
		{1, 0, 2, 3},
		{3, 2, 1, 0},
		{2, 3, 0, 1},
		{1, 2, 3, 0},
	}
	for _, p := range perms {
		permuted := make([][3]float64, len(p))
		for i, idx := range p {
			permuted[i] = testGroup[idx]
		}
		got := math.Abs(apply(t, l, permuted))
		if math.Abs(got-base) > 1e-12*base {
			t.Fatalf("magnitude changed under permutation %v: %g vs %g", p, got, base)
		}
	}
}

func TestTranslationInvariance(t *testing.T) {
	l := newTestAnsatz(t, 17)
	base := apply(t, l, testGroup)
	shifted := apply(t, l, geom.Translate(testGroup, [3]float64{5.5, -2, 0.25}))
	if math.Abs(base-shifted) > 1e-9*math.Abs(base) {
		t.Fatalf("value changed under uniform shift: %g vs %g", base, shifted)
	}
}

func TestTraceRecordsPairFactors(t *testing.T) {
	l := newTestAnsatz(t, 19)
	rec := trace.NewRecorder()
	if _, err := l.Apply(testGroup, geom.PairwiseDistances(testGroup, testGroup), rec); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	entries := rec.Entries()
	factors, ok := entries["pair_factors"]
	if !ok || len(factors.Vector) != 6 {
		t.Fatalf("expected 6 pair factors, got %+v", factors)
	}
	if entries["value"].Scalar == nil {
		t.Fatal("expected scalar trace entry")
	}
}

func TestStateRoundTrip(t *testing.T) {
	a := newTestAnsatz(t, 23)
	b := newTestAnsatz(t, 24)
	state := make(map[string]model.Tensor)
	a.State("anti", state)
	if err := b.LoadState("anti", state); err != nil {
		t.Fatalf("load state failed: %v", err)
	}
	if va, vb := apply(t, a, testGroup), apply(t, b, testGroup); va != vb {
		t.Fatalf("loaded antisymmetrizer differs: %g vs %g", va, vb)
	}
}

func TestCustomFactories(t *testing.T) {
	pairCalls, oddCalls := 0, 0
	cfg := Config{
		LatentDim: 4,
		PairFactory: func(in, out int, src xrand.Source) (*nn.FeedForward, error) {
			pairCalls++
			return defaultFactory(in, out, src)
		},
		OddFactory: func(in, out int, src xrand.Source) (*nn.FeedForward, error) {
			oddCalls++
			return defaultFactory(in, out, src)
		},
	}
	if _, err := New(cfg, xrand.NewSource(31)); err != nil {
		t.Fatalf("new antisymmetrizer failed: %v", err)
	}
	if pairCalls != 1 || oddCalls != 1 {
		t.Fatalf("factories called %d/%d times, want 1/1", pairCalls, oddCalls)
	}
}
