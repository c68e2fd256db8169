package asymp

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"qmcnet/internal/model"
)

func TestNewNuclearValidation(t *testing.T) {
	if _, err := NewNuclear(nil, 0.5, 1); err == nil {
		t.Fatal("expected empty charges error")
	}
	if _, err := NewNuclear([]float64{1}, 0, 1); err == nil {
		t.Fatal("expected ion potential error")
	}
	if _, err := NewNuclear([]float64{1}, 0.5, -1); err == nil {
		t.Fatal("expected alpha error")
	}
}

func TestNuclearApplyShapeMismatch(t *testing.T) {
	a, err := NewNuclear([]float64{1, 1}, 0.5, 1)
	if err != nil {
		t.Fatalf("new nuclear failed: %v", err)
	}
	if _, err := a.Apply([][]float64{{1}}); err == nil {
		t.Fatal("expected column mismatch error")
	}
	if _, err := a.Apply(nil); err == nil {
		t.Fatal("expected empty input error")
	}
}

func TestNuclearStrictlyPositiveAndFinite(t *testing.T) {
	a, err := NewNuclear([]float64{1, 2}, 0.5, 1)
	if err != nil {
		t.Fatalf("new nuclear failed: %v", err)
	}
	for _, r := range []float64{0, 1e-8, 0.1, 1, 10, 100} {
		v, err := a.Apply([][]float64{{r, r + 0.5}, {2 * r, r}})
		if err != nil {
			t.Fatalf("apply failed at r=%f: %v", r, err)
		}
		if !(v > 0) || math.IsInf(v, 0) || math.IsNaN(v) {
			t.Fatalf("factor not strictly positive finite at r=%f: %g", r, v)
		}
	}
}

func TestNuclearCuspSlopeMatchesCharge(t *testing.T) {
	const z = 3.0
	a, err := NewNuclear([]float64{z}, 0.5, 1)
	if err != nil {
		t.Fatalf("new nuclear failed: %v", err)
	}
	logAt := func(r float64) float64 {
		v, err := a.Apply([][]float64{{r}})
		if err != nil {
			t.Fatalf("apply failed: %v", err)
		}
		return math.Log(v)
	}
	const h = 1e-6
	slope := (logAt(h) - logAt(0)) / h
	if math.Abs(slope+z) > 1e-3 {
		t.Fatalf("cusp slope %f, want %f", slope, -z)
	}
}

func TestNuclearDecayRateMatchesIonPot(t *testing.T) {
	const ionPot = 0.5
	a, err := NewNuclear([]float64{1}, ionPot, 1)
	if err != nil {
		t.Fatalf("new nuclear failed: %v", err)
	}
	var rs, logs []float64
	for r := 50.0; r <= 100; r += 2 {
		v, err := a.Apply([][]float64{{r}})
		if err != nil {
			t.Fatalf("apply failed: %v", err)
		}
		rs = append(rs, r)
		logs = append(logs, math.Log(v))
	}
	_, slope := stat.LinearRegression(rs, logs, nil, false)
	if math.Abs(slope+ionPot) > 0.01 {
		t.Fatalf("decay slope %f, want %f", slope, -ionPot)
	}
}

func TestNuclearStateRoundTrip(t *testing.T) {
	a, err := NewNuclear([]float64{1}, 0.5, 1)
	if err != nil {
		t.Fatalf("new nuclear failed: %v", err)
	}
	state := make(map[string]model.Tensor)
	a.State("asymp_nuc", state)
	b, err := NewNuclear([]float64{1}, 0.9, 1)
	if err != nil {
		t.Fatalf("new nuclear failed: %v", err)
	}
	if err := b.LoadState("asymp_nuc", state); err != nil {
		t.Fatalf("load state failed: %v", err)
	}
	if b.IonPot() != 0.5 {
		t.Fatalf("ion potential not restored: %f", b.IonPot())
	}
	bad := map[string]model.Tensor{"asymp_nuc.ion_pot": {Shape: []int{1}, Data: []float64{-1}}}
	if err := b.LoadState("asymp_nuc", bad); err == nil {
		t.Fatal("expected positivity error")
	}
}
