package geom

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	d := Distance([3]float64{0, 0, 0}, [3]float64{3, 4, 0})
	if math.Abs(d-5) > 1e-12 {
		t.Fatalf("unexpected distance: %f", d)
	}
}

func TestDistanceCoincidentPointsStaysFinite(t *testing.T) {
	p := [3]float64{1.5, -0.25, 2}
	d := Distance(p, p)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		t.Fatalf("coincident distance not finite: %f", d)
	}
	if d > 1e-14 {
		t.Fatalf("coincident distance too large: %g", d)
	}
}

func TestPairwiseDistancesShapeAndSymmetry(t *testing.T) {
	pts := [][3]float64{{0, 0, 0}, {1, 0, 0}, {0, 2, 0}}
	d := PairwiseDistances(pts, pts)
	if len(d) != 3 || len(d[0]) != 3 {
		t.Fatalf("unexpected shape: %dx%d", len(d), len(d[0]))
	}
	for i := range d {
		if d[i][i] > 1e-14 {
			t.Fatalf("diagonal entry %d not ~zero: %g", i, d[i][i])
		}
		for j := range d {
			if math.Abs(d[i][j]-d[j][i]) > 1e-12 {
				t.Fatalf("asymmetric distance at (%d,%d)", i, j)
			}
		}
	}
	if math.Abs(d[0][1]-1) > 1e-12 || math.Abs(d[0][2]-2) > 1e-12 {
		t.Fatalf("unexpected distances: %v", d)
	}
}

func TestPairwiseDistancesRectangular(t *testing.T) {
	a := [][3]float64{{0, 0, 0}, {1, 1, 1}}
	b := [][3]float64{{0, 0, 1}, {0, 1, 0}, {1, 0, 0}}
	d := PairwiseDistances(a, b)
	if len(d) != 2 || len(d[0]) != 3 {
		t.Fatalf("unexpected shape: %dx%d", len(d), len(d[0]))
	}
	if math.Abs(d[0][0]-1) > 1e-12 {
		t.Fatalf("unexpected d[0][0]: %f", d[0][0])
	}
}

func TestTriuFlat(t *testing.T) {
	m := [][]float64{
		{0, 1, 2},
		{1, 0, 3},
		{2, 3, 0},
	}
	flat, err := TriuFlat(m)
	if err != nil {
		t.Fatalf("triu flat failed: %v", err)
	}
	want := []float64{1, 2, 3}
	if len(flat) != len(want) {
		t.Fatalf("unexpected length: %d", len(flat))
	}
	for i := range want {
		if flat[i] != want[i] {
			t.Fatalf("unexpected triu at %d: got=%f want=%f", i, flat[i], want[i])
		}
	}
}

func TestTriuFlatRejectsRagged(t *testing.T) {
	if _, err := TriuFlat([][]float64{{0, 1}, {1}}); err == nil {
		t.Fatal("expected ragged matrix error")
	}
}

func TestFlattenBlock(t *testing.T) {
	flat := FlattenBlock([][]float64{{1, 2}, {3, 4}})
	want := []float64{1, 2, 3, 4}
	for i := range want {
		if flat[i] != want[i] {
			t.Fatalf("unexpected flatten at %d: %f", i, flat[i])
		}
	}
}

func TestTranslateAndSwap(t *testing.T) {
	pts := [][3]float64{{0, 0, 0}, {1, 2, 3}}
	shifted := Translate(pts, [3]float64{1, -1, 0.5})
	if shifted[1] != [3]float64{2, 1, 3.5} {
		t.Fatalf("unexpected translate: %v", shifted[1])
	}
	if pts[1] != [3]float64{1, 2, 3} {
		t.Fatal("translate mutated input")
	}
	swapped := Swap(pts, 0, 1)
	if swapped[0] != pts[1] || swapped[1] != pts[0] {
		t.Fatalf("unexpected swap: %v", swapped)
	}
}
