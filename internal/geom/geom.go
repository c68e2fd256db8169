package geom

import (
	"fmt"
	"math"
)

// distEps stabilizes the square root at particle coincidence so that the
// derivative of the distance stays finite when two points touch.
const distEps = 1e-30

// Distance returns the stabilized Euclidean distance between two points.
func Distance(a, b [3]float64) float64 {
	dx := a[0] - b[0]
	dy := a[1] - b[1]
	dz := a[2] - b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz + distEps)
}

// PairwiseDistances returns the m-by-n matrix of distances between every
// point of a and every point of b.
func PairwiseDistances(a, b [][3]float64) [][]float64 {
	out := make([][]float64, len(a))
	for i := range a {
		row := make([]float64, len(b))
		for j := range b {
			row[j] = Distance(a[i], b[j])
		}
		out[i] = row
	}
	return out
}

// TriuFlat flattens the strict upper triangle of a square matrix in
// row-major order: (0,1), (0,2), ..., (n-2,n-1).
func TriuFlat(m [][]float64) ([]float64, error) {
	n := len(m)
	for i, row := range m {
		if len(row) != n {
			return nil, fmt.Errorf("matrix row %d has length %d, want %d", i, len(row), n)
		}
	}
	out := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, m[i][j])
		}
	}
	return out, nil
}

// FlattenBlock flattens a rectangular matrix in row-major order.
func FlattenBlock(m [][]float64) []float64 {
	out := make([]float64, 0)
	for _, row := range m {
		out = append(out, row...)
	}
	return out
}

// Translate returns a copy of points with shift added to every coordinate.
func Translate(points [][3]float64, shift [3]float64) [][3]float64 {
	out := make([][3]float64, len(points))
	for i, p := range points {
		out[i] = [3]float64{p[0] + shift[0], p[1] + shift[1], p[2] + shift[2]}
	}
	return out
}

// Swap returns a copy of points with entries i and j exchanged.
func Swap(points [][3]float64, i, j int) [][3]float64 {
	out := make([][3]float64, len(points))
	copy(out, points)
	out[i], out[j] = out[j], out[i]
	return out
}
