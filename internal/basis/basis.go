// Package basis expands scalar distances into smooth radial feature
// vectors consumed by the embedding network.
package basis

import (
	"fmt"
	"math"
)

const (
	DefaultDim    = 32
	DefaultCutoff = 10.0
)

// Config selects the size and reach of the radial expansion.
type Config struct {
	Dim    int
	Cutoff float64
}

// DistanceBasis maps a distance to Dim Gaussian features with centers
// evenly spaced on [0, cutoff]. Every feature is infinitely
// differentiable in the input distance, so second derivatives of the
// amplitude stay well defined.
type DistanceBasis struct {
	centers []float64
	width   float64
}

func New(cfg Config) (*DistanceBasis, error) {
	if cfg.Dim <= 1 {
		return nil, fmt.Errorf("basis dim must be at least 2, got %d", cfg.Dim)
	}
	if cfg.Cutoff <= 0 {
		return nil, fmt.Errorf("basis cutoff must be positive, got %f", cfg.Cutoff)
	}
	spacing := cfg.Cutoff / float64(cfg.Dim-1)
	centers := make([]float64, cfg.Dim)
	for k := range centers {
		centers[k] = float64(k) * spacing
	}
	return &DistanceBasis{centers: centers, width: spacing}, nil
}

func (b *DistanceBasis) Dim() int {
	return len(b.centers)
}

// Expand returns the feature vector for one distance.
func (b *DistanceBasis) Expand(dist float64) []float64 {
	out := make([]float64, len(b.centers))
	inv := 1 / (b.width * b.width)
	for k, mu := range b.centers {
		diff := dist - mu
		out[k] = math.Exp(-diff * diff * inv)
	}
	return out
}

// ExpandMatrix expands every entry of a distance matrix, returning a
// [rows][cols][Dim] feature tensor.
func (b *DistanceBasis) ExpandMatrix(dists [][]float64) [][][]float64 {
	out := make([][][]float64, len(dists))
	for i, row := range dists {
		features := make([][]float64, len(row))
		for j, d := range row {
			features[j] = b.Expand(d)
		}
		out[i] = features
	}
	return out
}
