package nn

import (
	"fmt"
	"math"

	xrand "golang.org/x/exp/rand"

	"qmcnet/internal/model"
)

// FeedForward chains linear layers with an activation between them (not
// after the last one).
type FeedForward struct {
	layers     []*Linear
	activation func(float64) float64
}

// NewLogFeedForward builds an nLayers-deep network whose hidden widths
// interpolate geometrically between in and out, activated by SSP.
// lastBias controls whether the final layer carries a bias; networks
// feeding an antisymmetrized combination drop it.
func NewLogFeedForward(in, out, nLayers int, lastBias bool, src xrand.Source) (*FeedForward, error) {
	if nLayers < 1 {
		return nil, fmt.Errorf("feed-forward needs at least one layer, got %d", nLayers)
	}
	dims, err := logDims(in, out, nLayers)
	if err != nil {
		return nil, err
	}
	layers := make([]*Linear, nLayers)
	for k := 0; k < nLayers; k++ {
		bias := k < nLayers-1 || lastBias
		layer, err := NewLinear(dims[k], dims[k+1], bias, src)
		if err != nil {
			return nil, err
		}
		layers[k] = layer
	}
	return &FeedForward{layers: layers, activation: SSP}, nil
}

// logDims returns nLayers+1 widths following in * (out/in)^(k/nLayers).
func logDims(in, out, nLayers int) ([]int, error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("feed-forward dims must be positive, got %d and %d", in, out)
	}
	dims := make([]int, nLayers+1)
	dims[0] = in
	dims[nLayers] = out
	for k := 1; k < nLayers; k++ {
		t := float64(k) / float64(nLayers)
		dims[k] = int(math.Round(math.Pow(float64(in), 1-t) * math.Pow(float64(out), t)))
		if dims[k] < 1 {
			dims[k] = 1
		}
	}
	return dims, nil
}

func (f *FeedForward) InDim() int  { return f.layers[0].InDim() }
func (f *FeedForward) OutDim() int { return f.layers[len(f.layers)-1].OutDim() }

// Apply runs one vector through the network.
func (f *FeedForward) Apply(x []float64) ([]float64, error) {
	var err error
	for k, layer := range f.layers {
		x, err = layer.Apply(x)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", k, err)
		}
		if k < len(f.layers)-1 {
			for i := range x {
				x[i] = f.activation(x[i])
			}
		}
	}
	return x, nil
}

// ApplyScalar runs the network and returns its single output, failing if
// the network is not scalar-valued.
func (f *FeedForward) ApplyScalar(x []float64) (float64, error) {
	out, err := f.Apply(x)
	if err != nil {
		return 0, err
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("network output length %d, want 1", len(out))
	}
	return out[0], nil
}

// State exports all layer tensors under prefix.
func (f *FeedForward) State(prefix string, dst map[string]model.Tensor) {
	for k, layer := range f.layers {
		layer.State(fmt.Sprintf("%s.layer%d", prefix, k), dst)
	}
}

// LoadState restores all layer tensors from src.
func (f *FeedForward) LoadState(prefix string, src map[string]model.Tensor) error {
	for k, layer := range f.layers {
		if err := layer.LoadState(fmt.Sprintf("%s.layer%d", prefix, k), src); err != nil {
			return err
		}
	}
	return nil
}
