package asymp

import (
	"fmt"
	"math"

	"qmcnet/internal/model"
)

// Electronic enforces the electron-electron cusp condition on a set of
// pair distances:
//
//	exp(-sum_k cusp / (alpha * (1 + alpha*d_k)))
//
// The log-slope at d=0 is exactly the learnable cusp coefficient, and
// the factor flattens to a constant at large separation. Strictly
// positive and smooth.
type Electronic struct {
	cusp  float64
	alpha float64
}

func NewElectronic(cusp, alpha float64) (*Electronic, error) {
	if alpha <= 0 {
		return nil, fmt.Errorf("alpha must be positive, got %f", alpha)
	}
	return &Electronic{cusp: cusp, alpha: alpha}, nil
}

func (a *Electronic) Cusp() float64 { return a.cusp }

// Apply evaluates the factor on the flattened pair distances of one
// sample. An empty slice yields the identity factor.
func (a *Electronic) Apply(dists []float64) float64 {
	sum := 0.0
	for _, d := range dists {
		sum += a.cusp / (a.alpha * (1 + a.alpha*d))
	}
	return math.Exp(-sum)
}

// State exports the learnable cusp coefficient under prefix.
func (a *Electronic) State(prefix string, dst map[string]model.Tensor) {
	dst[prefix+".cusp"] = model.Tensor{Shape: []int{1}, Data: []float64{a.cusp}}
}

// LoadState restores the cusp coefficient from src.
func (a *Electronic) LoadState(prefix string, src map[string]model.Tensor) error {
	t, ok := src[prefix+".cusp"]
	if !ok {
		return fmt.Errorf("missing tensor %s.cusp", prefix)
	}
	if len(t.Data) != 1 {
		return fmt.Errorf("tensor %s.cusp has %d elements, want 1", prefix, len(t.Data))
	}
	a.cusp = t.Data[0]
	return nil
}
