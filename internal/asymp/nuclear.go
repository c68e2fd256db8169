// Package asymp provides the closed-form factors enforcing the correct
// cusp and decay behavior of the amplitude near and far from particle
// coincidences.
package asymp

import (
	"fmt"
	"math"

	"qmcnet/internal/model"
)

const DefaultAlpha = 1.0

// Nuclear models the decay of the amplitude as electrons recede from all
// nuclei. Each electron contributes the sum over nuclei of
//
//	exp(-(Z*r + ionPot*alpha*r^2) / (1 + alpha*r))
//
// whose log-slope is -Z at r=0 (the electron-nucleus cusp) and -ionPot
// as r grows (ionization decay); the sample factor is the product over
// electrons. Strictly positive and smooth everywhere.
type Nuclear struct {
	charges []float64
	ionPot  float64
	alpha   float64
}

// NewNuclear builds the factor for the given nuclear charges. ionPot is
// the learnable ionization potential; alpha is the decay-rate prior
// controlling how fast the cusp regime hands over to the decay regime.
func NewNuclear(charges []float64, ionPot, alpha float64) (*Nuclear, error) {
	if len(charges) == 0 {
		return nil, fmt.Errorf("nuclear asymptotic needs at least one charge")
	}
	if ionPot <= 0 {
		return nil, fmt.Errorf("ionization potential must be positive, got %f", ionPot)
	}
	if alpha <= 0 {
		return nil, fmt.Errorf("alpha must be positive, got %f", alpha)
	}
	return &Nuclear{charges: append([]float64(nil), charges...), ionPot: ionPot, alpha: alpha}, nil
}

func (a *Nuclear) IonPot() float64 { return a.ionPot }

// Apply evaluates the factor for one sample's electron-nucleus distance
// matrix (rows: electrons, columns: nuclei).
func (a *Nuclear) Apply(distsNuc [][]float64) (float64, error) {
	if len(distsNuc) == 0 {
		return 0, fmt.Errorf("nuclear asymptotic needs at least one electron row")
	}
	result := 1.0
	for i, row := range distsNuc {
		if len(row) != len(a.charges) {
			return 0, fmt.Errorf("electron %d has %d nuclear distances, want %d", i, len(row), len(a.charges))
		}
		sum := 0.0
		for v, r := range row {
			z := a.charges[v]
			sum += math.Exp(-(z*r + a.ionPot*a.alpha*r*r) / (1 + a.alpha*r))
		}
		result *= sum
	}
	return result, nil
}

// State exports the learnable ionization potential under prefix.
func (a *Nuclear) State(prefix string, dst map[string]model.Tensor) {
	dst[prefix+".ion_pot"] = model.Tensor{Shape: []int{1}, Data: []float64{a.ionPot}}
}

// LoadState restores the ionization potential from src.
func (a *Nuclear) LoadState(prefix string, src map[string]model.Tensor) error {
	t, ok := src[prefix+".ion_pot"]
	if !ok {
		return fmt.Errorf("missing tensor %s.ion_pot", prefix)
	}
	if len(t.Data) != 1 {
		return fmt.Errorf("tensor %s.ion_pot has %d elements, want 1", prefix, len(t.Data))
	}
	if t.Data[0] <= 0 {
		return fmt.Errorf("tensor %s.ion_pot must be positive, got %f", prefix, t.Data[0])
	}
	a.ionPot = t.Data[0]
	return nil
}
