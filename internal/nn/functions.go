package nn

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Softplus is ln(1+e^x) with guards against overflow on either tail.
func Softplus(x float64) float64 {
	if x > 35 {
		return x
	}
	if x < -35 {
		return math.Exp(x)
	}
	return math.Log1p(math.Exp(x))
}

// SSP is the shifted softplus ln(1+e^x) - ln 2, zero at the origin and
// asymptotically linear. Smooth everywhere, which keeps second
// derivatives of the amplitude finite.
func SSP(x float64) float64 {
	return Softplus(x) - math.Ln2
}

// Sigmoid is the logistic function.
func Sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

// Hadamard multiplies two equal-length vectors elementwise into a new
// slice. Lengths must already be validated by the caller.
func Hadamard(a, b []float64) []float64 {
	out := make([]float64, len(a))
	floats.MulTo(out, a, b)
	return out
}

// AddInPlace accumulates src into dst.
func AddInPlace(dst, src []float64) {
	floats.Add(dst, src)
}
