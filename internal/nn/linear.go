package nn

import (
	"fmt"
	"math"

	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"qmcnet/internal/model"
)

// Linear is a dense affine map y = Wx + b. The bias is optional: layers
// feeding an antisymmetrized combination drop it because the combination
// subtracts it out anyway.
type Linear struct {
	in, out int
	w       *mat.Dense
	b       []float64
}

// NewLinear draws W from a normal distribution with Glorot scale
// sqrt(2/(in+out)) and zero-initializes the bias when present.
func NewLinear(in, out int, bias bool, src xrand.Source) (*Linear, error) {
	if in <= 0 || out <= 0 {
		return nil, fmt.Errorf("linear dims must be positive, got %dx%d", in, out)
	}
	normal := distuv.Normal{Mu: 0, Sigma: math.Sqrt(2 / float64(in+out)), Src: src}
	data := make([]float64, in*out)
	for i := range data {
		data[i] = normal.Rand()
	}
	l := &Linear{in: in, out: out, w: mat.NewDense(out, in, data)}
	if bias {
		l.b = make([]float64, out)
	}
	return l, nil
}

func (l *Linear) InDim() int  { return l.in }
func (l *Linear) OutDim() int { return l.out }

// Apply maps one input vector through the layer.
func (l *Linear) Apply(x []float64) ([]float64, error) {
	if len(x) != l.in {
		return nil, fmt.Errorf("linear input length %d, want %d", len(x), l.in)
	}
	var y mat.VecDense
	y.MulVec(l.w, mat.NewVecDense(l.in, x))
	out := make([]float64, l.out)
	copy(out, y.RawVector().Data)
	if l.b != nil {
		AddInPlace(out, l.b)
	}
	return out, nil
}

// State exports the layer's tensors under prefix.
func (l *Linear) State(prefix string, dst map[string]model.Tensor) {
	wData := make([]float64, l.in*l.out)
	copy(wData, l.w.RawMatrix().Data)
	dst[prefix+".weight"] = model.Tensor{Shape: []int{l.out, l.in}, Data: wData}
	if l.b != nil {
		bData := make([]float64, l.out)
		copy(bData, l.b)
		dst[prefix+".bias"] = model.Tensor{Shape: []int{l.out}, Data: bData}
	}
}

// LoadState restores the layer's tensors from src, failing on any shape
// mismatch or missing entry.
func (l *Linear) LoadState(prefix string, src map[string]model.Tensor) error {
	w, ok := src[prefix+".weight"]
	if !ok {
		return fmt.Errorf("missing tensor %s.weight", prefix)
	}
	if len(w.Shape) != 2 || w.Shape[0] != l.out || w.Shape[1] != l.in {
		return fmt.Errorf("tensor %s.weight has shape %v, want [%d %d]", prefix, w.Shape, l.out, l.in)
	}
	copy(l.w.RawMatrix().Data, w.Data)
	if l.b == nil {
		return nil
	}
	b, ok := src[prefix+".bias"]
	if !ok {
		return fmt.Errorf("missing tensor %s.bias", prefix)
	}
	if len(b.Shape) != 1 || b.Shape[0] != l.out {
		return fmt.Errorf("tensor %s.bias has shape %v, want [%d]", prefix, b.Shape, l.out)
	}
	copy(l.b, b.Data)
	return nil
}
