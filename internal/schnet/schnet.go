// Package schnet implements the electronic message-passing embedding
// network. Electrons exchange messages built from pairwise distance
// features only, so the embeddings are invariant to global translation
// and rotation and equivariant to permutation within each spin group.
package schnet

import (
	"fmt"

	xrand "golang.org/x/exp/rand"

	"qmcnet/internal/model"
	"qmcnet/internal/nn"
	"qmcnet/internal/trace"
)

// Interaction is one message-passing round: w maps distance features to
// a kernel-space filter, h projects sender embeddings into kernel space,
// and g maps the aggregated message back to embedding space.
type Interaction struct {
	W *nn.FeedForward
	H *nn.Linear
	G *nn.FeedForward
}

// InteractionFactory builds one interaction block; overriding it swaps
// the block architecture without touching the network orchestration.
type InteractionFactory func(basisDim, kernelDim, embeddingDim int, src xrand.Source) (*Interaction, error)

// NewInteraction is the default factory: two-layer filter and update
// networks around a bias-free embedding projection.
func NewInteraction(basisDim, kernelDim, embeddingDim int, src xrand.Source) (*Interaction, error) {
	w, err := nn.NewLogFeedForward(basisDim, kernelDim, 2, true, src)
	if err != nil {
		return nil, fmt.Errorf("filter network: %w", err)
	}
	h, err := nn.NewLinear(embeddingDim, kernelDim, false, src)
	if err != nil {
		return nil, fmt.Errorf("projection: %w", err)
	}
	g, err := nn.NewLogFeedForward(kernelDim, embeddingDim, 2, true, src)
	if err != nil {
		return nil, fmt.Errorf("update network: %w", err)
	}
	return &Interaction{W: w, H: h, G: g}, nil
}

// Config sizes the network. Same-spin electrons share one initial
// embedding, so they enter the message function interchangeably; the
// opposite spin group gets its own channel.
type Config struct {
	NUp, NDown    int
	NNuclei       int
	NInteractions int
	BasisDim      int
	KernelDim     int
	EmbeddingDim  int
	Factory       InteractionFactory
}

type Network struct {
	cfg          Config
	xUp, xDown   []float64
	nuclei       [][]float64
	interactions []*Interaction
}

func New(cfg Config, src xrand.Source) (*Network, error) {
	if cfg.NUp < 0 || cfg.NDown < 0 || cfg.NUp+cfg.NDown < 1 {
		return nil, fmt.Errorf("need at least one electron, got n_up=%d n_down=%d", cfg.NUp, cfg.NDown)
	}
	if cfg.NNuclei < 1 {
		return nil, fmt.Errorf("need at least one nucleus, got %d", cfg.NNuclei)
	}
	if cfg.NInteractions < 1 {
		return nil, fmt.Errorf("need at least one interaction round, got %d", cfg.NInteractions)
	}
	if cfg.BasisDim < 1 || cfg.KernelDim < 1 || cfg.EmbeddingDim < 1 {
		return nil, fmt.Errorf("network dims must be positive: basis=%d kernel=%d embedding=%d",
			cfg.BasisDim, cfg.KernelDim, cfg.EmbeddingDim)
	}
	factory := cfg.Factory
	if factory == nil {
		factory = NewInteraction
	}

	net := &Network{cfg: cfg}
	net.xUp = drawVector(cfg.EmbeddingDim, src)
	net.xDown = drawVector(cfg.EmbeddingDim, src)
	net.nuclei = make([][]float64, cfg.NNuclei)
	for v := range net.nuclei {
		net.nuclei[v] = drawVector(cfg.KernelDim, src)
	}
	net.interactions = make([]*Interaction, cfg.NInteractions)
	for t := range net.interactions {
		block, err := factory(cfg.BasisDim, cfg.KernelDim, cfg.EmbeddingDim, src)
		if err != nil {
			return nil, fmt.Errorf("interaction %d: %w", t, err)
		}
		net.interactions[t] = block
	}
	return net, nil
}

func drawVector(dim int, src xrand.Source) []float64 {
	rng := xrand.New(src)
	out := make([]float64, dim)
	for i := range out {
		out[i] = rng.NormFloat64()
	}
	return out
}

func (n *Network) EmbeddingDim() int {
	return n.cfg.EmbeddingDim
}

// Forward maps distance features to one embedding vector per electron.
// features[i] holds the basis expansion of electron i's distances to
// every electron (columns 0..nElec-1) followed by every nucleus.
func (n *Network) Forward(features [][][]float64, tr trace.Tracer) ([][]float64, error) {
	nElec := n.cfg.NUp + n.cfg.NDown
	if len(features) != nElec {
		return nil, fmt.Errorf("feature rows %d, want %d electrons", len(features), nElec)
	}
	for i, row := range features {
		if len(row) != nElec+n.cfg.NNuclei {
			return nil, fmt.Errorf("feature row %d has %d columns, want %d", i, len(row), nElec+n.cfg.NNuclei)
		}
	}

	xs := make([][]float64, nElec)
	for i := range xs {
		init := n.xUp
		if i >= n.cfg.NUp {
			init = n.xDown
		}
		xs[i] = append([]float64(nil), init...)
	}

	for t, block := range n.interactions {
		projected := make([][]float64, nElec)
		for j := range xs {
			h, err := block.H.Apply(xs[j])
			if err != nil {
				return nil, fmt.Errorf("interaction %d projection: %w", t, err)
			}
			projected[j] = h
		}

		next := make([][]float64, nElec)
		for i := 0; i < nElec; i++ {
			message := make([]float64, n.cfg.KernelDim)
			for j := 0; j < nElec; j++ {
				if j == i {
					continue
				}
				w, err := block.W.Apply(features[i][j])
				if err != nil {
					return nil, fmt.Errorf("interaction %d filter: %w", t, err)
				}
				nn.AddInPlace(message, nn.Hadamard(w, projected[j]))
			}
			for v := 0; v < n.cfg.NNuclei; v++ {
				w, err := block.W.Apply(features[i][nElec+v])
				if err != nil {
					return nil, fmt.Errorf("interaction %d nuclear filter: %w", t, err)
				}
				nn.AddInPlace(message, nn.Hadamard(w, n.nuclei[v]))
			}
			update, err := block.G.Apply(message)
			if err != nil {
				return nil, fmt.Errorf("interaction %d update: %w", t, err)
			}
			next[i] = append([]float64(nil), xs[i]...)
			nn.AddInPlace(next[i], update)
		}
		xs = next
		tr.Scope(fmt.Sprintf("interaction%d", t)).RecordMatrix("embeddings", xs)
	}
	return xs, nil
}

// State exports all learnable tensors under prefix.
func (n *Network) State(prefix string, dst map[string]model.Tensor) {
	dst[prefix+".embed_up"] = model.Tensor{Shape: []int{len(n.xUp)}, Data: append([]float64(nil), n.xUp...)}
	dst[prefix+".embed_down"] = model.Tensor{Shape: []int{len(n.xDown)}, Data: append([]float64(nil), n.xDown...)}
	for v, y := range n.nuclei {
		dst[fmt.Sprintf("%s.nucleus%d", prefix, v)] = model.Tensor{Shape: []int{len(y)}, Data: append([]float64(nil), y...)}
	}
	for t, block := range n.interactions {
		base := fmt.Sprintf("%s.interaction%d", prefix, t)
		block.W.State(base+".w", dst)
		block.H.State(base+".h", dst)
		block.G.State(base+".g", dst)
	}
}

// LoadState restores all learnable tensors from src.
func (n *Network) LoadState(prefix string, src map[string]model.Tensor) error {
	if err := loadVector(src, prefix+".embed_up", n.xUp); err != nil {
		return err
	}
	if err := loadVector(src, prefix+".embed_down", n.xDown); err != nil {
		return err
	}
	for v := range n.nuclei {
		if err := loadVector(src, fmt.Sprintf("%s.nucleus%d", prefix, v), n.nuclei[v]); err != nil {
			return err
		}
	}
	for t, block := range n.interactions {
		base := fmt.Sprintf("%s.interaction%d", prefix, t)
		if err := block.W.LoadState(base+".w", src); err != nil {
			return err
		}
		if err := block.H.LoadState(base+".h", src); err != nil {
			return err
		}
		if err := block.G.LoadState(base+".g", src); err != nil {
			return err
		}
	}
	return nil
}

func loadVector(src map[string]model.Tensor, name string, dst []float64) error {
	t, ok := src[name]
	if !ok {
		return fmt.Errorf("missing tensor %s", name)
	}
	if len(t.Shape) != 1 || t.Shape[0] != len(dst) {
		return fmt.Errorf("tensor %s has shape %v, want [%d]", name, t.Shape, len(dst))
	}
	copy(dst, t.Data)
	return nil
}
