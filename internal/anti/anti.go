// Package anti implements the Laughlin-style antisymmetrizer: a scalar
// per same-spin group that flips sign under exchange of any two group
// members.
//
// Construction: a shared pair network maps the ordered-pair features
// (x_i, x_j, d_ij), with coordinates taken relative to the group
// centroid, to a latent z_ij. The pair latent u_ij = z_ij - z_ji
// is odd under exchange of i and j, and the pair factor
//
//	f_ij = sigmoid(odd(u_ij)) - sigmoid(odd(-u_ij))
//
// is an odd function of u_ij. The group scalar is the product of f_ij
// over unordered pairs i<j. Swapping particles k and l negates f_kl and
// permutes the remaining factors among themselves, so the product is
// exactly antisymmetric; it vanishes whenever two members coincide
// because then u = 0 and f = 0. Multiplication is commutative, so the
// pair iteration order cannot change the result.
package anti

import (
	"fmt"

	xrand "golang.org/x/exp/rand"

	"qmcnet/internal/model"
	"qmcnet/internal/nn"
	"qmcnet/internal/trace"
)

// pairInDim is 3 coordinates per particle plus the pair distance.
const pairInDim = 7

// NetworkFactory builds one of the two sub-networks from its in/out dims.
type NetworkFactory func(in, out int, src xrand.Source) (*nn.FeedForward, error)

// Config sizes the antisymmetrizer. Factories default to two-layer
// bias-free networks; the final bias is dropped because the odd
// combination subtracts it out.
type Config struct {
	LatentDim   int
	PairFactory NetworkFactory
	OddFactory  NetworkFactory
}

type Laughlin struct {
	pair *nn.FeedForward
	odd  *nn.FeedForward
}

func defaultFactory(in, out int, src xrand.Source) (*nn.FeedForward, error) {
	return nn.NewLogFeedForward(in, out, 2, false, src)
}

func New(cfg Config, src xrand.Source) (*Laughlin, error) {
	if cfg.LatentDim < 1 {
		return nil, fmt.Errorf("latent dim must be positive, got %d", cfg.LatentDim)
	}
	pairFactory := cfg.PairFactory
	if pairFactory == nil {
		pairFactory = defaultFactory
	}
	oddFactory := cfg.OddFactory
	if oddFactory == nil {
		oddFactory = defaultFactory
	}
	pair, err := pairFactory(pairInDim, cfg.LatentDim, src)
	if err != nil {
		return nil, fmt.Errorf("pair network: %w", err)
	}
	if pair.InDim() != pairInDim || pair.OutDim() != cfg.LatentDim {
		return nil, fmt.Errorf("pair network dims %dx%d, want %dx%d",
			pair.InDim(), pair.OutDim(), pairInDim, cfg.LatentDim)
	}
	odd, err := oddFactory(cfg.LatentDim, 1, src)
	if err != nil {
		return nil, fmt.Errorf("odd network: %w", err)
	}
	if odd.InDim() != cfg.LatentDim || odd.OutDim() != 1 {
		return nil, fmt.Errorf("odd network dims %dx%d, want %dx1", odd.InDim(), odd.OutDim(), cfg.LatentDim)
	}
	return &Laughlin{pair: pair, odd: odd}, nil
}

// Apply evaluates the group scalar for one sample. xs are the group's
// coordinates and dists its intra-group distance matrix.
func (l *Laughlin) Apply(xs [][3]float64, dists [][]float64, tr trace.Tracer) (float64, error) {
	n := len(xs)
	if n < 2 {
		return 0, fmt.Errorf("antisymmetrizer needs at least 2 particles, got %d", n)
	}
	if len(dists) != n {
		return 0, fmt.Errorf("distance matrix has %d rows, want %d", len(dists), n)
	}
	for i, row := range dists {
		if len(row) != n {
			return 0, fmt.Errorf("distance matrix row %d has %d columns, want %d", i, len(row), n)
		}
	}

	// Coordinates enter relative to the group centroid. The centroid is
	// permutation-symmetric, so exchange behavior is unchanged, and a
	// uniform shift of the whole configuration cancels out.
	var centroid [3]float64
	for _, x := range xs {
		centroid[0] += x[0] / float64(n)
		centroid[1] += x[1] / float64(n)
		centroid[2] += x[2] / float64(n)
	}
	rel := make([][3]float64, n)
	for i, x := range xs {
		rel[i] = [3]float64{x[0] - centroid[0], x[1] - centroid[1], x[2] - centroid[2]}
	}

	latents := make([][][]float64, n)
	for i := range latents {
		latents[i] = make([][]float64, n)
	}
	feat := make([]float64, pairInDim)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			feat[0], feat[1], feat[2] = rel[i][0], rel[i][1], rel[i][2]
			feat[3], feat[4], feat[5] = rel[j][0], rel[j][1], rel[j][2]
			feat[6] = dists[i][j]
			z, err := l.pair.Apply(feat)
			if err != nil {
				return 0, fmt.Errorf("pair (%d,%d): %w", i, j, err)
			}
			latents[i][j] = z
		}
	}

	factors := make([]float64, 0, n*(n-1)/2)
	result := 1.0
	u := make([]float64, l.pair.OutDim())
	neg := make([]float64, l.pair.OutDim())
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for k := range u {
				u[k] = latents[i][j][k] - latents[j][i][k]
				neg[k] = -u[k]
			}
			plus, err := l.odd.ApplyScalar(u)
			if err != nil {
				return 0, fmt.Errorf("odd (%d,%d): %w", i, j, err)
			}
			minus, err := l.odd.ApplyScalar(neg)
			if err != nil {
				return 0, fmt.Errorf("odd (%d,%d): %w", i, j, err)
			}
			f := nn.Sigmoid(plus) - nn.Sigmoid(minus)
			factors = append(factors, f)
			result *= f
		}
	}
	tr.RecordVector("pair_factors", factors)
	tr.Record("value", result)
	return result, nil
}

// State exports the antisymmetrizer's tensors under prefix.
func (l *Laughlin) State(prefix string, dst map[string]model.Tensor) {
	l.pair.State(prefix+".pair", dst)
	l.odd.State(prefix+".odd", dst)
}

// LoadState restores the antisymmetrizer's tensors from src.
func (l *Laughlin) LoadState(prefix string, src map[string]model.Tensor) error {
	if err := l.pair.LoadState(prefix+".pair", src); err != nil {
		return err
	}
	return l.odd.LoadState(prefix+".odd", src)
}
