// Package wf assembles the full wavefunction ansatz: distance features
// feed a message-passing embedding network whose per-electron outputs
// form an exchange-symmetric Jastrow factor, while per-spin-group
// antisymmetrizers and closed-form asymptotic factors multiply in the
// exchange and cusp/decay structure.
package wf

import (
	"fmt"
	"math"

	xrand "golang.org/x/exp/rand"

	"qmcnet/internal/anti"
	"qmcnet/internal/asymp"
	"qmcnet/internal/basis"
	"qmcnet/internal/geom"
	"qmcnet/internal/model"
	"qmcnet/internal/nn"
	"qmcnet/internal/schnet"
	"qmcnet/internal/trace"
)

type WaveFunction struct {
	geometry model.Geometry
	nUp      int
	nDown    int
	opts     Options

	basis   *basis.DistanceBasis
	net     *schnet.Network
	orbital *nn.FeedForward

	antiUp   *anti.Laughlin
	antiDown *anti.Laughlin

	asympNuc  *asymp.Nuclear
	asympSame *asymp.Electronic
	asympAnti *asymp.Electronic
}

// New validates the geometry and spin partition and builds every
// sub-network deterministically from opts.Seed. Spin groups with fewer
// than two electrons get no antisymmetrizer, and electronic asymptotic
// factors exist only for configured cusp coefficients.
func New(geometry model.Geometry, nUp, nDown int, opts Options) (*WaveFunction, error) {
	if err := geometry.Validate(); err != nil {
		return nil, fmt.Errorf("geometry: %w", err)
	}
	if nUp < 0 || nDown < 0 || nUp+nDown < 1 {
		return nil, fmt.Errorf("spin partition must be non-negative with at least one electron, got n_up=%d n_down=%d", nUp, nDown)
	}
	opts = opts.withDefaults()
	src := xrand.NewSource(opts.Seed)

	w := &WaveFunction{geometry: geometry, nUp: nUp, nDown: nDown, opts: opts}

	var err error
	w.basis, err = basis.New(basis.Config{Dim: opts.BasisDim, Cutoff: opts.Cutoff})
	if err != nil {
		return nil, fmt.Errorf("distance basis: %w", err)
	}
	w.net, err = schnet.New(schnet.Config{
		NUp: nUp, NDown: nDown,
		NNuclei:       geometry.NumNuclei(),
		NInteractions: opts.NInteractions,
		BasisDim:      opts.BasisDim,
		KernelDim:     opts.KernelDim,
		EmbeddingDim:  opts.EmbeddingDim,
		Factory:       opts.InteractionFactory,
	}, src)
	if err != nil {
		return nil, fmt.Errorf("embedding network: %w", err)
	}
	w.orbital, err = opts.OrbitalFactory(opts.EmbeddingDim, src)
	if err != nil {
		return nil, fmt.Errorf("orbital head: %w", err)
	}
	if w.orbital.InDim() != opts.EmbeddingDim || w.orbital.OutDim() != 1 {
		return nil, fmt.Errorf("orbital head dims %dx%d, want %dx1", w.orbital.InDim(), w.orbital.OutDim(), opts.EmbeddingDim)
	}

	antiCfg := anti.Config{LatentDim: opts.LatentDim, PairFactory: opts.PairFactory, OddFactory: opts.OddFactory}
	if nUp > 1 {
		if w.antiUp, err = anti.New(antiCfg, src); err != nil {
			return nil, fmt.Errorf("up-spin antisymmetrizer: %w", err)
		}
	}
	if nDown > 1 {
		if w.antiDown, err = anti.New(antiCfg, src); err != nil {
			return nil, fmt.Errorf("down-spin antisymmetrizer: %w", err)
		}
	}

	if w.asympNuc, err = asymp.NewNuclear(geometry.Charges, opts.IonPot, opts.Alpha); err != nil {
		return nil, fmt.Errorf("nuclear asymptotic: %w", err)
	}
	if opts.CuspSame != nil {
		if w.asympSame, err = asymp.NewElectronic(*opts.CuspSame, opts.Alpha); err != nil {
			return nil, fmt.Errorf("same-spin asymptotic: %w", err)
		}
	}
	if opts.CuspAnti != nil {
		if w.asympAnti, err = asymp.NewElectronic(*opts.CuspAnti, opts.Alpha); err != nil {
			return nil, fmt.Errorf("opposite-spin asymptotic: %w", err)
		}
	}
	return w, nil
}

func (w *WaveFunction) NumElectrons() int         { return w.nUp + w.nDown }
func (w *WaveFunction) SpinPartition() (int, int) { return w.nUp, w.nDown }
func (w *WaveFunction) Geometry() model.Geometry  { return w.geometry }

// HasAntisymmetrizers reports which spin groups carry an explicit
// antisymmetrizer (absent for groups of fewer than two electrons).
func (w *WaveFunction) HasAntisymmetrizers() (up, down bool) {
	return w.antiUp != nil, w.antiDown != nil
}

// Config returns the hyperparameters needed to rebuild this model.
func (w *WaveFunction) Config() model.ModelConfig {
	return model.ModelConfig{
		Geometry:       w.geometry,
		NUp:            w.nUp,
		NDown:          w.nDown,
		BasisDim:       w.opts.BasisDim,
		KernelDim:      w.opts.KernelDim,
		EmbeddingDim:   w.opts.EmbeddingDim,
		LatentDim:      w.opts.LatentDim,
		NInteractions:  w.opts.NInteractions,
		NOrbitalLayers: w.opts.NOrbitalLayers,
		Cutoff:         w.opts.Cutoff,
		Alpha:          w.opts.Alpha,
		IonPot:         w.asympNuc.IonPot(),
		CuspSame:       w.opts.CuspSame,
		CuspAnti:       w.opts.CuspAnti,
		Seed:           w.opts.Seed,
	}
}

// Evaluate computes one signed amplitude per sample. Samples are
// independent; the tracer receives every intermediate under a per-sample
// scope and never alters the result.
func (w *WaveFunction) Evaluate(batch []model.Configuration, tr trace.Tracer) ([]float64, error) {
	if tr == nil {
		tr = trace.Nop()
	}
	out := make([]float64, len(batch))
	for s, cfg := range batch {
		v, err := w.forward(cfg, tr.Scope(fmt.Sprintf("sample%d", s)))
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", s, err)
		}
		out[s] = v
	}
	return out, nil
}

func (w *WaveFunction) forward(cfg model.Configuration, tr trace.Tracer) (float64, error) {
	n := w.NumElectrons()
	if len(cfg) != n {
		return 0, fmt.Errorf("configuration has %d electrons, want n_up+n_down=%d", len(cfg), n)
	}
	rs := [][3]float64(cfg)

	distsElec := geom.PairwiseDistances(rs, rs)
	distsNuc := geom.PairwiseDistances(rs, w.geometry.Coords)

	features := make([][][]float64, n)
	for i := 0; i < n; i++ {
		row := make([][]float64, 0, n+w.geometry.NumNuclei())
		for j := 0; j < n; j++ {
			row = append(row, w.basis.Expand(distsElec[i][j]))
		}
		for v := 0; v < w.geometry.NumNuclei(); v++ {
			row = append(row, w.basis.Expand(distsNuc[i][v]))
		}
		features[i] = row
	}

	xs, err := w.net.Forward(features, tr.Scope("schnet"))
	if err != nil {
		return 0, fmt.Errorf("embedding network: %w", err)
	}

	jastrow := 0.0
	for i := range xs {
		c, err := w.orbital.ApplyScalar(xs[i])
		if err != nil {
			return 0, fmt.Errorf("orbital head: %w", err)
		}
		jastrow += c
	}
	tr.Record("jastrow", jastrow)

	antiUp, antiDown := 1.0, 1.0
	if w.antiUp != nil {
		antiUp, err = w.antiUp.Apply(rs[:w.nUp], subMatrix(distsElec, 0, w.nUp), tr.Scope("anti_up"))
		if err != nil {
			return 0, fmt.Errorf("up-spin antisymmetrizer: %w", err)
		}
	}
	if w.antiDown != nil {
		antiDown, err = w.antiDown.Apply(rs[w.nUp:], subMatrix(distsElec, w.nUp, n), tr.Scope("anti_down"))
		if err != nil {
			return 0, fmt.Errorf("down-spin antisymmetrizer: %w", err)
		}
	}

	asympNuc, err := w.asympNuc.Apply(distsNuc)
	if err != nil {
		return 0, fmt.Errorf("nuclear asymptotic: %w", err)
	}
	tr.Record("asymp_nuc", asympNuc)

	asympSame := 1.0
	if w.asympSame != nil {
		pairDists, err := w.sameSpinPairDistances(distsElec)
		if err != nil {
			return 0, err
		}
		asympSame = w.asympSame.Apply(pairDists)
		tr.Record("asymp_same", asympSame)
	}

	asympAnti := 1.0
	if w.asympAnti != nil {
		// The up-vs-down distance block enters flattened in row-major
		// order, preserving the input ordering contract.
		block := make([][]float64, 0, w.nUp)
		for i := 0; i < w.nUp; i++ {
			block = append(block, distsElec[i][w.nUp:])
		}
		asympAnti = w.asympAnti.Apply(geom.FlattenBlock(block))
		tr.Record("asymp_anti", asympAnti)
	}

	amplitude := antiUp * antiDown * math.Exp(jastrow) * asympNuc * asympSame * asympAnti
	tr.Record("amplitude", amplitude)
	return amplitude, nil
}

// sameSpinPairDistances concatenates the flattened upper triangles of
// the two intra-group distance blocks.
func (w *WaveFunction) sameSpinPairDistances(distsElec [][]float64) ([]float64, error) {
	out := make([]float64, 0)
	for _, span := range [][2]int{{0, w.nUp}, {w.nUp, w.NumElectrons()}} {
		flat, err := geom.TriuFlat(subMatrix(distsElec, span[0], span[1]))
		if err != nil {
			return nil, fmt.Errorf("same-spin distances: %w", err)
		}
		out = append(out, flat...)
	}
	return out, nil
}

func subMatrix(m [][]float64, lo, hi int) [][]float64 {
	out := make([][]float64, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, m[i][lo:hi])
	}
	return out
}

// TrackedParameters lists the physical scalar parameters currently in
// the model, for external logging or regularization.
func (w *WaveFunction) TrackedParameters() []model.TrackedParameter {
	params := []model.TrackedParameter{{Label: "ion_pot", Value: w.asympNuc.IonPot()}}
	if w.asympSame != nil {
		params = append(params, model.TrackedParameter{Label: "cusp_same", Value: w.asympSame.Cusp()})
	}
	if w.asympAnti != nil {
		params = append(params, model.TrackedParameter{Label: "cusp_anti", Value: w.asympAnti.Cusp()})
	}
	return params
}

// State exports every learnable tensor of the model.
func (w *WaveFunction) State() map[string]model.Tensor {
	state := make(map[string]model.Tensor)
	w.net.State("schnet", state)
	w.orbital.State("orbital", state)
	if w.antiUp != nil {
		w.antiUp.State("anti_up", state)
	}
	if w.antiDown != nil {
		w.antiDown.State("anti_down", state)
	}
	w.asympNuc.State("asymp_nuc", state)
	if w.asympSame != nil {
		w.asympSame.State("asymp_same", state)
	}
	if w.asympAnti != nil {
		w.asympAnti.State("asymp_anti", state)
	}
	return state
}

// LoadState restores every learnable tensor from a checkpoint produced
// by a model with identical configuration.
func (w *WaveFunction) LoadState(state map[string]model.Tensor) error {
	for name, t := range state {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}
	}
	if err := w.net.LoadState("schnet", state); err != nil {
		return err
	}
	if err := w.orbital.LoadState("orbital", state); err != nil {
		return err
	}
	if w.antiUp != nil {
		if err := w.antiUp.LoadState("anti_up", state); err != nil {
			return err
		}
	}
	if w.antiDown != nil {
		if err := w.antiDown.LoadState("anti_down", state); err != nil {
			return err
		}
	}
	if err := w.asympNuc.LoadState("asymp_nuc", state); err != nil {
		return err
	}
	if w.asympSame != nil {
		if err := w.asympSame.LoadState("asymp_same", state); err != nil {
			return err
		}
	}
	if w.asympAnti != nil {
		if err := w.asympAnti.LoadState("asymp_anti", state); err != nil {
			return err
		}
	}
	return nil
}
