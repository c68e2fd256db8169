package wf

import (
	xrand "golang.org/x/exp/rand"

	"qmcnet/internal/anti"
	"qmcnet/internal/asymp"
	"qmcnet/internal/basis"
	"qmcnet/internal/nn"
	"qmcnet/internal/schnet"
)

// OrbitalFactory builds the network behind the Jastrow head.
type OrbitalFactory func(embeddingDim int, src xrand.Source) (*nn.FeedForward, error)

// Options is the constructor-time configuration surface. Zero values
// fall back to the documented defaults; each sub-component receives an
// explicit config assembled here rather than a shared options bag.
type Options struct {
	BasisDim       int
	KernelDim      int
	EmbeddingDim   int
	LatentDim      int
	NInteractions  int
	NOrbitalLayers int

	// IonPot is the initial ionization potential; Alpha the decay-rate
	// prior shared by the asymptotic factors; Cutoff the reach of the
	// distance basis.
	IonPot float64
	Alpha  float64
	Cutoff float64

	// CuspSame and CuspAnti toggle the electronic asymptotic factors:
	// nil leaves the corresponding factor out entirely.
	CuspSame *float64
	CuspAnti *float64

	Seed uint64

	// Architecture substitution points; nil selects the defaults.
	InteractionFactory schnet.InteractionFactory
	OrbitalFactory     OrbitalFactory
	PairFactory        anti.NetworkFactory
	OddFactory         anti.NetworkFactory
}

const (
	DefaultKernelDim      = 64
	DefaultEmbeddingDim   = 128
	DefaultLatentDim      = 10
	DefaultNInteractions  = 3
	DefaultNOrbitalLayers = 3
	DefaultIonPot         = 0.5
)

func (o Options) withDefaults() Options {
	if o.BasisDim == 0 {
		o.BasisDim = basis.DefaultDim
	}
	if o.KernelDim == 0 {
		o.KernelDim = DefaultKernelDim
	}
	if o.EmbeddingDim == 0 {
		o.EmbeddingDim = DefaultEmbeddingDim
	}
	if o.LatentDim == 0 {
		o.LatentDim = DefaultLatentDim
	}
	if o.NInteractions == 0 {
		o.NInteractions = DefaultNInteractions
	}
	if o.NOrbitalLayers == 0 {
		o.NOrbitalLayers = DefaultNOrbitalLayers
	}
	if o.IonPot == 0 {
		o.IonPot = DefaultIonPot
	}
	if o.Alpha == 0 {
		o.Alpha = asymp.DefaultAlpha
	}
	if o.Cutoff == 0 {
		o.Cutoff = basis.DefaultCutoff
	}
	if o.OrbitalFactory == nil {
		o.OrbitalFactory = defaultOrbitalFactory(o.NOrbitalLayers)
	}
	return o
}

func defaultOrbitalFactory(nLayers int) OrbitalFactory {
	return func(embeddingDim int, src xrand.Source) (*nn.FeedForward, error) {
		return nn.NewLogFeedForward(embeddingDim, 1, nLayers, true, src)
	}
}
