package model

import "fmt"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Geometry is the fixed nuclear frame of a wavefunction model: one 3D
// position and one charge per nucleus. It is set once at construction
// and never mutated by the forward computation.
type Geometry struct {
	Coords  [][3]float64 `json:"coords"`
	Charges []float64    `json:"charges"`
}

func (g Geometry) NumNuclei() int {
	return len(g.Coords)
}

func (g Geometry) Validate() error {
	if len(g.Coords) == 0 {
		return fmt.Errorf("geometry must contain at least one nucleus")
	}
	if len(g.Coords) != len(g.Charges) {
		return fmt.Errorf("geometry position/charge count mismatch: %d != %d", len(g.Coords), len(g.Charges))
	}
	for i, z := range g.Charges {
		if z <= 0 {
			return fmt.Errorf("nucleus %d has non-positive charge %f", i, z)
		}
	}
	return nil
}

// Configuration is one sample: the ordered electron coordinates, up-spin
// electrons first, then down-spin.
type Configuration [][3]float64

// Tensor is a flat row-major view of a learnable weight block, used by
// the checkpoint codec.
type Tensor struct {
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

func (t Tensor) NumElements() int {
	if len(t.Shape) == 0 {
		return 0
	}
	n := 1
	for _, d := range t.Shape {
		n *= d
	}
	return n
}

func (t Tensor) Validate() error {
	for i, d := range t.Shape {
		if d <= 0 {
			return fmt.Errorf("tensor dimension %d is non-positive: %d", i, d)
		}
	}
	if t.NumElements() != len(t.Data) {
		return fmt.Errorf("tensor shape %v wants %d elements, data has %d", t.Shape, t.NumElements(), len(t.Data))
	}
	return nil
}

// ModelConfig records the constructor hyperparameters of a wavefunction
// model so that a checkpoint is self-describing.
type ModelConfig struct {
	Geometry       Geometry `json:"geometry"`
	NUp            int      `json:"n_up"`
	NDown          int      `json:"n_down"`
	BasisDim       int      `json:"basis_dim"`
	KernelDim      int      `json:"kernel_dim"`
	EmbeddingDim   int      `json:"embedding_dim"`
	LatentDim      int      `json:"latent_dim"`
	NInteractions  int      `json:"n_interactions"`
	NOrbitalLayers int      `json:"n_orbital_layers"`
	Cutoff         float64  `json:"cutoff"`
	Alpha          float64  `json:"alpha"`
	IonPot         float64  `json:"ion_pot"`
	CuspSame       *float64 `json:"cusp_same,omitempty"`
	CuspAnti       *float64 `json:"cusp_anti,omitempty"`
	Seed           uint64   `json:"seed"`
}

// Checkpoint is a persisted snapshot of all learnable parameters of one
// model instance.
type Checkpoint struct {
	VersionedRecord
	ID           string            `json:"id"`
	CreatedAtUTC string            `json:"created_at_utc"`
	Config       ModelConfig       `json:"config"`
	Params       map[string]Tensor `json:"params"`
}

// CheckpointInfo is the listing view of a stored checkpoint.
type CheckpointInfo struct {
	ID           string `json:"id"`
	CreatedAtUTC string `json:"created_at_utc"`
	NumParams    int    `json:"num_params"`
}

// AmplitudeRecord is one persisted evaluation batch keyed by run ID.
type AmplitudeRecord struct {
	VersionedRecord
	RunID        string    `json:"run_id"`
	CreatedAtUTC string    `json:"created_at_utc"`
	Amplitudes   []float64 `json:"amplitudes"`
}

// TrackedParameter is a physical scalar parameter exposed by name for
// external logging or regularization.
type TrackedParameter struct {
	Label string
	Value float64
}
