// Package qmcnet is the public client surface: it builds wavefunction
// models, evaluates amplitude batches, and persists checkpoints and
// evaluation results through a pluggable store.
package qmcnet

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"qmcnet/internal/model"
	"qmcnet/internal/storage"
	"qmcnet/internal/trace"
	"qmcnet/internal/wf"
)

const (
	defaultDBPath       = "qmcnet.db"
	defaultSampleCount  = 16
	defaultSampleSpread = 1.0
)

type Options struct {
	StoreKind string
	DBPath    string
}

type Client struct {
	store       storage.Store
	initialized bool
}

// ModelRequest carries the constructor hyperparameters of a model.
// Zero-valued fields fall back to the model defaults.
type ModelRequest struct {
	Geometry       model.Geometry
	NUp            int
	NDown          int
	BasisDim       int
	KernelDim      int
	EmbeddingDim   int
	LatentDim      int
	NInteractions  int
	NOrbitalLayers int
	Cutoff         float64
	Alpha          float64
	IonPot         float64
	CuspSame       *float64
	CuspAnti       *float64
	Seed           uint64
}

// EvaluateRequest evaluates either explicit configurations or a sampled
// batch, on a freshly built model or one restored from a checkpoint.
type EvaluateRequest struct {
	Model        ModelRequest
	CheckpointID string

	Configurations []model.Configuration
	Samples        int
	SampleSpread   float64
	SampleSeed     uint64

	Persist bool
	Trace   bool
}

type EvaluateSummary struct {
	RunID        string
	Amplitudes   []float64
	LogAbsMean   float64
	LogAbsStdDev float64
	ZeroCount    int
	Trace        map[string]trace.Entry
}

type DescribeRequest struct {
	Model        ModelRequest
	CheckpointID string
}

type ModelSummary struct {
	Config     model.ModelConfig
	AntiUp     bool
	AntiDown   bool
	Parameters []model.TrackedParameter
	NumTensors int
}

type SaveCheckpointRequest struct {
	Model ModelRequest
	ID    string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureStore(ctx)
}

func (c *Client) Evaluate(ctx context.Context, req EvaluateRequest) (EvaluateSummary, error) {
	w, err := c.resolveModel(ctx, req.Model, req.CheckpointID)
	if err != nil {
		return EvaluateSummary{}, err
	}

	batch := req.Configurations
	if len(batch) == 0 {
		samples := req.Samples
		if samples <= 0 {
			samples = defaultSampleCount
		}
		spread := req.SampleSpread
		if spread <= 0 {
			spread = defaultSampleSpread
		}
		batch = sampleConfigurations(w.Geometry(), w.NumElectrons(), samples, spread, req.SampleSeed)
	}

	var tr trace.Tracer = trace.Nop()
	var recorder *trace.Recorder
	if req.Trace {
		recorder = trace.NewRecorder()
		tr = recorder
	}

	amplitudes, err := w.Evaluate(batch, tr)
	if err != nil {
		return EvaluateSummary{}, err
	}

	summary := EvaluateSummary{
		RunID:      uuid.NewString(),
		Amplitudes: amplitudes,
	}
	summary.LogAbsMean, summary.LogAbsStdDev, summary.ZeroCount = logAbsStats(amplitudes)
	if recorder != nil {
		summary.Trace = recorder.Entries()
	}

	if req.Persist {
		if err := c.ensureStore(ctx); err != nil {
			return EvaluateSummary{}, err
		}
		record := model.AmplitudeRecord{
			VersionedRecord: storage.Stamp(),
			RunID:           summary.RunID,
			CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339Nano),
			Amplitudes:      amplitudes,
		}
		if err := c.store.SaveAmplitudes(ctx, record); err != nil {
			return EvaluateSummary{}, fmt.Errorf("persist amplitudes: %w", err)
		}
	}
	return summary, nil
}

func (c *Client) Describe(ctx context.Context, req DescribeRequest) (ModelSummary, error) {
	w, err := c.resolveModel(ctx, req.Model, req.CheckpointID)
	if err != nil {
		return ModelSummary{}, err
	}
	up, down := w.HasAntisymmetrizers()
	return ModelSummary{
		Config:     w.Config(),
		AntiUp:     up,
		AntiDown:   down,
		Parameters: w.TrackedParameters(),
		NumTensors: len(w.State()),
	}, nil
}

func (c *Client) SaveCheckpoint(ctx context.Context, req SaveCheckpointRequest) (model.CheckpointInfo, error) {
	w, err := buildModel(req.Model)
	if err != nil {
		return model.CheckpointInfo{}, err
	}
	if err := c.ensureStore(ctx); err != nil {
		return model.CheckpointInfo{}, err
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	checkpoint := model.Checkpoint{
		VersionedRecord: storage.Stamp(),
		ID:              id,
		CreatedAtUTC:    time.Now().UTC().Format(time.RFC3339Nano),
		Config:          w.Config(),
		Params:          w.State(),
	}
	if err := c.store.SaveCheckpoint(ctx, checkpoint); err != nil {
		return model.CheckpointInfo{}, fmt.Errorf("save checkpoint: %w", err)
	}
	return model.CheckpointInfo{
		ID:           checkpoint.ID,
		CreatedAtUTC: checkpoint.CreatedAtUTC,
		NumParams:    len(checkpoint.Params),
	}, nil
}

func (c *Client) Checkpoints(ctx context.Context) ([]model.CheckpointInfo, error) {
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}
	return c.store.ListCheckpoints(ctx)
}

func (c *Client) DeleteCheckpoint(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("checkpoint id is required")
	}
	if err := c.ensureStore(ctx); err != nil {
		return err
	}
	return c.store.DeleteCheckpoint(ctx, id)
}

func (c *Client) Amplitudes(ctx context.Context, runID string) (model.AmplitudeRecord, error) {
	if runID == "" {
		return model.AmplitudeRecord{}, errors.New("run id is required")
	}
	if err := c.ensureStore(ctx); err != nil {
		return model.AmplitudeRecord{}, err
	}
	record, ok, err := c.store.GetAmplitudes(ctx, runID)
	if err != nil {
		return model.AmplitudeRecord{}, err
	}
	if !ok {
		return model.AmplitudeRecord{}, fmt.Errorf("amplitudes not found for run id: %s", runID)
	}
	return record, nil
}

func (c *Client) resolveModel(ctx context.Context, req ModelRequest, checkpointID string) (*wf.WaveFunction, error) {
	if checkpointID != "" && req.Geometry.NumNuclei() > 0 {
		return nil, errors.New("use either model config or checkpoint id")
	}
	if checkpointID == "" {
		return buildModel(req)
	}

	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}
	checkpoint, ok, err := c.store.GetCheckpoint(ctx, checkpointID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("checkpoint not found: %s", checkpointID)
	}

	w, err := buildModel(requestFromConfig(checkpoint.Config))
	if err != nil {
		return nil, fmt.Errorf("rebuild model from checkpoint %s: %w", checkpointID, err)
	}
	if err := w.LoadState(checkpoint.Params); err != nil {
		return nil, fmt.Errorf("restore checkpoint %s: %w", checkpointID, err)
	}
	return w, nil
}

func (c *Client) ensureStore(ctx context.Context) error {
	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

func buildModel(req ModelRequest) (*wf.WaveFunction, error) {
	return wf.New(req.Geometry, req.NUp, req.NDown, wf.Options{
		BasisDim:       req.BasisDim,
		KernelDim:      req.KernelDim,
		EmbeddingDim:   req.EmbeddingDim,
		LatentDim:      req.LatentDim,
		NInteractions:  req.NInteractions,
		NOrbitalLayers: req.NOrbitalLayers,
		Cutoff:         req.Cutoff,
		Alpha:          req.Alpha,
		IonPot:         req.IonPot,
		CuspSame:       req.CuspSame,
		CuspAnti:       req.CuspAnti,
		Seed:           req.Seed,
	})
}

func requestFromConfig(cfg model.ModelConfig) ModelRequest {
	return ModelRequest{
		Geometry:       cfg.Geometry,
		NUp:            cfg.NUp,
		NDown:          cfg.NDown,
		BasisDim:       cfg.BasisDim,
		KernelDim:      cfg.KernelDim,
		EmbeddingDim:   cfg.EmbeddingDim,
		LatentDim:      cfg.LatentDim,
		NInteractions:  cfg.NInteractions,
		NOrbitalLayers: cfg.NOrbitalLayers,
		Cutoff:         cfg.Cutoff,
		Alpha:          cfg.Alpha,
		IonPot:         cfg.IonPot,
		CuspSame:       cfg.CuspSame,
		CuspAnti:       cfg.CuspAnti,
		Seed:           cfg.Seed,
	}
}

// sampleConfigurations draws electrons from isotropic Gaussians centred
// on the nuclei, assigned round-robin so every nucleus is populated.
func sampleConfigurations(g model.Geometry, nElectrons, count int, spread float64, seed uint64) []model.Configuration {
	normal := distuv.Normal{Mu: 0, Sigma: spread, Src: xrand.NewSource(seed)}
	out := make([]model.Configuration, count)
	for s := range out {
		cfg := make(model.Configuration, nElectrons)
		for i := 0; i < nElectrons; i++ {
			center := g.Coords[i%g.NumNuclei()]
			for k := 0; k < 3; k++ {
				cfg[i][k] = center[k] + normal.Rand()
			}
		}
		out[s] = cfg
	}
	return out
}

// logAbsStats summarizes log|amplitude| over the non-zero amplitudes.
func logAbsStats(amplitudes []float64) (mean, stddev float64, zeros int) {
	logs := make([]float64, 0, len(amplitudes))
	for _, a := range amplitudes {
		if a == 0 {
			zeros++
			continue
		}
		logs = append(logs, math.Log(math.Abs(a)))
	}
	if len(logs) == 0 {
		return 0, 0, zeros
	}
	mean = stat.Mean(logs, nil)
	if len(logs) > 1 {
		stddev = stat.StdDev(logs, nil)
	}
	return mean, stddev, zeros
}
