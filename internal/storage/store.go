package storage

import (
	"context"

	"qmcnet/internal/model"
)

// Store persists model checkpoints and evaluation amplitudes.
type Store interface {
	Init(ctx context.Context) error
	SaveCheckpoint(ctx context.Context, checkpoint model.Checkpoint) error
	GetCheckpoint(ctx context.Context, id string) (model.Checkpoint, bool, error)
	ListCheckpoints(ctx context.Context) ([]model.CheckpointInfo, error)
	DeleteCheckpoint(ctx context.Context, id string) error
	SaveAmplitudes(ctx context.Context, record model.AmplitudeRecord) error
	GetAmplitudes(ctx context.Context, runID string) (model.AmplitudeRecord, bool, error)
}
