package storage

import (
	"context"
	"sort"
	"sync"

	"qmcnet/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	checkpoints map[string]model.Checkpoint
	amplitudes  map[string]model.AmplitudeRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.checkpoints = make(map[string]model.Checkpoint)
	s.amplitudes = make(map[string]model.AmplitudeRecord)
	return nil
}

func (s *MemoryStore) SaveCheckpoint(_ context.Context, checkpoint model.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints[checkpoint.ID] = checkpoint
	return nil
}

func (s *MemoryStore) GetCheckpoint(_ context.Context, id string) (model.Checkpoint, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	checkpoint, ok := s.checkpoints[id]
	return checkpoint, ok, nil
}

func (s *MemoryStore) ListCheckpoints(_ context.Context) ([]model.CheckpointInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]model.CheckpointInfo, 0, len(s.checkpoints))
	for _, c := range s.checkpoints {
		infos = append(infos, model.CheckpointInfo{
			ID:           c.ID,
			CreatedAtUTC: c.CreatedAtUTC,
			NumParams:    len(c.Params),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		if infos[i].CreatedAtUTC != infos[j].CreatedAtUTC {
			return infos[i].CreatedAtUTC > infos[j].CreatedAtUTC
		}
		return infos[i].ID < infos[j].ID
	})
	return infos, nil
}

func (s *MemoryStore) DeleteCheckpoint(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.checkpoints, id)
	return nil
}

func (s *MemoryStore) SaveAmplitudes(_ context.Context, record model.AmplitudeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.amplitudes[record.RunID] = record
	return nil
}

func (s *MemoryStore) GetAmplitudes(_ context.Context, runID string) (model.AmplitudeRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.amplitudes[runID]
	return record, ok, nil
}
