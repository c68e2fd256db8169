package main

import (
	"encoding/json"
	"fmt"
	"os"

	"qmcnet/internal/model"
	qmcapi "qmcnet/pkg/qmcnet"
)

// modelConfigFile mirrors the checkpoint config schema so a stored
// config can be fed back in unchanged.
type modelConfigFile struct {
	Geometry       model.Geometry `json:"geometry"`
	NUp            int            `json:"n_up"`
	NDown          int            `json:"n_down"`
	BasisDim       int            `json:"basis_dim"`
	KernelDim      int            `json:"kernel_dim"`
	EmbeddingDim   int            `json:"embedding_dim"`
	LatentDim      int            `json:"latent_dim"`
	NInteractions  int            `json:"n_interactions"`
	NOrbitalLayers int            `json:"n_orbital_layers"`
	Cutoff         float64        `json:"cutoff"`
	Alpha          float64        `json:"alpha"`
	IonPot         float64        `json:"ion_pot"`
	CuspSame       *float64       `json:"cusp_same"`
	CuspAnti       *float64       `json:"cusp_anti"`
	Seed           uint64         `json:"seed"`
}

func loadModelRequest(path string) (qmcapi.ModelRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return qmcapi.ModelRequest{}, err
	}
	var file modelConfigFile
	if err := json.Unmarshal(data, &file); err != nil {
		return qmcapi.ModelRequest{}, fmt.Errorf("decode model config: %w", err)
	}
	if err := file.Geometry.Validate(); err != nil {
		return qmcapi.ModelRequest{}, fmt.Errorf("model config geometry: %w", err)
	}
	return qmcapi.ModelRequest{
		Geometry:       file.Geometry,
		NUp:            file.NUp,
		NDown:          file.NDown,
		BasisDim:       file.BasisDim,
		KernelDim:      file.KernelDim,
		EmbeddingDim:   file.EmbeddingDim,
		LatentDim:      file.LatentDim,
		NInteractions:  file.NInteractions,
		NOrbitalLayers: file.NOrbitalLayers,
		Cutoff:         file.Cutoff,
		Alpha:          file.Alpha,
		IonPot:         file.IonPot,
		CuspSame:       file.CuspSame,
		CuspAnti:       file.CuspAnti,
		Seed:           file.Seed,
	}, nil
}

// defaultModelRequest is the hydrogen molecule at its equilibrium bond
// length of 1.4 bohr, one electron per spin.
func defaultModelRequest() qmcapi.ModelRequest {
	return qmcapi.ModelRequest{
		Geometry: model.Geometry{
			Coords:  [][3]float64{{0, 0, 0}, {1.4, 0, 0}},
			Charges: []float64{1, 1},
		},
		NUp:   1,
		NDown: 1,
		Seed:  1,
	}
}

func loadOrDefaultModelRequest(configPath string) (qmcapi.ModelRequest, error) {
	if configPath == "" {
		return defaultModelRequest(), nil
	}
	req, err := loadModelRequest(configPath)
	if err != nil {
		return qmcapi.ModelRequest{}, fmt.Errorf("load config: %w", err)
	}
	return req, nil
}

func loadConfigurations(path string) ([]model.Configuration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var batch []model.Configuration
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("decode configuration batch: %w", err)
	}
	if len(batch) == 0 {
		return nil, fmt.Errorf("configuration batch is empty")
	}
	return batch, nil
}
