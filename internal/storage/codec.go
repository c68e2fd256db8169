package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"qmcnet/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

// Stamp fills in the current schema and codec versions.
func Stamp() model.VersionedRecord {
	return model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion}
}

func EncodeCheckpoint(c model.Checkpoint) ([]byte, error) {
	for name, t := range c.Params {
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("tensor %s: %w", name, err)
		}
	}
	return json.Marshal(c)
}

func DecodeCheckpoint(data []byte) (model.Checkpoint, error) {
	var checkpoint model.Checkpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return model.Checkpoint{}, err
	}
	if err := checkVersion(checkpoint.VersionedRecord); err != nil {
		return model.Checkpoint{}, err
	}
	for name, t := range checkpoint.Params {
		if err := t.Validate(); err != nil {
			return model.Checkpoint{}, fmt.Errorf("tensor %s: %w", name, err)
		}
	}
	return checkpoint, nil
}

func EncodeAmplitudes(r model.AmplitudeRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeAmplitudes(data []byte) (model.AmplitudeRecord, error) {
	var record model.AmplitudeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.AmplitudeRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return model.AmplitudeRecord{}, err
	}
	return record, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, v.SchemaVersion, v.CodecVersion)
	}
	return nil
}
