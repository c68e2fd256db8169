package storage

import (
	"errors"
	"testing"

	"qmcnet/internal/model"
)

func TestCheckpointCodecRoundTrip(t *testing.T) {
	in := testCheckpoint("ckpt-1", "2026-08-26T10:00:00Z")
	data, err := EncodeCheckpoint(in)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	out, err := DecodeCheckpoint(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out.ID != in.ID || out.Config.NUp != 1 {
		t.Fatalf("round trip mismatch: %+v", out)
	}
	if out.Params["asymp_nuc.ion_pot"].Data[0] != 0.5 {
		t.Fatalf("tensor lost in round trip: %+v", out.Params)
	}
}

func TestDecodeCheckpointRejectsVersionMismatch(t *testing.T) {
	in := testCheckpoint("ckpt-1", "2026-08-26T10:00:00Z")
	in.CodecVersion = 99
	data, err := EncodeCheckpoint(in)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if _, err := DecodeCheckpoint(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestEncodeCheckpointRejectsCorruptTensor(t *testing.T) {
	in := testCheckpoint("ckpt-1", "2026-08-26T10:00:00Z")
	in.Params["bad"] = model.Tensor{Shape: []int{2}, Data: []float64{1}}
	if _, err := EncodeCheckpoint(in); err == nil {
		t.Fatal("expected tensor validation error")
	}
}

func TestAmplitudesCodec(t *testing.T) {
	in := model.AmplitudeRecord{VersionedRecord: Stamp(), RunID: "run-1", Amplitudes: []float64{1, 2}}
	data, err := EncodeAmplitudes(in)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	out, err := DecodeAmplitudes(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out.RunID != "run-1" || len(out.Amplitudes) != 2 {
		t.Fatalf("round trip mismatch: %+v", out)
	}

	in.SchemaVersion = 0
	data, _ = EncodeAmplitudes(in)
	if _, err := DecodeAmplitudes(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}
