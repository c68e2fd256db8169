package trace

import "testing"

func TestNopTracerIsInert(t *testing.T) {
	tr := Nop()
	tr.Record("a", 1)
	tr.RecordVector("b", []float64{1})
	sub := tr.Scope("x")
	sub.RecordMatrix("c", [][]float64{{1}})
	if _, ok := sub.(nopTracer); !ok {
		t.Fatal("nop scope should stay nop")
	}
}

func TestRecorderScopedPaths(t *testing.T) {
	r := NewRecorder()
	r.Record("jastrow", 0.5)
	schnet := r.Scope("schnet")
	schnet.RecordVector("embedding0", []float64{1, 2})
	deep := schnet.Scope("interaction1")
	deep.RecordMatrix("messages", [][]float64{{3}})

	entries := r.Entries()
	if e, ok := entries["jastrow"]; !ok || e.Scalar == nil || *e.Scalar != 0.5 {
		t.Fatalf("missing scalar entry: %+v", entries)
	}
	if e, ok := entries["schnet.embedding0"]; !ok || len(e.Vector) != 2 {
		t.Fatalf("missing vector entry: %+v", entries)
	}
	if e, ok := entries["schnet.interaction1.messages"]; !ok || e.Matrix[0][0] != 3 {
		t.Fatalf("missing matrix entry: %+v", entries)
	}
}

func TestRecorderCopiesData(t *testing.T) {
	r := NewRecorder()
	vec := []float64{1, 2, 3}
	r.RecordVector("v", vec)
	vec[0] = 99
	if got := r.Entries()["v"].Vector[0]; got != 1 {
		t.Fatalf("recorder aliased caller buffer: %f", got)
	}

	m := [][]float64{{1, 2}, {3, 4}}
	r.RecordMatrix("m", m)
	m[1][0] = -1
	if got := r.Entries()["m"].Matrix[1][0]; got != 3 {
		t.Fatalf("recorder aliased matrix buffer: %f", got)
	}
}

func TestRecorderOverwriteKeepsLatest(t *testing.T) {
	r := NewRecorder()
	r.Record("x", 1)
	r.Record("x", 2)
	if got := *r.Entries()["x"].Scalar; got != 2 {
		t.Fatalf("expected latest value, got %f", got)
	}
}
