// Package trace provides the diagnostic hook threaded through a forward
// evaluation. The default tracer is a no-op; a Recorder captures every
// named intermediate value without changing the computation.
package trace

import "sync"

// Tracer receives named intermediate values under hierarchical scopes.
type Tracer interface {
	// Scope returns a tracer whose records are nested under name.
	Scope(name string) Tracer
	Record(name string, value float64)
	RecordVector(name string, value []float64)
	RecordMatrix(name string, value [][]float64)
}

type nopTracer struct{}

func (nopTracer) Scope(string) Tracer             { return nopTracer{} }
func (nopTracer) Record(string, float64)          {}
func (nopTracer) RecordVector(string, []float64)  {}
func (nopTracer) RecordMatrix(string, [][]float64) {}

// Nop returns the zero-overhead default tracer.
func Nop() Tracer {
	return nopTracer{}
}

// Entry is one recorded value. Exactly one of the three fields is set.
type Entry struct {
	Scalar *float64    `json:"scalar,omitempty"`
	Vector []float64   `json:"vector,omitempty"`
	Matrix [][]float64 `json:"matrix,omitempty"`
}

// Recorder collects entries keyed by dot-joined scope paths. Values are
// deep-copied at record time so later mutation of the traced buffers
// cannot corrupt the trace.
type Recorder struct {
	mu      *sync.Mutex
	prefix  string
	entries map[string]Entry
}

func NewRecorder() *Recorder {
	return &Recorder{mu: &sync.Mutex{}, entries: make(map[string]Entry)}
}

func (r *Recorder) key(name string) string {
	if r.prefix == "" {
		return name
	}
	return r.prefix + "." + name
}

func (r *Recorder) Scope(name string) Tracer {
	return &Recorder{mu: r.mu, prefix: r.key(name), entries: r.entries}
}

func (r *Recorder) Record(name string, value float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := value
	r.entries[r.key(name)] = Entry{Scalar: &v}
}

func (r *Recorder) RecordVector(name string, value []float64) {
	cp := make([]float64, len(value))
	copy(cp, value)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.key(name)] = Entry{Vector: cp}
}

func (r *Recorder) RecordMatrix(name string, value [][]float64) {
	cp := make([][]float64, len(value))
	for i, row := range value {
		cp[i] = make([]float64, len(row))
		copy(cp[i], row)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.key(name)] = Entry{Matrix: cp}
}

// Entries returns a snapshot of everything recorded so far.
func (r *Recorder) Entries() map[string]Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]Entry, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out
}
