// Package metrics exposes resolution counters. Components take a Recorder and
// default to NoopRecorder, so nothing needs a nil check.
package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultClean   ResultLabel = "clean"
	ResultWarning ResultLabel = "warning"
)

// Recorder receives per-run observations from the resolver chain and the
// pipeline runner.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	AddDerived(derivation string, n int)
	AddDiagnostics(code string, n int)
	SetCollectionSize(n int)
}

// NoopRecorder is the Recorder used when metrics are not configured.
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) AddDerived(string, int)                     {}
func (NoopRecorder) AddDiagnostics(string, int)                 {}
func (NoopRecorder) SetCollectionSize(int)                      {}

// OrNoop returns r, or a NoopRecorder when r is nil.
func OrNoop(r Recorder) Recorder {
	if r == nil {
		return NoopRecorder{}
	}
	return r
}
