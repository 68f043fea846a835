// Package resolver drives doclet resolution: Index, Augment, Reindex and
// Borrow, in that order, once per collection.
package resolver

import (
	"context"
	"log/slog"
	"time"

	"doclink/internal/diag"
	"doclink/internal/doclet"
	"doclink/internal/graph"
	"doclink/internal/logfields"
	"doclink/internal/metrics"
)

// Options is the configuration threaded through one resolution run.
type Options struct {
	// InheritUndocumented also materializes ancestor members that carry no
	// author description.
	InheritUndocumented bool
	// MaxDiagnostics caps the diagnostics kept in the result; 0 keeps all.
	MaxDiagnostics int
	Recorder       metrics.Recorder
	Logger         *slog.Logger
}

type Stats struct {
	Attempted int
	Resolved  int
	Skipped   int
	Added     int
}

// Stage is one resolution step. Run must not modify its input and returns
// the collection handed to the next stage.
type Stage interface {
	Name() string
	Run(c *graph.Collection, r diag.Reporter) (*graph.Collection, Stats)
}

type StageResult struct {
	Stage             string
	Stats             Stats
	DiagnosticsBefore int
	DiagnosticsAfter  int
	Doclets           int
	Duration          time.Duration
}

// Result is the output of a full run.
type Result struct {
	Collection  *graph.Collection
	Diagnostics *diag.Bag
	Stages      []StageResult
}

type Chain struct {
	stages   []Stage
	opts     Options
	recorder metrics.Recorder
}

func NewChain(opts Options, stages ...Stage) *Chain {
	return &Chain{stages: stages, opts: opts, recorder: metrics.OrNoop(opts.Recorder)}
}

// NewDefaultChain returns the standard Index, Augment, Reindex, Borrow chain.
func NewDefaultChain(opts Options) *Chain {
	return NewChain(opts,
		NewIndexStage(StageIndex),
		NewAugmentStage(opts.InheritUndocumented),
		NewIndexStage(StageReindex),
		NewBorrowStage(),
	)
}

// Resolve runs the default chain over docs. Running it again over the
// returned doclets adds nothing.
func Resolve(docs []*doclet.Doclet, opts Options) *Result {
	return NewDefaultChain(opts).Run(graph.NewCollection(docs))
}

// Run passes in through every stage. No stage failure aborts the run; what
// a stage could not resolve ends up in Result.Diagnostics.
func (c *Chain) Run(in *graph.Collection) *Result {
	bag := diag.NewBag(c.opts.MaxDiagnostics)
	var sink diag.Reporter = bag
	if c.opts.Logger != nil {
		sink = diag.MultiReporter{bag, diag.LogReporter{Logger: c.opts.Logger}}
	}

	res := &Result{Diagnostics: bag}
	cur := in
	if cur == nil {
		cur = graph.NewCollection(nil)
	}
	for _, s := range c.stages {
		before := total(bag)
		start := time.Now()
		out, stats := s.Run(cur, diag.WithStage(sink, s.Name()))
		elapsed := time.Since(start)
		after := total(bag)

		res.Stages = append(res.Stages, StageResult{
			Stage:             s.Name(),
			Stats:             stats,
			DiagnosticsBefore: before,
			DiagnosticsAfter:  after,
			Doclets:           out.Len(),
			Duration:          elapsed,
		})
		c.observe(s.Name(), elapsed, after > before)
		if c.opts.Logger != nil {
			c.opts.Logger.LogAttrs(context.Background(), slog.LevelDebug, "stage complete",
				logfields.Stage(s.Name()),
				logfields.Count(stats.Added),
				logfields.DurationMS(float64(elapsed.Microseconds())/1000),
			)
		}
		cur = out
	}
	res.Collection = cur

	for d, n := range cur.DerivationCounts() {
		if d != graph.DerivationNative {
			c.recorder.AddDerived(string(d), n)
		}
	}
	for code, n := range bag.Counts() {
		c.recorder.AddDiagnostics(string(code), n)
	}
	c.recorder.SetCollectionSize(cur.Len())
	return res
}

func (c *Chain) observe(stage string, d time.Duration, warned bool) {
	c.recorder.ObserveStageDuration(stage, d)
	result := metrics.ResultClean
	if warned {
		result = metrics.ResultWarning
	}
	c.recorder.IncStageResult(stage, result)
}

func total(b *diag.Bag) int {
	return b.Len() + b.Dropped()
}
