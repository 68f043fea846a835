package resolver

import (
	"doclink/internal/augment"
	"doclink/internal/borrow"
	"doclink/internal/diag"
	"doclink/internal/graph"
)

const (
	StageIndex   = "index"
	StageAugment = "augment"
	StageReindex = "reindex"
	StageBorrow  = "borrow"
)

// IndexStage rebuilds the Symbol Index and reports doclets it cannot hold.
type IndexStage struct {
	name string
}

func NewIndexStage(name string) *IndexStage {
	return &IndexStage{name: name}
}

func (s *IndexStage) Name() string { return s.name }

func (s *IndexStage) Run(c *graph.Collection, r diag.Reporter) (*graph.Collection, Stats) {
	out := c.Clone()
	ix := out.Reindex(r)
	return out, Stats{
		Attempted: out.Len(),
		Resolved:  ix.Len(),
		Skipped:   out.Len() - ix.Len(),
	}
}

type AugmentStage struct {
	opts augment.Options
}

func NewAugmentStage(inheritUndocumented bool) *AugmentStage {
	return &AugmentStage{opts: augment.Options{InheritUndocumented: inheritUndocumented}}
}

func (s *AugmentStage) Name() string { return StageAugment }

func (s *AugmentStage) Run(c *graph.Collection, r diag.Reporter) (*graph.Collection, Stats) {
	out, st := augment.New(s.opts, r).Augment(c)
	return out, Stats{
		Attempted: st.Visited,
		Resolved:  st.Added() + st.Annotated,
		Skipped:   st.Skipped + st.Unresolved + st.CyclesDropped,
		Added:     st.Added(),
	}
}

type BorrowStage struct{}

func NewBorrowStage() *BorrowStage {
	return &BorrowStage{}
}

func (s *BorrowStage) Name() string { return StageBorrow }

func (s *BorrowStage) Run(c *graph.Collection, r diag.Reporter) (*graph.Collection, Stats) {
	out, st := borrow.New(r).Resolve(c)
	return out, Stats{
		Attempted: st.Directives,
		Resolved:  st.Resolved,
		Skipped:   st.Unresolved + st.Skipped,
		Added:     st.Copied,
	}
}
