package analysis

import (
	"errors"
	"fmt"

	"doclink/internal/doclet"
	"doclink/internal/graph"
)

// ErrUnknownSymbol is returned when the analyzed longname is not in the
// collection.
var ErrUnknownSymbol = errors.New("unknown symbol")

// ImpactReport summarizes the doclets whose content comes from a symbol.
type ImpactReport struct {
	Subject string
	// Sources are the subject and every member beneath it.
	Sources []*doclet.Doclet
	// DirectlyAffected were copied, mixed, borrowed or overridden straight
	// from a source.
	DirectlyAffected []*doclet.Doclet
	// IndirectlyAffected trace back to a source through other derived
	// doclets, such as a borrowed copy of an inherited member.
	IndirectlyAffected []*doclet.Doclet
	// Receivers are the longnames that hold an affected doclet, in first
	// seen order.
	Receivers []string
}

// Analyzer performs impact analysis on a resolved collection.
type Analyzer struct {
	c *graph.Collection
}

// NewAnalyzer creates a new analyzer.
func NewAnalyzer(c *graph.Collection) *Analyzer {
	return &Analyzer{c: c}
}

// AnalyzeImpact finds what would change in the output if the documentation
// of longname changed.
func (a *Analyzer) AnalyzeImpact(longname string) (*ImpactReport, error) {
	subject, ok := a.c.Lookup(longname)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, longname)
	}

	report := &ImpactReport{
		Subject:            subject.Longname,
		DirectlyAffected:   []*doclet.Doclet{},
		IndirectlyAffected: []*doclet.Doclet{},
	}

	// 1. Collect the source subtree
	affected := make(map[string]bool)
	var walk func(d *doclet.Doclet)
	walk = func(d *doclet.Doclet) {
		if affected[d.Longname] {
			return
		}
		affected[d.Longname] = true
		report.Sources = append(report.Sources, d)
		for _, child := range a.c.Children(d.Longname) {
			walk(child)
		}
	}
	walk(subject)

	seen := make(map[*doclet.Doclet]bool, len(report.Sources))
	for _, d := range report.Sources {
		seen[d] = true
	}

	// 2. Find Direct Impacts
	var frontier []*doclet.Doclet
	for _, d := range a.c.Doclets() {
		if !seen[d] && tracesTo(d, affected) {
			seen[d] = true
			report.DirectlyAffected = append(report.DirectlyAffected, d)
			frontier = append(frontier, d)
		}
	}

	// 3. Follow derived doclets until nothing new is reached
	for len(frontier) > 0 {
		for _, d := range frontier {
			affected[d.Longname] = true
		}
		frontier = frontier[:0]
		for _, d := range a.c.Doclets() {
			if !seen[d] && tracesTo(d, affected) {
				seen[d] = true
				report.IndirectlyAffected = append(report.IndirectlyAffected, d)
				frontier = append(frontier, d)
			}
		}
	}

	receivers := make(map[string]bool)
	for _, list := range [][]*doclet.Doclet{report.DirectlyAffected, report.IndirectlyAffected} {
		for _, d := range list {
			if d.Memberof != "" && !receivers[d.Memberof] {
				receivers[d.Memberof] = true
				report.Receivers = append(report.Receivers, d.Memberof)
			}
		}
	}

	return report, nil
}

// tracesTo reports whether d names one of longnames as the origin of its
// content.
func tracesTo(d *doclet.Doclet, longnames map[string]bool) bool {
	for _, ref := range []string{d.Inherits, d.Overrides, d.MixedFrom, d.BorrowedFrom} {
		if ref != "" && longnames[ref] {
			return true
		}
	}
	if graph.IsRelationKind(d.Kind) {
		// a class implementing an interface is not a copy of it
		return false
	}
	for _, ref := range d.Implements {
		if longnames[ref] {
			return true
		}
	}
	return false
}
