// Package augment materializes inherited, mixed-in and implemented members
// onto the doclets that declare augments, mixes or implements.
//
// Ancestors are resolved before their descendants by walking the union of
// all three relationship graphs in dependency order. For a single doclet the
// sources are applied in a fixed precedence:
//
//	native > mixins > superclasses > interfaces
//
// each group in declaration order. A longname that already exists is never
// replaced, so the first source to provide a member wins and re-running the
// pass adds nothing. The one exception is an undocumented native member,
// which takes the inherited copy's documentation.
//
// Borrowed copies are neither ancestors nor inheritable members, so feeding
// a resolved collection back in yields the same members.
package augment

import (
	"doclink/internal/diag"
	"doclink/internal/doclet"
	"doclink/internal/graph"
	"doclink/internal/index"
)

// Options tune which ancestor members are eligible for copying.
type Options struct {
	// InheritUndocumented also copies ancestor members flagged undocumented.
	InheritUndocumented bool
}

// Stats summarizes one augmentation pass.
type Stats struct {
	Visited       int
	Inherited     int
	Mixed         int
	Implemented   int
	Annotated     int
	Overrides     int
	Skipped       int
	Unresolved    int
	CyclesDropped int
}

// Added is the number of doclets appended to the collection.
func (s Stats) Added() int {
	return s.Inherited + s.Mixed + s.Implemented
}

// Augmenter is the inheritance resolver.
type Augmenter struct {
	opts     Options
	reporter diag.Reporter
}

func New(opts Options, r diag.Reporter) *Augmenter {
	return &Augmenter{opts: opts, reporter: diag.OrNop(r)}
}

type pass struct {
	*Augmenter
	out    *graph.Collection
	ix     *index.Index
	cycles map[graph.DepEdge[doclet.Longname]]bool
	stats  Stats
}

// Augment returns a copy of in with every relationship materialized. in is
// not modified.
func (a *Augmenter) Augment(in *graph.Collection) (*graph.Collection, Stats) {
	out := in.Clone()
	p := &pass{Augmenter: a, out: out, ix: out.Index()}

	deps, declaring := p.dependencies()
	p.cycles = deps.CycleEdges()
	order := deps.Sort(func(e graph.DepEdge[doclet.Longname]) bool {
		return p.cycles[e]
	})

	for _, key := range order {
		for _, d := range declaring[key] {
			p.resolve(d, key)
		}
	}
	return out, p.stats
}

func (p *pass) dependencies() (*graph.Dependencies[doclet.Longname], map[doclet.Longname][]*doclet.Doclet) {
	deps := graph.NewDependencies[doclet.Longname]()
	declaring := make(map[doclet.Longname][]*doclet.Doclet)

	for _, d := range p.out.Doclets() {
		if len(d.Augments) == 0 && len(d.Mixes) == 0 && len(d.Implements) == 0 {
			continue
		}
		key, err := d.Key()
		if err != nil {
			continue
		}
		if !graph.IsRelationKind(d.Kind) {
			if len(d.Augments) > 0 || len(d.Mixes) > 0 {
				diag.Info(p.reporter, diag.CodeIgnoredRelation, d.Longname, "",
					"augments/mixes ignored on kind %q", d.Kind)
			}
			continue
		}

		deps.AddNode(key)
		declaring[key] = append(declaring[key], d)
		for _, group := range [][]string{d.Mixes, d.Augments, d.Implements} {
			for _, target := range group {
				if tkey, err := doclet.ParseLongname(target); err == nil {
					deps.AddEdge(key, tkey)
				}
			}
		}
	}
	return deps, declaring
}

func (p *pass) resolve(d *doclet.Doclet, key doclet.Longname) {
	p.stats.Visited++
	for _, target := range d.Mixes {
		if tkey, ok := p.ancestor(d, key, target, graph.RelationMixes); ok {
			p.mix(d, key, tkey)
		}
	}
	for _, target := range d.Augments {
		if tkey, ok := p.ancestor(d, key, target, graph.RelationAugments); ok {
			p.inherit(key, tkey)
		}
	}
	for _, target := range d.Implements {
		if tkey, ok := p.ancestor(d, key, target, graph.RelationImplements); ok {
			p.implement(key, tkey)
		}
	}
}

// ancestor resolves a relationship target, reporting why it is unusable.
func (p *pass) ancestor(d *doclet.Doclet, key doclet.Longname, target string, kind graph.RelationKind) (doclet.Longname, bool) {
	tkey, err := doclet.ParseLongname(target)
	if err != nil {
		p.stats.Unresolved++
		diag.Warn(p.reporter, diag.CodeUnresolvedAncestor, d.Longname, target,
			"%s target is not a valid longname: %v", kind, err)
		return doclet.Longname{}, false
	}
	if p.cycles[graph.DepEdge[doclet.Longname]{From: key, To: tkey}] {
		p.stats.CyclesDropped++
		diag.Warn(p.reporter, diag.CodeCyclicAncestry, d.Longname, target,
			"%s relationship is part of a cycle and was dropped", kind)
		return doclet.Longname{}, false
	}
	if !p.declared(tkey) {
		p.stats.Unresolved++
		diag.Warn(p.reporter, diag.CodeUnresolvedAncestor, d.Longname, target,
			"%s target not found; its members are omitted", kind)
		return doclet.Longname{}, false
	}
	return tkey, true
}

// declared reports whether key names a doclet that is not a borrowed copy.
// Borrowing runs after augmentation, so its copies are never ancestors.
func (p *pass) declared(key doclet.Longname) bool {
	for _, d := range p.ix.All(key) {
		if d.BorrowedFrom == "" {
			return true
		}
	}
	return false
}

func (p *pass) eligible(m *doclet.Doclet) bool {
	if m.Ignore || m.BorrowedFrom != "" {
		return false
	}
	return !m.Undocumented || p.opts.InheritUndocumented
}

func (p *pass) add(d *doclet.Doclet) {
	d.Borrowed = nil
	p.out.Append(d)
}
