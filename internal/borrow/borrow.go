// Package borrow copies members named by @borrows directives onto the
// borrowing doclet. It runs after augmentation, so a borrowed container
// carries the members it inherited.
package borrow

import (
	"strings"

	"doclink/internal/diag"
	"doclink/internal/doclet"
	"doclink/internal/graph"
	"doclink/internal/index"
)

// Stats summarizes one borrow pass.
type Stats struct {
	Directives int
	Resolved   int
	Unresolved int
	Copied     int
	Skipped    int
}

// Resolver is the borrow resolver.
type Resolver struct {
	reporter diag.Reporter
}

func New(r diag.Reporter) *Resolver {
	return &Resolver{reporter: diag.OrNop(r)}
}

type pass struct {
	*Resolver
	out   *graph.Collection
	ix    *index.Index
	stats Stats
}

// step is one level of a member path relative to a borrowed container.
type step struct {
	scope doclet.Scope
	name  string
}

type member struct {
	doc  *doclet.Doclet
	path []step
}

// Resolve returns a copy of in with every borrow directive applied and
// consumed. in is not modified.
func (b *Resolver) Resolve(in *graph.Collection) (*graph.Collection, Stats) {
	out := in.Clone()
	p := &pass{Resolver: b, out: out, ix: out.Index()}

	deps := graph.NewDependencies[doclet.Longname]()
	borrowers := make(map[doclet.Longname][]*doclet.Doclet)
	for _, d := range out.Doclets() {
		if len(d.Borrowed) == 0 {
			continue
		}
		key, err := d.Key()
		if err != nil {
			p.discard(d, err)
			continue
		}
		deps.AddNode(key)
		borrowers[key] = append(borrowers[key], d)
		for _, bor := range d.Borrowed {
			from, err := doclet.ParseLongname(bor.From)
			if err != nil {
				continue
			}
			deps.AddEdge(key, from)
			if parent, ok := from.Parent(); ok {
				deps.AddEdge(key, parent)
			}
		}
	}

	// mutual borrowing is legal; the cycle only affects which side sees
	// the other's borrowed members
	cycles := deps.CycleEdges()
	order := deps.Sort(func(e graph.DepEdge[doclet.Longname]) bool { return cycles[e] })
	for _, key := range order {
		for _, d := range borrowers[key] {
			p.apply(d, key)
		}
	}
	return out, p.stats
}

// discard consumes the directives of a borrower that cannot be addressed.
func (p *pass) discard(d *doclet.Doclet, err error) {
	for _, bor := range d.Borrowed {
		p.stats.Directives++
		p.stats.Unresolved++
		diag.Warn(p.reporter, diag.CodeUnresolvedBorrow, d.Longname, bor.From,
			"borrower has no usable longname: %v", err)
	}
	d.Borrowed = nil
}

func (p *pass) apply(d *doclet.Doclet, key doclet.Longname) {
	parent := key.String()
	for _, bor := range d.Borrowed {
		p.stats.Directives++

		from, err := doclet.ParseLongname(bor.From)
		if err != nil {
			p.stats.Unresolved++
			diag.Warn(p.reporter, diag.CodeUnresolvedBorrow, d.Longname, bor.From,
				"borrow source is not a valid longname: %v", err)
			continue
		}
		if !validAs(bor.As) {
			p.stats.Unresolved++
			diag.Warn(p.reporter, diag.CodeUnresolvedBorrow, d.Longname, bor.From,
				"malformed borrow name %q", bor.As)
			continue
		}
		src, ok := p.ix.Lookup(from)
		if !ok {
			p.stats.Unresolved++
			diag.Warn(p.reporter, diag.CodeUnresolvedBorrow, d.Longname, bor.From,
				"borrow source not found")
			continue
		}
		p.stats.Resolved++

		if from.HasSuffix() || !p.ix.HasChildren(from) {
			p.copySymbol(d, src, parent, from, bor.As)
			continue
		}

		base := parent
		if bor.As != "" {
			// members nest under the renamed copy, or under whatever
			// already occupies its longname
			target := p.copySymbol(d, src, parent, from, bor.As)
			base = target.String()
		}
		for _, m := range p.members(from, key) {
			p.copyMember(d, m, base)
		}
	}
	d.Borrowed = nil
}

// copySymbol copies src itself under parent, named by as when given.
func (p *pass) copySymbol(d, src *doclet.Doclet, parent string, from doclet.Longname, as string) doclet.Longname {
	scope, name := targetName(from, as)
	target := doclet.Combine(parent, scope, name)
	p.place(d, src, target)
	return target
}

func (p *pass) copyMember(d *doclet.Doclet, m member, base string) {
	var target doclet.Longname
	for _, s := range m.path {
		target = doclet.Combine(base, s.scope, s.name)
		base = target.String()
	}
	p.place(d, m.doc, target)
}

// place appends a borrowed copy of src at target unless target exists.
func (p *pass) place(d, src *doclet.Doclet, target doclet.Longname) bool {
	if p.ix.Has(target) {
		p.stats.Skipped++
		diag.Info(p.reporter, diag.CodeDuplicateLongname, d.Longname, target.String(),
			"already present; borrowed copy of %s skipped", src.Longname)
		return false
	}

	c := src.Clone()
	c.Name = target.Name
	c.Scope = target.Scope
	c.SetMemberof(target.Memberof)
	if c.BorrowedFrom == "" {
		c.BorrowedFrom = src.Longname
	}
	c.Borrowed = nil
	if graph.IsRelationKind(c.Kind) {
		// the copy is a view of the source, not a second symbol to resolve
		c.Augments = nil
		c.Mixes = nil
		c.Implements = nil
	}
	p.out.Append(c)
	p.stats.Copied++
	return true
}

// members lists every descendant of container in pre-order with its path
// relative to the container. The borrower's own subtree is left out so a
// symbol borrowing from its parent does not copy itself.
func (p *pass) members(container, borrower doclet.Longname) []member {
	var out []member
	visited := map[doclet.Longname]bool{container: true, borrower: true}

	var walk func(key doclet.Longname, prefix []step)
	walk = func(key doclet.Longname, prefix []step) {
		for _, child := range p.ix.MembersOf(key) {
			ckey, err := child.Key()
			if err != nil || visited[ckey] || child.Ignore {
				continue
			}
			visited[ckey] = true
			path := append(prefix[:len(prefix):len(prefix)], step{scope: ckey.Scope, name: ckey.Name})
			out = append(out, member{doc: child, path: path})
			walk(ckey, path)
		}
	}
	walk(container, nil)
	return out
}

// validAs reports whether as names something once its scope prefix is
// removed. An empty as keeps the source name.
func validAs(as string) bool {
	if as == "" {
		return true
	}
	if rest, ok := strings.CutPrefix(as, "prototype."); ok {
		return rest != ""
	}
	switch as[0] {
	case '#', '~', '.':
		return len(as) > 1
	}
	return true
}

// targetName derives the scope and local name of a borrowed copy. A leading
// '#', '~' or '.' (or "prototype.") in as selects the scope; otherwise
// instance and inner members keep their scope and everything else becomes
// static. as must have passed validAs.
func targetName(from doclet.Longname, as string) (doclet.Scope, string) {
	scope := doclet.ScopeStatic
	if from.Scope == doclet.ScopeInstance || from.Scope == doclet.ScopeInner {
		scope = from.Scope
	}
	if as == "" {
		return scope, from.Name
	}

	if rest, ok := strings.CutPrefix(as, "prototype."); ok {
		return doclet.ScopeInstance, rest
	}
	switch as[0] {
	case '#', '~', '.':
		return doclet.ScopeFromPunctuation(as[0]), as[1:]
	}
	return scope, as
}
