package augment

import (
	"doclink/internal/doclet"
)

// inherit copies the instance members of a superclass.
func (p *pass) inherit(key, tkey doclet.Longname) {
	parent := key.String()
	for _, m := range p.ix.MembersOf(tkey, doclet.ScopeInstance) {
		if !p.eligible(m) {
			continue
		}
		child := m.Clone()
		ckey := child.Reparent(parent)

		child.Inherited = true
		if child.Inherits == "" {
			child.Inherits = m.Longname
		}
		child.Overrides = ""
		child.InheritDoc = false
		child.Override = false

		if existing, ok := p.ix.Lookup(ckey); ok {
			p.override(existing, child, m)
			continue
		}
		p.add(child)
		p.stats.Inherited++
	}
}

// override settles a conflict between an inherited copy and a member that
// already exists on the descendant.
func (p *pass) override(existing, inherited, ancestor *doclet.Doclet) {
	if existing.IsDerived() {
		p.stats.Skipped++
		return
	}
	if bool(existing.InheritDoc) || existing.Override || existing.Undocumented {
		// the descendant asked for the ancestor's documentation, or has none
		inherited.Overrides = ancestor.Longname
		inherited.Virtual = false
		*existing = *inherited
		p.stats.Inherited++
		p.stats.Overrides++
		return
	}
	if existing.Overrides == "" {
		existing.Overrides = ancestor.Longname
		p.stats.Overrides++
	}
}

// mix copies the members of a mixin. Static members mixed into a class
// become instance members.
func (p *pass) mix(d *doclet.Doclet, key, tkey doclet.Longname) {
	parent := key.String()
	for _, m := range p.ix.MembersOf(tkey, doclet.ScopeStatic, doclet.ScopeInstance) {
		if !p.eligible(m) {
			continue
		}
		child := m.Clone()
		ckey := child.Reparent(parent)
		if d.Kind == doclet.KindClass && ckey.Scope == doclet.ScopeStatic {
			child.SetScope(doclet.ScopeInstance)
			ckey = doclet.Combine(parent, doclet.ScopeInstance, child.Name)
		}

		if _, ok := p.ix.Lookup(ckey); ok {
			p.stats.Skipped++
			continue
		}
		child.Mixed = true
		if child.MixedFrom == "" {
			child.MixedFrom = m.Longname
		}
		child.Overrides = ""
		p.add(child)
		p.stats.Mixed++
	}
}

// implement records interface conformance. Members the descendant already
// has are annotated; missing ones are copied from the interface as
// signatures, marked with what they implement rather than as inherited.
func (p *pass) implement(key, tkey doclet.Longname) {
	parent := key.String()
	for _, m := range p.ix.MembersOf(tkey, doclet.ScopeInstance) {
		if !p.eligible(m) {
			continue
		}
		child := m.Clone()
		ckey := child.Reparent(parent)

		if existing, ok := p.ix.Lookup(ckey); ok {
			if existing.AddImplements(m.Longname) {
				p.stats.Annotated++
			}
			continue
		}

		child.Implements = []string{m.Longname}
		child.Inherited = false
		child.Inherits = ""
		child.Overrides = ""
		child.Mixed = false
		child.MixedFrom = ""
		p.add(child)
		p.stats.Implemented++
	}
}
