package index

import (
	"iter"
	"slices"

	"doclink/internal/diag"
	"doclink/internal/doclet"
)

// Index provides lookups over a doclet collection by longname, by parent and
// by kind. Doclets without a longname, or with one that does not parse, are
// not indexed; they stay in the collection for rendering only.
type Index struct {
	byLongname map[doclet.Longname][]*doclet.Doclet
	documented map[doclet.Longname][]*doclet.Doclet
	byMemberof map[doclet.Longname][]*doclet.Doclet
	byKind     map[string][]*doclet.Doclet
	size       int
}

// New returns an empty index.
func New() *Index {
	return &Index{
		byLongname: make(map[doclet.Longname][]*doclet.Doclet),
		documented: make(map[doclet.Longname][]*doclet.Doclet),
		byMemberof: make(map[doclet.Longname][]*doclet.Doclet),
		byKind:     make(map[string][]*doclet.Doclet),
	}
}

// Build indexes docs in order. Malformed longnames are reported to r.
func Build(docs []*doclet.Doclet, r diag.Reporter) *Index {
	ix := New()
	for _, d := range docs {
		ix.add(d, r)
	}
	return ix
}

// Add indexes a doclet appended after Build. It reports whether the doclet
// could be indexed.
func (ix *Index) Add(d *doclet.Doclet) bool {
	return ix.add(d, nil)
}

func (ix *Index) add(d *doclet.Doclet, r diag.Reporter) bool {
	if d == nil || d.Longname == "" {
		return false
	}
	key, err := d.Key()
	if err != nil {
		diag.Warn(r, diag.CodeMalformedLongname, d.Longname, "", "doclet excluded from lookups: %v", err)
		return false
	}

	ix.byLongname[key] = append(ix.byLongname[key], d)
	if !d.Undocumented {
		ix.documented[key] = append(ix.documented[key], d)
	}
	if d.Kind != "" {
		ix.byKind[d.Kind] = append(ix.byKind[d.Kind], d)
	}
	if parent, ok := memberofKey(d, key); ok {
		ix.byMemberof[parent] = append(ix.byMemberof[parent], d)
	}
	ix.size++
	return true
}

// memberofKey prefers the declared memberof and falls back to the parent
// encoded in the longname.
func memberofKey(d *doclet.Doclet, key doclet.Longname) (doclet.Longname, bool) {
	if d.Memberof != "" {
		p, err := doclet.ParseLongname(d.Memberof)
		if err == nil {
			return p, true
		}
	}
	return key.Parent()
}

// Len is the number of indexed doclets.
func (ix *Index) Len() int {
	return ix.size
}

// Lookup returns the doclet for key: the last documented one if any,
// otherwise the last one indexed.
func (ix *Index) Lookup(key doclet.Longname) (*doclet.Doclet, bool) {
	if docs := ix.documented[key]; len(docs) > 0 {
		return docs[len(docs)-1], true
	}
	if docs := ix.byLongname[key]; len(docs) > 0 {
		return docs[len(docs)-1], true
	}
	return nil, false
}

// LookupString parses s and looks it up.
func (ix *Index) LookupString(s string) (*doclet.Doclet, bool) {
	key, err := doclet.ParseLongname(s)
	if err != nil {
		return nil, false
	}
	return ix.Lookup(key)
}

// All returns every doclet indexed under key, in collection order.
func (ix *Index) All(key doclet.Longname) []*doclet.Doclet {
	return slices.Clone(ix.byLongname[key])
}

// Has reports whether any doclet is indexed under key.
func (ix *Index) Has(key doclet.Longname) bool {
	return len(ix.byLongname[key]) > 0
}

// IsDocumented reports whether a documented doclet exists for key.
func (ix *Index) IsDocumented(key doclet.Longname) bool {
	return len(ix.documented[key]) > 0
}

// ChildrenOf yields the direct children of key. The sequence reflects the
// children present when iteration starts.
func (ix *Index) ChildrenOf(key doclet.Longname) iter.Seq[*doclet.Doclet] {
	return func(yield func(*doclet.Doclet) bool) {
		for _, d := range ix.byMemberof[key] {
			if !yield(d) {
				return
			}
		}
	}
}

// HasChildren reports whether key has at least one child.
func (ix *Index) HasChildren(key doclet.Longname) bool {
	return len(ix.byMemberof[key]) > 0
}

// MembersOf returns a snapshot of the children of key whose scope is one of
// scopes. With no scopes every child is returned.
func (ix *Index) MembersOf(key doclet.Longname, scopes ...doclet.Scope) []*doclet.Doclet {
	var out []*doclet.Doclet
	for d := range ix.ChildrenOf(key) {
		if len(scopes) == 0 || slices.Contains(scopes, memberScope(d)) {
			out = append(out, d)
		}
	}
	return out
}

// memberScope reads the scope from the longname, which is authoritative when
// the scope field and the punctuation disagree.
func memberScope(d *doclet.Doclet) doclet.Scope {
	if key, err := d.Key(); err == nil && key.HasSuffix() {
		return key.Scope
	}
	return d.Scope
}

// ByKind returns the indexed doclets of a kind, in collection order.
func (ix *Index) ByKind(kind string) []*doclet.Doclet {
	return slices.Clone(ix.byKind[kind])
}
