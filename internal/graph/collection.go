package graph

import (
	"doclink/internal/diag"
	"doclink/internal/doclet"
	"doclink/internal/index"
)

// Collection is an ordered set of doclets with a lazily built Symbol Index.
// Stages never share a Collection: each one works on its own Clone and hands
// the result to the next.
type Collection struct {
	docs  []*doclet.Doclet
	index *index.Index
}

// NewCollection takes ownership of docs.
func NewCollection(docs []*doclet.Doclet) *Collection {
	return &Collection{docs: docs}
}

func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.docs)
}

// At returns the i-th doclet.
func (c *Collection) At(i int) *doclet.Doclet {
	return c.docs[i]
}

// Doclets returns the doclets in order. The slice is a copy; the doclets are
// not.
func (c *Collection) Doclets() []*doclet.Doclet {
	if c == nil {
		return nil
	}
	out := make([]*doclet.Doclet, len(c.docs))
	copy(out, c.docs)
	return out
}

// Clone deep-copies the collection. If the source was indexed the copy is
// indexed too, without re-reporting diagnostics.
func (c *Collection) Clone() *Collection {
	out := NewCollection(doclet.CloneAll(c.docs))
	if c.index != nil {
		out.index = index.Build(out.docs, nil)
	}
	return out
}

// Append adds a derived doclet at the end and indexes it.
func (c *Collection) Append(d *doclet.Doclet) {
	c.docs = append(c.docs, d)
	if c.index != nil {
		c.index.Add(d)
	}
}

// Index returns the collection's index, building it on first use.
func (c *Collection) Index() *index.Index {
	if c.index == nil {
		c.index = index.Build(c.docs, nil)
	}
	return c.index
}

// Reindex rebuilds the index from scratch, reporting unindexable doclets.
func (c *Collection) Reindex(r diag.Reporter) *index.Index {
	c.index = index.Build(c.docs, r)
	return c.index
}

// ByKind returns all doclets of kind, in order.
func (c *Collection) ByKind(kind string) []*doclet.Doclet {
	var out []*doclet.Doclet
	for _, d := range c.docs {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// Children returns the direct members of longname.
func (c *Collection) Children(longname string) []*doclet.Doclet {
	key, err := doclet.ParseLongname(longname)
	if err != nil {
		return nil
	}
	return c.Index().MembersOf(key)
}

// Find returns the doclets matching pred, in order.
func (c *Collection) Find(pred func(*doclet.Doclet) bool) []*doclet.Doclet {
	var out []*doclet.Doclet
	for _, d := range c.docs {
		if pred(d) {
			out = append(out, d)
		}
	}
	return out
}

// Lookup finds a doclet by longname.
func (c *Collection) Lookup(longname string) (*doclet.Doclet, bool) {
	return c.Index().LookupString(longname)
}

// Relations lists every declared relationship edge, in collection order.
func (c *Collection) Relations() []Edge {
	var edges []Edge
	for _, d := range c.docs {
		if d.Longname == "" {
			continue
		}
		for _, to := range d.Augments {
			edges = append(edges, Edge{From: d.Longname, To: to, Kind: RelationAugments})
		}
		for _, to := range d.Mixes {
			edges = append(edges, Edge{From: d.Longname, To: to, Kind: RelationMixes})
		}
		if IsRelationKind(d.Kind) {
			for _, to := range d.Implements {
				edges = append(edges, Edge{From: d.Longname, To: to, Kind: RelationImplements})
			}
		}
		for _, b := range d.Borrowed {
			edges = append(edges, Edge{From: d.Longname, To: b.From, Kind: RelationBorrows})
		}
	}
	return edges
}

// IsRelationKind reports whether doclets of kind take part in augments,
// mixes and implements resolution. Members use `implements` to record which
// interface member they fulfil, which is not a relationship to resolve.
func IsRelationKind(kind string) bool {
	switch kind {
	case doclet.KindClass, doclet.KindInterface, doclet.KindMixin, doclet.KindExternal, doclet.KindNamespace:
		return true
	}
	return false
}
