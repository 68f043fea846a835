package doclet

import (
	"encoding/json"
	"slices"
)

// Kinds that carry meaning for relationship resolution.
const (
	KindClass     = "class"
	KindInterface = "interface"
	KindMixin     = "mixin"
	KindExternal  = "external"
	KindNamespace = "namespace"
	KindModule    = "module"
	KindFunction  = "function"
	KindMember    = "member"
	KindConstant  = "constant"
	KindTypedef   = "typedef"
	KindEvent     = "event"
	KindPackage   = "package"
)

// Borrow is a single borrow directive: copy From onto the declaring doclet,
// optionally under the local name As.
type Borrow struct {
	From string `json:"from"`
	As   string `json:"as,omitempty"`
}

// Flag decodes both JSON booleans and the presence-only string form some
// parsers emit for valueless tags (e.g. `"inheritdoc": ""`).
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = true
	return nil
}

// Doclet is the metadata record for one documented symbol.
type Doclet struct {
	Longname     string   `json:"longname,omitempty"`
	Name         string   `json:"name,omitempty"`
	Kind         string   `json:"kind,omitempty"`
	Scope        Scope    `json:"scope,omitempty"`
	Memberof     string   `json:"memberof,omitempty"`
	Description  string   `json:"description,omitempty"`
	Augments     []string `json:"augments,omitempty"`
	Implements   []string `json:"implements,omitempty"`
	Mixes        []string `json:"mixes,omitempty"`
	Borrowed     []Borrow `json:"borrowed,omitempty"`
	Undocumented bool     `json:"undocumented,omitempty"`
	Inherited    bool     `json:"inherited,omitempty"`
	Inherits     string   `json:"inherits,omitempty"`
	Overrides    string   `json:"overrides,omitempty"`
	Mixed        bool     `json:"mixed,omitempty"`
	MixedFrom    string   `json:"mixedFrom,omitempty"`
	BorrowedFrom string   `json:"borrowedFrom,omitempty"`
	InheritDoc   Flag     `json:"inheritdoc,omitempty"`
	Override     bool     `json:"override,omitempty"`
	Virtual      bool     `json:"virtual,omitempty"`
	Ignore       bool     `json:"ignore,omitempty"`

	// Props holds every property this type does not model (params, returns,
	// meta, ...). It is carried through copies untouched.
	Props map[string]json.RawMessage `json:"-"`
}

type plainDoclet Doclet

var knownKeys = map[string]bool{
	"longname": true, "name": true, "kind": true, "scope": true, "memberof": true,
	"description": true, "augments": true, "implements": true, "mixes": true,
	"borrowed": true, "undocumented": true, "inherited": true, "inherits": true,
	"overrides": true, "mixed": true, "mixedFrom": true, "borrowedFrom": true,
	"inheritdoc": true, "override": true, "virtual": true, "ignore": true,
}

func (d *Doclet) UnmarshalJSON(data []byte) error {
	if err := json.Unmarshal(data, (*plainDoclet)(d)); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k, v := range all {
		if knownKeys[k] {
			continue
		}
		if d.Props == nil {
			d.Props = make(map[string]json.RawMessage)
		}
		d.Props[k] = v
	}
	return nil
}

func (d Doclet) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(plainDoclet(d))
	if err != nil || len(d.Props) == 0 {
		return known, err
	}
	merged := make(map[string]json.RawMessage, len(d.Props)+8)
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, v := range d.Props {
		if _, taken := merged[k]; taken || knownKeys[k] {
			continue
		}
		merged[k] = v
	}
	return json.Marshal(merged)
}

// Key parses the doclet's longname.
func (d *Doclet) Key() (Longname, error) {
	return ParseLongname(d.Longname)
}

// SetMemberof moves the doclet under a new parent and recomputes its longname.
func (d *Doclet) SetMemberof(memberof string) {
	d.Memberof = memberof
	d.recompute()
}

// SetScope changes the doclet's scope and recomputes its longname.
func (d *Doclet) SetScope(scope Scope) {
	d.Scope = scope
	d.recompute()
}

// SetName changes the local name and recomputes the longname.
func (d *Doclet) SetName(name string) {
	d.Name = name
	d.recompute()
}

func (d *Doclet) recompute() {
	l := Combine(d.Memberof, d.Scope, d.Name)
	d.Longname = l.String()
	d.Name = l.Name
	if d.Memberof != "" {
		d.Scope = l.Scope
	}
}

// Reparent moves the doclet under parent, taking its local name and scope
// from its current longname when that parses, and returns the new key.
func (d *Doclet) Reparent(parent string) Longname {
	if key, err := d.Key(); err == nil {
		d.Name = key.Name
		if key.HasSuffix() {
			d.Scope = key.Scope
		}
	}
	if d.Scope == "" || d.Scope == ScopeGlobal {
		d.Scope = ScopeStatic
	}
	d.SetMemberof(parent)
	return Combine(parent, d.Scope, d.Name)
}

// IsDerived reports whether the doclet was materialized by resolution
// rather than declared in source.
func (d *Doclet) IsDerived() bool {
	return d.Inherited || d.Mixed || d.BorrowedFrom != ""
}

// AddImplements records that the doclet implements longname, once.
func (d *Doclet) AddImplements(longname string) bool {
	if slices.Contains(d.Implements, longname) {
		return false
	}
	d.Implements = append(d.Implements, longname)
	return true
}

// Clone returns a deep copy of the doclet.
func (d *Doclet) Clone() *Doclet {
	if d == nil {
		return nil
	}
	c := *d
	c.Augments = slices.Clone(d.Augments)
	c.Implements = slices.Clone(d.Implements)
	c.Mixes = slices.Clone(d.Mixes)
	c.Borrowed = slices.Clone(d.Borrowed)
	if d.Props != nil {
		c.Props = make(map[string]json.RawMessage, len(d.Props))
		for k, v := range d.Props {
			c.Props[k] = slices.Clone(v)
		}
	}
	return &c
}

// CloneAll deep-copies a slice of doclets, keeping order.
func CloneAll(docs []*Doclet) []*Doclet {
	out := make([]*Doclet, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Clone())
	}
	return out
}
