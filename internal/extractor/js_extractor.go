package extractor

import (
	"encoding/json"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"doclink/internal/doclet"
)

// JSExtractor implements LanguageExtractor for JavaScript.
type JSExtractor struct{}

func (j *JSExtractor) GetLanguage() *sitter.Language {
	return javascript.GetLanguage()
}

func (j *JSExtractor) Extensions() []string {
	return []string{".js", ".mjs", ".cjs", ".jsx"}
}

func (j *JSExtractor) ExtractDoclets(root *sitter.Node, sourceCode []byte, path string) []*doclet.Doclet {
	w := &jsWalker{src: sourceCode, path: path, locals: make(map[string]string)}
	w.walk(root, func(n *sitter.Node, doc *docComment) {
		w.statement(n, doc, false)
	})
	return w.out
}

// code is what the syntax tree says about a symbol before tags are applied.
type code struct {
	name     string
	kind     string
	memberof string
	scope    doclet.Scope
	augments []string
	node     *sitter.Node
}

type jsWalker struct {
	src    []byte
	path   string
	module string
	// locals maps top-level identifiers to their longnames so that
	// "Foo.prototype.bar = ..." lands on the right symbol inside a module.
	locals map[string]string
	out    []*doclet.Doclet
}

// walk visits the named children of container, pairing each with the doc
// comment that ends on the line directly above it. Doc comments that pair
// with nothing are emitted as virtual doclets.
func (w *jsWalker) walk(container *sitter.Node, visit func(n *sitter.Node, doc *docComment)) {
	var pending *sitter.Node
	flush := func() {
		if pending != nil {
			w.virtual(pending)
			pending = nil
		}
	}

	for i := 0; i < int(container.NamedChildCount()); i++ {
		n := container.NamedChild(i)
		if n.Type() == "comment" {
			if isDocComment(n.Content(w.src)) {
				flush()
				pending = n
			}
			continue
		}
		var doc *docComment
		if pending != nil && n.StartPoint().Row <= pending.EndPoint().Row+1 {
			// a module comment describes the file, never the next statement
			if c := parseComment(pending.Content(w.src)); !c.has("module") {
				doc = &c
				pending = nil
			}
		}
		flush()
		visit(n, doc)
	}
	flush()
}

func (w *jsWalker) virtual(n *sitter.Node) {
	c := parseComment(n.Content(w.src))
	w.detached(&c, n)
}

// detached emits a doclet for a comment that documents no code, as long as
// its tags name the symbol.
func (w *jsWalker) detached(doc *docComment, n *sitter.Node) {
	d := &doclet.Doclet{Description: doc.Description}
	res := applyTags(d, doc.Tags)
	if !res.named {
		return
	}
	if d.Kind == "" {
		d.Kind = doclet.KindMember
	}
	if !w.finish(d, res.longname, code{node: n}) {
		return
	}
	if d.Kind == doclet.KindModule {
		w.module = d.Longname
	}
	w.out = append(w.out, d)
}

func (w *jsWalker) statement(n *sitter.Node, doc *docComment, exported bool) {
	switch n.Type() {
	case "export_statement":
		if decl := n.ChildByFieldName("declaration"); decl != nil {
			w.statement(decl, doc, true)
		} else if doc != nil {
			w.detached(doc, n)
		}
	case "class_declaration":
		w.class(n, w.text(n.ChildByFieldName("name")), doc, exported)
	case "function_declaration", "generator_function_declaration":
		name := w.text(n.ChildByFieldName("name"))
		c := w.topLevel(name, doclet.KindFunction, exported)
		c.node = n
		if d := w.emit(doc, c); d != nil {
			w.locals[name] = d.Longname
		}
	case "lexical_declaration", "variable_declaration":
		constant := n.Child(0) != nil && n.Child(0).Type() == "const"
		for i := 0; i < int(n.NamedChildCount()); i++ {
			decl := n.NamedChild(i)
			if decl.Type() != "variable_declarator" {
				continue
			}
			w.declarator(decl, doc, constant, exported)
			doc = nil
		}
	case "expression_statement":
		if a := n.NamedChild(0); a != nil && a.Type() == "assignment_expression" {
			w.assignment(a, doc)
		} else if doc != nil {
			w.detached(doc, n)
		}
	default:
		if doc != nil {
			w.detached(doc, n)
		}
	}
}

// topLevel places a file-level symbol: a global, or an inner member of the
// current module (static when exported).
func (w *jsWalker) topLevel(name, kind string, exported bool) code {
	c := code{name: name, kind: kind, scope: doclet.ScopeGlobal}
	if w.module != "" {
		c.memberof = w.module
		c.scope = doclet.ScopeInner
		if exported {
			c.scope = doclet.ScopeStatic
		}
	}
	return c
}

func (w *jsWalker) class(n *sitter.Node, name string, doc *docComment, exported bool) {
	c := w.topLevel(name, doclet.KindClass, exported)
	c.node = n
	if base := heritage(n, w.src); base != "" {
		c.augments = []string{w.qualify(base)}
	}
	d := w.emit(doc, c)
	if d == nil {
		return
	}
	w.locals[name] = d.Longname

	body := n.ChildByFieldName("body")
	if body == nil {
		return
	}
	w.walk(body, func(m *sitter.Node, mdoc *docComment) {
		switch m.Type() {
		case "method_definition":
			mname := propertyName(m.ChildByFieldName("name"), w.src)
			if mname == "constructor" {
				if mdoc != nil && d.Description == "" {
					d.Description = mdoc.Description
				}
				return
			}
			w.emit(mdoc, code{name: mname, kind: doclet.KindFunction, memberof: d.Longname, scope: memberScope(m), node: m})
		case "field_definition":
			fname := propertyName(m.ChildByFieldName("property"), w.src)
			kind := doclet.KindMember
			if isFunction(m.ChildByFieldName("value")) {
				kind = doclet.KindFunction
			}
			w.emit(mdoc, code{name: fname, kind: kind, memberof: d.Longname, scope: memberScope(m), node: m})
		default:
			if mdoc != nil {
				w.detached(mdoc, m)
			}
		}
	})
}

func (w *jsWalker) declarator(n *sitter.Node, doc *docComment, constant, exported bool) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil || nameNode.Type() != "identifier" {
		if doc != nil {
			w.detached(doc, n)
		}
		return
	}
	name := w.text(nameNode)
	value := n.ChildByFieldName("value")

	if value != nil && value.Type() == "class" {
		w.class(value, name, doc, exported)
		return
	}

	kind := doclet.KindMember
	switch {
	case isFunction(value):
		kind = doclet.KindFunction
	case constant:
		kind = doclet.KindConstant
	}
	c := w.topLevel(name, kind, exported)
	c.node = n
	d := w.emit(doc, c)
	if d == nil {
		return
	}
	w.locals[name] = d.Longname

	if value != nil && value.Type() == "object" {
		w.object(value, d.Longname)
	}
}

// object documents the properties of an object literal as static members.
func (w *jsWalker) object(obj *sitter.Node, parent string) {
	w.walk(obj, func(p *sitter.Node, doc *docComment) {
		c := code{memberof: parent, scope: doclet.ScopeStatic, kind: doclet.KindMember, node: p}
		switch p.Type() {
		case "pair":
			c.name = propertyName(p.ChildByFieldName("key"), w.src)
			if isFunction(p.ChildByFieldName("value")) {
				c.kind = doclet.KindFunction
			}
		case "method_definition":
			c.name = propertyName(p.ChildByFieldName("name"), w.src)
			c.kind = doclet.KindFunction
		case "shorthand_property_identifier":
			c.name = w.text(p)
		default:
			if doc != nil {
				w.detached(doc, p)
			}
			return
		}
		d := w.emit(doc, c)
		if d != nil && p.Type() == "pair" {
			if v := p.ChildByFieldName("value"); v != nil && v.Type() == "object" {
				w.object(v, d.Longname)
			}
		}
	})
}

// assignment handles "Foo.prototype.bar = ...", "Foo.bar = ..." and, inside
// a module, "exports.bar = ...". Assignments to unknown roots are only
// recorded when documented.
func (w *jsWalker) assignment(a *sitter.Node, doc *docComment) {
	left := a.ChildByFieldName("left")
	if left == nil || (left.Type() != "member_expression" && left.Type() != "identifier") {
		if doc != nil {
			w.detached(doc, a)
		}
		return
	}
	path := w.text(left)
	if strings.HasPrefix(path, "this.") || strings.ContainsAny(path, "[(") {
		if doc != nil {
			w.detached(doc, a)
		}
		return
	}

	path, known := w.qualifyPath(path)
	if !known && doc == nil {
		return
	}
	kind := doclet.KindMember
	if isFunction(a.ChildByFieldName("right")) {
		kind = doclet.KindFunction
	}
	w.emit(doc, code{name: path, kind: kind, node: a})
}

// qualifyPath rewrites the root of a dotted path to the longname it was
// declared under in this file.
func (w *jsWalker) qualifyPath(path string) (string, bool) {
	if w.module != "" {
		for _, prefix := range []string{"module.exports.", "exports."} {
			if rest, ok := strings.CutPrefix(path, prefix); ok {
				return w.module + "." + rest, true
			}
		}
	}
	root, rest, found := strings.Cut(path, ".")
	longname, ok := w.locals[root]
	if !ok || !found {
		return path, ok && found
	}
	return longname + "." + rest, true
}

func (w *jsWalker) qualify(name string) string {
	if longname, ok := w.locals[name]; ok {
		return longname
	}
	return name
}

// emit builds a doclet from code and an optional comment and records it.
func (w *jsWalker) emit(doc *docComment, c code) *doclet.Doclet {
	d := &doclet.Doclet{
		Name:     c.name,
		Kind:     c.kind,
		Memberof: c.memberof,
		Scope:    c.scope,
		Augments: c.augments,
	}
	var res tagResult
	if doc == nil {
		d.Undocumented = true
	} else {
		d.Description = doc.Description
		res = applyTags(d, doc.Tags)
	}
	if !w.finish(d, res.longname, c) {
		return nil
	}
	if d.Kind == doclet.KindModule {
		w.module = d.Longname
	}
	w.out = append(w.out, d)
	return d
}

// finish computes the longname and attaches source metadata. A name that
// does not parse is kept verbatim so indexing can report it.
func (w *jsWalker) finish(d *doclet.Doclet, explicit string, c code) bool {
	var key doclet.Longname
	switch {
	case explicit != "":
		k, err := doclet.ParseLongname(explicit)
		if err != nil {
			d.Longname = explicit
			break
		}
		key = k
		if k.HasSuffix() || !hasKindPrefix(explicit) {
			d.Name = k.Name
		}
	case d.Name == "":
		return false
	case d.Memberof == "":
		k, err := doclet.ParseLongname(d.Name)
		if err != nil {
			d.Longname = d.Name
			break
		}
		key = k
		d.Name = k.Name
	default:
		key = doclet.Combine(d.Memberof, d.Scope, d.Name)
		d.Name = key.Name
	}

	if !key.IsZero() {
		d.Longname = key.String()
		d.Memberof = key.Memberof
		d.Scope = doclet.ScopeGlobal
		if key.HasSuffix() {
			d.Scope = key.Scope
		}
	}
	w.meta(d, c)
	return true
}

func hasKindPrefix(longname string) bool {
	for _, prefix := range namespacedKinds {
		if strings.HasPrefix(longname, prefix) {
			return true
		}
	}
	return false
}

type metaInfo struct {
	Filename string    `json:"filename"`
	Path     string    `json:"path"`
	Lineno   int       `json:"lineno"`
	Code     *metaCode `json:"code,omitempty"`
}

type metaCode struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

func (w *jsWalker) meta(d *doclet.Doclet, c code) {
	if c.node == nil {
		return
	}
	m := metaInfo{
		Filename: filepath.Base(w.path),
		Path:     filepath.Dir(w.path),
		Lineno:   int(c.node.StartPoint().Row) + 1,
	}
	if c.name != "" {
		m.Code = &metaCode{Name: c.name, Type: c.node.Type()}
	}
	if raw, err := json.Marshal(m); err == nil {
		setProp(d, "meta", raw)
	}
}

func (w *jsWalker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(w.src)
}

// heritage returns the expression after "extends" in a class.
func heritage(class *sitter.Node, src []byte) string {
	for i := 0; i < int(class.NamedChildCount()); i++ {
		child := class.NamedChild(i)
		if child.Type() != "class_heritage" {
			continue
		}
		if expr := child.NamedChild(0); expr != nil {
			return expr.Content(src)
		}
	}
	return ""
}

func memberScope(n *sitter.Node) doclet.Scope {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "static" {
			return doclet.ScopeStatic
		}
	}
	return doclet.ScopeInstance
}

func propertyName(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	name := n.Content(src)
	if n.Type() == "string" {
		name = strings.Trim(name, `"'`)
	}
	return name
}

func isFunction(n *sitter.Node) bool {
	if n == nil {
		return false
	}
	switch n.Type() {
	case "function", "function_expression", "arrow_function", "generator_function":
		return true
	}
	return false
}
