package extractor

import (
	"encoding/json"
	"strings"

	"doclink/internal/doclet"
)

// kindTags map a tag to the kind it declares. Their value, if any, names the
// symbol.
var kindTags = map[string]string{
	"class":       doclet.KindClass,
	"constructor": doclet.KindClass,
	"interface":   doclet.KindInterface,
	"mixin":       doclet.KindMixin,
	"namespace":   doclet.KindNamespace,
	"module":      doclet.KindModule,
	"external":    doclet.KindExternal,
	"host":        doclet.KindExternal,
	"typedef":     doclet.KindTypedef,
	"event":       doclet.KindEvent,
	"constant":    doclet.KindConstant,
	"const":       doclet.KindConstant,
	"function":    doclet.KindFunction,
	"func":        doclet.KindFunction,
	"method":      doclet.KindFunction,
	"member":      doclet.KindMember,
	"var":         doclet.KindMember,
}

// namespacedKinds get a "kind:" prefix on their longname.
var namespacedKinds = map[string]string{
	doclet.KindModule:   "module:",
	doclet.KindExternal: "external:",
}

// tagResult is what tags decide beyond the doclet fields they set directly.
type tagResult struct {
	// longname is a full name path given by @alias, @module or @external.
	longname string
	// named is set when a tag named the symbol, which makes a comment
	// without code usable on its own.
	named bool
}

// applyTags overlays comment tags on a doclet built from code. Tags win over
// what the code implies.
func applyTags(d *doclet.Doclet, tags []docTag) tagResult {
	var (
		res      tagResult
		augments []string
		unknown  []docTag
	)
	for _, t := range tags {
		title := strings.ToLower(t.Title)
		if kind, ok := kindTags[title]; ok {
			d.Kind = kind
			if name := tagName(t.Value); name != "" {
				d.Name = name
				res.named = true
				if prefix, ok := namespacedKinds[kind]; ok {
					d.Name = strings.TrimPrefix(name, prefix)
					res.longname = prefix + d.Name
				}
			}
			continue
		}

		switch title {
		case "name":
			d.Name = tagName(t.Value)
			res.named = d.Name != ""
		case "alias":
			res.longname = tagName(t.Value)
			res.named = res.longname != ""
		case "memberof", "memberof!":
			d.Memberof = tagTarget(t.Value)
		case "augments", "extends":
			if target := tagTarget(t.Value); target != "" {
				augments = append(augments, target)
			}
		case "mixes":
			if target := tagTarget(t.Value); target != "" {
				d.Mixes = append(d.Mixes, target)
			}
		case "implements":
			if target := tagTarget(t.Value); target != "" {
				d.AddImplements(target)
			}
		case "borrows":
			if from, as, ok := parseBorrow(t.Value); ok {
				d.Borrowed = append(d.Borrowed, doclet.Borrow{From: from, As: as})
			}
		case "static":
			d.Scope = doclet.ScopeStatic
		case "instance":
			d.Scope = doclet.ScopeInstance
		case "inner":
			d.Scope = doclet.ScopeInner
		case "global":
			d.Scope = doclet.ScopeGlobal
			d.Memberof = ""
		case "inheritdoc":
			d.InheritDoc = true
		case "override":
			d.Override = true
		case "virtual", "abstract":
			d.Virtual = true
		case "ignore":
			d.Ignore = true
		case "description", "desc", "classdesc":
			if d.Description == "" {
				d.Description = t.Value
			}
		default:
			unknown = append(unknown, t)
		}
	}

	if len(augments) > 0 {
		// tags replace what the extends clause says
		d.Augments = augments
	}
	if len(unknown) > 0 {
		if raw, err := json.Marshal(unknown); err == nil {
			setProp(d, "tags", raw)
		}
	}
	return res
}

func setProp(d *doclet.Doclet, key string, raw json.RawMessage) {
	if d.Props == nil {
		d.Props = make(map[string]json.RawMessage)
	}
	d.Props[key] = raw
}
