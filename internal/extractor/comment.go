package extractor

import (
	"strings"
	"unicode"
)

// docTag is one block tag of a doc comment: "@title value".
type docTag struct {
	Title string `json:"title"`
	Value string `json:"value,omitempty"`
}

type docComment struct {
	Description string
	Tags        []docTag
}

func (c docComment) has(title string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t.Title, title) {
			return true
		}
	}
	return false
}

// isDocComment reports whether a comment is a "/** ... */" block. "/***" and
// "/**/" are ordinary comments.
func isDocComment(text string) bool {
	return strings.HasPrefix(text, "/**") &&
		!strings.HasPrefix(text, "/***") &&
		strings.HasSuffix(text, "*/") &&
		len(text) > len("/**/")
}

func parseComment(text string) docComment {
	body := strings.TrimSuffix(strings.TrimPrefix(text, "/**"), "*/")

	var (
		out  docComment
		desc []string
		cur  *docTag
		val  []string
	)
	closeTag := func() {
		if cur == nil {
			return
		}
		cur.Value = strings.TrimSpace(strings.Join(val, "\n"))
		out.Tags = append(out.Tags, *cur)
		cur, val = nil, nil
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimPrefix(line, " ")
		if strings.HasPrefix(line, "@") {
			closeTag()
			title, rest := line[1:], ""
			if i := strings.IndexFunc(title, unicode.IsSpace); i >= 0 {
				title, rest = title[:i], title[i+1:]
			}
			cur = &docTag{Title: title}
			val = []string{rest}
			continue
		}
		if cur != nil {
			val = append(val, strings.TrimSpace(line))
		} else {
			desc = append(desc, line)
		}
	}
	closeTag()
	out.Description = strings.TrimSpace(strings.Join(desc, "\n"))
	return out
}

// splitType removes a leading "{type}" expression, honoring nested braces.
func splitType(v string) (typ, rest string) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "{") {
		return "", v
	}
	depth := 0
	for i, r := range v {
		switch r {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return v[1:i], strings.TrimSpace(v[i+1:])
			}
		}
	}
	return "", v
}

// tagName reads the name path of a tag value such as "{Type} [name] text".
func tagName(v string) string {
	_, rest := splitType(v)
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	name := fields[0]
	if strings.HasPrefix(name, "[") {
		name = strings.TrimSuffix(strings.TrimPrefix(name, "["), "]")
		name, _, _ = strings.Cut(name, "=")
	}
	return name
}

// tagTarget reads a longname reference, which may be wrapped in braces as
// in "@implements {Runnable}".
func tagTarget(v string) string {
	typ, rest := splitType(v)
	if typ != "" {
		return strings.TrimSpace(typ)
	}
	return tagName(rest)
}

// parseBorrow reads "source as target" or a bare source.
func parseBorrow(v string) (from, as string, ok bool) {
	from, as, found := strings.Cut(strings.TrimSpace(v), " as ")
	from = strings.TrimSpace(from)
	if from == "" {
		return "", "", false
	}
	if found {
		as = strings.TrimSpace(as)
	}
	return from, as, true
}
