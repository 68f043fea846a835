package doclet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedLongname is returned when a longname cannot be split into
// a parent, a scope and a local name.
var ErrMalformedLongname = errors.New("malformed longname")

// Scope determines how a member's longname is computed relative to its parent.
type Scope string

const (
	ScopeGlobal   Scope = "global"
	ScopeStatic   Scope = "static"
	ScopeInstance Scope = "instance"
	ScopeInner    Scope = "inner"
)

// Punctuation returns the separator placed between a parent longname and a
// member name for this scope.
func (s Scope) Punctuation() string {
	switch s {
	case ScopeInstance:
		return "#"
	case ScopeInner:
		return "~"
	case ScopeGlobal, "":
		return ""
	default:
		return "."
	}
}

// ScopeFromPunctuation maps a separator back to its scope.
func ScopeFromPunctuation(p byte) Scope {
	switch p {
	case '#':
		return ScopeInstance
	case '~':
		return ScopeInner
	case '.':
		return ScopeStatic
	}
	return ScopeGlobal
}

// Valid reports whether s is one of the known scopes.
func (s Scope) Valid() bool {
	switch s {
	case ScopeGlobal, ScopeStatic, ScopeInstance, ScopeInner:
		return true
	}
	return false
}

// Longname is the parsed identity of a doclet. It is comparable and used as
// the key of every index; the string form is only produced by String.
type Longname struct {
	Memberof string
	Scope    Scope
	Name     string
}

// Combine computes the longname of a member named name, nested under
// memberof with the given scope.
func Combine(memberof string, scope Scope, name string) Longname {
	name = quoteName(name)
	if memberof == "" {
		return Longname{Scope: ScopeGlobal, Name: name}
	}
	if scope == "" || scope == ScopeGlobal {
		scope = ScopeStatic
	}
	return Longname{Memberof: memberof, Scope: scope, Name: name}
}

func (l Longname) String() string {
	if l.Memberof == "" {
		return l.Name
	}
	return l.Memberof + l.Scope.Punctuation() + l.Name
}

func (l Longname) IsZero() bool {
	return l.Name == "" && l.Memberof == ""
}

// Parent returns the parsed longname of the enclosing symbol.
func (l Longname) Parent() (Longname, bool) {
	if l.Memberof == "" {
		return Longname{}, false
	}
	p, err := ParseLongname(l.Memberof)
	if err != nil {
		return Longname{}, false
	}
	return p, true
}

// Under moves the longname beneath another parent, keeping scope and name.
func (l Longname) Under(memberof string) Longname {
	return Combine(memberof, l.Scope, l.Name)
}

// HasSuffix reports whether the longname names a member of another symbol
// rather than a top-level symbol.
func (l Longname) HasSuffix() bool {
	return l.Memberof != ""
}

type segment struct {
	punc byte
	text string
}

// ParseLongname splits s on scope punctuation found outside quotes,
// brackets and parentheses. "Foo.prototype.bar" is read as "Foo#bar".
func ParseLongname(s string) (Longname, error) {
	if strings.TrimSpace(s) == "" {
		return Longname{}, fmt.Errorf("%w: empty", ErrMalformedLongname)
	}

	segs, err := splitSegments(s)
	if err != nil {
		return Longname{}, err
	}
	segs = foldPrototype(segs)

	last := segs[len(segs)-1]
	if len(segs) == 1 {
		return Longname{Scope: ScopeGlobal, Name: last.text}, nil
	}

	var b strings.Builder
	for i, seg := range segs[:len(segs)-1] {
		if i > 0 {
			b.WriteByte(seg.punc)
		}
		b.WriteString(seg.text)
	}
	return Longname{
		Memberof: b.String(),
		Scope:    ScopeFromPunctuation(last.punc),
		Name:     last.text,
	}, nil
}

// MustParseLongname is ParseLongname for literals known to be valid.
func MustParseLongname(s string) Longname {
	l, err := ParseLongname(s)
	if err != nil {
		panic(err)
	}
	return l
}

func splitSegments(s string) ([]segment, error) {
	var (
		segs  []segment
		start int
		punc  byte
		quote byte
		depth int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced %q in %q", ErrMalformedLongname, c, s)
			}
		case depth == 0 && (c == '.' || c == '#' || c == '~'):
			if i == start {
				return nil, fmt.Errorf("%w: empty segment in %q", ErrMalformedLongname, s)
			}
			segs = append(segs, segment{punc: punc, text: s[start:i]})
			punc = c
			start = i + 1
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("%w: unterminated quote in %q", ErrMalformedLongname, s)
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced brackets in %q", ErrMalformedLongname, s)
	}
	if start >= len(s) {
		return nil, fmt.Errorf("%w: trailing punctuation in %q", ErrMalformedLongname, s)
	}
	return append(segs, segment{punc: punc, text: s[start:]}), nil
}

func foldPrototype(segs []segment) []segment {
	out := segs[:0:0]
	for i := 0; i < len(segs); i++ {
		if segs[i].text == "prototype" && segs[i].punc == '.' && i+1 < len(segs) && i > 0 {
			next := segs[i+1]
			next.punc = '#'
			out = append(out, next)
			i++
			continue
		}
		out = append(out, segs[i])
	}
	return out
}

func quoteName(name string) string {
	if name == "" || isQuoted(name) || !strings.ContainsAny(name, ".#~") {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `\"`) + `"`
}

func isQuoted(name string) bool {
	if len(name) < 2 {
		return false
	}
	first, last := name[0], name[len(name)-1]
	return (first == '"' || first == '\'') && first == last
}
