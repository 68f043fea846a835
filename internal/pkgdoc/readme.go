package pkgdoc

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Readme is a rendered README.
type Readme struct {
	HTML string
	// Title is the text of the first heading.
	Title string
	// Summary is the text of the first paragraph.
	Summary string
}

// RenderReadme converts Markdown to HTML and picks out its title and
// opening paragraph.
func RenderReadme(source []byte) (Readme, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(source))

	var out Readme
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch n.Kind() {
		case gmast.KindHeading:
			if out.Title == "" {
				out.Title = plainText(n, source)
			}
			return gmast.WalkSkipChildren, nil
		case gmast.KindParagraph:
			if out.Summary == "" {
				out.Summary = plainText(n, source)
			}
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})

	var buf bytes.Buffer
	if err := md.Renderer().Render(&buf, source, root); err != nil {
		return Readme{}, fmt.Errorf("failed to render readme: %w", err)
	}
	out.HTML = buf.String()
	return out, nil
}

// plainText concatenates the text segments below n.
func plainText(n gmast.Node, source []byte) string {
	var b strings.Builder
	_ = gmast.Walk(n, func(c gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if t, ok := c.(*gmast.Text); ok {
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		}
		return gmast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
