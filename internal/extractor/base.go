package extractor

import (
	sitter "github.com/smacker/go-tree-sitter"

	"doclink/internal/doclet"
)

// LanguageExtractor turns a parsed syntax tree into raw doclets.
type LanguageExtractor interface {
	GetLanguage() *sitter.Language
	Extensions() []string
	ExtractDoclets(root *sitter.Node, sourceCode []byte, filepath string) []*doclet.Doclet
}
