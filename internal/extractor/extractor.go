package extractor

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/spf13/afero"

	"doclink/internal/doclet"
)

// Extractor orchestrates the extraction process using language-specific extractors.
type Extractor struct {
	langExtractor LanguageExtractor
	langName      string
}

// NewExtractor creates a new extractor for a given language.
func NewExtractor(lang string) (*Extractor, error) {
	var langExt LanguageExtractor
	switch lang {
	case "javascript", "js":
		langExt = &JSExtractor{}
		lang = "javascript"
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	return &Extractor{langExtractor: langExt, langName: lang}, nil
}

func (e *Extractor) Language() string {
	return e.langName
}

// Handles reports whether path has one of the language's file extensions.
func (e *Extractor) Handles(path string) bool {
	return slices.Contains(e.langExtractor.Extensions(), strings.ToLower(filepath.Ext(path)))
}

// ExtractFromFile reads and parses a single source file from fs.
func (e *Extractor) ExtractFromFile(ctx context.Context, fs afero.Fs, path string) ([]*doclet.Doclet, error) {
	sourceCode, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return e.ExtractSource(ctx, path, sourceCode)
}

// ExtractSource parses sourceCode and returns its doclets in source order.
// A parser is created per call, so an Extractor is safe for concurrent use.
func (e *Extractor) ExtractSource(ctx context.Context, path string, sourceCode []byte) ([]*doclet.Doclet, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(e.langExtractor.GetLanguage())
	tree, err := parser.ParseCtx(ctx, nil, sourceCode)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	return e.langExtractor.ExtractDoclets(tree.RootNode(), sourceCode, path), nil
}
