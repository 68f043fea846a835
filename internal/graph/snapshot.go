package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"doclink/internal/doclet"
)

// WriteJSON encodes the collection as a JSON array of doclets.
func WriteJSON(w io.Writer, c *Collection) error {
	docs := c.Doclets()
	if docs == nil {
		docs = []*doclet.Doclet{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(docs); err != nil {
		return fmt.Errorf("failed to encode doclets: %w", err)
	}
	return nil
}

// ReadJSON decodes a JSON array of doclets.
func ReadJSON(r io.Reader) (*Collection, error) {
	var docs []*doclet.Doclet
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode doclets: %w", err)
	}
	kept := docs[:0]
	for _, d := range docs {
		if d != nil {
			kept = append(kept, d)
		}
	}
	return NewCollection(kept), nil
}

// SaveFile writes the collection to path on fs.
func SaveFile(fs afero.Fs, path string, c *Collection) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer f.Close()
	return WriteJSON(f, c)
}

// LoadFile reads a collection from path on fs.
func LoadFile(fs afero.Fs, path string) (*Collection, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer f.Close()
	return ReadJSON(f)
}
