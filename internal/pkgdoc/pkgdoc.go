// Package pkgdoc synthesizes the package doclet from package.json and a
// README. It enters the collection like any parsed doclet.
package pkgdoc

import (
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"

	"doclink/internal/doclet"
)

// LongnamePrefix marks package doclets, as in "package:left-pad".
const LongnamePrefix = "package:"

// Manifest is the subset of package.json the package doclet carries.
type Manifest struct {
	Name        string          `json:"name" validate:"omitempty,max=214"`
	Version     string          `json:"version" validate:"omitempty,semver"`
	Description string          `json:"description"`
	License     string          `json:"license"`
	Homepage    string          `json:"homepage" validate:"omitempty,url"`
	Main        string          `json:"main"`
	Keywords    []string        `json:"keywords"`
	Repository  json.RawMessage `json:"repository"`
	Author      json.RawMessage `json:"author"`
}

var validate = validator.New()

// Source names the files a package doclet is built from. Either file may
// be empty. Files lists the source files of the run.
type Source struct {
	PackageJSON string
	Readme      string
	Files       []string
}

// Load builds the package doclet. Without a manifest the package is
// "package:undefined". A file that exists but cannot be used yields an
// *fs.PathError naming it. A bad manifest returns no doclet; a bad README
// returns the doclet built from the manifest alongside the error.
func Load(fs afero.Fs, src Source) (*doclet.Doclet, error) {
	d := Empty(src.Files)

	if src.PackageJSON != "" {
		data, err := afero.ReadFile(fs, src.PackageJSON)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, &iofs.PathError{Op: "read", Path: src.PackageJSON, Err: err}
		default:
			if d, err = FromPackageJSON(data); err != nil {
				return nil, &iofs.PathError{Op: "parse", Path: src.PackageJSON, Err: err}
			}
			setFiles(d, src.Files)
		}
	}

	if src.Readme != "" {
		data, err := afero.ReadFile(fs, src.Readme)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return d, &iofs.PathError{Op: "read", Path: src.Readme, Err: err}
		default:
			readme, err := RenderReadme(data)
			if err != nil {
				return d, &iofs.PathError{Op: "render", Path: src.Readme, Err: err}
			}
			attachReadme(d, readme)
		}
	}
	return d, nil
}

// Empty is the package doclet of a run without package.json.
func Empty(files []string) *doclet.Doclet {
	d := newPackage(Manifest{})
	setFiles(d, files)
	return d
}

// FromPackageJSON decodes and validates a package.json.
func FromPackageJSON(data []byte) (*doclet.Doclet, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode package.json: %w", err)
	}
	if err := validate.Struct(m); err != nil {
		return nil, fmt.Errorf("invalid package.json: %w", err)
	}
	return newPackage(m), nil
}

func newPackage(m Manifest) *doclet.Doclet {
	name := m.Name
	if name == "" {
		name = "undefined"
	}
	d := &doclet.Doclet{
		Kind:        doclet.KindPackage,
		Name:        name,
		Longname:    LongnamePrefix + name,
		Scope:       doclet.ScopeGlobal,
		Description: m.Description,
	}
	setString(d, "version", m.Version)
	setString(d, "homepage", m.Homepage)
	setString(d, "main", m.Main)
	if m.License != "" {
		setJSON(d, "licenses", []string{m.License})
	}
	if len(m.Keywords) > 0 {
		setJSON(d, "keywords", m.Keywords)
	}
	if len(m.Repository) > 0 {
		setRaw(d, "repository", m.Repository)
	}
	if len(m.Author) > 0 {
		setRaw(d, "author", m.Author)
	}
	return d
}

func setFiles(d *doclet.Doclet, files []string) {
	if len(files) > 0 {
		setJSON(d, "files", files)
	}
}

func attachReadme(d *doclet.Doclet, r Readme) {
	setString(d, "readme", r.HTML)
	setString(d, "readmeTitle", r.Title)
	if d.Description == "" {
		d.Description = r.Summary
	}
}

func setString(d *doclet.Doclet, key, v string) {
	if v != "" {
		setJSON(d, key, v)
	}
}

func setJSON(d *doclet.Doclet, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	setRaw(d, key, raw)
}

func setRaw(d *doclet.Doclet, key string, raw json.RawMessage) {
	if d.Props == nil {
		d.Props = make(map[string]json.RawMessage)
	}
	d.Props[key] = raw
}
