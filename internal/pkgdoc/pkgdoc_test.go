package pkgdoc

import (
	"encoding/json"
	"errors"
	iofs "io/fs"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclink/internal/doclet"
)

const manifest = `{
  "name": "zoo",
  "version": "1.2.0",
  "description": "Animals and their keepers.",
  "license": "MIT",
  "keywords": ["animals"],
  "repository": {"type": "git", "url": "https://example.com/zoo.git"}
}`

func prop(t *testing.T, d *doclet.Doclet, key string, v any) {
	t.Helper()
	raw, ok := d.Props[key]
	require.True(t, ok, "missing prop %s", key)
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestFromPackageJSON(t *testing.T) {
	d, err := FromPackageJSON([]byte(manifest))
	require.NoError(t, err)

	assert.Equal(t, doclet.KindPackage, d.Kind)
	assert.Equal(t, "package:zoo", d.Longname)
	assert.Equal(t, "zoo", d.Name)
	assert.Equal(t, "Animals and their keepers.", d.Description)

	var version string
	prop(t, d, "version", &version)
	assert.Equal(t, "1.2.0", version)

	var licenses []string
	prop(t, d, "licenses", &licenses)
	assert.Equal(t, []string{"MIT"}, licenses)
	assert.Contains(t, string(d.Props["repository"]), "zoo.git")
}

func TestFromPackageJSON_Invalid(t *testing.T) {
	_, err := FromPackageJSON([]byte(`{"name": "zoo", "version": "one"}`))
	assert.ErrorContains(t, err, "invalid package.json")

	_, err = FromPackageJSON([]byte(`{`))
	assert.ErrorContains(t, err, "decode")
}

func TestFromPackageJSON_Unnamed(t *testing.T) {
	d, err := FromPackageJSON([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "package:undefined", d.Longname)
}

func TestRenderReadme(t *testing.T) {
	r, err := RenderReadme([]byte("# Zoo *Keeper*\n\nKeeps the animals\nfed.\n\nMore text.\n"))
	require.NoError(t, err)

	assert.Equal(t, "Zoo Keeper", r.Title)
	assert.Equal(t, "Keeps the animals fed.", r.Summary)
	assert.Contains(t, r.HTML, "<h1>Zoo <em>Keeper</em></h1>")
	assert.Contains(t, r.HTML, "<p>More text.</p>")
}

// failingFs fails to open one path.
type failingFs struct {
	afero.Fs
	path string
}

func (f failingFs) Open(name string) (afero.File, error) {
	if name == f.path {
		return nil, errors.New("disk error")
	}
	return f.Fs.Open(name)
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/package.json", []byte(`{"name": "zoo"}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/README.md", []byte("# Zoo\n\nFrom the readme.\n"), 0o644))

	t.Run("both files", func(t *testing.T) {
		d, err := Load(fs, Source{PackageJSON: "/proj/package.json", Readme: "/proj/README.md"})
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, "package:zoo", d.Longname)
		assert.Equal(t, "From the readme.", d.Description, "readme fills a missing description")

		var html string
		prop(t, d, "readme", &html)
		assert.Contains(t, html, "<h1>Zoo</h1>")
	})

	t.Run("readme only", func(t *testing.T) {
		d, err := Load(fs, Source{Readme: "/proj/README.md"})
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, "package:undefined", d.Longname)
	})

	t.Run("missing files", func(t *testing.T) {
		d, err := Load(fs, Source{PackageJSON: "/nope/package.json", Readme: "/nope/README.md"})
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, "package:undefined", d.Longname)
		assert.Equal(t, doclet.KindPackage, d.Kind)
	})

	t.Run("source files", func(t *testing.T) {
		files := []string{"/proj/a.js", "/proj/b.js"}
		for _, src := range []Source{
			{Files: files},
			{PackageJSON: "/proj/package.json", Readme: "/proj/README.md", Files: files},
		} {
			d, err := Load(fs, src)
			require.NoError(t, err)
			var got []string
			prop(t, d, "files", &got)
			assert.Equal(t, files, got)
		}
	})

	t.Run("invalid manifest", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "/bad/package.json", []byte(`{"homepage": "not a url"}`), 0o644))
		_, err := Load(fs, Source{PackageJSON: "/bad/package.json"})
		var perr *iofs.PathError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "/bad/package.json", perr.Path)
	})

	t.Run("unreadable readme", func(t *testing.T) {
		broken := failingFs{Fs: fs, path: "/proj/README.md"}
		d, err := Load(broken, Source{PackageJSON: "/proj/package.json", Readme: "/proj/README.md"})
		var perr *iofs.PathError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, "/proj/README.md", perr.Path, "the failing file is named, not the manifest")
		require.NotNil(t, d)
		assert.Equal(t, "package:zoo", d.Longname, "the manifest still applies")
	})
}
