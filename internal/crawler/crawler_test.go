package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclink/internal/doclet"
	"doclink/internal/extractor"
)

func project(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, body := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(body), 0o644))
	}
	return fs
}

func newCrawler(t *testing.T, fs afero.Fs, opts ...Option) *Crawler {
	t.Helper()
	ext, err := extractor.NewExtractor("javascript")
	require.NoError(t, err)
	return NewCrawler(fs, ext, opts...)
}

func longnames(docs []*doclet.Doclet) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Longname)
	}
	return out
}

func TestCrawler_Discover(t *testing.T) {
	fs := project(t, map[string]string{
		"/proj/package.json":              `{"name":"zoo"}`,
		"/proj/README.md":                 "# Zoo",
		"/proj/lib/b.js":                  "",
		"/proj/lib/a.mjs":                 "",
		"/proj/lib/a.test.js":             "",
		"/proj/lib/style.css":             "",
		"/proj/lib/nested/package.json":   `{"name":"nested"}`,
		"/proj/node_modules/dep/index.js": "",
		"/proj/.git/hooks/pre-commit.js":  "",
		"/extra/doclets.json":             "[]",
	})

	in, err := newCrawler(t, fs).Discover("/proj", "/extra/doclets.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"/proj/lib/a.mjs", "/proj/lib/b.js"}, in.Sources)
	assert.Equal(t, []string{"/extra/doclets.json"}, in.Dumps)
	assert.Equal(t, "/proj/package.json", in.Package.PackageJSON, "shallowest manifest wins")
	assert.Equal(t, "/proj/README.md", in.Package.Readme)
}

func TestCrawler_DiscoverMissingRoot(t *testing.T) {
	_, err := newCrawler(t, afero.NewMemMapFs()).Discover("/nowhere")
	assert.Error(t, err)
}

func TestCrawler_Collect(t *testing.T) {
	fs := project(t, map[string]string{
		"/proj/package.json": `{"name":"zoo","version":"1.0.0"}`,
		"/proj/b.js":         "/** Second. */\nfunction second() {}\n",
		"/proj/a.js":         "/** First. */\nfunction first() {}\n",
		"/dump.json":         `[{"longname":"external:Buffer","name":"Buffer","kind":"external"}]`,
	})

	res, err := newCrawler(t, fs, WithJobs(2)).Collect(context.Background(), "/proj", "/dump.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"external:Buffer", "first", "second", "package:zoo"}, longnames(res.Doclets))
	assert.Empty(t, res.Failed)
	assert.Equal(t, doclet.KindPackage, res.Doclets[3].Kind)
}

func TestCrawler_CollectOrderIsStable(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"e", "d", "c", "b", "a"} {
		files["/src/"+name+".js"] = "/** Doc. */\nfunction " + name + "() {}\n"
	}
	fs := project(t, files)

	for range 3 {
		res, err := newCrawler(t, fs, WithJobs(4)).Collect(context.Background(), "/src")
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b", "c", "d", "e", "package:undefined"}, longnames(res.Doclets))
	}
}

func TestCrawler_BadInputsAreSkipped(t *testing.T) {
	fs := project(t, map[string]string{
		"/proj/package.json": `{"name":"zoo","version":"not-a-version"}`,
		"/proj/ok.js":        "/** Fine. */\nconst ok = 1;\n",
		"/broken.json":       `{not json`,
	})

	res, err := newCrawler(t, fs).Collect(context.Background(), "/proj", "/broken.json")
	require.NoError(t, err)

	assert.Equal(t, []string{"ok", "package:undefined"}, longnames(res.Doclets))
	require.Len(t, res.Failed, 2)
	assert.Equal(t, "/broken.json", res.Failed[0].Path)
	assert.Equal(t, "/proj/package.json", res.Failed[1].Path)
}

func TestCrawler_PackageWithoutManifest(t *testing.T) {
	fs := project(t, map[string]string{
		"/src/b.js": "/** B. */\nfunction b() {}\n",
		"/src/a.js": "/** A. */\nfunction a() {}\n",
	})

	res, err := newCrawler(t, fs).Collect(context.Background(), "/src")
	require.NoError(t, err)
	require.Empty(t, res.Failed)

	pkg := res.Doclets[len(res.Doclets)-1]
	assert.Equal(t, "package:undefined", pkg.Longname)
	assert.Equal(t, doclet.KindPackage, pkg.Kind)

	var files []string
	require.NoError(t, json.Unmarshal(pkg.Props["files"], &files))
	assert.Equal(t, []string{"/src/a.js", "/src/b.js"}, files)
}

// unreadable fails to open one path.
type unreadable struct {
	afero.Fs
	path string
}

func (u unreadable) Open(name string) (afero.File, error) {
	if name == u.path {
		return nil, errors.New("disk error")
	}
	return u.Fs.Open(name)
}

func TestCrawler_ReadmeFailureNamesReadme(t *testing.T) {
	fs := project(t, map[string]string{
		"/proj/package.json": `{"name":"zoo"}`,
		"/proj/README.md":    "# Zoo",
		"/proj/a.js":         "/** A. */\nfunction a() {}\n",
	})

	res, err := newCrawler(t, unreadable{Fs: fs, path: "/proj/README.md"}).Collect(context.Background(), "/proj")
	require.NoError(t, err)

	require.Len(t, res.Failed, 1)
	assert.Equal(t, "/proj/README.md", res.Failed[0].Path)
	assert.Equal(t, []string{"a", "package:zoo"}, longnames(res.Doclets))
}

func TestCrawler_WithIgnored(t *testing.T) {
	fs := project(t, map[string]string{
		"/proj/src/a.js":  "",
		"/proj/dist/a.js": "",
	})

	in, err := newCrawler(t, fs, WithIgnored("dist")).Discover("/proj")
	require.NoError(t, err)
	assert.Equal(t, []string{"/proj/src/a.js"}, in.Sources)
}

func TestCrawler_CollectCanceled(t *testing.T) {
	fs := project(t, map[string]string{"/src/a.js": "const a = 1;"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newCrawler(t, fs).Collect(ctx, "/src")
	assert.ErrorIs(t, err, context.Canceled)
}
