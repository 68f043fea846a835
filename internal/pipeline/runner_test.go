package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doclink/internal/config"
	"doclink/internal/diag"
	"doclink/internal/doclet"
	"doclink/internal/graph"
	"doclink/internal/storage"
)

const animalJS = `/** A creature. */
class Animal {
  /** Make a sound. */
  speak() {}
}

/** A dog. */
class Dog extends Animal {}

/** A cat. */
class Cat extends Missing {}

/**
 * @namespace kennel
 * @borrows Dog#speak as bark
 */
`

func testProject(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/proj/package.json", []byte(`{"name":"zoo","version":"1.0.0"}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/proj/src/animal.js", []byte(animalJS), 0o644))
	return fs
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Project.Root = "/proj"
	return cfg
}

func TestRunner_Run(t *testing.T) {
	fs := testProject(t)
	cfg := testConfig()
	cfg.Output.Dump = "/out/doclets.json"

	report, err := NewRunner(cfg, fs, nil).Run(context.Background())
	require.NoError(t, err)

	out := report.Result.Collection
	speak, ok := out.Lookup("Dog#speak")
	require.True(t, ok)
	assert.True(t, speak.Inherited)
	assert.Equal(t, "Animal#speak", speak.Inherits)

	bark, ok := out.Lookup("kennel#bark")
	require.True(t, ok)
	assert.Equal(t, "Dog#speak", bark.BorrowedFrom)

	pkg, ok := out.Lookup("package:zoo")
	require.True(t, ok)
	assert.Equal(t, doclet.KindPackage, pkg.Kind)

	assert.Len(t, report.Result.Diagnostics.Filter(diag.CodeUnresolvedAncestor), 1)
	assert.Zero(t, report.Run.ID, "no database configured")

	t.Run("Dump", func(t *testing.T) {
		assert.Equal(t, "/out/doclets.json", report.DumpPath)
		dumped, err := graph.LoadFile(fs, report.DumpPath)
		require.NoError(t, err)
		assert.Equal(t, out.Len(), dumped.Len())
	})
}

func TestRunner_PersistsRunAndMetrics(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.Output.Database = filepath.Join(dir, "doclink.db")
	cfg.Output.Metrics = filepath.Join(dir, "doclink.prom")

	report, err := NewRunner(cfg, testProject(t), nil).Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, report.Run.ID)

	store, err := storage.NewSQLiteStore(cfg.Output.Database)
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	latest, err := store.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.Run.ID, latest.ID)
	assert.Equal(t, "/proj", latest.Root)
	assert.Equal(t, report.Result.Collection.Len(), latest.Doclets)

	children, err := store.Children(ctx, latest.ID, "kennel")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "kennel#bark", children[0].Longname)

	diags, err := store.Diagnostics(ctx, latest.ID)
	require.NoError(t, err)
	assert.Equal(t, report.Result.Diagnostics.Items(), diags)

	text, err := os.ReadFile(cfg.Output.Metrics)
	require.NoError(t, err)
	assert.Contains(t, string(text), "doclink_collection_doclets")
}

func TestRunner_MissingRoot(t *testing.T) {
	cfg := testConfig()
	cfg.Project.Root = "/absent"

	_, err := NewRunner(cfg, afero.NewMemMapFs(), nil).Run(context.Background())
	assert.Error(t, err)
}
