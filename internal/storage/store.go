package storage

import (
	"context"
	"errors"
	"time"

	"doclink/internal/diag"
	"doclink/internal/doclet"
	"doclink/internal/graph"
)

// ErrRunNotFound is returned when a run id (or any run at all) is missing.
var ErrRunNotFound = errors.New("run not found")

// Run describes one persisted resolution.
type Run struct {
	ID          string
	Root        string
	CreatedAt   time.Time
	Doclets     int
	Diagnostics int
}

// Store combines run and doclet query capabilities.
type Store interface {
	RunStore
	DocletStore
	Close() error
}

// RunStore persists whole resolved collections.
type RunStore interface {
	// SaveRun stores a collection and its diagnostics under a new run id.
	SaveRun(ctx context.Context, root string, c *graph.Collection, diags []diag.Diagnostic) (Run, error)

	// LoadRun restores the collection of a run in its original order.
	LoadRun(ctx context.Context, id string) (*graph.Collection, error)

	// LatestRun returns the most recently saved run.
	LatestRun(ctx context.Context) (Run, error)

	// Runs lists saved runs, newest first.
	Runs(ctx context.Context) ([]Run, error)
}

// DocletStore answers queries against a single run.
type DocletStore interface {
	QueryByKind(ctx context.Context, runID, kind string) ([]*doclet.Doclet, error)
	Children(ctx context.Context, runID, memberof string) ([]*doclet.Doclet, error)
	Diagnostics(ctx context.Context, runID string) ([]diag.Diagnostic, error)
}
