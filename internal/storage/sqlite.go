package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"doclink/internal/diag"
	"doclink/internal/doclet"
	"doclink/internal/graph"
)

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			root TEXT,
			created_at INTEGER,
			doclet_count INTEGER,
			diagnostic_count INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS doclets (
			run_id TEXT REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER,
			longname TEXT,
			name TEXT,
			kind TEXT,
			memberof TEXT,
			scope TEXT,
			body JSON,
			PRIMARY KEY (run_id, position)
		);`,
		`CREATE TABLE IF NOT EXISTS diagnostics (
			run_id TEXT REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER,
			severity TEXT,
			code TEXT,
			stage TEXT,
			subject TEXT,
			target TEXT,
			message TEXT,
			PRIMARY KEY (run_id, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_doclets_kind ON doclets(run_id, kind);`,
		`CREATE INDEX IF NOT EXISTS idx_doclets_memberof ON doclets(run_id, memberof);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- RunStore Implementation ---

func (s *SQLiteStore) SaveRun(ctx context.Context, root string, c *graph.Collection, diags []diag.Diagnostic) (Run, error) {
	run := Run{
		ID:          uuid.NewString(),
		Root:        root,
		CreatedAt:   s.now().UTC(),
		Doclets:     c.Len(),
		Diagnostics: len(diags),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, root, created_at, doclet_count, diagnostic_count) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Root, run.CreatedAt.UnixNano(), run.Doclets, run.Diagnostics,
	); err != nil {
		return Run{}, fmt.Errorf("failed to insert run: %w", err)
	}

	// 1. Save Doclets
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO doclets (run_id, position, longname, name, kind, memberof, scope, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, err
	}
	defer stmt.Close()

	for i, d := range c.Doclets() {
		body, err := json.Marshal(d)
		if err != nil {
			return Run{}, fmt.Errorf("failed to encode doclet %q: %w", d.Longname, err)
		}
		if _, err := stmt.ExecContext(ctx, run.ID, i, d.Longname, d.Name, d.Kind, d.Memberof, string(d.Scope), body); err != nil {
			return Run{}, err
		}
	}

	// 2. Save Diagnostics
	diagStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO diagnostics (run_id, position, severity, code, stage, subject, target, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, err
	}
	defer diagStmt.Close()

	for i, d := range diags {
		if _, err := diagStmt.ExecContext(ctx, run.ID, i, d.Severity.String(), string(d.Code), d.Stage, d.Subject, d.Target, d.Message); err != nil {
			return Run{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, err
	}
	return run, nil
}

func (s *SQLiteStore) LoadRun(ctx context.Context, id string) (*graph.Collection, error) {
	if _, err := s.run(ctx, id); err != nil {
		return nil, err
	}
	docs, err := s.queryDoclets(ctx, "SELECT body FROM doclets WHERE run_id = ? ORDER BY position", id)
	if err != nil {
		return nil, err
	}
	return graph.NewCollection(docs), nil
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, root, created_at, doclet_count, diagnostic_count FROM runs
		ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	return scanRun(row)
}

func (s *SQLiteStore) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, root, created_at, doclet_count, diagnostic_count FROM runs
		ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) run(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, root, created_at, doclet_count, diagnostic_count FROM runs WHERE id = ?", id)
	return scanRun(row)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var run Run
	var created int64
	if err := row.Scan(&run.ID, &run.Root, &created, &run.Doclets, &run.Diagnostics); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrRunNotFound
		}
		return Run{}, fmt.Errorf("failed to scan run: %w", err)
	}
	run.CreatedAt = time.Unix(0, created).UTC()
	return run, nil
}

// --- DocletStore Implementation ---

func (s *SQLiteStore) QueryByKind(ctx context.Context, runID, kind string) ([]*doclet.Doclet, error) {
	return s.queryDoclets(ctx,
		"SELECT body FROM doclets WHERE run_id = ? AND kind = ? ORDER BY position", runID, kind)
}

func (s *SQLiteStore) Children(ctx context.Context, runID, memberof string) ([]*doclet.Doclet, error) {
	return s.queryDoclets(ctx,
		"SELECT body FROM doclets WHERE run_id = ? AND memberof = ? ORDER BY position", runID, memberof)
}

func (s *SQLiteStore) Diagnostics(ctx context.Context, runID string) ([]diag.Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT severity, code, stage, subject, target, message FROM diagnostics
		WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query diagnostics: %w", err)
	}
	defer rows.Close()

	var out []diag.Diagnostic
	for rows.Next() {
		var d diag.Diagnostic
		var sev, code string
		if err := rows.Scan(&sev, &code, &d.Stage, &d.Subject, &d.Target, &d.Message); err != nil {
			return nil, fmt.Errorf("failed to scan diagnostic: %w", err)
		}
		d.Severity = diag.ParseSeverity(sev)
		d.Code = diag.Code(code)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) queryDoclets(ctx context.Context, query string, args ...any) ([]*doclet.Doclet, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query doclets: %w", err)
	}
	defer rows.Close()

	var docs []*doclet.Doclet
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan doclet: %w", err)
		}
		d := new(doclet.Doclet)
		if err := json.Unmarshal(body, d); err != nil {
			return nil, fmt.Errorf("failed to decode doclet: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}
