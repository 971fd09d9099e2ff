package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/calltree/internal/calltree"
	"github.com/roach88/calltree/internal/parser"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, seq, source, trace_hash, tree_hash, root_name, anchor_id, synthesis, event_count, node_count, stats`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run       Run
		anchor    sql.NullInt64
		synthesis string
		stats     string
	)
	err := row.Scan(
		&run.ID,
		&run.Seq,
		&run.Source,
		&run.TraceHash,
		&run.TreeHash,
		&run.RootName,
		&anchor,
		&synthesis,
		&run.EventCount,
		&run.NodeCount,
		&stats,
	)
	if err != nil {
		return Run{}, err
	}

	run.Anchor = nodeFromNull(anchor)
	run.Synthesis = parser.SynthesisPolicy(synthesis)
	run.Stats, err = unmarshalStats(stats)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", run.ID, err)
	}
	return run, nil
}

// ReadRun retrieves a single run by ID.
// Returns an error wrapping ErrRunNotFound if it does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns every run ordered by seq ASC, id ASC.
// Returns an empty slice (not nil) when the store is empty.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+` FROM runs
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
}

// FindRunsByTraceHash returns the runs of one trace, oldest first.
func (s *Store) FindRunsByTraceHash(ctx context.Context, traceHash string) ([]Run, error) {
	return s.queryRuns(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE trace_hash = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, traceHash)
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadTree rebuilds a run's call tree and checks it against the stored
// tree hash.
func (s *Store) ReadTree(ctx context.Context, runID string) (*calltree.Tree, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT node_id, parent_id, name
		FROM nodes
		WHERE run_id = ?
		ORDER BY node_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var treeRows []calltree.Row
	for rows.Next() {
		var (
			id     int64
			parent sql.NullInt64
			name   string
		)
		if err := rows.Scan(&id, &parent, &name); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		treeRows = append(treeRows, calltree.Row{
			ID:     calltree.NodeID(id),
			Parent: nodeFromNull(parent),
			Name:   name,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nodes: %w", err)
	}

	tree, err := calltree.FromRows(treeRows)
	if err != nil {
		return nil, fmt.Errorf("read tree %s: %w", runID, err)
	}

	hash, err := tree.Hash()
	if err != nil {
		return nil, fmt.Errorf("read tree %s: %w", runID, err)
	}
	if hash != run.TreeHash {
		return nil, fmt.Errorf("read tree %s: tree hash mismatch: stored %s, rebuilt %s", runID, run.TreeHash, hash)
	}
	return tree, nil
}

// ReadDiagnostics returns a run's diagnostics in the order they were
// reported. Returns an empty slice (not nil) when there are none.
func (s *Store) ReadDiagnostics(ctx context.Context, runID string) ([]parser.Diagnostic, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, message, event_index
		FROM diagnostics
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query diagnostics: %w", err)
	}
	defer rows.Close()

	diags := []parser.Diagnostic{}
	for rows.Next() {
		var (
			d    parser.Diagnostic
			code string
		)
		if err := rows.Scan(&code, &d.Message, &d.EventIndex); err != nil {
			return nil, fmt.Errorf("scan diagnostic: %w", err)
		}
		d.Code = parser.DiagnosticCode(code)
		diags = append(diags, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diagnostics: %w", err)
	}
	return diags, nil
}
