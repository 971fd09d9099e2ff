package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/calltree/internal/calltree"
	"github.com/roach88/calltree/internal/parser"
)

// WriteRun stores a run with its tree and diagnostics in one transaction.
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing a run ID that
// already exists leaves the stored run untouched and returns
// inserted=false. The run's Seq is assigned here; the returned Run carries
// it.
func (s *Store) WriteRun(ctx context.Context, run Run, tree *calltree.Tree, diags []parser.Diagnostic) (Run, bool, error) {
	if tree == nil {
		return run, false, fmt.Errorf("write run %s: nil tree", run.ID)
	}

	statsJSON, err := marshalStats(run.Stats)
	if err != nil {
		return run, false, fmt.Errorf("write run %s: %w", run.ID, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return run, false, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return run, false, fmt.Errorf("write run: next seq: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, source, trace_hash, tree_hash, root_name, anchor_id, synthesis, event_count, node_count, stats)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		run.ID,
		seq,
		run.Source,
		run.TraceHash,
		run.TreeHash,
		run.RootName,
		nullableNode(run.Anchor),
		string(run.Synthesis),
		run.EventCount,
		run.NodeCount,
		statsJSON,
	)
	if err != nil {
		return run, false, fmt.Errorf("write run: insert run: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return run, false, fmt.Errorf("write run: rows affected: %w", err)
	}
	if rowsAffected == 0 {
		if err := tx.Commit(); err != nil {
			return run, false, fmt.Errorf("write run: commit (existing): %w", err)
		}
		return run, false, nil
	}

	if err := writeNodes(ctx, tx, run.ID, tree); err != nil {
		return run, false, err
	}
	if err := writeDiagnostics(ctx, tx, run.ID, diags); err != nil {
		return run, false, err
	}

	if err := tx.Commit(); err != nil {
		return run, false, fmt.Errorf("write run: commit: %w", err)
	}

	run.Seq = seq
	return run, true, nil
}

func writeNodes(ctx context.Context, tx *sql.Tx, runID string, tree *calltree.Tree) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (run_id, node_id, parent_id, name, position)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("write run: prepare nodes: %w", err)
	}
	defer stmt.Close()

	positions := make(map[calltree.NodeID]int)
	for _, row := range tree.Rows() {
		pos := positions[row.Parent]
		positions[row.Parent]++
		if _, err := stmt.ExecContext(ctx, runID, int64(row.ID), nullableNode(row.Parent), row.Name, pos); err != nil {
			return fmt.Errorf("write run: insert node %d: %w", row.ID, err)
		}
	}
	return nil
}

func writeDiagnostics(ctx context.Context, tx *sql.Tx, runID string, diags []parser.Diagnostic) error {
	for i, d := range diags {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO diagnostics (run_id, seq, code, message, event_index)
			VALUES (?, ?, ?, ?, ?)
		`, runID, i+1, string(d.Code), d.Message, d.EventIndex)
		if err != nil {
			return fmt.Errorf("write run: insert diagnostic %d: %w", i+1, err)
		}
	}
	return nil
}
