package store

import (
	"context"
	"fmt"

	"github.com/roach88/calltree/internal/event"
	"github.com/roach88/calltree/internal/parser"
)

// ReplayResult compares a stored run against a fresh parse of its trace.
type ReplayResult struct {
	RunID string `json:"run_id"`

	// TraceMatches is false when the supplied trace is not the one the
	// run was recorded from.
	TraceMatches bool `json:"trace_matches"`

	StoredTreeHash   string `json:"stored_tree_hash"`
	ReplayedTreeHash string `json:"replayed_tree_hash"`

	// Identical is true when the replayed tree hashes equal to the stored
	// one. Parsing is deterministic, so a mismatch on the same trace means
	// the parser's behaviour changed.
	Identical bool `json:"identical"`

	StoredDiagnostics   int `json:"stored_diagnostics"`
	ReplayedDiagnostics int `json:"replayed_diagnostics"`
}

// Replay re-parses trace with opts and compares the result with the
// stored run. The trace is not modified.
func (s *Store) Replay(ctx context.Context, runID string, trace event.Trace, opts parser.Options) (ReplayResult, error) {
	run, err := s.ReadRun(ctx, runID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	stored, err := s.ReadDiagnostics(ctx, runID)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}

	traceHash, err := trace.Hash()
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}

	res, err := parser.Parse(trace.Clone(), opts)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}
	treeHash, err := res.Tree.Hash()
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay: %w", err)
	}

	return ReplayResult{
		RunID:               runID,
		TraceMatches:        traceHash == run.TraceHash,
		StoredTreeHash:      run.TreeHash,
		ReplayedTreeHash:    treeHash,
		Identical:           treeHash == run.TreeHash,
		StoredDiagnostics:   len(stored),
		ReplayedDiagnostics: len(res.Diagnostics),
	}, nil
}
