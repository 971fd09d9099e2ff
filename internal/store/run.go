package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/calltree/internal/calltree"
	"github.com/roach88/calltree/internal/parser"
)

// Run is the stored summary of one parse.
type Run struct {
	ID string `json:"id"`

	// Seq orders runs by insertion. Assigned by WriteRun.
	Seq int64 `json:"seq"`

	// Source is where the trace was read from, usually a file path.
	Source string `json:"source"`

	TraceHash string `json:"trace_hash"`
	TreeHash  string `json:"tree_hash"`
	RootName  string `json:"root_name"`

	// Anchor is calltree.NoNode when no call was attached.
	Anchor calltree.NodeID `json:"anchor"`

	Synthesis  parser.SynthesisPolicy `json:"synthesis"`
	EventCount int                    `json:"event_count"`
	NodeCount  int                    `json:"node_count"`
	Stats      parser.Stats           `json:"stats"`
}

// IDGenerator produces run IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewRun describes a finished parse. traceHash identifies the trace as it
// was read, before the parser rewrote it.
func NewRun(id, source, traceHash string, opts parser.Options, res *parser.Result) (Run, error) {
	treeHash, err := res.Tree.Hash()
	if err != nil {
		return Run{}, fmt.Errorf("new run: %w", err)
	}
	return Run{
		ID:         id,
		Source:     source,
		TraceHash:  traceHash,
		TreeHash:   treeHash,
		RootName:   res.Tree.Name(res.Tree.Root()),
		Anchor:     res.Anchor,
		Synthesis:  opts.Synthesis,
		EventCount: res.Stats.Events,
		NodeCount:  res.Tree.Len(),
		Stats:      res.Stats,
	}, nil
}
