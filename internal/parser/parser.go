package parser

import (
	"fmt"
	"log/slog"

	"github.com/roach88/calltree/internal/calltree"
	"github.com/roach88/calltree/internal/event"
)

// Result is a finished parse.
type Result struct {
	Tree *calltree.Tree

	// Anchor is where call population started, or calltree.NoNode when no
	// call originated from the import tree.
	Anchor calltree.NodeID

	Imports     []ImportDefinition
	Diagnostics []Diagnostic

	// Synthesized lists the caller frames fabricated during population,
	// in the order they were inserted.
	Synthesized []event.Event

	Stats Stats
}

// HasAnchor reports whether calls were populated.
func (r *Result) HasAnchor() bool {
	return r.Anchor != calltree.NoNode
}

// Stats counts what happened during a parse.
type Stats struct {
	Events      int `json:"events"`
	Calls       int `json:"calls"`
	Imports     int `json:"imports"`
	Flattened   int `json:"flattened"`
	Attached    int `json:"attached"`
	Synthesized int `json:"synthesized"`
	Dropped     int `json:"dropped"`
	Nodes       int `json:"nodes"`
}

// state is owned by a single Parse call.
type state struct {
	trace event.Trace
	opts  Options
	log   *slog.Logger

	tree        *calltree.Tree
	diags       []Diagnostic
	synthesized []event.Event
	attached    int
	dropped     int
}

func (s *state) diagnose(code DiagnosticCode, index int, format string, args ...any) {
	d := Diagnostic{Code: code, Message: fmt.Sprintf(format, args...), EventIndex: index}
	s.diags = append(s.diags, d)
	s.log.Warn(d.Message, "code", string(code), "event", index)
}

// Parse reconstructs the call tree of trace.
//
// The trace is normalized and rewritten in place (see Normalize); parse a
// Clone to keep the raw events. On error no tree is returned.
func Parse(trace event.Trace, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	s := &state{trace: trace, opts: opts, log: opts.logger()}
	s.log.Debug("parsing trace", "events", len(trace))

	Normalize(trace, opts)

	imports, err := ResolveImports(trace, opts)
	if err != nil {
		return nil, err
	}
	s.log.Debug("imports resolved", "retained", len(imports), "root", imports[0].SourcePath)

	s.buildSkeleton(imports)

	anchor, ok := s.findAnchor()
	flattened := 0
	if ok {
		flattened = s.flattenIndirection()
		if err := s.populate(anchor); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Tree:        s.tree,
		Anchor:      anchor,
		Imports:     imports,
		Diagnostics: s.diags,
		Synthesized: s.synthesized,
		Stats: Stats{
			Events:      len(trace),
			Calls:       trace.Count(event.KindFunctionCall),
			Imports:     len(imports),
			Flattened:   flattened,
			Attached:    s.attached,
			Synthesized: len(s.synthesized),
			Dropped:     s.dropped,
			Nodes:       s.tree.Len(),
		},
	}

	s.log.Debug("trace parsed",
		"nodes", res.Stats.Nodes,
		"attached", res.Stats.Attached,
		"synthesized", res.Stats.Synthesized,
		"dropped", res.Stats.Dropped,
	)
	return res, nil
}
