package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/calltree/internal/calltree"
	"github.com/roach88/calltree/internal/parser"
	"github.com/roach88/calltree/internal/store"
)

// ParseOptions holds flags for the parse command.
type ParseOptions struct {
	*RootOptions
	Database    string // optional - persist the run
	Diagnostics bool   // print diagnostics after the tree
	Strict      bool   // fail instead of dropping unbridgeable calls
}

// ParseResult is the parse command's output.
type ParseResult struct {
	Source      string              `json:"source"`
	Root        string              `json:"root"`
	Tree        *calltree.Tree      `json:"tree"`
	Stats       parser.Stats        `json:"stats"`
	Shape       calltree.Stats      `json:"shape"`
	Diagnostics []parser.Diagnostic `json:"diagnostics"`
	TraceHash   string              `json:"trace_hash"`
	TreeHash    string              `json:"tree_hash"`
	RunID       string              `json:"run_id,omitempty"`
}

// NewParseCommand creates the parse command.
func NewParseCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ParseOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "parse <trace>",
		Short: "Reconstruct the call tree of a trace",
		Long: `Read a trace file and print the reconstructed call tree.

Traces are JSON arrays (.json) or one event per line (.jsonl, .ndjson),
optionally gzip-compressed (.gz).

Exit codes:
  0 - Tree reconstructed (diagnostics may have been reported)
  1 - Fatal parse error (no imports, or --strict synthesis failure)
  2 - Command error (unreadable trace, bad config, database error)

Examples:
  calltree parse trace.json
  calltree parse trace.jsonl.gz --diagnostics
  calltree parse trace.json --db runs.db --format json
  calltree parse trace.json --strict --config calltree.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "persist the run to this SQLite database")
	cmd.Flags().BoolVar(&opts.Diagnostics, "diagnostics", false, "print diagnostics")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when a dangling call cannot be bridged")

	return cmd
}

func runParse(opts *ParseOptions, tracePath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	popts, err := opts.parserOptions(cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	if opts.Strict {
		popts.Synthesis = parser.SynthesisFail
	}

	trace, err := loadTrace(tracePath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadTrace, "failed to read trace", err)
	}
	formatter.VerboseLog("Read %d event(s) from %s", len(trace.Events), tracePath)

	res, err := parser.Parse(trace.Events.Clone(), popts)
	if err != nil {
		if code := parser.CodeOf(err); code != "" {
			_ = formatter.Error(string(code), err.Error(), nil)
			return WrapExitError(ExitFailure, "parse failed", err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "parse failed", err)
	}

	treeHash, err := res.Tree.Hash()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to hash tree", err)
	}

	result := ParseResult{
		Source:      tracePath,
		Root:        res.Tree.Name(res.Tree.Root()),
		Tree:        res.Tree,
		Stats:       res.Stats,
		Shape:       res.Tree.Stats(popts.ModuleSuffix),
		Diagnostics: res.Diagnostics,
		TraceHash:   trace.Hash,
		TreeHash:    treeHash,
	}
	if result.Diagnostics == nil {
		result.Diagnostics = []parser.Diagnostic{}
	}

	if opts.Database != "" {
		runID, err := persistRun(context.Background(), opts, trace, popts, res)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to store run", err)
		}
		result.RunID = runID
		formatter.VerboseLog("Stored run %s in %s", runID, opts.Database)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputParseText(formatter.Writer, result, opts.Diagnostics)
}

// persistRun writes the parse to the database and returns the run ID.
func persistRun(ctx context.Context, opts *ParseOptions, trace *loadedTrace, popts parser.Options, res *parser.Result) (string, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return "", err
	}
	defer st.Close()

	run, err := store.NewRun(opts.idGenerator().Generate(), trace.Path, trace.Hash, popts, res)
	if err != nil {
		return "", err
	}
	stored, _, err := st.WriteRun(ctx, run, res.Tree, res.Diagnostics)
	if err != nil {
		return "", err
	}
	return stored.ID, nil
}

// outputParseText renders the tree, then diagnostics and the run ID when
// requested.
func outputParseText(w io.Writer, result ParseResult, withDiagnostics bool) error {
	if err := result.Tree.Render(w); err != nil {
		return err
	}

	if withDiagnostics && len(result.Diagnostics) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Diagnostics: %d\n", len(result.Diagnostics))
		for _, d := range result.Diagnostics {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}

	if result.RunID != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Run: %s\n", result.RunID)
	}
	return nil
}
