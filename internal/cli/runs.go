package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/calltree/internal/calltree"
	"github.com/roach88/calltree/internal/parser"
	"github.com/roach88/calltree/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database  string
	TraceHash string // optional - runs of one trace only
}

// ShowOptions holds flags for the show command.
type ShowOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// RunsResult is the runs command's output.
type RunsResult struct {
	Runs  []store.Run `json:"runs"`
	Total int         `json:"total"`
}

// ShowResult is the show command's output.
type ShowResult struct {
	Run         store.Run           `json:"run"`
	Tree        *calltree.Tree      `json:"tree"`
	Diagnostics []parser.Diagnostic `json:"diagnostics"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List stored parse runs",
		Long: `List the parse runs stored in a database, oldest first.

Examples:
  calltree runs --db runs.db
  calltree runs --db runs.db --trace-hash <hash> --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.TraceHash, "trace-hash", "", "only runs of the trace with this hash")

	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShowOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a stored call tree",
		Long: `Print the call tree and diagnostics of a stored parse run.

Exit codes:
  0 - Run printed
  2 - Command error (database error, unknown run)

Examples:
  calltree show --db runs.db --run 0190a3c2-...
  calltree show --db runs.db --run 0190a3c2-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID (required)")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	var runs []store.Run
	if opts.TraceHash != "" {
		runs, err = st.FindRunsByTraceHash(ctx, opts.TraceHash)
	} else {
		runs, err = st.ListRuns(ctx)
	}
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to list runs", err)
	}

	result := RunsResult{Runs: runs, Total: len(runs)}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputRunsText(formatter.Writer, result)
}

func outputRunsText(w io.Writer, result RunsResult) error {
	if result.Total == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	fmt.Fprintf(w, "Runs: %d\n\n", result.Total)
	for _, r := range result.Runs {
		fmt.Fprintf(w, "%d  %s\n", r.Seq, r.ID)
		fmt.Fprintf(w, "  Source: %s\n", r.Source)
		fmt.Fprintf(w, "  Root: %s, %d node(s) from %d event(s)\n", r.RootName, r.NodeCount, r.EventCount)
		fmt.Fprintf(w, "  Synthesized: %d, dropped: %d\n", r.Stats.Synthesized, r.Stats.Dropped)
	}
	return nil
}

func runShow(opts *ShowOptions, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, opts.RunID)
	if err != nil {
		if errors.Is(err, store.ErrRunNotFound) {
			return formatter.Fail(ExitCommandError, ErrCodeRunNotFound, fmt.Sprintf("run %s not found", opts.RunID), err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read run", err)
	}

	tree, err := st.ReadTree(ctx, run.ID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read tree", err)
	}

	diags, err := st.ReadDiagnostics(ctx, run.ID)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "failed to read diagnostics", err)
	}

	result := ShowResult{Run: run, Tree: tree, Diagnostics: diags}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	if err := tree.Render(w); err != nil {
		return err
	}
	if len(diags) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Diagnostics: %d\n", len(diags))
		for _, d := range diags {
			fmt.Fprintf(w, "  %s\n", d)
		}
	}
	return nil
}
