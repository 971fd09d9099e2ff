package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/calltree/internal/parser"
	"github.com/roach88/calltree/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <trace>",
		Short: "Re-parse a trace and verify it against a stored run",
		Long: `Re-parse a trace and compare the result with a stored run.

The run's synthesis policy is reused; other settings come from --config.
Parsing is deterministic, so the same trace and settings must rebuild a
tree with the same hash.

Exit codes:
  0 - Replayed tree is identical to the stored one
  1 - Trees differ, the trace is not the recorded one, or the parse failed
  2 - Command error (database not found, unknown run, etc.)

Examples:
  calltree replay trace.json --db runs.db --run 0190a3c2-...
  calltree replay trace.json --db runs.db --run 0190a3c2-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "run ID to verify against (required)")
	_ = cmd.MarkFlagRequired("run")

	return cmd
}

func runReplay(opts *ReplayOptions, tracePath string, cmd *cobra.Command) error {
	ctx := context.Background()
	formatter := newFormatter(opts.RootOptions, cmd)

	popts, err := opts.parserOptions(cmd)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

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
	popts.Synthesis = run.Synthesis

	trace, err := loadTrace(tracePath)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeReadTrace, "failed to read trace", err)
	}

	result, err := st.Replay(ctx, run.ID, trace.Events, popts)
	if err != nil {
		if code := parser.CodeOf(err); code != "" {
			_ = formatter.Error(string(code), err.Error(), nil)
			return WrapExitError(ExitFailure, "replay parse failed", err)
		}
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, "replay failed", err)
	}

	if formatter.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result)
}

// replayVerified reports whether the replay reproduced the stored run from
// the recorded trace.
func replayVerified(result store.ReplayResult) bool {
	return result.TraceMatches && result.Identical
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result store.ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !replayVerified(result) {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeMismatch,
			Message: replayFailure(result),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !replayVerified(result) {
		return NewExitError(ExitFailure, replayFailure(result))
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result store.ReplayResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Replay of run %s\n", result.RunID)
	fmt.Fprintln(w)

	traceStatus := "✓"
	if !result.TraceMatches {
		traceStatus = "✗"
	}
	fmt.Fprintf(w, "%s Trace matches recording\n", traceStatus)

	treeStatus := "✓"
	if !result.Identical {
		treeStatus = "✗"
	}
	fmt.Fprintf(w, "%s Tree identical\n", treeStatus)
	fmt.Fprintf(w, "  Stored:   %s\n", result.StoredTreeHash)
	fmt.Fprintf(w, "  Replayed: %s\n", result.ReplayedTreeHash)
	fmt.Fprintf(w, "  Diagnostics: %d stored, %d replayed\n", result.StoredDiagnostics, result.ReplayedDiagnostics)
	fmt.Fprintln(w)

	if replayVerified(result) {
		fmt.Fprintln(w, "✓ Replay verified")
		return nil
	}

	fmt.Fprintf(w, "✗ %s\n", replayFailure(result))
	return NewExitError(ExitFailure, replayFailure(result))
}

func replayFailure(result store.ReplayResult) string {
	if !result.TraceMatches {
		return "trace differs from the recorded trace"
	}
	return "replayed tree differs from the stored tree"
}
