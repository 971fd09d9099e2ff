package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/calltree/internal/event"
	"github.com/roach88/calltree/internal/parser"
)

// NormalizeResult is the normalize command's output.
type NormalizeResult struct {
	Source string      `json:"source"`
	Events event.Trace `json:"events"`
}

// ImportsResult is the imports command's output.
type ImportsResult struct {
	Source  string                   `json:"source"`
	Root    string                   `json:"root"`
	Imports []parser.ImportDefinition `json:"imports"`
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "normalize <trace>",
		Short: "Print the normalized event stream",
		Long: `Print a trace after normalization: events indexed by position,
constructor labels renamed and top-level scope labels resolved to files.

Examples:
  calltree normalize trace.json
  calltree normalize trace.jsonl --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNormalize(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

// NewImportsCommand creates the imports command.
func NewImportsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "imports <trace>",
		Short: "Print the resolved import map",
		Long: `Print the imports that survive filtering, in trace order, with
temporary-directory prefixes stripped. These imports form the skeleton of
the call tree.

Exit codes:
  0 - Imports resolved
  1 - No import survived filtering
  2 - Command error

Examples:
  calltree imports trace.json
  calltree imports trace.json --config calltree.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImports(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

// loadNormalized reads a trace and normalizes it with the resolved options.
func loadNormalized(opts *RootOptions, tracePath string, cmd *cobra.Command, formatter *OutputFormatter) (event.Trace, parser.Options, error) {
	popts, err := opts.parserOptions(cmd)
	if err != nil {
		return nil, popts, formatter.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}

	trace, err := loadTrace(tracePath)
	if err != nil {
		return nil, popts, formatter.Fail(ExitCommandError, ErrCodeReadTrace, "failed to read trace", err)
	}

	events := trace.Events
	parser.Normalize(events, popts)
	return events, popts, nil
}

func runNormalize(opts *RootOptions, tracePath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	events, _, err := loadNormalized(opts, tracePath, cmd, formatter)
	if err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.Success(NormalizeResult{Source: tracePath, Events: events})
	}

	w := formatter.Writer
	for _, e := range events {
		fmt.Fprintf(w, "%5d  %s\n", e.Index, describeEvent(e))
	}
	return nil
}

func runImports(opts *RootOptions, tracePath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	events, popts, err := loadNormalized(opts, tracePath, cmd, formatter)
	if err != nil {
		return err
	}

	imports, err := parser.ResolveImports(events, popts)
	if err != nil {
		_ = formatter.Error(string(parser.CodeOf(err)), err.Error(), nil)
		return WrapExitError(ExitFailure, "no imports", err)
	}

	result := ImportsResult{
		Source:  tracePath,
		Root:    imports[0].SourcePath,
		Imports: imports,
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return outputImportsText(formatter.Writer, result)
}

func outputImportsText(w io.Writer, result ImportsResult) error {
	fmt.Fprintf(w, "Root: %s\n", result.Root)
	fmt.Fprintf(w, "Imports: %d\n", len(result.Imports))
	for _, imp := range result.Imports {
		fmt.Fprintf(w, "%5d  %s -> %s\n", imp.Index, imp.SourcePath, imp.ImportPath)
	}
	return nil
}

// describeEvent renders one event on a single line.
func describeEvent(e event.Event) string {
	switch p := e.Payload.(type) {
	case *event.Import:
		return fmt.Sprintf("%-14s %q -> %q", e.Kind(), p.SourcePath, p.ImportPath)
	case *event.ModuleStart:
		return fmt.Sprintf("%-14s %s", e.Kind(), p.File)
	case *event.FunctionStart:
		return fmt.Sprintf("%-14s %s (%s:%d)", e.Kind(), p.Name, p.File, p.Line)
	case *event.FunctionCall:
		return fmt.Sprintf("%-14s %s -> %s (%s:%d)", e.Kind(), p.From, p.To, p.CallingFile, p.CallingLine)
	case *event.FunctionReturn:
		return fmt.Sprintf("%-14s %s -> %s (%s:%d)", e.Kind(), p.From, p.To, p.CallingFile, p.CallingLine)
	default:
		return string(e.Kind())
	}
}
