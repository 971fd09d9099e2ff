package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/calltree/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string // optional parser config (.yaml, .yml or .cue)

	// IDGenerator names stored runs. Nil means UUIDv7.
	IDGenerator store.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the calltree CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calltree",
		Short: "Rebuild call trees from JavaScript runtime traces",
		Long: `calltree reconstructs the dynamic call tree of a JavaScript program
from the event log emitted by an instrumenting tracer.

Module imports form the skeleton of the tree; observed function calls are
threaded onto it in trace order. Calls whose caller was never observed
get a synthesized caller frame.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "parser config file (.yaml|.yml|.cue)")

	// Add subcommands
	cmd.AddCommand(NewParseCommand(opts))
	cmd.AddCommand(NewNormalizeCommand(opts))
	cmd.AddCommand(NewImportsCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
