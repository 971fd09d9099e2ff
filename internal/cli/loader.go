package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/calltree/internal/config"
	"github.com/roach88/calltree/internal/event"
	"github.com/roach88/calltree/internal/parser"
	"github.com/roach88/calltree/internal/store"
)

// newFormatter builds the formatter for a command. Verbose logs go to
// stderr to avoid corrupting JSON.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// newLogger returns a text logger on the command's stderr. Pipeline stages
// log at Debug and are only shown with --verbose; anomalies log at Warn.
func newLogger(opts *RootOptions, cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// parserOptions resolves parser settings from --config, or the defaults
// when no config file is given. The logger is always set.
func (o *RootOptions) parserOptions(cmd *cobra.Command) (parser.Options, error) {
	var cfg *config.Config
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return parser.Options{}, err
		}
		cfg = loaded
	}

	opts := cfg.Options()
	opts.Logger = newLogger(o, cmd)
	return opts, nil
}

// idGenerator returns the configured run ID generator.
func (o *RootOptions) idGenerator() store.IDGenerator {
	if o.IDGenerator != nil {
		return o.IDGenerator
	}
	return store.UUIDv7Generator{}
}

// loadedTrace is a trace file read from disk, with the hash of its raw
// events.
type loadedTrace struct {
	Path   string
	Events event.Trace
	Hash   string
}

// loadTrace reads and hashes a trace file. The hash is taken before any
// parse, since parsing rewrites events in place.
func loadTrace(path string) (*loadedTrace, error) {
	events, err := event.ReadFile(path)
	if err != nil {
		return nil, err
	}
	hash, err := events.Hash()
	if err != nil {
		return nil, err
	}
	return &loadedTrace{Path: path, Events: events, Hash: hash}, nil
}
