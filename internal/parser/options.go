package parser

import (
	"fmt"
	"io"
	"log/slog"
)

// SynthesisPolicy decides what happens when a dangling call cannot be
// bridged by a synthesized caller frame.
type SynthesisPolicy string

const (
	// SynthesisDrop leaves the call out of the tree and records a
	// DROPPED_CALL diagnostic.
	SynthesisDrop SynthesisPolicy = "drop"

	// SynthesisFail aborts the parse with a *ParseError.
	SynthesisFail SynthesisPolicy = "fail"
)

// Options configures a parse. Start from DefaultOptions.
type Options struct {
	// TopLevelScope is the tracer's label for module top-level code.
	TopLevelScope string

	// Constructor is renamed to ConstructorAlias in call and return labels
	// so it cannot be confused with a user function of the same name.
	Constructor      string
	ConstructorAlias string

	// EntryName labels the importer of the entry file.
	EntryName string

	// ModuleSuffix marks module node names.
	ModuleSuffix string

	// TmpMarker identifies the synthetic temporary directory segment.
	TmpMarker string

	// PathSeparator splits import paths into segments.
	PathSeparator string

	// ExcludeMarkers drop an import when either path contains one of them
	// (dependency directories, built-in module namespaces).
	ExcludeMarkers []string

	// MonitorSuffix drops imports of the tracer's own module.
	MonitorSuffix string

	Synthesis SynthesisPolicy

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns the settings for traces produced by the stock
// JavaScript tracer.
func DefaultOptions() Options {
	return Options{
		TopLevelScope:    "TLS",
		Constructor:      "constructor",
		ConstructorAlias: "_constructor",
		EntryName:        "Entry",
		ModuleSuffix:     ".js",
		TmpMarker:        "tmp-",
		PathSeparator:    "/",
		ExcludeMarkers:   []string{"node_modules", "node:"},
		MonitorSuffix:    "monitor/monitor.js",
		Synthesis:        SynthesisDrop,
	}
}

// Validate reports the first invalid setting.
func (o Options) Validate() error {
	required := []struct {
		name, value string
	}{
		{"top-level scope", o.TopLevelScope},
		{"constructor alias", o.ConstructorAlias},
		{"entry name", o.EntryName},
		{"module suffix", o.ModuleSuffix},
		{"tmp marker", o.TmpMarker},
		{"path separator", o.PathSeparator},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("%s must not be empty", r.name)
		}
	}
	for i, m := range o.ExcludeMarkers {
		if m == "" {
			return fmt.Errorf("exclude marker %d must not be empty", i)
		}
	}
	switch o.Synthesis {
	case SynthesisDrop, SynthesisFail:
	default:
		return fmt.Errorf("invalid synthesis policy %q: must be %q or %q", o.Synthesis, SynthesisDrop, SynthesisFail)
	}
	return nil
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
