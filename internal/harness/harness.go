package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/calltree/internal/event"
	"github.com/roach88/calltree/internal/parser"
	"github.com/roach88/calltree/internal/store"
	"github.com/roach88/calltree/internal/testutil"
)

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. A
// successful parse is written to the store and read back, so the result
// also covers persistence of the tree.
//
// Execution flow:
// 1. Load the trace and resolve the parser options
// 2. Parse a copy of the trace
// 3. Persist the run and compare the stored tree with the parsed one
// 4. Check expectations and evaluate assertions
//
// An error is returned only when the scenario itself cannot be executed.
// Expectation mismatches are reported through Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	trace, err := scenario.LoadTrace()
	if err != nil {
		return nil, fmt.Errorf("failed to load trace: %w", err)
	}

	opts := scenario.Options.Options()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	result := NewResult()

	res, parseErr := parser.Parse(trace.Clone(), opts)
	if parseErr != nil {
		result.ErrorCode = parser.CodeOf(parseErr)
		if result.ErrorCode == "" {
			return nil, fmt.Errorf("failed to parse trace: %w", parseErr)
		}
		checkError(scenario.Expect, result)
		return result, nil
	}

	result.Tree = res.Tree
	result.Diagnostics = append(result.Diagnostics, res.Diagnostics...)
	result.Stats = res.Stats

	if err := persist(scenario.Name, trace, opts, res, result); err != nil {
		return nil, err
	}

	checkError(scenario.Expect, result)
	checkExpect(scenario.Expect, result)

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// persist writes the parse to a fresh in-memory store and records an error
// when the tree or diagnostics read back differ from the parsed ones.
func persist(source string, trace event.Trace, opts parser.Options, res *parser.Result, result *Result) error {
	st, err := store.Open(":memory:")
	if err != nil {
		return fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()

	traceHash, err := trace.Hash()
	if err != nil {
		return fmt.Errorf("failed to hash trace: %w", err)
	}

	ids := testutil.NewFixedIDGenerator("scenario-run")
	run, err := store.NewRun(ids.Generate(), source, traceHash, opts, res)
	if err != nil {
		return fmt.Errorf("failed to build run: %w", err)
	}

	if _, _, err := st.WriteRun(ctx, run, res.Tree, res.Diagnostics); err != nil {
		return fmt.Errorf("failed to write run: %w", err)
	}

	stored, err := st.ReadTree(ctx, run.ID)
	if err != nil {
		result.AddError(fmt.Sprintf("stored tree unreadable: %v", err))
		return nil
	}
	if got, want := stored.String(), res.Tree.String(); got != want {
		result.AddError(fmt.Sprintf("stored tree differs from parsed tree:\n%s\nvs\n%s", got, want))
	}

	diags, err := st.ReadDiagnostics(ctx, run.ID)
	if err != nil {
		result.AddError(fmt.Sprintf("stored diagnostics unreadable: %v", err))
		return nil
	}
	if !slices.Equal(diags, res.Diagnostics) {
		result.AddError(fmt.Sprintf("stored diagnostics differ: got %v, want %v", diags, res.Diagnostics))
	}

	return nil
}

// checkError compares the parse outcome with expect.error.
func checkError(expect Expect, result *Result) {
	switch {
	case expect.Error == "" && result.ErrorCode != "":
		result.AddError(fmt.Sprintf("unexpected parse error %s", result.ErrorCode))
	case expect.Error != "" && result.ErrorCode == "":
		result.AddError(fmt.Sprintf("expected parse error %s, parse succeeded", expect.Error))
	case expect.Error != string(result.ErrorCode):
		result.AddError(fmt.Sprintf("expected parse error %s, got %s", expect.Error, result.ErrorCode))
	}
}

// checkExpect compares root, rendering and diagnostic codes of a
// successful parse.
func checkExpect(expect Expect, result *Result) {
	if expect.Root != "" {
		if got := result.Tree.Name(result.Tree.Root()); got != expect.Root {
			result.AddError(fmt.Sprintf("expected root %q, got %q", expect.Root, got))
		}
	}

	if expect.Tree != "" {
		want := strings.TrimRight(expect.Tree, "\n")
		got := strings.TrimRight(result.Tree.String(), "\n")
		if got != want {
			result.AddError(fmt.Sprintf("tree mismatch\nexpected:\n%s\nactual:\n%s", want, got))
		}
	}

	if expect.Diagnostics != nil {
		if got := result.DiagnosticCodes(); !slices.Equal(got, expect.Diagnostics) {
			result.AddError(fmt.Sprintf("expected diagnostics %v, got %v", expect.Diagnostics, got))
		}
	}
}
