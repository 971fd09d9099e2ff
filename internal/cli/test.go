package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/calltree/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run conformance scenarios using the harness framework.

Each scenario file pairs a trace with the call tree, diagnostics or fatal
error it must produce. Trace files referenced by a scenario are resolved
relative to the scenario file.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  calltree test ./scenarios
  calltree test ./scenarios --filter "callback_*"
  calltree test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	// Validate directory
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	// Find scenario files
	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{
				Scenarios: []ScenarioResult{},
				Total:     0,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	// Run scenarios
	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(scenarioFile, opts, cmd)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	// Output results
	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}

	return outputTestText(cmd, result)
}

// findScenarioFiles finds all YAML scenario files in a directory tree.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		// Apply filter if specified
		if filter != "" {
			name := strings.TrimSuffix(filepath.Base(path), ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// runScenario executes a single scenario and returns the result.
func runScenario(scenarioFile string, opts *TestOptions, cmd *cobra.Command) ScenarioResult {
	w := cmd.OutOrStdout()
	text := opts.Format != "json"

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		if text {
			fmt.Fprintf(w, "✗ %s\n", filepath.Base(scenarioFile))
			fmt.Fprintf(w, "  Load error: %v\n", err)
		}
		return ScenarioResult{
			Name:   filepath.Base(scenarioFile),
			Pass:   false,
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", err)},
		}
	}

	result, err := harness.Run(scenario)
	if err != nil {
		if text {
			fmt.Fprintf(w, "✗ %s\n", scenario.Name)
			fmt.Fprintf(w, "  Execution error: %v\n", err)
		}
		return ScenarioResult{
			Name:   scenario.Name,
			Pass:   false,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	if result.Pass {
		if text {
			fmt.Fprintf(w, "✓ %s\n", scenario.Name)
		}
		return ScenarioResult{
			Name: scenario.Name,
			Pass: true,
		}
	}

	if text {
		fmt.Fprintf(w, "✗ %s\n", scenario.Name)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	return ScenarioResult{
		Name:   scenario.Name,
		Pass:   false,
		Errors: result.Errors,
	}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}

	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    ErrCodeTestFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
