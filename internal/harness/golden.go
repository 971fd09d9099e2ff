package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/calltree/internal/calltree"
	"github.com/roach88/calltree/internal/canonical"
)

// Snapshot captures the observable outcome of a scenario.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Result       *Result
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization. Diagnostic messages are left out so wording changes do
// not churn golden files.
func (s *Snapshot) toCanonicalMap() map[string]any {
	diags := make([]any, len(s.Result.Diagnostics))
	for i, d := range s.Result.Diagnostics {
		diags[i] = map[string]any{
			"code":        string(d.Code),
			"event_index": d.EventIndex,
		}
	}

	out := map[string]any{
		"scenario_name": s.ScenarioName,
		"diagnostics":   diags,
	}
	if s.Result.ErrorCode != "" {
		out["error"] = string(s.Result.ErrorCode)
	}
	if s.Result.Tree != nil {
		out["tree"] = treeValue(s.Result.Tree, s.Result.Tree.Root())
	}
	return out
}

// treeValue mirrors the tree's nested {"name", "calls"} form.
func treeValue(tree *calltree.Tree, id calltree.NodeID) map[string]any {
	children := tree.Children(id)
	calls := make([]any, len(children))
	for i, c := range children {
		calls[i] = treeValue(tree, c)
	}
	return map[string]any{"name": tree.Name(id), "calls": calls}
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the snapshot doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := Snapshot{ScenarioName: scenarioName, Result: result}
	data, err := canonical.Marshal(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
