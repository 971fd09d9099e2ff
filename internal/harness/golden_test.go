package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calltree/internal/calltree"
	"github.com/roach88/calltree/internal/canonical"
	"github.com/roach88/calltree/internal/parser"
)

// TestRunWithGolden_Scenarios compares every scenario in testdata/scenarios
// against testdata/golden/{name}.golden.
//
// To regenerate after an intended change:
//
//	go test ./internal/harness -run TestRunWithGolden_Scenarios -update
func TestRunWithGolden_Scenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestAssertGolden_FromResult(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/dropped_call.yaml")
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)

	// Same golden file as the scenario run, compared without re-running
	require.NoError(t, AssertGolden(t, "dropped_call", result))
}

func TestSnapshot_CanonicalMap(t *testing.T) {
	tree := calltree.New("Entry")
	tree.AddChild(tree.Root(), "a.js")

	result := NewResult()
	result.Tree = tree
	result.Diagnostics = []parser.Diagnostic{
		{Code: parser.DiagAnchorNotFound, Message: "wording is not part of the snapshot", EventIndex: -1},
	}

	snapshot := Snapshot{ScenarioName: "s", Result: result}
	data, err := canonical.Marshal(snapshot.toCanonicalMap())
	require.NoError(t, err)

	assert.Equal(t,
		`{"diagnostics":[{"code":"ANCHOR_NOT_FOUND","event_index":-1}],"scenario_name":"s","tree":{"calls":[{"calls":[],"name":"a.js"}],"name":"Entry"}}`,
		string(data))
}

func TestSnapshot_ErrorHasNoTree(t *testing.T) {
	result := NewResult()
	result.ErrorCode = parser.ErrCodeNoImports

	snapshot := Snapshot{ScenarioName: "s", Result: result}
	data, err := canonical.Marshal(snapshot.toCanonicalMap())
	require.NoError(t, err)

	assert.Equal(t, `{"diagnostics":[],"error":"NO_IMPORTS","scenario_name":"s"}`, string(data))
}

func TestSnapshot_MatchesTreeCanonicalForm(t *testing.T) {
	tree := calltree.New("Entry")
	a := tree.AddChild(tree.Root(), "a.js")
	tree.AddChild(a, "main")

	want, err := tree.MarshalCanonical()
	require.NoError(t, err)
	got, err := canonical.Marshal(treeValue(tree, tree.Root()))
	require.NoError(t, err)

	assert.Equal(t, string(want), string(got))
}

func TestCanonicalJSONDeterminism(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/sibling_imports.yaml")
	require.NoError(t, err)

	var outputs []string
	for i := 0; i < 3; i++ {
		result, err := Run(scenario)
		require.NoError(t, err)
		snapshot := Snapshot{ScenarioName: scenario.Name, Result: result}
		data, err := canonical.Marshal(snapshot.toCanonicalMap())
		require.NoError(t, err)
		outputs = append(outputs, string(data))
	}

	assert.Equal(t, outputs[0], outputs[1])
	assert.Equal(t, outputs[1], outputs[2])
}
