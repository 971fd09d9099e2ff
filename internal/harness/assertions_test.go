package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calltree/internal/calltree"
	"github.com/roach88/calltree/internal/parser"
)

// sampleTree builds:
//
//	Entry
//	  a.js
//	    main
//	      helper
//	    main
//	      other
//	  b.js
func sampleTree() *calltree.Tree {
	tree := calltree.New("Entry")
	a := tree.AddChild(tree.Root(), "a.js")
	m1 := tree.AddChild(a, "main")
	tree.AddChild(m1, "helper")
	m2 := tree.AddChild(a, "main")
	tree.AddChild(m2, "other")
	tree.AddChild(tree.Root(), "b.js")
	return tree
}

// =============================================================================
// Paths
// =============================================================================

func TestFindPath(t *testing.T) {
	tree := sampleTree()

	tests := []struct {
		name  string
		path  []string
		count int
	}{
		{"root", []string{"Entry"}, 1},
		{"module", []string{"Entry", "a.js"}, 1},
		{"duplicate names", []string{"Entry", "a.js", "main"}, 2},
		{"through duplicates", []string{"Entry", "a.js", "main", "other"}, 1},
		{"wrong root", []string{"Program", "a.js"}, 0},
		{"missing child", []string{"Entry", "c.js"}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, findPath(tree, tt.path), tt.count)
		})
	}
}

func TestAssertPathExists(t *testing.T) {
	tree := sampleTree()

	require.NoError(t, assertPathExists(tree, Assertion{Path: []string{"Entry", "a.js", "main", "helper"}}))

	err := assertPathExists(tree, Assertion{Path: []string{"Entry", "b.js", "main"}})
	require.Error(t, err)

	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertPathExists, ae.Type)
	assert.Equal(t, "path Entry > b.js > main", ae.Expected)
	assert.Equal(t, "not found in tree", ae.Actual)
}

func TestAssertPathAbsent(t *testing.T) {
	tree := sampleTree()

	require.NoError(t, assertPathAbsent(tree, Assertion{Path: []string{"Entry", "b.js", "main"}}))
	require.Error(t, assertPathAbsent(tree, Assertion{Path: []string{"Entry", "a.js"}}))
}

// =============================================================================
// Children
// =============================================================================

func TestAssertChildren_Ordered(t *testing.T) {
	tree := sampleTree()

	require.NoError(t, assertChildren(tree, Assertion{Path: []string{"Entry"}, Children: []string{"a.js", "b.js"}}))

	err := assertChildren(tree, Assertion{Path: []string{"Entry"}, Children: []string{"b.js", "a.js"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[a.js b.js]")
}

func TestAssertChildren_AnyDuplicateMatches(t *testing.T) {
	tree := sampleTree()

	require.NoError(t, assertChildren(tree, Assertion{Path: []string{"Entry", "a.js", "main"}, Children: []string{"other"}}))
	require.NoError(t, assertChildren(tree, Assertion{Path: []string{"Entry", "a.js", "main"}, Children: []string{"helper"}}))
}

func TestAssertChildren_Leaf(t *testing.T) {
	tree := sampleTree()

	require.NoError(t, assertChildren(tree, Assertion{Path: []string{"Entry", "b.js"}}))
	require.Error(t, assertChildren(tree, Assertion{Path: []string{"Entry", "a.js"}}))
}

func TestAssertChildren_MissingPath(t *testing.T) {
	err := assertChildren(sampleTree(), Assertion{Path: []string{"Entry", "c.js"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in tree")
}

// =============================================================================
// Counts
// =============================================================================

func TestAssertNodeCount(t *testing.T) {
	tree := sampleTree()

	require.NoError(t, assertNodeCount(tree, Assertion{Count: 7}))

	err := assertNodeCount(tree, Assertion{Count: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: 3 nodes")
	assert.Contains(t, err.Error(), "Actual: 7 nodes")
}

func TestStatValue(t *testing.T) {
	stats := parser.Stats{
		Events: 1, Calls: 2, Imports: 3, Flattened: 4,
		Attached: 5, Synthesized: 6, Dropped: 7, Nodes: 8,
	}

	names := []string{"events", "calls", "imports", "flattened", "attached", "synthesized", "dropped", "nodes"}
	for i, name := range names {
		got, ok := statValue(stats, name)
		require.True(t, ok, name)
		assert.Equal(t, i+1, got, name)
	}

	_, ok := statValue(stats, "Events")
	assert.False(t, ok)
}

func TestAssertStat(t *testing.T) {
	stats := parser.Stats{Dropped: 2}

	require.NoError(t, assertStat(stats, Assertion{Stat: "dropped", Count: 2}))

	err := assertStat(stats, Assertion{Stat: "dropped", Count: 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dropped = 0")
	assert.Contains(t, err.Error(), "dropped = 2")

	require.Error(t, assertStat(stats, Assertion{Stat: "bogus"}))
}

// =============================================================================
// Evaluation
// =============================================================================

func TestEvaluateAssertions_AllPass(t *testing.T) {
	result := &Result{Tree: sampleTree(), Stats: parser.Stats{Attached: 3}}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertPathExists, Path: []string{"Entry", "b.js"}},
		{Type: AssertPathAbsent, Path: []string{"Entry", "b.js", "x"}},
		{Type: AssertChildren, Path: []string{"Entry"}, Children: []string{"a.js", "b.js"}},
		{Type: AssertNodeCount, Count: 7},
		{Type: AssertStat, Stat: "attached", Count: 3},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_SomeFail(t *testing.T) {
	result := &Result{Tree: sampleTree()}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertPathExists, Path: []string{"Entry", "b.js"}},
		{Type: AssertNodeCount, Count: 1},
	})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "assertion 1 failed")
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	result := &Result{Tree: sampleTree()}

	errs := EvaluateAssertions(result, []Assertion{{Type: "trace_order"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "unknown assertion type: trace_order")
}

func TestEvaluateAssertions_NoTree(t *testing.T) {
	errs := EvaluateAssertions(&Result{}, []Assertion{{Type: AssertNodeCount, Count: 1}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "parse failed")

	assert.Empty(t, EvaluateAssertions(&Result{}, nil))
}

func TestAssertionError_ErrorFormat(t *testing.T) {
	err := &AssertionError{
		Type:     AssertPathExists,
		Expected: "path Entry > x.js",
		Actual:   "not found in tree",
		Tree:     "Entry\n  a.js\n",
	}

	assert.Equal(t, "Assertion failed: path_exists\n"+
		"  Expected: path Entry > x.js\n"+
		"  Actual: not found in tree\n"+
		"\nTree:\n"+
		"  Entry\n"+
		"    a.js\n", err.Error())
}
