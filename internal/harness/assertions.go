package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/calltree/internal/calltree"
	"github.com/roach88/calltree/internal/parser"
)

// AssertionError is returned when an assertion fails.
// It includes the rendered tree to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Tree     string // Rendered tree for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Tree != "" {
		fmt.Fprintf(&buf, "\nTree:\n")
		for _, line := range strings.Split(strings.TrimRight(e.Tree, "\n"), "\n") {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}

	return buf.String()
}

// findPath returns every node reached by following names from the root.
// Sibling names may repeat, so a path can match more than one node.
func findPath(tree *calltree.Tree, path []string) []calltree.NodeID {
	if len(path) == 0 || tree.Name(tree.Root()) != path[0] {
		return nil
	}

	frontier := []calltree.NodeID{tree.Root()}
	for _, name := range path[1:] {
		var next []calltree.NodeID
		for _, id := range frontier {
			for _, c := range tree.Children(id) {
				if tree.Name(c) == name {
					next = append(next, c)
				}
			}
		}
		if len(next) == 0 {
			return nil
		}
		frontier = next
	}
	return frontier
}

func formatPath(path []string) string {
	return strings.Join(path, " > ")
}

// assertPathExists checks that at least one node lies on the named path.
func assertPathExists(tree *calltree.Tree, assertion Assertion) error {
	if len(findPath(tree, assertion.Path)) > 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertPathExists,
		Expected: fmt.Sprintf("path %s", formatPath(assertion.Path)),
		Actual:   "not found in tree",
		Tree:     tree.String(),
	}
}

// assertPathAbsent checks that no node lies on the named path.
func assertPathAbsent(tree *calltree.Tree, assertion Assertion) error {
	if len(findPath(tree, assertion.Path)) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertPathAbsent,
		Expected: fmt.Sprintf("no path %s", formatPath(assertion.Path)),
		Actual:   "path found in tree",
		Tree:     tree.String(),
	}
}

// assertChildren checks the ordered child names of the node at the path.
// With duplicate paths any matching node satisfies the assertion.
func assertChildren(tree *calltree.Tree, assertion Assertion) error {
	nodes := findPath(tree, assertion.Path)
	if len(nodes) == 0 {
		return &AssertionError{
			Type:     AssertChildren,
			Expected: fmt.Sprintf("path %s", formatPath(assertion.Path)),
			Actual:   "not found in tree",
			Tree:     tree.String(),
		}
	}

	want := assertion.Children
	if want == nil {
		want = []string{}
	}

	var actual []string
	for _, id := range nodes {
		got := tree.ChildNames(id)
		if slices.Equal(got, want) {
			return nil
		}
		actual = append(actual, fmt.Sprintf("%v", got))
	}

	return &AssertionError{
		Type:     AssertChildren,
		Expected: fmt.Sprintf("%s has children %v", formatPath(assertion.Path), want),
		Actual:   strings.Join(actual, ", "),
		Tree:     tree.String(),
	}
}

// assertNodeCount checks the total number of nodes, root included.
func assertNodeCount(tree *calltree.Tree, assertion Assertion) error {
	if tree.Len() == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertNodeCount,
		Expected: fmt.Sprintf("%d nodes", assertion.Count),
		Actual:   fmt.Sprintf("%d nodes", tree.Len()),
		Tree:     tree.String(),
	}
}

// statValue looks up a parse stat by its JSON name.
func statValue(s parser.Stats, name string) (int, bool) {
	switch name {
	case "events":
		return s.Events, true
	case "calls":
		return s.Calls, true
	case "imports":
		return s.Imports, true
	case "flattened":
		return s.Flattened, true
	case "attached":
		return s.Attached, true
	case "synthesized":
		return s.Synthesized, true
	case "dropped":
		return s.Dropped, true
	case "nodes":
		return s.Nodes, true
	default:
		return 0, false
	}
}

// assertStat checks a single parse stat.
func assertStat(stats parser.Stats, assertion Assertion) error {
	got, ok := statValue(stats, assertion.Stat)
	if !ok {
		return &AssertionError{
			Type:     AssertStat,
			Expected: fmt.Sprintf("known stat, got %q", assertion.Stat),
			Actual:   "unknown stat",
		}
	}
	if got == assertion.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertStat,
		Expected: fmt.Sprintf("%s = %d", assertion.Stat, assertion.Count),
		Actual:   fmt.Sprintf("%s = %d", assertion.Stat, got),
	}
}

// EvaluateAssertions runs all assertions against a successful result.
// Returns a list of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	if len(assertions) == 0 {
		return nil
	}
	if result.Tree == nil {
		return []string{"assertions require a tree, parse failed"}
	}

	var errors []string
	for i, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertPathExists:
			err = assertPathExists(result.Tree, assertion)
		case AssertPathAbsent:
			err = assertPathAbsent(result.Tree, assertion)
		case AssertChildren:
			err = assertChildren(result.Tree, assertion)
		case AssertNodeCount:
			err = assertNodeCount(result.Tree, assertion)
		case AssertStat:
			err = assertStat(result.Stats, assertion)
		default:
			err = fmt.Errorf("unknown assertion type: %s", assertion.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion %d failed: %v", i, err))
		}
	}

	return errors
}
