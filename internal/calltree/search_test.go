package calltree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindFirst(t *testing.T) {
	tree, ids := sample()

	got, ok := tree.FindFirst(tree.Root(), "helper")
	assert.True(t, ok)
	assert.Equal(t, ids["helper"], got)

	got, ok = tree.FindFirst(ids["a.js"], "Entry")
	assert.False(t, ok)
	assert.Equal(t, NoNode, got)
}

func TestFindFirst_PreOrderWins(t *testing.T) {
	tree := New("Entry")
	a := tree.AddChild(tree.Root(), "a.js")
	deep := tree.AddChild(a, "f")
	tree.AddChild(tree.Root(), "f")

	got, ok := tree.FindFirst(tree.Root(), "f")
	assert.True(t, ok)
	assert.Equal(t, deep, got)
}

func TestWalkUp(t *testing.T) {
	tree, ids := sample()

	tests := []struct {
		name  string
		start string
		find  string
		want  NodeID
		found bool
	}{
		{"self", "helper", "helper", ids["helper"], true},
		{"parent", "helper", "main", ids["main"], true},
		{"root", "helper", "Entry", ids["Entry"], true},
		{"sibling module via module parent", "helper", "b.js", ids["b.js"], true},
		{"root is not probed", "helper", "c.js", NoNode, false},
		{"not found", "helper", "ghost", NoNode, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tree.WalkUp(ids[tt.start], tt.find, DefaultModuleSuffix)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWalkUp_DoesNotProbeFunctionChildren(t *testing.T) {
	tree, ids := sample()

	// helper is a child of main, which is a function, so starting at b.js
	// the walk never looks inside main
	_, ok := tree.WalkUp(ids["b.js"], "helper", DefaultModuleSuffix)
	assert.False(t, ok)
}

func TestWalkUp_DoesNotSearchDeeperSubtrees(t *testing.T) {
	tree := New("Entry")
	a := tree.AddChild(tree.Root(), "a.js")
	b := tree.AddChild(a, "b.js")
	tree.AddChild(b, "deep")
	c := tree.AddChild(a, "c.js")

	_, ok := tree.WalkUp(c, "deep", DefaultModuleSuffix)
	assert.False(t, ok)
}

func TestWalkUp_SuffixControlsProbe(t *testing.T) {
	tree := New("Entry")
	a := tree.AddChild(tree.Root(), "a.mjs")
	sib := tree.AddChild(a, "b.mjs")
	cur := tree.AddChild(a, "f")

	_, ok := tree.WalkUp(cur, "b.mjs", DefaultModuleSuffix)
	assert.False(t, ok)

	got, ok := tree.WalkUp(cur, "b.mjs", ".mjs")
	assert.True(t, ok)
	assert.Equal(t, sib, got)
}
