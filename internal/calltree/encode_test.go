package calltree

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{"name":"Entry","calls":[
	{"name":"a.js","calls":[
		{"name":"main","calls":[{"name":"helper","calls":[]}]},
		{"name":"b.js","calls":[]}
	]},
	{"name":"c.js","calls":[]}
]}`

func TestMarshalJSON_Nested(t *testing.T) {
	tree, _ := sample()

	data, err := json.Marshal(tree)
	require.NoError(t, err)
	assert.JSONEq(t, sampleJSON, string(data))
}

func TestMarshalJSON_LeafHasEmptyCalls(t *testing.T) {
	data, err := json.Marshal(New("Entry"))
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Entry","calls":[]}`, string(data))
}

func TestUnmarshalJSON_RebuildsParents(t *testing.T) {
	var tree Tree
	require.NoError(t, json.Unmarshal([]byte(sampleJSON), &tree))

	require.NoError(t, tree.Validate())
	assert.Equal(t, 6, tree.Len())

	helper, ok := tree.FindFirst(tree.Root(), "helper")
	require.True(t, ok)
	assert.Equal(t, []string{"Entry", "a.js", "main", "helper"}, tree.Path(helper))
}

func TestUnmarshalJSON_MissingCalls(t *testing.T) {
	var tree Tree
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Entry"}`), &tree))
	assert.Equal(t, 1, tree.Len())
}

func TestUnmarshalJSON_Invalid(t *testing.T) {
	var tree Tree
	err := json.Unmarshal([]byte(`{"name":1}`), &tree)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode tree")
}

func TestMarshalCanonical(t *testing.T) {
	tree := New("Entry")
	tree.AddChild(tree.Root(), "a.js")

	data, err := tree.MarshalCanonical()
	require.NoError(t, err)
	assert.Equal(t, `{"calls":[{"calls":[],"name":"a.js"}],"name":"Entry"}`, string(data))
}

func TestHash_StructuralIdentity(t *testing.T) {
	t1, _ := sample()
	t2, _ := sample()

	h1, err := t1.Hash()
	require.NoError(t, err)
	h2, err := t2.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	// Same nodes, different sibling order
	t3 := New("Entry")
	t3.AddChild(t3.Root(), "c.js")
	a := t3.AddChild(t3.Root(), "a.js")
	main := t3.AddChild(a, "main")
	t3.AddChild(main, "helper")
	t3.AddChild(a, "b.js")

	h3, err := t3.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestRender(t *testing.T) {
	tree, _ := sample()

	var buf bytes.Buffer
	require.NoError(t, tree.Render(&buf))

	want := "Entry\n" +
		"  a.js\n" +
		"    main\n" +
		"      helper\n" +
		"    b.js\n" +
		"  c.js\n"
	assert.Equal(t, want, buf.String())
	assert.Equal(t, want, tree.String())
}

func TestStats(t *testing.T) {
	tree, _ := sample()

	assert.Equal(t, Stats{Nodes: 6, Modules: 3, MaxDepth: 3, Leaves: 3}, tree.Stats(DefaultModuleSuffix))
	assert.Equal(t, Stats{Nodes: 1, Leaves: 1}, New("Entry").Stats(DefaultModuleSuffix))
}
