// Package calltree holds the reconstructed call tree.
//
// The tree is arena-backed: a Tree owns every node and nodes are addressed
// by NodeID. The parent relation is a non-owning NodeID, so the structure
// has no ownership cycles and serializes without special-casing.
//
// Module nodes and function nodes share one namespace. A name ending in
// the module suffix (".js" by default) denotes a module. Names are not
// unique; a node is identified by its position.
//
// INVARIANTS:
//   - exactly one root, whose parent is NoNode
//   - every other node appears exactly once in its parent's children
//   - nodes are only ever added, never removed or re-parented
package calltree

import (
	"fmt"
	"slices"
	"strings"
)

// NodeID addresses a node within its Tree.
type NodeID int

// NoNode is the parent of the root and the result of a failed search.
const NoNode NodeID = -1

// DefaultModuleSuffix marks module names.
const DefaultModuleSuffix = ".js"

type node struct {
	name     string
	parent   NodeID
	children []NodeID
}

// Tree is a call tree rooted at the program entry.
type Tree struct {
	nodes []node
}

// New creates a tree containing only a root named rootName.
func New(rootName string) *Tree {
	return &Tree{nodes: []node{{name: rootName, parent: NoNode}}}
}

// Root returns the root's ID.
func (t *Tree) Root() NodeID { return 0 }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Valid reports whether id addresses a node of t.
func (t *Tree) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(t.nodes)
}

// Name returns the node's name. It panics if id is not Valid.
func (t *Tree) Name(id NodeID) string { return t.nodes[id].name }

// Parent returns the enclosing node. ok is false for the root.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	p := t.nodes[id].parent
	return p, p != NoNode
}

// Children returns a copy of the node's children in insertion order.
func (t *Tree) Children(id NodeID) []NodeID {
	return slices.Clone(t.nodes[id].children)
}

// ChildNames returns the names of the node's children in order.
func (t *Tree) ChildNames(id NodeID) []string {
	kids := t.nodes[id].children
	names := make([]string, len(kids))
	for i, c := range kids {
		names[i] = t.nodes[c].name
	}
	return names
}

// AddChild appends a new node named name under parent and returns its ID.
func (t *Tree) AddChild(parent NodeID, name string) NodeID {
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, node{name: name, parent: parent})
	t.nodes[parent].children = append(t.nodes[parent].children, id)
	return id
}

// Depth returns the number of edges between id and the root.
func (t *Tree) Depth(id NodeID) int {
	d := 0
	for p, ok := t.Parent(id); ok; p, ok = t.Parent(p) {
		d++
	}
	return d
}

// Path returns the names from the root down to id.
func (t *Tree) Path(id NodeID) []string {
	var path []string
	for cur := id; cur != NoNode; cur = t.nodes[cur].parent {
		path = append(path, t.nodes[cur].name)
	}
	slices.Reverse(path)
	return path
}

// Walk visits every node in pre-order. Returning false from fn skips the
// node's subtree.
func (t *Tree) Walk(fn func(id NodeID, depth int) bool) {
	t.walk(t.Root(), 0, fn)
}

func (t *Tree) walk(id NodeID, depth int, fn func(NodeID, int) bool) {
	if !fn(id, depth) {
		return
	}
	for _, c := range t.nodes[id].children {
		t.walk(c, depth+1, fn)
	}
}

// IsModule reports whether name denotes a module under the given suffix.
func IsModule(name, suffix string) bool {
	return suffix != "" && strings.HasSuffix(name, suffix)
}

// Validate checks the structural invariants. Used by tests and after
// loading a tree from storage.
func (t *Tree) Validate() error {
	if len(t.nodes) == 0 {
		return fmt.Errorf("tree has no root")
	}
	if t.nodes[0].parent != NoNode {
		return fmt.Errorf("root has parent %d", t.nodes[0].parent)
	}

	seen := make([]int, len(t.nodes))
	for id, n := range t.nodes {
		for _, c := range n.children {
			if !t.Valid(c) {
				return fmt.Errorf("node %d: child %d out of range", id, c)
			}
			if t.nodes[c].parent != NodeID(id) {
				return fmt.Errorf("node %d: child %d has parent %d", id, c, t.nodes[c].parent)
			}
			seen[c]++
		}
	}
	for id := 1; id < len(t.nodes); id++ {
		if seen[id] != 1 {
			return fmt.Errorf("node %d appears %d times among its parent's children", id, seen[id])
		}
		if t.nodes[id].parent == NoNode {
			return fmt.Errorf("node %d: second root", id)
		}
	}

	// Children are always created after their parent, so parent < child
	// holds for every edge and rules out cycles.
	for id := 1; id < len(t.nodes); id++ {
		if t.nodes[id].parent >= NodeID(id) {
			return fmt.Errorf("node %d: parent %d created after child", id, t.nodes[id].parent)
		}
	}
	return nil
}

// Row is the flat form of one node, as written to storage.
type Row struct {
	ID     NodeID
	Parent NodeID
	Name   string
}

// Rows returns every node in ID order.
func (t *Tree) Rows() []Row {
	rows := make([]Row, len(t.nodes))
	for i, n := range t.nodes {
		rows[i] = Row{ID: NodeID(i), Parent: n.parent, Name: n.name}
	}
	return rows
}

// FromRows rebuilds a tree from rows in ID order. Siblings are ordered by
// ID, which matches creation order, so Rows and FromRows round-trip.
func FromRows(rows []Row) (*Tree, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("rebuild tree: no rows")
	}
	if rows[0].ID != 0 || rows[0].Parent != NoNode {
		return nil, fmt.Errorf("rebuild tree: first row is not a root")
	}

	t := New(rows[0].Name)
	for i, r := range rows[1:] {
		want := NodeID(i + 1)
		if r.ID != want {
			return nil, fmt.Errorf("rebuild tree: row %d has id %d", want, r.ID)
		}
		if r.Parent < 0 || r.Parent >= want {
			return nil, fmt.Errorf("rebuild tree: node %d has invalid parent %d", r.ID, r.Parent)
		}
		t.AddChild(r.Parent, r.Name)
	}
	return t, nil
}
