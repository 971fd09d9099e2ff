package calltree

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/calltree/internal/canonical"
)

// DomainTree is the hash domain for tree identity.
const DomainTree = "calltree/tree/v1"

// jsonNode is the nested wire form. The parent back-reference is omitted;
// it is implied by nesting and rebuilt on decode.
type jsonNode struct {
	Name  string     `json:"name"`
	Calls []jsonNode `json:"calls"`
}

func (t *Tree) toJSONNode(id NodeID) jsonNode {
	n := t.nodes[id]
	out := jsonNode{Name: n.name, Calls: make([]jsonNode, len(n.children))}
	for i, c := range n.children {
		out.Calls[i] = t.toJSONNode(c)
	}
	return out
}

// MarshalJSON encodes the tree as nested {"name", "calls"} objects.
func (t *Tree) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.toJSONNode(t.Root()))
}

// UnmarshalJSON rebuilds the arena and parent links from the nested form.
func (t *Tree) UnmarshalJSON(data []byte) error {
	var root jsonNode
	if err := json.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("decode tree: %w", err)
	}
	*t = *New(root.Name)
	t.addJSONChildren(t.Root(), root.Calls)
	return nil
}

func (t *Tree) addJSONChildren(parent NodeID, calls []jsonNode) {
	for _, c := range calls {
		id := t.AddChild(parent, c.Name)
		t.addJSONChildren(id, c.Calls)
	}
}

func (t *Tree) canonicalValue(id NodeID) map[string]any {
	n := t.nodes[id]
	calls := make([]any, len(n.children))
	for i, c := range n.children {
		calls[i] = t.canonicalValue(c)
	}
	return map[string]any{"name": n.name, "calls": calls}
}

// MarshalCanonical encodes the tree as RFC 8785 canonical JSON.
func (t *Tree) MarshalCanonical() ([]byte, error) {
	return canonical.Marshal(t.canonicalValue(t.Root()))
}

// Hash returns the tree's content identity. Structurally identical trees
// (same shape, names and child order) hash equally.
func (t *Tree) Hash() (string, error) {
	data, err := t.MarshalCanonical()
	if err != nil {
		return "", fmt.Errorf("hash tree: %w", err)
	}
	return canonical.HashWithDomain(DomainTree, data), nil
}

// Render writes one line per node in pre-order, indented two spaces per
// level.
func (t *Tree) Render(w io.Writer) error {
	var err error
	t.Walk(func(id NodeID, depth int) bool {
		if err != nil {
			return false
		}
		_, err = fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), t.nodes[id].name)
		return true
	})
	return err
}

// String returns the rendered tree.
func (t *Tree) String() string {
	var sb strings.Builder
	_ = t.Render(&sb)
	return sb.String()
}

// Stats summarizes a tree's shape.
type Stats struct {
	Nodes    int `json:"nodes"`
	Modules  int `json:"modules"`
	MaxDepth int `json:"max_depth"`
	Leaves   int `json:"leaves"`
}

// Stats computes shape statistics. Module nodes are counted with suffix.
func (t *Tree) Stats(moduleSuffix string) Stats {
	var s Stats
	t.Walk(func(id NodeID, depth int) bool {
		s.Nodes++
		if IsModule(t.nodes[id].name, moduleSuffix) {
			s.Modules++
		}
		if len(t.nodes[id].children) == 0 {
			s.Leaves++
		}
		if depth > s.MaxDepth {
			s.MaxDepth = depth
		}
		return true
	})
	return s
}
