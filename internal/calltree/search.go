package calltree

// FindFirst searches the subtree at start in pre-order and returns the
// first node named name.
func (t *Tree) FindFirst(start NodeID, name string) (NodeID, bool) {
	if t.nodes[start].name == name {
		return start, true
	}
	for _, c := range t.nodes[start].children {
		if found, ok := t.FindFirst(c, name); ok {
			return found, true
		}
	}
	return NoNode, false
}

// WalkUp is the ancestor walk. Starting at start it checks each node on
// the path to the root. At module nodes (names ending in moduleSuffix) the
// direct children are probed as well, which finds sibling imports of the
// current file. Deeper subtrees are never searched.
func (t *Tree) WalkUp(start NodeID, name, moduleSuffix string) (NodeID, bool) {
	cur := start
	for t.nodes[cur].name != name {
		if IsModule(t.nodes[cur].name, moduleSuffix) {
			for _, c := range t.nodes[cur].children {
				if t.nodes[c].name == name {
					return c, true
				}
			}
		}

		parent := t.nodes[cur].parent
		if parent == NoNode {
			return NoNode, false
		}
		cur = parent
	}
	return cur, true
}
