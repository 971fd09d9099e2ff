package parser

import (
	"github.com/roach88/calltree/internal/calltree"
	"github.com/roach88/calltree/internal/event"
)

// buildSkeleton nests the import map into the module tree.
//
// The cursor starts at the root. Each import's importer is searched for by
// walking up from the cursor; the imported module becomes a child of the
// importer and the new cursor. The first importer that cannot be found
// ends the skeleton: what follows is not statically derivable.
func (s *state) buildSkeleton(imports []ImportDefinition) {
	s.tree = calltree.New(imports[0].SourcePath)
	cursor := s.tree.Root()

	for i, imp := range imports {
		importer, ok := s.tree.WalkUp(cursor, imp.SourcePath, s.opts.ModuleSuffix)
		if !ok {
			s.diagnose(DiagImportChainBroken, imp.Index,
				"importer %q is not on the current import path, %d of %d imports skipped",
				imp.SourcePath, len(imports)-i, len(imports))
			return
		}
		cursor = s.tree.AddChild(importer, imp.ImportPath)
	}

	s.log.Debug("skeleton built", "root", s.tree.Name(s.tree.Root()), "nodes", s.tree.Len())
}

// findAnchor returns the skeleton node that made the first observed call.
// Calls are tried in trace order until one's origin is found anywhere in
// the tree. ok is false when none matches.
func (s *state) findAnchor() (calltree.NodeID, bool) {
	tried := 0
	for _, e := range s.trace {
		call, ok := e.Payload.(*event.FunctionCall)
		if !ok {
			continue
		}
		tried++
		if id, ok := s.tree.FindFirst(s.tree.Root(), call.From); ok {
			s.log.Debug("anchor found", "name", call.From, "event", e.Index)
			return id, true
		}
	}

	s.diagnose(DiagAnchorNotFound, -1,
		"none of %d function calls originates from a node of the import tree, calls not populated", tried)
	return calltree.NoNode, false
}
