package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/roach88/calltree/internal/calltree"
	"github.com/roach88/calltree/internal/canonical"
	"github.com/roach88/calltree/internal/parser"
)

// marshalStats converts parse stats to canonical JSON TEXT for storage.
func marshalStats(s parser.Stats) (string, error) {
	data, err := canonical.Marshal(map[string]any{
		"events":      s.Events,
		"calls":       s.Calls,
		"imports":     s.Imports,
		"flattened":   s.Flattened,
		"attached":    s.Attached,
		"synthesized": s.Synthesized,
		"dropped":     s.Dropped,
		"nodes":       s.Nodes,
	})
	if err != nil {
		return "", fmt.Errorf("marshal stats: %w", err)
	}
	return string(data), nil
}

func unmarshalStats(data string) (parser.Stats, error) {
	var s parser.Stats
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return s, fmt.Errorf("unmarshal stats: %w", err)
	}
	return s, nil
}

// nullableNode maps calltree.NoNode to SQL NULL.
func nullableNode(id calltree.NodeID) sql.NullInt64 {
	if id == calltree.NoNode {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(id), Valid: true}
}

func nodeFromNull(v sql.NullInt64) calltree.NodeID {
	if !v.Valid {
		return calltree.NoNode
	}
	return calltree.NodeID(v.Int64)
}
