package testutil

import (
	"fmt"
	"sync"
)

// FixedIDGenerator returns run IDs from a fixed list, then numbered
// fallbacks.
//
// This enables deterministic store tests and golden output: the same
// sequence of parses produces the same run IDs.
//
// Thread-safety: FixedIDGenerator is safe for concurrent use via internal mutex.
type FixedIDGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedIDGenerator creates a generator that returns ids in order.
// Once exhausted it returns "run-<n>" with n counting from len(ids)+1.
//
//	gen := NewFixedIDGenerator("run-a")
//	gen.Generate() // "run-a"
//	gen.Generate() // "run-2"
func NewFixedIDGenerator(ids ...string) *FixedIDGenerator {
	return &FixedIDGenerator{ids: ids}
}

// Generate returns the next ID. Implements store.IDGenerator.
func (g *FixedIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.idx++
	if g.idx <= len(g.ids) {
		return g.ids[g.idx-1]
	}
	return fmt.Sprintf("run-%d", g.idx)
}
