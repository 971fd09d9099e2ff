package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedIDGenerator_ReturnsInOrder(t *testing.T) {
	gen := NewFixedIDGenerator("run-a", "run-b")

	assert.Equal(t, "run-a", gen.Generate())
	assert.Equal(t, "run-b", gen.Generate())
}

func TestFixedIDGenerator_FallsBackToNumbered(t *testing.T) {
	gen := NewFixedIDGenerator("run-a")

	assert.Equal(t, "run-a", gen.Generate())
	assert.Equal(t, "run-2", gen.Generate())
	assert.Equal(t, "run-3", gen.Generate())
}

func TestFixedIDGenerator_Empty(t *testing.T) {
	gen := NewFixedIDGenerator()

	assert.Equal(t, "run-1", gen.Generate())
}

func TestFixedIDGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedIDGenerator()

	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	// Every call got a distinct ID
	assert.Len(t, seen, 1000)
}
