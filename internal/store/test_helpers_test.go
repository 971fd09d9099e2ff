package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/calltree/internal/event"
	"github.com/roach88/calltree/internal/parser"
	"github.com/roach88/calltree/internal/testutil"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// sampleTrace produces Entry -> a.js -> main -> helper and one dropped call.
func sampleTrace() event.Trace {
	return testutil.NewTrace().
		Import("", "a.js").
		Module("a.js").
		Call("TLS", "main", "a.js", 1).
		Start("main", "a.js", 1).
		Call("ghost", "x", "a.js", 3).
		Invoke("main", "helper", "a.js", 2).
		Return("TLS", "main", "a.js", 1).
		Build()
}

// parsedRun parses trace and describes it as a run with the given ID.
func parsedRun(t *testing.T, id string, trace event.Trace) (Run, *parser.Result) {
	t.Helper()

	traceHash, err := trace.Hash()
	require.NoError(t, err)

	opts := parser.DefaultOptions()
	res, err := parser.Parse(trace.Clone(), opts)
	require.NoError(t, err)

	run, err := NewRun(id, "trace.json", traceHash, opts, res)
	require.NoError(t, err)
	return run, res
}
