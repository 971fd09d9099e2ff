package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calltree/internal/parser"
	"github.com/roach88/calltree/internal/testutil"
)

func writeSample(t *testing.T, s *Store, id string) (Run, *parser.Result) {
	t.Helper()
	run, res := parsedRun(t, id, sampleTrace())
	written, _, err := s.WriteRun(context.Background(), run, res.Tree, res.Diagnostics)
	require.NoError(t, err)
	return written, res
}

func TestReadRun(t *testing.T) {
	s := createTestStore(t)
	written, _ := writeSample(t, s, "run-1")

	got, err := s.ReadRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, written, got)
}

func TestReadRun_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestReadTree_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	_, res := writeSample(t, s, "run-1")

	tree, err := s.ReadTree(context.Background(), "run-1")
	require.NoError(t, err)
	require.NoError(t, tree.Validate())

	assert.Equal(t, res.Tree.String(), tree.String())
	assert.Equal(t, "Entry\n  a.js\n    main\n      helper\n", tree.String())

	helper, ok := tree.FindFirst(tree.Root(), "helper")
	require.True(t, ok)
	assert.Equal(t, []string{"Entry", "a.js", "main", "helper"}, tree.Path(helper))
}

func TestReadTree_DetectsTampering(t *testing.T) {
	s := createTestStore(t)
	writeSample(t, s, "run-1")

	_, err := s.db.Exec(`UPDATE nodes SET name = 'tampered' WHERE run_id = ? AND node_id = 3`, "run-1")
	require.NoError(t, err)

	_, err = s.ReadTree(context.Background(), "run-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tree hash mismatch")
}

func TestReadTree_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadTree(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestReadDiagnostics(t *testing.T) {
	s := createTestStore(t)
	_, res := writeSample(t, s, "run-1")

	diags, err := s.ReadDiagnostics(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, res.Diagnostics, diags)
	require.Len(t, diags, 1)
	assert.Equal(t, parser.DiagDroppedCall, diags[0].Code)
	assert.Equal(t, 4, diags[0].EventIndex)
}

func TestReadDiagnostics_EmptyNotNil(t *testing.T) {
	s := createTestStore(t)

	diags, err := s.ReadDiagnostics(context.Background(), "missing")
	require.NoError(t, err)
	assert.NotNil(t, diags)
	assert.Empty(t, diags)
}

func TestListRuns_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	for _, id := range []string{"zz", "aa", "mm"} {
		writeSample(t, s, id)
	}

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)

	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"zz", "aa", "mm"}, ids)
}

func TestListRuns_Empty(t *testing.T) {
	s := createTestStore(t)

	runs, err := s.ListRuns(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}

func TestFindRunsByTraceHash(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	first, _ := writeSample(t, s, "run-1")
	writeSample(t, s, "run-2")

	other := testutil.NewTrace().Import("", "b.js").Build()
	run, res := parsedRun(t, "run-3", other)
	_, _, err := s.WriteRun(ctx, run, res.Tree, res.Diagnostics)
	require.NoError(t, err)

	runs, err := s.FindRunsByTraceHash(ctx, first.TraceHash)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, "run-2", runs[1].ID)

	none, err := s.FindRunsByTraceHash(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, none)
}
