package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calltree/internal/event"
)

func TestNormalizeCommand_Text(t *testing.T) {
	trace := writeFile(t, "trace.json", topLevelTrace)

	out, err := execute(t, nil, "normalize", trace)

	require.NoError(t, err)
	assert.Contains(t, out, "    0  import")
	assert.Contains(t, out, `"" -> "a.js"`)
	// Top-level scope labels resolve to the calling file
	assert.Contains(t, out, "a.js -> main (a.js:1)")
	assert.NotContains(t, out, "TLS")
}

func TestNormalizeCommand_JSON(t *testing.T) {
	trace := writeFile(t, "trace.json", topLevelTrace)

	out, err := execute(t, nil, "--format", "json", "normalize", trace)
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   NormalizeResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Data.Events, 5)

	call, ok := resp.Data.Events[2].Call()
	require.True(t, ok)
	assert.Equal(t, "a.js", call.From)
	assert.Equal(t, event.KindFunctionReturn, resp.Data.Events[4].Kind())
}

func TestImportsCommand_Text(t *testing.T) {
	trace := writeFile(t, "trace.json", `[
  {"type": "import", "sourcePath": "", "importPath": "/tmp/tmp-42/a.js"},
  {"type": "import", "sourcePath": "/tmp/tmp-42/a.js", "importPath": "node_modules/lodash/index.js"},
  {"type": "import", "sourcePath": "/tmp/tmp-42/a.js", "importPath": "/tmp/tmp-42/lib/b.js"}
]`)

	out, err := execute(t, nil, "imports", trace)

	require.NoError(t, err)
	assert.Equal(t, "Root: Entry\nImports: 2\n    0  Entry -> a.js\n    2  a.js -> lib/b.js\n", out)
}

func TestImportsCommand_JSON(t *testing.T) {
	trace := writeFile(t, "trace.json", topLevelTrace)

	out, err := execute(t, nil, "--format", "json", "imports", trace)
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   ImportsResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "Entry", resp.Data.Root)
	require.Len(t, resp.Data.Imports, 1)
	assert.Equal(t, "a.js", resp.Data.Imports[0].ImportPath)
}

func TestImportsCommand_NoImports(t *testing.T) {
	trace := writeFile(t, "trace.json", dependencyTrace)

	out, err := execute(t, nil, "imports", trace)

	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [NO_IMPORTS]")
}
