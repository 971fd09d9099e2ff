package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/calltree/internal/testutil"
)

// topLevelTrace imports a.js from the entry script and calls main from its
// top-level code.
const topLevelTrace = `[
  {"type": "import", "sourcePath": "", "importPath": "a.js"},
  {"type": "moduleStart", "file": "a.js"},
  {"type": "functionCall", "from": "TLS", "to": "main", "callingFile": "a.js", "callingLine": 1},
  {"type": "functionStart", "name": "main", "file": "a.js", "line": 1},
  {"type": "functionReturn", "from": "TLS", "to": "main", "callingFile": "a.js", "callingLine": 1}
]`

const topLevelTree = "Entry\n  a.js\n    main\n"

// danglingTrace ends with a call from a frame that was never entered.
const danglingTrace = `[
  {"type": "import", "sourcePath": "", "importPath": "a.js"},
  {"type": "moduleStart", "file": "a.js"},
  {"type": "functionCall", "from": "TLS", "to": "main", "callingFile": "a.js", "callingLine": 1},
  {"type": "functionStart", "name": "main", "file": "a.js", "line": 1},
  {"type": "functionCall", "from": "ghost", "to": "x", "callingFile": "a.js", "callingLine": 2}
]`

// dependencyTrace only imports third-party modules.
const dependencyTrace = `[
  {"type": "import", "sourcePath": "node_modules/foo/index.js", "importPath": "node_modules/foo/util.js"},
  {"type": "import", "sourcePath": "", "importPath": "node:fs"}
]`

// writeFile writes content to name inside a fresh temp dir.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, opts *RootOptions, args ...string) (string, error) {
	t.Helper()
	if opts == nil {
		opts = &RootOptions{}
	}
	out := &bytes.Buffer{}
	cmd := newRootCommand(opts)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// fixedIDs returns root options that name stored runs deterministically.
func fixedIDs(ids ...string) *RootOptions {
	return &RootOptions{IDGenerator: testutil.NewFixedIDGenerator(ids...)}
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "calltree", cmd.Use)
	assert.Contains(t, cmd.Long, "call tree")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"parse", "normalize", "imports", "runs", "show", "replay", "test"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestParseCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	parseCmd, _, err := cmd.Find([]string{"parse"})
	require.NoError(t, err)

	for _, name := range []string{"db", "diagnostics", "strict"} {
		assert.NotNil(t, parseCmd.Flags().Lookup(name), "missing flag --%s", name)
	}
	assert.Equal(t, "false", parseCmd.Flags().Lookup("strict").DefValue)
}

func TestReplayCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	replayCmd, _, err := cmd.Find([]string{"replay"})
	require.NoError(t, err)

	dbFlag := replayCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)

	runFlag := replayCmd.Flags().Lookup("run")
	require.NotNil(t, runFlag)
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	filterFlag := testCmd.Flags().Lookup("filter")
	require.NotNil(t, filterFlag)
	assert.Equal(t, "", filterFlag.DefValue)
}

func TestFormatValidation(t *testing.T) {
	// Test valid formats
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	// Test invalid formats
	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	trace := writeFile(t, "trace.json", topLevelTrace)

	_, err := execute(t, nil, "--format", "invalid", "parse", trace)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
