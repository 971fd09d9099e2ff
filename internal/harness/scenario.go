package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/calltree/internal/config"
	"github.com/roach88/calltree/internal/event"
	"github.com/roach88/calltree/internal/parser"
)

// Scenario defines a conformance test scenario: a trace, the parser
// settings to read it with, and what the reconstructed tree must look like.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Options override parser defaults, using the config file schema.
	Options *config.Config `yaml:"options,omitempty"`

	// Trace is a trace file path, resolved relative to the scenario file.
	// Mutually exclusive with Events.
	Trace string `yaml:"trace,omitempty"`

	// Events is an inline trace in the tracer's record format.
	Events []map[string]any `yaml:"events,omitempty"`

	// Expect holds the outcome checks.
	Expect Expect `yaml:"expect"`

	// Assertions are additional structural checks on the tree.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Expect specifies the expected parse outcome.
type Expect struct {
	// Root is the expected root name.
	Root string `yaml:"root,omitempty"`

	// Tree is the expected rendering, two spaces per level.
	Tree string `yaml:"tree,omitempty"`

	// Diagnostics lists the expected diagnostic codes in order. Nil skips
	// the check; an empty list requires a clean parse.
	Diagnostics []string `yaml:"diagnostics,omitempty"`

	// Error is the expected fatal error code. Empty means the parse must
	// succeed.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the shape of the tree or the parse stats.
type Assertion struct {
	// Type specifies the assertion type:
	// - "path_exists": a root-to-node path of names exists
	// - "path_absent": no such path exists
	// - "children": the node at Path has exactly Children, in order
	// - "node_count": the tree has Count nodes
	// - "stat": the parse stat named Stat equals Count
	Type string `yaml:"type"`

	// Path is a list of names starting at the root.
	Path []string `yaml:"path,omitempty"`

	Children []string `yaml:"children,omitempty"`

	Stat string `yaml:"stat,omitempty"`

	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertPathExists = "path_exists"
	AssertPathAbsent = "path_absent"
	AssertChildren   = "children"
	AssertNodeCount  = "node_count"
	AssertStat       = "stat"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative Trace path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Trace != "" && !filepath.IsAbs(scenario.Trace) {
		scenario.Trace = filepath.Join(filepath.Dir(path), scenario.Trace)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarios loads every *.yaml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// LoadTrace returns the scenario's trace, from the file or the inline
// events.
func (s *Scenario) LoadTrace() (event.Trace, error) {
	if s.Trace != "" {
		return event.ReadFile(s.Trace)
	}

	// Inline events go through the same decoder as trace files
	data, err := json.Marshal(s.Events)
	if err != nil {
		return nil, fmt.Errorf("encode inline events: %w", err)
	}
	return event.Decode(bytes.NewReader(data))
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Trace == "" && len(s.Events) == 0 {
		return fmt.Errorf("either trace or events is required")
	}
	if s.Trace != "" && len(s.Events) > 0 {
		return fmt.Errorf("trace and events are mutually exclusive")
	}
	if s.Trace != "" {
		if _, err := os.Stat(s.Trace); os.IsNotExist(err) {
			return fmt.Errorf("trace file not found: %s", s.Trace)
		}
	}

	if s.Expect.Error != "" && (s.Expect.Tree != "" || s.Expect.Root != "" || len(s.Assertions) > 0) {
		return fmt.Errorf("expect.error excludes tree, root and assertions")
	}
	if s.Expect.Error == "" && s.Expect.Tree == "" && s.Expect.Root == "" && len(s.Assertions) == 0 {
		return fmt.Errorf("expect needs at least one of root, tree or error, or assertions")
	}

	if s.Options != nil {
		if err := s.Options.Options().Validate(); err != nil {
			return fmt.Errorf("options: %w", err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertPathExists, AssertPathAbsent:
		if len(a.Path) == 0 {
			return fmt.Errorf("assertions[%d]: path is required for %s", index, a.Type)
		}
	case AssertChildren:
		if len(a.Path) == 0 {
			return fmt.Errorf("assertions[%d]: path is required for children", index)
		}
	case AssertNodeCount:
		if a.Count <= 0 {
			return fmt.Errorf("assertions[%d]: count must be positive for node_count", index)
		}
	case AssertStat:
		if _, ok := statValue(parser.Stats{}, a.Stat); !ok {
			return fmt.Errorf("assertions[%d]: unknown stat %q", index, a.Stat)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for stat", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
