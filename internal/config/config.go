package config

import (
	"github.com/roach88/calltree/internal/parser"
)

// Config is the on-disk form of parser settings.
type Config struct {
	Labels    Labels `yaml:"labels" json:"labels"`
	Paths     Paths  `yaml:"paths" json:"paths"`
	Synthesis string `yaml:"synthesis" json:"synthesis"`
}

// Labels are the tracer's reserved function names.
type Labels struct {
	TopLevelScope    string `yaml:"top_level_scope" json:"top_level_scope"`
	Constructor      string `yaml:"constructor" json:"constructor"`
	ConstructorAlias string `yaml:"constructor_alias" json:"constructor_alias"`
	Entry            string `yaml:"entry" json:"entry"`
}

// Paths control import filtering and module detection.
type Paths struct {
	ModuleSuffix string `yaml:"module_suffix" json:"module_suffix"`
	TmpMarker    string `yaml:"tmp_marker" json:"tmp_marker"`
	Separator    string `yaml:"separator" json:"separator"`

	// Exclude replaces the default markers when present, even if empty.
	Exclude []string `yaml:"exclude" json:"exclude"`

	Monitor string `yaml:"monitor" json:"monitor"`
}

// Options merges the set fields onto parser.DefaultOptions.
func (c *Config) Options() parser.Options {
	opts := parser.DefaultOptions()
	if c == nil {
		return opts
	}

	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&opts.TopLevelScope, c.Labels.TopLevelScope)
	set(&opts.Constructor, c.Labels.Constructor)
	set(&opts.ConstructorAlias, c.Labels.ConstructorAlias)
	set(&opts.EntryName, c.Labels.Entry)
	set(&opts.ModuleSuffix, c.Paths.ModuleSuffix)
	set(&opts.TmpMarker, c.Paths.TmpMarker)
	set(&opts.PathSeparator, c.Paths.Separator)
	set(&opts.MonitorSuffix, c.Paths.Monitor)

	if c.Paths.Exclude != nil {
		opts.ExcludeMarkers = append([]string(nil), c.Paths.Exclude...)
	}
	if c.Synthesis != "" {
		opts.Synthesis = parser.SynthesisPolicy(c.Synthesis)
	}
	return opts
}
